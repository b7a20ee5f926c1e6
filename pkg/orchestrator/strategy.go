package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/deskmesh/deskmesh/pkg/errors"
	"github.com/deskmesh/deskmesh/pkg/telemetry"
)

var tracer = otel.Tracer("deskmesh/orchestrator")

// Mode selects which orchestration strategy drives a run.
type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeDynamic    Mode = "dynamic"
	ModeParallel   Mode = "parallel"
)

// ParseMode validates a mode string from configuration.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSequential, ModeDynamic, ModeParallel:
		return Mode(s), nil
	}
	return "", errors.New(errors.CodeInvalidInput,
		fmt.Sprintf("unknown orchestration mode %q", s), nil)
}

// Stage is one remote agent invocation slot in a pipeline. Gate decides
// from the routing decision whether the stage runs; a nil Gate always runs.
type Stage struct {
	Agent     Invoker
	OutputKey string
	Gate      func(RoutingDecision) bool
}

func (s Stage) shouldRun(decision RoutingDecision) bool {
	if s.Gate == nil {
		return true
	}
	return s.Gate(decision)
}

// Strategy executes a query against an agent pipeline, recording stage
// outputs in the run context and returning the final answer text.
type Strategy interface {
	Mode() Mode
	Run(ctx context.Context, rc *RunContext, query string) (string, error)
}

// invokeStage runs one agent under its own deadline and reports the
// invocation on the stage span and metrics. The stage context is derived
// per invocation so one slow agent cannot consume the whole run budget of
// its successors.
func invokeStage(ctx context.Context, stage Stage, query, contextText string, timeout time.Duration, metrics *telemetry.MeshMetrics) (string, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.stage")
	defer span.End()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	output, err := stage.Agent.Invoke(ctx, query, contextText)
	elapsed := time.Since(start)

	metrics.RecordStage(ctx, stage.Agent.Name(), elapsed, err)
	span.SetAttributes(telemetry.StageAttributes(
		stage.Agent.Name(), stage.OutputKey, false, float64(elapsed.Milliseconds()))...)

	if err != nil {
		span.RecordError(err)
		if ctx.Err() == context.DeadlineExceeded && !errors.HasCode(err, errors.CodeTimeout) {
			return "", errors.New(errors.CodeTimeout,
				fmt.Sprintf("agent %s exceeded stage deadline", stage.Agent.Name()), err)
		}
		return "", err
	}
	return output, nil
}
