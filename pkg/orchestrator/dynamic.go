package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/deskmesh/deskmesh/pkg/errors"
	"github.com/deskmesh/deskmesh/pkg/telemetry"
)

// DynamicStrategy classifies the query first and then runs the pipeline
// with per-stage gates applied against the routing decision. A gated-off
// stage records the skip placeholder under its output key and performs no
// network call, so downstream readers always find the key present.
type DynamicStrategy struct {
	stages       []Stage
	stageTimeout time.Duration
	metrics      *telemetry.MeshMetrics
	log          *slog.Logger
}

// NewDynamic builds a dynamic-routed pipeline over the given stages. A
// nil metrics handle disables recording.
func NewDynamic(stages []Stage, stageTimeout time.Duration, metrics *telemetry.MeshMetrics, log *slog.Logger) *DynamicStrategy {
	if log == nil {
		log = slog.Default()
	}
	return &DynamicStrategy{stages: stages, stageTimeout: stageTimeout, metrics: metrics, log: log}
}

func (s *DynamicStrategy) Mode() Mode { return ModeDynamic }

// Run classifies the query, records the decision in the run context, then
// executes the gated pipeline in declared order. The final answer is the
// concatenation of every non-skipped stage output, in stage order.
func (s *DynamicStrategy) Run(ctx context.Context, rc *RunContext, query string) (answer string, err error) {
	ctx, span := tracer.Start(ctx, "orchestrator.run",
		trace.WithAttributes(telemetry.RunAttributes(rc.ID(), string(ModeDynamic), query)...))
	defer span.End()
	defer func() { s.metrics.RecordRun(ctx, string(ModeDynamic), err) }()

	decision := Analyze(query)
	if err := rc.Set(KeyRoutingDecision, decision); err != nil {
		return "", err
	}
	span.SetAttributes(telemetry.RouteAttributes(
		decision.NeedsData, decision.NeedsSupport, string(decision.Urgency))...)
	s.log.Info("routing decision",
		slog.String("run_id", rc.ID()),
		slog.Bool("needs_data", decision.NeedsData),
		slog.Bool("needs_support", decision.NeedsSupport),
		slog.String("urgency", string(decision.Urgency)),
		slog.String("mode", string(decision.Mode)))

	var priorKeys []string
	var outputs []string
	for _, stage := range s.stages {
		if !stage.shouldRun(decision) {
			if err := rc.Set(stage.OutputKey, Skipped); err != nil {
				return "", err
			}
			s.metrics.RecordSkip(ctx, stage.Agent.Name())
			s.log.Debug("stage skipped",
				slog.String("run_id", rc.ID()),
				slog.String("agent", stage.Agent.Name()))
			continue
		}

		contextText := render(rc, priorKeys)
		output, err := invokeStage(ctx, stage, query, contextText, s.stageTimeout, s.metrics)
		if err != nil {
			return "", err
		}
		if err := rc.Set(stage.OutputKey, output); err != nil {
			return "", err
		}
		priorKeys = append(priorKeys, stage.OutputKey)
		outputs = append(outputs, output)
	}
	if len(outputs) == 0 {
		return "", errors.New(errors.CodeInternal, "routing gated off every stage", nil)
	}
	return strings.Join(outputs, "\n\n"), nil
}
