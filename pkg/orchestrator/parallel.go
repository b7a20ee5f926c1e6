package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/deskmesh/deskmesh/pkg/telemetry"
)

// Synthesizer folds the per-stage outputs of a parallel run into the final
// answer. It must be a pure function of its inputs: it sees stage outputs
// in declaration order, including the unavailable placeholder for failed
// branches.
type Synthesizer func(query string, results []StageResult) string

// StageResult is one branch outcome handed to the synthesizer.
type StageResult struct {
	Agent  string
	Key    string
	Output string
}

// ParallelStrategy fans the query out to every stage concurrently and
// joins on all of them before synthesizing. A failed branch never aborts
// the others: its output key records the unavailable placeholder and the
// reducer works with whatever arrived.
type ParallelStrategy struct {
	stages       []Stage
	stageTimeout time.Duration
	synthesize   Synthesizer
	metrics      *telemetry.MeshMetrics
	log          *slog.Logger
}

// NewParallel builds a fan-out pipeline over the given stages. A nil
// synthesizer falls back to the default section reducer; a nil metrics
// handle disables recording.
func NewParallel(stages []Stage, stageTimeout time.Duration, synth Synthesizer, metrics *telemetry.MeshMetrics, log *slog.Logger) *ParallelStrategy {
	if synth == nil {
		synth = SynthesizeSections
	}
	if log == nil {
		log = slog.Default()
	}
	return &ParallelStrategy{stages: stages, stageTimeout: stageTimeout, synthesize: synth, metrics: metrics, log: log}
}

func (s *ParallelStrategy) Mode() Mode { return ModeParallel }

// Run invokes every stage with the same query and no shared context, waits
// for all branches, then reduces their outputs.
func (s *ParallelStrategy) Run(ctx context.Context, rc *RunContext, query string) (answer string, err error) {
	ctx, span := tracer.Start(ctx, "orchestrator.run",
		trace.WithAttributes(telemetry.RunAttributes(rc.ID(), string(ModeParallel), query)...))
	defer span.End()
	defer func() { s.metrics.RecordRun(ctx, string(ModeParallel), err) }()

	outputs := make([]string, len(s.stages))

	var wg sync.WaitGroup
	for i, stage := range s.stages {
		wg.Add(1)
		go func(i int, stage Stage) {
			defer wg.Done()
			output, err := invokeStage(ctx, stage, query, "", s.stageTimeout, s.metrics)
			if err != nil {
				s.log.Warn("parallel branch failed",
					slog.String("run_id", rc.ID()),
					slog.String("agent", stage.Agent.Name()),
					slog.String("error", err.Error()))
				output = Unavailable
			}
			outputs[i] = output
		}(i, stage)
	}
	wg.Wait()

	results := make([]StageResult, len(s.stages))
	for i, stage := range s.stages {
		if err := rc.Set(stage.OutputKey, outputs[i]); err != nil {
			return "", err
		}
		results[i] = StageResult{
			Agent:  stage.Agent.Name(),
			Key:    stage.OutputKey,
			Output: outputs[i],
		}
	}
	return s.synthesize(query, results), nil
}

// SynthesizeSections is the default reducer. It renders one titled section
// per branch in declaration order, marking failed branches explicitly.
func SynthesizeSections(query string, results []StageResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Combined response for: %s\n", query)
	for _, r := range results {
		b.WriteString("\n## ")
		b.WriteString(r.Agent)
		b.WriteString("\n")
		if r.Output == Unavailable {
			b.WriteString("This agent could not be reached.\n")
			continue
		}
		b.WriteString(r.Output)
		b.WriteString("\n")
	}
	return b.String()
}
