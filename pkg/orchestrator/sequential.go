package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/deskmesh/deskmesh/pkg/telemetry"
)

// SequentialStrategy runs every stage in declared order. Each stage sees
// the outputs of all stages before it; the final answer is the output of
// the last stage.
type SequentialStrategy struct {
	stages       []Stage
	stageTimeout time.Duration
	metrics      *telemetry.MeshMetrics
	log          *slog.Logger
}

// NewSequential builds a sequential pipeline over the given stages. A nil
// metrics handle disables recording.
func NewSequential(stages []Stage, stageTimeout time.Duration, metrics *telemetry.MeshMetrics, log *slog.Logger) *SequentialStrategy {
	if log == nil {
		log = slog.Default()
	}
	return &SequentialStrategy{stages: stages, stageTimeout: stageTimeout, metrics: metrics, log: log}
}

func (s *SequentialStrategy) Mode() Mode { return ModeSequential }

// Run executes the pipeline. The first stage error aborts the run; stages
// after the failed one never execute.
func (s *SequentialStrategy) Run(ctx context.Context, rc *RunContext, query string) (answer string, err error) {
	ctx, span := tracer.Start(ctx, "orchestrator.run",
		trace.WithAttributes(telemetry.RunAttributes(rc.ID(), string(ModeSequential), query)...))
	defer span.End()
	defer func() { s.metrics.RecordRun(ctx, string(ModeSequential), err) }()

	var priorKeys []string
	for _, stage := range s.stages {
		contextText := render(rc, priorKeys)
		s.log.Debug("invoking stage",
			slog.String("run_id", rc.ID()),
			slog.String("agent", stage.Agent.Name()))

		output, err := invokeStage(ctx, stage, query, contextText, s.stageTimeout, s.metrics)
		if err != nil {
			return "", err
		}
		if err := rc.Set(stage.OutputKey, output); err != nil {
			return "", err
		}
		priorKeys = append(priorKeys, stage.OutputKey)
		answer = output
	}
	return answer, nil
}
