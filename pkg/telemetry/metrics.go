// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeshMetrics tracks orchestration run and stage outcomes.
type MeshMetrics struct {
	runCounter    metric.Int64Counter
	stageCounter  metric.Int64Counter
	stageDuration metric.Float64Histogram
}

// NewMeshMetrics creates the orchestration metric instruments.
func NewMeshMetrics() (*MeshMetrics, error) {
	meter := otel.Meter("deskmesh/orchestrator")

	runCounter, err := meter.Int64Counter(
		"deskmesh.runs.total",
		metric.WithDescription("Orchestration runs by mode and outcome"),
	)
	if err != nil {
		return nil, err
	}

	stageCounter, err := meter.Int64Counter(
		"deskmesh.stages.total",
		metric.WithDescription("Stage invocations by agent and outcome"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"deskmesh.stage.duration",
		metric.WithDescription("Stage invocation duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &MeshMetrics{
		runCounter:    runCounter,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
	}, nil
}

// RecordRun counts one completed orchestration run.
func (m *MeshMetrics) RecordRun(ctx context.Context, mode string, err error) {
	if m == nil {
		return
	}
	m.runCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("mode", mode),
			attribute.String("outcome", outcome(err)),
		),
	)
}

// RecordStage counts one stage invocation and its duration.
func (m *MeshMetrics) RecordStage(ctx context.Context, agent string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("agent", agent),
		attribute.String("outcome", outcome(err)),
	)
	m.stageCounter.Add(ctx, 1, attrs)
	m.stageDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
}

// RecordSkip counts a stage that was gated off without invocation.
func (m *MeshMetrics) RecordSkip(ctx context.Context, agent string) {
	if m == nil {
		return
	}
	m.stageCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("agent", agent),
			attribute.String("outcome", "skipped"),
		),
	)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
