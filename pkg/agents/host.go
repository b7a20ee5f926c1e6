package agents

import (
	"log/slog"
	"time"

	"github.com/deskmesh/deskmesh/pkg/orchestrator"
	"github.com/deskmesh/deskmesh/pkg/telemetry"
)

// Output keys for the standard two-agent pipeline.
const (
	CustomerDataOutputKey = "customer_data_output"
	SupportOutputKey      = "support_specialist_output"
)

// BuildStages assembles the standard pipeline from a discovered registry:
// the data agent first, the support specialist second. The gates only
// take effect under the dynamic strategy.
func BuildStages(registry *orchestrator.Registry) ([]orchestrator.Stage, error) {
	data, err := registry.Agent(CustomerDataName)
	if err != nil {
		return nil, err
	}
	support, err := registry.Agent(SupportName)
	if err != nil {
		return nil, err
	}
	return []orchestrator.Stage{
		{
			Agent:     data,
			OutputKey: CustomerDataOutputKey,
			Gate:      func(d orchestrator.RoutingDecision) bool { return d.NeedsData },
		},
		{
			Agent:     support,
			OutputKey: SupportOutputKey,
			Gate:      func(d orchestrator.RoutingDecision) bool { return d.NeedsSupport },
		},
	}, nil
}

// NewStrategy builds the configured strategy over the standard pipeline.
func NewStrategy(mode orchestrator.Mode, registry *orchestrator.Registry, stageTimeout time.Duration, metrics *telemetry.MeshMetrics, log *slog.Logger) (orchestrator.Strategy, error) {
	stages, err := BuildStages(registry)
	if err != nil {
		return nil, err
	}
	switch mode {
	case orchestrator.ModeSequential:
		return orchestrator.NewSequential(stages, stageTimeout, metrics, log), nil
	case orchestrator.ModeParallel:
		return orchestrator.NewParallel(stages, stageTimeout, nil, metrics, log), nil
	default:
		return orchestrator.NewDynamic(stages, stageTimeout, metrics, log), nil
	}
}
