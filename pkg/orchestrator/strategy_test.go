package orchestrator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/deskmesh/deskmesh/pkg/errors"
	"github.com/deskmesh/deskmesh/pkg/telemetry"
)

// fakeAgent is an in-process Invoker for strategy tests.
type fakeAgent struct {
	name   string
	reply  string
	err    error
	delay  time.Duration
	mu     sync.Mutex
	calls  int
	lastCt string
}

func (f *fakeAgent) Name() string { return f.name }

func (f *fakeAgent) Invoke(ctx context.Context, query, contextText string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastCt = contextText
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeAgent) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAgent) lastContext() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastCt
}

func twoStagePipeline(data, support *fakeAgent) []Stage {
	return []Stage{
		{
			Agent:     data,
			OutputKey: "customer_data_output",
			Gate:      func(d RoutingDecision) bool { return d.NeedsData },
		},
		{
			Agent:     support,
			OutputKey: "support_specialist_output",
			Gate:      func(d RoutingDecision) bool { return d.NeedsSupport },
		},
	}
}

func TestSequential_OrderAndContextFlow(t *testing.T) {
	data := &fakeAgent{name: "customer_data", reply: "customer 5: Alice"}
	support := &fakeAgent{name: "support_specialist", reply: "ticket created"}
	strategy := NewSequential(twoStagePipeline(data, support), 0, nil, nil)

	rc := NewRunContext()
	answer, err := strategy.Run(context.Background(), rc, "customer 5 has a login issue")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if answer != "ticket created" {
		t.Fatalf("expected last stage output, got %q", answer)
	}
	if got := rc.GetString("customer_data_output"); got != "customer 5: Alice" {
		t.Fatalf("missing first stage output, got %q", got)
	}
	if !strings.Contains(support.lastContext(), "customer 5: Alice") {
		t.Fatalf("second stage never saw first stage output: %q", support.lastContext())
	}
	if data.lastContext() != "" {
		t.Fatalf("first stage should start with empty context, got %q", data.lastContext())
	}
}

func TestSequential_FirstErrorAborts(t *testing.T) {
	data := &fakeAgent{name: "customer_data", err: errors.New(errors.CodeRemoteAgent, "connection refused", nil)}
	support := &fakeAgent{name: "support_specialist", reply: "never"}
	strategy := NewSequential(twoStagePipeline(data, support), 0, nil, nil)

	rc := NewRunContext()
	if _, err := strategy.Run(context.Background(), rc, "anything about a customer"); err == nil {
		t.Fatalf("expected run to fail")
	}
	if support.callCount() != 0 {
		t.Fatalf("stage after failure must not run, got %d calls", support.callCount())
	}
}

func TestSequential_StageTimeout(t *testing.T) {
	slow := &fakeAgent{name: "customer_data", reply: "late", delay: 200 * time.Millisecond}
	strategy := NewSequential([]Stage{{Agent: slow, OutputKey: "customer_data_output"}}, 20*time.Millisecond, nil, nil)

	rc := NewRunContext()
	_, err := strategy.Run(context.Background(), rc, "list customers")
	if !errors.HasCode(err, errors.CodeTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestDynamic_SkipsGatedStage(t *testing.T) {
	data := &fakeAgent{name: "customer_data", reply: "customer 5: Alice"}
	support := &fakeAgent{name: "support_specialist", reply: "ticket created"}
	strategy := NewDynamic(twoStagePipeline(data, support), 0, nil, nil)

	rc := NewRunContext()
	answer, err := strategy.Run(context.Background(), rc, "Get customer information for ID 5")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if answer != "customer 5: Alice" {
		t.Fatalf("expected data stage output, got %q", answer)
	}
	if support.callCount() != 0 {
		t.Fatalf("gated-off stage must not be invoked")
	}
	if got := rc.GetString("support_specialist_output"); got != Skipped {
		t.Fatalf("expected skip placeholder, got %q", got)
	}
	decision, ok := rc.Decision()
	if !ok || decision.Mode != ExecDataOnly {
		t.Fatalf("expected recorded data_only decision, got %+v ok=%v", decision, ok)
	}
}

func TestDynamic_FailOpenRunsBothStages(t *testing.T) {
	data := &fakeAgent{name: "customer_data", reply: "no records"}
	support := &fakeAgent{name: "support_specialist", reply: "how can I assist"}
	strategy := NewDynamic(twoStagePipeline(data, support), 0, nil, nil)

	rc := NewRunContext()
	if _, err := strategy.Run(context.Background(), rc, "hello there"); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if data.callCount() != 1 || support.callCount() != 1 {
		t.Fatalf("expected both stages to run, got %d and %d", data.callCount(), support.callCount())
	}
}

func TestDynamic_SkippedOutputNotRendered(t *testing.T) {
	support := &fakeAgent{name: "support_specialist", reply: "done"}
	stages := []Stage{
		{
			Agent:     &fakeAgent{name: "customer_data", reply: "unused"},
			OutputKey: "customer_data_output",
			Gate:      func(d RoutingDecision) bool { return d.NeedsData },
		},
		{
			Agent:     support,
			OutputKey: "support_specialist_output",
			Gate:      func(d RoutingDecision) bool { return d.NeedsSupport },
		},
	}
	strategy := NewDynamic(stages, 0, nil, nil)

	rc := NewRunContext()
	if _, err := strategy.Run(context.Background(), rc, "help, the app is broken"); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if strings.Contains(support.lastContext(), Skipped) {
		t.Fatalf("placeholder leaked into stage context: %q", support.lastContext())
	}
}

func TestParallel_JoinWaitsForAllBranches(t *testing.T) {
	fast := &fakeAgent{name: "customer_data", reply: "fast"}
	slow := &fakeAgent{name: "support_specialist", reply: "slow", delay: 50 * time.Millisecond}
	strategy := NewParallel(twoStagePipeline(fast, slow), 0, nil, nil, nil)

	rc := NewRunContext()
	answer, err := strategy.Run(context.Background(), rc, "status of everything")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if !strings.Contains(answer, "fast") || !strings.Contains(answer, "slow") {
		t.Fatalf("expected both branch outputs in answer: %q", answer)
	}
	if rc.GetString("customer_data_output") != "fast" || rc.GetString("support_specialist_output") != "slow" {
		t.Fatalf("expected both output keys written, keys=%v", rc.Keys())
	}
}

func TestParallel_FailedBranchDoesNotAbort(t *testing.T) {
	ok := &fakeAgent{name: "customer_data", reply: "records found"}
	down := &fakeAgent{name: "support_specialist", err: errors.New(errors.CodeRemoteAgent, "connection refused", nil)}
	strategy := NewParallel(twoStagePipeline(ok, down), 0, nil, nil, nil)

	rc := NewRunContext()
	answer, err := strategy.Run(context.Background(), rc, "overview please")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if got := rc.GetString("support_specialist_output"); got != Unavailable {
		t.Fatalf("expected unavailable placeholder, got %q", got)
	}
	if !strings.Contains(answer, "records found") {
		t.Fatalf("healthy branch output missing from answer: %q", answer)
	}
	if !strings.Contains(answer, "could not be reached") {
		t.Fatalf("failed branch not surfaced in answer: %q", answer)
	}
}

func TestParallel_SynthesizerIsDeterministic(t *testing.T) {
	results := []StageResult{
		{Agent: "customer_data", Key: "customer_data_output", Output: "a"},
		{Agent: "support_specialist", Key: "support_specialist_output", Output: "b"},
	}
	first := SynthesizeSections("q", results)
	for i := 0; i < 5; i++ {
		if got := SynthesizeSections("q", results); got != first {
			t.Fatalf("reducer not deterministic")
		}
	}
	if !strings.Contains(first, "## customer_data") || !strings.Contains(first, "## support_specialist") {
		t.Fatalf("expected titled sections, got %q", first)
	}
}

func TestParallel_CustomSynthesizer(t *testing.T) {
	stages := []Stage{{Agent: &fakeAgent{name: "customer_data", reply: "x"}, OutputKey: "customer_data_output"}}
	strategy := NewParallel(stages, 0, func(query string, results []StageResult) string {
		return "custom:" + results[0].Output
	}, nil, nil)

	rc := NewRunContext()
	answer, err := strategy.Run(context.Background(), rc, "q")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if answer != "custom:x" {
		t.Fatalf("expected custom reducer output, got %q", answer)
	}
}

func TestDynamic_MergesNonSkippedOutputs(t *testing.T) {
	data := &fakeAgent{name: "customer_data", reply: "customer 5: Alice"}
	support := &fakeAgent{name: "support_specialist", reply: "ticket created"}
	strategy := NewDynamic(twoStagePipeline(data, support), 0, nil, nil)

	rc := NewRunContext()
	answer, err := strategy.Run(context.Background(), rc, "customer 5 cannot log in")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if answer != "customer 5: Alice\n\nticket created" {
		t.Fatalf("expected merged outputs in stage order, got %q", answer)
	}
}

func TestDynamic_RecordsRunAndStageMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	metrics, err := telemetry.NewMeshMetrics()
	if err != nil {
		t.Fatalf("metrics error: %v", err)
	}
	data := &fakeAgent{name: "customer_data", reply: "records"}
	support := &fakeAgent{name: "support_specialist", reply: "unused"}
	strategy := NewDynamic(twoStagePipeline(data, support), 0, metrics, nil)

	rc := NewRunContext()
	if _, err := strategy.Run(context.Background(), rc, "list customers"); err != nil {
		t.Fatalf("run error: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect error: %v", err)
	}
	recorded := make(map[string]bool)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			recorded[m.Name] = true
		}
	}
	for _, want := range []string{"deskmesh.runs.total", "deskmesh.stages.total", "deskmesh.stage.duration"} {
		if !recorded[want] {
			t.Errorf("metric %s not recorded, got %v", want, recorded)
		}
	}
}
