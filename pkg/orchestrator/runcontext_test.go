package orchestrator

import (
	"strings"
	"testing"
)

func TestRunContext_WriteOnce(t *testing.T) {
	rc := NewRunContext()

	if err := rc.Set("stage_output", "first"); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := rc.Set("stage_output", "second"); err == nil {
		t.Fatalf("expected overwrite to be rejected")
	}
	if got := rc.GetString("stage_output"); got != "first" {
		t.Fatalf("expected original value to survive, got %q", got)
	}
}

func TestRunContext_GetMissing(t *testing.T) {
	rc := NewRunContext()
	if _, ok := rc.Get("absent"); ok {
		t.Fatalf("expected absent key")
	}
	if got := rc.GetString("absent"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestRunContext_KeysSorted(t *testing.T) {
	rc := NewRunContext()
	for _, key := range []string{"zebra", "alpha", "mango"} {
		if err := rc.Set(key, key); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	keys := rc.Keys()
	want := []string{"alpha", "mango", "zebra"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keys)
		}
	}
}

func TestRunContext_Decision(t *testing.T) {
	rc := NewRunContext()
	if _, ok := rc.Decision(); ok {
		t.Fatalf("expected no decision before routing")
	}
	decision := RoutingDecision{NeedsData: true, Urgency: UrgencyHigh, Mode: ExecDataOnly}
	if err := rc.Set(KeyRoutingDecision, decision); err != nil {
		t.Fatalf("set decision: %v", err)
	}
	got, ok := rc.Decision()
	if !ok || got != decision {
		t.Fatalf("expected stored decision, got %+v ok=%v", got, ok)
	}
}

func TestRunContext_FreshIDs(t *testing.T) {
	a, b := NewRunContext(), NewRunContext()
	if a.ID() == b.ID() {
		t.Fatalf("expected distinct run ids, both %q", a.ID())
	}
	if !strings.HasPrefix(a.ID(), "run-") {
		t.Fatalf("unexpected id format %q", a.ID())
	}
}
