package orchestrator

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
)

// Well-known run context keys and placeholder values.
const (
	// KeyRoutingDecision holds the RoutingDecision written by the
	// dynamic-routed strategy before any stage runs.
	KeyRoutingDecision = "routing_decision"

	// Skipped marks a stage that was gated off without a network call.
	Skipped = "[skipped]"

	// Unavailable marks a stage whose invocation failed in parallel mode.
	Unavailable = "[unavailable]"
)

// RunContext is the per-query key/value store threading routing decisions
// and stage outputs through one orchestration. Keys are write-once: a
// value set by one stage is never mutated by a later stage. The mutex only
// exists so concurrently-invoked parallel stages can write their own,
// distinct keys; a RunContext is never shared across runs.
type RunContext struct {
	id string

	mu     sync.Mutex
	values map[string]interface{}
}

// NewRunContext creates an empty run context with a fresh run id.
func NewRunContext() *RunContext {
	return &RunContext{
		id:     newRunID(),
		values: make(map[string]interface{}),
	}
}

// ID returns the run id.
func (rc *RunContext) ID() string {
	return rc.id
}

// Set stores a value under key. Overwriting an existing key is an error:
// stage outputs are immutable once written.
func (rc *RunContext) Set(key string, value interface{}) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if _, exists := rc.values[key]; exists {
		return fmt.Errorf("run context key %q already written", key)
	}
	rc.values[key] = value
	return nil
}

// Get returns the value stored under key.
func (rc *RunContext) Get(key string) (interface{}, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	value, ok := rc.values[key]
	return value, ok
}

// GetString returns the string value stored under key, or "" if absent or
// not a string.
func (rc *RunContext) GetString(key string) string {
	value, ok := rc.Get(key)
	if !ok {
		return ""
	}
	text, _ := value.(string)
	return text
}

// Keys returns all written keys in sorted order.
func (rc *RunContext) Keys() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	keys := make([]string, 0, len(rc.values))
	for key := range rc.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Decision returns the routing decision written by the dynamic strategy,
// if any.
func (rc *RunContext) Decision() (RoutingDecision, bool) {
	value, ok := rc.Get(KeyRoutingDecision)
	if !ok {
		return RoutingDecision{}, false
	}
	decision, ok := value.(RoutingDecision)
	return decision, ok
}

func newRunID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "run-unknown"
	}
	return "run-" + hex.EncodeToString(buf)
}
