// SPDX-License-Identifier: Apache-2.0
package errors

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("network timeout")
	me := New(CodeTimeout, "agent invocation timed out", cause)

	if me.Code != CodeTimeout {
		t.Errorf("expected CodeTimeout, got %v", me.Code)
	}
	if me.Message != "agent invocation timed out" {
		t.Errorf("expected message 'agent invocation timed out', got %q", me.Message)
	}
	if me.Err != cause {
		t.Errorf("expected cause to be preserved")
	}
	if !errors.Is(me, cause) {
		t.Errorf("expected errors.Is to work with wrapped error")
	}
}

func TestWithContext(t *testing.T) {
	me := New(CodeToolFailure, "tool failed", nil)
	me.WithContext("tool", "get_customer").
		WithContext("args", map[string]interface{}{"customer_id": 5})

	if me.Context["tool"] != "get_customer" {
		t.Errorf("expected context tool to be 'get_customer'")
	}
	if me.Context["args"] == nil {
		t.Errorf("expected context args to be set")
	}
}

func TestWithRecoverable(t *testing.T) {
	me := New(CodeRemoteAgent, "network error", nil)
	if me.Recoverable {
		t.Errorf("expected recoverable to be false by default")
	}

	me.WithRecoverable(true)
	if !me.Recoverable {
		t.Errorf("expected recoverable to be true after WithRecoverable")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		me       *MeshError
		expected string
	}{
		{
			name:     "with cause",
			me:       New(CodeTimeout, "operation timed out", errors.New("deadline exceeded")),
			expected: "[TIMEOUT] operation timed out: deadline exceeded",
		},
		{
			name:     "without cause",
			me:       New(CodeDiscovery, "agent card unreachable", nil),
			expected: "[DISCOVERY_ERROR] agent card unreachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.me.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestAsMeshError(t *testing.T) {
	me := New(CodeRemoteAgent, "connection refused", nil)
	if got := AsMeshError(me); got != me {
		t.Errorf("expected same error back")
	}

	plain := errors.New("plain error")
	wrapped := AsMeshError(plain)
	if wrapped.Code != CodeInternal {
		t.Errorf("expected plain errors to wrap as CodeInternal, got %v", wrapped.Code)
	}
	if !errors.Is(wrapped, plain) {
		t.Errorf("expected cause chain to be preserved")
	}

	if AsMeshError(nil) != nil {
		t.Errorf("expected nil for nil error")
	}
}

func TestHasCode(t *testing.T) {
	me := New(CodeTimeout, "slow agent", nil)
	if !HasCode(me, CodeTimeout) {
		t.Errorf("expected HasCode to match")
	}
	if HasCode(me, CodeRemoteAgent) {
		t.Errorf("expected HasCode to reject other codes")
	}
	if HasCode(errors.New("plain"), CodeTimeout) {
		t.Errorf("expected HasCode to reject plain errors")
	}
}

func TestMarshalJSON(t *testing.T) {
	me := New(CodeDiscovery, "malformed agent card", errors.New("missing name"))
	payload, err := json.Marshal(me)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if decoded["code"] != string(CodeDiscovery) {
		t.Errorf("expected code %q in JSON, got %v", CodeDiscovery, decoded["code"])
	}
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		status int
	}{
		{CodeNotFound, 404},
		{CodeInvalidInput, 400},
		{CodeTimeout, 408},
		{CodeUnauthorized, 403},
		{CodeDiscovery, 502},
		{CodeRemoteAgent, 502},
		{CodeInternal, 500},
	}
	for _, tt := range tests {
		if got := New(tt.code, "x", nil).StatusCode; got != tt.status {
			t.Errorf("code %s: expected status %d, got %d", tt.code, tt.status, got)
		}
	}
}
