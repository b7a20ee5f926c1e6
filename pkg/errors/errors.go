// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for deskmesh.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies deskmesh errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeDiscovery indicates an agent card could not be fetched or parsed.
	CodeDiscovery ErrorCode = "DISCOVERY_ERROR"

	// CodeRemoteAgent indicates a transport or protocol failure while
	// invoking a remote agent.
	CodeRemoteAgent ErrorCode = "REMOTE_AGENT_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeToolFailure indicates a tool execution failed.
	CodeToolFailure ErrorCode = "TOOL_FAILURE"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeUnauthorized indicates an operation outside an agent's allow-list.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
)

// MeshError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type MeshError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Recoverable bool
	StatusCode  int // For A2A/HTTP responses
}

// Error implements the error interface.
func (e *MeshError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *MeshError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *MeshError) MarshalJSON() ([]byte, error) {
	type Alias MeshError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new MeshError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *MeshError {
	return &MeshError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    make(map[string]interface{}),
		StatusCode: codeToStatusCode(code),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *MeshError) WithContext(key string, value interface{}) *MeshError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *MeshError) WithRecoverable(recoverable bool) *MeshError {
	e.Recoverable = recoverable
	return e
}

// AsMeshError attempts to convert an error to a MeshError.
// Returns the error as MeshError if it is one, or wraps it otherwise.
func AsMeshError(err error) *MeshError {
	if err == nil {
		return nil
	}
	if me, ok := err.(*MeshError); ok {
		return me
	}
	// Wrap unknown error as internal
	return New(CodeInternal, "wrapped error", err)
}

// HasCode reports whether err is a MeshError carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	me, ok := err.(*MeshError)
	return ok && me.Code == code
}

// codeToStatusCode maps error codes to HTTP status codes.
func codeToStatusCode(code ErrorCode) int {
	switch code {
	case CodeNotFound:
		return 404 // NOT_FOUND
	case CodeUnauthorized:
		return 403 // PERMISSION_DENIED
	case CodeInvalidInput:
		return 400 // INVALID_ARGUMENT
	case CodeTimeout:
		return 408 // DEADLINE_EXCEEDED
	case CodeDiscovery:
		return 502 // BAD_GATEWAY
	case CodeRemoteAgent:
		return 502 // BAD_GATEWAY
	default:
		return 500 // INTERNAL
	}
}
