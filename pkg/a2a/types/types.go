// Package types defines the JSON wire format for the deskmesh A2A binding.
package types

import (
	"strings"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Part is one content fragment of a message. Only text parts are used by
// the orchestration core; data parts carry structured payloads.
type Part struct {
	Text string                 `json:"text,omitempty"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// Message is a single A2A message exchanged between agents.
type Message struct {
	MessageID string `json:"messageId"`
	ContextID string `json:"contextId,omitempty"`
	TaskID    string `json:"taskId,omitempty"`
	Role      Role   `json:"role"`
	Parts     []Part `json:"parts"`
}

// NewTextMessage builds a message with a single text part.
func NewTextMessage(role Role, text, contextID string) *Message {
	return &Message{
		MessageID: uuid.NewString(),
		ContextID: contextID,
		Role:      role,
		Parts:     []Part{{Text: text}},
	}
}

// Text concatenates all text parts in order.
func (m *Message) Text() string {
	if m == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range m.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// SendMessageRequest is the envelope for message:send and message:stream.
type SendMessageRequest struct {
	Message  *Message               `json:"message"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// SendMessageResponse carries the terminal reply for message:send.
type SendMessageResponse struct {
	Message *Message `json:"message"`
}

// StreamEvent is one element of a message:stream response. Events arrive
// in order; the event with Final set closes the stream. A non-empty Error
// marks the stream as failed on the serving side.
type StreamEvent struct {
	Message *Message `json:"message,omitempty"`
	Final   bool     `json:"final,omitempty"`
	Error   string   `json:"error,omitempty"`
}
