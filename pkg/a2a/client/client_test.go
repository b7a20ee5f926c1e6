package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deskmesh/deskmesh/pkg/a2a/types"
	"github.com/deskmesh/deskmesh/pkg/errors"
)

func TestSendMessage_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/message:send" {
			http.NotFound(w, r)
			return
		}
		var req types.SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		reply := types.NewTextMessage(types.RoleAgent, "echo: "+req.Message.Text(), req.Message.ContextID)
		_ = json.NewEncoder(w).Encode(&types.SendMessageResponse{Message: reply})
	}))
	defer server.Close()

	c := New(server.URL)
	req := &types.SendMessageRequest{Message: types.NewTextMessage(types.RoleUser, "hello", "ctx-1")}
	reply, err := c.SendMessage(context.Background(), req)
	if err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	if got := reply.Text(); got != "echo: hello" {
		t.Fatalf("expected echo reply, got %q", got)
	}
}

func TestSendMessage_RemoteFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL)
	req := &types.SendMessageRequest{Message: types.NewTextMessage(types.RoleUser, "hello", "")}
	_, err := c.SendMessage(context.Background(), req)
	if !errors.HasCode(err, errors.CodeRemoteAgent) {
		t.Fatalf("expected remote agent error, got %v", err)
	}
}

func TestSendMessage_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := New(server.URL)
	req := &types.SendMessageRequest{Message: types.NewTextMessage(types.RoleUser, "hello", "")}
	_, err := c.SendMessage(context.Background(), req)
	if !errors.HasCode(err, errors.CodeRemoteAgent) {
		t.Fatalf("expected remote agent error for refused connection, got %v", err)
	}
}

func TestSendMessage_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := New(server.URL, WithTimeout(20*time.Millisecond))
	req := &types.SendMessageRequest{Message: types.NewTextMessage(types.RoleUser, "hello", "")}
	_, err := c.SendMessage(context.Background(), req)
	if !errors.HasCode(err, errors.CodeTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestSendStreamingMessage_FoldsPartialsInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/message:stream" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for i, chunk := range []string{"first ", "second ", "third"} {
			event := types.StreamEvent{
				Message: types.NewTextMessage(types.RoleAgent, chunk, "ctx-s"),
				Final:   i == 2,
			}
			payload, _ := json.Marshal(event)
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(payload)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}))
	defer server.Close()

	c := New(server.URL)
	req := &types.SendMessageRequest{Message: types.NewTextMessage(types.RoleUser, "go", "")}
	reply, err := c.SendStreamingMessage(context.Background(), req)
	if err != nil {
		t.Fatalf("SendStreamingMessage error: %v", err)
	}
	if got := reply.Text(); got != "first second third" {
		t.Fatalf("expected ordered fold, got %q", got)
	}
	if reply.ContextID != "ctx-s" {
		t.Fatalf("expected context id from stream, got %q", reply.ContextID)
	}
}

func TestSendStreamingMessage_ErrorEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		payload, _ := json.Marshal(types.StreamEvent{Final: true, Error: "agent exploded"})
		_, _ = w.Write([]byte("data: "))
		_, _ = w.Write(payload)
		_, _ = w.Write([]byte("\n\n"))
	}))
	defer server.Close()

	c := New(server.URL)
	req := &types.SendMessageRequest{Message: types.NewTextMessage(types.RoleUser, "go", "")}
	_, err := c.SendStreamingMessage(context.Background(), req)
	if !errors.HasCode(err, errors.CodeRemoteAgent) {
		t.Fatalf("expected remote agent error, got %v", err)
	}
}

func TestSendStreamingMessage_TruncatedStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		payload, _ := json.Marshal(types.StreamEvent{
			Message: types.NewTextMessage(types.RoleAgent, "partial", ""),
		})
		_, _ = w.Write([]byte("data: "))
		_, _ = w.Write(payload)
		_, _ = w.Write([]byte("\n\n"))
		// Connection closes without a final event.
	}))
	defer server.Close()

	c := New(server.URL)
	req := &types.SendMessageRequest{Message: types.NewTextMessage(types.RoleUser, "go", "")}
	_, err := c.SendStreamingMessage(context.Background(), req)
	if !errors.HasCode(err, errors.CodeRemoteAgent) {
		t.Fatalf("expected remote agent error for truncated stream, got %v", err)
	}
}
