// Package server exposes an HTTP+JSON binding for A2A agents.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/deskmesh/deskmesh/pkg/a2a/agentcard"
	"github.com/deskmesh/deskmesh/pkg/a2a/types"
	"github.com/deskmesh/deskmesh/pkg/errors"
)

// Executor handles one inbound message and produces the terminal reply.
type Executor interface {
	Execute(ctx context.Context, msg *types.Message) (*types.Message, error)
}

// StreamingExecutor emits an ordered sequence of partial events instead of
// a single terminal reply. The last event must have Final set.
type StreamingExecutor interface {
	ExecuteStream(ctx context.Context, msg *types.Message, send func(*types.StreamEvent) error) error
}

// Server routes A2A HTTP+JSON requests to an Executor and publishes the
// agent's card at the well-known discovery path.
type Server struct {
	card *agentcard.AgentCard
	exec Executor
	log  *slog.Logger
}

// New creates a server for the given card and executor.
func New(card *agentcard.AgentCard, exec Executor, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{card: card, exec: exec, log: log}
}

// Handler returns the HTTP handler serving discovery and invocation routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(agentcard.WellKnownPath, agentcard.PublishHandler(s.card))
	mux.HandleFunc("/message:send", s.handleSendMessage)
	mux.HandleFunc("/message:stream", s.handleSendStreamingMessage)
	return mux
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	req, err := decodeRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	reply, err := s.exec.Execute(r.Context(), req.Message)
	if err != nil {
		s.log.ErrorContext(r.Context(), "agent execution failed",
			"agent", s.card.Name, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, &types.SendMessageResponse{Message: reply})
}

func (s *Server) handleSendStreamingMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	req, err := decodeRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, status.Error(codes.Internal, "streaming not supported"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	stream := &sseStream{w: w, f: flusher}

	if streaming, ok := s.exec.(StreamingExecutor); ok {
		if err := streaming.ExecuteStream(r.Context(), req.Message, stream.Send); err != nil {
			s.log.ErrorContext(r.Context(), "agent stream failed",
				"agent", s.card.Name, "error", err)
			_ = stream.SendFailure(err)
		}
		return
	}

	// Non-streaming executors reply with a single final event.
	reply, err := s.exec.Execute(r.Context(), req.Message)
	if err != nil {
		s.log.ErrorContext(r.Context(), "agent execution failed",
			"agent", s.card.Name, "error", err)
		_ = stream.SendFailure(err)
		return
	}
	_ = stream.Send(&types.StreamEvent{Message: reply, Final: true})
}

func decodeRequest(r *http.Request) (*types.SendMessageRequest, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid body")
	}
	if len(body) == 0 {
		return nil, status.Error(codes.InvalidArgument, "empty body")
	}
	req := &types.SendMessageRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.Message == nil || strings.TrimSpace(req.Message.Text()) == "" {
		return nil, status.Error(codes.InvalidArgument, "message has no text")
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		writeError(w, status.Error(codes.Internal, err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

func writeError(w http.ResponseWriter, err error) {
	st := grpcStatus(err)
	body := map[string]interface{}{
		"type":   "about:blank",
		"title":  st.Code().String(),
		"detail": st.Message(),
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(httpStatusFromCode(st.Code()))
	_ = json.NewEncoder(w).Encode(body)
}

func grpcStatus(err error) *status.Status {
	if st, ok := status.FromError(err); ok {
		return st
	}
	me := errors.AsMeshError(err)
	switch me.Code {
	case errors.CodeInvalidInput:
		return status.New(codes.InvalidArgument, me.Error())
	case errors.CodeNotFound:
		return status.New(codes.NotFound, me.Error())
	case errors.CodeUnauthorized:
		return status.New(codes.PermissionDenied, me.Error())
	case errors.CodeTimeout:
		return status.New(codes.DeadlineExceeded, me.Error())
	case errors.CodeDiscovery, errors.CodeRemoteAgent:
		return status.New(codes.Unavailable, me.Error())
	default:
		return status.New(codes.Internal, me.Error())
	}
}

func httpStatusFromCode(code codes.Code) int {
	switch code {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.DeadlineExceeded:
		return http.StatusRequestTimeout
	case codes.Unavailable:
		return http.StatusBadGateway
	case codes.FailedPrecondition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type sseStream struct {
	w http.ResponseWriter
	f http.Flusher
}

// Send writes one event in SSE framing and flushes it immediately.
func (s *sseStream) Send(event *types.StreamEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := s.w.Write(payload); err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("\n\n")); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

// SendFailure closes the stream with a final error event, so clients
// never hang on a half-open stream.
func (s *sseStream) SendFailure(err error) error {
	return s.Send(&types.StreamEvent{Final: true, Error: grpcStatus(err).Message()})
}
