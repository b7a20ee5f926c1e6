// Package toolserver exposes the support database as MCP tools.
package toolserver

import (
	"encoding/json"
	"log/slog"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/deskmesh/deskmesh/pkg/mcp"
	"github.com/deskmesh/deskmesh/pkg/store"
)

// ToolNames lists every tool the server registers, in registration order.
var ToolNames = []string{
	"get_customer", "list_customers", "add_customer", "update_customer",
	"disable_customer", "activate_customer",
	"get_ticket", "list_tickets", "create_ticket",
	"update_ticket_status", "update_ticket_priority", "delete_ticket",
	"get_ticket_stats", "get_customer_stats", "search_tickets",
}

// Server wires the customer support tools onto an MCP server.
type Server struct {
	mcp   *mcp.Server
	store *store.Store
	log   *slog.Logger
}

// New builds the tool server over the given store and registers all
// tools.
func New(st *store.Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		mcp:   mcp.NewServer("customer-support-server", "1.0.0"),
		store: st,
		log:   log,
	}
	s.registerCustomerTools()
	s.registerTicketTools()
	s.registerReportingTools()
	return s
}

// MCP returns the underlying MCP server wrapper.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// ServeStreamableHTTP serves tools over streamable HTTP on addr.
func (s *Server) ServeStreamableHTTP(addr string) error {
	s.log.Info("tool server listening", slog.String("addr", addr), slog.Int("tools", len(ToolNames)))
	return s.mcp.ServeStreamableHTTP(addr)
}

// ServeStdio serves tools over stdio.
func (s *Server) ServeStdio() error {
	return s.mcp.ServeStdio()
}

func (s *Server) logCall(name string, args map[string]interface{}) {
	s.log.Info("tool call", slog.String("tool", name), slog.Any("args", args))
}

func jsonResult(v interface{}) (*mcpgo.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.ErrorResult("failed to encode result: " + err.Error()), nil
	}
	return mcp.TextResult(string(data)), nil
}

func failure(err error) (*mcpgo.CallToolResult, error) {
	return mcp.ErrorResult(err.Error()), nil
}

// Argument decoding. JSON numbers arrive as float64.

func intArg(args map[string]interface{}, key string) (int64, bool) {
	switch v := args[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

func strArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func strPtrArg(args map[string]interface{}, key string) *string {
	if v, ok := args[key].(string); ok {
		return &v
	}
	return nil
}
