package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/deskmesh/deskmesh/pkg/errors"
)

// ToolCaller abstracts MCP tool discovery and execution so toolsets can
// be tested without a live server.
type ToolCaller interface {
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error)
}

// Toolset is an allow-listed view over one MCP server. Agents hold a
// toolset, not the raw client, so a worker can never reach tools outside
// its grant.
type Toolset struct {
	caller  ToolCaller
	allowed map[string]bool
}

// NewToolset builds a toolset over caller restricted to the named tools.
// An empty name list allows every tool the server exposes.
func NewToolset(caller ToolCaller, names []string) *Toolset {
	var allowed map[string]bool
	if len(names) > 0 {
		allowed = make(map[string]bool, len(names))
		for _, name := range names {
			allowed[name] = true
		}
	}
	return &Toolset{caller: caller, allowed: allowed}
}

// Allowed reports whether the toolset grants access to name.
func (ts *Toolset) Allowed(name string) bool {
	if ts.allowed == nil {
		return true
	}
	return ts.allowed[name]
}

// Tools lists the server tools visible through this toolset.
func (ts *Toolset) Tools(ctx context.Context) ([]mcp.Tool, error) {
	tools, err := ts.caller.ListTools(ctx)
	if err != nil {
		return nil, errors.New(errors.CodeToolFailure, "failed to list tools", err)
	}
	if ts.allowed == nil {
		return tools, nil
	}
	visible := make([]mcp.Tool, 0, len(tools))
	for _, tool := range tools {
		if ts.allowed[tool.Name] {
			visible = append(visible, tool)
		}
	}
	return visible, nil
}

// CallText invokes a granted tool and returns its text content. Calls to
// tools outside the grant are refused locally without touching the server.
func (ts *Toolset) CallText(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	if !ts.Allowed(name) {
		return "", errors.New(errors.CodeUnauthorized,
			fmt.Sprintf("tool %q is not in this agent's toolset", name), nil)
	}
	result, err := ts.caller.CallTool(ctx, name, args)
	if err != nil {
		return "", errors.New(errors.CodeToolFailure,
			fmt.Sprintf("tool %q call failed", name), err)
	}
	text := extractText(result)
	if result.IsError {
		return "", errors.New(errors.CodeToolFailure,
			fmt.Sprintf("tool %q returned an error: %s", name, text), nil)
	}
	return text, nil
}

func extractText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	var parts []string
	for _, item := range result.Content {
		switch content := item.(type) {
		case mcp.TextContent:
			parts = append(parts, content.Text)
		case *mcp.TextContent:
			parts = append(parts, content.Text)
		}
	}
	return strings.Join(parts, "\n")
}
