package toolserver

import (
	"context"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/deskmesh/deskmesh/pkg/mcp"
)

func (s *Server) registerReportingTools() {
	s.mcp.RegisterTool(mcpgo.NewTool("get_ticket_stats",
		mcpgo.WithDescription("Get statistics about tickets including counts by status and priority."),
	), func(ctx context.Context, args map[string]interface{}) (*mcpgo.CallToolResult, error) {
		s.logCall("get_ticket_stats", args)
		stats, err := s.store.GetTicketStats(ctx)
		if err != nil {
			return failure(err)
		}
		return jsonResult(stats)
	})

	s.mcp.RegisterTool(mcpgo.NewTool("get_customer_stats",
		mcpgo.WithDescription("Get statistics about customers including total count and count by status."),
	), func(ctx context.Context, args map[string]interface{}) (*mcpgo.CallToolResult, error) {
		s.logCall("get_customer_stats", args)
		stats, err := s.store.GetCustomerStats(ctx)
		if err != nil {
			return failure(err)
		}
		return jsonResult(stats)
	})

	s.mcp.RegisterTool(mcpgo.NewTool("search_tickets",
		mcpgo.WithDescription("Search for tickets by keyword in the issue description."),
		mcpgo.WithString("keyword", mcpgo.Required(), mcpgo.Description("Search keyword")),
	), func(ctx context.Context, args map[string]interface{}) (*mcpgo.CallToolResult, error) {
		s.logCall("search_tickets", args)
		keyword := strArg(args, "keyword")
		if keyword == "" {
			return mcp.ErrorResult("keyword is required"), nil
		}
		tickets, err := s.store.SearchTickets(ctx, keyword)
		if err != nil {
			return failure(err)
		}
		return jsonResult(tickets)
	})
}
