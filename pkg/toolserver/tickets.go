package toolserver

import (
	"context"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/deskmesh/deskmesh/pkg/mcp"
	"github.com/deskmesh/deskmesh/pkg/store"
)

func (s *Server) registerTicketTools() {
	s.mcp.RegisterTool(mcpgo.NewTool("get_ticket",
		mcpgo.WithDescription("Retrieve a specific ticket by ID. Returns ticket details along with customer information."),
		mcpgo.WithNumber("ticket_id", mcpgo.Required(), mcpgo.Description("The ticket's ID")),
	), func(ctx context.Context, args map[string]interface{}) (*mcpgo.CallToolResult, error) {
		s.logCall("get_ticket", args)
		id, ok := intArg(args, "ticket_id")
		if !ok {
			return mcp.ErrorResult("ticket_id is required"), nil
		}
		ticket, err := s.store.GetTicket(ctx, id)
		if err != nil {
			return failure(err)
		}
		return jsonResult(ticket)
	})

	s.mcp.RegisterTool(mcpgo.NewTool("list_tickets",
		mcpgo.WithDescription("List all tickets with optional filters. Valid status: 'open', 'in_progress', 'resolved'. Valid priority: 'low', 'medium', 'high'. Can also filter by customer_id."),
		mcpgo.WithString("status", mcpgo.Description("Filter by status")),
		mcpgo.WithString("priority", mcpgo.Description("Filter by priority")),
		mcpgo.WithNumber("customer_id", mcpgo.Description("Filter by customer ID")),
	), func(ctx context.Context, args map[string]interface{}) (*mcpgo.CallToolResult, error) {
		s.logCall("list_tickets", args)
		filter := store.TicketFilter{
			Status:   strArg(args, "status"),
			Priority: strArg(args, "priority"),
		}
		if id, ok := intArg(args, "customer_id"); ok {
			filter.CustomerID = id
		}
		tickets, err := s.store.ListTickets(ctx, filter)
		if err != nil {
			return failure(err)
		}
		return jsonResult(tickets)
	})

	s.mcp.RegisterTool(mcpgo.NewTool("create_ticket",
		mcpgo.WithDescription("Create a new support ticket for a customer. Requires customer ID and issue description. Valid priority: 'low', 'medium', 'high'. Valid status: 'open', 'in_progress', 'resolved'."),
		mcpgo.WithNumber("customer_id", mcpgo.Required(), mcpgo.Description("The customer's ID")),
		mcpgo.WithString("issue", mcpgo.Required(), mcpgo.Description("Description of the issue")),
		mcpgo.WithString("priority", mcpgo.Description("Ticket priority, defaults to medium")),
		mcpgo.WithString("status", mcpgo.Description("Ticket status, defaults to open")),
	), func(ctx context.Context, args map[string]interface{}) (*mcpgo.CallToolResult, error) {
		s.logCall("create_ticket", args)
		id, ok := intArg(args, "customer_id")
		if !ok {
			return mcp.ErrorResult("customer_id is required"), nil
		}
		ticket, err := s.store.CreateTicket(ctx, id,
			strArg(args, "issue"), strArg(args, "priority"), strArg(args, "status"))
		if err != nil {
			return failure(err)
		}
		return jsonResult(ticket)
	})

	s.mcp.RegisterTool(mcpgo.NewTool("update_ticket_status",
		mcpgo.WithDescription("Update the status of an existing ticket. Valid status: 'open', 'in_progress', 'resolved'."),
		mcpgo.WithNumber("ticket_id", mcpgo.Required(), mcpgo.Description("The ticket's ID")),
		mcpgo.WithString("status", mcpgo.Required(), mcpgo.Description("New status")),
	), func(ctx context.Context, args map[string]interface{}) (*mcpgo.CallToolResult, error) {
		s.logCall("update_ticket_status", args)
		id, ok := intArg(args, "ticket_id")
		if !ok {
			return mcp.ErrorResult("ticket_id is required"), nil
		}
		ticket, err := s.store.UpdateTicketStatus(ctx, id, strArg(args, "status"))
		if err != nil {
			return failure(err)
		}
		return jsonResult(ticket)
	})

	s.mcp.RegisterTool(mcpgo.NewTool("update_ticket_priority",
		mcpgo.WithDescription("Update the priority level of an existing ticket. Valid priority: 'low', 'medium', 'high'."),
		mcpgo.WithNumber("ticket_id", mcpgo.Required(), mcpgo.Description("The ticket's ID")),
		mcpgo.WithString("priority", mcpgo.Required(), mcpgo.Description("New priority")),
	), func(ctx context.Context, args map[string]interface{}) (*mcpgo.CallToolResult, error) {
		s.logCall("update_ticket_priority", args)
		id, ok := intArg(args, "ticket_id")
		if !ok {
			return mcp.ErrorResult("ticket_id is required"), nil
		}
		ticket, err := s.store.UpdateTicketPriority(ctx, id, strArg(args, "priority"))
		if err != nil {
			return failure(err)
		}
		return jsonResult(ticket)
	})

	s.mcp.RegisterTool(mcpgo.NewTool("delete_ticket",
		mcpgo.WithDescription("Delete a ticket permanently. This action cannot be undone."),
		mcpgo.WithNumber("ticket_id", mcpgo.Required(), mcpgo.Description("The ticket's ID")),
	), func(ctx context.Context, args map[string]interface{}) (*mcpgo.CallToolResult, error) {
		s.logCall("delete_ticket", args)
		id, ok := intArg(args, "ticket_id")
		if !ok {
			return mcp.ErrorResult("ticket_id is required"), nil
		}
		deleted, err := s.store.DeleteTicket(ctx, id)
		if err != nil {
			return failure(err)
		}
		return jsonResult(map[string]bool{"deleted": deleted})
	})
}
