package toolserver

import (
	"context"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/deskmesh/deskmesh/pkg/mcp"
	"github.com/deskmesh/deskmesh/pkg/store"
)

func (s *Server) registerCustomerTools() {
	s.mcp.RegisterTool(mcpgo.NewTool("get_customer",
		mcpgo.WithDescription("Retrieve a specific customer by their ID. Returns customer details including name, email, phone, status, and timestamps."),
		mcpgo.WithNumber("customer_id", mcpgo.Required(), mcpgo.Description("The customer's ID")),
	), func(ctx context.Context, args map[string]interface{}) (*mcpgo.CallToolResult, error) {
		s.logCall("get_customer", args)
		id, ok := intArg(args, "customer_id")
		if !ok {
			return mcp.ErrorResult("customer_id is required"), nil
		}
		customer, err := s.store.GetCustomer(ctx, id)
		if err != nil {
			return failure(err)
		}
		return jsonResult(customer)
	})

	s.mcp.RegisterTool(mcpgo.NewTool("list_customers",
		mcpgo.WithDescription("List all customers with optional status filter. Returns a list of all customers sorted by name. Valid status values: 'active', 'disabled'."),
		mcpgo.WithString("status", mcpgo.Description("Optional status filter")),
	), func(ctx context.Context, args map[string]interface{}) (*mcpgo.CallToolResult, error) {
		s.logCall("list_customers", args)
		customers, err := s.store.ListCustomers(ctx, strArg(args, "status"))
		if err != nil {
			return failure(err)
		}
		return jsonResult(customers)
	})

	s.mcp.RegisterTool(mcpgo.NewTool("add_customer",
		mcpgo.WithDescription("Create a new customer record. Requires a name and optionally email, phone, and status ('active' or 'disabled')."),
		mcpgo.WithString("name", mcpgo.Required(), mcpgo.Description("Customer's name")),
		mcpgo.WithString("email", mcpgo.Description("Customer's email")),
		mcpgo.WithString("phone", mcpgo.Description("Customer's phone number")),
		mcpgo.WithString("status", mcpgo.Description("Customer status, defaults to active")),
	), func(ctx context.Context, args map[string]interface{}) (*mcpgo.CallToolResult, error) {
		s.logCall("add_customer", args)
		customer, err := s.store.AddCustomer(ctx,
			strArg(args, "name"), strArg(args, "email"), strArg(args, "phone"), strArg(args, "status"))
		if err != nil {
			return failure(err)
		}
		return jsonResult(customer)
	})

	s.mcp.RegisterTool(mcpgo.NewTool("update_customer",
		mcpgo.WithDescription("Update an existing customer's information. Provide the customer ID and any fields to update."),
		mcpgo.WithNumber("customer_id", mcpgo.Required(), mcpgo.Description("The customer's ID")),
		mcpgo.WithString("name", mcpgo.Description("New name")),
		mcpgo.WithString("email", mcpgo.Description("New email")),
		mcpgo.WithString("phone", mcpgo.Description("New phone")),
	), func(ctx context.Context, args map[string]interface{}) (*mcpgo.CallToolResult, error) {
		s.logCall("update_customer", args)
		id, ok := intArg(args, "customer_id")
		if !ok {
			return mcp.ErrorResult("customer_id is required"), nil
		}
		customer, err := s.store.UpdateCustomer(ctx, id, store.CustomerUpdate{
			Name:  strPtrArg(args, "name"),
			Email: strPtrArg(args, "email"),
			Phone: strPtrArg(args, "phone"),
		})
		if err != nil {
			return failure(err)
		}
		return jsonResult(customer)
	})

	s.mcp.RegisterTool(mcpgo.NewTool("disable_customer",
		mcpgo.WithDescription("Disable a customer account. The customer will be marked as 'disabled' but not deleted."),
		mcpgo.WithNumber("customer_id", mcpgo.Required(), mcpgo.Description("The customer's ID")),
	), func(ctx context.Context, args map[string]interface{}) (*mcpgo.CallToolResult, error) {
		s.logCall("disable_customer", args)
		id, ok := intArg(args, "customer_id")
		if !ok {
			return mcp.ErrorResult("customer_id is required"), nil
		}
		customer, err := s.store.DisableCustomer(ctx, id)
		if err != nil {
			return failure(err)
		}
		return jsonResult(customer)
	})

	s.mcp.RegisterTool(mcpgo.NewTool("activate_customer",
		mcpgo.WithDescription("Activate a previously disabled customer account."),
		mcpgo.WithNumber("customer_id", mcpgo.Required(), mcpgo.Description("The customer's ID")),
	), func(ctx context.Context, args map[string]interface{}) (*mcpgo.CallToolResult, error) {
		s.logCall("activate_customer", args)
		id, ok := intArg(args, "customer_id")
		if !ok {
			return mcp.ErrorResult("customer_id is required"), nil
		}
		customer, err := s.store.ActivateCustomer(ctx, id)
		if err != nil {
			return failure(err)
		}
		return jsonResult(customer)
	})
}
