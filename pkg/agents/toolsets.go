// Package agents implements the mesh worker agents and their A2A cards.
package agents

// Tool grants per agent role. The customer data agent gets the full tool
// surface; the support agent loses account administration and destructive
// operations.
var (
	CustomerDataTools = []string{
		"get_customer", "list_customers", "add_customer", "update_customer",
		"disable_customer", "activate_customer",
		"get_ticket", "list_tickets", "create_ticket",
		"update_ticket_status", "update_ticket_priority", "delete_ticket",
		"get_ticket_stats", "get_customer_stats", "search_tickets",
	}

	SupportTools = []string{
		"get_customer", "list_customers",
		"get_ticket", "list_tickets", "create_ticket",
		"update_ticket_status", "update_ticket_priority",
		"get_ticket_stats", "get_customer_stats", "search_tickets",
	}
)
