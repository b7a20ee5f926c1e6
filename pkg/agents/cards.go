package agents

import "github.com/deskmesh/deskmesh/pkg/a2a/agentcard"

// Agent names as they appear on capability cards and in pipelines.
const (
	CustomerDataName = "customer_data"
	SupportName      = "support_specialist"
)

// CustomerDataCard builds the capability card for the customer data agent
// served at url.
func CustomerDataCard(url string) *agentcard.AgentCard {
	return agentcard.Build(agentcard.Config{
		Name:        CustomerDataName,
		Description: "Looks up customers, tickets and account statistics from the support database.",
		Version:     "1.0.0",
		URL:         url,
		Skills: []agentcard.AgentSkill{
			{
				ID:          "customer_lookup",
				Name:        "Customer Lookup",
				Description: "Retrieve customer records by id and list or filter customer accounts.",
				Tags:        []string{"customers", "data"},
				Examples:    []string{"Get customer information for ID 5", "List all active customers"},
			},
			{
				ID:          "ticket_lookup",
				Name:        "Ticket Lookup",
				Description: "List and search support tickets, including per customer history.",
				Tags:        []string{"tickets", "data"},
				Examples:    []string{"Show open tickets for customer 12", "Search tickets about password"},
			},
			{
				ID:          "reporting",
				Name:        "Reporting",
				Description: "Aggregate customer and ticket statistics.",
				Tags:        []string{"stats"},
				Examples:    []string{"How many tickets are open?"},
			},
		},
	})
}

// SupportCard builds the capability card for the support specialist agent
// served at url.
func SupportCard(url string) *agentcard.AgentCard {
	return agentcard.Build(agentcard.Config{
		Name:        SupportName,
		Description: "Troubleshoots customer issues and files support tickets.",
		Version:     "1.0.0",
		URL:         url,
		Skills: []agentcard.AgentSkill{
			{
				ID:          "troubleshooting",
				Name:        "Troubleshooting",
				Description: "Categorize a reported problem and respond with first-line guidance.",
				Tags:        []string{"support"},
				Examples:    []string{"I can't log in to my account", "The dashboard is very slow"},
			},
			{
				ID:          "ticket_filing",
				Name:        "Ticket Filing",
				Description: "Create and update support tickets on behalf of a customer.",
				Tags:        []string{"support", "tickets"},
				Examples:    []string{"Customer 7 reports a billing error, open a ticket"},
			},
		},
	})
}
