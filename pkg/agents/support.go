package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deskmesh/deskmesh/pkg/a2a/types"
)

// SupportAgent categorizes reported problems, replies with first-line
// guidance and files a ticket when the query names a customer.
type SupportAgent struct {
	tools ToolCaller
	log   *slog.Logger
}

// NewSupportAgent builds the agent over its granted toolset.
func NewSupportAgent(tools ToolCaller, log *slog.Logger) *SupportAgent {
	if log == nil {
		log = slog.Default()
	}
	return &SupportAgent{tools: tools, log: log}
}

type issueCategory struct {
	name     string
	terms    []string
	guidance string
}

// Categories are checked in order; the first match wins.
var categories = []issueCategory{
	{
		name:     "authentication",
		terms:    []string{"login", "log in", "password", "locked out", "sign in", "credentials"},
		guidance: "Try resetting your password from the sign-in page. If the account stays locked, we will reset it from our side.",
	},
	{
		name:     "billing",
		terms:    []string{"billing", "payment", "invoice", "charge", "overcharge", "refund"},
		guidance: "Our billing team will review the charge. Recent invoices are available under account settings.",
	},
	{
		name:     "performance",
		terms:    []string{"slow", "timeout", "performance", "lag", "hang", "freezes"},
		guidance: "Clear the browser cache and retry. We are checking service health for degradations on our side.",
	},
	{
		name:     "export",
		terms:    []string{"export", "report", "download", "csv"},
		guidance: "Exports can take a few minutes for large date ranges. Retry with a shorter range while we investigate.",
	},
	{
		name:     "feature",
		terms:    []string{"feature", "request", "would be nice", "suggestion"},
		guidance: "Thanks for the suggestion. We have logged it for the product team.",
	},
}

var highPriorityTerms = []string{"urgent", "immediately", "asap", "critical", "emergency", "blocked", "cannot work"}

func categorize(text string) (string, string) {
	for _, c := range categories {
		for _, term := range c.terms {
			if strings.Contains(text, term) {
				return c.name, c.guidance
			}
		}
	}
	return "general", "We have recorded the issue and a support specialist will follow up."
}

func ticketPriority(text string) string {
	for _, term := range highPriorityTerms {
		if strings.Contains(text, term) {
			return "high"
		}
	}
	return "medium"
}

// Execute handles one support request.
func (a *SupportAgent) Execute(ctx context.Context, msg *types.Message) (*types.Message, error) {
	query := msg.Text()
	text := strings.ToLower(query)

	category, guidance := categorize(text)
	priority := ticketPriority(text)
	a.log.Info("support request",
		slog.String("category", category),
		slog.String("priority", priority))

	var b strings.Builder
	fmt.Fprintf(&b, "Issue category: %s\n%s", category, guidance)

	if customerID, ok := extractID(text); ok {
		ticket, err := a.tools.CallText(ctx, "create_ticket", map[string]interface{}{
			"customer_id": customerID,
			"issue":       query,
			"priority":    priority,
		})
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "\n\nFiled a %s priority ticket for customer %d:\n%s", priority, customerID, ticket)
	} else {
		b.WriteString("\n\nShare your customer id and I will open a ticket for this issue.")
	}

	return types.NewTextMessage(types.RoleAgent, b.String(), msg.ContextID), nil
}
