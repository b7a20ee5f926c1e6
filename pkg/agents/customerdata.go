package agents

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/deskmesh/deskmesh/pkg/a2a/types"
)

// ToolCaller is the slice of an MCP toolset the agents need.
type ToolCaller interface {
	CallText(ctx context.Context, name string, args map[string]interface{}) (string, error)
}

// CustomerDataAgent answers data queries against the support database.
// It is deterministic: the reply is a pure function of the query text and
// the tool results.
type CustomerDataAgent struct {
	tools ToolCaller
	log   *slog.Logger
}

// NewCustomerDataAgent builds the agent over its granted toolset.
func NewCustomerDataAgent(tools ToolCaller, log *slog.Logger) *CustomerDataAgent {
	if log == nil {
		log = slog.Default()
	}
	return &CustomerDataAgent{tools: tools, log: log}
}

var idPattern = regexp.MustCompile(`\b\d+\b`)

func extractID(text string) (int64, bool) {
	match := idPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Execute answers one data query.
func (a *CustomerDataAgent) Execute(ctx context.Context, msg *types.Message) (*types.Message, error) {
	query := msg.Text()
	text := strings.ToLower(query)
	a.log.Info("data query", slog.String("query", query))

	answer, err := a.answer(ctx, text)
	if err != nil {
		return nil, err
	}
	return types.NewTextMessage(types.RoleAgent, answer, msg.ContextID), nil
}

func (a *CustomerDataAgent) answer(ctx context.Context, text string) (string, error) {
	id, hasID := extractID(text)

	switch {
	case strings.Contains(text, "stats") || strings.Contains(text, "statistics") || strings.Contains(text, "how many"):
		customerStats, err := a.tools.CallText(ctx, "get_customer_stats", nil)
		if err != nil {
			return "", err
		}
		ticketStats, err := a.tools.CallText(ctx, "get_ticket_stats", nil)
		if err != nil {
			return "", err
		}
		return "Customer statistics:\n" + customerStats + "\n\nTicket statistics:\n" + ticketStats, nil

	case hasID && strings.Contains(text, "ticket"):
		tickets, err := a.tools.CallText(ctx, "list_tickets", map[string]interface{}{"customer_id": id})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Tickets for customer %d:\n%s", id, tickets), nil

	case hasID:
		customer, err := a.tools.CallText(ctx, "get_customer", map[string]interface{}{"customer_id": id})
		if err != nil {
			return "", err
		}
		tickets, err := a.tools.CallText(ctx, "list_tickets", map[string]interface{}{"customer_id": id})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Customer %d:\n%s\n\nTickets:\n%s", id, customer, tickets), nil

	case strings.Contains(text, "search"):
		keyword := searchKeyword(text)
		if keyword == "" {
			return "Please provide a keyword to search tickets for.", nil
		}
		hits, err := a.tools.CallText(ctx, "search_tickets", map[string]interface{}{"keyword": keyword})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Tickets matching %q:\n%s", keyword, hits), nil

	case strings.Contains(text, "ticket"):
		tickets, err := a.tools.CallText(ctx, "list_tickets", nil)
		if err != nil {
			return "", err
		}
		return "All tickets:\n" + tickets, nil

	default:
		args := map[string]interface{}{}
		if strings.Contains(text, "active") {
			args["status"] = "active"
		} else if strings.Contains(text, "disabled") {
			args["status"] = "disabled"
		}
		customers, err := a.tools.CallText(ctx, "list_customers", args)
		if err != nil {
			return "", err
		}
		return "Customers:\n" + customers, nil
	}
}

// searchKeyword pulls the term after "search", "for" or "about".
func searchKeyword(text string) string {
	words := strings.Fields(text)
	for i, word := range words {
		if word == "search" || word == "for" || word == "about" {
			if i+1 < len(words) {
				return strings.Trim(words[i+1], `"'.,!?`)
			}
		}
	}
	return ""
}
