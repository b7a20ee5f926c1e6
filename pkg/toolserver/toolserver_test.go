package toolserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/deskmesh/deskmesh/pkg/mcp"
	"github.com/deskmesh/deskmesh/pkg/store"
)

func newTestSetup(t *testing.T) (*store.Store, *mcp.Client) {
	t.Helper()
	st, err := store.Open(":memory:", nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	srv := New(st, nil)
	httpServer := srv.MCP().TestServer()
	t.Cleanup(httpServer.Close)

	client, err := mcp.NewClientWithStreamableHTTP(httpServer.URL)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return st, client
}

func TestServer_ExposesAllTools(t *testing.T) {
	_, client := newTestSetup(t)

	tools, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	if len(tools) != len(ToolNames) {
		t.Fatalf("expected %d tools, got %d", len(ToolNames), len(tools))
	}
	seen := make(map[string]bool, len(tools))
	for _, tool := range tools {
		seen[tool.Name] = true
	}
	for _, name := range ToolNames {
		if !seen[name] {
			t.Fatalf("tool %q not registered", name)
		}
	}
}

func TestServer_CustomerLifecycle(t *testing.T) {
	_, client := newTestSetup(t)
	ctx := context.Background()
	ts := mcp.NewToolset(client, nil)

	created, err := ts.CallText(ctx, "add_customer", map[string]interface{}{
		"name":  "Alice",
		"email": "alice@example.com",
	})
	if err != nil {
		t.Fatalf("add_customer: %v", err)
	}
	var customer store.Customer
	if err := json.Unmarshal([]byte(created), &customer); err != nil {
		t.Fatalf("decode customer: %v", err)
	}

	got, err := ts.CallText(ctx, "get_customer", map[string]interface{}{
		"customer_id": customer.ID,
	})
	if err != nil {
		t.Fatalf("get_customer: %v", err)
	}
	if !strings.Contains(got, "Alice") {
		t.Fatalf("expected customer payload, got %q", got)
	}

	disabled, err := ts.CallText(ctx, "disable_customer", map[string]interface{}{
		"customer_id": customer.ID,
	})
	if err != nil {
		t.Fatalf("disable_customer: %v", err)
	}
	if !strings.Contains(disabled, `"status": "disabled"`) {
		t.Fatalf("expected disabled status, got %q", disabled)
	}
}

func TestServer_TicketLifecycle(t *testing.T) {
	st, client := newTestSetup(t)
	ctx := context.Background()
	ts := mcp.NewToolset(client, nil)

	customer, err := st.AddCustomer(ctx, "Bob", "", "", "")
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	created, err := ts.CallText(ctx, "create_ticket", map[string]interface{}{
		"customer_id": customer.ID,
		"issue":       "cannot export reports",
		"priority":    "high",
	})
	if err != nil {
		t.Fatalf("create_ticket: %v", err)
	}
	var ticket store.Ticket
	if err := json.Unmarshal([]byte(created), &ticket); err != nil {
		t.Fatalf("decode ticket: %v", err)
	}
	if ticket.Priority != "high" || ticket.CustomerName != "Bob" {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}

	updated, err := ts.CallText(ctx, "update_ticket_status", map[string]interface{}{
		"ticket_id": ticket.ID,
		"status":    "resolved",
	})
	if err != nil {
		t.Fatalf("update_ticket_status: %v", err)
	}
	if !strings.Contains(updated, `"status": "resolved"`) {
		t.Fatalf("expected resolved ticket, got %q", updated)
	}

	found, err := ts.CallText(ctx, "search_tickets", map[string]interface{}{
		"keyword": "export",
	})
	if err != nil {
		t.Fatalf("search_tickets: %v", err)
	}
	if !strings.Contains(found, "cannot export reports") {
		t.Fatalf("expected search hit, got %q", found)
	}

	deleted, err := ts.CallText(ctx, "delete_ticket", map[string]interface{}{
		"ticket_id": ticket.ID,
	})
	if err != nil {
		t.Fatalf("delete_ticket: %v", err)
	}
	if !strings.Contains(deleted, `"deleted": true`) {
		t.Fatalf("expected deletion ack, got %q", deleted)
	}
}

func TestServer_Stats(t *testing.T) {
	st, client := newTestSetup(t)
	ctx := context.Background()
	ts := mcp.NewToolset(client, nil)

	customer, err := st.AddCustomer(ctx, "Carol", "", "", "")
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if _, err := st.CreateTicket(ctx, customer.ID, "slow dashboard", "low", ""); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}

	stats, err := ts.CallText(ctx, "get_ticket_stats", nil)
	if err != nil {
		t.Fatalf("get_ticket_stats: %v", err)
	}
	if !strings.Contains(stats, `"total_tickets": 1`) {
		t.Fatalf("unexpected stats: %q", stats)
	}

	cstats, err := ts.CallText(ctx, "get_customer_stats", nil)
	if err != nil {
		t.Fatalf("get_customer_stats: %v", err)
	}
	if !strings.Contains(cstats, `"total_customers": 1`) {
		t.Fatalf("unexpected stats: %q", cstats)
	}
}

func TestServer_ToolErrorsSurfaceAsIsError(t *testing.T) {
	_, client := newTestSetup(t)
	ctx := context.Background()

	result, err := client.CallTool(ctx, "get_customer", map[string]interface{}{
		"customer_id": 404,
	})
	if err != nil {
		t.Fatalf("transport error: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected IsError for missing customer, got %+v", result)
	}
}
