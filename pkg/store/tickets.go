package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/deskmesh/deskmesh/pkg/errors"
)

// Ticket status and priority values.
const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketResolved   = "resolved"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Ticket is one row of the tickets table joined with its customer.
type Ticket struct {
	ID             int64  `json:"id"`
	CustomerID     int64  `json:"customer_id"`
	Issue          string `json:"issue"`
	Status         string `json:"status"`
	Priority       string `json:"priority"`
	CreatedAt      string `json:"created_at"`
	CustomerName   string `json:"customer_name"`
	CustomerEmail  string `json:"customer_email,omitempty"`
	CustomerPhone  string `json:"customer_phone,omitempty"`
	CustomerStatus string `json:"customer_status"`
}

// TicketFilter narrows ListTickets. Zero values mean no filter.
type TicketFilter struct {
	Status     string
	Priority   string
	CustomerID int64
}

func validTicketStatus(status string) bool {
	switch status {
	case TicketOpen, TicketInProgress, TicketResolved:
		return true
	}
	return false
}

func validPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

const ticketSelect = `
	SELECT t.id, t.customer_id, t.issue, t.status, t.priority, t.created_at,
	       c.name, c.email, c.phone, c.status
	FROM tickets t
	JOIN customers c ON t.customer_id = c.id`

// GetTicket returns the ticket with the given id, including customer
// details.
func (s *Store) GetTicket(ctx context.Context, id int64) (*Ticket, error) {
	row := s.db.QueryRowContext(ctx, ticketSelect+" WHERE t.id = ?", id)
	t, err := scanTicketRow(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.CodeNotFound,
			fmt.Sprintf("ticket %d not found", id), nil)
	}
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to scan ticket", err)
	}
	return t, nil
}

// ListTickets returns tickets matching the filter, highest priority first
// and newest first within a priority.
func (s *Store) ListTickets(ctx context.Context, filter TicketFilter) ([]*Ticket, error) {
	if filter.Status != "" && !validTicketStatus(filter.Status) {
		return nil, errors.New(errors.CodeInvalidInput,
			fmt.Sprintf("invalid ticket status %q", filter.Status), nil)
	}
	if filter.Priority != "" && !validPriority(filter.Priority) {
		return nil, errors.New(errors.CodeInvalidInput,
			fmt.Sprintf("invalid ticket priority %q", filter.Priority), nil)
	}

	query := ticketSelect + " WHERE 1=1"
	args := []interface{}{}
	if filter.Status != "" {
		query += " AND t.status = ?"
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		query += " AND t.priority = ?"
		args = append(args, filter.Priority)
	}
	if filter.CustomerID != 0 {
		query += " AND t.customer_id = ?"
		args = append(args, filter.CustomerID)
	}
	query += `
		ORDER BY CASE t.priority
			WHEN 'high' THEN 1
			WHEN 'medium' THEN 2
			WHEN 'low' THEN 3
		END, t.created_at DESC`

	return s.queryTickets(ctx, query, args...)
}

// CreateTicket inserts a new ticket for an existing customer.
func (s *Store) CreateTicket(ctx context.Context, customerID int64, issue, priority, status string) (*Ticket, error) {
	if issue == "" {
		return nil, errors.New(errors.CodeInvalidInput, "ticket issue is required", nil)
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if status == "" {
		status = TicketOpen
	}
	if !validPriority(priority) {
		return nil, errors.New(errors.CodeInvalidInput,
			fmt.Sprintf("invalid ticket priority %q", priority), nil)
	}
	if !validTicketStatus(status) {
		return nil, errors.New(errors.CodeInvalidInput,
			fmt.Sprintf("invalid ticket status %q", status), nil)
	}
	if _, err := s.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO tickets (customer_id, issue, priority, status) VALUES (?, ?, ?, ?)",
		customerID, issue, priority, status)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to create ticket", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to read ticket id", err)
	}
	s.log.Info("ticket created",
		slog.Int64("ticket_id", id),
		slog.Int64("customer_id", customerID),
		slog.String("priority", priority))
	return s.GetTicket(ctx, id)
}

// UpdateTicketStatus changes a ticket's status.
func (s *Store) UpdateTicketStatus(ctx context.Context, id int64, status string) (*Ticket, error) {
	if !validTicketStatus(status) {
		return nil, errors.New(errors.CodeInvalidInput,
			fmt.Sprintf("invalid ticket status %q", status), nil)
	}
	if _, err := s.GetTicket(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx,
		"UPDATE tickets SET status = ? WHERE id = ?", status, id); err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to update ticket status", err)
	}
	s.log.Info("ticket status changed", slog.Int64("ticket_id", id), slog.String("status", status))
	return s.GetTicket(ctx, id)
}

// UpdateTicketPriority changes a ticket's priority.
func (s *Store) UpdateTicketPriority(ctx context.Context, id int64, priority string) (*Ticket, error) {
	if !validPriority(priority) {
		return nil, errors.New(errors.CodeInvalidInput,
			fmt.Sprintf("invalid ticket priority %q", priority), nil)
	}
	if _, err := s.GetTicket(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx,
		"UPDATE tickets SET priority = ? WHERE id = ?", priority, id); err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to update ticket priority", err)
	}
	s.log.Info("ticket priority changed", slog.Int64("ticket_id", id), slog.String("priority", priority))
	return s.GetTicket(ctx, id)
}

// DeleteTicket removes a ticket. It reports whether a row was deleted.
func (s *Store) DeleteTicket(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tickets WHERE id = ?", id)
	if err != nil {
		return false, errors.New(errors.CodeInternal, "failed to delete ticket", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.New(errors.CodeInternal, "failed to read delete result", err)
	}
	if affected > 0 {
		s.log.Info("ticket deleted", slog.Int64("ticket_id", id))
	}
	return affected > 0, nil
}

// SearchTickets returns tickets whose issue text contains keyword, newest
// first.
func (s *Store) SearchTickets(ctx context.Context, keyword string) ([]*Ticket, error) {
	if keyword == "" {
		return nil, errors.New(errors.CodeInvalidInput, "search keyword is required", nil)
	}
	query := ticketSelect + " WHERE t.issue LIKE ? ORDER BY t.created_at DESC"
	return s.queryTickets(ctx, query, "%"+keyword+"%")
}

func (s *Store) queryTickets(ctx context.Context, query string, args ...interface{}) ([]*Ticket, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to query tickets", err)
	}
	defer rows.Close()

	var tickets []*Ticket
	for rows.Next() {
		t, err := scanTicketRow(rows)
		if err != nil {
			return nil, errors.New(errors.CodeInternal, "failed to scan ticket", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func scanTicketRow(row rowScanner) (*Ticket, error) {
	var t Ticket
	var email, phone sql.NullString
	err := row.Scan(&t.ID, &t.CustomerID, &t.Issue, &t.Status, &t.Priority, &t.CreatedAt,
		&t.CustomerName, &email, &phone, &t.CustomerStatus)
	if err != nil {
		return nil, err
	}
	t.CustomerEmail = email.String
	t.CustomerPhone = phone.String
	return &t, nil
}
