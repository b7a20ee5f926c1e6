package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/deskmesh/deskmesh/pkg/errors"
)

// Customer status values.
const (
	CustomerActive   = "active"
	CustomerDisabled = "disabled"
)

// Customer is one row of the customers table.
type Customer struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CustomerUpdate carries the optional fields of an update. Nil means keep
// the current value.
type CustomerUpdate struct {
	Name  *string
	Email *string
	Phone *string
}

func validCustomerStatus(status string) bool {
	return status == CustomerActive || status == CustomerDisabled
}

// GetCustomer returns the customer with the given id.
func (s *Store) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, phone, status, created_at, updated_at FROM customers WHERE id = ?", id)
	return scanCustomer(row, id)
}

// ListCustomers returns customers ordered by name, optionally filtered by
// status.
func (s *Store) ListCustomers(ctx context.Context, status string) ([]*Customer, error) {
	if status != "" && !validCustomerStatus(status) {
		return nil, errors.New(errors.CodeInvalidInput,
			fmt.Sprintf("invalid customer status %q", status), nil)
	}

	query := "SELECT id, name, email, phone, status, created_at, updated_at FROM customers"
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to list customers", err)
	}
	defer rows.Close()

	var customers []*Customer
	for rows.Next() {
		c, err := scanCustomerRow(rows)
		if err != nil {
			return nil, errors.New(errors.CodeInternal, "failed to scan customer", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// AddCustomer inserts a new customer and returns the stored row.
func (s *Store) AddCustomer(ctx context.Context, name, email, phone, status string) (*Customer, error) {
	if name == "" {
		return nil, errors.New(errors.CodeInvalidInput, "customer name is required", nil)
	}
	if status == "" {
		status = CustomerActive
	}
	if !validCustomerStatus(status) {
		return nil, errors.New(errors.CodeInvalidInput,
			fmt.Sprintf("invalid customer status %q", status), nil)
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO customers (name, email, phone, status) VALUES (?, ?, ?, ?)",
		name, nullable(email), nullable(phone), status)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to add customer", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to read customer id", err)
	}
	s.log.Info("customer created", slog.Int64("customer_id", id))
	return s.GetCustomer(ctx, id)
}

// UpdateCustomer applies the non-nil fields of update and returns the
// stored row.
func (s *Store) UpdateCustomer(ctx context.Context, id int64, update CustomerUpdate) (*Customer, error) {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return nil, err
	}

	sets := []string{}
	args := []interface{}{}
	if update.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *update.Email)
	}
	if update.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *update.Phone)
	}
	if len(sets) == 0 {
		return s.GetCustomer(ctx, id)
	}

	query := "UPDATE customers SET " + joinSets(sets) + " WHERE id = ?"
	args = append(args, id)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to update customer", err)
	}
	s.log.Info("customer updated", slog.Int64("customer_id", id))
	return s.GetCustomer(ctx, id)
}

// DisableCustomer marks the customer disabled.
func (s *Store) DisableCustomer(ctx context.Context, id int64) (*Customer, error) {
	return s.setCustomerStatus(ctx, id, CustomerDisabled)
}

// ActivateCustomer marks the customer active.
func (s *Store) ActivateCustomer(ctx context.Context, id int64) (*Customer, error) {
	return s.setCustomerStatus(ctx, id, CustomerActive)
}

func (s *Store) setCustomerStatus(ctx context.Context, id int64, status string) (*Customer, error) {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx,
		"UPDATE customers SET status = ? WHERE id = ?", status, id); err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to change customer status", err)
	}
	s.log.Info("customer status changed",
		slog.Int64("customer_id", id), slog.String("status", status))
	return s.GetCustomer(ctx, id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCustomer(row *sql.Row, id int64) (*Customer, error) {
	c, err := scanCustomerRow(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.CodeNotFound,
			fmt.Sprintf("customer %d not found", id), nil)
	}
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to scan customer", err)
	}
	return c, nil
}

func scanCustomerRow(row rowScanner) (*Customer, error) {
	var c Customer
	var email, phone sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &email, &phone, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Email = email.String
	c.Phone = phone.String
	return &c, nil
}

func joinSets(sets []string) string {
	out := sets[0]
	for _, s := range sets[1:] {
		out += ", " + s
	}
	return out
}
