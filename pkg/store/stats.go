package store

import (
	"context"

	"github.com/deskmesh/deskmesh/pkg/errors"
)

// TicketStats aggregates ticket counts by status and priority.
type TicketStats struct {
	Total      int64            `json:"total_tickets"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByPriority map[string]int64 `json:"by_priority"`
}

// CustomerStats aggregates customer counts by status.
type CustomerStats struct {
	Total    int64            `json:"total_customers"`
	ByStatus map[string]int64 `json:"by_status"`
}

// GetTicketStats returns ticket counts grouped by status and priority.
func (s *Store) GetTicketStats(ctx context.Context) (*TicketStats, error) {
	byStatus, err := s.countGroup(ctx, "SELECT status, COUNT(*) FROM tickets GROUP BY status")
	if err != nil {
		return nil, err
	}
	byPriority, err := s.countGroup(ctx, "SELECT priority, COUNT(*) FROM tickets GROUP BY priority")
	if err != nil {
		return nil, err
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tickets").Scan(&total); err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to count tickets", err)
	}
	return &TicketStats{Total: total, ByStatus: byStatus, ByPriority: byPriority}, nil
}

// GetCustomerStats returns customer counts grouped by status.
func (s *Store) GetCustomerStats(ctx context.Context) (*CustomerStats, error) {
	byStatus, err := s.countGroup(ctx, "SELECT status, COUNT(*) FROM customers GROUP BY status")
	if err != nil {
		return nil, err
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers").Scan(&total); err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to count customers", err)
	}
	return &CustomerStats{Total: total, ByStatus: byStatus}, nil
}

func (s *Store) countGroup(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to aggregate counts", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, errors.New(errors.CodeInternal, "failed to scan count", err)
		}
		counts[key] = count
	}
	return counts, rows.Err()
}
