// Package store persists customers and support tickets in SQLite.
package store

import (
	"database/sql"
	"log/slog"

	"github.com/deskmesh/deskmesh/pkg/errors"

	_ "modernc.org/sqlite"
)

// Store wraps the support database. All operations take a context and
// return typed errors so the tool layer can map them onto the wire.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for an ephemeral database in tests.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to open database", err)
	}
	// SQLite allows one writer; a single pooled connection also keeps
	// ":memory:" databases from splitting per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.New(errors.CodeInternal, "failed to enable foreign keys", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, errors.New(errors.CodeInternal, "failed to initialize schema", err)
	}
	log.Info("store ready", slog.String("path", path))
	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT,
			phone TEXT,
			status TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active', 'disabled')),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS tickets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL,
			issue TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'open' CHECK(status IN ('open', 'in_progress', 'resolved')),
			priority TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('low', 'medium', 'high')),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_customers_email ON customers(email);`,
		`CREATE INDEX IF NOT EXISTS idx_customers_status ON customers(status);`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_customer_id ON tickets(customer_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status);`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_priority ON tickets(priority);`,
		`CREATE TRIGGER IF NOT EXISTS update_customer_timestamp
			AFTER UPDATE ON customers
			FOR EACH ROW
			BEGIN
				UPDATE customers SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
			END;`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
