// Package history persists celebrations to Postgres so restarts keep a
// record of what fired. The whole package is optional; the app runs
// without a database when DB_DSN is unset.
package history

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx postgres driver registered as 'pgx'

	"github.com/onnwee/chat-celebrator/celebrate"
)

// Store wraps a Postgres connection holding the celebration log.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres with the given DSN.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// Migrate applies idempotent schema changes.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS celebrations (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_celebrations_created_at ON celebrations(created_at)`,
	}
	for i, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d failed: %w", i, err)
		}
	}
	return nil
}

// Insert records one celebration.
func (s *Store) Insert(ctx context.Context, c celebrate.Celebration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO celebrations(id, event_type, message, created_at) VALUES($1,$2,$3,$4)
		 ON CONFLICT(id) DO NOTHING`,
		c.ID, string(c.EventType), c.Message, c.At)
	if err != nil {
		return fmt.Errorf("insert celebration: %w", err)
	}
	return nil
}

// Recent returns up to n celebrations, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]celebrate.Celebration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_type, message, created_at FROM celebrations
		 ORDER BY created_at DESC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("query celebrations: %w", err)
	}
	defer rows.Close()

	var out []celebrate.Celebration
	for rows.Next() {
		var c celebrate.Celebration
		var typ string
		if err := rows.Scan(&c.ID, &typ, &c.Message, &c.At); err != nil {
			return nil, fmt.Errorf("scan celebration: %w", err)
		}
		c.EventType = celebrate.EventType(typ)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
