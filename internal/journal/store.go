// Package journal persists one record per processed webhook delivery to a
// local sqlite database. Task state itself lives in Asana; the journal only
// keeps processing outcomes for operators.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one processed webhook delivery.
type Entry struct {
	DeliveryID  string    `json:"delivery_id"`
	ReceivedAt  time.Time `json:"received_at"`
	Action      string    `json:"action,omitempty"`
	PRURL       string    `json:"pr_url,omitempty"`
	TaskGID     string    `json:"task_gid,omitempty"`
	ProjectGID  string    `json:"project_gid,omitempty"`
	Outcome     string    `json:"outcome"`
	Error       string    `json:"error,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
}

// Store is a sqlite-backed delivery journal.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the journal database at path and
// ensures the deliveries table exists.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(pctx, "PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	if _, err := db.ExecContext(pctx, `CREATE TABLE IF NOT EXISTS deliveries (
  delivery_id  TEXT PRIMARY KEY,
  received_at  TEXT NOT NULL,
  action       TEXT,
  pr_url       TEXT,
  task_gid     TEXT,
  project_gid  TEXT,
  outcome      TEXT NOT NULL,
  error        TEXT,
  fingerprint  TEXT
);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap journal: %w", err)
	}
	if _, err := db.ExecContext(pctx, `CREATE INDEX IF NOT EXISTS deliveries_received_at_idx ON deliveries(received_at);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap journal: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one delivery entry. A duplicate delivery id overwrites the
// previous row, so GitHub redeliveries keep the latest outcome.
func (s *Store) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO deliveries
  (delivery_id, received_at, action, pr_url, task_gid, project_gid, outcome, error, fingerprint)
  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.DeliveryID, e.ReceivedAt.UTC().Format(time.RFC3339Nano),
		e.Action, e.PRURL, e.TaskGID, e.ProjectGID, e.Outcome, e.Error, e.Fingerprint)
	if err != nil {
		return fmt.Errorf("record delivery %s: %w", e.DeliveryID, err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT delivery_id, received_at, action, pr_url,
  task_gid, project_gid, outcome, error, fingerprint
  FROM deliveries ORDER BY received_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var receivedAt string
		if err := rows.Scan(&e.DeliveryID, &receivedAt, &e.Action, &e.PRURL,
			&e.TaskGID, &e.ProjectGID, &e.Outcome, &e.Error, &e.Fingerprint); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, receivedAt); err == nil {
			e.ReceivedAt = ts
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Depth returns the total number of journaled deliveries.
func (s *Store) Depth(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deliveries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count deliveries: %w", err)
	}
	return n, nil
}
