// Package sqlite persists plan runs in an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"assemblycore/pkg/domain"
)

var _ domain.RunStore = (*Store)(nil)

// DefaultPath is used when no path is configured.
const DefaultPath = "assemblycore.db"

// Store keeps one row per run with the encoded run as payload.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS plan_runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create plan_runs table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Save implements domain.RunStore.
func (s *Store) Save(ctx context.Context, run domain.PlanRun) error {
	if run.ID == "" {
		return fmt.Errorf("run id required")
	}
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", run.ID, err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO plan_runs(id,created_at,payload) VALUES(?,?,?) ON CONFLICT(id) DO NOTHING`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339Nano), payload)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("save run %s: %w", run.ID, domain.ErrDuplicateRun)
	}
	return nil
}

// Get implements domain.RunStore.
func (s *Store) Get(ctx context.Context, id string) (domain.PlanRun, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM plan_runs WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PlanRun{}, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.PlanRun{}, fmt.Errorf("select run %s: %w", id, err)
	}
	var run domain.PlanRun
	if err := json.Unmarshal(payload, &run); err != nil {
		return domain.PlanRun{}, fmt.Errorf("decode run %s: %w", id, err)
	}
	return run, nil
}

// List implements domain.RunStore.
func (s *Store) List(ctx context.Context) ([]domain.PlanRun, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM plan_runs`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []domain.PlanRun
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var run domain.PlanRun
		if err := json.Unmarshal(payload, &run); err != nil {
			return nil, fmt.Errorf("decode run %s: %w", id, err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	domain.SortRuns(out)
	return out, nil
}

// Close implements domain.RunStore.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
