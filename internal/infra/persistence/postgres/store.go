// Package postgres persists plan runs in a PostgreSQL table, one JSONB row per run.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"assemblycore/pkg/domain"
)

var _ domain.RunStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/assemblycore?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store is a RunStore backed by Postgres.
type Store struct {
	db *sql.DB
}

// NewStore connects using dsn (defaultDSN when empty) and ensures the runs table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureRunsTable(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureRunsTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS plan_runs (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure plan_runs table: %w", err)
	}
	return nil
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
		`INSERT INTO plan_runs(id,created_at,payload) VALUES($1,$2,$3) ON CONFLICT(id) DO NOTHING`,
		run.ID, run.CreatedAt.UTC(), payload)
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
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM plan_runs WHERE id = $1`, id)
	if err != nil {
		return domain.PlanRun{}, fmt.Errorf("select run %s: %w", id, err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return domain.PlanRun{}, err
	}
	if len(runs) == 0 {
		return domain.PlanRun{}, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	return runs[0], nil
}

// List implements domain.RunStore.
func (s *Store) List(ctx context.Context) ([]domain.PlanRun, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM plan_runs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	domain.SortRuns(runs)
	return runs, nil
}

func scanRuns(rows *sql.Rows) ([]domain.PlanRun, error) {
	defer func() { _ = rows.Close() }()
	var out []domain.PlanRun
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
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
	return out, nil
}

// Close implements domain.RunStore.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
