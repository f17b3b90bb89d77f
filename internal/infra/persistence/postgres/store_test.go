package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"assemblycore/internal/infra/persistence/postgres/testutil"
	"assemblycore/pkg/domain"
)

func openStub(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		if driverName != defaultDriver {
			t.Fatalf("unexpected driver %s", driverName)
		}
		if dsn != defaultDSN {
			t.Fatalf("expected default dsn, got %s", dsn)
		}
		return db, nil
	})
	t.Cleanup(restore)
	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, conn
}

func TestNewStoreEnsuresTable(t *testing.T) {
	_, conn := openStub(t)
	var sawDDL bool
	for _, stmt := range conn.Execs {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS plan_runs") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("expected plan_runs DDL, got %v", conn.Execs)
	}
}

func TestStoreSaveGetList(t *testing.T) {
	ctx := context.Background()
	store, _ := openStub(t)
	at := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	for _, run := range []domain.PlanRun{
		{ID: "second", CreatedAt: at.Add(time.Minute)},
		{ID: "first", CreatedAt: at, SourceFiles: []string{"p1.csv"}},
	} {
		if err := store.Save(ctx, run); err != nil {
			t.Fatalf("save %s: %v", run.ID, err)
		}
	}
	got, err := store.Get(ctx, "first")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "first" || len(got.SourceFiles) != 1 {
		t.Fatalf("unexpected run: %+v", got)
	}
	runs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "first" {
		t.Fatalf("unexpected list: %+v", runs)
	}
	if err := store.Save(ctx, domain.PlanRun{ID: "first", CreatedAt: at}); !errors.Is(err, domain.ErrDuplicateRun) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNewStorePingFailure(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(context.Background(), "postgres://example"); err == nil || !strings.Contains(err.Error(), "ping") {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestStoreSurfacesQueryErrors(t *testing.T) {
	store, conn := openStub(t)
	conn.FailQuery = true
	if _, err := store.List(context.Background()); err == nil {
		t.Fatalf("expected list error")
	}
	conn.FailQuery = false
	conn.FailExec = true
	if err := store.Save(context.Background(), domain.PlanRun{ID: "x"}); err == nil {
		t.Fatalf("expected save error")
	}
}
