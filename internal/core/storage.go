package core

import (
	"context"
	"fmt"
	"os"

	"assemblycore/internal/infra/persistence/memory"
	"assemblycore/internal/infra/persistence/postgres"
	"assemblycore/internal/infra/persistence/sqlite"
	"assemblycore/pkg/domain"
)

// StorageDriver identifies a run store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / one-shot runs)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// Environment variables read by OpenRunStore.
const (
	EnvStorageDriver = "ASSEMBLYCORE_STORAGE_DRIVER"
	EnvSQLitePath    = "ASSEMBLYCORE_SQLITE_PATH"
	EnvPostgresDSN   = "ASSEMBLYCORE_POSTGRES_DSN"
)

// OpenRunStore selects a run store using environment variables.
// Defaults to sqlite when unset so runs survive the process.
//
//	ASSEMBLYCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	ASSEMBLYCORE_SQLITE_PATH: path to sqlite file (default ./assemblycore.db)
//	ASSEMBLYCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenRunStore(ctx context.Context) (domain.RunStore, error) {
	driver := os.Getenv(EnvStorageDriver)
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		return sqlite.NewStore(os.Getenv(EnvSQLitePath))
	case StoragePostgres:
		return postgres.NewStore(ctx, os.Getenv(EnvPostgresDSN))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
