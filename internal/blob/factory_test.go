package blob

import (
	"context"
	"testing"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	t.Setenv(EnvDriver, "")
	t.Setenv(EnvFSRoot, t.TempDir())
	store, err := Open(ctx)
	if err != nil {
		t.Fatalf("open default: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("expected fs driver, got %s", store.Driver())
	}

	t.Setenv(EnvDriver, string(DriverMemory))
	store, err = Open(ctx)
	if err != nil || store.Driver() != DriverMemory {
		t.Fatalf("expected memory driver, got %v %v", store, err)
	}

	t.Setenv(EnvDriver, string(DriverS3))
	t.Setenv("ASSEMBLYCORE_BLOB_S3_BUCKET", "")
	if _, err := Open(ctx); err == nil {
		t.Fatalf("expected error without bucket")
	}

	t.Setenv(EnvDriver, "gcs")
	if _, err := Open(ctx); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
