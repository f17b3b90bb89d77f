package blob

import (
	"context"
	"fmt"
	"os"
)

// Environment variables read by Open.
const (
	EnvDriver = "ASSEMBLYCORE_BLOB_DRIVER"
	EnvFSRoot = "ASSEMBLYCORE_BLOB_FS_ROOT"
)

// Open selects a blob.Store implementation using environment variables.
//
//	ASSEMBLYCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	ASSEMBLYCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./artifacts)
//	ASSEMBLYCORE_BLOB_S3_*: see OpenS3FromEnv
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv(EnvDriver)
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv(EnvFSRoot))
	case DriverS3:
		return OpenS3FromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
