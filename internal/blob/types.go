// Package blob is the artifact storage entry point. Callers depend on the
// Store interface and obtain implementations through the constructors here,
// never by importing the infra packages directly.
package blob

import (
	"assemblycore/internal/blob/core"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// SignedURLOptions configures URL pre-signing.
	SignedURLOptions = core.SignedURLOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory

	ContentTypeCSV    = core.ContentTypeCSV
	ContentTypeText   = core.ContentTypeText
	ContentTypeJSON   = core.ContentTypeJSON
	ContentTypePython = core.ContentTypePython
)

var (
	// ErrUnsupported indicates an operation isn't supported by a driver.
	ErrUnsupported = core.ErrUnsupported
	// ErrExists is returned by Put for a key that is already taken.
	ErrExists = core.ErrExists
	// ErrNotFound is returned for missing keys.
	ErrNotFound = core.ErrNotFound
)
