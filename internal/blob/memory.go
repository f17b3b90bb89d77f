package blob

import (
	memorystore "assemblycore/internal/infra/blob/memory"
)

// NewMemory returns an in-memory blob.Store for tests and dry runs.
func NewMemory() Store { return memorystore.New() }
