package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded marks a plan that does not fit the hardware capacity model.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrMissingSourceEntry marks a reaction that names a linker or part absent from every source file.
	ErrMissingSourceEntry = errors.New("missing source entry")
	// ErrNotFound is returned by stores when a run does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateRun is returned by stores when a run ID is saved twice.
	ErrDuplicateRun = errors.New("run already exists")
)

// CapacityExceededError reports the resource whose ceiling was crossed.
type CapacityExceededError struct {
	Resource string
	Count    int
	Limit    int
}

func (e CapacityExceededError) Error() string {
	return fmt.Sprintf("number of %s exceeds maximum: %d > %d", e.Resource, e.Count, e.Limit)
}

// Unwrap lets callers match with errors.Is(err, ErrCapacityExceeded).
func (e CapacityExceededError) Unwrap() error { return ErrCapacityExceeded }

// MissingSourceEntryError reports an unresolved source name and the reaction that needed it.
type MissingSourceEntryError struct {
	Name     string
	Reaction ReactionKey
}

func (e MissingSourceEntryError) Error() string {
	return fmt.Sprintf("%s (needed by reaction %s) not listed in any source file", e.Name, e.Reaction)
}

// Unwrap lets callers match with errors.Is(err, ErrMissingSourceEntry).
func (e MissingSourceEntryError) Unwrap() error { return ErrMissingSourceEntry }
