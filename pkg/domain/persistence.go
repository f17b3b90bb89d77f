package domain

import (
	"context"
	"sort"
)

// RunStore persists planning runs so a bundle can be re-rendered or audited later.
type RunStore interface {
	// Save stores a new run. It fails with ErrDuplicateRun when the ID exists.
	Save(ctx context.Context, run PlanRun) error
	// Get returns the run with id or an error wrapping ErrNotFound.
	Get(ctx context.Context, id string) (PlanRun, error)
	// List returns all runs ordered by CreatedAt, then ID.
	List(ctx context.Context) ([]PlanRun, error)
	// Close releases any held resources.
	Close() error
}

// SortRuns orders runs the way RunStore.List reports them.
func SortRuns(runs []PlanRun) {
	sort.SliceStable(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.Before(runs[j].CreatedAt)
		}
		return runs[i].ID < runs[j].ID
	})
}
