// Package memory provides an in-memory run store used for tests and ephemeral
// CLI invocations.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"assemblycore/pkg/domain"
)

var _ domain.RunStore = (*Store)(nil)

// Store keeps runs as encoded snapshots so callers never share slices with it.
type Store struct {
	mu   sync.RWMutex
	runs map[string][]byte
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{runs: make(map[string][]byte)}
}

// Save implements domain.RunStore.
func (s *Store) Save(_ context.Context, run domain.PlanRun) error {
	if run.ID == "" {
		return fmt.Errorf("run id required")
	}
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", run.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("save run %s: %w", run.ID, domain.ErrDuplicateRun)
	}
	s.runs[run.ID] = payload
	return nil
}

// Get implements domain.RunStore.
func (s *Store) Get(_ context.Context, id string) (domain.PlanRun, error) {
	s.mu.RLock()
	payload, ok := s.runs[id]
	s.mu.RUnlock()
	if !ok {
		return domain.PlanRun{}, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	return decode(id, payload)
}

// List implements domain.RunStore.
func (s *Store) List(_ context.Context) ([]domain.PlanRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PlanRun, 0, len(s.runs))
	for id, payload := range s.runs {
		run, err := decode(id, payload)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	domain.SortRuns(out)
	return out, nil
}

// Close implements domain.RunStore.
func (s *Store) Close() error { return nil }

func decode(id string, payload []byte) (domain.PlanRun, error) {
	var run domain.PlanRun
	if err := json.Unmarshal(payload, &run); err != nil {
		return domain.PlanRun{}, fmt.Errorf("decode run %s: %w", id, err)
	}
	return run, nil
}
