package core

import (
	"fmt"

	"assemblycore/pkg/domain"
)

// UsageTracker counts how many assemblies have drawn from each reaction so
// far in a run; the count selects which physical instance serves the next one.
type UsageTracker struct {
	batch int
	used  map[int]int
}

// NewUsageTracker returns a tracker that moves to the next instance every batch uses.
func NewUsageTracker(batch int) *UsageTracker {
	return &UsageTracker{batch: batch, used: make(map[int]int)}
}

// Next returns the instance index for the next use of reaction i and records the use.
func (u *UsageTracker) Next(i int) int {
	instance := u.used[i] / u.batch
	u.used[i]++
	return instance
}

// Used returns how many times reaction i has been drawn from.
func (u *UsageTracker) Used(i int) int { return u.used[i] }

// PlanFinalAssemblies assigns each construct a destination well and the
// ordered purification wells it is assembled from. Reactions and part records
// are annotated with the destination wells that consume them.
func PlanFinalAssemblies(constructs []domain.Construct, reg *ReactionRegistry, parts *PartTable, usage *UsageTracker) ([]domain.FinalAssembly, error) {
	assemblies := make([]domain.FinalAssembly, 0, len(constructs))
	for k, c := range constructs {
		dest := Well(k + 1)
		sources := make([]string, 0, len(c.Reactions))
		for _, key := range c.Reactions {
			i, ok := reg.Lookup(key)
			if !ok {
				return nil, fmt.Errorf("construct %s: reaction %s not in registry", c.Name, key)
			}
			rx := reg.At(i)
			instance := usage.Next(i)
			if instance >= len(rx.PurificationWells) {
				return nil, fmt.Errorf("construct %s: reaction %s has %d instances, need instance %d",
					c.Name, key, len(rx.PurificationWells), instance+1)
			}
			sources = append(sources, rx.PurificationWells[instance])
			rx.ConstructWells = append(rx.ConstructWells, dest)
			for _, name := range key.Names() {
				rec, ok := parts.Lookup(name)
				if !ok {
					return nil, domain.MissingSourceEntryError{Name: name, Reaction: key}
				}
				rec.ConstructWells = append(rec.ConstructWells, dest)
			}
		}
		assemblies = append(assemblies, domain.FinalAssembly{DestinationWell: dest, SourceWells: sources})
	}
	return assemblies, nil
}
