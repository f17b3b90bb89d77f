package core

import "assemblycore/pkg/domain"

// ReactionRegistry holds the deduplicated reactions of a run in first-discovery order.
type ReactionRegistry struct {
	reactions []domain.Reaction
	index     map[domain.ReactionKey]int
}

// NewReactionRegistry counts every triple across constructs, keeping the
// order in which each triple is first seen.
func NewReactionRegistry(constructs []domain.Construct) *ReactionRegistry {
	reg := &ReactionRegistry{index: make(map[domain.ReactionKey]int)}
	for _, c := range constructs {
		for _, key := range c.Reactions {
			if i, ok := reg.index[key]; ok {
				reg.reactions[i].UsageCount++
				continue
			}
			reg.index[key] = len(reg.reactions)
			reg.reactions = append(reg.reactions, domain.Reaction{ReactionKey: key, UsageCount: 1})
		}
	}
	return reg
}

// Len returns the number of unique reactions.
func (r *ReactionRegistry) Len() int { return len(r.reactions) }

// Lookup returns the registry position of key.
func (r *ReactionRegistry) Lookup(key domain.ReactionKey) (int, bool) {
	i, ok := r.index[key]
	return i, ok
}

// At returns a pointer to the i-th reaction for in-place annotation by later stages.
func (r *ReactionRegistry) At(i int) *domain.Reaction { return &r.reactions[i] }

// AssignWells sets instance counts and allocates reaction and purification
// wells for every reaction, in discovery order.
func (r *ReactionRegistry) AssignWells(capacity Capacity, alloc *WellAllocator) {
	for i := range r.reactions {
		rx := &r.reactions[i]
		rx.InstanceCount = capacity.instanceCount(rx.UsageCount)
		rx.ReactionWells, rx.PurificationWells = alloc.Allocate(rx.InstanceCount)
	}
}

// TotalInstances is the number of physical reaction instances across the registry.
func (r *ReactionRegistry) TotalInstances() int {
	total := 0
	for _, rx := range r.reactions {
		total += rx.InstanceCount
	}
	return total
}

// Reactions returns a deep copy of the registry contents.
func (r *ReactionRegistry) Reactions() []domain.Reaction {
	out := make([]domain.Reaction, len(r.reactions))
	for i, rx := range r.reactions {
		out[i] = cloneReaction(rx)
	}
	return out
}

func cloneReaction(rx domain.Reaction) domain.Reaction {
	rx.ReactionWells = cloneStrings(rx.ReactionWells)
	rx.PurificationWells = cloneStrings(rx.PurificationWells)
	rx.ConstructWells = cloneStrings(rx.ConstructWells)
	return rx
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
