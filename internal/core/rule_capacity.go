package core

import (
	"context"
	"fmt"

	"assemblycore/pkg/domain"
)

// capacityRule blocks a plan once a counted resource crosses its ceiling.
// Counts of zero mean the owning stage has not run and are never checked.
type capacityRule struct {
	name     string
	resource string
	limit    int
	count    func(domain.PlanView) int
}

func (r capacityRule) Name() string { return r.name }

func (r capacityRule) Evaluate(_ context.Context, view domain.PlanView) (domain.Result, error) {
	count := r.count(view)
	res := domain.Result{}
	if count > r.limit {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     r.name,
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("number of %s exceeds maximum: %d/%d", r.resource, count, r.limit),
			Resource: r.resource,
			Count:    count,
			Limit:    r.limit,
		})
	}
	return res, nil
}

// NewConstructCapacityRule limits the number of constructs to the destination plate.
func NewConstructCapacityRule(limit int) domain.Rule {
	return capacityRule{name: "construct_capacity", resource: domain.ResourceConstructs, limit: limit,
		count: func(v domain.PlanView) int { return v.ConstructCount() }}
}

// NewClipCapacityRule limits the number of unique CLIP reactions.
func NewClipCapacityRule(limit int) domain.Rule {
	return capacityRule{name: "clip_capacity", resource: domain.ResourceClipReactions, limit: limit,
		count: func(v domain.PlanView) int { return v.ReactionCount() }}
}

// NewClipInstanceCapacityRule limits physical reaction instances to the wells
// available below the purification region. It is not part of the default rule
// set; instances past that region spill onto the following wells.
func NewClipInstanceCapacityRule(limit int) domain.Rule {
	return capacityRule{name: "clip_instance_capacity", resource: domain.ResourceClipInstances, limit: limit,
		count: func(v domain.PlanView) int { return v.InstanceCount() }}
}

// NewTiprackCapacityRule limits the tipracks the final assembly may consume.
func NewTiprackCapacityRule(limit int) domain.Rule {
	return capacityRule{name: "tiprack_capacity", resource: domain.ResourceAssemblyTipracks, limit: limit,
		count: func(v domain.PlanView) int { return v.TiprackCount() }}
}

// NewSourcePlateCapacityRule limits the number of source plate files to the available deck slots.
func NewSourcePlateCapacityRule(limit int) domain.Rule {
	return capacityRule{name: "source_plate_capacity", resource: domain.ResourceSourcePlates, limit: limit,
		count: func(v domain.PlanView) int { return v.SourcePlateCount() }}
}

// NewDefaultRulesEngine builds the capacity rule set for a hardware model.
func NewDefaultRulesEngine(capacity Capacity, deckPositions int) *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewSourcePlateCapacityRule(min(capacity.MaxSourcePlates, deckPositions)))
	engine.Register(NewConstructCapacityRule(capacity.MaxConstructs))
	engine.Register(NewClipCapacityRule(capacity.MaxClipReactions))
	engine.Register(NewTiprackCapacityRule(capacity.MaxAssemblyTipracks))
	return engine
}

// planCounts is the PlanView filled in as the pipeline progresses.
type planCounts struct {
	constructs   int
	reactions    int
	instances    int
	tipracks     int
	sourcePlates int
}

func (p planCounts) ConstructCount() int   { return p.constructs }
func (p planCounts) ReactionCount() int    { return p.reactions }
func (p planCounts) InstanceCount() int    { return p.instances }
func (p planCounts) TiprackCount() int     { return p.tipracks }
func (p planCounts) SourcePlateCount() int { return p.sourcePlates }

// checkCapacity evaluates the engine and converts the first blocking violation into an error.
func checkCapacity(ctx context.Context, engine *domain.RulesEngine, view domain.PlanView) (domain.Result, error) {
	res, err := engine.Evaluate(ctx, view)
	if err != nil {
		return res, err
	}
	if v, ok := res.FirstBlocking(); ok {
		return res, domain.CapacityExceededError{Resource: v.Resource, Count: v.Count, Limit: v.Limit}
	}
	return res, nil
}
