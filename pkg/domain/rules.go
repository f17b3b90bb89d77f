package domain

import "context"

// Resource names reported by capacity violations.
const (
	ResourceConstructs       = "constructs"
	ResourceClipReactions    = "CLIP reactions"
	ResourceClipInstances    = "CLIP reaction instances"
	ResourceAssemblyTipracks = "final assembly tipracks"
	ResourceSourcePlates     = "source plates"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities.
const (
	// SeverityBlock aborts the planning run.
	SeverityBlock Severity = "block"
	// SeverityWarn is logged and the run continues.
	SeverityWarn Severity = "warn"
)

// PlanView exposes the counts a capacity rule inspects. Counts belonging to
// stages that have not run yet are reported as zero.
type PlanView interface {
	ConstructCount() int
	ReactionCount() int
	InstanceCount() int
	TiprackCount() int
	SourcePlateCount() int
}

// Rule defines a capacity evaluation executed between pipeline stages.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view PlanView) (Result, error)
}

// Violation describes a single rule outcome.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Resource string
	Count    int
	Limit    int
}

// Result aggregates violations produced by rules.
type Result struct {
	Violations []Violation
}

// Merge appends the violations of other.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking reports whether any violation blocks the run.
func (r Result) HasBlocking() bool {
	_, ok := r.FirstBlocking()
	return ok
}

// FirstBlocking returns the first blocking violation in evaluation order.
func (r Result) FirstBlocking() (Violation, bool) {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return v, true
		}
	}
	return Violation{}, false
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Rules returns the registered rules in registration order.
func (e *RulesEngine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(ctx context.Context, view PlanView) (Result, error) {
	var combined Result
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view)
		if err != nil {
			return Result{}, err
		}
		combined.Merge(res)
	}
	return combined, nil
}
