package domain

import (
	"context"
	"errors"
	"testing"
)

func TestResultMergeAndBlocking(t *testing.T) {
	var result Result
	result.Merge(Result{Violations: []Violation{{Rule: "warn", Severity: SeverityWarn}}})
	if result.HasBlocking() {
		t.Fatalf("expected no blocking violations")
	}
	result.Merge(Result{Violations: []Violation{
		{Rule: "first", Severity: SeverityBlock, Resource: ResourceConstructs},
		{Rule: "second", Severity: SeverityBlock},
	}})
	v, ok := result.FirstBlocking()
	if !ok || v.Rule != "first" || v.Resource != ResourceConstructs {
		t.Fatalf("expected first blocking violation, got %+v", v)
	}
}

func TestResultMergeEmptyInput(t *testing.T) {
	original := Result{Violations: []Violation{{Rule: "existing", Severity: SeverityWarn}}}
	original.Merge(Result{})
	if len(original.Violations) != 1 || original.Violations[0].Rule != "existing" {
		t.Fatalf("expected original violations to remain, got %+v", original.Violations)
	}
}

type staticRule struct {
	name string
	err  error
}

func (r staticRule) Name() string { return r.name }

func (r staticRule) Evaluate(context.Context, PlanView) (Result, error) {
	if r.err != nil {
		return Result{}, r.err
	}
	return Result{Violations: []Violation{{Rule: r.name, Severity: SeverityWarn}}}, nil
}

type zeroView struct{}

func (zeroView) ConstructCount() int   { return 0 }
func (zeroView) ReactionCount() int    { return 0 }
func (zeroView) InstanceCount() int    { return 0 }
func (zeroView) TiprackCount() int     { return 0 }
func (zeroView) SourcePlateCount() int { return 0 }

func TestRulesEngineEvaluate(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(staticRule{name: "a"})
	engine.Register(staticRule{name: "b"})
	res, err := engine.Evaluate(context.Background(), zeroView{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 2 || res.Violations[0].Rule != "a" || res.Violations[1].Rule != "b" {
		t.Fatalf("expected violations in registration order, got %+v", res.Violations)
	}
	rules := engine.Rules()
	rules[0] = nil
	if engine.Rules()[0] == nil {
		t.Fatalf("Rules must return a copy")
	}
}

func TestRulesEngineStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	engine := NewRulesEngine()
	engine.Register(staticRule{name: "a"})
	engine.Register(staticRule{name: "b", err: boom})
	res, err := engine.Evaluate(context.Background(), zeroView{})
	if !errors.Is(err, boom) || len(res.Violations) != 0 {
		t.Fatalf("expected error and empty result, got %+v %v", res, err)
	}
}
