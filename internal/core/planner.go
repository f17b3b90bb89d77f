package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assemblycore/pkg/domain"
)

// Operation names reported to metrics and tracing.
const (
	OpPlan      = "plan"
	OpDecompose = "plan.decompose"
	OpRegistry  = "plan.registry"
	OpResolve   = "plan.resolve"
	OpAssemble  = "plan.assemble"
)

// PlanInput is everything a run needs, already read into memory.
type PlanInput struct {
	Constructs []ConstructRow
	Sources    []SourceFile
}

// Planner turns constructs and source files into a frozen plan bundle. A
// Planner holds no per-run state; concurrent Plan calls are independent.
type Planner struct {
	capacity      Capacity
	deckPositions []string
	labware       []domain.LabwareItem
	engine        *domain.RulesEngine
	logger        Logger
	metrics       MetricsRecorder
	tracer        Tracer
}

// Option customises a Planner.
type Option func(*Planner)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger Logger) Option {
	return func(p *Planner) {
		if logger == nil {
			logger = noopLogger{}
		}
		p.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(p *Planner) {
		if metrics == nil {
			metrics = noopMetrics{}
		}
		p.metrics = metrics
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer Tracer) Option {
	return func(p *Planner) {
		if tracer == nil {
			tracer = noopTracer{}
		}
		p.tracer = tracer
	}
}

// WithRulesEngine replaces the default capacity rules.
func WithRulesEngine(engine *domain.RulesEngine) Option {
	return func(p *Planner) { p.engine = engine }
}

// WithDeckPositions overrides the deck slots assigned to source files.
func WithDeckPositions(positions []string) Option {
	return func(p *Planner) { p.deckPositions = append([]string(nil), positions...) }
}

// WithLabware overrides the labware table attached to the bundle.
func WithLabware(items []domain.LabwareItem) Option {
	return func(p *Planner) { p.labware = append([]domain.LabwareItem(nil), items...) }
}

// NewPlanner validates capacity and returns a planner.
func NewPlanner(capacity Capacity, opts ...Option) (*Planner, error) {
	if err := capacity.Validate(); err != nil {
		return nil, fmt.Errorf("invalid capacity: %w", err)
	}
	p := &Planner{
		capacity:      capacity,
		deckPositions: append([]string(nil), DefaultDeckPositions...),
		labware:       DefaultLabware(),
		logger:        noopLogger{},
		metrics:       noopMetrics{},
		tracer:        noopTracer{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if len(p.deckPositions) == 0 {
		return nil, errors.New("at least one deck position is required")
	}
	if p.engine == nil {
		p.engine = NewDefaultRulesEngine(capacity, len(p.deckPositions))
	}
	return p, nil
}

// Capacity returns the hardware model the planner was built with.
func (p *Planner) Capacity() Capacity { return p.capacity }

// Plan runs the full pipeline. On any failure it returns an empty bundle and the error.
func (p *Planner) Plan(ctx context.Context, in PlanInput) (bundle domain.Bundle, err error) {
	err = p.observe(ctx, OpPlan, func(ctx context.Context) error {
		var runErr error
		bundle, runErr = p.plan(ctx, in)
		return runErr
	})
	if err != nil {
		p.logger.Error("plan failed", "error", err)
		return domain.Bundle{}, err
	}
	p.logger.Info("plan complete",
		"constructs", len(bundle.Constructs),
		"reactions", len(bundle.Reactions),
		"instances", bundle.MagbeadSampleNumber,
		"tipracks", bundle.Tipracks)
	return bundle, nil
}

func (p *Planner) plan(ctx context.Context, in PlanInput) (domain.Bundle, error) {
	counts := planCounts{sourcePlates: len(in.Sources)}

	var constructs []domain.Construct
	if err := p.observe(ctx, OpDecompose, func(ctx context.Context) error {
		constructs = DecomposeConstructs(in.Constructs)
		counts.constructs = len(constructs)
		_, err := checkCapacity(ctx, p.engine, counts)
		return err
	}); err != nil {
		return domain.Bundle{}, err
	}
	p.logger.Debug("constructs decomposed", "constructs", len(constructs))

	var reg *ReactionRegistry
	if err := p.observe(ctx, OpRegistry, func(ctx context.Context) error {
		reg = NewReactionRegistry(constructs)
		counts.reactions = reg.Len()
		if _, err := checkCapacity(ctx, p.engine, counts); err != nil {
			return err
		}
		reg.AssignWells(p.capacity, NewWellAllocator(p.capacity.PurificationOffset))
		counts.instances = reg.TotalInstances()
		_, err := checkCapacity(ctx, p.engine, counts)
		return err
	}); err != nil {
		return domain.Bundle{}, err
	}
	p.logger.Debug("reactions registered", "reactions", reg.Len(), "instances", counts.instances)

	var parts *PartTable
	if err := p.observe(ctx, OpResolve, func(_ context.Context) error {
		var err error
		parts, err = NewPartTable(in.Sources, p.deckPositions)
		if err != nil {
			return err
		}
		for _, name := range parts.Duplicates() {
			p.logger.Warn("duplicate source entry ignored", "name", name)
		}
		return parts.Resolve(reg, p.capacity)
	}); err != nil {
		return domain.Bundle{}, err
	}
	p.logger.Debug("sources resolved", "sources", parts.Len())

	var assemblies []domain.FinalAssembly
	var tipracks int
	if err := p.observe(ctx, OpAssemble, func(ctx context.Context) error {
		var err error
		assemblies, err = PlanFinalAssemblies(constructs, reg, parts, NewUsageTracker(p.capacity.AssembliesPerClip))
		if err != nil {
			return err
		}
		tipracks = AssemblyTipracks(assemblies, p.capacity.TiprackSize)
		counts.tipracks = tipracks
		_, err = checkCapacity(ctx, p.engine, counts)
		return err
	}); err != nil {
		return domain.Bundle{}, err
	}
	p.logger.Debug("final assemblies planned", "assemblies", len(assemblies), "tipracks", tipracks)

	instances := reg.TotalInstances()
	return domain.Bundle{
		Constructs:          constructs,
		Reactions:           reg.Reactions(),
		Parts:               parts.Records(),
		FinalAssemblies:     assemblies,
		Tipracks:            tipracks,
		MasterMix:           MasterMix(instances, p.capacity),
		MagbeadSampleNumber: instances,
		ClipDispense:        ClipDispense(reg, parts, p.capacity),
		Spotting:            SpottingGroups(constructs, p.capacity),
		SourcePlates:        parts.Plates(),
		Labware:             append([]domain.LabwareItem(nil), p.labware...),
	}, nil
}

func (p *Planner) observe(ctx context.Context, operation string, fn func(context.Context) error) (err error) {
	start := time.Now()
	spanCtx, span := p.tracer.Start(ctx, operation)
	defer func() {
		span.End(err)
		p.metrics.Observe(ctx, operation, err == nil, time.Since(start))
	}()
	return fn(spanCtx)
}
