package core

import (
	"errors"
	"fmt"
)

// Capacity is the fixed hardware and volume model a plan is computed against.
// Volumes are in microlitres.
type Capacity struct {
	PlateSize           int `yaml:"plate_size" hcl:"plate_size,optional"`
	TiprackSize         int `yaml:"tiprack_size" hcl:"tiprack_size,optional"`
	MaxConstructs       int `yaml:"max_constructs" hcl:"max_constructs,optional"`
	MaxClipReactions    int `yaml:"max_clip_reactions" hcl:"max_clip_reactions,optional"`
	MaxAssemblyTipracks int `yaml:"max_assembly_tipracks" hcl:"max_assembly_tipracks,optional"`
	MaxSourcePlates     int `yaml:"max_source_plates" hcl:"max_source_plates,optional"`
	// AssembliesPerClip is the batch size used to split reaction usage into instances.
	AssembliesPerClip int `yaml:"assemblies_per_clip" hcl:"assemblies_per_clip,optional"`
	// PurificationOffset is the well index offset of the purification plate region.
	PurificationOffset int `yaml:"purification_offset" hcl:"purification_offset,optional"`

	ClipVolume         float64 `yaml:"clip_volume" hcl:"clip_volume,optional"`
	BufferVolume       float64 `yaml:"buffer_volume" hcl:"buffer_volume,optional"`
	EnzymeVolume       float64 `yaml:"enzyme_volume" hcl:"enzyme_volume,optional"`
	LigaseVolume       float64 `yaml:"ligase_volume" hcl:"ligase_volume,optional"`
	MasterMixWater     float64 `yaml:"master_mix_water" hcl:"master_mix_water,optional"`
	FixedOverhead      float64 `yaml:"fixed_overhead" hcl:"fixed_overhead,optional"`
	PartPerClip        float64 `yaml:"part_per_clip" hcl:"part_per_clip,optional"`
	MinVolume          float64 `yaml:"min_volume" hcl:"min_volume,optional"`
	DefaultPartVolume  float64 `yaml:"default_part_volume" hcl:"default_part_volume,optional"`
	LinkerVolume       float64 `yaml:"linker_volume" hcl:"linker_volume,optional"`
	PartDeadVolume     float64 `yaml:"part_dead_volume" hcl:"part_dead_volume,optional"`
	ClipDeadVolume     float64 `yaml:"clip_dead_volume" hcl:"clip_dead_volume,optional"`
	SpottingVolume     float64 `yaml:"spotting_volume" hcl:"spotting_volume,optional"`
	SpottingColumnSize int     `yaml:"spotting_column_size" hcl:"spotting_column_size,optional"`
	// SpottingVolumes overrides SpottingVolume by the number of reactions in a construct.
	// HCL profiles set it through the capacity block, see internal/config.
	SpottingVolumes map[int]float64 `yaml:"spotting_volumes"`
}

// DefaultCapacity returns the model of the standard 96-well OT-2 deck layout.
func DefaultCapacity() Capacity {
	return Capacity{
		PlateSize:           96,
		TiprackSize:         96,
		MaxConstructs:       96,
		MaxClipReactions:    48,
		MaxAssemblyTipracks: 7,
		MaxSourcePlates:     6,
		AssembliesPerClip:   15,
		PurificationOffset:  48,
		ClipVolume:          30,
		BufferVolume:        3,
		EnzymeVolume:        1,
		LigaseVolume:        0.5,
		MasterMixWater:      15.5,
		FixedOverhead:       2,
		PartPerClip:         200,
		MinVolume:           1,
		DefaultPartVolume:   1,
		LinkerVolume:        1,
		PartDeadVolume:      15,
		ClipDeadVolume:      60,
		SpottingVolume:      5,
		SpottingColumnSize:  8,
		SpottingVolumes:     map[int]float64{2: 5, 3: 5, 4: 5, 5: 5, 6: 5, 7: 5},
	}
}

// MaxPartVolume is the largest part volume that still fits the reaction once
// the master mix components and fixed overhead are dispensed.
func (c Capacity) MaxPartVolume() float64 {
	return c.ClipVolume - (c.BufferVolume + c.EnzymeVolume + c.LigaseVolume + c.MasterMixWater + c.FixedOverhead)
}

// Validate rejects models that cannot produce a physical plan.
func (c Capacity) Validate() error {
	var errs []error
	positive := map[string]int{
		"plate_size":            c.PlateSize,
		"tiprack_size":          c.TiprackSize,
		"max_constructs":        c.MaxConstructs,
		"max_clip_reactions":    c.MaxClipReactions,
		"max_assembly_tipracks": c.MaxAssemblyTipracks,
		"max_source_plates":     c.MaxSourcePlates,
		"assemblies_per_clip":   c.AssembliesPerClip,
		"purification_offset":   c.PurificationOffset,
		"spotting_column_size":  c.SpottingColumnSize,
	}
	for _, name := range sortedKeys(positive) {
		if positive[name] <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, positive[name]))
		}
	}
	if c.PlateSize%wellRows != 0 {
		errs = append(errs, fmt.Errorf("plate_size must be a multiple of %d, got %d", wellRows, c.PlateSize))
	}
	if c.MaxConstructs > c.PlateSize {
		errs = append(errs, fmt.Errorf("max_constructs %d exceeds plate_size %d", c.MaxConstructs, c.PlateSize))
	}
	if c.PurificationOffset+c.MaxClipReactions > c.PlateSize {
		// Purification wells for the last reactions would fall off the plate.
		errs = append(errs, fmt.Errorf("purification_offset %d + max_clip_reactions %d exceeds plate_size %d",
			c.PurificationOffset, c.MaxClipReactions, c.PlateSize))
	}
	if c.PartPerClip <= 0 {
		errs = append(errs, errors.New("part_per_clip must be positive"))
	}
	if c.MinVolume <= 0 {
		errs = append(errs, errors.New("min_volume must be positive"))
	}
	if c.MaxPartVolume() < c.MinVolume {
		errs = append(errs, fmt.Errorf("max part volume %.2f is below min_volume %.2f", c.MaxPartVolume(), c.MinVolume))
	}
	return errors.Join(errs...)
}

// instanceCount converts a usage count into the number of physical reaction
// instances. A reaction used exactly AssembliesPerClip times gets two instances.
func (c Capacity) instanceCount(usage int) int {
	return usage/c.AssembliesPerClip + 1
}

func (c Capacity) spottingVolume(reactions int) float64 {
	if v, ok := c.SpottingVolumes[reactions]; ok {
		return v
	}
	return c.SpottingVolume
}
