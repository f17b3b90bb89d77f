package core

import "assemblycore/pkg/domain"

// Master mix component names, in the order they are listed for the operator.
const (
	ComponentBuffer = "Promega T4 DNA Ligase buffer, 10X"
	ComponentWater  = "Water"
	ComponentEnzyme = "NEB BsaI-HFv2"
	ComponentLigase = "Promega T4 DNA Ligase"
)

// AssemblyTipracks returns the tipracks the final assembly needs: one tip per
// source well plus one shared master mix tip per distinct assembly size.
func AssemblyTipracks(assemblies []domain.FinalAssembly, tiprackSize int) int {
	sizes := make(map[int]struct{})
	total := 0
	for _, a := range assemblies {
		sizes[len(a.SourceWells)] = struct{}{}
		total += len(a.SourceWells)
	}
	total += len(sizes)
	return (total + tiprackSize - 1) / tiprackSize
}

// MasterMix returns reagent volumes for instances reactions, with the clip
// dead volume added as an equivalent number of extra reactions.
func MasterMix(instances int, capacity Capacity) []domain.MasterMixComponent {
	reactions := float64(instances) + capacity.ClipDeadVolume/capacity.ClipVolume
	return []domain.MasterMixComponent{
		{Component: ComponentBuffer, Volume: reactions * capacity.BufferVolume},
		{Component: ComponentWater, Volume: reactions * capacity.MasterMixWater},
		{Component: ComponentEnzyme, Volume: reactions * capacity.EnzymeVolume},
		{Component: ComponentLigase, Volume: reactions * capacity.LigaseVolume},
	}
}

// ClipDispense flattens the registry into per-instance dispense lists for the clip script.
func ClipDispense(reg *ReactionRegistry, parts *PartTable, capacity Capacity) domain.ClipDispensePlan {
	var plan domain.ClipDispensePlan
	for i := 0; i < reg.Len(); i++ {
		rx := reg.At(i)
		prefix, _ := parts.Lookup(rx.Prefix)
		suffix, _ := parts.Lookup(rx.Suffix)
		part, _ := parts.Lookup(rx.Part)
		vol, water := capacity.PartVolume(part.Concentration)
		for range rx.InstanceCount {
			plan.PrefixWells = append(plan.PrefixWells, prefix.Well)
			plan.PrefixPlates = append(plan.PrefixPlates, prefix.DeckPosition)
			plan.SuffixWells = append(plan.SuffixWells, suffix.Well)
			plan.SuffixPlates = append(plan.SuffixPlates, suffix.DeckPosition)
			plan.PartWells = append(plan.PartWells, part.Well)
			plan.PartPlates = append(plan.PartPlates, part.DeckPosition)
			plan.PartVolumes = append(plan.PartVolumes, vol)
			plan.WaterVolumes = append(plan.WaterVolumes, water)
		}
	}
	return plan
}

// SpottingGroups chunks the destination wells into plate columns for the
// transformation spotting step.
func SpottingGroups(constructs []domain.Construct, capacity Capacity) []domain.SpottingGroup {
	var groups []domain.SpottingGroup
	size := capacity.SpottingColumnSize
	for start := 0; start < len(constructs); start += size {
		end := min(start+size, len(constructs))
		g := domain.SpottingGroup{}
		for k := start; k < end; k++ {
			well := Well(k + 1)
			g.SourceWells = append(g.SourceWells, well)
			g.TargetWells = append(g.TargetWells, well)
			g.Volumes = append(g.Volumes, capacity.spottingVolume(len(constructs[k].Reactions)))
		}
		groups = append(groups, g)
	}
	return groups
}
