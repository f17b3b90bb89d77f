// Package domain defines the typed records produced by the assembly planner
// together with the capacity rule primitives used to validate a plan.
package domain

import "time"

// Role suffixes attached to linker names so that the same linker used before
// and after a part resolves to two distinct source entries.
const (
	PrefixTag = "-P"
	SuffixTag = "-S"
)

// Construct is one user-authored chain of alternating linkers and parts.
type Construct struct {
	Name      string        `json:"name"`
	Tokens    []string      `json:"tokens"`
	Reactions []ReactionKey `json:"reactions"`
}

// ReactionKey identifies a CLIP reaction by its (prefix linker, part, suffix linker) triple.
type ReactionKey struct {
	Prefix string `json:"prefix"`
	Part   string `json:"part"`
	Suffix string `json:"suffix"`
}

// Names returns the three source names referenced by the reaction in prefix, part, suffix order.
func (k ReactionKey) Names() [3]string {
	return [3]string{k.Prefix, k.Part, k.Suffix}
}

func (k ReactionKey) String() string {
	return k.Prefix + "|" + k.Part + "|" + k.Suffix
}

// Reaction is a deduplicated CLIP reaction with its physical well allocation.
type Reaction struct {
	ReactionKey
	UsageCount        int      `json:"usage_count"`
	InstanceCount     int      `json:"instance_count"`
	ReactionWells     []string `json:"reaction_wells"`
	PurificationWells []string `json:"purification_wells"`
	ConstructWells    []string `json:"construct_wells,omitempty"`
}

// SourceRecord is a linker or part available on a source plate, enriched with
// the volume accounting computed for the current plan.
type SourceRecord struct {
	Name         string `json:"name"`
	Well         string `json:"well"`
	DeckPosition string `json:"deck_position"`
	// Concentration is nil when the source file leaves it blank; the part is then
	// assumed to be pre-normalised to the standard per-reaction input amount.
	Concentration *float64 `json:"concentration,omitempty"`
	SourceFile    string   `json:"source_file,omitempty"`

	PerUseVolume      float64  `json:"per_use_volume"`
	WaterVolume       float64  `json:"water_volume"`
	TotalVolume       float64  `json:"total_volume"`
	InstanceCount     int      `json:"instance_count"`
	ReactionWells     []string `json:"reaction_wells,omitempty"`
	PurificationWells []string `json:"purification_wells,omitempty"`
	ConstructWells    []string `json:"construct_wells,omitempty"`
}

// IsLinker reports whether the record names a prefix or suffix linker.
func (s SourceRecord) IsLinker() bool {
	return IsLinkerName(s.Name)
}

// IsLinkerName reports whether name carries a linker role tag.
func IsLinkerName(name string) bool {
	n := len(name)
	if n < 2 {
		return false
	}
	tag := name[n-2:]
	return tag == PrefixTag || tag == SuffixTag
}

// FinalAssembly maps one construct's destination well to the purification
// wells that feed it, in construct order.
type FinalAssembly struct {
	DestinationWell string   `json:"destination_well"`
	SourceWells     []string `json:"source_wells"`
}

// MasterMixComponent is one reagent line of the clip master mix.
type MasterMixComponent struct {
	Component string  `json:"component"`
	Volume    float64 `json:"volume_ul"`
}

// SourcePlate describes a source file placed at a deck position.
type SourcePlate struct {
	DeckPosition string `json:"deck_position"`
	Name         string `json:"name"`
	Path         string `json:"path"`
}

// LabwareItem names a labware definition used by the generated scripts.
type LabwareItem struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

// SpottingGroup is one column of final assemblies spotted during transformation.
type SpottingGroup struct {
	SourceWells []string  `json:"source_wells"`
	TargetWells []string  `json:"target_wells"`
	Volumes     []float64 `json:"volumes"`
}

// ClipDispensePlan holds flat per-instance dispense lists for the clip script.
// Every slice has one entry per reaction instance in registry order.
type ClipDispensePlan struct {
	PrefixWells  []string  `json:"prefixes_wells"`
	PrefixPlates []string  `json:"prefixes_plates"`
	SuffixWells  []string  `json:"suffixes_wells"`
	SuffixPlates []string  `json:"suffixes_plates"`
	PartWells    []string  `json:"parts_wells"`
	PartPlates   []string  `json:"parts_plates"`
	PartVolumes  []float64 `json:"parts_vols"`
	WaterVolumes []float64 `json:"water_vols"`
}

// Bundle is the complete, frozen output of a single planning run.
type Bundle struct {
	Constructs          []Construct          `json:"constructs"`
	Reactions           []Reaction           `json:"reactions"`
	Parts               []SourceRecord       `json:"parts"`
	FinalAssemblies     []FinalAssembly      `json:"final_assemblies"`
	Tipracks            int                  `json:"tipracks"`
	MasterMix           []MasterMixComponent `json:"master_mix"`
	MagbeadSampleNumber int                  `json:"magbead_sample_number"`
	ClipDispense        ClipDispensePlan     `json:"clip_dispense"`
	Spotting            []SpottingGroup      `json:"spotting"`
	SourcePlates        []SourcePlate        `json:"source_plates"`
	Labware             []LabwareItem        `json:"labware"`
}

// TotalInstances returns the number of physical reaction instances in the plan.
func (b Bundle) TotalInstances() int {
	total := 0
	for _, r := range b.Reactions {
		total += r.InstanceCount
	}
	return total
}

// ArtifactRef points at a stored run artifact.
type ArtifactRef struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
	URL         string `json:"url,omitempty"`
}

// PlanRun is the persisted record of one planning invocation.
type PlanRun struct {
	ID             string        `json:"id"`
	CreatedAt      time.Time     `json:"created_at"`
	ConstructsFile string        `json:"constructs_file"`
	SourceFiles    []string      `json:"source_files"`
	Bundle         Bundle        `json:"bundle"`
	Artifacts      []ArtifactRef `json:"artifacts,omitempty"`
}
