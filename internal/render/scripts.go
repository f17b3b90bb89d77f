package render

import (
	"bytes"
	"fmt"
	"io/fs"
	"strings"

	"assemblycore/internal/core"
	"assemblycore/pkg/domain"
)

// Output script names, in run order.
const (
	ClipScript           = "1_clip.ot2.py"
	ThermocycleScript    = "1_5_thermocycle.ot2.py"
	PurificationScript   = "2_purification.ot2.py"
	AssemblyScript       = "3_assembly.ot2.py"
	TransformationScript = "4_transformation.ot2.py"
)

// Template file names looked up in the template directory.
const (
	ClipTemplate           = "clip_template.py"
	ThermocycleTemplate    = "thermocycle_template.py"
	PurificationTemplate   = "purification_template.py"
	AssemblyTemplate       = "assembly_template.py"
	TransformationTemplate = "transformation_template.py"
)

// Options carries the operator inputs that are not part of the plan.
type Options struct {
	EthanolWell string
	SOCColumn   string
}

// Script is a protocol ready to be rendered from its template.
type Script struct {
	Name     string
	Template string
	Vars     []Var
}

// Rendered is the spliced output of one Script.
type Rendered struct {
	Name    string
	Content []byte
}

// Scripts lists the five protocols of a plan with their variables.
func Scripts(bundle domain.Bundle, opts Options) []Script {
	lw := func(name string) string {
		def, _ := core.LabwareDefinition(bundle.Labware, name)
		return def
	}
	p300Type := lw("p300_type")
	return []Script{
		{Name: ClipScript, Template: ClipTemplate, Vars: []Var{
			{"clips_dict", clipsDict(bundle.ClipDispense)},
			{"p10_mount", lw("p10_mount")},
			{"p10_type", lw("p10_type")},
			{"well_plate_type", lw("well_plate")},
			{"tube_rack_type", lw("tube_rack")},
		}},
		{Name: ThermocycleScript, Template: ThermocycleTemplate, Vars: []Var{
			{"well_plate_type", lw("well_plate")},
		}},
		{Name: PurificationScript, Template: PurificationTemplate, Vars: []Var{
			{"p300_mount", lw("p300_mount")},
			{"p300_type", p300Type},
			{"well_plate_type", lw("well_plate")},
			{"reagent_plate_type", lw("reagent_plate")},
			{"multi", strings.Contains(strings.ToLower(p300Type), "multi")},
			{"bead_container_type", lw("bead_container")},
			{"sample_number", bundle.MagbeadSampleNumber},
			{"ethanol_well", opts.EthanolWell},
		}},
		{Name: AssemblyScript, Template: AssemblyTemplate, Vars: []Var{
			{"final_assembly_dict", finalAssemblyDict(bundle.FinalAssemblies)},
			{"tiprack_num", bundle.Tipracks},
			{"p10_mount", lw("p10_mount")},
			{"p10_type", lw("p10_type")},
			{"mag_plate_type", lw("mag_plate")},
			{"tube_rack_type", lw("tube_rack")},
			{"aluminum_block_type", lw("aluminum_block")},
		}},
		{Name: TransformationScript, Template: TransformationTemplate, Vars: []Var{
			{"spotting_tuples", spottingTuples(bundle.Spotting)},
			{"soc_well", opts.SOCColumn},
			{"p10_mount", lw("p10_mount")},
			{"p300_mount", lw("p300_mount")},
			{"p10_type", lw("p10_type")},
			{"p300_type", p300Type},
			{"well_plate_type", lw("well_plate")},
			{"tube_rack_type", lw("tube_rack")},
			{"soc_plate_type", lw("soc_plate")},
			{"agar_plate_type", lw("agar_plate")},
		}},
	}
}

func clipsDict(p domain.ClipDispensePlan) Dict {
	return Dict{
		{"prefixes_wells", p.PrefixWells},
		{"prefixes_plates", p.PrefixPlates},
		{"suffixes_wells", p.SuffixWells},
		{"suffixes_plates", p.SuffixPlates},
		{"parts_wells", p.PartWells},
		{"parts_plates", p.PartPlates},
		{"parts_vols", p.PartVolumes},
		{"water_vols", p.WaterVolumes},
	}
}

func finalAssemblyDict(assemblies []domain.FinalAssembly) Dict {
	d := make(Dict, 0, len(assemblies))
	for _, a := range assemblies {
		d = append(d, Entry{a.DestinationWell, a.SourceWells})
	}
	return d
}

func spottingTuples(groups []domain.SpottingGroup) []any {
	out := make([]any, 0, len(groups))
	for _, g := range groups {
		out = append(out, Tuple{
			Tuple(toAny(g.SourceWells)),
			Tuple(toAny(g.TargetWells)),
			Tuple(toAny(g.Volumes)),
		})
	}
	return out
}

// Renderer reads templates from a directory tree.
type Renderer struct {
	templates fs.FS
}

// NewRenderer returns a renderer over templates, typically os.DirFS(dir).
func NewRenderer(templates fs.FS) *Renderer {
	return &Renderer{templates: templates}
}

// Render splices every script of the plan. It stops at the first missing or
// malformed template.
func (r *Renderer) Render(bundle domain.Bundle, opts Options) ([]Rendered, error) {
	scripts := Scripts(bundle, opts)
	out := make([]Rendered, 0, len(scripts))
	for _, s := range scripts {
		tmpl, err := fs.ReadFile(r.templates, s.Template)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", s.Template, err)
		}
		var buf bytes.Buffer
		if err := Splice(&buf, string(tmpl), s.Vars); err != nil {
			return nil, fmt.Errorf("render %s: %w", s.Name, err)
		}
		out = append(out, Rendered{Name: s.Name, Content: buf.Bytes()})
	}
	return out, nil
}
