package render

import (
	"bytes"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"assemblycore/internal/core"
	"assemblycore/pkg/domain"
)

func TestLiteral(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "A11", "'A11'"},
		{"quoted string", "it's", `'it\'s'`},
		{"true", true, "True"},
		{"false", false, "False"},
		{"int", 7, "7"},
		{"integral float", 8.0, "8.0"},
		{"float", 6.7, "6.7"},
		{"nil", nil, "None"},
		{"strings", []string{"A1", "B1"}, "['A1', 'B1']"},
		{"tuple", Tuple{"A1", 5.0}, "('A1', 5.0)"},
		{"singleton tuple", Tuple{"A1"}, "('A1',)"},
		{"dict", Dict{{"A1", []string{"A7", "B7"}}, {"A2", []float64{1}}}, `{"A1": ["A7", "B7"], "A2": [1.0]}`},
		{"dict bool", Dict{{"multi", true}}, `{"multi": true}`},
	}
	for _, tc := range cases {
		got, err := Literal(tc.value)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
	if _, err := Literal(struct{}{}); err == nil {
		t.Fatalf("expected unsupported type error")
	}
}

const template = "from opentrons import protocol_api\n" +
	"\n" +
	"metadata = {'apiLevel': '2.8'}\n" +
	"\n" +
	"def run(protocol):\n" +
	"    pass\n"

func TestSplice(t *testing.T) {
	var buf bytes.Buffer
	err := Splice(&buf, template, []Var{{"ethanol_well", "A11"}, {"sample_number", 4}})
	if err != nil {
		t.Fatalf("splice: %v", err)
	}
	want := "from opentrons import protocol_api\n" +
		"\n" +
		"metadata = {'apiLevel': '2.8'}\n" +
		"\n" +
		"ethanol_well='A11'\n" +
		"sample_number=4\n" +
		"\n" +
		"\n" +
		"def run(protocol):\n" +
		"    pass\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestSpliceDefOnFirstLine(t *testing.T) {
	var buf bytes.Buffer
	if err := Splice(&buf, "def run():\n    pass", []Var{{"x", 1}}); err != nil {
		t.Fatalf("splice: %v", err)
	}
	if buf.String() != "x=1\n\ndef run():\n    pass" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestSpliceErrors(t *testing.T) {
	if err := Splice(&bytes.Buffer{}, "print('hi')\n", nil); !errors.Is(err, ErrNoFunction) {
		t.Fatalf("expected ErrNoFunction, got %v", err)
	}
	if err := Splice(&bytes.Buffer{}, template, []Var{{"bad", map[string]int{}}}); err == nil {
		t.Fatalf("expected unsupported value error")
	}
}

func testBundle() domain.Bundle {
	return domain.Bundle{
		FinalAssemblies: []domain.FinalAssembly{
			{DestinationWell: "A1", SourceWells: []string{"A7", "B7"}},
			{DestinationWell: "B1", SourceWells: []string{"C7", "D7"}},
		},
		Tipracks:            1,
		MagbeadSampleNumber: 4,
		ClipDispense: domain.ClipDispensePlan{
			PrefixWells: []string{"A1"}, PrefixPlates: []string{"2"},
			SuffixWells: []string{"B1"}, SuffixPlates: []string{"2"},
			PartWells: []string{"C1"}, PartPlates: []string{"5"},
			PartVolumes: []float64{1}, WaterVolumes: []float64{7},
		},
		Spotting: []domain.SpottingGroup{{
			SourceWells: []string{"A1", "B1"}, TargetWells: []string{"A1", "B1"}, Volumes: []float64{5, 5},
		}},
		Labware: core.DefaultLabware(),
	}
}

func TestScriptsVariables(t *testing.T) {
	scripts := Scripts(testBundle(), Options{EthanolWell: "A11", SOCColumn: "A1"})
	names := make([]string, len(scripts))
	for i, s := range scripts {
		names[i] = s.Name
	}
	want := []string{ClipScript, ThermocycleScript, PurificationScript, AssemblyScript, TransformationScript}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected scripts %v", names)
	}

	purification := scripts[2]
	vars := map[string]any{}
	for _, v := range purification.Vars {
		vars[v.Name] = v.Value
	}
	if vars["multi"] != true || vars["sample_number"] != 4 || vars["ethanol_well"] != "A11" {
		t.Fatalf("unexpected purification vars %+v", vars)
	}
}

func TestRendererRender(t *testing.T) {
	templates := fstest.MapFS{}
	for _, name := range []string{ClipTemplate, ThermocycleTemplate, PurificationTemplate, AssemblyTemplate, TransformationTemplate} {
		templates[name] = &fstest.MapFile{Data: []byte(template)}
	}
	out, err := NewRenderer(templates).Render(testBundle(), Options{EthanolWell: "A11", SOCColumn: "A1"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("expected 5 scripts, got %d", len(out))
	}
	assembly := string(out[3].Content)
	if !strings.Contains(assembly, `final_assembly_dict={"A1": ["A7", "B7"], "B1": ["C7", "D7"]}`+"\n") {
		t.Fatalf("assembly dict missing:\n%s", assembly)
	}
	if !strings.Contains(assembly, "tiprack_num=1\n") {
		t.Fatalf("tiprack count missing:\n%s", assembly)
	}
	clip := string(out[0].Content)
	if !strings.Contains(clip, `"parts_vols": [1.0], "water_vols": [7.0]}`) {
		t.Fatalf("clips dict missing:\n%s", clip)
	}
	transformation := string(out[4].Content)
	if !strings.Contains(transformation, "spotting_tuples=[(('A1', 'B1'), ('A1', 'B1'), (5.0, 5.0))]\n") {
		t.Fatalf("spotting tuples missing:\n%s", transformation)
	}
	if !strings.Contains(transformation, "soc_well='A1'\n") {
		t.Fatalf("soc well missing:\n%s", transformation)
	}
}

func TestRendererMissingTemplate(t *testing.T) {
	_, err := NewRenderer(fstest.MapFS{}).Render(testBundle(), Options{})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected missing template error, got %v", err)
	}
}
