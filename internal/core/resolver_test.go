package core

import (
	"errors"
	"testing"

	"assemblycore/pkg/domain"
)

func conc(v float64) *float64 { return &v }

func TestNormalizeSourceName(t *testing.T) {
	cases := map[string]string{
		"L1_Prefix":  "L1-P",
		"L1-Prefix":  "L1-P",
		"L1Prefix":   "L1-P",
		"L1_Suffix":  "L1-S",
		"LMS-Suffix": "LMS-S",
		"UTR1Suffix": "UTR1-S",
		"Prefix":     "Prefix",
		"pJ23100":    "pJ23100",
		"L1-P":       "L1-P",
	}
	for in, want := range cases {
		if got := NormalizeSourceName(in); got != want {
			t.Fatalf("NormalizeSourceName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPartVolumeClamping(t *testing.T) {
	c := DefaultCapacity()
	if c.MaxPartVolume() != 8 {
		t.Fatalf("expected max part volume 8, got %v", c.MaxPartVolume())
	}
	cases := []struct {
		name          string
		concentration *float64
		volume, water float64
	}{
		{"standard", nil, 1, 7},
		{"high concentration clamps to min", conc(10000), 1, 7},
		{"low concentration clamps to max", conc(1), 8, 0},
		{"in range", conc(50), 4, 4},
		{"rounded", conc(30), 6.7, 1.3},
	}
	for _, tc := range cases {
		vol, water := c.PartVolume(tc.concentration)
		if vol != tc.volume || water != tc.water {
			t.Fatalf("%s: got (%v, %v), want (%v, %v)", tc.name, vol, water, tc.volume, tc.water)
		}
	}
}

func TestRound1HalfToEven(t *testing.T) {
	cases := map[float64]float64{0.25: 0.2, 0.75: 0.8, 6.666: 6.7, 2: 2}
	for in, want := range cases {
		if got := round1(in); got != want {
			t.Fatalf("round1(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestNewPartTableDuplicatesAndPlates(t *testing.T) {
	files := []SourceFile{
		{Path: "/data/plate_a.csv", Entries: []SourceEntry{
			{Name: "L1_Prefix", Well: "A1"},
			{Name: "P1", Well: "B1", Concentration: conc(100)},
		}},
		{Path: "/data/plate_b.csv", Entries: []SourceEntry{
			{Name: "L1-Prefix", Well: "H12"},
			{Name: "P2", Well: "C3"},
		}},
	}
	table, err := NewPartTable(files, DefaultDeckPositions)
	if err != nil {
		t.Fatalf("NewPartTable: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", table.Len())
	}
	rec, ok := table.Lookup("L1-P")
	if !ok || rec.Well != "A1" || rec.DeckPosition != "2" {
		t.Fatalf("first entry should win, got %+v", rec)
	}
	if dups := table.Duplicates(); len(dups) != 1 || dups[0] != "L1-P" {
		t.Fatalf("unexpected duplicates %v", dups)
	}
	p2, _ := table.Lookup("P2")
	if p2.DeckPosition != "5" || p2.SourceFile != "/data/plate_b.csv" {
		t.Fatalf("unexpected placement %+v", p2)
	}
	plates := table.Plates()
	if len(plates) != 2 || plates[1].Name != "plate_b.csv" {
		t.Fatalf("unexpected plates %+v", plates)
	}
}

func TestNewPartTableRejectsBadInput(t *testing.T) {
	files := make([]SourceFile, 7)
	_, err := NewPartTable(files, DefaultDeckPositions)
	var capErr domain.CapacityExceededError
	if !errors.As(err, &capErr) || capErr.Resource != domain.ResourceSourcePlates {
		t.Fatalf("expected source plate capacity error, got %v", err)
	}
	_, err = NewPartTable([]SourceFile{{Path: "p.csv", Entries: []SourceEntry{{Name: "P1", Well: "A1", Concentration: conc(0)}}}}, DefaultDeckPositions)
	if err == nil {
		t.Fatalf("expected error for zero concentration")
	}
}

func TestResolveVolumesAndWells(t *testing.T) {
	c := DefaultCapacity()
	constructs := DecomposeConstructs([]ConstructRow{
		{Name: "a", Tokens: []string{"L1", "P1", "L2", "P2"}},
		{Name: "b", Tokens: []string{"L1", "P1", "L3", "P2"}},
	})
	reg := NewReactionRegistry(constructs)
	reg.AssignWells(c, NewWellAllocator(c.PurificationOffset))
	table, err := NewPartTable([]SourceFile{{Path: "plate.csv", Entries: scenarioEntries()}}, DefaultDeckPositions)
	if err != nil {
		t.Fatalf("NewPartTable: %v", err)
	}
	if err := table.Resolve(reg, c); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := map[string]struct {
		perUse, water, total float64
		instances            int
	}{
		"L1-P":   {1, 0, 17, 2},
		"P1":     {1, 7, 17, 2},
		"P2":     {8, 0, 31, 2},
		"L2-S":   {1, 0, 16, 1},
		"Unused": {1, 7, 0, 0},
	}
	for name, w := range want {
		rec, ok := table.Lookup(name)
		if !ok {
			t.Fatalf("missing record %s", name)
		}
		if rec.PerUseVolume != w.perUse || rec.WaterVolume != w.water || rec.TotalVolume != w.total || rec.InstanceCount != w.instances {
			t.Fatalf("%s: got perUse=%v water=%v total=%v instances=%d", name, rec.PerUseVolume, rec.WaterVolume, rec.TotalVolume, rec.InstanceCount)
		}
	}
	p1, _ := table.Lookup("P1")
	if len(p1.ReactionWells) != 2 || p1.ReactionWells[0] != "A1" || p1.PurificationWells[1] != "C7" {
		t.Fatalf("unexpected P1 wells %v %v", p1.ReactionWells, p1.PurificationWells)
	}
}

func TestResolveMissingEntryLeavesTableUntouched(t *testing.T) {
	c := DefaultCapacity()
	constructs := DecomposeConstructs([]ConstructRow{{Name: "a", Tokens: []string{"L1", "P1", "L9", "P2"}}})
	reg := NewReactionRegistry(constructs)
	reg.AssignWells(c, NewWellAllocator(c.PurificationOffset))
	table, err := NewPartTable([]SourceFile{{Path: "plate.csv", Entries: scenarioEntries()}}, DefaultDeckPositions)
	if err != nil {
		t.Fatalf("NewPartTable: %v", err)
	}
	err = table.Resolve(reg, c)
	var missing domain.MissingSourceEntryError
	if !errors.As(err, &missing) || !errors.Is(err, domain.ErrMissingSourceEntry) {
		t.Fatalf("expected missing source entry error, got %v", err)
	}
	if missing.Name != "L9-S" {
		t.Fatalf("expected L9-S to be reported, got %s", missing.Name)
	}
	rec, _ := table.Lookup("L1-P")
	if rec.InstanceCount != 0 || len(rec.ReactionWells) != 0 {
		t.Fatalf("table mutated before failure: %+v", rec)
	}
}

// scenarioEntries lists every linker and part used by the two-construct scenario.
func scenarioEntries() []SourceEntry {
	return []SourceEntry{
		{Name: "L1_Prefix", Well: "A1"},
		{Name: "L1_Suffix", Well: "B1"},
		{Name: "L2-Prefix", Well: "C1"},
		{Name: "L2-Suffix", Well: "D1"},
		{Name: "L3Prefix", Well: "E1"},
		{Name: "L3Suffix", Well: "F1"},
		{Name: "P1", Well: "A2"},
		{Name: "P2", Well: "B2", Concentration: conc(20)},
		{Name: "Unused", Well: "C2"},
	}
}
