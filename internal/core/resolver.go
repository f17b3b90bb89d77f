package core

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"assemblycore/pkg/domain"
)

// DefaultDeckPositions are the OT-2 slots source plates occupy, in the order
// source files are assigned to them.
var DefaultDeckPositions = []string{"2", "5", "8", "7", "10", "11"}

// SourceEntry is one row of a source file.
type SourceEntry struct {
	Name          string
	Well          string
	Concentration *float64
}

// SourceFile is the parsed content of one source plate file.
type SourceFile struct {
	Path    string
	Entries []SourceEntry
}

// roleWords maps the role words used by source files onto the tag letters
// produced by the decomposer.
var roleWords = []struct{ word, letter string }{
	{"Prefix", "P"},
	{"Suffix", "S"},
}

// NormalizeSourceName rewrites "X_Prefix", "X-Prefix" and "XPrefix" to "X-P"
// and the Suffix equivalents to "X-S". Other names are returned unchanged.
func NormalizeSourceName(name string) string {
	for _, role := range roleWords {
		idx := strings.Index(name, role.word)
		if idx <= 0 {
			continue
		}
		switch name[idx-1] {
		case '-':
			return strings.ReplaceAll(name, role.word, role.letter)
		case '_':
			return strings.ReplaceAll(name, "_"+role.word, "-"+role.letter)
		default:
			return strings.ReplaceAll(name, role.word, "-"+role.letter)
		}
	}
	return name
}

// PartTable is the resolved set of linkers and parts for a run, in source file order.
type PartTable struct {
	records    []domain.SourceRecord
	index      map[string]int
	plates     []domain.SourcePlate
	duplicates []string
}

// NewPartTable indexes every entry of files under its normalised name. Files
// are placed on deckPositions in order. When a name appears more than once
// the first entry wins and the name is reported by Duplicates.
func NewPartTable(files []SourceFile, deckPositions []string) (*PartTable, error) {
	if len(files) > len(deckPositions) {
		return nil, domain.CapacityExceededError{Resource: domain.ResourceSourcePlates, Count: len(files), Limit: len(deckPositions)}
	}
	t := &PartTable{index: make(map[string]int)}
	for i, file := range files {
		deck := deckPositions[i]
		t.plates = append(t.plates, domain.SourcePlate{DeckPosition: deck, Name: filepath.Base(file.Path), Path: file.Path})
		for _, entry := range file.Entries {
			if entry.Concentration != nil && *entry.Concentration <= 0 {
				return nil, fmt.Errorf("source %s in %s: concentration must be positive, got %g", entry.Name, file.Path, *entry.Concentration)
			}
			name := NormalizeSourceName(entry.Name)
			if _, exists := t.index[name]; exists {
				t.duplicates = append(t.duplicates, name)
				continue
			}
			var conc *float64
			if entry.Concentration != nil {
				v := *entry.Concentration
				conc = &v
			}
			t.index[name] = len(t.records)
			t.records = append(t.records, domain.SourceRecord{
				Name:          name,
				Well:          entry.Well,
				DeckPosition:  deck,
				Concentration: conc,
				SourceFile:    file.Path,
			})
		}
	}
	return t, nil
}

// Duplicates lists names that appeared more than once across the source files.
func (t *PartTable) Duplicates() []string { return cloneStrings(t.duplicates) }

// Plates returns the source plate placements.
func (t *PartTable) Plates() []domain.SourcePlate {
	return append([]domain.SourcePlate(nil), t.plates...)
}

// Lookup returns the record for a normalised name.
func (t *PartTable) Lookup(name string) (*domain.SourceRecord, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return &t.records[i], true
}

// Len returns the number of distinct source names.
func (t *PartTable) Len() int { return len(t.records) }

// Resolve checks that every name used by the registry has a source record,
// then fills per-use, water and total volumes together with the reaction and
// purification wells each record feeds. Nothing is modified when a name is missing.
func (t *PartTable) Resolve(reg *ReactionRegistry, capacity Capacity) error {
	for i := 0; i < reg.Len(); i++ {
		rx := reg.At(i)
		for _, name := range rx.Names() {
			if _, ok := t.index[name]; !ok {
				return domain.MissingSourceEntryError{Name: name, Reaction: rx.ReactionKey}
			}
		}
	}
	for i := 0; i < reg.Len(); i++ {
		rx := reg.At(i)
		for _, name := range rx.Names() {
			rec, _ := t.Lookup(name)
			rec.InstanceCount += rx.InstanceCount
			rec.ReactionWells = append(rec.ReactionWells, rx.ReactionWells...)
			rec.PurificationWells = append(rec.PurificationWells, rx.PurificationWells...)
		}
	}
	for i := range t.records {
		rec := &t.records[i]
		rec.PerUseVolume, rec.WaterVolume = capacity.perUseVolume(*rec)
		if rec.InstanceCount > 0 {
			rec.TotalVolume = round1(rec.PerUseVolume*float64(rec.InstanceCount)) + capacity.PartDeadVolume
		} else {
			rec.TotalVolume = 0
		}
	}
	return nil
}

// Records returns a deep copy of the table.
func (t *PartTable) Records() []domain.SourceRecord {
	out := make([]domain.SourceRecord, len(t.records))
	for i, rec := range t.records {
		if rec.Concentration != nil {
			v := *rec.Concentration
			rec.Concentration = &v
		}
		rec.ReactionWells = cloneStrings(rec.ReactionWells)
		rec.PurificationWells = cloneStrings(rec.PurificationWells)
		rec.ConstructWells = cloneStrings(rec.ConstructWells)
		out[i] = rec
	}
	return out
}

// perUseVolume returns the volume dispensed per reaction instance and the
// water that tops the reaction up to its fixed volume. Linkers use a fixed volume.
func (c Capacity) perUseVolume(rec domain.SourceRecord) (volume, water float64) {
	if rec.IsLinker() {
		return c.LinkerVolume, 0
	}
	return c.PartVolume(rec.Concentration)
}

// PartVolume computes the part volume for a concentration. A nil
// concentration means the part is already at the standard amount.
func (c Capacity) PartVolume(concentration *float64) (volume, water float64) {
	maxVol := c.MaxPartVolume()
	if concentration == nil {
		return c.DefaultPartVolume, round1(maxVol - c.DefaultPartVolume)
	}
	volume = round1(c.PartPerClip / *concentration)
	volume = math.Min(math.Max(volume, c.MinVolume), maxVol)
	return volume, round1(maxVol - volume)
}

// round1 rounds half to even at one decimal place.
func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
