// Package config loads deck profiles: the capacity model, labware names and
// source deck positions a plan is computed against.
//
// Profiles are YAML (.yaml, .yml) or HCL (.hcl) files. Keys that a file leaves
// out keep their default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"

	"assemblycore/internal/core"
	"assemblycore/pkg/domain"
)

// Profile is a fully resolved deck profile.
type Profile struct {
	Capacity      core.Capacity
	Labware       []domain.LabwareItem
	DeckPositions []string
}

// DefaultProfile returns the reference OT-2 deck.
func DefaultProfile() Profile {
	return Profile{
		Capacity:      core.DefaultCapacity(),
		Labware:       core.DefaultLabware(),
		DeckPositions: append([]string(nil), core.DefaultDeckPositions...),
	}
}

// PlannerOptions returns the planner options that apply the profile's labware and deck.
func (p Profile) PlannerOptions() []core.Option {
	return []core.Option{core.WithLabware(p.Labware), core.WithDeckPositions(p.DeckPositions)}
}

// Validate checks the capacity model and the deck positions.
func (p Profile) Validate() error {
	var errs []error
	if err := p.Capacity.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(p.DeckPositions) == 0 {
		errs = append(errs, errors.New("deck_positions must not be empty"))
	}
	seen := make(map[string]struct{}, len(p.DeckPositions))
	for _, pos := range p.DeckPositions {
		if strings.TrimSpace(pos) == "" {
			errs = append(errs, errors.New("deck_positions contains an empty slot"))
			continue
		}
		if _, dup := seen[pos]; dup {
			errs = append(errs, fmt.Errorf("deck position %s listed twice", pos))
		}
		seen[pos] = struct{}{}
	}
	for _, item := range p.Labware {
		if strings.TrimSpace(item.Definition) == "" {
			errs = append(errs, fmt.Errorf("labware %s has no definition", item.Name))
		}
	}
	return errors.Join(errs...)
}

// Load reads the profile at path, choosing the decoder by file extension.
// An empty path returns the default profile.
func Load(path string) (Profile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}
	var (
		profile Profile
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		profile, err = loadYAML(path)
	case ".hcl":
		profile, err = loadHCL(path)
	default:
		return Profile{}, fmt.Errorf("profile %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return Profile{}, err
	}
	if err := profile.Validate(); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return profile, nil
}

type yamlProfile struct {
	Capacity      core.Capacity     `yaml:"capacity"`
	Labware       map[string]string `yaml:"labware"`
	DeckPositions []string          `yaml:"deck_positions"`
}

func loadYAML(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile %s: %w", path, err)
	}
	def := DefaultProfile()
	file := yamlProfile{Capacity: def.Capacity}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return build(def, file.Capacity, file.Labware, file.DeckPositions), nil
}

type hclProfile struct {
	Capacity      *hclCapacity      `hcl:"capacity,block"`
	Labware       map[string]string `hcl:"labware,optional"`
	DeckPositions []string          `hcl:"deck_positions,optional"`
}

// hclCapacity splits off spotting_volumes, whose keys are reaction counts.
type hclCapacity struct {
	SpottingVolumes map[string]float64 `hcl:"spotting_volumes,optional"`
	Remain          hcl.Body           `hcl:",remain"`
}

func loadHCL(path string) (Profile, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, diags)
	}
	var file hclProfile
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &file); diags.HasErrors() {
		return Profile{}, fmt.Errorf("decode profile %s: %w", path, diags)
	}
	def := DefaultProfile()
	capacity := def.Capacity
	if file.Capacity != nil {
		if diags := gohcl.DecodeBody(file.Capacity.Remain, nil, &capacity); diags.HasErrors() {
			return Profile{}, fmt.Errorf("decode capacity %s: %w", path, diags)
		}
		for key, volume := range file.Capacity.SpottingVolumes {
			reactions, err := strconv.Atoi(key)
			if err != nil {
				return Profile{}, fmt.Errorf("profile %s: spotting_volumes key %q is not a reaction count", path, key)
			}
			capacity.SpottingVolumes[reactions] = volume
		}
	}
	return build(def, capacity, file.Labware, file.DeckPositions), nil
}

// build overlays labware overrides on the default table, keeping its order and
// appending unknown names sorted.
func build(def Profile, capacity core.Capacity, labware map[string]string, deck []string) Profile {
	profile := Profile{Capacity: capacity, DeckPositions: def.DeckPositions, Labware: def.Labware}
	if len(deck) > 0 {
		profile.DeckPositions = append([]string(nil), deck...)
	}
	if len(labware) == 0 {
		return profile
	}
	known := make(map[string]struct{}, len(profile.Labware))
	for i, item := range profile.Labware {
		known[item.Name] = struct{}{}
		if v, ok := labware[item.Name]; ok {
			profile.Labware[i].Definition = v
		}
	}
	var extra []string
	for name := range labware {
		if _, ok := known[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		profile.Labware = append(profile.Labware, domain.LabwareItem{Name: name, Definition: labware[name]})
	}
	return profile
}
