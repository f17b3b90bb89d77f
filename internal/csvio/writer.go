package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"assemblycore/pkg/domain"
)

// Section titles of the clip run information file, in output order.
const (
	SectionMasterMix     = "MASTER_MIX"
	SectionSourcePlates  = "SOURCE_PLATES"
	SectionClipReactions = "CLIP_REACTIONS"
	SectionPartInfo      = "PART_INFO"
	SectionLabware       = "LABWARE"
)

// wellSeparator joins well lists inside a single cell.
const wellSeparator = ";"

type section struct {
	title  string
	header []string
	rows   [][]string
}

// WriteClipRunInfo writes the operator-facing summary of a plan: each section
// is a title row, a header row, its data rows and an empty row.
func WriteClipRunInfo(w io.Writer, bundle domain.Bundle) error {
	sections := []section{
		masterMixSection(bundle.MasterMix),
		sourcePlatesSection(bundle.SourcePlates),
		clipReactionsSection(bundle.Reactions),
		partInfoSection(bundle.Parts),
		labwareSection(bundle.Labware),
	}
	writer := csv.NewWriter(w)
	for _, s := range sections {
		if err := writer.Write([]string{s.title}); err != nil {
			return err
		}
		if err := writer.Write(s.header); err != nil {
			return err
		}
		if err := writer.WriteAll(s.rows); err != nil {
			return fmt.Errorf("write %s: %w", s.title, err)
		}
		if err := writer.Write(nil); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFinalAssemblies writes one row per construct: the destination well
// followed by the purification wells that feed it.
func WriteFinalAssemblies(w io.Writer, assemblies []domain.FinalAssembly) error {
	writer := csv.NewWriter(w)
	for _, a := range assemblies {
		record := append([]string{a.DestinationWell}, a.SourceWells...)
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteWells writes the operator notes for the purification and transformation steps.
func WriteWells(w io.Writer, ethanolWell, socColumn string) error {
	_, err := fmt.Fprintf(w, "Magbead ethanol well: %s\nSOC column: %s\n", ethanolWell, socColumn)
	return err
}

func masterMixSection(components []domain.MasterMixComponent) section {
	s := section{title: SectionMasterMix, header: []string{"Component", "Volume (uL)"}}
	for _, c := range components {
		s.rows = append(s.rows, []string{c.Component, formatFloat(c.Volume)})
	}
	return s
}

func sourcePlatesSection(plates []domain.SourcePlate) section {
	s := section{title: SectionSourcePlates, header: []string{"Deck position", "Source plate", "Path"}}
	for _, p := range plates {
		s.rows = append(s.rows, []string{p.DeckPosition, p.Name, p.Path})
	}
	return s
}

func clipReactionsSection(reactions []domain.Reaction) section {
	s := section{
		title:  SectionClipReactions,
		header: []string{"prefixes", "parts", "suffixes", "number", "clip_well", "mag_well", "constructs_in"},
	}
	for _, r := range reactions {
		s.rows = append(s.rows, []string{
			r.Prefix, r.Part, r.Suffix,
			strconv.Itoa(r.InstanceCount),
			strings.Join(r.ReactionWells, wellSeparator),
			strings.Join(r.PurificationWells, wellSeparator),
			strings.Join(r.ConstructWells, wellSeparator),
		})
	}
	return s
}

func partInfoSection(parts []domain.SourceRecord) section {
	s := section{
		title: SectionPartInfo,
		header: []string{"name", "well", "plate", "concentration", "clip_well", "mag_well",
			"total_vol", "vol_per_clip", "number", "constructs_in"},
	}
	for _, p := range parts {
		concentration := ""
		if p.Concentration != nil {
			concentration = formatFloat(*p.Concentration)
		}
		s.rows = append(s.rows, []string{
			p.Name, p.Well, p.DeckPosition, concentration,
			strings.Join(p.ReactionWells, wellSeparator),
			strings.Join(p.PurificationWells, wellSeparator),
			formatFloat(p.TotalVolume),
			formatFloat(p.PerUseVolume),
			strconv.Itoa(p.InstanceCount),
			strings.Join(p.ConstructWells, wellSeparator),
		})
	}
	return s
}

func labwareSection(items []domain.LabwareItem) section {
	s := section{title: SectionLabware, header: []string{"name", "definition"}}
	for _, item := range items {
		s.rows = append(s.rows, []string{item.Name, item.Definition})
	}
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
