package core

import "assemblycore/pkg/domain"

// DefaultLabware lists the pipette and plate definitions of the reference deck.
func DefaultLabware() []domain.LabwareItem {
	return []domain.LabwareItem{
		{Name: "p10_mount", Definition: "right"},
		{Name: "p300_mount", Definition: "left"},
		{Name: "p10_type", Definition: "p10_single"},
		{Name: "p300_type", Definition: "p300_multi"},
		{Name: "well_plate", Definition: "biorad_96_wellplate_200ul_pcr"},
		{Name: "reagent_plate", Definition: "usascientific_12_reservoir_22ml"},
		{Name: "mag_plate", Definition: "biorad_96_wellplate_200ul_pcr"},
		{Name: "tube_rack", Definition: "opentrons_24_tuberack_nest_1.5ml_snapcap"},
		{Name: "aluminum_block", Definition: "opentrons_96_aluminumblock_biorad_wellplate_200ul"},
		{Name: "bead_container", Definition: "usascientific_96_wellplate_2.4ml_deep"},
		{Name: "soc_plate", Definition: "usascientific_96_wellplate_2.4ml_deep"},
		{Name: "agar_plate", Definition: "thermofisher_96_wellplate_180ul"},
	}
}

// LabwareDefinition returns the definition registered under name.
func LabwareDefinition(items []domain.LabwareItem, name string) (string, bool) {
	for _, item := range items {
		if item.Name == name {
			return item.Definition, true
		}
	}
	return "", false
}
