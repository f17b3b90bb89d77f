package csvio

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assemblycore/internal/core"
	"assemblycore/pkg/domain"
)

func sampleBundle() domain.Bundle {
	conc := 50.0
	return domain.Bundle{
		MasterMix:    core.MasterMix(4, core.DefaultCapacity()),
		SourcePlates: []domain.SourcePlate{{DeckPosition: "2", Name: "plate.csv", Path: "/in/plate.csv"}},
		Reactions: []domain.Reaction{{
			ReactionKey:       domain.ReactionKey{Prefix: "L1-P", Part: "P1", Suffix: "L2-S"},
			UsageCount:        1,
			InstanceCount:     1,
			ReactionWells:     []string{"A1"},
			PurificationWells: []string{"A7"},
			ConstructWells:    []string{"A1"},
		}},
		Parts: []domain.SourceRecord{
			{Name: "P1", Well: "C1", DeckPosition: "2", Concentration: &conc, PerUseVolume: 4, TotalVolume: 19, InstanceCount: 1,
				ReactionWells: []string{"A1"}, PurificationWells: []string{"A7"}, ConstructWells: []string{"A1", "A2"}},
			{Name: "L1-P", Well: "A1", DeckPosition: "2", PerUseVolume: 1, TotalVolume: 16, InstanceCount: 1},
		},
		Labware: core.DefaultLabware()[:2],
	}
}

func TestWriteClipRunInfo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteClipRunInfo(&buf, sampleBundle()))

	reader := csv.NewReader(strings.NewReader(buf.String()))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	var titles []string
	for _, record := range records {
		if len(record) == 1 {
			titles = append(titles, record[0])
		}
	}
	assert.Equal(t, []string{SectionMasterMix, SectionSourcePlates, SectionClipReactions, SectionPartInfo, SectionLabware}, titles)

	assert.Equal(t, []string{"Component", "Volume (uL)"}, records[1])
	assert.Equal(t, []string{core.ComponentBuffer, "18"}, records[2])
	assert.Equal(t, []string{core.ComponentWater, "93"}, records[3])
	assert.Equal(t, []string{core.ComponentEnzyme, "6"}, records[4])
	assert.Equal(t, []string{core.ComponentLigase, "3"}, records[5])

	out := buf.String()
	assert.Contains(t, out, "L1-P,P1,L2-S,1,A1,A7,A1\n")
	assert.Contains(t, out, "P1,C1,2,50,A1,A7,19,4,1,A1;A2\n")
	assert.Contains(t, out, "L1-P,A1,2,,,,16,1,1,\n")
	assert.Contains(t, out, "2,plate.csv,/in/plate.csv\n")
	assert.True(t, strings.HasSuffix(out, "p300_mount,left\n\n"))
}

func TestWriteFinalAssemblies(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFinalAssemblies(&buf, []domain.FinalAssembly{
		{DestinationWell: "A1", SourceWells: []string{"A7", "B7"}},
		{DestinationWell: "B1", SourceWells: []string{"C7"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "A1,A7,B7\nB1,C7\n", buf.String())
}

func TestWriteWells(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWells(&buf, "A11", "A1"))
	assert.Equal(t, "Magbead ethanol well: A11\nSOC column: A1\n", buf.String())
}
