package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metakai1/landsearch/internal/model"
)

const csvHeader = "Rank,Name,Neighborhood,Zoning Type,Plot Size,Building Size," +
	"Distance to Ocean (m),Distance to Bay (m)," +
	"Min # of Floors,Max # of Floors,Min Building Height (m),Max Building Height (m)," +
	"Plot Area (m²),Token ID\n"

func writeCSV(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plots.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvHeader+rows), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "42,SM-577,Space Mind,Residential,Large,MidRise,150,2000,5,8,15,24,2500,577\n")

	records, err := loadCSV(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	m := records[0].Metadata
	assert.Equal(t, 42, m.Rank)
	assert.Equal(t, "SM-577", m.Name)
	assert.Equal(t, model.ZoningResidential, m.Zoning)
	assert.Equal(t, model.PlotSizeLarge, m.PlotSize)
	assert.Equal(t, model.BuildingMidRise, m.BuildingType)
	assert.Equal(t, model.DistanceClose, m.Distances.Ocean.Category, "category derived from meters")
	assert.Equal(t, model.DistanceFar, m.Distances.Bay.Category)
	assert.Equal(t, 2500.0, m.PlotArea)
	assert.Equal(t, "577", m.TokenID)
	assert.NotEmpty(t, records[0].ID)

	// Stable id: the same plot name maps to the same id across runs.
	again, err := loadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, records[0].ID, again[0].ID)
}

func TestLoadCSVRejectsMalformedNumbers(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{
			name: "malformed rank",
			row:  "not-a-rank,SM-577,Space Mind,Residential,Large,MidRise,150,2000,5,8,15,24,2500,\n",
		},
		{
			name: "malformed plot area",
			row:  "42,SM-577,Space Mind,Residential,Large,MidRise,150,2000,5,8,15,24,huge,\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadCSV(writeCSV(t, tt.row))
			require.Error(t, err, "a malformed cell must not silently become 0")
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}

func TestLoadCSVRejectsUnknownEnum(t *testing.T) {
	path := writeCSV(t, "42,SM-577,Space Mind,Agricultural,Large,MidRise,150,2000,5,8,15,24,2500,\n")

	_, err := loadCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zoning")
}

func TestLoadCSVRejectsMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots.csv")
	require.NoError(t, os.WriteFile(path, []byte("Rank,Name\n1,SM-577\n"), 0o644))

	_, err := loadCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}
