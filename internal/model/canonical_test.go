package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalZoning(t *testing.T) {
	tests := []struct {
		in   string
		want ZoningType
		ok   bool
	}{
		{"residential", ZoningResidential, true},
		{"  Commercial ", ZoningCommercial, true},
		{"mixed-use", ZoningMixedUse, true},
		{"MixedUse", ZoningMixedUse, true},
		{"mixed use", ZoningMixedUse, true},
		{"legendary", ZoningLegendary, true},
		{"agricultural", "", false},
	}

	for _, tt := range tests {
		got, ok := CanonicalZoning(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, "input %q", tt.in)
		}
	}
}

// The canonical Mixed Use string keeps its space: stored records use it and
// predicates match by exact equality.
func TestMixedUseKeepsSpace(t *testing.T) {
	z, ok := CanonicalZoning("mixeduse")
	assert.True(t, ok)
	assert.Equal(t, "Mixed Use", string(z))
}

func TestCanonicalPlotSize(t *testing.T) {
	got, ok := CanonicalPlotSize("LARGE")
	assert.True(t, ok)
	assert.Equal(t, PlotSizeLarge, got)

	_, ok = CanonicalPlotSize("humongous")
	assert.False(t, ok)
}

func TestCanonicalBuildingType(t *testing.T) {
	tests := []struct {
		in   string
		want BuildingType
	}{
		{"low rise", BuildingLowRise},
		{"mid-rise", BuildingMidRise},
		{"highrise", BuildingHighRise},
		{"Tower", BuildingTower},
		{"skyscraper", BuildingSkyscraper},
		{"megascraper", BuildingMegascraper},
	}

	for _, tt := range tests {
		got, ok := CanonicalBuildingType(tt.in)
		assert.True(t, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestCanonicalDistanceCategory(t *testing.T) {
	got, ok := CanonicalDistanceCategory("near")
	assert.True(t, ok)
	assert.Equal(t, DistanceClose, got)

	_, ok = CanonicalDistanceCategory("adjacent")
	assert.False(t, ok)
}
