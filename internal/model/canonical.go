package model

import "strings"

// Canonicalization maps loose user or extractor spellings onto the persisted
// enum strings. Records are matched by exact string equality in the store, so
// anything that reaches the query compiler must already be canonical.

var zoningAliases = map[string]ZoningType{
	"residential": ZoningResidential,
	"commercial":  ZoningCommercial,
	"industrial":  ZoningIndustrial,
	"mixed use":   ZoningMixedUse,
	"mixed-use":   ZoningMixedUse,
	"mixeduse":    ZoningMixedUse,
	"mixed":       ZoningMixedUse,
	"legendary":   ZoningLegendary,
}

var plotSizeAliases = map[string]PlotSize{
	"nano":   PlotSizeNano,
	"micro":  PlotSizeMicro,
	"small":  PlotSizeSmall,
	"medium": PlotSizeMedium,
	"macro":  PlotSizeMacro,
	"large":  PlotSizeLarge,
	"mega":   PlotSizeMega,
	"giga":   PlotSizeGiga,
}

var buildingTypeAliases = map[string]BuildingType{
	"lowrise":     BuildingLowRise,
	"low rise":    BuildingLowRise,
	"low-rise":    BuildingLowRise,
	"midrise":     BuildingMidRise,
	"mid rise":    BuildingMidRise,
	"mid-rise":    BuildingMidRise,
	"highrise":    BuildingHighRise,
	"high rise":   BuildingHighRise,
	"high-rise":   BuildingHighRise,
	"tower":       BuildingTower,
	"skyscraper":  BuildingSkyscraper,
	"megascraper": BuildingMegascraper,
}

var distanceCategoryAliases = map[string]DistanceCategory{
	"close":  DistanceClose,
	"near":   DistanceClose,
	"medium": DistanceMedium,
	"mid":    DistanceMedium,
	"far":    DistanceFar,
}

// CanonicalZoning resolves a loose zoning spelling to its enum value.
func CanonicalZoning(s string) (ZoningType, bool) {
	z, ok := zoningAliases[normalizeKey(s)]
	return z, ok
}

// CanonicalPlotSize resolves a loose plot size spelling to its enum value.
func CanonicalPlotSize(s string) (PlotSize, bool) {
	p, ok := plotSizeAliases[normalizeKey(s)]
	return p, ok
}

// CanonicalBuildingType resolves a loose building type spelling to its enum value.
func CanonicalBuildingType(s string) (BuildingType, bool) {
	b, ok := buildingTypeAliases[normalizeKey(s)]
	return b, ok
}

// CanonicalDistanceCategory resolves a loose distance category spelling to its
// enum value.
func CanonicalDistanceCategory(s string) (DistanceCategory, bool) {
	d, ok := distanceCategoryAliases[normalizeKey(s)]
	return d, ok
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
