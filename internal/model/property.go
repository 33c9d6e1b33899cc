package model

import (
	"fmt"
	"time"
)

// ZoningType is the zoning designation of a plot. Values are persisted verbatim
// in the metadata JSON and matched by exact string equality, so renaming one is
// a schema change. Note ZoningMixedUse contains a space.
type ZoningType string

const (
	ZoningResidential ZoningType = "Residential"
	ZoningCommercial  ZoningType = "Commercial"
	ZoningIndustrial  ZoningType = "Industrial"
	ZoningMixedUse    ZoningType = "Mixed Use"
	ZoningLegendary   ZoningType = "Legendary"
)

// PlotSize is the plot size tier, smallest to largest.
type PlotSize string

const (
	PlotSizeNano   PlotSize = "Nano"
	PlotSizeMicro  PlotSize = "Micro"
	PlotSizeSmall  PlotSize = "Small"
	PlotSizeMedium PlotSize = "Medium"
	PlotSizeMacro  PlotSize = "Macro"
	PlotSizeLarge  PlotSize = "Large"
	PlotSizeMega   PlotSize = "Mega"
	PlotSizeGiga   PlotSize = "Giga"
)

// BuildingType is the building envelope tier by height class, lowest to tallest.
type BuildingType string

const (
	BuildingLowRise     BuildingType = "LowRise"
	BuildingMidRise     BuildingType = "MidRise"
	BuildingHighRise    BuildingType = "HighRise"
	BuildingTower       BuildingType = "Tower"
	BuildingSkyscraper  BuildingType = "Skyscraper"
	BuildingMegascraper BuildingType = "Megascraper"
)

// DistanceCategory buckets a distance-to-feature in meters.
type DistanceCategory string

const (
	DistanceClose  DistanceCategory = "Close"
	DistanceMedium DistanceCategory = "Medium"
	DistanceFar    DistanceCategory = "Far"
)

// Bucket thresholds for DistanceCategoryFor. Close is 0-300m, Medium 301-700m,
// Far 701m and beyond.
const (
	distanceCloseMaxMeters  = 300
	distanceMediumMaxMeters = 700
)

// DistanceCategoryFor derives the category bucket for a distance in meters.
// Writers must derive categories from meters rather than trust caller input,
// so the two stay consistent in stored records.
func DistanceCategoryFor(meters int) DistanceCategory {
	switch {
	case meters <= distanceCloseMaxMeters:
		return DistanceClose
	case meters <= distanceMediumMaxMeters:
		return DistanceMedium
	default:
		return DistanceFar
	}
}

// Distance is a distance to a named feature, in meters plus the derived bucket.
type Distance struct {
	Meters   int              `json:"meters"`
	Category DistanceCategory `json:"category"`
}

// Distances holds the per-feature distances of a plot.
type Distances struct {
	Ocean Distance `json:"ocean"`
	Bay   Distance `json:"bay"`
}

// Range is an inclusive numeric range.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Building is the permitted building envelope of a plot.
type Building struct {
	Floors Range `json:"floors"`
	Height Range `json:"height"`
}

// NFTData is the marketplace price attached to a record at query time by the
// enrichment merger. It is never persisted.
type NFTData struct {
	Price       float64   `json:"price"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// PlotMetadata is the structured attribute set of a land plot.
type PlotMetadata struct {
	Rank         int          `json:"rank"`
	Name         string       `json:"name"`
	Neighborhood string       `json:"neighborhood"`
	Zoning       ZoningType   `json:"zoning"`
	PlotSize     PlotSize     `json:"plotSize"`
	BuildingType BuildingType `json:"buildingType"`
	Distances    Distances    `json:"distances"`
	Building     Building     `json:"building"`
	PlotArea     float64      `json:"plotArea"`
	TokenID      string       `json:"tokenId,omitempty"`
	NFTData      *NFTData     `json:"nftData,omitempty"`
}

// PropertyRecord is a stored land plot. Records are immutable once stored and
// replaced wholesale on update.
type PropertyRecord struct {
	ID          string       `json:"id" db:"id"`
	Description string       `json:"description" db:"description"`
	Metadata    PlotMetadata `json:"metadata"`
	CreatedAt   time.Time    `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at,omitempty" db:"updated_at"`
}

// Validate checks the write-time invariants of the metadata: building ranges
// must have min <= max, the plot area must be positive, and distance categories
// must agree with their meter values.
func (m *PlotMetadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("metadata name is required")
	}
	if m.Building.Floors.Min > m.Building.Floors.Max {
		return fmt.Errorf("building floors: min %.0f > max %.0f", m.Building.Floors.Min, m.Building.Floors.Max)
	}
	if m.Building.Height.Min > m.Building.Height.Max {
		return fmt.Errorf("building height: min %.2f > max %.2f", m.Building.Height.Min, m.Building.Height.Max)
	}
	if m.PlotArea <= 0 {
		return fmt.Errorf("plot area must be positive, got %.2f", m.PlotArea)
	}
	if got := DistanceCategoryFor(m.Distances.Ocean.Meters); m.Distances.Ocean.Category != got {
		return fmt.Errorf("ocean distance category %q does not match %dm (want %q)",
			m.Distances.Ocean.Category, m.Distances.Ocean.Meters, got)
	}
	if got := DistanceCategoryFor(m.Distances.Bay.Meters); m.Distances.Bay.Category != got {
		return fmt.Errorf("bay distance category %q does not match %dm (want %q)",
			m.Distances.Bay.Category, m.Distances.Bay.Meters, got)
	}
	return nil
}

// NormalizeDistances rederives the distance categories from the meter values.
func (m *PlotMetadata) NormalizeDistances() {
	m.Distances.Ocean.Category = DistanceCategoryFor(m.Distances.Ocean.Meters)
	m.Distances.Bay.Category = DistanceCategoryFor(m.Distances.Bay.Meters)
}

// Describe generates the natural-language summary stored alongside the metadata.
func (m *PlotMetadata) Describe() string {
	return fmt.Sprintf(
		"%s is a %s %s plot in %s. It is located %dm from the ocean and %dm from the bay. "+
			"The building can have between %.0f and %.0f floors, with heights from %.0fm to %.0fm. "+
			"The plot area is %.0fm².",
		m.Name, m.PlotSize, m.Zoning, m.Neighborhood,
		m.Distances.Ocean.Meters, m.Distances.Bay.Meters,
		m.Building.Floors.Min, m.Building.Floors.Max,
		m.Building.Height.Min, m.Building.Height.Max,
		m.PlotArea,
	)
}
