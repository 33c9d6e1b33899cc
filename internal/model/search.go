package model

// SearchParams is the compiled-against projection of plot metadata. Every field
// is optional; absent fields impose no constraint. Fields are AND-composed, and
// membership within an array field is OR.
type SearchParams struct {
	Names         []string        `json:"names,omitempty"`
	Neighborhoods []string        `json:"neighborhoods,omitempty"`
	ZoningTypes   []ZoningType    `json:"zoningTypes,omitempty"`
	PlotSizes     []PlotSize      `json:"plotSizes,omitempty"`
	BuildingTypes []BuildingType  `json:"buildingTypes,omitempty"`
	TokenID       string          `json:"tokenId,omitempty"`
	Distances     *DistanceParams `json:"distances,omitempty"`
	Building      *BuildingParams `json:"building,omitempty"`
	Rarity        *RarityParams   `json:"rarity,omitempty"`
}

// DistanceParams constrains distances to named features.
type DistanceParams struct {
	Ocean *DistanceFilter `json:"ocean,omitempty"`
	Bay   *DistanceFilter `json:"bay,omitempty"`
}

// DistanceFilter constrains a single feature distance. MaxMeters and Category
// apply independently when both are set; an inconsistent pair simply matches
// nothing.
type DistanceFilter struct {
	MaxMeters *int              `json:"maxMeters,omitempty"`
	Category  *DistanceCategory `json:"category,omitempty"`
}

// BuildingParams constrains the building envelope.
type BuildingParams struct {
	Floors *RangeFilter `json:"floors,omitempty"`
	Height *RangeFilter `json:"height,omitempty"`
}

// RangeFilter is an inclusive numeric bound pair; either side may be absent.
type RangeFilter struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// RarityParams constrains the rarity rank.
type RarityParams struct {
	RankRange *RangeFilter `json:"rankRange,omitempty"`
}

// HasCriteria reports whether any top-level constraint is populated. An empty
// SearchParams is the "no constraints supplied" state and is never compiled
// into an unconstrained scan.
func (p *SearchParams) HasCriteria() bool {
	if p == nil {
		return false
	}
	return len(p.Names) > 0 ||
		len(p.Neighborhoods) > 0 ||
		len(p.ZoningTypes) > 0 ||
		len(p.PlotSizes) > 0 ||
		len(p.BuildingTypes) > 0 ||
		p.TokenID != "" ||
		p.Distances != nil ||
		p.Building != nil ||
		p.Rarity != nil
}

// SearchMetadata is the raw, possibly LLM-extracted search request: a free-text
// restatement plus partially-populated metadata constraints.
type SearchMetadata struct {
	SearchText string       `json:"searchText"`
	Metadata   SearchParams `json:"metadata"`
}

// OrderField is a whitelisted result ordering key.
type OrderField string

const (
	OrderByRank          OrderField = "rank"
	OrderByPlotArea      OrderField = "plotArea"
	OrderByOceanDistance OrderField = "oceanDistance"
	OrderByBayDistance   OrderField = "bayDistance"
)

// SearchOptions controls enrichment and ordering of a search.
type SearchOptions struct {
	Enrich     bool       `json:"enrich"`
	SalesOnly  bool       `json:"sales_only"`
	OrderBy    OrderField `json:"order_by,omitempty"`
	Descending bool       `json:"descending"`
}

// SearchRequest is the structured search payload: the caller has already
// resolved the query into filter parameters.
type SearchRequest struct {
	UserID  string         `json:"userId" binding:"required"`
	Search  SearchMetadata `json:"search"`
	Options *SearchOptions `json:"options,omitempty"`
}

// ExtractSearchRequest carries a free-text query to be turned into filter
// parameters by the extraction model before searching.
type ExtractSearchRequest struct {
	UserID  string         `json:"userId" binding:"required"`
	Query   string         `json:"query" binding:"required"`
	Options *SearchOptions `json:"options,omitempty"`
}

// SearchResponse wraps search results for the HTTP surface.
type SearchResponse struct {
	Results []PropertyRecord `json:"results"`
	Count   int              `json:"count"`
	Filters *SearchParams    `json:"filters,omitempty"`
}
