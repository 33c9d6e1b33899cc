package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/metakai1/landsearch/internal/model"
	"github.com/metakai1/landsearch/internal/nft"
)

// PropertyStore is the storage capability the orchestrator needs.
type PropertyStore interface {
	SearchByMetadata(ctx context.Context, params *model.SearchParams, opts *model.SearchOptions) ([]model.PropertyRecord, error)
	GetPropertyByID(ctx context.Context, id string) (*model.PropertyRecord, error)
	LogSearch(ctx context.Context, query string, params *model.SearchParams, resultCount int, responseTimeMs int) error
}

// Enricher joins marketplace price data onto results. Implementations must
// degrade to the unenriched input on provider failure.
type Enricher interface {
	Enrich(ctx context.Context, results []model.PropertyRecord, collection string) []model.PropertyRecord
}

// SessionStore is the session capability the orchestrator needs.
type SessionStore interface {
	GetSession(ctx context.Context, userID string) (*model.SearchSession, error)
	RecordSearch(ctx context.Context, userID, query string, filters model.SearchParams, results []model.PropertyRecord) error
}

// SearchService composes the query compiler, property store, enrichment
// merger and session store into the search flow.
type SearchService struct {
	store    PropertyStore
	enricher Enricher
	sessions SessionStore
	logger   *logrus.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(store PropertyStore, enricher Enricher, sessions SessionStore, logger *logrus.Logger) *SearchService {
	return &SearchService{
		store:    store,
		enricher: enricher,
		sessions: sessions,
		logger:   logger,
	}
}

// BuildSearchParams projects raw search metadata into compiled-against search
// parameters, omitting every empty array and unconstrained sub-object. The
// omission is what turns "field present but empty" into "no constraint".
// Enum-valued fields are canonicalized so loose extractor spellings still
// match stored records.
func BuildSearchParams(meta *model.SearchMetadata) *model.SearchParams {
	params := &model.SearchParams{}
	raw := &meta.Metadata

	if len(raw.Names) > 0 {
		params.Names = raw.Names
	}
	if len(raw.Neighborhoods) > 0 {
		params.Neighborhoods = raw.Neighborhoods
	}
	if len(raw.ZoningTypes) > 0 {
		params.ZoningTypes = make([]model.ZoningType, len(raw.ZoningTypes))
		for i, z := range raw.ZoningTypes {
			if canonical, ok := model.CanonicalZoning(string(z)); ok {
				params.ZoningTypes[i] = canonical
			} else {
				params.ZoningTypes[i] = z
			}
		}
	}
	if len(raw.PlotSizes) > 0 {
		params.PlotSizes = make([]model.PlotSize, len(raw.PlotSizes))
		for i, p := range raw.PlotSizes {
			if canonical, ok := model.CanonicalPlotSize(string(p)); ok {
				params.PlotSizes[i] = canonical
			} else {
				params.PlotSizes[i] = p
			}
		}
	}
	if len(raw.BuildingTypes) > 0 {
		params.BuildingTypes = make([]model.BuildingType, len(raw.BuildingTypes))
		for i, b := range raw.BuildingTypes {
			if canonical, ok := model.CanonicalBuildingType(string(b)); ok {
				params.BuildingTypes[i] = canonical
			} else {
				params.BuildingTypes[i] = b
			}
		}
	}

	if raw.Distances != nil {
		distances := &model.DistanceParams{}
		if hasDistanceConstraint(raw.Distances.Ocean) {
			distances.Ocean = raw.Distances.Ocean
		}
		if hasDistanceConstraint(raw.Distances.Bay) {
			distances.Bay = raw.Distances.Bay
		}
		if distances.Ocean != nil || distances.Bay != nil {
			params.Distances = distances
		}
	}

	if raw.Building != nil {
		building := &model.BuildingParams{}
		if hasRangeConstraint(raw.Building.Floors) {
			building.Floors = raw.Building.Floors
		}
		if hasRangeConstraint(raw.Building.Height) {
			building.Height = raw.Building.Height
		}
		if building.Floors != nil || building.Height != nil {
			params.Building = building
		}
	}

	if raw.Rarity != nil && hasRangeConstraint(raw.Rarity.RankRange) {
		params.Rarity = &model.RarityParams{RankRange: raw.Rarity.RankRange}
	}

	if raw.TokenID != "" {
		params.TokenID = raw.TokenID
	}

	return params
}

func hasDistanceConstraint(f *model.DistanceFilter) bool {
	return f != nil && (f.MaxMeters != nil || f.Category != nil)
}

func hasRangeConstraint(r *model.RangeFilter) bool {
	return r != nil && (r.Min != nil || r.Max != nil)
}

// ExecuteSearch runs a metadata-filtered search. When the metadata carries no
// populated constraints it fails with ErrNoSearchCriteria instead of running
// an unconstrained scan: "nothing to search on" is distinguishable from "zero
// matches". InvalidParamsError and SearchExecutionError propagate untouched.
func (s *SearchService) ExecuteSearch(ctx context.Context, meta *model.SearchMetadata) ([]model.PropertyRecord, error) {
	results, _, err := s.executeSearch(ctx, meta, nil)
	return results, err
}

func (s *SearchService) executeSearch(ctx context.Context, meta *model.SearchMetadata, opts *model.SearchOptions) ([]model.PropertyRecord, *model.SearchParams, error) {
	params := BuildSearchParams(meta)
	if !params.HasCriteria() {
		return nil, nil, model.ErrNoSearchCriteria
	}

	results, err := s.store.SearchByMetadata(ctx, params, opts)
	if err != nil {
		return nil, nil, err
	}
	return results, params, nil
}

// ExecuteSearchWithEnrichment runs the metadata search and joins current
// marketplace prices onto the results. Enrichment failure degrades to the
// unenriched base set; with SalesOnly, results lacking a positive enriched
// price are dropped after enrichment.
func (s *SearchService) ExecuteSearchWithEnrichment(ctx context.Context, meta *model.SearchMetadata, opts *model.SearchOptions) ([]model.PropertyRecord, error) {
	results, _, err := s.executeSearch(ctx, meta, opts)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []model.PropertyRecord{}, nil
	}

	enriched := s.enricher.Enrich(ctx, results, "")
	if opts != nil && opts.SalesOnly {
		return nft.FilterForSale(enriched), nil
	}
	return enriched, nil
}

// Search is the full per-user flow: it requires an ACTIVE session, executes
// the (optionally enriched) search, persists the outcome into the session and
// logs the query. SalesOnly implies enrichment: the filter needs prices, which
// only the enricher attaches. Session persistence is last-writer-wins;
// concurrent searches for one user may race and the later write prevails.
func (s *SearchService) Search(ctx context.Context, userID string, meta *model.SearchMetadata, opts *model.SearchOptions) ([]model.PropertyRecord, error) {
	sess, err := s.sessions.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.Status != model.SessionActive {
		return nil, model.ErrNoActiveSession
	}

	startTime := time.Now()

	results, params, err := s.executeSearch(ctx, meta, opts)
	if err == nil && len(results) > 0 && opts != nil && (opts.Enrich || opts.SalesOnly) {
		results = s.enricher.Enrich(ctx, results, "")
		if opts.SalesOnly {
			results = nft.FilterForSale(results)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := s.sessions.RecordSearch(ctx, userID, meta.SearchText, *params, results); err != nil {
		return nil, err
	}

	// Log search (non-blocking)
	took := time.Since(startTime).Milliseconds()
	query := meta.SearchText
	logParams := params
	count := len(results)
	go func() {
		if err := s.store.LogSearch(context.Background(), query, logParams, count, int(took)); err != nil {
			s.logger.WithError(err).Debug("failed to log search")
		}
	}()

	return results, nil
}

// GetProperty retrieves a single land plot by id.
func (s *SearchService) GetProperty(ctx context.Context, id string) (*model.PropertyRecord, error) {
	return s.store.GetPropertyByID(ctx, id)
}
