package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metakai1/landsearch/internal/model"
)

// --- Mocks ---

type mockStore struct {
	mu          sync.Mutex
	results     []model.PropertyRecord
	searchErr   error
	lastParams  *model.SearchParams
	searchCalls int
	logCalls    int
}

func (m *mockStore) SearchByMetadata(ctx context.Context, params *model.SearchParams, opts *model.SearchOptions) ([]model.PropertyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	m.lastParams = params
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results, nil
}

func (m *mockStore) GetPropertyByID(ctx context.Context, id string) (*model.PropertyRecord, error) {
	for i := range m.results {
		if m.results[i].ID == id {
			return &m.results[i], nil
		}
	}
	return nil, nil
}

func (m *mockStore) LogSearch(ctx context.Context, query string, params *model.SearchParams, resultCount int, responseTimeMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logCalls++
	return nil
}

type mockEnricher struct {
	prices map[string]float64
	fail   bool
	called bool
}

func (m *mockEnricher) Enrich(ctx context.Context, results []model.PropertyRecord, collection string) []model.PropertyRecord {
	m.called = true
	if m.fail {
		// Degraded: provider failure returns the input unmodified.
		return results
	}
	enriched := make([]model.PropertyRecord, len(results))
	for i, r := range results {
		if price, ok := m.prices[r.Metadata.TokenID]; ok && r.Metadata.TokenID != "" {
			r.Metadata.NFTData = &model.NFTData{Price: price, LastUpdated: time.Now()}
		}
		enriched[i] = r
	}
	return enriched
}

type mockSessions struct {
	sessions map[string]*model.SearchSession
	recorded bool
}

func newMockSessions() *mockSessions {
	return &mockSessions{sessions: make(map[string]*model.SearchSession)}
}

func (m *mockSessions) GetSession(ctx context.Context, userID string) (*model.SearchSession, error) {
	return m.sessions[userID], nil
}

func (m *mockSessions) RecordSearch(ctx context.Context, userID, query string, filters model.SearchParams, results []model.PropertyRecord) error {
	sess, ok := m.sessions[userID]
	if !ok {
		return nil
	}
	m.recorded = true
	sess.LastQuery = query
	sess.Filters = filters
	sess.Results = results
	return nil
}

func newTestService(store *mockStore, enricher *mockEnricher, sessions *mockSessions) *SearchService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewSearchService(store, enricher, sessions, logger)
}

func tokenRecord(id, tokenID string) model.PropertyRecord {
	return model.PropertyRecord{ID: id, Metadata: model.PlotMetadata{Name: id, TokenID: tokenID}}
}

// --- Tests ---

func TestBuildSearchParamsOmitsEmptyFields(t *testing.T) {
	meta := &model.SearchMetadata{
		Metadata: model.SearchParams{
			Names:         []string{},
			Neighborhoods: []string{"Space Mind"},
			Distances:     &model.DistanceParams{},
			Building:      &model.BuildingParams{Floors: &model.RangeFilter{}},
			Rarity:        &model.RarityParams{},
		},
	}

	params := BuildSearchParams(meta)

	assert.Nil(t, params.Names)
	assert.Equal(t, []string{"Space Mind"}, params.Neighborhoods)
	assert.Nil(t, params.Distances, "empty distance object adds no constraint")
	assert.Nil(t, params.Building, "unbounded range adds no constraint")
	assert.Nil(t, params.Rarity)
}

func TestBuildSearchParamsCanonicalizesEnums(t *testing.T) {
	meta := &model.SearchMetadata{
		Metadata: model.SearchParams{
			ZoningTypes:   []model.ZoningType{"mixed-use"},
			PlotSizes:     []model.PlotSize{"large"},
			BuildingTypes: []model.BuildingType{"mid rise"},
		},
	}

	params := BuildSearchParams(meta)

	assert.Equal(t, []model.ZoningType{model.ZoningMixedUse}, params.ZoningTypes)
	assert.Equal(t, []model.PlotSize{model.PlotSizeLarge}, params.PlotSizes)
	assert.Equal(t, []model.BuildingType{model.BuildingMidRise}, params.BuildingTypes)
}

func TestExecuteSearchEmptyConstraintGuard(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, &mockEnricher{}, newMockSessions())

	results, err := svc.ExecuteSearch(context.Background(), &model.SearchMetadata{SearchText: "anything"})

	assert.ErrorIs(t, err, model.ErrNoSearchCriteria)
	assert.Nil(t, results)
	assert.Zero(t, store.searchCalls, "no constraints must never reach the store")
}

func TestExecuteSearchPassesParams(t *testing.T) {
	store := &mockStore{results: []model.PropertyRecord{tokenRecord("p1", "")}}
	svc := newTestService(store, &mockEnricher{}, newMockSessions())

	meta := &model.SearchMetadata{
		Metadata: model.SearchParams{Neighborhoods: []string{"Space Mind"}},
	}
	results, err := svc.ExecuteSearch(context.Background(), meta)

	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, []string{"Space Mind"}, store.lastParams.Neighborhoods)
}

func TestExecuteSearchPropagatesStoreErrors(t *testing.T) {
	store := &mockStore{searchErr: &model.SearchExecutionError{Err: assert.AnError}}
	svc := newTestService(store, &mockEnricher{}, newMockSessions())

	meta := &model.SearchMetadata{Metadata: model.SearchParams{TokenID: "t1"}}
	_, err := svc.ExecuteSearch(context.Background(), meta)

	var execErr *model.SearchExecutionError
	assert.ErrorAs(t, err, &execErr)
}

func TestExecuteSearchWithEnrichmentJoin(t *testing.T) {
	store := &mockStore{results: []model.PropertyRecord{
		tokenRecord("p1", "t1"),
		tokenRecord("p2", ""),
	}}
	enricher := &mockEnricher{prices: map[string]float64{"t1": 5}}
	svc := newTestService(store, enricher, newMockSessions())

	meta := &model.SearchMetadata{Metadata: model.SearchParams{Neighborhoods: []string{"A"}}}
	results, err := svc.ExecuteSearchWithEnrichment(context.Background(), meta, &model.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, results, 2)
	require.NotNil(t, results[0].Metadata.NFTData)
	assert.Equal(t, 5.0, results[0].Metadata.NFTData.Price)
	assert.Nil(t, results[1].Metadata.NFTData)
}

func TestExecuteSearchWithEnrichmentDegrades(t *testing.T) {
	store := &mockStore{results: []model.PropertyRecord{tokenRecord("p1", "t1")}}
	enricher := &mockEnricher{fail: true}
	svc := newTestService(store, enricher, newMockSessions())

	meta := &model.SearchMetadata{Metadata: model.SearchParams{Neighborhoods: []string{"A"}}}
	results, err := svc.ExecuteSearchWithEnrichment(context.Background(), meta, &model.SearchOptions{})

	require.NoError(t, err, "enrichment failure never fails the search")
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Metadata.NFTData)
}

func TestExecuteSearchWithEnrichmentSalesOnly(t *testing.T) {
	store := &mockStore{results: []model.PropertyRecord{
		tokenRecord("p1", "t1"),
		tokenRecord("p2", "t2"),
		tokenRecord("p3", ""),
	}}
	enricher := &mockEnricher{prices: map[string]float64{"t1": 5}}
	svc := newTestService(store, enricher, newMockSessions())

	meta := &model.SearchMetadata{Metadata: model.SearchParams{Neighborhoods: []string{"A"}}}
	results, err := svc.ExecuteSearchWithEnrichment(context.Background(), meta, &model.SearchOptions{SalesOnly: true})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "p1", results[0].ID)
}

func TestExecuteSearchWithEnrichmentEmptyBase(t *testing.T) {
	store := &mockStore{results: []model.PropertyRecord{}}
	enricher := &mockEnricher{}
	svc := newTestService(store, enricher, newMockSessions())

	meta := &model.SearchMetadata{Metadata: model.SearchParams{Neighborhoods: []string{"A"}}}
	results, err := svc.ExecuteSearchWithEnrichment(context.Background(), meta, &model.SearchOptions{})

	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.False(t, enricher.called, "nothing to enrich")
}

func TestSearchRequiresActiveSession(t *testing.T) {
	sessions := newMockSessions()
	svc := newTestService(&mockStore{}, &mockEnricher{}, sessions)
	meta := &model.SearchMetadata{Metadata: model.SearchParams{TokenID: "t1"}}

	_, err := svc.Search(context.Background(), "nobody", meta, nil)
	assert.ErrorIs(t, err, model.ErrNoActiveSession)

	sessions.sessions["user-1"] = &model.SearchSession{Status: model.SessionInactive}
	_, err = svc.Search(context.Background(), "user-1", meta, nil)
	assert.ErrorIs(t, err, model.ErrNoActiveSession)
}

func TestSearchPersistsResults(t *testing.T) {
	store := &mockStore{results: []model.PropertyRecord{tokenRecord("p1", "")}}
	sessions := newMockSessions()
	sessions.sessions["user-1"] = &model.SearchSession{Status: model.SessionActive}
	svc := newTestService(store, &mockEnricher{}, sessions)

	meta := &model.SearchMetadata{
		SearchText: "plots in space mind",
		Metadata:   model.SearchParams{Neighborhoods: []string{"Space Mind"}},
	}
	results, err := svc.Search(context.Background(), "user-1", meta, nil)

	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.True(t, sessions.recorded)

	sess := sessions.sessions["user-1"]
	assert.Equal(t, "plots in space mind", sess.LastQuery)
	assert.Equal(t, []string{"Space Mind"}, sess.Filters.Neighborhoods)
	assert.Len(t, sess.Results, 1)
}

func TestSearchSalesOnlyImpliesEnrichment(t *testing.T) {
	store := &mockStore{results: []model.PropertyRecord{
		tokenRecord("p1", "t1"),
		tokenRecord("p2", "t2"),
	}}
	enricher := &mockEnricher{prices: map[string]float64{"t1": 5}}
	sessions := newMockSessions()
	sessions.sessions["user-1"] = &model.SearchSession{Status: model.SessionActive}
	svc := newTestService(store, enricher, sessions)

	meta := &model.SearchMetadata{Metadata: model.SearchParams{Neighborhoods: []string{"A"}}}
	results, err := svc.Search(context.Background(), "user-1", meta, &model.SearchOptions{SalesOnly: true})

	require.NoError(t, err)
	assert.True(t, enricher.called, "sales-only needs prices, so enrichment must run")
	require.Len(t, results, 1)
	assert.Equal(t, "p1", results[0].ID)
}

func TestSearchNoCriteriaDoesNotTouchSession(t *testing.T) {
	sessions := newMockSessions()
	sessions.sessions["user-1"] = &model.SearchSession{Status: model.SessionActive}
	svc := newTestService(&mockStore{}, &mockEnricher{}, sessions)

	_, err := svc.Search(context.Background(), "user-1", &model.SearchMetadata{}, nil)

	assert.ErrorIs(t, err, model.ErrNoSearchCriteria)
	assert.False(t, sessions.recorded)
}
