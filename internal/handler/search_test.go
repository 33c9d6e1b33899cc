package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/metakai1/landsearch/internal/model"
	"github.com/metakai1/landsearch/internal/service"
)

type stubStore struct {
	getErr error
}

func (s *stubStore) SearchByMetadata(ctx context.Context, params *model.SearchParams, opts *model.SearchOptions) ([]model.PropertyRecord, error) {
	return nil, nil
}

func (s *stubStore) GetPropertyByID(ctx context.Context, id string) (*model.PropertyRecord, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return nil, nil
}

func (s *stubStore) LogSearch(ctx context.Context, query string, params *model.SearchParams, resultCount int, responseTimeMs int) error {
	return nil
}

type stubEnricher struct{}

func (stubEnricher) Enrich(ctx context.Context, results []model.PropertyRecord, collection string) []model.PropertyRecord {
	return results
}

type stubSessions struct {
	session *model.SearchSession
}

func (s *stubSessions) GetSession(ctx context.Context, userID string) (*model.SearchSession, error) {
	return s.session, nil
}

func (s *stubSessions) RecordSearch(ctx context.Context, userID, query string, filters model.SearchParams, results []model.PropertyRecord) error {
	return nil
}

func newTestRouter(store *stubStore, sessions *stubSessions) *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := service.NewSearchService(store, stubEnricher{}, sessions, logger)
	h := NewSearchHandler(svc, nil, 100)

	router := gin.New()
	router.POST("/api/v1/search", h.Search)
	router.POST("/api/v1/search/extract", h.ExtractSearch)
	router.GET("/api/v1/properties/:id", h.GetProperty)
	return router
}

func TestGetPropertyStorageErrorStaysGeneric(t *testing.T) {
	store := &stubStore{getErr: errors.New("pq: connection refused to 10.0.0.1")}
	router := newTestRouter(store, &stubSessions{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/p1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to get property")
	assert.NotContains(t, w.Body.String(), "10.0.0.1", "storage detail must not reach the client")
}

func TestSearchErrorMapping(t *testing.T) {
	active := &stubSessions{session: &model.SearchSession{Status: model.SessionActive}}

	t.Run("no criteria is 400", func(t *testing.T) {
		router := newTestRouter(&stubStore{}, active)

		w := httptest.NewRecorder()
		body := `{"userId":"user-1","search":{"searchText":"anything","metadata":{}}}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "No search criteria")
	})

	t.Run("no active session is 409", func(t *testing.T) {
		router := newTestRouter(&stubStore{}, &stubSessions{})

		w := httptest.NewRecorder()
		body := `{"userId":"user-1","search":{"metadata":{"neighborhoods":["A"]}}}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestExtractSearchUnconfigured(t *testing.T) {
	router := newTestRouter(&stubStore{}, &stubSessions{})

	w := httptest.NewRecorder()
	body := `{"userId":"user-1","query":"large plots"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
