package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/metakai1/landsearch/internal/extract"
	"github.com/metakai1/landsearch/internal/model"
	"github.com/metakai1/landsearch/internal/service"
)

// SearchHandler handles search-related HTTP requests
type SearchHandler struct {
	searchService *service.SearchService
	extractor     extract.Extractor
	maxResults    int
}

// NewSearchHandler creates a new search handler. The extractor may be nil
// when no extraction model is configured; the extract endpoint then responds
// with 503.
func NewSearchHandler(searchService *service.SearchService, extractor extract.Extractor, maxResults int) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		extractor:     extractor,
		maxResults:    maxResults,
	}
}

// Search handles POST /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	results, err := h.searchService.Search(c.Request.Context(), req.UserID, &req.Search, req.Options)
	if err != nil {
		h.writeSearchError(c, err)
		return
	}
	if h.maxResults > 0 && len(results) > h.maxResults {
		results = results[:h.maxResults]
	}

	c.JSON(http.StatusOK, model.SearchResponse{
		Results: results,
		Count:   len(results),
		Filters: service.BuildSearchParams(&req.Search),
	})
}

// ExtractSearch handles POST /api/v1/search/extract - free-text search
func (h *SearchHandler) ExtractSearch(c *gin.Context) {
	if h.extractor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Query extraction is not configured"})
		return
	}

	var req model.ExtractSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	meta, err := h.extractor.Extract(c.Request.Context(), req.Query)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Query extraction failed: " + err.Error()})
		return
	}

	results, err := h.searchService.Search(c.Request.Context(), req.UserID, meta, req.Options)
	if err != nil {
		h.writeSearchError(c, err)
		return
	}
	if h.maxResults > 0 && len(results) > h.maxResults {
		results = results[:h.maxResults]
	}

	c.JSON(http.StatusOK, model.SearchResponse{
		Results: results,
		Count:   len(results),
		Filters: service.BuildSearchParams(meta),
	})
}

// GetProperty handles GET /api/v1/properties/:id
func (h *SearchHandler) GetProperty(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	property, err := h.searchService.GetProperty(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property"})
		return
	}

	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	c.JSON(http.StatusOK, property)
}

// writeSearchError maps service errors onto HTTP status codes. Storage
// failures stay generic; the detail goes to the server log, not the client.
func (h *SearchHandler) writeSearchError(c *gin.Context, err error) {
	var invalidParams *model.InvalidParamsError
	var execErr *model.SearchExecutionError
	switch {
	case errors.Is(err, model.ErrNoActiveSession):
		c.JSON(http.StatusConflict, gin.H{"error": "No active search session; start one first"})
	case errors.Is(err, model.ErrNoSearchCriteria):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No search criteria provided"})
	case errors.As(err, &invalidParams):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search parameters: " + invalidParams.Error()})
	case errors.As(err, &execErr):
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
	}
}
