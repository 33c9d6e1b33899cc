package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/metakai1/landsearch/internal/model"
	"github.com/metakai1/landsearch/internal/session"
)

// SessionHandler handles search-session lifecycle requests
type SessionHandler struct {
	sessions *session.Store
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Store) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type startSessionRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// StartSession handles POST /api/v1/sessions
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	sess, err := h.sessions.InitializeNewSession(c.Request.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, model.ErrSessionActive) {
			c.JSON(http.StatusConflict, gin.H{"error": "A search session is already active for this user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
		return
	}

	c.JSON(http.StatusCreated, sess)
}

// GetSession handles GET /api/v1/sessions/:userId
func (h *SessionHandler) GetSession(c *gin.Context) {
	userID := c.Param("userId")

	sess, err := h.sessions.GetSession(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get session"})
		return
	}
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, sess)
}

// EndSession handles DELETE /api/v1/sessions/:userId
func (h *SessionHandler) EndSession(c *gin.Context) {
	userID := c.Param("userId")

	sess, err := h.sessions.EndSession(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to end session"})
		return
	}
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, sess)
}
