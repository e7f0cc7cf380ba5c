package sessions

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Broadcaster publishes session lifecycle events to live dashboards.
type Broadcaster interface {
	BroadcastSessionStarted(session *Session)
	BroadcastSessionStopped(session *Session)
}

// Handler provides HTTP endpoints for session lifecycle and summaries.
type Handler struct {
	service     *Service
	broadcaster Broadcaster
}

// NewHandler creates a session handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// WithBroadcaster adds a live-feed broadcaster for lifecycle events.
func (h *Handler) WithBroadcaster(b Broadcaster) *Handler {
	h.broadcaster = b
	return h
}

// RegisterRoutes sets up session routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/sessions/start", h.Start)
	r.POST("/sessions/:id/stop", h.Stop)
	r.GET("/sessions/active", h.Active)
	r.GET("/sessions", h.List)
	r.GET("/sessions/:id/summary", h.Summary)
}

// Start handles POST /v1/sessions/start
func (h *Handler) Start(c *gin.Context) {
	session, err := h.service.Start(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrSessionActive) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "session_active",
				"message": "Another session is already active",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to start session",
		})
		return
	}
	if h.broadcaster != nil {
		h.broadcaster.BroadcastSessionStarted(session)
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// Stop handles POST /v1/sessions/:id/stop
func (h *Handler) Stop(c *gin.Context) {
	session, err := h.service.Stop(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Session not found",
			})
		case errors.Is(err, ErrAlreadyClosed):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "already_closed",
				"message": "Session is already closed",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to stop session",
			})
		}
		return
	}
	if h.broadcaster != nil {
		h.broadcaster.BroadcastSessionStopped(session)
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// Active handles GET /v1/sessions/active
func (h *Handler) Active(c *gin.Context) {
	session, err := h.service.Active(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "No active session",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to look up active session",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// List handles GET /v1/sessions?limit=N
func (h *Handler) List(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	list, err := h.service.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to list sessions",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": list, "count": len(list)})
}

// Summary handles GET /v1/sessions/:id/summary
func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.service.Summarize(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Session not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to summarize session",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
