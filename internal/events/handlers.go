package events

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/screenmind/screenmind/internal/idgen"
	"github.com/screenmind/screenmind/internal/metrics"
	"github.com/screenmind/screenmind/internal/validation"
)

// Handler provides HTTP endpoints for event ingest and queries.
type Handler struct {
	store Store
}

// NewHandler creates an event log handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes sets up event routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/events", h.Ingest)
	r.GET("/events", h.Query)
}

// IngestRequest is a batch of raw events from a device.
type IngestRequest struct {
	Events []*RawEvent `json:"events" binding:"required"`
}

// Ingest handles POST /v1/events
func (h *Handler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}
	if len(req.Events) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "At least one event is required",
		})
		return
	}

	for _, e := range req.Events {
		if errs := validation.Validate(
			validation.ValidPackageName("packageName", e.PackageName),
		); len(errs) > 0 {
			metrics.EventsRejectedTotal.Inc()
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "validation_error",
				"message": errs.Error(),
				"details": errs,
			})
			return
		}
		if err := e.Validate(); err != nil {
			metrics.EventsRejectedTotal.Inc()
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_event",
				"message": err.Error(),
			})
			return
		}
		if e.Lat != nil && e.Lng != nil && !validation.IsValidLatLng(*e.Lat, *e.Lng) {
			metrics.EventsRejectedTotal.Inc()
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_event",
				"message": "lat/lng out of range",
			})
			return
		}
		if e.ID == "" {
			e.ID = idgen.WithPrefix("evt_")
		}
	}

	if err := h.store.AppendBatch(c.Request.Context(), req.Events); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "store_failed",
			"message": "Failed to persist events",
		})
		return
	}

	for _, e := range req.Events {
		metrics.EventsIngestedTotal.WithLabelValues(string(e.Type)).Inc()
	}

	c.JSON(http.StatusCreated, gin.H{"accepted": len(req.Events)})
}

// Query handles GET /v1/events?session_id=... or ?from_ms=...&to_ms=...
func (h *Handler) Query(c *gin.Context) {
	if sessionID := c.Query("session_id"); sessionID != "" {
		evts, err := h.store.QuerySession(c.Request.Context(), sessionID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "store_failed",
				"message": "Failed to query events",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": evts, "count": len(evts)})
		return
	}

	fromMs, err1 := strconv.ParseInt(c.Query("from_ms"), 10, 64)
	toMs, err2 := strconv.ParseInt(c.Query("to_ms"), 10, 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Provide session_id or numeric from_ms and to_ms",
		})
		return
	}
	if errs := validation.Validate(validation.ValidTimeRange("from_ms/to_ms", fromMs, toMs)); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	evts, err := h.store.QueryRange(c.Request.Context(), fromMs, toMs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "store_failed",
			"message": "Failed to query events",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": evts, "count": len(evts)})
}
