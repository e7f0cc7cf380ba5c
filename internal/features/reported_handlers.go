package features

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/screenmind/screenmind/internal/validation"
)

// ReportedHandler exposes the device-reported daily metrics endpoints.
type ReportedHandler struct {
	store ReportedStore
}

// NewReportedHandler creates a reported-metrics handler.
func NewReportedHandler(store ReportedStore) *ReportedHandler {
	return &ReportedHandler{store: store}
}

// RegisterRoutes sets up reported-metrics routes.
func (h *ReportedHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/metrics/daily", h.Upsert)
	r.GET("/metrics/daily/:date", h.Get)
}

// Upsert handles POST /v1/metrics/daily
func (h *ReportedHandler) Upsert(c *gin.Context) {
	var m ReportedMetrics
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}
	if errs := validation.Validate(validation.ValidDate("date", m.Date)); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	if err := h.store.Upsert(c.Request.Context(), &m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "store_failed",
			"message": "Failed to save reported metrics",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": m.Date, "saved": true})
}

// Get handles GET /v1/metrics/daily/:date
func (h *ReportedHandler) Get(c *gin.Context) {
	date := c.Param("date")
	if errs := validation.Validate(validation.ValidDate("date", date)); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	m, err := h.store.GetByDate(c.Request.Context(), date)
	if err != nil {
		if err == ErrReportNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "No reported metrics for that date",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "store_failed",
			"message": "Failed to read reported metrics",
		})
		return
	}
	c.JSON(http.StatusOK, m)
}
