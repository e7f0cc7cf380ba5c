package history

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/screenmind/screenmind/internal/validation"
)

const defaultListLimit = 30

// Handler exposes the daily history endpoints.
type Handler struct {
	store Store
	now   func() time.Time
}

// NewHandler creates a history handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store, now: time.Now}
}

// RegisterRoutes sets up history routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/history", h.List)
	r.GET("/history/today", h.Today)
	r.GET("/history/range", h.Range)
}

// List handles GET /v1/history?limit=N
func (h *Handler) List(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "limit must be a positive integer",
			})
			return
		}
		limit = n
	}

	records, err := h.store.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "store_failed",
			"message": "Failed to list history",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

// Today handles GET /v1/history/today
func (h *Handler) Today(c *gin.Context) {
	date := h.now().Format(DateLayout)
	rec, err := h.store.GetByDate(c.Request.Context(), date)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "No record for today yet",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "store_failed",
			"message": "Failed to read today's record",
		})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Range handles GET /v1/history/range?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) Range(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if errs := validation.Validate(
		validation.ValidDate("from", from),
		validation.ValidDate("to", to),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}
	if from > to {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "from must not be after to",
		})
		return
	}

	records, err := h.store.ListRange(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "store_failed",
			"message": "Failed to query history range",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}
