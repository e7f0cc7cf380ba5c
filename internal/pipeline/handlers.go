package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler exposes on-demand scoring runs.
type Handler struct {
	collector *Collector
}

// NewHandler creates a pipeline handler.
func NewHandler(collector *Collector) *Handler {
	return &Handler{collector: collector}
}

// RegisterRoutes sets up pipeline routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/score/run", h.Run)
}

// Run handles POST /v1/score/run
func (h *Handler) Run(c *gin.Context) {
	rec, err := h.collector.RunOnce(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "pipeline_failed",
			"message": "Failed to compute today's record",
		})
		return
	}
	c.JSON(http.StatusOK, rec)
}
