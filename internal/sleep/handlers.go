package sleep

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/screenmind/screenmind/internal/metrics"
	"github.com/screenmind/screenmind/internal/sessions"
)

// Summarizer produces a session summary for scoring.
type Summarizer interface {
	Summarize(ctx context.Context, sessionID string) (*sessions.Summary, error)
}

// Handler exposes sleep scoring over HTTP.
type Handler struct {
	summarizer Summarizer
}

// NewHandler creates a sleep scoring handler.
func NewHandler(summarizer Summarizer) *Handler {
	return &Handler{summarizer: summarizer}
}

// RegisterRoutes sets up sleep routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/sessions/:id/sleep", h.ScoreSession)
}

// ScoreSession handles GET /v1/sessions/:id/sleep
func (h *Handler) ScoreSession(c *gin.Context) {
	summary, err := h.summarizer.Summarize(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sessions.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Session not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "summarize_failed",
			"message": "Failed to summarize session",
		})
		return
	}

	result := Score(summary)
	metrics.SleepScoresTotal.WithLabelValues(string(result.Risk)).Inc()

	c.JSON(http.StatusOK, gin.H{
		"sessionId": summary.SessionID,
		"result":    result,
	})
}
