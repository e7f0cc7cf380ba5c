package journal

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/screenmind/screenmind/internal/idgen"
	"github.com/screenmind/screenmind/internal/sentiment"
	"github.com/screenmind/screenmind/internal/validation"
)

// Analyzer produces a sentiment result for journal text, degrading
// instead of failing.
type Analyzer interface {
	AnalyzeWithFallback(ctx context.Context, text string) (result *sentiment.Result, degraded bool)
}

// Broadcaster pushes journal analysis results to live subscribers.
type Broadcaster interface {
	BroadcastJournalAnalyzed(entry *Entry)
}

// Handler exposes the journal endpoints.
type Handler struct {
	store       Store
	analyzer    Analyzer
	broadcaster Broadcaster
}

// NewHandler creates a journal handler. analyzer and broadcaster may be
// nil; entries are then stored without analysis or live updates.
func NewHandler(store Store, analyzer Analyzer, broadcaster Broadcaster) *Handler {
	return &Handler{store: store, analyzer: analyzer, broadcaster: broadcaster}
}

// RegisterRoutes sets up journal routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/journal", h.Create)
	r.GET("/journal", h.List)
	r.GET("/journal/:id", h.Get)
}

// CreateRequest is a new journal check-in.
type CreateRequest struct {
	Text string `json:"text" binding:"required"`
	Mood string `json:"mood"`
}

// Create handles POST /v1/journal
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "text is required",
		})
		return
	}

	if len(req.Text) > validation.MaxTextLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "text too long",
		})
		return
	}
	text := validation.SanitizeString(req.Text, validation.MaxTextLength)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "text is required",
		})
		return
	}

	entry := &Entry{
		ID:        idgen.WithPrefix("jrn_"),
		Text:      text,
		Mood:      validation.SanitizeString(req.Mood, 64),
		CreatedAt: time.Now(),
	}
	if h.analyzer != nil {
		entry.Sentiment, entry.Degraded = h.analyzer.AnalyzeWithFallback(c.Request.Context(), text)
	}

	if err := h.store.Create(c.Request.Context(), entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "store_failed",
			"message": "Failed to save journal entry",
		})
		return
	}

	if h.broadcaster != nil && entry.Sentiment != nil {
		h.broadcaster.BroadcastJournalAnalyzed(entry)
	}

	c.JSON(http.StatusCreated, entry)
}

// List handles GET /v1/journal?limit=N
func (h *Handler) List(c *gin.Context) {
	limit := 0
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

	entries, err := h.store.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "store_failed",
			"message": "Failed to list journal entries",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// Get handles GET /v1/journal/:id
func (h *Handler) Get(c *gin.Context) {
	entry, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Journal entry not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "store_failed",
			"message": "Failed to read journal entry",
		})
		return
	}
	c.JSON(http.StatusOK, entry)
}
