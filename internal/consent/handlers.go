package consent

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/screenmind/screenmind/internal/logging"
)

// Handler provides HTTP endpoints for reading and updating consent.
type Handler struct {
	store Store
}

// NewHandler creates a consent handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes sets up consent routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/consent", h.Get)
	r.PUT("/consent", h.Put)
}

// Resolve reads the current preferences, falling back to defaults when the
// row is missing or the store read fails. Storage failures degrade to the
// default toggles so scoring keeps a defined input; they never propagate.
func Resolve(ctx context.Context, store Store) Preferences {
	prefs, err := store.Get(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logging.L(ctx).Warn("consent read failed, using defaults", "error", err)
		}
		return Defaults()
	}
	return prefs
}

// Get handles GET /v1/consent
func (h *Handler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"consent": Resolve(c.Request.Context(), h.store)})
}

// Put handles PUT /v1/consent
func (h *Handler) Put(c *gin.Context) {
	var prefs Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}
	if err := h.store.Set(c.Request.Context(), prefs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "store_failed",
			"message": "Failed to save consent preferences",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"consent": prefs})
}
