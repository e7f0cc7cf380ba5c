// Package journal stores free-text check-ins and their sentiment analysis.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/screenmind/screenmind/internal/sentiment"
)

var (
	// ErrEntryNotFound is returned when an entry id does not exist.
	ErrEntryNotFound = errors.New("journal: entry not found")

	// ErrEmptyText is returned for entries with no text.
	ErrEmptyText = errors.New("journal: text is required")
)

// Entry is one journal check-in. Sentiment is nil until analysis has
// run; Degraded marks a fallback result from an unreachable service.
type Entry struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Mood      string            `json:"mood,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	Sentiment *sentiment.Result `json:"sentiment,omitempty"`
	Degraded  bool              `json:"degraded,omitempty"`
}

// Store persists journal entries, newest-first on list.
type Store interface {
	Create(ctx context.Context, e *Entry) error
	Get(ctx context.Context, id string) (*Entry, error)
	List(ctx context.Context, limit int) ([]*Entry, error)
}
