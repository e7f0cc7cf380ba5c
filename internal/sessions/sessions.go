// Package sessions manages bounded tracking windows and derives summaries
// from the raw event log.
//
// A session is a time window (one sleep period, one tracking run) that
// events are attributed to. At most one session is active at a time; an
// active session is implicitly closed with "now" when summarized.
package sessions

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("sessions: not found")
	ErrSessionActive   = errors.New("sessions: another session is already active")
	ErrAlreadyClosed   = errors.New("sessions: already closed")
)

// Session is a bounded time window owned by this package.
// EndTimeMs is nil while the session is running.
type Session struct {
	ID          string    `json:"id"`
	StartTimeMs int64     `json:"startTimeMs"`
	EndTimeMs   *int64    `json:"endTimeMs,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Active reports whether the session is still open.
func (s *Session) Active() bool { return s.EndTimeMs == nil }

// EffectiveEndMs returns the session end, or nowMs while still open.
func (s *Session) EffectiveEndMs(nowMs int64) int64 {
	if s.EndTimeMs != nil {
		return *s.EndTimeMs
	}
	return nowMs
}

// Summary is derived from a session's events, recomputed on demand and
// never persisted independently.
type Summary struct {
	SessionID              string           `json:"sessionId"`
	DurationMs             int64            `json:"durationMs"`
	UnlockCount            int              `json:"unlockCount"`
	ScreenOnCount          int              `json:"screenOnCount"`
	NotificationCount      int              `json:"notificationCount"`
	PerPackageForegroundMs map[string]int64 `json:"perPackageForegroundMs"`
}

// Store persists session rows.
type Store interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)

	// GetActive returns the open session, or ErrSessionNotFound.
	GetActive(ctx context.Context) (*Session, error)

	// Close sets the end time of an open session.
	Close(ctx context.Context, id string, endTimeMs int64) error

	// ListRecent returns sessions newest-first, up to limit.
	ListRecent(ctx context.Context, limit int) ([]*Session, error)
}
