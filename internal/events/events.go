// Package events implements the append-only log of raw behavioral events.
//
// Every observed occurrence on the device — screen on/off, unlock,
// notification, location sample, app foreground change — lands here as a
// typed, timestamped RawEvent. Aggregation never mutates the log; sessions
// and features are derived by reading ranges back in timestamp order.
package events

import (
	"context"
	"errors"
)

var (
	ErrEventNotFound    = errors.New("events: not found")
	ErrUnknownType      = errors.New("events: unknown event type")
	ErrInvalidEvent     = errors.New("events: invalid event")
	ErrStoreUnavailable = errors.New("events: store unavailable")
)

// Type identifies what kind of occurrence an event records.
type Type string

const (
	TypeScreenOn           Type = "screen_on"
	TypeScreenOff          Type = "screen_off"
	TypeUnlock             Type = "unlock"
	TypeNotificationPosted Type = "notification_posted"
	TypeLocationSample     Type = "location_sample"
	TypeForegroundResumed  Type = "foreground_resumed"
	TypeForegroundPaused   Type = "foreground_paused"
)

// KnownType reports whether t is a type this service understands.
// Unknown types are rejected at ingest and skipped during aggregation.
func KnownType(t Type) bool {
	switch t {
	case TypeScreenOn, TypeScreenOff, TypeUnlock, TypeNotificationPosted,
		TypeLocationSample, TypeForegroundResumed, TypeForegroundPaused:
		return true
	}
	return false
}

// RawEvent is one observed occurrence. Immutable once written.
type RawEvent struct {
	ID          string `json:"id"`
	Type        Type   `json:"type"`
	TimestampMs int64  `json:"timestampMs"`
	SessionID   string `json:"sessionId,omitempty"`
	PackageName string `json:"packageName,omitempty"`

	// Payload for location_sample events.
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`

	// Payload for notification_posted events.
	Title  string `json:"title,omitempty"`
	Sender string `json:"sender,omitempty"`
}

// Validate checks structural invariants before an event is accepted.
func (e *RawEvent) Validate() error {
	if !KnownType(e.Type) {
		return ErrUnknownType
	}
	if e.TimestampMs <= 0 {
		return ErrInvalidEvent
	}
	if e.Type == TypeLocationSample {
		if e.Lat == nil || e.Lng == nil {
			return ErrInvalidEvent
		}
	}
	if e.Type == TypeForegroundResumed || e.Type == TypeForegroundPaused {
		if e.PackageName == "" {
			return ErrInvalidEvent
		}
	}
	return nil
}

// Store persists raw events. Query results are always ordered by
// TimestampMs ascending.
type Store interface {
	Append(ctx context.Context, event *RawEvent) error
	AppendBatch(ctx context.Context, batch []*RawEvent) error

	// QueryRange returns events with fromMs <= TimestampMs <= toMs.
	QueryRange(ctx context.Context, fromMs, toMs int64) ([]*RawEvent, error)

	// QuerySession returns all events tagged with the given session id.
	QuerySession(ctx context.Context, sessionID string) ([]*RawEvent, error)
}
