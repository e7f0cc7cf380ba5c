package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/screenmind/screenmind/internal/events"
	"github.com/screenmind/screenmind/internal/idgen"
	"github.com/screenmind/screenmind/internal/metrics"
	"github.com/screenmind/screenmind/internal/traces"
)

// EventSource is the slice of the event log the aggregator needs.
type EventSource interface {
	QuerySession(ctx context.Context, sessionID string) ([]*events.RawEvent, error)
}

// Service implements session lifecycle and on-demand summarization.
type Service struct {
	store  Store
	events EventSource
	now    func() time.Time
}

// NewService creates a session service over the given stores.
func NewService(store Store, eventSource EventSource) *Service {
	return &Service{
		store:  store,
		events: eventSource,
		now:    time.Now,
	}
}

// WithClock overrides the time source (for testing).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Start opens a new session. Fails with ErrSessionActive if one is open.
func (s *Service) Start(ctx context.Context) (*Session, error) {
	if _, err := s.store.GetActive(ctx); err == nil {
		return nil, ErrSessionActive
	} else if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}

	now := s.now()
	session := &Session{
		ID:          idgen.WithPrefix("ses_"),
		StartTimeMs: now.UnixMilli(),
		CreatedAt:   now,
	}
	if err := s.store.Create(ctx, session); err != nil {
		return nil, err
	}
	metrics.ActiveSessions.Inc()
	return session, nil
}

// Stop closes an open session at the current time.
func (s *Service) Stop(ctx context.Context, id string) (*Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Active() {
		return nil, ErrAlreadyClosed
	}

	endMs := s.now().UnixMilli()
	if endMs < session.StartTimeMs {
		endMs = session.StartTimeMs
	}
	if err := s.store.Close(ctx, id, endMs); err != nil {
		return nil, err
	}
	metrics.ActiveSessions.Dec()
	session.EndTimeMs = &endMs
	return session, nil
}

// Active returns the currently open session, if any.
func (s *Service) Active(ctx context.Context) (*Session, error) {
	return s.store.GetActive(ctx)
}

// Get returns a session by id.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

// ListRecent returns recent sessions newest-first.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*Session, error) {
	return s.store.ListRecent(ctx, limit)
}

// Summarize derives the summary for a session from its events. An open
// session is bounded with "now"; a session with no events yields zero
// counts and the nominal duration.
func (s *Service) Summarize(ctx context.Context, id string) (_ *Summary, retErr error) {
	ctx, span := traces.StartSpan(ctx, "sessions.Summarize", traces.SessionID(id))
	defer func() {
		if retErr != nil {
			span.RecordError(retErr)
		}
		span.End()
	}()

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	evts, err := s.events.QuerySession(ctx, id)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(traces.EventCount(len(evts)))

	return Summarize(session, evts, s.now().UnixMilli()), nil
}
