package events

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu     sync.RWMutex
	events []*RawEvent
	sorted bool
}

// NewMemoryStore creates an in-memory event log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sorted: true}
}

func (s *MemoryStore) Append(ctx context.Context, event *RawEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *event
	if n := len(s.events); n > 0 && s.events[n-1].TimestampMs > e.TimestampMs {
		s.sorted = false
	}
	s.events = append(s.events, &e)
	return nil
}

func (s *MemoryStore) AppendBatch(ctx context.Context, batch []*RawEvent) error {
	for _, e := range batch {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, event := range batch {
		e := *event
		if n := len(s.events); n > 0 && s.events[n-1].TimestampMs > e.TimestampMs {
			s.sorted = false
		}
		s.events = append(s.events, &e)
	}
	return nil
}

func (s *MemoryStore) QueryRange(ctx context.Context, fromMs, toMs int64) ([]*RawEvent, error) {
	s.mu.Lock()
	s.ensureSorted()
	var result []*RawEvent
	for _, e := range s.events {
		if e.TimestampMs >= fromMs && e.TimestampMs <= toMs {
			c := *e
			result = append(result, &c)
		}
	}
	s.mu.Unlock()
	return result, nil
}

func (s *MemoryStore) QuerySession(ctx context.Context, sessionID string) ([]*RawEvent, error) {
	s.mu.Lock()
	s.ensureSorted()
	var result []*RawEvent
	for _, e := range s.events {
		if e.SessionID == sessionID {
			c := *e
			result = append(result, &c)
		}
	}
	s.mu.Unlock()
	return result, nil
}

// ensureSorted restores ascending timestamp order after out-of-order
// appends. Caller holds the write lock.
func (s *MemoryStore) ensureSorted() {
	if s.sorted {
		return
	}
	sort.SliceStable(s.events, func(i, j int) bool {
		return s.events[i].TimestampMs < s.events[j].TimestampMs
	})
	s.sorted = true
}
