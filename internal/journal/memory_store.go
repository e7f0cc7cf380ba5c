package journal

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory journal store for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry // newest first
	byID    map[string]*Entry
}

// NewMemoryStore creates an empty in-memory journal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*Entry)}
}

func (s *MemoryStore) Create(ctx context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.entries = append([]*Entry{&cp}, s.entries...)
	s.byID[e.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	if !ok {
		return nil, ErrEntryNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*Entry, 0, n)
	for _, e := range s.entries[:n] {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}
