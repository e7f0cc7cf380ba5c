package consent

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs *Preferences
}

// NewMemoryStore creates an in-memory consent store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(ctx context.Context) (Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.prefs == nil {
		return Preferences{}, ErrNotFound
	}
	return *s.prefs, nil
}

func (s *MemoryStore) Set(ctx context.Context, prefs Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := prefs
	s.prefs = &p
	return nil
}
