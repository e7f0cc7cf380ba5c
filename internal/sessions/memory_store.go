package sessions

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Create(ctx context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *session
	s.sessions[session.ID] = &c
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	c := *session
	return &c, nil
}

func (s *MemoryStore) GetActive(ctx context.Context) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *Session
	for _, session := range s.sessions {
		if !session.Active() {
			continue
		}
		if latest == nil || session.StartTimeMs > latest.StartTimeMs {
			latest = session
		}
	}
	if latest == nil {
		return nil, ErrSessionNotFound
	}
	c := *latest
	return &c, nil
}

func (s *MemoryStore) Close(ctx context.Context, id string, endTimeMs int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if !session.Active() {
		return ErrAlreadyClosed
	}
	end := endTimeMs
	session.EndTimeMs = &end
	return nil
}

func (s *MemoryStore) ListRecent(ctx context.Context, limit int) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		c := *session
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].StartTimeMs > all[j].StartTimeMs
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
