package features

import (
	"context"
	"sync"
	"time"
)

// MemoryReportedStore is an in-memory reported-metrics store for
// development and tests.
type MemoryReportedStore struct {
	mu     sync.RWMutex
	byDate map[string]*ReportedMetrics
}

// NewMemoryReportedStore creates an empty in-memory reported store.
func NewMemoryReportedStore() *MemoryReportedStore {
	return &MemoryReportedStore{byDate: make(map[string]*ReportedMetrics)}
}

func (s *MemoryReportedStore) Upsert(ctx context.Context, m *ReportedMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	cp.UpdatedAt = time.Now()
	s.byDate[m.Date] = &cp
	return nil
}

func (s *MemoryReportedStore) GetByDate(ctx context.Context, date string) (*ReportedMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byDate[date]
	if !ok {
		return nil, ErrReportNotFound
	}
	cp := *m
	return &cp, nil
}
