package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory daily record store for development and
// tests. Retention is enforced on every upsert relative to the newest
// stored date.
type MemoryStore struct {
	mu       sync.RWMutex
	byDate   map[string]*DailyRecord
	keepDays int
}

// NewMemoryStore creates an empty in-memory history store.
func NewMemoryStore(keepDays int) *MemoryStore {
	if keepDays <= 0 {
		keepDays = DefaultKeepDays
	}
	return &MemoryStore{
		byDate:   make(map[string]*DailyRecord),
		keepDays: keepDays,
	}
}

func (s *MemoryStore) Upsert(ctx context.Context, rec *DailyRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	cp.UpdatedAt = time.Now()
	s.byDate[rec.Date] = &cp
	s.prune()
	return nil
}

// prune drops dates older than keepDays before the newest date held.
// Dates sort lexicographically in YYYY-MM-DD, so string comparison is
// enough. Caller holds the lock.
func (s *MemoryStore) prune() {
	newest := ""
	for date := range s.byDate {
		if date > newest {
			newest = date
		}
	}
	if newest == "" {
		return
	}
	t, err := time.Parse(DateLayout, newest)
	if err != nil {
		return
	}
	cutoff := t.AddDate(0, 0, -s.keepDays).Format(DateLayout)
	for date := range s.byDate {
		if date < cutoff {
			delete(s.byDate, date)
		}
	}
}

func (s *MemoryStore) GetByDate(ctx context.Context, date string) (*DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byDate[date]
	if !ok {
		return nil, ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]*DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*DailyRecord, 0, len(s.byDate))
	for _, rec := range s.byDate {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) ListRange(ctx context.Context, fromDate, toDate string) ([]*DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*DailyRecord
	for date, rec := range s.byDate {
		if date >= fromDate && date <= toDate {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}
