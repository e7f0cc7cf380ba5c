package features

import (
	"context"
	"math"

	"github.com/screenmind/screenmind/internal/events"
	"github.com/screenmind/screenmind/internal/sessions"
)

// EventUsageSource derives usage statistics from the raw event log using
// the same foreground reconstruction the session aggregator uses.
type EventUsageSource struct {
	events events.Store
}

// NewEventUsageSource creates a usage source over the event log.
func NewEventUsageSource(store events.Store) *EventUsageSource {
	return &EventUsageSource{events: store}
}

func (s *EventUsageSource) UsageStats(ctx context.Context, win Window) (*UsageStats, error) {
	evts, err := s.events.QueryRange(ctx, win.FromMs, win.ToMs)
	if err != nil {
		return nil, err
	}
	if len(evts) == 0 {
		return nil, ErrNoData
	}

	intervals := sessions.ReconstructForeground(evts, win.ToMs)
	totalMs, perPackage := sessions.ForegroundTotals(intervals)

	return &UsageStats{
		TotalMs:            totalMs,
		PerPackageMs:       perPackage,
		NightMs:            sessions.ClipTotal(intervals, win.NightFromMs, win.NightToMs),
		UnlockCount:        sessions.CountType(evts, events.TypeUnlock),
		RhythmIrregularity: rhythmIrregularity(evts, win),
	}, nil
}

// rhythmIrregularity measures how scattered screen-on activity is across
// the hours of the day: normalized Shannon entropy of the hourly screen-on
// histogram. Concentrated usage scores near 0, usage smeared over all
// hours scores near 1. Fewer than two events is treated as regular.
func rhythmIrregularity(evts []*events.RawEvent, win Window) float64 {
	var histogram [24]int
	total := 0
	for _, e := range evts {
		if e.Type != events.TypeScreenOn {
			continue
		}
		hourMs := (e.TimestampMs - win.FromMs) / (60 * 60 * 1000)
		if hourMs < 0 || hourMs > 23 {
			continue
		}
		histogram[hourMs]++
		total++
	}
	if total < 2 {
		return 0
	}

	entropy := 0.0
	for _, n := range histogram {
		if n == 0 {
			continue
		}
		p := float64(n) / float64(total)
		entropy -= p * math.Log(p)
	}
	return entropy / math.Log(24)
}
