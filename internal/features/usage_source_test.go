package features

import (
	"context"
	"testing"
	"time"

	"github.com/screenmind/screenmind/internal/events"
)

func appendAll(t *testing.T, store *events.MemoryStore, evts []*events.RawEvent) {
	t.Helper()
	if err := store.AppendBatch(context.Background(), evts); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestUsageStatsNightClipping(t *testing.T) {
	store := events.NewMemoryStore()
	src := NewEventUsageSource(store)
	win := DayWindow(time.Date(2026, 8, 27, 8, 0, 0, 0, time.UTC), 0, 5)

	// Foreground 04:30-05:30: only the first 30 minutes fall in the
	// night window.
	appendAll(t, store, []*events.RawEvent{
		{ID: "evt_1", Type: events.TypeForegroundResumed, TimestampMs: win.FromMs + int64(4.5*3600000), PackageName: "com.whatsapp"},
		{ID: "evt_2", Type: events.TypeForegroundPaused, TimestampMs: win.FromMs + int64(5.5*3600000), PackageName: "com.whatsapp"},
	})

	stats, err := src.UsageStats(context.Background(), win)
	if err != nil {
		t.Fatalf("UsageStats: %v", err)
	}
	if got := stats.NightMs; got != 30*60000 {
		t.Errorf("nightMs = %d, want %d", got, 30*60000)
	}
	if got := stats.TotalMs; got != 3600000 {
		t.Errorf("totalMs = %d, want %d", got, 3600000)
	}
}

func TestRhythmIrregularity(t *testing.T) {
	win := DayWindow(time.Date(2026, 8, 27, 23, 0, 0, 0, time.UTC), 0, 5)

	screenOn := func(hour int) *events.RawEvent {
		return &events.RawEvent{
			Type:        events.TypeScreenOn,
			TimestampMs: win.FromMs + int64(hour)*3600000 + 1,
		}
	}

	// All activity in one hour: fully regular.
	concentrated := []*events.RawEvent{screenOn(9), screenOn(9), screenOn(9), screenOn(9)}
	if got := rhythmIrregularity(concentrated, win); got != 0 {
		t.Errorf("concentrated rhythm = %v, want 0", got)
	}

	// One event per hour around the clock: close to fully irregular.
	var scattered []*events.RawEvent
	for h := 0; h < 23; h++ {
		scattered = append(scattered, screenOn(h))
	}
	got := rhythmIrregularity(scattered, win)
	if got < 0.9 || got > 1 {
		t.Errorf("scattered rhythm = %v, want near 1", got)
	}

	// Fewer than two events is treated as regular.
	if got := rhythmIrregularity([]*events.RawEvent{screenOn(3)}, win); got != 0 {
		t.Errorf("single event rhythm = %v, want 0", got)
	}
}

func TestUsageStatsCountsUnlocks(t *testing.T) {
	store := events.NewMemoryStore()
	src := NewEventUsageSource(store)
	win := DayWindow(time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC), 0, 5)

	appendAll(t, store, []*events.RawEvent{
		{ID: "evt_1", Type: events.TypeUnlock, TimestampMs: win.FromMs + 1000},
		{ID: "evt_2", Type: events.TypeUnlock, TimestampMs: win.FromMs + 2000},
		{ID: "evt_3", Type: events.TypeScreenOn, TimestampMs: win.FromMs + 3000},
	})

	stats, err := src.UsageStats(context.Background(), win)
	if err != nil {
		t.Fatalf("UsageStats: %v", err)
	}
	if stats.UnlockCount != 2 {
		t.Errorf("unlockCount = %d, want 2", stats.UnlockCount)
	}
}
