package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/screenmind/screenmind/internal/consent"
	"github.com/screenmind/screenmind/internal/events"
	"github.com/screenmind/screenmind/internal/features"
	"github.com/screenmind/screenmind/internal/history"
	"github.com/screenmind/screenmind/internal/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureBroadcaster struct {
	records []*history.DailyRecord
}

func (b *captureBroadcaster) BroadcastRiskUpdated(rec *history.DailyRecord) {
	b.records = append(b.records, rec)
}

func testCollector(t *testing.T) (*Collector, *history.MemoryStore, *events.MemoryStore, *consent.MemoryStore, *captureBroadcaster, time.Time) {
	t.Helper()

	eventStore := events.NewMemoryStore()
	consentStore := consent.NewMemoryStore()
	historyStore := history.NewMemoryStore(0)
	broadcaster := &captureBroadcaster{}

	builder := features.NewBuilder(
		features.NewEventUsageSource(eventStore),
		features.NewEventMobilitySource(eventStore, 150),
		nil,
		nil,
		nil,
	)

	now := time.Date(2026, 8, 27, 22, 0, 0, 0, time.UTC)
	collector := NewCollector(consentStore, builder, historyStore, broadcaster, 0, 5, nil).
		WithClock(func() time.Time { return now })

	return collector, historyStore, eventStore, consentStore, broadcaster, now
}

func TestRunOnceStoresDailyRecord(t *testing.T) {
	ctx := context.Background()
	collector, historyStore, eventStore, consentStore, broadcaster, now := testCollector(t)

	require.NoError(t, consentStore.Set(ctx, consent.Preferences{Usage: true}))

	dayStart := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC).UnixMilli()
	require.NoError(t, eventStore.AppendBatch(ctx, []*events.RawEvent{
		{ID: "evt_1", Type: events.TypeUnlock, TimestampMs: dayStart + 8*3600000},
		{ID: "evt_2", Type: events.TypeForegroundResumed, TimestampMs: dayStart + 8*3600000, PackageName: "com.whatsapp"},
		{ID: "evt_3", Type: events.TypeForegroundPaused, TimestampMs: dayStart + 8*3600000 + 600000, PackageName: "com.whatsapp"},
	}))

	rec, err := collector.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, now.Format(history.DateLayout), rec.Date)
	assert.Equal(t, []string{risk.CategoryBehaviour}, rec.UsedCategories)
	assert.True(t, rec.Features.ScreenTimeMinutes.Present())
	assert.Equal(t, float64(10), rec.Features.ScreenTimeMinutes.Value())

	stored, err := historyStore.GetByDate(ctx, rec.Date)
	require.NoError(t, err)
	assert.Equal(t, rec.RiskScore, stored.RiskScore)

	require.Len(t, broadcaster.records, 1)
	assert.Equal(t, rec.Date, broadcaster.records[0].Date)
}

func TestRunOnceOverwritesSameDay(t *testing.T) {
	ctx := context.Background()
	collector, historyStore, eventStore, consentStore, _, _ := testCollector(t)

	require.NoError(t, consentStore.Set(ctx, consent.Preferences{Usage: true}))

	_, err := collector.RunOnce(ctx)
	require.NoError(t, err)

	dayStart := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC).UnixMilli()
	require.NoError(t, eventStore.AppendBatch(ctx, []*events.RawEvent{
		{ID: "evt_1", Type: events.TypeUnlock, TimestampMs: dayStart + 3600000},
	}))

	rec, err := collector.RunOnce(ctx)
	require.NoError(t, err)

	records, err := historyStore.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.RiskScore, records[0].RiskScore)
}

func TestRunOnceDefaultsWhenConsentUnset(t *testing.T) {
	ctx := context.Background()
	collector, _, _, _, _, _ := testCollector(t)

	// No consent row saved: defaults (gps, calls, usage) apply, and with
	// no events at all every feature stays absent.
	rec, err := collector.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.RiskScore)
	assert.Equal(t, risk.LabelLow, rec.RiskLabel)
	assert.Empty(t, rec.UsedCategories)
	assert.Equal(t, risk.BalancedSummary, rec.Summary)
}
