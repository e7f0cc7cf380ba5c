package history

import (
	"context"
	"testing"

	"github.com/screenmind/screenmind/internal/features"
	"github.com/screenmind/screenmind/internal/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(date string, score int) *DailyRecord {
	return &DailyRecord{
		Date:      date,
		Features:  &features.Set{NightUsageMinutes: features.Measured(float64(score))},
		RiskScore: score,
		RiskLabel: risk.LabelForScore(score),
	}
}

func TestUpsertOverwritesByDate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	require.NoError(t, store.Upsert(ctx, record("2026-08-27", 10)))
	require.NoError(t, store.Upsert(ctx, record("2026-08-27", 80)))

	records, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 80, records[0].RiskScore)
	assert.Equal(t, risk.LabelHigh, records[0].RiskLabel)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	for _, date := range []string{"2026-08-25", "2026-08-27", "2026-08-26"} {
		require.NoError(t, store.Upsert(ctx, record(date, 5)))
	}

	records, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2026-08-27", records[0].Date)
	assert.Equal(t, "2026-08-26", records[1].Date)
	assert.Equal(t, "2026-08-25", records[2].Date)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestListRange(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	for _, date := range []string{"2026-08-20", "2026-08-22", "2026-08-24"} {
		require.NoError(t, store.Upsert(ctx, record(date, 5)))
	}

	records, err := store.ListRange(ctx, "2026-08-21", "2026-08-23")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2026-08-22", records[0].Date)
}

func TestRollingRetention(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(7)

	require.NoError(t, store.Upsert(ctx, record("2026-08-01", 5)))
	require.NoError(t, store.Upsert(ctx, record("2026-08-20", 5)))

	_, err := store.GetByDate(ctx, "2026-08-01")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	rec, err := store.GetByDate(ctx, "2026-08-20")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-20", rec.Date)
}

func TestUpsertRejectsBadDate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	assert.ErrorIs(t, store.Upsert(ctx, record("", 5)), ErrInvalidRecord)
	assert.ErrorIs(t, store.Upsert(ctx, record("27-08-2026", 5)), ErrInvalidRecord)
}
