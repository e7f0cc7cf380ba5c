package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screenmind/screenmind/internal/features"
	"github.com/screenmind/screenmind/internal/testutil"
)

func TestPostgresUpsertOverwrites(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db, 365)
	ctx := context.Background()

	rec := &DailyRecord{
		Date:           "2026-08-27",
		Features:       &features.Set{UnlockCount: features.Measured(40)},
		RiskScore:      20,
		RiskLabel:      "Low",
		Breakdown:      map[string]float64{"behaviour": 20},
		UsedCategories: []string{"behaviour"},
		Summary:        "Your patterns look balanced today.",
		UpdatedAt:      time.Now().UTC(),
	}
	require.NoError(t, store.Upsert(ctx, rec))

	rec.RiskScore = 55
	rec.RiskLabel = "Moderate"
	require.NoError(t, store.Upsert(ctx, rec))

	got, err := store.GetByDate(ctx, "2026-08-27")
	require.NoError(t, err)
	assert.Equal(t, 55, got.RiskScore)
	assert.Equal(t, []string{"behaviour"}, got.UsedCategories)
	require.True(t, got.Features.UnlockCount.Present())
	assert.Equal(t, 40.0, got.Features.UnlockCount.Value())

	_, err = store.GetByDate(ctx, "2026-01-01")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestPostgresRetentionPrune(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db, 7)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		rec := &DailyRecord{
			Date:      base.AddDate(0, 0, i).Format(DateLayout),
			Features:  &features.Set{},
			RiskScore: i,
			RiskLabel: "Low",
		}
		require.NoError(t, store.Upsert(ctx, rec), fmt.Sprintf("day %d", i))
	}

	recs, err := store.List(ctx, 0)
	require.NoError(t, err)
	// Dates more than keepDays behind the newest record are pruned.
	require.Len(t, recs, 8)
	assert.Equal(t, "2026-08-10", recs[0].Date)
	assert.Equal(t, "2026-08-03", recs[len(recs)-1].Date)
}
