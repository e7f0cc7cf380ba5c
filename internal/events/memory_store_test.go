package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryRangeAscendingOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Out-of-order appends still come back ascending.
	require.NoError(t, store.AppendBatch(ctx, []*RawEvent{
		{ID: "evt_3", Type: TypeUnlock, TimestampMs: 3000},
		{ID: "evt_1", Type: TypeUnlock, TimestampMs: 1000},
		{ID: "evt_2", Type: TypeScreenOn, TimestampMs: 2000},
	}))

	evts, err := store.QueryRange(ctx, 0, 10000)
	require.NoError(t, err)
	require.Len(t, evts, 3)
	assert.Equal(t, "evt_1", evts[0].ID)
	assert.Equal(t, "evt_2", evts[1].ID)
	assert.Equal(t, "evt_3", evts[2].ID)
}

func TestQueryRangeBounds(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.AppendBatch(ctx, []*RawEvent{
		{ID: "evt_1", Type: TypeUnlock, TimestampMs: 1000},
		{ID: "evt_2", Type: TypeUnlock, TimestampMs: 5000},
		{ID: "evt_3", Type: TypeUnlock, TimestampMs: 9000},
	}))

	evts, err := store.QueryRange(ctx, 2000, 8000)
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, "evt_2", evts[0].ID)
}

func TestQuerySession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.AppendBatch(ctx, []*RawEvent{
		{ID: "evt_1", Type: TypeUnlock, TimestampMs: 1000, SessionID: "ses_a"},
		{ID: "evt_2", Type: TypeUnlock, TimestampMs: 2000, SessionID: "ses_b"},
		{ID: "evt_3", Type: TypeScreenOn, TimestampMs: 3000, SessionID: "ses_a"},
	}))

	evts, err := store.QuerySession(ctx, "ses_a")
	require.NoError(t, err)
	require.Len(t, evts, 2)
	assert.Equal(t, "evt_1", evts[0].ID)
	assert.Equal(t, "evt_3", evts[1].ID)
}

func TestQueryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Append(ctx, &RawEvent{ID: "evt_1", Type: TypeUnlock, TimestampMs: 1000}))

	evts, err := store.QueryRange(ctx, 0, 10000)
	require.NoError(t, err)
	evts[0].PackageName = "mutated"

	again, err := store.QueryRange(ctx, 0, 10000)
	require.NoError(t, err)
	assert.Empty(t, again[0].PackageName)
}

func TestValidateRejectsMalformed(t *testing.T) {
	cases := []*RawEvent{
		{Type: "bogus", TimestampMs: 1000},
		{Type: TypeUnlock, TimestampMs: 0},
		{Type: TypeLocationSample, TimestampMs: 1000}, // no coordinates
	}
	for _, e := range cases {
		assert.Error(t, e.Validate(), "event %+v should be rejected", e)
	}

	lat, lng := 52.0, 4.0
	ok := &RawEvent{Type: TypeLocationSample, TimestampMs: 1000, Lat: &lat, Lng: &lng}
	assert.NoError(t, ok.Validate())
}
