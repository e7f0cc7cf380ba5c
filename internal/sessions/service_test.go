package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/screenmind/screenmind/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService(t *testing.T) (*Service, *events.MemoryStore, *time.Time) {
	t.Helper()
	eventStore := events.NewMemoryStore()
	now := time.Date(2026, 8, 27, 22, 0, 0, 0, time.UTC)
	svc := NewService(NewMemoryStore(), eventStore).
		WithClock(func() time.Time { return now })
	return svc, eventStore, &now
}

func TestStartStopLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, now := testService(t)

	session, err := svc.Start(ctx)
	require.NoError(t, err)
	assert.True(t, session.Active())
	assert.Equal(t, now.UnixMilli(), session.StartTimeMs)

	// Only one active session at a time.
	_, err = svc.Start(ctx)
	assert.ErrorIs(t, err, ErrSessionActive)

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.ID, active.ID)

	*now = now.Add(8 * time.Hour)
	stopped, err := svc.Stop(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, stopped.EndTimeMs)
	assert.Equal(t, now.UnixMilli(), *stopped.EndTimeMs)

	// Stopping again fails, starting again succeeds.
	_, err = svc.Stop(ctx, session.ID)
	assert.ErrorIs(t, err, ErrAlreadyClosed)

	_, err = svc.Start(ctx)
	require.NoError(t, err)
}

func TestStopClampsEndBeforeStart(t *testing.T) {
	ctx := context.Background()
	svc, _, now := testService(t)

	session, err := svc.Start(ctx)
	require.NoError(t, err)

	// Clock moved backwards: end is clamped to start.
	*now = now.Add(-time.Hour)
	stopped, err := svc.Stop(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StartTimeMs, *stopped.EndTimeMs)
}

func TestSummarizeSessionEvents(t *testing.T) {
	ctx := context.Background()
	svc, eventStore, now := testService(t)

	session, err := svc.Start(ctx)
	require.NoError(t, err)

	base := session.StartTimeMs
	require.NoError(t, eventStore.AppendBatch(ctx, []*events.RawEvent{
		{ID: "evt_1", Type: events.TypeUnlock, TimestampMs: base + 1000, SessionID: session.ID},
		{ID: "evt_2", Type: events.TypeNotificationPosted, TimestampMs: base + 2000, SessionID: session.ID},
		{ID: "evt_3", Type: events.TypeForegroundResumed, TimestampMs: base + 3000, SessionID: session.ID, PackageName: "com.whatsapp"},
		{ID: "evt_4", Type: events.TypeForegroundPaused, TimestampMs: base + 8000, SessionID: session.ID, PackageName: "com.whatsapp"},
		// Belongs to no session: must not count.
		{ID: "evt_5", Type: events.TypeUnlock, TimestampMs: base + 4000},
	}))

	*now = now.Add(10 * time.Second)
	summary, err := svc.Summarize(ctx, session.ID)
	require.NoError(t, err)

	assert.Equal(t, session.ID, summary.SessionID)
	assert.Equal(t, int64(10000), summary.DurationMs)
	assert.Equal(t, 1, summary.UnlockCount)
	assert.Equal(t, 1, summary.NotificationCount)
	assert.Equal(t, int64(5000), summary.PerPackageForegroundMs["com.whatsapp"])
}

func TestSummarizeUnknownSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := testService(t)

	_, err := svc.Summarize(ctx, "ses_missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
