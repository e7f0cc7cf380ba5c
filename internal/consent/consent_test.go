package consent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.True(t, d.GPS)
	assert.True(t, d.Calls)
	assert.True(t, d.Usage)
	assert.False(t, d.SMS)
	assert.False(t, d.Bluetooth)
	assert.False(t, d.WiFi)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	want := Preferences{GPS: true, SMS: true}
	require.NoError(t, store.Set(ctx, want))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Last write wins.
	require.NoError(t, store.Set(ctx, Preferences{Usage: true}))
	got, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Preferences{Usage: true}, got)
}

type failingStore struct{}

func (failingStore) Get(ctx context.Context) (Preferences, error) {
	return Preferences{}, errors.New("disk on fire")
}
func (failingStore) Set(ctx context.Context, prefs Preferences) error {
	return errors.New("disk on fire")
}

func TestResolveFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()

	// Missing row.
	assert.Equal(t, Defaults(), Resolve(ctx, NewMemoryStore()))

	// Store failure degrades the same way.
	assert.Equal(t, Defaults(), Resolve(ctx, failingStore{}))
}

func TestAnyEnabled(t *testing.T) {
	assert.False(t, Preferences{}.AnyEnabled())
	assert.True(t, Preferences{WiFi: true}.AnyEnabled())
}
