package features

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPermissionDenied marks a source whose underlying OS permission is
	// not granted. Surfaced distinctly so the caller can prompt for
	// settings instead of showing a generic failure.
	ErrPermissionDenied = errors.New("features: permission denied")

	// ErrNoData marks a source with nothing recorded for the window.
	ErrNoData = errors.New("features: no data for window")
)

// Window is the day slice features are built over, with the night
// sub-interval pre-resolved in the same epoch-millisecond clock.
type Window struct {
	Date        string // YYYY-MM-DD, in the day's local timezone
	FromMs      int64
	ToMs        int64
	NightFromMs int64
	NightToMs   int64
}

// DayWindow builds the window for the calendar day containing t, in t's
// location, with the night interval at [nightStartHour, nightEndHour).
func DayWindow(t time.Time, nightStartHour, nightEndHour int) Window {
	year, month, day := t.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	return Window{
		Date:        midnight.Format("2006-01-02"),
		FromMs:      midnight.UnixMilli(),
		ToMs:        t.UnixMilli(),
		NightFromMs: midnight.Add(time.Duration(nightStartHour) * time.Hour).UnixMilli(),
		NightToMs:   midnight.Add(time.Duration(nightEndHour) * time.Hour).UnixMilli(),
	}
}

// UsageStats is what the usage source reports for a window.
type UsageStats struct {
	TotalMs            int64
	PerPackageMs       map[string]int64
	NightMs            int64
	UnlockCount        int
	RhythmIrregularity float64 // [0,1]
}

// MobilityStats is what the mobility source reports for a window.
type MobilityStats struct {
	DistanceMeters float64
	TimeAtHomePct  float64
	Entropy        float64
	Transitions    int
}

// CommStats is what the communication source reports for a window.
// Calls and SMS are gated separately; a source that only has one side
// reports the other as absent via the Has flags.
type CommStats struct {
	CallsPerDay    float64
	UniqueContacts float64
	SilenceHours   float64
	HasCalls       bool
	SMSPerDay      float64
	HasSMS         bool
}

// ProximityStats is what the proximity source reports for a window.
type ProximityStats struct {
	BluetoothAvgDevices float64
	HasBluetooth        bool
	WiFiDiversity       float64
	HasWiFi             bool
}

// Sources are the consent-gated data providers the builder draws from.
// Each call may fail (permission, storage, no data); failures degrade to
// absent features, never to a scoring error.
type (
	UsageSource interface {
		UsageStats(ctx context.Context, win Window) (*UsageStats, error)
	}
	MobilitySource interface {
		MobilityStats(ctx context.Context, win Window) (*MobilityStats, error)
	}
	CommSource interface {
		CommStats(ctx context.Context, win Window) (*CommStats, error)
	}
	ProximitySource interface {
		ProximityStats(ctx context.Context, win Window) (*ProximityStats, error)
	}
)
