package features

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/screenmind/screenmind/internal/consent"
)

// SocialPackages is the fixed allow-list of social apps used for the
// social-usage derived views.
var SocialPackages = map[string]bool{
	"com.whatsapp":               true,
	"com.instagram.android":      true,
	"com.facebook.katana":        true,
	"com.facebook.orca":          true,
	"org.telegram.messenger":     true,
	"com.snapchat.android":       true,
	"com.twitter.android":        true,
	"com.linkedin.android":       true,
	"com.google.android.youtube": true,
	"com.zhiliaoapp.musically":   true,
}

// Builder assembles a consent-gated feature Set for a day window.
type Builder struct {
	usage     UsageSource
	mobility  MobilitySource
	comm      CommSource
	proximity ProximitySource
	logger    *slog.Logger
}

// NewBuilder creates a feature builder. Any source may be nil; its
// features simply stay absent.
func NewBuilder(usage UsageSource, mobility MobilitySource, comm CommSource, proximity ProximitySource, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		usage:     usage,
		mobility:  mobility,
		comm:      comm,
		proximity: proximity,
		logger:    logger,
	}
}

// Build produces the feature set for the window under the given consent.
// A disabled category leaves its features absent (not zero). A failing
// source also leaves its features absent; the failure is logged and the
// build continues — one bad source never poisons the rest of the set.
func (b *Builder) Build(ctx context.Context, win Window, prefs consent.Preferences) *Set {
	set := &Set{}

	if prefs.Usage && b.usage != nil {
		if stats, err := b.usage.UsageStats(ctx, win); err != nil {
			b.warn("usage", err)
		} else {
			b.applyUsage(set, stats)
		}
	}

	if prefs.GPS && b.mobility != nil {
		if stats, err := b.mobility.MobilityStats(ctx, win); err != nil {
			b.warn("mobility", err)
		} else {
			set.DailyDistanceMeters = Measured(stats.DistanceMeters)
			set.TimeAtHomePct = Measured(stats.TimeAtHomePct)
			set.LocationEntropy = Measured(stats.Entropy)
			set.Transitions = Measured(float64(stats.Transitions))
		}
	}

	if (prefs.Calls || prefs.SMS) && b.comm != nil {
		if stats, err := b.comm.CommStats(ctx, win); err != nil {
			b.warn("communication", err)
		} else {
			if prefs.Calls && stats.HasCalls {
				set.CallsPerDay = Measured(stats.CallsPerDay)
				set.UniqueContacts = Measured(stats.UniqueContacts)
				set.SilenceHours = Measured(stats.SilenceHours)
			}
			if prefs.SMS && stats.HasSMS {
				set.SMSPerDay = Measured(stats.SMSPerDay)
			}
		}
	}

	if (prefs.Bluetooth || prefs.WiFi) && b.proximity != nil {
		if stats, err := b.proximity.ProximityStats(ctx, win); err != nil {
			b.warn("proximity", err)
		} else {
			if prefs.Bluetooth && stats.HasBluetooth {
				set.BluetoothAvgDevices = Measured(stats.BluetoothAvgDevices)
			}
			if prefs.WiFi && stats.HasWiFi {
				set.WiFiDiversity = Measured(stats.WiFiDiversity)
			}
		}
	}

	return set
}

func (b *Builder) applyUsage(set *Set, stats *UsageStats) {
	set.NightUsageMinutes = Measured(math.Round(float64(stats.NightMs) / 60000.0))
	set.UnlockCount = Measured(float64(stats.UnlockCount))
	set.RhythmIrregularity = Measured(stats.RhythmIrregularity)

	totalMin := math.Round(float64(stats.TotalMs) / 60000.0)
	set.ScreenTimeMinutes = Measured(totalMin)

	var socialMs int64
	for pkg, ms := range stats.PerPackageMs {
		if SocialPackages[pkg] {
			socialMs += ms
		}
	}
	socialMin := math.Round(float64(socialMs) / 60000.0)
	set.SocialMinutes = Measured(socialMin)

	// Percentage is defined as 0 when there is no foreground time at all.
	if stats.TotalMs <= 0 {
		set.SocialPercent = Measured(0)
	} else {
		set.SocialPercent = Measured(math.Round(float64(socialMs) / float64(stats.TotalMs) * 100.0))
	}
}

func (b *Builder) warn(source string, err error) {
	if errors.Is(err, ErrPermissionDenied) {
		b.logger.Warn("feature source permission denied", "source", source)
		return
	}
	if errors.Is(err, ErrNoData) {
		b.logger.Debug("feature source has no data", "source", source)
		return
	}
	b.logger.Warn("feature source failed", "source", source, "error", err)
}
