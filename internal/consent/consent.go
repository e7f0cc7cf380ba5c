// Package consent stores the per-category data collection toggles.
//
// Each toggle gates one behavioral data category end to end: a disabled
// category is neither collected by the feature builder nor weighted by the
// risk engine. Mutated only by explicit user action.
package consent

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("consent: preferences not found")

// Preferences is the fixed set of per-category consent toggles.
type Preferences struct {
	GPS       bool `json:"gps"`
	Calls     bool `json:"calls"`
	SMS       bool `json:"sms"`
	Usage     bool `json:"usage"`
	Bluetooth bool `json:"bluetooth"`
	WiFi      bool `json:"wifi"`
}

// Defaults returns the initial toggle set for a fresh install.
func Defaults() Preferences {
	return Preferences{
		GPS:   true,
		Calls: true,
		Usage: true,
	}
}

// AnyEnabled reports whether at least one category may be collected.
func (p Preferences) AnyEnabled() bool {
	return p.GPS || p.Calls || p.SMS || p.Usage || p.Bluetooth || p.WiFi
}

// Store persists the single preferences row.
type Store interface {
	Get(ctx context.Context) (Preferences, error)
	Set(ctx context.Context, prefs Preferences) error
}
