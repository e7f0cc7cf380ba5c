// Package features builds consent-gated feature sets from raw behavioral
// signals.
//
// Every feature is explicitly Present or Absent. Absent means "not
// collected" — the category was consent-disabled or its source failed — and
// is distinct from a measured zero. The risk engine relies on that
// distinction, so features are never represented as bare nullable numbers.
package features

import (
	"bytes"
	"encoding/json"
)

// Feature is a single measured value or the absence of one.
// The zero value is Absent.
type Feature struct {
	value   float64
	present bool
}

// Measured returns a present feature holding v.
func Measured(v float64) Feature {
	return Feature{value: v, present: true}
}

// Absent returns a feature with no collected value.
func Absent() Feature {
	return Feature{}
}

// Present reports whether the feature was collected.
func (f Feature) Present() bool { return f.present }

// Value returns the measured value, or 0 when absent. Use Or when a
// different absent-default is needed.
func (f Feature) Value() float64 {
	return f.value
}

// Or returns the measured value, or def when the feature is absent.
func (f Feature) Or(def float64) float64 {
	if f.present {
		return f.value
	}
	return def
}

var nullLiteral = []byte("null")

// MarshalJSON encodes a present feature as its number and an absent one as null.
func (f Feature) MarshalJSON() ([]byte, error) {
	if !f.present {
		return nullLiteral, nil
	}
	return json.Marshal(f.value)
}

// UnmarshalJSON accepts a number or null.
func (f *Feature) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), nullLiteral) {
		*f = Feature{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Measured(v)
	return nil
}

// Set is the fixed schema of derived behavioral features for one day.
type Set struct {
	// Mobility (gps-gated)
	DailyDistanceMeters Feature `json:"dailyDistanceMeters"`
	TimeAtHomePct       Feature `json:"timeAtHomePct"`
	LocationEntropy     Feature `json:"locationEntropy"`
	Transitions         Feature `json:"transitions"`

	// Behaviour (usage-gated)
	NightUsageMinutes  Feature `json:"nightUsageMinutes"`
	UnlockCount        Feature `json:"unlockCount"`
	RhythmIrregularity Feature `json:"rhythmIrregularity"`
	ScreenTimeMinutes  Feature `json:"screenTimeMinutes"`
	SocialMinutes      Feature `json:"socialMinutes"`
	SocialPercent      Feature `json:"socialPercent"`

	// Communication (calls/sms-gated)
	CallsPerDay    Feature `json:"callsPerDay"`
	UniqueContacts Feature `json:"uniqueContacts"`
	SilenceHours   Feature `json:"silenceHours"`
	SMSPerDay      Feature `json:"smsPerDay"`

	// Proximity (bluetooth/wifi-gated)
	BluetoothAvgDevices Feature `json:"bluetoothAvgDevices"`
	WiFiDiversity       Feature `json:"wifiDiversity"`
}
