package risk

import (
	"math"

	"github.com/screenmind/screenmind/internal/consent"
	"github.com/screenmind/screenmind/internal/features"
)

// HigherIsWorse normalizes a value where larger means riskier: 0 at or
// below good, 1 at or above bad, linear between.
func HigherIsWorse(value, good, bad float64) float64 {
	return clamp01((value - good) / (bad - good))
}

// LowerIsWorse normalizes a value where smaller means riskier: 0 at or
// above good, 1 at or below bad, linear between.
func LowerIsWorse(value, good, bad float64) float64 {
	return clamp01((good - value) / (good - bad))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// absentZeroRisk is the default substituted for an absent sub-signal whose
// direction is lower-is-worse AND whose absence must never manufacture
// risk: the sentinel sits far above the "good" anchor, so it normalizes
// to zero. Other absent sub-signals default to 0 instead, which for a
// lower-is-worse signal does register as risk; the anchors were
// calibrated with that asymmetry and it is preserved here per sub-signal.
const absentZeroRisk = 999

type subSignal struct {
	feature       features.Feature
	enabled       bool
	absentDefault float64
	normalize     func(v float64) float64
}

func (s subSignal) risk() float64 {
	return s.normalize(s.feature.Or(s.absentDefault))
}

type category struct {
	name    string
	signals []subSignal
}

// contribution averages the risk of the enabled sub-signals and scales to
// 0-25. The category is "used" only when at least one enabled sub-signal
// was actually collected; an open gate with no data contributes nothing.
func (c category) contribution() (points float64, used bool) {
	var sum float64
	var enabled int
	for _, s := range c.signals {
		if !s.enabled {
			continue
		}
		enabled++
		sum += s.risk()
		if s.feature.Present() {
			used = true
		}
	}
	if !used || enabled == 0 {
		return 0, false
	}
	return sum / float64(enabled) * 25, true
}

func higher(good, bad float64) func(float64) float64 {
	return func(v float64) float64 { return HigherIsWorse(v, good, bad) }
}

func lower(good, bad float64) func(float64) float64 {
	return func(v float64) float64 { return LowerIsWorse(v, good, bad) }
}

// Score computes the isolation risk for one day's features under the
// given consent gates. Pure and total: it never errors.
func Score(set *features.Set, prefs consent.Preferences) Result {
	categories := []category{
		{
			name: CategoryMobility,
			signals: []subSignal{
				{set.DailyDistanceMeters, prefs.GPS, 0, lower(3000, 300)},
				{set.TimeAtHomePct, prefs.GPS, 0, higher(55, 85)},
				{set.LocationEntropy, prefs.GPS, 0, lower(1.2, 0.3)},
				{set.Transitions, prefs.GPS, 0, lower(6, 1)},
			},
		},
		{
			name: CategoryCommunication,
			signals: []subSignal{
				{set.CallsPerDay, prefs.Calls, 0, lower(4, 0.5)},
				{set.UniqueContacts, prefs.Calls, absentZeroRisk, lower(6, 1)},
				{set.SilenceHours, prefs.Calls, 0, higher(8, 20)},
				{set.SMSPerDay, prefs.SMS, 0, lower(10, 1)},
			},
		},
		{
			name: CategoryBehaviour,
			signals: []subSignal{
				{set.NightUsageMinutes, prefs.Usage, 0, higher(20, 120)},
				{set.UnlockCount, prefs.Usage, 0, higher(45, 110)},
				{set.RhythmIrregularity, prefs.Usage, 0, higher(0.2, 0.8)},
			},
		},
		{
			name: CategoryProximity,
			signals: []subSignal{
				{set.BluetoothAvgDevices, prefs.Bluetooth, absentZeroRisk, lower(8, 1)},
				{set.WiFiDiversity, prefs.WiFi, 0, lower(1.2, 0.2)},
			},
		},
	}

	result := Result{
		Breakdown:      make(map[string]float64),
		UsedCategories: make([]string, 0, len(categories)),
	}

	var total float64
	for _, c := range categories {
		points, used := c.contribution()
		if !used {
			continue
		}
		result.Breakdown[c.name] = math.Round(points*100) / 100
		result.UsedCategories = append(result.UsedCategories, c.name)
		total += points
	}

	result.Score = int(math.Round(math.Min(math.Max(total, 0), 100)))
	result.Label = LabelForScore(result.Score)
	return result
}
