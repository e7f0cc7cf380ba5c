package risk

import (
	"testing"

	"github.com/screenmind/screenmind/internal/consent"
	"github.com/screenmind/screenmind/internal/features"
)

func allConsent() consent.Preferences {
	return consent.Preferences{GPS: true, Calls: true, SMS: true, Usage: true, Bluetooth: true, WiFi: true}
}

func TestNormalizationEndpoints(t *testing.T) {
	if got := HigherIsWorse(20, 20, 120); got != 0 {
		t.Errorf("HigherIsWorse at good anchor = %v, want 0", got)
	}
	if got := HigherIsWorse(120, 20, 120); got != 1 {
		t.Errorf("HigherIsWorse at bad anchor = %v, want 1", got)
	}
	if got := HigherIsWorse(-5, 20, 120); got != 0 {
		t.Errorf("HigherIsWorse below good = %v, want 0", got)
	}
	if got := HigherIsWorse(500, 20, 120); got != 1 {
		t.Errorf("HigherIsWorse above bad = %v, want 1", got)
	}

	if got := LowerIsWorse(3000, 3000, 300); got != 0 {
		t.Errorf("LowerIsWorse at good anchor = %v, want 0", got)
	}
	if got := LowerIsWorse(300, 3000, 300); got != 1 {
		t.Errorf("LowerIsWorse at bad anchor = %v, want 1", got)
	}
	if got := LowerIsWorse(9999, 3000, 300); got != 0 {
		t.Errorf("LowerIsWorse above good = %v, want 0", got)
	}
	if got := LowerIsWorse(0, 3000, 300); got != 1 {
		t.Errorf("LowerIsWorse below bad = %v, want 1", got)
	}
}

func TestScoreAlwaysInRange(t *testing.T) {
	sets := []*features.Set{
		{},
		{
			DailyDistanceMeters: features.Measured(0),
			TimeAtHomePct:       features.Measured(100),
			LocationEntropy:     features.Measured(0),
			Transitions:         features.Measured(0),
			NightUsageMinutes:   features.Measured(600),
			UnlockCount:         features.Measured(500),
			RhythmIrregularity:  features.Measured(1),
			CallsPerDay:         features.Measured(0),
			UniqueContacts:      features.Measured(0),
			SilenceHours:        features.Measured(24),
			SMSPerDay:           features.Measured(0),
			BluetoothAvgDevices: features.Measured(0),
			WiFiDiversity:       features.Measured(0),
		},
		{
			DailyDistanceMeters: features.Measured(12000),
			TimeAtHomePct:       features.Measured(20),
			CallsPerDay:         features.Measured(10),
			NightUsageMinutes:   features.Measured(0),
			BluetoothAvgDevices: features.Measured(15),
		},
	}
	prefs := []consent.Preferences{
		{},
		allConsent(),
		{GPS: true, Usage: true},
		{Calls: true, SMS: true},
		{Bluetooth: true, WiFi: true},
	}
	for _, set := range sets {
		for _, p := range prefs {
			r := Score(set, p)
			if r.Score < 0 || r.Score > 100 {
				t.Errorf("Score(%+v) = %d, out of [0,100]", p, r.Score)
			}
		}
	}
}

func TestAllConsentDisabled(t *testing.T) {
	set := &features.Set{
		DailyDistanceMeters: features.Measured(100),
		NightUsageMinutes:   features.Measured(300),
	}
	r := Score(set, consent.Preferences{})
	if r.Score != 0 {
		t.Errorf("score = %d, want 0", r.Score)
	}
	if r.Label != LabelLow {
		t.Errorf("label = %s, want Low", r.Label)
	}
	if len(r.UsedCategories) != 0 {
		t.Errorf("usedCategories = %v, want empty", r.UsedCategories)
	}
}

func TestEmptyFeatureSet(t *testing.T) {
	r := Score(&features.Set{}, allConsent())
	if r.Score != 0 {
		t.Errorf("score = %d, want 0", r.Score)
	}
	if r.Label != LabelLow {
		t.Errorf("label = %s, want Low", r.Label)
	}
	if len(r.UsedCategories) != 0 {
		t.Errorf("usedCategories = %v, want empty", r.UsedCategories)
	}
}

func TestHighIsolationExample(t *testing.T) {
	set := &features.Set{
		DailyDistanceMeters: features.Measured(200),
		TimeAtHomePct:       features.Measured(90),
		UniqueContacts:      features.Measured(1),
		NightUsageMinutes:   features.Measured(150),
		BluetoothAvgDevices: features.Measured(1),
	}
	prefs := consent.Preferences{GPS: true, Calls: true, Usage: true, Bluetooth: true}

	r := Score(set, prefs)
	if r.Score < 67 {
		t.Errorf("score = %d, want >= 67", r.Score)
	}
	if r.Label != LabelHigh {
		t.Errorf("label = %s, want High", r.Label)
	}
	if r.Score != 75 {
		t.Errorf("score = %d, want 75", r.Score)
	}

	want := []string{CategoryMobility, CategoryCommunication, CategoryBehaviour, CategoryProximity}
	if len(r.UsedCategories) != len(want) {
		t.Fatalf("usedCategories = %v, want %v", r.UsedCategories, want)
	}
	for i, name := range want {
		if r.UsedCategories[i] != name {
			t.Errorf("usedCategories[%d] = %s, want %s", i, r.UsedCategories[i], name)
		}
	}
	if r.Breakdown[CategoryMobility] != 25 {
		t.Errorf("mobility contribution = %v, want 25", r.Breakdown[CategoryMobility])
	}
	if r.Breakdown[CategoryProximity] != 25 {
		t.Errorf("proximity contribution = %v, want 25", r.Breakdown[CategoryProximity])
	}
}

func TestAbsentNeverManufacturesRisk(t *testing.T) {
	// Calls gate open with healthy call volume; unique contacts and
	// silence not collected. The category must count as used but must
	// not pick up risk from the missing signals.
	set := &features.Set{CallsPerDay: features.Measured(4)}
	r := Score(set, consent.Preferences{Calls: true})

	if len(r.UsedCategories) != 1 || r.UsedCategories[0] != CategoryCommunication {
		t.Fatalf("usedCategories = %v, want [communication]", r.UsedCategories)
	}
	if r.Breakdown[CategoryCommunication] != 0 {
		t.Errorf("communication contribution = %v, want 0", r.Breakdown[CategoryCommunication])
	}
	if r.Score != 0 {
		t.Errorf("score = %d, want 0", r.Score)
	}
}

func TestClosedGateExcludesSubSignal(t *testing.T) {
	// SMS volume present but sms consent off: it must not affect the
	// communication category.
	set := &features.Set{
		CallsPerDay: features.Measured(4),
		SMSPerDay:   features.Measured(0),
	}
	r := Score(set, consent.Preferences{Calls: true})
	if r.Score != 0 {
		t.Errorf("score = %d, want 0 with sms gate closed", r.Score)
	}

	r = Score(set, consent.Preferences{Calls: true, SMS: true})
	if r.Score == 0 {
		t.Error("score = 0, want > 0 with sms gate open and zero sms volume")
	}
}

func TestLabelForScore(t *testing.T) {
	cases := []struct {
		score int
		want  Label
	}{
		{0, LabelLow}, {33, LabelLow}, {34, LabelModerate},
		{66, LabelModerate}, {67, LabelHigh}, {100, LabelHigh},
	}
	for _, tc := range cases {
		if got := LabelForScore(tc.score); got != tc.want {
			t.Errorf("LabelForScore(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
