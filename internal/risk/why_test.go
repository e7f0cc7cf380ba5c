package risk

import (
	"strings"
	"testing"

	"github.com/screenmind/screenmind/internal/features"
)

func TestReasonsFirstTwoInRuleOrder(t *testing.T) {
	// Three rules qualify; only the first two in table order may appear.
	set := &features.Set{
		DailyDistanceMeters: features.Measured(500),
		TimeAtHomePct:       features.Measured(80),
		NightUsageMinutes:   features.Measured(100),
	}
	got := Reasons(set)
	want := []string{"low movement", "high time at home"}
	if len(got) != len(want) {
		t.Fatalf("Reasons = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Reasons[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	summary := Summary(set)
	if !strings.Contains(summary, "low movement") || !strings.Contains(summary, "high time at home") {
		t.Errorf("Summary = %q, missing qualifying phrases", summary)
	}
	if strings.Contains(summary, "high night usage") {
		t.Errorf("Summary = %q, contains third phrase beyond the cap", summary)
	}
}

func TestReasonsIgnoreAbsentFeatures(t *testing.T) {
	// A zero-valued absent distance must not read as "low movement".
	set := &features.Set{
		TimeAtHomePct: features.Measured(80),
	}
	got := Reasons(set)
	if len(got) != 1 || got[0] != "high time at home" {
		t.Errorf("Reasons = %v, want [high time at home]", got)
	}
}

func TestSummaryBalancedFallback(t *testing.T) {
	set := &features.Set{
		DailyDistanceMeters: features.Measured(5000),
		TimeAtHomePct:       features.Measured(40),
		UniqueContacts:      features.Measured(8),
	}
	if got := Summary(set); got != BalancedSummary {
		t.Errorf("Summary = %q, want balanced fallback", got)
	}
	if got := Summary(&features.Set{}); got != BalancedSummary {
		t.Errorf("Summary(empty) = %q, want balanced fallback", got)
	}
}

func TestReasonsProximityRule(t *testing.T) {
	set := &features.Set{
		BluetoothAvgDevices: features.Measured(1),
	}
	got := Reasons(set)
	if len(got) != 1 || got[0] != "low nearby-device exposure" {
		t.Errorf("Reasons = %v, want [low nearby-device exposure]", got)
	}
}
