package sleep

import (
	"testing"

	"github.com/screenmind/screenmind/internal/risk"
	"github.com/screenmind/screenmind/internal/sessions"
)

func TestDisruptedNight(t *testing.T) {
	summary := &sessions.Summary{
		SessionID:         "ses_1",
		DurationMs:        6 * 3600000,
		UnlockCount:       12,
		NotificationCount: 15,
	}
	r := Score(summary)

	// 0.5*1/3 + 0.3*1 + 0.2*1 = 2/3 weighted badness.
	if r.Score < 33 || r.Score > 34 {
		t.Errorf("quality = %d, want ~33", r.Score)
	}
	want := []string{reasonUnlocks, reasonNotifications, reasonShortSleep}
	if len(r.Reasons) != len(want) {
		t.Fatalf("reasons = %v, want %v", r.Reasons, want)
	}
	for i := range want {
		if r.Reasons[i] != want[i] {
			t.Errorf("reasons[%d] = %q, want %q", i, r.Reasons[i], want[i])
		}
	}
}

func TestRestfulNight(t *testing.T) {
	summary := &sessions.Summary{
		SessionID:  "ses_2",
		DurationMs: 8 * 3600000,
	}
	r := Score(summary)
	if r.Score != 100 {
		t.Errorf("quality = %d, want 100", r.Score)
	}
	if r.Risk != risk.LabelLow {
		t.Errorf("risk = %s, want Low", r.Risk)
	}
	if len(r.Reasons) != 0 {
		t.Errorf("reasons = %v, want none", r.Reasons)
	}
}

func TestQualityBounded(t *testing.T) {
	cases := []*sessions.Summary{
		{DurationMs: 0, UnlockCount: 1000, NotificationCount: 1000},
		{DurationMs: 24 * 3600000},
		{},
	}
	for _, s := range cases {
		r := Score(s)
		if r.Score < 0 || r.Score > 100 {
			t.Errorf("quality = %d for %+v, out of range", r.Score, s)
		}
	}
}

func TestShortSleepOnly(t *testing.T) {
	summary := &sessions.Summary{
		DurationMs:  4 * 3600000,
		UnlockCount: 1,
	}
	r := Score(summary)
	if len(r.Reasons) != 1 || r.Reasons[0] != reasonShortSleep {
		t.Errorf("reasons = %v, want [%s]", r.Reasons, reasonShortSleep)
	}
}
