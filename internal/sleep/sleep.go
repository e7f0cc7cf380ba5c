// Package sleep scores how disrupted a tracked sleep session was.
//
// The engine is the sleep-specific counterpart of the isolation scorer:
// pure, synchronous, and total over a session summary.
package sleep

import (
	"math"
	"sort"

	"github.com/screenmind/screenmind/internal/risk"
	"github.com/screenmind/screenmind/internal/sessions"
)

// Result is the outcome of scoring one sleep session.
type Result struct {
	// Score is sleep quality, 0-100, higher is better.
	Score int `json:"score"`

	// Risk buckets the disruption level (not the quality).
	Risk risk.Label `json:"risk"`

	// Reasons lists the disruption drivers, strongest first.
	Reasons []string `json:"reasons"`
}

// Component weights. Sleep shortfall dominates, then unlocks, then
// notifications.
const (
	durationWeight = 0.5
	unlockWeight   = 0.3
	notifWeight    = 0.2
)

// reasonThreshold is the per-component badness above which the component
// is named as a disruption driver.
const reasonThreshold = 0.25

const (
	reasonShortSleep    = "Short sleep duration"
	reasonUnlocks       = "Frequent phone unlocks during sleep"
	reasonNotifications = "Notification interruptions during sleep"
)

type component struct {
	reason  string
	badness float64
	weight  float64
}

// Score rates a sleep session. Quality is 100 minus the weighted
// disruption; the risk bucket follows the disruption side.
func Score(summary *sessions.Summary) Result {
	hours := float64(summary.DurationMs) / float64(3600000)

	components := []component{
		{reasonShortSleep, clamp01((7 - hours) / 3), durationWeight},
		{reasonUnlocks, clamp01(float64(summary.UnlockCount) / 12), unlockWeight},
		{reasonNotifications, clamp01(float64(summary.NotificationCount) / 15), notifWeight},
	}

	var weighted float64
	for _, c := range components {
		weighted += c.weight * c.badness
	}

	// Strongest contributors first. The sort is stable so ties keep the
	// duration > unlocks > notifications ordering.
	sort.SliceStable(components, func(i, j int) bool {
		return components[i].weight*components[i].badness > components[j].weight*components[j].badness
	})

	var reasons []string
	for _, c := range components {
		if c.badness >= reasonThreshold {
			reasons = append(reasons, c.reason)
		}
	}

	return Result{
		Score:   int(math.Round((1 - weighted) * 100)),
		Risk:    risk.LabelForScore(int(math.Round(weighted * 100))),
		Reasons: reasons,
	}
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
