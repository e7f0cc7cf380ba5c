package sessions

import (
	"github.com/screenmind/screenmind/internal/events"
)

// ForegroundInterval is one reconstructed span during which a single
// package was the active, user-visible app.
type ForegroundInterval struct {
	Package string
	StartMs int64
	EndMs   int64
}

// DurationMs returns the non-negative length of the interval.
func (iv ForegroundInterval) DurationMs() int64 {
	d := iv.EndMs - iv.StartMs
	if d < 0 {
		return 0
	}
	return d
}

// fgState is the reconstruction state machine. The stream is folded through
// idle -> tracking(pkg, since) -> idle transitions; everything else about
// the input (duplicates, stale pauses, out-of-order deltas) degrades to a
// clamped or ignored transition rather than an error.
type fgState struct {
	tracking bool
	pkg      string
	sinceMs  int64
}

// ReconstructForeground rebuilds foreground usage intervals from an
// ascending event stream covering [from, to].
//
// Rules:
//   - foreground_resumed for P closes any open package at the event's
//     timestamp first (two consecutive resumes are tolerated), then opens P.
//   - foreground_paused closes the open package only if it names it;
//     a pause for any other package is stale and ignored.
//   - a package still open at the end of the range is closed at toMs.
//   - all deltas are clamped non-negative (clock skew defense).
//
// Events of other types are skipped.
func ReconstructForeground(evts []*events.RawEvent, toMs int64) []ForegroundInterval {
	var st fgState
	var intervals []ForegroundInterval

	flush := func(endMs int64) {
		if !st.tracking {
			return
		}
		if endMs < st.sinceMs {
			endMs = st.sinceMs
		}
		intervals = append(intervals, ForegroundInterval{
			Package: st.pkg,
			StartMs: st.sinceMs,
			EndMs:   endMs,
		})
		st = fgState{}
	}

	for _, e := range evts {
		switch e.Type {
		case events.TypeForegroundResumed:
			flush(e.TimestampMs)
			st = fgState{tracking: true, pkg: e.PackageName, sinceMs: e.TimestampMs}

		case events.TypeForegroundPaused:
			if st.tracking && e.PackageName == st.pkg {
				flush(e.TimestampMs)
			}
			// Pause for a package we are not tracking: stale/duplicate, ignore.
		}
	}

	flush(toMs)
	return intervals
}

// ForegroundTotals sums reconstructed intervals into a total and a
// per-package map.
func ForegroundTotals(intervals []ForegroundInterval) (totalMs int64, perPackageMs map[string]int64) {
	perPackageMs = make(map[string]int64)
	for _, iv := range intervals {
		d := iv.DurationMs()
		totalMs += d
		perPackageMs[iv.Package] += d
	}
	return totalMs, perPackageMs
}

// ClipTotal returns the foreground time falling inside [fromMs, toMs).
// Used to restrict the same reconstruction to a sub-window (the night
// interval) without a second pass over the events.
func ClipTotal(intervals []ForegroundInterval, fromMs, toMs int64) int64 {
	var total int64
	for _, iv := range intervals {
		start := iv.StartMs
		if start < fromMs {
			start = fromMs
		}
		end := iv.EndMs
		if end > toMs {
			end = toMs
		}
		if end > start {
			total += end - start
		}
	}
	return total
}

// CountType tallies events of one type. Unknown or malformed events in the
// stream simply never match.
func CountType(evts []*events.RawEvent, t events.Type) int {
	n := 0
	for _, e := range evts {
		if e.Type == t {
			n++
		}
	}
	return n
}

// Summarize derives a Summary from a session and its events. A session with
// no events yields all-zero counts and the nominal duration. nowMs bounds
// a still-open session.
func Summarize(session *Session, evts []*events.RawEvent, nowMs int64) *Summary {
	endMs := session.EffectiveEndMs(nowMs)

	durationMs := endMs - session.StartTimeMs
	if durationMs < 0 {
		durationMs = 0
	}

	intervals := ReconstructForeground(evts, endMs)
	_, perPackage := ForegroundTotals(intervals)

	return &Summary{
		SessionID:              session.ID,
		DurationMs:             durationMs,
		UnlockCount:            CountType(evts, events.TypeUnlock),
		ScreenOnCount:          CountType(evts, events.TypeScreenOn),
		NotificationCount:      CountType(evts, events.TypeNotificationPosted),
		PerPackageForegroundMs: perPackage,
	}
}
