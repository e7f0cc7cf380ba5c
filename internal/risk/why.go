package risk

import (
	"strings"

	"github.com/screenmind/screenmind/internal/features"
)

// BalancedSummary is the neutral explanation used when no rule fires.
const BalancedSummary = "Your patterns look balanced today."

// maxReasons caps how many contributing factors appear in a summary.
const maxReasons = 2

type explanationRule struct {
	phrase  string
	matches func(set *features.Set) bool
}

// Rule order is significant: the first two matches win, not the most
// severe ones. Rules only fire on collected features.
var explanationRules = []explanationRule{
	{"low movement", presentAnd(func(s *features.Set) features.Feature { return s.DailyDistanceMeters }, func(v float64) bool { return v < 800 })},
	{"high time at home", presentAnd(func(s *features.Set) features.Feature { return s.TimeAtHomePct }, func(v float64) bool { return v > 75 })},
	{"fewer unique contacts", presentAnd(func(s *features.Set) features.Feature { return s.UniqueContacts }, func(v float64) bool { return v <= 2 })},
	{"high night usage", presentAnd(func(s *features.Set) features.Feature { return s.NightUsageMinutes }, func(v float64) bool { return v > 90 })},
	{"low nearby-device exposure", presentAnd(func(s *features.Set) features.Feature { return s.BluetoothAvgDevices }, func(v float64) bool { return v <= 2 })},
}

func presentAnd(get func(*features.Set) features.Feature, cond func(float64) bool) func(*features.Set) bool {
	return func(set *features.Set) bool {
		f := get(set)
		return f.Present() && cond(f.Value())
	}
}

// Reasons returns up to two contributing-factor phrases, in rule order.
func Reasons(set *features.Set) []string {
	var out []string
	for _, rule := range explanationRules {
		if rule.matches(set) {
			out = append(out, rule.phrase)
			if len(out) == maxReasons {
				break
			}
		}
	}
	return out
}

// Summary joins the contributing factors into one sentence, or the
// neutral message when nothing qualifies.
func Summary(set *features.Set) string {
	reasons := Reasons(set)
	if len(reasons) == 0 {
		return BalancedSummary
	}
	return "Driven by " + strings.Join(reasons, " and ") + "."
}
