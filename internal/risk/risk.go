// Package risk scores a day's behavioral feature set into a 0-100
// isolation risk with per-category breakdown and plain-language reasons.
//
// Scoring is a pure function over the feature set and the consent
// preferences. It never reads storage and never fails: any well-formed
// input produces a result.
package risk

// Label is the qualitative bucket derived from the numeric score.
type Label string

const (
	LabelLow      Label = "Low"
	LabelModerate Label = "Moderate"
	LabelHigh     Label = "High"
)

// Score thresholds for the label buckets.
const (
	moderateThreshold = 34
	highThreshold     = 67
)

// LabelForScore maps a 0-100 score to its bucket.
func LabelForScore(score int) Label {
	switch {
	case score < moderateThreshold:
		return LabelLow
	case score < highThreshold:
		return LabelModerate
	default:
		return LabelHigh
	}
}

// Category names, in scoring order.
const (
	CategoryMobility      = "mobility"
	CategoryCommunication = "communication"
	CategoryBehaviour     = "behaviour"
	CategoryProximity     = "proximity"
)

// Result is the outcome of scoring one feature set.
type Result struct {
	Score int   `json:"score"`
	Label Label `json:"label"`

	// Breakdown maps each used category to its 0-25 contribution.
	Breakdown map[string]float64 `json:"breakdown"`

	// UsedCategories lists, in scoring order, the categories that had at
	// least one consented, collected sub-signal.
	UsedCategories []string `json:"usedCategories"`
}
