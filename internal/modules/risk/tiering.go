// Package risk converts fraud probabilities into discrete risk tiers.
package risk

// Level is the discrete risk verdict attached to a scoring response
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

const (
	mediumThreshold = 0.3
	highThreshold   = 0.7
)

// Tier maps a fraud probability to a risk level. Total function, never
// fails. Exact boundary values map to medium: p > 0.7 is high,
// 0.3 <= p <= 0.7 is medium, p < 0.3 is low.
func Tier(p float64) Level {
	switch {
	case p > highThreshold:
		return LevelHigh
	case p >= mediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}
