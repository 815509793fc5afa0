package extraction

// Level buckets a confidence score for downstream decisions.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// LevelFor maps a confidence score to its level. Scores of 0.8 and above
// are high, 0.5 and above are medium, everything else is low.
func LevelFor(score float64) Level {
	switch {
	case score >= 0.8:
		return LevelHigh
	case score >= 0.5:
		return LevelMedium
	default:
		return LevelLow
	}
}
