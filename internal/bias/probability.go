package bias

const (
	probabilityFloor = 5
	probabilityCeil  = 95
	probabilityStep  = 8
)

// Probability converts a running score into a move probability percentage.
// The score is an unbounded sum, so the result is clamped to [5, 95] to keep
// the reported percentage believable however extreme the score gets.
func Probability(score int, weight int) int {
	p := 50 + score*probabilityStep*weight

	if p < probabilityFloor {
		return probabilityFloor
	}
	if p > probabilityCeil {
		return probabilityCeil
	}
	return p
}

// StrengthLabel classifies a score by absolute magnitude
func StrengthLabel(score int) string {
	abs := score
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 4:
		return "Extreme"
	case abs == 3:
		return "Strong"
	case abs == 2:
		return "Moderate"
	case abs == 1:
		return "Mild"
	default:
		return "Neutral"
	}
}
