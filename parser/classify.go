package parser

// ClampScore saturates a score into [0,10].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

// Classify maps an overall score to its label. Scores outside [0,10] are
// clamped first.
func Classify(score int) Label {
	switch s := ClampScore(score); {
	case s >= 9:
		return LabelExcellent
	case s >= 7:
		return LabelVeryGood
	case s >= 5:
		return LabelAverage
	case s >= 3:
		return LabelBelowAverage
	default:
		return LabelPoor
	}
}

// TierFor returns the colour tier for a score.
func TierFor(score int) Tier {
	switch s := ClampScore(score); {
	case s >= 7:
		return TierGreen
	case s >= 5:
		return TierYellow
	default:
		return TierRed
	}
}

// EmojiFor returns the badge shown next to a label.
func EmojiFor(label Label) string {
	switch label {
	case LabelExcellent:
		return "🌟"
	case LabelVeryGood:
		return "🌿"
	case LabelAverage:
		return "⚖️"
	case LabelBelowAverage:
		return "⚠️"
	default:
		return "🚨"
	}
}
