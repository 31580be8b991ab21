package grade

// Label maps a signed score onto the zero-based rubric.
func Label(score float64) string {
	switch {
	case score >= 55:
		return "Godly"
	case score >= 50:
		return "Masterpiece"
	case score >= 40:
		return "Classic"
	case score >= 25:
		return "Good"
	case score > -40:
		return "Average"
	case score > -60:
		return "Bad"
	default:
		return "Broken"
	}
}
