package tribunal

import (
	"math"

	"github.com/Yates-Labs/compujudge/internal/grade"
)

// VetoDivisor slashes the score when the logic agent reports a broken story.
const VetoDivisor = 6

// VetoAnnotation is appended to the commercial reason when the veto fires.
const VetoAnnotation = " " + grade.VetoMarker

// ApplyVeto returns round(score/6) when logicScore is negative and score
// otherwise. The second return value reports whether the veto fired.
func ApplyVeto(score, logicScore float64) (float64, bool) {
	if logicScore >= 0 {
		return score, false
	}
	return math.Round(score / VetoDivisor), true
}
