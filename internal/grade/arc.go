package grade

// MinArcLength is the arc length used when no arc was reported at all.
const MinArcLength = 6

// ArcLength returns the longest length among arcs, or MinArcLength when
// every arc is empty.
func ArcLength(arcs ...[]float64) int {
	n := 0
	for _, a := range arcs {
		if len(a) > n {
			n = len(a)
		}
	}
	if n == 0 {
		return MinArcLength
	}
	return n
}

// PadArc returns a copy of arc extended with zeros to length n.
func PadArc(arc []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, arc)
	return out
}

// NormalizeArcs pads the tension and quality arcs to a shared length.
func (r *GradeResult) NormalizeArcs() {
	n := ArcLength(r.TensionArc, r.QualityArc)
	r.TensionArc = PadArc(r.TensionArc, n)
	r.QualityArc = PadArc(r.QualityArc, n)
}
