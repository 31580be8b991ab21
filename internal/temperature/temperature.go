// Package temperature maps an agent's base sampling temperature to the value
// actually sent to the provider.
package temperature

const (
	// StrictCeiling caps every strict (deterministic) call.
	StrictCeiling = 0.4
	// Ceiling caps every other call.
	Ceiling = 2.0

	// Arbitration is the fixed temperature for the arbitrator and the QA analyst.
	Arbitration = 0.2
)

// Policy scales base temperatures by a user-tunable multiplier.
type Policy struct {
	// Multiplier scales every base temperature. Zero is treated as 1.0.
	Multiplier float64
}

// Resolve returns base*Multiplier clamped to [0, StrictCeiling] when strict
// and to [0, Ceiling] otherwise.
func (p Policy) Resolve(base float64, strict bool) float64 {
	mult := p.Multiplier
	if mult == 0 {
		mult = 1.0
	}

	upper := Ceiling
	if strict {
		upper = StrictCeiling
	}
	return clamp(base*mult, 0, upper)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
