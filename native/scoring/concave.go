// Package scoring implements the pure numeric kernel (spec §4.1): the
// concave per-visit score, largest-remainder percent rounding, and ballot
// rounding. It mirrors the recompute-coefficients-on-change shape of
// native/potso's RewardConfig (nhbchain) but operates on float64 instead of
// big.Rat, since spec §3 defines score as a plain f64 accumulator.
package scoring

import "math"

// Coefficients are the cached (a, b, b^2, 2a, 4a) terms derived from
// minPublisherDurationMS and the score domain constant. Recompute whenever
// either input changes (spec §4.1).
type Coefficients struct {
	a, b   float64
	bSq    float64
	twoA   float64
	fourA  float64
}

// NewCoefficients derives the concave-score coefficients for the given
// minimum publisher duration (m, in milliseconds) and domain constant (D): a
// small fixed fraction, not a duration, chosen so 1/(2D) comfortably exceeds
// any realistic m and keeps a positive. A negative a makes the radicand go
// negative past d=m, which the clamp in Score then flattens to a constant.
func NewCoefficients(minPublisherDurationMS uint64, domain float64) Coefficients {
	m := float64(minPublisherDurationMS)
	a := 1/(2*domain) - m
	b := m - a
	return Coefficients{
		a:     a,
		b:     b,
		bSq:   b * b,
		twoA:  2 * a,
		fourA: 4 * a,
	}
}

// Score returns the concave score contribution for a visit of duration d
// milliseconds: (sqrt(b^2 + 4ad) - b) / 2a. The function is strictly
// increasing, concave, and satisfies Score(m) == 1 when d == m.
func (c Coefficients) Score(durationMS uint64) float64 {
	if c.twoA == 0 {
		return 0
	}
	d := float64(durationMS)
	radicand := c.bSq + c.fourA*d
	if radicand < 0 {
		radicand = 0
	}
	return (math.Sqrt(radicand) - c.b) / c.twoA
}

// Concave is a convenience one-shot form for callers that do not need to
// cache coefficients across repeated calls.
func Concave(minPublisherDurationMS uint64, domain float64, durationMS uint64) float64 {
	return NewCoefficients(minPublisherDurationMS, domain).Score(durationMS)
}
