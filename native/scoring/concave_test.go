package scoring

import (
	"math"
	"testing"
)

const testDomain = 1.0 / 30000.0

func TestScoreAtMinimumIsOne(t *testing.T) {
	coeffs := NewCoefficients(8000, testDomain)
	got := coeffs.Score(8000)
	if math.Abs(got-1) > 1e-9 {
		t.Fatalf("Score(m) = %v, want 1", got)
	}
}

func TestScoreIsStrictlyIncreasing(t *testing.T) {
	coeffs := NewCoefficients(8000, testDomain)
	prev := coeffs.Score(8000)
	for _, d := range []uint64{10000, 20000, 60000, 600000, 3600000} {
		cur := coeffs.Score(d)
		if cur <= prev {
			t.Fatalf("Score not increasing at d=%d: prev=%v cur=%v", d, prev, cur)
		}
		prev = cur
	}
}

func TestScoreIsConcave(t *testing.T) {
	coeffs := NewCoefficients(8000, testDomain)
	// Second difference should be negative for a concave function.
	d1, d2, d3 := uint64(10000), uint64(20000), uint64(30000)
	s1, s2, s3 := coeffs.Score(d1), coeffs.Score(d2), coeffs.Score(d3)
	if (s3 - s2) >= (s2 - s1) {
		t.Fatalf("expected diminishing returns: s1=%v s2=%v s3=%v", s1, s2, s3)
	}
}
