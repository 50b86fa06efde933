package scoring

import "math"

// RoundHalfAwayFromZero implements the half-away-from-zero tie-break spec §9
// requires for numeric determinism across platforms.
func RoundHalfAwayFromZero(v float64) int64 {
	if v >= 0 {
		return int64(math.Floor(v + 0.5))
	}
	return int64(math.Ceil(v - 0.5))
}

// NormalizePercents implements the largest-remainder rounding rule (spec
// §4.1): real[i] = score[i]/sum*100, initial percent[i] = round(real[i]),
// then nudge the index with the largest |percent-real| residual until the
// total is exactly 100. Ties break toward the lowest index. Returns nil if
// scores is empty or sums to zero (invariant P1 only binds on a non-empty,
// positive-sum input).
func NormalizePercents(scores []float64) []uint32 {
	n := len(scores)
	if n == 0 {
		return nil
	}
	total := 0.0
	for _, s := range scores {
		total += s
	}
	if total <= 0 {
		return nil
	}

	reals := make([]float64, n)
	percents := make([]int64, n)
	sum := int64(0)
	for i, s := range scores {
		reals[i] = s / total * 100
		percents[i] = RoundHalfAwayFromZero(reals[i])
		sum += percents[i]
	}

	for sum != 100 {
		best := 0
		bestResidual := math.Abs(float64(percents[0]) - reals[0])
		for i := 1; i < n; i++ {
			residual := math.Abs(float64(percents[i]) - reals[i])
			if residual > bestResidual {
				bestResidual = residual
				best = i
			}
		}
		if sum > 100 {
			percents[best]--
			sum--
		} else {
			percents[best]++
			sum++
		}
		reals[best] = float64(percents[best])
	}

	out := make([]uint32, n)
	for i, p := range percents {
		if p < 0 {
			p = 0
		}
		out[i] = uint32(p)
	}
	return out
}

// AllocateBallots implements ballot rounding (spec §4.1): votes[i] =
// round(percent[i]*budget/100), then decrement the maximum entry (ties:
// highest index wins, matching the source's last-scanned-max semantics)
// while the running total exceeds budget. There is no increment pass for a
// total below budget, so the total never exceeds budget but can fall short
// of it when most entries round down (percents {33, 33, 34} over a budget of
// 10 yield 3 + 3 + 3 = 9).
func AllocateBallots(percents []uint32, budget uint32) []uint32 {
	n := len(percents)
	votes := make([]uint32, n)
	if n == 0 || budget == 0 {
		return votes
	}

	total := int64(0)
	for i, p := range percents {
		v := RoundHalfAwayFromZero(float64(p) * float64(budget) / 100)
		if v < 0 {
			v = 0
		}
		votes[i] = uint32(v)
		total += v
	}

	for total > int64(budget) {
		best := -1
		var bestVotes uint32
		for i := 0; i < n; i++ {
			if votes[i] >= bestVotes {
				bestVotes = votes[i]
				best = i
			}
		}
		if best < 0 || votes[best] == 0 {
			break
		}
		votes[best]--
		total--
	}
	return votes
}
