// Package synopsis implements the synopsis normalizer (spec §4.5): a pure
// function over an eligible working-set snapshot that assigns percent and
// weight to each publisher per native/scoring's largest-remainder rule. It
// is grounded on the same "pure recompute over a snapshot" shape as
// nhbchain's native/reputation score refresh, with no persistence of its
// own.
package synopsis

import (
	"sort"

	"attnledger/core/types"
	"attnledger/native/scoring"
	"attnledger/observability/metrics"
)

// Run assigns Percent and Weight on a copy of working, sorted by id for a
// deterministic return order, and reports the eligible-publisher/percent-sum
// metrics. Invariant P1 (spec §8) holds on the returned slice whenever it is
// non-empty and the input's scores sum to a positive value. An empty working
// set is a no-op (returns nil).
func Run(working []*types.PublisherInfo) []*types.PublisherInfo {
	if len(working) == 0 {
		metrics.Ledger().SetSynopsis(0, 0)
		return nil
	}

	out := make([]*types.PublisherInfo, len(working))
	for i, info := range working {
		out[i] = info.Clone()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	scores := make([]float64, len(out))
	for i, info := range out {
		scores[i] = info.Score
	}

	scoreSum := 0.0
	for _, s := range scores {
		scoreSum += s
	}

	percents := scoring.NormalizePercents(scores)
	sum := 0
	if percents != nil {
		for i, p := range percents {
			out[i].Percent = p
			if scoreSum > 0 {
				out[i].Weight = scores[i] / scoreSum * 100
			} else {
				out[i].Weight = 0
			}
			sum += int(p)
		}
	} else {
		for _, info := range out {
			info.Percent = 0
			info.Weight = 0
		}
	}

	metrics.Ledger().SetSynopsis(sum, len(out))
	return out
}
