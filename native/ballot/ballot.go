// Package ballot implements the ballot allocator (spec §4.6): selects the
// top-N publishers from a synopsis and distributes a vote budget across
// them using native/scoring's ballot rounding. Grounded on the same
// sort-then-allocate shape as nhbchain's native/loyalty tier ranking, though
// here the ranking key is score rather than a loyalty tier.
package ballot

import (
	"sort"

	"attnledger/core/types"
	"attnledger/native/scoring"
	"attnledger/observability/metrics"
)

// Winner pairs a publisher snapshot with its allocated vote count.
type Winner struct {
	Publisher *types.PublisherInfo
	Votes     uint32
}

// Allocate sorts synopsis descending by score (ties broken by id ascending,
// spec §4.6), drops zero-percent entries, and distributes budget votes
// across the remainder per spec §4.1's ballot rounding. Returns nil if no
// publisher has a positive percent.
func Allocate(synopsis []*types.PublisherInfo, budget uint32) []Winner {
	if len(synopsis) == 0 {
		return nil
	}

	ranked := make([]*types.PublisherInfo, len(synopsis))
	copy(ranked, synopsis)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})

	eligible := ranked[:0:0]
	for _, info := range ranked {
		if info.Percent == 0 {
			continue
		}
		eligible = append(eligible, info)
	}
	if len(eligible) == 0 {
		return nil
	}

	percents := make([]uint32, len(eligible))
	for i, info := range eligible {
		percents[i] = info.Percent
	}
	votes := scoring.AllocateBallots(percents, budget)

	sum := uint32(0)
	winners := make([]Winner, len(eligible))
	for i, info := range eligible {
		winners[i] = Winner{Publisher: info.Clone(), Votes: votes[i]}
		sum += votes[i]
	}

	metrics.Ledger().SetBallotVotesSum(budget, sum)
	return winners
}
