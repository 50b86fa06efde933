package ballot

import (
	"testing"

	"attnledger/core/types"
)

func synopsisFixture() []*types.PublisherInfo {
	return []*types.PublisherInfo{
		{ID: "a.example", Score: 10, Percent: 10},
		{ID: "b.example", Score: 20, Percent: 20},
		{ID: "c.example", Score: 70, Percent: 70},
	}
}

func TestAllocateMatchesWorkedExample(t *testing.T) {
	winners := Allocate(synopsisFixture(), 13)
	if len(winners) != 3 {
		t.Fatalf("expected 3 winners, got %d", len(winners))
	}
	// Descending score order: c, b, a.
	want := map[types.PublisherId]uint32{"c.example": 9, "b.example": 3, "a.example": 1}
	sum := uint32(0)
	for _, w := range winners {
		if want[w.Publisher.ID] != w.Votes {
			t.Fatalf("publisher %s: got %d votes, want %d", w.Publisher.ID, w.Votes, want[w.Publisher.ID])
		}
		sum += w.Votes
	}
	if sum != 13 {
		t.Fatalf("expected sum 13, got %d", sum)
	}
}

func TestAllocateDropsZeroPercentPublishers(t *testing.T) {
	synopsis := []*types.PublisherInfo{
		{ID: "a.example", Score: 10, Percent: 0},
		{ID: "b.example", Score: 20, Percent: 100},
	}
	winners := Allocate(synopsis, 5)
	if len(winners) != 1 || winners[0].Publisher.ID != "b.example" {
		t.Fatalf("expected only b.example, got %+v", winners)
	}
}

func TestAllocateEmptySynopsisReturnsNil(t *testing.T) {
	if got := Allocate(nil, 10); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestAllocateTieBreaksByIDAscending(t *testing.T) {
	synopsis := []*types.PublisherInfo{
		{ID: "z.example", Score: 5, Percent: 50},
		{ID: "a.example", Score: 5, Percent: 50},
	}
	winners := Allocate(synopsis, 2)
	if winners[0].Publisher.ID != "a.example" {
		t.Fatalf("expected a.example ranked first on tie, got %s", winners[0].Publisher.ID)
	}
}
