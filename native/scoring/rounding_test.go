package scoring

import "testing"

func TestNormalizePercentsThreePublisher(t *testing.T) {
	got := NormalizePercents([]float64{10, 20, 70})
	want := []uint32{10, 20, 70}
	assertEqualUint32(t, want, got)
}

func TestNormalizePercentsTieBreakLowestIndex(t *testing.T) {
	got := NormalizePercents([]float64{1, 1, 1})
	want := []uint32{34, 33, 33}
	assertEqualUint32(t, want, got)
}

func TestNormalizePercentsEmptyOrZeroSum(t *testing.T) {
	if got := NormalizePercents(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := NormalizePercents([]float64{0, 0, 0}); got != nil {
		t.Fatalf("expected nil for zero-sum input, got %v", got)
	}
}

func TestNormalizePercentsSumsTo100(t *testing.T) {
	cases := [][]float64{
		{1, 2, 3, 4, 5},
		{100},
		{7, 7, 7, 7, 7, 7, 7},
		{0.1, 0.2, 0.3, 123.4},
	}
	for _, scores := range cases {
		percents := NormalizePercents(scores)
		var sum uint32
		for _, p := range percents {
			sum += p
		}
		if sum != 100 {
			t.Fatalf("scores %v: percent sum = %d, want 100", scores, sum)
		}
	}
}

func TestAllocateBallotsThreePublisher(t *testing.T) {
	got := AllocateBallots([]uint32{10, 20, 70}, 13)
	want := []uint32{1, 3, 9}
	assertEqualUint32(t, want, got)
}

func TestAllocateBallotsSumNeverExceedsBudget(t *testing.T) {
	cases := []struct {
		percents []uint32
		budget   uint32
	}{
		{[]uint32{33, 33, 34}, 10},
		{[]uint32{100}, 7},
		{[]uint32{50, 50}, 1},
		{[]uint32{0, 0, 100}, 5},
	}
	for _, c := range cases {
		votes := AllocateBallots(c.percents, c.budget)
		var sum uint32
		for _, v := range votes {
			sum += v
		}
		if sum > c.budget {
			t.Fatalf("percents %v budget %d: votes sum %d exceeds budget", c.percents, c.budget, sum)
		}
	}
}

func TestAllocateBallotsZeroPercentsYieldsEmptyBudgetUse(t *testing.T) {
	votes := AllocateBallots([]uint32{0, 0, 0}, 13)
	for _, v := range votes {
		if v != 0 {
			t.Fatalf("expected all-zero votes, got %v", votes)
		}
	}
}

func assertEqualUint32(t *testing.T, want, got []uint32) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("length mismatch: want %v got %v", want, got)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("index %d: want %d got %d (full want=%v got=%v)", i, want[i], got[i], want, got)
		}
	}
}
