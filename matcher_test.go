package typematch

import (
	"reflect"
	"testing"
)

func isPositive(n int) bool { return n > 0 }

// TestFindAllScenario1 is spec §8 scenario 1.
func TestFindAllScenario1(t *testing.T) {
	m := MustCompile(Where(Predicate[int](isEven)).FollowedBy(Predicate[int](isOdd)).FollowedBy(Predicate[int](isEven)))
	got := m.FindAll([]int{2, 3, 4, 6, 7, 8, 9, 10})
	want := []MatchResult[int]{
		{Start: 0, End: 2, Data: []int{2, 3, 4}},
		{Start: 3, End: 5, Data: []int{6, 7, 8}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindAll = %+v, want %+v", got, want)
	}
}

// TestAtStartScenario2 is spec §8 scenario 2.
func TestAtStartScenario2(t *testing.T) {
	m := MustCompile(Where(Predicate[int](isEven)).AtStart())

	got := m.FindAll([]int{2, 3, 4})
	want := []MatchResult[int]{{Start: 0, End: 0, Data: []int{2}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindAll([2,3,4]) = %+v, want %+v", got, want)
	}

	if got := m.FindAll([]int{1, 2, 4}); len(got) != 0 {
		t.Fatalf("FindAll([1,2,4]) = %+v, want none", got)
	}
}

// TestAtEndScenario3 is spec §8 scenario 3.
func TestAtEndScenario3(t *testing.T) {
	m := MustCompile(Where(Predicate[int](isEven)).AtEnd())

	got := m.FindAll([]int{1, 3, 4})
	want := []MatchResult[int]{{Start: 2, End: 2, Data: []int{4}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindAll([1,3,4]) = %+v, want %+v", got, want)
	}

	if got := m.FindAll([]int{1, 3, 5}); len(got) != 0 {
		t.Fatalf("FindAll([1,3,5]) = %+v, want none", got)
	}
}

// TestOneOrMoreGreedyVsLazyScenario4 is spec §8 scenario 4.
func TestOneOrMoreGreedyVsLazyScenario4(t *testing.T) {
	greedy := MustCompile(Where(Predicate[int](isPositive)).OneOrMore(true).FollowedBy(Predicate[int](isPositive)))
	got := greedy.FindAll([]int{1, 2, 3})
	want := []MatchResult[int]{{Start: 0, End: 2, Data: []int{1, 2, 3}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("greedy FindAll = %+v, want %+v", got, want)
	}

	lazy := MustCompile(Where(Predicate[int](isPositive)).OneOrMore(false).FollowedBy(Predicate[int](isPositive)))
	got = lazy.FindAll([]int{1, 2, 3})
	want = []MatchResult[int]{{Start: 0, End: 1, Data: []int{1, 2}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("lazy FindAll = %+v, want %+v", got, want)
	}
}

// TestTimesScenario5 is spec §8 scenario 5.
func TestTimesScenario5(t *testing.T) {
	m := MustCompile(Where(Predicate[int](func(n int) bool { return n > 0 })).Times(3))
	got := m.FindAll([]int{1, 2, 3, 4})
	want := []MatchResult[int]{{Start: 0, End: 2, Data: []int{1, 2, 3}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindAll = %+v, want %+v", got, want)
	}
}

// TestFindAllZeroOrMoreSuppressesEmptyMatches checks spec §4.6/§9's hard
// case directly at the FindAll driver level: a pattern that can match the
// empty sequence (ZeroOrMore over a predicate nothing in the input
// satisfies) must not emit spurious empty matches, and must not infinite
// loop, instead advancing one element at a time until a genuine non-empty
// match is found.
func TestFindAllZeroOrMoreSuppressesEmptyMatches(t *testing.T) {
	m := MustCompile(Where(Predicate[int](isOdd)).ZeroOrMore(true))
	got := m.FindAll([]int{2, 4, 6})
	if len(got) != 0 {
		t.Fatalf("FindAll = %+v, want none (only empty matches possible, all suppressed)", got)
	}

	got = m.FindAll([]int{2, 4, 3, 3, 6})
	want := []MatchResult[int]{{Start: 2, End: 3, Data: []int{3, 3}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindAll = %+v, want %+v", got, want)
	}
}

// TestFindAllOptionalSuppressesEmptyMatches mirrors the ZeroOrMore case for
// Optional: alone, it can match the empty sequence, and only the non-empty
// match is emitted. Composed with FollowedBy, there is also a genuine
// non-empty match to find once the optional element is skipped.
func TestFindAllOptionalSuppressesEmptyMatches(t *testing.T) {
	opt := MustCompile(Where(Predicate[int](isOdd)).Optional(true))
	got := opt.FindAll([]int{2, 3})
	want := []MatchResult[int]{{Start: 1, End: 1, Data: []int{3}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindAll = %+v, want %+v", got, want)
	}

	m := MustCompile(Where(Predicate[int](isOdd)).Optional(true).FollowedBy(Predicate[int](isEven)))
	got = m.FindAll([]int{4, 6})
	want = []MatchResult[int]{
		{Start: 0, End: 0, Data: []int{4}},
		{Start: 1, End: 1, Data: []int{6}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindAll = %+v, want %+v", got, want)
	}

	got = m.FindAll([]int{3, 4})
	want = []MatchResult[int]{{Start: 0, End: 1, Data: []int{3, 4}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindAll = %+v, want %+v", got, want)
	}
}

// TestUniversalNonOverlapAndOrdering checks spec §8's universal invariant:
// matches are strictly non-overlapping and ordered by increasing start.
func TestUniversalNonOverlapAndOrdering(t *testing.T) {
	m := MustCompile(Where(Predicate[int](isEven)))
	seq := []int{2, 4, 1, 6, 8, 10, 3}
	results := m.FindAll(seq)
	for i, r := range results {
		if r.Start < 0 || r.End < r.Start || r.End >= len(seq) {
			t.Fatalf("result %d out of bounds: %+v", i, r)
		}
		if !reflect.DeepEqual(r.Data, seq[r.Start:r.End+1]) {
			t.Fatalf("result %d data mismatch: %+v", i, r)
		}
		if i > 0 && results[i-1].End >= r.Start {
			t.Fatalf("results %d and %d overlap: %+v, %+v", i-1, i, results[i-1], r)
		}
	}
}

// TestUniversalTestFindFindAllEquivalence checks spec §8's equivalence:
// test(s) = (find(s) != null) = (findAll(s) != []).
func TestUniversalTestFindFindAllEquivalence(t *testing.T) {
	m := MustCompile(Where(Predicate[int](isEven)).FollowedBy(Predicate[int](isOdd)))
	for _, seq := range [][]int{{2, 3}, {3, 3}, {}, {2, 3, 4, 5}} {
		test := m.Test(seq)
		_, foundFind := m.Find(seq)
		foundAll := len(m.FindAll(seq)) != 0
		if test != foundFind || test != foundAll {
			t.Fatalf("seq %v: test=%v find!=nil=%v findAll!=[]=%v disagree", seq, test, foundFind, foundAll)
		}
	}
}

// TestUniversalIterableEquivalence checks spec §8's iterable equivalence:
// FindAllSeq over an iterator matches FindAll over the same data materialized.
func TestUniversalIterableEquivalence(t *testing.T) {
	m := MustCompile(Where(Predicate[int](isEven)).FollowedBy(Predicate[int](isOdd)))
	seq := []int{2, 3, 4, 6, 7, 8}

	want := m.FindAll(seq)
	got := m.FindAllSeq(func(yield func(int) bool) {
		for _, v := range seq {
			if !yield(v) {
				return
			}
		}
	})
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindAllSeq = %+v, want %+v", got, want)
	}
}

// TestUniversalGreedyLazyDuality checks spec §8: for a shared start, the
// greedy match's end is >= the lazy match's end.
func TestUniversalGreedyLazyDuality(t *testing.T) {
	greedy := MustCompile(Where(Predicate[int](isPositive)).OneOrMore(true).FollowedBy(Predicate[int](isPositive)))
	lazy := MustCompile(Where(Predicate[int](isPositive)).OneOrMore(false).FollowedBy(Predicate[int](isPositive)))

	seq := []int{5, 4, 3, 2, 1}
	gr, ok := greedy.Find(seq)
	if !ok {
		t.Fatal("expected greedy match")
	}
	lz, ok := lazy.Find(seq)
	if !ok {
		t.Fatal("expected lazy match")
	}
	if gr.Start != lz.Start {
		t.Fatalf("expected same start, got greedy=%d lazy=%d", gr.Start, lz.Start)
	}
	if gr.End < lz.End {
		t.Fatalf("expected greedy end >= lazy end, got greedy=%d lazy=%d", gr.End, lz.End)
	}
}

// TestUniversalComplexityBound is a smoke test for spec §8's complexity
// property via Stats: predicate evaluations should stay within a small
// constant multiple of n*m rather than blowing up combinatorially.
func TestUniversalComplexityBound(t *testing.T) {
	m := MustCompile(Where(Predicate[int](isPositive)).OneOrMore(true).FollowedBy(Predicate[int](isPositive)))
	n := 200
	seq := make([]int, n)
	for i := range seq {
		seq[i] = i%3 - 1 // mix of positive/non-positive
	}
	_, stats := m.StatsFor(seq)
	const cBound = 8
	if stats.PredicateEvals > cBound*n*stats.NumStates {
		t.Fatalf("predicate evals %d exceeds bound %d*%d*%d", stats.PredicateEvals, cBound, n, stats.NumStates)
	}
}
