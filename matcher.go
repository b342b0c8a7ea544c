package typematch

import (
	"iter"

	"github.com/coregx/typematch/internal/ast"
	"github.com/coregx/typematch/internal/nfa"
)

// MatchResult is one match produced by a Matcher: End is the inclusive
// index of the last consumed element, and Data is a copy of the matched
// slice seq[Start:End+1] (spec §3.4).
type MatchResult[T any] struct {
	Start int
	End   int
	Data  []T
}

// Matcher runs a compiled pattern against sequences. A Matcher is
// immutable and safe to share across goroutines running independent
// searches; each search method builds its own Simulator, so concurrent
// calls never share mutable state.
type Matcher[T any] struct {
	nfa           *nfa.NFA[T]
	pattern       *Pattern[T]
	anchoredStart bool
	maxThreads    int
}

// isAnchoredStart reports whether n's outermost node is an AnchorStart,
// meaning findAll/find must only ever attempt a match at position 0
// (spec §4.5).
func isAnchoredStart[T any](n *ast.Node[T]) bool {
	return n.Kind == ast.KindAnchorStart
}

func newResult[T any](seq []T, start, exclusiveEnd int) MatchResult[T] {
	data := make([]T, exclusiveEnd-start)
	copy(data, seq[start:exclusiveEnd])
	return MatchResult[T]{Start: start, End: exclusiveEnd - 1, Data: data}
}

// scan drives the non-overlapping restart-at-next-position algorithm of
// spec §4.5 over seq, calling emit for each non-empty match found. Empty
// matches are suppressed from emission but still advance the scan by one
// element to guarantee progress (spec §4.5, §9). emit returns false to
// stop scanning early (used by Find/Test).
func scan[T any](sim *nfa.Simulator[T], seq []T, anchored bool, emit func(MatchResult[T]) bool) {
	start := 0
	for {
		if anchored && start != 0 {
			return
		}
		s, e, ok := sim.SearchAt(seq, start)
		if !ok {
			return
		}
		if e > s {
			if !emit(newResult(seq, s, e)) {
				return
			}
			start = e
		} else {
			start = s + 1
		}
		if anchored {
			return
		}
		if start > len(seq) {
			return
		}
	}
}

// FindAll returns every non-overlapping match in seq, left to right,
// earliest start wins (spec §4.5, §6).
func (m *Matcher[T]) FindAll(seq []T) []MatchResult[T] {
	sim := nfa.NewSimulator(m.nfa, m.maxThreads)
	var results []MatchResult[T]
	scan(sim, seq, m.anchoredStart, func(r MatchResult[T]) bool {
		results = append(results, r)
		return true
	})
	return results
}

// Find returns the first match in seq, if any.
func (m *Matcher[T]) Find(seq []T) (MatchResult[T], bool) {
	sim := nfa.NewSimulator(m.nfa, m.maxThreads)
	var result MatchResult[T]
	found := false
	scan(sim, seq, m.anchoredStart, func(r MatchResult[T]) bool {
		result, found = r, true
		return false
	})
	return result, found
}

// Test reports whether seq contains any match. Equivalent to
// Find(seq) != (_, false).
func (m *Matcher[T]) Test(seq []T) bool {
	_, ok := m.Find(seq)
	return ok
}

// FindAllSeq is FindAll over a Go iterator. The iterator is materialized
// into a slice first: the restart-at-next-position algorithm needs random
// access back to any earlier live thread's start, which an iterator alone
// cannot provide. Use Scanner for genuinely unbounded/streamed input.
func (m *Matcher[T]) FindAllSeq(seq iter.Seq[T]) []MatchResult[T] {
	return m.FindAll(collect(seq))
}

// FindSeq is Find over a Go iterator (see FindAllSeq for the
// materialization caveat).
func (m *Matcher[T]) FindSeq(seq iter.Seq[T]) (MatchResult[T], bool) {
	return m.Find(collect(seq))
}

// TestSeq is Test over a Go iterator (see FindAllSeq for the
// materialization caveat).
func (m *Matcher[T]) TestSeq(seq iter.Seq[T]) bool {
	return m.Test(collect(seq))
}

func collect[T any](seq iter.Seq[T]) []T {
	var out []T
	for v := range seq {
		out = append(out, v)
	}
	return out
}

// Scanner returns a fresh streaming Scanner for this Matcher (spec §4.7,
// §6). Each call starts independent state; Scanners are not safe for
// concurrent use.
func (m *Matcher[T]) Scanner() *Scanner[T] {
	return newScanner(m)
}

// Stats reports simulator resource counters for a single search, used to
// verify the complexity bound of spec §8 (total predicate evaluations <=
// C*n*m).
type Stats struct {
	NumStates           int
	ThreadHighWatermark int
	PredicateEvals      int
}

// StatsFor runs FindAll over seq while instrumenting the simulator, and
// returns both the matches and the resulting Stats.
func (m *Matcher[T]) StatsFor(seq []T) ([]MatchResult[T], Stats) {
	sim := nfa.NewSimulator(m.nfa, m.maxThreads)
	var results []MatchResult[T]
	scan(sim, seq, m.anchoredStart, func(r MatchResult[T]) bool {
		results = append(results, r)
		return true
	})
	return results, Stats{
		NumStates:           m.nfa.NumStates(),
		ThreadHighWatermark: sim.ThreadHighWatermark(),
		PredicateEvals:      sim.PredicateEvals(),
	}
}
