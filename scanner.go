package typematch

import (
	"github.com/coregx/typematch/internal/nfa"
)

// Scanner drives a Matcher over a push-based stream, one element at a
// time, emitting each MatchResult as soon as it becomes definitive:
// either no continuation of the stream could change it, or the caller has
// declared the stream over via End. A Scanner retains only the elements
// it might still need to hand back as match data or replay into a fresh
// search attempt (spec §4.7). Under a greedy unbounded quantifier that keeps
// matching, that is every element since the attempt began, so the buffer
// grows with the run until the match ends or End is called.
//
// A Scanner is single-use, single-threaded state tied to the Matcher that
// created it (via Matcher.Scanner); it is not safe for concurrent use.
type Scanner[T any] struct {
	sim *nfa.Simulator[T]

	buf      []T
	bufStart int
	pos      int
	cursor   int

	attemptFound bool
	bestStart    int
	bestEnd      int // exclusive

	closed bool
}

func newScanner[T any](m *Matcher[T]) *Scanner[T] {
	return &Scanner[T]{sim: nfa.NewSimulator(m.nfa, m.maxThreads)}
}

func (sc *Scanner[T]) bufAt(p int) T {
	return sc.buf[p-sc.bufStart]
}

// trim drops buffered elements that no live thread, no pending match, and
// no not-yet-processed position can still need.
func (sc *Scanner[T]) trim() {
	floor := sc.cursor
	if sc.attemptFound && sc.bestStart < floor {
		floor = sc.bestStart
	}
	if m, ok := sc.sim.MinStartPos(); ok && m < floor {
		floor = m
	}
	if floor > sc.bufStart {
		drop := floor - sc.bufStart
		if drop > len(sc.buf) {
			drop = len(sc.buf)
		}
		sc.buf = sc.buf[drop:]
		sc.bufStart += drop
	}
}

// resolvePending turns the current pending match (if any) into an
// emission (suppressed if zero-width, per spec §4.5/§9) and computes
// where the next search attempt must resume, then resets the simulator
// for that attempt.
func (sc *Scanner[T]) resolvePending() (result MatchResult[T], emit bool, restart int) {
	start, end := sc.bestStart, sc.bestEnd
	if end > start {
		restart = end
	} else {
		restart = start + 1
	}
	sc.sim.Reset()
	sc.attemptFound = false
	if end > start {
		data := make([]T, end-start)
		copy(data, sc.buf[start-sc.bufStart:end-sc.bufStart])
		return MatchResult[T]{Start: start, End: end - 1, Data: data}, true, restart
	}
	return MatchResult[T]{}, false, restart
}

// process drains every buffered position from cursor up to (but not
// including) pos through the simulator, mirroring the internal SearchAt
// loop one position at a time so it can be resumed across Push calls
// (spec §4.3, §4.5, §4.7). It handles the full chain of restarts a single
// call may trigger, since one Push can both close out a pending match and
// immediately discover the start of the next one in already-buffered
// elements.
func (sc *Scanner[T]) process() []MatchResult[T] {
	var emissions []MatchResult[T]
	for sc.cursor < sc.pos {
		p := sc.cursor
		if !sc.attemptFound {
			sc.sim.AddStart(p, false, true)
		}
		if s, matched := sc.sim.FirstMatch(); matched {
			sc.bestStart, sc.bestEnd, sc.attemptFound = s, p, true
		}
		if !sc.sim.Active() {
			if sc.attemptFound {
				r, ok, restart := sc.resolvePending()
				if ok {
					emissions = append(emissions, r)
				}
				sc.cursor = restart
				continue
			}
			sc.cursor = p + 1
			continue
		}
		sc.sim.Step(sc.bufAt(p), p+1, false, true)
		sc.cursor = p + 1
		if s, matched := sc.sim.FirstMatch(); matched {
			sc.bestStart, sc.bestEnd, sc.attemptFound = s, sc.cursor, true
		}
		if !sc.sim.Active() && sc.attemptFound {
			r, ok, restart := sc.resolvePending()
			if ok {
				emissions = append(emissions, r)
			}
			sc.cursor = restart
		}
	}
	sc.trim()
	return emissions
}

// Push feeds one element into the stream, returning any matches that
// became definitive as a result (spec §4.7). Pushing after End returns a
// *ScannerError. If a predicate panics, Push recovers it, closes the
// Scanner, and returns a *PredicateError rather than crashing the caller.
func (sc *Scanner[T]) Push(e T) (result []MatchResult[T], err error) {
	if sc.closed {
		return nil, &ScannerError{Op: "Push"}
	}
	defer func() {
		if r := recover(); r != nil {
			sc.closed = true
			result, err = nil, &PredicateError{Recovered: r}
		}
	}()

	sc.buf = append(sc.buf, e)
	sc.pos++
	return sc.process(), nil
}

// End declares the stream finished: it resolves any AssertEnd transitions
// deferred during Push (spec §4.3 "at-end finalization") and emits the
// pending match, if any. Every subsequent Push or End call returns a
// *ScannerError.
func (sc *Scanner[T]) End() (result []MatchResult[T], err error) {
	if sc.closed {
		return nil, &ScannerError{Op: "End"}
	}
	defer func() {
		sc.closed = true
		if r := recover(); r != nil {
			result, err = nil, &PredicateError{Recovered: r}
		}
	}()

	if !sc.attemptFound {
		sc.sim.AddStart(sc.pos, true, false)
	}
	sc.sim.FinalizeAtEnd(sc.pos)
	if s, matched := sc.sim.FirstMatch(); matched {
		sc.bestStart, sc.bestEnd, sc.attemptFound = s, sc.pos, true
	}

	var emissions []MatchResult[T]
	if sc.attemptFound {
		if r, ok, _ := sc.resolvePending(); ok {
			emissions = append(emissions, r)
		}
	}
	return emissions, nil
}
