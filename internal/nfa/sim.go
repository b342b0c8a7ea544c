package nfa

import (
	"github.com/coregx/typematch/internal/conv"
	"github.com/coregx/typematch/internal/sparse"
)

// thread is one parallel execution path through the NFA: the state it
// currently occupies and the position where its match attempt began.
type thread struct {
	state    StateID
	startPos int
}

// Simulator runs a Pike-VM-style parallel simulation of an NFA over a
// sequence of elements. At most one thread occupies any given state in a
// generation (enforced by visited); since new start threads are always
// appended at the lowest priority, the queue's order is the NFA's full
// priority order and the first Match thread encountered is always the
// correct leftmost-first, greedy/lazy-resolved candidate for its start
// position (spec §4.3, §4.4).
//
// A Simulator is mutable per-search state; it is not safe for concurrent
// use. Callers needing concurrent searches over the same NFA should use
// one Simulator per goroutine (mirroring the PikeVMState pattern of
// pooling mutable search state separately from the immutable automaton).
type Simulator[T any] struct {
	nfa     *NFA[T]
	visited *sparse.Set
	queue   []thread
	next    []thread

	// pendingEnd holds the (state, startPos) pairs whose AssertEnd
	// transition was blocked this generation because end-of-stream was not
	// yet confirmed. A streaming caller resolves them with FinalizeAtEnd
	// once the stream actually ends (spec §4.3 "at-end finalization",
	// §4.7). Batch callers (SearchAt, where the element count is known
	// upfront) never consult this — a blocked assertion at a known-non-final
	// position is permanently dead, not deferred.
	pendingEnd []thread

	predicateEvals int
	threadHigh     int
}

// NewSimulator creates a Simulator for n, pre-sizing its per-generation
// thread list and seen-set to the largest of n's state count, minThreads
// (a caller-supplied capacity hint; pass 0 to ignore it) and 16. This is a
// performance hint, not a hard limit: queue/next grow past it if a search
// needs more. visited has a fixed universe of that size, which always
// covers every state ID of n.
func NewSimulator[T any](n *NFA[T], minThreads int) *Simulator[T] {
	capacity := n.NumStates()
	if minThreads > capacity {
		capacity = minThreads
	}
	if capacity < 16 {
		capacity = 16
	}
	return &Simulator[T]{
		nfa:     n,
		visited: sparse.New(conv.IntToUint32(capacity)),
		queue:   make([]thread, 0, capacity),
		next:    make([]thread, 0, capacity),
	}
}

// Reset clears the per-search state (thread lists, seen-set, deferred
// AssertEnd threads), ready for a fresh search. The ThreadHighWatermark and
// PredicateEvals counters are kept.
func (sim *Simulator[T]) Reset() {
	sim.queue = sim.queue[:0]
	sim.next = sim.next[:0]
	sim.pendingEnd = sim.pendingEnd[:0]
	sim.visited.Clear()
}

// Active reports whether any thread survives in the current generation.
func (sim *Simulator[T]) Active() bool {
	return len(sim.queue) > 0
}

// closure follows epsilon, AssertStart, and AssertEnd transitions from t,
// appending every Consume/Match state reached to queue. Priority order is
// preserved: Edges on a KindEpsilon state are visited in the order the
// compiler assigned them (highest priority first), and recursive calls
// append depth-first, so two threads that reach queue in a given pass
// retain their relative priority forever after (they are only ever
// reordered by dropping, never by reordering).
//
// atEnd must be true only when the caller has confirmed pos is the true
// end of the sequence; deferEnd controls what happens when an AssertEnd is
// reached with atEnd false: true defers it into pendingEnd for later
// resolution (streaming), false simply drops the thread (batch, where a
// miss at a known position is permanent).
func (sim *Simulator[T]) closure(queue *[]thread, t thread, pos int, atEnd, deferEnd bool) {
	if !sim.visited.Insert(uint32(t.state)) {
		return
	}
	s := sim.nfa.State(t.state)
	switch s.Kind {
	case KindMatch, KindConsume:
		*queue = append(*queue, t)
	case KindEpsilon:
		for _, e := range s.Edges {
			if e.Target != InvalidState {
				sim.closure(queue, thread{state: e.Target, startPos: t.startPos}, pos, atEnd, deferEnd)
			}
		}
	case KindAssertStart:
		if pos == 0 && s.Next != InvalidState {
			sim.closure(queue, thread{state: s.Next, startPos: t.startPos}, pos, atEnd, deferEnd)
		}
	case KindAssertEnd:
		if s.Next == InvalidState {
			return
		}
		if atEnd {
			sim.closure(queue, thread{state: s.Next, startPos: t.startPos}, pos, atEnd, deferEnd)
		} else if deferEnd {
			sim.pendingEnd = append(sim.pendingEnd, thread{state: s.Next, startPos: t.startPos})
		}
	}
}

// AddStart injects a fresh thread starting at pos into the current
// generation, at the lowest priority (appended after whatever is already
// queued). atEnd resolves AssertEnd for a pattern that can match the empty
// sequence right at pos; deferEnd additionally preserves assertions
// blocked only by not-yet-confirmed end-of-stream, for Scanner's use.
func (sim *Simulator[T]) AddStart(pos int, atEnd, deferEnd bool) {
	sim.closure(&sim.queue, thread{state: sim.nfa.Start(), startPos: pos}, pos, atEnd, deferEnd)
}

// FirstMatch scans the queue in priority order for a thread occupying the
// Match state. If found, every lower-priority thread (everything after it
// in the queue) is dropped — nothing behind a match in priority order can
// ever produce a better one — and its start position is returned.
func (sim *Simulator[T]) FirstMatch() (startPos int, ok bool) {
	for i, t := range sim.queue {
		if sim.nfa.State(t.state).Kind == KindMatch {
			sim.queue = sim.queue[:i]
			return t.startPos, true
		}
	}
	return 0, false
}

// Step consumes elem, advancing every surviving thread whose Consume
// predicate accepts it into the next generation, then swaps it in as the
// current one. nextPos locates the generation that results, for
// AssertStart/AssertEnd resolution during the epsilon closure that follows
// each consumed transition; atEnd/deferEnd carry the same meaning as in
// AddStart.
func (sim *Simulator[T]) Step(elem T, nextPos int, atEnd, deferEnd bool) {
	if len(sim.queue) > sim.threadHigh {
		sim.threadHigh = len(sim.queue)
	}
	sim.visited.Clear()
	sim.next = sim.next[:0]
	sim.pendingEnd = sim.pendingEnd[:0]
	for _, t := range sim.queue {
		s := sim.nfa.State(t.state)
		if s.Kind != KindConsume {
			continue
		}
		if s.Pred != nil {
			sim.predicateEvals++
		}
		if s.Accepts(elem) {
			sim.closure(&sim.next, thread{state: s.Next, startPos: t.startPos}, nextPos, atEnd, deferEnd)
		}
	}
	sim.queue, sim.next = sim.next, sim.queue[:0]
}

// FinalizeAtEnd resolves every AssertEnd transition deferred this
// generation (via Step/AddStart with deferEnd=true) now that end-of-stream
// is confirmed at pos, merging newly reachable states into the queue. It
// is the streaming counterpart of the atEnd=true pass batch search already
// gets for free once n is known upfront (spec §4.3, §4.7).
func (sim *Simulator[T]) FinalizeAtEnd(pos int) {
	pending := sim.pendingEnd
	sim.pendingEnd = nil
	for _, t := range pending {
		sim.closure(&sim.queue, t, pos, true, false)
	}
}

// MinStartPos returns the smallest startPos among currently live threads,
// including those parked in pendingEnd awaiting FinalizeAtEnd. ok is false
// if nothing is live or pending. A streaming caller uses this to know how
// far back into its buffer it still needs to retain elements: a thread
// deferred on AssertEnd is invisible to Active() but can still resolve
// into a match once the stream ends, so it must hold its start position's
// data in the buffer just as a queued thread would.
func (sim *Simulator[T]) MinStartPos() (pos int, ok bool) {
	for _, t := range sim.queue {
		if !ok || t.startPos < pos {
			pos, ok = t.startPos, true
		}
	}
	for _, t := range sim.pendingEnd {
		if !ok || t.startPos < pos {
			pos, ok = t.startPos, true
		}
	}
	return pos, ok
}

// ThreadHighWatermark returns the largest generation size this Simulator
// has reached since it was created.
func (sim *Simulator[T]) ThreadHighWatermark() int {
	return sim.threadHigh
}

// PredicateEvals returns the number of times a user predicate has been
// invoked since this Simulator was created.
func (sim *Simulator[T]) PredicateEvals() int {
	return sim.predicateEvals
}

// SearchAt finds the first (leftmost-first, priority-resolved) match
// beginning at or after position at in elems. Returns ok == false if no
// match exists anywhere in elems[at:]. The full length is known upfront,
// so AssertEnd is always resolved immediately; nothing is ever deferred.
func (sim *Simulator[T]) SearchAt(elems []T, at int) (start, end int, ok bool) {
	n := len(elems)
	if at < 0 || at > n {
		return -1, -1, false
	}

	sim.Reset()
	bestStart, bestEnd, found := -1, -1, false

	for pos := at; pos <= n; pos++ {
		if !found {
			sim.AddStart(pos, pos == n, false)
		}
		if s, matched := sim.FirstMatch(); matched {
			bestStart, bestEnd, found = s, pos, true
		}
		if pos == n {
			break
		}
		if !sim.Active() {
			if found {
				break
			}
			continue
		}
		sim.Step(elems[pos], pos+1, pos+1 == n, false)
	}

	if found {
		return bestStart, bestEnd, true
	}
	return -1, -1, false
}
