package nfa

import (
	"fmt"

	"github.com/coregx/typematch/internal/ast"
)

// Builder constructs an NFA incrementally, allocating states from a
// monotonic counter and patching forward references as fragments combine.
// This is the low-level API the Compiler drives; it has no knowledge of
// the pattern AST.
type Builder[T any] struct {
	states []State[T]
	start  StateID
}

// NewBuilder creates an empty Builder.
func NewBuilder[T any]() *Builder[T] {
	return &Builder[T]{states: make([]State[T], 0, 16)}
}

// AddMatch adds the accept state and returns its ID.
func (b *Builder[T]) AddMatch() StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State[T]{Kind: KindMatch})
	return id
}

// AddConsume adds a state that transitions to next iff pred accepts the
// current element. pred == nil means the wildcard ("match any element").
func (b *Builder[T]) AddConsume(pred ast.Predicate[T], next StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State[T]{Kind: KindConsume, Pred: pred, Next: next})
	return id
}

// AddEpsilon adds a single-target epsilon state (priority is irrelevant
// with one edge).
func (b *Builder[T]) AddEpsilon(next StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State[T]{Kind: KindEpsilon, Edges: []Edge{{Target: next, Priority: 0}}})
	return id
}

// AddSplit adds a multi-target epsilon state. targets are given in
// priority order, highest first; the builder assigns strictly decreasing
// priorities matching that order (spec §4.2's "strictly decreasing
// priority" requirement for Alt, and the greedy/lazy ordering for Repeat).
func (b *Builder[T]) AddSplit(targets ...StateID) StateID {
	edges := make([]Edge, len(targets))
	prio := int32(len(targets))
	for i, t := range targets {
		edges[i] = Edge{Target: t, Priority: prio}
		prio--
	}
	id := StateID(len(b.states))
	b.states = append(b.states, State[T]{Kind: KindEpsilon, Edges: edges})
	return id
}

// AddAssertStart adds a zero-width assertion transitioning to next iff the
// current position is 0.
func (b *Builder[T]) AddAssertStart(next StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State[T]{Kind: KindAssertStart, Next: next})
	return id
}

// AddAssertEnd adds a zero-width assertion transitioning to next iff
// end-of-input is confirmed at the current position.
func (b *Builder[T]) AddAssertEnd(next StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State[T]{Kind: KindAssertEnd, Next: next})
	return id
}

// Patch sets the single outgoing target of a Consume/AssertStart/AssertEnd
// state, or the sole edge of a one-edge Epsilon state. Returns a *BuildError
// for any other kind (multi-edge Epsilon needs PatchSplit; Match has no
// target).
func (b *Builder[T]) Patch(id, target StateID) error {
	if int(id) >= len(b.states) {
		return &BuildError{Message: "state id out of bounds", StateID: id}
	}
	s := &b.states[id]
	switch s.Kind {
	case KindConsume, KindAssertStart, KindAssertEnd:
		s.Next = target
		return nil
	case KindEpsilon:
		if len(s.Edges) != 1 {
			return &BuildError{Message: fmt.Sprintf("cannot Patch a %d-edge Epsilon state, use PatchSplit", len(s.Edges)), StateID: id}
		}
		s.Edges[0].Target = target
		return nil
	default:
		return &BuildError{Message: fmt.Sprintf("cannot patch state of kind %s", s.Kind), StateID: id}
	}
}

// PatchSplit replaces the targets of a multi-edge Epsilon state, preserving
// the priority order the edges were originally allocated with (targets must
// be given in the same priority order as the original AddSplit call).
func (b *Builder[T]) PatchSplit(id StateID, targets ...StateID) error {
	if int(id) >= len(b.states) {
		return &BuildError{Message: "state id out of bounds", StateID: id}
	}
	s := &b.states[id]
	if s.Kind != KindEpsilon {
		return &BuildError{Message: fmt.Sprintf("expected Epsilon state, got %s", s.Kind), StateID: id}
	}
	if len(targets) != len(s.Edges) {
		return &BuildError{Message: fmt.Sprintf("PatchSplit target count %d does not match %d existing edges", len(targets), len(s.Edges)), StateID: id}
	}
	for i, t := range targets {
		s.Edges[i].Target = t
	}
	return nil
}

// SetStart records the NFA's start state.
func (b *Builder[T]) SetStart(start StateID) {
	b.start = start
}

// NumStates returns the number of states allocated so far.
func (b *Builder[T]) NumStates() int {
	return len(b.states)
}

// Validate checks that the start state and every transition target
// reference an allocated state. Targets still set to InvalidState (never
// patched) are accepted.
func (b *Builder[T]) Validate() error {
	if int(b.start) >= len(b.states) {
		return &BuildError{Message: "start state out of bounds", StateID: b.start}
	}
	for i := range b.states {
		s := &b.states[i]
		id := StateID(i)
		switch s.Kind {
		case KindConsume, KindAssertStart, KindAssertEnd:
			if s.Next != InvalidState && int(s.Next) >= len(b.states) {
				return &BuildError{Message: fmt.Sprintf("invalid next state %d", s.Next), StateID: id}
			}
		case KindEpsilon:
			for _, e := range s.Edges {
				if e.Target != InvalidState && int(e.Target) >= len(b.states) {
					return &BuildError{Message: fmt.Sprintf("invalid edge target %d", e.Target), StateID: id}
				}
			}
		}
	}
	return nil
}

// Build finalizes and returns the constructed NFA.
func (b *Builder[T]) Build() (*NFA[T], error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &NFA[T]{states: b.states, start: b.start}, nil
}
