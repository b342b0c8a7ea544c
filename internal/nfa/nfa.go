// Package nfa implements Thompson's construction (compiler) and a
// Pike-VM-style parallel simulator over a generic element type T. It is the
// compiled, read-only counterpart to the ast package's pattern trees.
package nfa

import (
	"fmt"

	"github.com/coregx/typematch/internal/ast"
)

// StateID identifies a state within a single NFA. IDs are dense and
// allocated in construction order starting at 0.
type StateID uint32

// InvalidState marks an unset or not-yet-patched target.
const InvalidState StateID = 0xFFFFFFFF

// Kind identifies the shape of a state's outgoing transitions.
type Kind uint8

const (
	// KindMatch is the unique accept state; it has no outgoing transitions.
	KindMatch Kind = iota
	// KindConsume transitions to Next iff Pred accepts the current element.
	KindConsume
	// KindEpsilon fans out to Edges without consuming input, in
	// priority-descending order (Edges[0] is tried first).
	KindEpsilon
	// KindAssertStart transitions to Next iff the current position is 0.
	KindAssertStart
	// KindAssertEnd transitions to Next iff end-of-input is confirmed at
	// the current position.
	KindAssertEnd
)

func (k Kind) String() string {
	switch k {
	case KindMatch:
		return "Match"
	case KindConsume:
		return "Consume"
	case KindEpsilon:
		return "Epsilon"
	case KindAssertStart:
		return "AssertStart"
	case KindAssertEnd:
		return "AssertEnd"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Edge is one outgoing epsilon transition of a KindEpsilon state. Edges on a
// single state are stored in strictly decreasing priority (invariant
// enforced by the Builder, not re-checked at simulation time).
type Edge struct {
	Target   StateID
	Priority int32
}

// State is one node of the compiled automaton. The populated fields depend
// on Kind, matching the transition variants of spec §3.2.
type State[T any] struct {
	Kind Kind

	Pred ast.Predicate[T] // KindConsume; nil means "always true" (wildcard)
	Next StateID          // KindConsume, KindAssertStart, KindAssertEnd

	Edges []Edge // KindEpsilon, priority-descending
}

// Accepts reports whether e satisfies this consume state's predicate. Only
// valid for KindConsume states.
func (s *State[T]) Accepts(e T) bool {
	if s.Pred == nil {
		return true
	}
	return s.Pred(e)
}

// NFA is a compiled, immutable automaton over element type T. It is safe
// for concurrent read by independent Simulator instances.
type NFA[T any] struct {
	states []State[T]
	start  StateID
}

// NumStates returns the number of states, used to size simulator buffers.
func (n *NFA[T]) NumStates() int {
	return len(n.states)
}

// Start returns the NFA's single start state.
func (n *NFA[T]) Start() StateID {
	return n.start
}

// State returns the state for id. id must be a valid id produced by this
// NFA's builder.
func (n *NFA[T]) State(id StateID) *State[T] {
	return &n.states[id]
}
