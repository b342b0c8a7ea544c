// Package typematch provides regex-like pattern matching over sequences of
// an arbitrary element type T: elements are matched against user-supplied
// predicates T -> bool rather than characters against character classes.
// Patterns are assembled with a fluent builder, compiled via Thompson's
// construction into an NFA, and executed by a Pike-VM-style simulator
// against slices, iterators, or a push-based stream.
package typematch

import (
	"fmt"

	"github.com/coregx/typematch/internal/ast"
)

// Unbounded is the max value meaning "no upper bound" for OneOrMore,
// ZeroOrMore, and Between.
const Unbounded = ast.Unbounded

// Predicate decides whether a single element of type T matches. It is
// expected to be total: it should not block and should not depend on
// engine-internal state. Predicates may be stateful from the host's
// perspective (closures over mutable variables); the engine invokes them in
// strict left-to-right NFA-step order and never re-orders, memoizes, or
// batches calls (spec §5, §9).
type Predicate[T any] func(T) bool

// Pattern is an immutable fluent builder for a pattern AST. Every chaining
// method returns a new Pattern rooted in the combined node; the receiver is
// never mutated. A Pattern that fails an invariant check carries a sticky
// error instead of panicking immediately — every subsequent chained call is
// a no-op, and the error surfaces when the pattern is finally compiled.
type Pattern[T any] struct {
	node *ast.Node[T]
	err  error
}

func fail[T any](op, reason string) *Pattern[T] {
	return &Pattern[T]{err: &PatternError{Op: op, Reason: reason}}
}

// Where builds a pattern matching exactly one element satisfying p.
func Where[T any](p Predicate[T]) *Pattern[T] {
	return &Pattern[T]{node: ast.NewPred(ast.Predicate[T](p))}
}

// Any builds a pattern matching exactly one element, unconditionally.
func Any[T any]() *Pattern[T] {
	return &Pattern[T]{node: ast.NewAny[T]()}
}

// OneOf builds a pattern matching if any of the given alternatives
// matches, in left-to-right priority order. Each alternative may be a
// Predicate[T] or a *Pattern[T]. OneOf requires at least two alternatives.
func OneOf[T any](alts ...any) *Pattern[T] {
	if len(alts) < 2 {
		return fail[T]("OneOf", "at least two alternatives are required")
	}
	nodes := make([]*ast.Node[T], len(alts))
	for i, a := range alts {
		n, err := lift[T](a)
		if err != nil {
			return &Pattern[T]{err: err}
		}
		nodes[i] = n
	}
	alt, err := ast.NewAlt(nodes...)
	if err != nil {
		return &Pattern[T]{err: &PatternError{Op: "OneOf", Err: err}}
	}
	return &Pattern[T]{node: alt}
}

// lift converts a bare predicate to a Pred node, or takes a *Pattern[T]'s
// node as-is; it rejects any other argument type.
func lift[T any](x any) (*ast.Node[T], error) {
	switch v := x.(type) {
	case Predicate[T]:
		return ast.NewPred[T](ast.Predicate[T](v)), nil
	case func(T) bool:
		return ast.NewPred[T](v), nil
	case *Pattern[T]:
		if v.err != nil {
			return nil, v.err
		}
		return v.node, nil
	default:
		return nil, &PatternError{Op: "lift", Reason: fmt.Sprintf("argument of type %T is neither a predicate nor a Pattern", x)}
	}
}

// FollowedBy appends x (a predicate or pattern) to the current pattern,
// flattening nested concatenations (spec §3.1, §4.1).
func (p *Pattern[T]) FollowedBy(x any) *Pattern[T] {
	if p.err != nil {
		return p
	}
	next, err := lift[T](x)
	if err != nil {
		return &Pattern[T]{err: err}
	}
	node, err := ast.NewConcat(p.node, next)
	if err != nil {
		return &Pattern[T]{err: &PatternError{Op: "FollowedBy", Err: err}}
	}
	return &Pattern[T]{node: node}
}

// Or wraps the current pattern and x (a predicate or pattern) in an
// alternation, with the current pattern given priority.
func (p *Pattern[T]) Or(x any) *Pattern[T] {
	if p.err != nil {
		return p
	}
	other, err := lift[T](x)
	if err != nil {
		return &Pattern[T]{err: err}
	}
	node, err := ast.NewAlt(p.node, other)
	if err != nil {
		return &Pattern[T]{err: &PatternError{Op: "Or", Err: err}}
	}
	return &Pattern[T]{node: node}
}

// quantify applies build to the trailing node of the current pattern — the
// last child if the pattern is a Concat, the whole node otherwise — per
// the "modifies the last element" contract of spec §4.1.
func (p *Pattern[T]) quantify(op string, build func(*ast.Node[T]) (*ast.Node[T], error)) *Pattern[T] {
	if p.err != nil {
		return p
	}
	if p.node.Kind == ast.KindConcat {
		target := ast.LastConcatChild(p.node)
		wrapped, err := build(target)
		if err != nil {
			return &Pattern[T]{err: &PatternError{Op: op, Err: err}}
		}
		return &Pattern[T]{node: ast.WithLastReplaced(p.node, wrapped)}
	}
	wrapped, err := build(p.node)
	if err != nil {
		return &Pattern[T]{err: &PatternError{Op: op, Err: err}}
	}
	return &Pattern[T]{node: wrapped}
}

// OneOrMore matches the trailing element one or more times. greedy selects
// whether the quantifier prefers the maximal (true) or minimal (false)
// number of repetitions when both could lead to an overall match.
func (p *Pattern[T]) OneOrMore(greedy bool) *Pattern[T] {
	return p.quantify("OneOrMore", func(n *ast.Node[T]) (*ast.Node[T], error) {
		return ast.NewRepeat(n, 1, ast.Unbounded, greedy)
	})
}

// ZeroOrMore matches the trailing element zero or more times.
func (p *Pattern[T]) ZeroOrMore(greedy bool) *Pattern[T] {
	return p.quantify("ZeroOrMore", func(n *ast.Node[T]) (*ast.Node[T], error) {
		return ast.NewRepeat(n, 0, ast.Unbounded, greedy)
	})
}

// Optional matches the trailing element zero or one times.
func (p *Pattern[T]) Optional(greedy bool) *Pattern[T] {
	return p.quantify("Optional", func(n *ast.Node[T]) (*ast.Node[T], error) {
		return ast.NewRepeat(n, 0, 1, greedy)
	})
}

// Times matches the trailing element exactly n times. n must be at least 1.
func (p *Pattern[T]) Times(n int) *Pattern[T] {
	if p.err == nil && n < 1 {
		return fail[T]("Times", "n must be >= 1")
	}
	return p.quantify("Times", func(node *ast.Node[T]) (*ast.Node[T], error) {
		return ast.NewRepeat(node, uint32(n), uint32(n), true)
	})
}

// Between matches the trailing element between min and max times
// inclusive (max may be Unbounded). min must be <= max and max must be
// nonzero.
func (p *Pattern[T]) Between(min, max uint32) *Pattern[T] {
	if p.err == nil && (min > max || max == 0) {
		return fail[T]("Between", "require min <= max and max != 0")
	}
	return p.quantify("Between", func(node *ast.Node[T]) (*ast.Node[T], error) {
		return ast.NewRepeat(node, min, max, true)
	})
}

// AtStart anchors the whole current pattern to the beginning of the
// sequence (position 0).
func (p *Pattern[T]) AtStart() *Pattern[T] {
	if p.err != nil {
		return p
	}
	return &Pattern[T]{node: ast.NewAnchorStart(p.node)}
}

// AtEnd anchors the whole current pattern to the end of the sequence (or
// confirmed end-of-stream).
func (p *Pattern[T]) AtEnd() *Pattern[T] {
	if p.err != nil {
		return p
	}
	return &Pattern[T]{node: ast.NewAnchorEnd(p.node)}
}

// String renders the pattern's AST shape for debugging; it is not a parser
// syntax and has no stability guarantee across versions.
func (p *Pattern[T]) String() string {
	if p.err != nil {
		return fmt.Sprintf("<invalid pattern: %v>", p.err)
	}
	return nodeString(p.node)
}

func nodeString[T any](n *ast.Node[T]) string {
	switch n.Kind {
	case ast.KindPred:
		return "Pred(...)"
	case ast.KindAny:
		return "Any"
	case ast.KindConcat:
		s := "Concat("
		for i, c := range n.Children {
			if i > 0 {
				s += ", "
			}
			s += nodeString(c)
		}
		return s + ")"
	case ast.KindAlt:
		s := "Alt("
		for i, c := range n.Children {
			if i > 0 {
				s += ", "
			}
			s += nodeString(c)
		}
		return s + ")"
	case ast.KindRepeat:
		greedy := "greedy"
		if !n.Greedy {
			greedy = "lazy"
		}
		max := "inf"
		if n.Max != ast.Unbounded {
			max = fmt.Sprintf("%d", n.Max)
		}
		return fmt.Sprintf("Repeat(%s, %d, %s, %s)", nodeString(n.Child), n.Min, max, greedy)
	case ast.KindAnchorStart:
		return fmt.Sprintf("AnchorStart(%s)", nodeString(n.Child))
	case ast.KindAnchorEnd:
		return fmt.Sprintf("AnchorEnd(%s)", nodeString(n.Child))
	default:
		return n.Kind.String()
	}
}
