package nfa

import (
	"fmt"

	"github.com/coregx/typematch/internal/ast"
)

// CompilerConfig configures NFA compilation.
type CompilerConfig struct {
	// MaxRecursionDepth bounds AST recursion depth during compilation,
	// guarding against stack overflow on pathologically deep builder
	// chains. Default: 1000.
	MaxRecursionDepth int
}

// DefaultCompilerConfig returns sensible defaults.
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{MaxRecursionDepth: 1000}
}

// Compiler lowers a pattern AST to an NFA via Thompson's construction.
type Compiler[T any] struct {
	config  CompilerConfig
	builder *Builder[T]
	depth   int
}

// NewCompiler creates a Compiler with the given configuration.
func NewCompiler[T any](config CompilerConfig) *Compiler[T] {
	if config.MaxRecursionDepth == 0 {
		config.MaxRecursionDepth = 1000
	}
	return &Compiler[T]{config: config}
}

// Compile lowers root to a complete NFA: a fresh accept state is allocated
// and every dangling slot of the root fragment is patched to it.
func (c *Compiler[T]) Compile(root *ast.Node[T]) (*NFA[T], error) {
	c.builder = NewBuilder[T]()
	c.depth = 0

	entry, exit, err := c.compileNode(root)
	if err != nil {
		return nil, &CompileError{Err: err}
	}

	match := c.builder.AddMatch()
	if err := c.builder.Patch(exit, match); err != nil {
		return nil, &CompileError{Err: err}
	}
	c.builder.SetStart(entry)

	nfa, err := c.builder.Build()
	if err != nil {
		return nil, &CompileError{Err: err}
	}
	return nfa, nil
}

// compileNode compiles one AST node into a fragment: an entry state and a
// single dangling exit state to be patched by the caller.
func (c *Compiler[T]) compileNode(n *ast.Node[T]) (entry, exit StateID, err error) {
	c.depth++
	if c.depth > c.config.MaxRecursionDepth {
		return InvalidState, InvalidState, ErrTooComplex
	}
	defer func() { c.depth-- }()

	switch n.Kind {
	case ast.KindPred:
		id := c.builder.AddConsume(n.Pred, InvalidState)
		return id, id, nil
	case ast.KindAny:
		id := c.builder.AddConsume(nil, InvalidState)
		return id, id, nil
	case ast.KindConcat:
		return c.compileConcat(n.Children)
	case ast.KindAlt:
		return c.compileAlt(n.Children)
	case ast.KindRepeat:
		return c.compileRepeat(n)
	case ast.KindAnchorStart:
		childEntry, childExit, err := c.compileNode(n.Child)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		s0 := c.builder.AddAssertStart(childEntry)
		return s0, childExit, nil
	case ast.KindAnchorEnd:
		childEntry, childExit, err := c.compileNode(n.Child)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		assertEnd := c.builder.AddAssertEnd(InvalidState)
		if err := c.builder.Patch(childExit, assertEnd); err != nil {
			return InvalidState, InvalidState, err
		}
		return childEntry, assertEnd, nil
	default:
		return InvalidState, InvalidState, fmt.Errorf("nfa: unknown node kind %s", n.Kind)
	}
}

// compileConcat chains each child's exit to the next child's entry.
func (c *Compiler[T]) compileConcat(children []*ast.Node[T]) (entry, exit StateID, err error) {
	first, firstX, err := c.compileNode(children[0])
	if err != nil {
		return InvalidState, InvalidState, err
	}
	prevExit := firstX
	for _, child := range children[1:] {
		e, x, err := c.compileNode(child)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		if err := c.builder.Patch(prevExit, e); err != nil {
			return InvalidState, InvalidState, err
		}
		prevExit = x
	}
	return first, prevExit, nil
}

// compileAlt builds a single epsilon fanout state with one edge per branch
// in left-to-right priority order (spec §4.2), converging every branch's
// exit to one join state.
func (c *Compiler[T]) compileAlt(branches []*ast.Node[T]) (entry, exit StateID, err error) {
	entries := make([]StateID, len(branches))
	exits := make([]StateID, len(branches))
	for i, b := range branches {
		e, x, err := c.compileNode(b)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		entries[i] = e
		exits[i] = x
	}
	split := c.builder.AddSplit(entries...)
	join := c.builder.AddEpsilon(InvalidState)
	for _, x := range exits {
		if err := c.builder.Patch(x, join); err != nil {
			return InvalidState, InvalidState, err
		}
	}
	return split, join, nil
}

// compileRepeat unrolls Repeat(child, min, max, greedy) per spec §4.2: a
// mandatory prefix of min copies, followed by an optional tail (an
// unbounded loop if max is infinite, or max-min optional copies otherwise).
func (c *Compiler[T]) compileRepeat(n *ast.Node[T]) (entry, exit StateID, err error) {
	prefixEntry, prefixExit := InvalidState, InvalidState
	for i := uint32(0); i < n.Min; i++ {
		e, x, err := c.compileNode(n.Child)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		if prefixEntry == InvalidState {
			prefixEntry = e
		} else if err := c.builder.Patch(prefixExit, e); err != nil {
			return InvalidState, InvalidState, err
		}
		prefixExit = x
	}

	tailEntry, tailExit := InvalidState, InvalidState
	switch {
	case n.Max == ast.Unbounded:
		e, x, err := c.compileNode(n.Child)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		join := c.builder.AddEpsilon(InvalidState)
		var loop StateID
		if n.Greedy {
			loop = c.builder.AddSplit(e, join) // re-enter outranks exit
		} else {
			loop = c.builder.AddSplit(join, e) // exit outranks re-enter
		}
		if err := c.builder.Patch(x, loop); err != nil {
			return InvalidState, InvalidState, err
		}
		tailEntry, tailExit = loop, join
	case n.Max > n.Min:
		tailEntry, tailExit, err = c.compileOptionalChain(n.Child, n.Max-n.Min, n.Greedy)
		if err != nil {
			return InvalidState, InvalidState, err
		}
	}

	switch {
	case prefixEntry == InvalidState && tailEntry == InvalidState:
		// n.Min == 0 && n.Max == 0: forbidden by ast.NewRepeat's invariant.
		return InvalidState, InvalidState, fmt.Errorf("nfa: degenerate repeat with no prefix and no tail")
	case prefixEntry == InvalidState:
		return tailEntry, tailExit, nil
	case tailEntry == InvalidState:
		return prefixEntry, prefixExit, nil
	default:
		if err := c.builder.Patch(prefixExit, tailEntry); err != nil {
			return InvalidState, InvalidState, err
		}
		return prefixEntry, tailExit, nil
	}
}

// compileOptionalChain compiles k further optional copies of child, nested
// so the whole chain has exactly one dangling exit: a{m,m+k} becomes
// a...a(a(a...(a)?)?)? with k trailing optional copies.
func (c *Compiler[T]) compileOptionalChain(child *ast.Node[T], k uint32, greedy bool) (entry, exit StateID, err error) {
	if k == 0 {
		join := c.builder.AddEpsilon(InvalidState)
		return join, join, nil
	}
	e, x, err := c.compileNode(child)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	restEntry, restExit, err := c.compileOptionalChain(child, k-1, greedy)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	if err := c.builder.Patch(x, restEntry); err != nil {
		return InvalidState, InvalidState, err
	}
	var split StateID
	if greedy {
		split = c.builder.AddSplit(e, restEntry) // enter copy outranks skip
	} else {
		split = c.builder.AddSplit(restEntry, e) // skip outranks enter copy
	}
	return split, restExit, nil
}
