package typematch

import (
	"github.com/coregx/typematch/internal/nfa"
)

// Options configures pattern compilation.
type Options struct {
	// MaxRecursionDepth bounds AST-to-NFA recursion depth. Deeply nested
	// builder chains (long Concat/Repeat towers) are rejected with
	// PatternError instead of risking a goroutine stack overflow.
	MaxRecursionDepth int
	// MaxThreads pre-sizes every Simulator this Matcher creates (FindAll,
	// Find, Test, Scanner) with a floor on its per-generation thread-list
	// and seen-set capacity. It is a performance hint, not a hard limit:
	// the simulator grows its buffers past it if a search needs more.
	MaxThreads int
}

// DefaultOptions returns the default compilation options.
func DefaultOptions() Options {
	return Options{
		MaxRecursionDepth: 1000,
		MaxThreads:        64,
	}
}

// Option configures a pattern compile via functional options.
type Option[T any] func(*Options)

// WithMaxRecursionDepth overrides Options.MaxRecursionDepth.
func WithMaxRecursionDepth[T any](n int) Option[T] {
	return func(o *Options) { o.MaxRecursionDepth = n }
}

// WithMaxThreads overrides Options.MaxThreads.
func WithMaxThreads[T any](n int) Option[T] {
	return func(o *Options) { o.MaxThreads = n }
}

// Compile lowers p to a Matcher via Thompson's construction. It fails with
// a *PatternError if p carries a sticky builder error or if the AST
// violates a compiler invariant (e.g. nesting past MaxRecursionDepth).
func Compile[T any](p *Pattern[T], opts ...Option[T]) (*Matcher[T], error) {
	if p.err != nil {
		return nil, p.err
	}

	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	compiler := nfa.NewCompiler[T](nfa.CompilerConfig{MaxRecursionDepth: options.MaxRecursionDepth})
	compiled, err := compiler.Compile(p.node)
	if err != nil {
		return nil, &PatternError{Op: "Compile", Err: err}
	}

	return &Matcher[T]{nfa: compiled, pattern: p, anchoredStart: isAnchoredStart(p.node), maxThreads: options.MaxThreads}, nil
}

// MustCompile is like Compile but panics if p fails to compile. Intended
// for package-level Matcher variables built at init time.
func MustCompile[T any](p *Pattern[T], opts ...Option[T]) *Matcher[T] {
	m, err := Compile(p, opts...)
	if err != nil {
		panic(err)
	}
	return m
}
