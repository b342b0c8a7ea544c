package nfa

import (
	"errors"
	"fmt"
)

// ErrTooComplex indicates the pattern's AST nests deeper than the
// compiler's configured recursion limit.
var ErrTooComplex = errors.New("pattern too complex to compile")

// CompileError wraps a failure encountered while lowering an AST to an NFA.
type CompileError struct {
	Err error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("nfa: compile failed: %v", e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// BuildError reports a misuse of the low-level Builder API, such as
// patching a state kind that has no single patchable target.
type BuildError struct {
	Message string
	StateID StateID
}

func (e *BuildError) Error() string {
	if e.StateID != InvalidState {
		return fmt.Sprintf("nfa: build error at state %d: %s", e.StateID, e.Message)
	}
	return fmt.Sprintf("nfa: build error: %s", e.Message)
}
