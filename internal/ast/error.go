package ast

import "errors"

// ErrInvalidNode is wrapped by constructor errors when a Node would violate
// one of the structural invariants in spec §3.1 (Repeat bounds, Alt branch
// count, Concat arity).
var ErrInvalidNode = errors.New("invalid pattern node")
