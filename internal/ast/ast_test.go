package ast

import (
	"errors"
	"testing"
)

func isEven(n int) bool { return n%2 == 0 }

func TestNewConcat_FlattensNestedConcat(t *testing.T) {
	a := NewPred(isEven)
	b := NewAny[int]()
	inner, err := NewConcat(a, b)
	if err != nil {
		t.Fatalf("inner concat: %v", err)
	}
	c := NewPred(isEven)
	outer, err := NewConcat(inner, c)
	if err != nil {
		t.Fatalf("outer concat: %v", err)
	}
	if len(outer.Children) != 3 {
		t.Fatalf("expected flattened 3 children, got %d", len(outer.Children))
	}
}

func TestNewConcat_EmptyRejected(t *testing.T) {
	if _, err := NewConcat[int](); !errors.Is(err, ErrInvalidNode) {
		t.Fatalf("expected ErrInvalidNode, got %v", err)
	}
}

func TestNewAlt_RequiresTwoBranches(t *testing.T) {
	if _, err := NewAlt(NewAny[int]()); !errors.Is(err, ErrInvalidNode) {
		t.Fatalf("expected ErrInvalidNode for single branch, got %v", err)
	}
	alt, err := NewAlt(NewAny[int](), NewPred(isEven))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alt.Children) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(alt.Children))
	}
}

func TestNewAlt_FlattensNestedAlt(t *testing.T) {
	inner, err := NewAlt(NewAny[int](), NewPred(isEven))
	if err != nil {
		t.Fatalf("inner alt: %v", err)
	}
	outer, err := NewAlt(inner, NewPred(isEven))
	if err != nil {
		t.Fatalf("outer alt: %v", err)
	}
	if len(outer.Children) != 3 {
		t.Fatalf("expected flattened 3 branches, got %d", len(outer.Children))
	}
}

func TestNewRepeat_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		min     uint32
		max     uint32
		wantErr bool
	}{
		{"min<=max ok", 1, 3, false},
		{"min==max ok", 2, 2, false},
		{"zero width forbidden", 0, 0, true},
		{"min>max forbidden", 3, 1, true},
		{"unbounded ok", 1, Unbounded, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRepeat(NewAny[int](), tt.min, tt.max, true)
			if tt.wantErr && !errors.Is(err, ErrInvalidNode) {
				t.Fatalf("expected ErrInvalidNode, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestWithLastReplaced(t *testing.T) {
	a := NewPred(isEven)
	b := NewAny[int]()
	concat, err := NewConcat(a, b)
	if err != nil {
		t.Fatalf("concat: %v", err)
	}
	rep, err := NewRepeat(LastConcatChild(concat), 1, Unbounded, true)
	if err != nil {
		t.Fatalf("repeat: %v", err)
	}
	replaced := WithLastReplaced(concat, rep)
	if replaced.Kind != KindConcat || len(replaced.Children) != 2 {
		t.Fatalf("expected 2-child concat, got %+v", replaced)
	}
	if replaced.Children[1].Kind != KindRepeat {
		t.Fatalf("expected last child replaced with Repeat, got %s", replaced.Children[1].Kind)
	}
	if replaced.Children[0] != a {
		t.Fatalf("first child should be untouched original node")
	}
	// Non-concat input returns repl directly.
	solo := WithLastReplaced(b, rep)
	if solo != rep {
		t.Fatalf("expected repl returned directly for non-concat input")
	}
}
