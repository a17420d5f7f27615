// Package avm implements C7, the arithmetizing virtual machine: a
// tree-walk interpreter over internal/ast whose side effect is to
// emit internal/constraint records. Grounded structurally on the
// teacher's frame/ancestor-chain interpreter state
// (_examples/breadchris-yaegi/interp.go's frame/scope pair), carried
// over from "reflect.Value slots" to "signal-index bindings."
package avm

import (
	"github.com/zkavm/avmc/internal/diag"
	"github.com/zkavm/avmc/internal/field"
	"github.com/zkavm/avmc/internal/shaped"
)

// Kind distinguishes the two Var variants of spec.md §3.
type Kind int

const (
	KindStatic Kind = iota
	KindWitness
)

// Var is one binding: either a fully-known static shaped value, or a
// contiguous witness signal range with a shape.
type Var struct {
	Kind   Kind
	Shape  []int
	Static shaped.Value
	Base   uint32 // valid only when Kind == KindWitness
}

// Len is the element count of the var's shape (the empty shape has
// product 1, per internal/shaped's scalar convention).
func (v Var) Len() int { return shaped.Prod(v.Shape) }

// IsScalar reports a single-element var, static or witness.
func (v Var) IsScalar() bool { return v.Len() == 1 }

// StaticVar wraps a shaped.Value as a static Var.
func StaticVar(v shaped.Value) Var {
	return Var{Kind: KindStatic, Shape: v.Dims, Static: v}
}

// ScalarStatic wraps a single field element as a static scalar Var.
func ScalarStatic(e field.Element) Var {
	return StaticVar(shaped.Scalar(e))
}

// WitnessVar describes a contiguous signal range [base, base+len)
// carrying shape.
func WitnessVar(base uint32, shape []int) Var {
	return Var{Kind: KindWitness, Shape: shape, Base: base}
}

// Indices returns every signal index in a witness var's range, in
// row-major order.
func (v Var) Indices() []uint32 {
	if v.Kind != KindWitness {
		return nil
	}
	n := v.Len()
	out := make([]uint32, n)
	for i := range out {
		out[i] = v.Base + uint32(i)
	}
	return out
}

// frame is one lexical scope: a name->Var map plus a pointer to the
// enclosing scope, mirroring the teacher's *frame/anc shape. Entered
// on function call and loop/if body entry, discarded (not its
// indices, only its names) at matching exit.
type frame struct {
	vars map[string]Var
	anc  *frame
}

func newFrame(anc *frame) *frame {
	return &frame{vars: map[string]Var{}, anc: anc}
}

// lookup walks the ancestor chain outward, innermost scope first.
func (f *frame) lookup(name string) (Var, bool) {
	for s := f; s != nil; s = s.anc {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return Var{}, false
}

// bind introduces a new name in the current scope. Redefinition
// anywhere in the ancestor chain is an error (spec.md §9's "error on
// shadow" resolution of the static/let nested-scope Open Question).
func (f *frame) bind(name string, v Var) error {
	if _, exists := f.lookup(name); exists {
		return diag.Errorf(diag.KindName, "redefinition of %q", name)
	}
	f.vars[name] = v
	return nil
}

// reassign overwrites an existing binding, wherever in the ancestor
// chain it lives, erroring if name is undefined.
func (f *frame) reassign(name string, v Var) error {
	for s := f; s != nil; s = s.anc {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v
			return nil
		}
	}
	return diag.Errorf(diag.KindName, "undefined name %q", name)
}

// counter is the shared, monotonically increasing signal-index
// allocator of spec.md §3 ("next_index"). Index 0 is reserved for the
// constant one, so allocation starts at 1. Nested AVMs share the same
// *counter pointer, which trivially satisfies spec.md §5's "a child
// AVM must be created with the parent's current counter and the
// parent must adopt the child's final counter at return": there is
// only ever one counter in a compilation, never a copy to reconcile.
type counter struct{ next uint32 }

func newCounter() *counter { return &counter{next: 1} }

func (c *counter) alloc(n int) uint32 {
	base := c.next
	c.next += uint32(n)
	return base
}
