// Package witness implements C8: the sequential evaluator that walks
// a constraint.Stream's symbolic records in emission order and
// produces a concrete witness vector, grounded on
// _examples/original_source/src/r1cs/witness.rs's build() (HashMap
// of index->value seeded with vars[0]=one, Input consuming the next
// external input, everything else solved via its symbolic op) and
// _examples/original_source/ashlang/src/r1cs/witness.rs for the same
// single-pass, fail-fast solving order over a named SymbolicOp set.
package witness

import (
	"sort"

	"github.com/zkavm/avmc/internal/constraint"
	"github.com/zkavm/avmc/internal/diag"
	"github.com/zkavm/avmc/internal/field"
)

// Result is the evaluator's output: the sparse solved value map and
// the ordered list of indices that were marked Output (spec.md §4.6).
type Result struct {
	Values  map[uint32]field.Element
	Outputs []uint32
}

// Eval walks stream's symbolic records in order, consuming inputs from
// the inputs slice as Input records are encountered, and solving every
// other index via its declared op. Reports a diag.KindWitness error on
// any violation of spec.md §4.6's invariants: inputs must form a
// contiguous prefix (no Input after a non-Input/non-Output record has
// fired), a double-write to any index is fatal, Sqrt requires a = 2,
// and Output requires the signal to already hold a value.
func Eval(f field.Field, stream constraint.Stream, inputs []field.Element) (*Result, error) {
	values := map[uint32]field.Element{constraint.OneIndex: f.One()}
	var outputs []uint32
	inputIdx := 0
	inputsClosed := false

	for _, sr := range stream.SymbolicRecords() {
		switch sr.Op {
		case constraint.OpInput:
			if inputsClosed {
				return nil, diag.Errorf(diag.KindWitness, "input at signal x%d follows a non-input record", sr.OutIndex)
			}
			if inputIdx >= len(inputs) {
				return nil, diag.Errorf(diag.KindWitness, "too few inputs: need at least %d", inputIdx+1)
			}
			if err := assign(values, sr.OutIndex, inputs[inputIdx]); err != nil {
				return nil, err
			}
			inputIdx++
			continue

		case constraint.OpOutput:
			if _, ok := values[sr.OutIndex]; !ok {
				return nil, diag.Errorf(diag.KindWitness, "output signal x%d has no value", sr.OutIndex)
			}
			outputs = append(outputs, sr.OutIndex)
			continue
		}

		inputsClosed = true
		a, err := sr.Lhs.Eval(f, func(idx uint32) (field.Element, error) { return lookup(values, idx) })
		if err != nil {
			return nil, err
		}
		b, err := sr.Rhs.Eval(f, func(idx uint32) (field.Element, error) { return lookup(values, idx) })
		if err != nil {
			return nil, err
		}

		var v field.Element
		switch sr.Op {
		case constraint.OpAdd:
			v = a.Add(b)
		case constraint.OpMul:
			v = a.Mul(b)
		case constraint.OpInv:
			// a is ignored by convention (callers pass 1·one on the A side).
			inv, err := b.Inverse()
			if err != nil {
				return nil, diag.Wrap(diag.KindWitness, err, "inverting signal for x%d", sr.OutIndex)
			}
			v = inv
		case constraint.OpSqrt:
			two := f.One().Add(f.One())
			if !a.Equal(two) {
				return nil, diag.Errorf(diag.KindWitness, "sqrt record for x%d requires a = 2", sr.OutIndex)
			}
			switch b.Legendre() {
			case 0:
				v = f.Zero()
			case 1:
				root, err := b.Sqrt()
				if err != nil {
					return nil, diag.Wrap(diag.KindWitness, err, "computing sqrt for x%d", sr.OutIndex)
				}
				v = root
			default:
				return nil, diag.Errorf(diag.KindWitness, "signal x%d has no square root in this field", sr.OutIndex)
			}
		default:
			return nil, diag.Errorf(diag.KindWitness, "unsupported symbolic op for x%d", sr.OutIndex)
		}

		if err := assign(values, sr.OutIndex, v); err != nil {
			return nil, err
		}
	}

	return &Result{Values: values, Outputs: outputs}, nil
}

func assign(values map[uint32]field.Element, idx uint32, v field.Element) error {
	if _, exists := values[idx]; exists {
		return diag.Errorf(diag.KindWitness, "signal x%d written twice", idx)
	}
	values[idx] = v
	return nil
}

func lookup(values map[uint32]field.Element, idx uint32) (field.Element, error) {
	v, ok := values[idx]
	if !ok {
		return nil, diag.Errorf(diag.KindWitness, "signal x%d read before being written", idx)
	}
	return v, nil
}

// Vector renders r as a dense witness vector indexed 0..max(index),
// the list<F> C8 returns per spec.md §4.6. Indices never written
// (e.g. elements of a `let name[n]` vector that are never assigned)
// are left as the field's zero value.
func (r *Result) Vector(f field.Field) []field.Element {
	max := uint32(0)
	for idx := range r.Values {
		if idx > max {
			max = idx
		}
	}
	out := make([]field.Element, max+1)
	for i := range out {
		out[i] = f.Zero()
	}
	for idx, v := range r.Values {
		out[idx] = v
	}
	return out
}

// SortedOutputs returns r.Outputs in ascending order.
func (r *Result) SortedOutputs() []uint32 {
	out := append([]uint32(nil), r.Outputs...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
