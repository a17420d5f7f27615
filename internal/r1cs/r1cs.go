// Package r1cs implements C9: the rank-1 constraint system assembled
// from a constraint.Stream's witness rows. Grounded on
// _examples/other_examples/9b0ebff6_vybium-vybium-starks-vm__internal-vybium-starks-vm-protocols-r1cs.go.go's
// R1CS{A,B,C}/dotProduct/VerifyWitness shape, adapted here from dense
// per-row slices to the sparse term lists spec.md §3 calls for
// (`list<(coef,index)>`), since signal counts run far higher than
// variable counts in a hand-rolled toy VM.
package r1cs

import (
	"github.com/zkavm/avmc/internal/constraint"
	"github.com/zkavm/avmc/internal/diag"
	"github.com/zkavm/avmc/internal/field"
)

// Row is one constraint: (A·x)·(B·x) − (C·x) = 0.
type Row struct {
	A, B, C constraint.LinComb
}

// R1CS is the assembled system: one Row per witness record of the
// emission stream, in emission order, plus the field it was compiled
// over. Rows are identity-sized: column indices are signal indices
// directly, never remapped or compacted (spec.md §4.7: "no row fusion
// or algebraic simplification").
type R1CS struct {
	F    field.Field
	Rows []Row
}

// Assemble partitions stream's witness records into Rows, discarding
// the symbolic records (C8's concern, not C9's).
func Assemble(f field.Field, stream constraint.Stream) *R1CS {
	rows := make([]Row, 0, len(stream))
	for _, w := range stream.WitnessRecords() {
		rows = append(rows, Row{A: w.A, B: w.B, C: w.C})
	}
	return &R1CS{F: f, Rows: rows}
}

// Eval computes the residual (A·x)(B·x) − (C·x) for every row against
// a solved witness map, in row order. A zero vector means every row is
// satisfied.
func (r *R1CS) Eval(values map[uint32]field.Element) ([]field.Element, error) {
	lookup := func(idx uint32) (field.Element, error) {
		v, ok := values[idx]
		if !ok {
			return nil, diag.Errorf(diag.KindR1CS, "signal x%d has no assigned value", idx)
		}
		return v, nil
	}

	residuals := make([]field.Element, len(r.Rows))
	for i, row := range r.Rows {
		a, err := row.A.Eval(r.F, lookup)
		if err != nil {
			return nil, err
		}
		b, err := row.B.Eval(r.F, lookup)
		if err != nil {
			return nil, err
		}
		c, err := row.C.Eval(r.F, lookup)
		if err != nil {
			return nil, err
		}
		residuals[i] = a.Mul(b).Sub(c)
	}
	return residuals, nil
}

// Satisfied reports whether every row's residual is zero, the witness
// acceptance criterion of spec.md §4.7.
func (r *R1CS) Satisfied(values map[uint32]field.Element) (bool, error) {
	residuals, err := r.Eval(values)
	if err != nil {
		return false, err
	}
	for _, res := range residuals {
		if !res.IsZero() {
			return false, nil
		}
	}
	return true, nil
}

// NumVariables returns one past the highest signal index referenced
// anywhere in the system, the R1CS's variable count.
func (r *R1CS) NumVariables() int {
	max := uint32(0)
	for _, row := range r.Rows {
		for _, lc := range []constraint.LinComb{row.A, row.B, row.C} {
			for _, t := range lc {
				if t.Index > max {
					max = t.Index
				}
			}
		}
	}
	return int(max) + 1
}
