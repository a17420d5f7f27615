// Package constraint implements C4: the Witness and Symbolic record
// types of spec.md §3, plus parsing and rendering of the backend
// constraint-source text format of spec.md §6. Grounded on
// _examples/original_source/ashlang/src/r1cs/constraint.rs (the
// R1csConstraint/SymbolicOp shapes this mirrors) and on
// _examples/other_examples/9b0ebff6_vybium-vybium-starks-vm__internal-vybium-starks-vm-protocols-r1cs.go.go's
// row-oriented A,B,C layout, adapted here to sparse term lists.
package constraint

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zkavm/avmc/internal/field"
)

// OneIndex is the reserved signal index that always holds the field's
// multiplicative identity (spec.md §3 invariant 1).
const OneIndex uint32 = 0

// Term is one (coefficient, signal index) pair of a linear
// combination.
type Term struct {
	Coef  field.Element
	Index uint32
}

// LinComb is Σ Coef·x[Index].
type LinComb []Term

// Eval evaluates a linear combination against a value lookup.
func (lc LinComb) Eval(f field.Field, value func(uint32) (field.Element, error)) (field.Element, error) {
	acc := f.Zero()
	for _, t := range lc {
		v, err := value(t.Index)
		if err != nil {
			return nil, err
		}
		acc = acc.Add(t.Coef.Mul(v))
	}
	return acc, nil
}

// Indices returns every signal index referenced by lc, in term order.
func (lc LinComb) Indices() []uint32 {
	out := make([]uint32, len(lc))
	for i, t := range lc {
		out[i] = t.Index
	}
	return out
}

// WitnessRecord is one R1CS row: (A·x)·(B·x) - (C·x) = 0.
type WitnessRecord struct {
	A, B, C LinComb
	Comment string
}

// SymbolicOp is the extended operator set of spec.md §3 used only to
// compute the witness, never checked for soundness.
type SymbolicOp int

const (
	OpAdd SymbolicOp = iota
	OpMul
	OpInv
	OpSqrt
	OpInput
	OpOutput
)

func (op SymbolicOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpMul:
		return "*"
	case OpInv:
		return "/"
	case OpSqrt:
		return "radix"
	case OpInput:
		return "input"
	case OpOutput:
		return "output"
	default:
		return "?"
	}
}

// SymbolicRecord is one out-of-band witness assignment:
// x[OutIndex] <- eval(Lhs) OP eval(Rhs).
type SymbolicRecord struct {
	OutIndex uint32
	Lhs, Rhs LinComb
	Op       SymbolicOp
	Comment  string
}

// RecordKind distinguishes the two record variants interleaved in one
// emission stream (spec.md §3 "Constraint record").
type RecordKind int

const (
	KindWitness RecordKind = iota
	KindSymbolic
)

// Record is one entry of the interleaved emission stream.
type Record struct {
	Kind     RecordKind
	Witness  *WitnessRecord
	Symbolic *SymbolicRecord
}

func NewWitness(w WitnessRecord) Record {
	return Record{Kind: KindWitness, Witness: &w}
}

func NewSymbolic(s SymbolicRecord) Record {
	return Record{Kind: KindSymbolic, Symbolic: &s}
}

// Stream is the ordered, interleaved sequence of C4 records a single
// AVM run (or parsed backend source) produces.
type Stream []Record

// WitnessRecords extracts only the witness (soundness-checked) rows,
// in emission order, for C9's R1CS assembler.
func (s Stream) WitnessRecords() []WitnessRecord {
	var out []WitnessRecord
	for _, r := range s {
		if r.Kind == KindWitness {
			out = append(out, *r.Witness)
		}
	}
	return out
}

// SymbolicRecords extracts only the symbolic records, in emission
// order, for C8's witness evaluator.
func (s Stream) SymbolicRecords() []SymbolicRecord {
	var out []SymbolicRecord
	for _, r := range s {
		if r.Kind == KindSymbolic {
			out = append(out, *r.Symbolic)
		}
	}
	return out
}

// FieldSanityWitness is the "field sanity" row of spec.md §3 invariant
// 7 and §4.4: (-1·one)·(-1·one) - (1·one) = 0, satisfied iff
// (-1)·(-1) = 1 in the compiled field.
func FieldSanityWitness(f field.Field) WitnessRecord {
	negOne := f.Zero().Sub(f.One())
	return WitnessRecord{
		A:       LinComb{{Coef: negOne, Index: OneIndex}},
		B:       LinComb{{Coef: negOne, Index: OneIndex}},
		C:       LinComb{{Coef: f.One(), Index: OneIndex}},
		Comment: "field cardinality sanity constraint",
	}
}

// termString renders a term's coefficient as hex-encoded field bytes
// rather than its decimal String(), since C4 coefficients range over
// the abstract field F of spec.md §3 (including polynomial-ring
// elements), not just small compile-time integers: hex(Bytes()) is
// the one encoding every Field implementation round-trips through
// FromBytes without loss.
func termString(t Term) string {
	return fmt.Sprintf("0x%s*%s", hex.EncodeToString(t.Coef.Bytes()), varName(t.Index))
}

func varName(idx uint32) string {
	if idx == OneIndex {
		return "one"
	}
	return fmt.Sprintf("x%d", idx)
}

func lcString(lc LinComb) string {
	parts := make([]string, len(lc))
	for i, t := range lc {
		parts[i] = termString(t)
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, " + ")
}
