package avm

import (
	"github.com/zkavm/avmc/internal/constraint"
	"github.com/zkavm/avmc/internal/field"
	"github.com/zkavm/avmc/internal/shaped"
)

// materializeScalar turns one static field element into a fresh
// signal, per spec.md §4.4's "static-to-witness materialization":
// constraint (1·k)·(1·one) − (v·one) = 0 and symbolic
// k ← (1·one) * (v·one).
func (a *AVM) materializeScalar(v field.Element) uint32 {
	k := a.counter.alloc(1)
	one := a.F.One()
	a.emit(constraint.NewWitness(constraint.WitnessRecord{
		A: constraint.LinComb{{Coef: one, Index: k}},
		B: constraint.LinComb{{Coef: one, Index: constraint.OneIndex}},
		C: constraint.LinComb{{Coef: v, Index: constraint.OneIndex}},
	}))
	a.emit(constraint.NewSymbolic(constraint.SymbolicRecord{
		OutIndex: k,
		Lhs:      constraint.LinComb{{Coef: one, Index: constraint.OneIndex}},
		Rhs:      constraint.LinComb{{Coef: v, Index: constraint.OneIndex}},
		Op:       constraint.OpMul,
	}))
	return k
}

// materializeStatic materializes every element of a static shaped
// value into a fresh contiguous witness range, preserving shape.
func (a *AVM) materializeStatic(v shaped.Value) Var {
	if len(v.Data) == 0 {
		base := a.counter.alloc(0)
		return WitnessVar(base, v.Dims)
	}
	base := a.materializeScalar(v.Data[0])
	for i := 1; i < len(v.Data); i++ {
		a.materializeScalar(v.Data[i])
	}
	return WitnessVar(base, v.Dims)
}

// toWitness returns v unchanged if it is already witness-located,
// else materializes its static value.
func (a *AVM) toWitness(v Var) Var {
	if v.Kind == KindWitness {
		return v
	}
	return a.materializeStatic(v.Static)
}

// coerceToSignal reduces a Var to a single signal index, as required
// by precompile template argument binding (spec.md §4.5 step 1):
// statics are materialized on the fly; a non-scalar static is fatal.
func (a *AVM) coerceToSignal(v Var) (uint32, error) {
	if v.Kind == KindWitness {
		scalar, err := asScalarWitness(v)
		if err != nil {
			return 0, err
		}
		return scalar, nil
	}
	e, err := v.Static.AsScalar()
	if err != nil {
		return 0, err
	}
	return a.materializeScalar(e), nil
}

func asScalarWitness(v Var) (uint32, error) {
	if !v.IsScalar() {
		return 0, constraintShapeErr(v)
	}
	return v.Base, nil
}
