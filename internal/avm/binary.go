package avm

import (
	"github.com/zkavm/avmc/internal/ast"
	"github.com/zkavm/avmc/internal/constraint"
	"github.com/zkavm/avmc/internal/diag"
	"github.com/zkavm/avmc/internal/field"
	"github.com/zkavm/avmc/internal/shaped"
)

// binaryOp implements spec.md §4.4's arithmetic expression table:
// static·static folds, the four static/witness mixes, and
// witness·witness, applied elementwise when both operands are
// shaped with more than one element.
func (a *AVM) binaryOp(op ast.Op, lv, rv Var) (Var, error) {
	if lv.Kind == KindStatic && rv.Kind == KindStatic {
		val, err := staticFold(op, lv.Static, rv.Static)
		if err != nil {
			return Var{}, err
		}
		return StaticVar(val), nil
	}

	if lv.Len() != rv.Len() {
		return Var{}, diag.Errorf(diag.KindShape, "shape mismatch: %v vs %v", lv.Shape, rv.Shape)
	}
	n := lv.Len()
	outShape := lv.Shape
	if lv.Kind == KindStatic {
		outShape = rv.Shape
	}
	base := a.counter.alloc(n)
	for i := 0; i < n; i++ {
		l := scalarOperandAt(lv, i)
		r := scalarOperandAt(rv, i)
		if err := a.scalarBinary(op, l, r, base+uint32(i)); err != nil {
			return Var{}, err
		}
	}
	return WitnessVar(base, outShape), nil
}

func staticFold(op ast.Op, a, b shaped.Value) (shaped.Value, error) {
	switch op {
	case ast.Add:
		return a.Add(b)
	case ast.Sub:
		return a.Sub(b)
	case ast.Mul:
		return a.Mul(b)
	case ast.Div:
		return a.Div(b)
	default:
		return shaped.Value{}, diag.Errorf(diag.KindParse, "op %s is not a valid expression operator", op)
	}
}

// scalarOperand is one element of either a static or witness
// operand, addressed for the per-element scalarBinary dispatch below.
type scalarOperand struct {
	isStatic bool
	value    field.Element
	idx      uint32
}

func scalarOperandAt(v Var, i int) scalarOperand {
	if v.Kind == KindStatic {
		return scalarOperand{isStatic: true, value: v.Static.Data[i]}
	}
	return scalarOperand{isStatic: false, idx: v.Base + uint32(i)}
}

func term(c field.Element, idx uint32) constraint.Term { return constraint.Term{Coef: c, Index: idx} }

func lc(terms ...constraint.Term) constraint.LinComb { return constraint.LinComb(terms) }

func (a *AVM) emitWitness(aLC, bLC, cLC constraint.LinComb) {
	a.emit(constraint.NewWitness(constraint.WitnessRecord{A: aLC, B: bLC, C: cLC}))
}

func (a *AVM) emitSymbolic(out uint32, lhs, rhs constraint.LinComb, op constraint.SymbolicOp) {
	a.emit(constraint.NewSymbolic(constraint.SymbolicRecord{OutIndex: out, Lhs: lhs, Rhs: rhs, Op: op}))
}

// scalarBinary emits the constraint/symbolic pair(s) for one scalar
// pair, exactly per spec.md §4.4's linear forms (s = static value,
// w = witness index, o = output index).
func (a *AVM) scalarBinary(op ast.Op, l, r scalarOperand, outIdx uint32) error {
	one := a.F.One()

	// Add and Mul are symmetric in which side is static; Sub and Div
	// are not, so those two branch on operand order.
	if l.isStatic != r.isStatic {
		var s field.Element
		var w uint32
		staticIsLeft := l.isStatic
		if staticIsLeft {
			s, w = l.value, r.idx
		} else {
			s, w = r.value, l.idx
		}

		switch op {
		case ast.Add:
			a.emitWitness(lc(term(s, constraint.OneIndex), term(one, w)), lc(term(one, constraint.OneIndex)), lc(term(one, outIdx)))
			a.emitSymbolic(outIdx, lc(term(s, constraint.OneIndex), term(one, w)), lc(term(one, constraint.OneIndex)), constraint.OpMul)
			return nil
		case ast.Mul:
			a.emitWitness(lc(term(s, constraint.OneIndex)), lc(term(one, w)), lc(term(one, outIdx)))
			a.emitSymbolic(outIdx, lc(term(s, constraint.OneIndex)), lc(term(one, w)), constraint.OpMul)
			return nil
		case ast.Sub:
			if staticIsLeft {
				// static - witness: (1·w + 1·o)·(1·one) − (s·one) = 0
				a.emitWitness(lc(term(one, w), term(one, outIdx)), lc(term(one, constraint.OneIndex)), lc(term(s, constraint.OneIndex)))
				negOne := a.F.Zero().Sub(one)
				a.emitSymbolic(outIdx, lc(term(s, constraint.OneIndex)), lc(term(negOne, w)), constraint.OpAdd)
				return nil
			}
			// witness - static: (s·one + 1·o)·(1·one) − (1·w) = 0
			a.emitWitness(lc(term(s, constraint.OneIndex), term(one, outIdx)), lc(term(one, constraint.OneIndex)), lc(term(one, w)))
			negS := a.F.Zero().Sub(s)
			a.emitSymbolic(outIdx, lc(term(one, w)), lc(term(negS, constraint.OneIndex)), constraint.OpAdd)
			return nil
		case ast.Div:
			if staticIsLeft {
				// static * witness^-1: materialize w^-1, then multiply by s.
				wi := a.counter.alloc(1)
				a.emitWitness(lc(term(one, w)), lc(term(one, wi)), lc(term(one, constraint.OneIndex)))
				a.emitSymbolic(wi, lc(term(one, constraint.OneIndex)), lc(term(one, w)), constraint.OpInv)
				a.emitWitness(lc(term(s, constraint.OneIndex)), lc(term(one, wi)), lc(term(one, outIdx)))
				a.emitSymbolic(outIdx, lc(term(s, constraint.OneIndex)), lc(term(one, wi)), constraint.OpMul)
				return nil
			}
			// witness * static^-1: precompute s^-1 at compile time.
			sInv, err := s.Inverse()
			if err != nil {
				return err
			}
			a.emitWitness(lc(term(sInv, w)), lc(term(one, constraint.OneIndex)), lc(term(one, outIdx)))
			a.emitSymbolic(outIdx, lc(term(sInv, constraint.OneIndex)), lc(term(one, w)), constraint.OpMul)
			return nil
		}
		return diag.Errorf(diag.KindParse, "op %s is not a valid expression operator", op)
	}

	// witness . witness
	w1, w2 := l.idx, r.idx
	switch op {
	case ast.Add:
		a.emitWitness(lc(term(one, w1), term(one, w2)), lc(term(one, constraint.OneIndex)), lc(term(one, outIdx)))
		a.emitSymbolic(outIdx, lc(term(one, w1), term(one, w2)), lc(term(one, constraint.OneIndex)), constraint.OpMul)
		return nil
	case ast.Mul:
		a.emitWitness(lc(term(one, w1)), lc(term(one, w2)), lc(term(one, outIdx)))
		a.emitSymbolic(outIdx, lc(term(one, w1)), lc(term(one, w2)), constraint.OpMul)
		return nil
	case ast.Sub:
		a.emitWitness(lc(term(one, w1)), lc(term(one, constraint.OneIndex)), lc(term(one, w2), term(one, outIdx)))
		negOne := a.F.Zero().Sub(one)
		a.emitSymbolic(outIdx, lc(term(one, w1)), lc(term(negOne, w2)), constraint.OpAdd)
		return nil
	case ast.Div:
		w2inv := a.counter.alloc(1)
		a.emitWitness(lc(term(one, w2)), lc(term(one, w2inv)), lc(term(one, constraint.OneIndex)))
		a.emitSymbolic(w2inv, lc(term(one, constraint.OneIndex)), lc(term(one, w2)), constraint.OpInv)
		a.emitWitness(lc(term(one, w1)), lc(term(one, w2inv)), lc(term(one, outIdx)))
		a.emitSymbolic(outIdx, lc(term(one, w1)), lc(term(one, w2inv)), constraint.OpMul)
		return nil
	}
	return diag.Errorf(diag.KindParse, "op %s is not a valid expression operator", op)
}
