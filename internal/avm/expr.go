package avm

import (
	"strconv"

	"github.com/zkavm/avmc/internal/ast"
	"github.com/zkavm/avmc/internal/constraint"
	"github.com/zkavm/avmc/internal/diag"
	"github.com/zkavm/avmc/internal/field"
	"github.com/zkavm/avmc/internal/shaped"
)

// eval evaluates an expression to a Var, per spec.md §4.4's expression
// semantics table.
func (a *AVM) eval(e ast.Expr) (Var, error) {
	switch n := e.(type) {
	case *ast.Literal:
		v, err := parseLiteral(a.F, n.Text)
		if err != nil {
			return Var{}, err
		}
		return ScalarStatic(v), nil

	case *ast.Ident:
		v, ok := a.scope.lookup(n.Name)
		if !ok {
			return Var{}, diag.Errorf(diag.KindName, "undefined name %q", n.Name)
		}
		return v, nil

	case *ast.IndexExpr:
		return a.evalIndex(n)

	case *ast.VectorLit:
		return a.evalVectorLit(n)

	case *ast.BinaryExpr:
		lv, err := a.eval(n.X)
		if err != nil {
			return Var{}, err
		}
		rv, err := a.eval(n.Y)
		if err != nil {
			return Var{}, err
		}
		return a.binaryOp(n.Op, lv, rv)

	case *ast.CallExpr:
		return a.callFunction(n.Func, n.Args)
	}
	return Var{}, diag.Errorf(diag.KindParse, "unsupported expression node %T", e)
}

func parseLiteral(f field.Field, text string) (field.Element, error) {
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return nil, diag.Errorf(diag.KindParse, "malformed integer literal %q", text)
	}
	return f.FromUint64(n), nil
}

// evalIndex implements `name[expr]` (spec.md §4.1's flat-offset
// retrieve), for both static shaped values and witness ranges. The
// index expression must evaluate to a static (location error
// otherwise: "indexing a witness with a witness value").
func (a *AVM) evalIndex(n *ast.IndexExpr) (Var, error) {
	base, err := a.eval(n.X)
	if err != nil {
		return Var{}, err
	}
	idxVar, err := a.eval(n.Index)
	if err != nil {
		return Var{}, err
	}
	if idxVar.Kind != KindStatic {
		return Var{}, diag.Errorf(diag.KindLocation, "indexing with a witness value is not permitted")
	}
	idxElem, err := idxVar.Static.AsScalar()
	if err != nil {
		return Var{}, err
	}
	idx, err := elementToInt(idxElem)
	if err != nil {
		return Var{}, err
	}

	switch base.Kind {
	case KindStatic:
		sub, err := base.Static.Retrieve([]int{idx})
		if err != nil {
			return Var{}, err
		}
		return StaticVar(sub), nil
	default:
		if base.Len() == 0 || idx < 0 {
			return Var{}, diag.Errorf(diag.KindShape, "index %d out of range", idx)
		}
		stride := shaped.Prod(subShape(base.Shape))
		if idx >= firstDim(base.Shape) {
			return Var{}, diag.Errorf(diag.KindShape, "index %d out of range for dimension %d", idx, firstDim(base.Shape))
		}
		offset := idx * stride
		return WitnessVar(base.Base+uint32(offset), subShape(base.Shape)), nil
	}
}

func firstDim(shape []int) int {
	if len(shape) == 0 {
		return 1
	}
	return shape[0]
}

func subShape(shape []int) []int {
	if len(shape) == 0 {
		return nil
	}
	return shape[1:]
}

func elementToInt(e field.Element) (int, error) {
	// ToUint64 goes through each backend's own integer extraction
	// rather than Bytes(), whose encoding is backend-specific (bn254
	// little-endian bytes for Prime, a decimal ASCII string for Ring)
	// and not a valid source of a host integer for either.
	v, err := e.ToUint64()
	if err != nil {
		return 0, err
	}
	if v > 1<<30 {
		return 0, diag.Errorf(diag.KindShape, "index value out of representable range")
	}
	n := int(v)
	return n, nil
}

// evalVectorLit implements a `[a, b, c]` vector literal. If every
// element is static it folds to one static shaped value; otherwise it
// allocates one fresh contiguous witness range of length n and
// materializes or copies each element into it, satisfying §8's
// boundary property ("a vector literal of length n allocates exactly
// n fresh signals and emits n materialization pairs").
func (a *AVM) evalVectorLit(n *ast.VectorLit) (Var, error) {
	elems := make([]Var, len(n.Elems))
	allStatic := true
	for i, e := range n.Elems {
		v, err := a.eval(e)
		if err != nil {
			return Var{}, err
		}
		elems[i] = v
		if v.Kind != KindStatic {
			allStatic = false
		}
	}

	if allStatic {
		data := make([]field.Element, len(elems))
		for i, v := range elems {
			s, err := v.Static.AsScalar()
			if err != nil {
				return Var{}, err
			}
			data[i] = s
		}
		val, err := shaped.New([]int{len(data)}, data)
		if err != nil {
			return Var{}, err
		}
		return StaticVar(val), nil
	}

	base := a.counter.alloc(0)
	first := true
	for _, v := range elems {
		var idx uint32
		if v.Kind == KindStatic {
			s, err := v.Static.AsScalar()
			if err != nil {
				return Var{}, err
			}
			idx = a.materializeScalar(s)
		} else {
			src, err := asScalarWitness(v)
			if err != nil {
				return Var{}, err
			}
			idx = a.copyWitness(src)
		}
		if first {
			base = idx
			first = false
		}
	}
	return WitnessVar(base, []int{len(elems)}), nil
}

// copyWitness emits a fresh signal constrained equal to an existing
// witness signal, the same (1·k)·(1·one) − (1·src) = 0 shape as
// static materialization but sourced from a signal instead of a
// constant.
func (a *AVM) copyWitness(src uint32) uint32 {
	k := a.counter.alloc(1)
	one := a.F.One()
	a.emit(constraint.NewWitness(constraint.WitnessRecord{
		A: constraint.LinComb{{Coef: one, Index: k}},
		B: constraint.LinComb{{Coef: one, Index: constraint.OneIndex}},
		C: constraint.LinComb{{Coef: one, Index: src}},
	}))
	a.emit(constraint.NewSymbolic(constraint.SymbolicRecord{
		OutIndex: k,
		Lhs:      constraint.LinComb{{Coef: one, Index: src}},
		Rhs:      constraint.LinComb{{Coef: one, Index: constraint.OneIndex}},
		Op:       constraint.OpMul,
	}))
	return k
}
