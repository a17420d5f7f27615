package avm

import (
	"github.com/zkavm/avmc/internal/ast"
	"github.com/zkavm/avmc/internal/constraint"
	"github.com/zkavm/avmc/internal/diag"
)

func (a *AVM) execStmts(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := a.execStmt(s); err != nil {
			return err
		}
		if a.returned {
			return nil
		}
	}
	return nil
}

// execStmt implements spec.md §4.4's statement semantics table.
func (a *AVM) execStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.LetStmt:
		v, err := a.eval(n.Value)
		if err != nil {
			return err
		}
		if v.Kind == KindStatic {
			v = a.materializeStatic(v.Static)
		}
		return a.scope.bind(n.Name, v)

	case *ast.StaticStmt:
		v, err := a.eval(n.Value)
		if err != nil {
			return err
		}
		if v.Kind != KindStatic {
			return diag.Errorf(diag.KindLocation, "cannot assign a witness value to static %q", n.Name)
		}
		return a.scope.bind(n.Name, v)

	case *ast.ReassignStmt:
		existing, ok := a.scope.lookup(n.Name)
		if !ok {
			return diag.Errorf(diag.KindName, "undefined name %q", n.Name)
		}
		v, err := a.eval(n.Value)
		if err != nil {
			return err
		}
		if existing.Kind == KindStatic && v.Kind == KindWitness {
			return diag.Errorf(diag.KindLocation, "cannot assign a witness value to static %q", n.Name)
		}
		return a.scope.reassign(n.Name, v)

	case *ast.VecDeclStmt:
		lenVar, err := a.eval(n.Length)
		if err != nil {
			return err
		}
		if lenVar.Kind != KindStatic {
			return diag.Errorf(diag.KindShape, "vector length must be a static scalar")
		}
		lenElem, err := lenVar.Static.AsScalar()
		if err != nil {
			return err
		}
		length, err := elementToInt(lenElem)
		if err != nil {
			return err
		}
		base := a.counter.alloc(length)
		return a.scope.bind(n.Name, WitnessVar(base, []int{length}))

	case *ast.VecAssignStmt:
		return a.execVecAssign(n)

	case *ast.ExprStmt:
		_, err := a.eval(n.X)
		return err

	case *ast.LoopStmt:
		boundVar, err := a.eval(n.Bound)
		if err != nil {
			return err
		}
		if boundVar.Kind != KindStatic {
			return diag.Errorf(diag.KindShape, "loop bound must be a static scalar")
		}
		boundElem, err := boundVar.Static.AsScalar()
		if err != nil {
			return err
		}
		iterations, err := elementToInt(boundElem)
		if err != nil {
			return err
		}
		for i := 0; i < iterations; i++ {
			a.scope = newFrame(a.scope)
			err := a.execStmts(n.Body)
			a.scope = a.scope.anc
			if err != nil {
				return err
			}
			if a.returned {
				return nil
			}
		}
		return nil

	case *ast.IfStmt:
		// The branch condition is evaluated for its own constraints
		// (spec.md §4.4); its truth value does not gate execution —
		// the body always emits, by design (see ast.IfStmt).
		if _, err := a.eval(n.Lhs); err != nil {
			return err
		}
		if _, err := a.eval(n.Rhs); err != nil {
			return err
		}
		a.scope = newFrame(a.scope)
		err := a.execStmts(n.Body)
		a.scope = a.scope.anc
		return err

	case *ast.ReturnStmt:
		if a.returned {
			return diag.Errorf(diag.KindName, "%s: multiple return statements", a.funcName)
		}
		v, err := a.eval(n.Value)
		if err != nil {
			return err
		}
		a.returnVar = v
		a.returned = true
		return nil

	case *ast.PrecompileStmt:
		_, err := a.callFunction(n.Name, n.Args)
		return err
	}
	return diag.Errorf(diag.KindParse, "unsupported statement node %T", s)
}

// execVecAssign implements `name[expr] = rhs` / `name = rhs`: an
// equality constraint/symbolic pair per scalar element, or a matching
// per-element sequence when both sides are equal-length vectors.
func (a *AVM) execVecAssign(n *ast.VecAssignStmt) error {
	target, err := a.eval(n.Target)
	if err != nil {
		return err
	}
	value, err := a.eval(n.Value)
	if err != nil {
		return err
	}
	if target.Len() != value.Len() {
		return diag.Errorf(diag.KindShape, "shape mismatch: %v vs %v", target.Shape, value.Shape)
	}
	for i := 0; i < target.Len(); i++ {
		if err := a.emitEquality(scalarOperandAt(target, i), scalarOperandAt(value, i)); err != nil {
			return err
		}
	}
	return nil
}

// emitEquality emits one constraint/symbolic pair asserting l == r,
// materializing either side's static value into a signal first so
// the equality is always between two signals.
func (a *AVM) emitEquality(l, r scalarOperand) error {
	one := a.F.One()
	var li, ri uint32
	if l.isStatic {
		li = a.materializeScalar(l.value)
	} else {
		li = l.idx
	}
	if r.isStatic {
		ri = a.materializeScalar(r.value)
	} else {
		ri = r.idx
	}
	a.emitWitness(lc(term(one, li)), lc(term(one, constraint.OneIndex)), lc(term(one, ri)))
	a.emitSymbolic(li, lc(term(one, ri)), lc(term(one, constraint.OneIndex)), constraint.OpMul)
	return nil
}
