package avm

import (
	"strconv"
	"strings"

	"github.com/zkavm/avmc/internal/constraint"
	"github.com/zkavm/avmc/internal/diag"
)

// execWriteOutput implements `#write_output(args)`: each argument
// must be witness-located; one Output symbolic record is emitted per
// element (spec.md §4.4: "write(x): if x is a witness variable, emit
// one Output symbolic per element; errors for statics").
func (a *AVM) execWriteOutput(args []Var) error {
	for _, v := range args {
		if v.Kind != KindWitness {
			return diag.Errorf(diag.KindLocation, "write_output: argument must be a witness value")
		}
		for _, idx := range v.Indices() {
			a.emit(constraint.NewSymbolic(constraint.SymbolicRecord{
				OutIndex: idx,
				Op:       constraint.OpOutput,
			}))
		}
	}
	return nil
}

// invokeTemplate implements spec.md §4.5's precompiled-constraint-
// template invocation: coerce args to single signals, allocate fresh
// return signals, and remap every term in the template's record
// stream from local indices to caller indices — a pure function of
// (arg indices, return base), per §9's "remap is a table lookup, not
// a re-parse" design note.
func (a *AVM) invokeTemplate(templateName string, pf *constraint.ParsedFile, args []Var) (Var, error) {
	if pf.Signature == nil {
		return Var{}, diag.Errorf(diag.KindShape, "precompile template has no signature")
	}
	n := len(pf.Signature.Args)
	m := len(pf.Signature.Returns)
	if len(args) != n {
		return Var{}, diag.Errorf(diag.KindName, "template expects %d arguments, got %d", n, len(args))
	}

	argIdx := make([]uint32, n)
	for i, arg := range args {
		idx, err := a.coerceToSignal(arg)
		if err != nil {
			return Var{}, err
		}
		argIdx[i] = idx
	}

	cacheKey := templateCacheKey(templateName, argIdx)
	if cached, ok := a.templateCache[cacheKey]; ok {
		return cached, nil
	}

	retBase := a.counter.alloc(m)
	remap := func(local uint32) uint32 {
		switch {
		case local == constraint.OneIndex:
			return constraint.OneIndex
		case int(local) <= n:
			return argIdx[local-1]
		default:
			return retBase + (local - uint32(n) - 1)
		}
	}

	for _, rec := range pf.Stream {
		switch rec.Kind {
		case constraint.KindWitness:
			w := *rec.Witness
			a.emit(constraint.NewWitness(constraint.WitnessRecord{
				A:       remapLC(w.A, remap),
				B:       remapLC(w.B, remap),
				C:       remapLC(w.C, remap),
				Comment: w.Comment,
			}))
		case constraint.KindSymbolic:
			sr := *rec.Symbolic
			a.emit(constraint.NewSymbolic(constraint.SymbolicRecord{
				OutIndex: remap(sr.OutIndex),
				Lhs:      remapLC(sr.Lhs, remap),
				Rhs:      remapLC(sr.Rhs, remap),
				Op:       sr.Op,
				Comment:  sr.Comment,
			}))
		}
	}

	var result Var
	switch m {
	case 0:
		result = Var{}
	case 1:
		result = WitnessVar(retBase, nil)
	default:
		result = WitnessVar(retBase, []int{m})
	}

	if a.templateCache == nil {
		a.templateCache = map[string]Var{}
	}
	a.templateCache[cacheKey] = result
	return result, nil
}

func remapLC(lc constraint.LinComb, remap func(uint32) uint32) constraint.LinComb {
	out := make(constraint.LinComb, len(lc))
	for i, t := range lc {
		out[i] = constraint.Term{Coef: t.Coef, Index: remap(t.Index)}
	}
	return out
}

// templateCacheKey builds a cache key from the template name and its
// argument signal indices: two invocations with identical arguments
// produce identical returns, since templates are pure.
func templateCacheKey(name string, argIdx []uint32) string {
	var b strings.Builder
	b.WriteString(name)
	for _, idx := range argIdx {
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(idx), 10))
	}
	return b.String()
}
