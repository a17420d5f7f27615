package avm

import (
	"log/slog"

	"github.com/zkavm/avmc/internal/ast"
	"github.com/zkavm/avmc/internal/constraint"
	"github.com/zkavm/avmc/internal/depclosure"
	"github.com/zkavm/avmc/internal/diag"
	"github.com/zkavm/avmc/internal/field"
)

// AVM is one instance of the arithmetizing virtual machine (spec.md
// §4.4): single-threaded, synchronous, deterministic. A child AVM is
// created per user-function call; it shares the parent's signal
// counter and dependency closure, and its emitted records are
// appended to the parent's stream at return.
type AVM struct {
	F       field.Field
	counter *counter
	closure *depclosure.Closure
	logger  *slog.Logger

	stream    constraint.Stream
	scope     *frame
	funcName  string
	returned  bool
	returnVar Var

	// templateCache memoizes precompile invocations by (name, arg
	// signal indices): the source language is side-effect-free, so a
	// template called twice with the exact same argument signals
	// produces the exact same return signals, and can reuse them
	// instead of re-emitting the template's rows (SPEC_FULL.md §9
	// point 4, generalizing ashlang's sequential constraint-append to
	// a lookup table).
	templateCache map[string]Var
}

// New builds a fresh top-level AVM. logger may be nil to disable
// tracing (spec.md §9's "trace" addition, gated by Config.Verbosity
// at the cmd/avmc layer).
func New(f field.Field, closure *depclosure.Closure, logger *slog.Logger) *AVM {
	return &AVM{
		F:       f,
		counter: newCounter(),
		closure: closure,
		logger:  logger,
		scope:   newFrame(nil),
	}
}

// NewFrom builds a top-level AVM whose signal counter starts where a
// prior pass's left off, rather than at 1. This is how Config.ArgFn's
// second compilation pass (SPEC_FULL.md §9 point 3) shares the entry
// pass's signal space instead of renumbering from scratch.
func NewFrom(f field.Field, closure *depclosure.Closure, logger *slog.Logger, start uint32) *AVM {
	a := New(f, closure, logger)
	a.counter.next = start
	return a
}

// NextIndex reports the counter's current value, for handing off to a
// NewFrom call on a subsequent pass.
func (a *AVM) NextIndex() uint32 { return a.counter.next }

func (a *AVM) child(funcName string) *AVM {
	return &AVM{
		F:       a.F,
		counter: a.counter,
		closure: a.closure,
		logger:  a.logger,
		scope:   newFrame(nil),
		funcName: funcName,
	}
}

func (a *AVM) emit(r constraint.Record) {
	a.stream = append(a.stream, r)
	if a.logger != nil {
		a.logger.Debug("emit", "fn", a.funcName, "kind", r.Kind)
	}
}

// Compile runs the top-level entry function: emits the field sanity
// row first (spec.md §3 invariant 7), then materializes paramShapes
// as a contiguous prefix of Input symbolic records (one per param,
// shape-sized), executes the entry body, and returns the full
// constraint stream plus the entry's return Var if any.
//
// paramShapes is a SPEC_FULL addition resolving an ambiguity spec.md
// leaves open: the source grammar's header line names parameters but
// carries no shape annotation, yet §8 scenario 2 expects a matrix
// parameter. A nil shape entry means "scalar."
func (a *AVM) Compile(entryName string, paramShapes map[string][]int) (constraint.Stream, *Var, error) {
	a.emit(constraint.NewWitness(constraint.FieldSanityWitness(a.F)))

	entry, ok := a.closure.Frontend[entryName]
	if !ok {
		return nil, nil, diag.Errorf(diag.KindResolve, "entry function %q not found", entryName)
	}
	a.funcName = entryName

	for _, name := range entry.Params {
		shape := paramShapes[name]
		n := prod(shape)
		base := a.counter.alloc(n)
		for i := 0; i < n; i++ {
			a.emit(constraint.NewSymbolic(constraint.SymbolicRecord{
				OutIndex: base + uint32(i),
				Op:       constraint.OpInput,
				Comment:  "input " + name,
			}))
		}
		if err := a.scope.bind(name, WitnessVar(base, shape)); err != nil {
			return nil, nil, err
		}
	}

	if err := a.execStmts(entry.Stmts); err != nil {
		return nil, nil, err
	}
	if a.returned {
		rv := a.returnVar
		return a.stream, &rv, nil
	}
	return a.stream, nil, nil
}

func prod(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// callFunction dispatches a CallExpr: a backend precompile template,
// write_output, or a recursive user-function invocation (spec.md
// §4.4's function-call expression semantics).
func (a *AVM) callFunction(name string, argExprs []ast.Expr) (Var, error) {
	args := make([]Var, len(argExprs))
	for i, e := range argExprs {
		v, err := a.eval(e)
		if err != nil {
			return Var{}, err
		}
		args[i] = v
	}

	if name == "write_output" {
		return Var{}, a.execWriteOutput(args)
	}

	if pf, ok := a.closure.Backend[name]; ok {
		return a.invokeTemplate(name, pf, args)
	}

	callee, ok := a.closure.Frontend[name]
	if !ok {
		return Var{}, diag.Errorf(diag.KindResolve, "call to undefined function %q", name)
	}
	if len(args) != len(callee.Params) {
		return Var{}, diag.Errorf(diag.KindName, "%s: expected %d arguments, got %d", name, len(callee.Params), len(args))
	}

	child := a.child(name)
	for i, pname := range callee.Params {
		if err := child.scope.bind(pname, args[i]); err != nil {
			return Var{}, err
		}
	}
	if err := child.execStmts(callee.Stmts); err != nil {
		return Var{}, err
	}
	a.stream = append(a.stream, child.stream...)

	if child.returned {
		return child.returnVar, nil
	}
	return ScalarStatic(a.F.One()), nil
}
