package avm_test

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zkavm/avmc/internal/ast"
	"github.com/zkavm/avmc/internal/avm"
	"github.com/zkavm/avmc/internal/constraint"
	"github.com/zkavm/avmc/internal/depclosure"
	"github.com/zkavm/avmc/internal/field"
	"github.com/zkavm/avmc/internal/witness"
)

func ident(name string) *ast.Ident { return ast.NewIdent(token.NoPos, name) }
func lit(text string) *ast.Literal { return ast.NewLiteral(token.NoPos, text) }

func closureOf(entryName string, entry *ast.File, extra map[string]*ast.File, backend map[string]*constraint.ParsedFile) *depclosure.Closure {
	fe := map[string]*ast.File{entryName: entry}
	for k, v := range extra {
		fe[k] = v
	}
	calls := depclosure.CallCounts(entry)
	for _, f := range extra {
		for name, n := range depclosure.CallCounts(f) {
			calls[name] += n
		}
	}
	if backend == nil {
		backend = map[string]*constraint.ParsedFile{}
	}
	return &depclosure.Closure{Frontend: fe, Backend: backend, Calls: calls}
}

// Scenario 1 (spec.md §8): let a=3; let b=4; let c=a*b.
func TestScalarMulIdentity(t *testing.T) {
	f := field.PrimeField{}
	entry := &ast.File{
		Name: "main",
		Stmts: []ast.Stmt{
			ast.NewLet(token.NoPos, "a", lit("3")),
			ast.NewLet(token.NoPos, "b", lit("4")),
			ast.NewLet(token.NoPos, "c", ast.NewBinary(token.NoPos, ast.Mul, ident("a"), ident("b"))),
			ast.NewReturn(token.NoPos, ident("c")),
		},
	}
	closure := closureOf("main", entry, nil, nil)

	machine := avm.New(f, closure, nil)
	stream, ret, err := machine.Compile("main", nil)
	require.NoError(t, err)
	require.NotNil(t, ret)
	require.True(t, ret.IsScalar())

	witnessRows := stream.WitnessRecords()
	// field sanity row + 3 materialization pairs (a, b, and the product).
	require.Len(t, witnessRows, 4)

	symbolics := stream.SymbolicRecords()
	require.Len(t, symbolics, 3)
	require.Equal(t, constraint.OpMul, symbolics[len(symbolics)-1].Op)
}

// Scenario 2 (spec.md §8): a 2x3 matrix input times a length-3 vector
// input, returning a length-2 vector.
func TestMatrixVectorProduct(t *testing.T) {
	f := field.PrimeField{}

	// acc = mat[row][0]*vec[0] + mat[row][1]*vec[1] + mat[row][2]*vec[2]
	rowDot := func(row int) ast.Expr {
		var sum ast.Expr
		rowExpr := ast.NewIndex(token.NoPos, ident("mat"), lit(itoa(row)))
		for col := 0; col < 3; col++ {
			term := ast.NewBinary(token.NoPos, ast.Mul,
				ast.NewIndex(token.NoPos, rowExpr, lit(itoa(col))),
				ast.NewIndex(token.NoPos, ident("vec"), lit(itoa(col))))
			if sum == nil {
				sum = term
			} else {
				sum = ast.NewBinary(token.NoPos, ast.Add, sum, term)
			}
		}
		return sum
	}

	entry := &ast.File{
		Name:   "main",
		Params: []string{"mat", "vec"},
		Stmts: []ast.Stmt{
			ast.NewLet(token.NoPos, "r0", rowDot(0)),
			ast.NewLet(token.NoPos, "r1", rowDot(1)),
			ast.NewVecDecl(token.NoPos, "out", lit("2")),
			ast.NewVecAssign(token.NoPos, ast.NewIndex(token.NoPos, ident("out"), lit("0")), ident("r0")),
			ast.NewVecAssign(token.NoPos, ast.NewIndex(token.NoPos, ident("out"), lit("1")), ident("r1")),
			ast.NewReturn(token.NoPos, ident("out")),
		},
	}
	closure := closureOf("main", entry, nil, nil)

	machine := avm.New(f, closure, nil)
	stream, ret, err := machine.Compile("main", map[string][]int{
		"mat": {2, 3},
		"vec": {3},
	})
	require.NoError(t, err)
	require.NotNil(t, ret)
	require.Equal(t, []int{2}, ret.Shape)
	require.NotEmpty(t, stream)
}

// A vector element assigned via `out[i] = rhs` must be solvable by
// the witness evaluator: emitEquality has to emit a symbolic record
// for the freshly allocated target signal, not just the witness
// constraint that checks it.
func TestVecAssignTargetIsSolvable(t *testing.T) {
	f := field.PrimeField{}
	entry := &ast.File{
		Name:   "main",
		Params: []string{"a", "b"},
		Stmts: []ast.Stmt{
			ast.NewVecDecl(token.NoPos, "out", lit("2")),
			ast.NewVecAssign(token.NoPos, ast.NewIndex(token.NoPos, ident("out"), lit("0")), ident("a")),
			ast.NewVecAssign(token.NoPos, ast.NewIndex(token.NoPos, ident("out"), lit("1")), ident("b")),
			ast.NewExprStmt(token.NoPos, ast.NewCall(token.NoPos, "write_output", []ast.Expr{ident("out")})),
		},
	}
	closure := closureOf("main", entry, nil, nil)
	machine := avm.New(f, closure, nil)
	stream, _, err := machine.Compile("main", nil)
	require.NoError(t, err)

	result, err := witness.Eval(f, stream, []field.Element{f.FromUint64(5), f.FromUint64(9)})
	require.NoError(t, err)

	outputs := result.SortedOutputs()
	require.Len(t, outputs, 2)
	require.True(t, result.Values[outputs[0]].Equal(f.FromUint64(5)))
	require.True(t, result.Values[outputs[1]].Equal(f.FromUint64(9)))
}

func itoa(n int) string {
	digits := "0123456789"
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{digits[n%10]}, b...)
		n /= 10
	}
	return string(b)
}

// Scenario 3 (spec.md §8): let x=2; let y=1/x emits exactly one Inv.
func TestInversion(t *testing.T) {
	f := field.PrimeField{}
	entry := &ast.File{
		Name: "main",
		Stmts: []ast.Stmt{
			ast.NewLet(token.NoPos, "x", lit("2")),
			ast.NewLet(token.NoPos, "y", ast.NewBinary(token.NoPos, ast.Div, lit("1"), ident("x"))),
			ast.NewReturn(token.NoPos, ident("y")),
		},
	}
	closure := closureOf("main", entry, nil, nil)

	machine := avm.New(f, closure, nil)
	stream, ret, err := machine.Compile("main", nil)
	require.NoError(t, err)
	require.NotNil(t, ret)

	invCount := 0
	for _, sr := range stream.SymbolicRecords() {
		if sr.Op == constraint.OpInv {
			invCount++
		}
	}
	require.Equal(t, 1, invCount)
}

// Scenario 4 (spec.md §8): calling an undefined function is a resolve
// error, and double-return on a single function body is rejected.
func TestUndefinedCallIsResolveError(t *testing.T) {
	f := field.PrimeField{}
	entry := &ast.File{
		Name: "main",
		Stmts: []ast.Stmt{
			ast.NewExprStmt(token.NoPos, ast.NewCall(token.NoPos, "does_not_exist", nil)),
		},
	}
	closure := closureOf("main", entry, nil, nil)
	machine := avm.New(f, closure, nil)
	_, _, err := machine.Compile("main", nil)
	require.Error(t, err)
}

func TestDuplicateReturnIsRejected(t *testing.T) {
	f := field.PrimeField{}
	entry := &ast.File{
		Name: "main",
		Stmts: []ast.Stmt{
			ast.NewReturn(token.NoPos, lit("1")),
			ast.NewReturn(token.NoPos, lit("2")),
		},
	}
	closure := closureOf("main", entry, nil, nil)
	machine := avm.New(f, closure, nil)
	_, _, err := machine.Compile("main", nil)
	require.Error(t, err)
}

// Scenario 5 (spec.md §8): adding a length-3 vector literal to a
// length-2 vector literal is a shape-mismatch error.
func TestVectorShapeMismatch(t *testing.T) {
	f := field.PrimeField{}
	entry := &ast.File{
		Name: "main",
		Stmts: []ast.Stmt{
			ast.NewLet(token.NoPos, "a", ast.NewVectorLit(token.NoPos, []ast.Expr{lit("1"), lit("2"), lit("3")})),
			ast.NewLet(token.NoPos, "b", ast.NewVectorLit(token.NoPos, []ast.Expr{lit("1"), lit("2")})),
			ast.NewLet(token.NoPos, "c", ast.NewBinary(token.NoPos, ast.Add, ident("a"), ident("b"))),
		},
	}
	closure := closureOf("main", entry, nil, nil)
	machine := avm.New(f, closure, nil)
	_, _, err := machine.Compile("main", nil)
	require.Error(t, err)
}

// Scenario 6 (spec.md §8): write_output on a static value is rejected.
func TestWriteOutputRejectsStatic(t *testing.T) {
	f := field.PrimeField{}
	entry := &ast.File{
		Name: "main",
		Stmts: []ast.Stmt{
			ast.NewLet(token.NoPos, "a", lit("5")),
			ast.NewStatic(token.NoPos, "s", lit("7")),
			ast.NewExprStmt(token.NoPos, ast.NewCall(token.NoPos, "write_output", []ast.Expr{ident("s")})),
		},
	}
	closure := closureOf("main", entry, nil, nil)
	machine := avm.New(f, closure, nil)
	_, _, err := machine.Compile("main", nil)
	require.Error(t, err)
}

func TestWriteOutputEmitsOneOutputPerElement(t *testing.T) {
	f := field.PrimeField{}
	entry := &ast.File{
		Name: "main",
		Stmts: []ast.Stmt{
			ast.NewLet(token.NoPos, "a", lit("5")),
			ast.NewExprStmt(token.NoPos, ast.NewCall(token.NoPos, "write_output", []ast.Expr{ident("a")})),
		},
	}
	closure := closureOf("main", entry, nil, nil)
	machine := avm.New(f, closure, nil)
	stream, _, err := machine.Compile("main", nil)
	require.NoError(t, err)

	outputs := 0
	for _, sr := range stream.SymbolicRecords() {
		if sr.Op == constraint.OpOutput {
			outputs++
		}
	}
	require.Equal(t, 1, outputs)
}

// Redefinition of a name in the same scope is rejected.
func TestRedefinitionIsRejected(t *testing.T) {
	f := field.PrimeField{}
	entry := &ast.File{
		Name: "main",
		Stmts: []ast.Stmt{
			ast.NewLet(token.NoPos, "a", lit("1")),
			ast.NewLet(token.NoPos, "a", lit("2")),
		},
	}
	closure := closureOf("main", entry, nil, nil)
	machine := avm.New(f, closure, nil)
	_, _, err := machine.Compile("main", nil)
	require.Error(t, err)
}

// A user function call remaps its own fresh signals into the caller's
// stream and returns the callee's return value.
func TestUserFunctionCall(t *testing.T) {
	f := field.PrimeField{}
	double := &ast.File{
		Name:   "double",
		Params: []string{"x"},
		Stmts: []ast.Stmt{
			ast.NewReturn(token.NoPos, ast.NewBinary(token.NoPos, ast.Add, ident("x"), ident("x"))),
		},
	}
	entry := &ast.File{
		Name: "main",
		Stmts: []ast.Stmt{
			ast.NewLet(token.NoPos, "a", lit("3")),
			ast.NewLet(token.NoPos, "b", ast.NewCall(token.NoPos, "double", []ast.Expr{ident("a")})),
			ast.NewReturn(token.NoPos, ident("b")),
		},
	}
	closure := closureOf("main", entry, map[string]*ast.File{"double": double}, nil)

	machine := avm.New(f, closure, nil)
	stream, ret, err := machine.Compile("main", nil)
	require.NoError(t, err)
	require.NotNil(t, ret)
	require.True(t, ret.IsScalar())
	require.NotEmpty(t, stream)
}

// A precompile template invocation coerces args to signals and remaps
// the template's local indices into the caller's stream (spec.md §4.5).
func TestPrecompileTemplateInvocation(t *testing.T) {
	f := field.PrimeField{}
	// square.r1cs: (a) -> (r); r = a * a
	squarePF, err := constraint.Parse(f, "(a) -> (r)\nr = (1*a) * (1*a)\n0 = (1*a) * (1*a) - (1*r)\n")
	require.NoError(t, err)

	entry := &ast.File{
		Name: "main",
		Stmts: []ast.Stmt{
			ast.NewLet(token.NoPos, "x", lit("3")),
			ast.NewLet(token.NoPos, "y", ast.NewCall(token.NoPos, "square", []ast.Expr{ident("x")})),
			ast.NewReturn(token.NoPos, ident("y")),
		},
	}
	closure := closureOf("main", entry, nil, map[string]*constraint.ParsedFile{"square": squarePF})

	machine := avm.New(f, closure, nil)
	stream, ret, err := machine.Compile("main", nil)
	require.NoError(t, err)
	require.NotNil(t, ret)
	require.True(t, ret.IsScalar())

	witnessRows := stream.WitnessRecords()
	// field sanity + materialize(3) + the template's own row.
	require.Len(t, witnessRows, 3)
}
