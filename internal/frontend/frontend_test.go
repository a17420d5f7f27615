package frontend_test

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkavm/avmc/internal/ast"
	"github.com/zkavm/avmc/internal/frontend"
)

func TestParseScalarMulIdentity(t *testing.T) {
	src := "let a = 3\nlet b = 4\nlet c = a * b\n"
	fset := token.NewFileSet()
	f, err := frontend.Parse(fset, "mul", src)
	require.NoError(t, err)
	require.Len(t, f.Stmts, 3)

	let1, ok := f.Stmts[2].(*ast.LetStmt)
	require.True(t, ok)
	assert.Equal(t, "c", let1.Name)
	bin, ok := let1.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.Mul, bin.Op)
}

func TestParseHeaderLine(t *testing.T) {
	src := "(a, b)\nlet c = a + b\nreturn c\n"
	fset := token.NewFileSet()
	f, err := frontend.Parse(fset, "addfn", src)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, f.Params)
	require.Len(t, f.Stmts, 2)
}

func TestParseLoopAndIf(t *testing.T) {
	src := "loop 3 {\n  let x = 1\n}\nif (1 == 1) {\n  let y = 2\n}\n"
	fset := token.NewFileSet()
	f, err := frontend.Parse(fset, "ctrl", src)
	require.NoError(t, err)
	require.Len(t, f.Stmts, 2)
	loop, ok := f.Stmts[0].(*ast.LoopStmt)
	require.True(t, ok)
	assert.Len(t, loop.Body, 1)
	ifs, ok := f.Stmts[1].(*ast.IfStmt)
	require.True(t, ok)
	assert.Equal(t, ast.Eq, ifs.Op)
}

func TestParsePrecompileWriteOutput(t *testing.T) {
	src := "let a = 1\n#write_output(a)\n"
	fset := token.NewFileSet()
	f, err := frontend.Parse(fset, "out", src)
	require.NoError(t, err)
	require.Len(t, f.Stmts, 2)
	pc, ok := f.Stmts[1].(*ast.PrecompileStmt)
	require.True(t, ok)
	assert.Equal(t, "write_output", pc.Name)
}

func TestCommentsIgnored(t *testing.T) {
	src := "# a leading comment\nlet a = 1 # trailing comment\n"
	fset := token.NewFileSet()
	f, err := frontend.Parse(fset, "cmt", src)
	require.NoError(t, err)
	require.Len(t, f.Stmts, 1)
}

func TestVectorLiteralLength(t *testing.T) {
	src := "let v = [1, 2, 3]\n"
	fset := token.NewFileSet()
	f, err := frontend.Parse(fset, "vec", src)
	require.NoError(t, err)
	let, ok := f.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	vec, ok := let.Value.(*ast.VectorLit)
	require.True(t, ok)
	assert.Len(t, vec.Elems, 3)
}
