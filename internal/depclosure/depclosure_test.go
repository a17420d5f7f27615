package depclosure_test

import (
	"go/token"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkavm/avmc/internal/ast"
	"github.com/zkavm/avmc/internal/constraint"
	"github.com/zkavm/avmc/internal/depclosure"
	"github.com/zkavm/avmc/internal/field"
	"github.com/zkavm/avmc/internal/frontend"
	"github.com/zkavm/avmc/internal/include"
)

func TestCallCountsCountsNestedCalls(t *testing.T) {
	fset := token.NewFileSet()
	f, err := frontend.Parse(fset, "entry", "let a = double(1)\nlet b = double(a)\nloop 2 { let c = square(a) }\n")
	require.NoError(t, err)

	counts := depclosure.CallCounts(f)
	assert.Equal(t, 2, counts["double"])
	assert.Equal(t, 1, counts["square"])
}

func TestCollectTransitiveClosure(t *testing.T) {
	files := map[string]string{
		"lib/double.avm": "(x)\nlet out = x * 2\nreturn out\n",
		"lib/square.r1cs": "(x) -> (out)\n" +
			"0 = (0x01*x) * (0x01*x) - (0x01*out)\n",
	}
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	resolver := include.New([]string{"avm", "r1cs"})
	require.NoError(t, resolver.AddRoot(fsys, "lib"))

	fset := token.NewFileSet()
	entry, err := frontend.Parse(fset, "entry", "let a = double(1)\nlet b = square(a)\n")
	require.NoError(t, err)

	src := depclosure.Source{
		Resolver: resolver,
		ReadFile: func(path string) (string, error) { return files[path], nil },
		IsFrontendExt: func(ext string) bool {
			return ext == "avm"
		},
		ParseFrontend: func(name, body string) (*ast.File, error) {
			return frontend.Parse(token.NewFileSet(), name, body)
		},
		ParseBackend: func(body string) (*constraint.ParsedFile, error) {
			return constraint.Parse(field.PrimeField{}, body)
		},
	}

	closure, err := depclosure.Collect(src, "entry", entry)
	require.NoError(t, err)

	assert.Contains(t, closure.Frontend, "entry")
	assert.Contains(t, closure.Frontend, "double")
	assert.Contains(t, closure.Backend, "square")
	assert.Equal(t, 1, closure.Calls["double"])
	assert.Equal(t, 1, closure.Calls["square"])
}
