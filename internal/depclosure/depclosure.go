// Package depclosure implements C6: the transitive closure of called
// functions from an entry AST (spec.md §4.3), grounded on the
// teacher's own recursive AST-walk shape (interp.go's genRun/astNode
// post-order walk in _examples/breadchris-yaegi), generalized here
// from "evaluate a node" to "count the calls a node makes."
package depclosure

import (
	"github.com/zkavm/avmc/internal/ast"
	"github.com/zkavm/avmc/internal/constraint"
	"github.com/zkavm/avmc/internal/diag"
	"github.com/zkavm/avmc/internal/include"
)

// CallCounts walks a parsed file and returns how many times each
// callee name is invoked, the "call-count map" of spec.md §4.3.
func CallCounts(f *ast.File) map[string]int {
	counts := map[string]int{}
	for _, s := range f.Stmts {
		walkStmt(s, counts)
	}
	return counts
}

func walkStmt(s ast.Stmt, counts map[string]int) {
	switch n := s.(type) {
	case *ast.LetStmt:
		walkExpr(n.Value, counts)
	case *ast.StaticStmt:
		walkExpr(n.Value, counts)
	case *ast.ReassignStmt:
		walkExpr(n.Value, counts)
	case *ast.VecDeclStmt:
		walkExpr(n.Length, counts)
	case *ast.VecAssignStmt:
		walkExpr(n.Target, counts)
		walkExpr(n.Value, counts)
	case *ast.ExprStmt:
		walkExpr(n.X, counts)
	case *ast.LoopStmt:
		walkExpr(n.Bound, counts)
		for _, b := range n.Body {
			walkStmt(b, counts)
		}
	case *ast.IfStmt:
		walkExpr(n.Lhs, counts)
		walkExpr(n.Rhs, counts)
		for _, b := range n.Body {
			walkStmt(b, counts)
		}
	case *ast.ReturnStmt:
		walkExpr(n.Value, counts)
	case *ast.PrecompileStmt:
		for _, a := range n.Args {
			walkExpr(a, counts)
		}
		for _, b := range n.Body {
			walkStmt(b, counts)
		}
	}
}

func walkExpr(e ast.Expr, counts map[string]int) {
	switch n := e.(type) {
	case *ast.IndexExpr:
		walkExpr(n.X, counts)
		walkExpr(n.Index, counts)
	case *ast.VectorLit:
		for _, el := range n.Elems {
			walkExpr(el, counts)
		}
	case *ast.BinaryExpr:
		walkExpr(n.X, counts)
		walkExpr(n.Y, counts)
	case *ast.CallExpr:
		counts[n.Func]++
		for _, a := range n.Args {
			walkExpr(a, counts)
		}
	}
}

// Source holds everything needed to turn a resolved name into either
// an AST (front-end source) or a parsed constraint template
// (precompiled backend source).
type Source struct {
	Resolver      *include.Resolver
	ReadFile      func(path string) (string, error)
	IsFrontendExt func(ext string) bool
	ParseFrontend func(name, src string) (*ast.File, error)
	ParseBackend  func(src string) (*constraint.ParsedFile, error)
}

// Closure is the result of collecting the full transitive call
// closure of an entry function.
type Closure struct {
	Frontend map[string]*ast.File
	Backend  map[string]*constraint.ParsedFile
	Calls    map[string]int
}

// Collect runs the worklist algorithm of spec.md §4.3: starting from
// the entry AST's call-count map, repeatedly resolves any newly seen
// name via C5, parses it as front-end or backend source, and merges
// its own call-count map, terminating when every seen name has been
// parsed exactly once.
func Collect(src Source, entryName string, entry *ast.File) (*Closure, error) {
	c := &Closure{
		Frontend: map[string]*ast.File{entryName: entry},
		Backend:  map[string]*constraint.ParsedFile{},
		Calls:    map[string]int{},
	}
	seen := map[string]bool{entryName: true}
	mergeCounts(c.Calls, CallCounts(entry))

	worklist := pendingNames(c.Calls, seen)
	for len(worklist) > 0 {
		name := worklist[0]
		worklist = worklist[1:]
		if seen[name] {
			continue
		}
		seen[name] = true

		path, err := src.Resolver.Resolve(name)
		if err != nil {
			return nil, err
		}
		body, err := src.ReadFile(path)
		if err != nil {
			return nil, diag.Wrap(diag.KindResolve, err, "reading %s", path)
		}

		if src.IsFrontendExt(extOf(path)) {
			file, err := src.ParseFrontend(name, body)
			if err != nil {
				return nil, err
			}
			c.Frontend[name] = file
			mergeCounts(c.Calls, CallCounts(file))
		} else {
			pf, err := src.ParseBackend(body)
			if err != nil {
				return nil, err
			}
			c.Backend[name] = pf
			// Precompiled backend templates are leaves: their record
			// stream references signals, not other function names.
		}

		worklist = append(worklist, pendingNames(c.Calls, seen)...)
	}
	return c, nil
}

func pendingNames(calls map[string]int, seen map[string]bool) []string {
	var out []string
	for name := range calls {
		if !seen[name] {
			out = append(out, name)
		}
	}
	return out
}

func mergeCounts(dst, src map[string]int) {
	for name, n := range src {
		dst[name] += n
	}
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i+1:]
		}
		if path[i] == '/' {
			break
		}
	}
	return ""
}
