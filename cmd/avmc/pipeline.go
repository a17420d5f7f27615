package main

import (
	"fmt"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zkavm/avmc/internal/ast"
	"github.com/zkavm/avmc/internal/avm"
	"github.com/zkavm/avmc/internal/config"
	"github.com/zkavm/avmc/internal/constraint"
	"github.com/zkavm/avmc/internal/depclosure"
	"github.com/zkavm/avmc/internal/field"
	"github.com/zkavm/avmc/internal/frontend"
	"github.com/zkavm/avmc/internal/include"
)

// frontendExt and backendExt are the two source kinds C5/C6 tell
// apart: a .ax file is parsed as a function body, a .zk file is
// parsed as a precompiled constraint template (spec.md §4.2/§4.5).
const (
	frontendExt = "ax"
	backendExt  = "zk"
)

func newLogger(verbosity uint8, runID string) *slog.Logger {
	if verbosity == 0 {
		return nil
	}
	level := slog.LevelInfo
	if verbosity > 1 {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).With("run-id", runID)
}

func pickField(tag string) (field.Field, error) {
	switch tag {
	case "", "prime":
		return field.PrimeField{}, nil
	case "ring":
		return field.RingField{}, nil
	default:
		return nil, fmt.Errorf("unknown field tag %q", tag)
	}
}

// buildClosure resolves includePaths into one include.Resolver ordered
// by priorities (the default [ax, zk] when empty), then runs C6's
// worklist starting from entryName, returning the full transitive
// closure ready for compilation.
func buildClosure(f field.Field, includePaths, priorities []string, entryName string) (*depclosure.Closure, error) {
	if len(priorities) == 0 {
		priorities = []string{frontendExt, backendExt}
	}
	resolver := include.New(priorities)
	for _, root := range includePaths {
		dir, base := filepath.Split(filepath.Clean(root))
		if dir == "" {
			dir = "."
		}
		fsys := os.DirFS(dir)
		if err := resolver.AddRoot(fsys, base); err != nil {
			return nil, err
		}
	}

	readFile := func(path string) (string, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	depSrc := depclosure.Source{
		Resolver:      resolver,
		ReadFile:      readFile,
		IsFrontendExt: func(ext string) bool { return strings.TrimPrefix(ext, ".") == frontendExt },
		ParseFrontend: func(name, body string) (*ast.File, error) { return frontend.Parse(token.NewFileSet(), name, body) },
		ParseBackend:  func(body string) (*constraint.ParsedFile, error) { return constraint.Parse(f, body) },
	}

	entryPath, err := resolver.Resolve(entryName)
	if err != nil {
		return nil, err
	}
	entryBody, err := readFile(entryPath)
	if err != nil {
		return nil, err
	}
	entry, err := frontend.Parse(token.NewFileSet(), entryName, entryBody)
	if err != nil {
		return nil, err
	}

	return depclosure.Collect(depSrc, entryName, entry)
}

// runPass compiles one entry function through the AVM, starting the
// signal counter at startAt (0 means "fresh top-level pass").
func runPass(f field.Field, closure *depclosure.Closure, logger *slog.Logger, entryName string, startAt uint32) (constraint.Stream, uint32, error) {
	var a *avm.AVM
	if startAt == 0 {
		a = avm.New(f, closure, logger)
	} else {
		a = avm.NewFrom(f, closure, logger, startAt)
	}
	stream, _, err := a.Compile(entryName, nil)
	if err != nil {
		return nil, 0, err
	}
	return stream, a.NextIndex(), nil
}

// compileConfig runs the full compile pipeline for cfg: C5/C6 closure
// collection, the entry pass, and (when ArgFn is set) a second pass
// sharing the first pass's signal numbering (SPEC_FULL.md §9 point 3).
func compileConfig(cfg config.Config, fieldTag string) (constraint.Stream, field.Field, error) {
	f, err := pickField(fieldTag)
	if err != nil {
		return nil, nil, err
	}
	closure, err := buildClosure(f, cfg.IncludePaths, cfg.ExtensionPriorities, cfg.EntryFn)
	if err != nil {
		return nil, nil, err
	}

	stream, next, err := runPass(f, closure, newLogger(cfg.Verbosity, cfg.RunID), cfg.EntryFn, 0)
	if err != nil {
		return nil, nil, err
	}

	if cfg.ArgFn != "" {
		argClosure, err := buildClosure(f, cfg.IncludePaths, cfg.ExtensionPriorities, cfg.ArgFn)
		if err != nil {
			return nil, nil, err
		}
		argStream, _, err := runPass(f, argClosure, newLogger(cfg.Verbosity, cfg.RunID), cfg.ArgFn, next)
		if err != nil {
			return nil, nil, err
		}
		stream = append(stream, argStream...)
	}

	return stream, f, nil
}

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339) }
