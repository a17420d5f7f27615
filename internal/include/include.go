// Package include implements C5: the function-name to source-file
// resolver of spec.md §4.2. It walks an injected fs.FS the way the
// teacher interpreter accepts a SourcecodeFilesystem
// (interp.Options.SourcecodeFilesystem in _examples/breadchris-yaegi),
// generalized here from "load Go source" to "map a function name to
// its one source file, honoring an extension priority list."
package include

import (
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/zkavm/avmc/internal/diag"
)

// Resolver maintains the name<->path bijection of spec.md §4.2.
type Resolver struct {
	priority map[string]int // extension -> priority, higher wins
	nameToPath map[string]string
	pathToName map[string]string
	dirOf      map[string]string // name -> directory it was found in
}

// New builds a Resolver honoring extensionPriorities in the order
// given: later entries override earlier ones on a same-directory
// collision, matching spec.md §6's "later entries override earlier".
func New(extensionPriorities []string) *Resolver {
	pri := make(map[string]int, len(extensionPriorities))
	for i, ext := range extensionPriorities {
		pri[normalizeExt(ext)] = i
	}
	return &Resolver{
		priority:   pri,
		nameToPath: map[string]string{},
		pathToName: map[string]string{},
		dirOf:      map[string]string{},
	}
}

func normalizeExt(ext string) string {
	return strings.TrimPrefix(ext, ".")
}

// AddRoot walks root (a directory or a single file) within fsys,
// registering every recognized file per spec.md §4.2: "On include of
// a directory, recursively walks entries. On include of a file, if
// the extension is in the configured priority list, the file's stem
// is adopted as the function name; collisions with a file of the same
// stem at the same directory are resolved by preferring the
// higher-priority extension; collisions across directories are fatal.
// Files with unknown extensions are silently ignored."
func (r *Resolver) AddRoot(fsys fs.FS, root string) error {
	info, err := fs.Stat(fsys, root)
	if err != nil {
		return diag.Wrap(diag.KindResolve, err, "stat %s", root)
	}
	if !info.IsDir() {
		return r.addFile(root)
	}
	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return diag.Wrap(diag.KindResolve, err, "walking %s", p)
		}
		if d.IsDir() {
			return nil
		}
		return r.addFile(p)
	})
}

func (r *Resolver) addFile(p string) error {
	ext := normalizeExt(path.Ext(p))
	if ext == "" {
		return nil
	}
	if _, ok := r.priority[ext]; !ok {
		return nil // unknown extension: silently ignored
	}

	dir := path.Dir(p)
	stem := strings.TrimSuffix(path.Base(p), "."+ext)

	if existingPath, ok := r.nameToPath[stem]; ok {
		existingDir := r.dirOf[stem]
		if existingDir != dir {
			return diag.Errorf(diag.KindResolve,
				"function name %q defined in both %s and %s", stem, existingPath, p)
		}
		existingExt := normalizeExt(path.Ext(existingPath))
		if r.priority[ext] <= r.priority[existingExt] {
			return nil // lower or equal priority: keep the existing file
		}
		delete(r.pathToName, existingPath)
	}

	r.nameToPath[stem] = p
	r.pathToName[p] = stem
	r.dirOf[stem] = dir
	return nil
}

// Resolve returns the source path registered for a function name.
func (r *Resolver) Resolve(name string) (string, error) {
	p, ok := r.nameToPath[name]
	if !ok {
		return "", diag.Errorf(diag.KindResolve, "no source file defines function %q", name)
	}
	return p, nil
}

// NameOf is the inverse of Resolve.
func (r *Resolver) NameOf(path string) (string, error) {
	name, ok := r.pathToName[path]
	if !ok {
		return "", diag.Errorf(diag.KindResolve, "no function name registered for %s", path)
	}
	return name, nil
}

// Names returns every registered function name, sorted for
// deterministic iteration (the resolver itself imposes no order; C6's
// worklist provides the traversal order that matters).
func (r *Resolver) Names() []string {
	out := make([]string, 0, len(r.nameToPath))
	for name := range r.nameToPath {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
