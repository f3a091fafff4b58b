package btdsl

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btdsl/btdsl/internal/astjson"
	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/internal/importresolve"
	"github.com/btdsl/btdsl/internal/sema"
)

// graphLoader reads AST JSON documents from disk and wires up
// sema.Module.DirectImports, memoizing by canonical path so a document
// imported from two places loads (and later gets checked) exactly once.
type graphLoader struct {
	resolver *importresolve.Resolver
	modules  map[string]*sema.Module
	visiting map[string]bool
	// order accumulates modules in dependency order: every module's
	// DirectImports are appended before the module itself.
	order []*sema.Module
}

func newGraphLoader(opts Options) *graphLoader {
	return &graphLoader{
		resolver: importresolve.New(opts.PackagePaths),
		modules:  make(map[string]*sema.Module),
		visiting: make(map[string]bool),
	}
}

func canonicalPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// load reads and decodes path (already canonical) into a Module, recursing
// into its imports before returning so dependency order is maintained in
// l.order. A failed read/decode produces a module whose ParseDiagnostics
// holds a single error with code Parse rather than aborting the whole
// graph — a sibling top-level file should still get checked.
func (l *graphLoader) load(path string) (*sema.Module, error) {
	if m, ok := l.modules[path]; ok {
		return m, nil
	}
	if l.visiting[path] {
		return nil, fmt.Errorf("btdsl: import cycle reaches %s again", path)
	}
	l.visiting[path] = true
	defer delete(l.visiting, path)

	parseDiags := diag.NewBag()
	data, err := os.ReadFile(path)
	if err != nil {
		parseDiags.Errorf(diag.CodeParse, diag.Range{}, "reading %s: %v", path, err)
		m := sema.NewModule(path, nil, nil, parseDiags)
		l.modules[path] = m
		l.order = append(l.order, m)
		return m, nil
	}

	file, arena, err := astjson.Decode(data)
	if err != nil {
		parseDiags.Errorf(diag.CodeParse, diag.Range{}, "decoding %s: %v", path, err)
		m := sema.NewModule(path, nil, nil, parseDiags)
		l.modules[path] = m
		l.order = append(l.order, m)
		return m, nil
	}

	mod := sema.NewModule(path, arena, file, parseDiags)
	l.modules[path] = mod

	for _, imp := range file.Imports {
		target, err := l.resolver.Resolve(path, imp.Target)
		if err != nil {
			mod.Diagnostics.Errorf(diag.CodeImport, imp.Range(), "%v", err)
			mod.DirectImports[imp.Target] = nil
			continue
		}
		ctarget, err := canonicalPath(target)
		if err != nil {
			mod.Diagnostics.Errorf(diag.CodeImport, imp.Range(), "resolving %q: %v", imp.Target, err)
			mod.DirectImports[imp.Target] = nil
			continue
		}
		child, err := l.load(ctarget)
		if err != nil {
			mod.Diagnostics.Errorf(diag.CodeImport, imp.Range(), "%v", err)
			mod.DirectImports[imp.Target] = nil
			continue
		}
		mod.DirectImports[imp.Target] = child
	}

	l.order = append(l.order, mod)
	return mod, nil
}
