package workspace

import (
	"github.com/btdsl/btdsl/internal/astjson"
	"github.com/btdsl/btdsl/internal/cfg"
	"github.com/btdsl/btdsl/internal/consteval"
	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/internal/initsafety"
	"github.com/btdsl/btdsl/internal/nullsafety"
	"github.com/btdsl/btdsl/internal/recursion"
	"github.com/btdsl/btdsl/internal/resolve"
	"github.com/btdsl/btdsl/internal/sema"
	"github.com/btdsl/btdsl/internal/symtab"
	"github.com/btdsl/btdsl/internal/typecheck"
	"github.com/btdsl/btdsl/internal/types"
)

// document is one open file plus its last analysis.
type document struct {
	uri  string
	text string

	source string
	hasSrc bool
	sm     *diag.SourceMap

	mod *sema.Module
}

func buildDocument(uri, text string) *document {
	d := &document{uri: uri, text: text}

	if src, ok, err := astjson.FileSource([]byte(text)); err == nil && ok {
		d.source = src
		d.hasSrc = true
		d.sm = diag.NewSourceMap(uri, src)
	}

	parseDiags := diag.NewBag()
	file, arena, err := astjson.Decode([]byte(text))
	if err != nil {
		parseDiags.Errorf(diag.CodeParse, diag.Range{}, "decoding document: %v", err)
		d.mod = sema.NewModule(uri, nil, nil, parseDiags)
		return d
	}
	d.mod = sema.NewModule(uri, arena, file, parseDiags)
	return d
}

// analyze runs the full middle-end over d and whichever of its transitive
// imports are currently open in the workspace, wiring d.mod.DirectImports
// as it goes. available restricts which import targets this request
// considers resolvable even if a document happens to be open under that
// URI — the host is expected to pass the imports it wants honored for this
// request, matching the specification's "optional list of imported URIs"
// per-method parameter.
//
// Every module touched (d plus its resolvable imports) gets its mutable
// analysis state reset before the pipeline runs, so repeated requests never
// accumulate duplicate diagnostics.
func (w *Workspace) analyze(d *document, available map[string]bool) {
	if d.mod.Program == nil {
		return
	}

	order, unresolved := w.importOrder(d, available, map[string]bool{}, map[string]bool{})
	order = append(order, d.mod)

	for _, mod := range order {
		mod.Diagnostics = diag.NewBag()
		mod.Tables = symtab.NewTables()
		mod.Info = sema.NewInfo()
		mod.DirectImports = make(map[string]*sema.Module)
	}
	for target, reason := range unresolved {
		d.mod.Diagnostics.Errorf(diag.CodeImport, diag.Range{}, "import %q: %s", target, reason)
	}
	for _, imp := range d.mod.Program.Imports {
		if other, ok := w.docs[imp.Target]; ok && available[imp.Target] && other.mod.Program != nil {
			d.mod.DirectImports[imp.Target] = other.mod
		} else {
			d.mod.DirectImports[imp.Target] = nil
		}
	}

	ctx := types.NewContext()

	for _, mod := range order {
		symtab.NewBuilder(mod.Tables, mod.Diagnostics, mod.FileID).Build(mod.Program)
	}
	for _, mod := range order {
		resolve.New(mod, ctx).Run()
	}
	recursion.New(d.mod).Run()
	for _, mod := range order {
		consteval.New(mod, ctx).Run()
		typecheck.New(mod, ctx).Run()
	}

	imported := make(map[*symtab.NodeSymbol]*initsafety.Summary)
	for _, mod := range order {
		forest := cfg.New().Build(mod.Program)
		isc := initsafety.New(mod, forest, imported)
		isc.Run()
		for sym, summary := range isc.Summaries() {
			imported[sym] = summary
		}
		nullsafety.New(mod, forest).Run()
	}
}

// importOrder collects d's transitive imports (restricted to available and
// already open) in import-before-importer order, without mutating any
// module. Anything it can't follow is recorded in unresolved, keyed by the
// spelled import target, for the caller to report against the importing
// document.
func (w *Workspace) importOrder(d *document, available map[string]bool, visiting, visited map[string]bool) ([]*sema.Module, map[string]string) {
	var order []*sema.Module
	unresolved := make(map[string]string)

	for _, imp := range d.mod.Program.Imports {
		target := imp.Target
		if visited[target] {
			continue
		}
		if available != nil && !available[target] {
			unresolved[target] = "not open in the workspace for this request"
			continue
		}
		other, ok := w.docs[target]
		if !ok || other.mod.Program == nil {
			unresolved[target] = "no such open document"
			continue
		}
		if visiting[target] {
			unresolved[target] = "import cycle"
			continue
		}
		visiting[target] = true
		transitive, sub := w.importOrder(other, available, visiting, visited)
		delete(visiting, target)
		for k, v := range sub {
			unresolved[k] = v
		}

		order = append(order, transitive...)
		order = append(order, other.mod)
		visited[target] = true
	}
	return order, unresolved
}
