package btdsl

import (
	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/cfg"
	"github.com/btdsl/btdsl/internal/codegen"
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

// Options controls one Compile run (§6).
type Options struct {
	// SingleOutput walks SubTree calls transitively across modules into one
	// document per entry file, mangling imported tree IDs (§4.10). When
	// false, each entry file gets its own per-module document.
	SingleOutput bool
	// EntryTree names the tree main_tree_to_execute points at (and, in
	// single-output mode, the transitive walk's root). Empty selects the
	// first public tree declared in each entry file.
	EntryTree string
	// PackagePaths are directory roots searched for `bt-dsl-pkg://` import
	// specs (internal/importresolve).
	PackagePaths []string
}

// Result is one Compile call's output: the generated XML document for every
// requested entry file, keyed by the path exactly as passed in files.
type Result struct {
	Artifacts map[string]string
}

// Compile runs the full middle-end over files and every module they
// transitively import, then lowers each entry file to BT.CPP XML via
// internal/codegen. Diagnostics from every module touched — entries and
// their imports alike — are merged into the returned bag; Compile skips
// XML generation entirely if the merged bag contains any error, since a
// diagnosed module's AST cannot be trusted for lowering.
func Compile(files []string, opts Options) (Result, *diag.Bag) {
	bag := diag.NewBag()
	loader := newGraphLoader(opts)

	entries := make([]*sema.Module, 0, len(files))
	entryKey := make(map[*sema.Module]string, len(files))
	for _, f := range files {
		cpath, err := canonicalPath(f)
		if err != nil {
			bag.Errorf(diag.CodeInternal, diag.Range{}, "resolving %s: %v", f, err)
			continue
		}
		mod, err := loader.load(cpath)
		if err != nil {
			bag.Errorf(diag.CodeInternal, diag.Range{}, "%v", err)
			continue
		}
		entries = append(entries, mod)
		entryKey[mod] = f
	}

	runPipeline(loader.order, entries)

	for _, mod := range loader.order {
		bag.Extend(mod.ParseDiagnostics)
		bag.Extend(mod.Diagnostics)
	}

	result := Result{Artifacts: make(map[string]string)}
	if bag.HasErrors() {
		return result, bag
	}

	for _, entry := range entries {
		key := entryKey[entry]
		if opts.SingleOutput {
			entryTree := opts.EntryTree
			if entryTree == "" {
				entryTree = firstPublicTreeName(entry)
			}
			xml, err := codegen.GenerateSingleOutput(entry, entryTree)
			if err != nil {
				bag.Errorf(diag.CodeInternal, diag.Range{}, "%s: %v", key, err)
				continue
			}
			result.Artifacts[key] = xml
			continue
		}
		result.Artifacts[key] = codegen.Generate(entry, codegen.Options{EntryTree: opts.EntryTree})
	}
	return result, bag
}

// firstPublicTreeName picks the same tree codegen.Generate would default to
// on its own, in source order (map iteration over mod.Tables.Nodes would be
// nondeterministic, which the generator's determinism property forbids).
func firstPublicTreeName(mod *sema.Module) string {
	var firstAny string
	for _, d := range mod.Program.Decls {
		tree, ok := d.(*ast.TreeDecl)
		if !ok {
			continue
		}
		if tree.Public {
			return tree.Name
		}
		if firstAny == "" {
			firstAny = tree.Name
		}
	}
	return firstAny
}

// runPipeline walks every pass over the module graph in dependency order
// (order already holds imports before importers, from graphLoader), then
// runs the whole-reachable-graph recursion check once per requested entry
// (internal/recursion must see an entry's transitive imports already
// symbol-tabled and resolved).
func runPipeline(order []*sema.Module, entries []*sema.Module) {
	ctx := types.NewContext()

	for _, mod := range order {
		if mod.Program == nil {
			continue
		}
		symtab.NewBuilder(mod.Tables, mod.Diagnostics, mod.FileID).Build(mod.Program)
	}
	for _, mod := range order {
		if mod.Program == nil {
			continue
		}
		resolve.New(mod, ctx).Run()
	}
	for _, entry := range entries {
		if entry.Program == nil {
			continue
		}
		recursion.New(entry).Run()
	}
	for _, mod := range order {
		if mod.Program == nil {
			continue
		}
		consteval.New(mod, ctx).Run()
		typecheck.New(mod, ctx).Run()
	}

	imported := make(map[*symtab.NodeSymbol]*initsafety.Summary)
	for _, mod := range order {
		if mod.Program == nil {
			continue
		}
		forest := cfg.New().Build(mod.Program)
		isc := initsafety.New(mod, forest, imported)
		isc.Run()
		for sym, summary := range isc.Summaries() {
			imported[sym] = summary
		}
		nullsafety.New(mod, forest).Run()
	}
}
