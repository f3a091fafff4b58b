package sema

import (
	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/internal/symtab"
)

// Module is one compiled file plus everything the pipeline hangs off it,
// matching spec.md §3's Module tuple: {file_id, ast_arena, parse_diagnostics,
// program, type_table, node_registry, symbol_table, direct_imports}. "Type
// table" and "node registry" are folded into symtab.Tables (components 3/4
// keep all three namespaces in one struct); Info is the side table described
// in info.go, added to the tuple because this is a Go rework of the
// reference back-pointer design rather than a literal field-for-field port.
type Module struct {
	FileID           string // canonical import path, also the map key in a Graph
	Arena            *ast.Arena
	ParseDiagnostics *diag.Bag
	Program          *ast.File
	Tables           *symtab.Tables
	Info             *Info

	// DirectImports maps each import's spelled target to the Module it
	// resolved to. Populated by internal/importresolve before the name
	// resolver runs; nil entries mean the import itself failed to resolve
	// (reported as an Import-category diagnostic, not retried per use).
	DirectImports map[string]*Module

	// Diagnostics accumulates everything components 4 onward report for
	// this module. ParseDiagnostics stays separate because it is produced
	// upstream of this package, before a Module even exists.
	Diagnostics *diag.Bag
}

// NewModule wraps a freshly parsed file into a Module ready for the
// symbol-table builder (component 4). ParseDiagnostics is carried in as-is
// from the upstream AST builder (outside this module's scope, per spec.md
// §1 "deliberately external").
func NewModule(fileID string, arena *ast.Arena, program *ast.File, parseDiags *diag.Bag) *Module {
	return &Module{
		FileID:           fileID,
		Arena:            arena,
		ParseDiagnostics: parseDiags,
		Program:          program,
		Tables:           symtab.NewTables(),
		Info:             NewInfo(),
		DirectImports:    make(map[string]*Module),
		Diagnostics:      diag.NewBag(),
	}
}

// AllDiagnostics returns parse and analysis diagnostics together, in the
// order parse ran before analysis.
func (m *Module) AllDiagnostics() []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, m.ParseDiagnostics.Len()+m.Diagnostics.Len())
	out = append(out, m.ParseDiagnostics.Items()...)
	out = append(out, m.Diagnostics.Items()...)
	return out
}

// Graph collects every Module in a compilation by canonical path, per
// spec.md §2 ("A module graph collects modules by canonical path").
type Graph struct {
	Modules map[string]*Module
}

// NewGraph returns an empty module graph.
func NewGraph() *Graph {
	return &Graph{Modules: make(map[string]*Module)}
}

// Add registers m under its FileID.
func (g *Graph) Add(m *Module) {
	g.Modules[m.FileID] = m
}

// Lookup finds a module by canonical path.
func (g *Graph) Lookup(fileID string) (*Module, bool) {
	m, ok := g.Modules[fileID]
	return m, ok
}
