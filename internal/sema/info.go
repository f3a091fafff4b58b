// Package sema holds the side table that later passes attach to the AST
// built by internal/ast: resolved symbols, resolved types, evaluated
// constants, and resolved node symbols. spec.md §9 describes these as
// "back-pointers" carried directly on AST nodes and offers, for languages
// without interior mutability, the alternative used here: a side table,
// keyed here by AST node pointer. Keeping it in its own package (rather
// than fields on ast.Node) also breaks what would otherwise be an import
// cycle between internal/ast, internal/symtab and internal/types.
package sema

import (
	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/symtab"
	"github.com/btdsl/btdsl/internal/types"
)

// Info is the per-module side table. Every map is monotonic: once a pass
// sets an entry it is never overwritten by a later pass (matching the
// "single-assignment field" discipline spec.md §9 asks of a mutable-field
// design).
type Info struct {
	// ExprTypes records every expression's resolved semantic type, set by
	// the type checker (component 7). A present-but-ctx.Error() entry means
	// resolution was attempted and failed; a missing entry means the
	// expression was never reached (dead code, or an earlier pass aborted).
	ExprTypes map[ast.Expr]*types.Type

	// ValueUses records, for each *ast.VarRef and each assignment target
	// expression, the ValueSymbol the name resolved to. Set by the name
	// resolver (component 5).
	ValueUses map[ast.Expr]*symtab.ValueSymbol

	// NodeCalls records, for each *ast.NodeCallStmt, the NodeSymbol (extern
	// node or tree) its name resolved to. Set by the name resolver.
	NodeCalls map[*ast.NodeCallStmt]*symtab.NodeSymbol

	// ConstValues records the evaluated value of every const-valued
	// declaration and every constant-foldable expression the constant
	// evaluator visits (component 6): global/local const decls, array
	// sizes, string bounds, and port/parameter defaults.
	ConstValues map[ast.Node]*types.Value

	// TypeExprs records the resolved semantic type backing each syntactic
	// TypeNode, set by whichever pass first needs it (symtab.ResolveType's
	// callers cache their result here to avoid re-resolving array/string
	// bound constants downstream).
	TypeExprs map[ast.TypeNode]*types.Type
}

// NewInfo returns an empty side table.
func NewInfo() *Info {
	return &Info{
		ExprTypes:   make(map[ast.Expr]*types.Type),
		ValueUses:   make(map[ast.Expr]*symtab.ValueSymbol),
		NodeCalls:   make(map[*ast.NodeCallStmt]*symtab.NodeSymbol),
		ConstValues: make(map[ast.Node]*types.Value),
		TypeExprs:   make(map[ast.TypeNode]*types.Type),
	}
}

// TypeOf returns the resolved type of e, or ok=false if no pass has set one.
func (i *Info) TypeOf(e ast.Expr) (*types.Type, bool) {
	t, ok := i.ExprTypes[e]
	return t, ok
}

// SymbolOf returns the ValueSymbol a var-ref or assignment target resolved
// to, or ok=false if name resolution never ran or failed on e.
func (i *Info) SymbolOf(e ast.Expr) (*symtab.ValueSymbol, bool) {
	s, ok := i.ValueUses[e]
	return s, ok
}

// NodeSymbolOf returns the NodeSymbol a node-call statement resolved to.
func (i *Info) NodeSymbolOf(call *ast.NodeCallStmt) (*symtab.NodeSymbol, bool) {
	s, ok := i.NodeCalls[call]
	return s, ok
}

// ConstValueOf returns the evaluated constant value attached to n (a
// GlobalConstDecl, LocalConstDecl, or any constant-foldable Expr).
func (i *Info) ConstValueOf(n ast.Node) (*types.Value, bool) {
	v, ok := i.ConstValues[n]
	return v, ok
}
