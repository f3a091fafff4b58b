// Package typecheck implements component 7 of the middle-end: bidirectional
// type inference over the AST, with literal placeholder types and
// defaulting (§4.5).
package typecheck

import (
	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/consteval"
	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/internal/sema"
	"github.com/btdsl/btdsl/internal/symtab"
	"github.com/btdsl/btdsl/internal/types"
)

// Checker runs the type-checking pass for one Module. It must run after
// internal/consteval so every declared type and default is resolved.
type Checker struct {
	mod *sema.Module
	ctx *types.Context
	bag *diag.Bag

	// ce re-evaluates the rare constant sub-expression the checker itself
	// needs (an inline `as T[N]` cast or `[v; n]` repeat count appearing in
	// a statement body, rather than a declaration consteval already
	// visited). It shares the module's Info cache for LocalConst lookups.
	ce *consteval.Evaluator

	// written tracks, per tree, which writable (mut/out) parameters saw at
	// least one write, for the unused-writable-parameter warning.
	written map[*symtab.ValueSymbol]bool
}

// New returns a Checker for mod.
func New(mod *sema.Module, ctx *types.Context) *Checker {
	return &Checker{
		mod:     mod,
		ctx:     ctx,
		bag:     mod.Diagnostics,
		ce:      consteval.New(mod, ctx),
		written: make(map[*symtab.ValueSymbol]bool),
	}
}

// Run type-checks every tree body in the module.
func (c *Checker) Run() {
	for _, d := range c.mod.Program.Decls {
		tree, ok := d.(*ast.TreeDecl)
		if !ok {
			continue
		}
		c.checkTree(tree)
	}
}

func (c *Checker) checkTree(tree *ast.TreeDecl) {
	scope, ok := c.mod.Tables.BodyScopes[tree.Name]
	if !ok {
		return
	}
	c.checkStmts(tree.Body, scope)

	for _, p := range tree.Params {
		if p.Dir != ast.DirMut && p.Dir != ast.DirOut {
			continue
		}
		sym, ok := c.mod.Tables.TreeScopes[tree.Name].LookupLocal(p.Name)
		if ok && !c.written[sym] {
			c.bag.Warnf(diag.CodeType, p.Range(), "parameter %q is %s but never written in %q", p.Name, p.Dir, tree.Name)
		}
	}
}

func (c *Checker) setType(e ast.Expr, t *types.Type) *types.Type {
	c.mod.Info.ExprTypes[e] = t
	return t
}

// symbolOf returns the symbol a use site (var ref or assignment target) is
// bound to, as the name resolver recorded it in Info.ValueUses.
func (c *Checker) symbolOf(e ast.Expr) (*symtab.ValueSymbol, bool) {
	sym, ok := c.mod.Info.ValueUses[e]
	return sym, ok
}
