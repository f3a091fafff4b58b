// Package resolve implements component 5 of the middle-end: binding every
// identifier use (type name, node-call name, var reference, assignment
// target) to the symbol the symbol-table builder (internal/symtab) already
// registered, honoring import visibility and forward-reference rules.
package resolve

import (
	"fmt"

	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/internal/sema"
	"github.com/btdsl/btdsl/internal/symtab"
	"github.com/btdsl/btdsl/internal/types"
)

// Resolver binds names for one Module, consulting its DirectImports for
// cross-module lookups.
type Resolver struct {
	mod *sema.Module
	ctx *types.Context
	bag *diag.Bag

	reportedMissing map[string]bool
}

// New returns a Resolver for mod. ctx is needed to tell a builtin type name
// apart from one that must be searched for.
func New(mod *sema.Module, ctx *types.Context) *Resolver {
	return &Resolver{mod: mod, ctx: ctx, bag: mod.Diagnostics, reportedMissing: make(map[string]bool)}
}

// Run performs every resolution pass over the module in the order that lets
// later passes (type and node name merges) feed the value-use walk, which
// needs the final node table to resolve node-call statements.
func (r *Resolver) Run() {
	r.resolveTypeNames()
	r.resolveNodeNames()
	r.resolveValueUses()
}

// --- Type namespace -------------------------------------------------------

func (r *Resolver) resolveTypeNames() {
	for _, d := range r.mod.Program.Decls {
		switch dd := d.(type) {
		case *ast.GlobalVarDecl:
			r.bindTypeNode(dd.Type)
		case *ast.GlobalConstDecl:
			r.bindTypeNode(dd.Type)
		case *ast.TypeAliasDecl:
			r.bindTypeNode(dd.Expr)
		case *ast.ExternNodeDecl:
			for _, p := range dd.Ports {
				r.bindTypeNode(p.Type)
			}
		case *ast.TreeDecl:
			for _, p := range dd.Params {
				r.bindTypeNode(p.Type)
			}
			r.walkStmtsForTypes(dd.Body)
		}
	}
}

func (r *Resolver) walkStmtsForTypes(stmts []ast.Stmt) {
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.BlackboardVarDecl:
			r.bindTypeNode(st.Type)
		case *ast.LocalConstDecl:
			r.bindTypeNode(st.Type)
		case *ast.NodeCallStmt:
			for _, arg := range st.Args {
				if arg.Value != nil {
					r.bindTypeNodesInExpr(arg.Value)
				}
			}
			r.walkStmtsForTypes(st.Children)
		case *ast.AssignStmt:
			r.bindTypeNodesInExpr(st.Value)
		}
	}
}

// bindTypeNodesInExpr recurses into cast expressions, the only place a
// TypeNode can appear nested inside an expression.
func (r *Resolver) bindTypeNodesInExpr(e ast.Expr) {
	switch ex := e.(type) {
	case *ast.CastExpr:
		r.bindTypeNode(ex.Type)
		r.bindTypeNodesInExpr(ex.Operand)
	case *ast.BinaryExpr:
		r.bindTypeNodesInExpr(ex.LHS)
		r.bindTypeNodesInExpr(ex.RHS)
	case *ast.UnaryExpr:
		r.bindTypeNodesInExpr(ex.Operand)
	case *ast.IndexExpr:
		r.bindTypeNodesInExpr(ex.Base)
		r.bindTypeNodesInExpr(ex.Index)
	case *ast.ArrayLiteralExpr:
		for _, el := range ex.Elems {
			r.bindTypeNodesInExpr(el)
		}
	case *ast.ArrayRepeatExpr:
		r.bindTypeNodesInExpr(ex.Value)
		r.bindTypeNodesInExpr(ex.Count)
	case *ast.VecMacroExpr:
		for _, el := range ex.Elems {
			r.bindTypeNodesInExpr(el)
		}
	}
}

// bindTypeNode resolves a single PrimaryTypeNode's name (recursing into
// array element types) and, on a unique cross-module match, merges the
// found TypeSymbol into the local table so every later consumer of
// symtab.ResolveType sees it without re-running import search.
func (r *Resolver) bindTypeNode(node ast.TypeNode) {
	switch n := node.(type) {
	case nil, *ast.InferTypeNode:
		return
	case *ast.PrimaryTypeNode:
		if n.BoundedStringLen != nil {
			r.bindTypeNodesInExpr(n.BoundedStringLen)
		}
		if _, ok := r.ctx.LookupBuiltinByName(n.Name); ok {
			return
		}
		if _, ok := r.mod.Tables.Types[n.Name]; ok {
			return
		}
		r.resolveImportedType(n.Name, n.Range())
	case *ast.StaticArrayTypeNode:
		r.bindTypeNode(n.Elem)
		r.bindTypeNodesInExpr(n.Size)
	case *ast.DynamicArrayTypeNode:
		r.bindTypeNode(n.Elem)
	}
}

func (r *Resolver) resolveImportedType(name string, use diag.Range) {
	var matches []*symtab.TypeSymbol
	for _, imp := range r.mod.DirectImports {
		if imp == nil {
			continue
		}
		if sym, ok := imp.Tables.PublicTypes()[name]; ok {
			matches = append(matches, sym)
		}
	}
	switch len(matches) {
	case 0:
		r.reportMissing("type", name, use)
	case 1:
		r.mod.Tables.Types[name] = matches[0]
	default:
		r.bag.Errorf(diag.CodeResolution, use, "ambiguous type %q: found in multiple imported modules", name)
	}
}

// --- Node namespace --------------------------------------------------------

func (r *Resolver) resolveNodeNames() {
	for _, d := range r.mod.Program.Decls {
		tree, ok := d.(*ast.TreeDecl)
		if !ok {
			continue
		}
		r.walkStmtsForNodes(tree.Body)
	}
}

func (r *Resolver) walkStmtsForNodes(stmts []ast.Stmt) {
	for _, s := range stmts {
		call, ok := s.(*ast.NodeCallStmt)
		if !ok {
			continue
		}
		sym, found := r.mod.Tables.Nodes[call.Name]
		if !found {
			sym = r.resolveImportedNode(call.Name, call.Range())
		}
		if sym != nil {
			r.mod.Info.NodeCalls[call] = sym
		}
		r.walkStmtsForNodes(call.Children)
	}
}

func (r *Resolver) resolveImportedNode(name string, use diag.Range) *symtab.NodeSymbol {
	var matches []*symtab.NodeSymbol
	for _, imp := range r.mod.DirectImports {
		if imp == nil {
			continue
		}
		if sym, ok := imp.Tables.PublicNodes()[name]; ok {
			matches = append(matches, sym)
		}
	}
	switch len(matches) {
	case 0:
		r.reportMissing("node", name, use)
		return nil
	case 1:
		r.mod.Tables.Nodes[name] = matches[0]
		return matches[0]
	default:
		r.bag.Errorf(diag.CodeResolution, use, "ambiguous node %q: found in multiple imported modules", name)
		return nil
	}
}

// --- Value namespace --------------------------------------------------------

func (r *Resolver) resolveValueUses() {
	for _, d := range r.mod.Program.Decls {
		switch dd := d.(type) {
		case *ast.GlobalVarDecl:
			if dd.Init != nil {
				r.resolveExpr(dd.Init, r.mod.Tables.Root, dd.Range())
			}
		case *ast.GlobalConstDecl:
			r.resolveExpr(dd.Expr, r.mod.Tables.Root, dd.Range())
		case *ast.ExternNodeDecl:
			for _, p := range dd.Ports {
				if p.Default != nil {
					r.resolveExpr(p.Default, r.mod.Tables.Root, p.Range())
				}
			}
		case *ast.TreeDecl:
			for _, p := range dd.Params {
				if p.Default != nil {
					r.resolveExpr(p.Default, r.mod.Tables.Root, p.Range())
				}
			}
			scope, ok := r.mod.Tables.BodyScopes[dd.Name]
			if !ok {
				continue
			}
			r.resolveStmts(dd.Body, scope)
		}
	}
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt, scope *symtab.Scope) {
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.BlackboardVarDecl:
			if st.Init != nil {
				r.resolveExpr(st.Init, scope, st.Range())
			}
		case *ast.LocalConstDecl:
			r.resolveExpr(st.Expr, scope, st.Range())
		case *ast.AssignStmt:
			r.resolveExpr(st.Target, scope, st.Range())
			r.resolveExpr(st.Value, scope, st.Range())
		case *ast.NodeCallStmt:
			for _, pre := range st.Preconditions {
				r.resolveExpr(pre.Expr, scope, pre.Range())
			}
			for _, arg := range st.Args {
				if arg.Value != nil {
					r.resolveExpr(arg.Value, scope, arg.Range())
				}
			}
			if len(st.Children) > 0 {
				child, ok := r.mod.Tables.ChildScopes[st]
				if !ok {
					child = scope
				}
				r.resolveStmts(st.Children, child)
			}
		}
	}
}

// resolveExpr recurses through e resolving every VarRef and IndexExpr base
// to a ValueSymbol, recording the binding in the module's side table and
// enforcing the forward-reference rule.
func (r *Resolver) resolveExpr(e ast.Expr, scope *symtab.Scope, use diag.Range) {
	switch ex := e.(type) {
	case *ast.VarRef:
		r.bindValueRef(ex, ex.Name, scope, ex.Range())
	case *ast.BinaryExpr:
		r.resolveExpr(ex.LHS, scope, use)
		r.resolveExpr(ex.RHS, scope, use)
	case *ast.UnaryExpr:
		r.resolveExpr(ex.Operand, scope, use)
	case *ast.CastExpr:
		r.resolveExpr(ex.Operand, scope, use)
	case *ast.IndexExpr:
		r.resolveExpr(ex.Base, scope, use)
		r.resolveExpr(ex.Index, scope, use)
	case *ast.ArrayLiteralExpr:
		for _, el := range ex.Elems {
			r.resolveExpr(el, scope, use)
		}
	case *ast.ArrayRepeatExpr:
		r.resolveExpr(ex.Value, scope, use)
		r.resolveExpr(ex.Count, scope, use)
	case *ast.VecMacroExpr:
		for _, el := range ex.Elems {
			r.resolveExpr(el, scope, use)
		}
	}
}

func (r *Resolver) bindValueRef(node ast.Expr, name string, scope *symtab.Scope, use diag.Range) {
	if sym, ok := scope.Lookup(name); ok {
		r.checkForwardReference(sym, use)
		r.mod.Info.ValueUses[node] = sym
		return
	}
	sym := r.resolveImportedValue(name, use)
	if sym != nil {
		r.mod.Info.ValueUses[node] = sym
	}
}

// checkForwardReference implements §4.3: a reference before declaration to
// a non-const, non-global-const symbol in the same file is an error;
// forward references to global const are allowed (the const evaluator
// enforces acyclicity on those separately).
func (r *Resolver) checkForwardReference(sym *symtab.ValueSymbol, use diag.Range) {
	if sym.Kind == symtab.GlobalConst {
		return
	}
	if use.Start < sym.DeclRange.Start {
		r.bag.Errorf(diag.CodeResolution, use, "%q used before its declaration", sym.Name)
	}
}

func (r *Resolver) resolveImportedValue(name string, use diag.Range) *symtab.ValueSymbol {
	var matches []*symtab.ValueSymbol
	for _, imp := range r.mod.DirectImports {
		if imp == nil {
			continue
		}
		if sym, ok := imp.Tables.PublicValues()[name]; ok {
			matches = append(matches, sym)
		}
	}
	switch len(matches) {
	case 0:
		r.reportMissing("value", name, use)
		return nil
	case 1:
		return matches[0]
	default:
		r.bag.Errorf(diag.CodeResolution, use, "ambiguous identifier %q: found in multiple imported modules", name)
		return nil
	}
}

// reportMissing implements the "reported once" contract: the same missing
// name in the same namespace is only diagnosed the first time it is hit,
// letting the resolver keep binding the rest of the module.
func (r *Resolver) reportMissing(namespace, name string, use diag.Range) {
	key := fmt.Sprintf("%s:%s", namespace, name)
	if r.reportedMissing[key] {
		return
	}
	r.reportedMissing[key] = true
	r.bag.Errorf(diag.CodeResolution, use, "undefined %s %q", namespace, name)
}
