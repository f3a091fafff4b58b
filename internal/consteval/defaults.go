package consteval

import (
	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/symtab"
)

// resolveDeclaredTypes implements §4.4 step 5: after every global const is
// known, resolve type aliases, every value symbol's declared type, and
// every extern-port / tree-parameter default, now that array-size and
// string-bound expressions can be evaluated.
func (e *Evaluator) resolveDeclaredTypes() {
	e.resolveAliases()

	for _, name := range e.mod.Tables.Root.Names() {
		sym, _ := e.mod.Tables.Root.LookupLocal(name)
		e.resolveValueSymbolType(sym)
	}
	for _, scope := range e.mod.Tables.TreeScopes {
		for _, name := range scope.Names() {
			sym, _ := scope.LookupLocal(name)
			e.resolveValueSymbolType(sym)
		}
	}
	e.resolveBlockScopeTypes(e.mod.Program.Decls)

	for _, nsym := range e.mod.Tables.Nodes {
		switch nsym.Kind {
		case symtab.ExternNodeSym:
			for i := range nsym.Ports {
				e.resolvePortInfo(&nsym.Ports[i])
			}
		case symtab.TreeSym:
			for i := range nsym.Params {
				e.resolveParamInfo(&nsym.Params[i])
			}
		}
	}
}

// resolveBlockScopeTypes walks every tree body resolving block-scope
// ValueSymbols' declared types (locals aren't reachable from TreeScopes,
// which only holds the parameter scope).
func (e *Evaluator) resolveBlockScopeTypes(decls []ast.Decl) {
	for _, d := range decls {
		tree, ok := d.(*ast.TreeDecl)
		if !ok {
			continue
		}
		bodyScope, ok := e.mod.Tables.BodyScopes[tree.Name]
		if !ok {
			continue
		}
		e.resolveScopeChainTypes(bodyScope)
	}
	for _, scope := range e.mod.Tables.ChildScopes {
		e.resolveScopeChainTypes(scope)
	}
}

func (e *Evaluator) resolveScopeChainTypes(scope *symtab.Scope) {
	for _, name := range scope.Names() {
		sym, _ := scope.LookupLocal(name)
		e.resolveValueSymbolType(sym)
	}
}

func (e *Evaluator) resolveAliases() {
	// Aliases may reference each other in any declaration order (only
	// cycles are an error); iterate to a fixed point bounded by the
	// number of alias symbols.
	for pass := 0; pass <= len(e.mod.Tables.Types); pass++ {
		progress := false
		for _, tsym := range e.mod.Tables.Types {
			if tsym.Kind != symtab.AliasType || tsym.Resolved != nil {
				continue
			}
			decl := tsym.Decl.(*ast.TypeAliasDecl)
			t := symtab.ResolveType(e.ctx, e.mod.Tables, e.bag, e, decl.Expr)
			if t != e.ctx.Error() {
				tsym.Resolved = t
				progress = true
			}
		}
		if !progress {
			break
		}
	}
}

func (e *Evaluator) resolveValueSymbolType(sym *symtab.ValueSymbol) {
	if sym.Type != nil {
		return
	}
	if sym.TypeExpr != nil {
		sym.Type = symtab.ResolveType(e.ctx, e.mod.Tables, e.bag, e, sym.TypeExpr)
	}
	// No annotation: left nil; the type checker (component 7) infers it
	// from the initializer and fills it in, matching §4.5's blackboard
	// declaration rule.
}

func (e *Evaluator) resolvePortInfo(p *symtab.PortInfo) {
	if p.Type == nil && p.TypeExpr != nil {
		p.Type = symtab.ResolveType(e.ctx, e.mod.Tables, e.bag, e, p.TypeExpr)
	}
	if p.Default == nil && p.DefaultExpr != nil && p.Type != nil {
		v := e.Eval(p.DefaultExpr)
		if !v.IsErrorValue() {
			v = e.castValue(v, p.Type, p.DefaultExpr.Range())
		}
		p.Default = v
	}
}

func (e *Evaluator) resolveParamInfo(p *symtab.ParamInfo) {
	if p.Type == nil && p.TypeExpr != nil {
		p.Type = symtab.ResolveType(e.ctx, e.mod.Tables, e.bag, e, p.TypeExpr)
	}
	if p.Default == nil && p.DefaultExpr != nil && p.Type != nil {
		v := e.Eval(p.DefaultExpr)
		if !v.IsErrorValue() {
			v = e.castValue(v, p.Type, p.DefaultExpr.Range())
		}
		p.Default = v
	}
}
