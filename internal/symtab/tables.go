package symtab

import "github.com/btdsl/btdsl/internal/ast"

// Tables is the full set of symbol tables for one module: the root value
// scope (from which every tree's parameter/block scopes hang) plus the
// flat type and node namespaces.
type Tables struct {
	Root  *Scope
	Types map[string]*TypeSymbol
	Nodes map[string]*NodeSymbol

	// TreeScopes maps a tree declaration's name to the parameter scope the
	// builder opened for it, so later passes (resolver, CFG builder) can
	// re-enter the same scope chain without re-walking the AST.
	TreeScopes map[string]*Scope

	// BodyScopes maps a tree declaration's name to the block scope opened
	// directly under its parameter scope for the tree's top-level body.
	BodyScopes map[string]*Scope

	// ChildScopes maps a compound *ast.NodeCallStmt (one with children) to
	// the block scope the builder opened for those children, so the
	// resolver and CFG builder can re-enter it without re-walking.
	ChildScopes map[*ast.NodeCallStmt]*Scope
}

// NewTables returns empty Tables with a fresh root scope.
func NewTables() *Tables {
	return &Tables{
		Root:        NewRootScope(),
		Types:       make(map[string]*TypeSymbol),
		Nodes:       make(map[string]*NodeSymbol),
		TreeScopes:  make(map[string]*Scope),
		BodyScopes:  make(map[string]*Scope),
		ChildScopes: make(map[*ast.NodeCallStmt]*Scope),
	}
}

// PublicTypes returns every public type symbol, for cross-module lookup.
func (t *Tables) PublicTypes() map[string]*TypeSymbol {
	return filterPublic(t.Types)
}

// PublicNodes returns every public node symbol, for cross-module lookup.
func (t *Tables) PublicNodes() map[string]*NodeSymbol {
	return filterPublic(t.Nodes)
}

// PublicValues returns every public global value symbol (globals and
// global consts only — parameters/locals are never visible cross-module).
func (t *Tables) PublicValues() map[string]*ValueSymbol {
	out := make(map[string]*ValueSymbol)
	for _, name := range t.Root.Names() {
		if isPrivate(name) {
			continue
		}
		sym, _ := t.Root.LookupLocal(name)
		out[name] = sym
	}
	return out
}

func isPrivate(name string) bool {
	return name != "" && name[0] == '_'
}

func filterPublic[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for name, v := range m {
		if isPrivate(name) {
			continue
		}
		out[name] = v
	}
	return out
}
