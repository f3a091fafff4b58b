// Package symtab implements the three disjoint symbol namespaces (value,
// type, node) and their scope chain, plus the symbol-table builder that
// populates them from an AST (components 3 and 4 of the middle-end).
package symtab

import (
	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/internal/types"
)

// ValueKind classifies a value-space symbol.
type ValueKind int

const (
	GlobalVariable ValueKind = iota
	GlobalConst
	Parameter
	LocalVariable
	BlockVariable
	LocalConst
)

// ValueSymbol is a symbol in the value namespace.
type ValueSymbol struct {
	Name     string
	Kind     ValueKind
	Decl     ast.Node
	DeclRange diag.Range
	// TypeExpr is the syntactic type annotation, if any (nil when the type
	// must be inferred from an initializer). Resolved to Type by the
	// constant evaluator's "Defaults & preconditions" step (§4.4), which is
	// the first pass able to evaluate array-size/string-bound expressions.
	TypeExpr ast.TypeNode
	Type     *types.Type
	Writable bool
	Const    bool
	Module   string // canonical path of the defining module, for visibility checks
}

// IsGlobal reports whether the symbol lives in module (root) scope.
func (s *ValueSymbol) IsGlobal() bool {
	return s.Kind == GlobalVariable || s.Kind == GlobalConst
}

// TypeSymbolKind classifies a type-space symbol.
type TypeSymbolKind int

const (
	BuiltinType TypeSymbolKind = iota
	ExternType
	AliasType
)

// TypeSymbol is a symbol in the type namespace.
type TypeSymbol struct {
	Name      string
	Kind      TypeSymbolKind
	Decl      ast.Node
	DeclRange diag.Range
	Resolved  *types.Type // nil until the alias's target is resolved
	Module    string
}

// NodeSymbolKind classifies a node-space symbol.
type NodeSymbolKind int

const (
	ExternNodeSym NodeSymbolKind = iota
	TreeSym
)

// PortInfo describes one port of an extern node, post constant evaluation
// of its default.
type PortInfo struct {
	Name        string
	Dir         ast.PortDirection
	TypeExpr    ast.TypeNode
	DefaultExpr ast.Expr // nil if required
	Type        *types.Type
	Default     *types.Value // nil if required, resolved by the constant evaluator
	Decl        *ast.ExternPort
}

// ParamInfo describes one parameter of a tree, post constant evaluation of
// its default.
type ParamInfo struct {
	Name        string
	Dir         ast.PortDirection
	TypeExpr    ast.TypeNode
	DefaultExpr ast.Expr
	Type        *types.Type
	Default     *types.Value
	Decl        *ast.ParamDecl
}

// NodeSymbol is a symbol in the node namespace: an extern node or a tree.
type NodeSymbol struct {
	Name      string
	Kind      NodeSymbolKind
	Decl      ast.Node
	DeclRange diag.Range
	Category  ast.NodeCategory // meaningful for ExternNodeSym
	Ports     []PortInfo       // meaningful for ExternNodeSym
	Params    []ParamInfo      // meaningful for TreeSym
	Module    string
}

// PortOrParam returns the port (extern node) or parameter (tree) called
// name in a namespace-agnostic shape, or ok=false if there is none.
func (n *NodeSymbol) PortOrParam(name string) (dir ast.PortDirection, typ *types.Type, def *types.Value, ok bool) {
	switch n.Kind {
	case ExternNodeSym:
		for _, p := range n.Ports {
			if p.Name == name {
				return p.Dir, p.Type, p.Default, true
			}
		}
	case TreeSym:
		for _, p := range n.Params {
			if p.Name == name {
				return p.Dir, p.Type, p.Default, true
			}
		}
	}
	return 0, nil, nil, false
}

// PortNames returns every port/parameter name in declaration order.
func (n *NodeSymbol) PortNames() []string {
	switch n.Kind {
	case ExternNodeSym:
		names := make([]string, len(n.Ports))
		for i, p := range n.Ports {
			names[i] = p.Name
		}
		return names
	case TreeSym:
		names := make([]string, len(n.Params))
		for i, p := range n.Params {
			names[i] = p.Name
		}
		return names
	default:
		return nil
	}
}
