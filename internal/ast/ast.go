package ast

import "github.com/btdsl/btdsl/internal/diag"

// Node is the base interface every AST node implements. Nodes are allocated
// once by the upstream AST builder and never copied by value afterward, so
// a *ConcreteNode's address is stable for the lifetime of its Module — the
// closest Go gets to the arena's pointer-identity guarantee (see
// internal/ast/arena.go for the piece of that guarantee this package does
// own: dense integer IDs, used as map keys in side tables downstream).
type Node interface {
	// ID is a dense, per-module-arena identity, assigned at construction.
	ID() NodeID
	// Range is the node's byte span in its source file.
	Range() diag.Range
}

// NodeID is a stable per-arena node identity.
type NodeID int

// base is embedded by every concrete node to provide ID/Range for free.
type base struct {
	id    NodeID
	rng   diag.Range
}

func (b *base) ID() NodeID       { return b.id }
func (b *base) Range() diag.Range { return b.rng }

// Expr is any node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any node that performs an action without itself producing a
// value (a node call, an assignment, a declaration inside a tree body).
type Stmt interface {
	Node
	stmtNode()
}

// Decl is any top-level declaration.
type Decl interface {
	Node
	declNode()
}

// TypeNode is any syntactic type expression (primary name, array, infer,
// nullable wrapper).
type TypeNode interface {
	Node
	typeNode()
}

// File is the root of one parsed source file: its declarations in source
// order. This is the `program` AST root the specification's Module wraps.
type File struct {
	base
	Path    string
	Imports []*Import
	Decls   []Decl
}

// Import is an `import "..."` declaration. Target is the raw spelled import
// string; resolution (relative vs. package spec) happens in
// internal/importresolve, not here.
type Import struct {
	base
	Target string
	Alias  string // "" when no `as` clause is present
}

func (d *Import) declNode() {}
