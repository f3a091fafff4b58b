package ast

import "github.com/btdsl/btdsl/internal/diag"

// PrimaryTypeNode is a bare type name reference: a builtin, an extern type,
// or an alias. Nullable is true for the `T?` spelling.
type PrimaryTypeNode struct {
	base
	Name     string
	Nullable bool
	// BoundedStringLen is non-nil for `string<N>`, holding N's expression so
	// the constant evaluator can resolve it (§4.4 "Defaults & preconditions").
	BoundedStringLen Expr
}

func (t *PrimaryTypeNode) typeNode() {}

func (a *Arena) NewPrimaryTypeNode(name string, nullable bool, boundedLen Expr, r diag.Range) *PrimaryTypeNode {
	return &PrimaryTypeNode{base: a.newBase(r), Name: name, Nullable: nullable, BoundedStringLen: boundedLen}
}

// StaticArrayTypeNode is `T[N]` (Exact) or `T[max N]` (Max).
type StaticArrayTypeNode struct {
	base
	Elem     TypeNode
	Kind     ArrayKindNode
	Size     Expr
	Nullable bool
}

// ArrayKindNode mirrors types.ArrayKind at the syntax level (kept separate
// so this package doesn't need to import internal/types).
type ArrayKindNode int

const (
	ArrayExact ArrayKindNode = iota
	ArrayMax
)

func (t *StaticArrayTypeNode) typeNode() {}

func (a *Arena) NewStaticArrayTypeNode(elem TypeNode, kind ArrayKindNode, size Expr, nullable bool, r diag.Range) *StaticArrayTypeNode {
	return &StaticArrayTypeNode{base: a.newBase(r), Elem: elem, Kind: kind, Size: size, Nullable: nullable}
}

// DynamicArrayTypeNode is `vec<T>`.
type DynamicArrayTypeNode struct {
	base
	Elem     TypeNode
	Nullable bool
}

func (t *DynamicArrayTypeNode) typeNode() {}

func (a *Arena) NewDynamicArrayTypeNode(elem TypeNode, nullable bool, r diag.Range) *DynamicArrayTypeNode {
	return &DynamicArrayTypeNode{base: a.newBase(r), Elem: elem, Nullable: nullable}
}

// InferTypeNode is the `_` placeholder type, valid only where the checker
// can fill it in from context (e.g. an array-literal element position).
type InferTypeNode struct {
	base
}

func (t *InferTypeNode) typeNode() {}

func (a *Arena) NewInferTypeNode(r diag.Range) *InferTypeNode {
	return &InferTypeNode{base: a.newBase(r)}
}
