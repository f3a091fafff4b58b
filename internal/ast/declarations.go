package ast

import "github.com/btdsl/btdsl/internal/diag"

// ExternTypeDecl declares an opaque extern type: `extern type Vector3;`.
type ExternTypeDecl struct {
	base
	Name string
}

func (d *ExternTypeDecl) declNode() {}

func (a *Arena) NewExternTypeDecl(name string, r diag.Range) *ExternTypeDecl {
	return &ExternTypeDecl{base: a.newBase(r), Name: name}
}

// TypeAliasDecl declares `type Name = <type expr>;`.
type TypeAliasDecl struct {
	base
	Name string
	Expr TypeNode
}

func (d *TypeAliasDecl) declNode() {}

func (a *Arena) NewTypeAliasDecl(name string, expr TypeNode, r diag.Range) *TypeAliasDecl {
	return &TypeAliasDecl{base: a.newBase(r), Name: name, Expr: expr}
}

// NodeCategory classifies an extern node declaration.
type NodeCategory int

const (
	CategoryAction NodeCategory = iota
	CategoryCondition
	CategoryControl
	CategoryDecorator
	CategorySubtree
)

func (c NodeCategory) String() string {
	switch c {
	case CategoryAction:
		return "Action"
	case CategoryCondition:
		return "Condition"
	case CategoryControl:
		return "Control"
	case CategoryDecorator:
		return "Decorator"
	case CategorySubtree:
		return "Subtree"
	default:
		return "Unknown"
	}
}

// PortDirection is the direction of a node or tree parameter.
type PortDirection int

const (
	DirIn PortDirection = iota
	DirRef
	DirMut
	DirOut
)

func (d PortDirection) String() string {
	switch d {
	case DirIn:
		return "in"
	case DirRef:
		return "ref"
	case DirMut:
		return "mut"
	case DirOut:
		return "out"
	default:
		return "?"
	}
}

// ExternPort is one port in an extern node's signature.
type ExternPort struct {
	base
	Name      string
	Dir       PortDirection
	Type      TypeNode
	Default   Expr // nil if the port is required
}

func (a *Arena) NewExternPort(name string, dir PortDirection, typ TypeNode, def Expr, r diag.Range) *ExternPort {
	return &ExternPort{base: a.newBase(r), Name: name, Dir: dir, Type: typ, Default: def}
}

// ExternNodeDecl declares a node implemented outside the DSL:
// `extern action DoWork(in x: int32, out result: int32);`.
type ExternNodeDecl struct {
	base
	Name     string
	Category NodeCategory
	Ports    []*ExternPort
}

func (d *ExternNodeDecl) declNode() {}

func (a *Arena) NewExternNodeDecl(name string, cat NodeCategory, ports []*ExternPort, r diag.Range) *ExternNodeDecl {
	return &ExternNodeDecl{base: a.newBase(r), Name: name, Category: cat, Ports: ports}
}

// GlobalVarDecl declares a global blackboard variable:
// `var health: float32 = 100.0;`.
type GlobalVarDecl struct {
	base
	Name string
	Type TypeNode // nil if inferred from Init
	Init Expr     // nil if uninitialized
}

func (d *GlobalVarDecl) declNode() {}

func (a *Arena) NewGlobalVarDecl(name string, typ TypeNode, init Expr, r diag.Range) *GlobalVarDecl {
	return &GlobalVarDecl{base: a.newBase(r), Name: name, Type: typ, Init: init}
}

// GlobalConstDecl declares a compile-time global constant: `const N = 4;`.
type GlobalConstDecl struct {
	base
	Name string
	Type TypeNode // nil if inferred
	Expr Expr
}

func (d *GlobalConstDecl) declNode() {}

func (a *Arena) NewGlobalConstDecl(name string, typ TypeNode, expr Expr, r diag.Range) *GlobalConstDecl {
	return &GlobalConstDecl{base: a.newBase(r), Name: name, Type: typ, Expr: expr}
}

// ParamDecl is one parameter of a tree declaration.
type ParamDecl struct {
	base
	Name    string
	Dir     PortDirection
	Type    TypeNode
	Default Expr
}

func (a *Arena) NewParamDecl(name string, dir PortDirection, typ TypeNode, def Expr, r diag.Range) *ParamDecl {
	return &ParamDecl{base: a.newBase(r), Name: name, Dir: dir, Type: typ, Default: def}
}

// TreeDecl declares a behavior tree: `tree Main(in target: Vector3) { ... }`.
type TreeDecl struct {
	base
	Name    string
	Public  bool // derived from Name not starting with '_'
	Params  []*ParamDecl
	Body    []Stmt
}

func (d *TreeDecl) declNode() {}

func (a *Arena) NewTreeDecl(name string, params []*ParamDecl, body []Stmt, r diag.Range) *TreeDecl {
	return &TreeDecl{base: a.newBase(r), Name: name, Public: IsPublicName(name), Params: params, Body: body}
}

// IsPublicName implements the visibility rule of the specification: a name
// whose first character is '_' is private to its defining module.
func IsPublicName(name string) bool {
	return name == "" || name[0] != '_'
}
