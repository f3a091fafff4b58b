package ast

import "github.com/btdsl/btdsl/internal/diag"

// DataPolicy is how a compound node's children outcomes combine into its
// own outcome.
type DataPolicy int

const (
	PolicyAll DataPolicy = iota
	PolicyAny
	PolicyNone
)

// FlowPolicy is whether a child's post-state is visible to its next sibling.
type FlowPolicy int

const (
	FlowChained FlowPolicy = iota
	FlowIsolated
)

// BehaviorAttr is the (DataPolicy, FlowPolicy) pair every node carries,
// defaulted by the node's category when not overridden in source.
type BehaviorAttr struct {
	Data DataPolicy
	Flow FlowPolicy
}

// PreconditionKind discriminates the five precondition forms.
type PreconditionKind int

const (
	PreGuard PreconditionKind = iota
	PreSuccessIf
	PreFailureIf
	PreSkipIf
	PreRunWhile
)

// Precondition is one `@guard(e)`-style attribute on a statement.
type Precondition struct {
	base
	Kind PreconditionKind
	Expr Expr
}

func (a *Arena) NewPrecondition(kind PreconditionKind, expr Expr, r diag.Range) *Precondition {
	return &Precondition{base: a.newBase(r), Kind: kind, Expr: expr}
}

// Argument is one `name: expr` or `name: out var x` actual argument in a
// node or tree call.
type Argument struct {
	base
	Port     string
	Value    Expr              // nil when InlineDecl is set
	Dir      PortDirection     // syntactic direction marker (in/ref/mut/out) given by the caller
	InlineVar *InlineBlackboardDecl // non-nil for `out var x`
}

func (a *Arena) NewArgument(port string, value Expr, dir PortDirection, inline *InlineBlackboardDecl, r diag.Range) *Argument {
	return &Argument{base: a.newBase(r), Port: port, Value: value, Dir: dir, InlineVar: inline}
}

// InlineBlackboardDecl is the `var x` part of an inline `out var x` argument;
// it introduces a new block-scope variable whose type is inferred from the
// port it's bound to.
type InlineBlackboardDecl struct {
	base
	Name string
}

func (a *Arena) NewInlineBlackboardDecl(name string, r diag.Range) *InlineBlackboardDecl {
	return &InlineBlackboardDecl{base: a.newBase(r), Name: name}
}

// NodeCallStmt is a leaf or compound node invocation: `Sequence { A(); B(); }`
// or `DoWork(x: in target, result: out var r);`. Children is empty for leaves.
type NodeCallStmt struct {
	base
	Name          string
	Args          []*Argument
	Children      []Stmt
	Preconditions []*Precondition
	Attr          BehaviorAttr
	AttrExplicit  bool // true if the source overrode the category default
}

func (s *NodeCallStmt) stmtNode() {}

func (a *Arena) NewNodeCallStmt(name string, args []*Argument, children []Stmt, pre []*Precondition, r diag.Range) *NodeCallStmt {
	return &NodeCallStmt{base: a.newBase(r), Name: name, Args: args, Children: children, Preconditions: pre}
}

// AssignTargetKind discriminates what an assignment writes to.
type AssignTargetKind int

const (
	TargetVar AssignTargetKind = iota
	TargetIndex
)

// AssignOp is the spelled assignment operator; compound forms desugar to
// the matching BinaryOp during type checking (§4.5).
type AssignOp int

const (
	AssignPlain AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
)

// AssignStmt is `target = expr;` or a compound form `target += expr;`.
type AssignStmt struct {
	base
	Target Expr // *VarRef or *IndexExpr
	Op     AssignOp
	Value  Expr
}

func (s *AssignStmt) stmtNode() {}

func (a *Arena) NewAssignStmt(target Expr, op AssignOp, value Expr, r diag.Range) *AssignStmt {
	return &AssignStmt{base: a.newBase(r), Target: target, Op: op, Value: value}
}

// BlackboardVarDecl is a local `var x: T = expr;` inside a tree body.
type BlackboardVarDecl struct {
	base
	Name string
	Type TypeNode // nil if inferred
	Init Expr     // nil if uninitialized
}

func (s *BlackboardVarDecl) stmtNode() {}

func (a *Arena) NewBlackboardVarDecl(name string, typ TypeNode, init Expr, r diag.Range) *BlackboardVarDecl {
	return &BlackboardVarDecl{base: a.newBase(r), Name: name, Type: typ, Init: init}
}

// LocalConstDecl is a local `const N = expr;` inside a tree body.
type LocalConstDecl struct {
	base
	Name string
	Type TypeNode
	Expr Expr
}

func (s *LocalConstDecl) stmtNode() {}

func (a *Arena) NewLocalConstDecl(name string, typ TypeNode, expr Expr, r diag.Range) *LocalConstDecl {
	return &LocalConstDecl{base: a.newBase(r), Name: name, Type: typ, Expr: expr}
}
