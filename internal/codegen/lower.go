package codegen

import (
	"fmt"

	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/sema"
	"github.com/btdsl/btdsl/internal/symtab"
	"github.com/btdsl/btdsl/internal/types"
)

// treeLowerer lowers one tree's body to a single root *elem, tracking the
// extern node models and parameterized tree models it touched along the
// way so the caller can fold them into the document's TreeNodesModel.
type treeLowerer struct {
	mod      *sema.Module
	g        *generator
	r        *renderer
	usedNode map[*symtab.NodeSymbol]bool
}

func newTreeLowerer(mod *sema.Module, g *generator) *treeLowerer {
	return &treeLowerer{mod: mod, g: g, r: newRenderer(mod, g.keys), usedNode: make(map[*symtab.NodeSymbol]bool)}
}

// lowerTree lowers a tree's body into the single root element a
// <BehaviorTree> requires, wrapping in an implicit Sequence when the body
// has more than one top-level statement (the body is itself an implicit
// All/Chained sequence, per §4.6).
func (tl *treeLowerer) lowerTree(tree *ast.TreeDecl) *elem {
	children := tl.lowerStmts(tree.Body)
	if len(children) == 1 {
		return children[0]
	}
	seq := newElem("Sequence")
	seq.addChildren(children)
	return seq
}

// lowerStmts lowers a statement list to a slice of self-contained elements
// (pre-Scripts already folded into a wrapping Sequence where needed), one
// per statement, preserving source order.
func (tl *treeLowerer) lowerStmts(stmts []ast.Stmt) []*elem {
	out := make([]*elem, 0, len(stmts))
	for _, s := range stmts {
		if e := tl.lowerStmt(s); e != nil {
			out = append(out, e)
		}
	}
	return out
}

// lowerStmt lowers one statement to a single element. When lowering it
// needed a pre-Script (a lifted complex expression, a null-to-unset
// rewrite, an inline out-var initializer), the pre-Scripts and the main
// element are folded into an implicit wrapping <Sequence> so the unit
// behaves as one child no matter which data/flow policy its parent uses:
// the pre-Scripts always succeed, so the wrapper's outcome is exactly the
// main element's outcome.
func (tl *treeLowerer) lowerStmt(s ast.Stmt) *elem {
	switch st := s.(type) {
	case *ast.NodeCallStmt:
		return tl.lowerNodeCall(st)
	case *ast.AssignStmt:
		return tl.wrap(tl.lowerAssign(st))
	case *ast.BlackboardVarDecl:
		return tl.wrap(tl.lowerVarDecl(st))
	case *ast.LocalConstDecl:
		return tl.wrap(tl.lowerLocalConst(st))
	default:
		return nil
	}
}

// wrap folds any pending pre-Scripts and a single main element into an
// implicit Sequence, or returns main unchanged if nothing is pending.
func (tl *treeLowerer) wrap(main *elem) *elem {
	pre := tl.r.drain()
	if len(pre) == 0 {
		return main
	}
	seq := newElem("Sequence")
	seq.addChildren(pre)
	seq.addChild(main)
	return seq
}

func (tl *treeLowerer) lowerAssign(st *ast.AssignStmt) *elem {
	if _, isNull := st.Value.(*ast.NullLiteral); isNull {
		key := tl.r.targetKey(st.Target)
		return newElem("UnsetBlackboard").setAttr("key", key)
	}
	lhs := tl.r.codeExpr(st.Target)
	rhs := tl.r.codeExpr(st.Value)
	if st.Op != ast.AssignPlain {
		rhs = fmt.Sprintf("(%s %s %s)", lhs, compoundOp(st.Op), rhs)
	}
	return newElem("Script").setAttr("code", lhs+" := "+rhs)
}

func compoundOp(op ast.AssignOp) string {
	switch op {
	case ast.AssignAdd:
		return "+"
	case ast.AssignSub:
		return "-"
	case ast.AssignMul:
		return "*"
	case ast.AssignDiv:
		return "/"
	case ast.AssignMod:
		return "%"
	default:
		return "?"
	}
}

func (tl *treeLowerer) lowerVarDecl(st *ast.BlackboardVarDecl) *elem {
	sym := tl.g.declSym[st]
	if sym == nil || st.Init == nil {
		// Declarations without an initializer produce no runtime effect;
		// the blackboard entry springs into existence on first write.
		return newElem("AlwaysSuccess")
	}
	key := tl.r.localKey(sym)
	return newElem("Script").setAttr("code", key+" := "+tl.r.codeExpr(st.Init))
}

func (tl *treeLowerer) lowerLocalConst(st *ast.LocalConstDecl) *elem {
	sym := tl.g.declSym[st]
	key := st.Name
	if sym != nil {
		key = tl.r.localKey(sym)
	}
	if v, ok := tl.mod.Info.ConstValueOf(st); ok {
		return newElem("Script").setAttr("code", key+" := "+literalText(v))
	}
	return newElem("Script").setAttr("code", key+" := "+tl.r.codeExpr(st.Expr))
}

// lowerNodeCall lowers one node or tree call, applying preconditions and
// folding inline out-var initializers and argument-expression pre-Scripts
// into the implicit wrapping Sequence the guard desugaring (or plain
// lifting) may need.
func (tl *treeLowerer) lowerNodeCall(st *ast.NodeCallStmt) *elem {
	sym, ok := tl.mod.Info.NodeSymbolOf(st)
	if !ok {
		return newElem("AlwaysFailure")
	}
	tl.usedNode[sym] = true

	var inlinePre []*elem
	main := newElem(elementName(sym))
	if sym.Kind == symtab.TreeSym {
		main.setAttr("ID", tl.g.subtreeID(sym))
	}

	for _, arg := range st.Args {
		if arg.InlineVar != nil {
			ivSym := tl.g.declSym[arg.InlineVar]
			key := arg.InlineVar.Name
			if ivSym != nil {
				key = tl.r.localKey(ivSym)
			}
			_, typ, _, _ := sym.PortOrParam(arg.Port)
			inlinePre = append(inlinePre, newElem("Script").setAttr("code", key+" := "+defaultLiteralForType(typ)))
			main.setAttr(arg.Port, "{"+key+"}")
			continue
		}
		if arg.Dir == ast.DirOut {
			main.setAttr(arg.Port, tl.r.targetKey(arg.Value))
			continue
		}
		main.setAttr(arg.Port, tl.r.attrExpr(arg.Value))
		inlinePre = append(inlinePre, tl.r.drain()...)
	}
	// Materialize omitted ports/parameters that carry a default (§4.10).
	for _, name := range sym.PortNames() {
		if hasArg(st.Args, name) {
			continue
		}
		_, _, def, ok := sym.PortOrParam(name)
		if !ok || def == nil {
			continue
		}
		main.setAttr(name, attrLiteralFromValue(def))
	}

	if len(st.Children) > 0 {
		children := tl.lowerStmts(st.Children)
		if sym.Kind == symtab.ExternNodeSym && sym.Category == ast.CategoryDecorator && len(children) > 1 {
			seq := newElem("Sequence")
			seq.addChildren(children)
			main.addChild(seq)
		} else {
			main.addChildren(children)
		}
	}

	main = tl.applyPreconditions(main, st.Preconditions)
	inlinePre = append(inlinePre, tl.r.drain()...)

	if len(inlinePre) == 0 {
		return main
	}
	seq := newElem("Sequence")
	seq.addChildren(inlinePre)
	seq.addChild(main)
	return seq
}

// applyPreconditions sets the direct-attribute preconditions on main and,
// if a @guard is present, desugars it into a wrapping Sequence plus an
// AlwaysSuccess sibling (§4.10, end-to-end scenario 2).
func (tl *treeLowerer) applyPreconditions(main *elem, pres []*ast.Precondition) *elem {
	var guard *ast.Precondition
	for _, p := range pres {
		switch p.Kind {
		case ast.PreSuccessIf:
			main.setAttr("_successIf", tl.r.attrExpr(p.Expr))
		case ast.PreFailureIf:
			main.setAttr("_failureIf", tl.r.attrExpr(p.Expr))
		case ast.PreSkipIf:
			main.setAttr("_skipIf", tl.r.attrExpr(p.Expr))
		case ast.PreRunWhile:
			main.setAttr("_while", tl.r.attrExpr(p.Expr))
		case ast.PreGuard:
			guard = p
		}
	}
	if guard == nil {
		return main
	}
	cond := tl.r.attrExpr(guard.Expr)
	pre := tl.r.drain()
	main.setAttr("_while", cond)
	always := newElem("AlwaysSuccess").setAttr("_failureIf", "!("+cond+")")
	seq := newElem("Sequence")
	seq.addChildren(pre)
	seq.addChild(main)
	seq.addChild(always)
	return seq
}

func hasArg(args []*ast.Argument, port string) bool {
	for _, a := range args {
		if a.Port == port {
			return true
		}
	}
	return false
}

// elementName is the XML tag for a node call: the declared node's name,
// or "SubTree" for a tree call.
func elementName(sym *symtab.NodeSymbol) string {
	if sym.Kind == symtab.TreeSym {
		return "SubTree"
	}
	return sym.Name
}

// targetKey resolves an assignment/out-argument target expression
// (*ast.VarRef or *ast.IndexExpr) to its bracketed blackboard reference.
func (r *renderer) targetKey(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.VarRef:
		sym, ok := r.mod.Info.SymbolOf(ex)
		if !ok {
			return "{" + ex.Name + "}"
		}
		return "{" + r.refKey(sym) + "}"
	case *ast.IndexExpr:
		return "{" + r.codeExpr(ex) + "}"
	default:
		return "{}"
	}
}

// literalText renders a constant Value's BT.CPP script/attribute spelling.
func literalText(v *types.Value) string {
	if v == nil {
		return ""
	}
	switch {
	case types.IsSignedInteger(v.Type) || v.Type.Kind() == types.KindLiteralInt:
		return fmt.Sprintf("%d", v.Int)
	case types.IsInteger(v.Type):
		return fmt.Sprintf("%d", v.Uint)
	case types.IsFloat(v.Type):
		return fmt.Sprintf("%g", v.Float)
	case types.IsString(v.Type):
		return quoteScriptString(v.Str)
	case v.Type.Kind() == types.KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case v.Type.Kind() == types.KindLiteralNull:
		return "null"
	case types.IsArray(v.Type):
		s := "["
		for i, el := range v.Elems {
			if i > 0 {
				s += ", "
			}
			s += literalText(el)
		}
		return s + "]"
	default:
		return ""
	}
}

// attrLiteralFromValue is literalText's attribute-context counterpart: a
// null default unsets the port's blackboard key instead of spelling the
// word "null", mirroring the `x = null` → UnsetBlackboard rule.
func attrLiteralFromValue(v *types.Value) string {
	if v != nil && v.Type.Kind() == types.KindLiteralNull {
		return "{}"
	}
	return literalText(v)
}

// defaultLiteralForType is the zero value an inline `out var x` lowers to
// (§4.10, end-to-end scenario 4).
func defaultLiteralForType(t *types.Type) string {
	if t == nil {
		return "0"
	}
	switch {
	case types.IsFloat(t):
		return "0.0"
	case types.IsInteger(t):
		return "0"
	case t.Kind() == types.KindBool:
		return "false"
	case types.IsString(t):
		return "''"
	case types.IsNullable(t):
		return "null"
	default:
		return "0"
	}
}
