package typecheck

import (
	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/internal/symtab"
	"github.com/btdsl/btdsl/internal/types"
)

func (c *Checker) checkStmts(stmts []ast.Stmt, scope *symtab.Scope) {
	for _, s := range stmts {
		c.checkStmt(s, scope)
	}
}

func (c *Checker) checkStmt(s ast.Stmt, scope *symtab.Scope) {
	switch st := s.(type) {
	case *ast.BlackboardVarDecl:
		c.checkBlackboardDecl(st, scope)
	case *ast.LocalConstDecl:
		// Typed by internal/consteval; nothing further for the checker.
	case *ast.AssignStmt:
		c.checkAssign(st, scope)
	case *ast.NodeCallStmt:
		c.checkNodeCall(st, scope)
	}
}

func (c *Checker) checkBlackboardDecl(d *ast.BlackboardVarDecl, scope *symtab.Scope) {
	sym, ok := scope.LookupLocal(d.Name)
	if !ok {
		return
	}
	switch {
	case d.Type != nil && d.Init != nil:
		c.Check(d.Init, sym.Type)
	case d.Type != nil:
		// Annotation only: sym.Type already resolved by consteval.
	case d.Init != nil:
		sym.Type = c.Synthesize(d.Init)
	default:
		c.bag.Errorf(diag.CodeType, d.Range(), "variable %q needs a type annotation or an initializer", d.Name)
		sym.Type = c.ctx.Error()
	}
}

func (c *Checker) checkAssign(st *ast.AssignStmt, scope *symtab.Scope) {
	targetType, writable := c.lvalueType(st.Target, scope)
	if targetType == nil {
		c.bag.Errorf(diag.CodeType, st.Target.Range(), "assignment target is not an lvalue")
		c.Synthesize(st.Value)
		return
	}
	if !writable {
		c.bag.Errorf(diag.CodeType, st.Target.Range(), "cannot assign to a non-writable value")
	}
	if st.Op == ast.AssignPlain {
		c.Check(st.Value, targetType)
		return
	}
	// Compound assignment desugars to the binary form of the operator
	// (§4.5): check the RHS against the target type's arithmetic result.
	rhsType := c.Synthesize(st.Value)
	if types.IsError(targetType) || types.IsError(rhsType) {
		return
	}
	if !types.IsNumeric(targetType) || !types.IsNumeric(rhsType) {
		if st.Op == ast.AssignAdd && types.IsString(targetType) && types.IsString(rhsType) {
			return
		}
		c.bag.Errorf(diag.CodeType, st.Range(), "compound assignment requires numeric operands")
	}
}

// lvalueType resolves the type of an assignment target and whether it is
// writable: a var ref or index expression rooted at a writable variable or
// an out/ref/mut parameter (§4.5).
func (c *Checker) lvalueType(e ast.Expr, scope *symtab.Scope) (*types.Type, bool) {
	switch ex := e.(type) {
	case *ast.VarRef:
		sym, ok := c.symbolOf(ex)
		if !ok {
			return nil, false
		}
		c.mod.Info.ExprTypes[ex] = sym.Type
		if sym.Kind == symtab.Parameter {
			c.written[sym] = true
		}
		return sym.Type, sym.Writable
	case *ast.IndexExpr:
		baseType, writable := c.lvalueType(ex.Base, scope)
		if baseType == nil || !types.IsArray(baseType) {
			c.Synthesize(ex.Index)
			return nil, false
		}
		it := c.Synthesize(ex.Index)
		if !types.IsError(it) && !types.IsInteger(it) {
			c.bag.Errorf(diag.CodeType, ex.Index.Range(), "array index must be an integer")
		}
		return baseType.Elem(), writable
	default:
		return nil, false
	}
}

// checkNodeCall implements §4.5's node/tree call rule: argument ports must
// exist on the resolved callee, direction compatibility follows the
// caller\callee matrix, inline `out var x` declares a block-scope variable
// of the port's type, and every required port must be bound.
func (c *Checker) checkNodeCall(call *ast.NodeCallStmt, scope *symtab.Scope) {
	for _, pre := range call.Preconditions {
		if t := c.Synthesize(pre.Expr); !types.IsError(t) && t.Kind() != types.KindBool {
			c.bag.Errorf(diag.CodeType, pre.Range(), "precondition expression must be bool, got %s", t)
		}
	}

	sym, ok := c.mod.Info.NodeCalls[call]
	if !ok {
		for _, arg := range call.Args {
			if arg.Value != nil {
				c.Synthesize(arg.Value)
			}
		}
		c.checkNodeCallChildren(call, scope)
		return
	}

	provided := make(map[string]bool, len(call.Args))
	for _, arg := range call.Args {
		dir, portType, _, found := sym.PortOrParam(arg.Port)
		if !found {
			c.bag.Errorf(diag.CodeType, arg.Range(), "%q has no port/parameter named %q", call.Name, arg.Port)
			if arg.Value != nil {
				c.Synthesize(arg.Value)
			}
			continue
		}
		provided[arg.Port] = true
		c.checkDirection(arg, dir, portType, scope)
	}
	for _, name := range sym.PortNames() {
		dir, _, def, _ := sym.PortOrParam(name)
		if !provided[name] && def == nil && dir != ast.DirOut {
			c.bag.Errorf(diag.CodeType, call.Range(), "%q is missing required port/parameter %q", call.Name, name)
		}
	}

	c.checkNodeCallChildren(call, scope)
}

func (c *Checker) checkNodeCallChildren(call *ast.NodeCallStmt, scope *symtab.Scope) {
	if len(call.Children) == 0 {
		return
	}
	child, ok := c.mod.Tables.ChildScopes[call]
	if !ok {
		child = scope
	}
	c.checkStmts(call.Children, child)
}

// checkDirection applies the caller\callee direction compatibility matrix
// from §4.5.
func (c *Checker) checkDirection(arg *ast.Argument, calleeDir ast.PortDirection, portType *types.Type, scope *symtab.Scope) {
	if arg.InlineVar != nil {
		// `out var x`: only legal against an out port; declares a new
		// block-scope variable of the port's type.
		if calleeDir != ast.DirOut {
			c.bag.Errorf(diag.CodeType, arg.Range(), "inline `out var` is only valid for an out port")
		}
		if sym, ok := scope.LookupLocal(arg.InlineVar.Name); ok {
			sym.Type = portType
		}
		return
	}

	switch arg.Dir {
	case ast.DirIn:
		if calleeDir != ast.DirIn {
			c.bag.Errorf(diag.CodeType, arg.Range(), "value argument not allowed for %s port %q", calleeDir, arg.Port)
			return
		}
		c.Check(arg.Value, portType)
	case ast.DirRef:
		if calleeDir == ast.DirMut || calleeDir == ast.DirOut {
			c.bag.Errorf(diag.CodeType, arg.Range(), "ref argument not allowed for %s port %q", calleeDir, arg.Port)
			return
		}
		if calleeDir == ast.DirIn {
			c.bag.Warnf(diag.CodeType, arg.Range(), "ref argument bound to an in port %q", arg.Port)
		}
		c.checkLvalueArg(arg.Value, portType, scope)
	case ast.DirMut:
		if calleeDir == ast.DirOut {
			c.bag.Errorf(diag.CodeType, arg.Range(), "mut argument not allowed for out port %q", arg.Port)
			return
		}
		if calleeDir != ast.DirMut {
			c.bag.Warnf(diag.CodeType, arg.Range(), "mut argument bound to a %s port %q", calleeDir, arg.Port)
		}
		c.checkLvalueArg(arg.Value, portType, scope)
	case ast.DirOut:
		if calleeDir != ast.DirOut {
			c.bag.Errorf(diag.CodeType, arg.Range(), "out argument not allowed for %s port %q", calleeDir, arg.Port)
			return
		}
		c.checkLvalueArg(arg.Value, portType, scope)
	}
}

func (c *Checker) checkLvalueArg(e ast.Expr, expected *types.Type, scope *symtab.Scope) {
	if e == nil {
		return
	}
	t, writable := c.lvalueType(e, scope)
	if t == nil {
		c.bag.Errorf(diag.CodeType, e.Range(), "argument is not an lvalue")
		return
	}
	if !writable {
		c.bag.Errorf(diag.CodeType, e.Range(), "argument is not writable")
	}
	if !types.IsError(t) && !types.AssignableTo(t, expected) && !types.AssignableTo(expected, t) {
		c.bag.Errorf(diag.CodeType, e.Range(), "argument type %s does not match port type %s", t, expected)
	}
}
