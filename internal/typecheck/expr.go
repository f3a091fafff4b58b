package typecheck

import (
	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/internal/symtab"
	"github.com/btdsl/btdsl/internal/types"
)

// Synthesize returns the type of expr with no contextual expectation,
// defaulting placeholder literal types per §4.5's defaulting rule.
func (c *Checker) Synthesize(expr ast.Expr) *types.Type {
	switch ex := expr.(type) {
	case *ast.IntLiteral:
		return c.setType(ex, c.ctx.Builtin(types.KindInt32))
	case *ast.FloatLiteral:
		return c.setType(ex, c.ctx.Builtin(types.KindFloat64))
	case *ast.StringLiteral:
		return c.setType(ex, c.ctx.Builtin(types.KindString))
	case *ast.BoolLiteral:
		return c.setType(ex, c.ctx.Builtin(types.KindBool))
	case *ast.NullLiteral:
		c.bag.Errorf(diag.CodeType, ex.Range(), "null has no type without a nullable context")
		return c.setType(ex, c.ctx.Error())
	case *ast.VarRef:
		return c.synthesizeVarRef(ex)
	case *ast.BinaryExpr:
		return c.synthesizeBinary(ex)
	case *ast.UnaryExpr:
		return c.synthesizeUnary(ex)
	case *ast.CastExpr:
		return c.synthesizeCast(ex)
	case *ast.IndexExpr:
		return c.synthesizeIndex(ex)
	case *ast.ArrayLiteralExpr:
		return c.synthesizeArrayLiteral(ex)
	case *ast.ArrayRepeatExpr:
		return c.synthesizeArrayRepeat(ex)
	case *ast.VecMacroExpr:
		return c.synthesizeVecMacro(ex)
	default:
		c.bag.Errorf(diag.CodeInternal, expr.Range(), "unreachable: unsupported expression in type checking")
		return c.setType(expr, c.ctx.Error())
	}
}

// Check verifies expr against an expected type, returning the type actually
// assigned to it (which may be expected itself, after literal defaulting/
// coercion, or Error on mismatch).
func (c *Checker) Check(expr ast.Expr, expected *types.Type) *types.Type {
	switch ex := expr.(type) {
	case *ast.IntLiteral:
		if types.IsInteger(expected) {
			min, max := types.IntRange(expected.Kind())
			if expected.Kind() == types.KindUint64 {
				if ex.Value < 0 {
					c.bag.Errorf(diag.CodeType, ex.Range(), "literal %d does not fit %s", ex.Value, expected)
					return c.setType(ex, c.ctx.Error())
				}
			} else if ex.Value < min || ex.Value > max {
				c.bag.Errorf(diag.CodeType, ex.Range(), "literal %d does not fit %s", ex.Value, expected)
				return c.setType(ex, c.ctx.Error())
			}
			return c.setType(ex, expected)
		}
		if types.IsFloat(expected) {
			return c.setType(ex, expected)
		}
	case *ast.FloatLiteral:
		if types.IsFloat(expected) {
			return c.setType(ex, expected)
		}
	case *ast.StringLiteral:
		if expected.Kind() == types.KindBoundedString {
			if len(ex.Value) > expected.BoundedStringLen() {
				c.bag.Errorf(diag.CodeType, ex.Range(), "string literal of length %d exceeds bound %s", len(ex.Value), expected)
				return c.setType(ex, c.ctx.Error())
			}
			return c.setType(ex, expected)
		}
		if types.IsString(expected) {
			return c.setType(ex, expected)
		}
	case *ast.NullLiteral:
		if types.IsNullable(expected) {
			return c.setType(ex, expected)
		}
		c.bag.Errorf(diag.CodeType, ex.Range(), "null is not allowed for non-nullable type %s", expected)
		return c.setType(ex, c.ctx.Error())
	case *ast.ArrayLiteralExpr:
		return c.checkArrayLiteral(ex, expected)
	case *ast.ArrayRepeatExpr:
		return c.checkArrayRepeat(ex, expected)
	case *ast.VecMacroExpr:
		return c.checkVecMacro(ex, expected)
	}

	actual := c.Synthesize(expr)
	if types.IsError(actual) {
		return actual
	}
	if !types.AssignableTo(actual, expected) {
		c.bag.Errorf(diag.CodeType, expr.Range(), "cannot use value of type %s where %s is expected", actual, expected)
		return c.setType(expr, c.ctx.Error())
	}
	return actual
}

func (c *Checker) synthesizeVarRef(ex *ast.VarRef) *types.Type {
	sym, ok := c.symbolOf(ex)
	if !ok || sym.Type == nil {
		return c.setType(ex, c.ctx.Error())
	}
	return c.setType(ex, sym.Type)
}

func (c *Checker) synthesizeBinary(ex *ast.BinaryExpr) *types.Type {
	lt := c.Synthesize(ex.LHS)
	rt := c.Synthesize(ex.RHS)
	if types.IsError(lt) || types.IsError(rt) {
		return c.setType(ex, c.ctx.Error())
	}

	if ex.Op == ast.OpAdd && types.IsString(lt) && types.IsString(rt) {
		return c.setType(ex, c.ctx.Builtin(types.KindString))
	}

	if ex.Op.IsLogical() {
		if lt.Kind() != types.KindBool || rt.Kind() != types.KindBool {
			c.bag.Errorf(diag.CodeType, ex.Range(), "operator %s requires bool operands", ex.Op)
			return c.setType(ex, c.ctx.Error())
		}
		return c.setType(ex, c.ctx.Builtin(types.KindBool))
	}

	if ex.Op.IsBitwise() {
		if !types.IsInteger(lt) || !types.IsInteger(rt) {
			c.bag.Errorf(diag.CodeType, ex.Range(), "operator %s requires integer operands", ex.Op)
			return c.setType(ex, c.ctx.Error())
		}
		common := types.CommonNumericType(c.ctx, lt, rt)
		if common == nil {
			c.bag.Errorf(diag.CodeType, ex.Range(), "mismatched integer types %s and %s; use an explicit cast", lt, rt)
			return c.setType(ex, c.ctx.Error())
		}
		return c.setType(ex, defaultPlaceholder(c.ctx, common))
	}

	if ex.Op.IsComparison() {
		if !(types.IsNumeric(lt) && types.IsNumeric(rt)) &&
			!(types.IsString(lt) && types.IsString(rt)) &&
			!(lt.Kind() == types.KindBool && rt.Kind() == types.KindBool) {
			c.bag.Errorf(diag.CodeType, ex.Range(), "operands of %s are not comparable", ex.Op)
			return c.setType(ex, c.ctx.Error())
		}
		if types.IsNumeric(lt) && types.IsNumeric(rt) && types.CommonNumericType(c.ctx, lt, rt) == nil {
			c.bag.Errorf(diag.CodeType, ex.Range(), "mismatched numeric types %s and %s; use an explicit cast", lt, rt)
			return c.setType(ex, c.ctx.Error())
		}
		return c.setType(ex, c.ctx.Builtin(types.KindBool))
	}

	// Arithmetic: +, -, *, /, %.
	if !types.IsNumeric(lt) || !types.IsNumeric(rt) {
		c.bag.Errorf(diag.CodeType, ex.Range(), "operator %s requires numeric operands", ex.Op)
		return c.setType(ex, c.ctx.Error())
	}
	common := types.CommonNumericType(c.ctx, lt, rt)
	if common == nil {
		c.bag.Errorf(diag.CodeType, ex.Range(), "cannot mix %s and %s without an explicit cast", lt, rt)
		return c.setType(ex, c.ctx.Error())
	}
	return c.setType(ex, defaultPlaceholder(c.ctx, common))
}

// defaultPlaceholder rewrites a surviving literal placeholder type to its
// concrete default, the "Defaulting" step of §4.5.
func defaultPlaceholder(ctx *types.Context, t *types.Type) *types.Type {
	switch t.Kind() {
	case types.KindLiteralInt:
		return ctx.Builtin(types.KindInt32)
	case types.KindLiteralFloat:
		return ctx.Builtin(types.KindFloat64)
	default:
		return t
	}
}

func (c *Checker) synthesizeUnary(ex *ast.UnaryExpr) *types.Type {
	ot := c.Synthesize(ex.Operand)
	if types.IsError(ot) {
		return c.setType(ex, c.ctx.Error())
	}
	switch ex.Op {
	case ast.OpNeg:
		if !types.IsNumeric(ot) {
			c.bag.Errorf(diag.CodeType, ex.Range(), "unary - requires a numeric operand")
			return c.setType(ex, c.ctx.Error())
		}
		return c.setType(ex, defaultPlaceholder(c.ctx, ot))
	case ast.OpNot:
		if ot.Kind() != types.KindBool {
			c.bag.Errorf(diag.CodeType, ex.Range(), "unary ! requires a bool operand")
			return c.setType(ex, c.ctx.Error())
		}
		return c.setType(ex, ot)
	}
	return c.setType(ex, c.ctx.Error())
}

func (c *Checker) synthesizeCast(ex *ast.CastExpr) *types.Type {
	ot := c.Synthesize(ex.Operand)
	target := symtab.ResolveType(c.ctx, c.mod.Tables, c.bag, c.ce, ex.Type)
	if types.IsError(ot) || types.IsError(target) {
		return c.setType(ex, c.ctx.Error())
	}
	if !types.IsNumeric(ot) && !types.IsString(ot) && ot.Kind() != types.KindBool {
		c.bag.Errorf(diag.CodeType, ex.Range(), "cannot cast from %s", ot)
		return c.setType(ex, c.ctx.Error())
	}
	return c.setType(ex, target)
}

func (c *Checker) synthesizeIndex(ex *ast.IndexExpr) *types.Type {
	bt := c.Synthesize(ex.Base)
	it := c.Synthesize(ex.Index)
	if types.IsError(bt) || types.IsError(it) {
		return c.setType(ex, c.ctx.Error())
	}
	if !types.IsArray(bt) {
		c.bag.Errorf(diag.CodeType, ex.Range(), "cannot index non-array type %s", bt)
		return c.setType(ex, c.ctx.Error())
	}
	if !types.IsInteger(it) {
		c.bag.Errorf(diag.CodeType, ex.Range(), "array index must be an integer")
		return c.setType(ex, c.ctx.Error())
	}
	return c.setType(ex, bt.Elem())
}

func (c *Checker) synthesizeArrayLiteral(ex *ast.ArrayLiteralExpr) *types.Type {
	if len(ex.Elems) == 0 {
		return c.setType(ex, c.ctx.StaticArray(c.ctx.Unknown(), types.Exact, 0))
	}
	elemType := c.Synthesize(ex.Elems[0])
	for _, el := range ex.Elems[1:] {
		c.Check(el, elemType)
	}
	return c.setType(ex, c.ctx.StaticArray(elemType, types.Exact, len(ex.Elems)))
}

func (c *Checker) checkArrayLiteral(ex *ast.ArrayLiteralExpr, expected *types.Type) *types.Type {
	if !types.IsArray(expected) {
		c.bag.Errorf(diag.CodeType, ex.Range(), "array literal is not assignable to %s", expected)
		return c.setType(ex, c.ctx.Error())
	}
	elemT := expected.Elem()
	if expected.Kind() == types.KindStaticArray && expected.ArrayKind() == types.Exact && len(ex.Elems) != expected.ArrayLen() {
		c.bag.Errorf(diag.CodeType, ex.Range(), "array literal has %d elements, expected %d", len(ex.Elems), expected.ArrayLen())
	}
	ok := true
	for _, el := range ex.Elems {
		if types.IsError(c.Check(el, elemT)) {
			ok = false
		}
	}
	if !ok {
		return c.setType(ex, c.ctx.Error())
	}
	return c.setType(ex, expected)
}

func (c *Checker) synthesizeArrayRepeat(ex *ast.ArrayRepeatExpr) *types.Type {
	vt := c.Synthesize(ex.Value)
	ct := c.Synthesize(ex.Count)
	if !types.IsInteger(ct) {
		c.bag.Errorf(diag.CodeType, ex.Count.Range(), "array repeat count must be an integer")
		return c.setType(ex, c.ctx.Error())
	}
	n, ok := c.ce.EvalConstInt(ex.Count)
	if !ok {
		c.bag.Errorf(diag.CodeType, ex.Count.Range(), "array repeat count must be a non-negative constant")
		return c.setType(ex, c.ctx.Error())
	}
	return c.setType(ex, c.ctx.StaticArray(vt, types.Exact, n))
}

func (c *Checker) checkArrayRepeat(ex *ast.ArrayRepeatExpr, expected *types.Type) *types.Type {
	if !types.IsArray(expected) {
		c.bag.Errorf(diag.CodeType, ex.Range(), "array repeat is not assignable to %s", expected)
		return c.setType(ex, c.ctx.Error())
	}
	c.Check(ex.Value, expected.Elem())
	n, ok := c.ce.EvalConstInt(ex.Count)
	if !ok {
		c.bag.Errorf(diag.CodeType, ex.Count.Range(), "array repeat count must be a non-negative constant")
		return c.setType(ex, c.ctx.Error())
	}
	if expected.Kind() == types.KindStaticArray && expected.ArrayKind() == types.Exact && n != expected.ArrayLen() {
		c.bag.Errorf(diag.CodeType, ex.Range(), "array repeat produces %d elements, expected %d", n, expected.ArrayLen())
	}
	return c.setType(ex, expected)
}

func (c *Checker) synthesizeVecMacro(ex *ast.VecMacroExpr) *types.Type {
	if len(ex.Elems) == 0 {
		return c.setType(ex, c.ctx.DynamicArray(c.ctx.Unknown()))
	}
	elemType := c.Synthesize(ex.Elems[0])
	for _, el := range ex.Elems[1:] {
		c.Check(el, elemType)
	}
	return c.setType(ex, c.ctx.DynamicArray(elemType))
}

func (c *Checker) checkVecMacro(ex *ast.VecMacroExpr, expected *types.Type) *types.Type {
	if expected.Kind() != types.KindDynamicArray {
		c.bag.Errorf(diag.CodeType, ex.Range(), "vec![...] is not assignable to %s", expected)
		return c.setType(ex, c.ctx.Error())
	}
	for _, el := range ex.Elems {
		c.Check(el, expected.Elem())
	}
	return c.setType(ex, expected)
}
