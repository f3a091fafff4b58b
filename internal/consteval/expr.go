package consteval

import (
	"math"

	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/internal/symtab"
	"github.com/btdsl/btdsl/internal/types"
)

// EvalConstInt implements symtab.ConstIntEvaluator: it evaluates expr and
// requires the result to be a non-negative integer, for array-size and
// string-bound resolution.
func (e *Evaluator) EvalConstInt(expr ast.Expr) (int, bool) {
	v := e.Eval(expr)
	if v.IsErrorValue() || !types.IsInteger(v.Type) {
		return 0, false
	}
	n := v.AsInt64()
	if n < 0 {
		return 0, false
	}
	return int(n), true
}

// Eval evaluates a constant expression to a Value, reporting any violation
// of §4.4's supported-forms contract and returning an error Value on
// failure so callers can keep going.
func (e *Evaluator) Eval(expr ast.Expr) *types.Value {
	switch ex := expr.(type) {
	case *ast.IntLiteral:
		return &types.Value{Type: e.ctx.LiteralInt(), Int: ex.Value}
	case *ast.FloatLiteral:
		return &types.Value{Type: e.ctx.LiteralFloat(), Float: ex.Value}
	case *ast.StringLiteral:
		return &types.Value{Type: e.ctx.Builtin(types.KindString), Str: ex.Value}
	case *ast.BoolLiteral:
		return &types.Value{Type: e.ctx.Builtin(types.KindBool), Bool: ex.Value}
	case *ast.NullLiteral:
		return &types.Value{Type: e.ctx.LiteralNull()}
	case *ast.VarRef:
		return e.evalVarRef(ex)
	case *ast.UnaryExpr:
		return e.evalUnary(ex)
	case *ast.BinaryExpr:
		return e.evalBinary(ex)
	case *ast.CastExpr:
		return e.evalCast(ex)
	case *ast.IndexExpr:
		return e.evalIndex(ex)
	case *ast.ArrayLiteralExpr:
		return e.evalArrayLiteral(ex)
	case *ast.ArrayRepeatExpr:
		return e.evalArrayRepeat(ex)
	case *ast.VecMacroExpr:
		e.bag.Errorf(diag.CodeConstEval, ex.Range(), "vec![...] is not allowed in a constant expression")
		return errorValue(e.ctx)
	default:
		e.bag.Errorf(diag.CodeInternal, expr.Range(), "unreachable: unsupported expression in constant evaluation")
		return errorValue(e.ctx)
	}
}

func (e *Evaluator) evalVarRef(ex *ast.VarRef) *types.Value {
	sym, ok := e.mod.Info.ValueUses[ex]
	if !ok {
		return errorValue(e.ctx)
	}
	switch sym.Kind {
	case symtab.GlobalConst:
		if v, ok := e.cache[sym]; ok {
			return v
		}
		if e.cyclic[sym] {
			return errorValue(e.ctx)
		}
		// Referenced before the topological pass reached it: defining
		// expression has a resolution failure elsewhere; treat as error.
		return errorValue(e.ctx)
	case symtab.LocalConst:
		return e.evalLocalConst(sym)
	default:
		e.bag.Errorf(diag.CodeConstEval, ex.Range(), "%q is not a constant", ex.Name)
		return errorValue(e.ctx)
	}
}

func (e *Evaluator) evalLocalConst(sym *symtab.ValueSymbol) *types.Value {
	decl := sym.Decl.(*ast.LocalConstDecl)
	if v, ok := e.mod.Info.ConstValues[decl]; ok {
		return v
	}
	if e.localInProgress[sym] {
		e.bag.Errorf(diag.CodeConstEval, decl.Range(), "circular const dependency involving %q", sym.Name)
		return errorValue(e.ctx)
	}
	e.localInProgress[sym] = true
	v := e.Eval(decl.Expr)
	delete(e.localInProgress, sym)
	if !v.IsErrorValue() && sym.TypeExpr != nil {
		if sym.Type == nil {
			sym.Type = symtab.ResolveType(e.ctx, e.mod.Tables, e.bag, e, sym.TypeExpr)
		}
		v = e.castValue(v, sym.Type, decl.Range())
	} else if sym.Type == nil {
		sym.Type = v.Type
	}
	e.mod.Info.ConstValues[decl] = v
	return v
}

func (e *Evaluator) evalUnary(ex *ast.UnaryExpr) *types.Value {
	v := e.Eval(ex.Operand)
	if v.IsErrorValue() {
		return v
	}
	switch ex.Op {
	case ast.OpNeg:
		switch {
		case types.IsFloat(v.Type):
			r := -v.Float
			if math.IsInf(r, 0) || math.IsNaN(r) {
				e.bag.Errorf(diag.CodeConstEval, ex.Range(), "negation produced a non-finite result")
				return errorValue(e.ctx)
			}
			return &types.Value{Type: v.Type, Float: r}
		case types.IsInteger(v.Type):
			if v.Int == math.MinInt64 {
				e.bag.Errorf(diag.CodeConstEval, ex.Range(), "negation overflows: operand is the minimum representable integer")
				return errorValue(e.ctx)
			}
			return &types.Value{Type: v.Type, Int: -v.Int}
		}
	case ast.OpNot:
		if v.Type.Kind() == types.KindBool {
			return &types.Value{Type: v.Type, Bool: !v.Bool}
		}
	}
	e.bag.Errorf(diag.CodeConstEval, ex.Range(), "invalid operand type for unary operator")
	return errorValue(e.ctx)
}

func (e *Evaluator) evalBinary(ex *ast.BinaryExpr) *types.Value {
	// Short-circuit && and || before evaluating the right operand.
	if ex.Op == ast.OpAnd || ex.Op == ast.OpOr {
		l := e.Eval(ex.LHS)
		if l.IsErrorValue() || l.Type.Kind() != types.KindBool {
			e.bag.Errorf(diag.CodeConstEval, ex.Range(), "logical operator requires bool operands")
			return errorValue(e.ctx)
		}
		if ex.Op == ast.OpAnd && !l.Bool {
			return &types.Value{Type: l.Type, Bool: false}
		}
		if ex.Op == ast.OpOr && l.Bool {
			return &types.Value{Type: l.Type, Bool: true}
		}
		r := e.Eval(ex.RHS)
		if r.IsErrorValue() || r.Type.Kind() != types.KindBool {
			e.bag.Errorf(diag.CodeConstEval, ex.Range(), "logical operator requires bool operands")
			return errorValue(e.ctx)
		}
		return r
	}

	l := e.Eval(ex.LHS)
	r := e.Eval(ex.RHS)
	if l.IsErrorValue() || r.IsErrorValue() {
		return errorValue(e.ctx)
	}

	if ex.Op == ast.OpAdd && types.IsString(l.Type) && types.IsString(r.Type) {
		return &types.Value{Type: e.ctx.Builtin(types.KindString), Str: l.Str + r.Str}
	}

	switch {
	case types.IsFloat(l.Type) && types.IsFloat(r.Type):
		return e.evalFloatBinary(ex, l, r)
	case types.IsInteger(l.Type) && types.IsInteger(r.Type):
		return e.evalIntBinary(ex, l, r)
	case l.Type.Kind() == types.KindBool && r.Type.Kind() == types.KindBool && ex.Op.IsBitwise():
		// bool & | ^ treated as logical combination for the bitwise spellings
		switch ex.Op {
		case ast.OpBitAnd:
			return &types.Value{Type: l.Type, Bool: l.Bool && r.Bool}
		case ast.OpBitOr:
			return &types.Value{Type: l.Type, Bool: l.Bool || r.Bool}
		case ast.OpBitXor:
			return &types.Value{Type: l.Type, Bool: l.Bool != r.Bool}
		}
	}

	if ex.Op.IsComparison() {
		return e.evalComparison(ex, l, r)
	}

	e.bag.Errorf(diag.CodeConstEval, ex.Range(), "invalid operand types for binary operator %s", ex.Op)
	return errorValue(e.ctx)
}

func (e *Evaluator) evalComparison(ex *ast.BinaryExpr, l, r *types.Value) *types.Value {
	boolT := e.ctx.Builtin(types.KindBool)
	var cmp int
	switch {
	case types.IsNumeric(l.Type) && types.IsNumeric(r.Type):
		lf, rf := numericAsFloat(l), numericAsFloat(r)
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		}
	case types.IsString(l.Type) && types.IsString(r.Type):
		switch {
		case l.Str < r.Str:
			cmp = -1
		case l.Str > r.Str:
			cmp = 1
		}
	case l.Type.Kind() == types.KindBool && r.Type.Kind() == types.KindBool:
		if ex.Op == ast.OpEq {
			return &types.Value{Type: boolT, Bool: l.Bool == r.Bool}
		}
		if ex.Op == ast.OpNe {
			return &types.Value{Type: boolT, Bool: l.Bool != r.Bool}
		}
		e.bag.Errorf(diag.CodeConstEval, ex.Range(), "bool only supports == and !=")
		return errorValue(e.ctx)
	default:
		e.bag.Errorf(diag.CodeConstEval, ex.Range(), "operands are not comparable")
		return errorValue(e.ctx)
	}
	switch ex.Op {
	case ast.OpEq:
		return &types.Value{Type: boolT, Bool: cmp == 0}
	case ast.OpNe:
		return &types.Value{Type: boolT, Bool: cmp != 0}
	case ast.OpLt:
		return &types.Value{Type: boolT, Bool: cmp < 0}
	case ast.OpLe:
		return &types.Value{Type: boolT, Bool: cmp <= 0}
	case ast.OpGt:
		return &types.Value{Type: boolT, Bool: cmp > 0}
	case ast.OpGe:
		return &types.Value{Type: boolT, Bool: cmp >= 0}
	}
	return errorValue(e.ctx)
}

func numericAsFloat(v *types.Value) float64 {
	if types.IsFloat(v.Type) {
		return v.Float
	}
	if types.IsSignedInteger(v.Type) || v.Type.Kind() == types.KindLiteralInt {
		return float64(v.Int)
	}
	return float64(v.Uint)
}

func (e *Evaluator) evalFloatBinary(ex *ast.BinaryExpr, l, r *types.Value) *types.Value {
	if ex.Op.IsBitwise() {
		e.bag.Errorf(diag.CodeConstEval, ex.Range(), "bitwise operator requires integer operands")
		return errorValue(e.ctx)
	}
	var result float64
	switch ex.Op {
	case ast.OpAdd:
		result = l.Float + r.Float
	case ast.OpSub:
		result = l.Float - r.Float
	case ast.OpMul:
		result = l.Float * r.Float
	case ast.OpDiv:
		if r.Float == 0 {
			e.bag.Errorf(diag.CodeConstEval, ex.Range(), "division by zero")
			return errorValue(e.ctx)
		}
		result = l.Float / r.Float
	default:
		e.bag.Errorf(diag.CodeConstEval, ex.Range(), "unsupported float operator")
		return errorValue(e.ctx)
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		e.bag.Errorf(diag.CodeConstEval, ex.Range(), "operation produced a non-finite result")
		return errorValue(e.ctx)
	}
	resultType := l.Type
	if resultType.Kind() == types.KindLiteralFloat {
		resultType = r.Type
	}
	return &types.Value{Type: resultType, Float: result}
}

func (e *Evaluator) evalIntBinary(ex *ast.BinaryExpr, l, r *types.Value) *types.Value {
	a, b := l.Int, r.Int
	resultType := l.Type
	if resultType.Kind() == types.KindLiteralInt {
		resultType = r.Type
	}
	var result int64
	switch ex.Op {
	case ast.OpAdd:
		result = a + b
		if (b > 0 && result < a) || (b < 0 && result > a) {
			e.bag.Errorf(diag.CodeConstEval, ex.Range(), "integer addition overflows")
			return errorValue(e.ctx)
		}
	case ast.OpSub:
		result = a - b
		if (b < 0 && result < a) || (b > 0 && result > a) {
			e.bag.Errorf(diag.CodeConstEval, ex.Range(), "integer subtraction overflows")
			return errorValue(e.ctx)
		}
	case ast.OpMul:
		result = a * b
		if a != 0 && result/a != b {
			e.bag.Errorf(diag.CodeConstEval, ex.Range(), "integer multiplication overflows")
			return errorValue(e.ctx)
		}
	case ast.OpDiv:
		if b == 0 {
			e.bag.Errorf(diag.CodeConstEval, ex.Range(), "division by zero")
			return errorValue(e.ctx)
		}
		if a == math.MinInt64 && b == -1 {
			e.bag.Errorf(diag.CodeConstEval, ex.Range(), "integer division overflows")
			return errorValue(e.ctx)
		}
		result = a / b
	case ast.OpMod:
		if b == 0 {
			e.bag.Errorf(diag.CodeConstEval, ex.Range(), "modulo by zero")
			return errorValue(e.ctx)
		}
		result = a % b
	case ast.OpBitAnd:
		result = a & b
	case ast.OpBitOr:
		result = a | b
	case ast.OpBitXor:
		result = a ^ b
	default:
		e.bag.Errorf(diag.CodeConstEval, ex.Range(), "unsupported integer operator")
		return errorValue(e.ctx)
	}
	return &types.Value{Type: resultType, Int: result}
}

func (e *Evaluator) evalIndex(ex *ast.IndexExpr) *types.Value {
	base := e.Eval(ex.Base)
	idx := e.Eval(ex.Index)
	if base.IsErrorValue() || idx.IsErrorValue() {
		return errorValue(e.ctx)
	}
	if !types.IsArray(base.Type) {
		e.bag.Errorf(diag.CodeConstEval, ex.Range(), "index base is not an array")
		return errorValue(e.ctx)
	}
	if !types.IsInteger(idx.Type) {
		e.bag.Errorf(diag.CodeConstEval, ex.Range(), "index must be an integer")
		return errorValue(e.ctx)
	}
	i := idx.AsInt64()
	if i < 0 || int(i) >= len(base.Elems) {
		e.bag.Errorf(diag.CodeConstEval, ex.Range(), "index %d out of bounds for array of length %d", i, len(base.Elems))
		return errorValue(e.ctx)
	}
	return base.Elems[i]
}

func (e *Evaluator) evalArrayLiteral(ex *ast.ArrayLiteralExpr) *types.Value {
	elems := make([]*types.Value, len(ex.Elems))
	var elemType *types.Type = e.ctx.Unknown()
	ok := true
	for i, el := range ex.Elems {
		v := e.Eval(el)
		if v.IsErrorValue() {
			ok = false
		} else if i == 0 {
			elemType = v.Type
		}
		elems[i] = v
	}
	if !ok {
		return errorValue(e.ctx)
	}
	return &types.Value{Type: e.ctx.StaticArray(elemType, types.Exact, len(elems)), Elems: elems}
}

func (e *Evaluator) evalArrayRepeat(ex *ast.ArrayRepeatExpr) *types.Value {
	v := e.Eval(ex.Value)
	n, ok := e.EvalConstInt(ex.Count)
	if v.IsErrorValue() || !ok {
		e.bag.Errorf(diag.CodeConstEval, ex.Range(), "array repeat count must be a non-negative constant integer")
		return errorValue(e.ctx)
	}
	elems := make([]*types.Value, n)
	for i := range elems {
		elems[i] = v
	}
	return &types.Value{Type: e.ctx.StaticArray(v.Type, types.Exact, n), Elems: elems}
}
