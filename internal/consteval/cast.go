package consteval

import (
	"math"

	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/internal/symtab"
	"github.com/btdsl/btdsl/internal/types"
)

func (e *Evaluator) evalCast(ex *ast.CastExpr) *types.Value {
	v := e.Eval(ex.Operand)
	if v.IsErrorValue() {
		return v
	}
	target := symtab.ResolveType(e.ctx, e.mod.Tables, e.bag, e, ex.Type)
	if types.IsError(target) {
		return errorValue(e.ctx)
	}
	return e.castValue(v, target, ex.Range())
}

// castValue implements §4.4's cast semantics: numeric widening/narrowing
// allowed iff the value fits exactly, float→int requires a finite integral
// value, extern/vec/_ targets are rejected, and string<N> checks the bound.
func (e *Evaluator) castValue(v *types.Value, target *types.Type, r diag.Range) *types.Value {
	switch target.Kind() {
	case types.KindExtern, types.KindDynamicArray, types.KindUnknown:
		e.bag.Errorf(diag.CodeConstEval, r, "cannot cast to %s in a constant expression", target)
		return errorValue(e.ctx)
	}

	switch {
	case types.IsInteger(target):
		return e.castToInt(v, target, r)
	case types.IsFloat(target):
		return e.castToFloat(v, target, r)
	case types.IsString(target):
		return e.castToString(v, target, r)
	case target.Kind() == types.KindBool:
		if v.Type.Kind() != types.KindBool {
			e.bag.Errorf(diag.CodeConstEval, r, "cannot cast %s to bool", v.Type)
			return errorValue(e.ctx)
		}
		return &types.Value{Type: target, Bool: v.Bool}
	default:
		e.bag.Errorf(diag.CodeConstEval, r, "unsupported cast target %s", target)
		return errorValue(e.ctx)
	}
}

func (e *Evaluator) castToInt(v *types.Value, target *types.Type, r diag.Range) *types.Value {
	var n int64
	switch {
	case types.IsInteger(v.Type):
		n = v.AsInt64()
	case types.IsFloat(v.Type):
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) || v.Float != math.Trunc(v.Float) {
			e.bag.Errorf(diag.CodeConstEval, r, "cast to %s requires a finite, integral float value", target)
			return errorValue(e.ctx)
		}
		n = int64(v.Float)
	default:
		e.bag.Errorf(diag.CodeConstEval, r, "cannot cast %s to %s", v.Type, target)
		return errorValue(e.ctx)
	}
	min, max := types.IntRange(target.Kind())
	if target.Kind() == types.KindUint64 {
		if n < 0 {
			e.bag.Errorf(diag.CodeConstEval, r, "value %d does not fit %s", n, target)
			return errorValue(e.ctx)
		}
		return &types.Value{Type: target, Uint: uint64(n)}
	}
	if n < min || n > max {
		e.bag.Errorf(diag.CodeConstEval, r, "value %d does not fit %s", n, target)
		return errorValue(e.ctx)
	}
	if types.IsSignedInteger(target) {
		return &types.Value{Type: target, Int: n}
	}
	return &types.Value{Type: target, Uint: uint64(n)}
}

func (e *Evaluator) castToFloat(v *types.Value, target *types.Type, r diag.Range) *types.Value {
	var f float64
	switch {
	case types.IsFloat(v.Type):
		f = v.Float
	case types.IsInteger(v.Type):
		f = float64(v.AsInt64())
	default:
		e.bag.Errorf(diag.CodeConstEval, r, "cannot cast %s to %s", v.Type, target)
		return errorValue(e.ctx)
	}
	if target.Kind() == types.KindFloat32 {
		f32 := float32(f)
		if float64(f32) != f && !math.IsInf(f, 0) {
			e.bag.Errorf(diag.CodeConstEval, r, "value does not fit %s exactly", target)
			return errorValue(e.ctx)
		}
	}
	return &types.Value{Type: target, Float: f}
}

func (e *Evaluator) castToString(v *types.Value, target *types.Type, r diag.Range) *types.Value {
	if !types.IsString(v.Type) {
		e.bag.Errorf(diag.CodeConstEval, r, "cannot cast %s to %s", v.Type, target)
		return errorValue(e.ctx)
	}
	if target.Kind() == types.KindBoundedString && len(v.Str) > target.BoundedStringLen() {
		e.bag.Errorf(diag.CodeConstEval, r, "string of length %d exceeds bound %s", len(v.Str), target)
		return errorValue(e.ctx)
	}
	return &types.Value{Type: target, Str: v.Str}
}
