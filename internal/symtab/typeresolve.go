package symtab

import (
	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/internal/types"
)

// ConstIntEvaluator is the narrow surface the constant evaluator (component
// 6) exposes to type resolution: evaluating an array-size or string-bound
// expression to a concrete non-negative integer (§4.4 "Defaults &
// preconditions"). Kept as an interface here to avoid an import cycle
// between symtab and consteval — consteval depends on symtab, not the
// other way around.
type ConstIntEvaluator interface {
	EvalConstInt(expr ast.Expr) (int, bool)
}

// ResolveType turns a syntactic TypeNode into an interned semantic Type.
// It resolves builtins directly, looks up extern types and aliases in tbl,
// and recurses into array/nullable wrappers. Unresolvable names report a
// Resolution diagnostic and return ctx.Error(); aliasing is not chased
// transitively beyond one level cached on the TypeSymbol (the resolver is
// expected to have already filled in TypeSymbol.Resolved for aliases before
// any caller needs one — see consteval's Evaluator.resolveAliases).
func ResolveType(ctx *types.Context, tbl *Tables, bag *diag.Bag, evalInt ConstIntEvaluator, node ast.TypeNode) *types.Type {
	switch n := node.(type) {
	case nil:
		return ctx.Unknown()
	case *ast.InferTypeNode:
		return ctx.Unknown()
	case *ast.PrimaryTypeNode:
		var base *types.Type
		if n.BoundedStringLen != nil {
			if n.Name != "string" {
				bag.Errorf(diag.CodeType, n.Range(), "only 'string' supports a length bound, got %q", n.Name)
				return ctx.Error()
			}
			size, ok := evalInt.EvalConstInt(n.BoundedStringLen)
			if !ok || size < 0 {
				bag.Errorf(diag.CodeConstEval, n.BoundedStringLen.Range(), "string bound must be a non-negative constant integer")
				return ctx.Error()
			}
			base = ctx.BoundedString(size)
		} else if bt, ok := ctx.LookupBuiltinByName(n.Name); ok {
			base = bt
		} else if tsym, ok := tbl.Types[n.Name]; ok {
			switch tsym.Kind {
			case BuiltinType:
				base = tsym.Resolved
			case ExternType:
				base = ctx.Extern(tsym.Name)
			case AliasType:
				if tsym.Resolved == nil {
					bag.Errorf(diag.CodeResolution, n.Range(), "type alias %q used before it could be resolved (cycle?)", n.Name)
					return ctx.Error()
				}
				base = tsym.Resolved
			}
		} else {
			bag.Errorf(diag.CodeResolution, n.Range(), "unknown type %q", n.Name)
			return ctx.Error()
		}
		if n.Nullable {
			return ctx.Nullable(base)
		}
		return base
	case *ast.StaticArrayTypeNode:
		elem := ResolveType(ctx, tbl, bag, evalInt, n.Elem)
		size, ok := evalInt.EvalConstInt(n.Size)
		if !ok || size < 0 {
			bag.Errorf(diag.CodeConstEval, n.Size.Range(), "array size must be a non-negative constant integer")
			return ctx.Error()
		}
		kind := types.Exact
		if n.Kind == ast.ArrayMax {
			kind = types.Max
		}
		arr := ctx.StaticArray(elem, kind, size)
		if n.Nullable {
			return ctx.Nullable(arr)
		}
		return arr
	case *ast.DynamicArrayTypeNode:
		elem := ResolveType(ctx, tbl, bag, evalInt, n.Elem)
		arr := ctx.DynamicArray(elem)
		if n.Nullable {
			return ctx.Nullable(arr)
		}
		return arr
	default:
		return ctx.Error()
	}
}
