// Package consteval implements component 6 of the middle-end: the constant
// evaluator. It topologically orders and evaluates global const
// declarations, lazily evaluates local consts with cycle detection, and
// (after all globals are known) resolves every declared type's array-size
// and string-bound constants plus every port/parameter default.
package consteval

import (
	"strings"

	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/internal/sema"
	"github.com/btdsl/btdsl/internal/symtab"
	"github.com/btdsl/btdsl/internal/types"
)

// Evaluator runs the constant-evaluation pipeline for one Module.
type Evaluator struct {
	mod *sema.Module
	ctx *types.Context
	bag *diag.Bag

	cache           map[*symtab.ValueSymbol]*types.Value
	cyclic          map[*symtab.ValueSymbol]bool
	localInProgress map[*symtab.ValueSymbol]bool
}

// New returns an Evaluator for mod.
func New(mod *sema.Module, ctx *types.Context) *Evaluator {
	return &Evaluator{
		mod:             mod,
		ctx:             ctx,
		bag:             mod.Diagnostics,
		cache:           make(map[*symtab.ValueSymbol]*types.Value),
		cyclic:          make(map[*symtab.ValueSymbol]bool),
		localInProgress: make(map[*symtab.ValueSymbol]bool),
	}
}

// Run performs the whole component-6 pipeline: global collection, cycle
// detection and topological evaluation, then the deferred type-resolution
// pass (array sizes, string bounds, port/parameter defaults).
func (e *Evaluator) Run() {
	order, globals := e.topoSortGlobals()
	for _, sym := range order {
		if e.cyclic[sym] {
			e.cache[sym] = errorValue(e.ctx)
			continue
		}
		decl := sym.Decl.(*ast.GlobalConstDecl)
		v := e.Eval(decl.Expr)
		e.cache[sym] = v
		e.mod.Info.ConstValues[decl] = v
	}
	e.resolveDeclaredTypes()
	// Now that every global const's declared type (if any) is resolved,
	// recast the raw evaluated value to it (§4.4 step 5 runs after the
	// topological evaluation in step 3).
	for _, sym := range globals {
		if e.cyclic[sym] || sym.TypeExpr == nil || sym.Type == nil {
			continue
		}
		v := e.cache[sym]
		if v.IsErrorValue() {
			continue
		}
		decl := sym.Decl.(*ast.GlobalConstDecl)
		casted := e.castValue(v, sym.Type, decl.Range())
		e.cache[sym] = casted
		e.mod.Info.ConstValues[decl] = casted
	}
}

// --- dependency graph & topological order ---------------------------------

type color int

const (
	white color = iota
	gray
	black
)

func (e *Evaluator) topoSortGlobals() ([]*symtab.ValueSymbol, []*symtab.ValueSymbol) {
	var globals []*symtab.ValueSymbol
	for _, name := range e.mod.Tables.Root.Names() {
		sym, _ := e.mod.Tables.Root.LookupLocal(name)
		if sym.Kind == symtab.GlobalConst {
			globals = append(globals, sym)
		}
	}

	deps := make(map[*symtab.ValueSymbol][]*symtab.ValueSymbol, len(globals))
	for _, sym := range globals {
		decl := sym.Decl.(*ast.GlobalConstDecl)
		deps[sym] = e.collectConstRefs(decl.Expr)
	}

	colors := make(map[*symtab.ValueSymbol]color, len(globals))
	var order []*symtab.ValueSymbol
	var stack []*symtab.ValueSymbol

	var visit func(sym *symtab.ValueSymbol)
	visit = func(sym *symtab.ValueSymbol) {
		switch colors[sym] {
		case black:
			return
		case gray:
			e.reportCycle(stack, sym)
			e.markCycleMembers(stack, sym)
			return
		}
		colors[sym] = gray
		stack = append(stack, sym)
		for _, dep := range deps[sym] {
			visit(dep)
			if e.cyclic[dep] {
				e.cyclic[sym] = true
			}
		}
		stack = stack[:len(stack)-1]
		colors[sym] = black
		order = append(order, sym)
	}
	for _, sym := range globals {
		if colors[sym] == white {
			visit(sym)
		}
	}
	return order, globals
}

// collectConstRefs walks expr collecting every global-const symbol it
// syntactically names, ignoring names that don't resolve to one (§4.4 step
// 2: "ignoring references that fail resolution").
func (e *Evaluator) collectConstRefs(expr ast.Expr) []*symtab.ValueSymbol {
	var out []*symtab.ValueSymbol
	var walk func(ex ast.Expr)
	walk = func(ex ast.Expr) {
		switch x := ex.(type) {
		case *ast.VarRef:
			if sym, ok := e.mod.Tables.Root.LookupLocal(x.Name); ok && sym.Kind == symtab.GlobalConst {
				out = append(out, sym)
			}
		case *ast.BinaryExpr:
			walk(x.LHS)
			walk(x.RHS)
		case *ast.UnaryExpr:
			walk(x.Operand)
		case *ast.CastExpr:
			walk(x.Operand)
		case *ast.IndexExpr:
			walk(x.Base)
			walk(x.Index)
		case *ast.ArrayLiteralExpr:
			for _, el := range x.Elems {
				walk(el)
			}
		case *ast.ArrayRepeatExpr:
			walk(x.Value)
			walk(x.Count)
		case *ast.VecMacroExpr:
			for _, el := range x.Elems {
				walk(el)
			}
		}
	}
	walk(expr)
	return out
}

func (e *Evaluator) reportCycle(stack []*symtab.ValueSymbol, closing *symtab.ValueSymbol) {
	start := 0
	for i, s := range stack {
		if s == closing {
			start = i
			break
		}
	}
	names := make([]string, 0, len(stack)-start+1)
	for _, s := range stack[start:] {
		names = append(names, s.Name)
	}
	names = append(names, closing.Name)
	e.bag.Errorf(diag.CodeConstEval, closing.DeclRange,
		"circular const dependency: %s", strings.Join(names, " -> "))
}

func (e *Evaluator) markCycleMembers(stack []*symtab.ValueSymbol, closing *symtab.ValueSymbol) {
	start := 0
	for i, s := range stack {
		if s == closing {
			start = i
			break
		}
	}
	for _, s := range stack[start:] {
		e.cyclic[s] = true
	}
	e.cyclic[closing] = true
}

func errorValue(ctx *types.Context) *types.Value {
	return &types.Value{Type: ctx.Error()}
}
