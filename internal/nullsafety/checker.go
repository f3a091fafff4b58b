// Package nullsafety implements component 11 of the middle-end: the
// null-safety checker. It runs a forward analysis over each tree's CFG
// (internal/cfg) tracking which nullable variables are currently proven
// non-null (§4.8), including condition narrowing at branches and rejecting
// narrowing leaks out of the scope the narrowed local belongs to.
package nullsafety

import (
	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/cfg"
	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/internal/sema"
	"github.com/btdsl/btdsl/internal/symtab"
	"github.com/btdsl/btdsl/internal/types"
)

// Set is the NotNull set: which nullable-typed variables are currently
// proven non-null. Non-nullable variables are never tracked here — they
// are always, trivially, not-null.
type Set map[*symtab.ValueSymbol]bool

func (s Set) clone() Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func (s Set) equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for k := range s {
		if !o[k] {
			return false
		}
	}
	return true
}

// intersect is the join operator: a variable is NotNull after a merge only
// if every incoming path proved it NotNull.
func intersect(sets ...Set) Set {
	if len(sets) == 0 {
		return Set{}
	}
	out := sets[0].clone()
	for _, s := range sets[1:] {
		for k := range out {
			if !s[k] {
				delete(out, k)
			}
		}
	}
	return out
}

// Checker runs the per-tree forward analysis for one module.
type Checker struct {
	mod    *sema.Module
	forest *cfg.Forest
	bag    *diag.Bag

	declSym map[ast.Node]*symtab.ValueSymbol
}

// New returns a Checker for mod.
//
// Narrowing-leak rejection (§4.8) falls out of the resolver for free: a
// VarRef can only ever bind to a symbol whose declaring scope lexically
// encloses the use (internal/resolve's scope-chain lookup), so a narrowing
// fact recorded against a local's *symtab.ValueSymbol can never be read
// back from outside that local's scope in the first place — there is no
// separate leak check to perform.
func New(mod *sema.Module, forest *cfg.Forest) *Checker {
	c := &Checker{
		mod:     mod,
		forest:  forest,
		bag:     mod.Diagnostics,
		declSym: make(map[ast.Node]*symtab.ValueSymbol),
	}
	c.buildDeclIndex()
	return c
}

func (c *Checker) buildDeclIndex() {
	add := func(scope *symtab.Scope) {
		if scope == nil {
			return
		}
		for _, name := range scope.Names() {
			if sym, ok := scope.LookupLocal(name); ok {
				c.declSym[sym.Decl] = sym
			}
		}
	}
	add(c.mod.Tables.Root)
	for _, s := range c.mod.Tables.TreeScopes {
		add(s)
	}
	for _, s := range c.mod.Tables.BodyScopes {
		add(s)
	}
	for _, s := range c.mod.Tables.ChildScopes {
		add(s)
	}
}

// Run analyzes every tree declared in the module.
func (c *Checker) Run() {
	for _, d := range c.mod.Program.Decls {
		tree, ok := d.(*ast.TreeDecl)
		if !ok {
			continue
		}
		c.analyzeTree(tree)
	}
}

func (c *Checker) analyzeTree(tree *ast.TreeDecl) {
	g := c.forest.Graphs[tree.Name]
	if g == nil {
		return
	}
	ins := make(map[cfg.BlockID]Set)
	outs := make(map[cfg.BlockID]Set)
	ins[g.Entry] = c.initialSet(tree)

	queue := []cfg.BlockID{g.Entry}
	queued := map[cfg.BlockID]bool{g.Entry: true}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		queued[id] = false

		in := c.computeIn(g, id, outs, ins[g.Entry])
		ins[id] = in
		out := c.transfer(g.Block(id), in)
		if prev, ok := outs[id]; !ok || !prev.equal(out) {
			outs[id] = out
			for _, e := range g.Block(id).Out {
				if !queued[e.To] {
					queued[e.To] = true
					queue = append(queue, e.To)
				}
			}
		}
	}

	for _, b := range g.Blocks {
		c.checkBlock(b, ins[b.ID])
	}
}

func (c *Checker) initialSet(tree *ast.TreeDecl) Set {
	// Every nullable variable starts out of the set (possibly null); only
	// non-nullable-typed symbols are implicitly always-safe, and those are
	// never entered into Set at all (checkCall consults the set only for
	// symbols whose type is nullable).
	return Set{}
}

func (c *Checker) computeIn(g *cfg.Graph, id cfg.BlockID, outs map[cfg.BlockID]Set, entry Set) Set {
	if id == g.Entry {
		return entry
	}
	var sets []Set
	for _, predID := range g.Preds(id) {
		out, ok := outs[predID]
		if !ok {
			continue
		}
		sets = append(sets, c.edgeEffect(g.Block(predID), id, out))
	}
	if len(sets) == 0 {
		return Set{}
	}
	return intersect(sets...)
}

// edgeEffect applies condition narrowing (§4.8) when the edge leaving a
// block is an EdgeCond branch of a precondition's boolean expression.
func (c *Checker) edgeEffect(from *cfg.Block, to cfg.BlockID, base Set) Set {
	for _, e := range from.Out {
		if e.To != to || e.Kind != cfg.EdgeCond {
			continue
		}
		return c.narrow(e.Cond, e.CondValue, base)
	}
	return base
}

// narrow computes the facts that must hold given expr evaluated to value,
// per §4.8's condition narrowing rules.
func (c *Checker) narrow(expr ast.Expr, value bool, base Set) Set {
	switch ex := expr.(type) {
	case *ast.UnaryExpr:
		if ex.Op == ast.OpNot {
			return c.narrow(ex.Operand, !value, base)
		}
	case *ast.BinaryExpr:
		switch ex.Op {
		case ast.OpAnd:
			if value {
				return c.narrow(ex.RHS, true, c.narrow(ex.LHS, true, base))
			}
			return base
		case ast.OpEq:
			if x, isNull := nullCompare(ex); isNull {
				// x == null: false means x is NotNull.
				if !value {
					return c.insert(base, x)
				}
				return c.erase(base, x)
			}
		case ast.OpNe:
			if x, isNull := nullCompare(ex); isNull {
				// x != null: true means x is NotNull.
				if value {
					return c.insert(base, x)
				}
				return c.erase(base, x)
			}
		default:
			if ex.Op.IsComparison() {
				if x, ok := c.nullableVarRef(ex.LHS); ok && isConcrete(ex.RHS) && value {
					return c.insert(base, x)
				}
				if x, ok := c.nullableVarRef(ex.RHS); ok && isConcrete(ex.LHS) && value {
					return c.insert(base, x)
				}
			}
		}
	}
	return base
}

// nullCompare reports whether one side of an ==/!= is the null literal and
// the other a nullable var ref, returning that var ref's symbol.
func nullCompare(ex *ast.BinaryExpr) (ast.Expr, bool) {
	if _, ok := ex.RHS.(*ast.NullLiteral); ok {
		return ex.LHS, true
	}
	if _, ok := ex.LHS.(*ast.NullLiteral); ok {
		return ex.RHS, true
	}
	return nil, false
}

func isConcrete(e ast.Expr) bool {
	switch e.(type) {
	case *ast.NullLiteral:
		return false
	default:
		return true
	}
}

func (c *Checker) nullableVarRef(e ast.Expr) (*symtab.ValueSymbol, bool) {
	vr, ok := e.(*ast.VarRef)
	if !ok {
		return nil, false
	}
	sym, ok := c.mod.Info.ValueUses[vr]
	if !ok || sym.Type == nil || !types.IsNullable(sym.Type) {
		return nil, false
	}
	return sym, true
}

func (c *Checker) insert(base Set, e ast.Expr) Set {
	sym, ok := c.nullableVarRef(e)
	if !ok {
		return base
	}
	out := base.clone()
	out[sym] = true
	return out
}

func (c *Checker) erase(base Set, e ast.Expr) Set {
	sym, ok := c.nullableVarRef(e)
	if !ok {
		return base
	}
	out := base.clone()
	delete(out, sym)
	return out
}

// transfer applies the straight-line narrowing effects of assignment and
// declaration actions.
func (c *Checker) transfer(b *cfg.Block, in Set) Set {
	out := in.clone()
	for _, act := range b.Actions {
		switch act.Kind {
		case cfg.ActionAssign:
			c.applyWrite(out, act.Assign.Target, act.Assign.Value)
		case cfg.ActionDecl:
			if act.Decl.Init != nil {
				c.applyWriteToDecl(out, act.Decl, act.Decl.Init)
			}
		case cfg.ActionCall:
			c.invalidateCallWrites(out, act.Call)
		}
	}
	return out
}

func (c *Checker) applyWrite(s Set, target, value ast.Expr) {
	sym, ok := c.rootSymbol(target)
	if !ok {
		return
	}
	if c.rhsIsNonNull(value) {
		s[sym] = true
	} else {
		delete(s, sym)
	}
}

func (c *Checker) applyWriteToDecl(s Set, decl *ast.BlackboardVarDecl, value ast.Expr) {
	sym, ok := c.declSym[decl]
	if !ok {
		return
	}
	if c.rhsIsNonNull(value) {
		s[sym] = true
	} else {
		delete(s, sym)
	}
}

// rhsIsNonNull reports whether value is guaranteed non-null: a non-null
// literal, or an expression whose statically known type isn't nullable. The
// null literal and any expression of nullable type count as possibly-null,
// even a variable the set currently proves non-null; an expression with no
// recorded type counts as non-null.
func (c *Checker) rhsIsNonNull(value ast.Expr) bool {
	if _, ok := value.(*ast.NullLiteral); ok {
		return false
	}
	t, ok := c.mod.Info.ExprTypes[value]
	if !ok {
		return true
	}
	return !types.IsNullable(t)
}

// invalidateCallWrites erases narrowing for any mut/out argument target,
// since the callee may assign it a null value.
func (c *Checker) invalidateCallWrites(s Set, call *ast.NodeCallStmt) {
	for _, arg := range call.Args {
		if arg.Dir != ast.DirMut && arg.Dir != ast.DirOut && arg.InlineVar == nil {
			continue
		}
		var sym *symtab.ValueSymbol
		var ok bool
		if arg.InlineVar != nil {
			sym, ok = c.declSym[arg.InlineVar]
		} else {
			sym, ok = c.rootSymbol(arg.Value)
		}
		if ok {
			delete(s, sym)
		}
	}
}

func (c *Checker) rootSymbol(e ast.Expr) (*symtab.ValueSymbol, bool) {
	switch ex := e.(type) {
	case *ast.VarRef:
		sym, ok := c.mod.Info.ValueUses[ex]
		return sym, ok
	case *ast.IndexExpr:
		return c.rootSymbol(ex.Base)
	default:
		return nil, false
	}
}

// checkBlock walks every action of b against the converged IN state. The
// only uses reported are call arguments (see checkCall): a nullable
// variable not currently proven NotNull, or the null literal, passed to a
// non-nullable port or parameter. Other uses of a nullable value inside an
// expression are walked but not reported.
func (c *Checker) checkBlock(b *cfg.Block, in Set) {
	for _, act := range b.Actions {
		switch act.Kind {
		case cfg.ActionAssign:
			c.checkExpr(act.Assign.Value, in)
		case cfg.ActionDecl:
			if act.Decl.Init != nil {
				c.checkExpr(act.Decl.Init, in)
			}
		case cfg.ActionCond:
			c.checkExpr(act.Cond, in)
		case cfg.ActionCall:
			c.checkCall(act.Call, in)
		}
	}
}

func (c *Checker) checkCall(call *ast.NodeCallStmt, in Set) {
	sym, ok := c.mod.Info.NodeCalls[call]
	for _, arg := range call.Args {
		if arg.InlineVar != nil || arg.Value == nil {
			continue
		}
		c.checkExpr(arg.Value, in)
		if ok {
			if _, t, _, found := sym.PortOrParam(arg.Port); found && !types.IsNullable(t) {
				if vr, isVar := arg.Value.(*ast.VarRef); isVar {
					if vsym, okv := c.mod.Info.ValueUses[vr]; okv && vsym.Type != nil && types.IsNullable(vsym.Type) && !in[vsym] {
						c.bag.Errorf(diag.CodeSafety, arg.Range(), "%q may be null here, but %q requires a non-null value", vsym.Name, arg.Port)
					}
				} else if _, isNull := arg.Value.(*ast.NullLiteral); isNull {
					c.bag.Errorf(diag.CodeSafety, arg.Range(), "null literal passed to non-nullable port %q", arg.Port)
				}
			}
		}
	}
	for _, pre := range call.Preconditions {
		c.checkExpr(pre.Expr, in)
	}
}

func (c *Checker) checkExpr(e ast.Expr, in Set) {
	switch ex := e.(type) {
	case nil:
		return
	case *ast.BinaryExpr:
		c.checkExpr(ex.LHS, in)
		c.checkExpr(ex.RHS, in)
	case *ast.UnaryExpr:
		c.checkExpr(ex.Operand, in)
	case *ast.CastExpr:
		c.checkExpr(ex.Operand, in)
	case *ast.IndexExpr:
		c.checkExpr(ex.Base, in)
		c.checkExpr(ex.Index, in)
	case *ast.ArrayLiteralExpr:
		for _, el := range ex.Elems {
			c.checkExpr(el, in)
		}
	case *ast.ArrayRepeatExpr:
		c.checkExpr(ex.Value, in)
		c.checkExpr(ex.Count, in)
	case *ast.VecMacroExpr:
		for _, el := range ex.Elems {
			c.checkExpr(el, in)
		}
	}
}
