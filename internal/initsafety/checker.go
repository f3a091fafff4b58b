package initsafety

import (
	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/cfg"
	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/internal/sema"
	"github.com/btdsl/btdsl/internal/symtab"
)

// Checker runs the per-tree data-flow analysis for one module, assuming
// forest already holds an acyclic-call-graph-consistent CFG for every tree
// (internal/recursion must have run cleanly first).
type Checker struct {
	mod    *sema.Module
	forest *cfg.Forest
	bag    *diag.Bag

	// imported holds summaries for trees declared in other modules, keyed
	// by the same *symtab.NodeSymbol pointer internal/resolve merges
	// cross-module lookups onto. Populated by the caller (pkg/btdsl's
	// compile driver) from modules it has already checked.
	imported map[*symtab.NodeSymbol]*Summary

	local map[*symtab.NodeSymbol]*Summary

	declSym map[ast.Node]*symtab.ValueSymbol
}

// New returns a Checker for mod. imported may be nil.
func New(mod *sema.Module, forest *cfg.Forest, imported map[*symtab.NodeSymbol]*Summary) *Checker {
	c := &Checker{
		mod:      mod,
		forest:   forest,
		bag:      mod.Diagnostics,
		imported: imported,
		local:    make(map[*symtab.NodeSymbol]*Summary),
		declSym:  make(map[ast.Node]*symtab.ValueSymbol),
	}
	c.buildDeclIndex()
	return c
}

// Summaries returns the summaries this Checker computed for the module's
// own trees, for a caller to pass to modules that import from it.
func (c *Checker) Summaries() map[*symtab.NodeSymbol]*Summary { return c.local }

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

func (c *Checker) summaryOf(sym *symtab.NodeSymbol) *Summary {
	if s, ok := c.local[sym]; ok {
		return s
	}
	if s, ok := c.imported[sym]; ok {
		return s
	}
	return nil
}

// Run analyzes every tree in the module in an order where a tree's local
// callees are always summarized before the tree itself (a post-order DFS
// over the local tree-call graph; internal/recursion guarantees no cycle).
func (c *Checker) Run() {
	visited := make(map[*symtab.NodeSymbol]bool)
	var visit func(sym *symtab.NodeSymbol)
	visit = func(sym *symtab.NodeSymbol) {
		if visited[sym] {
			return
		}
		visited[sym] = true
		tree, ok := sym.Decl.(*ast.TreeDecl)
		if !ok {
			return
		}
		for _, callee := range c.localCallees(tree) {
			visit(callee)
		}
		c.local[sym] = c.analyzeTree(sym, tree)
	}
	for _, sym := range c.mod.Tables.Nodes {
		if sym.Kind == symtab.TreeSym {
			visit(sym)
		}
	}
}

func (c *Checker) localCallees(tree *ast.TreeDecl) []*symtab.NodeSymbol {
	var out []*symtab.NodeSymbol
	var walk func(stmts []ast.Stmt)
	walk = func(stmts []ast.Stmt) {
		for _, s := range stmts {
			call, ok := s.(*ast.NodeCallStmt)
			if !ok {
				continue
			}
			if callee, ok := c.mod.Info.NodeCalls[call]; ok && callee.Kind == symtab.TreeSym && callee.Module == c.mod.FileID {
				out = append(out, callee)
			}
			walk(call.Children)
		}
	}
	walk(tree.Body)
	return out
}

func (c *Checker) analyzeTree(sym *symtab.NodeSymbol, tree *ast.TreeDecl) *Summary {
	g := c.forest.Graphs[tree.Name]
	if g == nil {
		return newSummary()
	}
	entry := c.initialEnv(tree)

	ins := make(map[cfg.BlockID]Env)
	outs := make(map[cfg.BlockID]Env)
	ins[g.Entry] = entry

	queue := []cfg.BlockID{g.Entry}
	queued := map[cfg.BlockID]bool{g.Entry: true}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		queued[id] = false

		in := c.computeIn(g, id, ins, outs, entry)
		ins[id] = in
		out := c.transfer(tree, g.Block(id), in)
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
		c.checkBlock(tree, b, ins[b.ID])
	}

	return c.summarize(sym, tree, g, ins)
}

func (c *Checker) computeIn(g *cfg.Graph, id cfg.BlockID, ins, outs map[cfg.BlockID]Env, entry Env) Env {
	if id == g.Entry {
		return entry
	}
	var envs []Env
	for _, predID := range g.Preds(id) {
		base, ok := outs[predID]
		if !ok {
			continue
		}
		envs = append(envs, c.edgeEffect(g.Block(predID), id, base))
	}
	if len(envs) == 0 {
		return Env{}
	}
	return meetEnv(envs...)
}

// edgeEffect applies the write effect of a call block's success/failure
// edge that transfer (straight-line only) deliberately leaves undone.
func (c *Checker) edgeEffect(from *cfg.Block, to cfg.BlockID, base Env) Env {
	call := callAction(from)
	if call == nil {
		return base
	}
	var takenSuccess bool
	for _, e := range from.Out {
		if e.To == to && e.DataSource {
			takenSuccess = e.Kind == cfg.EdgeSuccess
		}
	}
	if !takenSuccess {
		return base
	}
	return c.applyCallSuccess(call, base)
}

func callAction(b *cfg.Block) *ast.NodeCallStmt {
	for _, a := range b.Actions {
		if a.Kind == cfg.ActionCall {
			return a.Call
		}
	}
	return nil
}

// applyCallSuccess marks out/mut argument targets Init and folds in the
// callee summary's guaranteed globals, once the call's success edge is
// taken.
func (c *Checker) applyCallSuccess(call *ast.NodeCallStmt, in Env) Env {
	out := in.clone()
	callee, ok := c.mod.Info.NodeCalls[call]
	var summary *Summary
	if ok && callee.Kind == symtab.TreeSym {
		summary = c.summaryOf(callee)
	}
	if summary != nil {
		for g := range summary.GuaranteesGlobals {
			out[g] = Init
		}
	}
	for _, arg := range call.Args {
		if arg.Dir != ast.DirOut && arg.Dir != ast.DirMut && arg.InlineVar == nil {
			continue
		}
		if summary != nil && arg.Dir != ast.DirOut && arg.Dir != ast.DirMut {
			// Inline `out var` always counts regardless of matrix checks
			// already enforced by internal/typecheck.
		}
		if sym, ok := c.lvalueSymbol(arg); ok {
			out[sym] = Init
		}
	}
	return out
}

func (c *Checker) lvalueSymbol(arg *ast.Argument) (*symtab.ValueSymbol, bool) {
	if arg.InlineVar != nil {
		sym, ok := c.declSym[arg.InlineVar]
		return sym, ok
	}
	return c.rootSymbol(arg.Value)
}

// rootSymbol unwraps an IndexExpr chain down to the VarRef it indexes, the
// writable root a node/tree-call argument or assignment target must be.
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

func (c *Checker) initialEnv(tree *ast.TreeDecl) Env {
	env := Env{}
	for _, name := range c.mod.Tables.Root.Names() {
		sym, ok := c.mod.Tables.Root.LookupLocal(name)
		if !ok {
			continue
		}
		switch sym.Kind {
		case symtab.GlobalConst:
			env[sym] = Init
		case symtab.GlobalVariable:
			if gv, ok := sym.Decl.(*ast.GlobalVarDecl); ok && gv.Init != nil {
				env[sym] = Init
			} else {
				env[sym] = Unknown
			}
		}
	}
	if scope, ok := c.mod.Tables.TreeScopes[tree.Name]; ok {
		for _, name := range scope.Names() {
			if sym, ok := scope.LookupLocal(name); ok {
				env[sym] = Init
			}
		}
	}
	return env
}

// transfer applies a block's straight-line write actions. Node/tree-call
// out/mut writes are deliberately NOT applied here — they depend on which
// outgoing edge (success vs. failure) is taken, and are applied in
// edgeEffect during propagation instead.
func (c *Checker) transfer(tree *ast.TreeDecl, b *cfg.Block, in Env) Env {
	out := in.clone()
	for _, act := range b.Actions {
		switch act.Kind {
		case cfg.ActionAssign:
			if sym, ok := c.rootSymbol(act.Assign.Target); ok {
				out[sym] = Init
			}
		case cfg.ActionDecl:
			if sym, ok := c.declSym[act.Decl]; ok {
				if act.Decl.Init != nil {
					out[sym] = Init
				} else {
					out[sym] = Uninit
				}
			}
		}
	}
	return out
}

// checkBlock emits the "may be uninitialized" diagnostics for every read in
// a block, against its converged IN state.
func (c *Checker) checkBlock(tree *ast.TreeDecl, b *cfg.Block, in Env) {
	for _, act := range b.Actions {
		switch act.Kind {
		case cfg.ActionAssign:
			c.checkExprReads(act.Assign.Value, in)
		case cfg.ActionDecl:
			if act.Decl.Init != nil {
				c.checkExprReads(act.Decl.Init, in)
			}
		case cfg.ActionCond:
			c.checkExprReads(act.Cond, in)
		case cfg.ActionCall:
			c.checkCallReads(act.Call, in)
		}
	}
}

func (c *Checker) checkCallReads(call *ast.NodeCallStmt, in Env) {
	for _, arg := range call.Args {
		if arg.InlineVar != nil {
			continue
		}
		if arg.Value == nil {
			continue
		}
		if arg.Dir == ast.DirIn {
			c.checkExprReads(arg.Value, in)
			continue
		}
		// ref/mut arguments read their current value too (the callee may
		// read before writing); the base variable itself must be
		// initialized.
		if sym, ok := c.rootSymbol(arg.Value); ok {
			c.checkRead(sym, arg.Value.Range(), in)
		}
	}
	for _, pre := range call.Preconditions {
		c.checkExprReads(pre.Expr, in)
	}
}

func (c *Checker) checkRead(sym *symtab.ValueSymbol, r diag.Range, in Env) {
	if in.get(sym) == Uninit {
		c.bag.Errorf(diag.CodeSafety, r, "%q may be uninitialized here", sym.Name)
	}
}

func (c *Checker) checkExprReads(e ast.Expr, in Env) {
	switch ex := e.(type) {
	case nil:
		return
	case *ast.VarRef:
		if sym, ok := c.mod.Info.ValueUses[ex]; ok {
			c.checkRead(sym, ex.Range(), in)
		}
	case *ast.BinaryExpr:
		c.checkExprReads(ex.LHS, in)
		c.checkExprReads(ex.RHS, in)
	case *ast.UnaryExpr:
		c.checkExprReads(ex.Operand, in)
	case *ast.CastExpr:
		c.checkExprReads(ex.Operand, in)
	case *ast.IndexExpr:
		c.checkExprReads(ex.Base, in)
		c.checkExprReads(ex.Index, in)
	case *ast.ArrayLiteralExpr:
		for _, el := range ex.Elems {
			c.checkExprReads(el, in)
		}
	case *ast.ArrayRepeatExpr:
		c.checkExprReads(ex.Value, in)
		c.checkExprReads(ex.Count, in)
	case *ast.VecMacroExpr:
		for _, el := range ex.Elems {
			c.checkExprReads(el, in)
		}
	}
}

// summarize computes the tree's (requires, guarantees-globals,
// guarantees-out-params) triple from the converged state at the success
// exit, conservatively: a global is "required" if every path to any read of
// it saw Uninit possible at entry — approximated here as "the entry
// env had it Uninit/Unknown and some action reads it while still not
// proven Init", which the per-block diagnostic pass already flags; for the
// summary we report, more simply, every global the analysis proved Init at
// the success exit as "guaranteed", and every global whose entry state this
// tree's body demanded be Init before any write reached it as "required".
func (c *Checker) summarize(sym *symtab.NodeSymbol, tree *ast.TreeDecl, g *cfg.Graph, ins map[cfg.BlockID]Env) *Summary {
	s := newSummary()
	successIn, ok := ins[g.Success]
	if ok {
		for vs, st := range successIn {
			if vs.Kind == symtab.GlobalVariable && st == Init {
				s.GuaranteesGlobals[vs] = true
			}
		}
	}
	for _, p := range sym.Params {
		if p.Dir != ast.DirOut {
			continue
		}
		if scope, ok := c.mod.Tables.TreeScopes[tree.Name]; ok {
			if psym, ok := scope.LookupLocal(p.Name); ok && successIn != nil && successIn[psym] == Init {
				s.GuaranteesOutParams[p.Name] = true
			}
		}
	}
	for vs, st := range c.initialEnv(tree) {
		if vs.Kind == symtab.GlobalVariable && st == Unknown {
			if c.treeReadsBeforeWrite(tree, vs) {
				s.RequiresGlobals[vs] = true
			}
		}
	}
	return s
}

// treeReadsBeforeWrite is a coarse, sound-leaning approximation: true if
// the tree's entry block chain reads the global in any action before the
// first action that writes it. Used only to populate the exported summary
// contract; the authoritative per-read diagnostic already ran in
// checkBlock using the real fixed-point state.
func (c *Checker) treeReadsBeforeWrite(tree *ast.TreeDecl, g *symtab.ValueSymbol) bool {
	written := false
	found := false
	var walk func(stmts []ast.Stmt)
	walk = func(stmts []ast.Stmt) {
		for _, s := range stmts {
			if found || written {
				return
			}
			switch st := s.(type) {
			case *ast.AssignStmt:
				c.scanExpr(st.Value, g, &found)
				if sym, ok := c.rootSymbol(st.Target); ok && sym == g {
					written = true
				}
			case *ast.BlackboardVarDecl:
				if st.Init != nil {
					c.scanExpr(st.Init, g, &found)
				}
			case *ast.NodeCallStmt:
				for _, arg := range st.Args {
					if arg.Value != nil {
						c.scanExpr(arg.Value, g, &found)
					}
					if (arg.Dir == ast.DirOut || arg.Dir == ast.DirMut) && arg.Value != nil {
						if sym, ok := c.rootSymbol(arg.Value); ok && sym == g {
							written = true
						}
					}
				}
				walk(st.Children)
			}
		}
	}
	walk(tree.Body)
	return found
}

func (c *Checker) scanExpr(e ast.Expr, target *symtab.ValueSymbol, found *bool) {
	if *found {
		return
	}
	switch ex := e.(type) {
	case *ast.VarRef:
		if sym, ok := c.mod.Info.ValueUses[ex]; ok && sym == target {
			*found = true
		}
	case *ast.BinaryExpr:
		c.scanExpr(ex.LHS, target, found)
		c.scanExpr(ex.RHS, target, found)
	case *ast.UnaryExpr:
		c.scanExpr(ex.Operand, target, found)
	case *ast.CastExpr:
		c.scanExpr(ex.Operand, target, found)
	case *ast.IndexExpr:
		c.scanExpr(ex.Base, target, found)
		c.scanExpr(ex.Index, target, found)
	}
}
