package cfg

import "github.com/btdsl/btdsl/internal/ast"

// Builder constructs one Graph per tree declared in a file.
type Builder struct {
	forest *Forest
}

// New returns a Builder.
func New() *Builder { return &Builder{forest: NewForest()} }

// Build runs the CFG construction for every tree in file and returns the
// resulting forest.
func (b *Builder) Build(file *ast.File) *Forest {
	for _, d := range file.Decls {
		tree, ok := d.(*ast.TreeDecl)
		if !ok {
			continue
		}
		b.forest.Graphs[tree.Name] = b.buildTree(tree)
	}
	return b.forest
}

// treeBuilder holds the per-tree construction state.
type treeBuilder struct {
	g *Graph
}

func (b *Builder) buildTree(tree *ast.TreeDecl) *Graph {
	g := &Graph{Tree: tree}
	tb := &treeBuilder{g: g}
	g.Success = tb.newBlock()
	g.Failure = tb.newBlock()
	g.Entry = tb.buildStmts(tree.Body, g.Success, g.Failure)
	return g
}

func (tb *treeBuilder) newBlock() BlockID {
	id := BlockID(len(tb.g.Blocks))
	tb.g.Blocks = append(tb.g.Blocks, &Block{ID: id})
	return id
}

func (tb *treeBuilder) block(id BlockID) *Block { return tb.g.Blocks[id] }

func (tb *treeBuilder) addEdge(from BlockID, e Edge) {
	tb.block(from).Out = append(tb.block(from).Out, e)
}

// buildStmts chains a statement list as an implicit All/Chained sequence:
// each statement's success flows into the next, any failure escapes to
// fail, and the last statement's success reaches succ. Returns the entry
// block of the whole chain (succ itself if the list is empty).
func (tb *treeBuilder) buildStmts(stmts []ast.Stmt, succ, fail BlockID) BlockID {
	target := succ
	for i := len(stmts) - 1; i >= 0; i-- {
		target = tb.buildStmt(stmts[i], target, fail)
	}
	return target
}

func (tb *treeBuilder) buildStmt(s ast.Stmt, succ, fail BlockID) BlockID {
	switch st := s.(type) {
	case *ast.AssignStmt:
		blk := tb.newBlock()
		tb.block(blk).Actions = append(tb.block(blk).Actions, Action{Kind: ActionAssign, Assign: st})
		tb.addEdge(blk, Edge{To: succ, Kind: EdgeNext, DataSource: true})
		return blk
	case *ast.BlackboardVarDecl:
		blk := tb.newBlock()
		tb.block(blk).Actions = append(tb.block(blk).Actions, Action{Kind: ActionDecl, Decl: st})
		tb.addEdge(blk, Edge{To: succ, Kind: EdgeNext, DataSource: true})
		return blk
	case *ast.LocalConstDecl:
		// Constants carry no runtime effect relevant to the CFG; fall
		// straight through to the next statement.
		return succ
	case *ast.NodeCallStmt:
		return tb.buildNodeCall(st, succ, fail)
	default:
		return succ
	}
}

// buildNodeCall wires a node/tree call's preconditions (§4.6) around its
// body (a leaf call action, or the compound-node child graph).
func (tb *treeBuilder) buildNodeCall(call *ast.NodeCallStmt, succ, fail BlockID) BlockID {
	body := tb.buildBody(call, succ, fail)
	cont := body
	for i := len(call.Preconditions) - 1; i >= 0; i-- {
		pre := call.Preconditions[i]
		blk := tb.newBlock()
		tb.block(blk).Actions = append(tb.block(blk).Actions, Action{Kind: ActionCond, Cond: pre.Expr})
		switch pre.Kind {
		case ast.PreGuard:
			// false -> parent-failure; true -> continue toward body.
			tb.addEdge(blk, Edge{To: cont, Kind: EdgeCond, Cond: pre.Expr, CondValue: true, DataSource: true})
			tb.addEdge(blk, Edge{To: fail, Kind: EdgeCond, Cond: pre.Expr, CondValue: false, DataSource: true})
		case ast.PreSuccessIf:
			// true -> parent-success (bypass); false -> continue.
			tb.addEdge(blk, Edge{To: succ, Kind: EdgeCond, Cond: pre.Expr, CondValue: true, DataSource: true})
			tb.addEdge(blk, Edge{To: cont, Kind: EdgeCond, Cond: pre.Expr, CondValue: false, DataSource: true})
		case ast.PreFailureIf:
			// true -> parent-failure; false -> continue.
			tb.addEdge(blk, Edge{To: fail, Kind: EdgeCond, Cond: pre.Expr, CondValue: true, DataSource: true})
			tb.addEdge(blk, Edge{To: cont, Kind: EdgeCond, Cond: pre.Expr, CondValue: false, DataSource: true})
		case ast.PreSkipIf:
			// true -> parent-success without running the body; false -> continue.
			tb.addEdge(blk, Edge{To: succ, Kind: EdgeCond, Cond: pre.Expr, CondValue: true, DataSource: true})
			tb.addEdge(blk, Edge{To: cont, Kind: EdgeCond, Cond: pre.Expr, CondValue: false, DataSource: true})
		case ast.PreRunWhile:
			// run_while(e) == skip_if(!e): e true -> continue; e false -> success.
			tb.addEdge(blk, Edge{To: cont, Kind: EdgeCond, Cond: pre.Expr, CondValue: true, DataSource: true})
			tb.addEdge(blk, Edge{To: succ, Kind: EdgeCond, Cond: pre.Expr, CondValue: false, DataSource: true})
		}
		cont = blk
	}
	return cont
}

func (tb *treeBuilder) buildBody(call *ast.NodeCallStmt, succ, fail BlockID) BlockID {
	if len(call.Children) == 0 {
		blk := tb.newBlock()
		tb.block(blk).Actions = append(tb.block(blk).Actions, Action{Kind: ActionCall, Call: call})
		tb.addEdge(blk, Edge{To: succ, Kind: EdgeSuccess, DataSource: true})
		tb.addEdge(blk, Edge{To: fail, Kind: EdgeFailure, DataSource: true})
		return blk
	}
	return tb.buildCompound(call, succ, fail)
}

// buildCompound wires a compound node's children per its BehaviorAttr
// (§4.6): DataPolicy decides how child outcomes combine into the parent
// outcome; FlowPolicy decides whether a child's data state feeds the next
// sibling (Chained) or every sibling starts fresh from the node's
// pre-state (Isolated).
func (tb *treeBuilder) buildCompound(call *ast.NodeCallStmt, succ, fail BlockID) BlockID {
	pre := tb.newBlock()
	children := call.Children
	entries := make([]BlockID, len(children))

	switch call.Attr.Data {
	case ast.PolicyAll:
		next := succ
		for i := len(children) - 1; i >= 0; i-- {
			entries[i] = tb.buildStmt(children[i], next, fail)
			next = entries[i]
		}
	case ast.PolicyAny:
		next := fail
		for i := len(children) - 1; i >= 0; i-- {
			entries[i] = tb.buildStmt(children[i], succ, next)
			next = entries[i]
		}
	case ast.PolicyNone:
		// Both outcomes of child i flow to child i+1; the compound's own
		// outcome is independent of what its children do, so once the
		// chain runs out it always reaches parent-success.
		next := succ
		for i := len(children) - 1; i >= 0; i-- {
			entries[i] = tb.buildStmt(children[i], next, next)
			next = entries[i]
		}
	}

	if call.Attr.Flow == ast.FlowIsolated {
		// Re-point every child's data predecessor at the shared pre-block:
		// drop the DataSource flag on whatever sibling-to-sibling edges
		// buildStmt just created, and add a fresh
		// DataSource edge from pre into each child's entry.
		for _, b := range tb.g.Blocks {
			for i := range b.Out {
				for _, e := range entries {
					if b.Out[i].To == e {
						b.Out[i].DataSource = false
					}
				}
			}
		}
		for _, e := range entries {
			tb.addEdge(pre, Edge{To: e, Kind: EdgeNext, DataSource: true})
		}
	} else {
		if len(entries) > 0 {
			tb.addEdge(pre, Edge{To: entries[0], Kind: EdgeNext, DataSource: true})
		}
	}
	if len(entries) == 0 {
		tb.addEdge(pre, Edge{To: succ, Kind: EdgeNext, DataSource: true})
	}
	return pre
}
