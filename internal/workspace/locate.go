package workspace

import "github.com/btdsl/btdsl/internal/ast"

// path returns the chain of nodes enclosing offset, from the file down to
// the innermost node whose range contains it. Used by hover, definition,
// document-highlights and completion to figure out what the cursor is
// sitting on and which lexical scope it's in.
func path(file *ast.File, offset int) []ast.Node {
	if file == nil || !file.Range().Contains(offset) {
		// The file's own range never includes its own end byte under
		// Contains' half-open rule; accept offset == end (cursor at EOF).
		if file == nil || offset != file.Range().End {
			return nil
		}
	}
	chain := []ast.Node{file}
	for _, d := range file.Decls {
		chain = appendDecl(chain, d, offset)
	}
	return chain
}

func at(r ast.Node, offset int) bool {
	rng := r.Range()
	return rng.Contains(offset) || offset == rng.End
}

func appendDecl(chain []ast.Node, d ast.Decl, offset int) []ast.Node {
	if d == nil || !at(d, offset) {
		return chain
	}
	chain = append(chain, d)
	switch v := d.(type) {
	case *ast.TypeAliasDecl:
		chain = appendType(chain, v.Expr, offset)
	case *ast.ExternNodeDecl:
		for _, p := range v.Ports {
			chain = appendPort(chain, p, offset)
		}
	case *ast.GlobalVarDecl:
		chain = appendType(chain, v.Type, offset)
		chain = appendExpr(chain, v.Init, offset)
	case *ast.GlobalConstDecl:
		chain = appendType(chain, v.Type, offset)
		chain = appendExpr(chain, v.Expr, offset)
	case *ast.TreeDecl:
		for _, p := range v.Params {
			if p != nil && at(p, offset) {
				chain = append(chain, p)
				chain = appendType(chain, p.Type, offset)
				chain = appendExpr(chain, p.Default, offset)
			}
		}
		for _, s := range v.Body {
			chain = appendStmt(chain, s, offset)
		}
	}
	return chain
}

func appendPort(chain []ast.Node, p *ast.ExternPort, offset int) []ast.Node {
	if p == nil || !at(p, offset) {
		return chain
	}
	chain = append(chain, p)
	chain = appendType(chain, p.Type, offset)
	chain = appendExpr(chain, p.Default, offset)
	return chain
}

func appendStmt(chain []ast.Node, s ast.Stmt, offset int) []ast.Node {
	if s == nil || !at(s, offset) {
		return chain
	}
	chain = append(chain, s)
	switch v := s.(type) {
	case *ast.NodeCallStmt:
		for _, pre := range v.Preconditions {
			if pre != nil && at(pre, offset) {
				chain = append(chain, pre)
				chain = appendExpr(chain, pre.Expr, offset)
			}
		}
		for _, arg := range v.Args {
			if arg == nil || !at(arg, offset) {
				continue
			}
			chain = append(chain, arg)
			chain = appendExpr(chain, arg.Value, offset)
			if arg.InlineVar != nil && at(arg.InlineVar, offset) {
				chain = append(chain, arg.InlineVar)
			}
		}
		for _, c := range v.Children {
			chain = appendStmt(chain, c, offset)
		}
	case *ast.AssignStmt:
		chain = appendExpr(chain, v.Target, offset)
		chain = appendExpr(chain, v.Value, offset)
	case *ast.BlackboardVarDecl:
		chain = appendType(chain, v.Type, offset)
		chain = appendExpr(chain, v.Init, offset)
	case *ast.LocalConstDecl:
		chain = appendType(chain, v.Type, offset)
		chain = appendExpr(chain, v.Expr, offset)
	}
	return chain
}

func appendExpr(chain []ast.Node, e ast.Expr, offset int) []ast.Node {
	if e == nil || !at(e, offset) {
		return chain
	}
	chain = append(chain, e)
	switch v := e.(type) {
	case *ast.BinaryExpr:
		chain = appendExpr(chain, v.LHS, offset)
		chain = appendExpr(chain, v.RHS, offset)
	case *ast.UnaryExpr:
		chain = appendExpr(chain, v.Operand, offset)
	case *ast.CastExpr:
		chain = appendExpr(chain, v.Operand, offset)
		chain = appendType(chain, v.Type, offset)
	case *ast.IndexExpr:
		chain = appendExpr(chain, v.Base, offset)
		chain = appendExpr(chain, v.Index, offset)
	case *ast.ArrayLiteralExpr:
		for _, el := range v.Elems {
			chain = appendExpr(chain, el, offset)
		}
	case *ast.ArrayRepeatExpr:
		chain = appendExpr(chain, v.Value, offset)
		chain = appendExpr(chain, v.Count, offset)
	case *ast.VecMacroExpr:
		for _, el := range v.Elems {
			chain = appendExpr(chain, el, offset)
		}
	}
	return chain
}

func appendType(chain []ast.Node, t ast.TypeNode, offset int) []ast.Node {
	if t == nil || !at(t, offset) {
		return chain
	}
	chain = append(chain, t)
	switch v := t.(type) {
	case *ast.PrimaryTypeNode:
		chain = appendExpr(chain, v.BoundedStringLen, offset)
	case *ast.StaticArrayTypeNode:
		chain = appendType(chain, v.Elem, offset)
		chain = appendExpr(chain, v.Size, offset)
	case *ast.DynamicArrayTypeNode:
		chain = appendType(chain, v.Elem, offset)
	}
	return chain
}

// innermost returns the last (deepest) node in chain, or nil.
func innermost(chain []ast.Node) ast.Node {
	if len(chain) == 0 {
		return nil
	}
	return chain[len(chain)-1]
}

// enclosingTree returns the nearest *ast.TreeDecl in chain, if any.
func enclosingTree(chain []ast.Node) *ast.TreeDecl {
	for i := len(chain) - 1; i >= 0; i-- {
		if t, ok := chain[i].(*ast.TreeDecl); ok {
			return t
		}
	}
	return nil
}

// enclosingCalls returns every *ast.NodeCallStmt in chain with children,
// outermost first, for matching against symtab.Tables.ChildScopes.
func enclosingCalls(chain []ast.Node) []*ast.NodeCallStmt {
	var calls []*ast.NodeCallStmt
	for _, n := range chain {
		if c, ok := n.(*ast.NodeCallStmt); ok && len(c.Children) > 0 {
			calls = append(calls, c)
		}
	}
	return calls
}
