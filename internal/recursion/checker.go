// Package recursion implements component 9 of the middle-end: the
// tree-recursion checker. It must run and succeed before
// internal/initsafety, which assumes an acyclic tree call graph when it
// computes subtree summaries bottom-up (§4.7).
package recursion

import (
	"strings"

	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/internal/sema"
	"github.com/btdsl/btdsl/internal/symtab"
)

// edge is one call from a tree to the node it calls; site records which
// *ast.NodeCallStmt closes the edge, for blaming.
type edge struct {
	to   *symtab.NodeSymbol
	site *ast.NodeCallStmt
}

// Checker builds the call graph reachable from one entry module and detects
// cycles (self- and mutual recursion are both banned, per §4.9).
type Checker struct {
	entry *sema.Module
	bag   *diag.Bag

	nodes map[*symtab.NodeSymbol]bool
	edges map[*symtab.NodeSymbol][]edge
}

// New returns a Checker rooted at entry.
func New(entry *sema.Module) *Checker {
	return &Checker{
		entry: entry,
		bag:   entry.Diagnostics,
		nodes: make(map[*symtab.NodeSymbol]bool),
		edges: make(map[*symtab.NodeSymbol][]edge),
	}
}

// Run builds the call graph restricted to trees visible from the entry
// module (every tree in the entry module, plus any public tree in a
// reachable module) and reports every cycle it finds.
func (c *Checker) Run() {
	c.collectVisibleTrees()
	c.buildEdges()
	c.detectCycles()
}

// collectVisibleTrees walks every tree symbol reachable through the entry
// module's own declarations and its transitive imports' public trees.
func (c *Checker) collectVisibleTrees() {
	for _, sym := range c.entry.Tables.Nodes {
		if sym.Kind == symtab.TreeSym {
			c.nodes[sym] = true
		}
	}

	seen := map[*sema.Module]bool{c.entry: true}
	var queue []*sema.Module
	for _, imp := range c.entry.DirectImports {
		if imp != nil && !seen[imp] {
			seen[imp] = true
			queue = append(queue, imp)
		}
	}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		for _, sym := range m.Tables.PublicNodes() {
			if sym.Kind == symtab.TreeSym {
				c.nodes[sym] = true
			}
		}
		for _, imp := range m.DirectImports {
			if imp != nil && !seen[imp] {
				seen[imp] = true
				queue = append(queue, imp)
			}
		}
	}
}

// buildEdges walks every included tree's body for node-call statements
// resolved (by internal/resolve) to another tree, recording an edge only
// when the callee is itself in the visible set.
func (c *Checker) buildEdges() {
	for sym := range c.nodes {
		tree, ok := sym.Decl.(*ast.TreeDecl)
		if !ok {
			continue
		}
		mod := c.moduleOf(sym)
		if mod == nil {
			continue
		}
		c.walkBody(sym, mod, tree.Body)
	}
}

func (c *Checker) moduleOf(sym *symtab.NodeSymbol) *sema.Module {
	if sym.Module == c.entry.FileID {
		return c.entry
	}
	var found *sema.Module
	seen := map[*sema.Module]bool{c.entry: true}
	queue := []*sema.Module{c.entry}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		if m.FileID == sym.Module {
			found = m
			break
		}
		for _, imp := range m.DirectImports {
			if imp != nil && !seen[imp] {
				seen[imp] = true
				queue = append(queue, imp)
			}
		}
	}
	return found
}

func (c *Checker) walkBody(from *symtab.NodeSymbol, mod *sema.Module, stmts []ast.Stmt) {
	for _, s := range stmts {
		call, ok := s.(*ast.NodeCallStmt)
		if !ok {
			continue
		}
		if callee, ok := mod.Info.NodeCalls[call]; ok && callee.Kind == symtab.TreeSym && c.nodes[callee] {
			c.edges[from] = append(c.edges[from], edge{to: callee, site: call})
		}
		c.walkBody(from, mod, call.Children)
	}
}

type color int

const (
	white color = iota
	gray
	black
)

// detectCycles runs DFS coloring over the call graph, reporting each back
// edge once with the full cycle path and blaming the call site that closes
// it.
func (c *Checker) detectCycles() {
	colors := make(map[*symtab.NodeSymbol]color, len(c.nodes))
	var stack []*symtab.NodeSymbol
	reported := make(map[string]bool)

	var visit func(sym *symtab.NodeSymbol)
	visit = func(sym *symtab.NodeSymbol) {
		colors[sym] = gray
		stack = append(stack, sym)
		for _, e := range c.edges[sym] {
			switch colors[e.to] {
			case black:
				continue
			case gray:
				c.reportCycle(stack, e, reported)
			default:
				visit(e.to)
			}
		}
		stack = stack[:len(stack)-1]
		colors[sym] = black
	}

	for sym := range c.nodes {
		if colors[sym] == white {
			visit(sym)
		}
	}
}

func (c *Checker) reportCycle(stack []*symtab.NodeSymbol, closing edge, reported map[string]bool) {
	start := 0
	for i, s := range stack {
		if s == closing.to {
			start = i
			break
		}
	}
	names := make([]string, 0, len(stack)-start+1)
	for _, s := range stack[start:] {
		names = append(names, s.Name)
	}
	names = append(names, closing.to.Name)
	key := strings.Join(names, "->")
	if reported[key] {
		return
	}
	reported[key] = true
	c.bag.Errorf(diag.CodeSafety, closing.site.Range(),
		"recursive tree call: %s", strings.Join(names, " -> "))
}
