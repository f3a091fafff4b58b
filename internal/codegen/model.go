package codegen

import (
	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/symtab"
	"github.com/btdsl/btdsl/internal/types"
)

// modelEntry is one <TreeNodesModel> member: either an extern node's
// signature or a parameterized tree's, normalized to a single shape so
// both sort and emit the same way.
type modelEntry struct {
	kind  int // ast.NodeCategory ordinal; parameterized trees sort as CategorySubtree
	name  string
	ports []modelPort
}

type modelPort struct {
	name    string
	dir     ast.PortDirection
	typ     string
	def     string
	hasDef  bool
}

// buildModel collects the TreeNodesModel entries for every extern node
// symbol actually used by the emitted trees, plus one entry per emitted
// tree that declares parameters (§4.10).
func buildModel(used map[*symtab.NodeSymbol]bool, emittedTrees []*symtab.NodeSymbol) []modelEntry {
	var entries []modelEntry
	for sym := range used {
		if sym.Kind != symtab.ExternNodeSym {
			continue
		}
		entries = append(entries, modelEntry{
			kind:  int(sym.Category),
			name:  sym.Name,
			ports: portsFromInfo(sym.Ports),
		})
	}
	for _, sym := range emittedTrees {
		if len(sym.Params) == 0 {
			continue
		}
		entries = append(entries, modelEntry{
			kind:  int(ast.CategorySubtree),
			name:  sym.Name,
			ports: portsFromParams(sym.Params),
		})
	}
	sortModels(entries, func(e modelEntry) int { return e.kind }, func(e modelEntry) string { return e.name })
	return entries
}

func portsFromInfo(ports []symtab.PortInfo) []modelPort {
	out := make([]modelPort, len(ports))
	for i, p := range ports {
		out[i] = modelPort{name: p.Name, dir: p.Dir, typ: typeSpelling(p.Type), def: literalText(p.Default), hasDef: p.Default != nil}
	}
	return out
}

func portsFromParams(params []symtab.ParamInfo) []modelPort {
	out := make([]modelPort, len(params))
	for i, p := range params {
		out[i] = modelPort{name: p.Name, dir: p.Dir, typ: typeSpelling(p.Type), def: literalText(p.Default), hasDef: p.Default != nil}
	}
	return out
}

func typeSpelling(t *types.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// elemForModel renders one modelEntry to its <TreeNodesModel> child tag,
// per §4.10: category Action/Condition/Control/Decorator/Subtree tag names,
// ports emitted as input_port/output_port/inout_port by direction.
func elemForModel(e modelEntry) *elem {
	tag := categoryTag(ast.NodeCategory(e.kind))
	m := newElem(tag).setAttr("ID", e.name)
	for _, p := range e.ports {
		pe := newElem(portTag(p.dir)).setAttr("name", p.name).setAttr("type", p.typ)
		if p.hasDef {
			pe.setAttr("default", p.def)
		}
		m.addChild(pe)
	}
	return m
}

func categoryTag(c ast.NodeCategory) string {
	switch c {
	case ast.CategoryAction:
		return "Action"
	case ast.CategoryCondition:
		return "Condition"
	case ast.CategoryControl:
		return "Control"
	case ast.CategoryDecorator:
		return "Decorator"
	default:
		return "SubTree"
	}
}

func portTag(dir ast.PortDirection) string {
	switch dir {
	case ast.DirOut:
		return "output_port"
	case ast.DirRef, ast.DirMut:
		return "inout_port"
	default:
		return "input_port"
	}
}
