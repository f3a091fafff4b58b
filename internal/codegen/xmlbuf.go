package codegen

import (
	"encoding/xml"
	"sort"
	"strings"
)

// attr is one XML attribute. Attributes are kept as an ordered slice, not a
// map, because the determinism property in spec.md §8 ("two successive XML
// generations of the same module produce byte-identical output") requires
// a fixed attribute order that a map's iteration order cannot guarantee.
type attr struct {
	Name  string
	Value string
}

// elem is the generator's in-memory XML tree, built up during lowering and
// flushed to text by writer.writeElem. It intentionally does not reuse
// encoding/xml's Marshal machinery (see DESIGN.md and SPEC_FULL.md §4.12
// for why): BT.CPP's attribute order and self-closing-tag shape need exact
// control that struct-tag marshaling does not give.
type elem struct {
	name     string
	attrs    []attr
	children []*elem
}

func newElem(name string) *elem {
	return &elem{name: name}
}

func (e *elem) setAttr(name, value string) *elem {
	e.attrs = append(e.attrs, attr{Name: name, Value: value})
	return e
}

func (e *elem) addChild(c *elem) *elem {
	if c != nil {
		e.children = append(e.children, c)
	}
	return e
}

func (e *elem) addChildren(cs []*elem) *elem {
	for _, c := range cs {
		e.addChild(c)
	}
	return e
}

// writer accumulates the textual XML document, indenting two spaces per
// nesting level, grounded on the teacher's internal/bytecode.Serializer
// shape: a small stateful writer with one explicit write method per
// concern rather than a generic tree-walking marshaler.
type writer struct {
	sb     strings.Builder
	indent int
}

func newWriter() *writer {
	return &writer{}
}

func (w *writer) writeHeader() {
	w.sb.WriteString(`<?xml version="1.0"?>` + "\n")
}

func (w *writer) writeIndent() {
	w.sb.WriteString(strings.Repeat("  ", w.indent))
}

func (w *writer) writeElem(e *elem) {
	w.writeIndent()
	w.sb.WriteByte('<')
	w.sb.WriteString(e.name)
	for _, a := range e.attrs {
		w.sb.WriteByte(' ')
		w.sb.WriteString(a.Name)
		w.sb.WriteString(`="`)
		w.sb.WriteString(escapeAttr(a.Value))
		w.sb.WriteByte('"')
	}
	if len(e.children) == 0 {
		w.sb.WriteString("/>\n")
		return
	}
	w.sb.WriteString(">\n")
	w.indent++
	for _, c := range e.children {
		w.writeElem(c)
	}
	w.indent--
	w.writeIndent()
	w.sb.WriteString("</")
	w.sb.WriteString(e.name)
	w.sb.WriteString(">\n")
}

func (w *writer) String() string {
	return w.sb.String()
}

// escapeAttr escapes an attribute value using the stdlib's XML escaping
// primitive (the one piece of encoding/xml this package reuses; see
// SPEC_FULL.md §4.12).
func escapeAttr(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

// sortModels sorts a slice in place by a fixed kind order, then by name,
// implementing the "sorted deterministically (by a fixed kind order, then
// name)" rule of §4.10 for TreeNodesModel entries.
func sortModels[T any](items []T, kindOf func(T) int, nameOf func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ki, kj := kindOf(items[i]), kindOf(items[j])
		if ki != kj {
			return ki < kj
		}
		return nameOf(items[i]) < nameOf(items[j])
	})
}
