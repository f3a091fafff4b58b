package ast

import "github.com/btdsl/btdsl/internal/diag"

// Arena assigns monotonically increasing NodeIDs as a file's nodes are
// constructed. One Arena belongs to exactly one Module/File and lives only
// for that compilation, matching the specification's arena-allocation
// model (§3, §9: "the arena guarantees stable addresses").
type Arena struct {
	next NodeID
}

// NewArena returns an empty Arena.
func NewArena() *Arena { return &Arena{} }

func (a *Arena) newBase(r diag.Range) base {
	id := a.next
	a.next++
	return base{id: id, rng: r}
}

// NewFile allocates a File node.
func (a *Arena) NewFile(path string, r diag.Range) *File {
	return &File{base: a.newBase(r), Path: path}
}

// NewImport allocates an Import node.
func (a *Arena) NewImport(target, alias string, r diag.Range) *Import {
	return &Import{base: a.newBase(r), Target: target, Alias: alias}
}
