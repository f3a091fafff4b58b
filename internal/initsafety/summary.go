package initsafety

import "github.com/btdsl/btdsl/internal/symtab"

// Summary is the conservative, must-initialize-only contract of one tree
// (§4.7): what it requires already initialized globals-wise on entry, and
// what it guarantees initialized — globals and out-parameters — once it
// reaches its success exit.
type Summary struct {
	RequiresGlobals map[*symtab.ValueSymbol]bool
	GuaranteesGlobals map[*symtab.ValueSymbol]bool
	GuaranteesOutParams map[string]bool
}

func newSummary() *Summary {
	return &Summary{
		RequiresGlobals:     make(map[*symtab.ValueSymbol]bool),
		GuaranteesGlobals:   make(map[*symtab.ValueSymbol]bool),
		GuaranteesOutParams: make(map[string]bool),
	}
}
