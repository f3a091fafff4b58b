package codegen

import (
	"fmt"

	"github.com/btdsl/btdsl/internal/symtab"
)

// keyGen allocates mangled blackboard keys, `name#N` with N monotonic per
// generation (§4.10, §GLOSSARY "Mangled key"). One keyGen is created per
// call to Generate/GenerateSingleOutput, so N restarts at 1 for each
// document produced — within one document it never repeats, which is the
// only uniqueness the XML output needs.
type keyGen struct {
	n int
	// bySymbol caches the key already minted for a value symbol, so every
	// reference to the same declaration reuses the same mangled key instead
	// of minting a fresh one per use site.
	bySymbol map[*symtab.ValueSymbol]string
}

func newKeyGen() *keyGen {
	return &keyGen{bySymbol: make(map[*symtab.ValueSymbol]string)}
}

// mangle returns the stable mangled key for sym, a tree-local variable or
// constant, minting one on first use.
func (g *keyGen) mangle(sym *symtab.ValueSymbol) string {
	if k, ok := g.bySymbol[sym]; ok {
		return k
	}
	g.n++
	k := fmt.Sprintf("%s#%d", sym.Name, g.n)
	g.bySymbol[sym] = k
	return k
}

// fresh mints a new mangled key not tied to any declared symbol, used to
// lift a complex expression or inline out-var into a synthesized pre-Script
// (§4.10 "complex expressions are lifted to a synthesized pre-Script").
func (g *keyGen) fresh(hint string) string {
	g.n++
	if hint == "" {
		hint = "tmp"
	}
	return fmt.Sprintf("%s#%d", hint, g.n)
}
