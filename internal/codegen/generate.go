package codegen

import (
	"fmt"

	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/sema"
	"github.com/btdsl/btdsl/internal/symtab"
)

// Options controls one generation run (§4.10, §6 "Driver options control
// build vs. single-output mode").
type Options struct {
	// SingleOutput selects walking SubTree calls transitively across
	// modules into one document, mangling imported tree IDs. When false,
	// Generate emits one <root> per module with plain tree IDs.
	SingleOutput bool
	// EntryTree names the tree main_tree_to_execute points at, and (in
	// single-output mode) the tree the transitive SubTree walk starts
	// from. Empty selects the first public tree declared in the module,
	// in source order.
	EntryTree string
}

// generator holds the state shared across every tree lowered into one
// document: the mangled-key generator, the declaration→symbol index built
// once per module (ast has no symbol back-pointer for non-const
// declarations, mirroring internal/initsafety and internal/nullsafety's
// own declSym side index), and the module-index table single-output mode
// uses to mangle imported tree IDs.
type generator struct {
	keys     *keyGen
	declSym  map[ast.Node]*symtab.ValueSymbol
	modIndex map[string]int
	usedIDs  map[string]bool
	ids      map[*symtab.NodeSymbol]string
	entryMod string
}

func newGenerator(entryModPath string) *generator {
	return &generator{
		keys:     newKeyGen(),
		declSym:  make(map[ast.Node]*symtab.ValueSymbol),
		modIndex: make(map[string]int),
		usedIDs:  make(map[string]bool),
		ids:      make(map[*symtab.NodeSymbol]string),
		entryMod: entryModPath,
	}
}

func buildDeclIndex(mod *sema.Module, into map[ast.Node]*symtab.ValueSymbol) {
	add := func(scope *symtab.Scope) {
		if scope == nil {
			return
		}
		for _, name := range scope.Names() {
			if sym, ok := scope.LookupLocal(name); ok {
				into[sym.Decl] = sym
			}
		}
	}
	add(mod.Tables.Root)
	for _, s := range mod.Tables.TreeScopes {
		add(s)
	}
	for _, s := range mod.Tables.BodyScopes {
		add(s)
	}
	for _, s := range mod.Tables.ChildScopes {
		add(s)
	}
}

// subtreeID is the XML ID a SubTree call site and the corresponding
// <BehaviorTree> element share for the callee sym. In per-module mode this
// is always the plain tree name (a document only ever references trees by
// their own name or a same-module private helper). In single-output mode,
// a tree belonging to a module other than the entry module is mangled
// `_SubTree_<moduleIx>_<treeName>`, uniquified on collision (§4.10).
func (g *generator) subtreeID(sym *symtab.NodeSymbol) string {
	if sym.Module == g.entryMod || g.modIndex == nil {
		return sym.Name
	}
	idx, ok := g.modIndex[sym.Module]
	if !ok {
		return sym.Name
	}
	if id, ok := g.ids[sym]; ok {
		return id
	}
	base := fmt.Sprintf("_SubTree_%d_%s", idx, sym.Name)
	id := base
	for n := 2; g.usedIDs[id]; n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	g.usedIDs[id] = true
	g.ids[sym] = id
	return id
}

// Generate emits a per-module BT.CPP XML document for mod: a
// <TreeNodesModel> plus one <BehaviorTree> per tree declared in the
// module, in source order (§4.10 "per-module" mode).
func Generate(mod *sema.Module, opts Options) string {
	g := newGenerator(mod.FileID)
	buildDeclIndex(mod, g.declSym)

	var trees []*ast.TreeDecl
	for _, d := range mod.Program.Decls {
		if t, ok := d.(*ast.TreeDecl); ok {
			trees = append(trees, t)
		}
	}

	bodies := make([]*elem, 0, len(trees))
	emittedSyms := make([]*symtab.NodeSymbol, 0, len(trees))
	used := make(map[*symtab.NodeSymbol]bool)
	for _, t := range trees {
		tl := newTreeLowerer(mod, g)
		root := tl.lowerTree(t)
		for sym := range tl.usedNode {
			used[sym] = true
		}
		sym := mod.Tables.Nodes[t.Name]
		emittedSyms = append(emittedSyms, sym)
		bt := newElem("BehaviorTree").setAttr("ID", t.Name)
		bt.addChild(root)
		bodies = append(bodies, bt)
	}

	main := opts.EntryTree
	if main == "" {
		main = firstPublicTree(trees)
	}
	return assembleDocument(used, emittedSyms, bodies, main)
}

// GenerateSingleOutput emits one document starting from entryTree in
// entry, walking SubTree calls transitively across module boundaries and
// mangling every imported tree's XML ID (§4.10 "single-output" mode).
func GenerateSingleOutput(entry *sema.Module, entryTree string) (string, error) {
	g := newGenerator(entry.FileID)
	buildDeclIndex(entry, g.declSym)

	entrySym, ok := entry.Tables.Nodes[entryTree]
	if !ok || entrySym.Kind != symtab.TreeSym {
		return "", fmt.Errorf("codegen: no tree named %q in %s", entryTree, entry.FileID)
	}

	modByPath := map[string]*sema.Module{entry.FileID: entry}
	var indexModules func(m *sema.Module)
	indexModules = func(m *sema.Module) {
		for _, imp := range m.DirectImports {
			if imp == nil {
				continue
			}
			if _, ok := modByPath[imp.FileID]; ok {
				continue
			}
			modByPath[imp.FileID] = imp
			indexModules(imp)
		}
	}
	indexModules(entry)

	// Walk the SubTree call graph reachable from the entry tree, assigning
	// each distinct non-entry module a stable index in first-encounter
	// order, and each reached tree's declaration index (for buildDeclIndex
	// coverage across modules).
	visited := map[*symtab.NodeSymbol]bool{entrySym: true}
	order := []*symtab.NodeSymbol{entrySym}
	queue := []*symtab.NodeSymbol{entrySym}
	used := make(map[*symtab.NodeSymbol]bool)
	bodies := make(map[*symtab.NodeSymbol]*elem)

	for len(queue) > 0 {
		sym := queue[0]
		queue = queue[1:]
		mod, ok := modByPath[sym.Module]
		if !ok {
			continue
		}
		if mod.FileID != entry.FileID {
			if _, ok := g.modIndex[mod.FileID]; !ok {
				g.modIndex[mod.FileID] = len(g.modIndex) + 1
			}
			buildDeclIndex(mod, g.declSym)
		}
		tree, ok := sym.Decl.(*ast.TreeDecl)
		if !ok {
			continue
		}
		tl := newTreeLowerer(mod, g)
		root := tl.lowerTree(tree)
		bodies[sym] = root
		for calleeSym := range tl.usedNode {
			used[calleeSym] = true
			if calleeSym.Kind == symtab.TreeSym && !visited[calleeSym] {
				visited[calleeSym] = true
				order = append(order, calleeSym)
				queue = append(queue, calleeSym)
			}
		}
	}

	bts := make([]*elem, 0, len(order))
	for _, sym := range order {
		root, ok := bodies[sym]
		if !ok {
			continue
		}
		bt := newElem("BehaviorTree").setAttr("ID", g.subtreeID(sym))
		bt.addChild(root)
		bts = append(bts, bt)
	}

	return assembleDocument(used, order, bts, g.subtreeID(entrySym)), nil
}

func firstPublicTree(trees []*ast.TreeDecl) string {
	for _, t := range trees {
		if t.Public {
			return t.Name
		}
	}
	if len(trees) > 0 {
		return trees[0].Name
	}
	return ""
}

// assembleDocument builds the final <root> element: TreeNodesModel (plus
// the synthetic BlackboardExists condition model, §6) followed by every
// <BehaviorTree>, and writes it to text.
func assembleDocument(used map[*symtab.NodeSymbol]bool, emittedTrees []*symtab.NodeSymbol, bodies []*elem, mainTree string) string {
	root := newElem("root").setAttr("BTCPP_format", "4")
	if mainTree != "" {
		root.setAttr("main_tree_to_execute", mainTree)
	}

	model := newElem("TreeNodesModel")
	for _, e := range buildModel(used, emittedTrees) {
		model.addChild(elemForModel(e))
	}
	model.addChild(newElem("Condition").setAttr("ID", "BlackboardExists"))
	root.addChild(model)
	root.addChildren(bodies)

	w := newWriter()
	w.writeHeader()
	w.writeElem(root)
	return w.String()
}
