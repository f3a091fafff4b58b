package symtab

import (
	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/diag"
)

// Builder walks a module's AST once, populating its Tables and reporting
// redefinition errors and shadowing warnings (component 4).
type Builder struct {
	tbl *Tables
	bag *diag.Bag
	mod string // canonical module path, stamped on every symbol
}

// NewBuilder returns a Builder that will populate tbl for the given module.
func NewBuilder(tbl *Tables, bag *diag.Bag, modulePath string) *Builder {
	return &Builder{tbl: tbl, bag: bag, mod: modulePath}
}

// Build runs the builder over a parsed file, in the declaration order
// mandated by §4.2: globals, then extern types/aliases, then extern
// nodes/trees, then each tree's parameter and body scopes.
func (b *Builder) Build(file *ast.File) {
	for _, d := range file.Decls {
		switch dd := d.(type) {
		case *ast.GlobalVarDecl:
			b.defineGlobalVar(dd)
		case *ast.GlobalConstDecl:
			b.defineGlobalConst(dd)
		}
	}
	for _, d := range file.Decls {
		switch dd := d.(type) {
		case *ast.ExternTypeDecl:
			b.defineExternType(dd)
		case *ast.TypeAliasDecl:
			b.defineAliasType(dd)
		}
	}
	for _, d := range file.Decls {
		switch dd := d.(type) {
		case *ast.ExternNodeDecl:
			b.defineExternNode(dd)
		case *ast.TreeDecl:
			b.defineTreeSignature(dd)
		}
	}
	for _, d := range file.Decls {
		if tree, ok := d.(*ast.TreeDecl); ok {
			b.buildTreeBody(tree)
		}
	}
}

func (b *Builder) defineGlobalVar(d *ast.GlobalVarDecl) {
	if existing, ok := b.tbl.Root.LookupLocal(d.Name); ok {
		b.redefinition(d.Name, d.Range(), existing.DeclRange)
		return
	}
	b.tbl.Root.DefineLocal(&ValueSymbol{
		Name: d.Name, Kind: GlobalVariable, Decl: d, DeclRange: d.Range(),
		TypeExpr: d.Type, Writable: true, Module: b.mod,
	})
}

func (b *Builder) defineGlobalConst(d *ast.GlobalConstDecl) {
	if existing, ok := b.tbl.Root.LookupLocal(d.Name); ok {
		b.redefinition(d.Name, d.Range(), existing.DeclRange)
		return
	}
	b.tbl.Root.DefineLocal(&ValueSymbol{
		Name: d.Name, Kind: GlobalConst, Decl: d, DeclRange: d.Range(),
		TypeExpr: d.Type, Const: true, Module: b.mod,
	})
}

func (b *Builder) defineExternType(d *ast.ExternTypeDecl) {
	if existing, ok := b.tbl.Types[d.Name]; ok {
		b.redefinition(d.Name, d.Range(), existing.DeclRange)
		return
	}
	b.tbl.Types[d.Name] = &TypeSymbol{Name: d.Name, Kind: ExternType, Decl: d, DeclRange: d.Range(), Module: b.mod}
}

func (b *Builder) defineAliasType(d *ast.TypeAliasDecl) {
	if existing, ok := b.tbl.Types[d.Name]; ok {
		b.redefinition(d.Name, d.Range(), existing.DeclRange)
		return
	}
	b.tbl.Types[d.Name] = &TypeSymbol{Name: d.Name, Kind: AliasType, Decl: d, DeclRange: d.Range(), Module: b.mod}
}

func (b *Builder) defineExternNode(d *ast.ExternNodeDecl) {
	if existing, ok := b.tbl.Nodes[d.Name]; ok {
		b.redefinition(d.Name, d.Range(), existing.DeclRange)
		return
	}
	ports := make([]PortInfo, 0, len(d.Ports))
	seen := make(map[string]diag.Range)
	for _, p := range d.Ports {
		if prev, dup := seen[p.Name]; dup {
			b.redefinition(p.Name, p.Range(), prev)
			continue
		}
		seen[p.Name] = p.Range()
		ports = append(ports, PortInfo{Name: p.Name, Dir: p.Dir, TypeExpr: p.Type, DefaultExpr: p.Default, Decl: p})
	}
	b.tbl.Nodes[d.Name] = &NodeSymbol{
		Name: d.Name, Kind: ExternNodeSym, Decl: d, DeclRange: d.Range(),
		Category: d.Category, Ports: ports, Module: b.mod,
	}
}

func (b *Builder) defineTreeSignature(d *ast.TreeDecl) {
	if existing, ok := b.tbl.Nodes[d.Name]; ok {
		b.redefinition(d.Name, d.Range(), existing.DeclRange)
		return
	}
	params := make([]ParamInfo, 0, len(d.Params))
	seen := make(map[string]diag.Range)
	for _, p := range d.Params {
		if prev, dup := seen[p.Name]; dup {
			b.redefinition(p.Name, p.Range(), prev)
			continue
		}
		seen[p.Name] = p.Range()
		params = append(params, ParamInfo{Name: p.Name, Dir: p.Dir, TypeExpr: p.Type, DefaultExpr: p.Default, Decl: p})
	}
	b.tbl.Nodes[d.Name] = &NodeSymbol{
		Name: d.Name, Kind: TreeSym, Decl: d, DeclRange: d.Range(),
		Params: params, Module: b.mod,
	}
}

// buildTreeBody opens the tree's parameter scope (remembered in
// tbl.TreeScopes), registers its parameters, then walks its body opening a
// fresh block scope per §4.2 rule 2.
func (b *Builder) buildTreeBody(tree *ast.TreeDecl) {
	paramScope := b.tbl.Root.NewChild()
	b.tbl.TreeScopes[tree.Name] = paramScope

	for _, p := range tree.Params {
		if _, ok := paramScope.LookupLocal(p.Name); ok {
			existing, _ := paramScope.LookupLocal(p.Name)
			b.redefinition(p.Name, p.Range(), existing.DeclRange)
			continue
		}
		b.checkShadow(paramScope, p.Name, p.Range())
		paramScope.DefineLocal(&ValueSymbol{
			Name: p.Name, Kind: Parameter, Decl: p, DeclRange: p.Range(),
			TypeExpr: p.Type, Writable: p.Dir == ast.DirOut || p.Dir == ast.DirMut,
			Module: b.mod,
		})
	}

	bodyScope := paramScope.NewChild()
	b.tbl.BodyScopes[tree.Name] = bodyScope
	b.buildBlock(bodyScope, tree.Body)
}

// buildBlock registers local const/var decls and inline `out var x`
// arguments in scope, and recurses into compound node children, which each
// open a fresh block scope (§4.2 rule 2).
func (b *Builder) buildBlock(scope *Scope, stmts []ast.Stmt) {
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.BlackboardVarDecl:
			b.defineBlockValue(scope, st.Name, BlockVariable, st, st.Range(), st.Type, true)
		case *ast.LocalConstDecl:
			b.defineBlockValue(scope, st.Name, LocalConst, st, st.Range(), st.Type, false)
		case *ast.NodeCallStmt:
			for _, arg := range st.Args {
				if arg.InlineVar != nil {
					b.defineBlockValue(scope, arg.InlineVar.Name, BlockVariable, arg.InlineVar, arg.InlineVar.Range(), nil, true)
				}
			}
			if len(st.Children) > 0 {
				child := scope.NewChild()
				b.tbl.ChildScopes[st] = child
				b.buildBlock(child, st.Children)
			}
		}
	}
}

func (b *Builder) defineBlockValue(scope *Scope, name string, kind ValueKind, decl ast.Node, r diag.Range, typeExpr ast.TypeNode, writable bool) {
	if existing, ok := scope.LookupLocal(name); ok {
		b.redefinition(name, r, existing.DeclRange)
		return
	}
	b.checkShadow(scope, name, r)
	scope.DefineLocal(&ValueSymbol{
		Name: name, Kind: kind, Decl: decl, DeclRange: r,
		TypeExpr: typeExpr, Writable: writable, Const: kind == LocalConst, Module: b.mod,
	})
}

// checkShadow reports a shadowing warning when name hides an outer
// non-global symbol; shadowing a global is permitted (§4.2 rule 3).
func (b *Builder) checkShadow(scope *Scope, name string, r diag.Range) {
	parent := scope.Parent()
	if parent == nil {
		return
	}
	outer, ok := parent.Lookup(name)
	if !ok || outer.IsGlobal() {
		return
	}
	b.bag.Add(diag.Diagnostic{
		Severity: diag.Warning,
		Code:     diag.CodeResolution,
		Message:  "declaration of '" + name + "' shadows an outer declaration",
		Range:    r,
		Labels:   []diag.Label{{Range: outer.DeclRange, Message: "previous declaration here"}},
	})
}

func (b *Builder) redefinition(name string, r, prev diag.Range) {
	b.bag.Add(diag.Diagnostic{
		Severity: diag.Error,
		Code:     diag.CodeResolution,
		Message:  "redefinition of '" + name + "'",
		Range:    r,
		Labels:   []diag.Label{{Range: prev, Message: "previous declaration here"}},
	})
}
