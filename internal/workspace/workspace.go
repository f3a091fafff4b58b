package workspace

import (
	"fmt"
	"sort"
	"sync"

	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/internal/symtab"
)

// Workspace is the process-wide document table spec.md §9 says to treat
// "like file descriptors": explicit create/destroy, no implicit eviction.
// Single-threaded per request (§3): Mutex serializes the whole table, not
// individual documents, matching the "no scheduling, no suspension" rule
// for the core — a request runs to completion before the next is accepted.
type Workspace struct {
	mu   sync.Mutex
	docs map[string]*document
}

// New returns an empty workspace.
func New() *Workspace {
	return &Workspace{docs: make(map[string]*document)}
}

// SetDocument registers or replaces the document at uri. text is an AST
// JSON document (internal/astjson), not BT-DSL source.
func (w *Workspace) SetDocument(uri, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.docs[uri] = buildDocument(uri, text)
}

// RemoveDocument drops uri from the table. A no-op if it was never open.
func (w *Workspace) RemoveDocument(uri string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.docs, uri)
}

// HasDocument reports whether uri is currently open.
func (w *Workspace) HasDocument(uri string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.docs[uri]
	return ok
}

func (w *Workspace) get(uri string) (*document, error) {
	d, ok := w.docs[uri]
	if !ok {
		return nil, fmt.Errorf("document %q is not open", uri)
	}
	return d, nil
}

func availSet(imports []string) map[string]bool {
	m := make(map[string]bool, len(imports))
	for _, u := range imports {
		m[u] = true
	}
	return m
}

// --- diagnostics_json ---

type RangeOut struct {
	StartByte   int `json:"startByte"`
	EndByte     int `json:"endByte"`
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

type DiagnosticItem struct {
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	Range    RangeOut `json:"range"`
	Source   string   `json:"source"`
	Code     string   `json:"code,omitempty"`
}

type DiagnosticsResult struct {
	Items []DiagnosticItem `json:"items"`
}

func (w *Workspace) Diagnostics(uri string, imports []string) (DiagnosticsResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	d, err := w.get(uri)
	if err != nil {
		return DiagnosticsResult{}, err
	}

	result := DiagnosticsResult{Items: []DiagnosticItem{}}
	if d.mod.Program == nil {
		for _, diagnostic := range d.mod.ParseDiagnostics.Items() {
			result.Items = append(result.Items, w.toItem(d, diagnostic))
		}
		return result, nil
	}

	w.analyze(d, availSet(imports))
	for _, diagnostic := range d.mod.AllDiagnostics() {
		result.Items = append(result.Items, w.toItem(d, diagnostic))
	}
	return result, nil
}

func (w *Workspace) toItem(d *document, diagnostic diag.Diagnostic) DiagnosticItem {
	start, end := Position{Line: 1, Column: 1}, Position{Line: 1, Column: 1}
	if d.sm != nil {
		start, end = d.sm.Position(diagnostic.Range.Start), d.sm.Position(diagnostic.Range.End)
	}
	return DiagnosticItem{
		Severity: diagnostic.Severity.String(),
		Message:  diagnostic.Message,
		Source:   "btdsl",
		Code:     string(diagnostic.Code),
		Range: RangeOut{
			StartByte: diagnostic.Range.Start, EndByte: diagnostic.Range.End,
			StartLine: start.Line, StartColumn: start.Column,
			EndLine: end.Line, EndColumn: end.Column,
		},
	}
}

// Position mirrors diag.Position so callers outside internal/diag don't
// need to import it directly.
type Position = diag.Position

// --- document_symbols_json ---

type SymbolItem struct {
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	Range         RangeOut `json:"range"`
	SelectionRange RangeOut `json:"selectionRange"`
}

type DocumentSymbolsResult struct {
	Symbols []SymbolItem `json:"symbols"`
}

func (w *Workspace) DocumentSymbols(uri string) (DocumentSymbolsResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	d, err := w.get(uri)
	if err != nil {
		return DocumentSymbolsResult{}, err
	}
	result := DocumentSymbolsResult{Symbols: []SymbolItem{}}
	if d.mod.Program == nil {
		return result, nil
	}
	w.analyze(d, nil)

	for _, decl := range d.mod.Program.Decls {
		kind, name, selRange := "", "", decl.Range()
		switch v := decl.(type) {
		case *ast.ExternTypeDecl:
			kind, name = "type", v.Name
		case *ast.TypeAliasDecl:
			kind, name = "type", v.Name
		case *ast.ExternNodeDecl:
			kind, name = "node", v.Name
		case *ast.GlobalVarDecl:
			kind, name = "variable", v.Name
		case *ast.GlobalConstDecl:
			kind, name = "constant", v.Name
		case *ast.TreeDecl:
			kind, name = "tree", v.Name
		default:
			continue
		}
		result.Symbols = append(result.Symbols, SymbolItem{
			Name: name, Kind: kind,
			Range:          w.rangeOut(d, decl.Range()),
			SelectionRange: w.rangeOut(d, selRange),
		})
	}
	return result, nil
}

func (w *Workspace) rangeOut(d *document, r diag.Range) RangeOut {
	start, end := Position{Line: 1, Column: 1}, Position{Line: 1, Column: 1}
	if d.sm != nil {
		start, end = d.sm.Position(r.Start), d.sm.Position(r.End)
	}
	return RangeOut{
		StartByte: r.Start, EndByte: r.End,
		StartLine: start.Line, StartColumn: start.Column,
		EndLine: end.Line, EndColumn: end.Column,
	}
}

// --- hover_json ---

type HoverResult struct {
	Contents string    `json:"contents"`
	Range    *RangeOut `json:"range,omitempty"`
}

func (w *Workspace) Hover(uri string, offset int, imports []string) (HoverResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	d, err := w.get(uri)
	if err != nil {
		return HoverResult{}, err
	}
	if d.mod.Program == nil {
		return HoverResult{}, nil
	}
	w.analyze(d, availSet(imports))

	chain := path(d.mod.Program, offset)
	node := innermost(chain)
	if node == nil {
		return HoverResult{}, nil
	}

	var md string
	switch v := node.(type) {
	case *ast.VarRef:
		if sym, ok := d.mod.Info.SymbolOf(v); ok {
			md = fmt.Sprintf("**%s** `%s`\n\n%s", valueKindLabel(sym.Kind), sym.Name, typeLabel(sym))
		}
	case *ast.NodeCallStmt:
		if sym, ok := d.mod.Info.NodeSymbolOf(v); ok {
			md = fmt.Sprintf("**%s** `%s`\n\nports: %v", sym.Category, sym.Name, sym.PortNames())
		}
	}
	if md == "" {
		return HoverResult{}, nil
	}
	r := w.rangeOut(d, node.Range())
	return HoverResult{Contents: md, Range: &r}, nil
}

func valueKindLabel(k symtab.ValueKind) string {
	switch k {
	case symtab.GlobalVariable:
		return "global variable"
	case symtab.GlobalConst:
		return "global constant"
	case symtab.Parameter:
		return "parameter"
	case symtab.LocalVariable:
		return "local variable"
	case symtab.BlockVariable:
		return "block variable"
	case symtab.LocalConst:
		return "local constant"
	default:
		return "value"
	}
}

func typeLabel(sym *symtab.ValueSymbol) string {
	if sym.Type == nil {
		return "type: ?"
	}
	return fmt.Sprintf("type: `%s`", sym.Type.String())
}

// --- definition_json ---

type Location struct {
	URI   string   `json:"uri"`
	Range RangeOut `json:"range"`
}

type DefinitionResult struct {
	Locations []Location `json:"locations"`
}

func (w *Workspace) Definition(uri string, offset int, imports []string) (DefinitionResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	d, err := w.get(uri)
	if err != nil {
		return DefinitionResult{}, err
	}
	result := DefinitionResult{Locations: []Location{}}
	if d.mod.Program == nil {
		return result, nil
	}
	w.analyze(d, availSet(imports))

	chain := path(d.mod.Program, offset)
	node := innermost(chain)
	switch v := node.(type) {
	case *ast.VarRef:
		if sym, ok := d.mod.Info.SymbolOf(v); ok && sym.Decl != nil {
			result.Locations = append(result.Locations, Location{URI: defURI(uri, sym.Module), Range: w.rangeOut(d, sym.DeclRange)})
		}
	case *ast.NodeCallStmt:
		if sym, ok := d.mod.Info.NodeSymbolOf(v); ok && sym.Decl != nil {
			result.Locations = append(result.Locations, Location{URI: defURI(uri, sym.Module), Range: w.rangeOut(d, sym.DeclRange)})
		}
	}
	return result, nil
}

func defURI(requestURI, declModule string) string {
	if declModule == "" {
		return requestURI
	}
	return declModule
}

// --- document_highlights_json ---

type HighlightItem struct {
	Range RangeOut `json:"range"`
	Kind  string   `json:"kind"`
}

type DocumentHighlightsResult struct {
	Items []HighlightItem `json:"items"`
}

func (w *Workspace) DocumentHighlights(uri string, offset int, imports []string) (DocumentHighlightsResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	d, err := w.get(uri)
	if err != nil {
		return DocumentHighlightsResult{}, err
	}
	result := DocumentHighlightsResult{Items: []HighlightItem{}}
	if d.mod.Program == nil {
		return result, nil
	}
	w.analyze(d, availSet(imports))

	chain := path(d.mod.Program, offset)
	ref, ok := innermost(chain).(*ast.VarRef)
	if !ok {
		return result, nil
	}
	target, ok := d.mod.Info.SymbolOf(ref)
	if !ok {
		return result, nil
	}

	visitVarRefs(d.mod.Program, func(use *ast.VarRef) {
		if sym, ok2 := d.mod.Info.SymbolOf(use); ok2 && sym == target {
			kind := "read"
			result.Items = append(result.Items, HighlightItem{Range: w.rangeOut(d, use.Range()), Kind: kind})
		}
	})
	return result, nil
}

// visitVarRefs walks every expression position in the program, invoking fn
// on each *ast.VarRef it finds. Grounded on internal/astjson's exhaustive
// expr switch, reused here for the same "every expr kind" coverage.
func visitVarRefs(file *ast.File, fn func(*ast.VarRef)) {
	var walkExpr func(ast.Expr)
	walkExpr = func(e ast.Expr) {
		if e == nil {
			return
		}
		switch v := e.(type) {
		case *ast.VarRef:
			fn(v)
		case *ast.BinaryExpr:
			walkExpr(v.LHS)
			walkExpr(v.RHS)
		case *ast.UnaryExpr:
			walkExpr(v.Operand)
		case *ast.CastExpr:
			walkExpr(v.Operand)
		case *ast.IndexExpr:
			walkExpr(v.Base)
			walkExpr(v.Index)
		case *ast.ArrayLiteralExpr:
			for _, el := range v.Elems {
				walkExpr(el)
			}
		case *ast.ArrayRepeatExpr:
			walkExpr(v.Value)
			walkExpr(v.Count)
		case *ast.VecMacroExpr:
			for _, el := range v.Elems {
				walkExpr(el)
			}
		}
	}
	var walkStmt func(ast.Stmt)
	walkStmt = func(s ast.Stmt) {
		switch v := s.(type) {
		case *ast.NodeCallStmt:
			for _, pre := range v.Preconditions {
				walkExpr(pre.Expr)
			}
			for _, arg := range v.Args {
				walkExpr(arg.Value)
			}
			for _, c := range v.Children {
				walkStmt(c)
			}
		case *ast.AssignStmt:
			walkExpr(v.Target)
			walkExpr(v.Value)
		case *ast.BlackboardVarDecl:
			walkExpr(v.Init)
		case *ast.LocalConstDecl:
			walkExpr(v.Expr)
		}
	}
	for _, d := range file.Decls {
		switch v := d.(type) {
		case *ast.GlobalVarDecl:
			walkExpr(v.Init)
		case *ast.GlobalConstDecl:
			walkExpr(v.Expr)
		case *ast.TreeDecl:
			for _, p := range v.Params {
				walkExpr(p.Default)
			}
			for _, s := range v.Body {
				walkStmt(s)
			}
		}
	}
}

// --- completion_json ---

type CompletionItem struct {
	Label       string `json:"label"`
	Kind        string `json:"kind"`
	Detail      string `json:"detail,omitempty"`
	InsertText  string `json:"insertText,omitempty"`
}

type CompletionResult struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

func (w *Workspace) Completion(uri string, offset int, imports []string, trigger string) (CompletionResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	d, err := w.get(uri)
	if err != nil {
		return CompletionResult{}, err
	}
	result := CompletionResult{Items: []CompletionItem{}}
	if d.mod.Program == nil {
		return result, nil
	}
	w.analyze(d, availSet(imports))

	seen := make(map[string]bool)
	add := func(name, kind, detail string) {
		key := kind + ":" + name
		if seen[key] {
			return
		}
		seen[key] = true
		result.Items = append(result.Items, CompletionItem{Label: name, Kind: kind, Detail: detail, InsertText: name})
	}

	for name, sym := range d.mod.Tables.Nodes {
		add(name, "node", sym.Category.String())
	}
	for name := range d.mod.Tables.Types {
		add(name, "type", "")
	}
	for _, name := range d.mod.Tables.Root.Names() {
		if sym, ok := d.mod.Tables.Root.LookupLocal(name); ok {
			add(name, "value", valueKindLabel(sym.Kind))
		}
	}

	chain := path(d.mod.Program, offset)
	if tree := enclosingTree(chain); tree != nil {
		scope := d.mod.Tables.TreeScopes[tree.Name]
		for _, call := range enclosingCalls(chain) {
			if child, ok := d.mod.Tables.ChildScopes[call]; ok {
				scope = child
			}
		}
		for s := scope; s != nil; s = s.Parent() {
			for _, name := range s.Names() {
				if sym, ok := s.LookupLocal(name); ok {
					add(name, "value", valueKindLabel(sym.Kind))
				}
			}
		}
	}

	sort.Slice(result.Items, func(i, j int) bool { return result.Items[i].Label < result.Items[j].Label })
	_ = trigger // reserved for future "." / "@" trigger-specific filtering
	return result, nil
}

// --- semantic_tokens_json ---

type SemanticToken struct {
	Range     RangeOut `json:"range"`
	Type      string   `json:"type"`
	Modifiers []string `json:"modifiers"`
}

type SemanticTokensResult struct {
	Tokens []SemanticToken `json:"tokens"`
}

func (w *Workspace) SemanticTokens(uri string, imports []string) (SemanticTokensResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	d, err := w.get(uri)
	if err != nil {
		return SemanticTokensResult{}, err
	}
	result := SemanticTokensResult{Tokens: []SemanticToken{}}
	if d.mod.Program == nil {
		return result, nil
	}
	w.analyze(d, availSet(imports))

	for _, decl := range d.mod.Program.Decls {
		switch v := decl.(type) {
		case *ast.GlobalVarDecl:
			result.Tokens = append(result.Tokens, SemanticToken{Range: w.rangeOut(d, v.Range()), Type: "variable", Modifiers: []string{"global"}})
		case *ast.GlobalConstDecl:
			result.Tokens = append(result.Tokens, SemanticToken{Range: w.rangeOut(d, v.Range()), Type: "variable", Modifiers: []string{"global", "readonly"}})
		case *ast.TreeDecl:
			result.Tokens = append(result.Tokens, SemanticToken{Range: w.rangeOut(d, v.Range()), Type: "function", Modifiers: []string{"tree"}})
		case *ast.ExternNodeDecl:
			result.Tokens = append(result.Tokens, SemanticToken{Range: w.rangeOut(d, v.Range()), Type: "function", Modifiers: []string{"extern"}})
		}
	}
	visitVarRefs(d.mod.Program, func(use *ast.VarRef) {
		mods := []string{}
		if sym, ok := d.mod.Info.SymbolOf(use); ok && sym.Const {
			mods = append(mods, "readonly")
		}
		result.Tokens = append(result.Tokens, SemanticToken{Range: w.rangeOut(d, use.Range()), Type: "variable", Modifiers: mods})
	})

	sort.Slice(result.Tokens, func(i, j int) bool { return result.Tokens[i].Range.StartByte < result.Tokens[j].Range.StartByte })
	return result, nil
}

// --- resolve_imports_json ---

type ResolveImportsResult struct {
	URIs []string `json:"uris"`
}

// ResolveImports reports which of d's spelled import targets are currently
// satisfiable by an open document — plus stdlibURI itself, if non-empty, as
// an always-available entry (mirroring a host-provided standard-library
// document that every module implicitly sees).
func (w *Workspace) ResolveImports(uri, stdlibURI string) (ResolveImportsResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	d, err := w.get(uri)
	if err != nil {
		return ResolveImportsResult{}, err
	}
	result := ResolveImportsResult{URIs: []string{}}
	if d.mod.Program == nil {
		return result, nil
	}
	if stdlibURI != "" {
		result.URIs = append(result.URIs, stdlibURI)
	}
	for _, imp := range d.mod.Program.Imports {
		if other, ok := w.docs[imp.Target]; ok && other.mod.Program != nil {
			result.URIs = append(result.URIs, imp.Target)
		}
	}
	sort.Strings(result.URIs)
	return result, nil
}
