package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/sema"
	"github.com/btdsl/btdsl/internal/symtab"
)

// renderer lowers expressions to the two textual shapes BT.CPP needs: a
// bare "code" spelling used inside <Script code="..."> bodies, and a
// "port attribute" spelling used for node/tree call arguments and
// precondition attributes, where anything but a literal or a direct
// blackboard reference must first be lifted into a synthesized pre-Script
// (§4.10). pending accumulates the elements that lifting produces; the
// statement lowerer drains it after translating each statement.
type renderer struct {
	mod     *sema.Module
	keys    *keyGen
	pending []*elem
}

func newRenderer(mod *sema.Module, keys *keyGen) *renderer {
	return &renderer{mod: mod, keys: keys}
}

// drain returns and clears the pre-Script elements accumulated since the
// last drain.
func (r *renderer) drain() []*elem {
	out := r.pending
	r.pending = nil
	return out
}

// localKey returns the key a value symbol is addressed by inside one tree's
// emitted body. Tree parameters keep their declared name unmangled — it is
// also the SubTree port name a caller binds to, so mangling it would break
// that contract. Every other tree-local symbol gets a mangled name#N key.
func (r *renderer) localKey(sym *symtab.ValueSymbol) string {
	if sym.Kind == symtab.Parameter {
		return sym.Name
	}
	return r.keys.mangle(sym)
}

// codeExpr renders e as it appears inside a <Script code="..."> body: bare
// identifiers, no attribute-reference braces. Globals are addressed with
// BT.CPP's root-blackboard sigil `@name`; everything else recurses
// structurally with the surface operator spellings.
func (r *renderer) codeExpr(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.IntLiteral:
		return ex.Text
	case *ast.FloatLiteral:
		return ex.Text
	case *ast.StringLiteral:
		return quoteScriptString(ex.Value)
	case *ast.BoolLiteral:
		return strconv.FormatBool(ex.Value)
	case *ast.NullLiteral:
		return "null"
	case *ast.VarRef:
		sym, ok := r.mod.Info.SymbolOf(ex)
		if !ok {
			return ex.Name
		}
		if sym.IsGlobal() {
			return "@" + sym.Name
		}
		return r.localKey(sym)
	case *ast.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", r.codeExpr(ex.LHS), ex.Op.String(), r.codeExpr(ex.RHS))
	case *ast.UnaryExpr:
		op := "-"
		if ex.Op == ast.OpNot {
			op = "!"
		}
		return op + r.codeExpr(ex.Operand)
	case *ast.CastExpr:
		return r.codeExpr(ex.Operand)
	case *ast.IndexExpr:
		return fmt.Sprintf("%s[%s]", r.codeExpr(ex.Base), r.codeExpr(ex.Index))
	case *ast.ArrayLiteralExpr:
		parts := make([]string, len(ex.Elems))
		for i, el := range ex.Elems {
			parts[i] = r.codeExpr(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *ast.ArrayRepeatExpr:
		return fmt.Sprintf("[%s; %s]", r.codeExpr(ex.Value), r.codeExpr(ex.Count))
	case *ast.VecMacroExpr:
		parts := make([]string, len(ex.Elems))
		for i, el := range ex.Elems {
			parts[i] = r.codeExpr(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return ""
	}
}

// attrExpr renders e as a port/precondition attribute value: a literal's
// surface spelling when e is a literal, a `{key}` blackboard reference for
// a direct variable read, or — for anything more complex — a freshly
// mangled key referencing a synthesized pre-Script that computes it
// (§4.10). The synthesized Script is appended to r.pending for the caller
// to splice in immediately before the element the attribute belongs to.
func (r *renderer) attrExpr(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.IntLiteral:
		return ex.Text
	case *ast.FloatLiteral:
		return ex.Text
	case *ast.StringLiteral:
		return ex.Value
	case *ast.BoolLiteral:
		return strconv.FormatBool(ex.Value)
	case *ast.NullLiteral:
		key := r.keys.fresh("unset")
		r.pending = append(r.pending, newElem("UnsetBlackboard").setAttr("key", "{"+key+"}"))
		return "{" + key + "}"
	case *ast.VarRef:
		sym, ok := r.mod.Info.SymbolOf(ex)
		if !ok {
			return "{" + ex.Name + "}"
		}
		return "{" + r.refKey(sym) + "}"
	default:
		key := r.keys.fresh("expr")
		r.pending = append(r.pending, newElem("Script").setAttr("code", key+" := "+r.codeExpr(e)))
		return "{" + key + "}"
	}
}

// refKey is the bracket-ready key spelling for a variable reference:
// `@name` for a global, the tree-local mangled/parameter key otherwise.
func (r *renderer) refKey(sym *symtab.ValueSymbol) string {
	if sym.IsGlobal() {
		return "@" + sym.Name
	}
	return r.localKey(sym)
}

// quoteScriptString renders a string literal's value as a single-quoted
// BT.CPP script string, escaping embedded single quotes and backslashes.
func quoteScriptString(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}
