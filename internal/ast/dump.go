package ast

import (
	"fmt"
	"strings"
)

// Dump renders a structural S-expression form of a node, ignoring byte
// ranges, for use by test helpers that need a range-independent comparison
// of two ASTs (round-trip/idempotence properties in the specification's
// Testable Properties section use this instead of a full surface-syntax
// re-emission, since this module never builds surface syntax — lexing and
// printing are out of scope).
func Dump(n Node) string {
	var sb strings.Builder
	dump(&sb, n, 0)
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func dump(sb *strings.Builder, n Node, depth int) {
	indent(sb, depth)
	if n == nil {
		sb.WriteString("(nil)\n")
		return
	}
	switch v := n.(type) {
	case *File:
		sb.WriteString("(file\n")
		for _, im := range v.Imports {
			dump(sb, im, depth+1)
		}
		for _, d := range v.Decls {
			dump(sb, d, depth+1)
		}
		indent(sb, depth)
		sb.WriteString(")\n")
	case *Import:
		fmt.Fprintf(sb, "(import %q %q)\n", v.Target, v.Alias)
	case *ExternTypeDecl:
		fmt.Fprintf(sb, "(extern-type %s)\n", v.Name)
	case *TypeAliasDecl:
		fmt.Fprintf(sb, "(type-alias %s)\n", v.Name)
	case *ExternNodeDecl:
		fmt.Fprintf(sb, "(extern-node %s %s ports=%d)\n", v.Category, v.Name, len(v.Ports))
	case *GlobalVarDecl:
		fmt.Fprintf(sb, "(global-var %s)\n", v.Name)
	case *GlobalConstDecl:
		fmt.Fprintf(sb, "(global-const %s)\n", v.Name)
	case *TreeDecl:
		fmt.Fprintf(sb, "(tree %s params=%d\n", v.Name, len(v.Params))
		for _, s := range v.Body {
			dump(sb, s, depth+1)
		}
		indent(sb, depth)
		sb.WriteString(")\n")
	case *NodeCallStmt:
		fmt.Fprintf(sb, "(call %s args=%d\n", v.Name, len(v.Args))
		for _, c := range v.Children {
			dump(sb, c, depth+1)
		}
		indent(sb, depth)
		sb.WriteString(")\n")
	case *AssignStmt:
		sb.WriteString("(assign)\n")
	case *BlackboardVarDecl:
		fmt.Fprintf(sb, "(var %s)\n", v.Name)
	case *LocalConstDecl:
		fmt.Fprintf(sb, "(const %s)\n", v.Name)
	case *IntLiteral:
		fmt.Fprintf(sb, "(int %d)\n", v.Value)
	case *FloatLiteral:
		fmt.Fprintf(sb, "(float %v)\n", v.Value)
	case *StringLiteral:
		fmt.Fprintf(sb, "(string %q)\n", v.Value)
	case *BoolLiteral:
		fmt.Fprintf(sb, "(bool %v)\n", v.Value)
	case *NullLiteral:
		sb.WriteString("(null)\n")
	case *VarRef:
		fmt.Fprintf(sb, "(ref %s)\n", v.Name)
	case *BinaryExpr:
		fmt.Fprintf(sb, "(binop %s)\n", v.Op)
	case *UnaryExpr:
		sb.WriteString("(unop)\n")
	case *CastExpr:
		sb.WriteString("(cast)\n")
	case *IndexExpr:
		sb.WriteString("(index)\n")
	case *ArrayLiteralExpr:
		fmt.Fprintf(sb, "(array n=%d)\n", len(v.Elems))
	case *ArrayRepeatExpr:
		sb.WriteString("(array-repeat)\n")
	case *VecMacroExpr:
		fmt.Fprintf(sb, "(vec n=%d)\n", len(v.Elems))
	default:
		fmt.Fprintf(sb, "(%T)\n", n)
	}
}
