package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/btdsl/btdsl/internal/ast"
)

// Encode renders f back to the JSON schema Decode reads, the inverse used
// by the round-trip test helper.
func Encode(f *ast.File) ([]byte, error) {
	return json.Marshal(encodeFile(f))
}

// EncodeWithSource is Encode plus the optional "source" field FileSource
// reads back, for producing a fixture a real upstream collaborator would
// hand this compiler.
func EncodeWithSource(f *ast.File, source string) ([]byte, error) {
	m := encodeFile(f)
	m["source"] = source
	return json.Marshal(m)
}

func encodeRange(n ast.Node) map[string]any {
	r := n.Range()
	return map[string]any{"start": r.Start, "end": r.End}
}

func encodeFile(f *ast.File) map[string]any {
	imports := make([]map[string]any, 0, len(f.Imports))
	for _, im := range f.Imports {
		imports = append(imports, map[string]any{
			"kind": "Import", "range": encodeRange(im),
			"target": im.Target, "alias": im.Alias,
		})
	}
	decls := make([]map[string]any, 0, len(f.Decls))
	for _, d := range f.Decls {
		decls = append(decls, encodeDecl(d))
	}
	return map[string]any{
		"kind": "File", "range": encodeRange(f),
		"path": f.Path, "imports": imports, "decls": decls,
	}
}

func encodeDecl(d ast.Decl) map[string]any {
	switch v := d.(type) {
	case *ast.ExternTypeDecl:
		return map[string]any{"kind": "ExternTypeDecl", "range": encodeRange(v), "name": v.Name}
	case *ast.TypeAliasDecl:
		return map[string]any{"kind": "TypeAliasDecl", "range": encodeRange(v), "name": v.Name, "expr": encodeType(v.Expr)}
	case *ast.ExternNodeDecl:
		ports := make([]map[string]any, 0, len(v.Ports))
		for _, p := range v.Ports {
			ports = append(ports, encodeExternPort(p))
		}
		return map[string]any{
			"kind": "ExternNodeDecl", "range": encodeRange(v),
			"name": v.Name, "category": categoryString(v.Category), "ports": ports,
		}
	case *ast.GlobalVarDecl:
		return map[string]any{
			"kind": "GlobalVarDecl", "range": encodeRange(v),
			"name": v.Name, "type": encodeOptType(v.Type), "init": encodeOptExpr(v.Init),
		}
	case *ast.GlobalConstDecl:
		return map[string]any{
			"kind": "GlobalConstDecl", "range": encodeRange(v),
			"name": v.Name, "type": encodeOptType(v.Type), "expr": encodeExpr(v.Expr),
		}
	case *ast.TreeDecl:
		params := make([]map[string]any, 0, len(v.Params))
		for _, p := range v.Params {
			params = append(params, encodeParamDecl(p))
		}
		body := make([]map[string]any, 0, len(v.Body))
		for _, s := range v.Body {
			body = append(body, encodeStmt(s))
		}
		return map[string]any{
			"kind": "TreeDecl", "range": encodeRange(v),
			"name": v.Name, "params": params, "body": body,
		}
	default:
		panic(fmt.Sprintf("astjson: unhandled decl %T", d))
	}
}

func encodeExternPort(p *ast.ExternPort) map[string]any {
	return map[string]any{
		"kind": "ExternPort", "range": encodeRange(p),
		"name": p.Name, "dir": p.Dir.String(), "type": encodeType(p.Type), "default": encodeOptExpr(p.Default),
	}
}

func encodeParamDecl(p *ast.ParamDecl) map[string]any {
	return map[string]any{
		"kind": "ParamDecl", "range": encodeRange(p),
		"name": p.Name, "dir": p.Dir.String(), "type": encodeType(p.Type), "default": encodeOptExpr(p.Default),
	}
}

func encodeStmt(s ast.Stmt) map[string]any {
	switch v := s.(type) {
	case *ast.NodeCallStmt:
		args := make([]map[string]any, 0, len(v.Args))
		for _, a := range v.Args {
			args = append(args, encodeArgument(a))
		}
		children := make([]map[string]any, 0, len(v.Children))
		for _, c := range v.Children {
			children = append(children, encodeStmt(c))
		}
		pres := make([]map[string]any, 0, len(v.Preconditions))
		for _, p := range v.Preconditions {
			pres = append(pres, encodePrecondition(p))
		}
		return map[string]any{
			"kind": "NodeCallStmt", "range": encodeRange(v),
			"name": v.Name, "args": args, "children": children, "preconditions": pres,
			"data": dataPolicyString(v.Attr.Data), "flow": flowPolicyString(v.Attr.Flow),
			"attrExplicit": v.AttrExplicit,
		}
	case *ast.AssignStmt:
		return map[string]any{
			"kind": "AssignStmt", "range": encodeRange(v),
			"target": encodeExpr(v.Target), "op": assignOpString(v.Op), "value": encodeExpr(v.Value),
		}
	case *ast.BlackboardVarDecl:
		return map[string]any{
			"kind": "BlackboardVarDecl", "range": encodeRange(v),
			"name": v.Name, "type": encodeOptType(v.Type), "init": encodeOptExpr(v.Init),
		}
	case *ast.LocalConstDecl:
		return map[string]any{
			"kind": "LocalConstDecl", "range": encodeRange(v),
			"name": v.Name, "type": encodeOptType(v.Type), "expr": encodeExpr(v.Expr),
		}
	default:
		panic(fmt.Sprintf("astjson: unhandled stmt %T", s))
	}
}

func encodePrecondition(p *ast.Precondition) map[string]any {
	return map[string]any{
		"kind": "Precondition", "range": encodeRange(p),
		"preKind": preconditionKindString(p.Kind), "expr": encodeExpr(p.Expr),
	}
}

func encodeArgument(a *ast.Argument) map[string]any {
	m := map[string]any{
		"kind": "Argument", "range": encodeRange(a),
		"port": a.Port, "value": encodeOptExpr(a.Value), "dir": a.Dir.String(),
	}
	if a.InlineVar != nil {
		m["inlineVar"] = map[string]any{
			"kind": "InlineBlackboardDecl", "range": encodeRange(a.InlineVar), "name": a.InlineVar.Name,
		}
	} else {
		m["inlineVar"] = nil
	}
	return m
}

func encodeOptExpr(e ast.Expr) any {
	if e == nil {
		return nil
	}
	return encodeExpr(e)
}

func encodeExpr(e ast.Expr) map[string]any {
	switch v := e.(type) {
	case *ast.IntLiteral:
		return map[string]any{"kind": "IntLiteral", "range": encodeRange(v), "value": v.Value, "text": v.Text}
	case *ast.FloatLiteral:
		return map[string]any{"kind": "FloatLiteral", "range": encodeRange(v), "value": v.Value, "text": v.Text}
	case *ast.StringLiteral:
		return map[string]any{"kind": "StringLiteral", "range": encodeRange(v), "value": v.Value}
	case *ast.BoolLiteral:
		return map[string]any{"kind": "BoolLiteral", "range": encodeRange(v), "value": v.Value}
	case *ast.NullLiteral:
		return map[string]any{"kind": "NullLiteral", "range": encodeRange(v)}
	case *ast.VarRef:
		return map[string]any{"kind": "VarRef", "range": encodeRange(v), "name": v.Name}
	case *ast.BinaryExpr:
		return map[string]any{
			"kind": "BinaryExpr", "range": encodeRange(v),
			"op": v.Op.String(), "lhs": encodeExpr(v.LHS), "rhs": encodeExpr(v.RHS),
		}
	case *ast.UnaryExpr:
		return map[string]any{
			"kind": "UnaryExpr", "range": encodeRange(v),
			"op": unaryOpString(v.Op), "operand": encodeExpr(v.Operand),
		}
	case *ast.CastExpr:
		return map[string]any{
			"kind": "CastExpr", "range": encodeRange(v),
			"operand": encodeExpr(v.Operand), "type": encodeType(v.Type),
		}
	case *ast.IndexExpr:
		return map[string]any{
			"kind": "IndexExpr", "range": encodeRange(v),
			"base": encodeExpr(v.Base), "index": encodeExpr(v.Index),
		}
	case *ast.ArrayLiteralExpr:
		elems := make([]map[string]any, 0, len(v.Elems))
		for _, el := range v.Elems {
			elems = append(elems, encodeExpr(el))
		}
		return map[string]any{"kind": "ArrayLiteralExpr", "range": encodeRange(v), "elems": elems}
	case *ast.ArrayRepeatExpr:
		return map[string]any{
			"kind": "ArrayRepeatExpr", "range": encodeRange(v),
			"value": encodeExpr(v.Value), "count": encodeExpr(v.Count),
		}
	case *ast.VecMacroExpr:
		elems := make([]map[string]any, 0, len(v.Elems))
		for _, el := range v.Elems {
			elems = append(elems, encodeExpr(el))
		}
		return map[string]any{"kind": "VecMacroExpr", "range": encodeRange(v), "elems": elems}
	default:
		panic(fmt.Sprintf("astjson: unhandled expr %T", e))
	}
}

func encodeOptType(t ast.TypeNode) any {
	if t == nil {
		return nil
	}
	return encodeType(t)
}

func encodeType(t ast.TypeNode) map[string]any {
	switch v := t.(type) {
	case *ast.PrimaryTypeNode:
		return map[string]any{
			"kind": "PrimaryTypeNode", "range": encodeRange(v),
			"name": v.Name, "nullable": v.Nullable, "boundedStringLen": encodeOptExpr(v.BoundedStringLen),
		}
	case *ast.StaticArrayTypeNode:
		return map[string]any{
			"kind": "StaticArrayTypeNode", "range": encodeRange(v),
			"elem": encodeType(v.Elem), "arrayKind": arrayKindString(v.Kind),
			"size": encodeExpr(v.Size), "nullable": v.Nullable,
		}
	case *ast.DynamicArrayTypeNode:
		return map[string]any{
			"kind": "DynamicArrayTypeNode", "range": encodeRange(v),
			"elem": encodeType(v.Elem), "nullable": v.Nullable,
		}
	case *ast.InferTypeNode:
		return map[string]any{"kind": "InferTypeNode", "range": encodeRange(v)}
	default:
		panic(fmt.Sprintf("astjson: unhandled type %T", t))
	}
}

func categoryString(c ast.NodeCategory) string {
	switch c {
	case ast.CategoryAction:
		return "action"
	case ast.CategoryCondition:
		return "condition"
	case ast.CategoryControl:
		return "control"
	case ast.CategoryDecorator:
		return "decorator"
	default:
		return "subtree"
	}
}

func dataPolicyString(p ast.DataPolicy) string {
	switch p {
	case ast.PolicyAny:
		return "any"
	case ast.PolicyNone:
		return "none"
	default:
		return "all"
	}
}

func flowPolicyString(f ast.FlowPolicy) string {
	if f == ast.FlowIsolated {
		return "isolated"
	}
	return "chained"
}

func preconditionKindString(k ast.PreconditionKind) string {
	switch k {
	case ast.PreSuccessIf:
		return "success_if"
	case ast.PreFailureIf:
		return "failure_if"
	case ast.PreSkipIf:
		return "skip_if"
	case ast.PreRunWhile:
		return "run_while"
	default:
		return "guard"
	}
}

func assignOpString(op ast.AssignOp) string {
	switch op {
	case ast.AssignAdd:
		return "+="
	case ast.AssignSub:
		return "-="
	case ast.AssignMul:
		return "*="
	case ast.AssignDiv:
		return "/="
	case ast.AssignMod:
		return "%="
	default:
		return "="
	}
}

func unaryOpString(op ast.UnaryOp) string {
	if op == ast.OpNot {
		return "not"
	}
	return "neg"
}

func arrayKindString(k ast.ArrayKindNode) string {
	if k == ast.ArrayMax {
		return "max"
	}
	return "exact"
}
