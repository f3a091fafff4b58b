package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/btdsl/btdsl/internal/ast"
	"github.com/btdsl/btdsl/internal/diag"
)

// Decode parses one upstream AST JSON document into a fresh *ast.File backed
// by a fresh *ast.Arena.
func Decode(data []byte) (*ast.File, *ast.Arena, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("astjson: %w", err)
	}
	if env.Kind != "File" {
		return nil, nil, fmt.Errorf("astjson: root kind is %q, want %q", env.Kind, "File")
	}
	a := ast.NewArena()
	d := &decoder{arena: a}
	f, err := d.file(env)
	if err != nil {
		return nil, nil, err
	}
	return f, a, nil
}

// FileSource extracts the optional "source" field from a document: the
// original BT-DSL source text the byte ranges index into, carried by the
// upstream collaborator purely so this side can render caret diagnostics
// (internal/diag.Render needs the text a Range slices; the AST itself never
// touches it). ok is false when the document omits it.
func FileSource(data []byte) (source string, ok bool, err error) {
	var body struct {
		Source *string `json:"source"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", false, fmt.Errorf("astjson: %w", err)
	}
	if body.Source == nil {
		return "", false, nil
	}
	return *body.Source, true, nil
}

// envelope is the generic shape every node arrives in: enough to dispatch on
// Kind, with the rest captured as raw fields decoded by the node-specific
// path once the kind is known.
type envelope struct {
	Kind  string          `json:"kind"`
	Range rangeJSON       `json:"range"`
	Raw   json.RawMessage `json:"-"`
}

type rangeJSON struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r rangeJSON) toRange() diag.Range { return diag.Range{Start: r.Start, End: r.End} }

// UnmarshalJSON captures the full object in Raw in addition to populating
// Kind/Range, so node-specific decoders can re-unmarshal into their own
// struct shape without losing any fields.
func (e *envelope) UnmarshalJSON(data []byte) error {
	type alias envelope
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = envelope(a)
	e.Raw = append(json.RawMessage(nil), data...)
	return nil
}

type decoder struct {
	arena *ast.Arena
}

func parseEnvelope(raw json.RawMessage) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, fmt.Errorf("astjson: %w", err)
	}
	return env, nil
}

func (d *decoder) file(env envelope) (*ast.File, error) {
	var body struct {
		Path    string            `json:"path"`
		Imports []json.RawMessage `json:"imports"`
		Decls   []json.RawMessage `json:"decls"`
	}
	if err := json.Unmarshal(env.Raw, &body); err != nil {
		return nil, fmt.Errorf("astjson: file: %w", err)
	}
	f := d.arena.NewFile(body.Path, env.Range.toRange())
	for _, raw := range body.Imports {
		ienv, err := parseEnvelope(raw)
		if err != nil {
			return nil, err
		}
		var ibody struct {
			Target string `json:"target"`
			Alias  string `json:"alias"`
		}
		if err := json.Unmarshal(ienv.Raw, &ibody); err != nil {
			return nil, fmt.Errorf("astjson: import: %w", err)
		}
		f.Imports = append(f.Imports, d.arena.NewImport(ibody.Target, ibody.Alias, ienv.Range.toRange()))
	}
	for _, raw := range body.Decls {
		decl, err := d.decl(raw)
		if err != nil {
			return nil, err
		}
		f.Decls = append(f.Decls, decl)
	}
	return f, nil
}

func (d *decoder) decl(raw json.RawMessage) (ast.Decl, error) {
	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	r := env.Range.toRange()
	switch env.Kind {
	case "ExternTypeDecl":
		var b struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		return d.arena.NewExternTypeDecl(b.Name, r), nil

	case "TypeAliasDecl":
		var b struct {
			Name string          `json:"name"`
			Expr json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		typ, err := d.typ(b.Expr)
		if err != nil {
			return nil, err
		}
		return d.arena.NewTypeAliasDecl(b.Name, typ, r), nil

	case "ExternNodeDecl":
		var b struct {
			Name     string            `json:"name"`
			Category string            `json:"category"`
			Ports    []json.RawMessage `json:"ports"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		cat, err := parseCategory(b.Category)
		if err != nil {
			return nil, err
		}
		ports := make([]*ast.ExternPort, 0, len(b.Ports))
		for _, praw := range b.Ports {
			p, err := d.externPort(praw)
			if err != nil {
				return nil, err
			}
			ports = append(ports, p)
		}
		return d.arena.NewExternNodeDecl(b.Name, cat, ports, r), nil

	case "GlobalVarDecl":
		var b struct {
			Name string          `json:"name"`
			Type json.RawMessage `json:"type"`
			Init json.RawMessage `json:"init"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		typ, err := d.optType(b.Type)
		if err != nil {
			return nil, err
		}
		init, err := d.optExpr(b.Init)
		if err != nil {
			return nil, err
		}
		return d.arena.NewGlobalVarDecl(b.Name, typ, init, r), nil

	case "GlobalConstDecl":
		var b struct {
			Name string          `json:"name"`
			Type json.RawMessage `json:"type"`
			Expr json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		typ, err := d.optType(b.Type)
		if err != nil {
			return nil, err
		}
		expr, err := d.expr(b.Expr)
		if err != nil {
			return nil, err
		}
		return d.arena.NewGlobalConstDecl(b.Name, typ, expr, r), nil

	case "TreeDecl":
		var b struct {
			Name   string            `json:"name"`
			Params []json.RawMessage `json:"params"`
			Body   []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		params := make([]*ast.ParamDecl, 0, len(b.Params))
		for _, praw := range b.Params {
			p, err := d.paramDecl(praw)
			if err != nil {
				return nil, err
			}
			params = append(params, p)
		}
		body := make([]ast.Stmt, 0, len(b.Body))
		for _, sraw := range b.Body {
			s, err := d.stmt(sraw)
			if err != nil {
				return nil, err
			}
			body = append(body, s)
		}
		return d.arena.NewTreeDecl(b.Name, params, body, r), nil

	default:
		return nil, fmt.Errorf("astjson: unknown decl kind %q", env.Kind)
	}
}

func (d *decoder) externPort(raw json.RawMessage) (*ast.ExternPort, error) {
	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	var b struct {
		Name    string          `json:"name"`
		Dir     string          `json:"dir"`
		Type    json.RawMessage `json:"type"`
		Default json.RawMessage `json:"default"`
	}
	if err := json.Unmarshal(env.Raw, &b); err != nil {
		return nil, err
	}
	dir, err := parseDir(b.Dir)
	if err != nil {
		return nil, err
	}
	typ, err := d.typ(b.Type)
	if err != nil {
		return nil, err
	}
	def, err := d.optExpr(b.Default)
	if err != nil {
		return nil, err
	}
	return d.arena.NewExternPort(b.Name, dir, typ, def, env.Range.toRange()), nil
}

func (d *decoder) paramDecl(raw json.RawMessage) (*ast.ParamDecl, error) {
	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	var b struct {
		Name    string          `json:"name"`
		Dir     string          `json:"dir"`
		Type    json.RawMessage `json:"type"`
		Default json.RawMessage `json:"default"`
	}
	if err := json.Unmarshal(env.Raw, &b); err != nil {
		return nil, err
	}
	dir, err := parseDir(b.Dir)
	if err != nil {
		return nil, err
	}
	typ, err := d.typ(b.Type)
	if err != nil {
		return nil, err
	}
	def, err := d.optExpr(b.Default)
	if err != nil {
		return nil, err
	}
	return d.arena.NewParamDecl(b.Name, dir, typ, def, env.Range.toRange()), nil
}

func (d *decoder) stmt(raw json.RawMessage) (ast.Stmt, error) {
	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	r := env.Range.toRange()
	switch env.Kind {
	case "NodeCallStmt":
		var b struct {
			Name          string            `json:"name"`
			Args          []json.RawMessage `json:"args"`
			Children      []json.RawMessage `json:"children"`
			Preconditions []json.RawMessage `json:"preconditions"`
			Data          string            `json:"data"`
			Flow          string            `json:"flow"`
			AttrExplicit  bool              `json:"attrExplicit"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		args := make([]*ast.Argument, 0, len(b.Args))
		for _, araw := range b.Args {
			arg, err := d.argument(araw)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		children := make([]ast.Stmt, 0, len(b.Children))
		for _, craw := range b.Children {
			c, err := d.stmt(craw)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		pres := make([]*ast.Precondition, 0, len(b.Preconditions))
		for _, praw := range b.Preconditions {
			p, err := d.precondition(praw)
			if err != nil {
				return nil, err
			}
			pres = append(pres, p)
		}
		call := d.arena.NewNodeCallStmt(b.Name, args, children, pres, r)
		if b.Data != "" || b.Flow != "" {
			data, err := parseDataPolicy(b.Data)
			if err != nil {
				return nil, err
			}
			flow, err := parseFlowPolicy(b.Flow)
			if err != nil {
				return nil, err
			}
			call.Attr = ast.BehaviorAttr{Data: data, Flow: flow}
		}
		call.AttrExplicit = b.AttrExplicit
		return call, nil

	case "AssignStmt":
		var b struct {
			Target json.RawMessage `json:"target"`
			Op     string          `json:"op"`
			Value  json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		target, err := d.expr(b.Target)
		if err != nil {
			return nil, err
		}
		value, err := d.expr(b.Value)
		if err != nil {
			return nil, err
		}
		op, err := parseAssignOp(b.Op)
		if err != nil {
			return nil, err
		}
		return d.arena.NewAssignStmt(target, op, value, r), nil

	case "BlackboardVarDecl":
		var b struct {
			Name string          `json:"name"`
			Type json.RawMessage `json:"type"`
			Init json.RawMessage `json:"init"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		typ, err := d.optType(b.Type)
		if err != nil {
			return nil, err
		}
		init, err := d.optExpr(b.Init)
		if err != nil {
			return nil, err
		}
		return d.arena.NewBlackboardVarDecl(b.Name, typ, init, r), nil

	case "LocalConstDecl":
		var b struct {
			Name string          `json:"name"`
			Type json.RawMessage `json:"type"`
			Expr json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		typ, err := d.optType(b.Type)
		if err != nil {
			return nil, err
		}
		expr, err := d.expr(b.Expr)
		if err != nil {
			return nil, err
		}
		return d.arena.NewLocalConstDecl(b.Name, typ, expr, r), nil

	default:
		return nil, fmt.Errorf("astjson: unknown stmt kind %q", env.Kind)
	}
}

func (d *decoder) precondition(raw json.RawMessage) (*ast.Precondition, error) {
	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	var b struct {
		PreKind string          `json:"preKind"`
		Expr    json.RawMessage `json:"expr"`
	}
	if err := json.Unmarshal(env.Raw, &b); err != nil {
		return nil, err
	}
	kind, err := parsePreconditionKind(b.PreKind)
	if err != nil {
		return nil, err
	}
	expr, err := d.expr(b.Expr)
	if err != nil {
		return nil, err
	}
	return d.arena.NewPrecondition(kind, expr, env.Range.toRange()), nil
}

func (d *decoder) argument(raw json.RawMessage) (*ast.Argument, error) {
	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	var b struct {
		Port      string          `json:"port"`
		Value     json.RawMessage `json:"value"`
		Dir       string          `json:"dir"`
		InlineVar json.RawMessage `json:"inlineVar"`
	}
	if err := json.Unmarshal(env.Raw, &b); err != nil {
		return nil, err
	}
	dir, err := parseDir(b.Dir)
	if err != nil {
		return nil, err
	}
	value, err := d.optExpr(b.Value)
	if err != nil {
		return nil, err
	}
	var inline *ast.InlineBlackboardDecl
	if len(b.InlineVar) > 0 && string(b.InlineVar) != "null" {
		ienv, err := parseEnvelope(b.InlineVar)
		if err != nil {
			return nil, err
		}
		var ib struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(ienv.Raw, &ib); err != nil {
			return nil, err
		}
		inline = d.arena.NewInlineBlackboardDecl(ib.Name, ienv.Range.toRange())
	}
	return d.arena.NewArgument(b.Port, value, dir, inline, env.Range.toRange()), nil
}

func (d *decoder) optExpr(raw json.RawMessage) (ast.Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return d.expr(raw)
}

func (d *decoder) expr(raw json.RawMessage) (ast.Expr, error) {
	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	r := env.Range.toRange()
	switch env.Kind {
	case "IntLiteral":
		var b struct {
			Value int64  `json:"value"`
			Text  string `json:"text"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		return d.arena.NewIntLiteral(b.Value, b.Text, r), nil

	case "FloatLiteral":
		var b struct {
			Value float64 `json:"value"`
			Text  string  `json:"text"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		return d.arena.NewFloatLiteral(b.Value, b.Text, r), nil

	case "StringLiteral":
		var b struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		return d.arena.NewStringLiteral(b.Value, r), nil

	case "BoolLiteral":
		var b struct {
			Value bool `json:"value"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		return d.arena.NewBoolLiteral(b.Value, r), nil

	case "NullLiteral":
		return d.arena.NewNullLiteral(r), nil

	case "VarRef":
		var b struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		return d.arena.NewVarRef(b.Name, r), nil

	case "BinaryExpr":
		var b struct {
			Op  string          `json:"op"`
			LHS json.RawMessage `json:"lhs"`
			RHS json.RawMessage `json:"rhs"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		op, err := parseBinaryOp(b.Op)
		if err != nil {
			return nil, err
		}
		lhs, err := d.expr(b.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := d.expr(b.RHS)
		if err != nil {
			return nil, err
		}
		return d.arena.NewBinaryExpr(op, lhs, rhs, r), nil

	case "UnaryExpr":
		var b struct {
			Op      string          `json:"op"`
			Operand json.RawMessage `json:"operand"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		op, err := parseUnaryOp(b.Op)
		if err != nil {
			return nil, err
		}
		operand, err := d.expr(b.Operand)
		if err != nil {
			return nil, err
		}
		return d.arena.NewUnaryExpr(op, operand, r), nil

	case "CastExpr":
		var b struct {
			Operand json.RawMessage `json:"operand"`
			Type    json.RawMessage `json:"type"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		operand, err := d.expr(b.Operand)
		if err != nil {
			return nil, err
		}
		typ, err := d.typ(b.Type)
		if err != nil {
			return nil, err
		}
		return d.arena.NewCastExpr(operand, typ, r), nil

	case "IndexExpr":
		var b struct {
			Base  json.RawMessage `json:"base"`
			Index json.RawMessage `json:"index"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		base, err := d.expr(b.Base)
		if err != nil {
			return nil, err
		}
		index, err := d.expr(b.Index)
		if err != nil {
			return nil, err
		}
		return d.arena.NewIndexExpr(base, index, r), nil

	case "ArrayLiteralExpr":
		var b struct {
			Elems []json.RawMessage `json:"elems"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		elems, err := d.exprs(b.Elems)
		if err != nil {
			return nil, err
		}
		return d.arena.NewArrayLiteralExpr(elems, r), nil

	case "ArrayRepeatExpr":
		var b struct {
			Value json.RawMessage `json:"value"`
			Count json.RawMessage `json:"count"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		value, err := d.expr(b.Value)
		if err != nil {
			return nil, err
		}
		count, err := d.expr(b.Count)
		if err != nil {
			return nil, err
		}
		return d.arena.NewArrayRepeatExpr(value, count, r), nil

	case "VecMacroExpr":
		var b struct {
			Elems []json.RawMessage `json:"elems"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		elems, err := d.exprs(b.Elems)
		if err != nil {
			return nil, err
		}
		return d.arena.NewVecMacroExpr(elems, r), nil

	default:
		return nil, fmt.Errorf("astjson: unknown expr kind %q", env.Kind)
	}
}

func (d *decoder) exprs(raws []json.RawMessage) ([]ast.Expr, error) {
	out := make([]ast.Expr, 0, len(raws))
	for _, raw := range raws {
		e, err := d.expr(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *decoder) optType(raw json.RawMessage) (ast.TypeNode, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return d.typ(raw)
}

func (d *decoder) typ(raw json.RawMessage) (ast.TypeNode, error) {
	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	r := env.Range.toRange()
	switch env.Kind {
	case "PrimaryTypeNode":
		var b struct {
			Name             string          `json:"name"`
			Nullable         bool            `json:"nullable"`
			BoundedStringLen json.RawMessage `json:"boundedStringLen"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		bound, err := d.optExpr(b.BoundedStringLen)
		if err != nil {
			return nil, err
		}
		return d.arena.NewPrimaryTypeNode(b.Name, b.Nullable, bound, r), nil

	case "StaticArrayTypeNode":
		var b struct {
			Elem      json.RawMessage `json:"elem"`
			ArrayKind string          `json:"arrayKind"`
			Size      json.RawMessage `json:"size"`
			Nullable  bool            `json:"nullable"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		elem, err := d.typ(b.Elem)
		if err != nil {
			return nil, err
		}
		kind, err := parseArrayKind(b.ArrayKind)
		if err != nil {
			return nil, err
		}
		size, err := d.expr(b.Size)
		if err != nil {
			return nil, err
		}
		return d.arena.NewStaticArrayTypeNode(elem, kind, size, b.Nullable, r), nil

	case "DynamicArrayTypeNode":
		var b struct {
			Elem     json.RawMessage `json:"elem"`
			Nullable bool            `json:"nullable"`
		}
		if err := json.Unmarshal(env.Raw, &b); err != nil {
			return nil, err
		}
		elem, err := d.typ(b.Elem)
		if err != nil {
			return nil, err
		}
		return d.arena.NewDynamicArrayTypeNode(elem, b.Nullable, r), nil

	case "InferTypeNode":
		return d.arena.NewInferTypeNode(r), nil

	default:
		return nil, fmt.Errorf("astjson: unknown type kind %q", env.Kind)
	}
}

func parseCategory(s string) (ast.NodeCategory, error) {
	switch s {
	case "action":
		return ast.CategoryAction, nil
	case "condition":
		return ast.CategoryCondition, nil
	case "control":
		return ast.CategoryControl, nil
	case "decorator":
		return ast.CategoryDecorator, nil
	case "subtree":
		return ast.CategorySubtree, nil
	default:
		return 0, fmt.Errorf("astjson: unknown node category %q", s)
	}
}

func parseDir(s string) (ast.PortDirection, error) {
	switch s {
	case "", "in":
		return ast.DirIn, nil
	case "ref":
		return ast.DirRef, nil
	case "mut":
		return ast.DirMut, nil
	case "out":
		return ast.DirOut, nil
	default:
		return 0, fmt.Errorf("astjson: unknown port direction %q", s)
	}
}

func parseDataPolicy(s string) (ast.DataPolicy, error) {
	switch s {
	case "", "all":
		return ast.PolicyAll, nil
	case "any":
		return ast.PolicyAny, nil
	case "none":
		return ast.PolicyNone, nil
	default:
		return 0, fmt.Errorf("astjson: unknown data policy %q", s)
	}
}

func parseFlowPolicy(s string) (ast.FlowPolicy, error) {
	switch s {
	case "", "chained":
		return ast.FlowChained, nil
	case "isolated":
		return ast.FlowIsolated, nil
	default:
		return 0, fmt.Errorf("astjson: unknown flow policy %q", s)
	}
}

func parsePreconditionKind(s string) (ast.PreconditionKind, error) {
	switch s {
	case "guard":
		return ast.PreGuard, nil
	case "success_if":
		return ast.PreSuccessIf, nil
	case "failure_if":
		return ast.PreFailureIf, nil
	case "skip_if":
		return ast.PreSkipIf, nil
	case "run_while":
		return ast.PreRunWhile, nil
	default:
		return 0, fmt.Errorf("astjson: unknown precondition kind %q", s)
	}
}

func parseAssignOp(s string) (ast.AssignOp, error) {
	switch s {
	case "", "=":
		return ast.AssignPlain, nil
	case "+=":
		return ast.AssignAdd, nil
	case "-=":
		return ast.AssignSub, nil
	case "*=":
		return ast.AssignMul, nil
	case "/=":
		return ast.AssignDiv, nil
	case "%=":
		return ast.AssignMod, nil
	default:
		return 0, fmt.Errorf("astjson: unknown assign op %q", s)
	}
}

func parseBinaryOp(s string) (ast.BinaryOp, error) {
	switch s {
	case "+":
		return ast.OpAdd, nil
	case "-":
		return ast.OpSub, nil
	case "*":
		return ast.OpMul, nil
	case "/":
		return ast.OpDiv, nil
	case "%":
		return ast.OpMod, nil
	case "==":
		return ast.OpEq, nil
	case "!=":
		return ast.OpNe, nil
	case "<":
		return ast.OpLt, nil
	case "<=":
		return ast.OpLe, nil
	case ">":
		return ast.OpGt, nil
	case ">=":
		return ast.OpGe, nil
	case "&&":
		return ast.OpAnd, nil
	case "||":
		return ast.OpOr, nil
	case "&":
		return ast.OpBitAnd, nil
	case "|":
		return ast.OpBitOr, nil
	case "^":
		return ast.OpBitXor, nil
	default:
		return 0, fmt.Errorf("astjson: unknown binary op %q", s)
	}
}

func parseUnaryOp(s string) (ast.UnaryOp, error) {
	switch s {
	case "neg", "-":
		return ast.OpNeg, nil
	case "not", "!":
		return ast.OpNot, nil
	default:
		return 0, fmt.Errorf("astjson: unknown unary op %q", s)
	}
}

func parseArrayKind(s string) (ast.ArrayKindNode, error) {
	switch s {
	case "", "exact":
		return ast.ArrayExact, nil
	case "max":
		return ast.ArrayMax, nil
	default:
		return 0, fmt.Errorf("astjson: unknown array kind %q", s)
	}
}
