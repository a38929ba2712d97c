package frontend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/objc2dart/objc2dart/internal/ast"
	"github.com/objc2dart/objc2dart/internal/errors"
	"github.com/objc2dart/objc2dart/internal/position"
)

// Dump format. Every node is an object with a "kind" discriminator; the
// remaining fields depend on the kind.

type jsonUnit struct {
	Name    string                 `json:"name"`
	File    string                 `json:"file"`
	Records map[string]*jsonRecord `json:"records"`
	Decls   []*jsonNode            `json:"decls"`
}

type jsonRecord struct {
	Union  bool         `json:"union"`
	Fields []*jsonField `json:"fields"`
	Size   *int64       `json:"size"`
	Align  int64        `json:"align"`
}

type jsonField struct {
	Name   string    `json:"name"`
	Type   *jsonType `json:"type"`
	Offset *int64    `json:"offset"`
}

type jsonType struct {
	Kind       string      `json:"kind"`
	Scalar     string      `json:"scalar"`
	Bits       int         `json:"bits"`
	Signed     *bool       `json:"signed"`
	Pointee    *jsonType   `json:"pointee"`
	Elem       *jsonType   `json:"elem"`
	Len        *int64      `json:"len"`
	VLA        bool        `json:"vla"`
	Name       string      `json:"name"`
	Underlying *jsonType   `json:"underlying"`
	Params     []*jsonType `json:"params"`
	Result     *jsonType   `json:"result"`
	Variadic   bool        `json:"variadic"`
	Class      string      `json:"class"`
}

type jsonPos struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

type jsonParam struct {
	Name string    `json:"name"`
	Type *jsonType `json:"type"`
	Pos  *jsonPos  `json:"pos"`
}

type jsonCase struct {
	Label   *jsonNode   `json:"label"`
	Default bool        `json:"default"`
	Stmts   []*jsonNode `json:"stmts"`
	Pos     *jsonPos    `json:"pos"`
}

type jsonNode struct {
	Kind  string          `json:"kind"`
	Pos   *jsonPos        `json:"pos"`
	Type  *jsonType       `json:"type"`
	Const json.RawMessage `json:"const"`

	// Expressions
	Value    json.RawMessage `json:"value"`
	Bytes    []int           `json:"bytes"`
	Name     string          `json:"name"`
	Ref      string          `json:"ref"`
	Op       string          `json:"op"`
	LHS      *jsonNode       `json:"lhs"`
	RHS      *jsonNode       `json:"rhs"`
	Operand  *jsonNode       `json:"operand"`
	Callee   *jsonNode       `json:"callee"`
	Args     []*jsonNode     `json:"args"`
	Variadic bool            `json:"variadic"`
	Builtin  string          `json:"builtin"`
	Base     *jsonNode       `json:"base"`
	Arrow    bool            `json:"arrow"`
	Field    string          `json:"field"`
	Index    *jsonNode       `json:"index"`
	Cast     string          `json:"cast"`
	Explicit bool            `json:"explicit"`
	Arg      *jsonType       `json:"arg"`
	List     *jsonNode       `json:"list"`
	Receiver *jsonNode       `json:"receiver"`
	Class    string          `json:"class"`
	Selector string          `json:"selector"`

	// Statements
	Cond  *jsonNode   `json:"cond"`
	Then  *jsonNode   `json:"then"`
	Else  *jsonNode   `json:"else"`
	Body  *jsonNode   `json:"body"`
	Stmts []*jsonNode `json:"stmts"`
	Init  *jsonNode   `json:"init"`
	Inc   *jsonNode   `json:"inc"`
	Expr  *jsonNode   `json:"expr"`
	Vars  []*jsonNode `json:"vars"`
	Cases []*jsonCase `json:"cases"`

	// Declarations
	Params      []*jsonParam `json:"params"`
	Result      *jsonType    `json:"result"`
	Entry       bool         `json:"entry"`
	Owner       string       `json:"owner"`
	ClassMethod bool         `json:"class_method"`
}

// Load decodes one unit's dump and returns it with the services answering
// queries about it.
func Load(r io.Reader, source string, opts Options) (*ast.Unit, *Static, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var ju jsonUnit
	if err := dec.Decode(&ju); err != nil {
		return nil, nil, errors.Decode(source, "invalid dump: %v", err)
	}

	d := &decoder{
		source:  source,
		file:    ju.File,
		static:  NewStatic(opts),
		records: make(map[string]*ast.RecordType, len(ju.Records)),
		raw:     ju.Records,
	}
	unit, err := d.unit(&ju)
	if err != nil {
		return nil, nil, err
	}
	return unit, d.static, nil
}

// LoadBytes is Load over an in-memory dump.
func LoadBytes(data []byte, source string, opts Options) (*ast.Unit, *Static, error) {
	return Load(bytes.NewReader(data), source, opts)
}

type decoder struct {
	source  string
	file    string
	static  *Static
	records map[string]*ast.RecordType
	raw     map[string]*jsonRecord
}

func (d *decoder) errorf(where string, format string, args ...interface{}) error {
	return errors.Decode(d.source, "%s: %s", where, fmt.Sprintf(format, args...))
}

func (d *decoder) pos(p *jsonPos) position.Position {
	if p == nil {
		return position.Position{Filename: d.file}
	}
	return position.Position{Filename: d.file, Line: p.Line, Column: p.Col}
}

func (d *decoder) span(p *jsonPos) position.Span {
	return position.At(d.pos(p))
}

func (d *decoder) unit(ju *jsonUnit) (*ast.Unit, error) {
	// Allocate every record first so self-referential types resolve.
	for name, jr := range ju.Records {
		d.records[name] = &ast.RecordType{Name: name, Union: jr.Union, Align: jr.Align}
	}
	for name, jr := range ju.Records {
		if err := d.fillRecord(name, jr); err != nil {
			return nil, err
		}
	}

	unit := &ast.Unit{Name: ju.Name, File: ju.File}
	for i, jd := range ju.Decls {
		decl, err := d.decl(jd, fmt.Sprintf("decls[%d]", i))
		if err != nil {
			return nil, err
		}
		unit.Decls = append(unit.Decls, decl)
	}
	return unit, nil
}

func (d *decoder) fillRecord(name string, jr *jsonRecord) error {
	r := d.records[name]
	explicit := jr.Size != nil
	for i, jf := range jr.Fields {
		where := fmt.Sprintf("records[%s].fields[%d]", name, i)
		t, err := d.typ(jf.Type, where)
		if err != nil {
			return err
		}
		f := ast.Field{Name: jf.Name, Type: t}
		if jf.Offset != nil {
			f.Offset = *jf.Offset
		} else {
			explicit = false
		}
		r.Fields = append(r.Fields, f)
	}
	if explicit {
		r.Size = *jr.Size
		if r.Align == 0 {
			r.Align = 1
		}
		d.static.MarkExplicitLayout(r)
	}
	return nil
}

func (d *decoder) typ(jt *jsonType, where string) (ast.Type, error) {
	if jt == nil {
		return nil, d.errorf(where, "missing type")
	}
	switch jt.Kind {
	case "void":
		return &ast.VoidType{}, nil
	case "scalar":
		kind, ok := ast.ParseScalarKind(jt.Scalar)
		if !ok {
			return nil, errors.Unsupported(position.Position{}, fmt.Sprintf("scalar kind %q at %s", jt.Scalar, where))
		}
		st, _ := ast.CanonicalScalar(kind)
		if jt.Bits != 0 {
			st.Bits = jt.Bits
		}
		if jt.Signed != nil {
			st.Signed = *jt.Signed
		}
		return st, nil
	case "pointer":
		pointee, err := d.typ(jt.Pointee, where+".pointee")
		if err != nil {
			return nil, err
		}
		if fn, ok := ast.Unalias(pointee).(*ast.FunctionType); ok {
			return &ast.FunctionPointerType{Pointee: fn}, nil
		}
		return &ast.PointerType{Pointee: pointee}, nil
	case "fnptr":
		pointee, err := d.typ(jt.Pointee, where+".pointee")
		if err != nil {
			return nil, err
		}
		fn, ok := ast.Unalias(pointee).(*ast.FunctionType)
		if !ok {
			return nil, d.errorf(where, "function pointer to non-function %s", pointee)
		}
		return &ast.FunctionPointerType{Pointee: fn}, nil
	case "array":
		elem, err := d.typ(jt.Elem, where+".elem")
		if err != nil {
			return nil, err
		}
		at := &ast.ArrayType{Elem: elem, Variable: jt.VLA}
		if jt.Len != nil {
			at.Len, at.HasLen = *jt.Len, true
		}
		return at, nil
	case "record":
		if r, ok := d.records[jt.Name]; ok {
			return r, nil
		}
		// Opaque record: declared but never defined in this unit.
		r := &ast.RecordType{Name: jt.Name}
		d.records[jt.Name] = r
		return r, nil
	case "function":
		ft := &ast.FunctionType{Variadic: jt.Variadic}
		result, err := d.typ(jt.Result, where+".result")
		if err != nil {
			return nil, err
		}
		ft.Result = result
		for i, jp := range jt.Params {
			p, err := d.typ(jp, fmt.Sprintf("%s.params[%d]", where, i))
			if err != nil {
				return nil, err
			}
			ft.Params = append(ft.Params, p)
		}
		return ft, nil
	case "alias":
		under, err := d.typ(jt.Underlying, where+".underlying")
		if err != nil {
			return nil, err
		}
		return &ast.AliasType{Name: jt.Name, Underlying: under}, nil
	case "object":
		return &ast.ObjectType{Class: jt.Class}, nil
	default:
		return nil, errors.Unsupported(position.Position{}, fmt.Sprintf("type kind %q at %s", jt.Kind, where))
	}
}

func (d *decoder) params(jps []*jsonParam, where string) ([]*ast.Param, error) {
	params := make([]*ast.Param, 0, len(jps))
	for i, jp := range jps {
		t, err := d.typ(jp.Type, fmt.Sprintf("%s.params[%d]", where, i))
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Param{Span: d.span(jp.Pos), Name: jp.Name, Type: t})
	}
	return params, nil
}

func (d *decoder) decl(jn *jsonNode, where string) (ast.Decl, error) {
	if jn == nil {
		return nil, d.errorf(where, "missing declaration")
	}
	switch jn.Kind {
	case "function":
		params, err := d.params(jn.Params, where)
		if err != nil {
			return nil, err
		}
		result, err := d.typ(jn.Result, where+".result")
		if err != nil {
			return nil, err
		}
		body, err := d.optCompound(jn.Body, where+".body")
		if err != nil {
			return nil, err
		}
		return &ast.FuncDecl{
			Span:     d.span(jn.Pos),
			Name:     jn.Name,
			Params:   params,
			Result:   result,
			Body:     body,
			Variadic: jn.Variadic,
			Entry:    jn.Entry || (jn.Name == "main" && body != nil),
		}, nil
	case "method":
		params, err := d.params(jn.Params, where)
		if err != nil {
			return nil, err
		}
		result, err := d.typ(jn.Result, where+".result")
		if err != nil {
			return nil, err
		}
		body, err := d.optCompound(jn.Body, where+".body")
		if err != nil {
			return nil, err
		}
		if jn.Owner == "" {
			return nil, d.errorf(where, "method %s has no owner class", jn.Selector)
		}
		return &ast.MethodDecl{
			Span:        d.span(jn.Pos),
			Owner:       jn.Owner,
			Selector:    jn.Selector,
			Params:      params,
			Result:      result,
			Body:        body,
			ClassMethod: jn.ClassMethod,
		}, nil
	case "var":
		return d.varDecl(jn, where)
	default:
		return nil, errors.Unsupported(d.pos(jn.Pos), fmt.Sprintf("declaration kind %q", jn.Kind))
	}
}

func (d *decoder) varDecl(jn *jsonNode, where string) (*ast.VarDecl, error) {
	if jn == nil || jn.Kind != "var" {
		return nil, d.errorf(where, "expected variable declaration")
	}
	t, err := d.typ(jn.Type, where+".type")
	if err != nil {
		return nil, err
	}
	v := &ast.VarDecl{Span: d.span(jn.Pos), Name: jn.Name, Type: t}
	if jn.Init != nil {
		if v.Init, err = d.expr(jn.Init, where+".init"); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (d *decoder) optCompound(jn *jsonNode, where string) (*ast.CompoundStmt, error) {
	if jn == nil {
		return nil, nil
	}
	s, err := d.stmt(jn, where)
	if err != nil {
		return nil, err
	}
	c, ok := s.(*ast.CompoundStmt)
	if !ok {
		return nil, d.errorf(where, "function body must be a compound statement")
	}
	return c, nil
}

func (d *decoder) stmts(jns []*jsonNode, where string) ([]ast.Stmt, error) {
	out := make([]ast.Stmt, 0, len(jns))
	for i, jn := range jns {
		s, err := d.stmt(jn, fmt.Sprintf("%s[%d]", where, i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (d *decoder) optExpr(jn *jsonNode, where string) (ast.Expr, error) {
	if jn == nil {
		return nil, nil
	}
	return d.expr(jn, where)
}

func (d *decoder) optStmt(jn *jsonNode, where string) (ast.Stmt, error) {
	if jn == nil {
		return nil, nil
	}
	return d.stmt(jn, where)
}

func (d *decoder) stmt(jn *jsonNode, where string) (ast.Stmt, error) {
	if jn == nil {
		return nil, d.errorf(where, "missing statement")
	}
	info := ast.StmtInfo{Span: d.span(jn.Pos)}
	var err error

	switch jn.Kind {
	case "compound":
		s := &ast.CompoundStmt{StmtInfo: info}
		s.Body, err = d.stmts(jn.Stmts, where+".stmts")
		return s, err
	case "if":
		s := &ast.IfStmt{StmtInfo: info}
		if s.Cond, err = d.expr(jn.Cond, where+".cond"); err != nil {
			return nil, err
		}
		if s.Then, err = d.stmt(jn.Then, where+".then"); err != nil {
			return nil, err
		}
		s.Else, err = d.optStmt(jn.Else, where+".else")
		return s, err
	case "while":
		s := &ast.WhileStmt{StmtInfo: info}
		if s.Cond, err = d.expr(jn.Cond, where+".cond"); err != nil {
			return nil, err
		}
		s.Body, err = d.stmt(jn.Body, where+".body")
		return s, err
	case "do":
		s := &ast.DoStmt{StmtInfo: info}
		if s.Body, err = d.stmt(jn.Body, where+".body"); err != nil {
			return nil, err
		}
		s.Cond, err = d.expr(jn.Cond, where+".cond")
		return s, err
	case "for":
		s := &ast.ForStmt{StmtInfo: info}
		if s.Init, err = d.optStmt(jn.Init, where+".init"); err != nil {
			return nil, err
		}
		if s.Cond, err = d.optExpr(jn.Cond, where+".cond"); err != nil {
			return nil, err
		}
		if s.Inc, err = d.optExpr(jn.Inc, where+".inc"); err != nil {
			return nil, err
		}
		s.Body, err = d.stmt(jn.Body, where+".body")
		return s, err
	case "switch":
		s := &ast.SwitchStmt{StmtInfo: info}
		if s.Cond, err = d.expr(jn.Cond, where+".cond"); err != nil {
			return nil, err
		}
		for i, jc := range jn.Cases {
			cw := fmt.Sprintf("%s.cases[%d]", where, i)
			c := &ast.SwitchCase{Span: d.span(jc.Pos), Default: jc.Default}
			if !jc.Default {
				if c.Label, err = d.expr(jc.Label, cw+".label"); err != nil {
					return nil, err
				}
			}
			if c.Body, err = d.stmts(jc.Stmts, cw+".stmts"); err != nil {
				return nil, err
			}
			s.Cases = append(s.Cases, c)
		}
		return s, nil
	case "break":
		return &ast.BreakStmt{StmtInfo: info}, nil
	case "continue":
		return &ast.ContinueStmt{StmtInfo: info}, nil
	case "null":
		return &ast.NullStmt{StmtInfo: info}, nil
	case "return":
		s := &ast.ReturnStmt{StmtInfo: info}
		s.Value, err = d.optExpr(jn.Expr, where+".expr")
		return s, err
	case "decl":
		s := &ast.DeclStmt{StmtInfo: info}
		for i, jv := range jn.Vars {
			v, err := d.varDecl(jv, fmt.Sprintf("%s.vars[%d]", where, i))
			if err != nil {
				return nil, err
			}
			s.Vars = append(s.Vars, v)
		}
		return s, nil
	case "expr":
		s := &ast.ExprStmt{StmtInfo: info}
		s.X, err = d.expr(jn.Expr, where+".expr")
		return s, err
	default:
		return nil, errors.Unsupported(d.pos(jn.Pos), fmt.Sprintf("statement kind %q", jn.Kind))
	}
}

func (d *decoder) exprs(jns []*jsonNode, where string) ([]ast.Expr, error) {
	out := make([]ast.Expr, 0, len(jns))
	for i, jn := range jns {
		e, err := d.expr(jn, fmt.Sprintf("%s[%d]", where, i))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *decoder) expr(jn *jsonNode, where string) (ast.Expr, error) {
	if jn == nil {
		return nil, d.errorf(where, "missing expression")
	}
	var t ast.Type
	if jn.Type != nil {
		var err error
		if t, err = d.typ(jn.Type, where+".type"); err != nil {
			return nil, err
		}
	}
	e, err := d.exprNode(jn, ast.ExprInfo{Span: d.span(jn.Pos), Type: t}, where)
	if err != nil {
		return nil, err
	}
	if len(jn.Const) > 0 {
		v, err := parseInt(jn.Const)
		if err != nil {
			return nil, d.errorf(where, "const: %v", err)
		}
		d.static.SetConstant(e, v)
	}
	return e, nil
}

// stringBytes returns a literal's bytes without the terminating NUL. The
// exact "bytes" form wins; "value" is UTF-8 text.
func (d *decoder) stringBytes(jn *jsonNode, where string) ([]byte, error) {
	if jn.Bytes != nil {
		b := make([]byte, len(jn.Bytes))
		for i, c := range jn.Bytes {
			if c < 0 || c > 0xff {
				return nil, d.errorf(where, "string literal byte %d out of range: %d", i, c)
			}
			b[i] = byte(c)
		}
		return b, nil
	}
	var s string
	if err := json.Unmarshal(jn.Value, &s); err != nil {
		return nil, d.errorf(where, "string literal: %v", err)
	}
	return []byte(s), nil
}

func (d *decoder) exprNode(jn *jsonNode, info ast.ExprInfo, where string) (ast.Expr, error) {
	var err error
	switch jn.Kind {
	case "int":
		v, err := parseInt(jn.Value)
		if err != nil {
			return nil, d.errorf(where, "int literal: %v", err)
		}
		return &ast.IntLiteral{ExprInfo: info, Value: v}, nil
	case "float":
		var v float64
		if err := json.Unmarshal(jn.Value, &v); err != nil {
			return nil, d.errorf(where, "float literal: %v", err)
		}
		return &ast.FloatLiteral{ExprInfo: info, Value: v}, nil
	case "string":
		b, err := d.stringBytes(jn, where)
		if err != nil {
			return nil, err
		}
		if arr, ok := ast.Unalias(info.Type).(*ast.ArrayType); ok && arr.HasLen && int64(len(b))+1 != arr.Len {
			return nil, d.errorf(where, "string literal has %d bytes, its type %v holds %d", len(b), info.Type, arr.Len-1)
		}
		return &ast.StringLiteral{ExprInfo: info, Bytes: b}, nil
	case "name":
		ref, err := parseRef(jn.Ref)
		if err != nil {
			return nil, d.errorf(where, "%v", err)
		}
		return &ast.NameRef{ExprInfo: info, Name: jn.Name, Ref: ref}, nil
	case "binary":
		op, ok := ast.ParseBinaryOp(jn.Op)
		if !ok {
			return nil, errors.Unsupported(info.Span.Start, fmt.Sprintf("binary operator %q", jn.Op))
		}
		e := &ast.BinaryExpr{ExprInfo: info, Op: op}
		if e.LHS, err = d.expr(jn.LHS, where+".lhs"); err != nil {
			return nil, err
		}
		e.RHS, err = d.expr(jn.RHS, where+".rhs")
		return e, err
	case "unary":
		op, ok := ast.ParseUnaryOp(jn.Op)
		if !ok {
			return nil, errors.Unsupported(info.Span.Start, fmt.Sprintf("unary operator %q", jn.Op))
		}
		e := &ast.UnaryExpr{ExprInfo: info, Op: op}
		e.Operand, err = d.expr(jn.Operand, where+".operand")
		return e, err
	case "call":
		builtin, ok := ast.ParseBuiltin(jn.Builtin)
		if !ok {
			return nil, errors.Unsupported(info.Span.Start, fmt.Sprintf("builtin %q", jn.Builtin))
		}
		e := &ast.CallExpr{ExprInfo: info, Variadic: jn.Variadic, Builtin: builtin}
		if e.Callee, err = d.expr(jn.Callee, where+".callee"); err != nil {
			return nil, err
		}
		e.Args, err = d.exprs(jn.Args, where+".args")
		return e, err
	case "member":
		e := &ast.MemberExpr{ExprInfo: info, Arrow: jn.Arrow, Field: jn.Field}
		e.Base, err = d.expr(jn.Base, where+".base")
		return e, err
	case "subscript":
		e := &ast.SubscriptExpr{ExprInfo: info}
		if e.Base, err = d.expr(jn.Base, where+".base"); err != nil {
			return nil, err
		}
		e.Index, err = d.expr(jn.Index, where+".index")
		return e, err
	case "cast":
		kind, ok := ast.ParseCastKind(jn.Cast)
		if !ok {
			return nil, errors.Unsupported(info.Span.Start, fmt.Sprintf("cast kind %q", jn.Cast))
		}
		e := &ast.CastExpr{ExprInfo: info, Kind: kind, Explicit: jn.Explicit}
		e.Operand, err = d.expr(jn.Operand, where+".operand")
		return e, err
	case "sizeof":
		e := &ast.SizeOfExpr{ExprInfo: info}
		e.Arg, err = d.typ(jn.Arg, where+".arg")
		return e, err
	case "va_arg":
		e := &ast.VarArgExpr{ExprInfo: info}
		e.List, err = d.expr(jn.List, where+".list")
		return e, err
	case "cond":
		e := &ast.ConditionalExpr{ExprInfo: info}
		if e.Cond, err = d.expr(jn.Cond, where+".cond"); err != nil {
			return nil, err
		}
		if e.Then, err = d.expr(jn.Then, where+".then"); err != nil {
			return nil, err
		}
		e.Else, err = d.expr(jn.Else, where+".else")
		return e, err
	case "message":
		e := &ast.MessageExpr{ExprInfo: info, Class: jn.Class, Selector: jn.Selector}
		if jn.Receiver != nil {
			if e.Receiver, err = d.expr(jn.Receiver, where+".receiver"); err != nil {
				return nil, err
			}
		} else if jn.Class == "" {
			return nil, d.errorf(where, "message %s has neither receiver nor class", jn.Selector)
		}
		e.Args, err = d.exprs(jn.Args, where+".args")
		return e, err
	default:
		return nil, errors.Unsupported(info.Span.Start, fmt.Sprintf("expression kind %q", jn.Kind))
	}
}

func parseRef(s string) (ast.RefKind, error) {
	switch s {
	case "", "var":
		return ast.RefVariable, nil
	case "param":
		return ast.RefParameter, nil
	case "function":
		return ast.RefFunction, nil
	case "self":
		return ast.RefSelf, nil
	}
	return 0, fmt.Errorf("unknown reference kind %q", s)
}

// parseInt accepts a JSON number or a decimal string. Values above
// the int64 range keep their two's-complement bit pattern.
func parseInt(raw json.RawMessage) (int64, error) {
	text := string(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		text = s
	}
	if v, err := strconv.ParseInt(text, 0, 64); err == nil {
		return v, nil
	}
	u, err := strconv.ParseUint(text, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %s", raw)
	}
	return int64(u), nil
}
