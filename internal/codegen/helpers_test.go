package codegen

import (
	"testing"

	"github.com/objc2dart/objc2dart/internal/ast"
	"github.com/objc2dart/objc2dart/internal/frontend"
	"github.com/objc2dart/objc2dart/internal/types"
)

// Tree-building shorthands. Spans are left zero; positions are exercised by
// the decoder tests.

func scalar(k ast.ScalarKind) *ast.ScalarType {
	s, _ := ast.CanonicalScalar(k)
	return s
}

var (
	intT    = scalar(ast.Int)
	longT   = scalar(ast.Long)
	ulongT  = scalar(ast.ULong)
	charT   = scalar(ast.Char)
	doubleT = scalar(ast.Double)
	voidT   = &ast.VoidType{}
)

func ptr(t ast.Type) *ast.PointerType { return &ast.PointerType{Pointee: t} }

func info(t ast.Type) ast.ExprInfo { return ast.ExprInfo{Type: t} }

func lit(v int64, t ast.Type) *ast.IntLiteral {
	return &ast.IntLiteral{ExprInfo: info(t), Value: v}
}

func name(n string, t ast.Type) *ast.NameRef {
	return &ast.NameRef{ExprInfo: info(t), Name: n}
}

func param(n string, t ast.Type) *ast.NameRef {
	return &ast.NameRef{ExprInfo: info(t), Name: n, Ref: ast.RefParameter}
}

// load reads the value of a variable, the way every rvalue use appears.
func load(n *ast.NameRef) *ast.CastExpr {
	return cast(ast.LValueToRValue, n.Type, n)
}

func cast(k ast.CastKind, t ast.Type, e ast.Expr) *ast.CastExpr {
	return &ast.CastExpr{ExprInfo: info(t), Kind: k, Operand: e}
}

func bin(op ast.BinaryOp, t ast.Type, l, r ast.Expr) *ast.BinaryExpr {
	return &ast.BinaryExpr{ExprInfo: info(t), Op: op, LHS: l, RHS: r}
}

func un(op ast.UnaryOp, t ast.Type, e ast.Expr) *ast.UnaryExpr {
	return &ast.UnaryExpr{ExprInfo: info(t), Op: op, Operand: e}
}

// fn declares a function reference and returns the decayed callee.
func fn(n string, sig *ast.FunctionType) *ast.CastExpr {
	ref := &ast.NameRef{ExprInfo: info(sig), Name: n, Ref: ast.RefFunction}
	return cast(ast.FunctionToPointerDecay, &ast.FunctionPointerType{Pointee: sig}, ref)
}

func call(callee ast.Expr, t ast.Type, args ...ast.Expr) *ast.CallExpr {
	c := &ast.CallExpr{ExprInfo: info(t), Callee: callee, Args: args}
	if f, ok := ast.FunctionOf(callee.ExprType()); ok {
		c.Variadic = f.Variadic
	}
	return c
}

func exprStmt(e ast.Expr) *ast.ExprStmt { return &ast.ExprStmt{X: e} }

func block(body ...ast.Stmt) *ast.CompoundStmt { return &ast.CompoundStmt{Body: body} }

// Common records.
var (
	point = &ast.RecordType{Name: "point", Fields: []ast.Field{
		{Name: "x", Type: intT},
		{Name: "y", Type: intT},
	}}
	line = &ast.RecordType{Name: "line", Fields: []ast.Field{
		{Name: "a", Type: point},
		{Name: "b", Type: point},
	}}
	buffer = &ast.RecordType{Name: "buffer", Fields: []ast.Field{
		{Name: "tag", Type: charT},
		{Name: "data", Type: &ast.ArrayType{Elem: intT, Len: 4, HasLen: true}},
	}}
	vaListT = &ast.AliasType{Name: "va_list", Underlying: &ast.ArrayType{
		Elem: &ast.RecordType{Name: frontend.DefaultVarArgList, Size: 24, Align: 8},
		Len:  1, HasLen: true,
	}}
)

func newEmitter() (*emitter, *frontend.Static) {
	fe := frontend.NewStatic(frontend.Options{})
	return &emitter{w: newWriter(), fe: fe, types: types.NewMapper(fe)}, fe
}

// emitExpr renders e on its own and returns the text.
func emitExpr(t *testing.T, ctx emitContext, e ast.Expr) (string, error) {
	t.Helper()
	g, _ := newEmitter()
	err := g.expr(ctx, e)
	return string(g.w.bytes()), err
}

// emitStmts renders statements at the top indentation level.
func emitStmts(t *testing.T, ctx emitContext, body ...ast.Stmt) (string, error) {
	t.Helper()
	g, _ := newEmitter()
	err := g.stmts(ctx, body)
	return string(g.w.bytes()), err
}

// variadicFn is the context inside int sum(int n, ...).
var variadicFn = emitContext{}.inFunction(&function{name: "sum", variadic: true})
