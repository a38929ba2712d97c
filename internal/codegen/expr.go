package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/objc2dart/objc2dart/internal/ast"
	"github.com/objc2dart/objc2dart/internal/errors"
	"github.com/objc2dart/objc2dart/internal/position"
	"github.com/objc2dart/objc2dart/internal/runtimelib"
)

// binaryMethods maps value operators to runtime method names.
var binaryMethods = map[ast.BinaryOp]string{
	ast.Add: "add",
	ast.Sub: "sub",
	ast.Mul: "mul",
	ast.Div: "div",
	ast.Rem: "rem",
	ast.Shl: "shl",
	ast.Shr: "shr",
	ast.And: "bitAnd",
	ast.Or:  "bitOr",
	ast.Xor: "bitXor",
	ast.LT:  "lt",
	ast.GT:  "gt",
	ast.LE:  "le",
	ast.GE:  "ge",
	ast.EQ:  "eq",
	ast.NE:  "ne",
}

var unaryMethods = map[ast.UnaryOp]string{
	ast.PreInc:  "inc",
	ast.PreDec:  "dec",
	ast.PostInc: "postinc",
	ast.PostDec: "postdec",
	ast.AddrOf:  "addressOf",
	ast.Deref:   "dereference",
	ast.Minus:   "neg",
	ast.LNot:    "not",
	ast.Not:     "bitNot",
}

// expr writes e. Integer constants are folded before any node-specific
// handling.
func (g *emitter) expr(ctx emitContext, e ast.Expr) error {
	if e == nil {
		return errors.Invariant(position.Position{}, "missing expression")
	}
	if v, ok := g.constant(e); ok {
		return errors.Locate(g.emitConstant(e, v), e.GetSpan().Start)
	}
	return errors.Locate(g.exprNode(ctx, e), e.GetSpan().Start)
}

func (g *emitter) exprNode(ctx emitContext, e ast.Expr) error {
	switch e := e.(type) {
	case *ast.IntLiteral:
		return g.emitConstant(e, e.Value)
	case *ast.FloatLiteral:
		return g.floatLiteral(e)
	case *ast.StringLiteral:
		g.stringLiteral(e.Bytes)
		return nil
	case *ast.NameRef:
		g.nameRef(ctx, e)
		return nil
	case *ast.BinaryExpr:
		return g.binary(ctx, e)
	case *ast.UnaryExpr:
		return g.unary(ctx, e)
	case *ast.CallExpr:
		return g.call(ctx, e)
	case *ast.MemberExpr:
		return g.member(ctx, e)
	case *ast.SubscriptExpr:
		if err := g.receiver(ctx, e.Base); err != nil {
			return err
		}
		g.w.print(".add(")
		if err := g.expr(ctx, e.Index); err != nil {
			return err
		}
		g.w.print(").dereference()")
		return nil
	case *ast.CastExpr:
		return g.cast(ctx, e)
	case *ast.SizeOfExpr:
		return g.sizeOf(e)
	case *ast.VarArgExpr:
		name, err := g.types.MapType(e.Type)
		if err != nil {
			return err
		}
		g.w.print("(")
		if err := g.receiver(ctx, vaList(e.List)); err != nil {
			return err
		}
		g.w.printf(".next() as %s)", name)
		return nil
	case *ast.ConditionalExpr:
		g.w.print("(")
		if err := g.condition(ctx, e.Cond); err != nil {
			return err
		}
		g.w.print(" ? ")
		if err := g.expr(ctx, e.Then); err != nil {
			return err
		}
		g.w.print(" : ")
		if err := g.expr(ctx, e.Else); err != nil {
			return err
		}
		g.w.print(")")
		return nil
	case *ast.MessageExpr:
		return g.message(ctx, e)
	default:
		return errors.Invariant(e.GetSpan().Start, "unknown expression node %T", e)
	}
}

// bare reports whether e can be emitted as a method receiver without
// parentheses. Conditionals and va_arg reads carry their own.
func (g *emitter) bare(e ast.Expr) bool {
	switch ast.StripTransparent(e).(type) {
	case *ast.NameRef, *ast.ConditionalExpr, *ast.VarArgExpr:
		return true
	}
	_, ok := g.constant(e)
	return ok
}

// receiver writes e in a position where a method call follows it.
func (g *emitter) receiver(ctx emitContext, e ast.Expr) error {
	if g.bare(e) {
		return g.expr(ctx, e)
	}
	g.w.print("(")
	if err := g.expr(ctx, e); err != nil {
		return err
	}
	g.w.print(")")
	return nil
}

// condition writes e as a native boolean test: nonzero is true. Floating
// values are compared as doubles so that fractions stay true.
func (g *emitter) condition(ctx emitContext, e ast.Expr) error {
	if err := g.receiver(ctx, e); err != nil {
		return err
	}
	if st, ok := ast.Unalias(e.ExprType()).(*ast.ScalarType); ok && st.Kind.IsFloat() {
		g.w.print(".doubleValue() != 0")
		return nil
	}
	g.w.print(".intValue() != 0")
	return nil
}

// isValue reports whether values of t are runtime wrappers, which are
// passed and returned by copy.
func (g *emitter) isValue(t ast.Type) bool {
	if _, obj := ast.Unalias(t).(*ast.ObjectType); obj {
		return false
	}
	name, err := g.types.MapType(t)
	if err != nil {
		return false
	}
	return name != runtimelib.Dynamic && name != runtimelib.Void
}

// copied writes e, copying it when it is a runtime value.
func (g *emitter) copied(ctx emitContext, e ast.Expr) error {
	if !g.isValue(e.ExprType()) {
		return g.expr(ctx, e)
	}
	if err := g.receiver(ctx, e); err != nil {
		return err
	}
	g.w.print(".copy()")
	return nil
}

func (g *emitter) nameRef(ctx emitContext, e *ast.NameRef) {
	if e.Ref == ast.RefSelf {
		g.w.print(ctx.self())
		return
	}
	g.w.print(ident(e.Name))
}

func (g *emitter) floatLiteral(e *ast.FloatLiteral) error {
	wrapper := runtimelib.Double
	if st, ok := ast.Unalias(e.Type).(*ast.ScalarType); ok && st.Kind == ast.Float {
		wrapper = runtimelib.Float
	}
	g.w.printf("%s.fromDouble(%s)", wrapper, dartDouble(e.Value))
	return nil
}

// dartDouble formats v as a Dart double literal.
func dartDouble(v float64) string {
	switch {
	case math.IsNaN(v):
		return "double.nan"
	case math.IsInf(v, 1):
		return "double.infinity"
	case math.IsInf(v, -1):
		return "double.negativeInfinity"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (g *emitter) stringLiteral(b []byte) {
	parts := make([]string, 0, len(b)+1)
	for _, c := range b {
		parts = append(parts, strconv.Itoa(int(c)))
	}
	parts = append(parts, "0")
	g.w.printf("%s.fromBytes(<int>[%s])", runtimelib.Pointer, strings.Join(parts, ", "))
}

func (g *emitter) binary(ctx emitContext, e *ast.BinaryExpr) error {
	switch e.Op {
	case ast.Comma:
		g.w.print("() { ")
		if err := g.expr(ctx, e.LHS); err != nil {
			return err
		}
		g.w.print("; return ")
		if err := g.expr(ctx, e.RHS); err != nil {
			return err
		}
		g.w.print("; }()")
		return nil
	case ast.Assign:
		return g.methodCall(ctx, e.LHS, "set", e.RHS)
	case ast.LAnd, ast.LOr:
		method := "and"
		if e.Op == ast.LOr {
			method = "or"
		}
		if err := g.receiver(ctx, e.LHS); err != nil {
			return err
		}
		g.w.printf(".%s(() => ", method)
		if err := g.expr(ctx, e.RHS); err != nil {
			return err
		}
		g.w.print(")")
		return nil
	case ast.PtrMemD, ast.PtrMemI:
		return errors.Unsupported(e.Span.Start, fmt.Sprintf("pointer-to-member operator %s", e.Op))
	}

	if base, ok := e.Op.CompoundBase(); ok {
		return g.compoundAssign(ctx, e, binaryMethods[base])
	}
	method, ok := binaryMethods[e.Op]
	if !ok {
		return errors.Invariant(e.Span.Start, "no runtime method for operator %s", e.Op)
	}
	return g.methodCall(ctx, e.LHS, method, e.RHS)
}

// methodCall writes recv.method(arg).
func (g *emitter) methodCall(ctx emitContext, recv ast.Expr, method string, arg ast.Expr) error {
	if err := g.receiver(ctx, recv); err != nil {
		return err
	}
	g.w.printf(".%s(", method)
	if err := g.expr(ctx, arg); err != nil {
		return err
	}
	g.w.print(")")
	return nil
}

// compoundAssign evaluates the target once. A bare name can be repeated;
// anything else is bound to a temporary inside a closure.
func (g *emitter) compoundAssign(ctx emitContext, e *ast.BinaryExpr, method string) error {
	if name, ok := ast.StripTransparent(e.LHS).(*ast.NameRef); ok {
		target := ident(name.Name)
		if name.Ref == ast.RefSelf {
			target = ctx.self()
		}
		g.w.printf("%s.set(%s.%s(", target, target, method)
		if err := g.expr(ctx, e.RHS); err != nil {
			return err
		}
		g.w.print("))")
		return nil
	}

	g.w.printf("() { var %s = ", tempName)
	if err := g.expr(ctx, e.LHS); err != nil {
		return err
	}
	g.w.printf("; return %s.set(%s.%s(", tempName, tempName, method)
	if err := g.expr(ctx, e.RHS); err != nil {
		return err
	}
	g.w.print(")); }()")
	return nil
}

func (g *emitter) unary(ctx emitContext, e *ast.UnaryExpr) error {
	switch e.Op {
	case ast.Plus:
		return g.expr(ctx, e.Operand)
	case ast.Real, ast.Imag:
		return errors.Unsupported(e.Span.Start, fmt.Sprintf("complex operator %s", e.Op))
	case ast.AddrOf:
		if name, ok := e.Operand.(*ast.NameRef); ok && name.Ref == ast.RefFunction {
			g.w.printf("%s(%s)", runtimelib.FunctionPointer, ident(name.Name))
			return nil
		}
	}
	method, ok := unaryMethods[e.Op]
	if !ok {
		return errors.Invariant(e.Span.Start, "no runtime method for operator %s", e.Op)
	}
	if err := g.receiver(ctx, e.Operand); err != nil {
		return err
	}
	g.w.printf(".%s()", method)
	return nil
}

// member writes a field read as a typed access at the field's byte offset.
func (g *emitter) member(ctx emitContext, e *ast.MemberExpr) error {
	baseType := e.Base.ExprType()
	if e.Arrow {
		pointee, ok := ast.PointeeOf(baseType)
		if !ok {
			return errors.Invariant(e.Span.Start, "-> applied to non-pointer %v", baseType)
		}
		baseType = pointee
	}
	record, ok := ast.Unalias(baseType).(*ast.RecordType)
	if !ok {
		return errors.Invariant(e.Span.Start, "member %s of non-record %v", e.Field, baseType)
	}
	field, ok := record.Field(e.Field)
	if !ok {
		return errors.Invariant(e.Span.Start, "record %s has no field %s", record.Name, e.Field)
	}
	l, err := g.fe.LayoutOf(record)
	if err != nil {
		return err
	}
	offset, ok := l.GetFieldOffset(e.Field)
	if !ok {
		return errors.Invariant(e.Span.Start, "layout of %s has no field %s", record.Name, e.Field)
	}
	kind, err := g.types.KindName(field.Type)
	if err != nil {
		return err
	}

	if err := g.receiver(ctx, e.Base); err != nil {
		return err
	}
	if e.Arrow {
		g.w.print(".dereference()")
	}
	if kind == "composite" {
		size, err := g.types.SizeOf(field.Type)
		if err != nil {
			return err
		}
		g.w.printf(".compositeAtOffset(%d, %d)", offset, size)
		return nil
	}
	g.w.printf(".%sAtOffset(%d)", kind, offset)
	return nil
}

func (g *emitter) sizeOf(e *ast.SizeOfExpr) error {
	size, err := g.types.SizeOf(e.Arg)
	if err != nil {
		return err
	}
	g.w.printf("%s.fromInt(%d)", runtimelib.Uint64, size)
	return nil
}

func (g *emitter) message(ctx emitContext, e *ast.MessageExpr) error {
	if e.Receiver != nil {
		if err := g.receiver(ctx, e.Receiver); err != nil {
			return err
		}
	} else {
		g.w.print(ident(e.Class))
	}
	g.w.printf(".%s(", selectorName(e.Selector))
	for i, arg := range e.Args {
		if i > 0 {
			g.w.print(", ")
		}
		if err := g.copied(ctx, arg); err != nil {
			return err
		}
	}
	g.w.print(")")
	return nil
}
