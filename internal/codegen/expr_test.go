package codegen

import (
	stderrors "errors"
	"testing"

	"github.com/objc2dart/objc2dart/internal/ast"
	"github.com/objc2dart/objc2dart/internal/errors"
	"github.com/objc2dart/objc2dart/internal/testrunner/assert"
)

type exprCase struct {
	name string
	ctx  emitContext
	in   ast.Expr
	want string
}

func runExprCases(t *testing.T, tests []exprCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := emitExpr(t, tt.ctx, tt.in)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, got, tt.want)
		})
	}
}

// errorCode returns the code of the first categorized error in err's chain.
func errorCode(err error) string {
	var se *errors.StandardError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

func TestConstants(t *testing.T) {
	runExprCases(t, []exprCase{
		{"int literal", emitContext{}, lit(5, intT), "CInt32.fromInt(5)"},
		{"unsigned truncation", emitContext{}, lit(300, scalar(ast.UChar)), "CUint8.fromInt(44)"},
		{"signed wrap", emitContext{}, lit(200, scalar(ast.SChar)), "CInt8.fromInt(-56)"},
		{"all ones", emitContext{}, lit(-1, ulongT), "CUint64.fromInt(-1)"},
		{"folded arithmetic", emitContext{}, bin(ast.Add, intT, lit(1, intT), lit(2, intT)), "CInt32.fromInt(3)"},
		{"folded shift", emitContext{}, bin(ast.Shl, intT, lit(1, intT), lit(4, intT)), "CInt32.fromInt(16)"},
		{"folded sizeof", emitContext{}, &ast.SizeOfExpr{ExprInfo: info(ulongT), Arg: point}, "CUint64.fromInt(8)"},
		{"folded cast", emitContext{}, cast(ast.IntegralCast, longT, lit(7, intT)), "CInt64.fromInt(7)"},
		{"folded bool cast", emitContext{}, cast(ast.IntegralToBoolean, scalar(ast.Bool), lit(256, intT)), "CUint8.fromInt(1)"},
		{"bool literal normalizes", emitContext{}, lit(256, scalar(ast.Bool)), "CUint8.fromInt(1)"},
		{"folded conditional", emitContext{}, &ast.ConditionalExpr{
			ExprInfo: info(intT), Cond: lit(0, intT), Then: lit(1, intT), Else: lit(2, intT),
		}, "CInt32.fromInt(2)"},
	})
}

func TestReportedConstantWins(t *testing.T) {
	g, fe := newEmitter()
	e := load(name("N", intT))
	fe.SetConstant(e, 42)
	if !assert.NoError(t, g.expr(emitContext{}, e)) {
		return
	}
	assert.Equal(t, string(g.w.bytes()), "CInt32.fromInt(42)")
}

func TestOperators(t *testing.T) {
	a, b, c := load(param("a", intT)), load(param("b", intT)), load(param("c", intT))
	x := name("x", intT)
	p := name("p", ptr(intT))
	f := call(fn("f", &ast.FunctionType{Result: intT}), intT)

	runExprCases(t, []exprCase{
		{"add", emitContext{}, bin(ast.Add, intT, a, b), "a.add(b)"},
		{"nested receiver", emitContext{}, bin(ast.Mul, intT, bin(ast.Add, intT, a, b), c), "(a.add(b)).mul(c)"},
		{"bitwise and", emitContext{}, bin(ast.And, intT, a, b), "a.bitAnd(b)"},
		{"bitwise xor", emitContext{}, bin(ast.Xor, intT, a, b), "a.bitXor(b)"},
		{"comparison", emitContext{}, bin(ast.LT, intT, a, b), "a.lt(b)"},
		{"logical and", emitContext{}, bin(ast.LAnd, intT, a, b), "a.and(() => b)"},
		{"logical or", emitContext{}, bin(ast.LOr, intT, a, f), "a.or(() => f())"},
		{"comma", emitContext{}, bin(ast.Comma, intT, a, b), "() { a; return b; }()"},
		{"assign", emitContext{}, bin(ast.Assign, intT, x, lit(5, intT)), "x.set(CInt32.fromInt(5))"},
		{"compound on name", emitContext{}, bin(ast.AddAssign, intT, x, lit(2, intT)),
			"x.set(x.add(CInt32.fromInt(2)))"},
		{"compound shift", emitContext{}, bin(ast.ShlAssign, intT, x, b), "x.set(x.shl(b))"},
		{"compound through pointer", emitContext{},
			bin(ast.AddAssign, intT, un(ast.Deref, intT, load(p)), lit(1, intT)),
			"() { var __tmp = p.dereference(); return __tmp.set(__tmp.add(CInt32.fromInt(1))); }()"},
		{"negate", emitContext{}, un(ast.Minus, intT, load(x)), "x.neg()"},
		{"plus", emitContext{}, un(ast.Plus, intT, load(x)), "x"},
		{"pre increment", emitContext{}, un(ast.PreInc, intT, x), "x.inc()"},
		{"post decrement", emitContext{}, un(ast.PostDec, intT, x), "x.postdec()"},
		{"logical not", emitContext{}, un(ast.LNot, intT, load(x)), "x.not()"},
		{"bitwise not", emitContext{}, un(ast.Not, intT, load(x)), "x.bitNot()"},
		{"address of", emitContext{}, un(ast.AddrOf, ptr(intT), x), "x.addressOf()"},
		{"dereference", emitContext{}, un(ast.Deref, intT, load(p)), "p.dereference()"},
		{"address of function", emitContext{},
			un(ast.AddrOf, ptr(&ast.FunctionType{Result: intT}), &ast.NameRef{
				ExprInfo: info(&ast.FunctionType{Result: intT}), Name: "f", Ref: ast.RefFunction,
			}), "CFunctionPointer(f)"},
		{"subscript", emitContext{}, &ast.SubscriptExpr{ExprInfo: info(intT), Base: load(p), Index: c}, "p.add(c).dereference()"},
		{"conditional", emitContext{}, &ast.ConditionalExpr{ExprInfo: info(intT), Cond: c, Then: a, Else: b},
			"(c.intValue() != 0 ? a : b)"},
	})
}

func TestCompoundAssignEvaluatesTargetOnce(t *testing.T) {
	target := call(fn("next", &ast.FunctionType{Result: ptr(intT)}), ptr(intT))
	e := bin(ast.MulAssign, intT, un(ast.Deref, intT, target), lit(3, intT))

	got, err := emitExpr(t, emitContext{}, e)
	if !assert.NoError(t, err) {
		return
	}
	assert.Count(t, got, "next()", 1)
	assert.Equal(t, got, "() { var __tmp = (next()).dereference(); return __tmp.set(__tmp.mul(CInt32.fromInt(3))); }()")
}

func TestLiterals(t *testing.T) {
	str := &ast.StringLiteral{
		ExprInfo: info(&ast.ArrayType{Elem: charT, Len: 3, HasLen: true}),
		Bytes:    []byte("hi"),
	}
	runExprCases(t, []exprCase{
		{"double", emitContext{}, &ast.FloatLiteral{ExprInfo: info(doubleT), Value: 1.5}, "CDouble.fromDouble(1.5)"},
		{"float integral value", emitContext{}, &ast.FloatLiteral{ExprInfo: info(scalar(ast.Float)), Value: 2},
			"CFloat.fromDouble(2.0)"},
		{"exponent", emitContext{}, &ast.FloatLiteral{ExprInfo: info(doubleT), Value: 1e300}, "CDouble.fromDouble(1e+300)"},
		{"string", emitContext{}, str, "CPointer.fromBytes(<int>[104, 105, 0])"},
		{"empty string", emitContext{}, &ast.StringLiteral{ExprInfo: info(&ast.ArrayType{Elem: charT, Len: 1, HasLen: true})},
			"CPointer.fromBytes(<int>[0])"},
	})
}

func TestMemberAccess(t *testing.T) {
	s := name("s", point)
	l := name("l", line)
	pp := name("pp", ptr(point))
	inner := &ast.MemberExpr{ExprInfo: info(point), Base: l, Field: "b"}

	runExprCases(t, []exprCase{
		{"field", emitContext{}, &ast.MemberExpr{ExprInfo: info(intT), Base: s, Field: "y"}, "s.int32AtOffset(4)"},
		{"arrow", emitContext{}, &ast.MemberExpr{ExprInfo: info(intT), Base: load(pp), Arrow: true, Field: "y"},
			"pp.dereference().int32AtOffset(4)"},
		{"record field", emitContext{}, inner, "l.compositeAtOffset(8, 8)"},
		{"array field", emitContext{}, &ast.MemberExpr{ExprInfo: info(buffer.Fields[1].Type), Base: name("b", buffer), Field: "data"},
			"b.compositeAtOffset(4, 16)"},
		{"nested", emitContext{}, &ast.MemberExpr{ExprInfo: info(intT), Base: inner, Field: "y"},
			"(l.compositeAtOffset(8, 8)).int32AtOffset(4)"},
	})
}

func TestMemberUsesReportedLayout(t *testing.T) {
	packed := &ast.RecordType{Name: "packed", Size: 5, Align: 1, Fields: []ast.Field{
		{Name: "tag", Type: charT, Offset: 0},
		{Name: "value", Type: intT, Offset: 1},
	}}
	g, fe := newEmitter()
	fe.MarkExplicitLayout(packed)

	e := &ast.MemberExpr{ExprInfo: info(intT), Base: name("p", packed), Field: "value"}
	if !assert.NoError(t, g.expr(emitContext{}, e)) {
		return
	}
	assert.Equal(t, string(g.w.bytes()), "p.int32AtOffset(1)")
}

func TestCasts(t *testing.T) {
	x := load(name("x", intT))
	wide := load(name("w", longT))
	p := load(name("p", ptr(intT)))
	arr := name("arr", &ast.ArrayType{Elem: intT, Len: 4, HasLen: true})
	str := &ast.StringLiteral{ExprInfo: info(&ast.ArrayType{Elem: charT, Len: 3, HasLen: true}), Bytes: []byte("hi")}
	sig := &ast.FunctionType{Result: voidT}
	u := &ast.RecordType{Name: "u", Union: true, Fields: []ast.Field{
		{Name: "c", Type: charT},
		{Name: "d", Type: doubleT},
	}}

	runExprCases(t, []exprCase{
		{"widen", emitContext{}, cast(ast.IntegralCast, longT, x), "x.int64Value()"},
		{"to floating", emitContext{}, cast(ast.IntegralToFloating, doubleT, x), "x.doubleValue()"},
		{"from floating", emitContext{}, cast(ast.FloatingToIntegral, intT, load(name("d", doubleT))), "d.int32Value()"},
		{"int to bool", emitContext{}, cast(ast.IntegralToBoolean, scalar(ast.Bool), x), "CUint8.fromInt(x.intValue() != 0 ? 1 : 0)"},
		{"floating to bool", emitContext{}, cast(ast.FloatingToBoolean, scalar(ast.Bool), load(name("d", doubleT))),
			"CUint8.fromInt(d.doubleValue() != 0 ? 1 : 0)"},
		{"pointer to bool", emitContext{}, cast(ast.PointerToBoolean, scalar(ast.Bool), p), "CUint8.fromInt(p.intValue() != 0 ? 1 : 0)"},
		{"bool of sum", emitContext{}, cast(ast.IntegralToBoolean, scalar(ast.Bool), bin(ast.Add, intT, x, x)),
			"CUint8.fromInt((x.add(x)).intValue() != 0 ? 1 : 0)"},
		{"to void", emitContext{}, cast(ast.ToVoid, voidT, x), "x"},
		{"null pointer", emitContext{}, cast(ast.NullToPointer, ptr(voidT), lit(0, intT)),
			"CInt32.fromInt(0).pointerValue().asUint8Pointer()"},
		{"integer to pointer", emitContext{}, cast(ast.IntegralToPointer, ptr(intT), wide), "w.pointerValue().asInt32Pointer()"},
		{"array decay", emitContext{}, cast(ast.ArrayToPointerDecay, ptr(intT), arr), "arr.addressOf().asInt32Pointer()"},
		{"string decay", emitContext{}, cast(ast.ArrayToPointerDecay, ptr(charT), str),
			"CPointer.fromBytes(<int>[104, 105, 0]).asInt8Pointer()"},
		{"to record pointer", emitContext{}, cast(ast.BitCast, ptr(point), p), "p.asCompositePointer(8)"},
		{"to double pointer", emitContext{}, cast(ast.BitCast, ptr(doubleT), p), "p.asDoublePointer()"},
		{"to function pointer", emitContext{}, cast(ast.BitCast, &ast.FunctionPointerType{Pointee: sig}, p), "p.asFunctionPointer()"},
		{"to object", emitContext{}, cast(ast.BitCast, &ast.ObjectType{}, p), "p"},
		{"function decay", emitContext{}, fn("f", sig), "CFunctionPointer(f)"},
		{"to union", emitContext{}, cast(ast.ToUnion, u, x), "CComposite.local(8).set(x)"},
	})
}

func TestCalls(t *testing.T) {
	x := load(name("x", intT))
	d := load(name("d", doubleT))
	format := load(name("fmt", ptr(charT)))
	add := &ast.FunctionType{Params: []ast.Type{intT, intT}, Result: intT}
	printf := &ast.FunctionType{Params: []ast.Type{ptr(charT)}, Result: intT, Variadic: true}
	logv := &ast.FunctionType{Result: voidT, Variadic: true}
	release := &ast.FunctionType{Params: []ast.Type{&ast.ObjectType{}}, Result: voidT}
	fp := load(name("fp", &ast.FunctionPointerType{Pointee: &ast.FunctionType{Params: []ast.Type{intT}, Result: intT}}))
	ap := cast(ast.ArrayToPointerDecay, ptr(vaListT.Underlying.(*ast.ArrayType).Elem), name("ap", vaListT))
	aq := cast(ast.ArrayToPointerDecay, ptr(vaListT.Underlying.(*ast.ArrayType).Elem), name("aq", vaListT))

	runExprCases(t, []exprCase{
		{"direct", emitContext{}, call(fn("add", add), intT, x, lit(1, intT)), "add(x.copy(), CInt32.fromInt(1).copy())"},
		{"variadic", emitContext{}, call(fn("printf", printf), intT, format, x, d),
			"printf(fmt.copy(), CVarArgs([x.copy(), d.copy()]))"},
		{"variadic without trailing", emitContext{}, call(fn("printf", printf), intT, format),
			"printf(fmt.copy(), CVarArgs([]))"},
		{"only trailing", emitContext{}, call(fn("logv", logv), voidT, x), "logv(CVarArgs([x.copy()]))"},
		{"object argument", emitContext{}, call(fn("release", release), voidT, load(name("o", &ast.ObjectType{}))), "release(o)"},
		{"indirect", emitContext{}, call(fp, intT, x), "Function.apply(fp.function, [x.copy()])"},
		{"va_start", variadicFn, &ast.CallExpr{ExprInfo: info(voidT), Builtin: ast.VaStart,
			Args: []ast.Expr{ap, load(param("n", intT))}}, "CVarArgs.start(ap, __varargs)"},
		{"va_copy", emitContext{}, &ast.CallExpr{ExprInfo: info(voidT), Builtin: ast.VaCopy,
			Args: []ast.Expr{aq, ap}}, "CVarArgs.copy(aq, ap)"},
		{"va_end", emitContext{}, &ast.CallExpr{ExprInfo: info(voidT), Builtin: ast.VaEnd, Args: []ast.Expr{ap}}, "null"},
		{"va_arg", emitContext{}, &ast.VarArgExpr{ExprInfo: info(intT), List: ap}, "(ap.next() as CInt32)"},
	})
}

func TestMessages(t *testing.T) {
	counter := &ast.ObjectType{Class: "Counter"}
	self := &ast.NameRef{ExprInfo: info(counter), Name: "self", Ref: ast.RefSelf}
	a, b := load(param("a", intT)), load(param("b", intT))
	classMethod := emitContext{}.inFunction(&function{name: "alloc", owner: "Counter", classMethod: true})
	instanceMethod := emitContext{}.inFunction(&function{name: "retain", owner: "Counter"})

	runExprCases(t, []exprCase{
		{"instance", emitContext{}, &ast.MessageExpr{
			ExprInfo: info(intT), Receiver: load(name("c", counter)), Selector: "incrementBy:", Args: []ast.Expr{a},
		}, "c.incrementBy(a.copy())"},
		{"class", emitContext{}, &ast.MessageExpr{ExprInfo: info(&ast.ObjectType{}), Class: "Counter", Selector: "new"},
			"Counter.new_()"},
		{"self", emitContext{}, &ast.MessageExpr{
			ExprInfo: info(voidT), Receiver: self, Selector: "setX:y:", Args: []ast.Expr{a, b},
		}, "this.setX_y(a.copy(), b.copy())"},
		{"self in class method", classMethod, &ast.MessageExpr{
			ExprInfo: info(&ast.ObjectType{}), Receiver: self, Selector: "alloc",
		}, "Counter.alloc()"},
		{"self in instance method", instanceMethod, &ast.MessageExpr{
			ExprInfo: info(&ast.ObjectType{}), Receiver: self, Selector: "retain",
		}, "this.retain()"},
	})
}

func TestExprErrors(t *testing.T) {
	x := load(name("x", intT))
	small := &ast.RecordType{Name: "small", Union: true, Fields: []ast.Field{{Name: "c", Type: charT}}}
	vla := &ast.ArrayType{Elem: intT, Variable: true}
	add := &ast.FunctionType{Params: []ast.Type{intT, intT}, Result: intT}

	tests := []struct {
		name     string
		ctx      emitContext
		in       ast.Expr
		category errors.ErrorCategory
		code     string
	}{
		{"pointer to member", emitContext{}, bin(ast.PtrMemD, intT, x, x), errors.CategoryUnsupported, "UNSUPPORTED_CONSTRUCT"},
		{"complex part", emitContext{}, un(ast.Real, intT, x), errors.CategoryUnsupported, "UNSUPPORTED_CONSTRUCT"},
		{"sizeof vla", emitContext{}, &ast.SizeOfExpr{ExprInfo: info(ulongT), Arg: vla}, errors.CategoryUnsupported, "VARIABLE_LENGTH_ARRAY"},
		{"union too small", emitContext{}, cast(ast.ToUnion, small, x), errors.CategoryInvariant, "UNION_TOO_SMALL"},
		{"union coercion to struct", emitContext{}, cast(ast.ToUnion, point, x), errors.CategoryInvariant, "INVARIANT_VIOLATION"},
		{"va_start outside variadic", emitContext{}, &ast.CallExpr{ExprInfo: info(voidT), Builtin: ast.VaStart,
			Args: []ast.Expr{name("ap", vaListT)}}, errors.CategoryInvariant, "INVARIANT_VIOLATION"},
		{"missing argument", emitContext{}, call(fn("add", add), intT, x), errors.CategoryInvariant, "INVARIANT_VIOLATION"},
		{"missing field", emitContext{}, &ast.MemberExpr{ExprInfo: info(intT), Base: name("s", point), Field: "z"},
			errors.CategoryInvariant, "INVARIANT_VIOLATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := emitExpr(t, tt.ctx, tt.in)
			if !assert.Error(t, err) {
				return
			}
			assert.True(t, errors.Is(err, tt.category), "category of ", err)
			assert.Equal(t, errorCode(err), tt.code)
		})
	}
}

func TestErrorsCarryInnermostPosition(t *testing.T) {
	x := load(name("x", intT))
	inner := bin(ast.PtrMemI, intT, x, x)
	inner.Span.Start.Line, inner.Span.Start.Column = 3, 9
	outer := bin(ast.Add, intT, inner, x)
	outer.Span.Start.Line, outer.Span.Start.Column = 3, 1

	_, err := emitExpr(t, emitContext{}, outer)
	var se *errors.StandardError
	if !assert.ErrorAs(t, err, &se) {
		return
	}
	assert.Equal(t, se.Pos.Line, 3)
	assert.Equal(t, se.Pos.Column, 9)
}
