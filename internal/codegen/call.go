package codegen

import (
	"github.com/objc2dart/objc2dart/internal/ast"
	"github.com/objc2dart/objc2dart/internal/errors"
	"github.com/objc2dart/objc2dart/internal/runtimelib"
)

func (g *emitter) call(ctx emitContext, e *ast.CallExpr) error {
	switch e.Builtin {
	case ast.VaStart:
		if ctx.fn == nil || !ctx.fn.variadic {
			return errors.Invariant(e.Span.Start, "va_start outside a variadic function")
		}
		if len(e.Args) < 1 {
			return errors.Invariant(e.Span.Start, "va_start without a list argument")
		}
		g.w.printf("%s.start(", runtimelib.VarArgs)
		if err := g.expr(ctx, vaList(e.Args[0])); err != nil {
			return err
		}
		g.w.printf(", %s)", varArgsParam)
		return nil
	case ast.VaCopy:
		if len(e.Args) != 2 {
			return errors.Invariant(e.Span.Start, "va_copy takes two lists, got %d", len(e.Args))
		}
		g.w.printf("%s.copy(", runtimelib.VarArgs)
		if err := g.expr(ctx, vaList(e.Args[0])); err != nil {
			return err
		}
		g.w.print(", ")
		if err := g.expr(ctx, vaList(e.Args[1])); err != nil {
			return err
		}
		g.w.print(")")
		return nil
	case ast.VaEnd:
		// Lists need no teardown; as a statement the call is dropped.
		g.w.print("null")
		return nil
	}

	fixed, variadic, err := g.signature(e)
	if err != nil {
		return err
	}

	callee, direct := ast.DirectCallee(e.Callee)
	if direct {
		g.w.printf("%s(", ident(callee.Name))
	} else {
		g.w.print("Function.apply(")
		if err := g.receiver(ctx, e.Callee); err != nil {
			return err
		}
		g.w.print(".function, [")
	}
	if err := g.arguments(ctx, e.Args, fixed, variadic); err != nil {
		return err
	}
	if direct {
		g.w.print(")")
	} else {
		g.w.print("])")
	}
	return nil
}

// signature returns the number of fixed parameters of the callee and
// whether it takes trailing arguments.
func (g *emitter) signature(e *ast.CallExpr) (int, bool, error) {
	fn, ok := ast.FunctionOf(e.Callee.ExprType())
	if !ok {
		if name, direct := ast.DirectCallee(e.Callee); direct {
			fn, ok = ast.FunctionOf(name.Type)
		}
	}
	if !ok {
		if e.Variadic {
			return 0, false, errors.Invariant(e.Span.Start, "variadic call through %v has no prototype", e.Callee.ExprType())
		}
		return len(e.Args), false, nil
	}
	variadic := fn.Variadic || e.Variadic
	if len(e.Args) < len(fn.Params) {
		return 0, false, errors.Invariant(e.Span.Start, "call passes %d arguments to %d parameters", len(e.Args), len(fn.Params))
	}
	if !variadic && len(e.Args) != len(fn.Params) {
		return 0, false, errors.Invariant(e.Span.Start, "call passes %d arguments to %d parameters", len(e.Args), len(fn.Params))
	}
	return len(fn.Params), variadic, nil
}

// arguments writes the copied fixed arguments and, for variadic callees, the
// trailing list. The list is written even when it is empty.
func (g *emitter) arguments(ctx emitContext, args []ast.Expr, fixed int, variadic bool) error {
	for i := 0; i < fixed; i++ {
		if i > 0 {
			g.w.print(", ")
		}
		if err := g.copied(ctx, args[i]); err != nil {
			return err
		}
	}
	if !variadic {
		return nil
	}
	if fixed > 0 {
		g.w.print(", ")
	}
	g.w.printf("%s([", runtimelib.VarArgs)
	for i, arg := range args[fixed:] {
		if i > 0 {
			g.w.print(", ")
		}
		if err := g.copied(ctx, arg); err != nil {
			return err
		}
	}
	g.w.print("])")
	return nil
}

// isVaEnd reports whether e is a bare va_end call, which emits nothing.
func isVaEnd(e ast.Expr) bool {
	for {
		c, ok := e.(*ast.CastExpr)
		if !ok || c.Kind != ast.ToVoid {
			break
		}
		e = c.Operand
	}
	call, ok := e.(*ast.CallExpr)
	return ok && call.Builtin == ast.VaEnd
}

// vaList strips the decay of a va_list argument. The runtime list object is
// passed unconverted.
func vaList(e ast.Expr) ast.Expr {
	for {
		c, ok := e.(*ast.CastExpr)
		if !ok {
			return e
		}
		switch c.Kind {
		case ast.ArrayToPointerDecay, ast.LValueToRValue, ast.NoOp:
			e = c.Operand
		default:
			return e
		}
	}
}
