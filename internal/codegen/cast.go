package codegen

import (
	"fmt"
	"strings"

	"github.com/objc2dart/objc2dart/internal/ast"
	"github.com/objc2dart/objc2dart/internal/errors"
	"github.com/objc2dart/objc2dart/internal/runtimelib"
)

// cast dispatches on the front end's cast classification. Implicit and
// explicit casts are handled identically.
func (g *emitter) cast(ctx emitContext, e *ast.CastExpr) error {
	switch e.Kind {
	case ast.LValueToRValue, ast.NoOp, ast.ToVoid:
		return g.expr(ctx, e.Operand)

	case ast.FunctionToPointerDecay:
		g.w.printf("%s(", runtimelib.FunctionPointer)
		if err := g.expr(ctx, e.Operand); err != nil {
			return err
		}
		g.w.print(")")
		return nil

	case ast.IntegralToBoolean, ast.FloatingToBoolean, ast.PointerToBoolean:
		return g.toBoolean(ctx, e)

	case ast.IntegralCast, ast.IntegralToFloating, ast.FloatingToIntegral,
		ast.FloatingCast, ast.PointerToIntegral:
		kind, err := g.types.KindName(e.Type)
		if err != nil {
			return err
		}
		if err := g.receiver(ctx, e.Operand); err != nil {
			return err
		}
		g.w.printf(".%sValue()", kind)
		return nil

	case ast.IntegralToPointer, ast.NullToPointer:
		suffix, err := g.pointerSuffix(e)
		if err != nil {
			return err
		}
		if err := g.receiver(ctx, e.Operand); err != nil {
			return err
		}
		g.w.print(".pointerValue()" + suffix)
		return nil

	case ast.ArrayToPointerDecay:
		suffix, err := g.pointerSuffix(e)
		if err != nil {
			return err
		}
		if lit, ok := ast.StripTransparent(e.Operand).(*ast.StringLiteral); ok {
			// The literal already constructs a pointer to its bytes.
			g.stringLiteral(lit.Bytes)
			g.w.print(suffix)
			return nil
		}
		if err := g.receiver(ctx, e.Operand); err != nil {
			return err
		}
		g.w.print(".addressOf()" + suffix)
		return nil

	case ast.BitCast:
		suffix, err := g.pointerSuffix(e)
		if err != nil {
			return err
		}
		if suffix == "" {
			return g.expr(ctx, e.Operand)
		}
		if err := g.receiver(ctx, e.Operand); err != nil {
			return err
		}
		g.w.print(suffix)
		return nil

	case ast.ToUnion:
		return g.toUnion(ctx, e)

	default:
		return errors.Invariant(e.Span.Start, "unhandled cast kind %s", e.Kind)
	}
}

// toBoolean normalizes a scalar or pointer to 0 or 1.
func (g *emitter) toBoolean(ctx emitContext, e *ast.CastExpr) error {
	name, err := g.types.MapType(e.Type)
	if err != nil {
		return err
	}
	g.w.printf("%s.fromInt(", name)
	if err := g.condition(ctx, e.Operand); err != nil {
		return err
	}
	g.w.print(" ? 1 : 0)")
	return nil
}

// pointerSuffix returns the view conversion that retypes a pointer to the
// cast's destination element type.
func (g *emitter) pointerSuffix(e *ast.CastExpr) (string, error) {
	dst := ast.Unalias(e.Type)
	switch dst.(type) {
	case *ast.ObjectType:
		return "", nil
	case *ast.FunctionPointerType:
		return ".asFunctionPointer()", nil
	case *ast.PointerType:
	default:
		if g.fe.IsPassThrough(e.Type) {
			return "", nil
		}
		return "", errors.Unsupported(e.Span.Start, fmt.Sprintf("%s cast to non-pointer %v", e.Kind, e.Type))
	}

	elem, _ := ast.PointeeOf(dst)
	switch elem := ast.Unalias(elem).(type) {
	case *ast.VoidType:
		return ".asUint8Pointer()", nil
	case *ast.FunctionType:
		return ".asFunctionPointer()", nil
	case *ast.ArrayType, *ast.RecordType:
		size, err := g.types.SizeOf(elem)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(".asCompositePointer(%d)", size), nil
	}
	kind, err := g.types.KindName(elem)
	if err != nil {
		return "", err
	}
	return ".as" + strings.ToUpper(kind[:1]) + kind[1:] + "Pointer()", nil
}

func (g *emitter) toUnion(ctx emitContext, e *ast.CastExpr) error {
	if r, ok := ast.Unalias(e.Type).(*ast.RecordType); !ok || !r.Union {
		return errors.Invariant(e.Span.Start, "union coercion to non-union %v", e.Type)
	}
	dst, err := g.types.SizeOf(e.Type)
	if err != nil {
		return err
	}
	src, err := g.types.SizeOf(e.Operand.ExprType())
	if err != nil {
		return err
	}
	if dst < src {
		return errors.UnionTooSmall(e.Span.Start, dst, src)
	}
	g.w.printf("%s.local(%d).set(", runtimelib.Composite, dst)
	if err := g.expr(ctx, e.Operand); err != nil {
		return err
	}
	g.w.print(")")
	return nil
}
