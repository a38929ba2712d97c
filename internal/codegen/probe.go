package codegen

import (
	"github.com/objc2dart/objc2dart/internal/ast"
	"github.com/objc2dart/objc2dart/internal/errors"
	"github.com/objc2dart/objc2dart/internal/types"
)

// constant asks the front end whether e is an integer constant expression.
func (g *emitter) constant(e ast.Expr) (int64, bool) {
	if e == nil || !ast.IsInteger(e.ExprType()) {
		return 0, false
	}
	return g.fe.EvaluateConstantInt(e)
}

// emitConstant writes a literal construction of v in e's wrapper, truncated
// to the wrapper's width.
func (g *emitter) emitConstant(e ast.Expr, v int64) error {
	st, ok := ast.Unalias(e.ExprType()).(*ast.ScalarType)
	if !ok {
		return errors.Invariant(e.GetSpan().Start, "integer constant of type %v", e.ExprType())
	}
	name, err := types.ScalarWrapper(st)
	if err != nil {
		return err
	}
	if st.Kind == ast.Bool && v != 0 {
		v = 1
	}
	g.w.printf("%s.fromInt(%d)", name, types.Truncate(v, st.Bits, st.Signed))
	return nil
}
