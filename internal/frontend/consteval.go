package frontend

import (
	"github.com/objc2dart/objc2dart/internal/ast"
	"github.com/objc2dart/objc2dart/internal/types"
)

// EvaluateConstantInt returns the value of e when it is an integer constant
// expression. Values recorded by the front end take precedence; otherwise the
// usual integer constant expressions (literals, sizeof, integral casts and
// arithmetic over constants) are folded here.
func (s *Static) EvaluateConstantInt(e ast.Expr) (int64, bool) {
	if e == nil || !ast.IsInteger(e.ExprType()) {
		return 0, false
	}
	if v, ok := s.constants[e]; ok {
		return v, true
	}
	v, ok := s.fold(e)
	if !ok {
		return 0, false
	}
	return fit(v, e.ExprType()), true
}

func (s *Static) fold(e ast.Expr) (int64, bool) {
	switch e := e.(type) {
	case *ast.IntLiteral:
		return e.Value, true
	case *ast.SizeOfExpr:
		size, _, err := s.sizeAlign(e.Arg)
		return size, err == nil
	case *ast.CastExpr:
		switch e.Kind {
		case ast.IntegralCast, ast.NoOp:
			return s.EvaluateConstantInt(e.Operand)
		case ast.IntegralToBoolean:
			v, ok := s.EvaluateConstantInt(e.Operand)
			return boolInt(v != 0), ok
		}
	case *ast.UnaryExpr:
		v, ok := s.EvaluateConstantInt(e.Operand)
		if !ok {
			return 0, false
		}
		switch e.Op {
		case ast.Plus:
			return v, true
		case ast.Minus:
			return -v, true
		case ast.Not:
			return ^v, true
		case ast.LNot:
			return boolInt(v == 0), true
		}
	case *ast.BinaryExpr:
		return s.foldBinary(e)
	case *ast.ConditionalExpr:
		c, ok := s.EvaluateConstantInt(e.Cond)
		if !ok {
			return 0, false
		}
		if c != 0 {
			return s.EvaluateConstantInt(e.Then)
		}
		return s.EvaluateConstantInt(e.Else)
	}
	return 0, false
}

func (s *Static) foldBinary(e *ast.BinaryExpr) (int64, bool) {
	if e.Op.IsCompoundAssignment() || e.Op == ast.Assign || e.Op == ast.Comma {
		return 0, false
	}
	l, ok := s.EvaluateConstantInt(e.LHS)
	if !ok {
		return 0, false
	}
	switch e.Op {
	case ast.LAnd:
		if l == 0 {
			return 0, true
		}
		r, ok := s.EvaluateConstantInt(e.RHS)
		return boolInt(r != 0), ok
	case ast.LOr:
		if l != 0 {
			return 1, true
		}
		r, ok := s.EvaluateConstantInt(e.RHS)
		return boolInt(r != 0), ok
	}
	r, ok := s.EvaluateConstantInt(e.RHS)
	if !ok {
		return 0, false
	}

	unsigned := !signed(e.LHS.ExprType())
	switch e.Op {
	case ast.Add:
		return l + r, true
	case ast.Sub:
		return l - r, true
	case ast.Mul:
		return l * r, true
	case ast.Div, ast.Rem:
		if r == 0 {
			return 0, false
		}
		if unsigned {
			if e.Op == ast.Div {
				return int64(uint64(l) / uint64(r)), true
			}
			return int64(uint64(l) % uint64(r)), true
		}
		if e.Op == ast.Div {
			return l / r, true
		}
		return l % r, true
	case ast.Shl:
		if r < 0 || r > 63 {
			return 0, false
		}
		return l << uint(r), true
	case ast.Shr:
		if r < 0 || r > 63 {
			return 0, false
		}
		if unsigned {
			return int64(uint64(l) >> uint(r)), true
		}
		return l >> uint(r), true
	case ast.And:
		return l & r, true
	case ast.Or:
		return l | r, true
	case ast.Xor:
		return l ^ r, true
	case ast.LT:
		if unsigned {
			return boolInt(uint64(l) < uint64(r)), true
		}
		return boolInt(l < r), true
	case ast.GT:
		if unsigned {
			return boolInt(uint64(l) > uint64(r)), true
		}
		return boolInt(l > r), true
	case ast.LE:
		if unsigned {
			return boolInt(uint64(l) <= uint64(r)), true
		}
		return boolInt(l <= r), true
	case ast.GE:
		if unsigned {
			return boolInt(uint64(l) >= uint64(r)), true
		}
		return boolInt(l >= r), true
	case ast.EQ:
		return boolInt(l == r), true
	case ast.NE:
		return boolInt(l != r), true
	}
	return 0, false
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func signed(t ast.Type) bool {
	s, ok := ast.Unalias(t).(*ast.ScalarType)
	return ok && s.Signed
}

// fit wraps v into the range of the integer type t.
func fit(v int64, t ast.Type) int64 {
	s, ok := ast.Unalias(t).(*ast.ScalarType)
	if !ok {
		return v
	}
	if s.Kind == ast.Bool {
		return boolInt(v != 0)
	}
	return types.Truncate(v, s.Bits, s.Signed)
}
