package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/objc2dart/objc2dart/internal/position"
)

// Node is the base interface for all tree nodes
type Node interface {
	// GetSpan returns the source span covered by this node
	GetSpan() position.Span
	// String returns a C-like rendering used in diagnostics
	String() string
}

// Expr is an expression with its resolved type.
type Expr interface {
	Node
	ExprType() Type
	exprNode() // Marker method to close the variant set
}

// ExprInfo carries the data shared by every expression node.
type ExprInfo struct {
	Span position.Span
	Type Type
}

func (e *ExprInfo) GetSpan() position.Span { return e.Span }
func (e *ExprInfo) ExprType() Type         { return e.Type }

// IntLiteral is an integer or character constant.
type IntLiteral struct {
	ExprInfo
	Value int64
}

// FloatLiteral is a floating-point constant.
type FloatLiteral struct {
	ExprInfo
	Value float64
}

// StringLiteral holds the literal's bytes without the terminator.
type StringLiteral struct {
	ExprInfo
	Bytes []byte
}

// RefKind says what a NameRef resolves to.
type RefKind int

const (
	RefVariable RefKind = iota
	RefParameter
	RefFunction
	RefSelf
)

// NameRef refers to a declared entity.
type NameRef struct {
	ExprInfo
	Name string
	Ref  RefKind
}

// BinaryExpr applies a binary operator, including assignments and comma.
type BinaryExpr struct {
	ExprInfo
	Op  BinaryOp
	LHS Expr
	RHS Expr
}

// UnaryExpr applies a prefix or postfix operator.
type UnaryExpr struct {
	ExprInfo
	Op      UnaryOp
	Operand Expr
}

// CallExpr is a function call. Builtin is set for the va_* intrinsics.
type CallExpr struct {
	ExprInfo
	Callee   Expr
	Args     []Expr
	Variadic bool
	Builtin  Builtin
}

// MemberExpr is base.field or base->field.
type MemberExpr struct {
	ExprInfo
	Base  Expr
	Arrow bool
	Field string
}

// SubscriptExpr is base[index].
type SubscriptExpr struct {
	ExprInfo
	Base  Expr
	Index Expr
}

// CastExpr is an implicit or explicit conversion to the node's type.
type CastExpr struct {
	ExprInfo
	Kind     CastKind
	Operand  Expr
	Explicit bool
}

// SizeOfExpr is sizeof applied to a type (or an expression's type).
type SizeOfExpr struct {
	ExprInfo
	Arg Type
}

// VarArgExpr extracts the next value of the node's type from a va_list.
type VarArgExpr struct {
	ExprInfo
	List Expr
}

// ConditionalExpr is cond ? then : else.
type ConditionalExpr struct {
	ExprInfo
	Cond Expr
	Then Expr
	Else Expr
}

// MessageExpr is an Objective-C message send. Receiver is nil for class
// messages, in which case Class names the receiving class.
type MessageExpr struct {
	ExprInfo
	Receiver Expr
	Class    string
	Selector string
	Args     []Expr
}

func (*IntLiteral) exprNode()      {}
func (*FloatLiteral) exprNode()    {}
func (*StringLiteral) exprNode()   {}
func (*NameRef) exprNode()         {}
func (*BinaryExpr) exprNode()      {}
func (*UnaryExpr) exprNode()       {}
func (*CallExpr) exprNode()        {}
func (*MemberExpr) exprNode()      {}
func (*SubscriptExpr) exprNode()   {}
func (*CastExpr) exprNode()        {}
func (*SizeOfExpr) exprNode()      {}
func (*VarArgExpr) exprNode()      {}
func (*ConditionalExpr) exprNode() {}
func (*MessageExpr) exprNode()     {}

func (e *IntLiteral) String() string   { return strconv.FormatInt(e.Value, 10) }
func (e *FloatLiteral) String() string { return strconv.FormatFloat(e.Value, 'g', -1, 64) }
func (e *StringLiteral) String() string {
	return strconv.Quote(string(e.Bytes))
}
func (e *NameRef) String() string { return e.Name }

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.LHS, e.Op, e.RHS)
}

func (e *UnaryExpr) String() string {
	switch e.Op {
	case PostInc:
		return e.Operand.String() + "++"
	case PostDec:
		return e.Operand.String() + "--"
	}
	return e.Op.String() + e.Operand.String()
}

func (e *CallExpr) String() string {
	return fmt.Sprintf("%s(%s)", e.Callee, joinExprs(e.Args))
}

func (e *MemberExpr) String() string {
	if e.Arrow {
		return e.Base.String() + "->" + e.Field
	}
	return e.Base.String() + "." + e.Field
}

func (e *SubscriptExpr) String() string {
	return fmt.Sprintf("%s[%s]", e.Base, e.Index)
}

func (e *CastExpr) String() string {
	if e.Explicit {
		return fmt.Sprintf("(%s)%s", e.Type, e.Operand)
	}
	return e.Operand.String()
}

func (e *SizeOfExpr) String() string { return fmt.Sprintf("sizeof(%s)", e.Arg) }

func (e *VarArgExpr) String() string {
	return fmt.Sprintf("va_arg(%s, %s)", e.List, e.Type)
}

func (e *ConditionalExpr) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", e.Cond, e.Then, e.Else)
}

func (e *MessageExpr) String() string {
	recv := e.Class
	if e.Receiver != nil {
		recv = e.Receiver.String()
	}
	if len(e.Args) == 0 {
		return fmt.Sprintf("[%s %s]", recv, e.Selector)
	}
	return fmt.Sprintf("[%s %s %s]", recv, e.Selector, joinExprs(e.Args))
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// StripTransparent removes casts that do not change the emitted value.
func StripTransparent(e Expr) Expr {
	for {
		c, ok := e.(*CastExpr)
		if !ok || (c.Kind != LValueToRValue && c.Kind != NoOp) {
			return e
		}
		e = c.Operand
	}
}

// DirectCallee returns the function named by a call's callee, looking
// through function-to-pointer decay.
func DirectCallee(callee Expr) (*NameRef, bool) {
	for {
		switch c := callee.(type) {
		case *CastExpr:
			if c.Kind != FunctionToPointerDecay && c.Kind != NoOp {
				return nil, false
			}
			callee = c.Operand
		case *NameRef:
			return c, c.Ref == RefFunction
		default:
			return nil, false
		}
	}
}
