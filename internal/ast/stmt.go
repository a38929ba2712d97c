package ast

import (
	"fmt"
	"strings"

	"github.com/objc2dart/objc2dart/internal/position"
)

// Stmt is a statement.
type Stmt interface {
	Node
	stmtNode() // Marker method to close the variant set
}

// StmtInfo carries the data shared by every statement node.
type StmtInfo struct {
	Span position.Span
}

func (s *StmtInfo) GetSpan() position.Span { return s.Span }

// CompoundStmt is a braced block.
type CompoundStmt struct {
	StmtInfo
	Body []Stmt
}

// IfStmt is if/else. Else may be nil.
type IfStmt struct {
	StmtInfo
	Cond Expr
	Then Stmt
	Else Stmt
}

// WhileStmt is a while loop.
type WhileStmt struct {
	StmtInfo
	Cond Expr
	Body Stmt
}

// DoStmt is a do/while loop.
type DoStmt struct {
	StmtInfo
	Body Stmt
	Cond Expr
}

// ForStmt is a for loop; any of Init, Cond and Inc may be nil.
type ForStmt struct {
	StmtInfo
	Init Stmt // *DeclStmt or *ExprStmt
	Cond Expr
	Inc  Expr
	Body Stmt
}

// SwitchCase is one arm of a switch in source order.
type SwitchCase struct {
	Span    position.Span
	Label   Expr // nil for the default arm
	Default bool
	Body    []Stmt
}

// SwitchStmt is a switch whose cases are kept in source order.
type SwitchStmt struct {
	StmtInfo
	Cond  Expr
	Cases []*SwitchCase
}

// BreakStmt is break.
type BreakStmt struct{ StmtInfo }

// ContinueStmt is continue.
type ContinueStmt struct{ StmtInfo }

// ReturnStmt is return with an optional value.
type ReturnStmt struct {
	StmtInfo
	Value Expr
}

// DeclStmt declares one or more local variables.
type DeclStmt struct {
	StmtInfo
	Vars []*VarDecl
}

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
	StmtInfo
	X Expr
}

// NullStmt is the empty statement.
type NullStmt struct{ StmtInfo }

func (*CompoundStmt) stmtNode() {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*DoStmt) stmtNode()       {}
func (*ForStmt) stmtNode()      {}
func (*SwitchStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*ReturnStmt) stmtNode()   {}
func (*DeclStmt) stmtNode()     {}
func (*ExprStmt) stmtNode()     {}
func (*NullStmt) stmtNode()     {}

func (s *CompoundStmt) String() string { return fmt.Sprintf("{ %d statements }", len(s.Body)) }
func (s *IfStmt) String() string       { return fmt.Sprintf("if (%s)", s.Cond) }
func (s *WhileStmt) String() string    { return fmt.Sprintf("while (%s)", s.Cond) }
func (s *DoStmt) String() string       { return fmt.Sprintf("do ... while (%s)", s.Cond) }
func (s *ForStmt) String() string      { return "for (...)" }
func (s *SwitchStmt) String() string   { return fmt.Sprintf("switch (%s)", s.Cond) }
func (s *BreakStmt) String() string    { return "break" }
func (s *ContinueStmt) String() string { return "continue" }
func (s *NullStmt) String() string     { return ";" }

func (s *ReturnStmt) String() string {
	if s.Value == nil {
		return "return"
	}
	return "return " + s.Value.String()
}

func (s *DeclStmt) String() string {
	names := make([]string, len(s.Vars))
	for i, v := range s.Vars {
		names[i] = v.Name
	}
	return "declare " + strings.Join(names, ", ")
}

func (s *ExprStmt) String() string { return s.X.String() }

// Decl is a top-level declaration.
type Decl interface {
	Node
	declNode() // Marker method to close the variant set
}

// Param is a named function or method parameter.
type Param struct {
	Span position.Span
	Name string
	Type Type
}

// FuncDecl is a function definition or prototype. Body is nil for prototypes.
type FuncDecl struct {
	Span     position.Span
	Name     string
	Params   []*Param
	Result   Type
	Body     *CompoundStmt
	Variadic bool
	Entry    bool // The program entry point (main)
}

// MethodDecl is an Objective-C method implementation.
type MethodDecl struct {
	Span        position.Span
	Owner       string // Implementing class
	Selector    string
	Params      []*Param
	Result      Type
	Body        *CompoundStmt
	ClassMethod bool
}

// VarDecl is a variable; it appears at file scope and inside DeclStmt.
type VarDecl struct {
	Span position.Span
	Name string
	Type Type
	Init Expr
}

func (d *FuncDecl) GetSpan() position.Span   { return d.Span }
func (d *MethodDecl) GetSpan() position.Span { return d.Span }
func (d *VarDecl) GetSpan() position.Span    { return d.Span }

func (*FuncDecl) declNode()   {}
func (*MethodDecl) declNode() {}
func (*VarDecl) declNode()    {}

func (d *FuncDecl) String() string {
	return fmt.Sprintf("%s %s(%s)", d.Result, d.Name, paramNames(d.Params, d.Variadic))
}

func (d *MethodDecl) String() string {
	sign := "-"
	if d.ClassMethod {
		sign = "+"
	}
	return fmt.Sprintf("%s[%s %s]", sign, d.Owner, d.Selector)
}

func (d *VarDecl) String() string {
	return fmt.Sprintf("%s %s", d.Type, d.Name)
}

func paramNames(params []*Param, variadic bool) string {
	parts := make([]string, 0, len(params)+1)
	for _, p := range params {
		parts = append(parts, fmt.Sprintf("%s %s", p.Type, p.Name))
	}
	if variadic {
		parts = append(parts, "...")
	}
	return strings.Join(parts, ", ")
}

// Unit is one translation unit as handed over by the front end.
type Unit struct {
	Name  string // Unit name, used for the output file
	File  string // Original source path, when known
	Decls []Decl
}
