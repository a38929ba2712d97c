// Package ast defines the resolved C/Objective-C syntax tree consumed by the
// generator. The tree is produced once per translation unit by the front end
// and is never mutated afterwards.
//
// Every node category (Type, Expr, Stmt, Decl) is a closed set: the marker
// methods are unexported, so only the variants declared here exist and
// consumers dispatch over them with type switches.
package ast

import (
	"fmt"
	"strings"
)

// Type is a resolved type descriptor.
type Type interface {
	String() string
	typeNode() // Marker method to close the variant set
}

// ScalarKind enumerates the builtin arithmetic types.
type ScalarKind int

const (
	Bool ScalarKind = iota
	Char
	SChar
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	LongLong
	ULongLong
	Float
	Double
)

var scalarKindNames = [...]string{
	Bool:      "bool",
	Char:      "char",
	SChar:     "schar",
	UChar:     "uchar",
	Short:     "short",
	UShort:    "ushort",
	Int:       "int",
	UInt:      "uint",
	Long:      "long",
	ULong:     "ulong",
	LongLong:  "longlong",
	ULongLong: "ulonglong",
	Float:     "float",
	Double:    "double",
}

func (k ScalarKind) String() string {
	if k >= 0 && int(k) < len(scalarKindNames) {
		return scalarKindNames[k]
	}
	return fmt.Sprintf("scalar(%d)", int(k))
}

// IsFloat reports whether k is a floating-point kind.
func (k ScalarKind) IsFloat() bool { return k == Float || k == Double }

// ParseScalarKind resolves a dump spelling such as "ulonglong".
func ParseScalarKind(s string) (ScalarKind, bool) {
	for k, name := range scalarKindNames {
		if name == s {
			return ScalarKind(k), true
		}
	}
	return 0, false
}

// CanonicalScalar returns the LP64 width and signedness of kind.
func CanonicalScalar(kind ScalarKind) (*ScalarType, bool) {
	switch kind {
	case Bool, UChar:
		return &ScalarType{Kind: kind, Bits: 8}, true
	case Char, SChar:
		return &ScalarType{Kind: kind, Bits: 8, Signed: true}, true
	case Short:
		return &ScalarType{Kind: kind, Bits: 16, Signed: true}, true
	case UShort:
		return &ScalarType{Kind: kind, Bits: 16}, true
	case Int:
		return &ScalarType{Kind: kind, Bits: 32, Signed: true}, true
	case UInt:
		return &ScalarType{Kind: kind, Bits: 32}, true
	case Long, LongLong:
		return &ScalarType{Kind: kind, Bits: 64, Signed: true}, true
	case ULong, ULongLong:
		return &ScalarType{Kind: kind, Bits: 64}, true
	case Float:
		return &ScalarType{Kind: kind, Bits: 32, Signed: true}, true
	case Double:
		return &ScalarType{Kind: kind, Bits: 64, Signed: true}, true
	}
	return nil, false
}

// VoidType is the C void type.
type VoidType struct{}

// ScalarType is an arithmetic type after the front end's promotions.
type ScalarType struct {
	Kind   ScalarKind
	Bits   int  // Width in bits
	Signed bool // Signedness; ignored for floating kinds
}

// PointerType points at a non-function type.
type PointerType struct {
	Pointee Type
}

// FunctionPointerType points at a function type.
type FunctionPointerType struct {
	Pointee *FunctionType
}

// ArrayType is a fixed, incomplete or variable-length array.
type ArrayType struct {
	Elem     Type
	Len      int64
	HasLen   bool // False for incomplete arrays such as int[]
	Variable bool // Variable-length array
}

// Field is one member of a record with its byte offset.
type Field struct {
	Name   string
	Type   Type
	Offset int64
}

// RecordType is a struct or union together with its layout.
type RecordType struct {
	Name   string
	Union  bool
	Fields []Field
	Size   int64
	Align  int64
}

// Field looks up a member by name.
func (r *RecordType) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FunctionType is the type of a function designator.
type FunctionType struct {
	Params   []Type
	Result   Type
	Variadic bool
}

// AliasType is a typedef.
type AliasType struct {
	Name       string
	Underlying Type
}

// ObjectType is an Objective-C object pointer. An empty Class is id.
type ObjectType struct {
	Class string
}

func (*VoidType) typeNode()            {}
func (*ScalarType) typeNode()          {}
func (*PointerType) typeNode()         {}
func (*FunctionPointerType) typeNode() {}
func (*ArrayType) typeNode()           {}
func (*RecordType) typeNode()          {}
func (*FunctionType) typeNode()        {}
func (*AliasType) typeNode()           {}
func (*ObjectType) typeNode()          {}

func (*VoidType) String() string { return "void" }

func (t *ScalarType) String() string { return t.Kind.String() }

func (t *PointerType) String() string { return t.Pointee.String() + " *" }

func (t *FunctionPointerType) String() string {
	return fmt.Sprintf("%s (*)(%s)", t.Pointee.Result, paramList(t.Pointee))
}

func (t *ArrayType) String() string {
	switch {
	case t.Variable:
		return t.Elem.String() + "[*]"
	case !t.HasLen:
		return t.Elem.String() + "[]"
	default:
		return fmt.Sprintf("%s[%d]", t.Elem, t.Len)
	}
}

func (t *RecordType) String() string {
	if t.Union {
		return "union " + t.Name
	}
	return "struct " + t.Name
}

func (t *FunctionType) String() string {
	return fmt.Sprintf("%s (%s)", t.Result, paramList(t))
}

func (t *AliasType) String() string { return t.Name }

func (t *ObjectType) String() string {
	if t.Class == "" {
		return "id"
	}
	return t.Class + " *"
}

func paramList(f *FunctionType) string {
	parts := make([]string, 0, len(f.Params)+1)
	for _, p := range f.Params {
		parts = append(parts, p.String())
	}
	if f.Variadic {
		parts = append(parts, "...")
	}
	return strings.Join(parts, ", ")
}

// Unalias strips typedefs until a non-alias type is reached.
func Unalias(t Type) Type {
	for {
		a, ok := t.(*AliasType)
		if !ok {
			return t
		}
		t = a.Underlying
	}
}

// IsInteger reports whether t (after aliases) is an integer scalar.
func IsInteger(t Type) bool {
	s, ok := Unalias(t).(*ScalarType)
	return ok && !s.Kind.IsFloat()
}

// PointeeOf returns the element type addressed by a pointer-like type.
func PointeeOf(t Type) (Type, bool) {
	switch p := Unalias(t).(type) {
	case *PointerType:
		return p.Pointee, true
	case *FunctionPointerType:
		return p.Pointee, true
	case *ArrayType:
		return p.Elem, true
	}
	return nil, false
}

// FunctionOf returns the function type designated or pointed to by t.
func FunctionOf(t Type) (*FunctionType, bool) {
	switch f := Unalias(t).(type) {
	case *FunctionType:
		return f, true
	case *FunctionPointerType:
		return f.Pointee, true
	case *PointerType:
		fn, ok := Unalias(f.Pointee).(*FunctionType)
		return fn, ok
	}
	return nil, false
}
