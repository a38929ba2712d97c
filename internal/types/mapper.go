// Package types maps resolved C types onto the runtime's value-wrapper classes
// and answers size and kind queries for them.
package types

import (
	"fmt"

	"github.com/objc2dart/objc2dart/internal/ast"
	"github.com/objc2dart/objc2dart/internal/errors"
	"github.com/objc2dart/objc2dart/internal/layout"
	"github.com/objc2dart/objc2dart/internal/position"
	"github.com/objc2dart/objc2dart/internal/runtimelib"
)

// LayoutSource is the part of the front end the mapper consults.
type LayoutSource interface {
	LayoutOf(r *ast.RecordType) (*layout.StructLayout, error)
	IsPassThrough(t ast.Type) bool
	IsVarArgList(t ast.Type) bool
}

// Mapper implements the type mapping. It holds no mutable state.
type Mapper struct {
	fe LayoutSource
}

// NewMapper creates a mapper backed by the given front-end services.
func NewMapper(fe LayoutSource) *Mapper {
	return &Mapper{fe: fe}
}

type scalarKey struct {
	signed bool
	bits   int
}

var integerWrappers = map[scalarKey]string{
	{true, 8}:   runtimelib.Int8,
	{false, 8}:  runtimelib.Uint8,
	{true, 16}:  runtimelib.Int16,
	{false, 16}: runtimelib.Uint16,
	{true, 32}:  runtimelib.Int32,
	{false, 32}: runtimelib.Uint32,
	{true, 64}:  runtimelib.Int64,
	{false, 64}: runtimelib.Uint64,
}

// scalarSizes is the fixed byte size of each scalar kind.
var scalarSizes = map[ast.ScalarKind]int64{
	ast.Bool:      1,
	ast.Char:      1,
	ast.SChar:     1,
	ast.UChar:     1,
	ast.Short:     2,
	ast.UShort:    2,
	ast.Int:       4,
	ast.UInt:      4,
	ast.Float:     4,
	ast.Long:      8,
	ast.ULong:     8,
	ast.LongLong:  8,
	ast.ULongLong: 8,
	ast.Double:    8,
}

// PointerSize is the byte size of every pointer-like value.
const PointerSize = 8

// MapType returns the Dart type name used for values of t.
func (m *Mapper) MapType(t ast.Type) (string, error) {
	switch t := t.(type) {
	case *ast.VoidType:
		return runtimelib.Void, nil
	case *ast.ScalarType:
		return ScalarWrapper(t)
	case *ast.PointerType:
		if _, ok := ast.Unalias(t.Pointee).(*ast.FunctionType); ok {
			return runtimelib.FunctionPointer, nil
		}
		return runtimelib.Pointer, nil
	case *ast.FunctionPointerType:
		return runtimelib.FunctionPointer, nil
	case *ast.ArrayType:
		if t.Variable {
			return "", errors.VariableLengthArray(position.Position{})
		}
		if m.fe.IsVarArgList(t.Elem) {
			return runtimelib.VarArgs, nil
		}
		return runtimelib.Pointer, nil
	case *ast.RecordType:
		if m.fe.IsPassThrough(t) {
			return runtimelib.Dynamic, nil
		}
		return runtimelib.Composite, nil
	case *ast.AliasType:
		if m.fe.IsPassThrough(t) || m.fe.IsPassThrough(t.Underlying) {
			return runtimelib.Dynamic, nil
		}
		return m.MapType(t.Underlying)
	case *ast.ObjectType:
		if t.Class == "" {
			return runtimelib.Dynamic, nil
		}
		return t.Class, nil
	case *ast.FunctionType:
		return "", errors.Unsupported(position.Position{}, "function type used as a value type")
	case nil:
		return "", errors.Invariant(position.Position{}, "missing type")
	default:
		return "", errors.Invariant(position.Position{}, "unknown type descriptor %T", t)
	}
}

// ScalarWrapper returns the wrapper class for an arithmetic type.
func ScalarWrapper(t *ast.ScalarType) (string, error) {
	if _, known := scalarSizes[t.Kind]; !known {
		return "", errors.Config("scalar kind", fmt.Sprintf("unrecognized scalar kind %s", t.Kind))
	}
	if t.Kind.IsFloat() {
		switch t.Bits {
		case 32:
			return runtimelib.Float, nil
		case 64:
			return runtimelib.Double, nil
		}
		return "", errors.Config("scalar kind", fmt.Sprintf("unsupported %d-bit floating type", t.Bits))
	}
	name, ok := integerWrappers[scalarKey{t.Signed, t.Bits}]
	if !ok {
		return "", errors.Config("scalar kind", fmt.Sprintf("unsupported %d-bit integer type", t.Bits))
	}
	return name, nil
}

// KindName returns the lower-camel stem used by the runtime's typed accessors,
// e.g. "int32" in int32AtOffset or int32Value.
func (m *Mapper) KindName(t ast.Type) (string, error) {
	switch t := t.(type) {
	case *ast.ScalarType:
		if _, err := ScalarWrapper(t); err != nil {
			return "", err
		}
		if t.Kind.IsFloat() {
			if t.Bits == 32 {
				return "float", nil
			}
			return "double", nil
		}
		if t.Signed {
			return fmt.Sprintf("int%d", t.Bits), nil
		}
		return fmt.Sprintf("uint%d", t.Bits), nil
	case *ast.PointerType:
		if _, ok := ast.Unalias(t.Pointee).(*ast.FunctionType); ok {
			return "functionPointer", nil
		}
		return "pointer", nil
	case *ast.FunctionPointerType:
		return "functionPointer", nil
	case *ast.ObjectType:
		return "pointer", nil
	case *ast.ArrayType:
		if t.Variable {
			return "", errors.VariableLengthArray(position.Position{})
		}
		return "composite", nil
	case *ast.RecordType:
		if m.fe.IsPassThrough(t) {
			return "", errors.Unsupported(position.Position{}, "pass-through type stored in memory")
		}
		return "composite", nil
	case *ast.AliasType:
		if m.fe.IsPassThrough(t) || m.fe.IsPassThrough(t.Underlying) {
			return "", errors.Unsupported(position.Position{}, "pass-through type stored in memory")
		}
		return m.KindName(t.Underlying)
	case *ast.VoidType, *ast.FunctionType:
		return "", errors.Unsupported(position.Position{}, fmt.Sprintf("no storage kind for %s", t))
	case nil:
		return "", errors.Invariant(position.Position{}, "missing type")
	default:
		return "", errors.Invariant(position.Position{}, "unknown type descriptor %T", t)
	}
}

// IsComposite reports whether values of t are materialized as composite views.
func IsComposite(t ast.Type) bool {
	switch ast.Unalias(t).(type) {
	case *ast.RecordType, *ast.ArrayType:
		return true
	}
	return false
}

// SizeOf returns the byte size of t.
func (m *Mapper) SizeOf(t ast.Type) (int64, error) {
	switch t := t.(type) {
	case *ast.ScalarType:
		size, ok := scalarSizes[t.Kind]
		if !ok {
			return 0, errors.Config("scalar kind", fmt.Sprintf("unrecognized scalar kind %s", t.Kind))
		}
		return size, nil
	case *ast.PointerType, *ast.FunctionPointerType, *ast.ObjectType:
		return PointerSize, nil
	case *ast.ArrayType:
		if t.Variable {
			return 0, errors.VariableLengthArray(position.Position{})
		}
		if !t.HasLen {
			return 0, errors.Unsupported(position.Position{}, "size of an incomplete array")
		}
		elem, err := m.SizeOf(t.Elem)
		if err != nil {
			return 0, err
		}
		return elem * t.Len, nil
	case *ast.RecordType:
		l, err := m.fe.LayoutOf(t)
		if err != nil {
			return 0, err
		}
		return l.TotalSize, nil
	case *ast.AliasType:
		return m.SizeOf(t.Underlying)
	case *ast.VoidType:
		// GNU C treats void as one byte wide
		return 1, nil
	case *ast.FunctionType:
		return 0, errors.Unsupported(position.Position{}, "size of a function type")
	case nil:
		return 0, errors.Invariant(position.Position{}, "missing type")
	default:
		return 0, errors.Invariant(position.Position{}, "unknown type descriptor %T", t)
	}
}

// Truncate reduces v to the given width, sign- or zero-extending the result
// back to 64 bits the way the runtime interprets literal values.
func Truncate(v int64, bits int, signed bool) int64 {
	if bits <= 0 || bits >= 64 {
		return v
	}
	shift := uint(64 - bits)
	if signed {
		return (v << shift) >> shift
	}
	return int64(uint64(v) << shift >> shift)
}
