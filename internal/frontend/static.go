// Package frontend loads the resolved syntax tree produced by the C front end
// and answers the queries the generator makes about it: constant values,
// record layouts and the designated marker types.
package frontend

import (
	"fmt"

	"github.com/objc2dart/objc2dart/internal/ast"
	"github.com/objc2dart/objc2dart/internal/errors"
	"github.com/objc2dart/objc2dart/internal/layout"
	"github.com/objc2dart/objc2dart/internal/position"
)

const (
	// DefaultPassThrough names the marker type emitted as a native dynamic value.
	DefaultPassThrough = "__objc2dart__dart_class"
	// DefaultVarArgList names the record behind the platform va_list.
	DefaultVarArgList = "__va_list_tag"
)

// Options selects the marker type names recognised by Static.
type Options struct {
	PassThrough string
	VarArgList  string
}

func (o Options) withDefaults() Options {
	if o.PassThrough == "" {
		o.PassThrough = DefaultPassThrough
	}
	if o.VarArgList == "" {
		o.VarArgList = DefaultVarArgList
	}
	return o
}

// Static serves front-end queries from a decoded dump. It is not safe for
// concurrent use; each unit gets its own instance.
type Static struct {
	opts      Options
	constants map[ast.Expr]int64
	explicit  map[*ast.RecordType]bool
	layouts   map[*ast.RecordType]*layout.StructLayout
	calc      *layout.LayoutCalculator
}

// NewStatic creates an empty service; Load fills it while decoding.
func NewStatic(opts Options) *Static {
	return &Static{
		opts:      opts.withDefaults(),
		constants: make(map[ast.Expr]int64),
		explicit:  make(map[*ast.RecordType]bool),
		layouts:   make(map[*ast.RecordType]*layout.StructLayout),
		calc:      layout.NewLayoutCalculator(),
	}
}

// SetConstant records the front end's evaluation of e.
func (s *Static) SetConstant(e ast.Expr, v int64) {
	s.constants[e] = v
}

// MarkExplicitLayout records that r's field offsets and size came from the
// front end and must be used as they are.
func (s *Static) MarkExplicitLayout(r *ast.RecordType) {
	s.explicit[r] = true
}

// IsPassThrough reports whether t is the designated pass-through marker.
func (s *Static) IsPassThrough(t ast.Type) bool {
	switch t := t.(type) {
	case *ast.RecordType:
		return t.Name == s.opts.PassThrough
	case *ast.AliasType:
		return t.Name == s.opts.PassThrough
	}
	return false
}

// IsVarArgList reports whether t is the platform va_list element record.
func (s *Static) IsVarArgList(t ast.Type) bool {
	r, ok := ast.Unalias(t).(*ast.RecordType)
	return ok && r.Name == s.opts.VarArgList
}

// LayoutOf returns the layout of r, computing it from natural alignment when
// the dump did not carry one.
func (s *Static) LayoutOf(r *ast.RecordType) (*layout.StructLayout, error) {
	if l, ok := s.layouts[r]; ok {
		return l, nil
	}

	var (
		l   *layout.StructLayout
		err error
	)
	if s.explicit[r] {
		l, err = s.reportedLayout(r)
	} else {
		l, err = s.computedLayout(r)
	}
	if err != nil {
		return nil, err
	}
	s.layouts[r] = l
	return l, nil
}

func (s *Static) reportedLayout(r *ast.RecordType) (*layout.StructLayout, error) {
	l := &layout.StructLayout{
		Name:      r.Name,
		Union:     r.Union,
		TotalSize: r.Size,
		Alignment: r.Align,
	}
	for _, f := range r.Fields {
		size, align, err := s.sizeAlign(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", r.Name, f.Name, err)
		}
		l.Fields = append(l.Fields, layout.FieldInfo{
			Name:      f.Name,
			Type:      f.Type.String(),
			Offset:    f.Offset,
			Size:      size,
			Alignment: align,
		})
	}
	return l, nil
}

func (s *Static) computedLayout(r *ast.RecordType) (*layout.StructLayout, error) {
	fields := make([]layout.FieldInfo, 0, len(r.Fields))
	for _, f := range r.Fields {
		size, align, err := s.sizeAlign(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", r.Name, f.Name, err)
		}
		fields = append(fields, layout.FieldInfo{
			Name:      f.Name,
			Type:      f.Type.String(),
			Size:      size,
			Alignment: align,
		})
	}
	if r.Union {
		return s.calc.CalculateUnionLayout(r.Name, fields)
	}
	return s.calc.CalculateStructLayout(r.Name, fields)
}

// sizeAlign returns the size and natural alignment of t.
func (s *Static) sizeAlign(t ast.Type) (int64, int64, error) {
	switch t := t.(type) {
	case *ast.ScalarType:
		size := int64(t.Bits / 8)
		if size == 0 {
			return 0, 0, errors.Invariant(position.Position{}, "scalar %s has width %d", t.Kind, t.Bits)
		}
		return size, size, nil
	case *ast.PointerType, *ast.FunctionPointerType, *ast.ObjectType:
		return s.calc.TargetPointerSize, s.calc.TargetPointerSize, nil
	case *ast.ArrayType:
		if t.Variable {
			return 0, 0, errors.VariableLengthArray(position.Position{})
		}
		size, align, err := s.sizeAlign(t.Elem)
		if err != nil {
			return 0, 0, err
		}
		if !t.HasLen {
			// Flexible array member
			return 0, align, nil
		}
		al, err := s.calc.CalculateArrayLayout(t.Elem.String(), size, align, t.Len)
		if err != nil {
			return 0, 0, errors.Invariant(position.Position{}, "%v", err)
		}
		return al.TotalSize, al.ElementAlign, nil
	case *ast.RecordType:
		l, err := s.LayoutOf(t)
		if err != nil {
			return 0, 0, err
		}
		return l.TotalSize, l.Alignment, nil
	case *ast.AliasType:
		return s.sizeAlign(t.Underlying)
	default:
		return 0, 0, errors.Unsupported(position.Position{}, fmt.Sprintf("storage of type %v", t))
	}
}
