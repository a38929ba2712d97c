// Package errors provides categorized error values for objc2dart.
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"

	"github.com/objc2dart/objc2dart/internal/position"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryUnsupported ErrorCategory = "UNSUPPORTED"
	CategoryInvariant   ErrorCategory = "INVARIANT"
	CategoryDecode      ErrorCategory = "DECODE"
	CategoryConfig      ErrorCategory = "CONFIG"
	CategoryIO          ErrorCategory = "IO"
)

// StandardError provides a consistent error format
type StandardError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Pos      position.Position
	Context  map[string]interface{}
	Caller   string
	Err      error
}

// Error implements the error interface
func (e *StandardError) Error() string {
	msg := fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
	if e.Pos.IsValid() {
		msg = e.Pos.String() + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *StandardError) Unwrap() error { return e.Err }

// NewStandardError creates a new standardized error
func NewStandardError(category ErrorCategory, code, message string, context map[string]interface{}) *StandardError {
	return newError(2, category, code, message, context)
}

func newError(skip int, category ErrorCategory, code, message string, context map[string]interface{}) *StandardError {
	pc, _, _, ok := runtime.Caller(skip)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
	}
}

// At attaches a source position and returns e.
func (e *StandardError) At(pos position.Position) *StandardError {
	e.Pos = pos
	return e
}

// Locate attaches pos to the first StandardError in err's chain unless that
// error already carries a valid position.
func Locate(err error, pos position.Position) error {
	var se *StandardError
	if pos.IsValid() && stderrors.As(err, &se) && !se.Pos.IsValid() {
		se.Pos = pos
	}
	return err
}

// CategoryOf reports the category of the first StandardError in err's chain.
func CategoryOf(err error) (ErrorCategory, bool) {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Category, true
	}
	return "", false
}

// Is reports whether err carries the given category.
func Is(err error, category ErrorCategory) bool {
	c, ok := CategoryOf(err)
	return ok && c == category
}

// Common error constructors

// Unsupported reports a construct the generator does not handle.
func Unsupported(pos position.Position, construct string) *StandardError {
	return newError(2, CategoryUnsupported, "UNSUPPORTED_CONSTRUCT",
		fmt.Sprintf("unsupported construct: %s", construct),
		map[string]interface{}{"construct": construct}).At(pos)
}

// VariableLengthArray reports sizing or mapping of a VLA.
func VariableLengthArray(pos position.Position) *StandardError {
	return newError(2, CategoryUnsupported, "VARIABLE_LENGTH_ARRAY",
		"variable-length arrays are not supported", nil).At(pos)
}

// Invariant reports front-end data the generator was promised never to see.
func Invariant(pos position.Position, format string, args ...interface{}) *StandardError {
	return newError(2, CategoryInvariant, "INVARIANT_VIOLATION",
		fmt.Sprintf(format, args...), nil).At(pos)
}

// NonConstantCaseLabel reports a switch case label without a constant value.
func NonConstantCaseLabel(pos position.Position) *StandardError {
	return newError(2, CategoryInvariant, "NON_CONSTANT_CASE",
		"switch case label is not an integer constant", nil).At(pos)
}

// UnionTooSmall reports a union coercion whose destination cannot hold the source.
func UnionTooSmall(pos position.Position, dst, src int64) *StandardError {
	return newError(2, CategoryInvariant, "UNION_TOO_SMALL",
		fmt.Sprintf("union coercion destination (%d bytes) is smaller than source (%d bytes)", dst, src),
		map[string]interface{}{"destination": dst, "source": src}).At(pos)
}

// Decode reports a malformed front-end dump.
func Decode(path string, format string, args ...interface{}) *StandardError {
	return newError(2, CategoryDecode, "MALFORMED_DUMP",
		fmt.Sprintf(format, args...),
		map[string]interface{}{"path": path})
}

// Config reports an invalid configuration value.
func Config(field, message string) *StandardError {
	return newError(2, CategoryConfig, "INVALID_CONFIG",
		fmt.Sprintf("%s: %s", field, message),
		map[string]interface{}{"field": field})
}

// IO wraps a filesystem failure.
func IO(op, path string, err error) *StandardError {
	e := newError(2, CategoryIO, "IO_FAILURE",
		fmt.Sprintf("%s %s", op, path),
		map[string]interface{}{"op": op, "path": path})
	e.Err = err
	return e
}
