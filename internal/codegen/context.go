package codegen

import (
	"fmt"

	"github.com/objc2dart/objc2dart/internal/ast"
)

// Names the generated code introduces. They use the reserved C prefix so
// they cannot collide with user identifiers.
const (
	varArgsParam = "__varargs"
	tempName     = "__tmp"
	entryInner   = "__main"
)

// function describes the function whose body is being emitted.
type function struct {
	name     string
	params   []*ast.Param
	variadic bool

	owner       string // Objective-C class of a method body
	classMethod bool
}

// self names the receiver of the method being emitted. A class method is
// static in Dart, so its receiver is the class itself.
func (c emitContext) self() string {
	if c.fn != nil && c.fn.classMethod {
		return ident(c.fn.owner)
	}
	return "this"
}

// emitContext is the read-only state threaded down the tree walk. Nested
// constructs derive a new value; nothing is restored after the fact.
type emitContext struct {
	fn          *function // nil at file scope
	switchDepth int       // enclosing switch statements
}

func (c emitContext) inFunction(fn *function) emitContext {
	c.fn = fn
	c.switchDepth = 0
	return c
}

func (c emitContext) inSwitch() emitContext {
	c.switchDepth++
	return c
}

// switchLabel names case k of a switch nested depth levels deep.
func switchLabel(depth, k int) string {
	if depth == 0 {
		return fmt.Sprintf("label%d", k)
	}
	return fmt.Sprintf("label%d_%d", depth, k)
}

// declMode selects how a variable declaration is written.
type declMode int

const (
	declFull    declMode = iota // T x = init
	declNoInit                  // T x, for parameters
	declNoType                  // x = init, for later declarators of a for-init
)
