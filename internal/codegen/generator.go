// Package codegen emits Dart source for a resolved C/Objective-C translation
// unit. Every C value is represented by a wrapper object from the runtime
// library, so operators become method calls, memory accesses become typed
// reads at byte offsets and switch fallthrough becomes labelled continues.
package codegen

import (
	"context"

	"github.com/objc2dart/objc2dart/internal/ast"
	"github.com/objc2dart/objc2dart/internal/errors"
	"github.com/objc2dart/objc2dart/internal/position"
	"github.com/objc2dart/objc2dart/internal/runtimelib"
	"github.com/objc2dart/objc2dart/internal/types"
)

// Header is the first line of every generated file.
const Header = "// Code generated by objc2dart. DO NOT EDIT."

// Frontend is the set of queries the generator makes about a unit.
type Frontend interface {
	types.LayoutSource
	EvaluateConstantInt(e ast.Expr) (int64, bool)
}

// Logger receives progress messages.
type Logger interface {
	Debug(format string, args ...interface{})
}

// Options configures a Generator.
type Options struct {
	RuntimePackage string // Dart package providing the runtime; "this" when empty
	Logger         Logger
}

// Generator turns one unit into Dart source. A Generator serves a single
// unit's front end; use one per unit when translating concurrently.
type Generator struct {
	fe   Frontend
	opts Options
}

// NewGenerator creates a generator backed by fe.
func NewGenerator(fe Frontend, opts Options) *Generator {
	return &Generator{fe: fe, opts: opts}
}

// emitter holds the output of one Generate call.
type emitter struct {
	w     *writer
	fe    Frontend
	types *types.Mapper
}

// Generate emits the preamble and then each top-level declaration. On
// failure no output is returned.
func (g *Generator) Generate(ctx context.Context, unit *ast.Unit) ([]byte, error) {
	if unit == nil {
		return nil, errors.Invariant(position.Position{}, "no unit to generate")
	}
	em := &emitter{w: newWriter(), fe: g.fe, types: types.NewMapper(g.fe)}

	em.w.line(Header)
	for _, uri := range runtimelib.Imports(g.opts.RuntimePackage) {
		em.w.printf("import '%s';", uri)
		em.w.newline()
	}
	em.w.newline()

	for i, it := range planUnit(unit.Decls) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			em.w.newline()
		}
		g.debug("%s: emitting %s", unit.Name, it)
		if err := em.emitItem(emitContext{}, it); err != nil {
			return nil, err
		}
	}
	return em.w.bytes(), nil
}

func (g *Generator) debug(format string, args ...interface{}) {
	if g.opts.Logger != nil {
		g.opts.Logger.Debug(format, args...)
	}
}

// item is one top-level construct in output order.
type item struct {
	fn      *ast.FuncDecl
	global  *ast.VarDecl
	owner   string
	methods []*ast.MethodDecl
}

func (it *item) String() string {
	switch {
	case it.fn != nil:
		return "function " + it.fn.Name
	case it.global != nil:
		return "variable " + it.global.Name
	default:
		return "class " + it.owner
	}
}

// planUnit orders the declarations that produce output. Prototypes and
// method declarations without bodies are dropped; methods are grouped by
// class at the position of the class's first method.
func planUnit(decls []ast.Decl) []*item {
	var items []*item
	classes := make(map[string]*item)
	for _, d := range decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			if d.Body != nil {
				items = append(items, &item{fn: d})
			}
		case *ast.VarDecl:
			items = append(items, &item{global: d})
		case *ast.MethodDecl:
			if d.Body == nil {
				continue
			}
			c, ok := classes[d.Owner]
			if !ok {
				c = &item{owner: d.Owner}
				classes[d.Owner] = c
				items = append(items, c)
			}
			c.methods = append(c.methods, d)
		}
	}
	return items
}

func (g *emitter) emitItem(ctx emitContext, it *item) error {
	switch {
	case it.fn != nil:
		return errors.Locate(g.funcDecl(ctx, it.fn), it.fn.Span.Start)
	case it.global != nil:
		return errors.Locate(g.global(ctx, it.global), it.global.Span.Start)
	default:
		return g.class(ctx, it.owner, it.methods)
	}
}
