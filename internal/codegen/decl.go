package codegen

import (
	"github.com/objc2dart/objc2dart/internal/ast"
	"github.com/objc2dart/objc2dart/internal/errors"
	"github.com/objc2dart/objc2dart/internal/runtimelib"
)

// funcDecl writes a function definition.
func (g *emitter) funcDecl(ctx emitContext, d *ast.FuncDecl) error {
	if d.Entry {
		return g.entryPoint(ctx, d)
	}
	result, err := g.types.MapType(d.Result)
	if err != nil {
		return err
	}
	g.w.printf("%s %s(", result, ident(d.Name))
	if err := g.params(ctx, d.Params, d.Variadic); err != nil {
		return err
	}
	g.w.print(") ")
	fn := &function{name: d.Name, params: d.Params, variadic: d.Variadic}
	if err := g.block(ctx.inFunction(fn), d.Body); err != nil {
		return err
	}
	g.w.newline()
	return nil
}

// params writes a parameter list. Variadic functions receive their trailing
// arguments as one extra list parameter.
func (g *emitter) params(ctx emitContext, params []*ast.Param, variadic bool) error {
	for i, p := range params {
		if i > 0 {
			g.w.print(", ")
		}
		if err := g.variable(ctx, paramName(p.Name, i), p.Type, nil, declNoInit); err != nil {
			return errors.Locate(err, p.Span.Start)
		}
	}
	if variadic {
		if len(params) > 0 {
			g.w.print(", ")
		}
		g.w.printf("%s %s", runtimelib.VarArgs, varArgsParam)
	}
	return nil
}

// entryPoint wraps main: Dart's main returns nothing and takes no
// arguments, so the C body becomes an inner function called with default
// values.
func (g *emitter) entryPoint(ctx emitContext, d *ast.FuncDecl) error {
	result, err := g.types.MapType(d.Result)
	if err != nil {
		return err
	}
	g.w.line("void main() {")
	err = g.w.indent(func() error {
		g.w.printf("%s %s(", result, entryInner)
		if err := g.params(ctx, d.Params, d.Variadic); err != nil {
			return err
		}
		g.w.print(") ")
		fn := &function{name: d.Name, params: d.Params, variadic: d.Variadic}
		if err := g.block(ctx.inFunction(fn), d.Body); err != nil {
			return err
		}
		g.w.newline()

		g.w.printf("%s(", entryInner)
		for i, p := range d.Params {
			if i > 0 {
				g.w.print(", ")
			}
			if err := g.defaultValue(p.Type); err != nil {
				return errors.Locate(err, p.Span.Start)
			}
		}
		if d.Variadic {
			if len(d.Params) > 0 {
				g.w.print(", ")
			}
			g.w.printf("%s([])", runtimelib.VarArgs)
		}
		g.w.line(");")
		return nil
	})
	if err != nil {
		return err
	}
	g.w.line("}")
	return nil
}

// class writes the methods implemented for one Objective-C class.
func (g *emitter) class(ctx emitContext, owner string, methods []*ast.MethodDecl) error {
	g.w.printf("class %s extends %s {", ident(owner), runtimelib.ObjectBase)
	g.w.newline()
	err := g.w.indent(func() error {
		for i, m := range methods {
			if i > 0 {
				g.w.newline()
			}
			if err := errors.Locate(g.method(ctx, m), m.Span.Start); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	g.w.line("}")
	return nil
}

func (g *emitter) method(ctx emitContext, m *ast.MethodDecl) error {
	result, err := g.types.MapType(m.Result)
	if err != nil {
		return err
	}
	if m.ClassMethod {
		g.w.print("static ")
	}
	g.w.printf("%s %s(", result, selectorName(m.Selector))
	if err := g.params(ctx, m.Params, false); err != nil {
		return err
	}
	g.w.print(") ")
	fn := &function{name: m.Selector, params: m.Params, owner: m.Owner, classMethod: m.ClassMethod}
	if err := g.block(ctx.inFunction(fn), m.Body); err != nil {
		return err
	}
	g.w.newline()
	return nil
}

// global writes a file-scope variable.
func (g *emitter) global(ctx emitContext, v *ast.VarDecl) error {
	typ, err := g.types.MapType(v.Type)
	if err != nil {
		return err
	}
	g.w.printf("%s %s = ", typ, ident(v.Name))
	if v.Init != nil {
		err = g.expr(ctx, v.Init)
	} else {
		err = g.defaultValue(v.Type)
	}
	if err != nil {
		return err
	}
	g.w.line(";")
	return nil
}
