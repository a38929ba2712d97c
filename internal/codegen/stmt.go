package codegen

import (
	"fmt"

	"github.com/objc2dart/objc2dart/internal/ast"
	"github.com/objc2dart/objc2dart/internal/errors"
	"github.com/objc2dart/objc2dart/internal/runtimelib"
)

// stmt writes s as complete lines.
func (g *emitter) stmt(ctx emitContext, s ast.Stmt) error {
	return errors.Locate(g.stmtNode(ctx, s), s.GetSpan().Start)
}

func (g *emitter) stmtNode(ctx emitContext, s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.CompoundStmt:
		if err := g.block(ctx, s); err != nil {
			return err
		}
		g.w.newline()
		return nil

	case *ast.IfStmt:
		return g.ifStmt(ctx, s)

	case *ast.WhileStmt:
		g.w.print("while (")
		if err := g.condition(ctx, s.Cond); err != nil {
			return err
		}
		g.w.print(") ")
		if err := g.block(ctx, s.Body); err != nil {
			return err
		}
		g.w.newline()
		return nil

	case *ast.DoStmt:
		g.w.print("do ")
		if err := g.block(ctx, s.Body); err != nil {
			return err
		}
		g.w.print(" while (")
		if err := g.condition(ctx, s.Cond); err != nil {
			return err
		}
		g.w.line(");")
		return nil

	case *ast.ForStmt:
		return g.forStmt(ctx, s)

	case *ast.SwitchStmt:
		return g.switchStmt(ctx, s)

	case *ast.BreakStmt:
		g.w.line("break;")
		return nil

	case *ast.ContinueStmt:
		g.w.line("continue;")
		return nil

	case *ast.NullStmt:
		g.w.line(";")
		return nil

	case *ast.ReturnStmt:
		if s.Value == nil {
			g.w.line("return;")
			return nil
		}
		g.w.print("return ")
		if err := g.copied(ctx, s.Value); err != nil {
			return err
		}
		g.w.line(";")
		return nil

	case *ast.DeclStmt:
		for _, v := range s.Vars {
			if err := g.variable(ctx, v.Name, v.Type, v.Init, declFull); err != nil {
				return errors.Locate(err, v.Span.Start)
			}
			g.w.line(";")
		}
		return nil

	case *ast.ExprStmt:
		if isVaEnd(s.X) {
			return nil
		}
		if err := g.expr(ctx, s.X); err != nil {
			return err
		}
		g.w.line(";")
		return nil

	default:
		return errors.Invariant(s.GetSpan().Start, "unknown statement node %T", s)
	}
}

// block writes s as a braced block without the trailing newline, so the
// caller can continue the line.
func (g *emitter) block(ctx emitContext, s ast.Stmt) error {
	body := []ast.Stmt{s}
	if c, ok := s.(*ast.CompoundStmt); ok {
		body = c.Body
	}
	g.w.line("{")
	if err := g.w.indent(func() error {
		return g.stmts(ctx, body)
	}); err != nil {
		return err
	}
	g.w.print("}")
	return nil
}

func (g *emitter) stmts(ctx emitContext, body []ast.Stmt) error {
	for _, s := range body {
		if err := g.stmt(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (g *emitter) ifStmt(ctx emitContext, s *ast.IfStmt) error {
	g.w.print("if (")
	if err := g.condition(ctx, s.Cond); err != nil {
		return err
	}
	g.w.print(") ")
	if err := g.block(ctx, s.Then); err != nil {
		return err
	}
	switch els := s.Else.(type) {
	case nil:
	case *ast.IfStmt:
		g.w.print(" else ")
		return errors.Locate(g.ifStmt(ctx, els), els.Span.Start)
	default:
		g.w.print(" else ")
		if err := g.block(ctx, els); err != nil {
			return err
		}
	}
	g.w.newline()
	return nil
}

func (g *emitter) forStmt(ctx emitContext, s *ast.ForStmt) error {
	g.w.print("for (")
	switch init := s.Init.(type) {
	case nil:
	case *ast.DeclStmt:
		if err := g.forDecl(ctx, init); err != nil {
			return err
		}
	case *ast.ExprStmt:
		if err := g.expr(ctx, init.X); err != nil {
			return err
		}
	default:
		return errors.Invariant(s.Span.Start, "for initializer %T", init)
	}
	g.w.print("; ")
	if s.Cond != nil {
		if err := g.condition(ctx, s.Cond); err != nil {
			return err
		}
	}
	g.w.print("; ")
	if s.Inc != nil {
		if err := g.expr(ctx, s.Inc); err != nil {
			return err
		}
	}
	g.w.print(") ")
	if err := g.block(ctx, s.Body); err != nil {
		return err
	}
	g.w.newline()
	return nil
}

// forDecl writes the declarators of a for initializer as one declaration,
// which requires them to share a type.
func (g *emitter) forDecl(ctx emitContext, d *ast.DeclStmt) error {
	var first string
	for i, v := range d.Vars {
		name, err := g.types.MapType(v.Type)
		if err != nil {
			return errors.Locate(err, v.Span.Start)
		}
		mode := declFull
		if i == 0 {
			first = name
		} else {
			if name != first {
				return errors.Unsupported(v.Span.Start,
					fmt.Sprintf("for initializer declaring %s and %s", first, name))
			}
			mode = declNoType
			g.w.print(", ")
		}
		if err := g.variable(ctx, v.Name, v.Type, v.Init, mode); err != nil {
			return errors.Locate(err, v.Span.Start)
		}
	}
	return nil
}

// variable writes a declaration without its terminator. Initializers are
// copied; without one the type's default local is used.
func (g *emitter) variable(ctx emitContext, name string, t ast.Type, init ast.Expr, mode declMode) error {
	typ, err := g.types.MapType(t)
	if err != nil {
		return err
	}
	if mode != declNoType {
		g.w.print(typ + " ")
	}
	g.w.print(ident(name))
	if mode == declNoInit {
		return nil
	}
	g.w.print(" = ")
	if init != nil {
		return g.copied(ctx, init)
	}
	return g.defaultValue(t)
}

// defaultValue writes the value an uninitialised variable of type t starts
// with.
func (g *emitter) defaultValue(t ast.Type) error {
	typ, err := g.types.MapType(t)
	if err != nil {
		return err
	}
	if !g.isValue(t) {
		g.w.print("null")
		return nil
	}
	// Records and fixed-length arrays own storage of their full size.
	arr, isArray := ast.Unalias(t).(*ast.ArrayType)
	if typ == runtimelib.Composite || (typ == runtimelib.Pointer && isArray && arr.HasLen) {
		size, err := g.types.SizeOf(t)
		if err != nil {
			return err
		}
		g.w.printf("%s.local(%d)", typ, size)
		return nil
	}
	g.w.print(typ + ".local()")
	return nil
}
