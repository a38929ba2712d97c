package codegen

import (
	"github.com/objc2dart/objc2dart/internal/ast"
	"github.com/objc2dart/objc2dart/internal/errors"
)

// switchPlan numbers the cases of a switch. Explicit cases take labels 1..n
// in source order and the default takes n+1, so it can be emitted last.
type switchPlan struct {
	labels []int // label of each case, in source order
	def    int   // index of the default case, or -1
}

func planSwitch(s *ast.SwitchStmt) (*switchPlan, error) {
	p := &switchPlan{labels: make([]int, len(s.Cases)), def: -1}
	n := 0
	for i, c := range s.Cases {
		if !c.Default {
			n++
			p.labels[i] = n
			continue
		}
		if p.def >= 0 {
			return nil, errors.Invariant(c.Span.Start, "switch has more than one default case")
		}
		p.def = i
	}
	if p.def >= 0 {
		p.labels[p.def] = n + 1
	}
	return p, nil
}

// next returns the label that case i falls through to, or 0 when it is the
// last case in source order.
func (p *switchPlan) next(i int) int {
	if i+1 < len(p.labels) {
		return p.labels[i+1]
	}
	return 0
}

// switchStmt lowers a C switch, whose cases fall through, to a Dart switch
// whose cases do not. Each case ends by continuing at the label of its
// source successor or by breaking out.
func (g *emitter) switchStmt(ctx emitContext, s *ast.SwitchStmt) error {
	plan, err := planSwitch(s)
	if err != nil {
		return err
	}
	depth := ctx.switchDepth
	inner := ctx.inSwitch()

	g.w.print("switch (")
	if err := g.receiver(ctx, s.Cond); err != nil {
		return err
	}
	g.w.line(".intValue()) {")

	err = g.w.indent(func() error {
		for i, c := range s.Cases {
			if c.Default {
				continue
			}
			v, ok := g.constant(c.Label)
			if !ok {
				return errors.NonConstantCaseLabel(c.Span.Start)
			}
			g.w.printf("%s: case %d:", switchLabel(depth, plan.labels[i]), v)
			g.w.newline()
			if err := g.caseBody(inner, c.Body, depth, plan.next(i)); err != nil {
				return errors.Locate(err, c.Span.Start)
			}
		}
		if plan.def < 0 {
			return nil
		}

		// The default continues only when a case follows it in source order.
		target := 0
		if plan.next(plan.def) != plan.labels[plan.def] {
			target = plan.next(plan.def)
		}
		c := s.Cases[plan.def]
		g.w.printf("%s: default:", switchLabel(depth, plan.labels[plan.def]))
		g.w.newline()
		return errors.Locate(g.caseBody(inner, c.Body, depth, target), c.Span.Start)
	})
	if err != nil {
		return err
	}
	g.w.line("}")
	return nil
}

// caseBody writes the statements of one case followed by its exit.
func (g *emitter) caseBody(ctx emitContext, body []ast.Stmt, depth, target int) error {
	return g.w.indent(func() error {
		if err := g.stmts(ctx, body); err != nil {
			return err
		}
		if endsInJump(body) {
			return nil
		}
		if target != 0 {
			g.w.printf("continue %s;", switchLabel(depth, target))
		} else {
			g.w.print("break;")
		}
		g.w.newline()
		return nil
	})
}

// endsInJump reports whether control never leaves body at its end.
func endsInJump(body []ast.Stmt) bool {
	if len(body) == 0 {
		return false
	}
	switch body[len(body)-1].(type) {
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.ReturnStmt:
		return true
	}
	return false
}
