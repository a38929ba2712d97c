package codegen

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/objc2dart/objc2dart/internal/ast"
	"github.com/objc2dart/objc2dart/internal/testrunner/assert"
	"github.com/objc2dart/objc2dart/internal/testrunner/prop"
	"github.com/objc2dart/objc2dart/internal/types"
)

type callShape struct{ fixed, trailing int }

func TestVariadicCallPacksTrailingArguments(t *testing.T) {
	gen := prop.Generator[callShape](func(r *rand.Rand, size int) callShape {
		return callShape{fixed: r.Intn(4), trailing: r.Intn(size%8 + 1)}
	})
	check := func(s callShape) bool {
		sig := &ast.FunctionType{Result: intT, Variadic: true}
		var args []ast.Expr
		var fixed, trailing []string
		for i := 0; i < s.fixed+s.trailing; i++ {
			n := fmt.Sprintf("a%d", i)
			if i < s.fixed {
				sig.Params = append(sig.Params, intT)
				fixed = append(fixed, n+".copy()")
			} else {
				trailing = append(trailing, n+".copy()")
			}
			args = append(args, load(name(n, intT)))
		}
		got, err := emitExpr(t, emitContext{}, call(fn("f", sig), intT, args...))
		want := "f(" + strings.Join(append(fixed, "CVarArgs(["+strings.Join(trailing, ", ")+"])"), ", ") + ")"
		return err == nil && got == want
	}
	res := prop.ForAll1(gen, nil, check, prop.Options{Trials: 300})
	assert.False(t, res.Failed, "fails for ", res.FailingInput, " (seed ", res.Seed, ")")
}

func TestIntegerLiteralsRoundTrip(t *testing.T) {
	kinds := []ast.ScalarKind{ast.SChar, ast.UChar, ast.Short, ast.UShort, ast.Int, ast.UInt, ast.Long, ast.ULong}
	for _, k := range kinds {
		st := scalar(k)
		wrapper, err := types.ScalarWrapper(st)
		if !assert.NoError(t, err) {
			return
		}
		prefix := wrapper + ".fromInt("
		res := prop.ForAll1(prop.GenInt64(), prop.ShrinkInt64(), func(v int64) bool {
			got, err := emitExpr(t, emitContext{}, lit(v, st))
			if err != nil || !strings.HasPrefix(got, prefix) || !strings.HasSuffix(got, ")") {
				return false
			}
			printed, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(got, prefix), ")"), 10, 64)
			if err != nil || types.Truncate(printed, st.Bits, st.Signed) != printed {
				return false
			}
			if st.Bits == 64 {
				return printed == v
			}
			return (printed-v)%(int64(1)<<st.Bits) == 0
		}, prop.Options{Trials: 300})
		assert.False(t, res.Failed, k, " fails for ", res.ShrunkInput, " (seed ", res.Seed, ")")
	}
}

// switchShape is a switch whose cases each call one function. defaultAt
// is the source index of the default case, or -1.
type switchShape struct {
	defaultAt int
	breaks    []bool
}

func genSwitchShape(r *rand.Rand, _ int) switchShape {
	n := 1 + r.Intn(6)
	s := switchShape{defaultAt: r.Intn(n+1) - 1, breaks: make([]bool, n)}
	for i := range s.breaks {
		s.breaks[i] = r.Intn(2) == 0
	}
	return s
}

func (s switchShape) stmt() *ast.SwitchStmt {
	sw := &ast.SwitchStmt{Cond: load(name("x", intT))}
	for i, brk := range s.breaks {
		c := &ast.SwitchCase{Body: []ast.Stmt{voidCall(fmt.Sprintf("f%d", i))}}
		if i == s.defaultAt {
			c.Default = true
		} else {
			c.Label = lit(int64(i), intT)
		}
		if brk {
			c.Body = append(c.Body, &ast.BreakStmt{})
		}
		sw.Cases = append(sw.Cases, c)
	}
	return sw
}

// want renders the expected lowering: cases in source order with the
// default moved last, and each case that does not break continuing at the
// case that follows it in the source.
func (s switchShape) want() string {
	n := len(s.breaks)
	label := make([]int, n)
	next := 1
	for i := range s.breaks {
		if i != s.defaultAt {
			label[i] = next
			next++
		}
	}
	if s.defaultAt >= 0 {
		label[s.defaultAt] = next
	}

	body := func(i int) []string {
		head := fmt.Sprintf("  label%d: case %d:", label[i], i)
		if i == s.defaultAt {
			head = fmt.Sprintf("  label%d: default:", label[i])
		}
		out := []string{head, fmt.Sprintf("    f%d();", i)}
		switch {
		case s.breaks[i], i == n-1:
			out = append(out, "    break;")
		default:
			out = append(out, fmt.Sprintf("    continue label%d;", label[i+1]))
		}
		return out
	}

	out := []string{"switch (x.intValue()) {"}
	for i := range s.breaks {
		if i != s.defaultAt {
			out = append(out, body(i)...)
		}
	}
	if s.defaultAt >= 0 {
		out = append(out, body(s.defaultAt)...)
	}
	return lines(append(out, "}")...)
}

func TestSwitchFallthroughFollowsSourceOrder(t *testing.T) {
	check := func(s switchShape) bool {
		got, err := emitStmts(t, emitContext{}, s.stmt())
		return err == nil && got == s.want()
	}
	res := prop.ForAll1(prop.Generator[switchShape](genSwitchShape), nil, check, prop.Options{Trials: 300})
	if res.Failed {
		got, err := emitStmts(t, emitContext{}, res.FailingInput.stmt())
		t.Fatalf("shape %+v (seed %d): err %v\nwant:\n%s\ngot:\n%s", res.FailingInput, res.Seed, err, res.FailingInput.want(), got)
	}
}
