package assert

import (
	"errors"
	"fmt"
	"testing"
)

// recorder captures failures instead of failing the enclosing test.
type recorder struct {
	testing.TB
	failed bool
	msg    string
}

func (r *recorder) Helper() {}

func (r *recorder) Error(args ...any) {
	r.failed = true
	r.msg = fmt.Sprint(args...)
}

type codedError struct{ code string }

func (e *codedError) Error() string { return e.code }

func TestAssertionsReportFailures(t *testing.T) {
	tests := []struct {
		name string
		run  func(tb testing.TB) bool
		pass bool
	}{
		{"equal pass", func(tb testing.TB) bool { return Equal(tb, 3, 3) }, true},
		{"equal fail", func(tb testing.TB) bool { return Equal(tb, "a", "b") }, false},
		{"contains", func(tb testing.TB) bool { return Contains(tb, "a.add(b)", ".add(") }, true},
		{"not contains", func(tb testing.TB) bool { return NotContains(tb, "a.add(b)", ".add(") }, false},
		{"count", func(tb testing.TB) bool { return Count(tb, "x.copy(), y.copy()", ".copy()", 2) }, true},
		{"len", func(tb testing.TB) bool { return Len(tb, []int{1, 2}, 3) }, false},
		{"no error", func(tb testing.TB) bool { return NoError(tb, errors.New("boom")) }, false},
		{"nil pointer", func(tb testing.TB) bool { var p *int; return Nil(tb, p) }, true},
		{"error as", func(tb testing.TB) bool {
			var ce *codedError
			return ErrorAs(tb, fmt.Errorf("wrap: %w", &codedError{"X"}), &ce)
		}, true},
		{"error as nil", func(tb testing.TB) bool {
			var ce *codedError
			return ErrorAs(tb, nil, &ce)
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{TB: t}
			got := tt.run(r)
			if got != tt.pass || r.failed == tt.pass {
				t.Fatalf("want pass=%v, got result=%v failed=%v (%s)", tt.pass, got, r.failed, r.msg)
			}
		})
	}
}
