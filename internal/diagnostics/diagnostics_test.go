package diagnostics

import (
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/objc2dart/objc2dart/internal/errors"
	"github.com/objc2dart/objc2dart/internal/position"
	"github.com/objc2dart/objc2dart/internal/testrunner/assert"
)

func TestFromError(t *testing.T) {
	pos := position.Position{Filename: "vla.c", Line: 2, Column: 7}
	d := FromError(fmt.Errorf("unit vla: %w", errors.VariableLengthArray(pos)))
	assert.Equal(t, d.Level, DiagnosticError)
	assert.Equal(t, d.Category, errors.CategoryUnsupported)
	assert.Equal(t, d.Code, "VARIABLE_LENGTH_ARRAY")
	assert.Equal(t, d.SourceFile, "vla.c")
	assert.Equal(t, d.Span.Start, pos)

	d = FromError(errors.Decode("in.json", "bad token"))
	assert.Equal(t, d.SourceFile, "in.json")
	assert.False(t, d.Span.Start.IsValid())

	d = FromError(errors.IO("read", "x.json", fs.ErrNotExist))
	assert.Equal(t, d.Message, "read x.json: file does not exist")

	d = FromError(fmt.Errorf("plain"))
	assert.Equal(t, d.Category, errors.CategoryIO)
	assert.Equal(t, d.Message, "plain")
}

func TestFormatDiagnosticWithContext(t *testing.T) {
	dm := NewDiagnosticManager()
	dm.AddSource("vla.c", "void fill(int n) {\n  int buf[n];\n}\n")
	dm.AddError(errors.VariableLengthArray(position.Position{Filename: "vla.c", Line: 2, Column: 7}))

	if !assert.Len(t, dm.GetDiagnostics(), 1) {
		return
	}
	got := dm.FormatDiagnostic(dm.GetDiagnostics()[0], false)
	want := strings.Join([]string{
		"error[VARIABLE_LENGTH_ARRAY]: variable-length arrays are not supported",
		"  --> vla.c:2:7",
		"   1 | void fill(int n) {",
		"   2 |   int buf[n];",
		"             ^",
		"   3 | }",
		"   4 | ",
		"  = note: " + explanations["VARIABLE_LENGTH_ARRAY"],
		"  = help: use a fixed-size array or allocate the buffer with malloc",
		"",
	}, "\n")
	assert.Equal(t, got, want)
}

func TestFormatDiagnosticColor(t *testing.T) {
	dm := NewDiagnosticManager()
	got := dm.FormatDiagnostic(Diagnostic{Level: DiagnosticWarning, Message: "m"}, true)
	assert.Equal(t, got, "\033[33mwarning\033[0m: m\n")
}

func TestUnreadableSourceIsReadOnce(t *testing.T) {
	dm := NewDiagnosticManager()
	reads := 0
	dm.readFile = func(string) ([]byte, error) {
		reads++
		return nil, fs.ErrNotExist
	}
	pos := position.Position{Filename: "gone.c", Line: 1, Column: 1}
	dm.AddError(errors.Unsupported(pos, "x"))
	dm.AddError(errors.Unsupported(pos, "y"))
	assert.Equal(t, reads, 1)
	assert.Len(t, dm.GetDiagnostics()[0].Context, 0)
}

func TestSortAndSummary(t *testing.T) {
	dm := NewDiagnosticManager()
	dm.readFile = func(string) ([]byte, error) { return nil, fs.ErrNotExist }
	dm.AddError(errors.Invariant(position.Position{Filename: "b.c", Line: 1, Column: 1}, "late"))
	dm.AddError(errors.Unsupported(position.Position{Filename: "a.c", Line: 9, Column: 1}, "x"))
	dm.AddError(errors.Unsupported(position.Position{Filename: "a.c", Line: 3, Column: 4}, "y"))
	dm.AddDiagnostic(Diagnostic{Level: DiagnosticWarning, Category: errors.CategoryConfig, SourceFile: "a.c",
		Span: position.At(position.Position{Line: 3, Column: 4})})
	dm.SortDiagnostics()

	var order []string
	for _, d := range dm.GetDiagnostics() {
		order = append(order, fmt.Sprintf("%s:%d:%s", d.SourceFile, d.Span.Start.Line, d.Level))
	}
	assert.Equal(t, strings.Join(order, " "), "a.c:3:error a.c:3:warning a.c:9:error b.c:1:error")
	assert.True(t, dm.HasErrors())
	assert.Equal(t, dm.GetWarningCount(), 1)
	assert.Equal(t, dm.FormatSummary(), "Found 3 error(s) and 1 warning(s).\n\n"+
		"Breakdown by category:\n  config: 1\n  invariant: 1\n  unsupported: 2")
}

func TestErrorLimit(t *testing.T) {
	dm := NewDiagnosticManager()
	dm.SetErrorLimit(1)
	dm.AddError(fmt.Errorf("one"))
	dm.AddError(fmt.Errorf("two"))
	assert.Equal(t, dm.GetErrorCount(), 1)
	assert.Equal(t, NewDiagnosticManager().FormatSummary(), "No diagnostics.")
}
