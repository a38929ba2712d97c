// Package diagnostics turns generator failures into user-facing reports
// with source context.
package diagnostics

import (
	stderrors "errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/objc2dart/objc2dart/internal/errors"
	"github.com/objc2dart/objc2dart/internal/position"
)

// DiagnosticLevel represents the severity level of a diagnostic
type DiagnosticLevel int

const (
	DiagnosticError DiagnosticLevel = iota
	DiagnosticWarning
	DiagnosticInfo
)

func (dl DiagnosticLevel) String() string {
	switch dl {
	case DiagnosticError:
		return "error"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticInfo:
		return "info"
	default:
		return "unknown"
	}
}

// FixSuggestion represents a suggested change to the input.
type FixSuggestion struct {
	Description string
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Level    DiagnosticLevel
	Category errors.ErrorCategory
	Code     string // Error code such as "VARIABLE_LENGTH_ARRAY"
	Message  string
	Span     position.Span

	SourceFile string
	Context    []string // Source lines around the error
	FirstLine  int      // Line number of Context[0]

	Explanation    string
	FixSuggestions []FixSuggestion
}

// FromError converts a generator failure into a diagnostic. Errors that do
// not carry a category are reported as I/O failures with no location.
func FromError(err error) Diagnostic {
	var se *errors.StandardError
	if !stderrors.As(err, &se) {
		return Diagnostic{Level: DiagnosticError, Category: errors.CategoryIO, Message: err.Error()}
	}
	msg := se.Message
	if se.Err != nil {
		msg += ": " + se.Err.Error()
	}
	d := Diagnostic{
		Level:      DiagnosticError,
		Category:   se.Category,
		Code:       se.Code,
		Message:    msg,
		Span:       position.At(se.Pos),
		SourceFile: se.Pos.Filename,
	}
	if path, ok := se.Context["path"].(string); ok && d.SourceFile == "" {
		d.SourceFile = path
	}
	return d
}

// DiagnosticManager collects the diagnostics of one run.
type DiagnosticManager struct {
	diagnostics  []Diagnostic
	errorCount   int
	warningCount int
	maxErrors    int
	sourceCache  map[string][]string // Cache of source file lines
	readFile     func(string) ([]byte, error)
}

// NewDiagnosticManager creates a new diagnostic manager
func NewDiagnosticManager() *DiagnosticManager {
	return &DiagnosticManager{
		maxErrors:   100,
		sourceCache: make(map[string][]string),
		readFile:    os.ReadFile,
	}
}

// SetErrorLimit sets the maximum number of errors kept.
func (dm *DiagnosticManager) SetErrorLimit(limit int) {
	dm.maxErrors = limit
}

// AddSource registers the text of a file so diagnostics in it show context
// without reading the file system.
func (dm *DiagnosticManager) AddSource(filename, text string) {
	dm.sourceCache[filename] = strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// AddDiagnostic adds a new diagnostic to the manager
func (dm *DiagnosticManager) AddDiagnostic(d Diagnostic) {
	if d.Level == DiagnosticError && dm.errorCount >= dm.maxErrors {
		return
	}
	switch d.Level {
	case DiagnosticError:
		dm.errorCount++
	case DiagnosticWarning:
		dm.warningCount++
	}
	dm.enhanceDiagnostic(&d)
	dm.diagnostics = append(dm.diagnostics, d)
}

// AddError records err as an error diagnostic.
func (dm *DiagnosticManager) AddError(err error) {
	dm.AddDiagnostic(FromError(err))
}

// enhanceDiagnostic adds source context and advice for known codes.
func (dm *DiagnosticManager) enhanceDiagnostic(d *Diagnostic) {
	if d.SourceFile != "" && d.Span.Start.IsValid() {
		if lines := dm.getSourceLines(d.SourceFile); lines != nil {
			d.Context, d.FirstLine = extractContext(lines, d.Span)
		}
	}
	if d.Explanation == "" {
		d.Explanation = explanations[d.Code]
	}
	if len(d.FixSuggestions) == 0 {
		d.FixSuggestions = suggestions[d.Code]
	}
}

// getSourceLines retrieves and caches source file lines. Unreadable files
// are cached as empty so they are tried once.
func (dm *DiagnosticManager) getSourceLines(filename string) []string {
	if lines, exists := dm.sourceCache[filename]; exists {
		return lines
	}
	data, err := dm.readFile(filename)
	if err != nil {
		dm.sourceCache[filename] = nil
		return nil
	}
	dm.AddSource(filename, string(data))
	return dm.sourceCache[filename]
}

// extractContext returns up to two lines either side of the span's lines.
func extractContext(lines []string, span position.Span) ([]string, int) {
	end := span.End.Line
	if end < span.Start.Line {
		end = span.Start.Line
	}
	first := max(1, span.Start.Line-2)
	last := min(len(lines), end+2)
	if first > last {
		return nil, 0
	}
	return lines[first-1 : last], first
}

var explanations = map[string]string{
	"UNSUPPORTED_CONSTRUCT": "The construct has no equivalent in the runtime library, so the unit cannot be translated.",
	"VARIABLE_LENGTH_ARRAY": "Runtime wrappers have a size fixed at allocation, and the size of a variable-length array is known only at run time.",
	"NON_CONSTANT_CASE":     "Case labels become Dart case constants and must fold to an integer.",
	"UNION_TOO_SMALL":       "A value converted to a union is stored at offset zero and must fit inside it.",
	"INVARIANT_VIOLATION":   "The front-end dump contains a node the generator never expects to see. This is a bug in the front end or the generator.",
	"MALFORMED_DUMP":        "The input is not a valid front-end dump.",
}

var suggestions = map[string][]FixSuggestion{
	"VARIABLE_LENGTH_ARRAY": {{Description: "use a fixed-size array or allocate the buffer with malloc"}},
	"NON_CONSTANT_CASE":     {{Description: "replace the label with an integer constant expression"}},
}

// GetDiagnostics returns all diagnostics
func (dm *DiagnosticManager) GetDiagnostics() []Diagnostic {
	return dm.diagnostics
}

// GetErrorCount returns the number of errors
func (dm *DiagnosticManager) GetErrorCount() int {
	return dm.errorCount
}

// GetWarningCount returns the number of warnings
func (dm *DiagnosticManager) GetWarningCount() int {
	return dm.warningCount
}

// HasErrors returns true if there are any errors
func (dm *DiagnosticManager) HasErrors() bool {
	return dm.errorCount > 0
}

// SortDiagnostics sorts diagnostics by location and severity
func (dm *DiagnosticManager) SortDiagnostics() {
	sort.SliceStable(dm.diagnostics, func(i, j int) bool {
		a, b := dm.diagnostics[i], dm.diagnostics[j]
		if a.SourceFile != b.SourceFile {
			return a.SourceFile < b.SourceFile
		}
		if a.Span.Start.Line != b.Span.Start.Line {
			return a.Span.Start.Line < b.Span.Start.Line
		}
		if a.Span.Start.Column != b.Span.Start.Column {
			return a.Span.Start.Column < b.Span.Start.Column
		}
		return a.Level < b.Level
	})
}

// FormatDiagnostic formats a diagnostic for display
func (dm *DiagnosticManager) FormatDiagnostic(d Diagnostic, colorize bool) string {
	var result strings.Builder

	if colorize {
		result.WriteString(colorizeLevel(d.Level))
	}
	result.WriteString(d.Level.String())
	if d.Code != "" {
		result.WriteString("[" + d.Code + "]")
	}
	if colorize {
		result.WriteString(colorReset)
	}
	result.WriteString(": " + d.Message + "\n")

	if d.SourceFile != "" {
		result.WriteString("  --> " + d.SourceFile)
		if d.Span.Start.IsValid() {
			fmt.Fprintf(&result, ":%d:%d", d.Span.Start.Line, d.Span.Start.Column)
		}
		result.WriteString("\n")
	}

	for i, line := range d.Context {
		lineNum := d.FirstLine + i
		fmt.Fprintf(&result, "%4d | %s\n", lineNum, line)
		if lineNum == d.Span.Start.Line {
			width := 1
			if d.Span.End.Line == d.Span.Start.Line && d.Span.End.Column > d.Span.Start.Column {
				width = d.Span.End.Column - d.Span.Start.Column
			}
			result.WriteString(strings.Repeat(" ", 6+d.Span.Start.Column) + strings.Repeat("^", width) + "\n")
		}
	}

	if d.Explanation != "" {
		result.WriteString("  = note: " + d.Explanation + "\n")
	}
	for _, fix := range d.FixSuggestions {
		result.WriteString("  = help: " + fix.Description + "\n")
	}
	return result.String()
}

const colorReset = "\033[0m"

// colorizeLevel returns the color code for a level.
func colorizeLevel(level DiagnosticLevel) string {
	switch level {
	case DiagnosticError:
		return "\033[31m" // Red
	case DiagnosticWarning:
		return "\033[33m" // Yellow
	case DiagnosticInfo:
		return "\033[34m" // Blue
	default:
		return ""
	}
}

// FormatSummary formats a summary of all diagnostics
func (dm *DiagnosticManager) FormatSummary() string {
	if len(dm.diagnostics) == 0 {
		return "No diagnostics."
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Found %d error(s) and %d warning(s).", dm.errorCount, dm.warningCount)

	categoryCount := make(map[errors.ErrorCategory]int)
	for _, d := range dm.diagnostics {
		categoryCount[d.Category]++
	}
	categories := make([]string, 0, len(categoryCount))
	for c := range categoryCount {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)

	result.WriteString("\n\nBreakdown by category:")
	for _, c := range categories {
		fmt.Fprintf(&result, "\n  %s: %d", strings.ToLower(c), categoryCount[errors.ErrorCategory(c)])
	}
	return result.String()
}
