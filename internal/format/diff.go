package format

import (
	"fmt"
	"strings"
)

// DiffOptions controls diff generation.
type DiffOptions struct {
	Context     int  // Number of context lines around each change
	IgnoreSpace bool // Ignore trailing whitespace differences
}

// DefaultDiffOptions returns default diff options.
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{Context: 3}
}

// DiffResult represents the result of a diff operation.
type DiffResult struct {
	Hunks      []Hunk
	Stats      DiffStat
	HasChanges bool
}

// Hunk represents a contiguous block of changes with its context.
type Hunk struct {
	Lines         []Line
	OriginalStart int
	OriginalCount int
	ModifiedStart int
	ModifiedCount int
}

// Header returns the unified hunk header.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%s +%s @@", hunkRange(h.OriginalStart, h.OriginalCount),
		hunkRange(h.ModifiedStart, h.ModifiedCount))
}

func hunkRange(start, count int) string {
	if count == 1 {
		return fmt.Sprintf("%d", start)
	}
	if count == 0 {
		// An empty range names the line before it.
		start--
	}
	return fmt.Sprintf("%d,%d", start, count)
}

// Line represents a single line in a diff.
type Line struct {
	Content string
	Type    LineType
}

// LineType represents the type of a diff line.
type LineType int

const (
	LineTypeContext LineType = iota // Unchanged context line
	LineTypeAdded                   // Added line (+)
	LineTypeRemoved                 // Removed line (-)
)

func (t LineType) prefix() string {
	switch t {
	case LineTypeAdded:
		return "+"
	case LineTypeRemoved:
		return "-"
	}
	return " "
}

// DiffStat contains statistics about changes.
type DiffStat struct {
	LinesAdded   int
	LinesRemoved int
}

// DiffFormatter generates unified diffs between two versions of a file.
type DiffFormatter struct {
	options DiffOptions
}

// NewDiffFormatter creates a new diff formatter.
func NewDiffFormatter(options DiffOptions) *DiffFormatter {
	if options.Context < 0 {
		options.Context = 0
	}
	return &DiffFormatter{options: options}
}

// GenerateDiff compares original with modified line by line.
func (df *DiffFormatter) GenerateDiff(original, modified string) *DiffResult {
	a, b := splitLines(original), splitLines(modified)
	ka, kb := a, b
	if df.options.IgnoreSpace {
		ka, kb = trimLines(a), trimLines(b)
	}

	ops := editScript(ka, kb)
	hunks := df.generateHunks(ops, a, b)

	result := &DiffResult{Hunks: hunks, HasChanges: len(hunks) > 0}
	for _, h := range hunks {
		for _, l := range h.Lines {
			switch l.Type {
			case LineTypeAdded:
				result.Stats.LinesAdded++
			case LineTypeRemoved:
				result.Stats.LinesRemoved++
			}
		}
	}
	return result
}

// FormatDiff renders result as a unified diff. It returns "" when there are
// no changes.
func (df *DiffFormatter) FormatDiff(originalName, modifiedName string, result *DiffResult) string {
	if !result.HasChanges {
		return ""
	}

	var output strings.Builder
	fmt.Fprintf(&output, "--- %s\n", originalName)
	fmt.Fprintf(&output, "+++ %s\n", modifiedName)
	for _, hunk := range result.Hunks {
		output.WriteString(hunk.Header() + "\n")
		for _, line := range hunk.Lines {
			output.WriteString(line.Type.prefix() + line.Content + "\n")
		}
	}
	return output.String()
}

// Unified is the one-call form used for golden mismatches and the CLI.
func Unified(originalName, modifiedName, original, modified string) string {
	df := NewDiffFormatter(DefaultDiffOptions())
	return df.FormatDiff(originalName, modifiedName, df.GenerateDiff(original, modified))
}

// splitLines splits text into lines without their terminators.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func trimLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimRight(l, " \t")
	}
	return out
}

// edit is one step of an edit script: keep, delete from a, or insert from b.
type edit struct {
	typ  LineType
	a, b int // Indexes into the original and modified lines
}

// editScript computes a shortest edit script from the longest common
// subsequence of a and b.
func editScript(a, b []string) []edit {
	n, m := len(a), len(b)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	ops := make([]edit, 0, n+m)
	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && a[i] == b[j]:
			ops = append(ops, edit{LineTypeContext, i, j})
			i++
			j++
		case j < m && (i == n || lcs[i][j+1] > lcs[i+1][j]):
			ops = append(ops, edit{LineTypeAdded, i, j})
			j++
		default:
			ops = append(ops, edit{LineTypeRemoved, i, j})
			i++
		}
	}
	return ops
}

// generateHunks groups changes that lie within 2*Context lines of each
// other, surrounding each group with context.
func (df *DiffFormatter) generateHunks(ops []edit, a, b []string) []Hunk {
	ctx := df.options.Context
	var hunks []Hunk

	for start := 0; start < len(ops); {
		if ops[start].typ == LineTypeContext {
			start++
			continue
		}
		// Extend the group while the next change is close enough.
		end := start
		for k := start + 1; k < len(ops); k++ {
			if ops[k].typ == LineTypeContext {
				continue
			}
			if k-end-1 > 2*ctx {
				break
			}
			end = k
		}

		lo := start - ctx
		if lo < 0 {
			lo = 0
		}
		hi := end + ctx + 1
		if hi > len(ops) {
			hi = len(ops)
		}
		hunks = append(hunks, makeHunk(ops[lo:hi], a, b))
		start = hi
	}
	return hunks
}

func makeHunk(ops []edit, a, b []string) Hunk {
	h := Hunk{OriginalStart: ops[0].a + 1, ModifiedStart: ops[0].b + 1}
	for _, op := range ops {
		switch op.typ {
		case LineTypeContext:
			h.Lines = append(h.Lines, Line{Content: a[op.a], Type: LineTypeContext})
			h.OriginalCount++
			h.ModifiedCount++
		case LineTypeRemoved:
			h.Lines = append(h.Lines, Line{Content: a[op.a], Type: LineTypeRemoved})
			h.OriginalCount++
		case LineTypeAdded:
			h.Lines = append(h.Lines, Line{Content: b[op.b], Type: LineTypeAdded})
			h.ModifiedCount++
		}
	}
	return h
}
