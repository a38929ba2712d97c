// Package format normalizes generated Dart text and renders unified diffs
// between an existing output file and a fresh translation.
package format

import (
	"bytes"
	"strings"
)

// Options controls normalization.
type Options struct {
	// PreserveNewlineStyle: when true, CRLF in input keeps CRLF in output; else LF.
	PreserveNewlineStyle bool
}

// DefaultOptions returns the settings used for generated files, which are
// always written with LF line endings.
func DefaultOptions() Options {
	return Options{PreserveNewlineStyle: false}
}

// FormatBytes normalizes source bytes.
func FormatBytes(in []byte, opts Options) []byte {
	return []byte(FormatText(string(in), opts))
}

// FormatText applies minimal, safe formatting:
//   - trims trailing spaces and tabs on each line
//   - collapses trailing blank lines to exactly one newline
//   - preserves CRLF vs LF depending on options and input
func FormatText(text string, opts Options) string {
	useCRLF := opts.PreserveNewlineStyle && strings.Contains(text, "\r\n")

	norm := strings.ReplaceAll(text, "\r\n", "\n")
	norm = strings.ReplaceAll(norm, "\r", "\n")

	sep := "\n"
	if useCRLF {
		sep = "\r\n"
	}

	lines := strings.Split(norm, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return sep
	}

	var buf bytes.Buffer
	for i, ln := range lines {
		if i > 0 {
			buf.WriteString(sep)
		}
		buf.WriteString(ln)
	}
	buf.WriteString(sep)
	return buf.String()
}
