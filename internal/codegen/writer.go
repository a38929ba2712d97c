package codegen

import (
	"bytes"
	"fmt"
	"strings"
)

// indentWidth is the number of spaces per nesting level.
const indentWidth = 2

// writer accumulates generated Dart source. Indentation is applied lazily
// when the first text of a line is written, so blank lines carry no
// trailing whitespace.
type writer struct {
	buf       bytes.Buffer
	level     int
	lineStart bool
}

func newWriter() *writer {
	return &writer{lineStart: true}
}

// print writes s at the cursor.
func (w *writer) print(s string) {
	if s == "" {
		return
	}
	if w.lineStart {
		w.buf.WriteString(strings.Repeat(" ", w.level*indentWidth))
		w.lineStart = false
	}
	w.buf.WriteString(s)
}

func (w *writer) printf(format string, args ...interface{}) {
	w.print(fmt.Sprintf(format, args...))
}

// newline ends the current line.
func (w *writer) newline() {
	w.buf.WriteByte('\n')
	w.lineStart = true
}

// line writes s followed by a newline.
func (w *writer) line(s string) {
	w.print(s)
	w.newline()
}

// indent runs fn one level deeper. The level is restored on every exit
// path, including failures.
func (w *writer) indent(fn func() error) error {
	w.level++
	defer func() { w.level-- }()
	return fn()
}

func (w *writer) bytes() []byte {
	return w.buf.Bytes()
}
