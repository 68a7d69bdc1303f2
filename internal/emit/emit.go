// Package emit provides the indent-tracking line buffer every backend
// prints its target syntax with.
package emit

import (
	"fmt"
	"strings"
)

// Indent units used by the backends.
const (
	FourSpaces = "    "
	TwoSpaces  = "  "
)

// Artifact is one generated output text. Ext is appended to the caller's
// base name to form the file name, e.g. ".h".
type Artifact struct {
	Ext     string
	Content string
}

// Writer is an append-only list of lines with a current indentation depth.
// Each line is prefixed with depth × unit at the moment it is emitted.
type Writer struct {
	lines []string
	depth int
	unit  string
}

// New returns an empty Writer indenting with unit.
func New(unit string) *Writer {
	return &Writer{unit: unit}
}

// Line emits s at the current depth. An empty s emits a blank line.
func (w *Writer) Line(s string) {
	if s == "" {
		w.lines = append(w.lines, "")
		return
	}
	w.lines = append(w.lines, strings.Repeat(w.unit, w.depth)+s)
}

// Linef emits a formatted line at the current depth.
func (w *Writer) Linef(format string, args ...any) {
	w.Line(fmt.Sprintf(format, args...))
}

// Lines emits each of ss at the current depth.
func (w *Writer) Lines(ss ...string) {
	for _, s := range ss {
		w.Line(s)
	}
}

// Raw emits s without indentation.
func (w *Writer) Raw(s string) {
	w.lines = append(w.lines, s)
}

// Blank emits an empty line.
func (w *Writer) Blank() {
	w.lines = append(w.lines, "")
}

// Indent increases the depth by one level.
func (w *Writer) Indent() { w.depth++ }

// Dedent decreases the depth by one level.
func (w *Writer) Dedent() {
	if w.depth > 0 {
		w.depth--
	}
}

// Depth returns the current indentation depth.
func (w *Writer) Depth() int { return w.depth }

// Unit returns the indent unit.
func (w *Writer) Unit() string { return w.unit }

// Block emits open (when non-empty), runs body one level deeper, then
// dedents and emits close (when non-empty). The close side runs on every
// exit path from body, including a panic.
func (w *Writer) Block(open, close string, body func()) {
	s := w.Begin(open, close)
	defer s.End()
	body()
}

// Scope is an open block returned by Begin.
type Scope struct {
	w      *Writer
	close  string
	closed bool
}

// Begin emits open (when non-empty) and indents. The returned scope must be
// ended, typically with defer.
func (w *Writer) Begin(open, close string) *Scope {
	if open != "" {
		w.Line(open)
	}
	w.Indent()
	return &Scope{w: w, close: close}
}

// End dedents and emits the close text. Calling End more than once has no
// further effect.
func (s *Scope) End() {
	if s.closed {
		return
	}
	s.closed = true
	s.w.Dedent()
	if s.close != "" {
		s.w.Line(s.close)
	}
}

// String renders all lines joined by newlines, with a final newline.
func (w *Writer) String() string {
	if len(w.lines) == 0 {
		return ""
	}
	return strings.Join(w.lines, "\n") + "\n"
}

// Artifact wraps the rendered text as an artifact with extension ext.
func (w *Writer) Artifact(ext string) Artifact {
	return Artifact{Ext: ext, Content: w.String()}
}
