// Package output formats human-readable CLI results: status lines, aligned
// key/value blocks and score tables.
package output

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Writer provides formatted output for CLI.
// Errors from writing are ignored; this is console output.
type Writer struct {
	out io.Writer
}

// New creates a new output Writer.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints a status message with an icon. An empty icon indents.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Status("✅", fmt.Sprintf(format, args...))
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Status("⚠️ ", fmt.Sprintf(format, args...))
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Status("❌", fmt.Sprintf(format, args...))
}

// Field is one line of a key/value block.
type Field struct {
	Key   string
	Value any
}

// Fields prints keys padded to a common width:
//
//	document:  42
//	terms:     7
func (w *Writer) Fields(fields ...Field) {
	width := 0
	for _, f := range fields {
		if n := utf8.RuneCountInString(f.Key); n > width {
			width = n
		}
	}
	for _, f := range fields {
		pad := strings.Repeat(" ", width-utf8.RuneCountInString(f.Key))
		_, _ = fmt.Fprintf(w.out, "%s:%s  %v\n", f.Key, pad, f.Value)
	}
}

// ScoreRow is one term of a score table.
type ScoreRow struct {
	Term  string
	Score float64
}

// Scores prints a two-column term/score table in the given order, scores
// with six decimals. An empty table prints "(no terms)".
func (w *Writer) Scores(rows []ScoreRow) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w.out, "(no terms)")
		return
	}

	width := len("TERM")
	for _, r := range rows {
		if n := utf8.RuneCountInString(r.Term); n > width {
			width = n
		}
	}

	_, _ = fmt.Fprintf(w.out, "%s%s  %s\n", "TERM", strings.Repeat(" ", width-4), "SCORE")
	for _, r := range rows {
		pad := strings.Repeat(" ", width-utf8.RuneCountInString(r.Term))
		_, _ = fmt.Fprintf(w.out, "%s%s  %.6f\n", r.Term, pad, r.Score)
	}
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
