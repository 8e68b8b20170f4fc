// Package diagnostics defines Baila diagnostic types for lex, parse, check
// and runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/baila-lang/baila/pkg/ast"
	"github.com/fatih/color"
)

// Diagnostic code constants.
const (
	SyntaxError         = "SyntaxError"
	NotImplementedError = "NotImplementedError"
	TypeError           = "TypeError"
	ReferenceError      = "ReferenceError"
	RedefinitionError   = "RedefinitionError"
	ArgumentError       = "ArgumentError"
	ArithmeticError     = "ArithmeticError"
	ConstError          = "ConstError"
	OverloadError       = "OverloadError"
	CancelledError      = "CancelledError"
	LimitError          = "LimitError"
)

// HintIncomplete marks diagnostics raised because the input ended early.
// Interactive hosts use it to keep reading lines.
const HintIncomplete = "input ended before the construct was closed"

// Diagnostic represents a lex, parse, check, or runtime diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// Incomplete reports whether any diagnostic was caused by input ending
// early.
func Incomplete(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Hint == HintIncomplete {
			return true
		}
	}
	return false
}

// File returns the file name of the diagnostic's span, if any.
func (d Diagnostic) File() string {
	if d.Span == nil {
		return ""
	}
	return d.Span.File
}

func (d Diagnostic) String() string {
	return d.Code + ": " + d.Message
}

// LineSpan is the part of one source line covered by a diagnostic.
// StartColumn is 1-based.
type LineSpan struct {
	FullLineText string `json:"fullLineText"`
	LineNumber   int    `json:"lineNumber"`
	StartColumn  int    `json:"startColumn"`
	Length       int    `json:"length"`
}

// LineSpans splits the diagnostic's span into per-line pieces of source.
// The first line runs from the start column to the end of the line, middle
// lines are covered in full, and the last line runs from column 1 to the end
// column.
func (d Diagnostic) LineSpans(source string) []LineSpan {
	if d.Span == nil || d.Span.StartLine < 1 {
		return nil
	}
	lines := strings.Split(source, "\n")
	s := d.Span
	var out []LineSpan
	for n := s.StartLine; n <= s.StartLine+s.LineCount()-1; n++ {
		if n-1 >= len(lines) {
			break
		}
		text := strings.TrimRight(lines[n-1], "\r")
		width := len([]rune(text))
		ls := LineSpan{FullLineText: text, LineNumber: n, StartColumn: 1}
		switch {
		case s.LineCount() == 1:
			ls.StartColumn = s.StartCol
			ls.Length = s.Length()
		case n == s.StartLine:
			ls.StartColumn = s.StartCol
			ls.Length = width - s.StartCol + 1
		case n == s.EndLine:
			ls.Length = s.EndCol - 1
		default:
			ls.Length = width
		}
		if ls.Length < 1 {
			ls.Length = 1
		}
		out = append(out, ls)
	}
	return out
}

var (
	codeColor  = color.New(color.FgRed, color.Bold).SprintFunc()
	caretColor = color.New(color.FgRed).SprintFunc()
	gutter     = color.New(color.FgBlue, color.Bold).SprintFunc()
	hintColor  = color.New(color.FgCyan).SprintFunc()
)

// Render formats the diagnostic as `code: message` followed by the offending
// source lines with a caret underline. Colour follows color.NoColor.
func (d Diagnostic) Render(source string) string {
	var b strings.Builder
	b.WriteString(codeColor(d.Code))
	b.WriteString(": ")
	b.WriteString(d.Message)
	if d.Span != nil {
		fmt.Fprintf(&b, "\n  --> %s", d.Span.String())
	}
	spans := d.LineSpans(source)
	pad := 0
	for _, ls := range spans {
		if w := len(fmt.Sprint(ls.LineNumber)); w > pad {
			pad = w
		}
	}
	for _, ls := range spans {
		num := fmt.Sprintf("%*d", pad, ls.LineNumber)
		fmt.Fprintf(&b, "\n%s %s", gutter(num+" |"), ls.FullLineText)
		fmt.Fprintf(&b, "\n%s %s%s", gutter(strings.Repeat(" ", pad)+" |"),
			strings.Repeat(" ", ls.StartColumn-1), caretColor(strings.Repeat("^", ls.Length)))
	}
	if d.Hint != "" {
		fmt.Fprintf(&b, "\n  %s %s", hintColor("hint:"), d.Hint)
	}
	return b.String()
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		loc = d.Span.String()
	}
	out := fmt.Sprintf("%s: %s\n  --> %s", d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}

// RenderAll renders every diagnostic against source, separated by blank lines.
func RenderAll(diags []Diagnostic, source string) string {
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = d.Render(source)
	}
	return strings.Join(parts, "\n\n")
}
