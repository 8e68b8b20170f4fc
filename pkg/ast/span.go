package ast

import "fmt"

// Span represents a source location range. Lines and columns are 1-based;
// EndCol is exclusive.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// LineCount returns the number of source lines the span touches.
func (s Span) LineCount() int {
	if s.EndLine < s.StartLine {
		return 1
	}
	return s.EndLine - s.StartLine + 1
}

// Length returns the span width in columns on its last line. For a
// single-line span this is the number of characters covered.
func (s Span) Length() int {
	if s.LineCount() == 1 {
		if n := s.EndCol - s.StartCol; n > 0 {
			return n
		}
		return 0
	}
	return s.EndCol - 1
}

// IsZero reports whether the span carries no position.
func (s Span) IsZero() bool {
	return s.StartLine == 0 && s.StartCol == 0 && s.EndLine == 0 && s.EndCol == 0
}

// Before reports whether s starts strictly before o.
func (s Span) Before(o Span) bool {
	if s.StartLine != o.StartLine {
		return s.StartLine < o.StartLine
	}
	return s.StartCol < o.StartCol
}

// Merge returns the smallest span covering both s and o.
func (s Span) Merge(o Span) Span {
	if s.IsZero() {
		return o
	}
	if o.IsZero() {
		return s
	}
	out := s
	if o.Before(s) {
		out.StartLine, out.StartCol = o.StartLine, o.StartCol
	}
	if o.EndLine > s.EndLine || (o.EndLine == s.EndLine && o.EndCol > s.EndCol) {
		out.EndLine, out.EndCol = o.EndLine, o.EndCol
	}
	if out.File == "" {
		out.File = o.File
	}
	return out
}

// String renders the span start as file:line:col.
func (s Span) String() string {
	if s.File == "" {
		return fmt.Sprintf("%d:%d", s.StartLine, s.StartCol)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.StartLine, s.StartCol)
}
