package lexer

import "github.com/baila-lang/baila/pkg/ast"

// remapSpan moves a span produced by a nested lexer into the coordinates
// of the enclosing source. line and col give the enclosing position of the
// nested source's first character. Only positions on the nested source's
// first line are shifted horizontally.
func remapSpan(span ast.Span, file string, line, col int) ast.Span {
	if span.StartLine == 1 {
		span.StartCol += col - 1
	}
	if span.EndLine == 1 {
		span.EndCol += col - 1
	}
	span.StartLine += line - 1
	span.EndLine += line - 1
	span.File = file
	return span
}
