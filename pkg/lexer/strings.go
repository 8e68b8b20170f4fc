package lexer

import (
	"strings"

	"github.com/baila-lang/baila/pkg/ast"
)

var escapes = map[rune]rune{
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'b':  '\b',
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'0':  0,
	'$':  '$',
}

// stringPart is one piece of a string literal: fixed text or the tokens of
// an embedded expression.
type stringPart struct {
	text   string
	span   ast.Span
	tokens []Token
}

func (p stringPart) fixed() bool { return p.tokens == nil }

// scanString lexes a quoted string. A string without interpolation becomes
// one TokStringLit; otherwise its pieces are emitted between
// TokInterpolationStart and TokInterpolationEnd, separated by
// TokInterpolationSeparator. Empty fixed pieces are omitted.
func (l *Lexer) scanString(quote rune) {
	s := l.s
	startLine, startCol := s.line, s.col
	s.advance() // consume opening quote

	var (
		parts        []stringPart
		buf          strings.Builder
		interpolated bool
	)
	bufLine, bufCol := s.line, s.col
	flush := func() {
		if buf.Len() > 0 {
			parts = append(parts, stringPart{text: buf.String(), span: s.span(bufLine, bufCol)})
			buf.Reset()
		}
	}

loop:
	for {
		if s.atEnd() || s.peek() == '\n' {
			l.errorAt(s.span(startLine, startCol), "unterminated string literal")
			break
		}
		ch := s.peek()
		switch {
		case ch == quote:
			flush()
			closeLine, closeCol := s.line, s.col
			s.advance()
			if interpolated {
				l.emitInterpolation(parts, startLine, startCol, s.span(closeLine, closeCol))
				return
			}
			break loop
		case ch == '\\':
			l.scanEscape(&buf)
		case ch == '$' && s.peekAt(1) == '{':
			flush()
			interpolated = true
			part, ok := l.scanInterpolation()
			if !ok {
				break loop
			}
			if len(part.tokens) > 0 {
				parts = append(parts, part)
			}
			bufLine, bufCol = s.line, s.col
		case ch == '$' && isIdentStart(s.peekAt(1)):
			flush()
			interpolated = true
			s.advance() // consume $
			idLine, idCol, idPos := s.line, s.col, s.pos
			for !s.atEnd() && isIdentPart(s.peek()) {
				s.advance()
			}
			name := s.slice(idPos)
			var tok Token
			if typ, ok := keywords[name]; ok {
				tok = NewToken(typ, s.span(idLine, idCol))
			} else {
				tok = NewValueToken(TokIdent, name, s.span(idLine, idCol))
			}
			parts = append(parts, stringPart{tokens: []Token{tok}})
			bufLine, bufCol = s.line, s.col
		default:
			buf.WriteRune(s.advance())
		}
	}

	flush()
	if interpolated {
		end := s.span(s.line, s.col)
		l.emitInterpolation(parts, startLine, startCol, end)
		return
	}
	var value strings.Builder
	for _, p := range parts {
		value.WriteString(p.text)
	}
	l.emit(NewValueToken(TokStringLit, value.String(), s.span(startLine, startCol)))
}

func (l *Lexer) emitInterpolation(parts []stringPart, startLine, startCol int, closing ast.Span) {
	s := l.s
	l.emit(NewToken(TokInterpolationStart, ast.Span{
		File: s.filename, StartLine: startLine, StartCol: startCol, EndLine: startLine, EndCol: startCol + 1,
	}))
	for i, p := range parts {
		if i > 0 {
			l.emit(NewToken(TokInterpolationSeparator, ast.Span{
				File: s.filename, StartLine: p.startLine(), StartCol: p.startCol(), EndLine: p.startLine(), EndCol: p.startCol(),
			}))
		}
		if p.fixed() {
			l.emit(NewValueToken(TokStringLit, p.text, p.span))
			continue
		}
		// Embedded tokens are spliced without touching bracket depth.
		l.tokens = append(l.tokens, p.tokens...)
	}
	l.emit(NewToken(TokInterpolationEnd, closing))
}

func (p stringPart) startLine() int {
	if p.fixed() {
		return p.span.StartLine
	}
	return p.tokens[0].Span.StartLine
}

func (p stringPart) startCol() int {
	if p.fixed() {
		return p.span.StartCol
	}
	return p.tokens[0].Span.StartCol
}

func (l *Lexer) scanEscape(buf *strings.Builder) {
	s := l.s
	escLine, escCol := s.line, s.col
	s.advance() // consume backslash
	if s.atEnd() || s.peek() == '\n' {
		return
	}
	e := s.advance()
	if r, ok := escapes[e]; ok {
		buf.WriteRune(r)
		return
	}
	l.errorAt(s.span(escLine, escCol), "unknown escape sequence '\\%c'", e)
	buf.WriteRune(e)
}

// scanInterpolation lexes `${ ... }`. The text up to the balancing brace
// is tokenized by a nested lexer and its spans are moved back into this
// source. It returns false when the braces never balance.
func (l *Lexer) scanInterpolation() (stringPart, bool) {
	s := l.s
	openLine, openCol := s.line, s.col
	s.advanceN(2) // consume ${
	innerLine, innerCol, innerPos := s.line, s.col, s.pos

	depth := 1
	for {
		if s.atEnd() || s.peek() == '\n' {
			l.errorAt(s.span(openLine, openCol), "unbalanced braces in string interpolation")
			return stringPart{}, false
		}
		ch := s.peek()
		if ch == '"' || ch == '\'' {
			s.advance()
			for !s.atEnd() && s.peek() != ch && s.peek() != '\n' {
				if s.peek() == '\\' {
					s.advance()
					if s.atEnd() || s.peek() == '\n' {
						break
					}
				}
				s.advance()
			}
			if s.peek() == ch {
				s.advance()
			}
			continue
		}
		if ch == '{' {
			depth++
		} else if ch == '}' {
			depth--
			if depth == 0 {
				break
			}
		}
		s.advance()
	}
	text := s.slice(innerPos)
	s.advance() // consume }

	if strings.TrimSpace(text) == "" {
		l.errorAt(s.span(openLine, openCol), "empty string interpolation")
		return stringPart{}, true
	}

	sub := New(text, s.filename, WithMode(l.mode.nested()), WithCancel(l.cancel))
	tokens, diags := sub.Tokenize()
	for i := range tokens {
		tokens[i].Span = remapSpan(tokens[i].Span, s.filename, innerLine, innerCol)
	}
	for _, d := range diags {
		if d.Span != nil {
			span := remapSpan(*d.Span, s.filename, innerLine, innerCol)
			d.Span = &span
		}
		l.diags = append(l.diags, d)
	}
	if tokens == nil {
		tokens = []Token{}
	}
	return stringPart{tokens: tokens}, true
}

// scanVerbatimString lexes @"...": no escapes other than "" for a quote,
// no interpolation, and newlines are kept.
func (l *Lexer) scanVerbatimString() {
	s := l.s
	startLine, startCol := s.line, s.col
	s.advanceN(2) // consume @"

	var buf strings.Builder
	for {
		if s.atEnd() {
			l.incompleteAt(s.span(startLine, startCol), "unterminated verbatim string literal")
			break
		}
		ch := s.advance()
		if ch == '"' {
			if s.peek() == '"' {
				s.advance()
				buf.WriteRune('"')
				continue
			}
			break
		}
		buf.WriteRune(ch)
	}
	l.emit(NewValueToken(TokStringLit, buf.String(), s.span(startLine, startCol)))
}
