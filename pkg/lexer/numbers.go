package lexer

import "strings"

func isRadixDigit(ch rune, base int) bool {
	switch base {
	case 2:
		return ch == '0' || ch == '1'
	case 8:
		return ch >= '0' && ch <= '7'
	case 16:
		return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
	}
	return isDigit(ch)
}

func radixBase(ch rune) int {
	switch ch {
	case 'b', 'B':
		return 2
	case 'o', 'O':
		return 8
	case 'x', 'X':
		return 16
	}
	return 0
}

// scanNumber lexes decimal and radix literals. The token value has `_`
// separators and any type suffix removed; radix literals keep their prefix.
func (l *Lexer) scanNumber() {
	s := l.s
	startLine, startCol, startPos := s.line, s.col, s.pos

	if s.peek() == '0' {
		if base := radixBase(s.peekAt(1)); base != 0 {
			s.advanceN(2)
			digitsStart := s.pos
			for !s.atEnd() && (isRadixDigit(s.peek(), base) || s.peek() == '_') {
				s.advance()
			}
			digits := strings.ReplaceAll(s.slice(digitsStart), "_", "")
			if digits == "" {
				l.errorAt(s.span(startLine, startCol), "missing digits after radix prefix '%s'", s.slice(startPos))
				digits = "0"
			}
			prefix := strings.ToLower(string(s.source[startPos : startPos+2]))
			l.emit(NewValueToken(TokIntLit, prefix+digits, s.span(startLine, startCol)))
			return
		}
	}

	typ := TokIntLit
	scanDigits := func() {
		for !s.atEnd() && (isDigit(s.peek()) || s.peek() == '_') {
			s.advance()
		}
	}
	scanDigits()
	text := s.slice(startPos)

	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		typ = TokFloatLit
		fracStart := s.pos
		s.advance()
		scanDigits()
		text += s.slice(fracStart)

		for s.peek() == '.' && isDigit(s.peekAt(1)) {
			extraLine, extraCol := s.line, s.col
			s.advance()
			scanDigits()
			l.errorAt(s.span(extraLine, extraCol), "unexpected second '.' in number")
		}
	}

	if !isIdentPart(s.peekAt(1)) {
		switch s.peek() {
		case 'f':
			s.advance()
			typ = TokFloatLit
		case 'c':
			s.advance()
			typ = TokDecimalLit
		}
	}

	l.emit(NewValueToken(typ, strings.ReplaceAll(text, "_", ""), s.span(startLine, startCol)))
}
