package lexer

import "github.com/baila-lang/baila/pkg/ast"

// scanner walks the source one rune at a time and tracks 1-based line and
// column positions.
type scanner struct {
	source   []rune
	filename string
	pos      int
	line     int
	col      int
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   []rune(source),
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() rune {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) rune {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() rune {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) advanceN(n int) {
	for i := 0; i < n && !s.atEnd(); i++ {
		s.advance()
	}
}

// text returns up to n runes starting at the current position.
func (s *scanner) text(n int) string {
	end := s.pos + n
	if end > len(s.source) {
		end = len(s.source)
	}
	return string(s.source[s.pos:end])
}

// slice returns the source from start to the current position.
func (s *scanner) slice(start int) string {
	return string(s.source[start:s.pos])
}

func (s *scanner) span(startLine, startCol int) ast.Span {
	return ast.Span{
		File:      s.filename,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}
