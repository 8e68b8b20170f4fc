// Package lexer implements the Baila language tokenizer.
package lexer

import (
	"fmt"
	"unicode"

	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/cancel"
	"github.com/baila-lang/baila/pkg/diagnostics"
)

// Mode selects how much the lexer preserves and appends.
type Mode int

const (
	// Regular drops trivia and appends a terminator and EOF.
	Regular Mode = iota
	// InterpolatedString lexes the body of `${...}`; no EOL or EOF is appended.
	InterpolatedString
	// Highlighting keeps whitespace and comments as tokens.
	Highlighting
	// HighlightingInterpolatedString is Highlighting for embedded expressions.
	HighlightingInterpolatedString
)

func (m Mode) highlighting() bool {
	return m == Highlighting || m == HighlightingInterpolatedString
}

func (m Mode) embedded() bool {
	return m == InterpolatedString || m == HighlightingInterpolatedString
}

func (m Mode) nested() Mode {
	if m.highlighting() {
		return HighlightingInterpolatedString
	}
	return InterpolatedString
}

// lexState decides how an ambiguous character such as '/' is read.
type lexState int

const (
	stateValue lexState = iota
	stateOperator
)

// Option configures a Lexer.
type Option func(*Lexer)

// WithMode sets the lexing mode.
func WithMode(m Mode) Option {
	return func(l *Lexer) { l.mode = m }
}

// WithCancel sets the cancellation token polled before each token.
func WithCancel(tok *cancel.Token) Option {
	return func(l *Lexer) { l.cancel = tok }
}

// Lexer turns Baila source text into tokens.
type Lexer struct {
	s      *scanner
	mode   Mode
	cancel *cancel.Token

	state   lexState
	depth   int // open ( and [
	last    TokenType
	started bool

	tokens []Token
	diags  []diagnostics.Diagnostic
}

// New creates a lexer over source.
func New(source, filename string, opts ...Option) *Lexer {
	l := &Lexer{s: newScanner(source, filename)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tokenize breaks source code into a slice of tokens. Malformed input is
// reported through diagnostics; lexing always runs to the end of input.
func Tokenize(source, filename string) ([]Token, []diagnostics.Diagnostic) {
	return New(source, filename).Tokenize()
}

// Tokenize runs the lexer to completion.
func (l *Lexer) Tokenize() ([]Token, []diagnostics.Diagnostic) {
	for !l.s.atEnd() {
		if err := l.cancel.Check(l.s.span(l.s.line, l.s.col)); err != nil {
			l.diags = append(l.diags, diagnostics.FromError(err)...)
			return l.tokens, l.diags
		}
		l.next()
	}
	if !l.mode.embedded() {
		end := l.s.span(l.s.line, l.s.col)
		if l.started && l.last != TokEOL && l.last != TokSemicolon {
			l.emit(NewToken(TokEOL, end))
		}
		l.emit(NewToken(TokEOF, end))
	}
	return l.tokens, l.diags
}

// emit appends a token and updates bracket depth and lexer state.
func (l *Lexer) emit(tok Token) {
	l.tokens = append(l.tokens, tok)
	if tok.Type == TokWhitespace || tok.Type == TokComment {
		return
	}
	l.started = true
	l.last = tok.Type
	switch tok.Type {
	case TokLParen, TokLBracket:
		l.depth++
	case TokRParen, TokRBracket:
		if l.depth > 0 {
			l.depth--
		}
	}
	switch tok.Type {
	case TokIdent, TokIntLit, TokFloatLit, TokDecimalLit, TokStringLit, TokRegexLit,
		TokTrue, TokFalse, TokRParen, TokRBracket, TokInterpolationEnd:
		l.state = stateOperator
	default:
		l.state = stateValue
	}
}

func (l *Lexer) errorAt(span ast.Span, format string, args ...any) {
	l.diags = append(l.diags, diagnostics.MakeDiag(diagnostics.SyntaxError, fmt.Sprintf(format, args...), &span, ""))
}

// incompleteAt records an error caused by the input ending inside a
// construct that may span lines.
func (l *Lexer) incompleteAt(span ast.Span, format string, args ...any) {
	l.diags = append(l.diags, diagnostics.MakeDiag(diagnostics.SyntaxError, fmt.Sprintf(format, args...), &span, diagnostics.HintIncomplete))
}

func (l *Lexer) next() {
	s := l.s
	startLine, startCol := s.line, s.col
	ch := s.peek()

	switch {
	case ch == '\n':
		s.advance()
		l.newline(ast.Span{File: s.filename, StartLine: startLine, StartCol: startCol, EndLine: startLine, EndCol: startCol + 1})
	case ch == ' ' || ch == '\t' || ch == '\r':
		l.scanWhitespace()
	case ch == '/' && s.peekAt(1) == '/':
		l.scanLineComment()
	case ch == '/' && s.peekAt(1) == '*':
		l.scanBlockComment()
	case isDigit(ch):
		l.scanNumber()
	case isIdentStart(ch):
		l.scanIdentOrKeyword()
	case ch == '"' || ch == '\'':
		l.scanString(ch)
	case ch == '@' && s.peekAt(1) == '"':
		l.scanVerbatimString()
	case ch == '/' && l.state == stateValue:
		l.scanRegex()
	case ch == '.' && s.peekAt(1) == '.' && s.peekAt(2) == '.':
		s.advance()
		s.advance()
		s.advance()
		l.emit(NewToken(TokEllipsis, s.span(startLine, startCol)))
	default:
		if typ, ok := punctuation[string(ch)]; ok {
			s.advance()
			l.emit(NewToken(typ, s.span(startLine, startCol)))
			return
		}
		if l.state == stateValue {
			if typ, ok := prefixOperators[ch]; ok {
				s.advance()
				l.emit(NewToken(typ, s.span(startLine, startCol)))
				return
			}
		} else if ch == '!' || ch == '?' {
			if typ, ok := s.scanNegatedKeyword(); ok {
				s.advanceN(3)
				l.emit(NewToken(typ, s.span(startLine, startCol)))
				return
			}
		}
		if isOperatorStart(ch) {
			typ, n, _ := s.scanOperator()
			s.advanceN(n)
			l.emit(NewToken(typ, s.span(startLine, startCol)))
			return
		}
		s.advance()
		l.errorAt(s.span(startLine, startCol), "unexpected character '%c'", ch)
	}
}

// newline emits an end-of-line token unless a terminator would be
// redundant: inside parentheses or brackets, right after an opening
// bracket, after another end of line, or before any token.
func (l *Lexer) newline(span ast.Span) {
	suppressed := l.depth > 0 || !l.started
	switch l.last {
	case TokLParen, TokLBracket, TokLBrace, TokEOL:
		suppressed = true
	}
	if !suppressed {
		l.emit(NewToken(TokEOL, span))
		return
	}
	if l.mode.highlighting() {
		l.tokens = append(l.tokens, NewValueToken(TokWhitespace, "\n", span))
	}
}

func (l *Lexer) scanWhitespace() {
	s := l.s
	startLine, startCol, startPos := s.line, s.col, s.pos
	for !s.atEnd() {
		ch := s.peek()
		if ch != ' ' && ch != '\t' && ch != '\r' {
			break
		}
		s.advance()
	}
	if l.mode.highlighting() {
		l.emit(NewValueToken(TokWhitespace, s.slice(startPos), s.span(startLine, startCol)))
	}
}

func (l *Lexer) scanLineComment() {
	s := l.s
	startLine, startCol, startPos := s.line, s.col, s.pos
	for !s.atEnd() && s.peek() != '\n' {
		s.advance()
	}
	if l.mode.highlighting() {
		l.emit(NewValueToken(TokComment, s.slice(startPos), s.span(startLine, startCol)))
	}
}

func (l *Lexer) scanBlockComment() {
	s := l.s
	startLine, startCol, startPos := s.line, s.col, s.pos
	s.advanceN(2) // consume /*
	closed := false
	for !s.atEnd() {
		if s.peek() == '*' && s.peekAt(1) == '/' {
			s.advanceN(2)
			closed = true
			break
		}
		s.advance()
	}
	if !closed {
		l.incompleteAt(s.span(startLine, startCol), "unterminated block comment")
	}
	if l.mode.highlighting() {
		l.emit(NewValueToken(TokComment, s.slice(startPos), s.span(startLine, startCol)))
	}
}

func (l *Lexer) scanIdentOrKeyword() {
	s := l.s
	startLine, startCol, startPos := s.line, s.col, s.pos
	for !s.atEnd() && isIdentPart(s.peek()) {
		s.advance()
	}
	text := s.slice(startPos)
	if typ, ok := keywords[text]; ok {
		l.emit(NewToken(typ, s.span(startLine, startCol)))
		return
	}
	l.emit(NewValueToken(TokIdent, text, s.span(startLine, startCol)))
}

func (l *Lexer) scanRegex() {
	s := l.s
	startLine, startCol, startPos := s.line, s.col, s.pos
	s.advance() // consume opening /
	for {
		if s.atEnd() || s.peek() == '\n' {
			l.errorAt(s.span(startLine, startCol), "unterminated regex literal")
			return
		}
		ch := s.advance()
		if ch == '\\' && !s.atEnd() && s.peek() != '\n' {
			s.advance()
			continue
		}
		if ch == '/' {
			break
		}
	}
	for !s.atEnd() && unicode.IsLetter(s.peek()) {
		s.advance()
	}
	l.emit(NewValueToken(TokRegexLit, s.slice(startPos), s.span(startLine, startCol)))
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch)
}
