// Package parser implements the Baila recursive-descent parser.
package parser

import (
	"fmt"

	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/cancel"
	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/lexer"
	"github.com/edwingeng/deque"
)

type options struct {
	cancel *cancel.Token
}

// Option configures Parse and ParseTokens.
type Option func(*options)

// WithCancel makes lexing and parsing poll tok.
func WithCancel(tok *cancel.Token) Option {
	return func(o *options) { o.cancel = tok }
}

type parser struct {
	tokens []lexer.Token
	pos    int
	diags  []diagnostics.Diagnostic

	// marks holds saved positions for speculative lookahead.
	marks deque.Deque

	cancel    *cancel.Token
	cancelled bool

	funcDepth int
	nesting   int // open ( while parsing
	depth     int // recursion guard
}

const maxDepth = 512

// enter bumps the recursion depth, reporting an error once it exceeds
// maxDepth. Callers must call leave when enter returns true.
func (p *parser) enter() bool {
	p.depth++
	if p.depth > maxDepth {
		p.depth--
		tok := p.current()
		p.addError("program is nested too deeply", &tok.Span)
		return false
	}
	return true
}

func (p *parser) leave() {
	p.depth--
}

// Parse tokenizes source and parses it into an AST. The program is nil
// whenever lexing or parsing reported a diagnostic.
func Parse(source, filename string, opts ...Option) (*ast.Program, []diagnostics.Diagnostic) {
	o := collect(opts)
	tokens, lexDiags := lexer.New(source, filename, lexer.WithCancel(o.cancel)).Tokenize()
	if o.cancel.Cancelled() {
		return nil, lexDiags
	}
	prog, diags := parseTokens(tokens, o)
	if all := append(lexDiags, diags...); len(all) > 0 {
		return nil, all
	}
	return prog, nil
}

// ParseTokens parses an already lexed token stream. Trivia tokens are
// ignored and a missing EOF sentinel is supplied.
func ParseTokens(tokens []lexer.Token, opts ...Option) (*ast.Program, []diagnostics.Diagnostic) {
	return parseTokens(tokens, collect(opts))
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func parseTokens(tokens []lexer.Token, o options) (*ast.Program, []diagnostics.Diagnostic) {
	filtered := make([]lexer.Token, 0, len(tokens)+1)
	for _, tok := range tokens {
		if tok.Type == lexer.TokWhitespace || tok.Type == lexer.TokComment {
			continue
		}
		filtered = append(filtered, tok)
	}
	if n := len(filtered); n == 0 || filtered[n-1].Type != lexer.TokEOF {
		var span ast.Span
		if n > 0 {
			last := filtered[n-1].Span
			span = ast.Span{File: last.File, StartLine: last.EndLine, StartCol: last.EndCol, EndLine: last.EndLine, EndCol: last.EndCol}
		}
		filtered = append(filtered, lexer.NewToken(lexer.TokEOF, span))
	}

	p := &parser{tokens: filtered, marks: deque.NewDeque(), cancel: o.cancel}
	prog := p.parseProgram()
	if len(p.diags) > 0 {
		return nil, p.diags
	}
	return prog, nil
}

func (p *parser) parseProgram() *ast.Program {
	start := p.current().Span
	stmts := p.parseStatementList(false)
	return &ast.Program{Span: p.spanFromTo(start, p.current().Span), Statements: stmts}
}

// --- Token cursor ---

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) peekAt(offset int) lexer.TokenType {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return lexer.TokEOF
	}
	return p.tokens[idx].Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

// previous returns the most recently consumed token.
func (p *parser) previous() lexer.Token {
	if p.pos == 0 {
		return p.current()
	}
	return p.tokens[p.pos-1]
}

func (p *parser) expect(typ lexer.TokenType) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		p.addError(fmt.Sprintf("expected %s, got '%s'", typ, tok.Text()), &tok.Span)
		return tok, false
	}
	return p.advance(), true
}

// expectWord consumes an identifier with the given text. Contextual
// keywords such as `to` and `step` are matched this way.
func (p *parser) expectWord(word string) bool {
	tok := p.current()
	if tok.Type != lexer.TokIdent || tok.Value != word {
		p.addError(fmt.Sprintf("expected '%s', got '%s'", word, tok.Text()), &tok.Span)
		return false
	}
	p.advance()
	return true
}

func (p *parser) atWord(word string) bool {
	tok := p.current()
	return tok.Type == lexer.TokIdent && tok.Value == word
}

func (p *parser) skipEOL() {
	for p.peek() == lexer.TokEOL {
		p.advance()
	}
}

// --- Position stack ---

func (p *parser) mark() {
	p.marks.PushBack(p.pos)
}

func (p *parser) reset() {
	p.pos = p.marks.PopBack().(int)
}

func (p *parser) commit() {
	p.marks.PopBack()
}

// --- Diagnostics ---

// atInputEnd reports whether the cursor sits at the end of the input: the
// EOF sentinel, or the implicit final terminator while a group is open.
func (p *parser) atInputEnd() bool {
	if p.peek() == lexer.TokEOF {
		return true
	}
	return p.nesting > 0 && p.peek() == lexer.TokEOL && p.peekAt(1) == lexer.TokEOF
}

func (p *parser) addError(msg string, span *ast.Span) {
	hint := ""
	if p.atInputEnd() {
		hint = diagnostics.HintIncomplete
	}
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.SyntaxError, msg, span, hint))
}

func (p *parser) notImplemented(span ast.Span, format string, args ...any) {
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.NotImplementedError, fmt.Sprintf(format, args...), &span, ""))
}

// poll checks for cancellation. Once cancelled, one diagnostic is recorded
// and every later poll fails.
func (p *parser) poll() bool {
	if p.cancelled {
		return false
	}
	if err := p.cancel.Check(p.current().Span); err != nil {
		p.cancelled = true
		p.diags = append(p.diags, diagnostics.FromError(err)...)
		return false
	}
	return true
}

// synchronize skips to the end of the broken statement: past the next
// terminator, or up to a closing brace or EOF.
func (p *parser) synchronize() {
	for {
		switch p.peek() {
		case lexer.TokEOF, lexer.TokRBrace:
			return
		case lexer.TokEOL, lexer.TokSemicolon:
			p.advance()
			return
		}
		p.advance()
	}
}

// --- Spans ---

func (p *parser) spanFrom(start ast.Span) ast.Span {
	return p.spanFromTo(start, p.previous().Span)
}

func (p *parser) spanFromTo(start, end ast.Span) ast.Span {
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}
