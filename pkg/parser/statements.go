package parser

import (
	"fmt"

	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/lexer"
)

// parseStatementList parses statements up to EOF, or up to the closing
// brace when inBlock is set. Broken statements are skipped so later ones
// can still report diagnostics.
func (p *parser) parseStatementList(inBlock bool) []ast.Stmt {
	var stmts []ast.Stmt
	for {
		p.skipEOL()
		switch p.peek() {
		case lexer.TokEOF:
			return stmts
		case lexer.TokRBrace:
			if inBlock {
				return stmts
			}
			tok := p.advance()
			p.addError("unexpected '}'", &tok.Span)
			continue
		}
		if !p.poll() {
			return stmts
		}

		stmt := p.parseStatement()
		if p.cancelled {
			return stmts
		}
		if stmt == nil {
			p.synchronize()
			continue
		}
		stmts = append(stmts, stmt)
		if _, ok := stmt.(*ast.NoOp); ok {
			continue
		}
		p.expectTerminator()
	}
}

// expectTerminator requires an end of line or `;` after a statement,
// unless the statement is followed by `}`, `else` or EOF.
func (p *parser) expectTerminator() {
	switch p.peek() {
	case lexer.TokEOL, lexer.TokSemicolon:
		p.advance()
	case lexer.TokRBrace, lexer.TokElse, lexer.TokEOF:
	default:
		tok := p.current()
		p.addError(fmt.Sprintf("expected end of statement, got '%s'", tok.Text()), &tok.Span)
		p.synchronize()
	}
}

func (p *parser) parseStatement() ast.Stmt {
	switch p.peek() {
	case lexer.TokIf:
		return p.parseIf()
	case lexer.TokWhile:
		return p.parseWhile()
	case lexer.TokDo:
		return p.parseDoWhile()
	case lexer.TokFor:
		return p.parseFor()
	case lexer.TokVar:
		return p.parseVar()
	case lexer.TokConst:
		return p.parseConst()
	case lexer.TokFunction:
		return p.parseFunction()
	case lexer.TokReturn:
		return p.parseReturn()
	case lexer.TokLBrace:
		if b := p.parseBlock(); b != nil {
			return b
		}
		return nil
	case lexer.TokSemicolon:
		tok := p.advance()
		return &ast.NoOp{Span: tok.Span}
	}

	start := p.current().Span
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	return &ast.ExprStmt{Span: p.spanFrom(start), Expr: expr}
}

func (p *parser) parseBlock() *ast.Block {
	if !p.enter() {
		return nil
	}
	defer p.leave()
	open, ok := p.expect(lexer.TokLBrace)
	if !ok {
		return nil
	}
	stmts := p.parseStatementList(true)
	if p.cancelled {
		return nil
	}
	if _, ok := p.expect(lexer.TokRBrace); !ok {
		return nil
	}
	return &ast.Block{Span: p.spanFrom(open.Span), Statements: stmts}
}

// parseIf parses `if cond { } [else if ... | else { }]`. Blank lines
// between the then-block and `else` are skipped speculatively and restored
// when no `else` follows.
func (p *parser) parseIf() ast.Stmt {
	start := p.advance() // consume 'if'
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	then := p.parseBlock()
	if then == nil {
		return nil
	}
	stmt := &ast.IfStmt{Cond: cond, Then: then}

	p.mark()
	p.skipEOL()
	if p.peek() != lexer.TokElse {
		p.reset()
		stmt.Span = p.spanFrom(start.Span)
		return stmt
	}
	p.commit()
	p.advance() // consume 'else'

	if p.peek() == lexer.TokIf {
		elseIf := p.parseIf()
		if elseIf == nil {
			return nil
		}
		stmt.Else = elseIf
	} else {
		block := p.parseBlock()
		if block == nil {
			return nil
		}
		stmt.Else = block
	}
	stmt.Span = p.spanFrom(start.Span)
	return stmt
}

func (p *parser) parseWhile() ast.Stmt {
	start := p.advance() // consume 'while'
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.WhileStmt{Span: p.spanFrom(start.Span), Cond: cond, Body: body}
}

func (p *parser) parseDoWhile() ast.Stmt {
	start := p.advance() // consume 'do'
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	p.skipEOL()
	if _, ok := p.expect(lexer.TokWhile); !ok {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	return &ast.DoWhileStmt{Span: p.spanFrom(start.Span), Body: body, Cond: cond}
}

// parseFor parses `for i = from to limit [step s] { }`.
func (p *parser) parseFor() ast.Stmt {
	start := p.advance() // consume 'for'
	name, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.TokEquals); !ok {
		return nil
	}
	from := p.parseOr()
	if from == nil {
		return nil
	}
	if !p.expectWord("to") {
		return nil
	}
	to := p.parseOr()
	if to == nil {
		return nil
	}
	var step ast.Expr
	if p.atWord("step") {
		p.advance()
		if step = p.parseOr(); step == nil {
			return nil
		}
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.ForStmt{
		Span:    p.spanFrom(start.Span),
		Var:     name.Value,
		VarSpan: name.Span,
		From:    from,
		To:      to,
		Step:    step,
		Body:    body,
	}
}

func (p *parser) parseVar() ast.Stmt {
	start := p.advance() // consume 'var'
	name, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	stmt := &ast.VarDefine{Name: name.Value}
	if p.peek() == lexer.TokColon {
		p.advance()
		if stmt.Type = p.parseType(); stmt.Type == nil {
			return nil
		}
	}
	if p.peek() == lexer.TokEquals {
		p.advance()
		if stmt.Value = p.parseExpression(); stmt.Value == nil {
			return nil
		}
	}
	stmt.Span = p.spanFrom(start.Span)

	switch {
	case stmt.Type == nil && stmt.Value == nil:
		p.addError(fmt.Sprintf("variable '%s' needs a type or an initial value", name.Value), &stmt.Span)
		return nil
	case stmt.Value == nil && stmt.Type.Nullable:
		p.notImplemented(stmt.Span, "nullable variables without an initial value are not implemented")
		return nil
	}
	return stmt
}

func (p *parser) parseConst() ast.Stmt {
	start := p.advance() // consume 'const'
	name, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	stmt := &ast.ConstDefine{Name: name.Value}
	if p.peek() == lexer.TokColon {
		p.advance()
		if stmt.Type = p.parseType(); stmt.Type == nil {
			return nil
		}
	}
	if _, ok := p.expect(lexer.TokEquals); !ok {
		return nil
	}
	if stmt.Value = p.parseExpression(); stmt.Value == nil {
		return nil
	}
	stmt.Span = p.spanFrom(start.Span)
	return stmt
}

// parseType parses `Name[<T, ...>][?]`.
func (p *parser) parseType() *ast.TypeRef {
	name, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	ref := &ast.TypeRef{Name: name.Value}
	if p.peek() == lexer.TokLt {
		p.advance()
		for {
			g := p.parseType()
			if g == nil {
				return nil
			}
			ref.Generics = append(ref.Generics, g)
			if p.peek() != lexer.TokComma {
				break
			}
			p.advance()
		}
		if _, ok := p.expect(lexer.TokGt); !ok {
			return nil
		}
	}
	if p.peek() == lexer.TokQuestion {
		p.advance()
		ref.Nullable = true
	}
	ref.Span = p.spanFrom(name.Span)
	return ref
}

// parseFunction parses `function name [(params)] [: Ret] { }`.
func (p *parser) parseFunction() ast.Stmt {
	start := p.advance() // consume 'function'
	name, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	fn := &ast.FunctionDefine{Name: name.Value, NameSpan: name.Span}

	if p.peek() == lexer.TokLParen {
		params, ok := p.parseParams()
		if !ok {
			return nil
		}
		fn.Params = params
	}
	if p.peek() == lexer.TokColon {
		p.advance()
		if fn.ReturnType = p.parseType(); fn.ReturnType == nil {
			return nil
		}
	}

	p.funcDepth++
	fn.Body = p.parseBlock()
	p.funcDepth--
	if fn.Body == nil {
		return nil
	}
	fn.Span = p.spanFrom(start.Span)

	if fn.ReturnType == nil {
		if returns := ast.CollectReturns(fn.Body); len(returns) > 1 {
			p.notImplemented(fn.NameSpan,
				"cannot infer the return type of '%s' from %d return statements; declare the return type", fn.Name, len(returns))
			return nil
		}
	}
	return fn
}

func (p *parser) parseParams() ([]*ast.Param, bool) {
	p.advance() // consume '('
	p.nesting++
	defer func() { p.nesting-- }()

	var params []*ast.Param
	for p.peek() != lexer.TokRParen {
		param := p.parseParam()
		if param == nil {
			return nil, false
		}
		params = append(params, param)
		if p.peek() != lexer.TokComma {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(lexer.TokRParen); !ok {
		return nil, false
	}
	return params, true
}

func (p *parser) parseParam() *ast.Param {
	name, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	param := &ast.Param{Name: name.Value}
	if p.peek() == lexer.TokColon {
		p.advance()
		if param.Type = p.parseType(); param.Type == nil {
			return nil
		}
		if p.peek() == lexer.TokEllipsis {
			tok := p.advance()
			p.notImplemented(p.spanFromTo(name.Span, tok.Span), "variadic parameters are not implemented for user functions")
			return nil
		}
	}
	if p.peek() == lexer.TokEquals {
		p.advance()
		if param.Default = p.parseExpression(); param.Default == nil {
			return nil
		}
	}
	param.Span = p.spanFrom(name.Span)
	return param
}

func (p *parser) parseReturn() ast.Stmt {
	start := p.advance() // consume 'return'
	stmt := &ast.ReturnStmt{}
	switch p.peek() {
	case lexer.TokEOL, lexer.TokSemicolon, lexer.TokRBrace, lexer.TokEOF:
	default:
		if stmt.Value = p.parseExpression(); stmt.Value == nil {
			return nil
		}
	}
	stmt.Span = p.spanFrom(start.Span)
	if p.funcDepth == 0 {
		p.addError("'return' outside of a function", &stmt.Span)
		return nil
	}
	return stmt
}
