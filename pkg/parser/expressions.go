package parser

import (
	"fmt"
	"strconv"

	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/lexer"
)

var assignOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.TokEquals:     "",
	lexer.TokPlusEq:     ast.OpAdd,
	lexer.TokMinusEq:    ast.OpSub,
	lexer.TokStarEq:     ast.OpMul,
	lexer.TokSlashEq:    ast.OpDiv,
	lexer.TokPercentEq:  ast.OpMod,
	lexer.TokStarStarEq: ast.OpPow,
	lexer.TokAmpEq:      ast.OpBitAnd,
	lexer.TokPipeEq:     ast.OpBitOr,
	lexer.TokCaretEq:    ast.OpBitXor,
}

// Operator sets of the left-associative precedence layers.
var (
	orOps         = map[lexer.TokenType]ast.BinaryOp{lexer.TokOrOr: ast.OpOr}
	andOps        = map[lexer.TokenType]ast.BinaryOp{lexer.TokAndAnd: ast.OpAnd}
	bitOrOps      = map[lexer.TokenType]ast.BinaryOp{lexer.TokPipe: ast.OpBitOr}
	bitXorOps     = map[lexer.TokenType]ast.BinaryOp{lexer.TokCaret: ast.OpBitXor}
	bitAndOps     = map[lexer.TokenType]ast.BinaryOp{lexer.TokAmp: ast.OpBitAnd}
	equalityOps   = map[lexer.TokenType]ast.BinaryOp{lexer.TokEqEq: ast.OpEq, lexer.TokBangEq: ast.OpNeq}
	relationalOps = map[lexer.TokenType]ast.BinaryOp{
		lexer.TokLt: ast.OpLt, lexer.TokGt: ast.OpGt, lexer.TokLtEq: ast.OpLtEq, lexer.TokGtEq: ast.OpGtEq,
	}
	additiveOps       = map[lexer.TokenType]ast.BinaryOp{lexer.TokPlus: ast.OpAdd, lexer.TokMinus: ast.OpSub}
	multiplicativeOps = map[lexer.TokenType]ast.BinaryOp{
		lexer.TokStar: ast.OpMul, lexer.TokSlash: ast.OpDiv, lexer.TokPercent: ast.OpMod,
	}
)

// Relational keywords that are recognised but not supported.
var typeTestOps = map[lexer.TokenType]string{
	lexer.TokIn:     "in",
	lexer.TokNotIn:  "!in",
	lexer.TokIs:     "is",
	lexer.TokNotIs:  "!is",
	lexer.TokAs:     "as",
	lexer.TokSafeAs: "?as",
}

var unaryOps = map[lexer.TokenType]ast.UnaryOp{
	lexer.TokMinus: ast.OpNeg,
	lexer.TokPlus:  ast.OpPlus,
	lexer.TokBang:  ast.OpNot,
	lexer.TokTilde: ast.OpBitNot,
}

func (p *parser) parseExpression() ast.Expr {
	return p.parseAssignment()
}

// parseAssignment is right-associative: `a = b = 1` assigns b first.
func (p *parser) parseAssignment() ast.Expr {
	if !p.poll() {
		return nil
	}
	left := p.parseOr()
	if left == nil {
		return nil
	}
	op, ok := assignOps[p.peek()]
	if !ok {
		return left
	}
	opTok := p.advance()
	target, ok := left.(*ast.Variable)
	if !ok {
		p.addError(fmt.Sprintf("cannot assign to %s", describe(left)), &opTok.Span)
		return nil
	}
	value := p.parseAssignment()
	if value == nil {
		return nil
	}
	return &ast.Assignment{
		Span:   p.spanFromTo(left.NodeSpan(), value.NodeSpan()),
		Target: target,
		Op:     op,
		Value:  value,
	}
}

// parseLeftAssoc parses one left-associative layer: operands from next
// joined by any operator in ops.
func (p *parser) parseLeftAssoc(ops map[lexer.TokenType]ast.BinaryOp, next func() ast.Expr) ast.Expr {
	if !p.poll() {
		return nil
	}
	left := next()
	if left == nil {
		return nil
	}
	for {
		op, ok := ops[p.peek()]
		if !ok {
			return left
		}
		p.advance()
		right := next()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

func (p *parser) parseOr() ast.Expr {
	return p.parseLeftAssoc(orOps, p.parseAnd)
}

func (p *parser) parseAnd() ast.Expr {
	return p.parseLeftAssoc(andOps, p.parseBitOr)
}

func (p *parser) parseBitOr() ast.Expr {
	return p.parseLeftAssoc(bitOrOps, p.parseBitXor)
}

func (p *parser) parseBitXor() ast.Expr {
	return p.parseLeftAssoc(bitXorOps, p.parseBitAnd)
}

func (p *parser) parseBitAnd() ast.Expr {
	return p.parseLeftAssoc(bitAndOps, p.parseEquality)
}

func (p *parser) parseEquality() ast.Expr {
	return p.parseLeftAssoc(equalityOps, p.parseRelational)
}

func (p *parser) parseRelational() ast.Expr {
	left := p.parseLeftAssoc(relationalOps, p.parseAdditive)
	if left == nil {
		return nil
	}
	if word, ok := typeTestOps[p.peek()]; ok {
		tok := p.advance()
		p.notImplemented(tok.Span, "operator '%s' is not implemented", word)
		return nil
	}
	return left
}

func (p *parser) parseAdditive() ast.Expr {
	return p.parseLeftAssoc(additiveOps, p.parseMultiplicative)
}

func (p *parser) parseMultiplicative() ast.Expr {
	return p.parseLeftAssoc(multiplicativeOps, p.parsePower)
}

// parsePower is right-associative: `2 ** 3 ** 2` is `2 ** (3 ** 2)`.
func (p *parser) parsePower() ast.Expr {
	if !p.poll() {
		return nil
	}
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	if p.peek() != lexer.TokStarStar {
		return left
	}
	p.advance()
	right := p.parsePower()
	if right == nil {
		return nil
	}
	return &ast.BinaryExpr{
		Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
		Op:    ast.OpPow,
		Left:  left,
		Right: right,
	}
}

func (p *parser) parseUnary() ast.Expr {
	if !p.poll() || !p.enter() {
		return nil
	}
	defer p.leave()
	if op, ok := unaryOps[p.peek()]; ok {
		tok := p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{Span: p.spanFromTo(tok.Span, operand.NodeSpan()), Op: op, Operand: operand}
	}
	if p.peek() == lexer.TokTypeof {
		tok := p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.TypeOfExpr{Span: p.spanFromTo(tok.Span, operand.NodeSpan()), Operand: operand}
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary with at most one call suffix.
func (p *parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	if p.peek() == lexer.TokLParen {
		if expr = p.parseCall(expr); expr == nil {
			return nil
		}
	}
	switch p.peek() {
	case lexer.TokLParen:
		p.notImplemented(p.current().Span, "calling the result of a call is not implemented")
		return nil
	case lexer.TokDot:
		p.notImplemented(p.current().Span, "member access is not implemented")
		return nil
	case lexer.TokLBracket:
		p.notImplemented(p.current().Span, "indexing is not implemented")
		return nil
	}
	return expr
}

func (p *parser) parseCall(callee ast.Expr) ast.Expr {
	p.advance() // consume '('
	p.nesting++
	defer func() { p.nesting-- }()

	var args []ast.Expr
	for p.peek() != lexer.TokRParen {
		arg := p.parseExpression()
		if arg == nil {
			return nil
		}
		args = append(args, arg)
		if p.peek() != lexer.TokComma {
			break
		}
		p.advance()
	}
	end, ok := p.expect(lexer.TokRParen)
	if !ok {
		return nil
	}
	return &ast.CallExpr{Span: p.spanFromTo(callee.NodeSpan(), end.Span), Callee: callee, Args: args}
}

func (p *parser) parsePrimary() ast.Expr {
	if !p.poll() {
		return nil
	}
	tok := p.current()

	switch tok.Type {
	case lexer.TokLParen:
		p.advance()
		p.nesting++
		inner := p.parseExpression()
		if inner == nil {
			p.nesting--
			return nil
		}
		end, ok := p.expect(lexer.TokRParen)
		p.nesting--
		if !ok {
			return nil
		}
		return &ast.ParenExpr{Span: p.spanFromTo(tok.Span, end.Span), Inner: inner}

	case lexer.TokIntLit:
		p.advance()
		n, err := parseInt(tok.Value)
		if err != nil {
			p.addError(fmt.Sprintf("integer literal '%s' is out of range", tok.Value), &tok.Span)
			return nil
		}
		return &ast.IntLiteral{Span: tok.Span, Value: n}

	case lexer.TokFloatLit:
		p.advance()
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			p.addError(fmt.Sprintf("invalid float literal '%s'", tok.Value), &tok.Span)
			return nil
		}
		return &ast.FloatLiteral{Span: tok.Span, Value: f}

	case lexer.TokStringLit:
		p.advance()
		return &ast.StringLiteral{Span: tok.Span, Value: tok.Value}

	case lexer.TokTrue, lexer.TokFalse:
		p.advance()
		return &ast.BoolLiteral{Span: tok.Span, Value: tok.Type == lexer.TokTrue}

	case lexer.TokIdent:
		p.advance()
		return &ast.Variable{Span: tok.Span, Name: tok.Value}

	case lexer.TokInterpolationStart:
		return p.parseInterpolation()

	case lexer.TokDecimalLit:
		p.advance()
		p.notImplemented(tok.Span, "decimal literals are not implemented")
		return nil

	case lexer.TokRegexLit:
		p.advance()
		p.notImplemented(tok.Span, "regular expression literals are not implemented")
		return nil

	case lexer.TokLBracket:
		p.advance()
		p.notImplemented(tok.Span, "list literals are not implemented")
		return nil
	}

	if tok.Type == lexer.TokEOL || tok.Type == lexer.TokEOF {
		p.addError("expected an expression", &tok.Span)
	} else {
		p.addError(fmt.Sprintf("unexpected token '%s'", tok.Text()), &tok.Span)
	}
	return nil
}

// parseInterpolation reassembles the marker run
// Start piece (Separator piece)* End into a StringConcat.
func (p *parser) parseInterpolation() ast.Expr {
	start := p.advance() // consume interpolation start
	concat := &ast.StringConcat{}
	for p.peek() != lexer.TokInterpolationEnd {
		part := p.parseExpression()
		if part == nil {
			return nil
		}
		concat.Parts = append(concat.Parts, part)
		if p.peek() != lexer.TokInterpolationSeparator {
			break
		}
		p.advance()
	}
	end, ok := p.expect(lexer.TokInterpolationEnd)
	if !ok {
		return nil
	}
	concat.Span = p.spanFromTo(start.Span, end.Span)
	return concat
}

// parseInt converts a lexed integer literal. Radix literals keep their
// lowercase 0b, 0o or 0x prefix.
func parseInt(text string) (int64, error) {
	if len(text) > 2 && text[0] == '0' {
		switch text[1] {
		case 'b', 'o', 'x':
			return strconv.ParseInt(text, 0, 64)
		}
	}
	return strconv.ParseInt(text, 10, 64)
}

func describe(e ast.Expr) string {
	switch e.(type) {
	case *ast.CallExpr:
		return "a call expression"
	case *ast.ParenExpr:
		return "a parenthesized expression"
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.BoolLiteral, *ast.StringLiteral, *ast.StringConcat:
		return "a literal"
	}
	return "this expression"
}
