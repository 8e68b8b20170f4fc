package lexer

// punctuation tokens are single characters that never combine.
var punctuation = map[string]TokenType{
	"(":   TokLParen,
	")":   TokRParen,
	"[":   TokLBracket,
	"]":   TokRBracket,
	"{":   TokLBrace,
	"}":   TokRBrace,
	",":   TokComma,
	";":   TokSemicolon,
	":":   TokColon,
	".":   TokDot,
	"...": TokEllipsis,
}

// operators is the maximal-munch table used in operator state.
var operators = map[string]TokenType{
	"+":   TokPlus,
	"-":   TokMinus,
	"*":   TokStar,
	"/":   TokSlash,
	"%":   TokPercent,
	"**":  TokStarStar,
	"&":   TokAmp,
	"|":   TokPipe,
	"^":   TokCaret,
	"~":   TokTilde,
	"!":   TokBang,
	"?":   TokQuestion,
	"&&":  TokAndAnd,
	"||":  TokOrOr,
	"=":   TokEquals,
	"==":  TokEqEq,
	"!=":  TokBangEq,
	"<":   TokLt,
	">":   TokGt,
	"<=":  TokLtEq,
	">=":  TokGtEq,
	"+=":  TokPlusEq,
	"-=":  TokMinusEq,
	"*=":  TokStarEq,
	"/=":  TokSlashEq,
	"%=":  TokPercentEq,
	"**=": TokStarStarEq,
	"&=":  TokAmpEq,
	"|=":  TokPipeEq,
	"^=":  TokCaretEq,
}

// prefixOperators are emitted as single characters in value state, where
// they can only start an operand.
var prefixOperators = map[rune]TokenType{
	'+': TokPlus,
	'-': TokMinus,
	'*': TokStar,
	'!': TokBang,
	'~': TokTilde,
	'?': TokQuestion,
	'<': TokLt,
}

func isOperatorStart(ch rune) bool {
	_, ok := operators[string(ch)]
	return ok
}

// scanOperator lexes the longest operator starting at the current
// position. The candidate is extended while it is a prefix of some table
// key, then shortened back to the longest real key.
func (s *scanner) scanOperator() (TokenType, int, bool) {
	n := 0
	for {
		cand := s.text(n + 1)
		if len([]rune(cand)) != n+1 || !isOperatorPrefix(cand) {
			break
		}
		n++
	}
	for ; n > 0; n-- {
		if typ, ok := operators[s.text(n)]; ok {
			return typ, n, true
		}
	}
	return 0, 0, false
}

func isOperatorPrefix(cand string) bool {
	for key := range operators {
		if len(key) >= len(cand) && key[:len(cand)] == cand {
			return true
		}
	}
	return false
}

// scanNegatedKeyword recognises `!in`, `!is` and `?as`, which must be
// followed by a non-identifier character.
func (s *scanner) scanNegatedKeyword() (TokenType, bool) {
	if isIdentPart(s.peekAt(3)) {
		return 0, false
	}
	switch s.text(3) {
	case "!in":
		return TokNotIn, true
	case "!is":
		return TokNotIs, true
	case "?as":
		return TokSafeAs, true
	}
	return 0, false
}
