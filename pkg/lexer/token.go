package lexer

import (
	"fmt"

	"github.com/ahrtr/gocontainer/set"
	"github.com/baila-lang/baila/pkg/ast"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Special
	TokEOF TokenType = iota
	TokEOL

	// Literals
	TokIdent
	TokIntLit
	TokFloatLit
	TokDecimalLit
	TokStringLit
	TokRegexLit

	// Interpolated string markers
	TokInterpolationStart
	TokInterpolationSeparator
	TokInterpolationEnd

	// Keywords
	TokIf
	TokElse
	TokWhile
	TokDo
	TokFor
	TokVar
	TokConst
	TokFunction
	TokReturn
	TokTrue
	TokFalse
	TokTypeof
	TokIn
	TokIs
	TokAs

	// Punctuation
	TokLParen    // (
	TokRParen    // )
	TokLBracket  // [
	TokRBracket  // ]
	TokLBrace    // {
	TokRBrace    // }
	TokComma     // ,
	TokSemicolon // ;
	TokColon     // :
	TokDot       // .
	TokEllipsis  // ...
	TokQuestion  // ?

	// Operators
	TokPlus       // +
	TokMinus      // -
	TokStar       // *
	TokSlash      // /
	TokPercent    // %
	TokStarStar   // **
	TokAmp        // &
	TokPipe       // |
	TokCaret      // ^
	TokTilde      // ~
	TokBang       // !
	TokAndAnd     // &&
	TokOrOr       // ||
	TokEquals     // =
	TokEqEq       // ==
	TokBangEq     // !=
	TokLt         // <
	TokGt         // >
	TokLtEq       // <=
	TokGtEq       // >=
	TokPlusEq     // +=
	TokMinusEq    // -=
	TokStarEq     // *=
	TokSlashEq    // /=
	TokPercentEq  // %=
	TokStarStarEq // **=
	TokAmpEq      // &=
	TokPipeEq     // |=
	TokCaretEq    // ^=
	TokNotIn      // !in
	TokNotIs      // !is
	TokSafeAs     // ?as

	// Trivia, emitted only in highlighting modes
	TokWhitespace
	TokComment
)

var tokenNames = map[TokenType]string{
	TokEOF:                    "end of file",
	TokEOL:                    "end of line",
	TokIdent:                  "identifier",
	TokIntLit:                 "integer",
	TokFloatLit:               "float",
	TokDecimalLit:             "decimal",
	TokStringLit:              "string",
	TokRegexLit:               "regex",
	TokInterpolationStart:     "interpolation start",
	TokInterpolationSeparator: "interpolation separator",
	TokInterpolationEnd:       "interpolation end",
	TokIf:                     "'if'",
	TokElse:                   "'else'",
	TokWhile:                  "'while'",
	TokDo:                     "'do'",
	TokFor:                    "'for'",
	TokVar:                    "'var'",
	TokConst:                  "'const'",
	TokFunction:               "'function'",
	TokReturn:                 "'return'",
	TokTrue:                   "'true'",
	TokFalse:                  "'false'",
	TokTypeof:                 "'typeof'",
	TokIn:                     "'in'",
	TokIs:                     "'is'",
	TokAs:                     "'as'",
	TokWhitespace:             "whitespace",
	TokComment:                "comment",
}

func init() {
	for text, typ := range punctuation {
		tokenNames[typ] = "'" + text + "'"
	}
	for text, typ := range operators {
		tokenNames[typ] = "'" + text + "'"
	}
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

var keywords = map[string]TokenType{
	"if":       TokIf,
	"else":     TokElse,
	"while":    TokWhile,
	"do":       TokDo,
	"for":      TokFor,
	"var":      TokVar,
	"const":    TokConst,
	"function": TokFunction,
	"return":   TokReturn,
	"true":     TokTrue,
	"false":    TokFalse,
	"typeof":   TokTypeof,
	"in":       TokIn,
	"is":       TokIs,
	"as":       TokAs,
}

// valued holds the token types whose Value is meaningful.
var valued = set.New()

func init() {
	valued.Add(TokIdent, TokIntLit, TokFloatLit, TokDecimalLit, TokStringLit,
		TokRegexLit, TokWhitespace, TokComment)
}

// CarriesValue reports whether tokens of type t hold a meaningful Value.
func CarriesValue(t TokenType) bool {
	return valued.Contains(t)
}

// Token represents a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Span  ast.Span
}

// NewToken creates a token of a type that carries no value.
func NewToken(typ TokenType, span ast.Span) Token {
	if CarriesValue(typ) {
		panic(fmt.Sprintf("lexer: token %s requires a value", typ))
	}
	return Token{Type: typ, Span: span}
}

// NewValueToken creates a token of a type that carries a value.
func NewValueToken(typ TokenType, value string, span ast.Span) Token {
	if !CarriesValue(typ) {
		panic(fmt.Sprintf("lexer: token %s cannot carry a value", typ))
	}
	return Token{Type: typ, Value: value, Span: span}
}

// Text returns the source-like text of the token, used in messages.
func (t Token) Text() string {
	if CarriesValue(t.Type) {
		return t.Value
	}
	if t.Type == TokEOL {
		return "\\n"
	}
	for text, typ := range keywords {
		if typ == t.Type {
			return text
		}
	}
	for text, typ := range operators {
		if typ == t.Type {
			return text
		}
	}
	for text, typ := range punctuation {
		if typ == t.Type {
			return text
		}
	}
	return t.Type.String()
}

func (t Token) String() string {
	if CarriesValue(t.Type) {
		return fmt.Sprintf("%s(%q)", t.Type, t.Value)
	}
	return t.Type.String()
}

// IsTerminator reports whether t ends a statement.
func (t Token) IsTerminator() bool {
	return t.Type == TokEOL || t.Type == TokSemicolon
}
