package lexer

import (
	"testing"

	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/cancel"
	"github.com/baila-lang/baila/pkg/diagnostics"
)

// helper to tokenize and fail on diagnostics
func mustTokenize(t *testing.T, source string) []Token {
	t.Helper()
	tokens, diags := Tokenize(source, "test.baila")
	if len(diags) > 0 {
		t.Fatalf("unexpected lex diagnostics: %v", diags)
	}
	return tokens
}

// helper that strips the trailing EOL and EOF for easier assertions
func mustTokenizeBody(t *testing.T, source string) []Token {
	t.Helper()
	tokens := mustTokenize(t, source)
	if len(tokens) < 2 || tokens[len(tokens)-1].Type != TokEOF || tokens[len(tokens)-2].Type != TokEOL {
		t.Fatalf("expected trailing EOL EOF, got %v", tokens)
	}
	return tokens[:len(tokens)-2]
}

func types(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func expectTypes(t *testing.T, tokens []Token, want ...TokenType) {
	t.Helper()
	got := types(tokens)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

// ---------------------------------------------------------------------------
// Test: empty input produces only EOF
// ---------------------------------------------------------------------------
func TestEmptyInput(t *testing.T) {
	tokens := mustTokenize(t, "")
	expectTypes(t, tokens, TokEOF)

	tokens = mustTokenize(t, "\n\n  // only a comment\n")
	expectTypes(t, tokens, TokEOF)
}

// ---------------------------------------------------------------------------
// Test: keywords and contextual identifiers
// ---------------------------------------------------------------------------
func TestKeywords(t *testing.T) {
	tests := []struct {
		keyword  string
		expected TokenType
	}{
		{"if", TokIf},
		{"else", TokElse},
		{"while", TokWhile},
		{"do", TokDo},
		{"for", TokFor},
		{"var", TokVar},
		{"const", TokConst},
		{"function", TokFunction},
		{"return", TokReturn},
		{"true", TokTrue},
		{"false", TokFalse},
		{"typeof", TokTypeof},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			tokens := mustTokenizeBody(t, tt.keyword)
			expectTypes(t, tokens, tt.expected)
		})
	}

	tokens := mustTokenizeBody(t, "to step")
	expectTypes(t, tokens, TokIdent, TokIdent)
	if tokens[0].Value != "to" || tokens[1].Value != "step" {
		t.Errorf("contextual keywords should lex as identifiers: %v", tokens)
	}
}

// ---------------------------------------------------------------------------
// Test: end-of-line handling
// ---------------------------------------------------------------------------
func TestEOLSuppressedInsideParens(t *testing.T) {
	tokens := mustTokenize(t, "var i = (\n1,\n2,\n3\n)")
	expectTypes(t, tokens,
		TokVar, TokIdent, TokEquals, TokLParen,
		TokIntLit, TokComma, TokIntLit, TokComma, TokIntLit,
		TokRParen, TokEOL, TokEOF)
}

func TestEOLCollapsing(t *testing.T) {
	tokens := mustTokenize(t, "\n\na\n\n\nb;\nc {\n}\n")
	expectTypes(t, tokens,
		TokIdent, TokEOL,
		TokIdent, TokSemicolon, TokEOL,
		TokIdent, TokLBrace, TokRBrace, TokEOL,
		TokEOF)
}

func TestTrailingTerminatorAppended(t *testing.T) {
	tokens := mustTokenize(t, "x;")
	expectTypes(t, tokens, TokIdent, TokSemicolon, TokEOF)
}

// ---------------------------------------------------------------------------
// Test: operators and lexer state
// ---------------------------------------------------------------------------
func TestMaximalMunch(t *testing.T) {
	tokens := mustTokenizeBody(t, "a **= b ** c == d != e <= f && g || h += 1")
	expectTypes(t, tokens,
		TokIdent, TokStarStarEq, TokIdent, TokStarStar, TokIdent, TokEqEq, TokIdent,
		TokBangEq, TokIdent, TokLtEq, TokIdent, TokAndAnd, TokIdent, TokOrOr, TokIdent,
		TokPlusEq, TokIntLit)
}

func TestPrefixOperatorsInValueState(t *testing.T) {
	tokens := mustTokenizeBody(t, "x = --1")
	expectTypes(t, tokens, TokIdent, TokEquals, TokMinus, TokMinus, TokIntLit)

	tokens = mustTokenizeBody(t, "!!true")
	expectTypes(t, tokens, TokBang, TokBang, TokTrue)
}

func TestSlashDependsOnState(t *testing.T) {
	tokens := mustTokenizeBody(t, "a / b")
	expectTypes(t, tokens, TokIdent, TokSlash, TokIdent)

	tokens = mustTokenizeBody(t, "x = /ab\\/c/gi")
	expectTypes(t, tokens, TokIdent, TokEquals, TokRegexLit)
	if tokens[2].Value != "/ab\\/c/gi" {
		t.Errorf("regex value = %q", tokens[2].Value)
	}
}

func TestNegatedKeywords(t *testing.T) {
	tokens := mustTokenizeBody(t, "a !in b")
	expectTypes(t, tokens, TokIdent, TokNotIn, TokIdent)

	tokens = mustTokenizeBody(t, "a ?as b")
	expectTypes(t, tokens, TokIdent, TokSafeAs, TokIdent)

	tokens = mustTokenizeBody(t, "a != isOk")
	expectTypes(t, tokens, TokIdent, TokBangEq, TokIdent)
}

// ---------------------------------------------------------------------------
// Test: numbers
// ---------------------------------------------------------------------------
func TestNumbers(t *testing.T) {
	tests := []struct {
		src   string
		typ   TokenType
		value string
	}{
		{"42", TokIntLit, "42"},
		{"1_000_000", TokIntLit, "1000000"},
		{"3.14", TokFloatLit, "3.14"},
		{"2f", TokFloatLit, "2"},
		{"1.5c", TokDecimalLit, "1.5"},
		{"0x1F", TokIntLit, "0x1F"},
		{"0B1010", TokIntLit, "0b1010"},
		{"0o7_7", TokIntLit, "0o77"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tokens := mustTokenizeBody(t, tt.src)
			expectTypes(t, tokens, tt.typ)
			if tokens[0].Value != tt.value {
				t.Errorf("value = %q, want %q", tokens[0].Value, tt.value)
			}
		})
	}
}

func TestNumberDiagnostics(t *testing.T) {
	tokens, diags := Tokenize("1.2.3", "t")
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
	if tokens[0].Type != TokFloatLit || tokens[0].Value != "1.2" {
		t.Errorf("first token = %v", tokens[0])
	}

	_, diags = Tokenize("0x", "t")
	if len(diags) != 1 || diags[0].Code != diagnostics.SyntaxError {
		t.Errorf("missing radix digits: %v", diags)
	}
}

// ---------------------------------------------------------------------------
// Test: strings and interpolation
// ---------------------------------------------------------------------------
func TestStringEscapes(t *testing.T) {
	tokens := mustTokenizeBody(t, `"a\tb\n\$x\"" 'it\'s'`)
	expectTypes(t, tokens, TokStringLit, TokStringLit)
	if tokens[0].Value != "a\tb\n$x\"" {
		t.Errorf("value = %q", tokens[0].Value)
	}
	if tokens[1].Value != "it's" {
		t.Errorf("value = %q", tokens[1].Value)
	}
}

func TestInterpolationReconstruction(t *testing.T) {
	tokens := mustTokenizeBody(t, `"Abc ${1+2} Def"`)
	expectTypes(t, tokens,
		TokInterpolationStart,
		TokStringLit, TokInterpolationSeparator,
		TokIntLit, TokPlus, TokIntLit, TokInterpolationSeparator,
		TokStringLit,
		TokInterpolationEnd)
	if tokens[1].Value != "Abc " || tokens[7].Value != " Def" {
		t.Errorf("fixed pieces = %q, %q", tokens[1].Value, tokens[7].Value)
	}
	// `1` sits at column 8 of the enclosing source.
	want := ast.Span{File: "test.baila", StartLine: 1, StartCol: 8, EndLine: 1, EndCol: 9}
	if tokens[3].Span != want {
		t.Errorf("embedded span = %+v, want %+v", tokens[3].Span, want)
	}
}

func TestInterpolationOmitsEmptyPieces(t *testing.T) {
	tokens := mustTokenizeBody(t, `"$name${n}"`)
	expectTypes(t, tokens,
		TokInterpolationStart, TokIdent, TokInterpolationSeparator, TokIdent, TokInterpolationEnd)
}

func TestNestedInterpolation(t *testing.T) {
	tokens := mustTokenizeBody(t, `"a ${ "b ${x}" } c"`)
	expectTypes(t, tokens,
		TokInterpolationStart,
		TokStringLit, TokInterpolationSeparator,
		TokInterpolationStart, TokStringLit, TokInterpolationSeparator, TokIdent, TokInterpolationEnd,
		TokInterpolationSeparator, TokStringLit,
		TokInterpolationEnd)
}

func TestVerbatimString(t *testing.T) {
	tokens := mustTokenizeBody(t, "@\"c:\\dir \"\"q\"\"\nnext ${x}\"")
	expectTypes(t, tokens, TokStringLit)
	if tokens[0].Value != "c:\\dir \"q\"\nnext ${x}" {
		t.Errorf("value = %q", tokens[0].Value)
	}
}

func TestStringDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated", `"abc`},
		{"unterminated verbatim", `@"abc`},
		{"unbalanced interpolation", `"a ${1 + "`},
		{"unknown escape", `"\q"`},
		{"unterminated regex", "x = /abc"},
		{"unterminated block comment", "/* open"},
		{"unexpected character", "a # b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, diags := Tokenize(tt.src, "t")
			if len(diags) == 0 {
				t.Fatal("expected a diagnostic")
			}
			if tokens[len(tokens)-1].Type != TokEOF {
				t.Error("lexing should still run to EOF")
			}
		})
	}
}

func TestEmbeddedDiagnosticSpansAreRemapped(t *testing.T) {
	_, diags := Tokenize(`"ab ${1 # 2}"`, "t")
	if len(diags) != 1 {
		t.Fatalf("got %v", diags)
	}
	if diags[0].Span.StartCol != 9 {
		t.Errorf("diagnostic column = %d, want 9", diags[0].Span.StartCol)
	}
}

// ---------------------------------------------------------------------------
// Test: modes
// ---------------------------------------------------------------------------
func TestHighlightingKeepsTrivia(t *testing.T) {
	tokens, diags := New("a // c\n", "t", WithMode(Highlighting)).Tokenize()
	if len(diags) > 0 {
		t.Fatal(diags)
	}
	expectTypes(t, tokens, TokIdent, TokWhitespace, TokComment, TokEOL, TokEOF)
	if tokens[2].Value != "// c" {
		t.Errorf("comment value = %q", tokens[2].Value)
	}
}

func TestEmbeddedModeAppendsNothing(t *testing.T) {
	tokens, _ := New("x + 1", "t", WithMode(InterpolatedString)).Tokenize()
	expectTypes(t, tokens, TokIdent, TokPlus, TokIntLit)
}

func TestCancellation(t *testing.T) {
	tok := cancel.New(nil)
	tok.Cancel()
	_, diags := New("var x = 1", "t", WithCancel(tok)).Tokenize()
	if len(diags) != 1 || diags[0].Code != diagnostics.CancelledError {
		t.Errorf("diags = %v", diags)
	}
}

// ---------------------------------------------------------------------------
// Test: token invariants and span remapping
// ---------------------------------------------------------------------------
func TestTokenValueInvariant(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewToken(TokIdent) should panic")
		}
	}()
	NewToken(TokIdent, ast.Span{})
}

func TestRemapSpan(t *testing.T) {
	tests := []struct {
		name      string
		in        ast.Span
		line, col int
		want      ast.Span
	}{
		{
			name: "first line shifts column",
			in:   ast.Span{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 3},
			line: 4, col: 10,
			want: ast.Span{File: "f", StartLine: 4, StartCol: 10, EndLine: 4, EndCol: 12},
		},
		{
			name: "later lines keep column",
			in:   ast.Span{StartLine: 2, StartCol: 2, EndLine: 2, EndCol: 5},
			line: 4, col: 10,
			want: ast.Span{File: "f", StartLine: 5, StartCol: 2, EndLine: 5, EndCol: 5},
		},
		{
			name: "spanning lines",
			in:   ast.Span{StartLine: 1, StartCol: 3, EndLine: 2, EndCol: 1},
			line: 1, col: 5,
			want: ast.Span{File: "f", StartLine: 1, StartCol: 7, EndLine: 2, EndCol: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := remapSpan(tt.in, "f", tt.line, tt.col); got != tt.want {
				t.Errorf("remapSpan = %+v, want %+v", got, tt.want)
			}
		})
	}
}
