package formatter_test

import (
	"testing"

	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/formatter"
	"github.com/baila-lang/baila/pkg/parser"
)

func format(t *testing.T, source string) string {
	t.Helper()
	prog, diags := parser.Parse(source, "test.baila")
	if len(diags) > 0 {
		t.Fatalf("parse %q: %v", source, diags)
	}
	return formatter.Format(prog)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "definitions",
			source: "var x:Int=1+2*3\nconst  s = 'hi'\nvar f: Float",
			want:   "var x: Int = 1 + 2 * 3\nconst s = \"hi\"\nvar f: Float\n",
		},
		{
			name:   "function",
			source: "var a = 1\nfunction f(a:Int,b=2):Int{return a+b}\nf(1)",
			want:   "var a = 1\n\nfunction f(a: Int, b = 2): Int {\n    return a + b\n}\n\nf(1)\n",
		},
		{
			name:   "if chain",
			source: "if x>1{println(x)}else if x<0{x=0}else{}",
			want:   "if x > 1 {\n    println(x)\n} else if x < 0 {\n    x = 0\n} else {}\n",
		},
		{
			name:   "loops",
			source: "for i=1 to 10 step 2 {\nwhile i<3 { i+=1 }\n}\ndo{n-=1}while n>0",
			want:   "for i = 1 to 10 step 2 {\n    while i < 3 {\n        i += 1\n    }\n}\ndo {\n    n -= 1\n} while n > 0\n",
		},
		{
			name:   "parens kept",
			source: "(1+2)*-(3)",
			want:   "(1 + 2) * -(3)\n",
		},
		{
			name:   "unary and typeof",
			source: "var t = typeof !done\nvar n = - -1",
			want:   "var t = typeof !done\nvar n = --1\n",
		},
		{
			name:   "interpolation",
			source: `"a\tb\"$x ${y + 1} \${z}"`,
			want:   `"a\tb\"${x} ${y + 1} \${z}"` + "\n",
		},
		{
			name:   "float literals",
			source: "var a = 1.50\nvar b = 2f",
			want:   "var a = 1.5\nvar b = 2.0\n",
		},
		{
			name:   "untyped params and bare return",
			source: "function id(x){return}",
			want:   "function id(x) {\n    return\n}\n",
		},
		{
			name:   "empty program",
			source: "\n\n",
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := format(t, tt.source); got != tt.want {
				t.Errorf("Format:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

// TestRoundTrip checks that formatting is a fixed point: formatted output
// parses and formats to itself.
func TestRoundTrip(t *testing.T) {
	sources := []string{
		"var total = 0\nfor i = 1 to 5 { total += i ** 2 }\nprintln(\"total=$total\")",
		"function fact(n: Int): Int {\nif n <= 1 { return 1 }\nreturn n * fact(n - 1)\n}\nprintln(fact(5))",
		"function greet(name: String, greeting: String = \"Hello\") { println(\"${greeting}, ${name}!\") }",
		"var a = 1; var b = 2; a = b = 3",
		"do { a |= 1 & 2 ^ 3 } while !(a == 0) && a != 1 || false",
		"{\nvar inner = 'x'\n}\n;",
	}
	for _, src := range sources {
		first := format(t, src)
		second := format(t, first)
		if first != second {
			t.Errorf("not a fixed point for %q:\nfirst:\n%s\nsecond:\n%s", src, first, second)
		}
	}
}

func TestHandBuiltParens(t *testing.T) {
	num := func(n int64) ast.Expr { return &ast.IntLiteral{Value: n} }
	bin := func(op ast.BinaryOp, l, r ast.Expr) ast.Expr { return &ast.BinaryExpr{Op: op, Left: l, Right: r} }
	tests := []struct {
		expr ast.Expr
		want string
	}{
		{bin(ast.OpMul, bin(ast.OpAdd, num(1), num(2)), num(3)), "(1 + 2) * 3"},
		{bin(ast.OpAdd, num(1), bin(ast.OpMul, num(2), num(3))), "1 + 2 * 3"},
		{bin(ast.OpSub, num(1), bin(ast.OpSub, num(2), num(3))), "1 - (2 - 3)"},
		{bin(ast.OpSub, bin(ast.OpSub, num(1), num(2)), num(3)), "1 - 2 - 3"},
		{bin(ast.OpPow, bin(ast.OpPow, num(2), num(3)), num(2)), "(2 ** 3) ** 2"},
		{bin(ast.OpPow, num(2), bin(ast.OpPow, num(3), num(2))), "2 ** 3 ** 2"},
		{&ast.UnaryExpr{Op: ast.OpNeg, Operand: bin(ast.OpAdd, num(1), num(2))}, "-(1 + 2)"},
		{bin(ast.OpAdd, num(1), &ast.IntLiteral{Value: -2}), "1 + (-2)"},
		{&ast.FloatLiteral{Value: 1e21}, "1000000000000000000000.0"},
		{&ast.FloatLiteral{Value: 1.5e-7}, "0.00000015"},
	}
	for _, tt := range tests {
		if got := formatter.FormatExpr(tt.expr); got != tt.want {
			t.Errorf("FormatExpr = %s, want %s", got, tt.want)
		}
	}
}

func TestHasComments(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"var a = 1 // note", true},
		{"/* block */ var a = 1", true},
		{`var s = "// not a comment"`, false},
		{"var a = 1", false},
	}
	for _, tt := range tests {
		if got := formatter.HasComments(tt.source); got != tt.want {
			t.Errorf("HasComments(%q) = %v, want %v", tt.source, got, tt.want)
		}
	}
}
