package lexer

import (
	"testing"
)

// FuzzTokenize feeds random inputs to the lexer to catch panics.
// The lexer should never panic; malformed input becomes diagnostics.
func FuzzTokenize(f *testing.F) {
	seeds := []string{
		// Keywords
		`if else while do for var const function return`,
		`true false typeof in is as`,
		// Literals
		`42 3.14 1_000 0x1F 0b101 0o17 2f 1.5c`,
		`"hello" "with\nescape" 'quote\''`,
		`"interp $name and ${1 + 2}"`,
		`"nested ${ "inner ${x}" }"`,
		`@"verbatim ""quoted"" \n"`,
		// Operators
		`+ - * / % ** & | ^ ~ ! && || = == != < > <= >=`,
		`+= -= *= /= %= **= &= |= ^= !in !is ?as`,
		// Delimiters
		`{ } [ ] ( ) : , ; . ...`,
		// Comments
		`// line comment`,
		`/* block */ /* unterminated`,
		// Edge cases
		``,
		`   `,
		"\t\n\r",
		`"unterminated`,
		`"${`,
		`"${}"`,
		`@"`,
		`x = /regex`,
		`1.2.3`,
		`0x`,
		`#@$`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Tokenize panicked on input %q: %v", input, r)
				}
			}()
			for _, mode := range []Mode{Regular, Highlighting} {
				tokens, _ := New(input, "fuzz.baila", WithMode(mode)).Tokenize()
				if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokEOF {
					t.Fatalf("token stream for %q does not end in EOF", input)
				}
			}
		}()
	})
}
