package runtime_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/baila-lang/baila/pkg/cancel"
	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/evaluator"
	"github.com/baila-lang/baila/pkg/lexer"
	"github.com/baila-lang/baila/pkg/runtime"
	"github.com/baila-lang/baila/pkg/value"
)

func compile(t *testing.T, rt *runtime.Runtime, source string) *runtime.Program {
	t.Helper()
	prog, err := rt.Compile(source, "test.baila")
	if err != nil {
		t.Fatalf("compile %q: %v", source, err)
	}
	return prog
}

func firstCode(err error) string {
	diags := diagnostics.FromError(err)
	if len(diags) == 0 {
		return ""
	}
	return diags[0].Code
}

// --- Compile / Execute ---

func TestCompileAndExecute(t *testing.T) {
	var out bytes.Buffer
	rt := runtime.New(runtime.WithOutput(&out))
	prog := compile(t, rt, "println(\"hi\")\nvar a = 1\na + 2")

	for i := 0; i < 2; i++ {
		v, err := prog.Execute(context.Background())
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if got := value.Display(v); got != "3:Int" {
			t.Errorf("run %d value = %s", i, got)
		}
	}
	if got := value.Display(prog.LastValue()); got != "3:Int" {
		t.Errorf("LastValue = %s", got)
	}
	if out.String() != "hi\nhi\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   string
	}{
		{"syntax", "var = 1", diagnostics.SyntaxError},
		{"not implemented", "var l = [1]", diagnostics.NotImplementedError},
		{"overload", "function f(a: Int) { }\nfunction f(b: Int) { }", diagnostics.RedefinitionError},
		{"type", "var x: Int = \"s\"", diagnostics.TypeError},
		{"reference", "println(y)", diagnostics.ReferenceError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runtime.New().Compile(tt.source, "test.baila")
			var de *diagnostics.Error
			if !errors.As(err, &de) {
				t.Fatalf("error = %v, want *diagnostics.Error", err)
			}
			if got := firstCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestTypeCheckDisabled(t *testing.T) {
	if _, err := runtime.Compile("var x: Int = \"s\"", "test.baila"); firstCode(err) != diagnostics.TypeError {
		t.Fatalf("default Compile error = %v, want TypeError", err)
	}

	rt := runtime.New(runtime.WithTypeCheck(false))
	prog := compile(t, rt, "var x: Int = \"s\"")
	_, err := prog.Execute(context.Background())
	if got := diagnostics.CodeOf(err); got != diagnostics.TypeError {
		t.Errorf("runtime error = %v, want TypeError", err)
	}
}

func TestCheck(t *testing.T) {
	if diags := runtime.Check("var a = 1\nprintln(a)", "ok.baila"); len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	diags := runtime.Check("var a = 1\nvar b: String = a\nc", "bad.baila")
	if len(diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2: %v", len(diags), diags)
	}
	if diags[0].Code != diagnostics.TypeError || diags[1].Code != diagnostics.ReferenceError {
		t.Errorf("codes = %s, %s", diags[0].Code, diags[1].Code)
	}
	if diags[0].File() != "bad.baila" {
		t.Errorf("file = %q", diags[0].File())
	}
}

func TestFormat(t *testing.T) {
	got, err := runtime.New().Format("var  a=1+2", "f.baila")
	if err != nil {
		t.Fatal(err)
	}
	if got != "var a = 1 + 2\n" {
		t.Errorf("Format = %q", got)
	}
	if _, err := runtime.New().Format("var =", "f.baila"); err == nil {
		t.Error("Format of invalid source succeeded")
	}
}

func TestTokenize(t *testing.T) {
	toks, diags := runtime.New().Tokenize("a + 1 // c", "t.baila", lexer.Highlighting)
	if len(diags) > 0 {
		t.Fatal(diags)
	}
	comments := 0
	for _, tok := range toks {
		if tok.Type == lexer.TokComment {
			comments++
		}
	}
	if toks[0].Type != lexer.TokIdent || toks[len(toks)-1].Type != lexer.TokEOF || comments != 1 {
		t.Errorf("tokens = %v", toks)
	}
}

func TestExecuteNotReentrant(t *testing.T) {
	var (
		prog   *runtime.Program
		nested error
		calls  int
	)
	rt := runtime.New(runtime.WithTrace(func(ev evaluator.TraceEvent) {
		if ev.Event == evaluator.TraceRunStart {
			calls++
			_, nested = prog.Execute(context.Background())
		}
	}))
	prog = compile(t, rt, "1")
	if _, err := prog.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(nested, runtime.ErrRunning) {
		t.Errorf("nested Execute = %v, want ErrRunning", nested)
	}
	if calls != 1 {
		t.Errorf("run_start emitted %d times", calls)
	}
	if _, err := prog.Execute(context.Background()); err != nil {
		t.Errorf("Execute after completion: %v", err)
	}
}

func TestCancel(t *testing.T) {
	tok := cancel.New(context.Background())
	rt := runtime.New(runtime.WithCancel(tok))
	prog := compile(t, rt, "var i = 0\nwhile true { i += 1 }")
	tok.Cancel()
	_, err := prog.Execute(context.Background())
	if got := diagnostics.CodeOf(err); got != diagnostics.CancelledError {
		t.Fatalf("error = %v, want CancelledError", err)
	}

	tok.Reset()
	prog = compile(t, rt, "1 + 1")
	if _, err := prog.Execute(context.Background()); err != nil {
		t.Errorf("after Reset: %v", err)
	}
}

func TestLimits(t *testing.T) {
	rt := runtime.New(runtime.WithLimits(evaluator.Limits{MaxIterations: 10}))
	prog := compile(t, rt, "while true { }")
	_, err := prog.Execute(context.Background())
	if got := diagnostics.CodeOf(err); got != diagnostics.LimitError {
		t.Errorf("error = %v, want LimitError", err)
	}
}

// --- Session ---

func TestSession(t *testing.T) {
	var out bytes.Buffer
	s := runtime.New(runtime.WithOutput(&out)).NewSession()
	ctx := context.Background()
	steps := []struct {
		input string
		want  string
		code  string
	}{
		{input: "var a = 1", want: ""},
		{input: "a + 1", want: "2:Int"},
		{input: "function sq(n: Int): Int { return n * n }", want: ""},
		{input: "sq(a + 2)", want: "9:Int"},
		{input: "function sq(s: String): String { return s + s }", want: ""},
		{input: "sq(\"ab\")", want: "abab:String"},
		{input: "function cube(n: Int) { return sq(n) * n }\ncube(2)", want: "8:Int"},
		{input: "var g = upper\ng = lower\ng(\"X\")", want: "x:String"},
		{input: "a = 5\nprintln(a)", want: ""},
		{input: "var a = 2", code: diagnostics.RedefinitionError},
		{input: "a = \"s\"", code: diagnostics.TypeError},
		{input: "sq(true)", code: diagnostics.OverloadError},
		{input: "a", want: "5:Int"},
	}
	for _, st := range steps {
		v, err := s.Eval(ctx, st.input)
		if st.code != "" {
			if got := firstCode(err); got != st.code {
				t.Errorf("%q: error = %v, want %s", st.input, err, st.code)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", st.input, err)
		}
		if got := value.Display(v); got != st.want {
			t.Errorf("%q = %q, want %q", st.input, got, st.want)
		}
	}
	if out.String() != "5\n" {
		t.Errorf("output = %q", out.String())
	}
	if m, ok := s.Lookup("sq"); !ok || len(m.Value.(*value.Function).Overloads) != 2 {
		t.Errorf("sq = %+v", m)
	}
	if desc, ok := s.Describe("sq"); !ok || desc != "sq(n: Int): Int\nsq(s: String): String" {
		t.Errorf("Describe(sq) = %q, %v", desc, ok)
	}
	if desc, ok := s.Describe("a"); !ok || desc != "a: Int" {
		t.Errorf("Describe(a) = %q, %v", desc, ok)
	}
	if desc, ok := s.Describe("upper"); !ok || !strings.HasPrefix(desc, "upper(") {
		t.Errorf("Describe(upper) = %q, %v", desc, ok)
	}
	if _, ok := s.Describe("missing"); ok {
		t.Error("Describe(missing) succeeded")
	}

	s.Reset()
	if len(s.Names()) != 0 {
		t.Errorf("names after Reset = %v", s.Names())
	}
	if _, err := s.Eval(ctx, "a"); firstCode(err) != diagnostics.ReferenceError {
		t.Errorf("a after Reset: %v", err)
	}
}

func TestSessionIncomplete(t *testing.T) {
	s := runtime.New().NewSession()
	tests := []struct {
		input string
		want  bool
	}{
		{"if true {", true},
		{"function f() {\nreturn 1", true},
		{"f(1,", true},
		{"var a = 1", false},
		{"1 2", false},
	}
	for _, tt := range tests {
		if got := s.Incomplete(tt.input); got != tt.want {
			t.Errorf("Incomplete(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestExitCode(t *testing.T) {
	rt := runtime.New(runtime.WithLimits(evaluator.Limits{MaxIterations: 1}))
	_, compileErr := rt.Compile("var = 1", "t.baila")
	run := func(src string) error {
		_, err := compile(t, rt, src).Execute(context.Background())
		return err
	}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, runtime.ExitOK},
		{"compile", compileErr, runtime.ExitDiagnostics},
		{"runtime", run("var z = 0\n1 / z"), runtime.ExitRuntime},
		{"limit", run("while true { }"), runtime.ExitAborted},
		{"running", runtime.ErrRunning, runtime.ExitRuntime},
	}
	for _, tt := range tests {
		if got := runtime.ExitCode(tt.err); got != tt.want {
			t.Errorf("%s: ExitCode(%v) = %d, want %d", tt.name, tt.err, got, tt.want)
		}
	}
}
