package runtime

import (
	"context"

	"github.com/tevino/abool/v2"

	"github.com/baila-lang/baila/pkg/checker"
	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/evaluator"
	"github.com/baila-lang/baila/pkg/value"
)

// SessionFile is the file name given to spans of session input.
const SessionFile = "<repl>"

// Session evaluates successive inputs against one persistent global scope,
// the way a REPL does.
type Session struct {
	rt      *Runtime
	in      *evaluator.Interpreter
	running *abool.AtomicBool
}

// NewSession starts a session with an empty global scope.
func (rt *Runtime) NewSession() *Session {
	return &Session{
		rt:      rt,
		in:      evaluator.New(rt.execOptions()),
		running: abool.New(),
	}
}

// Reset discards every definition made in the session.
func (s *Session) Reset() {
	s.in = evaluator.New(s.rt.execOptions())
}

// Incomplete reports whether input ends inside an unfinished construct,
// such as an open block or string, so a host should read more lines.
func (s *Session) Incomplete(input string) bool {
	_, diags := s.rt.parse(input, SessionFile)
	return diagnostics.Incomplete(diags)
}

// Eval compiles and runs one input. Names defined by earlier inputs are
// visible to the checker and the evaluator. The returned value is that of
// the input's trailing expression statement, or nil.
func (s *Session) Eval(ctx context.Context, input string) (value.Value, error) {
	if !s.running.SetToIf(false, true) {
		return nil, ErrRunning
	}
	defer s.running.UnSet()

	prog, diags := s.rt.parse(input, SessionFile)
	if len(diags) > 0 {
		return nil, diagnostics.Wrap(diags)
	}
	opts := s.rt.checkerOptions(checker.WithGlobals(s.globals()))
	decls, diags := checker.Declare(prog, opts...)
	if len(diags) > 0 {
		return nil, diagnostics.Wrap(diags)
	}
	if s.rt.typeCheck {
		if diags := checker.Check(prog, decls, opts...); len(diags) > 0 {
			return nil, diagnostics.Wrap(diags)
		}
	}
	return s.in.Execute(ctx, prog, decls)
}

// Names returns the names defined in the session's global scope.
func (s *Session) Names() []string {
	return s.in.Global().Names()
}

// Lookup returns the session global called name.
func (s *Session) Lookup(name string) (*evaluator.Member, bool) {
	return s.in.Global().Own(name)
}

// Describe lists the overloads of the function called name, or gives the
// type of a variable. Session definitions shadow builtins.
func (s *Session) Describe(name string) (string, bool) {
	m, ok := s.in.Global().Lookup(name)
	if !ok {
		return "", false
	}
	if fn, isFn := m.Value.(*value.Function); isFn {
		return fn.Describe(), true
	}
	return name + ": " + m.Type.String(), true
}

// globals describes the session's global scope to the checker.
func (s *Session) globals() ([]*checker.Symbol, []*checker.FuncSymbol) {
	var (
		vars  []*checker.Symbol
		funcs []*checker.FuncSymbol
	)
	env := s.in.Global()
	for _, name := range env.Names() {
		m, _ := env.Own(name)
		// Function definitions, unlike variables holding a function, are
		// immutable members named after the function.
		if fn, ok := m.Value.(*value.Function); ok && m.Immutable && fn.Name == name {
			funcs = append(funcs, &checker.FuncSymbol{Name: name, Signatures: fn.Signatures()})
			continue
		}
		vars = append(vars, &checker.Symbol{Name: name, Type: m.Type, Immutable: m.Immutable})
	}
	return vars, funcs
}
