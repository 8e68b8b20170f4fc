// Package runtime provides the top-level Baila entry points: compiling,
// checking and executing programs, and persistent sessions for REPL hosts.
package runtime

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/tevino/abool/v2"

	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/builtins"
	"github.com/baila-lang/baila/pkg/cancel"
	"github.com/baila-lang/baila/pkg/checker"
	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/evaluator"
	"github.com/baila-lang/baila/pkg/formatter"
	"github.com/baila-lang/baila/pkg/lexer"
	"github.com/baila-lang/baila/pkg/parser"
	"github.com/baila-lang/baila/pkg/types"
	"github.com/baila-lang/baila/pkg/value"
)

// ErrRunning is returned when Execute is called on a program or session
// that is already executing.
var ErrRunning = errors.New("baila: program is already running")

// Runtime wires together all Baila components for program execution.
type Runtime struct {
	out       io.Writer
	trace     func(event evaluator.TraceEvent)
	runID     string
	typeCheck bool
	registry  *types.Registry
	cancel    *cancel.Token
	limits    evaluator.Limits
	builtins  *builtins.Registry
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithOutput sets where print and println write. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.out = w
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTypeCheck enables or disables the static type-checking pass run by
// Compile. It is enabled by default; pass false to leave type errors to the
// evaluator.
func WithTypeCheck(enabled bool) Option {
	return func(rt *Runtime) {
		rt.typeCheck = enabled
	}
}

// WithRegistry sets the type registry used to resolve type names.
func WithRegistry(r *types.Registry) Option {
	return func(rt *Runtime) {
		rt.registry = r
	}
}

// WithCancel sets the token polled by every pass. Cancelling it aborts the
// current pass with a CancelledError.
func WithCancel(tok *cancel.Token) Option {
	return func(rt *Runtime) {
		rt.cancel = tok
	}
}

// WithLimits bounds call depth and loop iterations.
func WithLimits(l evaluator.Limits) Option {
	return func(rt *Runtime) {
		rt.limits = l
	}
}

// New creates a new Runtime with the given options.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		out:       os.Stdout,
		runID:     "cli",
		typeCheck: true,
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.registry == nil {
		rt.registry = types.NewRegistry()
	}
	rt.builtins = builtins.Defaults(rt.out)
	return rt
}

// Builtins returns the functions defined in the root scope of every run.
func (rt *Runtime) Builtins() *builtins.Registry {
	return rt.builtins
}

func (rt *Runtime) checkerOptions(extra ...checker.Option) []checker.Option {
	opts := []checker.Option{
		checker.WithRegistry(rt.registry),
		checker.WithBuiltins(rt.builtins.All()...),
		checker.WithCancel(rt.cancel),
	}
	return append(opts, extra...)
}

func (rt *Runtime) execOptions() evaluator.ExecOptions {
	return evaluator.ExecOptions{
		Registry: rt.registry,
		Builtins: rt.builtins.All(),
		Trace:    rt.trace,
		RunID:    rt.runID,
		Cancel:   rt.cancel,
		Limits:   rt.limits,
	}
}

// Tokenize lexes source with the runtime's cancellation token.
func (rt *Runtime) Tokenize(source, filename string, mode lexer.Mode) ([]lexer.Token, []diagnostics.Diagnostic) {
	return lexer.New(source, filename, lexer.WithMode(mode), lexer.WithCancel(rt.cancel)).Tokenize()
}

func (rt *Runtime) parse(source, filename string) (*ast.Program, []diagnostics.Diagnostic) {
	return parser.Parse(source, filename, parser.WithCancel(rt.cancel))
}

// Compile lexes, parses and forward-declares source and, unless disabled
// with WithTypeCheck, type-checks it. Failures are reported as a
// *diagnostics.Error.
//
// The type-checking pass is optional in the language but on by default
// here: a Runtime built without WithTypeCheck(false) rejects statically
// ill-typed programs before any statement runs, where the evaluator alone
// would only fail when the offending statement executes.
func (rt *Runtime) Compile(source, filename string) (*Program, error) {
	prog, diags := rt.parse(source, filename)
	if len(diags) > 0 {
		return nil, diagnostics.Wrap(diags)
	}
	decls, diags := checker.Declare(prog, rt.checkerOptions()...)
	if len(diags) > 0 {
		return nil, diagnostics.Wrap(diags)
	}
	if rt.typeCheck {
		if diags := checker.Check(prog, decls, rt.checkerOptions()...); len(diags) > 0 {
			return nil, diagnostics.Wrap(diags)
		}
	}
	return &Program{rt: rt, ast: prog, decls: decls, running: abool.New()}, nil
}

// Check compiles source and runs the type-checking pass regardless of
// WithTypeCheck, returning every diagnostic found.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	prog, diags := rt.parse(source, filename)
	if len(diags) > 0 {
		return diags
	}
	decls, diags := checker.Declare(prog, rt.checkerOptions()...)
	if len(diags) > 0 {
		return diags
	}
	return checker.Check(prog, decls, rt.checkerOptions()...)
}

// Format parses and formats a Baila program.
func (rt *Runtime) Format(source, filename string) (string, error) {
	prog, diags := rt.parse(source, filename)
	if len(diags) > 0 {
		return "", diagnostics.Wrap(diags)
	}
	return formatter.Format(prog), nil
}

// Compile compiles source with a default Runtime.
func Compile(source, filename string) (*Program, error) {
	return New().Compile(source, filename)
}

// Check checks source with a default Runtime.
func Check(source, filename string) []diagnostics.Diagnostic {
	return New().Check(source, filename)
}

// Program is a compiled Baila program.
type Program struct {
	rt      *Runtime
	ast     *ast.Program
	decls   *checker.Declarations
	running *abool.AtomicBool
	last    value.Value
}

// AST returns the parsed program.
func (p *Program) AST() *ast.Program {
	return p.ast
}

// Execute runs all top-level statements in a fresh global scope and returns
// the value of the last expression statement, or nil.
func (p *Program) Execute(ctx context.Context) (value.Value, error) {
	if !p.running.SetToIf(false, true) {
		return nil, ErrRunning
	}
	defer p.running.UnSet()

	in := evaluator.New(p.rt.execOptions())
	v, err := in.Execute(ctx, p.ast, p.decls)
	p.last = in.LastValue()
	return v, err
}

// LastValue returns the value of the last expression statement evaluated by
// the most recent Execute.
func (p *Program) LastValue() value.Value {
	return p.last
}
