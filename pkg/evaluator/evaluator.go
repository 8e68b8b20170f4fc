// Package evaluator implements the Baila tree-walking interpreter and its
// runtime name table.
package evaluator

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/cancel"
	"github.com/baila-lang/baila/pkg/checker"
	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/types"
	"github.com/baila-lang/baila/pkg/value"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart    TraceEventType = "run_start"
	TraceRunEnd      TraceEventType = "run_end"
	TraceStmtStart   TraceEventType = "stmt_start"
	TraceStmtEnd     TraceEventType = "stmt_end"
	TraceFnCallStart TraceEventType = "fn_call_start"
	TraceFnCallEnd   TraceEventType = "fn_call_end"
	TraceLoopStart   TraceEventType = "loop_start"
	TraceLoopEnd     TraceEventType = "loop_end"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string            `json:"ts"`
	RunID     string            `json:"runId"`
	Event     TraceEventType    `json:"event"`
	Span      *ast.Span         `json:"span,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// ExecOptions configures an Interpreter.
type ExecOptions struct {
	// Registry resolves type names; nil means the built-in types only.
	Registry *types.Registry
	// Builtins are defined in the root scope.
	Builtins []*value.Function
	Trace    func(event TraceEvent)
	RunID    string
	Cancel   *cancel.Token
	Limits   Limits
}

// Interpreter owns a runtime scope chain. The root scope holds the
// builtins; programs run in a global scope beneath it, so user definitions
// may shadow builtins. Successive Execute calls share the global scope.
type Interpreter struct {
	opts   ExecOptions
	root   *Env
	global *Env
	last   value.Value
	active *evaluator
}

// New creates an interpreter with a fresh scope chain.
func New(opts ExecOptions) *Interpreter {
	if opts.Registry == nil {
		opts.Registry = types.NewRegistry()
	}
	if opts.Limits.MaxCallDepth <= 0 {
		opts.Limits.MaxCallDepth = defaultMaxCallDepth
	}
	root := NewEnv(nil)
	for _, fn := range opts.Builtins {
		// Builtin names are unique; a repeated name keeps the first.
		_ = root.Define(&Member{Name: fn.Name, Type: types.Function, Value: fn, Immutable: true}, ast.Span{})
	}
	return &Interpreter{opts: opts, root: root, global: root.Child()}
}

// Global returns the scope top-level statements execute in.
func (in *Interpreter) Global() *Env {
	return in.global
}

// LastValue returns the value of the most recently executed expression
// statement, or nil.
func (in *Interpreter) LastValue() value.Value {
	return in.last
}

// Execute runs the top-level statements of prog in the global scope.
// decls carries the signatures computed by the forward-declaration pass;
// when nil the pass is run here. It returns the last expression value.
func (in *Interpreter) Execute(ctx context.Context, prog *ast.Program, decls *checker.Declarations) (value.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	tok := in.opts.Cancel.WithContext(ctx)
	if decls == nil {
		var diags []diagnostics.Diagnostic
		decls, diags = checker.Declare(prog,
			checker.WithRegistry(in.opts.Registry),
			checker.WithBuiltins(in.opts.Builtins...),
			checker.WithCancel(tok))
		if len(diags) > 0 {
			return nil, diagnostics.Wrap(diags)
		}
	}

	ev := &evaluator{in: in, ctx: ctx, decls: decls, cancel: tok}
	saved := in.active
	in.active = ev
	defer func() { in.active = saved }()

	in.last = nil
	start := time.Now()
	span := prog.Span
	ev.emit(TraceRunStart, &span, nil)
	_, err := ev.execStatements(prog.Statements, in.global)
	ev.emit(TraceRunEnd, &span, map[string]string{
		"elapsedMs": strconv.FormatInt(time.Since(start).Milliseconds(), 10),
	})
	if err != nil {
		return nil, err
	}
	return in.last, nil
}

// completion is the outcome of executing a statement. A returned
// completion travels up to the nearest function call.
type completion interface{ completion() }

type normalCompletion struct{}

type returnCompletion struct{ value value.Value }

func (normalCompletion) completion() {}
func (returnCompletion) completion() {}

var normal completion = normalCompletion{}

// userFunc is one overload defined by a FunctionDefine, bound to the scope
// it was declared in.
type userFunc struct {
	def     *ast.FunctionDefine
	sig     types.Signature
	closure *Env
	decls   *checker.Declarations
}

type evaluator struct {
	in     *Interpreter
	ctx    context.Context
	decls  *checker.Declarations
	cancel *cancel.Token
	usage  usage
}

func (ev *evaluator) emit(event TraceEventType, span *ast.Span, data map[string]string) {
	if ev.in.opts.Trace != nil {
		ev.in.opts.Trace(TraceEvent{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			RunID:     ev.in.opts.RunID,
			Event:     event,
			Span:      span,
			Data:      data,
		})
	}
}

func (ev *evaluator) poll(span ast.Span) error {
	return ev.cancel.Check(span)
}

func (ev *evaluator) iterate(span ast.Span) error {
	ev.usage.iterations++
	if limit := ev.in.opts.Limits.MaxIterations; limit > 0 && ev.usage.iterations > limit {
		return diagnostics.Errorf(diagnostics.LimitError, diagnostics.At(span), "iteration limit exceeded (max %d)", limit)
	}
	return nil
}

// --- Statements ---

// hoist registers the function definitions of one statement list in env
// before any of its statements run.
func (ev *evaluator) hoist(stmts []ast.Stmt, env *Env) error {
	for _, fn := range ast.FunctionDefines(stmts) {
		sig, ok := ev.decls.Signature(fn)
		if !ok {
			return diagnostics.Errorf(diagnostics.ReferenceError, diagnostics.At(fn.NameSpan),
				"function '%s' was not declared", fn.Name)
		}
		uf := &userFunc{def: fn, sig: sig, closure: env, decls: ev.decls}
		if err := env.DefineFunction(fn.Name, ev.in.overload(uf), fn.NameSpan); err != nil {
			return err
		}
	}
	return nil
}

func (ev *evaluator) execStatements(stmts []ast.Stmt, env *Env) (completion, error) {
	if err := ev.hoist(stmts, env); err != nil {
		return nil, err
	}
	for _, stmt := range stmts {
		c, err := ev.exec(stmt, env)
		if err != nil {
			return nil, err
		}
		if _, ok := c.(returnCompletion); ok {
			return c, nil
		}
	}
	return normal, nil
}

func (ev *evaluator) execBlock(b *ast.Block, env *Env) (completion, error) {
	return ev.execStatements(b.Statements, env.Child())
}

func (ev *evaluator) exec(stmt ast.Stmt, env *Env) (completion, error) {
	span := stmt.NodeSpan()
	if err := ev.poll(span); err != nil {
		return nil, err
	}
	ev.emit(TraceStmtStart, &span, nil)
	c, err := ev.execStmt(stmt, env)
	ev.emit(TraceStmtEnd, &span, nil)
	return c, err
}

func (ev *evaluator) execStmt(stmt ast.Stmt, env *Env) (completion, error) {
	switch s := stmt.(type) {
	case *ast.Block:
		return ev.execBlock(s, env)

	case *ast.IfStmt:
		cond, err := ev.condition(s.Cond, env)
		if err != nil {
			return nil, err
		}
		if cond {
			return ev.execBlock(s.Then, env)
		}
		if s.Else != nil {
			return ev.exec(s.Else, env)
		}
		return normal, nil

	case *ast.WhileStmt:
		return ev.execWhile(s, env)

	case *ast.DoWhileStmt:
		return ev.execDoWhile(s, env)

	case *ast.ForStmt:
		return ev.execFor(s, env)

	case *ast.VarDefine:
		return normal, ev.define(s.Name, s.Type, s.Value, false, s.Span, env)

	case *ast.ConstDefine:
		return normal, ev.define(s.Name, s.Type, s.Value, true, s.Span, env)

	case *ast.FunctionDefine:
		// Registered when the enclosing statement list was entered.
		return normal, nil

	case *ast.ReturnStmt:
		var val value.Value
		if s.Value != nil {
			v, err := ev.eval(s.Value, env)
			if err != nil {
				return nil, err
			}
			val = v
		}
		return returnCompletion{value: val}, nil

	case *ast.ExprStmt:
		v, err := ev.eval(s.Expr, env)
		if err != nil {
			return nil, err
		}
		ev.in.last = v
		return normal, nil

	case *ast.NoOp:
		return normal, nil
	}
	span := stmt.NodeSpan()
	return nil, diagnostics.Errorf(diagnostics.NotImplementedError, &span, "unsupported statement %s", stmt.Kind())
}

// condition evaluates a loop or if condition with AsBool coercion.
func (ev *evaluator) condition(e ast.Expr, env *Env) (bool, error) {
	v, err := ev.eval(e, env)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, diagnostics.Errorf(diagnostics.TypeError, diagnostics.At(e.NodeSpan()), "condition produces no value")
	}
	return v.AsBool(), nil
}

func (ev *evaluator) define(name string, ref *ast.TypeRef, init ast.Expr, immutable bool, span ast.Span, env *Env) error {
	var declared *types.Type
	if ref != nil {
		t, err := checker.ResolveType(ev.in.opts.Registry, ref)
		if err != nil {
			return err
		}
		declared = t
	}

	var v value.Value
	if init != nil {
		val, err := ev.eval(init, env)
		if err != nil {
			return err
		}
		if val == nil {
			return diagnostics.Errorf(diagnostics.TypeError, diagnostics.At(init.NodeSpan()),
				"cannot initialize '%s' with an expression that produces no value", name)
		}
		v = val
	}

	typ := declared
	switch {
	case v == nil:
		zero, ok := value.Zero(declared)
		if !ok {
			return diagnostics.Errorf(diagnostics.TypeError, diagnostics.At(span),
				"type %s has no default value; give '%s' an initial value", declared, name)
		}
		v = zero
	case declared == nil:
		typ = v.Type()
	case !v.Type().IsImplicitlyConvertibleTo(declared):
		return diagnostics.Errorf(diagnostics.TypeError, diagnostics.At(init.NodeSpan()),
			"cannot assign %s to '%s' of type %s", v.Type(), name, declared)
	}
	return env.Define(&Member{Name: name, Type: typ, Value: v, Immutable: immutable}, span)
}

// --- Loops ---

func (ev *evaluator) execWhile(s *ast.WhileStmt, env *Env) (completion, error) {
	span := s.Span
	ev.emit(TraceLoopStart, &span, map[string]string{"kind": "while"})
	defer ev.emit(TraceLoopEnd, &span, map[string]string{"kind": "while"})

	loopEnv := env.Child()
	for {
		cond, err := ev.condition(s.Cond, loopEnv)
		if err != nil || !cond {
			return normal, err
		}
		if err := ev.iterate(span); err != nil {
			return nil, err
		}
		c, err := ev.execBlock(s.Body, loopEnv)
		if err != nil {
			return nil, err
		}
		if _, ok := c.(returnCompletion); ok {
			return c, nil
		}
	}
}

func (ev *evaluator) execDoWhile(s *ast.DoWhileStmt, env *Env) (completion, error) {
	span := s.Span
	ev.emit(TraceLoopStart, &span, map[string]string{"kind": "do"})
	defer ev.emit(TraceLoopEnd, &span, map[string]string{"kind": "do"})

	loopEnv := env.Child()
	for {
		if err := ev.iterate(span); err != nil {
			return nil, err
		}
		c, err := ev.execBlock(s.Body, loopEnv)
		if err != nil {
			return nil, err
		}
		if _, ok := c.(returnCompletion); ok {
			return c, nil
		}
		cond, err := ev.condition(s.Cond, loopEnv)
		if err != nil || !cond {
			return normal, err
		}
	}
}

// loopBound evaluates one bound of a for loop, which must be an Int or a
// Float.
func (ev *evaluator) loopBound(e ast.Expr, env *Env) (value.Value, error) {
	v, err := ev.eval(e, env)
	if err != nil {
		return nil, err
	}
	switch v.(type) {
	case value.Int, value.Float:
		return v, nil
	}
	got := "no value"
	if v != nil {
		got = v.Type().String()
	}
	return nil, diagnostics.Errorf(diagnostics.TypeError, diagnostics.At(e.NodeSpan()), "for loop bounds must be numbers, got %s", got)
}

// execFor runs a counting loop. The loop variable is an Int when both
// bounds and the step are Ints and a Float otherwise. The direction is
// fixed at loop start from the order of the bounds; the step gives the
// magnitude.
func (ev *evaluator) execFor(s *ast.ForStmt, env *Env) (completion, error) {
	from, err := ev.loopBound(s.From, env)
	if err != nil {
		return nil, err
	}
	to, err := ev.loopBound(s.To, env)
	if err != nil {
		return nil, err
	}
	step := value.NewInt(1)
	if s.Step != nil {
		if step, err = ev.loopBound(s.Step, env); err != nil {
			return nil, err
		}
	}
	if f, _ := value.ToFloat(step); f == 0 {
		return nil, diagnostics.Errorf(diagnostics.ArgumentError, diagnostics.At(s.Step.NodeSpan()), "for loop step must not be zero")
	}

	_, fromInt := from.(value.Int)
	_, toInt := to.(value.Int)
	_, stepInt := step.(value.Int)
	isInt := fromInt && toInt && stepInt

	loopEnv := env.Child()
	counter := &Member{Name: s.Var, Type: types.Float}
	if isInt {
		counter.Type = types.Int
		counter.Value = from
	} else {
		f, _ := value.ToFloat(from)
		counter.Value = value.NewFloat(f)
	}
	if err := loopEnv.Define(counter, s.VarSpan); err != nil {
		return nil, err
	}

	span := s.Span
	ev.emit(TraceLoopStart, &span, map[string]string{"kind": "for", "var": s.Var})
	defer ev.emit(TraceLoopEnd, &span, map[string]string{"kind": "for", "var": s.Var})

	if isInt {
		hi := to.(value.Int).Value
		mag := magnitude(step.(value.Int).Value)
		up := from.(value.Int).Value <= hi
		for {
			i := counter.Value.(value.Int).Value
			if (up && i > hi) || (!up && i < hi) {
				return normal, nil
			}
			c, err := ev.forIteration(s, loopEnv)
			if err != nil || c != normal {
				return c, err
			}
			next, ok := advance(counter.Value.(value.Int).Value, mag, up)
			if !ok {
				return normal, nil
			}
			counter.Value = value.NewInt(next)
		}
	}

	lo, _ := value.ToFloat(from)
	hi, _ := value.ToFloat(to)
	inc, _ := value.ToFloat(step)
	if inc < 0 {
		inc = -inc
	}
	up := lo <= hi
	if !up {
		inc = -inc
	}
	for {
		f := counter.Value.(value.Float).Value
		if (up && f > hi) || (!up && f < hi) {
			return normal, nil
		}
		c, err := ev.forIteration(s, loopEnv)
		if err != nil || c != normal {
			return c, err
		}
		counter.Value = value.NewFloat(counter.Value.(value.Float).Value + inc)
	}
}

// magnitude returns |n| without overflowing for math.MinInt64.
func magnitude(n int64) uint64 {
	if n < 0 {
		return uint64(-(n + 1)) + 1
	}
	return uint64(n)
}

// advance moves an Int loop counter by mag in the loop direction. ok is
// false when the next value would leave the int64 range, which ends the
// loop since every bound lies inside it.
func advance(i int64, mag uint64, up bool) (int64, bool) {
	if up {
		if uint64(math.MaxInt64)-uint64(i) < mag {
			return 0, false
		}
		return int64(uint64(i) + mag), true
	}
	if uint64(i)+1<<63 < mag {
		return 0, false
	}
	return int64(uint64(i) - mag), true
}

func (ev *evaluator) forIteration(s *ast.ForStmt, loopEnv *Env) (completion, error) {
	if err := ev.poll(s.Span); err != nil {
		return nil, err
	}
	if err := ev.iterate(s.Span); err != nil {
		return nil, err
	}
	return ev.execBlock(s.Body, loopEnv)
}

// --- Functions ---

// overload wraps uf as a callable overload. The call runs on whichever
// execution of this interpreter is active, so functions defined by an
// earlier Execute stay callable from later ones.
func (in *Interpreter) overload(uf *userFunc) *value.Overload {
	return &value.Overload{
		Signature: uf.sig,
		Call: func(ctx context.Context, args []value.Value) (value.Value, error) {
			ev := in.active
			if ev == nil {
				return nil, diagnostics.Errorf(diagnostics.ReferenceError, diagnostics.At(uf.def.NameSpan),
					"function '%s' called outside of an execution", uf.def.Name)
			}
			return ev.invoke(uf, args)
		},
	}
}

// invoke runs a user function: a call scope beneath the closure scope is
// pushed, parameters are bound with omitted ones taking their defaults, and
// the body executes directly in that scope.
func (ev *evaluator) invoke(uf *userFunc, args []value.Value) (value.Value, error) {
	name := uf.def.Name
	if ev.usage.depth >= ev.in.opts.Limits.MaxCallDepth {
		return nil, diagnostics.Errorf(diagnostics.LimitError, diagnostics.At(uf.def.NameSpan),
			"maximum call depth of %d exceeded in '%s'", ev.in.opts.Limits.MaxCallDepth, name)
	}
	ev.usage.depth++
	defer func() { ev.usage.depth-- }()

	savedDecls := ev.decls
	ev.decls = uf.decls
	defer func() { ev.decls = savedDecls }()

	scope := uf.closure.Child()
	for i, p := range uf.def.Params {
		want := uf.sig.Params[i].Type
		var arg value.Value
		switch {
		case i < len(args):
			arg = args[i]
		case p.Default != nil:
			v, err := ev.eval(p.Default, scope)
			if err != nil {
				return nil, err
			}
			if v == nil || !v.Type().IsImplicitlyConvertibleTo(want) {
				got := "no value"
				if v != nil {
					got = v.Type().String()
				}
				return nil, diagnostics.Errorf(diagnostics.TypeError, diagnostics.At(p.Default.NodeSpan()),
					"default value of parameter '%s' has type %s, expected %s", p.Name, got, want)
			}
			arg = v
		default:
			return nil, diagnostics.Errorf(diagnostics.ArgumentError, diagnostics.At(uf.def.NameSpan),
				"missing argument '%s' in call to '%s'", p.Name, name)
		}
		if err := scope.Define(&Member{Name: p.Name, Type: want, Value: arg}, p.Span); err != nil {
			return nil, err
		}
	}

	c, err := ev.execStatements(uf.def.Body.Statements, scope)
	if err != nil {
		return nil, err
	}
	var result value.Value
	if r, ok := c.(returnCompletion); ok {
		result = r.value
	}

	ret := uf.sig.Return
	switch {
	case ret == nil && result != nil:
		return nil, diagnostics.Errorf(diagnostics.TypeError, diagnostics.At(uf.def.NameSpan),
			"function '%s' does not return a value", name)
	case ret != nil && result == nil:
		return nil, diagnostics.Errorf(diagnostics.TypeError, diagnostics.At(uf.def.NameSpan),
			"function '%s' must return a value of type %s", name, ret)
	case ret != nil && !result.Type().IsImplicitlyConvertibleTo(ret):
		return nil, diagnostics.Errorf(diagnostics.TypeError, diagnostics.At(uf.def.NameSpan),
			"cannot return %s from '%s', expected %s", result.Type(), name, ret)
	}
	return result, nil
}
