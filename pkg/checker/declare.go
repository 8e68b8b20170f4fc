package checker

import (
	"github.com/ahrtr/gocontainer/set"
	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/cancel"
	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/types"
	"github.com/baila-lang/baila/pkg/value"
)

type config struct {
	registry *types.Registry
	builtins []*value.Function
	cancel   *cancel.Token
	vars     []*Symbol
	funcs    []*FuncSymbol
}

// Option configures Declare and Check.
type Option func(*config)

// WithRegistry resolves type names against r instead of the built-in types.
func WithRegistry(r *types.Registry) Option {
	return func(c *config) { c.registry = r }
}

// WithBuiltins makes the overloads of fns visible in the root scope.
func WithBuiltins(fns ...*value.Function) Option {
	return func(c *config) { c.builtins = append(c.builtins, fns...) }
}

// WithCancel makes the passes poll tok before each statement.
func WithCancel(tok *cancel.Token) Option {
	return func(c *config) { c.cancel = tok }
}

// WithGlobals makes names defined by earlier runs visible in the program
// scope, as a REPL session needs.
func WithGlobals(vars []*Symbol, funcs []*FuncSymbol) Option {
	return func(c *config) {
		c.vars = append(c.vars, vars...)
		c.funcs = append(c.funcs, funcs...)
	}
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	if c.registry == nil {
		c.registry = types.NewRegistry()
	}
	return c
}

// rootTable returns a table whose root scope holds the configured builtins.
func (c config) rootTable() *Table {
	t := NewTable()
	for _, fn := range c.builtins {
		for _, o := range fn.Overloads {
			// Builtins are trusted; a conflicting overload is simply dropped.
			_ = t.DefineFunction(fn.Name, o.Signature, ast.Span{})
		}
	}
	return t
}

// seed defines the configured globals in the innermost scope of t.
func (c config) seed(t *Table) {
	for _, sym := range c.vars {
		_ = t.DefineVariable(sym)
	}
	for _, fn := range c.funcs {
		for _, sig := range fn.Signatures {
			_ = t.DefineFunction(fn.Name, sig, ast.Span{})
		}
	}
}

// ResolveType converts a written type into a registered type.
func ResolveType(reg *types.Registry, ref *ast.TypeRef) (*types.Type, error) {
	base, ok := reg.Lookup(ref.Name)
	if !ok {
		return nil, diagnostics.Errorf(diagnostics.TypeError, diagnostics.At(ref.Span), "unknown type '%s'", ref.Name)
	}
	t := base
	if len(ref.Generics) > 0 {
		args := make([]*types.Type, len(ref.Generics))
		for i, g := range ref.Generics {
			arg, err := ResolveType(reg, g)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		t = t.WithGenerics(args...)
	}
	if ref.Nullable {
		t = t.AsNullable()
	}
	return t, nil
}

// Declarations holds the resolved signature of every function definition
// of a program.
type Declarations struct {
	sigs map[*ast.FunctionDefine]types.Signature
}

// Signature returns the signature computed for fn.
func (d *Declarations) Signature(fn *ast.FunctionDefine) (types.Signature, bool) {
	if d == nil {
		return types.Signature{}, false
	}
	sig, ok := d.sigs[fn]
	return sig, ok
}

// Len returns the number of declared function overloads.
func (d *Declarations) Len() int {
	if d == nil {
		return 0
	}
	return len(d.sigs)
}

type declarer struct {
	cfg    config
	decls  *Declarations
	params map[*ast.FunctionDefine][]types.Param
	byName map[string][]*ast.FunctionDefine

	// inferring holds the functions whose return type is being inferred,
	// so that recursive calls see a provisional Any.
	inferring set.Interface

	diags []diagnostics.Diagnostic
}

// Declare runs the forward-declaration pass: it resolves the parameter and
// return types of every function definition in prog, infers omitted return
// types, and rejects invalid or conflicting overloads within one scope.
func Declare(prog *ast.Program, opts ...Option) (*Declarations, []diagnostics.Diagnostic) {
	d := &declarer{
		cfg:       newConfig(opts),
		decls:     &Declarations{sigs: make(map[*ast.FunctionDefine]types.Signature)},
		params:    make(map[*ast.FunctionDefine][]types.Param),
		byName:    make(map[string][]*ast.FunctionDefine),
		inferring: set.New(),
	}

	var fns []*ast.FunctionDefine
	ast.Inspect(prog, func(n ast.Node) bool {
		if fn, ok := n.(*ast.FunctionDefine); ok {
			fns = append(fns, fn)
			d.byName[fn.Name] = append(d.byName[fn.Name], fn)
		}
		return true
	})
	for _, fn := range fns {
		if err := d.cfg.cancel.Check(fn.NameSpan); err != nil {
			d.diags = append(d.diags, diagnostics.FromError(err)...)
			return d.decls, d.diags
		}
		d.params[fn] = d.resolveParams(fn)
	}
	for _, fn := range fns {
		d.signature(fn)
	}

	ast.Inspect(prog, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Program:
			d.checkOverloads(n.Statements)
		case *ast.Block:
			d.checkOverloads(n.Statements)
		}
		return true
	})
	return d.decls, d.diags
}

func (d *declarer) report(err error) {
	d.diags = append(d.diags, diagnostics.FromError(err)...)
}

func (d *declarer) resolve(ref *ast.TypeRef) *types.Type {
	t, err := ResolveType(d.cfg.registry, ref)
	if err != nil {
		d.report(err)
		return types.Any
	}
	return t
}

func (d *declarer) resolveParams(fn *ast.FunctionDefine) []types.Param {
	params := make([]types.Param, len(fn.Params))
	for i, p := range fn.Params {
		t := types.Any
		if p.Type != nil {
			t = d.resolve(p.Type)
		}
		params[i] = types.Param{Name: p.Name, Type: t, Optional: p.Default != nil, Vararg: p.Vararg}
	}
	return params
}

// signature computes and memoizes the signature of fn. A signature read
// while fn's own return type is being inferred is provisional and is not
// stored.
func (d *declarer) signature(fn *ast.FunctionDefine) types.Signature {
	if sig, ok := d.decls.sigs[fn]; ok {
		return sig
	}
	sig := types.Signature{Params: d.params[fn]}
	if fn.ReturnType != nil {
		sig.Return = d.resolve(fn.ReturnType)
	} else {
		ret, final := d.infer(fn)
		sig.Return = ret
		if !final {
			return sig
		}
	}
	d.decls.sigs[fn] = sig
	return sig
}

// signaturesOf returns the signatures of every definition called name.
func (d *declarer) signaturesOf(name string) []types.Signature {
	defs := d.byName[name]
	out := make([]types.Signature, len(defs))
	for i, fn := range defs {
		out[i] = d.signature(fn)
	}
	return out
}

// infer derives the return type of a function without a declared one from
// its return statement. No return, or a bare one, means no value. Types
// that cannot be determined statically fall back to Any.
func (d *declarer) infer(fn *ast.FunctionDefine) (*types.Type, bool) {
	returns := ast.CollectReturns(fn.Body)
	if len(returns) == 0 || returns[0].Value == nil {
		return nil, true
	}
	if d.inferring.Contains(fn) {
		return types.Any, false
	}
	d.inferring.Add(fn)
	defer d.inferring.Remove(fn)

	c := &Checker{cfg: d.cfg, table: d.cfg.rootTable(), silent: true, infer: d}
	c.table.Push()
	d.cfg.seed(c.table)
	c.table.Push()
	c.fn = &funcContext{name: fn.Name, inferring: true}
	for i, p := range fn.Params {
		_ = c.table.DefineVariable(&Symbol{Name: p.Name, Type: d.params[fn][i].Type, Span: p.Span})
	}
	c.checkStatements(fn.Body.Statements)

	if c.fn.inferred == nil {
		return types.Any, true
	}
	return c.fn.inferred, true
}

// returnType returns the return type of fn as seen from its declaring
// scope. The forward-declaration pass infers omitted return types without
// any enclosing variables, so a first returned value that reads one comes
// out as Any; such definitions are inferred again against the variables
// their scope holds at this point of the check.
func (c *Checker) returnType(fn *ast.FunctionDefine, sig types.Signature) *types.Type {
	if fn.ReturnType != nil || !isDynamic(sig.Return) || c.scopes == nil {
		return sig.Return
	}
	if t, ok := c.refined[fn]; ok {
		return t
	}
	s, ok := c.scopes[fn]
	if !ok || c.refining.Contains(fn) {
		return sig.Return
	}
	c.refining.Add(fn)
	defer c.refining.Remove(fn)

	sub := &Checker{
		cfg:      c.cfg,
		table:    &Table{current: s},
		decls:    c.decls,
		silent:   true,
		scopes:   c.scopes,
		refined:  c.refined,
		refining: c.refining,
	}
	sub.table.Push()
	sub.fn = &funcContext{name: fn.Name, inferring: true}
	for i, p := range fn.Params {
		_ = sub.table.DefineVariable(&Symbol{Name: p.Name, Type: sig.Params[i].Type, Span: p.Span})
	}
	sub.checkStatements(fn.Body.Statements)

	t := sub.fn.inferred
	if t == nil || isDynamic(t) {
		// The variable may still be defined later in the scope.
		return sig.Return
	}
	c.refined[fn] = t
	return t
}

// checkOverloads validates the function definitions of one statement list
// against each other.
func (d *declarer) checkOverloads(stmts []ast.Stmt) {
	t := NewTable()
	for _, fn := range ast.FunctionDefines(stmts) {
		sig, ok := d.decls.sigs[fn]
		if !ok {
			continue
		}
		if err := t.DefineFunction(fn.Name, sig, fn.NameSpan); err != nil {
			d.report(err)
		}
	}
}
