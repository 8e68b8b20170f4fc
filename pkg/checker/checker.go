// Package checker implements Baila's compile-time passes: the
// forward-declaration pass that computes function signatures, and the
// optional type-checking pass over the compile-time name table.
package checker

import (
	"fmt"

	"github.com/ahrtr/gocontainer/set"
	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/types"
	"github.com/baila-lang/baila/pkg/value"
)

type funcContext struct {
	name string
	ret  *types.Type

	// Set while inferring a return type; inferred receives the type of
	// the first returned value.
	inferring bool
	inferred  *types.Type
}

// Checker walks a program with a compile-time name table and reports type
// errors without executing anything.
type Checker struct {
	cfg   config
	table *Table
	decls *Declarations
	diags []diagnostics.Diagnostic

	silent    bool
	infer     *declarer
	fn        *funcContext
	cancelled bool

	// scopes maps each hoisted definition to the scope it was declared in.
	// refined caches return types inferred against those scopes.
	scopes   map[*ast.FunctionDefine]*scope
	refined  map[*ast.FunctionDefine]*types.Type
	refining set.Interface
}

// Check type-checks prog using the signatures computed by Declare.
func Check(prog *ast.Program, decls *Declarations, opts ...Option) []diagnostics.Diagnostic {
	cfg := newConfig(opts)
	c := &Checker{
		cfg:      cfg,
		table:    cfg.rootTable(),
		decls:    decls,
		scopes:   make(map[*ast.FunctionDefine]*scope),
		refined:  make(map[*ast.FunctionDefine]*types.Type),
		refining: set.New(),
	}
	restore := c.table.Push()
	defer restore()
	cfg.seed(c.table)
	c.checkStatements(prog.Statements)
	return c.diags
}

func (c *Checker) errorf(code string, span ast.Span, format string, args ...any) {
	if c.silent {
		return
	}
	c.diags = append(c.diags, diagnostics.MakeDiag(code, fmt.Sprintf(format, args...), &span, ""))
}

func (c *Checker) report(err error) {
	if c.silent {
		return
	}
	c.diags = append(c.diags, diagnostics.FromError(err)...)
}

func (c *Checker) sigOf(fn *ast.FunctionDefine) (types.Signature, bool) {
	if c.infer != nil {
		return c.infer.signature(fn), true
	}
	return c.decls.Signature(fn)
}

func (c *Checker) resolveType(ref *ast.TypeRef) *types.Type {
	t, err := ResolveType(c.cfg.registry, ref)
	if err != nil {
		c.report(err)
		return types.Any
	}
	return t
}

// checkStatements hoists the function definitions of one statement list
// into the current scope, then checks each statement in order.
func (c *Checker) checkStatements(stmts []ast.Stmt) {
	for _, fn := range ast.FunctionDefines(stmts) {
		sig, ok := c.sigOf(fn)
		if !ok {
			continue
		}
		if err := c.table.define(fn.Name, sig, fn, fn.NameSpan); err != nil {
			c.report(err)
		}
		if c.scopes != nil {
			c.scopes[fn] = c.table.current
		}
	}
	for _, s := range stmts {
		if c.cancelled {
			return
		}
		if err := c.cfg.cancel.Check(s.NodeSpan()); err != nil {
			c.cancelled = true
			c.diags = append(c.diags, diagnostics.FromError(err)...)
			return
		}
		c.checkStmt(s)
	}
}

func (c *Checker) checkBlock(b *ast.Block) {
	restore := c.table.Push()
	defer restore()
	c.checkStatements(b.Statements)
}

func (c *Checker) checkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Block:
		c.checkBlock(n)
	case *ast.IfStmt:
		c.valueOf(n.Cond)
		c.checkBlock(n.Then)
		if n.Else != nil {
			c.checkStmt(n.Else)
		}
	case *ast.WhileStmt:
		c.valueOf(n.Cond)
		c.checkBlock(n.Body)
	case *ast.DoWhileStmt:
		c.checkBlock(n.Body)
		c.valueOf(n.Cond)
	case *ast.ForStmt:
		c.checkFor(n)
	case *ast.VarDefine:
		c.checkDefine(n.Name, n.Type, n.Value, false, n.Span)
	case *ast.ConstDefine:
		c.checkDefine(n.Name, n.Type, n.Value, true, n.Span)
	case *ast.FunctionDefine:
		c.checkFunction(n)
	case *ast.ReturnStmt:
		c.checkReturn(n)
	case *ast.ExprStmt:
		c.typeOf(n.Expr)
	case *ast.NoOp:
	}
}

func (c *Checker) checkFor(n *ast.ForStmt) {
	restore := c.table.Push()
	defer restore()

	bounds := []ast.Expr{n.From, n.To}
	if n.Step != nil {
		bounds = append(bounds, n.Step)
	}
	varType := types.Int
	for _, b := range bounds {
		t, ok := c.valueOf(b)
		switch {
		case !ok:
			varType = types.Number
		case isDynamic(t) || t.Equals(types.Number):
			if !varType.Equals(types.Float) {
				varType = types.Number
			}
		case t.Equals(types.Float):
			varType = types.Float
		case t.Equals(types.Int):
		default:
			c.errorf(diagnostics.TypeError, b.NodeSpan(), "for loop bounds must be numbers, got %s", t)
		}
	}
	if err := c.table.DefineVariable(&Symbol{Name: n.Var, Type: varType, Span: n.VarSpan}); err != nil {
		c.report(err)
	}
	c.checkBlock(n.Body)
}

func (c *Checker) checkDefine(name string, ref *ast.TypeRef, init ast.Expr, immutable bool, span ast.Span) {
	var declared *types.Type
	if ref != nil {
		declared = c.resolveType(ref)
	}
	typ := declared
	switch {
	case init != nil:
		vt, ok := c.valueOf(init)
		if declared == nil {
			typ = types.Any
			if ok {
				typ = vt
			}
		} else if ok && !mayConvert(vt, declared) {
			c.errorf(diagnostics.TypeError, init.NodeSpan(), "cannot assign %s to '%s' of type %s", vt, name, declared)
		}
	case declared != nil:
		if _, ok := value.Zero(declared); !ok {
			c.errorf(diagnostics.TypeError, span, "type %s has no default value; give '%s' an initial value", declared, name)
		}
	}
	if err := c.table.DefineVariable(&Symbol{Name: name, Type: typ, Immutable: immutable, Span: span}); err != nil {
		c.report(err)
	}
}

func (c *Checker) checkFunction(fn *ast.FunctionDefine) {
	sig, ok := c.sigOf(fn)
	if !ok {
		return
	}
	restore := c.table.Push()
	defer restore()
	saved := c.fn
	c.fn = &funcContext{name: fn.Name, ret: sig.Return}
	defer func() { c.fn = saved }()

	for i, p := range fn.Params {
		pt := sig.Params[i].Type
		if p.Default != nil {
			dt, ok := c.valueOf(p.Default)
			if ok && !mayConvert(dt, pt) {
				c.errorf(diagnostics.TypeError, p.Default.NodeSpan(),
					"default value of parameter '%s' has type %s, expected %s", p.Name, dt, pt)
			}
		}
		if err := c.table.DefineVariable(&Symbol{Name: p.Name, Type: pt, Span: p.Span}); err != nil {
			c.report(err)
		}
	}
	if sig.Return != nil && len(ast.CollectReturns(fn.Body)) == 0 {
		c.errorf(diagnostics.TypeError, fn.NameSpan, "function '%s' must return a value of type %s", fn.Name, sig.Return)
	}
	c.checkStatements(fn.Body.Statements)
}

func (c *Checker) checkReturn(n *ast.ReturnStmt) {
	fc := c.fn
	if fc == nil {
		c.errorf(diagnostics.SyntaxError, n.Span, "'return' outside of a function")
		return
	}
	if fc.inferring {
		if n.Value != nil && fc.inferred == nil {
			if t, ok := c.valueOf(n.Value); ok {
				fc.inferred = t
			}
		}
		return
	}
	if n.Value == nil {
		if fc.ret != nil {
			c.errorf(diagnostics.TypeError, n.Span, "function '%s' must return a value of type %s", fc.name, fc.ret)
		}
		return
	}
	t, ok := c.valueOf(n.Value)
	if fc.ret == nil {
		c.errorf(diagnostics.TypeError, n.Value.NodeSpan(), "function '%s' does not return a value", fc.name)
		return
	}
	if ok && !mayConvert(t, fc.ret) {
		c.errorf(diagnostics.TypeError, n.Value.NodeSpan(), "cannot return %s from '%s', expected %s", t, fc.name, fc.ret)
	}
}
