package evaluator

import (
	"strings"

	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/value"
)

// eval evaluates an expression. A nil value with a nil error means the
// expression produced no value (a call to a function without a result).
func (ev *evaluator) eval(expr ast.Expr, env *Env) (value.Value, error) {
	if err := ev.poll(expr.NodeSpan()); err != nil {
		return nil, err
	}

	switch e := expr.(type) {
	case *ast.IntLiteral:
		return value.NewInt(e.Value), nil

	case *ast.FloatLiteral:
		return value.NewFloat(e.Value), nil

	case *ast.BoolLiteral:
		return value.NewBool(e.Value), nil

	case *ast.StringLiteral:
		return value.NewString(e.Value), nil

	case *ast.StringConcat:
		return ev.evalConcat(e, env)

	case *ast.ParenExpr:
		return ev.eval(e.Inner, env)

	case *ast.Variable:
		m, ok := env.Lookup(e.Name)
		if !ok {
			return nil, diagnostics.Errorf(diagnostics.ReferenceError, diagnostics.At(e.Span), "'%s' is not defined", e.Name)
		}
		return m.Value, nil

	case *ast.Assignment:
		return ev.evalAssignment(e, env)

	case *ast.BinaryExpr:
		return ev.evalBinary(e, env)

	case *ast.UnaryExpr:
		operand, err := ev.eval(e.Operand, env)
		if err != nil {
			return nil, err
		}
		v, err := value.Unary(e.Op, operand)
		return v, diagnostics.Locate(err, e.Span)

	case *ast.TypeOfExpr:
		v, err := ev.eval(e.Operand, env)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, diagnostics.Errorf(diagnostics.TypeError, diagnostics.At(e.Operand.NodeSpan()), "typeof operand produces no value")
		}
		return value.NewString(v.Type().String()), nil

	case *ast.CallExpr:
		return ev.evalCall(e, env)
	}

	span := expr.NodeSpan()
	return nil, diagnostics.Errorf(diagnostics.NotImplementedError, &span, "unsupported expression %s", expr.Kind())
}

func (ev *evaluator) evalConcat(e *ast.StringConcat, env *Env) (value.Value, error) {
	var b strings.Builder
	for _, part := range e.Parts {
		v, err := ev.eval(part, env)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, diagnostics.Errorf(diagnostics.TypeError, diagnostics.At(part.NodeSpan()),
				"interpolated expression produces no value")
		}
		b.WriteString(v.String())
	}
	return value.NewString(b.String()), nil
}

func (ev *evaluator) evalAssignment(e *ast.Assignment, env *Env) (value.Value, error) {
	name := e.Target.Name
	m, ok := env.Lookup(name)
	if !ok {
		return nil, diagnostics.Errorf(diagnostics.ReferenceError, diagnostics.At(e.Target.Span), "'%s' is not defined", name)
	}
	v, err := ev.eval(e.Value, env)
	if err != nil {
		return nil, err
	}
	if e.Op != "" && !m.Immutable {
		v, err = value.Binary(e.Op, m.Value, v)
		if err != nil {
			return nil, diagnostics.Locate(err, e.Span)
		}
	}
	if err := env.Assign(name, v, e.Target.Span); err != nil {
		return nil, err
	}
	return v, nil
}

func (ev *evaluator) evalBinary(e *ast.BinaryExpr, env *Env) (value.Value, error) {
	left, err := ev.eval(e.Left, env)
	if err != nil {
		return nil, err
	}

	// && and || skip the right operand once a Bool left operand decides.
	if b, ok := left.(value.Bool); ok {
		if (e.Op == ast.OpAnd && !b.Value) || (e.Op == ast.OpOr && b.Value) {
			return b, nil
		}
	}

	right, err := ev.eval(e.Right, env)
	if err != nil {
		return nil, err
	}
	v, err := value.Binary(e.Op, left, right)
	return v, diagnostics.Locate(err, e.Span)
}

// callee resolves the function a call expression invokes.
func (ev *evaluator) callee(e ast.Expr, env *Env) (*value.Function, error) {
	v, err := ev.eval(e, env)
	if err != nil {
		return nil, err
	}
	if fn, ok := v.(*value.Function); ok {
		return fn, nil
	}
	what := "expression"
	if variable, ok := e.(*ast.Variable); ok {
		what = "'" + variable.Name + "'"
	}
	got := "no value"
	if v != nil {
		got = v.Type().String()
	}
	return nil, diagnostics.Errorf(diagnostics.TypeError, diagnostics.At(e.NodeSpan()), "%s of type %s is not callable", what, got)
}

func (ev *evaluator) evalCall(e *ast.CallExpr, env *Env) (value.Value, error) {
	fn, err := ev.callee(e.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]value.Value, len(e.Args))
	for i, a := range e.Args {
		v, err := ev.eval(a, env)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, diagnostics.Errorf(diagnostics.TypeError, diagnostics.At(a.NodeSpan()),
				"argument %d of '%s' produces no value", i+1, fn.Name)
		}
		args[i] = v
	}

	span := e.Span
	data := map[string]string{"fn": fn.Name}
	ev.emit(TraceFnCallStart, &span, data)
	result, err := fn.Call(ev.ctx, args)
	ev.emit(TraceFnCallEnd, &span, data)
	if err != nil {
		return nil, diagnostics.Locate(err, span)
	}
	return result, nil
}
