package checker

import (
	"strings"

	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/types"
	"github.com/baila-lang/baila/pkg/value"
)

// isDynamic reports whether values of static type t can only be checked
// at run time.
func isDynamic(t *types.Type) bool {
	return t != nil && t.Name == types.Any.Name
}

// mayConvert reports whether a value of static type from could be stored
// where to is expected. Any and Number are abstract: the runtime value may
// be narrower than the static type, so the check is left to the evaluator.
func mayConvert(from, to *types.Type) bool {
	if from == nil || to == nil {
		return false
	}
	if isDynamic(from) || from.IsImplicitlyConvertibleTo(to) {
		return true
	}
	return from.Equals(types.Number) && to.IsNumeric()
}

func isOpen(t *types.Type) bool {
	return isDynamic(t) || t.Equals(types.Number)
}

// valueOf types an expression that must produce a value.
func (c *Checker) valueOf(e ast.Expr) (*types.Type, bool) {
	t, ok := c.typeOf(e)
	if ok && t == nil {
		c.errorf(diagnostics.TypeError, e.NodeSpan(), "expression produces no value")
		return nil, false
	}
	return t, ok
}

// typeOf returns the static type of e. A nil type with ok set means the
// expression produces no value; ok is false when the type is unknown
// because an error was already reported.
func (c *Checker) typeOf(e ast.Expr) (*types.Type, bool) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return types.Int, true
	case *ast.FloatLiteral:
		return types.Float, true
	case *ast.BoolLiteral:
		return types.Bool, true
	case *ast.StringLiteral:
		return types.String, true
	case *ast.StringConcat:
		for _, part := range n.Embedded() {
			c.valueOf(part)
		}
		return types.String, true
	case *ast.TypeOfExpr:
		c.valueOf(n.Operand)
		return types.String, true
	case *ast.ParenExpr:
		return c.typeOf(n.Inner)
	case *ast.Variable:
		return c.typeOfVariable(n)
	case *ast.Assignment:
		return c.typeOfAssignment(n)
	case *ast.BinaryExpr:
		return c.typeOfBinary(n)
	case *ast.UnaryExpr:
		return c.typeOfUnary(n)
	case *ast.CallExpr:
		return c.typeOfCall(n)
	}
	return types.Any, true
}

func (c *Checker) typeOfVariable(n *ast.Variable) (*types.Type, bool) {
	sym, fn, ok := c.table.Lookup(n.Name)
	switch {
	case ok && sym != nil:
		return sym.Type, true
	case ok && fn != nil:
		return types.Function, true
	case c.infer != nil && len(c.infer.byName[n.Name]) > 0:
		return types.Function, true
	}
	c.errorf(diagnostics.ReferenceError, n.Span, "'%s' is not defined", n.Name)
	return nil, false
}

func (c *Checker) typeOfAssignment(n *ast.Assignment) (*types.Type, bool) {
	name := n.Target.Name
	sym, fn, ok := c.table.Lookup(name)
	if !ok && c.infer != nil && len(c.infer.byName[name]) > 0 {
		fn = &FuncSymbol{Name: name}
	}
	vt, vok := c.valueOf(n.Value)
	switch {
	case sym == nil && fn == nil:
		c.errorf(diagnostics.ReferenceError, n.Target.Span, "'%s' is not defined", name)
		return nil, false
	case fn != nil:
		c.errorf(diagnostics.TypeError, n.Target.Span, "cannot assign to function '%s'", name)
		return nil, false
	case sym.Immutable:
		c.errorf(diagnostics.ConstError, n.Target.Span, "cannot assign to constant '%s'", name)
		return sym.Type, true
	}
	if !vok {
		return sym.Type, true
	}
	if n.Op != "" {
		vt, vok = c.binaryResult(n.Op, sym.Type, vt, n.Span)
		if !vok {
			return sym.Type, true
		}
	}
	if !mayConvert(vt, sym.Type) {
		c.errorf(diagnostics.TypeError, n.Value.NodeSpan(), "cannot assign %s to '%s' of type %s", vt, name, sym.Type)
	}
	return sym.Type, true
}

func (c *Checker) typeOfBinary(n *ast.BinaryExpr) (*types.Type, bool) {
	lt, lok := c.valueOf(n.Left)
	rt, rok := c.valueOf(n.Right)
	if !lok || !rok {
		return nil, false
	}
	return c.binaryResult(n.Op, lt, rt, n.Span)
}

func (c *Checker) binaryResult(op ast.BinaryOp, lt, rt *types.Type, span ast.Span) (*types.Type, bool) {
	if d, ok := value.LookupBinary(op, lt, rt); ok {
		return d.Result, true
	}
	if isOpen(lt) || isOpen(rt) {
		switch op {
		case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpGt, ast.OpLtEq, ast.OpGtEq, ast.OpAnd, ast.OpOr:
			return types.Bool, true
		}
		return types.Any, true
	}
	c.errorf(diagnostics.TypeError, span, "operator '%s' is not defined for %s and %s", op, lt, rt)
	return nil, false
}

func (c *Checker) typeOfUnary(n *ast.UnaryExpr) (*types.Type, bool) {
	t, ok := c.valueOf(n.Operand)
	if !ok {
		return nil, false
	}
	if d, ok := value.LookupUnary(n.Op, t); ok {
		return d.Result, true
	}
	if isOpen(t) {
		if n.Op == ast.OpNot {
			return types.Bool, true
		}
		return types.Any, true
	}
	c.errorf(diagnostics.TypeError, n.Span, "operator '%s' is not defined for %s", n.Op, t)
	return nil, false
}

// calleeSignatures returns the overloads a call to v can reach. dynamic is
// set when the callee is a value whose overloads are only known at run
// time.
func (c *Checker) calleeSignatures(v *ast.Variable) (sigs []types.Signature, dynamic, ok bool) {
	sym, fn, found := c.table.Lookup(v.Name)
	if found && sym != nil {
		if sym.Type.Equals(types.Function) || isDynamic(sym.Type) {
			return nil, true, true
		}
		c.errorf(diagnostics.TypeError, v.Span, "'%s' of type %s is not callable", v.Name, sym.Type)
		return nil, false, false
	}
	if c.infer != nil && len(c.infer.byName[v.Name]) > 0 {
		return c.infer.signaturesOf(v.Name), false, true
	}
	if found {
		return c.signaturesOf(fn), false, true
	}
	c.errorf(diagnostics.ReferenceError, v.Span, "'%s' is not defined", v.Name)
	return nil, false, false
}

// signaturesOf returns the overloads of fn with the return types of user
// definitions resolved against their declaring scopes.
func (c *Checker) signaturesOf(fn *FuncSymbol) []types.Signature {
	out := make([]types.Signature, len(fn.Signatures))
	for i, sig := range fn.Signatures {
		if def := fn.def(i); def != nil {
			sig.Return = c.returnType(def, sig)
		}
		out[i] = sig
	}
	return out
}

func (c *Checker) typeOfCall(n *ast.CallExpr) (*types.Type, bool) {
	var (
		sigs    []types.Signature
		dynamic bool
		ok      = true
		name    = "<expression>"
	)
	if v, isVar := n.Callee.(*ast.Variable); isVar {
		name = v.Name
		sigs, dynamic, ok = c.calleeSignatures(v)
	} else {
		t, tok := c.valueOf(n.Callee)
		switch {
		case !tok:
			ok = false
		case t.Equals(types.Function) || isDynamic(t):
			dynamic = true
		default:
			c.errorf(diagnostics.TypeError, n.Callee.NodeSpan(), "value of type %s is not callable", t)
			ok = false
		}
	}

	args := make([]*types.Type, len(n.Args))
	known := true
	for i, a := range n.Args {
		t, aok := c.valueOf(a)
		if !aok {
			known = false
			t = types.Any
		}
		args[i] = t
	}
	if !ok {
		return nil, false
	}
	if dynamic {
		return types.Any, true
	}

	if i := types.Resolve(sigs, args); i >= 0 {
		return sigs[i].Return, true
	}
	open := !known
	for _, a := range args {
		if isOpen(a) {
			open = true
		}
	}
	if !open {
		c.errorf(diagnostics.OverloadError, n.Span, "Unable to find overload %s(%s)", name, joinTypes(args))
		return nil, false
	}

	// Some argument is only known at run time: any overload accepting the
	// arity may be selected.
	var ret *types.Type
	matched := 0
	for _, s := range sigs {
		if !s.Accepts(len(args)) || !argsMayMatch(s, args) {
			continue
		}
		if matched == 0 {
			ret = s.Return
		} else if !ret.Equals(s.Return) {
			ret = types.Any
		}
		matched++
	}
	if matched == 0 {
		c.errorf(diagnostics.OverloadError, n.Span, "Unable to find overload %s(%s)", name, joinTypes(args))
		return nil, false
	}
	return ret, true
}

func argsMayMatch(s types.Signature, args []*types.Type) bool {
	for i, a := range args {
		if !mayConvert(a, s.ParamTypeAt(i)) {
			return false
		}
	}
	return true
}

func joinTypes(ts []*types.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
