package value

import (
	"math"
	"strings"

	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/types"
)

// BinaryDef is one entry of the binary operator table.
type BinaryDef struct {
	Op          ast.BinaryOp
	Left, Right *types.Type
	Result      *types.Type
	Apply       func(l, r Value) (Value, error)
}

// UnaryDef is one entry of the prefix operator table.
type UnaryDef struct {
	Op      ast.UnaryOp
	Operand *types.Type
	Result  *types.Type
	Apply   func(v Value) (Value, error)
}

var (
	binaryDefs []*BinaryDef
	unaryDefs  []*UnaryDef
)

// LookupBinary returns the first definition of op whose operand types match
// exactly, or failing that the first whose operand types convert.
func LookupBinary(op ast.BinaryOp, l, r *types.Type) (*BinaryDef, bool) {
	if l == nil || r == nil {
		return nil, false
	}
	for _, d := range binaryDefs {
		if d.Op == op && l.Equals(d.Left) && r.Equals(d.Right) {
			return d, true
		}
	}
	for _, d := range binaryDefs {
		if d.Op == op && l.IsImplicitlyConvertibleTo(d.Left) && r.IsImplicitlyConvertibleTo(d.Right) {
			return d, true
		}
	}
	return nil, false
}

// LookupUnary returns the matching prefix operator definition.
func LookupUnary(op ast.UnaryOp, t *types.Type) (*UnaryDef, bool) {
	if t == nil {
		return nil, false
	}
	for _, d := range unaryDefs {
		if d.Op == op && t.Equals(d.Operand) {
			return d, true
		}
	}
	for _, d := range unaryDefs {
		if d.Op == op && t.IsImplicitlyConvertibleTo(d.Operand) {
			return d, true
		}
	}
	return nil, false
}

// Binary applies op to two runtime values.
func Binary(op ast.BinaryOp, l, r Value) (Value, error) {
	if l == nil || r == nil {
		return nil, diagnostics.Errorf(diagnostics.TypeError, nil, "operator '%s' applied to a statement with no value", op)
	}
	d, ok := LookupBinary(op, l.Type(), r.Type())
	if !ok {
		return nil, diagnostics.Errorf(diagnostics.TypeError, nil,
			"operator '%s' is not defined for %s and %s", op, l.Type(), r.Type())
	}
	return d.Apply(l, r)
}

// Unary applies a prefix operator to a runtime value.
func Unary(op ast.UnaryOp, v Value) (Value, error) {
	if v == nil {
		return nil, diagnostics.Errorf(diagnostics.TypeError, nil, "operator '%s' applied to a statement with no value", op)
	}
	d, ok := LookupUnary(op, v.Type())
	if !ok {
		return nil, diagnostics.Errorf(diagnostics.TypeError, nil,
			"operator '%s' is not defined for %s", op, v.Type())
	}
	return d.Apply(v)
}

// --- table construction ---

func bin(op ast.BinaryOp, l, r, res *types.Type, fn func(l, r Value) (Value, error)) {
	binaryDefs = append(binaryDefs, &BinaryDef{Op: op, Left: l, Right: r, Result: res, Apply: fn})
}

func un(op ast.UnaryOp, t, res *types.Type, fn func(v Value) (Value, error)) {
	unaryDefs = append(unaryDefs, &UnaryDef{Op: op, Operand: t, Result: res, Apply: fn})
}

func ints(l, r Value) (int64, int64) { return l.(Int).Value, r.(Int).Value }

func floats(l, r Value) (float64, float64) {
	a, _ := ToFloat(l)
	b, _ := ToFloat(r)
	return a, b
}

func bothInt(l, r Value) bool {
	_, a := l.(Int)
	_, b := r.(Int)
	return a && b
}

// arith registers an arithmetic operator for every numeric combination.
// Int with Int stays Int; any Float operand yields Float.
func arith(op ast.BinaryOp, i func(a, b int64) (Value, error), f func(a, b float64) Value) {
	intFn := func(l, r Value) (Value, error) {
		a, b := ints(l, r)
		return i(a, b)
	}
	floatFn := func(l, r Value) (Value, error) {
		a, b := floats(l, r)
		return f(a, b), nil
	}
	numFn := func(l, r Value) (Value, error) {
		if bothInt(l, r) {
			return intFn(l, r)
		}
		return floatFn(l, r)
	}
	bin(op, types.Int, types.Int, types.Int, intFn)
	bin(op, types.Float, types.Float, types.Float, floatFn)
	bin(op, types.Int, types.Float, types.Float, floatFn)
	bin(op, types.Float, types.Int, types.Float, floatFn)
	bin(op, types.Number, types.Number, types.Number, numFn)
}

func compare(op ast.BinaryOp, test func(c int) bool) {
	bin(op, types.Number, types.Number, types.Bool, func(l, r Value) (Value, error) {
		if bothInt(l, r) {
			a, b := ints(l, r)
			return NewBool(test(cmpOrdered(a, b))), nil
		}
		a, b := floats(l, r)
		return NewBool(test(cmpOrdered(a, b))), nil
	})
	bin(op, types.String, types.String, types.Bool, func(l, r Value) (Value, error) {
		return NewBool(test(strings.Compare(l.(String).Value, r.(String).Value))), nil
	})
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func divZero(op ast.BinaryOp) error {
	return diagnostics.Errorf(diagnostics.ArithmeticError, nil, "integer division by zero in '%s'", op)
}

func intPow(base, exp int64) (Value, error) {
	if exp < 0 {
		return nil, diagnostics.Errorf(diagnostics.ArithmeticError, nil, "negative exponent %d for Int power", exp)
	}
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return NewInt(result), nil
}

// maxRepeatLen bounds the length of a string built by repetition.
const maxRepeatLen = 1 << 30

func repeat(s string, n int64) (Value, error) {
	if n < 0 {
		return nil, diagnostics.Errorf(diagnostics.ArgumentError, nil, "cannot repeat a string %d times", n)
	}
	if n > 0 && int64(len(s)) > maxRepeatLen/n {
		return nil, diagnostics.Errorf(diagnostics.ArgumentError, nil,
			"repeating a string of length %d %d times exceeds the maximum string length", len(s), n)
	}
	return NewString(strings.Repeat(s, int(n))), nil
}

func init() {
	arith(ast.OpAdd,
		func(a, b int64) (Value, error) { return NewInt(a + b), nil },
		func(a, b float64) Value { return NewFloat(a + b) })
	bin(ast.OpAdd, types.String, types.String, types.String, func(l, r Value) (Value, error) {
		return NewString(l.(String).Value + r.(String).Value), nil
	})
	bin(ast.OpAdd, types.String, types.Any, types.String, func(l, r Value) (Value, error) {
		return NewString(l.String() + r.String()), nil
	})
	bin(ast.OpAdd, types.Any, types.String, types.String, func(l, r Value) (Value, error) {
		return NewString(l.String() + r.String()), nil
	})

	arith(ast.OpSub,
		func(a, b int64) (Value, error) { return NewInt(a - b), nil },
		func(a, b float64) Value { return NewFloat(a - b) })
	arith(ast.OpMul,
		func(a, b int64) (Value, error) { return NewInt(a * b), nil },
		func(a, b float64) Value { return NewFloat(a * b) })
	bin(ast.OpMul, types.String, types.Int, types.String, func(l, r Value) (Value, error) {
		return repeat(l.(String).Value, r.(Int).Value)
	})
	bin(ast.OpMul, types.Int, types.String, types.String, func(l, r Value) (Value, error) {
		return repeat(r.(String).Value, l.(Int).Value)
	})
	arith(ast.OpDiv,
		func(a, b int64) (Value, error) {
			if b == 0 {
				return nil, divZero(ast.OpDiv)
			}
			return NewInt(a / b), nil
		},
		func(a, b float64) Value { return NewFloat(a / b) })
	arith(ast.OpMod,
		func(a, b int64) (Value, error) {
			if b == 0 {
				return nil, divZero(ast.OpMod)
			}
			return NewInt(a % b), nil
		},
		func(a, b float64) Value { return NewFloat(math.Mod(a, b)) })

	bin(ast.OpPow, types.Int, types.Int, types.Int, func(l, r Value) (Value, error) {
		a, b := ints(l, r)
		return intPow(a, b)
	})
	bin(ast.OpPow, types.Number, types.Number, types.Float, func(l, r Value) (Value, error) {
		a, b := floats(l, r)
		return NewFloat(math.Pow(a, b)), nil
	})

	compare(ast.OpLt, func(c int) bool { return c < 0 })
	compare(ast.OpGt, func(c int) bool { return c > 0 })
	compare(ast.OpLtEq, func(c int) bool { return c <= 0 })
	compare(ast.OpGtEq, func(c int) bool { return c >= 0 })

	bin(ast.OpEq, types.Number, types.Number, types.Bool, func(l, r Value) (Value, error) {
		return NewBool(Equal(l, r)), nil
	})
	bin(ast.OpEq, types.Any, types.Any, types.Bool, func(l, r Value) (Value, error) {
		return NewBool(Equal(l, r)), nil
	})
	bin(ast.OpNeq, types.Number, types.Number, types.Bool, func(l, r Value) (Value, error) {
		return NewBool(!Equal(l, r)), nil
	})
	bin(ast.OpNeq, types.Any, types.Any, types.Bool, func(l, r Value) (Value, error) {
		return NewBool(!Equal(l, r)), nil
	})

	bin(ast.OpAnd, types.Bool, types.Bool, types.Bool, func(l, r Value) (Value, error) {
		return NewBool(l.AsBool() && r.AsBool()), nil
	})
	bin(ast.OpOr, types.Bool, types.Bool, types.Bool, func(l, r Value) (Value, error) {
		return NewBool(l.AsBool() || r.AsBool()), nil
	})

	bitwise := []struct {
		op ast.BinaryOp
		i  func(a, b int64) int64
		b  func(a, b bool) bool
	}{
		{ast.OpBitAnd, func(a, b int64) int64 { return a & b }, func(a, b bool) bool { return a && b }},
		{ast.OpBitOr, func(a, b int64) int64 { return a | b }, func(a, b bool) bool { return a || b }},
		{ast.OpBitXor, func(a, b int64) int64 { return a ^ b }, func(a, b bool) bool { return a != b }},
	}
	for _, bw := range bitwise {
		bin(bw.op, types.Int, types.Int, types.Int, func(l, r Value) (Value, error) {
			a, b := ints(l, r)
			return NewInt(bw.i(a, b)), nil
		})
		bin(bw.op, types.Bool, types.Bool, types.Bool, func(l, r Value) (Value, error) {
			return NewBool(bw.b(l.(Bool).Value, r.(Bool).Value)), nil
		})
	}

	for _, op := range []ast.UnaryOp{ast.OpNeg, ast.OpPlus} {
		sign := int64(1)
		if op == ast.OpNeg {
			sign = -1
		}
		un(op, types.Int, types.Int, func(v Value) (Value, error) {
			return NewInt(sign * v.(Int).Value), nil
		})
		un(op, types.Float, types.Float, func(v Value) (Value, error) {
			return NewFloat(float64(sign) * v.(Float).Value), nil
		})
		un(op, types.Number, types.Number, func(v Value) (Value, error) {
			if i, ok := v.(Int); ok {
				return NewInt(sign * i.Value), nil
			}
			f, _ := ToFloat(v)
			return NewFloat(float64(sign) * f), nil
		})
	}
	un(ast.OpNot, types.Bool, types.Bool, func(v Value) (Value, error) {
		return NewBool(!v.(Bool).Value), nil
	})
	un(ast.OpBitNot, types.Int, types.Int, func(v Value) (Value, error) {
		return NewInt(^v.(Int).Value), nil
	})
}
