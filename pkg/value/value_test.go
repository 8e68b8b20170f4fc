package value_test

import (
	"context"
	"math"
	"testing"

	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/types"
	"github.com/baila-lang/baila/pkg/value"
)

func i(n int64) value.Value   { return value.NewInt(n) }
func f(x float64) value.Value { return value.NewFloat(x) }
func s(v string) value.Value  { return value.NewString(v) }

func TestBinaryOperators(t *testing.T) {
	tests := []struct {
		name string
		op   ast.BinaryOp
		l, r value.Value
		want string
	}{
		{"int add", ast.OpAdd, i(1), i(1), "2:Int"},
		{"mixed add", ast.OpAdd, i(1), f(1.1), "2.1:Float"},
		{"float add integral", ast.OpAdd, f(1.5), f(0.5), "2.0:Float"},
		{"string concat", ast.OpAdd, s("abc"), s("def"), "abcdef:String"},
		{"string plus int", ast.OpAdd, s("n="), i(3), "n=3:String"},
		{"int plus string", ast.OpAdd, i(3), s("x"), "3x:String"},
		{"string repeat", ast.OpMul, s("a"), i(3), "aaa:String"},
		{"repeat reversed", ast.OpMul, i(2), s("ab"), "abab:String"},
		{"int division truncates", ast.OpDiv, i(7), i(2), "3:Int"},
		{"float division", ast.OpDiv, i(7), f(2), "3.5:Float"},
		{"modulo", ast.OpMod, i(7), i(3), "1:Int"},
		{"int power", ast.OpPow, i(3), i(4), "81:Int"},
		{"float power", ast.OpPow, f(2), i(3), "8.0:Float"},
		{"numeric equality", ast.OpEq, i(1), f(1.0), "true:Bool"},
		{"string equality", ast.OpEq, s("a"), s("a"), "true:Bool"},
		{"cross-type equality", ast.OpEq, s("1"), i(1), "false:Bool"},
		{"not equal", ast.OpNeq, i(1), i(2), "true:Bool"},
		{"less than mixed", ast.OpLt, i(1), f(1.5), "true:Bool"},
		{"string ordering", ast.OpGtEq, s("b"), s("a"), "true:Bool"},
		{"bit and", ast.OpBitAnd, i(6), i(3), "2:Int"},
		{"bool xor", ast.OpBitXor, value.NewBool(true), value.NewBool(true), "false:Bool"},
		{"logical or", ast.OpOr, value.NewBool(false), value.NewBool(true), "true:Bool"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := value.Binary(tt.op, tt.l, tt.r)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if value.Display(got) != tt.want {
				t.Errorf("got %s, want %s", value.Display(got), tt.want)
			}
		})
	}
}

func TestBinaryErrors(t *testing.T) {
	tests := []struct {
		name string
		op   ast.BinaryOp
		l, r value.Value
		code string
	}{
		{"int divide by zero", ast.OpDiv, i(1), i(0), diagnostics.ArithmeticError},
		{"int modulo by zero", ast.OpMod, i(1), i(0), diagnostics.ArithmeticError},
		{"negative int exponent", ast.OpPow, i(2), i(-1), diagnostics.ArithmeticError},
		{"negative repeat", ast.OpMul, s("a"), i(-1), diagnostics.ArgumentError},
		{"oversized repeat", ast.OpMul, s("ab"), i(math.MaxInt64), diagnostics.ArgumentError},
		{"oversized repeat int first", ast.OpMul, i(math.MaxInt64), s("ab"), diagnostics.ArgumentError},
		{"bool plus int", ast.OpAdd, value.NewBool(true), i(1), diagnostics.TypeError},
		{"string minus string", ast.OpSub, s("a"), s("b"), diagnostics.TypeError},
		{"void operand", ast.OpAdd, nil, i(1), diagnostics.TypeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := value.Binary(tt.op, tt.l, tt.r)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := diagnostics.CodeOf(err); got != tt.code {
				t.Errorf("code = %q, want %q (%v)", got, tt.code, err)
			}
		})
	}
}

func TestFloatDivisionByZeroIsInf(t *testing.T) {
	got, err := value.Binary(ast.OpDiv, f(1), i(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "+Inf" {
		t.Errorf("got %s, want +Inf", got)
	}
}

func TestUnaryOperators(t *testing.T) {
	tests := []struct {
		op   ast.UnaryOp
		v    value.Value
		want string
	}{
		{ast.OpNeg, i(3), "-3:Int"},
		{ast.OpNeg, f(2.5), "-2.5:Float"},
		{ast.OpPlus, i(3), "3:Int"},
		{ast.OpNot, value.NewBool(false), "true:Bool"},
		{ast.OpBitNot, i(0), "-1:Int"},
	}
	for _, tt := range tests {
		got, err := value.Unary(tt.op, tt.v)
		if err != nil {
			t.Fatalf("%s%s: %v", tt.op, tt.v, err)
		}
		if value.Display(got) != tt.want {
			t.Errorf("%s%s = %s, want %s", tt.op, tt.v, value.Display(got), tt.want)
		}
	}
	if _, err := value.Unary(ast.OpNot, i(1)); err == nil {
		t.Error("expected !Int to fail")
	}
}

func TestLookupBinaryStaticResult(t *testing.T) {
	tests := []struct {
		op   ast.BinaryOp
		l, r *types.Type
		want *types.Type
	}{
		{ast.OpAdd, types.Int, types.Int, types.Int},
		{ast.OpAdd, types.Int, types.Float, types.Float},
		{ast.OpAdd, types.Number, types.Int, types.Number},
		{ast.OpAdd, types.String, types.Bool, types.String},
		{ast.OpPow, types.Int, types.Float, types.Float},
		{ast.OpEq, types.Bool, types.String, types.Bool},
	}
	for _, tt := range tests {
		d, ok := value.LookupBinary(tt.op, tt.l, tt.r)
		if !ok {
			t.Errorf("%s %s %s: no definition", tt.l, tt.op, tt.r)
			continue
		}
		if !d.Result.Equals(tt.want) {
			t.Errorf("%s %s %s = %s, want %s", tt.l, tt.op, tt.r, d.Result, tt.want)
		}
	}
	if _, ok := value.LookupBinary(ast.OpSub, types.Bool, types.Int); ok {
		t.Error("Bool - Int should have no definition")
	}
}

// ---------------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------------

func constant(v value.Value) value.CallFunc {
	return func(context.Context, []value.Value) (value.Value, error) { return v, nil }
}

func TestFunctionOverloads(t *testing.T) {
	fn := value.NewFunction("pick",
		&value.Overload{
			Signature: types.Signature{Params: []types.Param{{Name: "a", Type: types.Int}}, Return: types.String},
			Call:      constant(s("int")),
		},
		&value.Overload{
			Signature: types.Signature{Params: []types.Param{{Name: "a", Type: types.String}}, Return: types.String},
			Call:      constant(s("string")),
		},
	)

	got, err := fn.Call(context.Background(), []value.Value{s("x")})
	if err != nil || got.String() != "string" {
		t.Errorf("Call(String) = %v, %v", got, err)
	}
	got, err = fn.Call(context.Background(), []value.Value{i(1)})
	if err != nil || got.String() != "int" {
		t.Errorf("Call(Int) = %v, %v", got, err)
	}
	_, err = fn.Call(context.Background(), []value.Value{value.NewBool(true)})
	if diagnostics.CodeOf(err) != diagnostics.OverloadError {
		t.Errorf("Call(Bool) error = %v", err)
	}
}

func TestFunctionAddRejectsConflict(t *testing.T) {
	fn := value.NewFunction("f", &value.Overload{
		Signature: types.Signature{Params: []types.Param{{Name: "a", Type: types.Int}}},
		Call:      constant(nil),
	})
	err := fn.Add(&value.Overload{
		Signature: types.Signature{Params: []types.Param{{Name: "b", Type: types.Int}}},
		Call:      constant(nil),
	})
	if diagnostics.CodeOf(err) != diagnostics.RedefinitionError {
		t.Errorf("Add conflicting overload error = %v", err)
	}
	err = fn.Add(&value.Overload{
		Signature: types.Signature{Params: []types.Param{
			{Name: "a", Type: types.Int, Optional: true},
			{Name: "b", Type: types.Int},
		}},
		Call: constant(nil),
	})
	if diagnostics.CodeOf(err) != diagnostics.OverloadError {
		t.Errorf("Add invalid overload error = %v", err)
	}
}

func TestZeroValues(t *testing.T) {
	for _, tt := range []struct {
		t    *types.Type
		want string
	}{
		{types.Int, "0:Int"},
		{types.Float, "0.0:Float"},
		{types.Bool, "false:Bool"},
		{types.String, ":String"},
	} {
		v, ok := value.Zero(tt.t)
		if !ok || value.Display(v) != tt.want {
			t.Errorf("Zero(%s) = %s", tt.t, value.Display(v))
		}
	}
	if _, ok := value.Zero(types.Function); ok {
		t.Error("Function has no zero value")
	}
}
