package builtins

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/value"
)

// toInt(value: Number) → Int, truncating toward zero
func builtinNumberToInt(_ context.Context, args []value.Value) (value.Value, error) {
	if i, ok := args[0].(value.Int); ok {
		return i, nil
	}
	f, _ := value.ToFloat(args[0])
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return nil, diagnostics.Errorf(diagnostics.ArgumentError, nil, "toInt: %s is out of range for Int", value.FormatFloat(f))
	}
	return value.NewInt(int64(f)), nil
}

// toInt(value: String) → Int
func builtinStringToInt(_ context.Context, args []value.Value) (value.Value, error) {
	s := strings.TrimSpace(args[0].(value.String).Value)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, diagnostics.Errorf(diagnostics.ArgumentError, nil, "toInt: cannot convert %q to Int", s)
	}
	return value.NewInt(n), nil
}

// toFloat(value: Number) → Float
func builtinNumberToFloat(_ context.Context, args []value.Value) (value.Value, error) {
	f, _ := value.ToFloat(args[0])
	return value.NewFloat(f), nil
}

// toFloat(value: String) → Float
func builtinStringToFloat(_ context.Context, args []value.Value) (value.Value, error) {
	s := strings.TrimSpace(args[0].(value.String).Value)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, diagnostics.Errorf(diagnostics.ArgumentError, nil, "toFloat: cannot convert %q to Float", s)
	}
	return value.NewFloat(f), nil
}

// abs(n: Int) → Int
func builtinAbsInt(_ context.Context, args []value.Value) (value.Value, error) {
	n := args[0].(value.Int).Value
	if n < 0 {
		n = -n
	}
	return value.NewInt(n), nil
}

// abs(n: Float) → Float
func builtinAbsFloat(_ context.Context, args []value.Value) (value.Value, error) {
	return value.NewFloat(math.Abs(args[0].(value.Float).Value)), nil
}

// min(a: Int, b: Int) → Int
func builtinMinInt(_ context.Context, args []value.Value) (value.Value, error) {
	return value.NewInt(min(args[0].(value.Int).Value, args[1].(value.Int).Value)), nil
}

// max(a: Int, b: Int) → Int
func builtinMaxInt(_ context.Context, args []value.Value) (value.Value, error) {
	return value.NewInt(max(args[0].(value.Int).Value, args[1].(value.Int).Value)), nil
}

// min(a: Number, b: Number) → Number; the smaller operand keeps its type
func builtinMinNumber(_ context.Context, args []value.Value) (value.Value, error) {
	a, _ := value.ToFloat(args[0])
	b, _ := value.ToFloat(args[1])
	if b < a {
		return args[1], nil
	}
	return args[0], nil
}

// max(a: Number, b: Number) → Number; the larger operand keeps its type
func builtinMaxNumber(_ context.Context, args []value.Value) (value.Value, error) {
	a, _ := value.ToFloat(args[0])
	b, _ := value.ToFloat(args[1])
	if b > a {
		return args[1], nil
	}
	return args[0], nil
}

// sqrt(n: Number) → Float
func builtinSqrt(_ context.Context, args []value.Value) (value.Value, error) {
	f, _ := value.ToFloat(args[0])
	if f < 0 {
		return nil, diagnostics.Errorf(diagnostics.ArgumentError, nil, "sqrt: negative argument %s", args[0])
	}
	return value.NewFloat(math.Sqrt(f)), nil
}
