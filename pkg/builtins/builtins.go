package builtins

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/baila-lang/baila/pkg/types"
	"github.com/baila-lang/baila/pkg/value"
)

// RegisterDefaults adds all built-in functions. print and println write
// to out; a nil out means standard output.
func RegisterDefaults(r *Registry, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}

	// Output
	r.mustRegister("print", overload(nil, printer(out, ""), vararg("values", types.Any)))
	r.mustRegister("println", overload(nil, printer(out, "\n"), vararg("values", types.Any)))

	// Conversions
	r.mustRegister("toString", overload(types.String, builtinToString, param("value", types.Any)))
	r.mustRegister("toInt",
		overload(types.Int, builtinNumberToInt, param("value", types.Number)),
		overload(types.Int, builtinStringToInt, param("value", types.String)))
	r.mustRegister("toFloat",
		overload(types.Float, builtinNumberToFloat, param("value", types.Number)),
		overload(types.Float, builtinStringToFloat, param("value", types.String)))

	// Math
	r.mustRegister("abs",
		overload(types.Int, builtinAbsInt, param("n", types.Int)),
		overload(types.Float, builtinAbsFloat, param("n", types.Float)))
	r.mustRegister("min",
		overload(types.Int, builtinMinInt, param("a", types.Int), param("b", types.Int)),
		overload(types.Number, builtinMinNumber, param("a", types.Number), param("b", types.Number)))
	r.mustRegister("max",
		overload(types.Int, builtinMaxInt, param("a", types.Int), param("b", types.Int)),
		overload(types.Number, builtinMaxNumber, param("a", types.Number), param("b", types.Number)))
	r.mustRegister("sqrt", overload(types.Float, builtinSqrt, param("n", types.Number)))

	// Strings
	r.mustRegister("len", overload(types.Int, builtinLen, param("s", types.String)))
	r.mustRegister("upper", overload(types.String, builtinUpper, param("s", types.String)))
	r.mustRegister("lower", overload(types.String, builtinLower, param("s", types.String)))
	r.mustRegister("substring", overload(types.String, builtinSubstring,
		param("s", types.String), param("start", types.Int), optional("length", types.Int)))
}

// Defaults returns a registry holding the default functions.
func Defaults(out io.Writer) *Registry {
	r := NewRegistry()
	RegisterDefaults(r, out)
	return r
}

// print(values: Any...) / println(values: Any...) → no value
func printer(out io.Writer, end string) value.CallFunc {
	return func(_ context.Context, args []value.Value) (value.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		_, err := io.WriteString(out, strings.Join(parts, " ")+end)
		return nil, err
	}
}

// toString(value: Any) → String
func builtinToString(_ context.Context, args []value.Value) (value.Value, error) {
	return value.NewString(args[0].String()), nil
}
