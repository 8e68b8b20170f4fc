package builtins

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/value"
)

// len(s: String) → Int, counted in characters
func builtinLen(_ context.Context, args []value.Value) (value.Value, error) {
	return value.NewInt(int64(utf8.RuneCountInString(args[0].(value.String).Value))), nil
}

// upper(s: String) → String
func builtinUpper(_ context.Context, args []value.Value) (value.Value, error) {
	return value.NewString(strings.ToUpper(args[0].(value.String).Value)), nil
}

// lower(s: String) → String
func builtinLower(_ context.Context, args []value.Value) (value.Value, error) {
	return value.NewString(strings.ToLower(args[0].(value.String).Value)), nil
}

// substring(s: String, start: Int, length: Int = rest) → String
func builtinSubstring(_ context.Context, args []value.Value) (value.Value, error) {
	runes := []rune(args[0].(value.String).Value)
	start := args[1].(value.Int).Value
	if start < 0 || start > int64(len(runes)) {
		return nil, diagnostics.Errorf(diagnostics.ArgumentError, nil,
			"substring: start %d is outside a string of length %d", start, len(runes))
	}
	length := int64(len(runes)) - start
	if len(args) > 2 {
		length = args[2].(value.Int).Value
		if length < 0 || length > int64(len(runes))-start {
			return nil, diagnostics.Errorf(diagnostics.ArgumentError, nil,
				"substring: length %d from %d exceeds a string of length %d", length, start, len(runes))
		}
	}
	return value.NewString(string(runes[start : start+length])), nil
}
