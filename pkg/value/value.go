// Package value implements Baila runtime values and the operator tables.
package value

import (
	"math"
	"strconv"

	"github.com/baila-lang/baila/pkg/types"
)

// Value is the interface for all Baila runtime values.
// The sealed marker restricts implementations to this package.
type Value interface {
	Type() *types.Type
	AsBool() bool
	String() string
	value() // sealed marker
}

// Int is a 64-bit signed integer value.
type Int struct {
	Value int64
}

func (Int) value()            {}
func (Int) Type() *types.Type { return types.Int }
func (v Int) AsBool() bool    { return v.Value != 0 }
func (v Int) String() string  { return strconv.FormatInt(v.Value, 10) }

// Float is a 64-bit IEEE floating-point value.
type Float struct {
	Value float64
}

func (Float) value()            {}
func (Float) Type() *types.Type { return types.Float }
func (v Float) AsBool() bool    { return v.Value != 0 && !math.IsNaN(v.Value) }
func (v Float) String() string  { return FormatFloat(v.Value) }

// Bool is a boolean value.
type Bool struct {
	Value bool
}

func (Bool) value()            {}
func (Bool) Type() *types.Type { return types.Bool }
func (v Bool) AsBool() bool    { return v.Value }
func (v Bool) String() string  { return strconv.FormatBool(v.Value) }

// String is a string value.
type String struct {
	Value string
}

func (String) value()            {}
func (String) Type() *types.Type { return types.String }
func (v String) AsBool() bool    { return v.Value != "" }
func (v String) String() string  { return v.Value }

// NewInt creates an integer value.
func NewInt(n int64) Value { return Int{Value: n} }

// NewFloat creates a floating-point value.
func NewFloat(f float64) Value { return Float{Value: f} }

// NewBool creates a boolean value.
func NewBool(b bool) Value { return Bool{Value: b} }

// NewString creates a string value.
func NewString(s string) Value { return String{Value: s} }

// FormatFloat renders f in the shortest form that round-trips. Integral
// values keep a trailing ".0" so they read as Float.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	for _, c := range s {
		if c == '.' {
			return s
		}
	}
	return s + ".0"
}

// Display renders v as `value:Type`, the form used by interactive hosts.
// A nil value renders as the empty string.
func Display(v Value) string {
	if v == nil {
		return ""
	}
	return v.String() + ":" + v.Type().String()
}

// ToFloat returns the numeric value of v as a float64.
func ToFloat(v Value) (float64, bool) {
	switch v := v.(type) {
	case Int:
		return float64(v.Value), true
	case Float:
		return v.Value, true
	}
	return 0, false
}

// Equal reports whether two values are equal. Numbers compare numerically
// across Int and Float; other values compare by type and content.
func Equal(a, b Value) bool {
	if af, ok := ToFloat(a); ok {
		if bf, ok := ToFloat(b); ok {
			if ai, ok := a.(Int); ok {
				if bi, ok := b.(Int); ok {
					return ai.Value == bi.Value
				}
			}
			return af == bf
		}
		return false
	}
	switch a := a.(type) {
	case Bool:
		bv, ok := b.(Bool)
		return ok && a.Value == bv.Value
	case String:
		bv, ok := b.(String)
		return ok && a.Value == bv.Value
	case *Function:
		bv, ok := b.(*Function)
		return ok && a == bv
	}
	return false
}

// Zero returns the default value for a variable declared with type t and no
// initializer.
func Zero(t *types.Type) (Value, bool) {
	switch {
	case t.Equals(types.Int), t.Equals(types.Number):
		return NewInt(0), true
	case t.Equals(types.Float):
		return NewFloat(0), true
	case t.Equals(types.Bool):
		return NewBool(false), true
	case t.Equals(types.String):
		return NewString(""), true
	}
	return nil, false
}
