package types

import (
	"errors"
	"fmt"
	"strings"
)

// Param describes one parameter of a function overload.
type Param struct {
	Name     string
	Type     *Type
	Optional bool
	Vararg   bool
}

// Signature is the parameter list and return type of one overload. A nil
// Return means the overload produces no value.
type Signature struct {
	Params []Param
	Return *Type
}

var (
	errRequiredAfterOptional = errors.New("required parameter follows an optional parameter")
	errVarargNotLast         = errors.New("vararg parameter must be last")
)

// Validate checks the parameter list shape.
func (s Signature) Validate() error {
	seenOptional := false
	for i, p := range s.Params {
		if p.Vararg && i != len(s.Params)-1 {
			return fmt.Errorf("'%s': %w", p.Name, errVarargNotLast)
		}
		if p.Optional {
			seenOptional = true
			continue
		}
		if seenOptional && !p.Vararg {
			return fmt.Errorf("'%s': %w", p.Name, errRequiredAfterOptional)
		}
	}
	return nil
}

// Required returns the number of parameters a call must supply.
func (s Signature) Required() int {
	n := 0
	for _, p := range s.Params {
		if !p.Optional && !p.Vararg {
			n++
		}
	}
	return n
}

// Variadic reports whether the last parameter is a vararg.
func (s Signature) Variadic() bool {
	return len(s.Params) > 0 && s.Params[len(s.Params)-1].Vararg
}

// Accepts reports whether n arguments satisfy the signature's arity.
func (s Signature) Accepts(n int) bool {
	if n < s.Required() {
		return false
	}
	return s.Variadic() || n <= len(s.Params)
}

// ParamTypeAt returns the expected type of the i'th argument.
func (s Signature) ParamTypeAt(i int) *Type {
	if i < len(s.Params) && !s.Params[i].Vararg {
		return s.Params[i].Type
	}
	if s.Variadic() {
		return s.Params[len(s.Params)-1].Type
	}
	return nil
}

func (s Signature) String() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		ps := p.Name + ": " + p.Type.String()
		if p.Vararg {
			ps += "..."
		}
		if p.Optional {
			ps += " = ?"
		}
		parts[i] = ps
	}
	out := "(" + strings.Join(parts, ", ") + ")"
	if s.Return != nil {
		out += ": " + s.Return.String()
	}
	return out
}

func (s Signature) matches(args []*Type, exact bool) bool {
	if !s.Accepts(len(args)) {
		return false
	}
	for i, a := range args {
		want := s.ParamTypeAt(i)
		if exact {
			if !a.Equals(want) {
				return false
			}
		} else if !a.IsImplicitlyConvertibleTo(want) {
			return false
		}
	}
	return true
}

// Resolve selects the overload for the given argument types. Signatures
// whose arity does not fit are discarded; the first exact match wins, then
// the first match where every argument converts. It returns -1 when no
// overload applies.
func Resolve(sigs []Signature, args []*Type) int {
	for i, s := range sigs {
		if s.matches(args, true) {
			return i
		}
	}
	for i, s := range sigs {
		if s.matches(args, false) {
			return i
		}
	}
	return -1
}

// Conflicts reports whether a and b are both applicable to some identical
// argument-type sequence, which would make overload selection ambiguous.
func Conflicts(a, b Signature) bool {
	lo := a.Required()
	if r := b.Required(); r > lo {
		lo = r
	}
	hiA, hiB := len(a.Params), len(b.Params)
	if a.Variadic() {
		hiA = 1 << 30
	}
	if b.Variadic() {
		hiB = 1 << 30
	}
	hi := hiA
	if hiB < hi {
		hi = hiB
	}
	if hi == 1<<30 {
		hi = lo + 1
		if n := max(len(a.Params), len(b.Params)); n > hi {
			hi = n
		}
	}
	for n := lo; n <= hi; n++ {
		same := true
		for i := 0; i < n; i++ {
			if !a.ParamTypeAt(i).Equals(b.ParamTypeAt(i)) {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}
