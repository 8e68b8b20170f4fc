// Package types implements the Baila nominal type system and overload
// resolution.
package types

import (
	"fmt"
	"strings"
	"sync"
)

// Type is a nominal Baila type. Every type other than Any has a base type.
// Equality ignores Base.
type Type struct {
	Name     string
	Nullable bool
	Generics []*Type
	Base     *Type
}

// Built-in types.
var (
	Any      = &Type{Name: "Any"}
	Number   = &Type{Name: "Number", Base: Any}
	Int      = &Type{Name: "Int", Base: Number}
	Float    = &Type{Name: "Float", Base: Number}
	Bool     = &Type{Name: "Bool", Base: Any}
	String   = &Type{Name: "String", Base: Any}
	Function = &Type{Name: "Function", Base: Any}
)

// New creates a type with the given base. A nil base defaults to Any.
func New(name string, base *Type) *Type {
	if base == nil && name != Any.Name {
		base = Any
	}
	return &Type{Name: name, Base: base}
}

// AsNullable returns a nullable copy of t.
func (t *Type) AsNullable() *Type {
	if t.Nullable {
		return t
	}
	c := *t
	c.Nullable = true
	return &c
}

// WithGenerics returns a copy of t carrying the given type arguments.
func (t *Type) WithGenerics(args ...*Type) *Type {
	c := *t
	c.Generics = args
	return &c
}

// Equals reports structural equality: name, nullability and generics.
func (t *Type) Equals(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	if t.Name != o.Name || t.Nullable != o.Nullable || len(t.Generics) != len(o.Generics) {
		return false
	}
	for i := range t.Generics {
		if !t.Generics[i].Equals(o.Generics[i]) {
			return false
		}
	}
	return true
}

// IsImplicitlyConvertibleTo reports whether a value of type t may be used
// where target is expected.
func (t *Type) IsImplicitlyConvertibleTo(target *Type) bool {
	if t == nil || target == nil {
		return false
	}
	if target.Name == Any.Name {
		return true
	}
	if t.Equals(target) {
		return true
	}
	if t.Name == target.Name && target.Nullable && !t.Nullable && genericsEqual(t, target) {
		return true
	}
	if t.Base == nil {
		return false
	}
	if t.Base.Equals(target) {
		return true
	}
	return t.Base.IsImplicitlyConvertibleTo(target)
}

// IsExplicitlyConvertibleTo reports whether t may be cast to target. No
// narrowing conversions exist yet, so this matches implicit convertibility.
func (t *Type) IsExplicitlyConvertibleTo(target *Type) bool {
	return t.IsImplicitlyConvertibleTo(target)
}

// IsNumeric reports whether t is Number or derives from it.
func (t *Type) IsNumeric() bool {
	return t != nil && t.IsImplicitlyConvertibleTo(Number) && t.Name != Any.Name
}

func genericsEqual(a, b *Type) bool {
	if len(a.Generics) != len(b.Generics) {
		return false
	}
	for i := range a.Generics {
		if !a.Generics[i].Equals(b.Generics[i]) {
			return false
		}
	}
	return true
}

func (t *Type) String() string {
	if t == nil {
		return "Void"
	}
	var b strings.Builder
	b.WriteString(t.Name)
	if len(t.Generics) > 0 {
		b.WriteByte('<')
		for i, g := range t.Generics {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(g.String())
		}
		b.WriteByte('>')
	}
	if t.Nullable {
		b.WriteByte('?')
	}
	return b.String()
}

// Registry maps type names to their definitions.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
}

// NewRegistry returns a registry holding the built-in types.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]*Type)}
	for _, t := range []*Type{Any, Number, Int, Float, Bool, String, Function} {
		r.types[t.Name] = t
	}
	return r
}

// Define adds a named type deriving from base. Redefining a name is an error.
func (r *Registry) Define(name string, base *Type) (*Type, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[name]; ok {
		return nil, fmt.Errorf("type '%s' is already defined", name)
	}
	t := New(name, base)
	r.types[name] = t
	return t, nil
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Names returns every registered type name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for name := range r.types {
		out = append(out, name)
	}
	return out
}
