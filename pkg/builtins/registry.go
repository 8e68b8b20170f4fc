// Package builtins provides the Baila built-in function registry.
package builtins

import (
	"sort"

	"github.com/baila-lang/baila/pkg/types"
	"github.com/baila-lang/baila/pkg/value"
)

// Registry holds registered built-in functions.
type Registry struct {
	fns map[string]*value.Function
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns: make(map[string]*value.Function),
	}
}

// Register adds overloads to the function called name, creating it on
// first use. It fails when an overload is invalid or conflicts with one
// already registered.
func (r *Registry) Register(name string, overloads ...*value.Overload) error {
	fn, ok := r.fns[name]
	if !ok {
		fn = &value.Function{Name: name}
		r.fns[name] = fn
	}
	for _, o := range overloads {
		if err := fn.Add(o); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a function by name.
func (r *Registry) Get(name string) *value.Function {
	return r.fns[name]
}

// All returns every registered function, sorted by name.
func (r *Registry) All() []*value.Function {
	out := make([]*value.Function, 0, len(r.fns))
	for _, fn := range r.fns {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// mustRegister is used for the fixed default set, whose overloads are
// known to be valid.
func (r *Registry) mustRegister(name string, overloads ...*value.Overload) {
	if err := r.Register(name, overloads...); err != nil {
		panic(err)
	}
}

func param(name string, t *types.Type) types.Param {
	return types.Param{Name: name, Type: t}
}

func optional(name string, t *types.Type) types.Param {
	return types.Param{Name: name, Type: t, Optional: true}
}

func vararg(name string, t *types.Type) types.Param {
	return types.Param{Name: name, Type: t, Vararg: true}
}

func overload(ret *types.Type, call value.CallFunc, params ...types.Param) *value.Overload {
	return &value.Overload{Signature: types.Signature{Params: params, Return: ret}, Call: call}
}
