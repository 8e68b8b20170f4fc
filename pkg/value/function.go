package value

import (
	"context"
	"fmt"
	"strings"

	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/types"
)

// CallFunc invokes one overload. args holds only the arguments supplied at
// the call site; an implementation fills in defaults for omitted optional
// parameters. A nil result means the overload produced no value.
type CallFunc func(ctx context.Context, args []Value) (Value, error)

// Overload is one callable signature of a function.
type Overload struct {
	Signature types.Signature
	Call      CallFunc
}

// Function is a named set of overloads.
type Function struct {
	Name      string
	Overloads []*Overload
}

func (*Function) value()            {}
func (*Function) Type() *types.Type { return types.Function }
func (*Function) AsBool() bool      { return true }
func (f *Function) String() string  { return "<function " + f.Name + ">" }

// NewFunction creates a function holding the given overloads. It panics if
// the overloads violate the insertion rules; use Add for untrusted input.
func NewFunction(name string, overloads ...*Overload) *Function {
	f := &Function{Name: name}
	for _, o := range overloads {
		if err := f.Add(o); err != nil {
			panic(err)
		}
	}
	return f
}

// Add appends an overload after checking its parameter list and that no
// existing overload accepts an identical argument-type sequence.
func (f *Function) Add(o *Overload) error {
	if err := o.Signature.Validate(); err != nil {
		return diagnostics.Errorf(diagnostics.OverloadError, nil, "invalid overload of '%s': %v", f.Name, err)
	}
	for _, existing := range f.Overloads {
		if types.Conflicts(existing.Signature, o.Signature) {
			return diagnostics.Errorf(diagnostics.RedefinitionError, nil,
				"overload %s%s conflicts with existing overload %s%s",
				f.Name, o.Signature, f.Name, existing.Signature)
		}
	}
	f.Overloads = append(f.Overloads, o)
	return nil
}

// Signatures returns the signatures of all overloads in declaration order.
func (f *Function) Signatures() []types.Signature {
	out := make([]types.Signature, len(f.Overloads))
	for i, o := range f.Overloads {
		out[i] = o.Signature
	}
	return out
}

// Resolve selects the overload matching the runtime argument types.
func (f *Function) Resolve(args []Value) (*Overload, error) {
	argTypes := make([]*types.Type, len(args))
	for i, a := range args {
		if a == nil {
			return nil, diagnostics.Errorf(diagnostics.TypeError, nil,
				"argument %d of '%s' has no value", i+1, f.Name)
		}
		argTypes[i] = a.Type()
	}
	i := types.Resolve(f.Signatures(), argTypes)
	if i < 0 {
		return nil, diagnostics.Errorf(diagnostics.OverloadError, nil,
			"Unable to find overload %s(%s)", f.Name, joinTypes(argTypes))
	}
	return f.Overloads[i], nil
}

// Call resolves the overload for args and invokes it.
func (f *Function) Call(ctx context.Context, args []Value) (Value, error) {
	o, err := f.Resolve(args)
	if err != nil {
		return nil, err
	}
	return o.Call(ctx, args)
}

func joinTypes(ts []*types.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// Describe lists every overload signature, one per line.
func (f *Function) Describe() string {
	var b strings.Builder
	for i, o := range f.Overloads {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s%s", f.Name, o.Signature)
	}
	return b.String()
}
