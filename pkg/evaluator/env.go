package evaluator

import (
	"sort"

	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/types"
	"github.com/baila-lang/baila/pkg/value"
)

// Member is one named runtime binding: a variable, a constant or a
// function overload set.
type Member struct {
	Name      string
	Type      *types.Type
	Value     value.Value
	Immutable bool
}

// Env is one scope of the runtime name table. Lookups walk the parent
// chain; definitions always go into the receiver.
type Env struct {
	members map[string]*Member
	parent  *Env
}

// NewEnv creates a new environment with an optional parent scope.
func NewEnv(parent *Env) *Env {
	return &Env{
		members: make(map[string]*Member),
		parent:  parent,
	}
}

// Child creates a new child scope whose parent is this environment.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// Parent returns the enclosing scope, or nil for the root.
func (e *Env) Parent() *Env {
	return e.parent
}

// Define adds m to this scope. A name may be defined once per scope.
func (e *Env) Define(m *Member, span ast.Span) error {
	if _, ok := e.members[m.Name]; ok {
		return diagnostics.Errorf(diagnostics.RedefinitionError, diagnostics.At(span),
			"'%s' is already defined in this scope", m.Name)
	}
	e.members[m.Name] = m
	return nil
}

// DefineFunction adds an overload to the function called name in this
// scope, creating the function member on first use.
func (e *Env) DefineFunction(name string, o *value.Overload, span ast.Span) error {
	m, ok := e.members[name]
	if !ok {
		e.members[name] = &Member{
			Name:      name,
			Type:      types.Function,
			Value:     value.NewFunction(name, o),
			Immutable: true,
		}
		return nil
	}
	fn, isFn := m.Value.(*value.Function)
	if !isFn {
		return diagnostics.Errorf(diagnostics.RedefinitionError, diagnostics.At(span),
			"'%s' is already defined as a variable in this scope", name)
	}
	return diagnostics.Locate(fn.Add(o), span)
}

// Lookup finds the innermost member called name.
func (e *Env) Lookup(name string) (*Member, bool) {
	for s := e; s != nil; s = s.parent {
		if m, ok := s.members[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// Own returns the member called name defined directly in this scope.
func (e *Env) Own(name string) (*Member, bool) {
	m, ok := e.members[name]
	return m, ok
}

// Assign stores v into the innermost member called name, enforcing
// constness and the member's declared type.
func (e *Env) Assign(name string, v value.Value, span ast.Span) error {
	m, ok := e.Lookup(name)
	if !ok {
		return diagnostics.Errorf(diagnostics.ReferenceError, diagnostics.At(span), "'%s' is not defined", name)
	}
	if m.Immutable {
		if _, isFn := m.Value.(*value.Function); isFn {
			return diagnostics.Errorf(diagnostics.TypeError, diagnostics.At(span), "cannot assign to function '%s'", name)
		}
		return diagnostics.Errorf(diagnostics.ConstError, diagnostics.At(span), "cannot assign to constant '%s'", name)
	}
	if v == nil {
		return diagnostics.Errorf(diagnostics.TypeError, diagnostics.At(span), "cannot assign a statement with no value to '%s'", name)
	}
	if !v.Type().IsImplicitlyConvertibleTo(m.Type) {
		return diagnostics.Errorf(diagnostics.TypeError, diagnostics.At(span),
			"cannot assign %s to '%s' of type %s", v.Type(), name, m.Type)
	}
	m.Value = v
	return nil
}

// Names returns the names defined directly in this scope, sorted.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.members))
	for name := range e.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
