package checker

import (
	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/types"
)

// Symbol is a variable or constant known at compile time.
type Symbol struct {
	Name      string
	Type      *types.Type
	Immutable bool
	Span      ast.Span
}

// FuncSymbol is the overload set of a function known at compile time.
type FuncSymbol struct {
	Name       string
	Signatures []types.Signature

	// defs holds the definition behind each signature; entries are nil for
	// builtins and session globals.
	defs []*ast.FunctionDefine
}

func (f *FuncSymbol) def(i int) *ast.FunctionDefine {
	if i < len(f.defs) {
		return f.defs[i]
	}
	return nil
}

type scope struct {
	vars   map[string]*Symbol
	funcs  map[string]*FuncSymbol
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{
		vars:   make(map[string]*Symbol),
		funcs:  make(map[string]*FuncSymbol),
		parent: parent,
	}
}

// Table is the compile-time name table: a chain of scopes holding variable
// and function members in separate maps.
type Table struct {
	current *scope
}

// NewTable returns a table with an empty root scope.
func NewTable() *Table {
	return &Table{current: newScope(nil)}
}

// Push opens a nested scope and returns the function that closes it.
func (t *Table) Push() (restore func()) {
	saved := t.current
	t.current = newScope(saved)
	return func() { t.current = saved }
}

// DefineVariable adds sym to the innermost scope. The name must not already
// name a variable or function there.
func (t *Table) DefineVariable(sym *Symbol) error {
	s := t.current
	if _, ok := s.vars[sym.Name]; ok {
		return diagnostics.Errorf(diagnostics.RedefinitionError, diagnostics.At(sym.Span),
			"'%s' is already defined in this scope", sym.Name)
	}
	if _, ok := s.funcs[sym.Name]; ok {
		return diagnostics.Errorf(diagnostics.RedefinitionError, diagnostics.At(sym.Span),
			"'%s' is already defined as a function in this scope", sym.Name)
	}
	s.vars[sym.Name] = sym
	return nil
}

// DefineFunction adds an overload to the function of that name in the
// innermost scope, creating it if needed. A same-scope variable of that
// name, an invalid parameter list or an overload conflict is an error.
func (t *Table) DefineFunction(name string, sig types.Signature, span ast.Span) error {
	return t.define(name, sig, nil, span)
}

func (t *Table) define(name string, sig types.Signature, def *ast.FunctionDefine, span ast.Span) error {
	s := t.current
	if _, ok := s.vars[name]; ok {
		return diagnostics.Errorf(diagnostics.RedefinitionError, diagnostics.At(span),
			"'%s' is already defined as a variable in this scope", name)
	}
	if err := sig.Validate(); err != nil {
		return diagnostics.Errorf(diagnostics.OverloadError, diagnostics.At(span),
			"invalid overload of '%s': %v", name, err)
	}
	fn, ok := s.funcs[name]
	if !ok {
		fn = &FuncSymbol{Name: name}
		s.funcs[name] = fn
	}
	for _, existing := range fn.Signatures {
		if types.Conflicts(existing, sig) {
			return diagnostics.Errorf(diagnostics.RedefinitionError, diagnostics.At(span),
				"overload %s%s conflicts with existing overload %s%s", name, sig, name, existing)
		}
	}
	fn.Signatures = append(fn.Signatures, sig)
	fn.defs = append(fn.defs, def)
	return nil
}

// LookupVariable finds the innermost variable called name.
func (t *Table) LookupVariable(name string) (*Symbol, bool) {
	for s := t.current; s != nil; s = s.parent {
		if sym, ok := s.vars[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupFunction finds the innermost function called name.
func (t *Table) LookupFunction(name string) (*FuncSymbol, bool) {
	for s := t.current; s != nil; s = s.parent {
		if fn, ok := s.funcs[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// Lookup resolves name the way an expression does: the innermost scope
// holding either a variable or a function wins. Exactly one result is set.
func (t *Table) Lookup(name string) (*Symbol, *FuncSymbol, bool) {
	for s := t.current; s != nil; s = s.parent {
		if sym, ok := s.vars[name]; ok {
			return sym, nil, true
		}
		if fn, ok := s.funcs[name]; ok {
			return nil, fn, true
		}
	}
	return nil, nil, false
}
