package types_test

import (
	"errors"
	"testing"

	"github.com/baila-lang/baila/pkg/types"
)

func TestEqualityIgnoresBase(t *testing.T) {
	a := &types.Type{Name: "Meters", Base: types.Int}
	b := &types.Type{Name: "Meters", Base: types.Float}
	if !a.Equals(b) {
		t.Error("types with the same name and shape should be equal")
	}
	if a.Equals(a.AsNullable()) {
		t.Error("nullability is part of equality")
	}
	list := types.New("List", nil)
	if list.WithGenerics(types.Int).Equals(list.WithGenerics(types.String)) {
		t.Error("generics are part of equality")
	}
}

func TestImplicitConversion(t *testing.T) {
	tests := []struct {
		from, to *types.Type
		want     bool
	}{
		{types.Int, types.Int, true},
		{types.Int, types.Number, true},
		{types.Float, types.Number, true},
		{types.Int, types.Any, true},
		{types.Number, types.Int, false},
		{types.Int, types.Float, false},
		{types.String, types.Number, false},
		{types.Int, types.Int.AsNullable(), true},
		{types.Int.AsNullable(), types.Int, false},
		{types.Int, types.Number.AsNullable(), true},
		{types.Bool, types.Function, false},
	}
	for _, tt := range tests {
		if got := tt.from.IsImplicitlyConvertibleTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
		if got := tt.from.IsExplicitlyConvertibleTo(tt.to); got != tt.want {
			t.Errorf("explicit %s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestSubtypeOrderProperties(t *testing.T) {
	all := []*types.Type{types.Any, types.Number, types.Int, types.Float, types.Bool, types.String, types.Function}
	for _, a := range all {
		if !a.IsImplicitlyConvertibleTo(a) {
			t.Errorf("%s is not reflexive", a)
		}
		for _, b := range all {
			if a != b && a.IsImplicitlyConvertibleTo(b) && b.IsImplicitlyConvertibleTo(a) {
				t.Errorf("%s and %s convert both ways", a, b)
			}
			for _, c := range all {
				if a.IsImplicitlyConvertibleTo(b) && b.IsImplicitlyConvertibleTo(c) && !a.IsImplicitlyConvertibleTo(c) {
					t.Errorf("transitivity broken: %s -> %s -> %s", a, b, c)
				}
			}
		}
	}
}

func TestRegistryDefine(t *testing.T) {
	r := types.NewRegistry()
	meters, err := r.Define("Meters", types.Int)
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	if !meters.IsImplicitlyConvertibleTo(types.Number) {
		t.Error("Meters should convert to Number through Int")
	}
	if _, err := r.Define("Meters", nil); err == nil {
		t.Error("expected redefinition error")
	}
	if got, ok := r.Lookup("Int"); !ok || got != types.Int {
		t.Error("built-in Int missing from registry")
	}
	plain, _ := r.Define("Plain", nil)
	if plain.Base != types.Any {
		t.Errorf("default base = %v, want Any", plain.Base)
	}
}

// ---------------------------------------------------------------------------
// Signatures and overload resolution
// ---------------------------------------------------------------------------

func sig(ret *types.Type, params ...types.Param) types.Signature {
	return types.Signature{Params: params, Return: ret}
}

func p(name string, t *types.Type) types.Param { return types.Param{Name: name, Type: t} }
func opt(name string, t *types.Type) types.Param {
	return types.Param{Name: name, Type: t, Optional: true}
}

func TestValidate(t *testing.T) {
	if err := sig(nil, p("a", types.Int), opt("b", types.Int)).Validate(); err != nil {
		t.Errorf("valid signature rejected: %v", err)
	}
	if err := sig(nil, opt("a", types.Int), p("b", types.Int)).Validate(); err == nil {
		t.Error("expected required-after-optional error")
	}
	va := types.Param{Name: "rest", Type: types.Any, Vararg: true}
	if err := sig(nil, va, p("b", types.Int)).Validate(); err == nil {
		t.Error("expected vararg-not-last error")
	}
	if err := sig(nil, opt("a", types.Int), va).Validate(); err != nil {
		t.Errorf("vararg after optional rejected: %v", err)
	}
}

func TestResolveByArity(t *testing.T) {
	sigs := []types.Signature{
		sig(types.Int),
		sig(types.Int, p("a", types.Int)),
		sig(types.Int, p("a", types.Int), p("b", types.Int)),
	}
	for n := 0; n < 3; n++ {
		args := make([]*types.Type, n)
		for i := range args {
			args[i] = types.Int
		}
		if got := types.Resolve(sigs, args); got != n {
			t.Errorf("%d args resolved to overload %d", n, got)
		}
	}
	if got := types.Resolve(sigs, []*types.Type{types.Int, types.Int, types.Int}); got != -1 {
		t.Errorf("too many args resolved to %d", got)
	}
}

func TestResolvePrefersExactMatch(t *testing.T) {
	sigs := []types.Signature{
		sig(types.Number, p("a", types.Number)),
		sig(types.Int, p("a", types.Int)),
	}
	if got := types.Resolve(sigs, []*types.Type{types.Int}); got != 1 {
		t.Errorf("Int resolved to %d, want exact overload 1", got)
	}
	if got := types.Resolve(sigs, []*types.Type{types.Float}); got != 0 {
		t.Errorf("Float resolved to %d, want convertible overload 0", got)
	}
	if got := types.Resolve(sigs, []*types.Type{types.String}); got != -1 {
		t.Errorf("String resolved to %d, want none", got)
	}
}

func TestResolveOptionalAndVararg(t *testing.T) {
	sigs := []types.Signature{
		sig(types.String, p("s", types.String), opt("n", types.Int)),
		sig(nil, types.Param{Name: "xs", Type: types.Any, Vararg: true}),
	}
	if got := types.Resolve(sigs, []*types.Type{types.String}); got != 0 {
		t.Errorf("optional omitted resolved to %d", got)
	}
	if got := types.Resolve(sigs, []*types.Type{types.String, types.Int}); got != 0 {
		t.Errorf("optional supplied resolved to %d", got)
	}
	if got := types.Resolve(sigs, []*types.Type{types.Int, types.Int, types.Bool}); got != 1 {
		t.Errorf("vararg resolved to %d", got)
	}
	if got := types.Resolve(sigs, nil); got != 1 {
		t.Errorf("empty vararg resolved to %d", got)
	}
}

func TestConflicts(t *testing.T) {
	a := sig(nil, p("x", types.Int))
	b := sig(nil, p("y", types.Int), opt("z", types.String))
	if !types.Conflicts(a, b) {
		t.Error("f(Int) and f(Int, String = ?) both accept (Int)")
	}
	c := sig(nil, p("x", types.String))
	if types.Conflicts(a, c) {
		t.Error("f(Int) and f(String) do not conflict")
	}
	d := sig(nil, p("x", types.Int), p("y", types.Int))
	if types.Conflicts(a, d) {
		t.Error("different required arity does not conflict")
	}
}

func TestValidateErrorsWrap(t *testing.T) {
	err := sig(nil, opt("a", types.Int), p("b", types.Int)).Validate()
	if err == nil || errors.Unwrap(err) == nil {
		t.Errorf("Validate error should wrap a sentinel: %v", err)
	}
}
