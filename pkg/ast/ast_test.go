package ast_test

import (
	"testing"

	"github.com/baila-lang/baila/pkg/ast"
)

func TestNodeKinds(t *testing.T) {
	nodes := []ast.Node{
		&ast.IntLiteral{Value: 42},
		&ast.FloatLiteral{Value: 3.14},
		&ast.BoolLiteral{Value: true},
		&ast.StringLiteral{Value: "hello"},
		&ast.StringConcat{},
		&ast.Variable{Name: "x"},
		&ast.CallExpr{},
		&ast.ForStmt{},
	}

	expected := []string{
		"IntLiteral", "FloatLiteral", "BoolLiteral", "StringLiteral",
		"StringConcat", "Variable", "CallExpr", "ForStmt",
	}

	for i, node := range nodes {
		if got := node.Kind(); got != expected[i] {
			t.Errorf("node %d: got Kind() = %q, want %q", i, got, expected[i])
		}
	}
}

func TestSpanMerge(t *testing.T) {
	tests := []struct {
		name string
		a, b ast.Span
		want ast.Span
	}{
		{
			name: "same line",
			a:    ast.Span{File: "f", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 4},
			b:    ast.Span{File: "f", StartLine: 1, StartCol: 8, EndLine: 1, EndCol: 12},
			want: ast.Span{File: "f", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 12},
		},
		{
			name: "reversed order",
			a:    ast.Span{File: "f", StartLine: 3, StartCol: 2, EndLine: 3, EndCol: 5},
			b:    ast.Span{File: "f", StartLine: 1, StartCol: 7, EndLine: 2, EndCol: 1},
			want: ast.Span{File: "f", StartLine: 1, StartCol: 7, EndLine: 3, EndCol: 5},
		},
		{
			name: "contained",
			a:    ast.Span{File: "f", StartLine: 1, StartCol: 1, EndLine: 4, EndCol: 1},
			b:    ast.Span{File: "f", StartLine: 2, StartCol: 3, EndLine: 2, EndCol: 9},
			want: ast.Span{File: "f", StartLine: 1, StartCol: 1, EndLine: 4, EndCol: 1},
		},
		{
			name: "zero left",
			b:    ast.Span{File: "f", StartLine: 2, StartCol: 3, EndLine: 2, EndCol: 9},
			want: ast.Span{File: "f", StartLine: 2, StartCol: 3, EndLine: 2, EndCol: 9},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Merge(tt.b); got != tt.want {
				t.Errorf("Merge = %+v, want %+v", got, tt.want)
			}
			if got := tt.b.Merge(tt.a); got.StartLine != tt.want.StartLine || got.EndCol != tt.want.EndCol {
				t.Errorf("Merge is not symmetric: %+v", got)
			}
		})
	}
}

func TestSpanMetrics(t *testing.T) {
	single := ast.Span{StartLine: 2, StartCol: 3, EndLine: 2, EndCol: 8}
	if single.LineCount() != 1 || single.Length() != 5 {
		t.Errorf("single: lines=%d length=%d", single.LineCount(), single.Length())
	}
	multi := ast.Span{StartLine: 1, StartCol: 5, EndLine: 3, EndCol: 4}
	if multi.LineCount() != 3 {
		t.Errorf("multi: lines=%d, want 3", multi.LineCount())
	}
	if multi.Length() != 3 {
		t.Errorf("multi: length=%d, want 3", multi.Length())
	}
}

func TestCollectReturnsSkipsNestedFunctions(t *testing.T) {
	inner := &ast.FunctionDefine{
		Name: "inner",
		Body: &ast.Block{Statements: []ast.Stmt{&ast.ReturnStmt{Value: &ast.IntLiteral{Value: 1}}}},
	}
	outerReturn := &ast.ReturnStmt{Value: &ast.IntLiteral{Value: 2}}
	body := &ast.Block{Statements: []ast.Stmt{
		inner,
		&ast.IfStmt{
			Cond: &ast.BoolLiteral{Value: true},
			Then: &ast.Block{Statements: []ast.Stmt{outerReturn}},
		},
	}}

	got := ast.CollectReturns(body)
	if len(got) != 1 || got[0] != outerReturn {
		t.Fatalf("CollectReturns = %v, want only the outer return", got)
	}
}

func TestTypeRefString(t *testing.T) {
	ref := &ast.TypeRef{
		Name:     "Map",
		Nullable: true,
		Generics: []*ast.TypeRef{{Name: "String"}, {Name: "Int", Nullable: true}},
	}
	if got, want := ref.String(), "Map<String, Int?>?"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
