// Package ast defines the Baila language AST node types.
package ast

import "strings"

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// BinaryOp represents a binary operator.
type BinaryOp string

const (
	OpAdd    BinaryOp = "+"
	OpSub    BinaryOp = "-"
	OpMul    BinaryOp = "*"
	OpDiv    BinaryOp = "/"
	OpMod    BinaryOp = "%"
	OpPow    BinaryOp = "**"
	OpEq     BinaryOp = "=="
	OpNeq    BinaryOp = "!="
	OpLt     BinaryOp = "<"
	OpGt     BinaryOp = ">"
	OpLtEq   BinaryOp = "<="
	OpGtEq   BinaryOp = ">="
	OpAnd    BinaryOp = "&&"
	OpOr     BinaryOp = "||"
	OpBitAnd BinaryOp = "&"
	OpBitOr  BinaryOp = "|"
	OpBitXor BinaryOp = "^"
)

// UnaryOp represents a prefix unary operator.
type UnaryOp string

const (
	OpNeg    UnaryOp = "-"
	OpPlus   UnaryOp = "+"
	OpNot    UnaryOp = "!"
	OpBitNot UnaryOp = "~"
)

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Types ---

// TypeRef is a type annotation as written in source, e.g. `Int?` or
// `List<String>`. It is resolved against a type registry by later passes.
type TypeRef struct {
	Span     Span
	Name     string
	Nullable bool
	Generics []*TypeRef
}

func (n *TypeRef) Kind() string   { return "TypeRef" }
func (n *TypeRef) NodeSpan() Span { return n.Span }

func (n *TypeRef) String() string {
	var b strings.Builder
	b.WriteString(n.Name)
	if len(n.Generics) > 0 {
		b.WriteByte('<')
		for i, g := range n.Generics {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(g.String())
		}
		b.WriteByte('>')
	}
	if n.Nullable {
		b.WriteByte('?')
	}
	return b.String()
}

// --- Literal Expressions ---

type IntLiteral struct {
	Span  Span
	Value int64
}

func (n *IntLiteral) Kind() string   { return "IntLiteral" }
func (n *IntLiteral) NodeSpan() Span { return n.Span }
func (n *IntLiteral) exprNode()      {}

type FloatLiteral struct {
	Span  Span
	Value float64
}

func (n *FloatLiteral) Kind() string   { return "FloatLiteral" }
func (n *FloatLiteral) NodeSpan() Span { return n.Span }
func (n *FloatLiteral) exprNode()      {}

type BoolLiteral struct {
	Span  Span
	Value bool
}

func (n *BoolLiteral) Kind() string   { return "BoolLiteral" }
func (n *BoolLiteral) NodeSpan() Span { return n.Span }
func (n *BoolLiteral) exprNode()      {}

type StringLiteral struct {
	Span  Span
	Value string
}

func (n *StringLiteral) Kind() string   { return "StringLiteral" }
func (n *StringLiteral) NodeSpan() Span { return n.Span }
func (n *StringLiteral) exprNode()      {}

// StringConcat is an interpolated string. Parts alternate between fixed
// *StringLiteral pieces and embedded expressions, in source order.
type StringConcat struct {
	Span  Span
	Parts []Expr
}

func (n *StringConcat) Kind() string   { return "StringConcat" }
func (n *StringConcat) NodeSpan() Span { return n.Span }
func (n *StringConcat) exprNode()      {}

// FixedStrings returns the literal pieces of the concatenation.
func (n *StringConcat) FixedStrings() []string {
	var out []string
	for _, p := range n.Parts {
		if lit, ok := p.(*StringLiteral); ok {
			out = append(out, lit.Value)
		}
	}
	return out
}

// Embedded returns the interpolated expressions of the concatenation.
func (n *StringConcat) Embedded() []Expr {
	var out []Expr
	for _, p := range n.Parts {
		if _, ok := p.(*StringLiteral); !ok {
			out = append(out, p)
		}
	}
	return out
}

// --- Names ---

type Variable struct {
	Span Span
	Name string
}

func (n *Variable) Kind() string   { return "Variable" }
func (n *Variable) NodeSpan() Span { return n.Span }
func (n *Variable) exprNode()      {}

// Assignment stores Value into Target. Op is empty for plain `=` and holds
// the arithmetic operator for compound forms such as `+=`.
type Assignment struct {
	Span   Span
	Target *Variable
	Op     BinaryOp
	Value  Expr
}

func (n *Assignment) Kind() string   { return "Assignment" }
func (n *Assignment) NodeSpan() Span { return n.Span }
func (n *Assignment) exprNode()      {}

// --- Operators ---

type BinaryExpr struct {
	Span  Span
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) Kind() string   { return "BinaryExpr" }
func (n *BinaryExpr) NodeSpan() Span { return n.Span }
func (n *BinaryExpr) exprNode()      {}

type UnaryExpr struct {
	Span    Span
	Op      UnaryOp
	Operand Expr
}

func (n *UnaryExpr) Kind() string   { return "UnaryExpr" }
func (n *UnaryExpr) NodeSpan() Span { return n.Span }
func (n *UnaryExpr) exprNode()      {}

type CallExpr struct {
	Span   Span
	Callee Expr
	Args   []Expr
}

func (n *CallExpr) Kind() string   { return "CallExpr" }
func (n *CallExpr) NodeSpan() Span { return n.Span }
func (n *CallExpr) exprNode()      {}

type TypeOfExpr struct {
	Span    Span
	Operand Expr
}

func (n *TypeOfExpr) Kind() string   { return "TypeOfExpr" }
func (n *TypeOfExpr) NodeSpan() Span { return n.Span }
func (n *TypeOfExpr) exprNode()      {}

type ParenExpr struct {
	Span  Span
	Inner Expr
}

func (n *ParenExpr) Kind() string   { return "ParenExpr" }
func (n *ParenExpr) NodeSpan() Span { return n.Span }
func (n *ParenExpr) exprNode()      {}

// --- Statements ---

type Block struct {
	Span       Span
	Statements []Stmt
}

func (n *Block) Kind() string   { return "Block" }
func (n *Block) NodeSpan() Span { return n.Span }
func (n *Block) stmtNode()      {}

// IfStmt holds an optional Else which is either a *Block or a nested *IfStmt.
type IfStmt struct {
	Span Span
	Cond Expr
	Then *Block
	Else Stmt
}

func (n *IfStmt) Kind() string   { return "IfStmt" }
func (n *IfStmt) NodeSpan() Span { return n.Span }
func (n *IfStmt) stmtNode()      {}

type WhileStmt struct {
	Span Span
	Cond Expr
	Body *Block
}

func (n *WhileStmt) Kind() string   { return "WhileStmt" }
func (n *WhileStmt) NodeSpan() Span { return n.Span }
func (n *WhileStmt) stmtNode()      {}

type DoWhileStmt struct {
	Span Span
	Body *Block
	Cond Expr
}

func (n *DoWhileStmt) Kind() string   { return "DoWhileStmt" }
func (n *DoWhileStmt) NodeSpan() Span { return n.Span }
func (n *DoWhileStmt) stmtNode()      {}

// ForStmt is the counting loop `for i = From to To [step Step] { ... }`.
type ForStmt struct {
	Span    Span
	Var     string
	VarSpan Span
	From    Expr
	To      Expr
	Step    Expr
	Body    *Block
}

func (n *ForStmt) Kind() string   { return "ForStmt" }
func (n *ForStmt) NodeSpan() Span { return n.Span }
func (n *ForStmt) stmtNode()      {}

type VarDefine struct {
	Span  Span
	Name  string
	Type  *TypeRef
	Value Expr
}

func (n *VarDefine) Kind() string   { return "VarDefine" }
func (n *VarDefine) NodeSpan() Span { return n.Span }
func (n *VarDefine) stmtNode()      {}

type ConstDefine struct {
	Span  Span
	Name  string
	Type  *TypeRef
	Value Expr
}

func (n *ConstDefine) Kind() string   { return "ConstDefine" }
func (n *ConstDefine) NodeSpan() Span { return n.Span }
func (n *ConstDefine) stmtNode()      {}

// Param is one entry of a function parameter list.
type Param struct {
	Span    Span
	Name    string
	Type    *TypeRef
	Default Expr
	Vararg  bool
}

func (n *Param) Kind() string   { return "Param" }
func (n *Param) NodeSpan() Span { return n.Span }

// FunctionDefine declares one overload of a named function. ReturnType is
// nil when the source omits it; the return type is then inferred from the
// body's single return statement, if any.
type FunctionDefine struct {
	Span       Span
	Name       string
	NameSpan   Span
	Params     []*Param
	ReturnType *TypeRef
	Body       *Block
}

func (n *FunctionDefine) Kind() string   { return "FunctionDefine" }
func (n *FunctionDefine) NodeSpan() Span { return n.Span }
func (n *FunctionDefine) stmtNode()      {}

type ReturnStmt struct {
	Span  Span
	Value Expr
}

func (n *ReturnStmt) Kind() string   { return "ReturnStmt" }
func (n *ReturnStmt) NodeSpan() Span { return n.Span }
func (n *ReturnStmt) stmtNode()      {}

type ExprStmt struct {
	Span Span
	Expr Expr
}

func (n *ExprStmt) Kind() string   { return "ExprStmt" }
func (n *ExprStmt) NodeSpan() Span { return n.Span }
func (n *ExprStmt) stmtNode()      {}

type NoOp struct {
	Span Span
}

func (n *NoOp) Kind() string   { return "NoOp" }
func (n *NoOp) NodeSpan() Span { return n.Span }
func (n *NoOp) stmtNode()      {}

// --- Program ---

type Program struct {
	Span       Span
	Statements []Stmt
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }
