// Package formatter prints a Baila AST back to canonical source code.
package formatter

import (
	"math"
	"strconv"
	"strings"

	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/lexer"
)

const indent = "    "

// Precedence table for binary operators (higher = tighter binding)
var precedence = map[ast.BinaryOp]int{
	ast.OpOr:     1,
	ast.OpAnd:    2,
	ast.OpBitOr:  3,
	ast.OpBitXor: 4,
	ast.OpBitAnd: 5,
	ast.OpEq:     6, ast.OpNeq: 6,
	ast.OpLt: 7, ast.OpGt: 7, ast.OpLtEq: 7, ast.OpGtEq: 7,
	ast.OpAdd: 8, ast.OpSub: 8,
	ast.OpMul: 9, ast.OpDiv: 9, ast.OpMod: 9,
	ast.OpPow: 10,
}

// needsParens reports whether child must be parenthesized as an operand
// of parentOp. Trees produced by the parser keep their ParenExpr nodes, so
// this only adds parentheses to trees built by hand.
func needsParens(child ast.Expr, parentOp ast.BinaryOp, isRight bool) bool {
	switch c := child.(type) {
	case *ast.Assignment:
		return true
	case *ast.BinaryExpr:
		childPrec := precedence[c.Op]
		parentPrec := precedence[parentOp]
		if childPrec != parentPrec {
			return childPrec < parentPrec
		}
		// ** associates to the right, everything else to the left.
		if parentOp == ast.OpPow {
			return !isRight
		}
		return isRight
	}
	return false
}

// Format pretty-prints a program. Comments are not part of the AST and are
// lost; see HasComments.
func Format(program *ast.Program) string {
	if len(program.Statements) == 0 {
		return ""
	}
	var b strings.Builder
	writeStatements(&b, program.Statements, 0)
	return b.String()
}

// HasComments reports whether source contains any comment that Format would
// drop.
func HasComments(source string) bool {
	toks, _ := lexer.New(source, "", lexer.WithMode(lexer.Highlighting)).Tokenize()
	for _, tok := range toks {
		if tok.Type == lexer.TokComment {
			return true
		}
	}
	return false
}

// FormatExpr renders a single expression.
func FormatExpr(e ast.Expr) string {
	return formatExpr(e, 0)
}

func writeStatements(b *strings.Builder, stmts []ast.Stmt, depth int) {
	for i, s := range stmts {
		// Keep a blank line around function definitions at the top level.
		if i > 0 && depth == 0 {
			_, prevFn := stmts[i-1].(*ast.FunctionDefine)
			_, curFn := s.(*ast.FunctionDefine)
			if prevFn || curFn {
				b.WriteByte('\n')
			}
		}
		b.WriteString(strings.Repeat(indent, depth))
		b.WriteString(formatStmt(s, depth))
		b.WriteByte('\n')
	}
}

func formatBlock(block *ast.Block, depth int) string {
	if block == nil || len(block.Statements) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{\n")
	writeStatements(&b, block.Statements, depth+1)
	b.WriteString(strings.Repeat(indent, depth))
	b.WriteByte('}')
	return b.String()
}

func formatStmt(s ast.Stmt, depth int) string {
	switch stmt := s.(type) {
	case *ast.ExprStmt:
		return formatExpr(stmt.Expr, depth)
	case *ast.VarDefine:
		return formatDefine("var", stmt.Name, stmt.Type, stmt.Value, depth)
	case *ast.ConstDefine:
		return formatDefine("const", stmt.Name, stmt.Type, stmt.Value, depth)
	case *ast.FunctionDefine:
		return formatFunction(stmt, depth)
	case *ast.ReturnStmt:
		if stmt.Value == nil {
			return "return"
		}
		return "return " + formatExpr(stmt.Value, depth)
	case *ast.IfStmt:
		return formatIf(stmt, depth)
	case *ast.WhileStmt:
		return "while " + formatExpr(stmt.Cond, depth) + " " + formatBlock(stmt.Body, depth)
	case *ast.DoWhileStmt:
		return "do " + formatBlock(stmt.Body, depth) + " while " + formatExpr(stmt.Cond, depth)
	case *ast.ForStmt:
		out := "for " + stmt.Var + " = " + formatBound(stmt.From, depth) + " to " + formatBound(stmt.To, depth)
		if stmt.Step != nil {
			out += " step " + formatBound(stmt.Step, depth)
		}
		return out + " " + formatBlock(stmt.Body, depth)
	case *ast.Block:
		return formatBlock(stmt, depth)
	case *ast.NoOp:
		return ";"
	}
	return ""
}

func formatDefine(keyword, name string, typ *ast.TypeRef, value ast.Expr, depth int) string {
	out := keyword + " " + name
	if typ != nil {
		out += ": " + typ.String()
	}
	if value != nil {
		out += " = " + formatExpr(value, depth)
	}
	return out
}

func formatFunction(fn *ast.FunctionDefine, depth int) string {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		s := p.Name
		if p.Type != nil {
			s += ": " + p.Type.String()
			if p.Vararg {
				s += "..."
			}
		}
		if p.Default != nil {
			s += " = " + formatExpr(p.Default, depth)
		}
		params[i] = s
	}
	out := "function " + fn.Name + "(" + strings.Join(params, ", ") + ")"
	if fn.ReturnType != nil {
		out += ": " + fn.ReturnType.String()
	}
	return out + " " + formatBlock(fn.Body, depth)
}

func formatIf(stmt *ast.IfStmt, depth int) string {
	out := "if " + formatExpr(stmt.Cond, depth) + " " + formatBlock(stmt.Then, depth)
	switch e := stmt.Else.(type) {
	case *ast.IfStmt:
		out += " else " + formatIf(e, depth)
	case *ast.Block:
		out += " else " + formatBlock(e, depth)
	}
	return out
}

// formatBound renders a for-loop bound, which the grammar reads without
// assignments.
func formatBound(e ast.Expr, depth int) string {
	if _, ok := e.(*ast.Assignment); ok {
		return "(" + formatExpr(e, depth) + ")"
	}
	return formatExpr(e, depth)
}

func formatExpr(e ast.Expr, depth int) string {
	switch expr := e.(type) {
	case *ast.IntLiteral:
		if expr.Value < 0 {
			// Source literals are never negative; a folded one needs a sign.
			return "(" + strconv.FormatInt(expr.Value, 10) + ")"
		}
		return strconv.FormatInt(expr.Value, 10)
	case *ast.FloatLiteral:
		return formatFloatLiteral(expr.Value)
	case *ast.BoolLiteral:
		if expr.Value {
			return "true"
		}
		return "false"
	case *ast.StringLiteral:
		return `"` + escape(expr.Value) + `"`
	case *ast.StringConcat:
		return formatConcat(expr, depth)
	case *ast.Variable:
		return expr.Name
	case *ast.Assignment:
		return expr.Target.Name + " " + string(expr.Op) + "= " + formatExpr(expr.Value, depth)
	case *ast.ParenExpr:
		return "(" + formatExpr(expr.Inner, depth) + ")"
	case *ast.CallExpr:
		args := make([]string, len(expr.Args))
		for i, a := range expr.Args {
			args[i] = formatExpr(a, depth)
		}
		return formatOperand(expr.Callee, depth) + "(" + strings.Join(args, ", ") + ")"
	case *ast.TypeOfExpr:
		return "typeof " + formatOperand(expr.Operand, depth)
	case *ast.UnaryExpr:
		return string(expr.Op) + formatOperand(expr.Operand, depth)
	case *ast.BinaryExpr:
		leftStr := formatExpr(expr.Left, depth)
		rightStr := formatExpr(expr.Right, depth)
		if needsParens(expr.Left, expr.Op, false) {
			leftStr = "(" + leftStr + ")"
		}
		if needsParens(expr.Right, expr.Op, true) {
			rightStr = "(" + rightStr + ")"
		}
		return leftStr + " " + string(expr.Op) + " " + rightStr
	}
	return ""
}

// formatOperand renders the operand of a prefix operator or a callee,
// parenthesizing anything looser than a unary expression.
func formatOperand(e ast.Expr, depth int) string {
	switch e.(type) {
	case *ast.BinaryExpr, *ast.Assignment:
		return "(" + formatExpr(e, depth) + ")"
	}
	return formatExpr(e, depth)
}

func formatConcat(c *ast.StringConcat, depth int) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, part := range c.Parts {
		if lit, ok := part.(*ast.StringLiteral); ok {
			b.WriteString(escape(lit.Value))
			continue
		}
		b.WriteString("${")
		b.WriteString(formatExpr(part, depth))
		b.WriteByte('}')
	}
	b.WriteByte('"')
	return b.String()
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`$`, `\$`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\b", `\b`,
	"\x00", `\0`,
)

func escape(s string) string {
	return escaper.Replace(s)
}

func formatFloatLiteral(value float64) string {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}

	raw := strconv.FormatFloat(value, 'g', -1, 64)
	// Baila has no exponent syntax, so expand scientific notation.
	if strings.ContainsAny(raw, "eE") {
		raw = expandScientificNotation(raw)
	}
	if !strings.Contains(raw, ".") {
		raw += ".0"
	}
	if strings.HasPrefix(raw, "-") {
		return "(" + raw + ")"
	}
	return raw
}

func expandScientificNotation(value string) string {
	lower := strings.ToLower(value)
	parts := strings.SplitN(lower, "e", 2)
	if len(parts) != 2 {
		return value
	}

	mantissa := parts[0]
	exponent, err := strconv.Atoi(parts[1])
	if err != nil {
		return value
	}

	sign := ""
	digits := mantissa
	if strings.HasPrefix(digits, "-") {
		sign = "-"
		digits = digits[1:]
	}

	intPart, fracPart, _ := strings.Cut(digits, ".")
	compact := intPart + fracPart
	decimalIndex := len(intPart) + exponent

	if decimalIndex <= 0 {
		return sign + "0." + strings.Repeat("0", -decimalIndex) + compact
	}
	if decimalIndex >= len(compact) {
		return sign + compact + strings.Repeat("0", decimalIndex-len(compact)) + ".0"
	}
	return sign + compact[:decimalIndex] + "." + compact[decimalIndex:]
}
