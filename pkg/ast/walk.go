package ast

// Inspect traverses the tree rooted at node in depth-first order. If fn
// returns false the children of that node are skipped.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, c := range Children(node) {
		Inspect(c, fn)
	}
}

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if c != nil {
			out = append(out, c)
		}
	}

	switch n := n.(type) {
	case *Program:
		for _, s := range n.Statements {
			add(s)
		}
	case *Block:
		for _, s := range n.Statements {
			add(s)
		}
	case *IfStmt:
		add(n.Cond)
		if n.Then != nil {
			add(n.Then)
		}
		if n.Else != nil {
			add(n.Else)
		}
	case *WhileStmt:
		add(n.Cond)
		if n.Body != nil {
			add(n.Body)
		}
	case *DoWhileStmt:
		if n.Body != nil {
			add(n.Body)
		}
		add(n.Cond)
	case *ForStmt:
		add(n.From)
		add(n.To)
		if n.Step != nil {
			add(n.Step)
		}
		if n.Body != nil {
			add(n.Body)
		}
	case *VarDefine:
		if n.Value != nil {
			add(n.Value)
		}
	case *ConstDefine:
		if n.Value != nil {
			add(n.Value)
		}
	case *FunctionDefine:
		for _, p := range n.Params {
			add(p)
		}
		if n.Body != nil {
			add(n.Body)
		}
	case *Param:
		if n.Default != nil {
			add(n.Default)
		}
	case *ReturnStmt:
		if n.Value != nil {
			add(n.Value)
		}
	case *ExprStmt:
		add(n.Expr)
	case *StringConcat:
		for _, p := range n.Parts {
			add(p)
		}
	case *Assignment:
		add(n.Target)
		add(n.Value)
	case *BinaryExpr:
		add(n.Left)
		add(n.Right)
	case *UnaryExpr:
		add(n.Operand)
	case *CallExpr:
		add(n.Callee)
		for _, a := range n.Args {
			add(a)
		}
	case *TypeOfExpr:
		add(n.Operand)
	case *ParenExpr:
		add(n.Inner)
	}
	return out
}

// CollectReturns returns every return statement in body, without descending
// into nested function definitions.
func CollectReturns(body *Block) []*ReturnStmt {
	var out []*ReturnStmt
	if body == nil {
		return out
	}
	Inspect(body, func(n Node) bool {
		switch n := n.(type) {
		case *FunctionDefine:
			return false
		case *ReturnStmt:
			out = append(out, n)
		}
		return true
	})
	return out
}

// FunctionDefines returns the function definitions that appear directly in
// stmts. These are hoisted before the list executes.
func FunctionDefines(stmts []Stmt) []*FunctionDefine {
	var out []*FunctionDefine
	for _, s := range stmts {
		if fn, ok := s.(*FunctionDefine); ok {
			out = append(out, fn)
		}
	}
	return out
}
