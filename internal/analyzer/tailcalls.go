package analyzer

import (
	"github.com/kitelang/kite/internal/ast"
)

// classifyTails walks one function body and records a classification
// for every call site in it. The classification is shape-based: a
// call is in tail position when its value becomes the function's
// value with no further computation, which makes return-of-if and
// return-of-match branches tail positions too.
func classifyTails(fd *ast.FunctionDeclaration, tails map[*ast.CallExpression]ast.TailClass) {
	if fd == nil || fd.Body == nil {
		return
	}
	w := &tailWalker{tails: tails}
	if fd.Name != nil {
		w.self = fd.Name.Value
	}
	w.block(fd.Body, true)
}

type tailWalker struct {
	self  string
	tails map[*ast.CallExpression]ast.TailClass
}

func (w *tailWalker) block(b *ast.BlockExpression, tail bool) {
	if b == nil {
		return
	}
	for i, stmt := range b.Statements {
		w.statement(stmt, tail && i == len(b.Statements)-1)
	}
}

func (w *tailWalker) statement(stmt ast.Statement, tail bool) {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		w.expr(s.Value, false)
	case *ast.AssignStatement:
		w.expr(s.Value, false)
	case *ast.ReturnStatement:
		// A returned value is the function's value wherever the
		// statement sits.
		w.expr(s.Value, true)
	case *ast.ExpressionStatement:
		w.expr(s.Expression, tail)
	}
}

func (w *tailWalker) expr(e ast.Expression, tail bool) {
	switch n := e.(type) {
	case *ast.CallExpression:
		w.classify(n, tail)
		w.expr(n.Function, false)
		for _, arg := range n.Arguments {
			w.expr(arg, false)
		}

	case *ast.InfixExpression:
		w.expr(n.Left, false)
		w.expr(n.Right, false)
	case *ast.PrefixExpression:
		w.expr(n.Right, false)
	case *ast.MemberExpression:
		w.expr(n.Left, false)
	case *ast.IndexExpression:
		w.expr(n.Left, false)
		w.expr(n.Index, false)
	case *ast.TypeTestExpression:
		w.expr(n.Expression, false)

	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			w.expr(el, false)
		}
	case *ast.RecordLiteral:
		for _, f := range n.Fields {
			if f != nil {
				w.expr(f.Value, false)
			}
		}

	case *ast.IfExpression:
		w.expr(n.Condition, false)
		w.block(n.Consequence, tail)
		w.block(n.Alternative, tail)

	case *ast.MatchExpression:
		w.expr(n.Expression, false)
		for _, arm := range n.Arms {
			if arm == nil {
				continue
			}
			w.expr(arm.Guard, false)
			w.expr(arm.Expression, tail)
		}

	case *ast.BlockExpression:
		w.block(n, tail)

	case *ast.FunctionLiteral:
		// A lambda starts its own classification: its body's tail
		// positions belong to it, and having no name it has no
		// self-calls.
		inner := &tailWalker{tails: w.tails}
		inner.block(n.Body, true)
	}
}

func (w *tailWalker) classify(call *ast.CallExpression, tail bool) {
	class := ast.NonTail
	if tail {
		class = ast.Tail
		if id, ok := call.Function.(*ast.Identifier); ok && w.self != "" && id.Value == w.self {
			class = ast.SelfTail
		}
	}
	w.tails[call] = class
}
