package mono

import (
	"github.com/kitelang/kite/internal/ast"
)

// collectCalls visits every dispatch site under a node, outermost
// first, in source order. Besides call expressions this covers infix
// nodes, whose desugared operators dispatch like calls, and bare
// identifiers, which can reference a generic value such as a nullary
// constructor.
func collectCalls(node ast.Node, fn func(ast.Expression)) {
	switch n := node.(type) {
	case nil:

	case *ast.Identifier:
		fn(n)

	case *ast.BlockExpression:
		if n == nil {
			return
		}
		for _, s := range n.Statements {
			collectCalls(s, fn)
		}

	case *ast.LetStatement:
		collectCalls(n.Value, fn)

	case *ast.AssignStatement:
		collectCalls(n.Value, fn)

	case *ast.ReturnStatement:
		collectCalls(n.Value, fn)

	case *ast.ExpressionStatement:
		collectCalls(n.Expression, fn)

	case *ast.CallExpression:
		fn(n)
		collectCalls(n.Function, fn)
		for _, a := range n.Arguments {
			collectCalls(a, fn)
		}

	case *ast.MemberExpression:
		collectCalls(n.Left, fn)

	case *ast.IndexExpression:
		collectCalls(n.Left, fn)
		collectCalls(n.Index, fn)

	case *ast.InfixExpression:
		fn(n)
		collectCalls(n.Left, fn)
		collectCalls(n.Right, fn)

	case *ast.PrefixExpression:
		collectCalls(n.Right, fn)

	case *ast.IfExpression:
		collectCalls(n.Condition, fn)
		collectCalls(n.Consequence, fn)
		if n.Alternative != nil {
			collectCalls(n.Alternative, fn)
		}

	case *ast.MatchExpression:
		collectCalls(n.Expression, fn)
		for _, arm := range n.Arms {
			collectCalls(arm.Guard, fn)
			collectCalls(arm.Expression, fn)
		}

	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			collectCalls(el, fn)
		}

	case *ast.RecordLiteral:
		for _, f := range n.Fields {
			collectCalls(f.Value, fn)
		}

	case *ast.FunctionLiteral:
		collectCalls(n.Body, fn)

	case *ast.TypeTestExpression:
		collectCalls(n.Expression, fn)
	}
}
