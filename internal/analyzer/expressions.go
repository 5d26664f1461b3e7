package analyzer

import (
	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/diagnostics"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/token"
	"github.com/kitelang/kite/internal/typesystem"
)

// monadicCallees maps each monadic operator to the identifier its
// application desugars to. The names resolve through ordinary scope
// lookup, so a unit may shadow a library's combinators.
var monadicCallees = map[string]string{
	">>=": "bind",
	">>":  "then",
	"<$>": "fmap",
	"<*>": "apply",
}

func (c *checker) checkPrefix(n *ast.PrefixExpression, scope *symbols.SymbolTable) typesystem.Type {
	rt := c.checkExpression(n.Right, scope)
	switch n.Operator {
	case "!":
		if _, err := typesystem.Unify(typesystem.BoolType, rt); err != nil {
			c.a.reportf(diagnostics.ErrUnification, n.Token, "operator ! requires Bool, got %s", rt)
		}
		return typesystem.BoolType
	case "-":
		if typesystem.Identical(rt, typesystem.IntType) || typesystem.Identical(rt, typesystem.FloatType) {
			return rt
		}
		c.a.reportf(diagnostics.ErrUnification, n.Token, "operator - requires Int or Float, got %s", rt)
		return c.a.freshVar()
	default:
		c.a.reportf(diagnostics.ErrUndefined, n.Token, "unknown operator %s", n.Operator)
		return c.a.freshVar()
	}
}

func (c *checker) checkInfix(n *ast.InfixExpression, scope *symbols.SymbolTable) typesystem.Type {
	if callee, ok := monadicCallees[n.Operator]; ok {
		return c.checkMonadic(n, callee, scope)
	}

	lt := c.checkExpression(n.Left, scope)
	rt := c.checkExpression(n.Right, scope)

	switch n.Operator {
	case "+", "-", "*", "/":
		return c.checkArithmetic(n, lt, rt)

	case "&&", "||":
		if _, err := typesystem.Unify(typesystem.BoolType, lt); err != nil {
			c.a.reportf(diagnostics.ErrUnification, n.Token, "left operand of %s must be Bool, got %s", n.Operator, lt)
		}
		if _, err := typesystem.Unify(typesystem.BoolType, rt); err != nil {
			c.a.reportf(diagnostics.ErrUnification, n.Token, "right operand of %s must be Bool, got %s", n.Operator, rt)
		}
		return typesystem.BoolType

	case "==", "!=":
		return c.checkComparison(n, eqInterface, eqMethod, lt, rt)
	case "<", "<=", ">", ">=":
		return c.checkComparison(n, ordInterface, ordMethod, lt, rt)

	default:
		c.a.reportf(diagnostics.ErrUndefined, n.Token, "unknown operator %s", n.Operator)
		return c.a.freshVar()
	}
}

func (c *checker) checkArithmetic(n *ast.InfixExpression, lt, rt typesystem.Type) typesystem.Type {
	s, err := typesystem.Unify(lt, rt)
	if err != nil {
		c.a.reportf(diagnostics.ErrUnification, n.Token, "operands of %s must share one type: %s", n.Operator, err)
		return c.a.freshVar()
	}
	t := lt.Apply(s)
	switch {
	case typesystem.Identical(t, typesystem.IntType), typesystem.Identical(t, typesystem.FloatType):
		return t
	case n.Operator == "+" && typesystem.Identical(t, typesystem.StringType):
		return t
	}
	if n.Operator == "+" {
		c.a.reportf(diagnostics.ErrUnification, n.Token, "operator + requires Int, Float or String, got %s", t)
	} else {
		c.a.reportf(diagnostics.ErrUnification, n.Token, "operator %s requires Int or Float, got %s", n.Operator, t)
	}
	return c.a.freshVar()
}

// checkComparison types an Eq or Ord operator. Operands must share
// one type with an implementation of the interface for its head; the
// resolved method is recorded so later phases dispatch without
// another lookup. The result is always Bool.
func (c *checker) checkComparison(n *ast.InfixExpression, iface, method string, lt, rt typesystem.Type) typesystem.Type {
	s, err := typesystem.Unify(lt, rt)
	if err != nil {
		c.a.reportf(diagnostics.ErrUnification, n.Token, "cannot compare %s with %s", lt, rt)
		return typesystem.BoolType
	}
	if ref, ok := c.requireImpl(iface, method, lt.Apply(s), n.Token); ok {
		c.a.res.Bindings[n] = ref
	}
	return typesystem.BoolType
}

// requireImpl resolves iface's method for t. A type parameter
// satisfies the interface through its declared constraints; the
// concrete binding is then chosen per specialization, so none is
// returned here.
func (c *checker) requireImpl(iface, method string, t typesystem.Type, tok token.Token) (symbols.FunctionRef, bool) {
	if name, isParam := typeVarName(t); isParam {
		if !c.paramConstrainedBy(name, iface) {
			c.a.reportf(diagnostics.ErrMissingImplementation, tok, "no implementation of %s for type parameter %s", iface, name)
		}
		return symbols.FunctionRef{}, false
	}
	ref, err := c.a.table.ResolveMethod(iface, t, method)
	if err != nil {
		c.a.report(diagnostics.ErrMissingImplementation, tok, err.Error())
		return symbols.FunctionRef{}, false
	}
	return ref, true
}

func typeVarName(t typesystem.Type) (string, bool) {
	switch v := t.(type) {
	case typesystem.TVar:
		return v.Name, true
	case typesystem.TConVar:
		return v.Name, true
	}
	return "", false
}

func (c *checker) paramConstrainedBy(name, iface string) bool {
	for _, p := range c.typeParams {
		if p.Name != name {
			continue
		}
		for _, i := range p.Interfaces {
			if i == iface {
				return true
			}
		}
	}
	return false
}

// checkMonadic desugars a monadic operator to its combinator and
// checks the application. The operators belong to interaction bodies;
// anywhere else they are rejected.
func (c *checker) checkMonadic(n *ast.InfixExpression, callee string, scope *symbols.SymbolTable) typesystem.Type {
	if !c.inInteraction {
		c.a.reportf(diagnostics.ErrMonadicOperatorOutsideInteraction, n.Token,
			"operator %s is only allowed inside an interaction", n.Operator)
	}
	sym, ok := scope.Find(callee)
	if !ok {
		c.a.reportf(diagnostics.ErrUndefined, n.Token, "operator %s requires %s in scope", n.Operator, callee)
		c.checkExpression(n.Left, scope)
		c.checkExpression(n.Right, scope)
		return c.a.freshVar()
	}
	c.a.res.Bindings[n] = symbols.FunctionRef{Name: callee, Builtin: sym.Builtin}
	return c.apply(n, n.Token, sym, callee, []ast.Expression{n.Left, n.Right}, nil, scope)
}
