package analyzer

import (
	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/diagnostics"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/typesystem"
)

// checker carries the state one function body is checked under: the
// declared return type, whether the body is an interaction, and the
// enclosing declaration's constrained type parameters.
//
// Checking is local: every expression's type is determined from its
// parts and the scope, with unification only inside a single
// expression. Nothing is solved globally afterwards.
type checker struct {
	a             *Analyzer
	ret           typesystem.Type
	inInteraction bool
	typeParams    []symbols.ConstrainedParam
}

// checkExpression types an expression and records the result for
// later phases. It never returns nil; failed expressions get a fresh
// variable so checking continues without cascading mismatches.
func (c *checker) checkExpression(e ast.Expression, scope *symbols.SymbolTable) typesystem.Type {
	t := c.exprType(e, scope)
	if t == nil {
		t = c.a.freshVar()
	}
	if e != nil {
		c.a.res.Types[e] = t
	}
	return t
}

func (c *checker) exprType(e ast.Expression, scope *symbols.SymbolTable) typesystem.Type {
	switch n := e.(type) {
	case nil:
		return c.a.freshVar()

	case *ast.IntegerLiteral:
		return typesystem.IntType
	case *ast.FloatLiteral:
		return typesystem.FloatType
	case *ast.BooleanLiteral:
		return typesystem.BoolType
	case *ast.StringLiteral:
		return typesystem.StringType
	case *ast.UnitLiteral:
		return typesystem.UnitType

	case *ast.Identifier:
		return c.checkIdentifier(n, scope)
	case *ast.ArrayLiteral:
		return c.checkArrayLiteral(n, scope)
	case *ast.RecordLiteral:
		return c.checkRecordLiteral(n, scope)
	case *ast.MemberExpression:
		return c.checkMember(n, scope)
	case *ast.IndexExpression:
		return c.checkIndex(n, scope)
	case *ast.PrefixExpression:
		return c.checkPrefix(n, scope)
	case *ast.InfixExpression:
		return c.checkInfix(n, scope)
	case *ast.CallExpression:
		return c.checkCall(n, scope)
	case *ast.BlockExpression:
		return c.checkBlock(n, scope)
	case *ast.IfExpression:
		return c.checkIf(n, scope)
	case *ast.MatchExpression:
		return c.checkMatch(n, scope)
	case *ast.FunctionLiteral:
		return c.checkFunctionLiteral(n, scope)
	case *ast.TypeTestExpression:
		return c.checkTypeTest(n, scope)

	default:
		c.a.reportf(diagnostics.ErrUndefined, e.GetToken(), "unrecognized expression %q", e.TokenLiteral())
		return c.a.freshVar()
	}
}

func (c *checker) checkIdentifier(n *ast.Identifier, scope *symbols.SymbolTable) typesystem.Type {
	sym, ok := scope.Find(n.Value)
	if !ok {
		c.a.reportf(diagnostics.ErrUndefined, n.Token, "undefined name %s", n.Value)
		return c.a.freshVar()
	}
	switch sym.Kind {
	case symbols.TypeSymbol:
		c.a.reportf(diagnostics.ErrUndefined, n.Token, "%s is a type, not a value", n.Value)
		return c.a.freshVar()
	case symbols.InterfaceSymbol:
		c.a.reportf(diagnostics.ErrUndefined, n.Token, "%s is an interface, not a value", n.Value)
		return c.a.freshVar()
	}
	if sym.Type == nil {
		return c.a.freshVar()
	}
	if sym.IsGeneric() {
		// A bare reference to a generic gets fresh parameters. With
		// no application to bind them they close only through an
		// annotation or a later unification in the same expression.
		return symbols.RenameTypeParams(sym.Type, sym.TypeParams, c.a.nextSuffix())
	}
	return sym.Type
}

func (c *checker) checkArrayLiteral(n *ast.ArrayLiteral, scope *symbols.SymbolTable) typesystem.Type {
	if len(n.Elements) == 0 {
		return typesystem.TArray{Elem: c.a.freshVar()}
	}
	elem := c.checkExpression(n.Elements[0], scope)
	for _, el := range n.Elements[1:] {
		t := c.checkExpression(el, scope)
		s, err := typesystem.Unify(elem, t)
		if err != nil {
			c.a.reportf(diagnostics.ErrUnification, el.GetToken(), "array elements must share one type: %s", err)
			continue
		}
		elem = elem.Apply(s)
	}
	return typesystem.TArray{Elem: elem}
}

func (c *checker) checkRecordLiteral(n *ast.RecordLiteral, scope *symbols.SymbolTable) typesystem.Type {
	fields := make([]typesystem.RecordField, 0, len(n.Fields))
	seen := make(map[string]bool, len(n.Fields))
	for _, f := range n.Fields {
		if f == nil || f.Name == nil {
			continue
		}
		t := c.checkExpression(f.Value, scope)
		if seen[f.Name.Value] {
			c.a.reportf(diagnostics.ErrRedefined, f.Name.Token, "duplicate record field %s", f.Name.Value)
			continue
		}
		seen[f.Name.Value] = true
		fields = append(fields, typesystem.RecordField{Name: f.Name.Value, Type: t})
	}
	return typesystem.TRecord{Fields: fields}
}

func (c *checker) checkMember(n *ast.MemberExpression, scope *symbols.SymbolTable) typesystem.Type {
	lt := c.checkExpression(n.Left, scope)
	if n.Member == nil {
		return c.a.freshVar()
	}
	if rec, ok := lt.(typesystem.TRecord); ok {
		if ft, ok := rec.Field(n.Member.Value); ok {
			return ft
		}
		c.a.reportf(diagnostics.ErrUndefined, n.Member.Token, "%s has no field %s", lt, n.Member.Value)
		return c.a.freshVar()
	}
	c.a.reportf(diagnostics.ErrUndefined, n.Member.Token, "%s has no fields", lt)
	return c.a.freshVar()
}

func (c *checker) checkIndex(n *ast.IndexExpression, scope *symbols.SymbolTable) typesystem.Type {
	lt := c.checkExpression(n.Left, scope)
	it := c.checkExpression(n.Index, scope)
	if _, err := typesystem.Unify(typesystem.IntType, it); err != nil {
		tok := n.Token
		if n.Index != nil {
			tok = n.Index.GetToken()
		}
		c.a.reportf(diagnostics.ErrUnification, tok, "array index must be Int, got %s", it)
	}

	if arr, ok := lt.(typesystem.TArray); ok {
		return arr.Elem
	}
	elem := c.a.freshVar()
	if _, err := typesystem.Unify(typesystem.TArray{Elem: elem}, lt); err != nil {
		c.a.reportf(diagnostics.ErrUnification, n.Token, "%s is not an array", lt)
		return c.a.freshVar()
	}
	return elem
}

func (c *checker) checkFunctionLiteral(n *ast.FunctionLiteral, scope *symbols.SymbolTable) typesystem.Type {
	inner := symbols.NewEnclosedSymbolTable(scope, symbols.ScopeFunction)
	params := make([]typesystem.Type, len(n.Parameters))
	seen := make(map[string]bool, len(n.Parameters))
	for i, p := range n.Parameters {
		var pt typesystem.Type = c.a.freshVar()
		if p != nil {
			pt = c.a.buildType(p.Type, inner)
			if p.Name != nil {
				if seen[p.Name.Value] {
					c.a.reportf(diagnostics.ErrRedefined, p.Name.Token, "parameter %s is already defined", p.Name.Value)
				} else {
					seen[p.Name.Value] = true
					inner.DefineConstant(p.Name.Value, pt)
					inner.SetDefinitionNode(p.Name.Value, p)
				}
			}
		}
		params[i] = pt
	}

	var declared typesystem.Type
	if n.ReturnType != nil {
		declared = c.a.buildType(n.ReturnType, inner)
	}

	// A lambda body is a pure function body even inside an
	// interaction: monadic operators are rejected there and the
	// resulting value is an ordinary function.
	sub := &checker{
		a:             c.a,
		ret:           declared,
		inInteraction: false,
		typeParams:    c.typeParams,
	}
	if sub.ret == nil {
		sub.ret = c.a.freshVar()
	}
	got := sub.checkBlock(n.Body, inner)

	ret := declared
	if declared != nil {
		if _, err := typesystem.Unify(declared, got); err != nil {
			tok := n.Token
			if tail := n.Body.TailExpression(); tail != nil {
				tok = tail.GetToken()
			}
			c.a.reportf(diagnostics.ErrUnification, tok, "lambda body: %s", err)
		}
	} else {
		ret = got
	}
	return typesystem.TFunc{Params: params, ReturnType: ret}
}

func (c *checker) checkTypeTest(n *ast.TypeTestExpression, scope *symbols.SymbolTable) typesystem.Type {
	et := c.checkExpression(n.Expression, scope)
	tt := c.a.buildType(n.Type, scope)
	if union, ok := et.(typesystem.TUnion); ok {
		if !union.Member(tt) {
			c.a.reportf(diagnostics.ErrUnification, n.Token, "%s is not a member of %s", tt, union)
		}
	}
	return typesystem.BoolType
}
