package analyzer

import (
	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/diagnostics"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/typesystem"
)

// checkBlock checks a statement list in a fresh block scope and
// returns the block's value: the type of the final expression
// statement, or Unit when the block is empty or ends with a binding.
// A block ending in return yields the declared return type, since
// control never falls off its end.
func (c *checker) checkBlock(b *ast.BlockExpression, scope *symbols.SymbolTable) typesystem.Type {
	if b == nil {
		return typesystem.UnitType
	}
	inner := symbols.NewEnclosedSymbolTable(scope, symbols.ScopeBlock)
	var last typesystem.Type = typesystem.UnitType
	for _, stmt := range b.Statements {
		last = c.checkStatement(stmt, inner)
	}
	return last
}

func (c *checker) checkStatement(stmt ast.Statement, scope *symbols.SymbolTable) typesystem.Type {
	switch s := stmt.(type) {
	case nil:
		return typesystem.UnitType

	case *ast.LetStatement:
		c.checkLet(s, scope)
		return typesystem.UnitType

	case *ast.AssignStatement:
		c.checkAssign(s, scope)
		return typesystem.UnitType

	case *ast.ReturnStatement:
		var v typesystem.Type = typesystem.UnitType
		tok := s.Token
		if s.Value != nil {
			v = c.checkExpression(s.Value, scope)
			tok = s.Value.GetToken()
		}
		if _, err := typesystem.Unify(c.ret, v); err != nil {
			c.a.reportf(diagnostics.ErrUnification, tok, "returned value: %s", err)
		}
		return c.ret

	case *ast.ExpressionStatement:
		return c.checkExpression(s.Expression, scope)

	default:
		c.a.reportf(diagnostics.ErrUndefined, stmt.GetToken(), "unrecognized statement %q", stmt.TokenLiteral())
		return typesystem.UnitType
	}
}

func (c *checker) checkLet(s *ast.LetStatement, scope *symbols.SymbolTable) {
	v := c.checkExpression(s.Value, scope)
	if s.Name == nil {
		return
	}

	t := v
	if s.TypeAnnotation != nil {
		ann := c.a.buildType(s.TypeAnnotation, scope)
		if _, err := typesystem.Unify(ann, v); err != nil {
			tok := s.Token
			if s.Value != nil {
				tok = s.Value.GetToken()
			}
			c.a.reportf(diagnostics.ErrUnification, tok, "initializer of %s: %s", s.Name.Value, err)
		}
		// The annotation is the binding's type even when the
		// initializer disagrees; later uses check against the
		// declared intent.
		t = ann
		c.a.rootType(ann, s.Token)
	}

	if scope.IsDefinedLocally(s.Name.Value) {
		c.a.reportf(diagnostics.ErrRedefined, s.Name.Token, "%s is already defined in this scope", s.Name.Value)
		return
	}
	if s.Mutable {
		scope.Define(s.Name.Value, t)
	} else {
		scope.DefineConstant(s.Name.Value, t)
	}
	scope.SetDefinitionNode(s.Name.Value, s)
}

func (c *checker) checkAssign(s *ast.AssignStatement, scope *symbols.SymbolTable) {
	v := c.checkExpression(s.Value, scope)
	if s.Name == nil {
		return
	}

	sym, _, ok := scope.FindWithScope(s.Name.Value)
	if !ok {
		c.a.reportf(diagnostics.ErrUndefined, s.Name.Token, "undefined name %s", s.Name.Value)
		return
	}
	if sym.Kind != symbols.VariableSymbol || sym.IsConstant {
		c.a.reportf(diagnostics.ErrRedefined, s.Token, "cannot assign to %s: only var bindings may be reassigned", s.Name.Value)
		return
	}
	if _, err := typesystem.Unify(sym.Type, v); err != nil {
		tok := s.Token
		if s.Value != nil {
			tok = s.Value.GetToken()
		}
		c.a.reportf(diagnostics.ErrUnification, tok, "assignment to %s: %s", s.Name.Value, err)
	}
}
