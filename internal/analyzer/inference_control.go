package analyzer

import (
	"strings"

	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/diagnostics"
	"github.com/kitelang/kite/internal/patterns"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/typesystem"
)

func (c *checker) checkIf(n *ast.IfExpression, scope *symbols.SymbolTable) typesystem.Type {
	cond := c.checkExpression(n.Condition, scope)
	if _, err := typesystem.Unify(typesystem.BoolType, cond); err != nil {
		tok := n.Token
		if n.Condition != nil {
			tok = n.Condition.GetToken()
		}
		c.a.reportf(diagnostics.ErrUnification, tok, "if condition must be Bool, got %s", cond)
	}

	// An 'is' test on a union-typed name narrows that name inside the
	// consequence.
	consScope := scope
	if name, member, ok := c.narrowing(n.Condition, scope); ok {
		consScope = symbols.NewEnclosedSymbolTable(scope, symbols.ScopeBlock)
		sym, _ := scope.Find(name)
		sym.Type = member
		consScope.DefineSymbol(sym)
	}
	consType := c.checkBlock(n.Consequence, consScope)

	if n.Alternative == nil {
		return typesystem.UnitType
	}
	altType := c.checkBlock(n.Alternative, scope)
	return joinBranches(consType, altType)
}

// narrowing recognizes the condition shape `x is T` where x is a
// union-typed binding, and returns the name with the member type to
// narrow it to.
func (c *checker) narrowing(cond ast.Expression, scope *symbols.SymbolTable) (string, typesystem.Type, bool) {
	tt, ok := cond.(*ast.TypeTestExpression)
	if !ok {
		return "", nil, false
	}
	id, ok := tt.Expression.(*ast.Identifier)
	if !ok {
		return "", nil, false
	}
	sym, found := scope.Find(id.Value)
	if !found || sym.Kind != symbols.VariableSymbol {
		return "", nil, false
	}
	if _, isUnion := sym.Type.(typesystem.TUnion); !isUnion {
		return "", nil, false
	}
	return id.Value, c.a.buildType(tt.Type, scope), true
}

// joinBranches folds two branch types into the expression's type.
// Branches that unify share that type; otherwise they meet at their
// union.
func joinBranches(a, b typesystem.Type) typesystem.Type {
	s, err := typesystem.Unify(a, b)
	if err == nil {
		return a.Apply(s)
	}
	return typesystem.NormalizeUnion([]typesystem.Type{a, b})
}

func (c *checker) checkMatch(n *ast.MatchExpression, scope *symbols.SymbolTable) typesystem.Type {
	st := c.checkExpression(n.Expression, scope)

	// When the scrutinee is a plain union-typed name, each arm that
	// pins down one member narrows the name inside that arm.
	scrutName := ""
	var scrutSym symbols.Symbol
	if id, ok := n.Expression.(*ast.Identifier); ok {
		if sym, found := scope.Find(id.Value); found && sym.Kind == symbols.VariableSymbol {
			scrutName = id.Value
			scrutSym = sym
		}
	}

	var result typesystem.Type
	for _, arm := range n.Arms {
		if arm == nil {
			continue
		}
		armScope := symbols.NewEnclosedSymbolTable(scope, symbols.ScopeBlock)
		armType := st
		if union, ok := st.(typesystem.TUnion); ok {
			if member, ok := c.unionMember(union, arm.Pattern); ok {
				armType = member
				if scrutName != "" {
					narrowed := scrutSym
					narrowed.Type = member
					armScope.DefineSymbol(narrowed)
				}
			}
		}
		c.bindPattern(arm.Pattern, armType, armScope)
		if arm.Guard != nil {
			gt := c.checkExpression(arm.Guard, armScope)
			if _, err := typesystem.Unify(typesystem.BoolType, gt); err != nil {
				c.a.reportf(diagnostics.ErrUnification, arm.Guard.GetToken(), "match guard must be Bool, got %s", gt)
			}
		}
		at := c.checkExpression(arm.Expression, armScope)
		if result == nil {
			result = at
		} else {
			result = joinBranches(result, at)
		}
	}
	if result == nil {
		result = typesystem.UnitType
	}

	analysis := patterns.Analyze(st, n.Arms, c.a.table)
	c.a.res.Decisions[n] = analysis
	if len(analysis.Missing) > 0 {
		d := c.a.reportf(diagnostics.ErrMissingPatterns, n.Token,
			"match is not exhaustive; missing: %s", strings.Join(analysis.Missing, ", "))
		d.Tags = analysis.Missing
	}
	for _, idx := range analysis.Unreachable {
		tok := n.Token
		if idx < len(n.Arms) && n.Arms[idx] != nil && n.Arms[idx].Pattern != nil {
			tok = n.Arms[idx].Pattern.GetToken()
		}
		d := c.a.report(diagnostics.ErrUnreachablePattern, tok, "unreachable match arm")
		d.Arm = idx
	}
	return result
}

// unionMember picks the union member a pattern's shape selects, so
// the arm checks against that member instead of the whole union.
func (c *checker) unionMember(union typesystem.TUnion, p ast.Pattern) (typesystem.Type, bool) {
	switch pat := p.(type) {
	case *ast.ConstructorPattern:
		if pat.Name == nil {
			return nil, false
		}
		for _, m := range union.Types {
			adt, ok := m.(typesystem.TADT)
			if !ok {
				continue
			}
			info, found := c.a.table.FindADT(adt.Name)
			if !found {
				continue
			}
			if _, has := info.Variant(pat.Name.Value); has {
				return m, true
			}
		}
	case *ast.LiteralPattern:
		lt := literalType(pat.Value)
		if lt == nil {
			return nil, false
		}
		for _, m := range union.Types {
			if typesystem.Identical(m, lt) {
				return m, true
			}
		}
	case *ast.RecordPattern:
		for _, m := range union.Types {
			if _, ok := m.(typesystem.TRecord); ok {
				return m, true
			}
		}
	}
	return nil, false
}

func literalType(e ast.Expression) typesystem.Type {
	switch e.(type) {
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
	}
	return nil
}

// bindPattern checks a pattern against the type it matches and
// defines its bindings in the arm's scope.
func (c *checker) bindPattern(p ast.Pattern, t typesystem.Type, scope *symbols.SymbolTable) {
	switch pat := p.(type) {
	case nil, *ast.WildcardPattern:
		return

	case *ast.IdentifierPattern:
		if scope.IsDefinedLocally(pat.Value) {
			c.a.reportf(diagnostics.ErrRedefined, pat.Token, "%s is bound twice in this pattern", pat.Value)
			return
		}
		scope.DefineConstant(pat.Value, t)

	case *ast.LiteralPattern:
		lt := literalType(pat.Value)
		if lt == nil {
			return
		}
		if _, err := typesystem.Unify(lt, t); err != nil {
			c.a.reportf(diagnostics.ErrUnification, pat.Token, "pattern %s cannot match %s", pat.Token.Lexeme, t)
		}

	case *ast.ConstructorPattern:
		c.bindConstructorPattern(pat, t, scope)

	case *ast.RecordPattern:
		rec, ok := t.(typesystem.TRecord)
		if !ok {
			c.a.reportf(diagnostics.ErrUnification, pat.Token, "record pattern cannot match %s", t)
			c.bindFieldsFresh(pat, scope)
			return
		}
		for _, f := range pat.Fields {
			if f == nil || f.Name == nil {
				continue
			}
			ft, has := rec.Field(f.Name.Value)
			if !has {
				c.a.reportf(diagnostics.ErrUndefined, f.Name.Token, "%s has no field %s", t, f.Name.Value)
				c.bindPattern(f.Pattern, c.a.freshVar(), scope)
				continue
			}
			c.bindPattern(f.Pattern, ft, scope)
		}
	}
}

func (c *checker) bindConstructorPattern(pat *ast.ConstructorPattern, t typesystem.Type, scope *symbols.SymbolTable) {
	if pat.Name == nil {
		return
	}
	tag := pat.Name.Value

	adt, ok := t.(typesystem.TADT)
	if !ok {
		c.a.reportf(diagnostics.ErrUnification, pat.Token, "pattern %s cannot match %s", tag, t)
		c.bindElementsFresh(pat, scope)
		return
	}
	info, found := c.a.table.FindADT(adt.Name)
	if !found {
		c.bindElementsFresh(pat, scope)
		return
	}
	variant, has := info.Variant(tag)
	if !has {
		if sym, ok := scope.Find(tag); ok && sym.Kind == symbols.ConstructorSymbol {
			c.a.reportf(diagnostics.ErrUnification, pat.Token, "%s constructs %s, not %s", tag, sym.ADT, adt.Name)
		} else {
			c.a.reportf(diagnostics.ErrUndefined, pat.Token, "undefined constructor %s", tag)
		}
		c.bindElementsFresh(pat, scope)
		return
	}
	if len(pat.Elements) != len(variant.Payload) {
		c.a.reportf(diagnostics.ErrArityMismatch, pat.Token,
			"%s carries %d values, pattern names %d", tag, len(variant.Payload), len(pat.Elements))
		c.bindElementsFresh(pat, scope)
		return
	}

	sub, err := info.ParamSubst(adt.Args)
	if err != nil {
		c.a.report(diagnostics.ErrArityMismatch, pat.Token, err.Error())
		c.bindElementsFresh(pat, scope)
		return
	}
	for i, el := range pat.Elements {
		c.bindPattern(el, variant.Payload[i].Apply(sub), scope)
	}
}

func (c *checker) bindElementsFresh(pat *ast.ConstructorPattern, scope *symbols.SymbolTable) {
	for _, el := range pat.Elements {
		c.bindPattern(el, c.a.freshVar(), scope)
	}
}

func (c *checker) bindFieldsFresh(pat *ast.RecordPattern, scope *symbols.SymbolTable) {
	for _, f := range pat.Fields {
		if f == nil {
			continue
		}
		c.bindPattern(f.Pattern, c.a.freshVar(), scope)
	}
}
