package analyzer

import (
	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/diagnostics"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/token"
	"github.com/kitelang/kite/internal/typesystem"
)

// declareFunction registers a function's signature during
// PassHeaders, before any body is checked, so functions may call each
// other regardless of declaration order.
func (a *Analyzer) declareFunction(fd *ast.FunctionDeclaration) {
	if fd == nil || fd.Name == nil {
		return
	}
	name := fd.Name.Value

	if a.table.IsDefinedLocally(name) {
		a.reportf(diagnostics.ErrRedefined, fd.Name.Token, "%s is already defined", name)
		a.skip[fd] = true
		return
	}

	a.checkParamConstraints(fd.TypeParams)

	// Parameter and return annotations resolve in a scope where the
	// declaration's own type parameters are visible.
	sig := symbols.NewEnclosedSymbolTable(a.table, symbols.ScopeFunction)
	a.declareTypeParams(sig, fd.TypeParams)

	params := make([]typesystem.Type, len(fd.Parameters))
	seen := make(map[string]bool, len(fd.Parameters))
	for i, p := range fd.Parameters {
		var pt typesystem.Type = a.freshVar()
		if p != nil {
			pt = a.buildType(p.Type, sig)
			if p.Name != nil {
				if seen[p.Name.Value] {
					a.reportf(diagnostics.ErrRedefined, p.Name.Token, "parameter %s is already defined", p.Name.Value)
				}
				seen[p.Name.Value] = true
			}
		}
		params[i] = pt
	}

	ret := typesystem.Type(typesystem.UnitType)
	if fd.ReturnType != nil {
		ret = a.buildType(fd.ReturnType, sig)
	}

	fnType := typesystem.TFunc{
		Params:      params,
		ReturnType:  ret,
		Interaction: fd.Interaction,
	}
	a.table.DefineSymbol(symbols.Symbol{
		Name:           name,
		Type:           fnType,
		Kind:           symbols.VariableSymbol,
		IsConstant:     true,
		TypeParams:     typeParamList(fd.TypeParams),
		DefinitionNode: fd,
	})

	// A non-generic signature that mentions a generic ADT applied to
	// concrete arguments demands that instantiation by itself.
	if len(fd.TypeParams) == 0 {
		a.rootType(fnType, fd.Name.Token)
	}
}

// checkFunction checks a function body against its declared
// signature during PassBodies.
func (a *Analyzer) checkFunction(fd *ast.FunctionDeclaration) {
	if fd == nil || fd.Name == nil || fd.Body == nil {
		return
	}
	sym, ok := a.table.Find(fd.Name.Value)
	if !ok {
		return
	}
	sig, ok := sym.Type.(typesystem.TFunc)
	if !ok {
		return
	}

	scope := symbols.NewEnclosedSymbolTable(a.table, symbols.ScopeFunction)
	a.declareTypeParams(scope, fd.TypeParams)
	for i, p := range fd.Parameters {
		if p == nil || p.Name == nil || i >= len(sig.Params) {
			continue
		}
		if scope.IsDefinedLocally(p.Name.Value) {
			continue // duplicate already reported in PassHeaders
		}
		scope.DefineConstant(p.Name.Value, sig.Params[i])
		scope.SetDefinitionNode(p.Name.Value, p)
	}

	c := &checker{
		a:             a,
		ret:           sig.ReturnType,
		inInteraction: fd.Interaction,
		typeParams:    sym.TypeParams,
	}
	got := c.checkBlock(fd.Body, scope)

	if _, err := typesystem.Unify(sig.ReturnType, got); err != nil {
		tok := fd.GetToken()
		if tail := fd.Body.TailExpression(); tail != nil {
			tok = tail.GetToken()
		}
		a.reportf(diagnostics.ErrUnification, tok, "body of %s: %s", fd.Name.Value, err)
	}
}

// rootCall records a fully concrete generic application as an engine
// root. Applications naming open types are skipped; the engine
// reaches their concrete forms through the dispatch sites of whatever
// instantiation closes them.
func (a *Analyzer) rootCall(callee string, args []typesystem.Type, tok token.Token) {
	for _, arg := range args {
		if arg == nil || len(arg.FreeTypeVariables()) > 0 {
			return
		}
	}
	a.roots = append(a.roots, instantiation{callee: callee, args: args, tok: tok})
}

// rootType records a closed type whose generic ADT instantiations
// must materialize even if no value expression constructs them.
func (a *Analyzer) rootType(t typesystem.Type, tok token.Token) {
	if t == nil || len(t.FreeTypeVariables()) > 0 {
		return
	}
	a.roots = append(a.roots, instantiation{typ: t, tok: tok})
}
