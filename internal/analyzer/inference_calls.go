package analyzer

import (
	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/diagnostics"
	"github.com/kitelang/kite/internal/mono"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/token"
	"github.com/kitelang/kite/internal/typesystem"
)

func (c *checker) checkCall(n *ast.CallExpression, scope *symbols.SymbolTable) typesystem.Type {
	if id, ok := n.Function.(*ast.Identifier); ok {
		sym, found := scope.Find(id.Value)
		if !found {
			c.a.reportf(diagnostics.ErrUndefined, id.Token, "undefined name %s", id.Value)
			c.checkArgsOnly(n.Arguments, scope)
			return c.a.freshVar()
		}
		switch sym.Kind {
		case symbols.TypeSymbol, symbols.InterfaceSymbol:
			c.a.reportf(diagnostics.ErrUnification, id.Token, "%s is not a function", id.Value)
			c.checkArgsOnly(n.Arguments, scope)
			return c.a.freshVar()
		}
		if sym.Type != nil {
			c.a.res.Types[id] = sym.Type
		}
		return c.apply(n, n.Token, sym, id.Value, n.Arguments, n.TypeArgs, scope)
	}

	// Anonymous callee: a lambda, a function-typed field or element.
	ft := c.checkExpression(n.Function, scope)
	if len(n.TypeArgs) > 0 {
		c.a.reportf(diagnostics.ErrArityMismatch, n.Token, "type arguments require a named generic function")
	}
	fn, ok := ft.(typesystem.TFunc)
	if !ok {
		c.a.reportf(diagnostics.ErrUnification, n.Token, "calling a value of type %s, which is not a function", ft)
		c.checkArgsOnly(n.Arguments, scope)
		return c.a.freshVar()
	}
	return c.applyFuncType(n.Token, fn, n.Arguments, scope)
}

// checkArgsOnly types arguments for their own diagnostics when the
// callee failed to resolve.
func (c *checker) checkArgsOnly(args []ast.Expression, scope *symbols.SymbolTable) {
	for _, arg := range args {
		c.checkExpression(arg, scope)
	}
}

// apply checks a named symbol applied to arguments. For generics the
// type arguments come from explicit annotations or from unifying
// parameter types against argument types left to right; either way
// the resolved application is recorded as a dispatch site for the
// instantiation engine.
func (c *checker) apply(site ast.Node, tok token.Token, sym symbols.Symbol, name string,
	args []ast.Expression, typeArgs []ast.Type, scope *symbols.SymbolTable) typesystem.Type {

	fn, ok := sym.Type.(typesystem.TFunc)
	if !ok {
		if sym.Kind == symbols.ConstructorSymbol {
			return c.applyNullaryConstructor(site, tok, sym, name, args, typeArgs, scope)
		}
		c.a.reportf(diagnostics.ErrUnification, tok, "%s is not a function", name)
		c.checkArgsOnly(args, scope)
		return c.a.freshVar()
	}

	if !sym.IsGeneric() {
		if len(typeArgs) > 0 {
			c.a.reportf(diagnostics.ErrArityMismatch, tok, "%s takes no type arguments", name)
		}
		return c.applyFuncType(tok, fn, args, scope)
	}

	if fn.Interaction && !c.inInteraction {
		c.a.reportf(diagnostics.ErrMonadicOperatorOutsideInteraction, tok,
			"%s is an interaction and can only be called from an interaction", name)
	}

	if len(typeArgs) > 0 {
		return c.applyExplicit(site, tok, sym, name, fn, args, typeArgs, scope)
	}
	return c.applyInferred(site, tok, sym, name, fn, args, scope)
}

// applyNullaryConstructor checks a call form of a constructor that
// carries no payload, so its symbol type is the ADT itself. Without
// explicit type arguments it behaves like the bare identifier: the
// parameters stay open until an annotation or a unification in the
// same expression closes them.
func (c *checker) applyNullaryConstructor(site ast.Node, tok token.Token, sym symbols.Symbol, name string,
	args []ast.Expression, typeArgs []ast.Type, scope *symbols.SymbolTable) typesystem.Type {

	if len(args) > 0 {
		c.a.reportf(diagnostics.ErrArityMismatch, tok, "%s takes no arguments, got %d", name, len(args))
		c.checkArgsOnly(args, scope)
	}
	if !sym.IsGeneric() {
		if len(typeArgs) > 0 {
			c.a.reportf(diagnostics.ErrArityMismatch, tok, "%s takes no type arguments", name)
		}
		return sym.Type
	}
	if len(typeArgs) == 0 {
		return symbols.RenameTypeParams(sym.Type, sym.TypeParams, c.a.nextSuffix())
	}
	if len(typeArgs) != len(sym.TypeParams) {
		c.a.reportf(diagnostics.ErrArityMismatch, tok,
			"%s expects %d type arguments, got %d", name, len(sym.TypeParams), len(typeArgs))
		return symbols.RenameTypeParams(sym.Type, sym.TypeParams, c.a.nextSuffix())
	}

	targs := make([]typesystem.Type, len(typeArgs))
	subst := make(typesystem.Subst, len(typeArgs))
	for i, ta := range typeArgs {
		t := c.a.buildType(ta, scope)
		c.checkArgKind(sym.TypeParams[i], t, ta.GetToken())
		targs[i] = t
		subst[sym.TypeParams[i].Name] = t
	}
	c.recordDispatch(site, tok, name, targs)
	return sym.Type.Apply(subst)
}

// applyExplicit substitutes spelled-out type arguments into the
// signature before checking the value arguments against it.
func (c *checker) applyExplicit(site ast.Node, tok token.Token, sym symbols.Symbol, name string,
	fn typesystem.TFunc, args []ast.Expression, typeArgs []ast.Type, scope *symbols.SymbolTable) typesystem.Type {

	if len(typeArgs) != len(sym.TypeParams) {
		c.a.reportf(diagnostics.ErrArityMismatch, tok,
			"%s expects %d type arguments, got %d", name, len(sym.TypeParams), len(typeArgs))
		c.checkArgsOnly(args, scope)
		return c.a.freshVar()
	}

	targs := make([]typesystem.Type, len(typeArgs))
	subst := make(typesystem.Subst, len(typeArgs))
	for i, ta := range typeArgs {
		t := c.a.buildType(ta, scope)
		c.checkArgKind(sym.TypeParams[i], t, ta.GetToken())
		targs[i] = t
		subst[sym.TypeParams[i].Name] = t
	}
	inst, ok := fn.Apply(subst).(typesystem.TFunc)
	if !ok {
		return c.a.freshVar()
	}

	if len(args) != len(inst.Params) {
		c.a.reportf(diagnostics.ErrArityMismatch, tok,
			"%s expects %d arguments, got %d", name, len(inst.Params), len(args))
		c.checkArgsOnly(args, scope)
		return inst.ReturnType
	}
	for i, arg := range args {
		at := c.checkExpression(arg, scope)
		if _, err := typesystem.Unify(inst.Params[i], at); err != nil {
			c.a.reportf(diagnostics.ErrUnification, arg.GetToken(), "argument %d of %s: %s", i+1, name, err)
		}
	}

	c.recordDispatch(site, tok, name, targs)
	return inst.ReturnType
}

// applyInferred solves the type arguments by unifying each declared
// parameter type against the matching argument type, threading the
// accumulated substitution left to right.
func (c *checker) applyInferred(site ast.Node, tok token.Token, sym symbols.Symbol, name string,
	fn typesystem.TFunc, args []ast.Expression, scope *symbols.SymbolTable) typesystem.Type {

	suffix := c.a.nextSuffix()
	renamed, ok := symbols.RenameTypeParams(fn, sym.TypeParams, suffix).(typesystem.TFunc)
	if !ok {
		return c.a.freshVar()
	}

	if len(args) != len(renamed.Params) {
		c.a.reportf(diagnostics.ErrArityMismatch, tok,
			"%s expects %d arguments, got %d", name, len(renamed.Params), len(args))
		c.checkArgsOnly(args, scope)
		return c.a.freshVar()
	}

	acc := typesystem.Subst{}
	for i, arg := range args {
		at := c.checkExpression(arg, scope)
		s, err := typesystem.Unify(renamed.Params[i].Apply(acc), at)
		if err != nil {
			c.a.reportf(diagnostics.ErrUnification, arg.GetToken(), "argument %d of %s: %s", i+1, name, err)
			continue
		}
		acc = acc.Compose(s)
	}

	targs := make([]typesystem.Type, len(sym.TypeParams))
	complete := true
	for i, p := range sym.TypeParams {
		bound, found := acc[p.Name+"_"+suffix]
		if !found {
			c.a.reportf(diagnostics.ErrUnification, tok, "cannot infer type argument %s of %s", p.Name, name)
			complete = false
			continue
		}
		t := bound.Apply(acc)
		c.checkArgKind(p, t, tok)
		targs[i] = t
	}
	if complete {
		c.recordDispatch(site, tok, name, targs)
	}
	return renamed.ReturnType.Apply(acc)
}

// checkArgKind validates one solved type argument against its
// parameter's kind and interface constraints. Constraints on an open
// argument are deferred to the instantiation that closes it.
func (c *checker) checkArgKind(p symbols.ConstrainedParam, t typesystem.Type, tok token.Token) {
	if t == nil {
		return
	}
	want := p.ParamKind()
	got := t.Kind()
	// A bare head bound to a constructor parameter reports * from the
	// tree; its declared kind lives in the table.
	if adt, ok := t.(typesystem.TADT); ok && len(adt.Args) == 0 {
		if k, found := c.a.table.KindOf(adt.Name); found {
			got = k
		}
	}
	if err := typesystem.UnifyKinds(got, want); err != nil {
		c.a.reportf(diagnostics.ErrKindMismatch, tok, "%s has kind %s, %s requires kind %s", t, got, p.Name, want)
		return
	}
	for _, iface := range p.Interfaces {
		if name, isParam := typeVarName(t); isParam {
			if !c.paramConstrainedBy(name, iface) {
				c.a.reportf(diagnostics.ErrMissingImplementation, tok, "no implementation of %s for type parameter %s", iface, name)
			}
			continue
		}
		if !c.a.table.HasImplementation(iface, t) {
			c.a.reportf(diagnostics.ErrMissingImplementation, tok, "no implementation of %s for %s", iface, t)
		}
	}
}

// recordDispatch notes a generic application for the engine: the site
// itself for body rewriting, and a root when the arguments are
// already closed.
func (c *checker) recordDispatch(site ast.Node, tok token.Token, name string, targs []typesystem.Type) {
	for _, t := range targs {
		if t == nil {
			return
		}
	}
	c.a.res.GenericCalls[site] = mono.CallSite{Callee: name, Args: targs}
	c.a.rootCall(name, targs, tok)
}

// applyFuncType checks arguments against a non-generic function type.
// Free variables may still appear in the type (an unannotated lambda
// parameter, a failed resolution); unification threads them through
// so the return type reflects whatever the arguments pinned down.
func (c *checker) applyFuncType(tok token.Token, fn typesystem.TFunc, args []ast.Expression, scope *symbols.SymbolTable) typesystem.Type {
	if fn.Interaction && !c.inInteraction {
		c.a.reportf(diagnostics.ErrMonadicOperatorOutsideInteraction, tok,
			"calling an interaction from a pure context")
	}
	if len(args) != len(fn.Params) {
		c.a.reportf(diagnostics.ErrArityMismatch, tok, "expected %d arguments, got %d", len(fn.Params), len(args))
		c.checkArgsOnly(args, scope)
		return fn.ReturnType
	}
	acc := typesystem.Subst{}
	for i, arg := range args {
		at := c.checkExpression(arg, scope)
		s, err := typesystem.Unify(fn.Params[i].Apply(acc), at)
		if err != nil {
			c.a.reportf(diagnostics.ErrUnification, arg.GetToken(), "argument %d: %s", i+1, err)
			continue
		}
		acc = acc.Compose(s)
	}
	return fn.ReturnType.Apply(acc)
}
