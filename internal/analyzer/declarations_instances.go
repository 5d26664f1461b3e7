package analyzer

import (
	"errors"

	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/diagnostics"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/token"
	"github.com/kitelang/kite/internal/typesystem"
)

// registerDerived synthesizes the implementations a declaration's
// derives clause asks for. Derived entries go through the same
// registry as user implementations, so a later explicit
// implementation of the same pair is rejected as a duplicate.
func (a *Analyzer) registerDerived(td *ast.TypeDeclaration) {
	if td == nil || td.Name == nil {
		return
	}
	head := td.Name.Value

	for _, d := range td.Derives {
		if d == nil {
			continue
		}
		if _, ok := a.table.FindInterface(d.Value); !ok {
			a.reportf(diagnostics.ErrUndefined, d.Token, "undefined interface %s", d.Value)
			continue
		}
		method, ok := derivable[d.Value]
		if !ok {
			a.reportf(diagnostics.ErrMissingImplementation, d.Token,
				"cannot derive %s for %s", d.Value, head)
			continue
		}
		err := a.table.RegisterImplementation(&symbols.Implementation{
			Interface: d.Value,
			Head:      head,
			Bindings: []symbols.MethodBinding{{
				Method: method,
				Ref:    symbols.FunctionRef{Name: method + "$" + head, Builtin: true},
			}},
		})
		var dup *symbols.DuplicateImplementationError
		if errors.As(err, &dup) {
			a.report(diagnostics.ErrDuplicateImplementation, d.Token, dup.Error())
		}
	}
}

// declareImplementation validates and registers one implementation
// declaration: the interface must exist, the target head must be a
// known type of the right kind, and every bound function must match
// the method's signature with the interface parameter replaced by the
// target.
func (a *Analyzer) declareImplementation(impl *ast.ImplementationDeclaration) {
	if impl == nil || impl.InterfaceName == nil || impl.Target == nil || impl.Target.Name == nil {
		return
	}
	iface := impl.InterfaceName.Value
	info, ok := a.table.FindInterface(iface)
	if !ok {
		a.reportf(diagnostics.ErrUndefined, impl.InterfaceName.Token, "undefined interface %s", iface)
		return
	}

	head := impl.Target.Name.Value
	if len(impl.Target.Args) > 0 {
		a.reportf(diagnostics.ErrArityMismatch, impl.Target.Token,
			"implementation target %s takes no type arguments; implementations cover every instantiation of the head", head)
		return
	}

	subst, ok := a.implTarget(info, head, impl.Target.Token)
	if !ok {
		return
	}

	var bindings []symbols.MethodBinding
	bound := make(map[string]bool, len(impl.Bindings))
	for _, b := range impl.Bindings {
		if b == nil || b.Method == nil || b.Function == nil {
			continue
		}
		method := b.Method.Value
		sig, ok := info.Method(method)
		if !ok {
			a.reportf(diagnostics.ErrUndefined, b.Method.Token, "%s has no method %s", iface, method)
			continue
		}
		if bound[method] {
			a.reportf(diagnostics.ErrRedefined, b.Method.Token,
				"method %s is bound twice in this implementation", method)
			continue
		}
		bound[method] = true

		fnName := b.Function.Value
		sym, ok := a.table.Find(fnName)
		if !ok {
			a.reportf(diagnostics.ErrUndefined, b.Function.Token, "undefined name %s", fnName)
			continue
		}

		expected := a.renameFreeVars(sig.Type.Apply(subst))
		actual := sym.Type
		if sym.IsGeneric() {
			actual = symbols.RenameTypeParams(actual, sym.TypeParams, a.nextSuffix())
		}
		if _, err := typesystem.Unify(expected, actual); err != nil {
			a.reportf(diagnostics.ErrUnification, b.Function.Token,
				"method %s of %s for %s: %s", method, iface, head, err)
			continue
		}
		bindings = append(bindings, symbols.MethodBinding{
			Method: method,
			Ref:    symbols.FunctionRef{Name: fnName, Builtin: sym.Builtin},
		})
	}

	for _, m := range info.Methods {
		if !bound[m.Name] {
			a.reportf(diagnostics.ErrMissingImplementation, impl.GetToken(),
				"implementation of %s for %s is missing method %s", iface, head, m.Name)
		}
	}

	err := a.table.RegisterImplementation(&symbols.Implementation{
		Interface: iface,
		Head:      head,
		Bindings:  bindings,
	})
	var dup *symbols.DuplicateImplementationError
	if errors.As(err, &dup) {
		a.report(diagnostics.ErrDuplicateImplementation, impl.Target.Token, dup.Error())
	}
}

// implTarget resolves an implementation's target head and builds the
// substitution that replaces the interface's type parameter with it.
// A star interface gets a representative instantiation (fresh
// arguments for a generic head); a higher-kinded interface binds its
// constructor variable to the bare head, which must be a declared
// type constructor of the interface's kind.
func (a *Analyzer) implTarget(info *symbols.InterfaceInfo, head string, tok token.Token) (typesystem.Subst, bool) {
	paramKind := info.Param.ParamKind()
	higher := typesystem.KindArity(paramKind) > 0

	if adt, ok := a.table.FindADT(head); ok {
		if higher {
			if err := typesystem.UnifyKinds(adt.Kind, paramKind); err != nil {
				a.reportf(diagnostics.ErrKindMismatch, tok,
					"%s has kind %s; %s requires %s", head, adt.Kind, info.Name, paramKind)
				return nil, false
			}
			return typesystem.Subst{info.Param.Name: typesystem.TADT{Name: head}}, true
		}
		args := make([]typesystem.Type, len(adt.Params))
		for i := range adt.Params {
			args[i] = a.freshVar()
		}
		return typesystem.Subst{info.Param.Name: typesystem.TADT{Name: head, Args: args}}, true
	}

	var rep typesystem.Type
	if sym, ok := a.table.Find(head); ok && sym.Kind == symbols.TypeSymbol {
		if prim, isPrim := sym.Type.(typesystem.TPrim); isPrim {
			rep = prim
		}
	}
	if rep == nil && head == "Array" {
		rep = typesystem.TArray{Elem: a.freshVar()}
	}
	if rep == nil {
		if target, ok := a.table.FindAlias(head); ok {
			rep = target
		}
	}
	if rep == nil {
		a.reportf(diagnostics.ErrUndefined, tok, "undefined type %s", head)
		return nil, false
	}
	if higher {
		a.reportf(diagnostics.ErrKindMismatch, tok,
			"%s has kind *; %s requires a declared type constructor of kind %s", head, info.Name, paramKind)
		return nil, false
	}
	return typesystem.Subst{info.Param.Name: rep}, true
}

// renameFreeVars renames a method signature's remaining free
// variables (its own universals) with a fresh suffix so they cannot
// capture the bound function's parameters during unification.
func (a *Analyzer) renameFreeVars(t typesystem.Type) typesystem.Type {
	free := t.FreeTypeVariables()
	if len(free) == 0 {
		return t
	}
	suffix := a.nextSuffix()
	subst := make(typesystem.Subst, len(free))
	for _, name := range free {
		subst[name] = typesystem.TVar{Name: name + "_" + suffix}
	}
	return t.Apply(subst)
}
