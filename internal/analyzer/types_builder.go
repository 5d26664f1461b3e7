package analyzer

import (
	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/diagnostics"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/token"
	"github.com/kitelang/kite/internal/typesystem"
)

// buildType resolves a syntactic type annotation against a scope.
// Failures are reported and a fresh variable comes back in their
// place, so checking continues without cascading mismatches.
func (a *Analyzer) buildType(t ast.Type, scope *symbols.SymbolTable) typesystem.Type {
	switch n := t.(type) {
	case nil:
		return a.freshVar()

	case *ast.NamedType:
		return a.buildNamed(n, scope)

	case *ast.ArrayType:
		return typesystem.TArray{Elem: a.buildType(n.Elem, scope)}

	case *ast.RecordType:
		fields := make([]typesystem.RecordField, 0, len(n.Fields))
		seen := make(map[string]bool, len(n.Fields))
		for _, f := range n.Fields {
			if seen[f.Name.Value] {
				a.reportf(diagnostics.ErrRedefined, f.Token, "duplicate record field %s", f.Name.Value)
				continue
			}
			seen[f.Name.Value] = true
			fields = append(fields, typesystem.RecordField{
				Name: f.Name.Value,
				Type: a.buildType(f.Type, scope),
			})
		}
		return typesystem.TRecord{Fields: fields}

	case *ast.FunctionType:
		params := make([]typesystem.Type, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = a.buildType(p, scope)
		}
		return typesystem.TFunc{
			Params:      params,
			ReturnType:  a.buildType(n.ReturnType, scope),
			Interaction: n.Interaction,
		}

	case *ast.UnionType:
		members := make([]typesystem.Type, len(n.Types))
		for i, m := range n.Types {
			members[i] = a.buildType(m, scope)
		}
		return typesystem.NormalizeUnion(members)

	default:
		a.reportf(diagnostics.ErrUndefined, t.GetToken(), "unrecognized type annotation %q", t.TokenLiteral())
		return a.freshVar()
	}
}

// buildNamed resolves a named reference: a primitive, a type
// parameter in scope, an ADT or an alias. Type parameters shadow unit
// types, the way any inner scope shadows an outer one.
func (a *Analyzer) buildNamed(n *ast.NamedType, scope *symbols.SymbolTable) typesystem.Type {
	name := n.Name.Value
	args := make([]typesystem.Type, len(n.Args))
	for i, arg := range n.Args {
		args[i] = a.buildType(arg, scope)
	}

	if sym, ok := scope.Find(name); ok && sym.Kind == symbols.TypeSymbol && sym.Type != nil {
		switch st := sym.Type.(type) {
		case typesystem.TPrim:
			if len(args) > 0 {
				a.reportf(diagnostics.ErrArityMismatch, n.Token, "%s takes no type arguments", name)
				return a.freshVar()
			}
			return st
		case typesystem.TVar:
			if len(args) > 0 {
				a.reportf(diagnostics.ErrKindMismatch, n.Token, "%s has kind *, it cannot be applied to type arguments", name)
				return a.freshVar()
			}
			return st
		case typesystem.TConVar:
			if want := typesystem.KindArity(st.Kind()); len(args) != want {
				a.reportf(diagnostics.ErrKindMismatch, n.Token,
					"%s has kind %s: expected %d type arguments, got %d", name, st.Kind(), want, len(args))
				return a.freshVar()
			}
			return a.kindChecked(typesystem.TApp{Head: st, Args: args}, n.Token)
		}
	}

	if info, ok := scope.FindADT(name); ok {
		if len(args) != len(info.Params) {
			a.reportf(diagnostics.ErrArityMismatch, n.Token,
				"%s expects %d type arguments, got %d", name, len(info.Params), len(args))
			return a.freshVar()
		}
		return a.kindChecked(typesystem.TADT{Name: name, Args: args}, n.Token)
	}

	if target, ok := scope.FindAlias(name); ok {
		if len(args) > 0 {
			a.reportf(diagnostics.ErrArityMismatch, n.Token, "%s takes no type arguments", name)
			return a.freshVar()
		}
		return target
	}

	a.reportf(diagnostics.ErrUndefined, n.Token, "undefined type %s", name)
	return a.freshVar()
}

// kindChecked validates an application's argument kinds against the
// head's declared kind.
func (a *Analyzer) kindChecked(t typesystem.Type, tok token.Token) typesystem.Type {
	if _, err := typesystem.KindCheck(t, a.table.KindOf); err != nil {
		a.report(diagnostics.ErrKindMismatch, tok, err.Error())
		return a.freshVar()
	}
	return t
}
