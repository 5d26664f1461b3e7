// Package symbols implements the scoped symbol table plus the
// unit-global registries the checker resolves against: ADT
// declarations, record aliases, interfaces and their implementations.
//
// Scopes nest lexically. The unit-global registries live on the root
// table; enclosed scopes delegate to it, so a lookup from any scope
// sees one consistent view of the unit.
package symbols

import (
	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/typesystem"
)

type SymbolKind int

type ScopeType int

const (
	ScopePrelude ScopeType = iota // built-in symbols (types, functions, interfaces)
	ScopeGlobal                   // user code top-level
	ScopeFunction
	ScopeBlock
)

const (
	VariableSymbol SymbolKind = iota
	TypeSymbol
	ConstructorSymbol
	InterfaceSymbol
)

// ConstrainedParam is one declared type parameter: its name, kind and
// the interfaces any argument must implement. A nil Kind means *.
type ConstrainedParam struct {
	Name       string
	Kind       typesystem.Kind
	Interfaces []string
}

// ParamKind returns the declared kind, defaulting to *.
func (p ConstrainedParam) ParamKind() typesystem.Kind {
	if p.Kind == nil {
		return typesystem.Star
	}
	return p.Kind
}

type Symbol struct {
	Name           string
	Type           typesystem.Type
	Kind           SymbolKind
	IsConstant     bool               // true for 'let' bindings; 'var' locals may be reassigned
	TypeParams     []ConstrainedParam // non-empty for generic functions and constructors
	ADT            string             // owning type name, for ConstructorSymbol
	DefinitionNode ast.Node           // the AST node where this symbol was defined
	Builtin        bool               // defined by the prelude, not user code
}

// IsGeneric reports whether the symbol has type parameters of its own.
func (s Symbol) IsGeneric() bool {
	return len(s.TypeParams) > 0
}

// RenameTypeParams renames a declaration's type parameters with a
// fresh suffix, preserving each parameter's variable sort, to avoid
// collisions when unifying against a caller's types.
func RenameTypeParams(t typesystem.Type, params []ConstrainedParam, suffix string) typesystem.Type {
	subst := make(typesystem.Subst)
	for _, p := range params {
		fresh := p.Name + "_" + suffix
		if typesystem.KindArity(p.ParamKind()) > 0 {
			subst[p.Name] = typesystem.TConVar{Name: fresh, KindVal: p.ParamKind()}
		} else {
			subst[p.Name] = typesystem.TVar{Name: fresh}
		}
	}
	return t.Apply(subst)
}
