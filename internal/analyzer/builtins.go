package analyzer

import (
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/typesystem"
)

// Prelude interface methods referenced by operator desugaring.
const (
	eqInterface       = "Eq"
	eqMethod          = "eq"
	ordInterface      = "Ord"
	ordMethod         = "compare"
	toStringInterface = "ToString"
	toStringMethod    = "toString"
	functorInterface  = "Functor"
	functorMethod     = "map"
)

// derivable lists the interfaces a 'derives' clause may name, with
// the single method each one carries.
var derivable = map[string]string{
	eqInterface:       eqMethod,
	toStringInterface: toStringMethod,
}

// RegisterPrelude installs the built-in types, interfaces and
// implementations into the table. Registration is idempotent, so a
// table shared across units hosts exactly one prelude.
//
// User declarations go through the same registries afterwards; a user
// implementation colliding with a prelude one is rejected like any
// other duplicate.
func RegisterPrelude(table *symbols.SymbolTable) {
	if _, ok := table.FindInterface(eqInterface); ok {
		return
	}

	prims := []typesystem.TPrim{
		typesystem.IntType,
		typesystem.FloatType,
		typesystem.BoolType,
		typesystem.StringType,
		typesystem.UnitType,
	}
	for _, p := range prims {
		table.DefineSymbol(symbols.Symbol{
			Name:    p.Name,
			Type:    p,
			Kind:    symbols.TypeSymbol,
			Builtin: true,
		})
	}

	t := typesystem.TVar{Name: "T"}
	a := typesystem.TVar{Name: "A"}
	b := typesystem.TVar{Name: "B"}
	f := typesystem.TConVar{Name: "F", KindVal: typesystem.MakeArrow(typesystem.Star, typesystem.Star)}

	table.DefineInterface(&symbols.InterfaceInfo{
		Name:  eqInterface,
		Param: symbols.ConstrainedParam{Name: "T"},
		Methods: []symbols.MethodSig{{
			Name: eqMethod,
			Type: typesystem.TFunc{Params: []typesystem.Type{t, t}, ReturnType: typesystem.BoolType},
		}},
	})
	table.DefineInterface(&symbols.InterfaceInfo{
		Name:  ordInterface,
		Param: symbols.ConstrainedParam{Name: "T"},
		Methods: []symbols.MethodSig{{
			Name: ordMethod,
			Type: typesystem.TFunc{Params: []typesystem.Type{t, t}, ReturnType: typesystem.IntType},
		}},
	})
	table.DefineInterface(&symbols.InterfaceInfo{
		Name:  toStringInterface,
		Param: symbols.ConstrainedParam{Name: "T"},
		Methods: []symbols.MethodSig{{
			Name: toStringMethod,
			Type: typesystem.TFunc{Params: []typesystem.Type{t}, ReturnType: typesystem.StringType},
		}},
	})
	table.DefineInterface(&symbols.InterfaceInfo{
		Name:  functorInterface,
		Param: symbols.ConstrainedParam{Name: "F", Kind: f.KindVal},
		Methods: []symbols.MethodSig{{
			Name: functorMethod,
			Type: typesystem.TFunc{
				Params: []typesystem.Type{
					typesystem.TApp{Head: f, Args: []typesystem.Type{a}},
					typesystem.TFunc{Params: []typesystem.Type{a}, ReturnType: b},
				},
				ReturnType: typesystem.TApp{Head: f, Args: []typesystem.Type{b}},
			},
		}},
	})

	valuePrims := prims[:4] // Unit carries no comparisons or rendering
	for _, p := range valuePrims {
		registerBuiltinImpl(table, eqInterface, eqMethod, p.Name)
		registerBuiltinImpl(table, ordInterface, ordMethod, p.Name)
		registerBuiltinImpl(table, toStringInterface, toStringMethod, p.Name)
	}

	table.DefineSymbol(symbols.Symbol{
		Name: "print",
		Type: typesystem.TFunc{
			Params:      []typesystem.Type{typesystem.StringType},
			ReturnType:  typesystem.UnitType,
			Interaction: true,
		},
		Kind:       symbols.VariableSymbol,
		IsConstant: true,
		Builtin:    true,
	})
	table.DefineSymbol(symbols.Symbol{
		Name: "len",
		Type: typesystem.TFunc{
			Params:     []typesystem.Type{typesystem.TArray{Elem: t}},
			ReturnType: typesystem.IntType,
		},
		Kind:       symbols.VariableSymbol,
		IsConstant: true,
		TypeParams: []symbols.ConstrainedParam{{Name: "T"}},
		Builtin:    true,
	})
}

func registerBuiltinImpl(table *symbols.SymbolTable, iface, method, head string) {
	table.RegisterImplementation(&symbols.Implementation{
		Interface: iface,
		Head:      head,
		Bindings: []symbols.MethodBinding{{
			Method: method,
			Ref:    symbols.FunctionRef{Name: method + "$" + head, Builtin: true},
		}},
	})
}
