package export

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/google/uuid"

	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/mono"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/typesystem"
)

// Build collects the public surface of a checked unit from its symbol
// table: everything the unit declares, in declaration order, plus the
// specializations its check materialized. The table must come from a
// clean check of the same unit.
func Build(unit *ast.Unit, table *symbols.SymbolTable, specialized []*mono.SpecializedSymbol) (*File, error) {
	if unit == nil {
		return nil, fmt.Errorf("nil unit")
	}
	if table == nil {
		return nil, fmt.Errorf("nil symbol table")
	}

	f := &File{
		Schema:  SchemaVersion,
		Unit:    unit.Name,
		BuildID: uuid.New(),
	}
	seenImpl := map[string]bool{}

	for _, decl := range unit.Declarations {
		switch d := decl.(type) {
		case *ast.TypeDeclaration:
			if d.Name == nil {
				continue
			}
			if err := buildType(f, table, d, seenImpl); err != nil {
				return nil, err
			}

		case *ast.InterfaceDeclaration:
			if d.Name == nil {
				continue
			}
			info, ok := table.FindInterface(d.Name.Value)
			if !ok {
				return nil, fmt.Errorf("interface %s is not registered", d.Name.Value)
			}
			iface := Interface{Name: info.Name}
			param, err := encodeParam(info.Param)
			if err != nil {
				return nil, err
			}
			iface.Param = param
			for _, m := range info.Methods {
				sig, err := EncodeType(m.Type)
				if err != nil {
					return nil, fmt.Errorf("method %s.%s: %w", info.Name, m.Name, err)
				}
				iface.Methods = append(iface.Methods, Method{Name: m.Name, Sig: sig})
			}
			f.Interfaces = append(f.Interfaces, iface)

		case *ast.ImplementationDeclaration:
			if d.InterfaceName == nil || d.Target == nil || d.Target.Name == nil {
				continue
			}
			if err := buildImpl(f, table, d.InterfaceName.Value, d.Target.Name.Value, seenImpl); err != nil {
				return nil, err
			}

		case *ast.FunctionDeclaration:
			if d.Name == nil {
				continue
			}
			sym, ok := table.Find(d.Name.Value)
			if !ok {
				return nil, fmt.Errorf("function %s is not registered", d.Name.Value)
			}
			params, err := encodeParams(sym.TypeParams)
			if err != nil {
				return nil, fmt.Errorf("function %s: %w", sym.Name, err)
			}
			sig, err := EncodeType(sym.Type)
			if err != nil {
				return nil, fmt.Errorf("function %s: %w", sym.Name, err)
			}
			f.Functions = append(f.Functions, Function{Name: sym.Name, TypeParams: params, Sig: sig})
		}
	}

	for _, s := range specialized {
		targs, err := encodeTypes(s.TypeArgs)
		if err != nil {
			return nil, fmt.Errorf("specialization %s: %w", s.Name, err)
		}
		f.Specializations = append(f.Specializations, Specialization{
			ID:       s.ID,
			Name:     s.Name,
			Origin:   s.Origin,
			TypeArgs: targs,
		})
	}

	return f, nil
}

// buildType exports one type declaration: the alias or the ADT with
// its variants, plus any implementations derived for it.
func buildType(f *File, table *symbols.SymbolTable, d *ast.TypeDeclaration, seenImpl map[string]bool) error {
	name := d.Name.Value

	if d.IsAlias {
		target, ok := table.FindAlias(name)
		if !ok {
			return fmt.Errorf("alias %s is not registered", name)
		}
		e, err := EncodeType(target)
		if err != nil {
			return fmt.Errorf("alias %s: %w", name, err)
		}
		f.Aliases = append(f.Aliases, Alias{Name: name, Type: e})
	} else {
		info, ok := table.FindADT(name)
		if !ok {
			return fmt.Errorf("type %s is not registered", name)
		}
		adt := ADT{Name: info.Name, Derives: info.Derives}
		params, err := encodeParams(info.Params)
		if err != nil {
			return fmt.Errorf("type %s: %w", name, err)
		}
		adt.Params = params
		for _, v := range info.Variants {
			payload, err := encodeTypes(v.Payload)
			if err != nil {
				return fmt.Errorf("constructor %s: %w", v.Tag, err)
			}
			adt.Variants = append(adt.Variants, Variant{Tag: v.Tag, Payload: payload})
		}
		f.ADTs = append(f.ADTs, adt)
	}

	// Derived implementations are registered, not declared; carry
	// them so dependent units dispatch on them too.
	for _, derived := range d.Derives {
		if derived == nil {
			continue
		}
		if err := buildImpl(f, table, derived.Value, name, seenImpl); err != nil {
			return err
		}
	}
	return nil
}

// buildImpl exports one registered (interface, head) entry once.
func buildImpl(f *File, table *symbols.SymbolTable, iface, head string, seenImpl map[string]bool) error {
	key := iface + "$" + head
	if seenImpl[key] {
		return nil
	}
	for _, impl := range table.Implementations() {
		if impl.Interface != iface || impl.Head != head {
			continue
		}
		out := Implementation{Interface: impl.Interface, Head: impl.Head}
		for _, b := range impl.Bindings {
			out.Bindings = append(out.Bindings, Binding{
				Method:   b.Method,
				Function: b.Ref.Name,
				Builtin:  b.Ref.Builtin,
			})
		}
		f.Impls = append(f.Impls, out)
		seenImpl[key] = true
		return nil
	}
	return fmt.Errorf("implementation of %s for %s is not registered", iface, head)
}

// Materialize defines a loaded surface into a symbol table, the same
// way the declaration passes would have: ADTs with their constructor
// symbols, aliases, interfaces, implementations, then function
// signatures. Name collisions abort the import.
func Materialize(f *File, table *symbols.SymbolTable) error {
	if f == nil {
		return fmt.Errorf("nil export file")
	}
	if table == nil {
		return fmt.Errorf("nil symbol table")
	}

	for _, a := range f.ADTs {
		if err := materializeADT(a, table); err != nil {
			return fmt.Errorf("import %s: %w", f.Unit, err)
		}
	}
	for _, al := range f.Aliases {
		target, err := DecodeType(al.Type)
		if err != nil {
			return fmt.Errorf("import %s: alias %s: %w", f.Unit, al.Name, err)
		}
		if !table.DefineAlias(al.Name, target) {
			return fmt.Errorf("import %s: type %s is already defined", f.Unit, al.Name)
		}
	}
	for _, i := range f.Interfaces {
		info := &symbols.InterfaceInfo{Name: i.Name, Param: decodeParam(i.Param)}
		for _, m := range i.Methods {
			sig, err := DecodeType(m.Sig)
			if err != nil {
				return fmt.Errorf("import %s: method %s.%s: %w", f.Unit, i.Name, m.Name, err)
			}
			fn, ok := sig.(typesystem.TFunc)
			if !ok {
				return fmt.Errorf("import %s: method %s.%s is not a function", f.Unit, i.Name, m.Name)
			}
			info.Methods = append(info.Methods, symbols.MethodSig{Name: m.Name, Type: fn})
		}
		if !table.DefineInterface(info) {
			return fmt.Errorf("import %s: interface %s is already defined", f.Unit, i.Name)
		}
	}
	for _, impl := range f.Impls {
		reg := &symbols.Implementation{Interface: impl.Interface, Head: impl.Head}
		for _, b := range impl.Bindings {
			reg.Bindings = append(reg.Bindings, symbols.MethodBinding{
				Method: b.Method,
				Ref:    symbols.FunctionRef{Name: b.Function, Builtin: b.Builtin},
			})
		}
		if err := table.RegisterImplementation(reg); err != nil {
			return fmt.Errorf("import %s: %w", f.Unit, err)
		}
	}
	for _, fn := range f.Functions {
		if table.IsDefined(fn.Name) {
			return fmt.Errorf("import %s: %s is already defined", f.Unit, fn.Name)
		}
		sig, err := DecodeType(fn.Sig)
		if err != nil {
			return fmt.Errorf("import %s: function %s: %w", f.Unit, fn.Name, err)
		}
		table.DefineSymbol(symbols.Symbol{
			Name:       fn.Name,
			Type:       sig,
			Kind:       symbols.VariableSymbol,
			IsConstant: true,
			TypeParams: decodeParams(fn.TypeParams),
		})
	}
	return nil
}

func materializeADT(a ADT, table *symbols.SymbolTable) error {
	info := &symbols.ADTInfo{Name: a.Name, Params: decodeParams(a.Params), Derives: a.Derives}
	for _, v := range a.Variants {
		payload, err := decodeTypes(v.Payload)
		if err != nil {
			return fmt.Errorf("constructor %s: %w", v.Tag, err)
		}
		info.Variants = append(info.Variants, symbols.Variant{Tag: v.Tag, Payload: payload})
	}
	if !table.DefineADT(info) {
		return fmt.Errorf("type %s is already defined", a.Name)
	}

	result := constructorReturn(info)
	for _, v := range info.Variants {
		if table.IsDefined(v.Tag) {
			return fmt.Errorf("constructor %s is already defined", v.Tag)
		}
		ctorType := typesystem.Type(result)
		if len(v.Payload) > 0 {
			ctorType = typesystem.TFunc{Params: v.Payload, ReturnType: result}
		}
		table.DefineConstructor(v.Tag, ctorType, info.Name, info.Params)
	}
	return nil
}

// constructorReturn builds the type a materialized ADT's constructors
// return: the ADT applied to its own parameters.
func constructorReturn(info *symbols.ADTInfo) typesystem.TADT {
	args := make([]typesystem.Type, len(info.Params))
	for i, p := range info.Params {
		if typesystem.KindArity(p.ParamKind()) > 0 {
			args[i] = typesystem.TConVar{Name: p.Name, KindVal: p.ParamKind()}
		} else {
			args[i] = typesystem.TVar{Name: p.Name}
		}
	}
	return typesystem.TADT{Name: info.Name, Args: args}
}

func encodeParam(p symbols.ConstrainedParam) (TypeParam, error) {
	arity, err := safecast.Conv[uint8](typesystem.KindArity(p.ParamKind()))
	if err != nil {
		return TypeParam{}, fmt.Errorf("type parameter %s: %w", p.Name, err)
	}
	return TypeParam{Name: p.Name, KindArity: arity, Constraints: p.Interfaces}, nil
}

func encodeParams(ps []symbols.ConstrainedParam) ([]TypeParam, error) {
	if len(ps) == 0 {
		return nil, nil
	}
	out := make([]TypeParam, len(ps))
	for i, p := range ps {
		tp, err := encodeParam(p)
		if err != nil {
			return nil, err
		}
		out[i] = tp
	}
	return out, nil
}

func decodeParam(p TypeParam) symbols.ConstrainedParam {
	out := symbols.ConstrainedParam{Name: p.Name, Interfaces: p.Constraints}
	if p.KindArity > 0 {
		out.Kind = arityKind(p.KindArity)
	}
	return out
}

func decodeParams(ps []TypeParam) []symbols.ConstrainedParam {
	if len(ps) == 0 {
		return nil
	}
	out := make([]symbols.ConstrainedParam, len(ps))
	for i, p := range ps {
		out[i] = decodeParam(p)
	}
	return out
}
