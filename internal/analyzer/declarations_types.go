package analyzer

import (
	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/diagnostics"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/typesystem"
)

// registerADTShell registers an ADT's name, parameters and kind before
// any payload type is built, so recursive and mutually recursive
// declarations resolve no matter how the unit orders them. Variants
// are filled in by fillType once every shell exists.
func (a *Analyzer) registerADTShell(td *ast.TypeDeclaration) {
	if td == nil || td.Name == nil {
		return
	}
	name := td.Name.Value

	if sym, ok := a.table.Find(name); ok && sym.Kind == symbols.TypeSymbol {
		a.reportf(diagnostics.ErrRedefined, td.Name.Token, "type %s is already defined", name)
		a.skip[td] = true
		return
	}

	info := &symbols.ADTInfo{
		Name:   name,
		Params: typeParamList(td.TypeParams),
	}
	for _, d := range td.Derives {
		if d != nil {
			info.Derives = append(info.Derives, d.Value)
		}
	}
	if !a.table.DefineADT(info) {
		a.reportf(diagnostics.ErrRedefined, td.Name.Token, "type %s is already defined", name)
		a.skip[td] = true
	}
}

// declareInterface registers an interface declaration: its single
// (possibly higher-kinded) type parameter and its method signatures.
func (a *Analyzer) declareInterface(id *ast.InterfaceDeclaration) {
	if id == nil || id.Name == nil {
		return
	}
	name := id.Name.Value

	if a.table.IsDefined(name) {
		a.reportf(diagnostics.ErrRedefined, id.Name.Token, "%s is already defined", name)
		a.skip[id] = true
		return
	}

	info := &symbols.InterfaceInfo{Name: name}
	scope := symbols.NewEnclosedSymbolTable(a.table, symbols.ScopeFunction)
	if id.TypeParam != nil {
		info.Param = typeParam(id.TypeParam)
		a.declareTypeParams(scope, []*ast.TypeParam{id.TypeParam})
	}

	for _, ms := range id.Signatures {
		if ms == nil || ms.Name == nil || ms.Type == nil {
			continue
		}
		if _, dup := info.Method(ms.Name.Value); dup {
			a.reportf(diagnostics.ErrRedefined, ms.Name.Token,
				"%s already declares method %s", name, ms.Name.Value)
			continue
		}
		msScope := symbols.NewEnclosedSymbolTable(scope, symbols.ScopeFunction)
		a.declareTypeParams(msScope, ms.TypeParams)
		sig, ok := a.buildType(ms.Type, msScope).(typesystem.TFunc)
		if !ok {
			continue
		}
		info.Methods = append(info.Methods, symbols.MethodSig{Name: ms.Name.Value, Type: sig})
	}

	a.table.DefineInterface(info)
	a.table.SetDefinitionNode(name, id)
}

// fillType completes a type declaration registered by
// registerADTShell: it materializes the alias target or the variant
// payloads and defines the constructor symbols. Interfaces are all
// registered by the time this runs, so parameter constraints are
// validated here too.
func (a *Analyzer) fillType(td *ast.TypeDeclaration) {
	if td == nil || td.Name == nil || a.skip[td] {
		return
	}
	name := td.Name.Value

	if td.IsAlias {
		if len(td.TypeParams) > 0 {
			a.reportf(diagnostics.ErrArityMismatch, td.Name.Token,
				"alias %s takes no type parameters", name)
			a.skip[td] = true
			return
		}
		if sym, ok := a.table.Find(name); ok && sym.Kind == symbols.TypeSymbol {
			a.reportf(diagnostics.ErrRedefined, td.Name.Token, "type %s is already defined", name)
			a.skip[td] = true
			return
		}
		target := a.buildType(td.TargetType, a.table)
		if !a.table.DefineAlias(name, target) {
			a.reportf(diagnostics.ErrRedefined, td.Name.Token, "type %s is already defined", name)
			a.skip[td] = true
		}
		return
	}

	info, ok := a.table.FindADT(name)
	if !ok {
		return // shell registration failed and was reported
	}
	a.checkParamConstraints(td.TypeParams)

	scope := symbols.NewEnclosedSymbolTable(a.table, symbols.ScopeFunction)
	a.declareTypeParams(scope, td.TypeParams)

	result := adtReference(info)
	for _, c := range td.Constructors {
		if c == nil || c.Name == nil {
			continue
		}
		tag := c.Name.Value
		if _, dup := info.Variant(tag); dup {
			a.reportf(diagnostics.ErrRedefined, c.Name.Token,
				"%s already has a constructor %s", name, tag)
			continue
		}
		if a.table.IsDefined(tag) {
			a.reportf(diagnostics.ErrRedefined, c.Name.Token, "%s is already defined", tag)
			continue
		}

		payload := make([]typesystem.Type, len(c.Parameters))
		for i, p := range c.Parameters {
			payload[i] = a.buildType(p, scope)
		}
		info.Variants = append(info.Variants, symbols.Variant{Tag: tag, Payload: payload})

		ctorType := typesystem.Type(result)
		if len(payload) > 0 {
			ctorType = typesystem.TFunc{Params: payload, ReturnType: result}
		}
		a.table.DefineConstructor(tag, ctorType, name, info.Params)
		a.table.SetDefinitionNode(tag, c)
	}
}

// adtReference builds the reference type a declaration's constructors
// return: the ADT applied to its own parameters.
func adtReference(info *symbols.ADTInfo) typesystem.TADT {
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

// typeParam converts one declared parameter to its registered form.
func typeParam(tp *ast.TypeParam) symbols.ConstrainedParam {
	p := symbols.ConstrainedParam{Kind: tp.Kind}
	if tp.Name != nil {
		p.Name = tp.Name.Value
	}
	for _, c := range tp.Constraints {
		if c != nil {
			p.Interfaces = append(p.Interfaces, c.Value)
		}
	}
	return p
}

func typeParamList(tps []*ast.TypeParam) []symbols.ConstrainedParam {
	if len(tps) == 0 {
		return nil
	}
	params := make([]symbols.ConstrainedParam, 0, len(tps))
	for _, tp := range tps {
		if tp != nil {
			params = append(params, typeParam(tp))
		}
	}
	return params
}

// declareTypeParams brings a declaration's type parameters into scope
// as type symbols: plain variables at kind *, constructor variables at
// higher kinds.
func (a *Analyzer) declareTypeParams(scope *symbols.SymbolTable, tps []*ast.TypeParam) {
	for _, tp := range tps {
		if tp == nil || tp.Name == nil {
			continue
		}
		p := typeParam(tp)
		if typesystem.KindArity(p.ParamKind()) > 0 {
			scope.DefineType(p.Name, typesystem.TConVar{Name: p.Name, KindVal: p.ParamKind()})
		} else {
			scope.DefineType(p.Name, typesystem.TVar{Name: p.Name})
		}
	}
}

// checkParamConstraints validates the interfaces a parameter list
// names: each must be declared, at a kind matching the parameter's.
func (a *Analyzer) checkParamConstraints(tps []*ast.TypeParam) {
	for _, tp := range tps {
		if tp == nil {
			continue
		}
		p := typeParam(tp)
		for _, c := range tp.Constraints {
			if c == nil {
				continue
			}
			info, ok := a.table.FindInterface(c.Value)
			if !ok {
				a.reportf(diagnostics.ErrUndefined, c.Token, "undefined interface %s", c.Value)
				continue
			}
			if err := typesystem.UnifyKinds(p.ParamKind(), info.Param.ParamKind()); err != nil {
				a.reportf(diagnostics.ErrKindMismatch, c.Token,
					"%s has kind %s; %s constrains its parameter to kind %s",
					p.Name, p.ParamKind(), c.Value, info.Param.ParamKind())
			}
		}
	}
}
