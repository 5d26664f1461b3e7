package symbols

import (
	"fmt"

	"github.com/kitelang/kite/internal/typesystem"
)

// Variant is one constructor of an ADT. Payload types mention the
// declaration's own type parameters as variables.
type Variant struct {
	Tag     string
	Payload []typesystem.Type
}

// ADTInfo is the registered form of one ADT declaration. Variants
// keep declaration order; the tag set is closed.
type ADTInfo struct {
	Name     string
	Params   []ConstrainedParam
	Variants []Variant
	Derives  []string
	Kind     typesystem.Kind
}

// VariantTags returns the tags in declaration order.
func (a *ADTInfo) VariantTags() []string {
	tags := make([]string, len(a.Variants))
	for i, v := range a.Variants {
		tags[i] = v.Tag
	}
	return tags
}

// Variant returns the named variant.
func (a *ADTInfo) Variant(tag string) (Variant, bool) {
	for _, v := range a.Variants {
		if v.Tag == tag {
			return v, true
		}
	}
	return Variant{}, false
}

// ParamSubst builds the substitution mapping the declaration's
// parameters to the given arguments.
func (a *ADTInfo) ParamSubst(args []typesystem.Type) (typesystem.Subst, error) {
	if len(args) != len(a.Params) {
		return nil, fmt.Errorf("%s expects %d type arguments, got %d", a.Name, len(a.Params), len(args))
	}
	subst := make(typesystem.Subst, len(a.Params))
	for i, p := range a.Params {
		subst[p.Name] = args[i]
	}
	return subst, nil
}

// DefineADT registers an ADT declaration with the unit. The kind is
// derived from the parameter kinds. Returns false if the name is
// already taken by another type.
func (s *SymbolTable) DefineADT(info *ADTInfo) bool {
	root := s.Root()
	if _, exists := root.adts[info.Name]; exists {
		return false
	}
	if _, exists := root.aliases[info.Name]; exists {
		return false
	}
	if info.Kind == nil {
		ks := make([]typesystem.Kind, 0, len(info.Params)+1)
		for _, p := range info.Params {
			ks = append(ks, p.ParamKind())
		}
		ks = append(ks, typesystem.Star)
		info.Kind = typesystem.MakeArrow(ks...)
	}
	root.adts[info.Name] = info
	root.adtOrder = append(root.adtOrder, info.Name)
	root.kinds[info.Name] = info.Kind
	return true
}

// FindADT resolves a registered ADT by name from any scope.
func (s *SymbolTable) FindADT(name string) (*ADTInfo, bool) {
	info, ok := s.Root().adts[name]
	return info, ok
}

// ADTNames returns registered ADT names in definition order.
func (s *SymbolTable) ADTNames() []string {
	return s.Root().adtOrder
}

// DefineAlias registers a nominal alias for a type, most often a
// named record. Returns false when the name is taken.
func (s *SymbolTable) DefineAlias(name string, t typesystem.Type) bool {
	root := s.Root()
	if _, exists := root.aliases[name]; exists {
		return false
	}
	if _, exists := root.adts[name]; exists {
		return false
	}
	root.aliases[name] = t
	root.kinds[name] = typesystem.Star
	return true
}

// FindAlias resolves a registered alias by name.
func (s *SymbolTable) FindAlias(name string) (typesystem.Type, bool) {
	t, ok := s.Root().aliases[name]
	return t, ok
}

// KindOf reports the declared kind of a named type constructor. It
// satisfies typesystem.KindResolver.
func (s *SymbolTable) KindOf(name string) (typesystem.Kind, bool) {
	k, ok := s.Root().kinds[name]
	return k, ok
}
