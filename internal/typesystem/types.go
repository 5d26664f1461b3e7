package typesystem

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the interface for all type expressions. Trees are immutable
// value data: Apply returns a new tree and shares untouched subtrees.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []string
	Kind() Kind
}

// TPrim represents a primitive type (Int, Float, Bool, String, Unit).
type TPrim struct {
	Name string
}

var (
	IntType    = TPrim{Name: "Int"}
	FloatType  = TPrim{Name: "Float"}
	BoolType   = TPrim{Name: "Bool"}
	StringType = TPrim{Name: "String"}
	UnitType   = TPrim{Name: "Unit"}
)

func (t TPrim) String() string              { return t.Name }
func (t TPrim) Kind() Kind                  { return Star }
func (t TPrim) Apply(s Subst) Type          { return t }
func (t TPrim) FreeTypeVariables() []string { return nil }

// TVar represents a type variable of kind * (e.g. 'a', 't1').
type TVar struct {
	Name string
}

func (t TVar) String() string { return t.Name }
func (t TVar) Kind() Kind     { return Star }

func (t TVar) Apply(s Subst) Type {
	return applyType(t, s, nil)
}

func (t TVar) FreeTypeVariables() []string { return []string{t.Name} }

// TConVar represents a type-constructor variable, the F in Functor<F>.
// Its kind is always an arrow.
type TConVar struct {
	Name    string
	KindVal Kind
}

func (t TConVar) String() string { return t.Name }

func (t TConVar) Kind() Kind {
	if t.KindVal == nil {
		return MakeArrow(Star, Star)
	}
	return t.KindVal
}

func (t TConVar) Apply(s Subst) Type {
	return applyType(t, s, nil)
}

func (t TConVar) FreeTypeVariables() []string { return []string{t.Name} }

// TADT is a reference to a named algebraic data type, with its type
// arguments. Variants live on the declaration in the symbol table, so
// self-referential types stay finite trees. A TADT with no arguments
// is either a nullary type or a bare constructor head (the resolution
// target of a TConVar binding).
type TADT struct {
	Name string
	Args []Type
}

func (t TADT) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(args, ", "))
}

// Kind reports * since a TADT in a value-type position is fully
// applied. The declared kind of the head is tracked by the symbol
// table and checked in KindCheck.
func (t TADT) Kind() Kind { return Star }

func (t TADT) Apply(s Subst) Type {
	return applyType(t, s, nil)
}

func (t TADT) FreeTypeVariables() []string {
	var vars []string
	for _, a := range t.Args {
		vars = append(vars, a.FreeTypeVariables()...)
	}
	return uniqueNames(vars)
}

// TArray represents an array type.
type TArray struct {
	Elem Type
}

func (t TArray) String() string { return fmt.Sprintf("Array<%s>", t.Elem.String()) }
func (t TArray) Kind() Kind     { return Star }

func (t TArray) Apply(s Subst) Type {
	return applyType(t, s, nil)
}

func (t TArray) FreeTypeVariables() []string { return t.Elem.FreeTypeVariables() }

// RecordField is one field of a record type. The slice on TRecord
// preserves declaration order; comparisons are order-independent.
type RecordField struct {
	Name string
	Type Type
}

// TRecord represents a structural record type (e.g. { x: Int, y: Bool }).
type TRecord struct {
	Fields []RecordField
}

func (t TRecord) String() string {
	// Sort by field name so structurally equal records print the same.
	fields := make([]string, len(t.Fields))
	for i, n := range t.sortedNames() {
		ft, _ := t.Field(n)
		fields[i] = fmt.Sprintf("%s: %s", n, ft.String())
	}
	return fmt.Sprintf("{ %s }", strings.Join(fields, ", "))
}

func (t TRecord) Kind() Kind { return Star }

func (t TRecord) Apply(s Subst) Type {
	return applyType(t, s, nil)
}

func (t TRecord) FreeTypeVariables() []string {
	var vars []string
	for _, f := range t.Fields {
		vars = append(vars, f.Type.FreeTypeVariables()...)
	}
	return uniqueNames(vars)
}

// Field returns the type of the named field.
func (t TRecord) Field(name string) (Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

func (t TRecord) sortedNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	sort.Strings(names)
	return names
}

// TFunc represents a function type. Interaction marks the impure
// dialect; pure functions and interactions never unify.
type TFunc struct {
	Params      []Type
	ReturnType  Type
	Interaction bool
}

func (t TFunc) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	arrow := "->"
	if t.Interaction {
		arrow = "~>"
	}
	return fmt.Sprintf("(%s) %s %s", strings.Join(params, ", "), arrow, t.ReturnType.String())
}

func (t TFunc) Kind() Kind { return Star }

func (t TFunc) Apply(s Subst) Type {
	return applyType(t, s, nil)
}

func (t TFunc) FreeTypeVariables() []string {
	var vars []string
	for _, p := range t.Params {
		vars = append(vars, p.FreeTypeVariables()...)
	}
	vars = append(vars, t.ReturnType.FreeTypeVariables()...)
	return uniqueNames(vars)
}

// TApp represents the application of a constructor variable to type
// arguments, the F<Int> inside a Functor-constrained body. Once the
// head resolves to a named type the application collapses to TADT.
type TApp struct {
	Head TConVar
	Args []Type
}

func (t TApp) String() string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Head.Name, strings.Join(args, ", "))
}

func (t TApp) Kind() Kind {
	k := t.Head.Kind()
	for range t.Args {
		arrow, ok := k.(KArrow)
		if !ok {
			return Star
		}
		k = arrow.Right
	}
	return k
}

func (t TApp) Apply(s Subst) Type {
	return applyType(t, s, nil)
}

func (t TApp) FreeTypeVariables() []string {
	vars := []string{t.Head.Name}
	for _, a := range t.Args {
		vars = append(vars, a.FreeTypeVariables()...)
	}
	return uniqueNames(vars)
}

// TUnion represents a union type (e.g. Int | String). Members are
// normalized: flattened, deduplicated and sorted.
type TUnion struct {
	Types []Type
}

func (t TUnion) String() string {
	parts := make([]string, len(t.Types))
	for i, m := range t.Types {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

func (t TUnion) Kind() Kind { return Star }

func (t TUnion) Apply(s Subst) Type {
	return applyType(t, s, nil)
}

func (t TUnion) FreeTypeVariables() []string {
	var vars []string
	for _, m := range t.Types {
		vars = append(vars, m.FreeTypeVariables()...)
	}
	return uniqueNames(vars)
}

// Member reports whether t has a member equal to m.
func (t TUnion) Member(m Type) bool {
	want := m.String()
	for _, member := range t.Types {
		if member.String() == want {
			return true
		}
	}
	return false
}

// NormalizeUnion creates a normalized union type. It flattens nested
// unions, removes duplicates and sorts members; a single surviving
// member is returned directly.
func NormalizeUnion(types []Type) Type {
	var flat []Type
	for _, t := range types {
		if u, ok := t.(TUnion); ok {
			flat = append(flat, u.Types...)
		} else if t != nil {
			flat = append(flat, t)
		}
	}

	seen := make(map[string]bool)
	var unique []Type
	for _, t := range flat {
		s := t.String()
		if !seen[s] {
			seen[s] = true
			unique = append(unique, t)
		}
	}

	if len(unique) == 1 {
		return unique[0]
	}

	sort.Slice(unique, func(i, j int) bool {
		return unique[i].String() < unique[j].String()
	})

	return TUnion{Types: unique}
}

// Identical reports whether two type expressions are the same type.
// Canonical String forms make this a plain comparison.
func Identical(t1, t2 Type) bool {
	if t1 == nil || t2 == nil {
		return t1 == nil && t2 == nil
	}
	return t1.String() == t2.String()
}

// Subst is a mapping from type-variable names to types. It covers
// both TVar and TConVar occurrences; the two draw names from the same
// declaration namespace.
type Subst map[string]Type

// Compose combines two substitutions: s1 entries win on conflict and
// s2 is applied to s1's values first.
func (s1 Subst) Compose(s2 Subst) Subst {
	subst := Subst{}
	for k, v := range s2 {
		subst[k] = v
	}
	for k, v := range s1 {
		subst[k] = v.Apply(s2)
	}
	return subst
}

// applyType walks the tree applying s. The visited set breaks chains
// of variable replacements that lead back to themselves.
func applyType(t Type, s Subst, visited map[string]bool) Type {
	if t == nil {
		return nil
	}

	switch typ := t.(type) {
	case TVar:
		return applyName(typ.Name, typ, s, visited)

	case TConVar:
		return applyName(typ.Name, typ, s, visited)

	case TPrim:
		return typ

	case TADT:
		if len(typ.Args) == 0 {
			return typ
		}
		newArgs := make([]Type, len(typ.Args))
		for i, a := range typ.Args {
			newArgs[i] = applyType(a, s, visited)
		}
		return TADT{Name: typ.Name, Args: newArgs}

	case TArray:
		return TArray{Elem: applyType(typ.Elem, s, visited)}

	case TRecord:
		newFields := make([]RecordField, len(typ.Fields))
		for i, f := range typ.Fields {
			newFields[i] = RecordField{Name: f.Name, Type: applyType(f.Type, s, visited)}
		}
		return TRecord{Fields: newFields}

	case TFunc:
		newParams := make([]Type, len(typ.Params))
		for i, p := range typ.Params {
			newParams[i] = applyType(p, s, visited)
		}
		return TFunc{
			Params:      newParams,
			ReturnType:  applyType(typ.ReturnType, s, visited),
			Interaction: typ.Interaction,
		}

	case TApp:
		newArgs := make([]Type, len(typ.Args))
		for i, a := range typ.Args {
			newArgs[i] = applyType(a, s, visited)
		}
		head := applyType(typ.Head, s, visited)
		switch h := head.(type) {
		case TADT:
			// The constructor variable resolved to a named head, so
			// the application collapses to a concrete reference.
			merged := make([]Type, 0, len(h.Args)+len(newArgs))
			merged = append(merged, h.Args...)
			merged = append(merged, newArgs...)
			return TADT{Name: h.Name, Args: merged}
		case TConVar:
			return TApp{Head: h, Args: newArgs}
		default:
			return TApp{Head: typ.Head, Args: newArgs}
		}

	case TUnion:
		newTypes := make([]Type, len(typ.Types))
		for i, m := range typ.Types {
			newTypes[i] = applyType(m, s, visited)
		}
		return NormalizeUnion(newTypes)

	default:
		return t
	}
}

func applyName(name string, orig Type, s Subst, visited map[string]bool) Type {
	if visited[name] {
		return orig
	}
	replacement, ok := s[name]
	if !ok {
		return orig
	}
	switch r := replacement.(type) {
	case TVar:
		if r.Name == name {
			return orig
		}
	case TConVar:
		if r.Name == name {
			return orig
		}
	}
	next := make(map[string]bool, len(visited)+1)
	for k, v := range visited {
		next[k] = v
	}
	next[name] = true
	return applyType(replacement, s, next)
}

func uniqueNames(names []string) []string {
	var unique []string
	seen := map[string]bool{}
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			unique = append(unique, n)
		}
	}
	return unique
}
