package typesystem

import "fmt"

// Unify attempts to find a substitution that makes t1 and t2 equal.
// It enforces strict equality (invariant); the only asymmetry is that
// a non-union type unifies with a union it is a member of.
func Unify(t1, t2 Type) (Subst, error) {
	return unifyInternal(t1, t2, nil)
}

// typePair tracks a pair of types being compared, for co-induction on
// repeated comparisons.
type typePair struct {
	t1 string
	t2 string
}

func unifyInternal(t1, t2 Type, visited []typePair) (Subst, error) {
	if t1 == nil || t2 == nil {
		return nil, errMismatch("cannot unify an unresolved type")
	}

	pair := typePair{t1: t1.String(), t2: t2.String()}
	for _, p := range visited {
		if p == pair {
			// Already comparing these two types higher in the stack;
			// assume success (co-induction).
			return Subst{}, nil
		}
	}
	visited = append(visited, pair)

	if pair.t1 == pair.t2 {
		return Subst{}, nil
	}

	// Variables bind before any structural rules.
	if v, ok := t1.(TVar); ok {
		return Bind(v, t2)
	}
	if v, ok := t2.(TVar); ok {
		return Bind(v, t1)
	}
	if cv, ok := t1.(TConVar); ok {
		return BindCon(cv, t2)
	}
	if cv, ok := t2.(TConVar); ok {
		return BindCon(cv, t1)
	}

	// Union membership: T unifies with T | U.
	if _, ok := t1.(TUnion); !ok {
		if union, ok := t2.(TUnion); ok {
			for _, member := range union.Types {
				if s, err := unifyInternal(t1, member, visited); err == nil {
					return s, nil
				}
			}
			return nil, errUnifyMsg(t1, t2, "type is not a member of the union")
		}
	}

	switch t1 := t1.(type) {
	case TPrim:
		if t2, ok := t2.(TPrim); ok && t1.Name == t2.Name {
			return Subst{}, nil
		}
		return nil, errUnify(t1, t2)

	case TArray:
		if t2, ok := t2.(TArray); ok {
			return unifyInternal(t1.Elem, t2.Elem, visited)
		}
		return nil, errUnify(t1, t2)

	case TADT:
		switch t2 := t2.(type) {
		case TADT:
			if t1.Name != t2.Name {
				return nil, errUnifyMsg(t1, t2, "distinct named types")
			}
			if len(t1.Args) != len(t2.Args) {
				return nil, errUnifyMsg(t1, t2, fmt.Sprintf("type argument count mismatch: %d vs %d", len(t1.Args), len(t2.Args)))
			}
			s := Subst{}
			for i := range t1.Args {
				s2, err := unifyInternal(t1.Args[i].Apply(s), t2.Args[i].Apply(s), visited)
				if err != nil {
					return nil, err
				}
				s = s.Compose(s2)
			}
			return s, nil
		case TApp:
			return unifyAppWithADT(t2, t1, visited)
		default:
			return nil, errUnify(t1, t2)
		}

	case TApp:
		switch t2 := t2.(type) {
		case TApp:
			s, err := BindCon(t1.Head, t2.Head)
			if err != nil {
				return nil, err
			}
			if len(t1.Args) != len(t2.Args) {
				return nil, errUnifyMsg(t1, t2, fmt.Sprintf("type argument count mismatch: %d vs %d", len(t1.Args), len(t2.Args)))
			}
			for i := range t1.Args {
				s2, err := unifyInternal(t1.Args[i].Apply(s), t2.Args[i].Apply(s), visited)
				if err != nil {
					return nil, err
				}
				s = s.Compose(s2)
			}
			return s, nil
		case TADT:
			return unifyAppWithADT(t1, t2, visited)
		default:
			return nil, errUnify(t1, t2)
		}

	case TRecord:
		t2, ok := t2.(TRecord)
		if !ok {
			return nil, errUnifyMsg(t1, t2, "cannot unify record")
		}
		// Structural comparison: same field-name set, order-independent.
		var missing, extra []string
		for _, f := range t1.Fields {
			if _, ok := t2.Field(f.Name); !ok {
				missing = append(missing, f.Name)
			}
		}
		for _, f := range t2.Fields {
			if _, ok := t1.Field(f.Name); !ok {
				extra = append(extra, f.Name)
			}
		}
		if len(missing) > 0 || len(extra) > 0 {
			return nil, errUnifyMsg(t1, t2, "record field sets differ")
		}
		s := Subst{}
		for _, name := range t1.sortedNames() {
			f1, _ := t1.Field(name)
			f2, _ := t2.Field(name)
			s2, err := unifyInternal(f1.Apply(s), f2.Apply(s), visited)
			if err != nil {
				return nil, errUnifyContext(fmt.Sprintf("record field '%s'", name), err)
			}
			s = s.Compose(s2)
		}
		return s, nil

	case TFunc:
		t2, ok := t2.(TFunc)
		if !ok {
			return nil, errUnifyMsg(t1, t2, "cannot unify function type")
		}
		if t1.Interaction != t2.Interaction {
			return nil, errUnifyMsg(t1, t2, "cannot unify a pure function with an interaction")
		}
		if len(t1.Params) != len(t2.Params) {
			return nil, errUnifyMsg(t1, t2, fmt.Sprintf("parameter count mismatch: %d vs %d", len(t1.Params), len(t2.Params)))
		}
		s := Subst{}
		for i := range t1.Params {
			s2, err := unifyInternal(t1.Params[i].Apply(s), t2.Params[i].Apply(s), visited)
			if err != nil {
				return nil, err
			}
			s = s.Compose(s2)
		}
		s2, err := unifyInternal(t1.ReturnType.Apply(s), t2.ReturnType.Apply(s), visited)
		if err != nil {
			return nil, err
		}
		return s.Compose(s2), nil

	case TUnion:
		if t2, ok := t2.(TUnion); ok {
			if len(t1.Types) != len(t2.Types) {
				return nil, errUnifyMsg(t1, t2, fmt.Sprintf("union member count mismatch: %d vs %d", len(t1.Types), len(t2.Types)))
			}
			// Members are normalized and sorted, so compare pairwise.
			s := Subst{}
			for i := range t1.Types {
				s2, err := unifyInternal(t1.Types[i].Apply(s), t2.Types[i].Apply(s), visited)
				if err != nil {
					return nil, errUnifyContext("union member", err)
				}
				s = s.Compose(s2)
			}
			return s, nil
		}
		// A member type on the right unifies into the union.
		for _, member := range t1.Types {
			if s, err := unifyInternal(member, t2, visited); err == nil {
				return s, nil
			}
		}
		return nil, errUnifyMsg(t1, t2, "cannot unify union")

	default:
		return nil, errMismatch(fmt.Sprintf("unknown type form: %T", t1))
	}
}

// unifyAppWithADT unifies F<A...> with a concrete Name<B...>: the
// constructor variable binds to the bare head and the arguments unify
// pairwise. Application is always saturated, so the arities must
// agree.
func unifyAppWithADT(app TApp, adt TADT, visited []typePair) (Subst, error) {
	if len(app.Args) != len(adt.Args) {
		return nil, errUnifyMsg(app, adt, fmt.Sprintf("type argument count mismatch: %d vs %d", len(app.Args), len(adt.Args)))
	}
	s, err := BindCon(app.Head, TADT{Name: adt.Name})
	if err != nil {
		return nil, err
	}
	for i := range app.Args {
		s2, err := unifyInternal(app.Args[i].Apply(s), adt.Args[i].Apply(s), visited)
		if err != nil {
			return nil, err
		}
		s = s.Compose(s2)
	}
	return s, nil
}

// Bind binds a type variable to a type, performing the occurs check.
func Bind(tv TVar, t Type) (Subst, error) {
	if tVal, ok := t.(TVar); ok && tVal.Name == tv.Name {
		return Subst{}, nil
	}

	// A * variable cannot stand for a bare constructor.
	if _, ok := t.(TConVar); ok {
		return nil, errMismatch(fmt.Sprintf("variable %s has kind *, but %s is a type constructor", tv.Name, t))
	}

	if OccursCheck(tv.Name, t) {
		return nil, errMismatch(fmt.Sprintf("infinite type: %s occurs in %s", tv, t))
	}

	return Subst{tv.Name: t}, nil
}

// BindCon binds a constructor variable to a bare named head or to
// another constructor variable.
func BindCon(cv TConVar, t Type) (Subst, error) {
	switch target := t.(type) {
	case TConVar:
		if target.Name == cv.Name {
			return Subst{}, nil
		}
		if !cv.Kind().Equal(target.Kind()) {
			return nil, &KindMismatchError{Expected: cv.Kind(), Actual: target.Kind(), Context: cv.Name}
		}
		return Subst{cv.Name: target}, nil
	case TADT:
		if len(target.Args) != 0 {
			return nil, errUnifyMsg(cv, t, "constructor variable must bind a bare head")
		}
		return Subst{cv.Name: target}, nil
	default:
		return nil, errUnifyMsg(cv, t, "constructor variable must bind a named type constructor")
	}
}

// OccursCheck returns true if the named variable appears free in t.
func OccursCheck(name string, t Type) bool {
	for _, v := range t.FreeTypeVariables() {
		if v == name {
			return true
		}
	}
	return false
}

func errUnify(t1, t2 Type) error {
	return &UnificationError{Left: t1, Right: t2}
}

func errUnifyMsg(t1, t2 Type, msg string) error {
	return &UnificationError{Left: t1, Right: t2, Reason: msg}
}

func errMismatch(msg string) error {
	return &UnificationError{Reason: msg}
}

func errUnifyContext(ctx string, err error) error {
	return fmt.Errorf("in %s: %w", ctx, err)
}
