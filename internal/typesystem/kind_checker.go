package typesystem

import "fmt"

// KindResolver reports the declared kind of a named type constructor.
// The symbol table provides one; a nil resolver treats every name as
// a value type.
type KindResolver func(name string) (Kind, bool)

// UnifyKinds checks two kinds for equality. There are no kind
// variables; kinds either match or they do not.
func UnifyKinds(k1, k2 Kind) error {
	if k1.Equal(k2) {
		return nil
	}
	return &KindMismatchError{Expected: k1, Actual: k2}
}

// KindCheck validates that a type expression is well-kinded and
// returns its kind. Every argument position must hold a value type
// and every application must respect the head's declared arity.
func KindCheck(t Type, resolve KindResolver) (Kind, error) {
	if t == nil {
		return nil, fmt.Errorf("cannot check kind of nil type")
	}

	switch typ := t.(type) {
	case TPrim:
		return Star, nil

	case TVar:
		return Star, nil

	case TConVar:
		return typ.Kind(), nil

	case TADT:
		head := Kind(Star)
		if resolve != nil {
			if k, ok := resolve(typ.Name); ok {
				head = k
			}
		}
		return applyKind(typ.Name, head, typ.Args, resolve)

	case TApp:
		return applyKind(typ.Head.Name, typ.Head.Kind(), typ.Args, resolve)

	case TArray:
		if err := checkStar("array element", typ.Elem, resolve); err != nil {
			return nil, err
		}
		return Star, nil

	case TRecord:
		for _, f := range typ.Fields {
			if err := checkStar(fmt.Sprintf("record field '%s'", f.Name), f.Type, resolve); err != nil {
				return nil, err
			}
		}
		return Star, nil

	case TFunc:
		for _, p := range typ.Params {
			if err := checkStar("function parameter", p, resolve); err != nil {
				return nil, err
			}
		}
		if err := checkStar("function return type", typ.ReturnType, resolve); err != nil {
			return nil, err
		}
		return Star, nil

	case TUnion:
		for _, m := range typ.Types {
			if err := checkStar("union member", m, resolve); err != nil {
				return nil, err
			}
		}
		return Star, nil

	default:
		return Star, nil
	}
}

// applyKind consumes one arrow per argument, checking each argument
// against the expected parameter kind.
func applyKind(headName string, head Kind, args []Type, resolve KindResolver) (Kind, error) {
	curr := head
	for _, arg := range args {
		kArg, err := KindCheck(arg, resolve)
		if err != nil {
			return nil, err
		}
		arrow, ok := curr.(KArrow)
		if !ok {
			return nil, &KindMismatchError{
				Expected: curr,
				Actual:   MakeArrow(kArg, Star),
				Context:  fmt.Sprintf("application of %s", headName),
			}
		}
		if !arrow.Left.Equal(kArg) {
			return nil, &KindMismatchError{
				Expected: arrow.Left,
				Actual:   kArg,
				Context:  fmt.Sprintf("argument of %s", headName),
			}
		}
		curr = arrow.Right
	}
	return curr, nil
}

func checkStar(ctx string, t Type, resolve KindResolver) error {
	k, err := KindCheck(t, resolve)
	if err != nil {
		return err
	}
	if !k.Equal(Star) {
		return &KindMismatchError{Expected: Star, Actual: k, Context: ctx}
	}
	return nil
}
