package typesystem

import "fmt"

// Kind represents the "type of a type".
// * (Star) is the kind of proper types (Int, Bool, Option<Int>).
// * -> * is the kind of type constructors (Option, List).
type Kind interface {
	String() string
	Equal(Kind) bool
}

// KStar represents the kind of a value type (*).
type KStar struct{}

func (k KStar) String() string { return "*" }
func (k KStar) Equal(other Kind) bool {
	_, ok := other.(KStar)
	return ok
}

// KArrow represents a type-constructor kind (k1 -> k2).
type KArrow struct {
	Left  Kind
	Right Kind
}

func (k KArrow) String() string {
	return fmt.Sprintf("(%s -> %s)", k.Left.String(), k.Right.String())
}

func (k KArrow) Equal(other Kind) bool {
	o, ok := other.(KArrow)
	if !ok {
		return false
	}
	return k.Left.Equal(o.Left) && k.Right.Equal(o.Right)
}

var Star Kind = KStar{}

// MakeArrow creates an N-ary right-associated arrow kind:
// MakeArrow(Star, Star, Star) is * -> * -> *.
func MakeArrow(args ...Kind) Kind {
	if len(args) == 0 {
		return Star
	}
	if len(args) == 1 {
		return args[0]
	}
	return KArrow{Left: args[0], Right: MakeArrow(args[1:]...)}
}

// KindArity counts how many arguments a constructor of kind k expects
// before reaching a value kind.
func KindArity(k Kind) int {
	n := 0
	for {
		arrow, ok := k.(KArrow)
		if !ok {
			return n
		}
		n++
		k = arrow.Right
	}
}
