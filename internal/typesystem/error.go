package typesystem

import "fmt"

// UnificationError indicates two type expressions could not be made
// equal.
type UnificationError struct {
	Left   Type
	Right  Type
	Reason string
}

func (e *UnificationError) Error() string {
	if e.Left == nil || e.Right == nil {
		return e.Reason
	}
	if e.Reason != "" {
		return fmt.Sprintf("cannot unify %s with %s: %s", e.Left, e.Right, e.Reason)
	}
	return fmt.Sprintf("cannot unify %s with %s", e.Left, e.Right)
}

// KindMismatchError indicates a type constructor was applied at the
// wrong kind.
type KindMismatchError struct {
	Expected Kind
	Actual   Kind
	Context  string
}

func (e *KindMismatchError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("kind mismatch in %s: expected %s, got %s", e.Context, e.Expected, e.Actual)
	}
	return fmt.Sprintf("kind mismatch: expected %s, got %s", e.Expected, e.Actual)
}
