package diagnostics

// ErrorCode identifies one kind of semantic diagnostic. Codes are
// stable across releases; tooling matches on them.
type ErrorCode string

const (
	// ErrUnification: two type expressions could not be made equal.
	ErrUnification ErrorCode = "E001"
	// ErrKindMismatch: a type constructor was applied at the wrong kind.
	ErrKindMismatch ErrorCode = "E002"
	// ErrArityMismatch: wrong number of arguments, type arguments or
	// pattern elements.
	ErrArityMismatch ErrorCode = "E003"
	// ErrMissingImplementation: an interface constraint has no
	// registered implementation for the type in question.
	ErrMissingImplementation ErrorCode = "E004"
	// ErrDuplicateImplementation: a second implementation of the same
	// interface for the same type head.
	ErrDuplicateImplementation ErrorCode = "E005"
	// ErrMissingPatterns: a match over a closed ADT leaves variant
	// tags uncovered.
	ErrMissingPatterns ErrorCode = "E006"
	// ErrUnreachablePattern: a match arm is fully subsumed by the arms
	// before it.
	ErrUnreachablePattern ErrorCode = "E007"
	// ErrInstantiationOverflow: generic instantiation exceeded the
	// configured depth bound.
	ErrInstantiationOverflow ErrorCode = "E008"
	// ErrMonadicOperatorOutsideInteraction: a monadic operator was
	// used in a pure function body.
	ErrMonadicOperatorOutsideInteraction ErrorCode = "E009"
	// ErrUndefined: reference to a name that is not in scope.
	ErrUndefined ErrorCode = "E010"
	// ErrRedefined: a name was declared twice in the same scope.
	ErrRedefined ErrorCode = "E011"
)

var codeNames = map[ErrorCode]string{
	ErrUnification:                       "type mismatch",
	ErrKindMismatch:                      "kind mismatch",
	ErrArityMismatch:                     "arity mismatch",
	ErrMissingImplementation:             "missing implementation",
	ErrDuplicateImplementation:           "duplicate implementation",
	ErrMissingPatterns:                   "missing patterns",
	ErrUnreachablePattern:                "unreachable pattern",
	ErrInstantiationOverflow:             "instantiation overflow",
	ErrMonadicOperatorOutsideInteraction: "monadic operator outside interaction",
	ErrUndefined:                         "undefined name",
	ErrRedefined:                         "name redefined",
}

// Name returns the human label for the code, or the raw code when the
// code is unknown.
func (c ErrorCode) Name() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return string(c)
}

func (c ErrorCode) String() string { return string(c) }
