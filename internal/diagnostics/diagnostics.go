package diagnostics

import (
	"fmt"

	"github.com/kitelang/kite/internal/token"
)

// DiagnosticError is one semantic diagnostic. All diagnostics are
// fatal to the compilation unit; the checker keeps going after
// recording one only to collect the rest of the pass.
//
// The core never prints these. Rendering belongs to the driver.
type DiagnosticError struct {
	Code    ErrorCode
	Token   token.Token
	File    string
	Message string

	// Structured payload, filled per code so tooling does not have to
	// re-parse Message.
	Tags  []string // ErrMissingPatterns: uncovered variant tags
	Arm   int      // ErrUnreachablePattern: zero-based arm index
	Bound int      // ErrInstantiationOverflow: configured depth bound
}

// NewError builds a diagnostic at the given token.
func NewError(code ErrorCode, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{Code: code, Token: tok, Message: message}
}

func (e *DiagnosticError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%s: [%s] %s", e.File, e.Token.Pos(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: [%s] %s", e.Token.Pos(), e.Code, e.Message)
}

// Key identifies a diagnostic for deduplication: the same code at the
// same position is reported once.
func (e *DiagnosticError) Key() string {
	return fmt.Sprintf("%s:%d:%d:%s", e.File, e.Token.Line, e.Token.Column, e.Code)
}
