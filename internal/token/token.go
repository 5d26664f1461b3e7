package token

import "fmt"

// Token pins an AST node to its place in the original source. Units
// arrive fully parsed, so only the spelling and position survive into
// the semantic phase; there is no lexical category here.
type Token struct {
	Lexeme string
	Line   int
	Column int
}

// New builds a token for hand-constructed trees, mostly in tests and
// in synthesized prelude declarations.
func New(lexeme string, line, column int) Token {
	return Token{Lexeme: lexeme, Line: line, Column: column}
}

// IsZero reports whether the token carries no position, which is the
// case for synthesized nodes.
func (t Token) IsZero() bool {
	return t.Lexeme == "" && t.Line == 0 && t.Column == 0
}

// Pos renders the position as "line:column" for diagnostics.
func (t Token) Pos() string {
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}
