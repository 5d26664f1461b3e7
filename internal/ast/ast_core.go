package ast

import (
	"github.com/kitelang/kite/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its
// primary token. This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
}

// Declaration is a Node that can appear at the top level of a unit.
type Declaration interface {
	Node
	declarationNode()
	GetToken() token.Token
}

// Statement is a Node that represents a statement inside a block.
type Statement interface {
	Node
	statementNode()
	GetToken() token.Token
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// Pattern is a Node that represents a match pattern.
type Pattern interface {
	Node
	patternNode()
	GetToken() token.Token
}

// Type represents a type annotation in the AST.
// E.g., Int, Option<T>, (Int, Int) -> Bool, { x: Int }
type Type interface {
	Node
	typeNode()
	GetToken() token.Token
}

// Unit is the root of one fully parsed, desugared compilation unit.
// Imports are already resolved: Declarations is the flat list of
// everything visible to the checker.
type Unit struct {
	Name         string // unit name, used for specialized symbol ids
	File         string // source path for diagnostics; empty for synthetic units
	Declarations []Declaration
}

func (u *Unit) TokenLiteral() string {
	if len(u.Declarations) > 0 {
		return u.Declarations[0].TokenLiteral()
	}
	return ""
}

// Identifier represents a name in expression position.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token {
	if i == nil {
		return token.Token{}
	}
	return i.Token
}

// TailClass classifies a call site by its position in the enclosing
// function body. The classification is a pure function of tree shape;
// it is stored beside the tree, never on it.
type TailClass int

const (
	// NonTail marks a call whose result feeds another computation.
	NonTail TailClass = iota
	// Tail marks a call in tail position.
	Tail
	// SelfTail marks a tail call whose callee is the enclosing
	// function itself, the loop-conversion candidate.
	SelfTail
)

func (tc TailClass) String() string {
	switch tc {
	case Tail:
		return "tail"
	case SelfTail:
		return "self-tail"
	default:
		return "non-tail"
	}
}
