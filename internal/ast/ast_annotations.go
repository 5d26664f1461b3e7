package ast

import (
	"github.com/kitelang/kite/internal/token"
)

// --- Type annotation nodes ---

// NamedType represents a named type reference like 'Int', 'Option<T>'
// or a bare constructor head like 'Option' in an implementation
// target. Name resolution decides whether it denotes a primitive, an
// ADT, an alias or a type parameter.
type NamedType struct {
	Token token.Token
	Name  *Identifier
	Args  []Type
}

func (nt *NamedType) typeNode()            {}
func (nt *NamedType) TokenLiteral() string { return nt.Token.Lexeme }
func (nt *NamedType) GetToken() token.Token {
	if nt == nil {
		return token.Token{}
	}
	return nt.Token
}

// ArrayType represents an array annotation: Array<Int>
type ArrayType struct {
	Token token.Token
	Elem  Type
}

func (at *ArrayType) typeNode()            {}
func (at *ArrayType) TokenLiteral() string { return at.Token.Lexeme }
func (at *ArrayType) GetToken() token.Token {
	if at == nil {
		return token.Token{}
	}
	return at.Token
}

// RecordTypeField is one field of a record annotation.
type RecordTypeField struct {
	Token token.Token
	Name  *Identifier
	Type  Type
}

// RecordType represents a record annotation: { x: Int, y: Bool }
type RecordType struct {
	Token  token.Token // '{'
	Fields []*RecordTypeField
}

func (rt *RecordType) typeNode()            {}
func (rt *RecordType) TokenLiteral() string { return rt.Token.Lexeme }
func (rt *RecordType) GetToken() token.Token {
	if rt == nil {
		return token.Token{}
	}
	return rt.Token
}

// FunctionType represents a function annotation.
// (Int, Int) -> Bool, or (String) ~> Unit for interactions.
type FunctionType struct {
	Token       token.Token // '->' or '~>'
	Parameters  []Type
	ReturnType  Type
	Interaction bool
}

func (ft *FunctionType) typeNode()            {}
func (ft *FunctionType) TokenLiteral() string { return ft.Token.Lexeme }
func (ft *FunctionType) GetToken() token.Token {
	if ft == nil {
		return token.Token{}
	}
	return ft.Token
}

// UnionType represents a union annotation: Int | String
type UnionType struct {
	Token token.Token // '|'
	Types []Type      // at least 2
}

func (ut *UnionType) typeNode()            {}
func (ut *UnionType) TokenLiteral() string { return ut.Token.Lexeme }
func (ut *UnionType) GetToken() token.Token {
	if ut == nil {
		return token.Token{}
	}
	return ut.Token
}
