package ast

import (
	"github.com/kitelang/kite/internal/token"
)

// WildcardPattern: _
type WildcardPattern struct {
	Token token.Token
}

func (p *WildcardPattern) patternNode()         {}
func (p *WildcardPattern) TokenLiteral() string { return p.Token.Lexeme }
func (p *WildcardPattern) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// IdentifierPattern binds the matched value to a name: x
type IdentifierPattern struct {
	Token token.Token
	Value string
}

func (p *IdentifierPattern) patternNode()         {}
func (p *IdentifierPattern) TokenLiteral() string { return p.Token.Lexeme }
func (p *IdentifierPattern) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// LiteralPattern matches a literal value: 1, true, "hello".
// Value is one of the literal expression nodes.
type LiteralPattern struct {
	Token token.Token
	Value Expression
}

func (p *LiteralPattern) patternNode()         {}
func (p *LiteralPattern) TokenLiteral() string { return p.Token.Lexeme }
func (p *LiteralPattern) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// ConstructorPattern matches one ADT variant: Some(x), None
type ConstructorPattern struct {
	Token    token.Token // the constructor's token
	Name     *Identifier
	Elements []Pattern
}

func (p *ConstructorPattern) patternNode()         {}
func (p *ConstructorPattern) TokenLiteral() string { return p.Token.Lexeme }
func (p *ConstructorPattern) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// FieldPattern is one field of a record pattern.
type FieldPattern struct {
	Token   token.Token
	Name    *Identifier
	Pattern Pattern
}

func (fp *FieldPattern) TokenLiteral() string { return fp.Token.Lexeme }
func (fp *FieldPattern) GetToken() token.Token {
	if fp == nil {
		return token.Token{}
	}
	return fp.Token
}

// RecordPattern destructures a record: { x: p1, y: p2 }. Fields not
// named are ignored; record matching is open.
type RecordPattern struct {
	Token  token.Token // '{'
	Fields []*FieldPattern
}

func (p *RecordPattern) patternNode()         {}
func (p *RecordPattern) TokenLiteral() string { return p.Token.Lexeme }
func (p *RecordPattern) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}
