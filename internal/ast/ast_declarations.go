package ast

import (
	"github.com/kitelang/kite/internal/token"
	"github.com/kitelang/kite/internal/typesystem"
)

// TypeParam represents one constrained type parameter of a generic
// declaration, e.g. the T in id<T>, or F in lift<F: Functor>.
// A nil Kind means * (a value-type parameter).
type TypeParam struct {
	Token       token.Token
	Name        *Identifier
	Kind        typesystem.Kind
	Constraints []*Identifier // required interfaces, e.g. [Eq, Ord]
}

func (tp *TypeParam) TokenLiteral() string { return tp.Token.Lexeme }
func (tp *TypeParam) GetToken() token.Token {
	if tp == nil {
		return token.Token{}
	}
	return tp.Token
}

// DataConstructor represents a single variant in an ADT definition.
// E.g., 'Some(T)' or 'None'.
type DataConstructor struct {
	Token      token.Token
	Name       *Identifier
	Parameters []Type
}

func (dc *DataConstructor) TokenLiteral() string { return dc.Token.Lexeme }
func (dc *DataConstructor) GetToken() token.Token {
	if dc == nil {
		return token.Token{}
	}
	return dc.Token
}

// TypeDeclaration represents a 'type' definition.
// ADT:   type Option<T> = Some(T) | None
// Alias: type Point = { x: Int, y: Int } derives (ToString)
type TypeDeclaration struct {
	Token      token.Token // the 'type' token
	Name       *Identifier
	TypeParams []*TypeParam
	IsAlias    bool
	// For an alias, TargetType holds the aliased type. For an ADT,
	// Constructors holds the variants in declaration order.
	TargetType   Type
	Constructors []*DataConstructor
	Derives      []*Identifier // interfaces to derive, e.g. (Eq, ToString)
}

func (td *TypeDeclaration) declarationNode()     {}
func (td *TypeDeclaration) TokenLiteral() string { return td.Token.Lexeme }
func (td *TypeDeclaration) GetToken() token.Token {
	if td == nil {
		return token.Token{}
	}
	return td.Token
}

// MethodSignature is one method of an interface. TypeParams are the
// method's own universally quantified variables, like A and B in
// map<A, B>.
type MethodSignature struct {
	Token      token.Token
	Name       *Identifier
	TypeParams []*TypeParam
	Type       *FunctionType
}

func (ms *MethodSignature) TokenLiteral() string { return ms.Token.Lexeme }
func (ms *MethodSignature) GetToken() token.Token {
	if ms == nil {
		return token.Token{}
	}
	return ms.Token
}

// InterfaceDeclaration represents an interface definition.
// interface Eq<T> { fun eq(a: T, b: T) -> Bool }
// interface Functor<F: * -> *> { fun map<A, B>(fa: F<A>, f: (A) -> B) -> F<B> }
type InterfaceDeclaration struct {
	Token      token.Token // 'interface'
	Name       *Identifier
	TypeParam  *TypeParam
	Signatures []*MethodSignature // ordered as declared
}

func (id *InterfaceDeclaration) declarationNode()     {}
func (id *InterfaceDeclaration) TokenLiteral() string { return id.Token.Lexeme }
func (id *InterfaceDeclaration) GetToken() token.Token {
	if id == nil {
		return token.Token{}
	}
	return id.Token
}

// MethodBinding maps one interface method to a unit-level function.
type MethodBinding struct {
	Token    token.Token
	Method   *Identifier
	Function *Identifier
}

func (mb *MethodBinding) TokenLiteral() string { return mb.Token.Lexeme }
func (mb *MethodBinding) GetToken() token.Token {
	if mb == nil {
		return token.Token{}
	}
	return mb.Token
}

// ImplementationDeclaration registers an interface for a type head.
// implement Eq for Int { eq = eqInt }
// implement Functor for Option { map = optionMap }
type ImplementationDeclaration struct {
	Token         token.Token // 'implement'
	InterfaceName *Identifier
	Target        *NamedType // nominal type or bare constructor head
	Bindings      []*MethodBinding
}

func (impl *ImplementationDeclaration) declarationNode()     {}
func (impl *ImplementationDeclaration) TokenLiteral() string { return impl.Token.Lexeme }
func (impl *ImplementationDeclaration) GetToken() token.Token {
	if impl == nil {
		return token.Token{}
	}
	return impl.Token
}

// Parameter is one named, annotated parameter of a function or
// lambda. Parameter and return types are always explicit.
type Parameter struct {
	Token token.Token
	Name  *Identifier
	Type  Type
}

func (p *Parameter) TokenLiteral() string { return p.Token.Lexeme }
func (p *Parameter) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// FunctionDeclaration represents a unit-level function or interaction.
// fun head<T>(xs: Array<T>) -> Option<T> { ... }
// interaction main() ~> Unit { ... }
type FunctionDeclaration struct {
	Token       token.Token // 'fun' or 'interaction'
	Name        *Identifier
	TypeParams  []*TypeParam
	Parameters  []*Parameter
	ReturnType  Type
	Interaction bool
	Body        *BlockExpression
}

func (fd *FunctionDeclaration) declarationNode()     {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Lexeme }
func (fd *FunctionDeclaration) GetToken() token.Token {
	if fd == nil {
		return token.Token{}
	}
	return fd.Token
}
