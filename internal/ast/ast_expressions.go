package ast

import (
	"github.com/kitelang/kite/internal/token"
)

// --- Statements ---

// LetStatement represents a local binding.
// let x = 5, let y: Int | String = 1, var count = 0
type LetStatement struct {
	Token          token.Token // 'let' or 'var'
	Name           *Identifier
	Mutable        bool
	TypeAnnotation Type // optional
	Value          Expression
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Lexeme }
func (ls *LetStatement) GetToken() token.Token {
	if ls == nil {
		return token.Token{}
	}
	return ls.Token
}

// AssignStatement re-binds a 'var' local.
type AssignStatement struct {
	Token token.Token // '='
	Name  *Identifier
	Value Expression
}

func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Lexeme }
func (as *AssignStatement) GetToken() token.Token {
	if as == nil {
		return token.Token{}
	}
	return as.Token
}

// ReturnStatement returns from the enclosing function.
type ReturnStatement struct {
	Token token.Token // 'return'
	Value Expression  // nil for bare return (Unit)
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token {
	if rs == nil {
		return token.Token{}
	}
	return rs.Token
}

// ExpressionStatement wraps an expression in statement position.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}

// --- Literals ---

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token {
	if il == nil {
		return token.Token{}
	}
	return il.Token
}

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Lexeme }
func (fl *FloatLiteral) GetToken() token.Token {
	if fl == nil {
		return token.Token{}
	}
	return fl.Token
}

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Lexeme }
func (bl *BooleanLiteral) GetToken() token.Token {
	if bl == nil {
		return token.Token{}
	}
	return bl.Token
}

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token {
	if sl == nil {
		return token.Token{}
	}
	return sl.Token
}

// UnitLiteral is the single value of type Unit, spelled ().
type UnitLiteral struct {
	Token token.Token
}

func (ul *UnitLiteral) expressionNode()      {}
func (ul *UnitLiteral) TokenLiteral() string { return ul.Token.Lexeme }
func (ul *UnitLiteral) GetToken() token.Token {
	if ul == nil {
		return token.Token{}
	}
	return ul.Token
}

// ArrayLiteral represents [1, 2, 3].
type ArrayLiteral struct {
	Token    token.Token // '['
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Lexeme }
func (al *ArrayLiteral) GetToken() token.Token {
	if al == nil {
		return token.Token{}
	}
	return al.Token
}

// RecordField is one field initializer in a record literal.
type RecordField struct {
	Token token.Token
	Name  *Identifier
	Value Expression
}

func (rf *RecordField) TokenLiteral() string { return rf.Token.Lexeme }
func (rf *RecordField) GetToken() token.Token {
	if rf == nil {
		return token.Token{}
	}
	return rf.Token
}

// RecordLiteral represents { x: 1, y: true }. Field order is kept as
// written; record typing itself is structural.
type RecordLiteral struct {
	Token  token.Token // '{'
	Fields []*RecordField
}

func (rl *RecordLiteral) expressionNode()      {}
func (rl *RecordLiteral) TokenLiteral() string { return rl.Token.Lexeme }
func (rl *RecordLiteral) GetToken() token.Token {
	if rl == nil {
		return token.Token{}
	}
	return rl.Token
}

// --- Compound expressions ---

// CallExpression represents a call: f(x), Some(1), id<Int>(5).
type CallExpression struct {
	Token     token.Token // '('
	Function  Expression
	TypeArgs  []Type // explicit type arguments, usually empty
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token {
	if ce == nil {
		return token.Token{}
	}
	return ce.Token
}

// MemberExpression represents record field access: point.x
type MemberExpression struct {
	Token  token.Token // '.'
	Left   Expression
	Member *Identifier
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Lexeme }
func (me *MemberExpression) GetToken() token.Token {
	if me == nil {
		return token.Token{}
	}
	return me.Token
}

// IndexExpression represents array indexing: xs[0]
type IndexExpression struct {
	Token token.Token // '['
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *IndexExpression) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

// InfixExpression represents a binary operator application.
// The operator token carries the position diagnostics point at.
type InfixExpression struct {
	Token    token.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

// PrefixExpression represents a unary operator application: !b, -n
type PrefixExpression struct {
	Token    token.Token // the operator token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token {
	if pe == nil {
		return token.Token{}
	}
	return pe.Token
}

// BlockExpression is a brace-delimited statement list. Its value is
// the value of the final expression statement, or Unit.
type BlockExpression struct {
	Token      token.Token // '{'
	Statements []Statement
}

func (be *BlockExpression) expressionNode()      {}
func (be *BlockExpression) TokenLiteral() string { return be.Token.Lexeme }
func (be *BlockExpression) GetToken() token.Token {
	if be == nil {
		return token.Token{}
	}
	return be.Token
}

// TailExpression returns the final expression statement of the block,
// or nil when the block ends with a non-expression statement.
func (be *BlockExpression) TailExpression() Expression {
	if be == nil || len(be.Statements) == 0 {
		return nil
	}
	if es, ok := be.Statements[len(be.Statements)-1].(*ExpressionStatement); ok {
		return es.Expression
	}
	return nil
}

// IfExpression represents a conditional. With no alternative the
// expression has type Unit.
type IfExpression struct {
	Token       token.Token // 'if'
	Condition   Expression
	Consequence *BlockExpression
	Alternative *BlockExpression // nil when absent
}

func (ie *IfExpression) expressionNode()      {}
func (ie *IfExpression) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *IfExpression) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

// MatchArm represents a single case in a match expression. Guard is
// evaluated after the pattern matches; the arm fires only if it is
// true.
type MatchArm struct {
	Pattern    Pattern
	Guard      Expression // nil when unguarded
	Expression Expression
}

// MatchExpression represents pattern matching on a scrutinee.
// match opt { Some(x) -> x, None -> 0 }
type MatchExpression struct {
	Token      token.Token // 'match'
	Expression Expression
	Arms       []*MatchArm
}

func (me *MatchExpression) expressionNode()      {}
func (me *MatchExpression) TokenLiteral() string { return me.Token.Lexeme }
func (me *MatchExpression) GetToken() token.Token {
	if me == nil {
		return token.Token{}
	}
	return me.Token
}

// FunctionLiteral represents an anonymous function. Lambdas are
// always pure; monadic operators are rejected inside their bodies.
// fun(x: Int) -> Int { x + 1 }
type FunctionLiteral struct {
	Token      token.Token // 'fun'
	Parameters []*Parameter
	ReturnType Type
	Body       *BlockExpression
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Lexeme }
func (fl *FunctionLiteral) GetToken() token.Token {
	if fl == nil {
		return token.Token{}
	}
	return fl.Token
}

// TypeTestExpression represents a union-narrowing test: x is Int.
// In the consequence of an if whose condition is such a test, the
// tested name is narrowed to the named member type.
type TypeTestExpression struct {
	Token      token.Token // 'is'
	Expression Expression
	Type       Type
}

func (tt *TypeTestExpression) expressionNode()      {}
func (tt *TypeTestExpression) TokenLiteral() string { return tt.Token.Lexeme }
func (tt *TypeTestExpression) GetToken() token.Token {
	if tt == nil {
		return token.Token{}
	}
	return tt.Token
}
