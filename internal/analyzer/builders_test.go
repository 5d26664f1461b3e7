package analyzer

import (
	"strconv"
	"strings"
	"testing"

	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/diagnostics"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/token"
	"github.com/kitelang/kite/internal/typesystem"
)

// astb hand-builds unit trees for tests. Every token gets a fresh
// line so diagnostics at different nodes never share a position.
type astb struct {
	line int
}

func (b *astb) tok(lex string) token.Token {
	b.line++
	return token.New(lex, b.line, 1)
}

func (b *astb) id(name string) *ast.Identifier {
	return &ast.Identifier{Token: b.tok(name), Value: name}
}

func (b *astb) named(name string, args ...ast.Type) *ast.NamedType {
	return &ast.NamedType{Token: b.tok(name), Name: b.id(name), Args: args}
}

func (b *astb) intT() *ast.NamedType    { return b.named("Int") }
func (b *astb) floatT() *ast.NamedType  { return b.named("Float") }
func (b *astb) boolT() *ast.NamedType   { return b.named("Bool") }
func (b *astb) stringT() *ast.NamedType { return b.named("String") }
func (b *astb) unitT() *ast.NamedType   { return b.named("Unit") }

func (b *astb) arrayT(elem ast.Type) *ast.ArrayType {
	return &ast.ArrayType{Token: b.tok("Array"), Elem: elem}
}

func (b *astb) unionT(members ...ast.Type) *ast.UnionType {
	return &ast.UnionType{Token: b.tok("|"), Types: members}
}

func (b *astb) recordT(pairs ...any) *ast.RecordType {
	rt := &ast.RecordType{Token: b.tok("{")}
	for i := 0; i < len(pairs); i += 2 {
		rt.Fields = append(rt.Fields, &ast.RecordTypeField{
			Token: b.tok(pairs[i].(string)),
			Name:  b.id(pairs[i].(string)),
			Type:  pairs[i+1].(ast.Type),
		})
	}
	return rt
}

func (b *astb) funcT(interaction bool, ret ast.Type, params ...ast.Type) *ast.FunctionType {
	arrow := "->"
	if interaction {
		arrow = "~>"
	}
	return &ast.FunctionType{Token: b.tok(arrow), Parameters: params, ReturnType: ret, Interaction: interaction}
}

// --- declarations ---

func (b *astb) tparam(name string, constraints ...string) *ast.TypeParam {
	tp := &ast.TypeParam{Token: b.tok(name), Name: b.id(name)}
	for _, c := range constraints {
		tp.Constraints = append(tp.Constraints, b.id(c))
	}
	return tp
}

// hktParam declares an n-ary constructor parameter, F: * -> * for
// arity 1.
func (b *astb) hktParam(name string, arity int, constraints ...string) *ast.TypeParam {
	tp := b.tparam(name, constraints...)
	ks := make([]typesystem.Kind, arity+1)
	for i := range ks {
		ks[i] = typesystem.Star
	}
	tp.Kind = typesystem.MakeArrow(ks...)
	return tp
}

func (b *astb) ctor(name string, params ...ast.Type) *ast.DataConstructor {
	return &ast.DataConstructor{Token: b.tok(name), Name: b.id(name), Parameters: params}
}

func (b *astb) typeDecl(name string, tparams []*ast.TypeParam, ctors ...*ast.DataConstructor) *ast.TypeDeclaration {
	return &ast.TypeDeclaration{
		Token:        b.tok("type"),
		Name:         b.id(name),
		TypeParams:   tparams,
		Constructors: ctors,
	}
}

func (b *astb) derives(td *ast.TypeDeclaration, ifaces ...string) *ast.TypeDeclaration {
	for _, i := range ifaces {
		td.Derives = append(td.Derives, b.id(i))
	}
	return td
}

func (b *astb) alias(name string, target ast.Type) *ast.TypeDeclaration {
	return &ast.TypeDeclaration{Token: b.tok("type"), Name: b.id(name), IsAlias: true, TargetType: target}
}

func (b *astb) param(name string, t ast.Type) *ast.Parameter {
	return &ast.Parameter{Token: b.tok(name), Name: b.id(name), Type: t}
}

func (b *astb) fun(name string, params []*ast.Parameter, ret ast.Type, stmts ...ast.Statement) *ast.FunctionDeclaration {
	return &ast.FunctionDeclaration{
		Token:      b.tok("fun"),
		Name:       b.id(name),
		Parameters: params,
		ReturnType: ret,
		Body:       b.block(stmts...),
	}
}

func (b *astb) genericFun(name string, tparams []*ast.TypeParam, params []*ast.Parameter, ret ast.Type, stmts ...ast.Statement) *ast.FunctionDeclaration {
	fd := b.fun(name, params, ret, stmts...)
	fd.TypeParams = tparams
	return fd
}

func (b *astb) interaction(name string, params []*ast.Parameter, ret ast.Type, stmts ...ast.Statement) *ast.FunctionDeclaration {
	fd := b.fun(name, params, ret, stmts...)
	fd.Token = b.tok("interaction")
	fd.Interaction = true
	return fd
}

func (b *astb) iface(name string, tp *ast.TypeParam, sigs ...*ast.MethodSignature) *ast.InterfaceDeclaration {
	return &ast.InterfaceDeclaration{Token: b.tok("interface"), Name: b.id(name), TypeParam: tp, Signatures: sigs}
}

func (b *astb) method(name string, sig *ast.FunctionType, tparams ...*ast.TypeParam) *ast.MethodSignature {
	return &ast.MethodSignature{Token: b.tok(name), Name: b.id(name), TypeParams: tparams, Type: sig}
}

func (b *astb) implement(iface, target string, bindings ...*ast.MethodBinding) *ast.ImplementationDeclaration {
	return &ast.ImplementationDeclaration{
		Token:         b.tok("implement"),
		InterfaceName: b.id(iface),
		Target:        b.named(target),
		Bindings:      bindings,
	}
}

func (b *astb) bind(method, function string) *ast.MethodBinding {
	return &ast.MethodBinding{Token: b.tok(method), Method: b.id(method), Function: b.id(function)}
}

// --- statements ---

func (b *astb) block(stmts ...ast.Statement) *ast.BlockExpression {
	return &ast.BlockExpression{Token: b.tok("{"), Statements: stmts}
}

func (b *astb) expr(e ast.Expression) *ast.ExpressionStatement {
	return &ast.ExpressionStatement{Token: e.GetToken(), Expression: e}
}

func (b *astb) let(name string, ann ast.Type, v ast.Expression) *ast.LetStatement {
	return &ast.LetStatement{Token: b.tok("let"), Name: b.id(name), TypeAnnotation: ann, Value: v}
}

func (b *astb) varDecl(name string, ann ast.Type, v ast.Expression) *ast.LetStatement {
	ls := b.let(name, ann, v)
	ls.Mutable = true
	return ls
}

func (b *astb) assign(name string, v ast.Expression) *ast.AssignStatement {
	return &ast.AssignStatement{Token: b.tok("="), Name: b.id(name), Value: v}
}

func (b *astb) ret(v ast.Expression) *ast.ReturnStatement {
	return &ast.ReturnStatement{Token: b.tok("return"), Value: v}
}

// --- expressions ---

func (b *astb) i(v int64) *ast.IntegerLiteral {
	return &ast.IntegerLiteral{Token: b.tok(strconv.FormatInt(v, 10)), Value: v}
}

func (b *astb) f(v float64) *ast.FloatLiteral {
	return &ast.FloatLiteral{Token: b.tok(strconv.FormatFloat(v, 'g', -1, 64)), Value: v}
}

func (b *astb) s(v string) *ast.StringLiteral {
	return &ast.StringLiteral{Token: b.tok(strconv.Quote(v)), Value: v}
}

func (b *astb) boolean(v bool) *ast.BooleanLiteral {
	lex := "false"
	if v {
		lex = "true"
	}
	return &ast.BooleanLiteral{Token: b.tok(lex), Value: v}
}

func (b *astb) unit() *ast.UnitLiteral {
	return &ast.UnitLiteral{Token: b.tok("()")}
}

func (b *astb) array(elems ...ast.Expression) *ast.ArrayLiteral {
	return &ast.ArrayLiteral{Token: b.tok("["), Elements: elems}
}

func (b *astb) record(pairs ...any) *ast.RecordLiteral {
	rl := &ast.RecordLiteral{Token: b.tok("{")}
	for i := 0; i < len(pairs); i += 2 {
		name := pairs[i].(string)
		rl.Fields = append(rl.Fields, &ast.RecordField{
			Token: b.tok(name),
			Name:  b.id(name),
			Value: pairs[i+1].(ast.Expression),
		})
	}
	return rl
}

func (b *astb) call(fn string, args ...ast.Expression) *ast.CallExpression {
	return &ast.CallExpression{Token: b.tok("("), Function: b.id(fn), Arguments: args}
}

func (b *astb) callT(fn string, targs []ast.Type, args ...ast.Expression) *ast.CallExpression {
	c := b.call(fn, args...)
	c.TypeArgs = targs
	return c
}

func (b *astb) callExpr(fn ast.Expression, args ...ast.Expression) *ast.CallExpression {
	return &ast.CallExpression{Token: b.tok("("), Function: fn, Arguments: args}
}

func (b *astb) infix(op string, l, r ast.Expression) *ast.InfixExpression {
	return &ast.InfixExpression{Token: b.tok(op), Left: l, Operator: op, Right: r}
}

func (b *astb) prefix(op string, r ast.Expression) *ast.PrefixExpression {
	return &ast.PrefixExpression{Token: b.tok(op), Operator: op, Right: r}
}

func (b *astb) member(l ast.Expression, field string) *ast.MemberExpression {
	return &ast.MemberExpression{Token: b.tok("."), Left: l, Member: b.id(field)}
}

func (b *astb) index(l, idx ast.Expression) *ast.IndexExpression {
	return &ast.IndexExpression{Token: b.tok("["), Left: l, Index: idx}
}

func (b *astb) ifExpr(cond ast.Expression, cons, alt *ast.BlockExpression) *ast.IfExpression {
	return &ast.IfExpression{Token: b.tok("if"), Condition: cond, Consequence: cons, Alternative: alt}
}

func (b *astb) isType(e ast.Expression, t ast.Type) *ast.TypeTestExpression {
	return &ast.TypeTestExpression{Token: b.tok("is"), Expression: e, Type: t}
}

func (b *astb) lambda(params []*ast.Parameter, ret ast.Type, stmts ...ast.Statement) *ast.FunctionLiteral {
	return &ast.FunctionLiteral{Token: b.tok("fun"), Parameters: params, ReturnType: ret, Body: b.block(stmts...)}
}

func (b *astb) match(scrut ast.Expression, arms ...*ast.MatchArm) *ast.MatchExpression {
	return &ast.MatchExpression{Token: b.tok("match"), Expression: scrut, Arms: arms}
}

func (b *astb) arm(p ast.Pattern, e ast.Expression) *ast.MatchArm {
	return &ast.MatchArm{Pattern: p, Expression: e}
}

func (b *astb) guardedArm(p ast.Pattern, guard, e ast.Expression) *ast.MatchArm {
	return &ast.MatchArm{Pattern: p, Guard: guard, Expression: e}
}

// --- patterns ---

func (b *astb) wild() *ast.WildcardPattern {
	return &ast.WildcardPattern{Token: b.tok("_")}
}

func (b *astb) idPat(name string) *ast.IdentifierPattern {
	return &ast.IdentifierPattern{Token: b.tok(name), Value: name}
}

func (b *astb) litPat(v ast.Expression) *ast.LiteralPattern {
	return &ast.LiteralPattern{Token: v.GetToken(), Value: v}
}

func (b *astb) ctorPat(name string, elems ...ast.Pattern) *ast.ConstructorPattern {
	return &ast.ConstructorPattern{Token: b.tok(name), Name: b.id(name), Elements: elems}
}

func (b *astb) recordPat(pairs ...any) *ast.RecordPattern {
	rp := &ast.RecordPattern{Token: b.tok("{")}
	for i := 0; i < len(pairs); i += 2 {
		name := pairs[i].(string)
		rp.Fields = append(rp.Fields, &ast.FieldPattern{
			Token:   b.tok(name),
			Name:    b.id(name),
			Pattern: pairs[i+1].(ast.Pattern),
		})
	}
	return rp
}

// --- analysis helpers ---

func analyzeUnit(t *testing.T, decls ...ast.Declaration) *Result {
	t.Helper()
	a := New(symbols.NewEmptySymbolTable(), Options{})
	return a.Analyze(&ast.Unit{Name: "test", File: "test.kite", Declarations: decls})
}

func analyzeUnitOpts(t *testing.T, opt Options, decls ...ast.Declaration) *Result {
	t.Helper()
	a := New(symbols.NewEmptySymbolTable(), opt)
	return a.Analyze(&ast.Unit{Name: "test", File: "test.kite", Declarations: decls})
}

// expectCode asserts at least one diagnostic with the given code and
// returns the first one.
func expectCode(t *testing.T, res *Result, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	if len(res.Diagnostics) == 0 {
		t.Fatalf("expected %s, got no diagnostics", code)
	}
	for _, d := range res.Diagnostics {
		if d.Code == code {
			return d
		}
	}
	var msgs []string
	for _, d := range res.Diagnostics {
		msgs = append(msgs, d.Error())
	}
	t.Fatalf("expected %s, got:\n%s", code, strings.Join(msgs, "\n"))
	return nil
}

// expectCodeContains asserts a diagnostic with the given code whose
// message contains substr.
func expectCodeContains(t *testing.T, res *Result, code diagnostics.ErrorCode, substr string) {
	t.Helper()
	d := expectCode(t, res, code)
	if !strings.Contains(d.Message, substr) {
		t.Errorf("expected %s message to contain %q, got: %s", code, substr, d.Message)
	}
}

// expectClean asserts analysis produced no diagnostics.
func expectClean(t *testing.T, res *Result) {
	t.Helper()
	if len(res.Diagnostics) > 0 {
		var msgs []string
		for _, d := range res.Diagnostics {
			msgs = append(msgs, d.Error())
		}
		t.Fatalf("expected no diagnostics, got:\n%s", strings.Join(msgs, "\n"))
	}
}
