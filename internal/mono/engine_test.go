package mono

import (
	"strings"
	"testing"

	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/diagnostics"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/token"
	"github.com/kitelang/kite/internal/typesystem"
)

func site(line int) token.Token {
	return token.New("call", line, 1)
}

// genericFunc registers a generic function symbol with a body holding
// one call expression, and returns that call node so tests can record
// a CallSite for it.
func genericFunc(table *symbols.SymbolTable, name string, params []symbols.ConstrainedParam, sig typesystem.TFunc) *ast.CallExpression {
	call := &ast.CallExpression{
		Token:    token.New("(", 10, 5),
		Function: &ast.Identifier{Token: token.New(name, 10, 1), Value: name},
	}
	decl := &ast.FunctionDeclaration{
		Token: token.New("fun", 9, 1),
		Name:  &ast.Identifier{Token: token.New(name, 9, 5), Value: name},
		Body: &ast.BlockExpression{
			Token:      token.New("{", 9, 20),
			Statements: []ast.Statement{&ast.ExpressionStatement{Token: call.Token, Expression: call}},
		},
	}
	table.DefineSymbol(symbols.Symbol{
		Name:           name,
		Type:           sig,
		TypeParams:     params,
		DefinitionNode: decl,
	})
	return call
}

func identitySig(param string) typesystem.TFunc {
	return typesystem.TFunc{
		Params:     []typesystem.Type{typesystem.TVar{Name: param}},
		ReturnType: typesystem.TVar{Name: param},
	}
}

func TestEnsureIsMemoized(t *testing.T) {
	table := symbols.NewEmptySymbolTable()
	genericFunc(table, "id", []symbols.ConstrainedParam{{Name: "T"}}, identitySig("T"))

	diags := diagnostics.NewList(0)
	eng := NewEngine(table, nil, diags, Options{})

	first := eng.Ensure("id", []typesystem.Type{typesystem.IntType}, site(1))
	if first == nil {
		t.Fatalf("Ensure returned nil")
	}

	// 1. The same key returns the same handle
	second := eng.Ensure("id", []typesystem.Type{typesystem.IntType}, site(2))
	if second != first {
		t.Errorf("repeated Ensure returned a new handle")
	}
	if len(eng.Specialized()) != 1 {
		t.Errorf("Specialized() has %d entries, want 1", len(eng.Specialized()))
	}

	// 2. Different arguments materialize separately
	other := eng.Ensure("id", []typesystem.Type{typesystem.StringType}, site(3))
	if other == nil || other == first {
		t.Fatalf("distinct arguments should materialize a distinct symbol")
	}
	if len(eng.Specialized()) != 2 {
		t.Errorf("Specialized() has %d entries, want 2", len(eng.Specialized()))
	}

	// 3. Names and substitutions are per instantiation
	if first.Name != "id$Int" || other.Name != "id$String" {
		t.Errorf("names = %s, %s", first.Name, other.Name)
	}
	if got := first.Sig.String(); got != "(Int) -> Int" {
		t.Errorf("specialized signature = %s, want (Int) -> Int", got)
	}
	if first.ID == other.ID {
		t.Errorf("specializations share an ID")
	}
	if diags.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", diags.Items())
	}
}

func TestRunReachesTransitiveFixedPoint(t *testing.T) {
	table := symbols.NewEmptySymbolTable()
	calls := map[ast.Node]CallSite{}

	// wrap<T> calls id<Array<T>> in its body.
	innerCall := genericFunc(table, "wrap", []symbols.ConstrainedParam{{Name: "T"}}, identitySig("T"))
	genericFunc(table, "id", []symbols.ConstrainedParam{{Name: "U"}}, identitySig("U"))
	calls[innerCall] = CallSite{
		Callee: "id",
		Args:   []typesystem.Type{typesystem.TArray{Elem: typesystem.TVar{Name: "T"}}},
	}

	diags := diagnostics.NewList(0)
	eng := NewEngine(table, calls, diags, Options{})

	spec := eng.Ensure("wrap", []typesystem.Type{typesystem.IntType}, site(1))
	if spec == nil {
		t.Fatalf("Ensure(wrap, Int) returned nil")
	}
	eng.Run()

	// 1. The transitive instantiation exists
	inner, ok := eng.Lookup(NewKey("id", []typesystem.Type{typesystem.TArray{Elem: typesystem.IntType}}))
	if !ok {
		t.Fatalf("id$Array<Int> was not materialized")
	}
	if inner.Name != "id$Array<Int>" {
		t.Errorf("inner name = %s", inner.Name)
	}

	// 2. The call inside wrap's body is rewritten per instantiation
	if got := spec.Rewrites[innerCall]; got != "id$Array<Int>" {
		t.Errorf("rewrite = %q, want id$Array<Int>", got)
	}

	// 3. A second root instantiation keeps its own rewrite target
	specStr := eng.Ensure("wrap", []typesystem.Type{typesystem.StringType}, site(2))
	eng.Run()
	if got := specStr.Rewrites[innerCall]; got != "id$Array<String>" {
		t.Errorf("rewrite = %q, want id$Array<String>", got)
	}
	if diags.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", diags.Items())
	}
}

func TestConstraintFailureReportsAtCallSite(t *testing.T) {
	table := symbols.NewEmptySymbolTable()
	genericFunc(table, "min",
		[]symbols.ConstrainedParam{{Name: "T", Interfaces: []string{"Ord"}}},
		identitySig("T"))

	diags := diagnostics.NewList(0)
	eng := NewEngine(table, nil, diags, Options{})

	at := token.New("min", 42, 7)
	if spec := eng.Ensure("min", []typesystem.Type{typesystem.FloatType}, at); spec != nil {
		t.Fatalf("constraint failure must not materialize a symbol")
	}

	// 1. The diagnostic lands on the requesting call site
	items := diags.Items()
	if len(items) != 1 {
		t.Fatalf("diagnostics = %d, want 1", len(items))
	}
	d := items[0]
	if d.Code != diagnostics.ErrMissingImplementation {
		t.Errorf("code = %s, want %s", d.Code, diagnostics.ErrMissingImplementation)
	}
	if d.Token.Line != 42 || d.Token.Column != 7 {
		t.Errorf("token = %s, want 42:7", d.Token.Pos())
	}
	if !strings.Contains(d.Message, "Ord") || !strings.Contains(d.Message, "Float") {
		t.Errorf("message = %q", d.Message)
	}

	// 2. The failure is not cached: once the implementation exists,
	// the same request succeeds
	err := table.RegisterImplementation(&symbols.Implementation{
		Interface: "Ord",
		Head:      "Float",
		Bindings:  []symbols.MethodBinding{{Method: "compare", Ref: symbols.FunctionRef{Name: "compareFloat", Builtin: true}}},
	})
	if err != nil {
		t.Fatalf("RegisterImplementation: %v", err)
	}
	if spec := eng.Ensure("min", []typesystem.Type{typesystem.FloatType}, at); spec == nil {
		t.Fatalf("Ensure should succeed after the implementation is registered")
	}
}

func TestGrowingChainTripsDepthBound(t *testing.T) {
	table := symbols.NewEmptySymbolTable()
	calls := map[ast.Node]CallSite{}

	// grow<T> calls grow<Array<T>>: every step is a new key.
	selfCall := genericFunc(table, "grow", []symbols.ConstrainedParam{{Name: "T"}}, identitySig("T"))
	calls[selfCall] = CallSite{
		Callee: "grow",
		Args:   []typesystem.Type{typesystem.TArray{Elem: typesystem.TVar{Name: "T"}}},
	}

	diags := diagnostics.NewList(0)
	eng := NewEngine(table, calls, diags, Options{DepthBound: 8})

	eng.Ensure("grow", []typesystem.Type{typesystem.IntType}, site(1))
	eng.Run()

	// 1. The chain stops at the bound with one overflow diagnostic
	var overflow *diagnostics.DiagnosticError
	for _, d := range diags.Items() {
		if d.Code == diagnostics.ErrInstantiationOverflow {
			overflow = d
			break
		}
	}
	if overflow == nil {
		t.Fatalf("no overflow diagnostic, got %v", diags.Items())
	}
	if overflow.Bound != 8 {
		t.Errorf("Bound = %d, want 8", overflow.Bound)
	}
	if len(eng.Specialized()) != 8 {
		t.Errorf("materialized %d specializations, want 8", len(eng.Specialized()))
	}

	// 2. Plain self-recursion with the same arguments is fine: the
	// key repeats, so the cache terminates the chain.
	same := genericFunc(table, "loop", []symbols.ConstrainedParam{{Name: "T"}}, identitySig("T"))
	calls[same] = CallSite{Callee: "loop", Args: []typesystem.Type{typesystem.TVar{Name: "T"}}}
	before := diags.Len()
	eng.Ensure("loop", []typesystem.Type{typesystem.IntType}, site(2))
	eng.Run()
	if diags.Len() != before {
		t.Errorf("self-recursion at a fixed key must not overflow: %v", diags.Items())
	}
}

func TestEnsureTypeHandlesRecursiveADTs(t *testing.T) {
	table := symbols.NewEmptySymbolTable()

	// List<T> = Cons(T, List<T>) | Nil
	table.DefineADT(&symbols.ADTInfo{
		Name:   "List",
		Params: []symbols.ConstrainedParam{{Name: "T"}},
		Variants: []symbols.Variant{
			{Tag: "Cons", Payload: []typesystem.Type{
				typesystem.TVar{Name: "T"},
				typesystem.TADT{Name: "List", Args: []typesystem.Type{typesystem.TVar{Name: "T"}}},
			}},
			{Tag: "Nil"},
		},
	})
	// Nest<T> = Deep(Nest<Array<T>>) | Done
	table.DefineADT(&symbols.ADTInfo{
		Name:   "Nest",
		Params: []symbols.ConstrainedParam{{Name: "T"}},
		Variants: []symbols.Variant{
			{Tag: "Deep", Payload: []typesystem.Type{
				typesystem.TADT{Name: "Nest", Args: []typesystem.Type{typesystem.TArray{Elem: typesystem.TVar{Name: "T"}}}},
			}},
			{Tag: "Done"},
		},
	})

	diags := diagnostics.NewList(0)
	eng := NewEngine(table, nil, diags, Options{DepthBound: 8})

	// 1. A self-referential instantiation terminates via the cache
	eng.EnsureType(typesystem.TADT{Name: "List", Args: []typesystem.Type{typesystem.IntType}}, site(1))
	if diags.HasErrors() {
		t.Fatalf("recursive List<Int> should not overflow: %v", diags.Items())
	}
	types := eng.SpecializedTypes()
	if len(types) != 1 || types[0].Key.String() != "List<Int>" {
		t.Fatalf("types = %v, want exactly List<Int>", types)
	}

	// 2. The payloads are substituted to concrete types
	cons := types[0].Variants[0]
	if cons.Tag != "Cons" || cons.Payload[0].String() != "Int" || cons.Payload[1].String() != "List<Int>" {
		t.Errorf("Cons payload = %v", cons.Payload)
	}

	// 3. A growing instantiation chain trips the bound
	eng.EnsureType(typesystem.TADT{Name: "Nest", Args: []typesystem.Type{typesystem.IntType}}, site(2))
	found := false
	for _, d := range diags.Items() {
		if d.Code == diagnostics.ErrInstantiationOverflow {
			found = true
		}
	}
	if !found {
		t.Errorf("Nest<Int> should overflow, diagnostics: %v", diags.Items())
	}
}

func TestHigherKindedArgumentChecks(t *testing.T) {
	table := symbols.NewEmptySymbolTable()
	table.DefineADT(&symbols.ADTInfo{
		Name:   "Option",
		Params: []symbols.ConstrainedParam{{Name: "T"}},
		Variants: []symbols.Variant{
			{Tag: "Some", Payload: []typesystem.Type{typesystem.TVar{Name: "T"}}},
			{Tag: "None"},
		},
	})
	table.DefineInterface(&symbols.InterfaceInfo{
		Name:  "Functor",
		Param: symbols.ConstrainedParam{Name: "F", Kind: typesystem.MakeArrow(typesystem.Star, typesystem.Star)},
	})
	if err := table.RegisterImplementation(&symbols.Implementation{Interface: "Functor", Head: "Option"}); err != nil {
		t.Fatalf("RegisterImplementation: %v", err)
	}

	arrow := typesystem.MakeArrow(typesystem.Star, typesystem.Star)
	genericFunc(table, "lift",
		[]symbols.ConstrainedParam{
			{Name: "F", Kind: arrow, Interfaces: []string{"Functor"}},
			{Name: "A"},
		},
		typesystem.TFunc{
			Params: []typesystem.Type{typesystem.TVar{Name: "A"}},
			ReturnType: typesystem.TApp{
				Head: typesystem.TConVar{Name: "F", KindVal: arrow},
				Args: []typesystem.Type{typesystem.TVar{Name: "A"}},
			},
		})

	diags := diagnostics.NewList(0)
	eng := NewEngine(table, nil, diags, Options{})

	// 1. A bare constructor head of the right kind instantiates, and
	// the applied signature collapses to the concrete type
	spec := eng.Ensure("lift", []typesystem.Type{
		typesystem.TADT{Name: "Option"},
		typesystem.IntType,
	}, site(1))
	if spec == nil {
		t.Fatalf("Ensure(lift, Option, Int) failed: %v", diags.Items())
	}
	if got := spec.Sig.String(); got != "(Int) -> Option<Int>" {
		t.Errorf("signature = %s, want (Int) -> Option<Int>", got)
	}
	if spec.Name != "lift$Option$Int" {
		t.Errorf("name = %s", spec.Name)
	}

	// 2. A star-kinded argument for a constructor parameter is a kind
	// error at the call site
	if s := eng.Ensure("lift", []typesystem.Type{typesystem.IntType, typesystem.IntType}, site(2)); s != nil {
		t.Fatalf("Int should not satisfy a constructor parameter")
	}
	last := diags.Items()[diags.Len()-1]
	if last.Code != diagnostics.ErrKindMismatch {
		t.Errorf("code = %s, want %s", last.Code, diagnostics.ErrKindMismatch)
	}
}
