package analyzer

import (
	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/diagnostics"
	"github.com/kitelang/kite/internal/mono"
	"github.com/kitelang/kite/internal/patterns"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/typesystem"
)

// Result carries everything analysis learned about one unit. All of
// it lives in side maps keyed by AST nodes; the tree itself is never
// mutated, so re-analyzing the same unit from a fresh table produces
// the same result.
type Result struct {
	Unit *ast.Unit

	// Types records the resolved type of every checked expression.
	Types map[ast.Expression]typesystem.Type

	// Bindings records the function each resolved operator or
	// desugared call site dispatches to.
	Bindings map[ast.Node]symbols.FunctionRef

	// Tails records the tail classification of every call site.
	Tails map[*ast.CallExpression]ast.TailClass

	// Decisions records the compiled decision tree and the
	// exhaustiveness verdict per match expression.
	Decisions map[*ast.MatchExpression]patterns.Analysis

	// GenericCalls records the callee and type arguments of every
	// generic dispatch site, as seen inside the enclosing
	// declaration. The instantiation engine reads this to follow
	// calls transitively.
	GenericCalls map[ast.Node]mono.CallSite

	// Specialized holds the materialized instantiations, in
	// materialization order.
	Specialized      []*mono.SpecializedSymbol
	SpecializedTypes []*mono.SpecializedType

	Diagnostics []*diagnostics.DiagnosticError
}

func newResult(unit *ast.Unit) *Result {
	return &Result{
		Unit:         unit,
		Types:        make(map[ast.Expression]typesystem.Type),
		Bindings:     make(map[ast.Node]symbols.FunctionRef),
		Tails:        make(map[*ast.CallExpression]ast.TailClass),
		Decisions:    make(map[*ast.MatchExpression]patterns.Analysis),
		GenericCalls: make(map[ast.Node]mono.CallSite),
	}
}

// TypeOf returns the resolved type of an expression.
func (r *Result) TypeOf(e ast.Expression) (typesystem.Type, bool) {
	t, ok := r.Types[e]
	return t, ok
}

// Valid reports whether the unit may proceed to code generation. Any
// diagnostic invalidates the unit.
func (r *Result) Valid() bool {
	return len(r.Diagnostics) == 0
}
