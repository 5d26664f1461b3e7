// Package analyzer implements semantic analysis for one compilation
// unit: name resolution, type and kind checking, interface dispatch,
// pattern analysis, tail classification and the generic instantiation
// fixed point.
//
// Analysis makes four passes over the unit's declarations so that
// declaration order never matters: types first, then function
// headers, then implementations, then bodies. The instantiation
// engine runs last, once every generic dispatch site is recorded.
package analyzer

import (
	"fmt"
	"strconv"

	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/diagnostics"
	"github.com/kitelang/kite/internal/mono"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/token"
	"github.com/kitelang/kite/internal/typesystem"
)

// Mode selects one of the four declaration passes.
type Mode int

const (
	// PassTypes registers ADTs, aliases, their constructors and
	// interface declarations.
	PassTypes Mode = iota
	// PassHeaders registers function signatures.
	PassHeaders
	// PassImpls registers implementations, derived and declared.
	PassImpls
	// PassBodies checks function bodies.
	PassBodies
)

type Options struct {
	MaxDiagnostics int // <=0 means unlimited
	DepthBound     int // generic instantiation bound; <=0 means the engine default
	NoPrelude      bool
}

// Analyzer checks one unit against a symbol table. The table may be
// shared with previously loaded library units; this unit's
// declarations are added to it.
type Analyzer struct {
	table *symbols.SymbolTable
	opt   Options

	diags *diagnostics.List
	res   *Result
	file  string

	// roots are the concrete instantiations the unit demands
	// directly, in source order. The engine starts from these and
	// follows recorded dispatch sites to the fixed point.
	roots []instantiation

	// skip marks declarations that lost a name collision; their
	// bodies are not processed further.
	skip map[ast.Declaration]bool

	fresh int
}

// instantiation is one engine root: a generic symbol applied to
// concrete arguments, or (with an empty callee) a concrete type whose
// generic ADT instantiations must materialize.
type instantiation struct {
	callee string
	args   []typesystem.Type
	typ    typesystem.Type
	tok    token.Token
}

func New(table *symbols.SymbolTable, opt Options) *Analyzer {
	if table == nil {
		table = symbols.NewEmptySymbolTable()
	}
	return &Analyzer{table: table, opt: opt}
}

// Table returns the symbol table the analyzer resolves against.
func (a *Analyzer) Table() *symbols.SymbolTable {
	return a.table
}

// Analyze runs the four declaration passes, classifies tails, then
// drains the instantiation worklist. The result is complete even when
// diagnostics were recorded; Valid reports whether it may be used for
// code generation.
func (a *Analyzer) Analyze(unit *ast.Unit) *Result {
	a.diags = diagnostics.NewList(a.opt.MaxDiagnostics)
	a.res = newResult(unit)
	a.roots = nil
	a.skip = make(map[ast.Declaration]bool)
	a.file = unit.File

	if !a.opt.NoPrelude {
		RegisterPrelude(a.table)
	}

	a.runPass(unit, PassTypes)
	a.runPass(unit, PassHeaders)
	a.runPass(unit, PassImpls)
	a.runPass(unit, PassBodies)

	for _, decl := range unit.Declarations {
		if fd, ok := decl.(*ast.FunctionDeclaration); ok && !a.skip[decl] {
			classifyTails(fd, a.res.Tails)
		}
	}

	engine := mono.NewEngine(a.table, a.res.GenericCalls, a.diags, mono.Options{DepthBound: a.opt.DepthBound})
	for _, r := range a.roots {
		if r.callee != "" {
			engine.Ensure(r.callee, r.args, r.tok)
		} else {
			engine.EnsureType(r.typ, r.tok)
		}
	}
	engine.Run()
	a.res.Specialized = engine.Specialized()
	a.res.SpecializedTypes = engine.SpecializedTypes()

	a.res.Diagnostics = a.diags.Items()
	for _, d := range a.res.Diagnostics {
		if d.File == "" {
			d.File = a.file
		}
	}
	return a.res
}

// runPass dispatches every declaration the pass cares about, in
// source order. PassTypes registers ADT shells first so recursive and
// mutually recursive payloads resolve regardless of order.
func (a *Analyzer) runPass(unit *ast.Unit, mode Mode) {
	if mode == PassTypes {
		for _, decl := range unit.Declarations {
			if td, ok := decl.(*ast.TypeDeclaration); ok && !td.IsAlias {
				a.registerADTShell(td)
			}
		}
		for _, decl := range unit.Declarations {
			if id, ok := decl.(*ast.InterfaceDeclaration); ok {
				a.declareInterface(id)
			}
		}
		for _, decl := range unit.Declarations {
			if td, ok := decl.(*ast.TypeDeclaration); ok {
				a.fillType(td)
			}
		}
		return
	}

	for _, decl := range unit.Declarations {
		if a.skip[decl] {
			continue
		}
		switch d := decl.(type) {
		case *ast.TypeDeclaration:
			if mode == PassImpls && len(d.Derives) > 0 {
				a.registerDerived(d)
			}
		case *ast.ImplementationDeclaration:
			if mode == PassImpls {
				a.declareImplementation(d)
			}
		case *ast.FunctionDeclaration:
			switch mode {
			case PassHeaders:
				a.declareFunction(d)
			case PassBodies:
				a.checkFunction(d)
			}
		}
	}
}

func (a *Analyzer) report(code diagnostics.ErrorCode, tok token.Token, msg string) *diagnostics.DiagnosticError {
	d := diagnostics.NewError(code, tok, msg)
	d.File = a.file
	a.diags.Add(d)
	return d
}

func (a *Analyzer) reportf(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) *diagnostics.DiagnosticError {
	return a.report(code, tok, fmt.Sprintf(format, args...))
}

// freshVar mints a type variable no declaration can name. It stands
// in for types that failed to resolve, so checking continues without
// a cascade of follow-up mismatches.
func (a *Analyzer) freshVar() typesystem.TVar {
	a.fresh++
	return typesystem.TVar{Name: "t" + strconv.Itoa(a.fresh)}
}

// nextSuffix returns a unique suffix for renaming a generic
// declaration's type parameters at one use site.
func (a *Analyzer) nextSuffix() string {
	a.fresh++
	return strconv.Itoa(a.fresh)
}
