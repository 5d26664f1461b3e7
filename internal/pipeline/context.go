package pipeline

import (
	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/diagnostics"
	"github.com/kitelang/kite/internal/mono"
	"github.com/kitelang/kite/internal/patterns"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/typesystem"
)

// Context carries one compilation unit through the pipeline. Stages
// fill in what they produce and later stages read it; diagnostics
// accumulate across stages.
type Context struct {
	// Inputs.
	Unit  *ast.Unit
	File  string
	Table *symbols.SymbolTable

	// Knobs, filled from configuration by the driver.
	DepthBound     int
	MaxDiagnostics int
	NoPrelude      bool

	// Analysis outputs.
	Types            map[ast.Expression]typesystem.Type
	Bindings         map[ast.Node]symbols.FunctionRef
	Tails            map[*ast.CallExpression]ast.TailClass
	Decisions        map[*ast.MatchExpression]patterns.Analysis
	Specialized      []*mono.SpecializedSymbol
	SpecializedTypes []*mono.SpecializedType

	// Export output, for stages that write artifacts. ExportErr is an
	// I/O failure of the writing stage, distinct from diagnostics.
	ExportPath string
	ExportErr  error

	Errors []*diagnostics.DiagnosticError
}

// HasErrors reports whether any stage recorded a diagnostic.
func (c *Context) HasErrors() bool {
	return len(c.Errors) > 0
}
