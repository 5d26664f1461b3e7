package analyzer

import (
	"github.com/kitelang/kite/internal/pipeline"
	"github.com/kitelang/kite/internal/symbols"
)

// Processor runs semantic analysis as a pipeline stage: it checks the
// context's unit against the shared symbol table and publishes the
// result's side maps for later stages.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Unit == nil {
		return ctx
	}
	if ctx.Table == nil {
		ctx.Table = symbols.NewEmptySymbolTable()
	}
	if ctx.Unit.File == "" {
		ctx.Unit.File = ctx.File
	}

	a := New(ctx.Table, Options{
		MaxDiagnostics: ctx.MaxDiagnostics,
		DepthBound:     ctx.DepthBound,
		NoPrelude:      ctx.NoPrelude,
	})
	res := a.Analyze(ctx.Unit)

	ctx.Types = res.Types
	ctx.Bindings = res.Bindings
	ctx.Tails = res.Tails
	ctx.Decisions = res.Decisions
	ctx.Specialized = res.Specialized
	ctx.SpecializedTypes = res.SpecializedTypes
	ctx.Errors = append(ctx.Errors, res.Diagnostics...)
	return ctx
}
