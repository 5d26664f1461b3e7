package export

import (
	"github.com/kitelang/kite/internal/pipeline"
)

// Processor is the pipeline stage that writes a unit's surface after
// a clean analysis. With no ExportPath set, or with diagnostics
// already recorded, the context passes through untouched.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx == nil || ctx.ExportPath == "" || ctx.Unit == nil || ctx.HasErrors() {
		return ctx
	}
	f, err := Build(ctx.Unit, ctx.Table, ctx.Specialized)
	if err != nil {
		ctx.ExportErr = err
		return ctx
	}
	ctx.ExportErr = Write(ctx.ExportPath, f)
	return ctx
}
