package pipeline

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors so every stage's diagnostics are
		// collected in one run.
	}
	return ctx
}
