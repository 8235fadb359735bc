package decorate

import (
	"github.com/langforge/corelang/ast"
	"github.com/langforge/corelang/typesys"
)

// CoreSemanticChecker is the standard Decorate-stage processor spec.md
// §4.3 names: it marks tail positions and propagates value contexts
// from the root exactly once, then walks the tree invoking
// CheckSemantics on the way down and CheckSemantics2 on the way back
// up. Register one per Pipeline run via Add(Decorate, checker).
type CoreSemanticChecker struct {
	InitialTail    bool
	InitialContext *typesys.TypeRef
	Ctx            *ast.CheckContext

	started bool
}

// NewCoreSemanticChecker builds a checker that reports into ctx.
func NewCoreSemanticChecker(initialTail bool, initialContext *typesys.TypeRef, ctx *ast.CheckContext) *CoreSemanticChecker {
	return &CoreSemanticChecker{InitialTail: initialTail, InitialContext: initialContext, Ctx: ctx}
}

func (c *CoreSemanticChecker) Name() string { return "core-semantic-checker" }

func (c *CoreSemanticChecker) Visit(n *ast.Node, state *CompilerState) (bool, error) {
	if !c.started {
		c.started = true
		n.MarkTail(c.InitialTail)
		n.SetValueContext(c.InitialContext)
	}
	c.syncCtx(state)
	if err := n.CheckSemantics(c.Ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (c *CoreSemanticChecker) EndVisit(n *ast.Node, state *CompilerState) error {
	c.syncCtx(state)
	return n.CheckSemantics2(c.Ctx)
}

// syncCtx refreshes the check context from the active CompilerState:
// the sink may only be known at Run time (a Language builds its
// decorator pipeline before any particular compilation exists), and
// treat-warnings-as-errors follows Options overrides.
func (c *CoreSemanticChecker) syncCtx(state *CompilerState) {
	if state.Sink != nil {
		c.Ctx.Sink = state.Sink
	}
	c.Ctx.TreatWarningsAsErrors = state.TreatWarningsAsErrors
}
