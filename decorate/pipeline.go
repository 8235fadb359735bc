package decorate

import (
	"fmt"

	"github.com/langforge/corelang/ast"
)

// Pipeline orchestrates the four decoration stages, the way go-dws's
// semantic.PassManager runs an ordered list of passes over a program —
// generalized here to a tree-rewriting walk (PrefixProcessor) alongside
// the read-only walk (PrefixVisitor), and split across stages instead
// of one flat pass list.
type Pipeline struct {
	processors map[Stage][]StageProcessor
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{processors: make(map[Stage][]StageProcessor)}
}

// Add registers proc to run, in insertion order, during stage.
func (p *Pipeline) Add(stage Stage, proc StageProcessor) {
	p.processors[stage] = append(p.processors[stage], proc)
}

// Processors returns the processors registered for stage, in run order.
func (p *Pipeline) Processors(stage Stage) []StageProcessor {
	return p.processors[stage]
}

// Run executes every stage in order against root, returning the
// possibly-replaced root. Execution stops early, without error, the
// moment state.Sink records a critical (pipeline-halting) diagnostic
// (spec.md §4.3's "parser-level exceptions ... reported as
// InternalCompilerError" halts further stages the same way).
func (p *Pipeline) Run(root *ast.Node, state *CompilerState) (*ast.Node, error) {
	stack := NewStateStack(state)
	for _, stage := range stageOrder {
		for _, proc := range p.processors[stage] {
			switch pr := proc.(type) {
			case PrefixProcessor:
				newRoot, err := p.walkProcessor(root, stack, pr)
				if err != nil {
					return root, err
				}
				if newRoot == nil {
					return root, fmt.Errorf("decorate: processor %q deleted the tree root", pr.Name())
				}
				root = newRoot
			case PrefixVisitor:
				if err := p.walkVisitor(root, stack, pr); err != nil {
					return root, err
				}
			default:
				return root, fmt.Errorf("decorate: processor %q implements neither PrefixProcessor nor PrefixVisitor", proc.Name())
			}
			if state.Sink.HasCriticalErrors() {
				return root, nil
			}
		}
	}
	return root, nil
}

// withOptionsScope pushes n's overrides (if n is an Options node) and
// returns a popper that must be deferred immediately, guaranteeing the
// pop runs on every exit path including an early error return.
func withOptionsScope(n *ast.Node, stack *StateStack) func() {
	if n.Kind() != ast.KindOptions {
		return func() {}
	}
	return stack.Push(n.OptionsOverrides())
}

func (p *Pipeline) walkProcessor(n *ast.Node, stack *StateStack, proc PrefixProcessor) (*ast.Node, error) {
	replacement, err := proc.Process(n, stack.Current())
	if err != nil {
		return n, err
	}
	if replacement == nil {
		return nil, nil
	}

	pop := withOptionsScope(replacement, stack)
	defer pop()

	// Snapshot before recursing: child mutations during the loop must
	// not perturb the set of children being visited.
	children := append([]*ast.Node(nil), replacement.Children()...)
	for _, child := range children {
		newChild, err := p.walkProcessor(child, stack, proc)
		if err != nil {
			return replacement, err
		}
		switch {
		case newChild == nil:
			replacement.RemoveChild(child)
		case newChild != child:
			replacement.Replace(child, newChild)
		}
	}
	return replacement, nil
}

func (p *Pipeline) walkVisitor(n *ast.Node, stack *StateStack, visitor PrefixVisitor) error {
	descend, err := visitor.Visit(n, stack.Current())
	if err != nil {
		return err
	}

	pop := withOptionsScope(n, stack)
	defer pop()

	if descend {
		for _, child := range n.Children() {
			if err := p.walkVisitor(child, stack, visitor); err != nil {
				return err
			}
		}
	}
	return visitor.EndVisit(n, stack.Current())
}
