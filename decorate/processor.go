package decorate

import "github.com/langforge/corelang/ast"

// StageProcessor is the common handle Pipeline stores per stage;
// concrete processors additionally implement PrefixProcessor or
// PrefixVisitor (spec.md §4.3).
type StageProcessor interface {
	Name() string
}

// PrefixProcessor may replace or delete the current node before
// descending into its (possibly new) children. Process returns the
// node to keep in n's place — nil means "remove n from its parent" —
// and the error, if any, that should halt the whole pipeline run.
type PrefixProcessor interface {
	StageProcessor
	Process(n *ast.Node, state *CompilerState) (*ast.Node, error)
}

// PrefixVisitor performs a read-only traversal: Visit runs on the way
// down and reports whether to descend into n's children; EndVisit runs
// on the way back up regardless of what Visit returned.
type PrefixVisitor interface {
	StageProcessor
	Visit(n *ast.Node, state *CompilerState) (descend bool, err error)
	EndVisit(n *ast.Node, state *CompilerState) error
}
