package decorate

import (
	"testing"

	"github.com/langforge/corelang/ast"
	"github.com/langforge/corelang/diag"
	"github.com/langforge/corelang/operator"
	"github.com/langforge/corelang/typesys"
)

func intLit(v int64) *ast.Node {
	return ast.NewLiteral(diag.Position{}, v, typesys.Int)
}

func TestConstantFolderFoldsNestedArithmeticBottomUp(t *testing.T) {
	inner := ast.NewOp(diag.Position{}, operator.Add, intLit(1), intLit(2))
	outer := ast.NewOp(diag.Position{}, operator.Add, inner, intLit(3))

	state := &CompilerState{Sink: diag.NewSink()}
	folder := &ConstantFolder{}

	result, err := folder.Process(outer, state)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if result.Kind() != ast.KindLiteral {
		t.Fatalf("result.Kind() = %v, want Literal", result.Kind())
	}
	if result.LiteralValue() != int64(6) {
		t.Errorf("result.LiteralValue() = %v, want 6", result.LiteralValue())
	}
}

func TestConstantFolderLeavesUnfoldableNodeAlone(t *testing.T) {
	op := ast.NewOp(diag.Position{}, operator.Add, NewVarRef("x"), intLit(1))

	state := &CompilerState{Sink: diag.NewSink()}
	folder := &ConstantFolder{}

	result, err := folder.Process(op, state)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if result.Kind() != ast.KindOp {
		t.Errorf("result.Kind() = %v, want Op unchanged since one operand is not a Literal", result.Kind())
	}
}

func TestConstantFolderSkipsOnOverflowUnderCheckedNoPromote(t *testing.T) {
	op := ast.NewOp(diag.Position{}, operator.Add, intLit(2000000000), intLit(2000000000))

	state := &CompilerState{Sink: diag.NewSink(), Checked: true, PromoteOnOverflow: false}
	folder := &ConstantFolder{}

	result, err := folder.Process(op, state)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if result.Kind() != ast.KindOp {
		t.Error("an overflowing fold under checked/no-promote should be left for runtime evaluation")
	}
}

// NewVarRef is a tiny local helper so this test file doesn't need to
// depend on ast's internal scope-resolution machinery just to build a
// non-Literal leaf node.
func NewVarRef(name string) *ast.Node {
	return ast.NewVariable(diag.Position{}, name)
}
