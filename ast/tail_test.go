package ast

import (
	"testing"

	"github.com/langforge/corelang/diag"
	"github.com/langforge/corelang/typesys"
)

func TestMarkTailBlockOnlyLastChild(t *testing.T) {
	a, b, c := lit(1), lit(2), lit(3)
	block := NewBlock(diag.Position{})
	block.AppendChild(a)
	block.AppendChild(b)
	block.AppendChild(c)

	block.MarkTail(true)

	if a.IsTail() || b.IsTail() {
		t.Error("only the last statement of a Block should be tail-true")
	}
	if !c.IsTail() {
		t.Error("last statement of a tail Block should be tail-true")
	}
	if !block.IsTail() {
		t.Error("Block itself should record the incoming tail flag")
	}
}

func TestMarkTailIfPropagatesToBothBranches(t *testing.T) {
	cond, then, els := lit(1), lit(2), lit(3)
	ifNode := NewIf(diag.Position{}, cond, then, els)

	ifNode.MarkTail(true)

	if cond.IsTail() {
		t.Error("If condition is never a tail position")
	}
	if !then.IsTail() || !els.IsTail() {
		t.Error("both If branches should inherit the incoming tail flag")
	}
}

func TestMarkTailIfFalsePropagatesFalse(t *testing.T) {
	cond, then, els := lit(1), lit(2), lit(3)
	ifNode := NewIf(diag.Position{}, cond, then, els)

	ifNode.MarkTail(false)

	if then.IsTail() || els.IsTail() {
		t.Error("a non-tail If should not mark its branches tail-true")
	}
}

func TestMarkTailFunctionBodyAlwaysTail(t *testing.T) {
	param := NewParameter(diag.Position{}, "x", ParamNormal, nil)
	body := NewBlock(diag.Position{})
	body.AppendChild(lit(1))
	fn := NewFunction(diag.Position{}, "f", []*Node{param}, body, false)

	fn.MarkTail(false)

	if param.IsTail() {
		t.Error("function parameters are never tail positions")
	}
	if !body.IsTail() {
		t.Error("a function body always starts a fresh tail frame, regardless of the incoming flag")
	}
	if fn.IsTail() {
		t.Error("the Function node itself should still record the incoming (false) tail flag")
	}
}

func TestMarkTailOptionsPassesThrough(t *testing.T) {
	body := NewBlock(diag.Position{})
	body.AppendChild(lit(1))
	opts := NewOptions(diag.Position{}, map[string]interface{}{"checked": true}, body)

	opts.MarkTail(true)
	if !body.IsTail() {
		t.Error("Options should pass its incoming tail flag through to its body unchanged")
	}

	opts.MarkTail(false)
	if body.IsTail() {
		t.Error("Options should pass a false tail flag through too")
	}
}

func TestMarkTailCastPropagatesToOperand(t *testing.T) {
	operand := lit(1)
	cast := NewCast(diag.Position{}, CastSafe, typesys.Long, operand)

	cast.MarkTail(true)
	if !operand.IsTail() {
		t.Error("the cast's operand is its result subtree and should inherit tail-true")
	}

	cast.MarkTail(false)
	if operand.IsTail() {
		t.Error("a false tail flag should propagate to the operand too")
	}
}

func TestMarkTailDefaultMarksAllChildrenFalse(t *testing.T) {
	lhs, rhs := NewVariable(diag.Position{}, "x"), lit(5)
	assign := NewAssign(diag.Position{}, lhs, rhs, true)

	assign.MarkTail(true)

	if lhs.IsTail() || rhs.IsTail() {
		t.Error("Assign has no tail-chain continuation; both children should be tail-false")
	}
}
