package ast

import (
	"testing"

	"github.com/langforge/corelang/diag"
)

func assertLinks(t *testing.T, parent *Node) {
	t.Helper()
	items := parent.Children()
	for i, child := range items {
		if child.Parent() != parent {
			t.Errorf("child %d: Parent() = %v, want %v", i, child.Parent(), parent)
		}
		if child.Index() != i {
			t.Errorf("child %d: Index() = %d, want %d", i, child.Index(), i)
		}
		if i > 0 && child.PrevSibling() != items[i-1] {
			t.Errorf("child %d: PrevSibling() mismatch", i)
		}
		if i < len(items)-1 && child.NextSibling() != items[i+1] {
			t.Errorf("child %d: NextSibling() mismatch", i)
		}
	}
}

func lit(v any) *Node {
	return NewLiteral(diag.Position{}, v, nil)
}

func TestChildListInsertRemoveReplaceMaintainsLinks(t *testing.T) {
	block := NewBlock(diag.Position{})
	block.AppendChild(lit(1))
	block.AppendChild(lit(2))
	block.AppendChild(lit(3))
	assertLinks(t, block)

	block.InsertChild(1, lit(99))
	assertLinks(t, block)
	if len(block.Children()) != 4 {
		t.Fatalf("len(Children()) = %d, want 4", len(block.Children()))
	}

	removed := block.RemoveChild(block.Children()[0])
	assertLinks(t, block)
	if removed.Parent() != nil || removed.Index() != -1 {
		t.Errorf("removed node still carries parent/index: parent=%v index=%d", removed.Parent(), removed.Index())
	}

	old := block.Children()[0]
	replacement := lit(42)
	block.Replace(old, replacement)
	assertLinks(t, block)
	if block.Children()[0] != replacement {
		t.Error("Replace did not swap in the new node at the old index")
	}
	if old.Parent() != nil {
		t.Error("Replace did not clear the old node's parent")
	}
}

func TestChildListRejectsNilAndDoubleOwnership(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic inserting a nil child")
		}
	}()
	block := NewBlock(diag.Position{})
	block.AppendChild(nil)
}

func TestChildListRejectsReparenting(t *testing.T) {
	a := NewBlock(diag.Position{})
	b := NewBlock(diag.Position{})
	child := lit(1)
	a.AppendChild(child)

	defer func() {
		if recover() == nil {
			t.Error("expected a panic re-parenting an already-owned node")
		}
	}()
	b.AppendChild(child)
}

func TestLeafChildrenEmptyAndImmutable(t *testing.T) {
	leaf := lit(7)
	if len(leaf.Children()) != 0 {
		t.Errorf("leaf Children() = %v, want empty", leaf.Children())
	}
	defer func() {
		if recover() == nil {
			t.Error("expected a panic adding a child to a leaf node")
		}
	}()
	leaf.AppendChild(lit(8))
}
