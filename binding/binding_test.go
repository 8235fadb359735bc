package binding

import (
	"sync"
	"testing"
)

func TestBindingStartsUnbound(t *testing.T) {
	b := NewBinding("x", "test")
	if b.IsBound() {
		t.Error("a fresh binding must report unbound")
	}
	if b.Value() != Unbound {
		t.Errorf("Value() = %v, want Unbound sentinel", b.Value())
	}
}

func TestBindingPublishIsVisible(t *testing.T) {
	b := NewBinding("x", "test")
	b.Publish(int64(42))
	if !b.IsBound() {
		t.Error("binding should report bound after Publish")
	}
	if got := b.Value(); got != int64(42) {
		t.Errorf("Value() = %v, want 42", got)
	}
}

func TestBindingPublishNilResetsToUnbound(t *testing.T) {
	b := NewBinding("x", "test")
	b.Publish(int64(1))
	b.Publish(nil)
	if b.IsBound() {
		t.Error("publishing nil should leave the binding unbound")
	}
}

func TestDictionaryDeclareIsIdempotent(t *testing.T) {
	d := NewBindingDictionary()
	first := d.Declare("counter", "repl")
	first.Publish(int64(7))

	second := d.Declare("counter", "elsewhere")
	if first != second {
		t.Error("Declare must return the existing cell, not a fresh one")
	}
	if got := second.Value(); got != int64(7) {
		t.Errorf("re-declaring must not reset the published value, got %v", got)
	}
}

func TestDictionaryConcurrentDeclareYieldsOneCell(t *testing.T) {
	d := NewBindingDictionary()
	const n = 32
	cells := make([]*Binding, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cells[i] = d.Declare("shared", "race")
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if cells[i] != cells[0] {
			t.Fatal("concurrent Declare calls must all observe the same cell")
		}
	}
}

func TestTopLevelDeclareAndLookup(t *testing.T) {
	top := NewTopLevel()
	b := top.Declare("print", "builtin")
	got, ok := top.Lookup("print")
	if !ok || got != b {
		t.Error("Lookup should find the declared cell")
	}
	if _, ok := top.Lookup("absent"); ok {
		t.Error("Lookup must not create cells as a side effect")
	}
}

func TestTopLevelStackPushPop(t *testing.T) {
	root := NewTopLevel()
	stack := NewTopLevelStack(root)

	inner := NewTopLevel()
	pop := stack.Push(inner)
	if stack.Current() != inner {
		t.Error("Push should make the new namespace current")
	}
	pop()
	if stack.Current() != root {
		t.Error("pop should restore the previous namespace")
	}
}
