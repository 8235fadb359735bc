package emit

import (
	"testing"

	"github.com/langforge/corelang/decorate"
	"github.com/langforge/corelang/diag"
	"github.com/langforge/corelang/typesys"
)

func testState() *decorate.CompilerState {
	return &decorate.CompilerState{
		Language:   "test",
		Sink:       diag.NewSink(),
		Extensions: map[string]interface{}{},
	}
}

func newTestEmitter() (*Emitter, *Program) {
	p := NewProgram("test")
	e := NewEmitter(p, NewMemoryTypeGen(), testState())
	return e, p
}

func TestScopeProtocolBalancesAndFinishChecks(t *testing.T) {
	e, _ := newTestEmitter()
	e.BeginScope()
	if _, err := e.AllocLocalVariable("x", typesys.Int); err != nil {
		t.Fatalf("AllocLocalVariable: %v", err)
	}
	if err := e.EndScope(); err != nil {
		t.Fatalf("EndScope: %v", err)
	}
	if err := e.Finish(); err != nil {
		t.Fatalf("Finish after balanced scopes: %v", err)
	}

	e2, _ := newTestEmitter()
	e2.BeginScope()
	if err := e2.Finish(); err == nil {
		t.Error("Finish must fail while a scope is still open")
	}
}

func TestTempReuseByType(t *testing.T) {
	e, p := newTestEmitter()
	e.BeginScope()

	first, err := e.AllocLocalTemp(typesys.Int, false)
	if err != nil {
		t.Fatal(err)
	}
	e.FreeLocalTemp(first)

	second, err := e.AllocLocalTemp(typesys.Int, false)
	if err != nil {
		t.Fatal(err)
	}
	if first.(*LocalSlot).Index != second.(*LocalSlot).Index {
		t.Error("a freed temp of the same type should be reused")
	}

	other, err := e.AllocLocalTemp(typesys.Double, false)
	if err != nil {
		t.Fatal(err)
	}
	if other.(*LocalSlot).Index == second.(*LocalSlot).Index {
		t.Error("temps of different types must not share a slot while one is live")
	}
	if len(p.LocalNames) != 2 {
		t.Errorf("expected 2 declared locals after reuse, got %d", len(p.LocalNames))
	}

	e.EndScope()
}

func TestNamedLocalsGetFreshSlotsInDebug(t *testing.T) {
	state := testState()
	state.Debug = true
	p := NewProgram("dbg")
	e := NewEmitter(p, NewMemoryTypeGen(), state)
	e.BeginScope()

	a, _ := e.AllocLocalVariable("a", typesys.Int)
	e.FreeLocalTemp(a)
	b, _ := e.AllocLocalVariable("b", typesys.Int)
	if a.(*LocalSlot).Index == b.(*LocalSlot).Index {
		t.Error("debug builds must not share slots between named locals")
	}
	if p.LocalNames[0] != "a" || p.LocalNames[1] != "b" {
		t.Errorf("debug locals should keep their source names, got %v", p.LocalNames)
	}

	e.EndScope()
}

func TestGeneratorPromotesTempsToFields(t *testing.T) {
	e, _ := newTestEmitter()
	if err := e.SetGenerator(); err != nil {
		t.Fatalf("SetGenerator at entry: %v", err)
	}
	e.BeginScope()
	s, err := e.AllocLocalTemp(typesys.Int, true)
	if err != nil {
		t.Fatal(err)
	}
	fs, ok := s.(*FieldSlot)
	if !ok {
		t.Fatalf("generator temp should be a FieldSlot, got %T", s)
	}
	if fs.Field.Name != "tmp$0" {
		t.Errorf("generator temp field named %q, want tmp$0", fs.Field.Name)
	}
	e.EndScope()
}

func TestSetGeneratorAfterAllocationFails(t *testing.T) {
	e, _ := newTestEmitter()
	e.BeginScope()
	if _, err := e.AllocLocalTemp(typesys.Int, false); err != nil {
		t.Fatal(err)
	}
	if err := e.SetGenerator(); err == nil {
		t.Error("SetGenerator must be rejected once locals exist")
	}
	e.EndScope()
}

func TestConstantCacheDeduplicates(t *testing.T) {
	e, _ := newTestEmitter()
	a := e.CacheConstant("shared", typesys.String)
	b := e.CacheConstant("shared", typesys.String)
	if a != b {
		t.Error("equal values must share one cached field")
	}
	c := e.CacheConstant("other", typesys.String)
	if c == a {
		t.Error("distinct values must not share a cached field")
	}
	if a.Name != "const$0" || c.Name != "const$1" {
		t.Errorf("cached fields named %q, %q; want const$0, const$1", a.Name, c.Name)
	}
}

func TestCacheConstantByteSlicesCompareElementwise(t *testing.T) {
	e, _ := newTestEmitter()
	a := e.CacheConstant([]byte{1, 2, 3}, typesys.Object)
	b := e.CacheConstant([]byte{1, 2, 3}, typesys.Object)
	if a != b {
		t.Error("equal byte slices must share one cached field")
	}
	c := e.CacheConstant([]byte{1, 2, 4}, typesys.Object)
	if c == a {
		t.Error("different byte slices must not be merged")
	}
}

func TestPushOptionsScopesState(t *testing.T) {
	e, _ := newTestEmitter()
	pop := e.PushOptions(map[string]interface{}{"checked": true})
	if !e.State().Checked {
		t.Error("pushed override should be visible through State()")
	}
	pop()
	if e.State().Checked {
		t.Error("popped override must not leak")
	}
}
