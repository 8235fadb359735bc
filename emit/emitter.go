package emit

import (
	"fmt"

	"github.com/langforge/corelang/binding"
	"github.com/langforge/corelang/decorate"
	"github.com/langforge/corelang/typesys"
)

// Emitter owns the per-method bookkeeping of spec.md §4.5: the target
// Builder, the enclosing TypeGen, a stack of lexical scopes mapping
// names to Slots, a free list of temporaries by type, the append-only
// cached-constants table, the optional closure slot, and the generator
// flag. One Emitter emits exactly one method body.
type Emitter struct {
	B        Builder
	TypeGen  TypeGen
	IsStatic bool
	TopLevel *binding.TopLevel

	// NewMethodBuilder supplies the Builder for each nested method body
	// (lambdas); the Program backend's factory is the default.
	NewMethodBuilder func(name string) Builder

	states *decorate.StateStack

	scopes    []map[string]Slot
	freeTemps map[*typesys.TypeRef][]int
	cached    []cachedConst
	closure   *Closure

	isGenerator bool
	genType     *typesys.TypeRef
	localsAllocated bool

	// Tail returns inside a try region branch here instead of emitting
	// ret directly; Finish marks the label and emits the single real
	// return (spec.md §4.5 "Tail returns", §9 open question — see
	// DESIGN.md for the resolution).
	returnLabel     Label
	returnLabelUsed bool
	returnLabelMade bool

	// tailSuppressed is raised while emitting a cast's operand: the
	// operand subtree carries the tail flag (it is the cast's result
	// subtree, spec.md §3.2), but the frame exit belongs to the cast
	// node itself, after the conversion.
	tailSuppressed int

	nextTemp    int
	nextConst   int
	nextClosure int
	nextData    int
	nextLambda  int
}

type cachedConst struct {
	value interface{}
	field *typesys.Field
}

// NewEmitter creates an emitter targeting b, synthesizing helper types
// through gen, under the policy flags of state.
func NewEmitter(b Builder, gen TypeGen, state *decorate.CompilerState) *Emitter {
	return &Emitter{
		B:                b,
		TypeGen:          gen,
		IsStatic:         true,
		NewMethodBuilder: func(name string) Builder { return NewProgram(name) },
		states:           decorate.NewStateStack(state),
		freeTemps:        make(map[*typesys.TypeRef][]int),
	}
}

// State returns the active CompilerState: the root state, or the top of
// the overrides pushed by enclosing Options nodes during emission.
func (e *Emitter) State() *decorate.CompilerState {
	return e.states.Current()
}

// PushOptions applies an Options node's overrides for the duration of
// its body; the returned popper must be deferred immediately so the pop
// runs on every exit path (spec.md §3.6).
func (e *Emitter) PushOptions(overrides map[string]interface{}) func() {
	return e.states.Push(overrides)
}

// SetGenerator marks the method as a generator. It must be called at
// method entry, before any local allocation: from here on, temporaries
// are promoted to fields of a state-machine type so their values
// survive suspension points (spec.md §4.5, §5 "Suspension").
func (e *Emitter) SetGenerator() error {
	if e.localsAllocated {
		return fmt.Errorf("emit: SetGenerator called after local allocation")
	}
	e.isGenerator = true
	e.genType = e.TypeGen.DefineNestedType("state$0")
	return nil
}

// IsGenerator reports whether SetGenerator has run.
func (e *Emitter) IsGenerator() bool { return e.isGenerator }

// BeginScope opens a lexical region; names declared until the matching
// EndScope shadow outer declarations and release their storage on exit.
func (e *Emitter) BeginScope() {
	e.scopes = append(e.scopes, make(map[string]Slot))
}

// EndScope closes the innermost region, returning reusable temporaries
// to the pool.
func (e *Emitter) EndScope() error {
	if len(e.scopes) == 0 {
		return fmt.Errorf("emit: EndScope without matching BeginScope")
	}
	top := e.scopes[len(e.scopes)-1]
	e.scopes = e.scopes[:len(e.scopes)-1]
	if !e.State().Debug && !e.isGenerator {
		for _, s := range top {
			if local, ok := s.(*LocalSlot); ok {
				e.FreeLocalTemp(local)
			}
		}
	}
	return nil
}

// Finish asserts all scopes were closed and completes any deferred
// tail-return plumbing. Call once, after the body has been emitted.
func (e *Emitter) Finish() error {
	if len(e.scopes) != 0 {
		return fmt.Errorf("emit: %d scope(s) left open at Finish", len(e.scopes))
	}
	if e.returnLabelUsed {
		e.B.MarkLabel(e.returnLabel)
		e.B.Return()
	}
	return nil
}

// AllocLocalVariable allocates named storage in the current scope. In
// debug builds each named local gets a fresh slot so symbol info stays
// one-to-one; otherwise it delegates to AllocLocalTemp, which reuses
// freed slots by type to minimize frame pressure (spec.md §4.5 "Scope
// protocol").
func (e *Emitter) AllocLocalVariable(name string, t *typesys.TypeRef) (Slot, error) {
	if len(e.scopes) == 0 {
		return nil, fmt.Errorf("emit: AllocLocalVariable(%q) outside any scope", name)
	}
	var s Slot
	if e.State().Debug && !e.isGenerator {
		e.localsAllocated = true
		s = &LocalSlot{Index: e.B.DeclareLocal(t, name), Typ: t, Name: name}
	} else {
		var err error
		s, err = e.AllocLocalTemp(t, true)
		if err != nil {
			return nil, err
		}
	}
	e.scopes[len(e.scopes)-1][name] = s
	return s, nil
}

// AllocLocalTemp returns a temporary of type t. keep does not change the
// allocation: EndScope releases only slots bound by name in the closing
// scope (AllocLocalVariable, Declare), and any other temporary returns
// to the pool through FreeLocalTemp. Generator methods get a field on
// the state-machine type instead of a stack slot.
func (e *Emitter) AllocLocalTemp(t *typesys.TypeRef, keep bool) (Slot, error) {
	e.localsAllocated = true
	if e.isGenerator {
		name := fmt.Sprintf("tmp$%d", e.nextTemp)
		e.nextTemp++
		f := e.TypeGen.DefineField(e.genType, name, t, false, false)
		return &FieldSlot{Field: f, Target: &ThisSlot{Typ: e.genType}}, nil
	}
	return e.allocFrameLocal(t), nil
}

func (e *Emitter) allocFrameLocal(t *typesys.TypeRef) *LocalSlot {
	if free := e.freeTemps[t]; len(free) > 0 {
		idx := free[len(free)-1]
		e.freeTemps[t] = free[:len(free)-1]
		return &LocalSlot{Index: idx, Typ: t}
	}
	name := fmt.Sprintf("tmp$%d", e.nextTemp)
	e.nextTemp++
	return &LocalSlot{Index: e.B.DeclareLocal(t, name), Typ: t, Name: name}
}

// AllocScratchLocal returns a plain frame local even inside a generator
// method: scratch values consumed within a single expression never
// cross a suspension point, so they need no promotion to the
// state-machine type.
func (e *Emitter) AllocScratchLocal(t *typesys.TypeRef) *LocalSlot {
	e.localsAllocated = true
	return e.allocFrameLocal(t)
}

// FreeLocalTemp returns a temporary to the by-type pool.
func (e *Emitter) FreeLocalTemp(s Slot) {
	local, ok := s.(*LocalSlot)
	if !ok {
		return
	}
	e.freeTemps[local.Typ] = append(e.freeTemps[local.Typ], local.Index)
}

// ResolveName finds the Slot bound to name in the innermost scope that
// declares it, the closure chain included.
func (e *Emitter) ResolveName(name string) (Slot, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if s, ok := e.scopes[i][name]; ok {
			return s, true
		}
	}
	if e.closure != nil {
		if s, ok := e.closure.resolve(name, 0); ok {
			return s, true
		}
	}
	return nil, false
}

// Declare binds name to an externally built slot (a parameter, a
// closure cell) in the current scope.
func (e *Emitter) Declare(name string, s Slot) error {
	if len(e.scopes) == 0 {
		return fmt.Errorf("emit: Declare(%q) outside any scope", name)
	}
	e.scopes[len(e.scopes)-1][name] = s
	return nil
}

// CacheConstant returns a private static field holding value,
// initialized once per §4.5 "Constant caching". Equality is by value:
// reference identity for bindings, element-wise for byte slices,
// ordinary equality otherwise. Primitives and null are the caller's
// business to inline; they never reach here.
func (e *Emitter) CacheConstant(value interface{}, t *typesys.TypeRef) *typesys.Field {
	for _, c := range e.cached {
		if constEqual(c.value, value) {
			return c.field
		}
	}
	name := fmt.Sprintf("const$%d", e.nextConst)
	e.nextConst++
	holder := e.TypeGen.DefineNestedType(name + "$holder")
	f := e.TypeGen.DefineField(holder, name, t, true, true)
	e.cached = append(e.cached, cachedConst{value: value, field: f})
	return f
}

func constEqual(a, b interface{}) bool {
	if ba, ok := a.(*binding.Binding); ok {
		bb, ok := b.(*binding.Binding)
		return ok && ba == bb
	}
	if sa, ok := a.([]byte); ok {
		sb, ok := b.([]byte)
		if !ok || len(sa) != len(sb) {
			return false
		}
		for i := range sa {
			if sa[i] != sb[i] {
				return false
			}
		}
		return true
	}
	return a == b
}

// tailReturn emits the function-exit sequence for a tail-marked node
// whose value is already on the stack: a direct ret outside protected
// regions, or a branch to the deferred return label from inside one
// (the surrounding handler unwind must run before the frame returns).
func (e *Emitter) tailReturn(inTry bool) {
	if !inTry {
		e.B.Return()
		return
	}
	if !e.returnLabelMade {
		e.returnLabel = e.B.NewLabel()
		e.returnLabelMade = true
	}
	e.returnLabelUsed = true
	e.B.Branch(e.returnLabel)
}
