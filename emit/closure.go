package emit

import (
	"fmt"

	"github.com/langforge/corelang/typesys"
)

// CapturedVar names one variable an inner function references from an
// enclosing frame.
type CapturedVar struct {
	Name string
	Type *typesys.TypeRef
}

// Closure describes one synthesized closure record (spec.md §4.5
// "Closures"): a nested sealed type with one field per captured
// variable, an optional $parent link to the next enclosing closure,
// and the Slot holding this frame's instance — a local in the frame
// that allocated it, the receiver inside a nested function that was
// handed the record as its this-argument.
type Closure struct {
	Type        *typesys.TypeRef
	Fields      map[string]*typesys.Field
	ParentField *typesys.Field
	Parent      *Closure
	Slot        Slot

	// Adopted marks the view from inside a nested function: the record
	// was allocated by the enclosing frame and arrives as argument 0,
	// so everything found through it is at least one frame away.
	Adopted bool
}

// resolve walks the closure chain for name, accumulating one $parent
// hop per level; the returned ClosureSlot's depth counts those hops
// plus the adoption step when the record belongs to the enclosing
// frame.
func (c *Closure) resolve(name string, _ int) (Slot, bool) {
	base := 0
	if c.Adopted {
		base = 1
	}
	var path []*typesys.Field
	for cur := c; cur != nil; cur = cur.Parent {
		if f, ok := cur.Fields[name]; ok {
			return &ClosureSlot{Holder: c.Slot, Path: path, Field: f, BaseDepth: base}, true
		}
		if cur.ParentField == nil {
			break
		}
		path = append(path, cur.ParentField)
	}
	return nil, false
}

// AllocClosure synthesizes a closure record for this frame's captured
// variables and emits its instantiation: the record is constructed at
// function entry — the enclosing closure instance, if any, is passed to
// the constructor and lands in $parent — and stored in a fresh local.
// Captured variable references then resolve to ClosureSlots through
// ResolveName.
func (e *Emitter) AllocClosure(captured []CapturedVar, parent *Closure) (*Closure, error) {
	name := fmt.Sprintf("closure$%d", e.nextClosure)
	e.nextClosure++
	t := e.TypeGen.DefineNestedType(name)

	c := &Closure{Type: t, Fields: make(map[string]*typesys.Field, len(captured)), Parent: parent}
	for _, cv := range captured {
		if _, dup := c.Fields[cv.Name]; dup {
			return nil, fmt.Errorf("emit: variable %q captured twice by %s", cv.Name, name)
		}
		c.Fields[cv.Name] = e.TypeGen.DefineField(t, cv.Name, cv.Type, false, false)
	}

	var ctor *typesys.Constructor
	if parent != nil {
		c.ParentField = e.TypeGen.DefineField(t, "$parent", parent.Type, false, false)
		ctor = &typesys.Constructor{Params: []*typesys.TypeRef{parent.Type}}
	} else {
		ctor = &typesys.Constructor{}
	}
	t.AddConstructor(ctor)

	slot, err := e.AllocLocalTemp(t, true)
	if err != nil {
		return nil, err
	}
	// The construct-and-store sequence goes through Slot.EmitSet so the
	// store's operand order holds for field-backed slots (generator
	// frames) as well as plain locals.
	err = slot.EmitSet(e, func() error {
		if parent != nil {
			if err := parent.Slot.EmitGet(e); err != nil {
				return err
			}
		}
		e.B.NewObject(t, ctor)
		return nil
	}, true)
	if err != nil {
		return nil, err
	}
	c.Slot = slot
	e.closure = c
	return c, nil
}

// AdoptClosure installs the view of an enclosing frame's closure seen
// from inside a nested function that received the record as its
// receiver: same type, fields, and chain, but the instance arrives as
// argument 0.
func (e *Emitter) AdoptClosure(c *Closure) *Closure {
	adopted := &Closure{
		Type:        c.Type,
		Fields:      c.Fields,
		ParentField: c.ParentField,
		Parent:      c.Parent,
		Slot:        &ThisSlot{Typ: c.Type},
		Adopted:     true,
	}
	e.closure = adopted
	e.IsStatic = false
	return adopted
}

// CurrentClosure returns the frame's closure, or nil when nothing has
// been captured.
func (e *Emitter) CurrentClosure() *Closure { return e.closure }
