// Package interp executes decorated trees directly: the interpreted
// half of the Slot contract (spec.md §3.4's InterpretedLocal, §4.5's
// "interpreted execution"), with frames chained the way LexicalScopes
// chain and the same runtime error taxonomy as the emitted code's
// helpers (spec.md §7).
package interp

import (
	"github.com/langforge/corelang/operator"
)

// Env is one interpreter frame: a name→value table chained to the
// defining frame. Lookup walks outward exactly like LexicalScope
// resolution, so closures fall out of carrying the defining Env in the
// function value.
type Env struct {
	parent *Env
	vars   map[string]operator.Value
}

// NewEnv creates a frame inside parent (nil for an outermost frame).
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: make(map[string]operator.Value)}
}

// Parent returns the defining frame, or nil.
func (e *Env) Parent() *Env { return e.parent }

// Define binds name in this frame, shadowing outer bindings.
func (e *Env) Define(name string, v operator.Value) {
	e.vars[name] = v
}

// Lookup resolves name through the frame chain.
func (e *Env) Lookup(name string) (operator.Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return operator.Value{}, false
}

// Set assigns to an existing binding in the nearest frame that has it,
// reporting whether one was found.
func (e *Env) Set(name string, v operator.Value) bool {
	for cur := e; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			cur.vars[name] = v
			return true
		}
	}
	return false
}

// EnvStack is the scoped current-frame stack spec.md §5 frames as
// thread-local: function evaluation pushes a frame, and the returned
// popper must run on every exit path. As with decorate.StateStack, the
// stack is an explicit value rather than goroutine-local storage.
type EnvStack struct {
	frames []*Env
}

// NewEnvStack creates a stack with root as its bottom frame.
func NewEnvStack(root *Env) *EnvStack {
	return &EnvStack{frames: []*Env{root}}
}

// Current returns the active frame.
func (s *EnvStack) Current() *Env { return s.frames[len(s.frames)-1] }

// PushNew enters a fresh frame inside parent and returns the popper to
// defer.
func (s *EnvStack) PushNew(parent *Env) (*Env, func()) {
	env := NewEnv(parent)
	s.frames = append(s.frames, env)
	return env, func() {
		s.frames = s.frames[:len(s.frames)-1]
	}
}
