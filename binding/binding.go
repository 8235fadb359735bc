// Package binding implements the shared global-variable cells and
// per-thread namespace spec.md §3.5 describes: a Binding is a mutable
// cell published once and read many times; a BindingDictionary is the
// thread-safe name→Binding map a TopLevel owns.
package binding

import "sync"

// unbound is the sentinel stored in a freshly-created Binding's Value
// before anything is published to it.
type unbound struct{}

// Unbound is the Binding.Value a caller sees before the first Publish.
var Unbound = unbound{}

// Binding is a shared cell: name, current value, and the origin that
// declared it (a source position string, or a synthetic tag such as
// "builtin"). The value is written and read under the cell's own lock
// (spec.md §5: publication and lookup go through the lock; readers may
// observe any consistent stored value). The payload's concrete type
// varies per publish — the Unbound sentinel, a host value, an
// interpreter value — so the cell holds a plain interface{} behind the
// mutex rather than an atomic slot, which requires one fixed concrete
// type across stores.
type Binding struct {
	Name   string
	Origin string

	mu    sync.Mutex
	value interface{}
}

// NewBinding creates an unbound cell.
func NewBinding(name, origin string) *Binding {
	return &Binding{Name: name, Origin: origin, value: Unbound}
}

// Value reads the binding's current value.
func (b *Binding) Value() interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

// Publish stores a new value, visible to every subsequent Value() call
// on any goroutine.
func (b *Binding) Publish(v interface{}) {
	if v == nil {
		v = Unbound
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value = v
}

// IsBound reports whether the cell currently holds a value other than
// Unbound; publishing nil returns it to Unbound.
func (b *Binding) IsBound() bool {
	_, stillUnbound := b.Value().(unbound)
	return !stillUnbound
}
