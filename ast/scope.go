package ast

import "github.com/langforge/corelang/typesys"

// Symbol is a named binding visible within a LexicalScope: a local
// variable, parameter, or captured variable. IsReadOnly drives the
// ReadOnlyVariableAssigned diagnostic (spec.md §8 property 11); Slot is
// an opaque handle the emitter fills in during code generation — the
// AST core itself never constructs a Slot, only carries the pointer so
// later phases can find it again.
type Symbol struct {
	Name       string
	Type       *typesys.TypeRef
	IsReadOnly bool
	Slot       interface{} // *emit.Slot, set once the emitter allocates storage
}

// LexicalScope is a chain of symbol tables, child scopes pointing back
// to their parent. Node.Scope() walks up this chain when a node has no
// scope of its own (spec.md §3.2: "nearest ancestor's scope is returned
// if not locally set").
type LexicalScope struct {
	parent  *LexicalScope
	symbols map[string]*Symbol
}

// NewScope creates a scope nested inside parent (nil for the top-level
// scope of a compilation unit).
func NewScope(parent *LexicalScope) *LexicalScope {
	return &LexicalScope{parent: parent, symbols: make(map[string]*Symbol)}
}

// Parent returns the enclosing scope, or nil at the root.
func (s *LexicalScope) Parent() *LexicalScope { return s.parent }

// Declare adds sym to this scope, shadowing any same-named symbol in an
// enclosing scope.
func (s *LexicalScope) Declare(sym *Symbol) { s.symbols[sym.Name] = sym }

// Resolve looks up name in this scope, then each enclosing scope in
// turn, returning the nearest match.
func (s *LexicalScope) Resolve(name string) (*Symbol, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if sym, ok := cur.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// ResolveLocal looks up name only within this scope, not its ancestors.
func (s *LexicalScope) ResolveLocal(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// Depth counts how many Parent() hops separate s from the scope in
// which sym was declared — used by the emitter to size a closure's
// $parent chain (spec.md §4.5).
func (s *LexicalScope) Depth(name string) int {
	depth := 0
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.symbols[name]; ok {
			return depth
		}
		depth++
	}
	return -1
}
