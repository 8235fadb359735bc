package typesys

import "strings"

// Registry interns named (class/record/interface) types by
// case-insensitive name, mirroring go-dws's internal/interp/types
// ClassRegistry: Register/Lookup/Exists keyed on strings.ToLower(name).
// A client's Language plug-in owns one Registry per compilation so that
// two references to "TFoo" and "tfoo" in source resolve to the same
// *TypeRef, satisfying the interning invariant of spec.md §3.1.
type Registry struct {
	byName map[string]*TypeRef
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*TypeRef)}
}

// Register interns t under name, replacing any previous registration
// under the same (case-insensitive) name. Returns t for chaining.
func (r *Registry) Register(name string, t *TypeRef) *TypeRef {
	r.byName[strings.ToLower(name)] = t
	return t
}

// Lookup finds a previously registered type by name.
func (r *Registry) Lookup(name string) (*TypeRef, bool) {
	t, ok := r.byName[strings.ToLower(name)]
	return t, ok
}

// Exists reports whether name has been registered.
func (r *Registry) Exists(name string) bool {
	_, ok := r.byName[strings.ToLower(name)]
	return ok
}

// GetOrCreate returns the existing registration for name, or creates,
// registers, and returns a new value/reference TypeRef via make if
// absent. This is the common case for a parser that encounters a type
// name before or after its declaration (forward references).
func (r *Registry) GetOrCreate(name string, kind Kind, code Code) *TypeRef {
	if t, ok := r.Lookup(name); ok {
		return t
	}
	return r.Register(name, New(name, kind, code))
}
