package emit

import "github.com/langforge/corelang/typesys"

// MemoryTypeGen is the in-memory TypeGen used by the interpreter-style
// backend and by tests: nested types are plain interned TypeRefs, data
// blobs live on a synthetic holder type alongside their bytes. A
// persisting backend replaces this with an implementation that writes
// real metadata (spec.md §6.4).
type MemoryTypeGen struct {
	Types []*typesys.TypeRef
	Blobs map[*typesys.Field][]byte
}

// NewMemoryTypeGen creates an empty generator.
func NewMemoryTypeGen() *MemoryTypeGen {
	return &MemoryTypeGen{Blobs: make(map[*typesys.Field][]byte)}
}

func (g *MemoryTypeGen) DefineNestedType(name string) *typesys.TypeRef {
	t := typesys.New(name, typesys.ReferenceKind, typesys.CodeOther)
	g.Types = append(g.Types, t)
	return t
}

func (g *MemoryTypeGen) DefineField(owner *typesys.TypeRef, name string, t *typesys.TypeRef, static, initOnly bool) *typesys.Field {
	f := &typesys.Field{Name: name, Type: t, Static: static, InitOnly: initOnly}
	owner.AddField(f)
	return f
}

func (g *MemoryTypeGen) DefineInitializedData(name string, data []byte) *typesys.Field {
	holder := g.DefineNestedType(name)
	f := &typesys.Field{Name: name, Type: holder, Static: true, InitOnly: true}
	holder.AddField(f)
	g.Blobs[f] = data
	return f
}
