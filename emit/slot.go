package emit

import (
	"fmt"

	"github.com/langforge/corelang/binding"
	"github.com/langforge/corelang/typesys"
)

// ValueFunc emits the push of a value at the point the slot needs it on
// the stack — after an array/index pair, before a field store. The slot
// decides when to call it; the caller decides what it pushes.
type ValueFunc func() error

// Slot is the sum type over every addressable location (spec.md §3.4):
// locals, parameters, the receiver, fields, array elements, closure
// cells, top-level bindings, and interpreted-frame locals. Each variant
// answers the capability queries and knows how to emit its own reads,
// writes, and address-of against the Emitter's Builder.
type Slot interface {
	Type() *typesys.TypeRef
	CanRead() bool
	CanWrite() bool
	CanAddr() bool
	EmitGet(e *Emitter) error
	EmitGetAddr(e *Emitter) error
	EmitSet(e *Emitter, value ValueFunc, initialize bool) error
	// IsSameAs reports whether other denotes the same storage, for the
	// self-assignment diagnostic. It must never report true for
	// distinct locations (spec.md §8 property 12).
	IsSameAs(other Slot) bool
}

// LocalSlot is a stack-allocated frame variable.
type LocalSlot struct {
	Index int
	Typ   *typesys.TypeRef
	Name  string
}

func (s *LocalSlot) Type() *typesys.TypeRef { return s.Typ }
func (s *LocalSlot) CanRead() bool          { return true }
func (s *LocalSlot) CanWrite() bool         { return true }
func (s *LocalSlot) CanAddr() bool          { return true }

func (s *LocalSlot) EmitGet(e *Emitter) error {
	e.B.LoadLocal(s.Index)
	return nil
}

func (s *LocalSlot) EmitGetAddr(e *Emitter) error {
	e.B.LoadLocalAddr(s.Index)
	return nil
}

func (s *LocalSlot) EmitSet(e *Emitter, value ValueFunc, initialize bool) error {
	if err := value(); err != nil {
		return err
	}
	e.B.StoreLocal(s.Index)
	return nil
}

func (s *LocalSlot) IsSameAs(other Slot) bool {
	o, ok := other.(*LocalSlot)
	return ok && o.Index == s.Index
}

// LocalProxySlot defers allocation until first use: a declared-but-
// possibly-unused local costs no frame slot unless something actually
// reads or writes it.
type LocalProxySlot struct {
	Typ  *typesys.TypeRef
	Name string

	actual *LocalSlot
}

func (s *LocalProxySlot) Type() *typesys.TypeRef { return s.Typ }
func (s *LocalProxySlot) CanRead() bool          { return true }
func (s *LocalProxySlot) CanWrite() bool         { return true }
func (s *LocalProxySlot) CanAddr() bool          { return true }

func (s *LocalProxySlot) materialize(e *Emitter) (*LocalSlot, error) {
	if s.actual != nil {
		return s.actual, nil
	}
	alloc, err := e.AllocLocalTemp(s.Typ, true)
	if err != nil {
		return nil, err
	}
	local, ok := alloc.(*LocalSlot)
	if !ok {
		return nil, fmt.Errorf("emit: proxy for %q materialized to a non-local slot", s.Name)
	}
	local.Name = s.Name
	s.actual = local
	return local, nil
}

func (s *LocalProxySlot) EmitGet(e *Emitter) error {
	local, err := s.materialize(e)
	if err != nil {
		return err
	}
	return local.EmitGet(e)
}

func (s *LocalProxySlot) EmitGetAddr(e *Emitter) error {
	local, err := s.materialize(e)
	if err != nil {
		return err
	}
	return local.EmitGetAddr(e)
}

func (s *LocalProxySlot) EmitSet(e *Emitter, value ValueFunc, initialize bool) error {
	local, err := s.materialize(e)
	if err != nil {
		return err
	}
	return local.EmitSet(e, value, initialize)
}

func (s *LocalProxySlot) IsSameAs(other Slot) bool {
	if o, ok := other.(*LocalProxySlot); ok {
		return o == s
	}
	if s.actual != nil {
		return s.actual.IsSameAs(other)
	}
	return false
}

// ParameterSlot is an incoming argument; by-ref parameters carry the
// address and are dereferenced automatically on read and write.
type ParameterSlot struct {
	Index int
	Typ   *typesys.TypeRef
	ByRef bool
	Name  string
}

func (s *ParameterSlot) Type() *typesys.TypeRef { return s.Typ }
func (s *ParameterSlot) CanRead() bool          { return true }
func (s *ParameterSlot) CanWrite() bool         { return true }
func (s *ParameterSlot) CanAddr() bool          { return true }

func (s *ParameterSlot) EmitGet(e *Emitter) error {
	e.B.LoadArg(s.Index)
	if s.ByRef {
		e.B.LoadIndirect(s.Typ.Code())
	}
	return nil
}

func (s *ParameterSlot) EmitGetAddr(e *Emitter) error {
	if s.ByRef {
		// The argument already holds the address.
		e.B.LoadArg(s.Index)
		return nil
	}
	e.B.LoadArgAddr(s.Index)
	return nil
}

func (s *ParameterSlot) EmitSet(e *Emitter, value ValueFunc, initialize bool) error {
	if s.ByRef {
		e.B.LoadArg(s.Index)
		if err := value(); err != nil {
			return err
		}
		e.B.StoreIndirect(s.Typ.Code())
		return nil
	}
	if err := value(); err != nil {
		return err
	}
	e.B.StoreArg(s.Index)
	return nil
}

func (s *ParameterSlot) IsSameAs(other Slot) bool {
	o, ok := other.(*ParameterSlot)
	return ok && o.Index == s.Index
}

// ThisSlot is argument 0 of an instance method.
type ThisSlot struct {
	Typ *typesys.TypeRef
}

func (s *ThisSlot) Type() *typesys.TypeRef { return s.Typ }
func (s *ThisSlot) CanRead() bool          { return true }
func (s *ThisSlot) CanWrite() bool         { return true }
func (s *ThisSlot) CanAddr() bool          { return true }

func (s *ThisSlot) EmitGet(e *Emitter) error {
	e.B.LoadArg(0)
	return nil
}

func (s *ThisSlot) EmitGetAddr(e *Emitter) error {
	e.B.LoadArgAddr(0)
	return nil
}

func (s *ThisSlot) EmitSet(e *Emitter, value ValueFunc, initialize bool) error {
	if err := value(); err != nil {
		return err
	}
	e.B.StoreArg(0)
	return nil
}

func (s *ThisSlot) IsSameAs(other Slot) bool {
	_, ok := other.(*ThisSlot)
	return ok
}

// FieldSlot is a static or instance field; Target emits the receiver
// (nil for static fields). Init-only fields are writable only inside
// their constructor; literal fields have no storage and thus no
// address (spec.md §3.4).
type FieldSlot struct {
	Field  *typesys.Field
	Target Slot
	InCtor bool
}

func (s *FieldSlot) Type() *typesys.TypeRef { return s.Field.Type }
func (s *FieldSlot) CanRead() bool          { return true }
func (s *FieldSlot) CanWrite() bool         { return !s.Field.InitOnly || s.InCtor }
func (s *FieldSlot) CanAddr() bool          { return !s.Field.Literal }

func (s *FieldSlot) emitTarget(e *Emitter) error {
	if s.Field.Static || s.Target == nil {
		return nil
	}
	return s.Target.EmitGet(e)
}

func (s *FieldSlot) EmitGet(e *Emitter) error {
	if err := s.emitTarget(e); err != nil {
		return err
	}
	e.B.LoadField(s.Field)
	return nil
}

func (s *FieldSlot) EmitGetAddr(e *Emitter) error {
	if !s.CanAddr() {
		return fmt.Errorf("emit: literal field %s has no address", s.Field.Name)
	}
	if err := s.emitTarget(e); err != nil {
		return err
	}
	e.B.LoadFieldAddr(s.Field)
	return nil
}

func (s *FieldSlot) EmitSet(e *Emitter, value ValueFunc, initialize bool) error {
	if !s.CanWrite() {
		return fmt.Errorf("emit: init-only field %s assigned outside its constructor", s.Field.Name)
	}
	if err := s.emitTarget(e); err != nil {
		return err
	}
	if err := value(); err != nil {
		return err
	}
	e.B.StoreField(s.Field)
	return nil
}

func (s *FieldSlot) IsSameAs(other Slot) bool {
	o, ok := other.(*FieldSlot)
	if !ok || o.Field != s.Field {
		return false
	}
	if s.Target == nil || o.Target == nil {
		return s.Target == o.Target
	}
	return s.Target.IsSameAs(o.Target)
}

// ArrayElementSlot addresses one element of an array; Array and Index
// re-emit their pushes for each access. Its address can be taken only
// when the requesting context wants exactly the element type.
type ArrayElementSlot struct {
	Array     ValueFunc
	Index     ValueFunc
	Elem      *typesys.TypeRef
	Requested *typesys.TypeRef
}

func (s *ArrayElementSlot) Type() *typesys.TypeRef { return s.Elem }
func (s *ArrayElementSlot) CanRead() bool          { return true }
func (s *ArrayElementSlot) CanWrite() bool         { return true }
func (s *ArrayElementSlot) CanAddr() bool          { return s.Requested == s.Elem }

func (s *ArrayElementSlot) emitPair() error {
	if err := s.Array(); err != nil {
		return err
	}
	return s.Index()
}

func (s *ArrayElementSlot) EmitGet(e *Emitter) error {
	if err := s.emitPair(); err != nil {
		return err
	}
	e.B.LoadElement(s.Elem.Code())
	return nil
}

func (s *ArrayElementSlot) EmitGetAddr(e *Emitter) error {
	if !s.CanAddr() {
		return fmt.Errorf("emit: element address requested as %s, element type is %s", s.Requested, s.Elem)
	}
	if err := s.emitPair(); err != nil {
		return err
	}
	e.B.LoadElementAddr(s.Elem)
	return nil
}

func (s *ArrayElementSlot) EmitSet(e *Emitter, value ValueFunc, initialize bool) error {
	if err := s.emitPair(); err != nil {
		return err
	}
	if err := value(); err != nil {
		return err
	}
	e.B.StoreElement(s.Elem.Code())
	return nil
}

// IsSameAs is conservatively false: two element accesses may alias, but
// proving it would need value analysis of the index expressions.
func (s *ArrayElementSlot) IsSameAs(other Slot) bool { return false }

// ClosureSlot is a field on an up-stack closure record: Holder pushes
// the innermost closure instance, Path walks one $parent hop per
// enclosing frame, Field is the captured variable's cell. Depth (the
// number of parent closures traversed) is BaseDepth plus len(Path)
// (spec.md §3.4, §4.5 "Closures").
type ClosureSlot struct {
	Holder Slot
	Path   []*typesys.Field
	Field  *typesys.Field

	// BaseDepth is 1 when the record itself belongs to the enclosing
	// frame (a nested function adopting its parent's closure as the
	// receiver): the variable already lives one frame up before any
	// $parent hop is taken.
	BaseDepth int
}

func (s *ClosureSlot) Depth() int             { return s.BaseDepth + len(s.Path) }
func (s *ClosureSlot) Type() *typesys.TypeRef { return s.Field.Type }
func (s *ClosureSlot) CanRead() bool          { return true }
func (s *ClosureSlot) CanWrite() bool         { return true }
func (s *ClosureSlot) CanAddr() bool          { return true }

func (s *ClosureSlot) emitRecord(e *Emitter) error {
	if err := s.Holder.EmitGet(e); err != nil {
		return err
	}
	for _, hop := range s.Path {
		e.B.LoadField(hop)
	}
	return nil
}

func (s *ClosureSlot) EmitGet(e *Emitter) error {
	if err := s.emitRecord(e); err != nil {
		return err
	}
	e.B.LoadField(s.Field)
	return nil
}

func (s *ClosureSlot) EmitGetAddr(e *Emitter) error {
	if err := s.emitRecord(e); err != nil {
		return err
	}
	e.B.LoadFieldAddr(s.Field)
	return nil
}

func (s *ClosureSlot) EmitSet(e *Emitter, value ValueFunc, initialize bool) error {
	if err := s.emitRecord(e); err != nil {
		return err
	}
	if err := value(); err != nil {
		return err
	}
	e.B.StoreField(s.Field)
	return nil
}

func (s *ClosureSlot) IsSameAs(other Slot) bool {
	o, ok := other.(*ClosureSlot)
	return ok && o.Field == s.Field && len(o.Path) == len(s.Path)
}

// TopLevelSlot is a late-bound global read and written through a shared
// Binding cell. The cell reference itself is a cached constant; reads
// verify defined-ness in debug/non-optimized builds, and
// non-initializing writes always do (spec.md §4.5 "Top-level slot
// semantics").
type TopLevelSlot struct {
	Binding *binding.Binding
	Typ     *typesys.TypeRef
}

func (s *TopLevelSlot) Type() *typesys.TypeRef { return s.Typ }
func (s *TopLevelSlot) CanRead() bool          { return true }
func (s *TopLevelSlot) CanWrite() bool         { return true }
func (s *TopLevelSlot) CanAddr() bool          { return s.Typ == typesys.Object }

func (s *TopLevelSlot) emitBinding(e *Emitter) {
	f := e.CacheConstant(s.Binding, BindingType)
	e.B.LoadField(f)
}

func (s *TopLevelSlot) checkOnRead(e *Emitter) bool {
	return e.State().Debug || !e.State().Optimize
}

func (s *TopLevelSlot) EmitGet(e *Emitter) error {
	s.emitBinding(e)
	if s.checkOnRead(e) {
		e.B.Dup()
		e.B.Call(CheckBindingMethod)
	}
	e.B.LoadField(BindingValueField)
	return nil
}

func (s *TopLevelSlot) EmitGetAddr(e *Emitter) error {
	if !s.CanAddr() {
		return fmt.Errorf("emit: top-level binding %q is not Object-typed, cannot take its address", s.Binding.Name)
	}
	s.emitBinding(e)
	e.B.LoadFieldAddr(BindingValueField)
	return nil
}

func (s *TopLevelSlot) EmitSet(e *Emitter, value ValueFunc, initialize bool) error {
	s.emitBinding(e)
	if !initialize {
		e.B.Dup()
		e.B.Call(CheckBindingMethod)
	}
	if err := value(); err != nil {
		return err
	}
	e.B.StoreField(BindingValueField)
	return nil
}

func (s *TopLevelSlot) IsSameAs(other Slot) bool {
	o, ok := other.(*TopLevelSlot)
	return ok && o.Binding == s.Binding
}

// InterpretedLocalSlot reads and writes a name in the current
// interpreter frame; it has no machine address.
type InterpretedLocalSlot struct {
	Name string
	Typ  *typesys.TypeRef
}

func (s *InterpretedLocalSlot) Type() *typesys.TypeRef { return s.Typ }
func (s *InterpretedLocalSlot) CanRead() bool          { return true }
func (s *InterpretedLocalSlot) CanWrite() bool         { return true }
func (s *InterpretedLocalSlot) CanAddr() bool          { return false }

func (s *InterpretedLocalSlot) EmitGet(e *Emitter) error {
	e.B.PushString(s.Name)
	e.B.Call(EnvLookupMethod)
	return nil
}

func (s *InterpretedLocalSlot) EmitGetAddr(e *Emitter) error {
	return fmt.Errorf("emit: interpreted local %q has no address", s.Name)
}

func (s *InterpretedLocalSlot) EmitSet(e *Emitter, value ValueFunc, initialize bool) error {
	e.B.PushString(s.Name)
	if err := value(); err != nil {
		return err
	}
	e.B.Call(EnvStoreMethod)
	return nil
}

func (s *InterpretedLocalSlot) IsSameAs(other Slot) bool {
	o, ok := other.(*InterpretedLocalSlot)
	return ok && o.Name == s.Name
}
