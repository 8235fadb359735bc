// Package emit implements the emitter half of the platform (spec.md
// §4.5): the abstract stack machine the compiler targets, the Slot sum
// type covering every addressable location, and the Emitter that owns
// scopes, temporaries, cached constants, and closures during code
// generation for one method.
//
// The instruction set is kept behind the Builder interface so a backend
// can be swapped without touching the emitter: the Program type in this
// package records instructions for an interpreter-style VM, but an SSA
// or native backend only has to implement Builder (spec.md §9 "Emitter
// backend boundary").
package emit

import "github.com/langforge/corelang/typesys"

// Label identifies a branch target within one method body. Labels are
// created unmarked and bound to a position later with MarkLabel, so
// forward branches need no patching by the emitter itself.
type Label int

// Builder is the abstract stack machine of spec.md §6.1. Every
// operation family named there has a method here; operand kinds use the
// typesys vocabulary so a backend can dispatch on type codes without
// re-deriving them.
type Builder interface {
	// Constant pushes.
	PushBool(v bool)
	PushInt32(v int32)
	PushInt64(v int64)
	PushFloat32(v float32)
	PushFloat64(v float64)
	PushString(v string)
	PushNull()
	PushTypeToken(t *typesys.TypeRef)

	// Locals. DeclareLocal allocates a fresh slot in the method frame
	// and returns its index; load/store/address forms take that index.
	DeclareLocal(t *typesys.TypeRef, name string) int
	LoadLocal(slot int)
	LoadLocalAddr(slot int)
	StoreLocal(slot int)

	// Arguments, with address forms. Index 0 is the receiver in
	// instance methods.
	LoadArg(index int)
	LoadArgAddr(index int)
	StoreArg(index int)

	// Fields, static and instance; the Field's Static flag decides.
	LoadField(f *typesys.Field)
	LoadFieldAddr(f *typesys.Field)
	StoreField(f *typesys.Field)

	// Indirect loads/stores through an address, per type code.
	LoadIndirect(code typesys.Code)
	StoreIndirect(code typesys.Code)

	// Arrays.
	NewArray(elem *typesys.TypeRef)
	LoadElement(code typesys.Code)
	LoadElementAddr(elem *typesys.TypeRef)
	StoreElement(code typesys.Code)

	// Stack plumbing.
	Dup()
	Pop()
	Return()

	// Branches.
	NewLabel() Label
	MarkLabel(l Label)
	Branch(l Label)
	BranchIfFalse(l Label)

	// Object model.
	NewObject(t *typesys.TypeRef, ctor *typesys.Constructor)
	Call(m *typesys.Method)
	CallVirtual(m *typesys.Method)
	CallConstrained(t *typesys.TypeRef, m *typesys.Method)
	CallIndirect(params []*typesys.TypeRef, ret *typesys.TypeRef)
	Box(t *typesys.TypeRef)
	Unbox(t *typesys.TypeRef)
	CastClass(t *typesys.TypeRef)
	InitObject(t *typesys.TypeRef)
	AttachAttribute(t *typesys.TypeRef)

	// Exception-handler regions.
	BeginTry()
	BeginFinally()
	BeginCatch(t *typesys.TypeRef)
	EndHandler()

	// Numeric conversion. dst selects the Conv_* family member; checked
	// picks the overflow-trapping variant and unsignedSource the _Un
	// source interpretation (spec.md §6.1 conversion matrix).
	Convert(dst typesys.Code, checked, unsignedSource bool)

	// Arithmetic and bitwise opcodes (spec.md §4.4 "Opcode choice"):
	// checked selects the *_Ovf variant, unsigned the *_Un signedness.
	// The bitwise family is integer-only and always unchecked.
	Add(checked, unsigned bool)
	Subtract(checked, unsigned bool)
	Multiply(checked, unsigned bool)
	Divide(unsigned bool)
	Remainder(unsigned bool)
	BitAnd()
	BitOr()
	BitXor()
}

// TypeGen is the slice of the enclosing TypeBuilder/AssemblyBuilder the
// emitter needs (spec.md §4.5): synthesizing nested helper types
// (closures, constant caches, generator state machines), their fields,
// and initialized-data blobs for compact array literals. Names follow
// the §6.4 scheme and are chosen by the emitter, not the backend.
type TypeGen interface {
	DefineNestedType(name string) *typesys.TypeRef
	DefineField(owner *typesys.TypeRef, name string, t *typesys.TypeRef, static, initOnly bool) *typesys.Field
	DefineInitializedData(name string, data []byte) *typesys.Field
}
