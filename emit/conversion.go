package emit

import (
	"fmt"

	"github.com/langforge/corelang/typesys"
)

// Conversion emission (spec.md §4.1 "Conversion emission", §6.1
// conversion matrix). The three entry points form a ladder:
//
//	EmitSafeConversion     widenings, upcasts, boxing, op_Implicit
//	EmitUnsafeConversion   + downcast, unbox, narrowing
//	EmitRuntimeConversion  generic Ops.ConvertTo when static reasoning
//	                       is insufficient
//
// All three expect the source value already on the stack and leave the
// converted value there.

// hasFixedWidth reports whether a primitive code has a direct Conv_*
// opcode; Decimal/BigInt/Rational/Complex route through the runtime
// helper instead.
func hasFixedWidth(c typesys.Code) bool {
	switch c {
	case typesys.CodeSByte, typesys.CodeByte, typesys.CodeShort, typesys.CodeUShort,
		typesys.CodeChar, typesys.CodeInt, typesys.CodeUInt, typesys.CodeLong,
		typesys.CodeULong, typesys.CodeSingle, typesys.CodeDouble:
		return true
	default:
		return false
	}
}

// emitNumericConv emits the §6.1 matrix entry for src -> dst. Every
// fixed-width pair has a defined emission; the wide types fall back to
// the runtime helper.
func (e *Emitter) emitNumericConv(src, dst typesys.Code, checked bool) {
	if src == dst {
		return
	}
	if !hasFixedWidth(dst) || !hasFixedWidth(src) {
		e.emitHelperConv(src, dst)
		return
	}
	// Float destinations never trap; everything else honors checked.
	if dst.IsFloatingPoint() {
		checked = false
	}
	e.B.Convert(dst, checked, src.IsUnsigned())
}

// emitHelperConv boxes the value and delegates to Ops.ConvertTo for
// types without a fixed-width opcode, unwrapping to the destination
// kind afterward.
func (e *Emitter) emitHelperConv(src, dst typesys.Code) {
	srcType := typesys.TypeForCode(src)
	dstType := typesys.TypeForCode(dst)
	if srcType != nil && srcType.IsValue() {
		e.B.Box(srcType)
	}
	e.B.PushTypeToken(dstType)
	e.B.Call(ConvertToMethod)
	if dstType != nil && dstType.IsValue() {
		e.B.Unbox(dstType)
		e.B.LoadIndirect(dst)
	}
}

// EmitSafeConversion converts the stack top from src to dst without
// loss: identity, Void discard, widening numerics, null-to-reference,
// reference upcast, boxing into a reference destination, or a
// user-provided op_Implicit. It fails when only a lossy or downward
// conversion would do — that is EmitUnsafeConversion's territory.
func (e *Emitter) EmitSafeConversion(src, dst *typesys.TypeRef, checked bool) error {
	if dst == nil {
		return fmt.Errorf("emit: conversion with no destination type")
	}
	if dst == typesys.Invalid || src == typesys.Invalid {
		return fmt.Errorf("emit: Invalid type reached conversion emission")
	}
	if src == dst || dst == typesys.Any {
		return nil
	}
	if dst == typesys.Void {
		e.B.Pop()
		return nil
	}
	if src == typesys.Unknown || dst == typesys.Unknown {
		// Statically unknown on either end: the runtime decides.
		e.EmitRuntimeConversion(src, dst)
		return nil
	}
	if src == nil {
		// The null literal: acceptable for any reference destination.
		if dst.IsReference() {
			return nil
		}
		return fmt.Errorf("emit: cannot convert null to value type %s", dst)
	}

	if src.Code().IsPrimitiveNumeric() && dst.Code().IsPrimitiveNumeric() {
		if !typesys.HasImplicitConversion(src, dst) {
			return fmt.Errorf("emit: no implicit conversion from %s to %s", src, dst)
		}
		e.emitNumericConv(src.Code(), dst.Code(), checked)
		return nil
	}

	if src.IsValue() && dst.IsReference() {
		if dst == typesys.Object || src.ImplementsInterface(dst) {
			e.B.Box(src)
			return nil
		}
	}

	if src.IsReference() && dst.IsReference() {
		if dst == typesys.Object || src.IsSubclassOf(dst) || src.ImplementsInterface(dst) {
			return nil
		}
	}

	for _, m := range src.MethodsNamed("op_Implicit") {
		if len(m.Params) == 1 && m.Params[0] == src && m.Return == dst {
			e.B.Call(m)
			return nil
		}
	}
	// Two-hop: op_Implicit to a primitive that widens to dst.
	for _, m := range src.MethodsNamed("op_Implicit") {
		if len(m.Params) != 1 || m.Params[0] != src || m.Return == nil {
			continue
		}
		if m.Return.Code().IsPrimitiveNumeric() && dst.Code().IsPrimitiveNumeric() &&
			typesys.HasImplicitConversion(m.Return, dst) {
			e.B.Call(m)
			e.emitNumericConv(m.Return.Code(), dst.Code(), checked)
			return nil
		}
	}

	return fmt.Errorf("emit: no safe conversion from %s to %s", src, dst)
}

// EmitUnsafeConversion additionally permits reference downcasts, unbox,
// and narrowing numeric conversions (spec.md §4.1).
func (e *Emitter) EmitUnsafeConversion(src, dst *typesys.TypeRef, checked bool) error {
	if err := e.EmitSafeConversion(src, dst, checked); err == nil {
		return nil
	}
	if src == nil || dst == nil {
		return fmt.Errorf("emit: no unsafe conversion for a missing type")
	}

	if src.Code().IsPrimitiveNumeric() && dst.Code().IsPrimitiveNumeric() {
		e.emitNumericConv(src.Code(), dst.Code(), checked)
		return nil
	}
	if src.IsReference() && dst.IsReference() {
		e.B.CastClass(dst)
		return nil
	}
	if src.IsReference() && dst.IsValue() {
		e.B.Unbox(dst)
		e.B.LoadIndirect(dst.Code())
		return nil
	}
	return fmt.Errorf("emit: no unsafe conversion from %s to %s", src, dst)
}

// EmitRuntimeConversion falls back to Ops.ConvertTo(value, Type): the
// value is boxed if needed, converted by the runtime, and the result
// unboxed or cast back to the destination kind (spec.md §4.1).
func (e *Emitter) EmitRuntimeConversion(src, dst *typesys.TypeRef) {
	if src != nil && src != typesys.Unknown && src.IsValue() {
		e.B.Box(src)
	}
	if dst == nil || dst == typesys.Unknown || dst == typesys.Any || dst == typesys.Object {
		return
	}
	e.B.PushTypeToken(dst)
	e.B.Call(ConvertToMethod)
	if dst.IsValue() {
		e.B.Unbox(dst)
		e.B.LoadIndirect(dst.Code())
	} else if dst != typesys.Object {
		e.B.CastClass(dst)
	}
}
