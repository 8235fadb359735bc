package typesys

// Distinguished singletons (spec.md §3.1). Every comparison against
// these must use reference equality, which is automatic in Go since
// they are package-level *TypeRef values never duplicated elsewhere.
var (
	// Void is the no-value type: a statement or procedure call that
	// produces nothing.
	Void = New("Void", ValueKind, CodeVoid)

	// Object is the top reference type; every reference type is
	// assignable to it.
	Object = New("Object", ReferenceKind, CodeObject)

	// Unknown marks a value whose static type could not be determined;
	// it forces a runtime conversion wherever it would otherwise need a
	// compile-time answer.
	Unknown = New("Unknown", ReferenceKind, CodeOther)

	// Any is a sentinel context type meaning "any type is acceptable;
	// do not box". Only ever appears as a ContextType, never as a
	// ValueType.
	Any = New("Any", ReferenceKind, CodeOther)

	// Invalid is the poison value produced when no conversion exists.
	// It must never reach emission: callers that would otherwise emit
	// Invalid must map it to Unknown first (spec.md §3.1).
	Invalid = New("<invalid>", ReferenceKind, CodeOther)

	// Primitive numeric and scalar singletons.
	Bool    = New("Bool", ValueKind, CodeBool)
	SByte   = New("SByte", ValueKind, CodeSByte)
	Byte    = New("Byte", ValueKind, CodeByte)
	Short   = New("Short", ValueKind, CodeShort)
	UShort  = New("UShort", ValueKind, CodeUShort)
	Char    = New("Char", ValueKind, CodeChar)
	Int     = New("Int", ValueKind, CodeInt)
	UInt    = New("UInt", ValueKind, CodeUInt)
	Long    = New("Long", ValueKind, CodeLong)
	ULong   = New("ULong", ValueKind, CodeULong)
	Single  = New("Single", ValueKind, CodeSingle)
	Double  = New("Double", ValueKind, CodeDouble)
	Decimal = New("Decimal", ValueKind, CodeDecimal)

	// BigInt/Rational/Complex stand in for whatever arbitrary-precision
	// library a client wires in; per spec.md §1 the core only needs
	// such a type to exist, expose sign/magnitude, and have a row in
	// the conversion table (see conversion.go). These singletons are
	// the TypeRef side of that contract.
	BigInt   = New("BigInt", ValueKind, CodeBigInt)
	Rational = New("Rational", ValueKind, CodeRational)
	Complex  = New("Complex", ValueKind, CodeComplex)

	String = New("String", ReferenceKind, CodeString)
)

// IsPoison reports whether t is the Invalid sentinel.
func IsPoison(t *TypeRef) bool { return t == Invalid }

// AsEmittable maps Invalid to Unknown, matching spec.md §3.1's rule
// that Invalid must never leak to emission.
func AsEmittable(t *TypeRef) *TypeRef {
	if t == Invalid {
		return Unknown
	}
	return t
}
