package typesys

// Code is the primitive type-code enumeration used for fast-path
// dispatch on common numeric and scalar kinds. Reference/class types
// that are not one of these primitives carry CodeObject or CodeOther.
type Code int

const (
	CodeBool Code = iota
	CodeSByte
	CodeByte
	CodeShort
	CodeUShort
	CodeChar
	CodeInt
	CodeUInt
	CodeLong
	CodeULong
	CodeSingle
	CodeDouble
	CodeDecimal
	CodeBigInt
	CodeRational
	CodeComplex
	CodeString
	CodeObject
	CodeVoid
	CodeOther
)

func (c Code) String() string {
	switch c {
	case CodeBool:
		return "Bool"
	case CodeSByte:
		return "SByte"
	case CodeByte:
		return "Byte"
	case CodeShort:
		return "Short"
	case CodeUShort:
		return "UShort"
	case CodeChar:
		return "Char"
	case CodeInt:
		return "Int"
	case CodeUInt:
		return "UInt"
	case CodeLong:
		return "Long"
	case CodeULong:
		return "ULong"
	case CodeSingle:
		return "Single"
	case CodeDouble:
		return "Double"
	case CodeDecimal:
		return "Decimal"
	case CodeBigInt:
		return "BigInt"
	case CodeRational:
		return "Rational"
	case CodeComplex:
		return "Complex"
	case CodeString:
		return "String"
	case CodeObject:
		return "Object"
	case CodeVoid:
		return "Void"
	default:
		return "Other"
	}
}

// IsIntegral reports whether the code denotes a fixed-width or
// arbitrary-precision integer type (Char counts, per spec.md §4.1: it
// behaves as UShort for conversion purposes).
func (c Code) IsIntegral() bool {
	switch c {
	case CodeSByte, CodeByte, CodeShort, CodeUShort, CodeChar, CodeInt, CodeUInt, CodeLong, CodeULong, CodeBigInt:
		return true
	default:
		return false
	}
}

// IsFloatingPoint reports whether the code is Single, Double, or
// Decimal (Decimal is fixed-point but shares the "not an integer, not
// BigInt/Rational/Complex" bucket for promotion purposes).
func (c Code) IsFloatingPoint() bool {
	switch c {
	case CodeSingle, CodeDouble, CodeDecimal:
		return true
	default:
		return false
	}
}

// IsPrimitiveNumeric reports whether the code participates in the
// implicit-conversion table and primitive-promotion rules of §4.1.
func (c Code) IsPrimitiveNumeric() bool {
	switch c {
	case CodeBool, CodeString, CodeObject, CodeVoid, CodeOther:
		return false
	default:
		return true
	}
}

// IsUnsigned reports whether the integral code is unsigned.
func (c Code) IsUnsigned() bool {
	switch c {
	case CodeByte, CodeUShort, CodeChar, CodeUInt, CodeULong:
		return true
	default:
		return false
	}
}

// ByteSize returns the storage size in bytes for fixed-width integral
// and floating codes, and 1 for Bool; 0 for BigInt/Rational/Complex and
// the other non-numeric codes (they have no fixed width).
func (c Code) ByteSize() int {
	switch c {
	case CodeBool, CodeSByte, CodeByte:
		return 1
	case CodeShort, CodeUShort, CodeChar:
		return 2
	case CodeInt, CodeUInt, CodeSingle:
		return 4
	case CodeLong, CodeULong, CodeDouble:
		return 8
	case CodeDecimal:
		return 16
	default:
		return 0
	}
}
