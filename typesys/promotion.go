package typesys

// promotionOrder is the ordered list consulted by PromoteBinary when
// signs agree, sizes differ, or either side is floating point: the
// first entry matching either side wins.
var promotionOrder = []Code{CodeDouble, CodeSingle, CodeULong, CodeLong, CodeUInt}

// PromoteBinary implements the primitive-promotion rule for a binary
// numeric operator given the two operand type codes:
//
//   - If signs agree, or sizes differ, or either side is floating
//     point: the first entry of promotionOrder matching either side
//     wins; no match falls back to Int.
//   - Otherwise (same size, different signs, both integral): 8-byte
//     operands promote to BigInt, 4-byte to Long, anything smaller to
//     Int.
func PromoteBinary(ltc, rtc Code) Code {
	signsAgree := ltc.IsUnsigned() == rtc.IsUnsigned()
	sizesDiffer := ltc.ByteSize() != rtc.ByteSize()
	eitherFloat := ltc.IsFloatingPoint() || rtc.IsFloatingPoint()

	if signsAgree || sizesDiffer || eitherFloat {
		for _, cand := range promotionOrder {
			if ltc == cand || rtc == cand {
				return cand
			}
		}
		return CodeInt
	}

	size := ltc.ByteSize()
	switch {
	case size >= 8:
		return CodeBigInt
	case size == 4:
		return CodeLong
	default:
		return CodeInt
	}
}

// codeToType maps a primitive Code back to its singleton *TypeRef, for
// callers that promoted by Code and need the TypeRef to continue.
var codeToType = map[Code]*TypeRef{
	CodeBool:     Bool,
	CodeSByte:    SByte,
	CodeByte:     Byte,
	CodeShort:    Short,
	CodeUShort:   UShort,
	CodeChar:     Char,
	CodeInt:      Int,
	CodeUInt:     UInt,
	CodeLong:     Long,
	CodeULong:    ULong,
	CodeSingle:   Single,
	CodeDouble:   Double,
	CodeDecimal:  Decimal,
	CodeBigInt:   BigInt,
	CodeRational: Rational,
	CodeComplex:  Complex,
	CodeString:   String,
	CodeObject:   Object,
	CodeVoid:     Void,
}

// TypeForCode resolves a primitive Code to its singleton TypeRef, or
// nil if the code has no corresponding singleton (CodeOther).
func TypeForCode(c Code) *TypeRef { return codeToType[c] }
