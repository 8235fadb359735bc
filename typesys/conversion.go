package typesys

// implicitTable is the static, ordered implicit-conversion table for
// primitive numerics. For each source code it lists the destination
// codes reachable without loss, in the order a client would prefer
// them (narrowest first). Char behaves as UShort throughout.
var implicitTable = map[Code][]Code{
	CodeSByte:  {CodeShort, CodeInt, CodeLong, CodeSingle, CodeDouble, CodeDecimal, CodeBigInt},
	CodeByte:   {CodeShort, CodeUShort, CodeInt, CodeUInt, CodeLong, CodeULong, CodeSingle, CodeDouble, CodeDecimal, CodeBigInt},
	CodeShort:  {CodeInt, CodeLong, CodeSingle, CodeDouble, CodeDecimal, CodeBigInt},
	CodeUShort: {CodeInt, CodeUInt, CodeLong, CodeULong, CodeSingle, CodeDouble, CodeDecimal, CodeBigInt},
	CodeChar:   {CodeInt, CodeUInt, CodeLong, CodeULong, CodeSingle, CodeDouble, CodeDecimal, CodeBigInt},
	CodeInt:    {CodeLong, CodeSingle, CodeDouble, CodeDecimal, CodeBigInt},
	CodeUInt:   {CodeLong, CodeULong, CodeSingle, CodeDouble, CodeDecimal, CodeBigInt},
	CodeLong:   {CodeSingle, CodeDouble, CodeDecimal, CodeBigInt},
	CodeULong:  {CodeSingle, CodeDouble, CodeDecimal, CodeBigInt},
	CodeSingle: {CodeDouble, CodeDecimal, CodeBigInt},
	CodeDouble: {CodeDecimal, CodeBigInt},
}

// hasImplicitNumericConversion reports whether the table above permits
// from -> to, treating Char as UShort on both sides.
func hasImplicitNumericConversion(from, to Code) bool {
	if from == to {
		return true
	}
	norm := func(c Code) Code {
		if c == CodeChar {
			return CodeUShort
		}
		return c
	}
	from, to = norm(from), norm(to)
	if from == to {
		return true
	}
	for _, dst := range implicitTable[from] {
		if dst == to {
			return true
		}
	}
	return false
}

// HasImplicitConversion answers "is from implicitly convertible to to".
// The rules, in order:
//  1. from == to: true.
//  2. from is nil (the null type): any reference destination accepts
//     it.
//  3. Reference upcast: from.IsSubclassOf(to) or implements interface to.
//  4. Primitive numeric table lookup.
//  5. A user op_Implicit(from) -> T where T == to, or T is a primitive
//     numeric that the table above widens to to.
func HasImplicitConversion(from, to *TypeRef) bool {
	if from == to {
		return true
	}
	if from == nil || to == nil {
		return to != nil && to.IsReference()
	}
	if to == Object && from.IsReference() {
		return true
	}
	if from.IsReference() && to.IsReference() && from.IsSubclassOf(to) {
		return true
	}
	if from.IsReference() && to.IsReference() && from.ImplementsInterface(to) {
		return true
	}
	if from.code.IsPrimitiveNumeric() && to.code.IsPrimitiveNumeric() {
		if hasImplicitNumericConversion(from.code, to.code) {
			return true
		}
	}
	for _, m := range from.MethodsNamed("op_Implicit") {
		if len(m.Params) != 1 || m.Params[0] != from {
			continue
		}
		if m.Return == to {
			return true
		}
		if m.Return != nil && m.Return.code.IsPrimitiveNumeric() && to.code.IsPrimitiveNumeric() &&
			hasImplicitNumericConversion(m.Return.code, to.code) {
			return true
		}
	}
	return false
}
