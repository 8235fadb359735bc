package typesys

// CommonBaseType finds the narrowest type two operand types both
// convert to: equal types return themselves; Unknown is infectious;
// a null (nil) operand yields Object; Void falls back to the other
// operand; otherwise it walks
// reference subclassing, primitive-numeric implicit conversion, and
// finally a shared interface before giving up and returning Object.
func CommonBaseType(a, b *TypeRef) *TypeRef {
	switch {
	case a == b:
		return a
	case a == Unknown || b == Unknown:
		return Unknown
	case a == nil || b == nil:
		return Object
	case a == Void:
		return b
	case b == Void:
		return a
	}

	if a.IsValue() != b.IsValue() {
		return Object
	}

	if a.IsReference() && b.IsReference() {
		if a.IsSubclassOf(b) {
			return b
		}
		if b.IsSubclassOf(a) {
			return a
		}
	}

	if a.code.IsPrimitiveNumeric() && b.code.IsPrimitiveNumeric() {
		if HasImplicitConversion(a, b) {
			return b
		}
		if HasImplicitConversion(b, a) {
			return a
		}
		// No lossless direction exists (Int vs UInt, Long vs ULong):
		// the common base is the promoted type both sides widen into,
		// the same answer a binary operator over the pair would compute.
		if promoted := TypeForCode(PromoteBinary(a.code, b.code)); promoted != nil {
			return promoted
		}
	}

	if iface := firstSharedInterface(a, b); iface != nil {
		return iface
	}
	return Object
}

func firstSharedInterface(a, b *TypeRef) *TypeRef {
	for _, i := range a.Interfaces() {
		if b.ImplementsInterface(i) {
			return i
		}
	}
	return nil
}

// CommonBaseTypeN folds CommonBaseType pairwise over a non-empty slice.
// If the running result collapses to Object but none of the original
// inputs was explicitly Object or nil, it instead searches the
// intersection of interfaces implemented by every input and prefers
// that over Object.
func CommonBaseTypeN(types []*TypeRef) *TypeRef {
	if len(types) == 0 {
		return Void
	}
	result := types[0]
	anyExplicitObject := types[0] == Object || types[0] == nil
	for _, t := range types[1:] {
		if t == Object || t == nil {
			anyExplicitObject = true
		}
		result = CommonBaseType(result, t)
	}
	if result == Object && !anyExplicitObject {
		if shared := sharedInterfaceAcrossAll(types); shared != nil {
			return shared
		}
	}
	return result
}

func sharedInterfaceAcrossAll(types []*TypeRef) *TypeRef {
	if len(types) == 0 || types[0] == nil {
		return nil
	}
	for _, candidate := range types[0].Interfaces() {
		sharedByAll := true
		for _, t := range types[1:] {
			if t == nil || !t.ImplementsInterface(candidate) {
				sharedByAll = false
				break
			}
		}
		if sharedByAll {
			return candidate
		}
	}
	return nil
}
