package operator

import "github.com/langforge/corelang/typesys"

// FoldOutcome is the result of folding an operator's value type across
// its operands (spec.md §4.4 get_value_type). Ambiguous is set when
// overload resolution found more than one matching overload; Type is
// typesys.Invalid when no rule applies.
type FoldOutcome struct {
	Type      *typesys.TypeRef
	Ambiguous bool
	Candidate Resolution
}

// GetValueType folds op's result type pairwise across children
// (spec.md §4.4):
//
//   - Either child Unknown -> Unknown.
//   - Both primitive numerics -> promotion rule (typesys.PromoteBinary).
//   - Else search operator overloads on both types; the unique match's
//     return type wins.
//   - Else if both have implicit conversions to primitive numerics,
//     promote those.
//   - Else Invalid.
//
// When checkedPromote is true and the folded type is primitive, the
// result is downgraded to Unknown: the actual result width becomes
// data-dependent once overflow may trigger a promotion.
func GetValueType(op *Operator, children []*typesys.TypeRef, checkedPromote bool) FoldOutcome {
	if len(children) == 0 {
		return FoldOutcome{Type: typesys.Invalid}
	}
	result := children[0]
	var last Resolution
	for _, next := range children[1:] {
		outcome := foldPair(op, result, next)
		if outcome.Ambiguous {
			return outcome
		}
		result = outcome.Type
		last = outcome.Candidate
		if result == typesys.Unknown || result == typesys.Invalid {
			return FoldOutcome{Type: result, Candidate: last}
		}
	}
	if checkedPromote && result.Code().IsPrimitiveNumeric() {
		result = typesys.Unknown
	}
	return FoldOutcome{Type: result, Candidate: last}
}

func foldPair(op *Operator, lhs, rhs *typesys.TypeRef) FoldOutcome {
	if lhs == typesys.Unknown || rhs == typesys.Unknown {
		return FoldOutcome{Type: typesys.Unknown}
	}
	if lhs.Code().IsPrimitiveNumeric() && rhs.Code().IsPrimitiveNumeric() {
		promoted := typesys.PromoteBinary(lhs.Code(), rhs.Code())
		if Rejects(op, promoted) {
			return FoldOutcome{Type: typesys.Invalid}
		}
		return FoldOutcome{Type: typesys.TypeForCode(promoted)}
	}

	res := ResolveOverload(op, lhs, rhs)
	if res.Ambiguous {
		return FoldOutcome{Type: typesys.Invalid, Ambiguous: true, Candidate: res}
	}
	if res.Match != nil {
		return FoldOutcome{Type: res.Match.Return, Candidate: res}
	}

	lhsNumeric := firstImplicitPrimitive(lhs)
	rhsNumeric := firstImplicitPrimitive(rhs)
	if lhsNumeric != nil && rhsNumeric != nil {
		promoted := typesys.PromoteBinary(lhsNumeric.Code(), rhsNumeric.Code())
		return FoldOutcome{Type: typesys.TypeForCode(promoted)}
	}

	return FoldOutcome{Type: typesys.Invalid}
}

// ImplicitNumericType finds a primitive numeric type t implicitly
// converts to, preferring t itself when it is already primitive — the
// "implicit-to-numeric" escape hatch of §4.4's fold and emission rules.
func ImplicitNumericType(t *typesys.TypeRef) *typesys.TypeRef {
	return firstImplicitPrimitive(t)
}

// firstImplicitPrimitive finds a primitive numeric type t implicitly
// converts to, preferring t itself when it is already primitive.
func firstImplicitPrimitive(t *typesys.TypeRef) *typesys.TypeRef {
	if t.Code().IsPrimitiveNumeric() {
		return t
	}
	candidates := []*typesys.TypeRef{
		typesys.Int, typesys.UInt, typesys.Long, typesys.ULong,
		typesys.Single, typesys.Double, typesys.Decimal, typesys.BigInt,
	}
	for _, c := range candidates {
		if typesys.HasImplicitConversion(t, c) {
			return c
		}
	}
	return nil
}
