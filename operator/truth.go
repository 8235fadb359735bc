package operator

import "github.com/langforge/corelang/typesys"

// EvaluateTruth implements LogicalTruth.Evaluate(object) (spec.md §4.4):
// null and false are false, everything else is true.
func EvaluateTruth(v Value) Value {
	return BoolValue(v.IsTruthy())
}

// TruthFastPath reports whether an operand already typed Bool can skip
// the LogicalTruth.Evaluate(object) call and be used directly
// (spec.md §4.4 "Emission fast-path").
func TruthFastPath(operandType *typesys.TypeRef) bool {
	return operandType == typesys.Bool
}
