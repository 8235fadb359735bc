package emit

import (
	"fmt"

	"github.com/langforge/corelang/ast"
	"github.com/langforge/corelang/operator"
	"github.com/langforge/corelang/typesys"
)

// Option bitmask passed to the runtime Evaluate fallback; the runtime
// side decodes the same bits (spec.md §4.4 "push current Options
// bitmask").
const (
	evalOptChecked = 1 << 0
	evalOptPromote = 1 << 1
)

// EvalOptionBits encodes the active policy flags for the runtime
// operator fallback.
func EvalOptionBits(checked, promote bool) int32 {
	var bits int32
	if checked {
		bits |= evalOptChecked
	}
	if promote {
		bits |= evalOptPromote
	}
	return bits
}

// emittableType normalizes the decoration sentinels for emission: a
// missing static type and the Invalid poison both become Unknown.
func emittableType(t *typesys.TypeRef) *typesys.TypeRef {
	if t == nil {
		return typesys.Unknown
	}
	return typesys.AsEmittable(t)
}

// emitOperand emits a fold operand (or cast source) at its natural
// type and reports what actually landed on the stack.
func (e *Emitter) emitOperand(n *ast.Node) (*typesys.TypeRef, error) {
	produced, err := e.emitValue(n, n.ValueType())
	if err != nil {
		return nil, err
	}
	return emittableType(produced), nil
}

// emitOperator emits an n-ary operator application as a left fold
// (spec.md §4.4 "Emission (binary fold)"): the first operand is
// emitted, then each subsequent operand folds into the running result
// through the static primitive path, a resolved overload, the
// implicit-to-numeric retry, or the runtime Evaluate fallback.
func (e *Emitter) emitOperator(n *ast.Node, desired *typesys.TypeRef) (*typesys.TypeRef, error) {
	op := n.Operator()
	operands := n.Operands()

	if op == operator.LogicalTruth {
		return e.emitTruth(n)
	}
	if len(operands) < 2 {
		return nil, fmt.Errorf("emit: operator %s applied to %d operand(s)", op.Name(), len(operands))
	}

	st := e.State()
	autoPromote := st.Checked && st.PromoteOnOverflow

	current, err := e.emitOperand(operands[0])
	if err != nil {
		return nil, err
	}

	for _, rhs := range operands[1:] {
		next, err := e.foldOperand(op, current, rhs, autoPromote)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// foldOperand folds one rhs operand into the running lhs value already
// on the stack, returning the new running type.
func (e *Emitter) foldOperand(op *operator.Operator, current *typesys.TypeRef, rhs *ast.Node, autoPromote bool) (*typesys.TypeRef, error) {
	rhsType := emittableType(rhs.ValueType())
	bothKnown := current != typesys.Unknown && rhsType != typesys.Unknown

	// Static primitive path, closed to auto-promotion: once overflow
	// may widen the result, the static width would be a lie.
	if !autoPromote && bothKnown &&
		current.Code().IsPrimitiveNumeric() && rhsType.Code().IsPrimitiveNumeric() {
		return e.foldPrimitive(op, current, rhs, rhsType)
	}

	if bothKnown {
		res := operator.ResolveOverload(op, current, rhsType)
		if res.Ambiguous {
			return nil, fmt.Errorf("emit: ambiguous %s overload for %s and %s", op.Name(), current, rhsType)
		}
		if res.Match != nil {
			m := res.Match
			if err := e.EmitSafeConversion(current, m.Params[0], e.State().Checked); err != nil {
				return nil, err
			}
			if err := e.EmitTypedNode(rhs, m.Params[1]); err != nil {
				return nil, err
			}
			e.B.Call(m)
			return m.Return, nil
		}

		// Implicit-to-numeric retry.
		if !autoPromote {
			lnum := operator.ImplicitNumericType(current)
			rnum := operator.ImplicitNumericType(rhsType)
			if lnum != nil && rnum != nil {
				if err := e.EmitSafeConversion(current, lnum, e.State().Checked); err != nil {
					return nil, err
				}
				return e.foldPrimitive(op, lnum, rhs, rnum)
			}
		}
	}

	return e.foldRuntime(op, current, rhs)
}

// foldPrimitive promotes both sides to their common primitive type and
// emits the arithmetic opcode (spec.md §4.4 "Opcode choice").
func (e *Emitter) foldPrimitive(op *operator.Operator, current *typesys.TypeRef, rhs *ast.Node, rhsType *typesys.TypeRef) (*typesys.TypeRef, error) {
	common := typesys.TypeForCode(typesys.PromoteBinary(current.Code(), rhsType.Code()))
	if common == nil {
		return nil, fmt.Errorf("emit: no promotion for %s and %s", current, rhsType)
	}
	if operator.Rejects(op, common.Code()) {
		return nil, fmt.Errorf("emit: bitwise %s applied to floating-point %s", op.Name(), common)
	}
	// Floating remainder wants IEEE semantics from the runtime helper,
	// which is double-only; fold at Double.
	floatMod := op == operator.Modulus && common.Code().IsFloatingPoint()
	if floatMod {
		common = typesys.Double
	}
	if !hasFixedWidth(common.Code()) && !floatMod {
		// BigInt/Decimal-width folds have no direct opcodes; let the
		// runtime dispatcher handle them.
		return e.foldRuntime(op, current, rhs)
	}

	if err := e.EmitSafeConversion(current, common, e.State().Checked); err != nil {
		return nil, err
	}
	if err := e.EmitTypedNode(rhs, common); err != nil {
		return nil, err
	}

	checked := e.State().Checked && !common.Code().IsFloatingPoint()
	unsigned := common.Code().IsUnsigned()
	switch op {
	case operator.Add:
		e.B.Add(checked, unsigned)
	case operator.Subtract:
		e.B.Subtract(checked, unsigned)
	case operator.Multiply:
		e.B.Multiply(checked, unsigned)
	case operator.Divide:
		e.B.Divide(unsigned && !common.Code().IsFloatingPoint())
	case operator.Modulus:
		if floatMod {
			e.B.Call(FloatModMethod)
		} else {
			e.B.Remainder(unsigned)
		}
	case operator.BitwiseAnd:
		e.B.BitAnd()
	case operator.BitwiseOr:
		e.B.BitOr()
	case operator.BitwiseXor:
		e.B.BitXor()
	default:
		return nil, fmt.Errorf("emit: operator %s has no primitive opcode", op.Name())
	}
	return common, nil
}

// foldRuntime is the last-resort path: both operands become Objects,
// the operator singleton is invoked through its virtual Evaluate with
// the active options bitmask, and the running type degrades to Unknown
// (spec.md §4.4 step 2, final bullet).
func (e *Emitter) foldRuntime(op *operator.Operator, current *typesys.TypeRef, rhs *ast.Node) (*typesys.TypeRef, error) {
	if err := e.convertTo(current, typesys.Object); err != nil {
		return nil, err
	}
	tmp := e.AllocScratchLocal(typesys.Object)
	e.B.StoreLocal(tmp.Index)

	f := e.CacheConstant(op, OperatorType)
	e.B.LoadField(f)
	if err := tmp.EmitGet(e); err != nil {
		return nil, err
	}
	e.FreeLocalTemp(tmp)

	if err := e.EmitTypedNode(rhs, typesys.Object); err != nil {
		return nil, err
	}
	st := e.State()
	e.B.PushInt32(EvalOptionBits(st.Checked, st.PromoteOnOverflow))
	e.B.CallVirtual(EvaluateMethod)
	return typesys.Unknown, nil
}

// emitTruth emits the unary LogicalTruth operator: a Bool operand is
// used directly; anything else goes through the runtime truth test
// (spec.md §4.4 "LogicalTruth").
func (e *Emitter) emitTruth(n *ast.Node) (*typesys.TypeRef, error) {
	operands := n.Operands()
	if len(operands) != 1 {
		return nil, fmt.Errorf("emit: LogicalTruth expects one operand, got %d", len(operands))
	}
	operand := operands[0]
	t := emittableType(operand.ValueType())

	if operator.TruthFastPath(t) {
		if err := e.EmitTypedNode(operand, typesys.Bool); err != nil {
			return nil, err
		}
		return typesys.Bool, nil
	}
	if err := e.EmitTypedNode(operand, typesys.Object); err != nil {
		return nil, err
	}
	e.B.Call(TruthEvaluateMethod)
	return typesys.Bool, nil
}
