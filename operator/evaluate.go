package operator

import (
	"fmt"
	"math"
	"math/big"

	"github.com/langforge/corelang/typesys"
)

// EvalOptions mirrors the CompilerState policy bits Evaluate consults
// at runtime (spec.md §4.4 "Runtime Evaluate(a, b, options)").
type EvalOptions struct {
	Checked bool
	Promote bool
}

// OverflowError is raised when an integer operation overflows its
// result type under Checked semantics without Promote.
type OverflowError struct {
	Op string
}

func (e *OverflowError) Error() string { return fmt.Sprintf("overflow in %s", e.Op) }

// DivideByZeroError is raised by integer division/modulus by zero.
type DivideByZeroError struct{}

func (e *DivideByZeroError) Error() string { return "division by zero" }

// CantApplyOperatorError is raised when no overload, primitive rule, or
// implicit numeric conversion applies.
type CantApplyOperatorError struct {
	Op          string
	Left, Right typesys.Code
}

func (e *CantApplyOperatorError) Error() string {
	return fmt.Sprintf("cannot apply operator %s to %s and %s", e.Op, e.Left, e.Right)
}

// Evaluate is the runtime fallback path: normalize both operands to a
// common representation, then dispatch by type code. Under Checked, an
// overflow either widens and retries (when Promote is set: int -> long
// -> BigInt, uint -> ulong -> BigInt) or returns an OverflowError.
func Evaluate(op *Operator, a, b Value, opts EvalOptions) (Value, error) {
	if op == Divide || op == Modulus {
		return evaluateDivMod(op, a, b, opts)
	}
	if op == Add || op == Subtract || op == Multiply {
		return evaluateArith(op, a, b, opts)
	}
	if IsBitwise(op) {
		return evaluateBitwise(op, a, b)
	}
	return Value{}, &CantApplyOperatorError{Op: op.Name(), Left: a.Code, Right: b.Code}
}

func evaluateArith(op *Operator, a, b Value, opts EvalOptions) (Value, error) {
	code := typesys.PromoteBinary(a.Code, b.Code)
	switch code {
	case typesys.CodeInt:
		return evalInt32(op, a, b, opts)
	case typesys.CodeLong:
		return evalInt64(op, a, b, opts)
	case typesys.CodeUInt:
		return evalUint32(op, a, b, opts)
	case typesys.CodeULong:
		return evalUint64(op, a, b, opts)
	case typesys.CodeBigInt:
		return evalBigInt(op, a, b)
	case typesys.CodeSingle, typesys.CodeDouble, typesys.CodeDecimal:
		return evalFloat(op, a, b, code)
	default:
		return Value{}, &CantApplyOperatorError{Op: op.Name(), Left: a.Code, Right: b.Code}
	}
}

func apply(op *Operator, x, y int64) int64 {
	switch op {
	case Add:
		return x + y
	case Subtract:
		return x - y
	default:
		return x * y
	}
}

func evalInt32(op *Operator, a, b Value, opts EvalOptions) (Value, error) {
	x, y := int64(int32(a.I)), int64(int32(b.I))
	result := apply(op, x, y)
	if result >= math.MinInt32 && result <= math.MaxInt32 {
		return IntValue(typesys.CodeInt, result), nil
	}
	if !opts.Checked {
		return IntValue(typesys.CodeInt, int64(int32(result))), nil
	}
	if !opts.Promote {
		return Value{}, &OverflowError{Op: op.Name()}
	}
	// widen int -> long, retry.
	return evalInt64(op, IntValue(typesys.CodeLong, x), IntValue(typesys.CodeLong, y), opts)
}

func evalInt64(op *Operator, a, b Value, opts EvalOptions) (Value, error) {
	x, y := a.I, b.I
	result, overflowed := addOverflows(op, x, y)
	if !overflowed {
		return IntValue(typesys.CodeLong, result), nil
	}
	if !opts.Checked {
		return IntValue(typesys.CodeLong, result), nil
	}
	if !opts.Promote {
		return Value{}, &OverflowError{Op: op.Name()}
	}
	bx, by := big.NewInt(x), big.NewInt(y)
	return BigValue(bigApply(op, bx, by)), nil
}

// addOverflows performs the 64-bit op and reports whether it overflowed
// signed 64-bit range, since Go's native int64 arithmetic wraps
// silently instead of trapping.
func addOverflows(op *Operator, x, y int64) (int64, bool) {
	switch op {
	case Add:
		r := x + y
		return r, (y > 0 && r < x) || (y < 0 && r > x)
	case Subtract:
		r := x - y
		return r, (y < 0 && r < x) || (y > 0 && r > x)
	default: // Multiply
		if x == 0 || y == 0 {
			return 0, false
		}
		r := x * y
		// MinInt64 * -1 wraps to MinInt64, and MinInt64 / -1 is MinInt64
		// again, so the division check alone misses it.
		return r, r/y != x || (y == -1 && x == math.MinInt64)
	}
}

func evalUint32(op *Operator, a, b Value, opts EvalOptions) (Value, error) {
	x, y := uint64(uint32(a.U)), uint64(uint32(b.U))
	var result uint64
	switch op {
	case Add:
		result = x + y
	case Subtract:
		result = x - y
	default:
		result = x * y
	}
	if result <= math.MaxUint32 && (op != Subtract || x >= y) {
		return UintValue(typesys.CodeUInt, result), nil
	}
	if !opts.Checked {
		return UintValue(typesys.CodeUInt, uint64(uint32(result))), nil
	}
	if !opts.Promote {
		return Value{}, &OverflowError{Op: op.Name()}
	}
	return evalUint64(op, UintValue(typesys.CodeULong, x), UintValue(typesys.CodeULong, y), opts)
}

func evalUint64(op *Operator, a, b Value, opts EvalOptions) (Value, error) {
	x, y := a.U, b.U
	var result uint64
	overflow := false
	switch op {
	case Add:
		result = x + y
		overflow = result < x
	case Subtract:
		result = x - y
		overflow = y > x
	default:
		if x != 0 && y != 0 {
			result = x * y
			overflow = result/y != x
		}
	}
	if !overflow {
		return UintValue(typesys.CodeULong, result), nil
	}
	if !opts.Checked {
		return UintValue(typesys.CodeULong, result), nil
	}
	if !opts.Promote {
		return Value{}, &OverflowError{Op: op.Name()}
	}
	bx, by := new(big.Int).SetUint64(x), new(big.Int).SetUint64(y)
	return BigValue(bigApply(op, bx, by)), nil
}

func bigApply(op *Operator, x, y *big.Int) *big.Int {
	switch op {
	case Add:
		return new(big.Int).Add(x, y)
	case Subtract:
		return new(big.Int).Sub(x, y)
	default:
		return new(big.Int).Mul(x, y)
	}
}

func evalBigInt(op *Operator, a, b Value) (Value, error) {
	x, y := bigOf(a), bigOf(b)
	return BigValue(bigApply(op, x, y)), nil
}

func bigOf(v Value) *big.Int {
	if v.Big != nil {
		return v.Big
	}
	if v.Code.IsUnsigned() {
		return new(big.Int).SetUint64(v.U)
	}
	return big.NewInt(v.I)
}

func evalFloat(op *Operator, a, b Value, code typesys.Code) (Value, error) {
	x, y := floatOf(a), floatOf(b)
	var r float64
	switch op {
	case Add:
		r = x + y
	case Subtract:
		r = x - y
	default:
		r = x * y
	}
	return FloatValue(code, r), nil
}

func floatOf(v Value) float64 {
	if v.Code.IsFloatingPoint() {
		return v.F
	}
	if v.Big != nil {
		f, _ := new(big.Float).SetInt(v.Big).Float64()
		return f
	}
	if v.Code.IsUnsigned() {
		return float64(v.U)
	}
	return float64(v.I)
}

func evaluateDivMod(op *Operator, a, b Value, opts EvalOptions) (Value, error) {
	code := typesys.PromoteBinary(a.Code, b.Code)
	if code.IsFloatingPoint() {
		x, y := floatOf(a), floatOf(b)
		if op == Divide {
			return FloatValue(code, x/y), nil // IEEE: x/0 -> +-Inf or NaN, never an error
		}
		return FloatValue(code, math.Mod(x, y)), nil
	}
	if code == typesys.CodeBigInt {
		x, y := bigOf(a), bigOf(b)
		if y.Sign() == 0 {
			return Value{}, &DivideByZeroError{}
		}
		if op == Divide {
			return BigValue(new(big.Int).Quo(x, y)), nil
		}
		return BigValue(new(big.Int).Rem(x, y)), nil
	}
	if code.IsUnsigned() {
		x, y := uintOf(a), uintOf(b)
		if y == 0 {
			return Value{}, &DivideByZeroError{}
		}
		if op == Divide {
			return UintValue(code, x/y), nil
		}
		return UintValue(code, x%y), nil
	}
	x, y := intOf(a), intOf(b)
	if y == 0 {
		return Value{}, &DivideByZeroError{}
	}
	if op == Divide {
		return IntValue(code, x/y), nil
	}
	return IntValue(code, x%y), nil
}

func intOf(v Value) int64 {
	if v.Big != nil {
		return v.Big.Int64()
	}
	if v.Code.IsUnsigned() {
		return int64(v.U)
	}
	return v.I
}

func uintOf(v Value) uint64 {
	if v.Big != nil {
		return v.Big.Uint64()
	}
	if !v.Code.IsUnsigned() {
		return uint64(v.I)
	}
	return v.U
}

func evaluateBitwise(op *Operator, a, b Value) (Value, error) {
	if a.Code.IsFloatingPoint() || b.Code.IsFloatingPoint() {
		return Value{}, &CantApplyOperatorError{Op: op.Name(), Left: a.Code, Right: b.Code}
	}
	code := typesys.PromoteBinary(a.Code, b.Code)
	x, y := intOf(a), intOf(b)
	var r int64
	switch op {
	case BitwiseAnd:
		r = x & y
	case BitwiseOr:
		r = x | y
	default:
		r = x ^ y
	}
	return IntValue(code, r), nil
}
