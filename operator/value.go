package operator

import (
	"math/big"

	"github.com/langforge/corelang/typesys"
)

// Value is the runtime counterpart of a TypeRef-typed expression,
// carried across the Evaluate fallback path (spec.md §4.4, §7
// "Runtime errors during interpreted evaluation"). It intentionally
// covers only the primitive numeric/string/bool shapes the operator
// dispatch table needs; a Language plug-in's own value representation
// is expected to convert to/from Value at the boundary.
//
// Big uses the standard library's math/big.Int as the default
// arbitrary-precision backing store. spec.md §1 explicitly places
// "arbitrary-precision integer/rational/complex arithmetic libraries"
// out of the core's scope and only requires that such a type exist and
// expose sign/magnitude; math/big is the stdlib's own such type, so
// using it here is not a stand-in for a dependency the spec asks for —
// a client that wires a real bignum library replaces this field with
// its own type behind the same Code tag.
type Value struct {
	Code typesys.Code
	I    int64
	U    uint64
	F    float64
	Big  *big.Int
	S    string
	B    bool
	Obj  interface{} // object-typed payload; nil means the null reference
}

func IntValue(c typesys.Code, v int64) Value  { return Value{Code: c, I: v} }
func UintValue(c typesys.Code, v uint64) Value { return Value{Code: c, U: v} }
func FloatValue(c typesys.Code, v float64) Value { return Value{Code: c, F: v} }
func BigValue(v *big.Int) Value               { return Value{Code: typesys.CodeBigInt, Big: v} }
func BoolValue(v bool) Value                  { return Value{Code: typesys.CodeBool, B: v} }
func StringValue(v string) Value              { return Value{Code: typesys.CodeString, S: v} }
func ObjectValue(v interface{}) Value         { return Value{Code: typesys.CodeObject, Obj: v} }

// IsTruthy implements LogicalTruth's semantics: null and false are
// false, all else is true (spec.md §4.4).
func (v Value) IsTruthy() bool {
	switch v.Code {
	case typesys.CodeBool:
		return v.B
	case typesys.CodeObject, typesys.CodeOther:
		return v.Obj != nil
	default:
		return true
	}
}
