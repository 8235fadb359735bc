// Package operator resolves n-ary arithmetic, bitwise, and truth
// operators across primitive types and user overloads, choosing
// between an overload call, a primitive opcode, or a runtime fallback
// (spec.md §4.4).
package operator

import "github.com/langforge/corelang/typesys"

// Operator is a singleton value identifying one operator kind. Clients
// may register further instances for language-specific operators, but
// the core set below (spec.md §4.4) is always present.
type Operator struct {
	name         string
	arity        int
	overloadName string // "" for operators with no overloadable form (LogicalTruth)
}

// New registers a language-specific operator singleton. arity may be
// -1 for variable-arity operators; overloadName is "" when user types
// cannot overload it.
func New(name string, arity int, overloadName string) *Operator {
	return &Operator{name: name, arity: arity, overloadName: overloadName}
}

func (o *Operator) Name() string         { return o.name }
func (o *Operator) Arity() int           { return o.arity }
func (o *Operator) OverloadName() string { return o.overloadName }
func (o *Operator) String() string       { return o.name }

// IsOverloadable reports whether user types may provide an overload for
// this operator via a static op_<Name> method.
func (o *Operator) IsOverloadable() bool { return o.overloadName != "" }

// Core operator singletons.
var (
	Add         = &Operator{name: "+", arity: 2, overloadName: "op_Addition"}
	Subtract    = &Operator{name: "-", arity: 2, overloadName: "op_Subtraction"}
	Multiply    = &Operator{name: "*", arity: 2, overloadName: "op_Multiply"}
	Divide      = &Operator{name: "/", arity: 2, overloadName: "op_Division"}
	Modulus     = &Operator{name: "%", arity: 2, overloadName: "op_Modulus"}
	BitwiseAnd  = &Operator{name: "&", arity: 2, overloadName: "op_BitwiseAnd"}
	BitwiseOr   = &Operator{name: "|", arity: 2, overloadName: "op_BitwiseOr"}
	BitwiseXor  = &Operator{name: "^", arity: 2, overloadName: "op_ExclusiveOr"}
	LogicalTruth = &Operator{name: "truth", arity: 1}
)

// IsBitwise reports whether op is one of the integer-only bitwise
// operators, which reject floating operands at type-check time
// (spec.md §4.4 "opcode choice").
func IsBitwise(op *Operator) bool {
	return op == BitwiseAnd || op == BitwiseOr || op == BitwiseXor
}

// Rejects reports whether op refuses floating-point operands.
func Rejects(op *Operator, code typesys.Code) bool {
	return IsBitwise(op) && code.IsFloatingPoint()
}
