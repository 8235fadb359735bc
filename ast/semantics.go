package ast

import (
	"fmt"

	"github.com/langforge/corelang/diag"
	"github.com/langforge/corelang/typesys"
)

// CheckContext carries what CheckSemantics/CheckSemantics2 need from
// the surrounding CompilerState without ast importing package decorate
// (which itself imports ast to walk the tree). TreatWarningsAsErrors
// mirrors the CompilerState flag of the same name (spec.md §3.6).
type CheckContext struct {
	Sink                  *diag.Sink
	TreatWarningsAsErrors bool
}

func (c *CheckContext) report(d diag.Diagnostic, pos diag.Position, args ...interface{}) {
	c.Sink.Report(d.ToMessage(c.TreatWarningsAsErrors, pos.Source, pos, args...))
}

// CheckSemantics is the prefix half of spec.md §4.2's CoreSemanticChecker
// contract: by the time it runs on n, ContextType and Scope must already
// be set (decoration always runs MarkTail+SetValueContext, then scope
// resolution, before the semantic-check walk), and n's ValueType must be
// convertible to its ContextType unless ContextType is Any and n is not
// a void-producing node.
func (n *Node) CheckSemantics(ctx *CheckContext) error {
	if n.contextType == nil {
		return fmt.Errorf("ast: node %s has no ContextType set before CheckSemantics", n)
	}
	if n.Scope() == nil {
		return fmt.Errorf("ast: node %s has no reachable Scope before CheckSemantics", n)
	}

	// A Void context means the value is evaluated for effect and
	// discarded (a non-last Block statement); an Unknown context marks
	// a write target resolved only at runtime (the LHS of Assign). Both
	// accept any ValueType without a static convertibility check, the
	// same way Any accepts any non-Void value.
	if n.valueType != nil && n.contextType != typesys.Any && n.contextType != typesys.Void && n.contextType != typesys.Unknown {
		if !typesys.HasImplicitConversion(n.valueType, n.contextType) && n.valueType != n.contextType {
			ctx.report(diag.CannotConvertType, n.pos, n.valueType.String(), n.contextType.String())
		}
	} else if n.contextType == typesys.Any && n.valueType == typesys.Void {
		ctx.report(diag.ExpectedValue, n.pos, typesys.Void.String())
	}

	if n.kind == KindVariable {
		if sym := n.varSymbol; sym == nil {
			if scope := n.Scope(); scope != nil {
				if sym, ok := scope.Resolve(n.varName); ok {
					n.varSymbol = sym
					n.valueType = sym.Type
				}
			}
		}
	}

	return nil
}

// CheckSemantics2 is the postfix half: it computes IsConstant bottom-up
// (spec.md §3.2: set only if every child is Constant and the node's own
// semantics admit compile-time evaluation) and reports late errors that
// can only be known once descendants have been visited — a write to a
// read-only variable, or a variable assigned to itself (spec.md §8
// properties 11/12).
func (n *Node) CheckSemantics2(ctx *CheckContext) error {
	switch n.kind {
	case KindLiteral, KindVariable, KindParameter:
		// Constancy already fixed at construction/resolution time.
	case KindAssign:
		n.SetFlag(FlagConstant, false) // an assignment is never itself a constant expression
		lhs, rhs := n.AssignLHS(), n.AssignRHS()
		if lhs.kind == KindVariable && lhs.varSymbol != nil {
			if lhs.varSymbol.IsReadOnly && !n.assignInitializing {
				ctx.report(diag.ReadOnlyVariableAssigned, n.pos, lhs.varName)
			}
		}
		if lhs.kind == KindVariable && rhs.kind == KindVariable && lhs.IsSameSlotAs(rhs) {
			ctx.report(diag.VariableAssignedToSelf, n.pos, lhs.varName)
		}
	default:
		allConstant := true
		for _, child := range n.Children() {
			if !child.IsConstant() {
				allConstant = false
				break
			}
		}
		n.SetFlag(FlagConstant, allConstant && n.admitsCompileTimeEvaluation())
	}
	return nil
}

// admitsCompileTimeEvaluation reports whether a compound node's
// semantics permit constant folding even when every child is constant.
// Function and Options nodes never fold: a function's body executing at
// compile time has no meaning, and an Options node changes the active
// CompilerState rather than producing a value.
func (n *Node) admitsCompileTimeEvaluation() bool {
	switch n.kind {
	case KindFunction, KindOptions, KindContainer:
		return false
	default:
		return true
	}
}

// IsSameSlotAs reports whether n and other denote the same storage
// location, used to detect self-assignment (spec.md §3.2, §8 property
// 12). For Variable nodes this is symbol identity; the emitter's own
// Slot.IsSameAs handles the richer field/array-element/closure-cell
// cases once slots have been allocated.
func (n *Node) IsSameSlotAs(other *Node) bool {
	if n.kind != KindVariable || other.kind != KindVariable {
		return false
	}
	return n.varSymbol != nil && n.varSymbol == other.varSymbol
}
