package ast

import "github.com/langforge/corelang/typesys"

// SetValueContext implements spec.md §4.2's value-context propagation.
// The default stores desired as n's ContextType, then propagates the
// type each child is expected to produce to that child in turn; kinds
// whose children are not simply "read for a value" override the
// default so the propagated context matches their own contract:
//
//   - Assign: the LHS is a write target, not read, so it receives
//     Unknown; the RHS receives the LHS's resolved type as its desired
//     context (the value must convert to what is being stored into).
//   - Block: every non-last statement is evaluated for effect only and
//     receives Void; the last statement receives desired, since it is
//     the block's own result.
//   - If: the condition always wants Bool; both branches receive
//     desired.
//   - Options: recurses into its body with desired unchanged — the
//     CompilerState push happens in the pipeline traversal, same as
//     MarkTail.
//   - Function: each Parameter child receives Unknown, and a
//     parameter's default-value expression receives its own ValueType
//     (Unknown while unresolved); the body wants the function's
//     declared return type (carried as the Function node's own
//     ContextType, set by the caller before recursing).
func (n *Node) SetValueContext(desired *typesys.TypeRef) {
	n.contextType = desired

	switch n.kind {
	case KindAssign:
		n.AssignLHS().SetValueContext(typesys.Unknown)
		n.AssignRHS().SetValueContext(orUnknown(n.AssignLHS().ValueType()))
	case KindBlock:
		items := n.Children()
		for i, child := range items {
			if i == len(items)-1 {
				child.SetValueContext(desired)
			} else {
				child.SetValueContext(typesys.Void)
			}
		}
	case KindIf:
		n.IfCond().SetValueContext(typesys.Bool)
		n.IfThen().SetValueContext(desired)
		if elseBranch := n.IfElse(); elseBranch != nil {
			elseBranch.SetValueContext(desired)
		}
	case KindOp:
		for _, operand := range n.Operands() {
			operand.SetValueContext(orUnknown(operand.ValueType()))
		}
	case KindCast:
		n.CastOperand().SetValueContext(orUnknown(n.CastOperand().ValueType()))
	case KindFunction:
		for _, p := range n.FunctionParams() {
			p.SetValueContext(typesys.Unknown)
		}
		n.FunctionBody().SetValueContext(desired)
	case KindParameter:
		if d := n.ParameterDefault(); d != nil {
			d.SetValueContext(orUnknown(d.ValueType()))
		}
	case KindOptions:
		n.OptionsBody().SetValueContext(desired)
	case KindContainer:
		for _, child := range n.Children() {
			child.SetValueContext(orUnknown(child.ValueType()))
		}
	default: // Literal, Variable: leaves, nothing to propagate to.
	}
}

// orUnknown substitutes Unknown for a type resolution has not produced
// yet, so every child leaves decoration with a non-nil ContextType
// (spec.md §3.2 invariant).
func orUnknown(t *typesys.TypeRef) *typesys.TypeRef {
	if t == nil {
		return typesys.Unknown
	}
	return t
}
