package ast

// MarkTail implements spec.md §3.2/§4.2's tail-propagation contract.
// The default behavior sets n's own tail flag and marks every child
// tail-false; control-flow-producing kinds override that default so
// that exactly one "result" subtree per node inherits tail-true:
//
//   - Block propagates tail only to its last child.
//   - If propagates to both the then and else branches (the condition
//     is never a tail position).
//   - Cast propagates tail to its operand — the operand is the cast's
//     result subtree; the conversion happens on the way out of the
//     frame.
//   - Function always marks its own body tail-true regardless of the
//     incoming value — entering a function starts a fresh tail frame —
//     while its own IsTail flag still records what the caller asked
//     for.
//   - Options recurses into its body with the same tail value; the
//     CompilerState push/pop around an Options node is the decoration
//     pipeline traversal's responsibility (spec.md §4.3), already in
//     effect by the time MarkTail reaches here, so MarkTail itself only
//     needs to propagate the flag.
//
// Every other kind (Literal, Variable, Assign, Op, Parameter,
// Container) uses the default: no node of these kinds has a tail-chain
// continuation, so all of their children are marked tail-false.
func (n *Node) MarkTail(tail bool) {
	n.SetFlag(FlagTail, tail)

	switch n.kind {
	case KindBlock:
		items := n.Children()
		for i, child := range items {
			child.MarkTail(i == len(items)-1 && tail)
		}
	case KindIf:
		n.IfCond().MarkTail(false)
		n.IfThen().MarkTail(tail)
		if elseBranch := n.IfElse(); elseBranch != nil {
			elseBranch.MarkTail(tail)
		}
	case KindCast:
		n.CastOperand().MarkTail(tail)
	case KindOptions:
		n.OptionsBody().MarkTail(tail)
	case KindFunction:
		for _, p := range n.FunctionParams() {
			p.MarkTail(false)
		}
		n.FunctionBody().MarkTail(true)
	default:
		for _, child := range n.Children() {
			child.MarkTail(false)
		}
	}
}
