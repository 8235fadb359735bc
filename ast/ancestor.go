package ast

// GetAncestor walks the parent chain starting at n's parent and returns
// the nearest ancestor of the given kind, or nil if none exists
// (spec.md §4.2, §8 property 2).
func GetAncestor(n *Node, kind Kind) *Node {
	for cur := n.parent; cur != nil; cur = cur.parent {
		if cur.kind == kind {
			return cur
		}
	}
	return nil
}

// GetDescendants yields every descendant of n with the given kind, in
// document (depth-first, pre-order) order (spec.md §4.2, §8 property
// 2).
func GetDescendants(n *Node, kind Kind) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, child := range cur.Children() {
			if child.kind == kind {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(n)
	return out
}

// Walk visits n and every descendant in document order, calling visit
// on each. Returning false from visit stops descent into that node's
// children (but sibling traversal continues).
func Walk(n *Node, visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, child := range n.Children() {
		Walk(child, visit)
	}
}
