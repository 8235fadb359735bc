package ast

import "fmt"

// childList is the container-child management strategy embedded in
// every container-kind Node: it enforces non-null inserts, forbids
// re-parenting an already-owned node, and keeps sibling links and
// indices correct after every mutation (spec.md §4.2, §8 property 1).
// Leaf-kind nodes never call init, so their Children() stays the nil
// slice's read-only empty view.
type childList struct {
	owner *Node
	items []*Node
}

func (c *childList) init(owner *Node) {
	c.owner = owner
}

// fixupFrom recomputes index/prev/next for the whole list. Child
// lists are small (operator arity, statement counts), so a full relink
// after an insert or remove is simpler than tracking the minimal dirty range
// and just as cheap in practice.
func (c *childList) fixupFrom(start int) {
	_ = start
	for i, child := range c.items {
		child.index = i
		if i > 0 {
			child.prev = c.items[i-1]
		} else {
			child.prev = nil
		}
		if i+1 < len(c.items) {
			child.next = c.items[i+1]
		} else {
			child.next = nil
		}
	}
}

// append adds child as the new last child.
func (c *childList) append(child *Node) {
	c.insertAt(len(c.items), child)
}

// insertAt inserts child at position i, shifting subsequent children
// right and fixing up every affected index/sibling pointer.
func (c *childList) insertAt(i int, child *Node) {
	if child == nil {
		panic("ast: cannot insert a nil child")
	}
	if c.owner == nil {
		panic("ast: leaf nodes cannot have children")
	}
	if child.parent != nil {
		panic(fmt.Sprintf("ast: node %s is already owned by another parent", child))
	}
	child.parent = c.owner
	c.items = append(c.items, nil)
	copy(c.items[i+1:], c.items[i:])
	c.items[i] = child
	c.fixupFrom(i)
}

// removeAt detaches the child at position i and returns it, with
// parent/sibling/index cleared so it can be re-inserted elsewhere.
func (c *childList) removeAt(i int) *Node {
	child := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	child.parent = nil
	child.prev = nil
	child.next = nil
	child.index = -1
	c.fixupFrom(i)
	return child
}

// Replace swaps old for replacement in place at old's known index,
// without shifting any other child (spec.md §4.2 "Replace(old, new) is
// O(1) given the old node's index"). old must currently be a child of
// n.
func (n *Node) Replace(old, replacement *Node) {
	if old.parent != n {
		panic("ast: Replace called with a node that is not a child of n")
	}
	i := old.index
	prev, next := old.prev, old.next
	old.parent = nil
	old.prev = nil
	old.next = nil
	old.index = -1

	replacement.parent = n
	replacement.index = i
	replacement.prev = prev
	replacement.next = next
	if prev != nil {
		prev.next = replacement
	}
	if next != nil {
		next.prev = replacement
	}
	n.children.items[i] = replacement
}

// RemoveChild detaches child from n's child list.
func (n *Node) RemoveChild(child *Node) *Node {
	if child.parent != n {
		panic("ast: RemoveChild called with a node that is not a child of n")
	}
	return n.children.removeAt(child.index)
}

// InsertChild inserts child at position i in n's child list.
func (n *Node) InsertChild(i int, child *Node) {
	n.children.insertAt(i, child)
}

// AppendChild appends child to n's child list.
func (n *Node) AppendChild(child *Node) {
	n.children.append(child)
}
