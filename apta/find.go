// find.go implements the union-find view over the APTA: Find, FindUntil,
// and the raw/merged child accessors the merge engine and evaluators rely
// on. No path compression is performed here; see the doc comment on Find.
package apta

// Find walks the Representative chain to this node's current class root.
//
// Deliberately no path compression: compressing the chain during a
// speculative merge would make UndoMerge's reversal either incomplete or
// require its own undo log for the compression itself. Spec §9 allows path
// compression only if it is reversible or skipped during speculative
// merges; this implementation simply never compresses, trading a bounded
// extra walk (chain length is bounded by merge count) for a trivially
// correct undo.
func (n *Node) Find() *Node {
	if n.Representative == nil {
		return n
	}

	return n.Representative.Find()
}

// Child returns the raw (un-merged) child installed for symbol, or nil.
func (n *Node) Child(symbol int) *Node {
	return n.Children[symbol]
}

// GetChild resolves through the union-find: self.Find().Child(symbol).Find(),
// or nil if no such transition exists.
func (n *Node) GetChild(symbol int) *Node {
	root := n.Find()
	child := root.Child(symbol)
	if child == nil {
		return nil
	}

	return child.Find()
}

// FindUntil walks the representative chain starting at n until it reaches
// a node whose DetUndo[symbol] == ancestor, returning that node, or nil if
// the chain ends first. Used by UndoMerge to locate the exact descendant
// that recorded a given cascade step.
func (n *Node) FindUntil(ancestor *Node, symbol int) *Node {
	if n.DetUndo[symbol] == ancestor {
		return n
	}
	if n.Representative == nil {
		return nil
	}

	return n.Representative.FindUntil(ancestor, symbol)
}

// NextForward returns the first child in insertion order, the raw (un-merged)
// forward step of the stable traversal order defined in spec.md §4.1.
func (n *Node) NextForward() *Node {
	if len(n.ChildOrder) == 0 {
		return nil
	}

	return n.Children[n.ChildOrder[0]]
}

// NextBackward returns the next sibling after n in its parent's insertion
// order, or recurses to the parent's NextBackward if n was the last child.
func (n *Node) NextBackward() *Node {
	if n.Source == nil {
		return nil
	}
	order := n.Source.ChildOrder
	for i, sym := range order {
		if n.Source.Children[sym] == n {
			if i+1 < len(order) {
				return n.Source.Children[order[i+1]]
			}

			return n.Source.NextBackward()
		}
	}

	return n.Source.NextBackward()
}

// NextNode returns the next raw node in the stable in-order traversal:
// forward (first child) if one exists, else backward (next sibling, or the
// ancestor chain's next sibling).
func (a *APTA) NextNode(cur *Node) *Node {
	next := cur.NextForward()
	if next == nil {
		next = cur.NextBackward()
	}

	return next
}

// NextMergedNode is NextNode's merged-view counterpart: it skips any raw
// node that has since been absorbed into another class (Representative !=
// nil), continuing the backward walk until it finds a surviving class root
// or exhausts the tree.
func (a *APTA) NextMergedNode(cur *Node) *Node {
	next := cur.NextForward()
	if next == nil {
		next = cur.NextBackward()
	}
	for next != nil && next.Representative != nil {
		next = next.NextBackward()
	}

	return next
}
