// views.go provides set-valued DFS views over the APTA: raw states,
// merged-view states, and the accepting/rejecting partitions used by
// testable property 5 and by evaluators computing global statistics (e.g.
// mse.Evaluator.ComputeScore's RSS_total).
package apta

import "sort"

// NodeSet is a set of *Node, used throughout apta and merger in place of a
// C++ std::set<apta_node*>.
type NodeSet map[*Node]struct{}

// Add inserts n into the set.
func (s NodeSet) Add(n *Node) { s[n] = struct{}{} }

// Has reports whether n is a member.
func (s NodeSet) Has(n *Node) bool {
	_, ok := s[n]

	return ok
}

// Sorted returns the set's members ordered by Number, giving merger's
// search loop a deterministic iteration order - a Go map has none, but a
// reproducible merge sequence given the same traces is part of the
// contract (the ordering here stands in for the original's pointer-ordered
// std::set, which was itself just "whatever order nodes were allocated").
func (s NodeSet) Sorted() []*Node {
	out := make([]*Node, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })

	return out
}

func addStates(n *Node, out NodeSet) {
	if out.Has(n) {
		return
	}
	out.Add(n)
	for _, sym := range n.ChildOrder {
		child := n.Children[sym]
		if child != nil {
			addStates(child, out)
		}
	}
}

func addMergedStates(n *Node, out NodeSet) {
	if out.Has(n) {
		return
	}
	out.Add(n)
	for _, sym := range n.ChildOrder {
		child := n.Children[sym]
		if child != nil {
			addMergedStates(child.Find(), out)
		}
	}
}

// GetStates returns every raw node reachable from root (root itself
// included), un-resolved through the union-find.
func (a *APTA) GetStates(root *Node) NodeSet {
	out := make(NodeSet)
	addStates(root, out)

	return out
}

// GetMergedStates returns every class-root node reachable from root's class
// root, following children through Find at each step.
func (a *APTA) GetMergedStates(root *Node) NodeSet {
	out := make(NodeSet)
	addMergedStates(root.Find(), out)

	return out
}

// GetAcceptingStates returns every raw node in the tree with Type == 1.
func (a *APTA) GetAcceptingStates() NodeSet {
	states := a.GetStates(a.Root)
	out := make(NodeSet)
	for n := range states {
		if n.Type == 1 {
			out.Add(n)
		}
	}

	return out
}

// GetRejectingStates returns every raw node in the tree with Type != 1.
func (a *APTA) GetRejectingStates() NodeSet {
	states := a.GetStates(a.Root)
	out := make(NodeSet)
	for n := range states {
		if n.Type != 1 {
			out.Add(n)
		}
	}

	return out
}
