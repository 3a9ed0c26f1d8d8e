// merge.go implements the destructive merge/undo cascade (spec.md §4.3):
// Merge, MergeForce, MergeTest, and UndoMerge. These four functions are the
// lynchpin of the engine's reversibility contract (see the package doc);
// every other operation (TestMerge, PerformMerge, GetPossibleMerges) is
// built from them.
package merger

import (
	"fmt"

	"github.com/katalvlaran/aptamerge/apta"
)

// Merge performs a destructive, cascading merge of right into left.
//
// Returns false (a veto, not an error - see spec.md §7) if the local
// consistency check fails, or if RED_FIXED forbids absorbing one of
// right's children. On a false return partway through the children loop,
// the APTA is left in a partially-merged state: the caller MUST call
// UndoMerge(left, right) to restore it, exactly as spec.md §4.3 specifies.
func (m *Merger) Merge(left, right *apta.Node) bool {
	if left == nil || right == nil {
		return true
	}
	if !m.Eval.Consistent(m, left, right) {
		return false
	}

	if left.Red && m.Cfg.RedFixed {
		for _, s := range right.ChildOrder {
			rightChild := right.Children[s]
			if left.Child(s) == nil && !m.Eval.SinkConsistent(rightChild, 0) {
				return false
			}
		}
	}

	left.Data.Update(right.Data)
	if !m.Eval.ComputeBeforeMerge() {
		m.Eval.UpdateScore(m, left, right)
	}
	right.Representative = left
	left.Size += right.Size

	for _, s := range right.ChildOrder {
		rightChild := right.Children[s]
		if left.Child(s) == nil {
			left.SetChild(s, rightChild)
			continue
		}
		child := left.Child(s).Find()
		otherChild := rightChild.Find()
		if child == otherChild {
			continue
		}
		otherChild.DetUndo[s] = right
		if !m.Merge(child, otherChild) {
			return false
		}
	}

	return true
}

// MergeForce is the consistency-check-free variant used once a merge has
// already been chosen (spec.md §4.3's committed path via PerformMerge). It
// performs the same installation and cascade as Merge but never vetoes.
func (m *Merger) MergeForce(left, right *apta.Node) {
	if left == nil || right == nil {
		return
	}

	left.Data.Update(right.Data)
	right.Representative = left
	left.Size += right.Size

	for _, s := range right.ChildOrder {
		rightChild := right.Children[s]
		if left.Child(s) == nil {
			left.SetChild(s, rightChild)
			continue
		}
		child := left.Child(s).Find()
		otherChild := rightChild.Find()
		if child == otherChild {
			continue
		}
		otherChild.DetUndo[s] = right
		m.MergeForce(child, otherChild)
	}
}

// MergeTest is the speculative, non-installing variant: it walks the same
// cascade as Merge and accumulates score via UpdateScore (unless
// Eval.ComputeBeforeMerge is true), but never
// installs children nor mutates Representative/Size/payloads. Used for
// scoring when config.Config.MergeWhenTesting is false.
func (m *Merger) MergeTest(left, right *apta.Node) bool {
	if left == nil || right == nil {
		return true
	}
	if !m.Eval.Consistent(m, left, right) {
		return false
	}

	if left.Red && m.Cfg.RedFixed {
		for _, s := range right.ChildOrder {
			rightChild := right.Children[s]
			if left.Child(s) == nil && !m.Eval.SinkConsistent(rightChild, 0) {
				return false
			}
		}
	}

	if !m.Eval.ComputeBeforeMerge() {
		m.Eval.UpdateScore(m, left, right)
	}

	for _, s := range right.ChildOrder {
		rightChild := right.Children[s]
		if left.Child(s) == nil {
			continue
		}
		child := left.Child(s).Find()
		otherChild := rightChild.Find()
		if child == otherChild {
			continue
		}
		if !m.MergeTest(child, otherChild) {
			return false
		}
	}

	return true
}

// UndoMerge exactly reverses a Merge(left, right) call that returned true
// (or that aborted partway through the children loop), restoring
// byte-identical APTA state: children maps, det-undo entries,
// representative pointers, sizes, and evaluator payloads.
//
// It is a programming error - not a recoverable merge veto - for UndoMerge
// to find no det-undo entry for a cascaded conflict; that indicates the
// corresponding Merge call did not run to completion as expected, and the
// panic documents the invariant breach rather than silently corrupting the
// APTA (spec.md §7: "internal invariant breach ... fatal").
func (m *Merger) UndoMerge(left, right *apta.Node) {
	if left == nil || right == nil {
		return
	}
	if right.Representative != left {
		return
	}

	for i := len(right.ChildOrder) - 1; i >= 0; i-- {
		s := right.ChildOrder[i]
		rightChild := right.Children[s]

		switch {
		case left.Children[s] == rightChild:
			left.RemoveChild(s)
		case left.Children[s] != nil:
			descendant := rightChild.FindUntil(right, s)
			if descendant == nil {
				panic(fmt.Sprintf("merger: undo_merge invariant breach: no det_undo entry for symbol %d on node %d", s, rightChild.Number))
			}
			child := descendant.Representative
			if child != descendant {
				m.UndoMerge(child, descendant)
			}
			delete(descendant.DetUndo, s)
		}
	}

	left.Data.Undo(right.Data)
	left.Size -= right.Size
	right.Representative = nil
	m.Eval.UndoUpdate(m, left, right)
}
