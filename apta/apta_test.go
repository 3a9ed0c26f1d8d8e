package apta_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/aptamerge/apta"
)

func TestInternAssignsDenseIndices(t *testing.T) {
	a := apta.New()
	require.Equal(t, 0, a.Intern("a"))
	require.Equal(t, 1, a.Intern("b"))
	require.Equal(t, 0, a.Intern("a"), "re-interning an existing symbol must return the same index")
	require.Equal(t, 2, a.AlphabetSize())
	require.Equal(t, "a", a.SymbolName(0))
	require.Equal(t, "b", a.SymbolName(1))
}

func TestAddChildIsIdempotentPerSymbol(t *testing.T) {
	a := apta.New()
	sym := a.Intern("x")
	c1 := a.AddChild(a.Root, sym, 1)
	c2 := a.AddChild(a.Root, sym, 1)
	require.Same(t, c1, c2, "adding the same symbol twice must return the existing child")
	require.Equal(t, []int{sym}, a.Root.ChildOrder)
}

func TestFindIsIdentityBeforeAnyMerge(t *testing.T) {
	a := apta.New()
	sym := a.Intern("x")
	child := a.AddChild(a.Root, sym, 1)
	require.Same(t, a.Root, a.Root.Find())
	require.Same(t, child, child.Find())
}

func TestFindFollowsRepresentativeChain(t *testing.T) {
	a := apta.New()
	s0, s1 := a.Intern("0"), a.Intern("1")
	n1 := a.AddChild(a.Root, s0, 1)
	n2 := a.AddChild(a.Root, s1, 1)
	n3 := a.AddChild(n1, s0, 1)

	// Chain n3 -> n2 -> n1, with no path compression: Find must still reach
	// the true root of the chain from any link.
	n3.Representative = n2
	n2.Representative = n1

	require.Same(t, n1, n3.Find())
	require.Same(t, n1, n2.Find())
	require.Same(t, n1, n1.Find())
}

func TestGetChildResolvesThroughMergedRepresentative(t *testing.T) {
	a := apta.New()
	sx := a.Intern("x")
	sy := a.Intern("y")

	left := a.AddChild(a.Root, sx, 1)
	right := a.AddChild(a.Root, sy, 1)
	grandchild := a.AddChild(right, sx, 1)

	right.Representative = left
	left.SetChild(sx, grandchild)

	require.Same(t, grandchild, right.GetChild(sx))
	require.Nil(t, a.Root.GetChild(99))
}

func TestSetChildAndRemoveChildKeepChildOrderConsistent(t *testing.T) {
	a := apta.New()
	s0, s1 := a.Intern("0"), a.Intern("1")
	c0 := a.AddChild(a.Root, s0, 1)
	c1 := a.AddChild(a.Root, s1, 1)

	require.Equal(t, []int{s0, s1}, a.Root.ChildOrder)

	a.Root.RemoveChild(s0)
	require.Equal(t, []int{s1}, a.Root.ChildOrder)
	require.Nil(t, a.Root.Child(s0))
	require.Same(t, c1, a.Root.Child(s1))
	require.NotNil(t, c0) // removed from the tree, but the node itself still exists
}

func TestNextForwardAndNextBackwardTraverseInInsertionOrder(t *testing.T) {
	a := apta.New()
	s0, s1 := a.Intern("0"), a.Intern("1")
	root := a.Root
	c0 := a.AddChild(root, s0, 1)
	c1 := a.AddChild(root, s1, 1)
	g0 := a.AddChild(c0, s0, 1)

	require.Same(t, c0, root.NextForward())
	require.Same(t, g0, c0.NextForward())
	require.Nil(t, g0.NextForward())

	require.Same(t, c1, c0.NextBackward())
	require.Nil(t, c1.NextBackward())
	require.Same(t, c1, g0.NextBackward(), "exhausting a subtree backs up to the parent's next sibling")
}

func TestNextNodeWalksEntireTreeOnce(t *testing.T) {
	a := apta.New()
	s0, s1 := a.Intern("0"), a.Intern("1")
	root := a.Root
	c0 := a.AddChild(root, s0, 1)
	c1 := a.AddChild(root, s1, 1)
	g0 := a.AddChild(c0, s0, 1)

	var seen []*apta.Node
	for n := root; n != nil; n = a.NextNode(n) {
		seen = append(seen, n)
	}
	require.Equal(t, []*apta.Node{root, c0, g0, c1}, seen)
}

func TestNextMergedNodeSkipsAbsorbedNodes(t *testing.T) {
	a := apta.New()
	s0, s1 := a.Intern("0"), a.Intern("1")
	root := a.Root
	c0 := a.AddChild(root, s0, 1)
	c1 := a.AddChild(root, s1, 1)

	c0.Representative = c1 // c0 absorbed, should be skipped by the merged-view walk

	var seen []*apta.Node
	for n := root; n != nil; n = a.NextMergedNode(n) {
		seen = append(seen, n)
	}
	require.Equal(t, []*apta.Node{root, c1}, seen)
}

func TestGetStatesReturnsEveryRawNode(t *testing.T) {
	a := apta.New()
	s0, s1 := a.Intern("0"), a.Intern("1")
	c0 := a.AddChild(a.Root, s0, 1)
	c1 := a.AddChild(a.Root, s1, 0)
	g0 := a.AddChild(c0, s0, 1)

	states := a.GetStates(a.Root)
	require.Len(t, states, 4)
	for _, n := range []*apta.Node{a.Root, c0, c1, g0} {
		require.True(t, states.Has(n))
	}
}

func TestGetMergedStatesFollowsFindAtEveryStep(t *testing.T) {
	a := apta.New()
	s0, s1 := a.Intern("0"), a.Intern("1")
	c0 := a.AddChild(a.Root, s0, 1)
	c1 := a.AddChild(a.Root, s1, 1)
	c1.Representative = c0
	c0.Size = 2

	merged := a.GetMergedStates(a.Root)
	require.Len(t, merged, 2)
	require.True(t, merged.Has(a.Root))
	require.True(t, merged.Has(c0))
	require.False(t, merged.Has(c1))
}

func TestGetAcceptingAndRejectingStatesPartitionByType(t *testing.T) {
	a := apta.New()
	s0, s1 := a.Intern("0"), a.Intern("1")
	accepting := a.AddChild(a.Root, s0, 1)
	rejecting := a.AddChild(a.Root, s1, 0)

	acc := a.GetAcceptingStates()
	rej := a.GetRejectingStates()

	require.True(t, acc.Has(accepting))
	require.False(t, acc.Has(rejecting))
	require.True(t, rej.Has(rejecting))
	require.True(t, rej.Has(a.Root), "root has Type 0 and counts as rejecting")
}

func TestNodeSetSortedOrdersByNumber(t *testing.T) {
	a := apta.New()
	s0, s1, s2 := a.Intern("0"), a.Intern("1"), a.Intern("2")
	n1 := a.AddChild(a.Root, s0, 1)
	n2 := a.AddChild(a.Root, s1, 1)
	n3 := a.AddChild(a.Root, s2, 1)

	set := make(apta.NodeSet)
	set.Add(n3)
	set.Add(n1)
	set.Add(n2)

	sorted := set.Sorted()
	require.Len(t, sorted, 3)
	for i := 1; i < len(sorted); i++ {
		require.Less(t, sorted[i-1].Number, sorted[i].Number)
	}
}

func TestFindUntilLocatesDetUndoEntry(t *testing.T) {
	a := apta.New()
	s0 := a.Intern("0")
	ancestor := a.AddChild(a.Root, s0, 1)
	descendant := a.AddChild(ancestor, s0, 1)

	descendant.DetUndo[s0] = ancestor
	require.Same(t, descendant, descendant.FindUntil(ancestor, s0))
	require.Nil(t, descendant.FindUntil(ancestor, 99))
}
