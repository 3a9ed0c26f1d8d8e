// check.go implements InitializeAPTA (binding every APTA node to a safety
// state) and the two merge-time vetoes, PreCheckSafety and PostCheckSafety,
// satisfying merger.SafetyFilter. Grounded on original_source's
// safety.cpp:initializeAPTA/_runPolynomialAlgorithm/_runGreedyAlgorithm.
package safety

import (
	"fmt"

	"github.com/katalvlaran/aptamerge/apta"
)

// safetyNodeOf reads the opaque back-pointer InitializeAPTA attached to n,
// or nil if n has none.
func safetyNodeOf(n *apta.Node) *Node {
	if n.SafetyNode == nil {
		return nil
	}

	return n.SafetyNode.(*Node)
}

// InitializeAPTA walks the raw (pre-merge) APTA breadth-first from its
// root, binding each node to the safety state reached by following its
// incoming transition's symbol, and failing if any transition is satisfied
// by zero or more than one outgoing formula of its safety state. A no-op if
// the DFA was never loaded (root nil) or already initialized.
func (d *DFA) InitializeAPTA(aut *apta.APTA) error {
	if d.root == nil {
		return nil
	}
	if d.initialized {
		return nil
	}

	for s := 0; s < aut.AlphabetSize(); s++ {
		d.alphabet[aut.SymbolName(s)] = struct{}{}
	}

	initNode := d.root.outgoing(d.emptyTransitionSym)
	aut.Root.SafetyNode = initNode
	d.aut = aut

	queue := []*apta.Node{aut.Root}
	for len(queue) > 0 {
		ql := queue[0]
		queue = queue[1:]
		qs := safetyNodeOf(ql)
		formulas := qs.outgoingFormulas()

		for s := 0; s < aut.AlphabetSize(); s++ {
			child := ql.Child(s)
			if child == nil {
				continue
			}

			symbol := aut.SymbolName(s)
			next, ok := stepFormulas(formulas, qs.outgoing, symbol, d.alphabet, d.ops)
			if !ok {
				return fmt.Errorf("%w: symbol %q from state %q", ErrUnsafeTrace, symbol, qs.Name)
			}

			child.SafetyNode = next
			queue = append(queue, child)
		}
	}

	d.initialized = true

	return nil
}

// PreCheckSafety implements merger.SafetyFilter: under Polynomial, it
// vetoes a merge whose two sides sit in different safety states (a cheap
// necessary condition for safety); under any other algorithm, or before
// InitializeAPTA has run, it never vetoes.
func (d *DFA) PreCheckSafety(left, right *apta.Node) bool {
	if d.root == nil || d.algorithm != Polynomial {
		return true
	}

	ls := safetyNodeOf(left)
	rs := safetyNodeOf(right)
	if ls == nil || rs == nil {
		return true
	}

	return ls.Name == rs.Name
}

// PostCheckSafety implements merger.SafetyFilter: under Greedy, it vetoes a
// merge that would let the determinized automaton reach a product state
// (apta node, safety node) pair via a transition the safety DFA cannot
// follow deterministically; under any other algorithm it never vetoes.
func (d *DFA) PostCheckSafety(left, right *apta.Node) bool {
	if d.root == nil || d.algorithm != Greedy {
		return true
	}

	return d.runGreedy()
}

// productState is one node of the synchronous product graph the greedy
// algorithm explores: a resolved APTA class root paired with the safety
// state it has been driven to.
type productState struct {
	aptaNode   *apta.Node
	safetyNode *Node
}

// runGreedy walks the product graph breadth-first from the automaton's
// root, following every live (merged-view) transition and rejecting if any
// step is satisfied by zero or more than one formula of the current safety
// state.
func (d *DFA) runGreedy() bool {
	initNode := d.root.outgoing(d.emptyTransitionSym)
	rootResolved := d.aut.Root.Find()

	visited := map[productState]bool{{rootResolved, initNode}: true}

	queue := []productState{{rootResolved, initNode}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		formulas := cur.safetyNode.outgoingFormulas()

		for s := 0; s < d.aut.AlphabetSize(); s++ {
			target := cur.aptaNode.Child(s)
			if target == nil {
				continue
			}

			symbol := d.aut.SymbolName(s)
			nextSafety, ok := stepFormulas(formulas, cur.safetyNode.outgoing, symbol, d.alphabet, d.ops)
			if !ok {
				return false
			}

			next := productState{target.Find(), nextSafety}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	return true
}
