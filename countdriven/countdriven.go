// Package countdriven implements the default evaluator (spec.md component
// C4): merges are scored purely by how many node pairs a cascade visits,
// and consistency vetoes any merge that would fuse an accepting final state
// with a rejecting one. It is grounded on original_source's state_driven
// evaluator, the heuristic selected by config.CountDriven.
package countdriven

import (
	"github.com/katalvlaran/aptamerge/apta"
	"github.com/katalvlaran/aptamerge/config"
	"github.com/katalvlaran/aptamerge/evaluator"
	"github.com/katalvlaran/aptamerge/registry"
)

func init() {
	registry.Register("countdriven", func(cfg config.Config) evaluator.Evaluator { return New(cfg) })
	registry.RegisterID(config.CountDriven, "countdriven")
}

// Payload is the per-node data the count-driven evaluator attaches to every
// apta.Node: final-state counts (NumAccepting/NumRejecting) and traversal
// counts (AcceptingPaths/RejectingPaths), exactly mirroring
// original_source's state_data.
type Payload struct {
	NumAccepting   int
	NumRejecting   int
	AcceptingPaths int
	RejectingPaths int
}

var _ apta.Payload = (*Payload)(nil)

// ReadFrom increments the traversal counter for the trace type leaving this
// node on a transition.
func (p *Payload) ReadFrom(typ, index, length, symbol int, data string) {
	if typ == 1 {
		p.AcceptingPaths++
	} else {
		p.RejectingPaths++
	}
}

// ReadTo increments the final-state counter when a trace of the given type
// terminates at this node (length == index+1).
func (p *Payload) ReadTo(typ, index, length, symbol int, data string) {
	if length != index+1 {
		return
	}
	if typ == 1 {
		p.NumAccepting++
	} else {
		p.NumRejecting++
	}
}

// Update absorbs other's counts into the receiver.
func (p *Payload) Update(other apta.Payload) {
	o := other.(*Payload)
	p.NumAccepting += o.NumAccepting
	p.NumRejecting += o.NumRejecting
	p.AcceptingPaths += o.AcceptingPaths
	p.RejectingPaths += o.RejectingPaths
}

// Undo exactly reverses the most recent Update(other).
func (p *Payload) Undo(other apta.Payload) {
	o := other.(*Payload)
	p.NumAccepting -= o.NumAccepting
	p.NumRejecting -= o.NumRejecting
	p.AcceptingPaths -= o.AcceptingPaths
	p.RejectingPaths -= o.RejectingPaths
}

// Evaluator implements evaluator.Evaluator for the count-driven heuristic:
// ComputeBeforeMerge is false (score is the number of pairs visited during
// the cascade, so it can only be known once the cascade finishes), and
// Consistent/ComputeConsistency both veto on accepting/rejecting overlap -
// Consistent checks it eagerly per pair so an inconsistent cascade aborts as
// early as possible, ComputeConsistency re-checks the merged root pair.
type Evaluator struct {
	useSinks bool

	numMerges          int
	inconsistencyFound bool
}

var _ evaluator.Evaluator = (*Evaluator)(nil)

// New returns a fresh count-driven evaluator, reading config.Config.UseSinks
// at construction time since evaluator.Evaluator.SinkType is not itself
// passed a Merger to read the live config from.
func New(cfg config.Config) *Evaluator {
	return &Evaluator{useSinks: cfg.UseSinks}
}

// NewPayload allocates a zero-value Payload.
func (e *Evaluator) NewPayload() apta.Payload { return &Payload{} }

// Consistent vetoes a merge the moment any visited pair has different
// incoming labels, or would fuse a node with accepting final counts with
// one with rejecting final counts, and latches
// inconsistencyFound so every subsequent call in the same cascade short-
// circuits immediately, mirroring original_source's eager abort.
func (e *Evaluator) Consistent(m evaluator.Merger, left, right *apta.Node) bool {
	if e.inconsistencyFound {
		return false
	}
	if left.Label != right.Label {
		e.inconsistencyFound = true

		return false
	}

	l := left.Data.(*Payload)
	r := right.Data.(*Payload)
	if l.NumAccepting != 0 && r.NumRejecting != 0 {
		e.inconsistencyFound = true

		return false
	}
	if l.NumRejecting != 0 && r.NumAccepting != 0 {
		e.inconsistencyFound = true

		return false
	}

	return true
}

// UpdateScore counts one more visited pair.
func (e *Evaluator) UpdateScore(m evaluator.Merger, left, right *apta.Node) {
	e.numMerges++
}

// ComputeConsistency re-checks the merged node pair once the cascade has
// completed.
func (e *Evaluator) ComputeConsistency(m evaluator.Merger, left, right *apta.Node) bool {
	l := left.Data.(*Payload)
	r := right.Data.(*Payload)
	if l.NumAccepting != 0 && r.NumRejecting != 0 {
		return false
	}
	if l.NumRejecting != 0 && r.NumAccepting != 0 {
		return false
	}

	return true
}

// ComputeScore returns the number of node pairs the cascade visited: larger
// cascades score higher, favoring the most information-rich merge.
func (e *Evaluator) ComputeScore(m evaluator.Merger, left, right *apta.Node) int {
	return e.numMerges
}

// Reset zeroes the accumulators ahead of the next speculative merge.
func (e *Evaluator) Reset(m evaluator.Merger) {
	e.numMerges = 0
	e.inconsistencyFound = false
}

// SinkType classifies node as rejecting-only (0), accepting-only (1), or
// not a sink (-1), per spec.md §4.7's "state-driven evaluator ... defines
// two: accepting-only, rejecting-only".
func (e *Evaluator) SinkType(n *apta.Node) int {
	if !e.useSinks {
		return -1
	}
	p := n.Find().Data.(*Payload)
	if p.NumAccepting == 0 && p.NumRejecting > 0 {
		return 0
	}
	if p.NumRejecting == 0 && p.NumAccepting > 0 {
		return 1
	}

	return -1
}

// SinkConsistent reports whether node qualifies as a sink of the given type.
// Sinks are vacuously consistent when disabled, matching original_source's
// state_data::sink_consistent.
func (e *Evaluator) SinkConsistent(n *apta.Node, typ int) bool {
	if !e.useSinks {
		return true
	}

	return e.SinkType(n) == typ
}

// NumSinkTypes returns 2 (rejecting-only, accepting-only).
func (e *Evaluator) NumSinkTypes() int { return 2 }

// ComputeBeforeMerge is false: the score is only known once the cascade
// finishes counting visited pairs.
func (e *Evaluator) ComputeBeforeMerge() bool { return false }

// Update is a no-op: the count-driven heuristic keeps no structures beyond
// the per-node Payload, which is already current after the merge cascade.
func (e *Evaluator) Update(m evaluator.Merger) {}

// UndoUpdate is a no-op, mirroring Update.
func (e *Evaluator) UndoUpdate(m evaluator.Merger, left, right *apta.Node) {}
