// Package mse implements the mean-squared-error evaluator (spec.md
// component C5): merges are scored by an information-criterion trade-off
// between model size (one parameter per merged state) and total residual
// variance of the occurrence values each state observed. Grounded on
// original_source's mse_error/mse_data.
package mse

import (
	"math"
	"strconv"

	"github.com/katalvlaran/aptamerge/apta"
	"github.com/katalvlaran/aptamerge/config"
	"github.com/katalvlaran/aptamerge/evaluator"
	"github.com/katalvlaran/aptamerge/registry"
)

func init() {
	registry.Register("mse", func(cfg config.Config) evaluator.Evaluator { return New(cfg) })
}

// Payload is the per-node data the MSE evaluator attaches to every
// apta.Node: the running mean of observed occurrence values and the values
// themselves, needed to recompute residual sum of squares at scoring time.
//
// MergePoint records, on a payload that has just been absorbed by Update,
// the index within the receiver's (post-merge) Occurrences slice at which
// its own values begin - the split point Undo needs to splice them back out
// exactly, mirroring original_source's std::list merge_point iterator.
type Payload struct {
	Mean        float64
	Occurrences []float64
	MergePoint  int
}

var _ apta.Payload = (*Payload)(nil)

// ReadFrom records one observed occurrence value, updating the running mean
// incrementally. data is parsed as a float64; a malformed value is treated
// as 0, matching original_source's unchecked std::stod (trace files are
// assumed well-formed by the time they reach the evaluator).
func (p *Payload) ReadFrom(typ, index, length, symbol int, data string) {
	occ, _ := strconv.ParseFloat(data, 64)
	n := float64(len(p.Occurrences))
	p.Mean = (p.Mean*n + occ) / (n + 1)
	p.Occurrences = append(p.Occurrences, occ)
}

// ReadTo is a no-op: the MSE payload only accumulates on the outgoing edge,
// not on arrival.
func (p *Payload) ReadTo(typ, index, length, symbol int, data string) {}

// Update absorbs other's occurrences and folds its mean into the receiver's.
func (p *Payload) Update(other apta.Payload) {
	o := other.(*Payload)
	if len(o.Occurrences) != 0 {
		pn := float64(len(p.Occurrences))
		on := float64(len(o.Occurrences))
		p.Mean = (p.Mean*pn + o.Mean*on) / (pn + on)
	}

	o.MergePoint = len(p.Occurrences)
	p.Occurrences = append(p.Occurrences, o.Occurrences...)
	o.Occurrences = nil
}

// Undo exactly reverses the most recent Update(other), splitting the
// receiver's Occurrences back at other.MergePoint and restoring the
// pre-merge mean.
func (p *Payload) Undo(other apta.Payload) {
	o := other.(*Payload)
	split := o.MergePoint
	rightCount := len(p.Occurrences) - split
	combined := float64(len(p.Occurrences))

	o.Occurrences = append([]float64(nil), p.Occurrences[split:]...)
	p.Occurrences = p.Occurrences[:split]

	if len(p.Occurrences) != 0 {
		p.Mean = (p.Mean*combined - o.Mean*float64(rightCount)) / float64(split)
	} else {
		p.Mean = 0
	}
}

// Evaluator implements evaluator.Evaluator for the MSE heuristic.
// ComputeBeforeMerge is false: ComputeScore needs the post-merge,
// determinized view of the automaton (it sums residuals over
// evaluator.Merger.MergedStates()), so it can only be evaluated once the
// cascade has installed its changes.
type Evaluator struct {
	useSinks       bool
	stateCount     int
	symbolCount    int
	checkParameter float64

	inconsistencyFound bool
}

var _ evaluator.Evaluator = (*Evaluator)(nil)

// New returns a fresh MSE evaluator, reading the thresholds it needs from
// cfg at construction time (StateCount for sink classification, SymbolCount
// and CheckParameter for the consistency check).
func New(cfg config.Config) *Evaluator {
	return &Evaluator{
		useSinks:       cfg.UseSinks,
		stateCount:     cfg.StateCount,
		symbolCount:    cfg.SymbolCount,
		checkParameter: cfg.CheckParameter,
	}
}

// NewPayload allocates a zero-value Payload.
func (e *Evaluator) NewPayload() apta.Payload { return &Payload{} }

// Consistent skips the mean-difference check (returns true) until both
// sides have accumulated at least SymbolCount observations, then vetoes if
// the means differ by more than CheckParameter.
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
	if len(l.Occurrences) < e.symbolCount || len(r.Occurrences) < e.symbolCount {
		return true
	}

	diff := l.Mean - r.Mean
	if diff > e.checkParameter || -diff > e.checkParameter {
		e.inconsistencyFound = true

		return false
	}

	return true
}

// UpdateScore is a no-op: MSE's score is a global aggregate recomputed from
// scratch in ComputeScore, not an incremental per-pair accumulation.
func (e *Evaluator) UpdateScore(m evaluator.Merger, left, right *apta.Node) {}

// ComputeConsistency re-applies the same mean-difference check to the
// merged root, now reflecting the fully-cascaded payload.
func (e *Evaluator) ComputeConsistency(m evaluator.Merger, left, right *apta.Node) bool {
	l := left.Data.(*Payload)
	r := right.Data.(*Payload)
	if len(l.Occurrences) < e.symbolCount || len(r.Occurrences) < e.symbolCount {
		return true
	}

	diff := l.Mean - r.Mean

	return diff <= e.checkParameter && -diff <= e.checkParameter
}

// residualSumOfSquares returns sum((mean-occ)^2) over node's own occurrences.
func residualSumOfSquares(p *Payload) float64 {
	var rss float64
	for _, occ := range p.Occurrences {
		d := p.Mean - occ
		rss += d * d
	}

	return rss
}

// ComputeScore sums RSS over every merged-view state and trades it off
// against model size via an information-criterion style score: larger
// merges that don't inflate the residual badly are preferred. Guards
// against a zero-occurrence automaton (an all-sink or empty merge), where
// the original's unchecked log(0) would diverge.
func (e *Evaluator) ComputeScore(m evaluator.Merger, left, right *apta.Node) int {
	states := m.MergedStates()

	var rssTotal float64
	var numDataPoints float64
	numParameters := float64(len(states))

	for n := range states {
		p := n.Data.(*Payload)
		rssTotal += residualSumOfSquares(p)
		numDataPoints += float64(len(p.Occurrences))
	}

	if numDataPoints <= 0 {
		return 10000000 - int(2*numParameters)
	}
	if rssTotal <= 0 {
		rssTotal = 1e-12
	}

	score := 10000000.0 - 2*numParameters + numDataPoints*math.Log(rssTotal/numDataPoints)

	return int(score)
}

// Reset clears the latched inconsistency flag ahead of the next speculative
// merge; MSE keeps no other per-cascade accumulators (ComputeScore is
// stateless over the merged view).
func (e *Evaluator) Reset(m evaluator.Merger) {
	e.inconsistencyFound = false
}

// SinkType classifies a node with fewer than StateCount occurrences as the
// evaluator's sole sink kind: "low occurrence".
func (e *Evaluator) SinkType(n *apta.Node) int {
	if !e.useSinks {
		return -1
	}
	p := n.Find().Data.(*Payload)
	if len(p.Occurrences) < e.stateCount {
		return 0
	}

	return -1
}

// SinkConsistent reports whether node qualifies as the "low occurrence"
// sink, the only kind this evaluator defines.
func (e *Evaluator) SinkConsistent(n *apta.Node, typ int) bool {
	if !e.useSinks {
		return false
	}

	return typ == 0 && e.SinkType(n) == 0
}

// NumSinkTypes returns 1 ("low occurrence") when sinks are enabled.
func (e *Evaluator) NumSinkTypes() int {
	if !e.useSinks {
		return 0
	}

	return 1
}

// ComputeBeforeMerge is false: the score depends on the post-merge,
// determinized merged-state view.
func (e *Evaluator) ComputeBeforeMerge() bool { return false }

// Update is a no-op: MSE keeps no structures beyond the per-node Payload,
// already current after the merge cascade.
func (e *Evaluator) Update(m evaluator.Merger) {}

// UndoUpdate is a no-op, mirroring Update.
func (e *Evaluator) UndoUpdate(m evaluator.Merger, left, right *apta.Node) {}

// StateLabel implements evaluator.StateLabeler for DOT rendering: mean and
// occurrence count, matching original_source's print_dot label.
func (e *Evaluator) StateLabel(n *apta.Node) string {
	p := n.Find().Data.(*Payload)

	return strconv.FormatFloat(p.Mean, 'f', 3, 64) + "\n" + strconv.Itoa(len(p.Occurrences))
}
