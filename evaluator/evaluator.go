// Package evaluator defines the pluggable contract that governs merge
// consistency and scoring (spec.md component C2), plus the thin view of the
// merge engine (Merger) that evaluators are allowed to see.
//
// Evaluator and apta.Payload are deliberately split across two packages:
// apta owns the minimal Payload contract (so Node can hold one without
// importing evaluator), and this package adds the richer per-merge
// consistency/scoring contract on top, parameterized over *apta.Node. This
// avoids an import cycle between the data structure and its plugins, the
// same separation lvlath draws between core.Graph and algorithms/builder.
package evaluator

import (
	"github.com/katalvlaran/aptamerge/apta"
	"github.com/katalvlaran/aptamerge/config"
)

// Merger is the view of the merge engine an Evaluator is allowed to use.
// It is implemented by *merger.Merger; the narrow interface here (rather
// than a direct import of package merger) is what breaks the cycle
// merger -> evaluator -> merger.
type Merger interface {
	// Automaton returns the APTA being merged.
	Automaton() *apta.APTA

	// MergedStates returns every class-root state currently in the
	// automaton, the merged-view set evaluators sum statistics over (e.g.
	// mse.Evaluator.ComputeScore's RSS_total).
	MergedStates() apta.NodeSet

	// Config returns the immutable, process-wide flag block for this run.
	Config() config.Config
}

// Evaluator is the full plugin contract of spec.md C2. A concrete
// evaluator and its apta.Payload type are chosen together at construction
// (see countdriven.New, mse.New) and the payload discriminant never
// changes after a node is built.
type Evaluator interface {
	// NewPayload allocates a zero-value Payload of this evaluator's
	// concrete type, for a newly created APTA node.
	NewPayload() apta.Payload

	// Consistent is the cheap pre-merge local check, called on every node
	// pair visited during a merge cascade, before any mutation.
	Consistent(m Merger, left, right *apta.Node) bool

	// UpdateScore is called on every node pair visited during a merge
	// cascade (destructive or speculative) to accumulate into internal
	// counters. Skipped during the cascade when ComputeBeforeMerge is
	// true; ComputeScore is then taken once, before the cascade.
	UpdateScore(m Merger, left, right *apta.Node)

	// ComputeConsistency is the post-/during-merge check exploiting the
	// determinized view, run once after a (real or speculative) merge
	// completes.
	ComputeConsistency(m Merger, left, right *apta.Node) bool

	// ComputeScore yields the merge score; a result below
	// config.Config.LowerBound vetoes the merge.
	ComputeScore(m Merger, left, right *apta.Node) int

	// Reset zeroes accumulators; called before every speculative merge
	// evaluation (merger.TestMerge).
	Reset(m Merger)

	// SinkType classifies node as a sink kind, or -1 if it is not a sink.
	SinkType(n *apta.Node) int

	// SinkConsistent reports whether node is a permitted sink of the given
	// kind, used by the RED_FIXED veto in merger.Merge.
	SinkConsistent(n *apta.Node, typ int) bool

	// NumSinkTypes returns how many distinct sink kinds this evaluator
	// defines. Whether it reports 0 while sinks are disabled is up to the
	// evaluator: mse does, countdriven always reports 2.
	NumSinkTypes() int

	// ComputeBeforeMerge selects when ComputeScore runs relative to the
	// merge cascade: true runs it before the cascade (UpdateScore is then
	// skipped during the cascade itself); false runs it after.
	ComputeBeforeMerge() bool

	// Update is called once per committed merge, after the red/blue
	// frontier has been re-resolved (merger.Merger.Update), to let the
	// evaluator refresh any structures used for heuristics/consistency
	// that are too costly to maintain during speculative testing. Neither
	// countdriven nor mse overrides this with real behavior; both are
	// no-ops, matching the dead virtual override in the source this was
	// ported from.
	Update(m Merger)

	// UndoUpdate is called at the end of every UndoMerge, mirroring
	// Update's post-merge refresh hook on the reverse path.
	UndoUpdate(m Merger, left, right *apta.Node)
}

// StateLabeler is an optional capability an Evaluator can implement to
// supply a human-readable summary of a node's payload for DOT rendering
// (package dot). Evaluators that don't implement it render with the bare
// node number only.
type StateLabeler interface {
	StateLabel(n *apta.Node) string
}
