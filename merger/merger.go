// Package merger implements the state-merging engine (spec.md component
// C3): the destructive and speculative merge/undo protocol over an APTA,
// the red/blue frontier bookkeeping, and the top-level search loop that
// repeatedly merges or promotes until no blue state remains.
//
// Reversibility is the engine's central contract: any Merge that returns
// true can be exactly undone by UndoMerge, restoring byte-identical state
// (children maps, det-undo entries, representative pointers, evaluator
// payloads, and the red/blue frontiers). See merge.go for the cascade and
// its mirror-image undo.
package merger

import (
	"sort"

	"github.com/katalvlaran/aptamerge/apta"
	"github.com/katalvlaran/aptamerge/config"
	"github.com/katalvlaran/aptamerge/evaluator"
)

// SafetyFilter is the optional reference-safety-automaton veto (spec.md
// component C6). Merger holds one by interface, not by direct dependency on
// package safety, so the engine stays agnostic of how safety is checked;
// *safety.DFA satisfies this interface without either package importing
// the other.
type SafetyFilter interface {
	// PreCheckSafety is the cheap, polynomial pre-merge check.
	PreCheckSafety(left, right *apta.Node) bool

	// PostCheckSafety is the greedy post-merge product-graph check.
	PostCheckSafety(left, right *apta.Node) bool
}

// ScoredMerge pairs a candidate (red-or-blue, blue) merge with its score,
// as returned by GetPossibleMerges. Sequence records insertion order into
// the candidate list, used to break score ties deterministically (Go has
// no ordered multimap, so GetPossibleMerges sorts on (Score desc, Sequence
// asc) to reproduce the C++ std::multimap's stable ordering).
type ScoredMerge struct {
	Score    int
	Left     *apta.Node
	Right    *apta.Node
	Sequence int
}

// Merger drives the search over a single APTA with a single evaluator and
// a fixed configuration. It is not safe for concurrent use; per spec.md §5
// the engine is single-threaded by design.
type Merger struct {
	Aut  *apta.APTA
	Eval evaluator.Evaluator
	Cfg  config.Config

	Safety SafetyFilter // optional; nil disables the safety filter entirely

	Red  apta.NodeSet
	Blue apta.NodeSet

	mergeSeq int
}

// New constructs a Merger seeded with the APTA's root as the sole red
// state, then calls Update to populate the initial blue frontier.
func New(a *apta.APTA, eval evaluator.Evaluator, cfg config.Config) *Merger {
	m := &Merger{
		Aut:  a,
		Eval: eval,
		Cfg:  cfg,
		Red:  make(apta.NodeSet),
		Blue: make(apta.NodeSet),
	}
	m.Red.Add(a.Root)
	m.Update()

	return m
}

// Automaton implements evaluator.Merger.
func (m *Merger) Automaton() *apta.APTA { return m.Aut }

// Config implements evaluator.Merger.
func (m *Merger) Config() config.Config { return m.Cfg }

// MergedStates implements evaluator.Merger: every class-root node reachable
// from the automaton's root.
func (m *Merger) MergedStates() apta.NodeSet {
	return m.Aut.GetMergedStates(m.Aut.Root)
}

// IsSink reports whether node is classified as any sink kind by the active
// evaluator (spec.md component C7).
func (m *Merger) IsSink(n *apta.Node) bool {
	return m.Eval.SinkType(n) != -1
}

// sortedMerges stable-sorts candidates by (Score desc, Sequence asc),
// reproducing the ordering contract of spec.md §5: "merges proceed in
// score-descending order ... within equal scores, insertion order into the
// multimap controls tie-breaks."
func sortedMerges(cands []ScoredMerge) []ScoredMerge {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}

		return cands[i].Sequence < cands[j].Sequence
	})

	return cands
}
