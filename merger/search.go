// search.go implements the red/blue frontier bookkeeping and the top-level
// search loop of spec.md §4.3: Update, ExtendRed, TestMerge, PerformMerge,
// GetPossibleMerges, and Run.
package merger

import "github.com/katalvlaran/aptamerge/apta"

// Update re-resolves the red and blue frontiers through Find, then rebuilds
// Blue as every non-red child of a red state. Called after every committed
// merge (PerformMerge) and once by New to seed the initial frontier.
func (m *Merger) Update() {
	newRed := make(apta.NodeSet)
	for red := range m.Red {
		root := red.Find()
		root.Red = true
		newRed.Add(root)
	}

	newBlue := make(apta.NodeSet)
	for _, red := range newRed.Sorted() {
		for s := 0; s < m.Aut.AlphabetSize(); s++ {
			child := red.GetChild(s)
			if child != nil && !newRed.Has(child) {
				newBlue.Add(child)
			}
		}
	}

	m.Red = newRed
	m.Blue = newBlue
	m.Eval.Update(m)
}

// ExtendRed promotes the first blue state (in Number order) that merges with
// no red state into red, reports true, and leaves the rest of the frontier
// for the next Update. It reports false once every blue state it considers
// merges with at least one red (i.e. the search must merge, not extend);
// sink blues are not considered unless config.Config.MergeSinksDsolve is set.
func (m *Merger) ExtendRed() bool {
	for _, blue := range m.Blue.Sorted() {
		if !m.Cfg.MergeSinksDsolve && m.IsSink(blue) {
			continue
		}

		friendless := true
		for _, red := range m.Red.Sorted() {
			if m.TestMerge(red, blue) != -1 {
				friendless = false
				break
			}
		}
		if !friendless {
			continue
		}

		delete(m.Blue, blue)
		blue.Red = true
		m.Red.Add(blue)
		for s := 0; s < m.Aut.AlphabetSize(); s++ {
			child := blue.GetChild(s)
			if child != nil {
				m.Blue.Add(child)
			}
		}

		return true
	}

	return false
}

// TestMerge scores a candidate (left, right) merge without committing it to
// the frontier, following spec.md §4.3's testmerge contract exactly:
// compute_score is taken either before or after the cascade depending on
// Eval.ComputeBeforeMerge, the cascade itself runs destructively
// (config.Config.MergeWhenTesting) or speculatively, and -1 means "no merge"
// - never promoted to an error, per spec.md §7.
func (m *Merger) TestMerge(left, right *apta.Node) int {
	m.Eval.Reset(m)

	if m.Safety != nil && !m.Safety.PreCheckSafety(left, right) {
		return -1
	}

	score := -1
	if m.Eval.ComputeBeforeMerge() {
		score = m.Eval.ComputeScore(m, left, right)
	}

	var merged bool
	if m.Cfg.MergeWhenTesting {
		merged = m.Merge(left, right)
	} else {
		merged = m.MergeTest(left, right)
	}

	if merged && !m.Eval.ComputeBeforeMerge() {
		score = m.Eval.ComputeScore(m, left, right)
	}

	if merged {
		consistent := m.Eval.ComputeConsistency(m, left, right)
		if consistent && m.Safety != nil {
			consistent = m.Safety.PostCheckSafety(left, right)
		}
		if !consistent {
			score = -1
		}
	}

	if score < m.Cfg.LowerBound {
		score = -1
	}

	if m.Cfg.MergeWhenTesting {
		m.UndoMerge(left, right)
	}

	if !merged {
		return -1
	}

	return score
}

// PerformMerge commits a candidate returned by GetPossibleMerges: a
// destructive, veto-free merge followed by a frontier Update.
func (m *Merger) PerformMerge(left, right *apta.Node) {
	m.MergeForce(left.Find(), right.Find())
	m.Update()
}

// GetPossibleMerges scores every (red, blue) pair - and, if
// config.Config.MergeBlueBlue is set, every (blue, blue) pair - currently on
// the frontier, returning the survivors (score != -1) ordered by spec.md
// §5's contract: score descending, ties broken by candidate-generation
// order. If config.Config.MergeMostVisited is set, only the single largest
// blue state (by Size, ties broken by Number) is considered.
func (m *Merger) GetPossibleMerges() []ScoredMerge {
	blues := m.Blue.Sorted()
	reds := m.Red.Sorted()

	if m.Cfg.MergeMostVisited && len(blues) > 0 {
		best := blues[0]
		for _, b := range blues[1:] {
			if b.Size > best.Size {
				best = b
			}
		}
		blues = []*apta.Node{best}
	}

	var out []ScoredMerge
	for _, blue := range blues {
		if !m.Cfg.MergeSinksDsolve && m.IsSink(blue) {
			continue
		}

		for _, red := range reds {
			if score := m.TestMerge(red, blue); score != -1 {
				m.mergeSeq++
				out = append(out, ScoredMerge{Score: score, Left: red, Right: blue, Sequence: m.mergeSeq})
			}
		}

		if m.Cfg.MergeBlueBlue {
			for _, other := range blues {
				if other == blue {
					continue
				}
				if score := m.TestMerge(other, blue); score != -1 {
					m.mergeSeq++
					out = append(out, ScoredMerge{Score: score, Left: other, Right: blue, Sequence: m.mergeSeq})
				}
			}
		}
	}

	return sortedMerges(out)
}

// Run drives the search to completion: while candidates remain, commit the
// best-scoring one; when none remain, promote a friendless blue via
// ExtendRed; when neither is possible, the frontier is exhausted and the
// resulting automaton (its red states, merged through Find) is the answer.
func (m *Merger) Run() *apta.APTA {
	for len(m.Blue) > 0 {
		candidates := m.GetPossibleMerges()
		if len(candidates) > 0 {
			best := candidates[0]
			m.PerformMerge(best.Left, best.Right)

			continue
		}

		if !m.ExtendRed() {
			break
		}
	}

	return m.Aut
}
