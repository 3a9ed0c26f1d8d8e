package safety

import "github.com/katalvlaran/aptamerge/apta"

// FeasibilityChecker is the optional linear-programming feasibility
// sub-solver spec.md §9 leaves as an Open Question: original_source's
// state_feasibility_lp.cpp/.h wires a real LP solver (GLPK) but its given
// implementation is a fixed, hard-coded demo problem unrelated to the
// node passed in - it never actually decides feasibility from APTA state.
// No LP solver of any kind appears anywhere in the retrieval pack (no
// GLPK binding, no lp_solve, no pure-Go simplex), so this is kept as a
// documented stub: AlwaysFeasible always reports true, exactly matching
// what the original's non-functional demo solver would always return for
// any input it wasn't hard-coded to reject.
type FeasibilityChecker interface {
	Feasible(n *apta.Node) bool
}

// AlwaysFeasible is the stub FeasibilityChecker: every node is feasible.
type AlwaysFeasible struct{}

// Feasible always returns true.
func (AlwaysFeasible) Feasible(n *apta.Node) bool { return true }

var _ FeasibilityChecker = AlwaysFeasible{}
