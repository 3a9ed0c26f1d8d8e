package safety_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/aptamerge/apta"
	"github.com/katalvlaran/aptamerge/safety"
)

const sampleYAML = `
alphabet_size: 2
num_states: 2
final_transition_sym: "end"
empty_transition_sym: "start"
start_state: "q0"
smooth_transitions: false
nodes:
  q0:
    is_accepting: false
  q1:
    is_accepting: true
edges:
  q0:
    q1:
      symbols:
        - "a"
  q1:
    q1:
      symbols:
        - "a | b"
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "safety.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	return path
}

func TestLoadParsesNodesAndEdges(t *testing.T) {
	path := writeSample(t)
	d, err := safety.Load(path)
	require.NoError(t, err)
	require.NotNil(t, d)

	out := d.String()
	require.Contains(t, out, "q0")
	require.Contains(t, out, "q1")
	require.Contains(t, out, "a | b -> ") // formula text round-trips verbatim, as loaded from YAML
}

func TestLoadRejectsUnknownStartState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
alphabet_size: 1
num_states: 1
final_transition_sym: "end"
empty_transition_sym: "start"
start_state: "missing"
nodes:
  q0:
    is_accepting: false
edges: {}
`), 0o644))

	_, err := safety.Load(path)
	require.ErrorIs(t, err, safety.ErrUnknownNode)
}

func buildSafeTrace(t *testing.T) *apta.APTA {
	t.Helper()
	aut := apta.New()
	a := aut.Intern("a")
	n1 := aut.AddChild(aut.Root, a, 1)
	aut.AddChild(n1, a, 1)

	return aut
}

func TestInitializeAPTAAssignsSafetyNodesAlongValidPath(t *testing.T) {
	path := writeSample(t)
	d, err := safety.Load(path)
	require.NoError(t, err)

	aut := buildSafeTrace(t)
	require.NoError(t, d.InitializeAPTA(aut))

	// A second call must be a no-op, not re-walk or error.
	require.NoError(t, d.InitializeAPTA(aut))
}

func TestInitializeAPTARejectsUnmatchedSymbol(t *testing.T) {
	path := writeSample(t)
	d, err := safety.Load(path)
	require.NoError(t, err)

	aut := apta.New()
	b := aut.Intern("b")
	aut.AddChild(aut.Root, b, 1) // q0 has no formula covering "b"

	err = d.InitializeAPTA(aut)
	require.ErrorIs(t, err, safety.ErrUnsafeTrace)
}

func TestAcceptsValidatesSymbolSequence(t *testing.T) {
	path := writeSample(t)
	d, err := safety.Load(path)
	require.NoError(t, err)

	require.True(t, d.Accepts([]string{"a"}))
	require.True(t, d.Accepts([]string{"a", "a", "b"}), "q1's formula covers both a and b")
	require.False(t, d.Accepts([]string{"b"}), "q0 has no formula covering b")
}

func TestPreCheckSafetyVetoesDifferentSafetyStates(t *testing.T) {
	path := writeSample(t)
	d, err := safety.Load(path, safety.WithAlgorithm(safety.Polynomial))
	require.NoError(t, err)

	aut := buildSafeTrace(t)
	require.NoError(t, d.InitializeAPTA(aut))

	a := aut.Intern("a")
	root := aut.Root
	n1 := root.Child(a)
	n2 := n1.Child(a)

	// root sits in q0, n1/n2 sit in q1: different safety states, vetoed.
	require.False(t, d.PreCheckSafety(root, n1))
	// n1 and n2 both sit in q1: same safety state, allowed.
	require.True(t, d.PreCheckSafety(n1, n2))
}

func TestPreCheckSafetyIsNoOpUnderGreedy(t *testing.T) {
	path := writeSample(t)
	d, err := safety.Load(path, safety.WithAlgorithm(safety.Greedy))
	require.NoError(t, err)

	aut := buildSafeTrace(t)
	require.NoError(t, d.InitializeAPTA(aut))

	a := aut.Intern("a")
	root := aut.Root
	n1 := root.Child(a)

	require.True(t, d.PreCheckSafety(root, n1), "PreCheckSafety must never veto under Greedy")
}

func TestPostCheckSafetyWalksProductGraph(t *testing.T) {
	path := writeSample(t)
	d, err := safety.Load(path, safety.WithAlgorithm(safety.Greedy))
	require.NoError(t, err)

	aut := buildSafeTrace(t)
	require.NoError(t, d.InitializeAPTA(aut))

	require.True(t, d.PostCheckSafety(aut.Root, aut.Root), "a safe, fully-initialized APTA must pass the greedy walk")
}

func TestAlwaysFeasibleReportsFeasible(t *testing.T) {
	var fc safety.FeasibilityChecker = safety.AlwaysFeasible{}
	require.True(t, fc.Feasible(&apta.Node{}))
}
