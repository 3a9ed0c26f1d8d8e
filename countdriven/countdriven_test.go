package countdriven_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/aptamerge/apta"
	"github.com/katalvlaran/aptamerge/config"
	"github.com/katalvlaran/aptamerge/countdriven"
	"github.com/katalvlaran/aptamerge/evaluator"
	"github.com/katalvlaran/aptamerge/registry"
)

func TestRegistersUnderNameAndNumericID(t *testing.T) {
	factory, err := registry.Lookup("countdriven")
	require.NoError(t, err)
	require.NotNil(t, factory)

	factory2, err := registry.LookupHeuristic(config.CountDriven)
	require.NoError(t, err)
	require.NotNil(t, factory2)
}

func TestPayloadUpdateUndoRoundTrip(t *testing.T) {
	p := &countdriven.Payload{NumAccepting: 2, NumRejecting: 1, AcceptingPaths: 5, RejectingPaths: 3}
	other := &countdriven.Payload{NumAccepting: 1, NumRejecting: 0, AcceptingPaths: 2, RejectingPaths: 1}

	p.Update(other)
	require.Equal(t, 3, p.NumAccepting)
	require.Equal(t, 1, p.NumRejecting)
	require.Equal(t, 7, p.AcceptingPaths)
	require.Equal(t, 4, p.RejectingPaths)

	p.Undo(other)
	require.Equal(t, 2, p.NumAccepting)
	require.Equal(t, 1, p.NumRejecting)
	require.Equal(t, 5, p.AcceptingPaths)
	require.Equal(t, 3, p.RejectingPaths)
}

func TestReadFromAndReadToCountByTraceType(t *testing.T) {
	p := &countdriven.Payload{}
	p.ReadFrom(1, 0, 2, 0, "")
	p.ReadFrom(0, 0, 2, 0, "")
	require.Equal(t, 1, p.AcceptingPaths)
	require.Equal(t, 1, p.RejectingPaths)

	// length == index+1 marks a final position.
	p.ReadTo(1, 1, 2, 0, "")
	require.Equal(t, 1, p.NumAccepting)
	require.Equal(t, 0, p.NumRejecting)

	p.ReadTo(0, 0, 2, 0, "") // not final, must not count
	require.Equal(t, 0, p.NumRejecting)
}

func newNodeWithPayload(number, label int, payload *countdriven.Payload) *apta.Node {
	n := &apta.Node{Number: number, Label: label, Data: payload}

	return n
}

func TestConsistentVetoesAcceptingRejectingOverlap(t *testing.T) {
	eval := countdriven.New(config.New())
	left := newNodeWithPayload(1, 0, &countdriven.Payload{NumAccepting: 1})
	right := newNodeWithPayload(2, 0, &countdriven.Payload{NumRejecting: 1})

	require.False(t, eval.Consistent(nil, left, right))
}

func TestConsistentVetoesDifferentLabels(t *testing.T) {
	eval := countdriven.New(config.New())
	left := newNodeWithPayload(1, 0, &countdriven.Payload{})
	right := newNodeWithPayload(2, 1, &countdriven.Payload{})

	require.False(t, eval.Consistent(nil, left, right))
}

func TestConsistentLatchesInconsistencyAcrossCalls(t *testing.T) {
	eval := countdriven.New(config.New())
	a := newNodeWithPayload(1, 0, &countdriven.Payload{NumAccepting: 1})
	b := newNodeWithPayload(2, 0, &countdriven.Payload{NumRejecting: 1})
	require.False(t, eval.Consistent(nil, a, b))

	// Once latched, even an otherwise-consistent pair must be rejected until Reset.
	c := newNodeWithPayload(3, 0, &countdriven.Payload{})
	d := newNodeWithPayload(4, 0, &countdriven.Payload{})
	require.False(t, eval.Consistent(nil, c, d))

	eval.Reset(nil)
	require.True(t, eval.Consistent(nil, c, d))
}

func TestSinkTypeRespectsUseSinksConfig(t *testing.T) {
	disabled := countdriven.New(config.New(config.WithUseSinks(false)))
	n := newNodeWithPayload(1, 0, &countdriven.Payload{NumRejecting: 1})
	require.Equal(t, -1, disabled.SinkType(n))

	enabled := countdriven.New(config.New(config.WithUseSinks(true)))
	rejectingOnly := newNodeWithPayload(2, 0, &countdriven.Payload{NumRejecting: 1})
	acceptingOnly := newNodeWithPayload(3, 0, &countdriven.Payload{NumAccepting: 1})
	mixed := newNodeWithPayload(4, 0, &countdriven.Payload{NumAccepting: 1, NumRejecting: 1})

	require.Equal(t, 0, enabled.SinkType(rejectingOnly))
	require.Equal(t, 1, enabled.SinkType(acceptingOnly))
	require.Equal(t, -1, enabled.SinkType(mixed))
}

func TestNumSinkTypesAndComputeBeforeMerge(t *testing.T) {
	eval := countdriven.New(config.New())
	require.Equal(t, 2, eval.NumSinkTypes())
	require.False(t, eval.ComputeBeforeMerge())
}

var _ evaluator.Evaluator = (*countdriven.Evaluator)(nil)
