package safety

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeparateFormulaSingleSymbol(t *testing.T) {
	symbols, ops := separateFormula("a", defaultOperatorSet)
	require.Equal(t, []string{"a"}, symbols)
	require.Empty(t, ops)
}

func TestSeparateFormulaAndOr(t *testing.T) {
	symbols, ops := separateFormula("a & b | !c", defaultOperatorSet)
	require.Equal(t, []string{"a", "b", "!c"}, symbols)
	require.Equal(t, []string{" & ", " | "}, ops)
}

func TestEvaluateSymbolHandlesNegation(t *testing.T) {
	assignment := map[string]bool{"a": true, "b": false}
	require.True(t, evaluateSymbol("a", assignment))
	require.False(t, evaluateSymbol("!a", assignment))
	require.True(t, evaluateSymbol("!b", assignment))
}

func TestSatisfyFormulaAndOperator(t *testing.T) {
	alphabet := map[string]struct{}{"a": {}, "b": {}}
	require.False(t, satisfyFormula("a & b", "a", alphabet, defaultOperatorSet), "only a is true, so a & b must fail")
	require.True(t, satisfyFormula("a & !b", "a", alphabet, defaultOperatorSet))
}

func TestSatisfyFormulaOrOperator(t *testing.T) {
	alphabet := map[string]struct{}{"a": {}, "b": {}}
	require.True(t, satisfyFormula("a | b", "a", alphabet, defaultOperatorSet))
	require.True(t, satisfyFormula("a | b", "b", alphabet, defaultOperatorSet))
	require.False(t, satisfyFormula("a | b", "c", alphabet, defaultOperatorSet))
}

func TestStepFormulasRejectsZeroValidFormulas(t *testing.T) {
	a := newNode("a", false)
	b := newNode("b", false)
	a.setOutgoing("x", b)

	alphabet := map[string]struct{}{"x": {}, "y": {}}
	_, ok := stepFormulas(a.outgoingFormulas(), a.outgoing, "y", alphabet, defaultOperatorSet)
	require.False(t, ok)
}

func TestStepFormulasResolvesUniqueDestination(t *testing.T) {
	a := newNode("a", false)
	b := newNode("b", true)
	a.setOutgoing("x", b)

	alphabet := map[string]struct{}{"x": {}}
	next, ok := stepFormulas(a.outgoingFormulas(), a.outgoing, "x", alphabet, defaultOperatorSet)
	require.True(t, ok)
	require.Same(t, b, next)
}

func TestNewOperatorSetRejectsMismatchedWidth(t *testing.T) {
	_, err := newOperatorSet(map[string]Operator{
		" & ": func(a, b bool) bool { return a && b },
		"|":   func(a, b bool) bool { return a || b },
	})
	require.ErrorIs(t, err, ErrOperatorWidth)
}

func TestNewOperatorSetAcceptsUniformWidth(t *testing.T) {
	set, err := newOperatorSet(map[string]Operator{
		" AND ": func(a, b bool) bool { return a && b },
		" OR  ": func(a, b bool) bool { return a || b },
	})
	require.NoError(t, err)
	require.Len(t, set.placeholder, 5)
}
