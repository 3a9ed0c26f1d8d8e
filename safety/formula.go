// formula.go implements the boolean-formula-over-atomic-propositions
// evaluator used by the safety DFA's edge labels (spec.md component C6),
// grounded on original_source's lib/formal_language.h.
package safety

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Operator folds two already-evaluated symbols into one boolean result.
type Operator func(a, b bool) bool

// ErrOperatorWidth is returned by newOperatorSet when a candidate operator
// set's tokens don't all share one textual width. original_source's
// separateFormula throws the equivalent C++ exception for the same reason:
// every operator is masked in place with a single fixed-width replacement
// during tokenization, so a mismatched operator would corrupt the byte
// offsets the scan depends on.
var ErrOperatorWidth = errors.New("safety: every operator token must share the same textual width")

// operatorSet is a validated collection of boolean connectives, each tied to
// the fold it performs, plus the single placeholder used to mask a matched
// operator occurrence during tokenization. Retaining this uniform-width
// contract (rather than masking each operator with its own length) is
// spec.md's explicit instruction, not an incidental detail: it's the same
// restriction original_source's replacement parameter enforces.
type operatorSet struct {
	ops         map[string]Operator
	placeholder string
}

// newOperatorSet validates that every operator token in ops has the same
// length, and builds the shared '#'-run placeholder tokenization masks with.
func newOperatorSet(ops map[string]Operator) (operatorSet, error) {
	if len(ops) == 0 {
		return operatorSet{}, fmt.Errorf("safety: operator set must not be empty")
	}

	width := -1
	for op := range ops {
		if width == -1 {
			width = len(op)
			continue
		}
		if len(op) != width {
			return operatorSet{}, fmt.Errorf("%w: %q", ErrOperatorWidth, op)
		}
	}

	return operatorSet{ops: ops, placeholder: strings.Repeat("#", width)}, nil
}

// mustOperatorSet is newOperatorSet for package-level defaults that are
// known at compile time to be well-formed; a failure here is a programming
// error, not a runtime condition.
func mustOperatorSet(ops map[string]Operator) operatorSet {
	s, err := newOperatorSet(ops)
	if err != nil {
		panic(err)
	}

	return s
}

// defaultOperatorSet are the two boolean connectives original_source's
// booleanOperators default to: " & " (and) and " | " (or), both three bytes
// wide. Both sides of the connective must already appear surrounded by
// single spaces in the YAML-authored formula, exactly as the original
// requires.
var defaultOperatorSet = mustOperatorSet(map[string]Operator{
	" & ": func(a, b bool) bool { return a && b },
	" | ": func(a, b bool) bool { return a || b },
})

// separateFormula splits formula into its atomic symbol tokens (each
// possibly "!"-negated) and the operators joining them, left to right.
//
// Each operator occurrence is masked in place with ops.placeholder before
// the scan repeats, so a later pass can't re-match the same spot (and so the
// untouched byte offsets between matches are stable once scanning finishes)
// - exactly original_source's separateFormula, whose replacement parameter
// this package's operatorSet.placeholder corresponds to.
func separateFormula(formula string, ops operatorSet) (symbols, opTokens []string) {
	type hit struct {
		pos int
		op  string
	}

	work := []byte(formula)
	var hits []hit

	for {
		found := false
		for op := range ops.ops {
			idx := strings.Index(string(work), op)
			if idx < 0 {
				continue
			}
			found = true
			copy(work[idx:idx+len(op)], ops.placeholder)
			hits = append(hits, hit{pos: idx, op: op})
		}
		if !found {
			break
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	if len(hits) == 0 {
		return []string{formula}, nil
	}

	symbols = append(symbols, formula[:hits[0].pos])
	for i, h := range hits {
		opTokens = append(opTokens, h.op)
		start := h.pos + len(h.op)
		end := len(formula)
		if i+1 < len(hits) {
			end = hits[i+1].pos
		}
		symbols = append(symbols, formula[start:end])
	}

	return symbols, opTokens
}

// evaluateSymbol resolves one (possibly "!"-negated) atomic proposition
// against the current truth assignment.
func evaluateSymbol(symbol string, assignment map[string]bool) bool {
	negate := strings.HasPrefix(symbol, "!")
	if negate {
		symbol = symbol[1:]
	}
	v := assignment[symbol]
	if negate {
		return !v
	}

	return v
}

// satisfyFormula reports whether observing sigma (the one atomic
// proposition that holds true; every other known symbol is false) satisfies
// formula under ops, folding its operators left to right.
func satisfyFormula(formula, sigma string, alphabet map[string]struct{}, ops operatorSet) bool {
	assignment := make(map[string]bool, len(alphabet))
	for sym := range alphabet {
		assignment[sym] = false
	}
	assignment[sigma] = true

	symbols, opTokens := separateFormula(formula, ops)
	if len(symbols) == 0 {
		return false
	}

	result := evaluateSymbol(symbols[0], assignment)
	for i, op := range opTokens {
		result = ops.ops[op](result, evaluateSymbol(symbols[i+1], assignment))
	}

	return result
}
