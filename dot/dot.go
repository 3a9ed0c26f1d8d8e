// Package dot renders a Merger's automaton as Graphviz DOT, the external
// adapter spec.md §6 describes: a box-shaped root, circle-shaped
// merged-view states labeled with the active evaluator's payload summary
// when it implements evaluator.StateLabeler, sink pseudo-nodes collapsing
// every transition into a given sink kind, and one edge per distinct live
// destination listing its triggering symbols. Grounded on
// original_source's state_merger.cpp / mse-error.cpp:print_dot.
package dot

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/katalvlaran/aptamerge/evaluator"
	"github.com/katalvlaran/aptamerge/merger"
)

// writer accumulates the first error from a sequence of Fprintf calls, so
// Write's body can read as a flat sequence of writes without an if err !=
// nil after every one.
type writer struct {
	w   io.Writer
	err error
}

func (e *writer) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// Write renders m's automaton to w as a single DOT digraph named "DFA".
func Write(w io.Writer, m *merger.Merger) error {
	aut := m.Automaton()
	root := aut.Root.Find()
	labeler, _ := m.Eval.(evaluator.StateLabeler)

	out := &writer{w: w}
	out.printf("digraph DFA {\n")
	out.printf("\t%d [label=\"root\" shape=box];\n", root.Number)
	out.printf("\tI -> %d;\n", root.Number)

	for _, n := range m.MergedStates().Sorted() {
		if m.IsSink(n) {
			continue
		}

		if n != root {
			label := strconv.Itoa(n.Number)
			if labeler != nil {
				label = labeler.StateLabel(n)
			}
			out.printf("\t%d [shape=circle label=\"%s\"];\n", n.Number, label)
		}

		sinkSymbols := make(map[int][]string)
		destSymbols := make(map[int][]string)

		for s := 0; s < aut.AlphabetSize(); s++ {
			child := n.GetChild(s)
			if child == nil {
				continue
			}

			sym := aut.SymbolName(s)
			if st := m.Eval.SinkType(child); st != -1 {
				sinkSymbols[st] = append(sinkSymbols[st], sym)
			} else {
				destSymbols[child.Number] = append(destSymbols[child.Number], sym)
			}
		}

		for _, t := range sortedKeys(sinkSymbols) {
			out.printf("\tS%dt%d [label=\"sink %d\" shape=box];\n", n.Number, t, t)
			out.printf("\t%d -> S%dt%d [label=\"%s\"];\n", n.Number, n.Number, t, strings.Join(sinkSymbols[t], " "))
		}

		for _, d := range sortedKeys(destSymbols) {
			out.printf("\t%d -> %d [label=\"%s\"];\n", n.Number, d, strings.Join(destSymbols[d], " "))
		}
	}

	out.printf("}\n")

	return out.err
}

func sortedKeys(m map[int][]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	return keys
}
