// Package safety implements the reference safety automaton that optionally
// vetoes state merges (spec.md component C6): a small DFA over boolean
// formulas of trace alphabet symbols, loaded from YAML, checked against the
// APTA both before a merge (the cheap "polynomial" algorithm) and after one
// (the "greedy" product-graph walk). Grounded on original_source's
// lib/safety.h / safety.cpp and lib/formal_language.h.
package safety

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/katalvlaran/aptamerge/apta"
	"gopkg.in/yaml.v3"
)

// Sentinel errors for package safety.
var (
	// ErrUnknownNode indicates an edge referenced a node absent from the
	// YAML nodes block.
	ErrUnknownNode = errors.New("safety: node not defined in DFA")

	// ErrUnsafeTrace indicates InitializeAPTA found a transition that is
	// satisfied by zero or more than one outgoing formula - the training
	// data takes a step the reference automaton cannot follow
	// deterministically.
	ErrUnsafeTrace = errors.New("safety: trace step has no unique safety transition")
)

// Algorithm selects which check PreCheckSafety/PostCheckSafety run.
type Algorithm int

const (
	// Polynomial runs only the cheap pre-merge state-name comparison;
	// PostCheckSafety is a no-op (always true) under this algorithm.
	Polynomial Algorithm = 0

	// Greedy runs only the post-merge product-graph BFS;
	// PreCheckSafety is a no-op (always true) under this algorithm.
	Greedy Algorithm = 1
)

// Node is one state of the reference safety automaton, named as in the
// authoring YAML. Grounded on safety.h's SafetyDFANode, trimmed to the
// fields this port actually exercises (incoming-edge bookkeeping in the
// original is never read by any of preCheckSafety/postCheckSafety/
// initializeAPTA/isSafeSymbols/printTree, so it is not carried over).
type Node struct {
	Name      string
	Accepting bool

	outs map[string]*Node // formula -> destination node
}

func newNode(name string, accepting bool) *Node {
	return &Node{Name: name, Accepting: accepting, outs: make(map[string]*Node)}
}

func (n *Node) setOutgoing(formula string, dst *Node) { n.outs[formula] = dst }

func (n *Node) outgoing(formula string) *Node { return n.outs[formula] }

// outgoingFormulas returns this node's outgoing formula labels in a stable
// (lexical) order - a Go map has none, and the BFS/scan order must be
// reproducible run to run.
func (n *Node) outgoingFormulas() []string {
	out := make([]string, 0, len(n.outs))
	for f := range n.outs {
		out = append(out, f)
	}
	sort.Strings(out)

	return out
}

// DFA is the loaded reference safety automaton plus the APTA it has been
// bound to by InitializeAPTA.
type DFA struct {
	root  *Node // virtual pre-root; root.outgoing(emptyTransitionSym) is the real start state
	nodes map[string]*Node

	alphabet map[string]struct{}

	emptyTransitionSym string

	algorithm Algorithm

	aut         *apta.APTA
	initialized bool

	ops    operatorSet
	opsErr error // set by WithOperators if the supplied operator set fails newOperatorSet's width check
}

// Option configures a DFA at Load time.
type Option func(*DFA)

// WithAlgorithm selects the pre/post-check algorithm (default Polynomial).
func WithAlgorithm(a Algorithm) Option {
	return func(d *DFA) { d.algorithm = a }
}

// WithOperators overrides the default boolean connective set (" & ", " | ")
// edge formulas are tokenized with - spec.md §4.6 calls the operator set
// configurable, provided every supplied operator still shares one textual
// width (see operatorSet). Load rejects a mismatched-width set returned by
// a custom Option with ErrOperatorWidth.
func WithOperators(ops map[string]Operator) Option {
	return func(d *DFA) {
		set, err := newOperatorSet(ops)
		d.ops = set
		d.opsErr = err
	}
}

type yamlNode struct {
	IsAccepting bool `yaml:"is_accepting"`
}

type yamlEdge struct {
	Symbols []string `yaml:"symbols"`
}

type yamlConfig struct {
	AlphabetSize       int                            `yaml:"alphabet_size"`
	NumStates          int                            `yaml:"num_states"`
	FinalTransitionSym string                         `yaml:"final_transition_sym"`
	EmptyTransitionSym string                         `yaml:"empty_transition_sym"`
	StartState         string                         `yaml:"start_state"`
	SmoothTransitions  bool                           `yaml:"smooth_transitions"`
	Nodes              map[string]yamlNode            `yaml:"nodes"`
	Edges              map[string]map[string]yamlEdge `yaml:"edges"`
}

// Load reads and parses a safety DFA from a YAML file in the format
// spec.md §6 documents, validating that every node named in edges also
// appears in nodes.
func Load(path string, opts ...Option) (*DFA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("safety: reading %s: %w", path, err)
	}

	var cfg yamlConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("safety: parsing %s: %w", path, err)
	}

	d := &DFA{
		nodes:              make(map[string]*Node, len(cfg.Nodes)),
		alphabet:           make(map[string]struct{}),
		emptyTransitionSym: cfg.EmptyTransitionSym,
		ops:                defaultOperatorSet,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.opsErr != nil {
		return nil, fmt.Errorf("safety: configuring operators: %w", d.opsErr)
	}

	for name, nd := range cfg.Nodes {
		d.nodes[name] = newNode(name, nd.IsAccepting)
	}

	start, ok := d.nodes[cfg.StartState]
	if !ok {
		return nil, fmt.Errorf("%w: start state %q", ErrUnknownNode, cfg.StartState)
	}
	d.root = newNode("", false)
	d.root.setOutgoing(cfg.EmptyTransitionSym, start)

	for src, dsts := range cfg.Edges {
		srcNode, ok := d.nodes[src]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownNode, src)
		}

		for dst, edge := range dsts {
			dstNode, ok := d.nodes[dst]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownNode, dst)
			}
			if len(edge.Symbols) == 0 {
				continue
			}

			// "Only the first entry of symbols is read."
			formula := edge.Symbols[0]
			srcNode.setOutgoing(formula, dstNode)

			symbols, _ := separateFormula(formula, d.ops)
			for _, s := range symbols {
				d.alphabet[strings.TrimPrefix(s, "!")] = struct{}{}
			}
		}
	}

	return d, nil
}

// String renders the automaton's node -> formula -> node edges as plain
// text, in node-name and formula-lexical order for reproducible output.
func (d *DFA) String() string {
	if d.root == nil {
		return "the tree is not yet constructed"
	}

	names := make([]string, 0, len(d.nodes))
	for name := range d.nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		n := d.nodes[name]
		b.WriteString(name)
		b.WriteByte('\n')
		for _, formula := range n.outgoingFormulas() {
			fmt.Fprintf(&b, "      %s ->  %s\n", formula, n.outgoing(formula).Name)
		}
	}

	return b.String()
}

// Accepts reports whether the given symbol sequence, read from the
// automaton's start state, never hits a symbol with zero or more than one
// valid outgoing formula. Useful for validating a trace file's alphabet
// against the safety DFA before building an APTA from it.
func (d *DFA) Accepts(symbols []string) bool {
	if d.root == nil {
		return true
	}

	q := d.root.outgoing(d.emptyTransitionSym)
	for _, symbol := range symbols {
		next, ok := stepFormulas(q.outgoingFormulas(), q.outgoing, symbol, d.alphabet, d.ops)
		if !ok {
			return false
		}
		q = next
	}

	return true
}

// stepFormulas evaluates every formula in formulas against symbol, and
// reports the unique destination reached via exactly one valid formula (ok
// is false if zero or more than one formula is valid).
func stepFormulas(formulas []string, dest func(string) *Node, symbol string, alphabet map[string]struct{}, ops operatorSet) (*Node, bool) {
	var next *Node
	valid := 0
	for _, formula := range formulas {
		if satisfyFormula(formula, symbol, alphabet, ops) {
			valid++
			next = dest(formula)
		}
	}
	if valid != 1 {
		return nil, false
	}

	return next, true
}
