// Package apta implements the Augmented Prefix Tree Acceptor: the tree of
// all trace prefixes that the merge engine (see package merger) repeatedly
// collapses via state merging.
//
// A Node's identity survives merging through a union-find forest layered on
// top of the parent/child tree: Representative points at whichever node
// absorbed this one, and Find walks that chain to the current class root.
// No path compression is performed (see doc comment on Find) so that a
// speculative merge can always be undone byte-for-byte.
//
// Errors:
//
//	ErrNilAPTA       - an operation was given a nil *APTA.
//	ErrUnknownSymbol - a symbol outside the configured alphabet.
package apta

import "errors"

// Sentinel errors for apta package operations.
var (
	// ErrNilAPTA indicates an operation received a nil *APTA.
	ErrNilAPTA = errors.New("apta: nil automaton")

	// ErrUnknownSymbol indicates a symbol outside the configured alphabet.
	ErrUnknownSymbol = errors.New("apta: unknown alphabet symbol")
)

// Payload is the evaluator-owned data a Node carries. Concrete evaluators
// (package countdriven, package mse) implement Payload for their own
// observation bookkeeping; apta never inspects its contents, and the merge
// engine (package merger) calls Update/Undo during merge/undo_merge.
//
// ReadFrom is called when a trace *leaves* this node on symbol at the given
// position; ReadTo is called when a trace *arrives* at this node. index and
// length describe the trace position (length == index+1 means the last
// position of the trace).
type Payload interface {
	ReadFrom(typ, index, length, symbol int, data string)
	ReadTo(typ, index, length, symbol int, data string)

	// Update merges other into the receiver, recording whatever is needed
	// for Undo to reverse this exactly.
	Update(other Payload)

	// Undo exactly reverses the most recent Update(other) call, restoring
	// byte-identical state to both receiver and other.
	Undo(other Payload)
}

// Guard generalizes a plain child pointer into a transition with metadata.
// The merge engine only ever reads Target; richer guards (data predicates,
// timing constraints) embed Guard and are opaque to apta and merger alike.
type Guard struct {
	Target *Node
}

// Node represents a unique prefix of the training data ingested into an
// APTA. Node is never freed once allocated; class membership changes only
// through Representative, never by relocating or deleting nodes.
type Node struct {
	// Number is a stable identity assigned at construction, used for
	// output/debugging (DOT rendering, error messages).
	Number int

	// Label is the alphabet symbol of the incoming transition; Type is the
	// trace-type tag that produced this node (conventionally 1 = accepting).
	Label int
	Type  int

	// Source is the back-edge to the parent prefix node. Its lifetime is
	// the APTA's; it is never nil except for Root.
	Source *Node

	// Children maps symbol -> child node. ChildOrder records the order
	// children were first inserted: the merge cascade and its undo MUST
	// walk children in forward/reverse insertion order respectively, and a
	// Go map gives no ordering guarantee, so ChildOrder is load-bearing,
	// not cosmetic.
	Children   map[int]*Node
	ChildOrder []int

	// Guards generalizes Children for transitions carrying richer metadata
	// than a bare target pointer.
	Guards map[int]*Guard

	// Representative is the union-find pointer: nil iff this node is its
	// own class root.
	Representative *Node

	// Size is the count of nodes currently in this equivalence class; only
	// meaningful (and maintained) on the class root.
	Size int

	// Red marks a node promoted into the committed automaton frontier.
	Red bool

	// Data is the evaluator-owned payload for this node.
	Data Payload

	// DetUndo maps symbol -> the node whose merge installed the
	// conflict-resolution for that symbol, used by UndoMerge to locate and
	// reverse a cascaded merge step.
	DetUndo map[int]*Node

	// SafetyNode is an opaque back-pointer into a safety automaton (package
	// safety), attached by safety.DFA.InitializeAPTA. apta never interprets
	// it; this keeps apta free of any dependency on package safety.
	SafetyNode interface{}
}

// newNode allocates a Node with initialized maps. Unexported: nodes are
// only created by New (the root) and APTA.addChild, which keep Number and
// Source bookkeeping consistent.
func newNode(number, label, typ int, source *Node) *Node {
	return &Node{
		Number:     number,
		Label:      label,
		Type:       typ,
		Source:     source,
		Children:   make(map[int]*Node),
		ChildOrder: make([]int, 0, 4),
		Guards:     make(map[int]*Guard),
		Size:       1,
		DetUndo:    make(map[int]*Node),
	}
}

// APTA is the prefix tree of all trace prefixes, rooted at the empty
// prefix, plus its alphabet.
type APTA struct {
	Root     *Node
	Alphabet map[int]string

	// symbolOf is the reverse of Alphabet, maintained so the trace adapter
	// and DOT renderer can resolve symbol names to indices in O(1).
	symbolOf map[string]int

	nextNumber int
}

// New returns an empty APTA with an allocated root node (type 0, label -1,
// no source) and no alphabet entries. Use Intern to register symbols as
// traces are read.
func New() *APTA {
	a := &APTA{
		Alphabet: make(map[int]string),
		symbolOf: make(map[string]int),
	}
	a.Root = newNode(0, -1, 0, nil)
	a.nextNumber = 1

	return a
}

// Intern returns the integer symbol for name, registering a new dense index
// if name has not been seen before.
func (a *APTA) Intern(name string) int {
	if sym, ok := a.symbolOf[name]; ok {
		return sym
	}
	sym := len(a.Alphabet)
	a.Alphabet[sym] = name
	a.symbolOf[name] = sym

	return sym
}

// SymbolName returns the printable name for a symbol index, or "" if unknown.
func (a *APTA) SymbolName(symbol int) string {
	return a.Alphabet[symbol]
}

// AlphabetSize returns the number of distinct symbols interned so far.
func (a *APTA) AlphabetSize() int {
	return len(a.Alphabet)
}

// SetChild installs child as the symbol transition on n, recording
// insertion order (if this is the first time symbol is set) and keeping
// Guards in sync with Children. Used by the merge engine's case-6a
// installation and by trace ingestion.
func (n *Node) SetChild(symbol int, child *Node) {
	if _, exists := n.Children[symbol]; !exists {
		n.ChildOrder = append(n.ChildOrder, symbol)
	}
	n.Children[symbol] = child
	n.Guards[symbol] = &Guard{Target: child}
}

// RemoveChild erases the symbol transition on n entirely, including its
// ChildOrder entry and guard. Used by UndoMerge to reverse a case-6a
// installation exactly.
func (n *Node) RemoveChild(symbol int) {
	delete(n.Children, symbol)
	delete(n.Guards, symbol)
	for i, s := range n.ChildOrder {
		if s == symbol {
			n.ChildOrder = append(n.ChildOrder[:i], n.ChildOrder[i+1:]...)
			break
		}
	}
}

// addChild creates (if absent) the raw child of parent on symbol, ingesting
// a trace of the given type, and returns it. It never resolves through
// Find: trace construction always happens before any merging, so every
// node is its own class root at this point.
func (a *APTA) addChild(parent *Node, symbol, typ int) *Node {
	if child, ok := parent.Children[symbol]; ok {
		return child
	}
	child := newNode(a.nextNumber, symbol, typ, parent)
	a.nextNumber++
	parent.SetChild(symbol, child)

	return child
}

// AddChild is the exported form of addChild, used by the trace adapter
// (package trace) while it ingests raw traces, before any merge evaluator
// payload is attached.
func (a *APTA) AddChild(parent *Node, symbol, typ int) *Node {
	return a.addChild(parent, symbol, typ)
}
