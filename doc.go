// Package aptamerge implements red/blue state-merging DFA inference over
// APTAs built from accepting/rejecting trace data.
//
// Under the hood, everything is organized under focused subpackages:
//
//	apta/        — the augmented prefix tree acceptor and its union-find view
//	evaluator/   — the pluggable merge-consistency/scoring contract
//	merger/      — the destructive merge/undo cascade and the search loop
//	countdriven/ — the default, count-driven evaluator
//	mse/         — the mean-squared-error information-criterion evaluator
//	registry/    — name/id based evaluator plugin lookup
//	safety/      — the optional reference safety automaton merge veto
//	trace/       — the line-oriented trace file adapter
//	dot/         — Graphviz DOT rendering of the merged automaton
//	config/      — the immutable, process-wide run configuration
//	cmd/aptamerge — the CLI entrypoint wiring all of the above
//
//	go get github.com/katalvlaran/aptamerge
package aptamerge
