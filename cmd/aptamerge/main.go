// Command aptamerge runs the state-merging DFA inference engine over a
// trace file: it builds an APTA, optionally binds a reference safety
// automaton, runs the configured evaluator's merge search to completion,
// and optionally renders the result as Graphviz DOT.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/katalvlaran/aptamerge/apta"
	"github.com/katalvlaran/aptamerge/config"
	_ "github.com/katalvlaran/aptamerge/countdriven"
	"github.com/katalvlaran/aptamerge/dot"
	"github.com/katalvlaran/aptamerge/evaluator"
	"github.com/katalvlaran/aptamerge/merger"
	_ "github.com/katalvlaran/aptamerge/mse"
	"github.com/katalvlaran/aptamerge/registry"
	"github.com/katalvlaran/aptamerge/safety"
	"github.com/katalvlaran/aptamerge/trace"
)

var logger = log.New(os.Stderr, "aptamerge: ", 0)

func main() {
	if err := run(); err != nil {
		logger.Fatal(err)
	}
}

func run() error {
	var (
		tracePath      = flag.String("trace", "", "path to the trace file (required)")
		heuristic      = flag.String("heuristic", "countdriven", "evaluator name or numeric HEURISTIC id")
		stateCount     = flag.Int("state-count", 1, "minimum class size for a full merge score")
		symbolCount    = flag.Int("symbol-count", 1, "minimum per-side observation count for MSE consistency")
		correction     = flag.Float64("correction", 0, "statistical correction for likelihood-ratio evaluators")
		checkParameter = flag.Float64("check-parameter", 0, "MSE mean-difference tolerance")
		useSinks       = flag.Bool("use-sinks", false, "enable sink classification")
		lowerBound     = flag.Int("lower-bound", 0, "minimum acceptable merge score")
		redFixed       = flag.Bool("red-fixed", false, "forbid red states from absorbing new outgoing symbols")
		mergeSinks     = flag.Bool("merge-sinks-dsolve", false, "consider sink blues as merge candidates")
		mergeTesting   = flag.Bool("merge-when-testing", true, "use destructive merge+undo for scoring")
		mergeBlueBlue  = flag.Bool("merge-blue-blue", false, "also score blue-to-blue pairs")
		mergeMostVisit = flag.Bool("merge-most-visited", false, "only score merges for the first (largest) blue")
		safetyPath     = flag.String("safety", "", "path to a safety DFA YAML file")
		safetyAlgo     = flag.String("safety-algorithm", "polynomial", "safety check algorithm: polynomial or greedy")
		dotPath        = flag.String("dot", "", "write the resulting automaton as Graphviz DOT to this path")
	)
	flag.Parse()

	if *tracePath == "" {
		return fmt.Errorf("aptamerge: -trace is required")
	}

	cfg := config.New(
		config.WithStateCount(*stateCount),
		config.WithSymbolCount(*symbolCount),
		config.WithCorrection(*correction),
		config.WithCheckParameter(*checkParameter),
		config.WithUseSinks(*useSinks),
		config.WithLowerBound(*lowerBound),
		config.WithRedFixed(*redFixed),
		config.WithMergeSinksDsolve(*mergeSinks),
		config.WithMergeWhenTesting(*mergeTesting),
		config.WithMergeBlueBlue(*mergeBlueBlue),
		config.WithMergeMostVisited(*mergeMostVisit),
	)

	eval, err := resolveEvaluator(*heuristic, cfg)
	if err != nil {
		return err
	}

	aut := apta.New()
	if err := trace.ReadFile(*tracePath, aut, eval); err != nil {
		return err
	}

	m := merger.New(aut, eval, cfg)

	if *safetyPath != "" {
		algo, err := parseSafetyAlgorithm(*safetyAlgo)
		if err != nil {
			return err
		}

		dfa, err := safety.Load(*safetyPath, safety.WithAlgorithm(algo))
		if err != nil {
			return err
		}
		if err := dfa.InitializeAPTA(aut); err != nil {
			return err
		}
		m.Safety = dfa
	}

	logger.Printf("starting search: %d red, %d blue", len(m.Red), len(m.Blue))
	m.Run()
	logger.Printf("search complete: %d merged states", len(m.MergedStates()))

	if *dotPath != "" {
		if err := writeDOT(*dotPath, m); err != nil {
			return err
		}
	}

	return nil
}

// resolveEvaluator resolves heuristic either as a registered name (e.g.
// "mse") or, if it parses as an integer, as a numeric HEURISTIC id (e.g.
// "3" for count-driven), building the evaluator from cfg either way.
func resolveEvaluator(heuristic string, cfg config.Config) (evaluator.Evaluator, error) {
	if id, err := strconv.Atoi(heuristic); err == nil {
		cfg.Heuristic = id
		ev, err := registry.Build(cfg)
		if err != nil {
			return nil, fmt.Errorf("aptamerge: %w", err)
		}

		return ev, nil
	}

	ev, err := registry.BuildNamed(heuristic, cfg)
	if err != nil {
		return nil, fmt.Errorf("aptamerge: %w", err)
	}

	return ev, nil
}

func parseSafetyAlgorithm(name string) (safety.Algorithm, error) {
	switch name {
	case "polynomial":
		return safety.Polynomial, nil
	case "greedy":
		return safety.Greedy, nil
	default:
		return 0, fmt.Errorf("aptamerge: unknown -safety-algorithm %q (want polynomial or greedy)", name)
	}
}

func writeDOT(path string, m *merger.Merger) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("aptamerge: creating %s: %w", path, err)
	}
	defer f.Close()

	return dot.Write(f, m)
}
