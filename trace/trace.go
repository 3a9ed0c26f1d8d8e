// Package trace implements the external trace-ingestion adapter spec.md §6
// describes: reading a sequence of traces and driving the active
// evaluator's ReadFrom/ReadTo hooks as each is walked into the APTA. This is
// the Go-idiomatic stand-in for original_source's read_apta file-reading
// hooks, which spec.md explicitly places outside the merge engine's core
// scope.
//
// File format: one trace per line, "type length sym1:data1 sym2:data2 ...";
// length must equal the number of sym:data steps that follow.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/aptamerge/apta"
	"github.com/katalvlaran/aptamerge/evaluator"
)

// ErrMalformedLine indicates a trace line did not match the
// "type length sym:data ..." format, or its declared length disagreed with
// the number of steps actually present.
var ErrMalformedLine = errors.New("trace: malformed line")

// ReadFile opens path and ingests every non-blank line as one trace into
// aut, via Evaluator's NewPayload/ReadFrom/ReadTo hooks. Every node visited
// - including the root, on the very first trace - is assigned a payload on
// first visit only; later traces reuse whatever prefix already exists.
func ReadFile(path string, aut *apta.APTA, eval evaluator.Evaluator) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("trace: opening %s: %w", path, err)
	}
	defer f.Close()

	if aut.Root.Data == nil {
		aut.Root.Data = eval.NewPayload()
	}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := readLine(line, aut, eval); err != nil {
			return fmt.Errorf("trace: line %d: %w", lineNo, err)
		}
	}

	return scanner.Err()
}

func readLine(line string, aut *apta.APTA, eval evaluator.Evaluator) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	typ, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("%w: type %q: %w", ErrMalformedLine, fields[0], err)
	}

	length, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("%w: length %q: %w", ErrMalformedLine, fields[1], err)
	}

	steps := fields[2:]
	if len(steps) != length {
		return fmt.Errorf("%w: declared length %d, got %d steps", ErrMalformedLine, length, len(steps))
	}

	cur := aut.Root
	for index, step := range steps {
		symName, data, ok := strings.Cut(step, ":")
		if !ok {
			return fmt.Errorf("%w: step %q missing ':'", ErrMalformedLine, step)
		}

		symbol := aut.Intern(symName)
		cur.Data.ReadFrom(typ, index, length, symbol, data)

		child := cur.Child(symbol)
		isNew := child == nil
		child = aut.AddChild(cur, symbol, typ)
		if isNew {
			child.Data = eval.NewPayload()
		}
		child.Data.ReadTo(typ, index, length, symbol, data)

		cur = child
	}

	return nil
}
