package dot_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/aptamerge/apta"
	"github.com/katalvlaran/aptamerge/config"
	"github.com/katalvlaran/aptamerge/countdriven"
	"github.com/katalvlaran/aptamerge/dot"
	"github.com/katalvlaran/aptamerge/merger"
)

func TestWriteRendersRootAndLiveTransitions(t *testing.T) {
	aut := apta.New()
	sa := aut.Intern("a")
	root := aut.Root
	root.Data = &countdriven.Payload{}
	child := aut.AddChild(root, sa, 1)
	child.Data = &countdriven.Payload{}

	cfg := config.New()
	eval := countdriven.New(cfg)
	m := merger.New(aut, eval, cfg)

	var buf strings.Builder
	require.NoError(t, dot.Write(&buf, m))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "digraph DFA {\n"))
	require.Contains(t, out, "shape=box")
	require.Contains(t, out, "I -> ")
	require.Contains(t, out, "label=\"a\"")
	require.True(t, strings.HasSuffix(out, "}\n"))
}

func TestWriteRendersSinkPseudoNodesWhenSinksEnabled(t *testing.T) {
	aut := apta.New()
	sa := aut.Intern("a")
	root := aut.Root
	root.Data = &countdriven.Payload{}
	child := aut.AddChild(root, sa, 1)
	child.Data = &countdriven.Payload{NumAccepting: 1} // accepting-only: classified as a sink when enabled

	cfg := config.New(config.WithUseSinks(true))
	eval := countdriven.New(cfg)
	m := merger.New(aut, eval, cfg)

	var buf strings.Builder
	require.NoError(t, dot.Write(&buf, m))

	out := buf.String()
	require.Contains(t, out, "sink 1")
}
