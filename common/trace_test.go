package common

import (
	"strings"
	"testing"

	"github.com/ChainSafe/asmflow/cfg"
	"github.com/ChainSafe/asmflow/fragment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph(t *testing.T) *cfg.Graph {
	f, err := fragment.Decode(strings.NewReader(`
- {role: plain, opcode: li, operands: [t0, 1], label: entry}
- {role: branch, opcode: beqz, operands: [t0], target: skip}
- {role: plain, opcode: addi, operands: [t0, t0, 1], label: body}
- {role: return, opcode: ret, label: skip}
- {role: plain, opcode: nop, label: orphan}
`))
	require.NoError(t, err)
	g, err := cfg.Build(f, cfg.Options{})
	require.NoError(t, err)
	return g
}

func TestTraceToEntry(t *testing.T) {
	g := testGraph(t)

	trace, err := TraceToEntry(g, "skip", EntryAt(0))
	require.NoError(t, err)
	assert.Equal(t, []cfg.Handle{0, 2}, trace.Handles())
	assert.Equal(t, "skip", trace.Label)
	assert.Equal(t, 3, trace.Statement)
	require.NotNil(t, trace.Pred)
	assert.Equal(t, cfg.EdgeTaken, trace.Pred.Via)
	assert.Equal(t, "entry", trace.Pred.Label)

	trace, err = TraceToEntry(g, "body", EntryAt(0))
	require.NoError(t, err)
	assert.Equal(t, []cfg.Handle{0, 1}, trace.Handles())
	assert.Equal(t, cfg.EdgeFallthrough, trace.Pred.Via)
}

func TestTraceToEntryFailures(t *testing.T) {
	g := testGraph(t)

	_, err := TraceToEntry(g, "orphan", EntryAt(0))
	assert.ErrorContains(t, err, "no trace found")

	_, err = TraceToEntry(g, "missing", EntryAt(0))
	assert.ErrorContains(t, err, "could not find block")
}

func TestEntryFor(t *testing.T) {
	g := testGraph(t)

	h, err := EntryFor(g, "")
	require.NoError(t, err)
	assert.Equal(t, cfg.Handle(0), h)

	h, err = EntryFor(g, "orphan")
	require.NoError(t, err)
	assert.Equal(t, cfg.Handle(3), h)

	_, err = EntryFor(g, "nowhere")
	assert.ErrorContains(t, err, "nowhere")

	empty, err := cfg.Build(fragment.MustNew(), cfg.Options{})
	require.NoError(t, err)
	_, err = EntryFor(empty, "")
	assert.ErrorContains(t, err, "no blocks")
}

func TestEntryAtOnlyAcceptsEntry(t *testing.T) {
	g := testGraph(t)
	isEntry := EntryAt(3)
	assert.True(t, isEntry(g.Block(3)))
	assert.False(t, isEntry(g.Block(0)))

	trace, err := TraceToEntry(g, "orphan", isEntry)
	require.NoError(t, err)
	assert.Equal(t, []cfg.Handle{3}, trace.Handles())

	// block 0 is not an entry under this predicate
	_, err = TraceToEntry(g, "skip", isEntry)
	assert.ErrorContains(t, err, "no trace found")
}

func TestAddPred(t *testing.T) {
	trace := &Trace{Block: 3}
	trace.AddPred(&Trace{Block: 2})
	trace.AddPred(&Trace{Block: 1})
	assert.Equal(t, []cfg.Handle{1, 2, 3}, trace.Handles())
}

func TestTraceBlock(t *testing.T) {
	g := testGraph(t)
	trace := TraceBlock(g, 1, EntryAt(0))
	require.NotNil(t, trace)
	assert.Equal(t, []cfg.Handle{0, 1}, trace.Handles())
	assert.Nil(t, TraceBlock(g, 3, EntryAt(0)))
}
