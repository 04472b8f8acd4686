package heatmap

import (
	"strings"
	"testing"

	"github.com/ChainSafe/asmflow/asm"
	"github.com/ChainSafe/asmflow/cfg"
	"github.com/ChainSafe/asmflow/fragment"
	"github.com/ChainSafe/asmflow/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selfLoop = `
- {role: plain, opcode: add, operands: [r1, r2, r3], label: L0}
- {role: branch, opcode: beqz, operands: [r1], target: L0}
- {role: return, opcode: ret}
`

func build(t *testing.T, src string) *cfg.Graph {
	t.Helper()
	f, err := fragment.Decode(strings.NewReader(src))
	require.NoError(t, err)
	g, err := cfg.Build(f, cfg.Options{})
	require.NoError(t, err)
	return g
}

func path(hs ...cfg.Handle) paths.Path {
	return paths.Path{Blocks: hs, Status: paths.Complete}
}

// ages picks the ages of RA, SP and GP, which the records call r1, r2 and r3.
func ages(h *Heatmap, pos int) [3]int {
	return [3]int{h.Age(pos, asm.RA), h.Age(pos, asm.SP), h.Age(pos, asm.GP)}
}

func TestBlockHeatmap(t *testing.T) {
	g := build(t, selfLoop)
	h := Block(g.Block(0))
	require.Equal(t, 2, h.Len())

	assert.Equal(t, [3]int{Unknown, 0, 0}, ages(h, 0))
	// at the branch r1 was just written, r2 and r3 were read one statement ago
	assert.Equal(t, [3]int{0, 1, 1}, ages(h, 1))

	final := h.Final()
	assert.Equal(t, [3]int{1, 2, 2}, [3]int{final[asm.RA], final[asm.SP], final[asm.GP]})
	assert.Equal(t, Unknown, final[asm.A0])

	assert.Equal(t, map[Cell]int{
		{0, asm.SP}: 0,
		{0, asm.GP}: 0,
		{1, asm.RA}: 0,
		{1, asm.SP}: 1,
		{1, asm.GP}: 1,
	}, h.Cells())

	row, ok := h.Row(1)
	require.True(t, ok)
	assert.Equal(t, 1, row.Index)
	assert.Equal(t, cfg.Handle(0), row.Block)
}

func TestLabelsAndDirectivesDoNotAge(t *testing.T) {
	g := build(t, `
- {role: labeled, label: L0}
- {role: plain, opcode: add, operands: [r1, r2, r3]}
- {role: plain, opcode: .p2align, operands: [2]}
- {role: branch, opcode: beqz, operands: [r1], target: L0}
- {role: return, opcode: ret}
`)
	require.Equal(t, 2, g.Len())
	h := Block(g.Block(0))
	require.Equal(t, 2, h.Len())

	assert.Equal(t, [3]int{Unknown, 0, 0}, ages(h, 0))
	assert.Equal(t, [3]int{0, 1, 1}, ages(h, 1))
	assert.Equal(t, 1, h.Index(0))
	assert.Equal(t, 3, h.Index(1))

	p := Path(g, path(0, 0, 1))
	require.Equal(t, 5, p.Len())
	assert.Equal(t, [3]int{1, 4, 4}, ages(p, 4))
}

func TestBlockHeatmapIsIdempotent(t *testing.T) {
	g := build(t, selfLoop)
	for _, b := range g.Blocks() {
		assert.Equal(t, Block(b), Block(b), "%s", b)
	}
}

func TestPathCarriesAges(t *testing.T) {
	g := build(t, selfLoop)
	h := Path(g, path(0, 0, 1))
	require.Equal(t, 5, h.Len())

	assert.Equal(t, [3]int{Unknown, 0, 0}, ages(h, 0))
	assert.Equal(t, [3]int{0, 1, 1}, ages(h, 1))
	assert.Equal(t, [3]int{1, 2, 2}, ages(h, 2))
	assert.Equal(t, [3]int{0, 3, 3}, ages(h, 3))
	// ret reads ra, written three statements before
	assert.Equal(t, [3]int{1, 4, 4}, ages(h, 4))

	rows := h.Rows()
	assert.Equal(t, []int{0, 1, 0, 1, 2}, []int{rows[0].Index, rows[1].Index, rows[2].Index, rows[3].Index, rows[4].Index})
	assert.Equal(t, cfg.Handle(1), rows[4].Block)
	assert.Equal(t, 2, h.Index(4))
	assert.Equal(t, -1, h.Index(5))

	// the first block of a path matches its own heatmap
	single := Block(g.Block(0))
	assert.Equal(t, single.Rows(), h.Rows()[:2])
}

func TestZeroRegisterStaysUnknown(t *testing.T) {
	g := build(t, `
- {role: plain, opcode: add, operands: [a0, zero, zero]}
- {role: plain, opcode: addi, operands: [zero, a0, 1]}
- {role: plain, opcode: mv, operands: [a1, a0]}
`)
	h := Block(g.Block(0))
	for pos := range h.Len() {
		assert.Equal(t, Unknown, h.Age(pos, asm.Zero))
	}
	assert.Equal(t, 0, h.Age(1, asm.A0))
	assert.Equal(t, 1, h.Age(2, asm.A0))
	assert.Equal(t, Unknown, h.Age(2, asm.A1))
}

func TestOutOfRange(t *testing.T) {
	g := build(t, selfLoop)
	h := Block(g.Block(1))
	_, ok := h.Row(3)
	assert.False(t, ok)
	assert.Equal(t, Unknown, h.Age(-1, asm.RA))
	assert.Equal(t, Unknown, h.Age(0, asm.Register(40)))
	assert.Equal(t, 0, h.Age(0, asm.RA))
}

func TestHeat(t *testing.T) {
	assert.Equal(t, 32, Heat(0, 32))
	assert.Equal(t, 1, Heat(31, 32))
	assert.Equal(t, 0, Heat(32, 32))
	assert.Equal(t, 0, Heat(100, 32))
	assert.Equal(t, 0, Heat(Unknown, 32))
}

func TestMerge(t *testing.T) {
	g := build(t, selfLoop)
	short := Path(g, path(0, 1))
	long := Path(g, path(0, 0, 1))
	p := Merge(short, long)

	assert.Equal(t, []int{0, 1, 2}, p.Indices())
	// sp before the add: 0 on the first pass of both paths, 2 on the second
	assert.Equal(t, 0, p.Age(0, asm.SP))
	// ra before the add is only known on the second pass
	assert.Equal(t, 1, p.Age(0, asm.RA))
	// sp before ret: 2 on the short path, 4 on the long one
	assert.Equal(t, 3, p.Age(2, asm.SP))
	assert.Equal(t, 1, p.Age(2, asm.RA))
	assert.Equal(t, Unknown, p.Age(2, asm.A0))
	assert.Equal(t, Unknown, p.Age(7, asm.SP))

	mean := p.Ages(1)
	assert.Equal(t, 0, mean[asm.RA])
	assert.Equal(t, 1, mean[asm.SP])

	cells := p.Cells()
	assert.Equal(t, 3, cells[Cell{Position: 2, Register: asm.SP}])
	_, ok := cells[Cell{Position: 0, Register: asm.A0}]
	assert.False(t, ok)

	assert.Empty(t, Merge().Indices())
}
