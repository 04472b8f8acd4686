// Package heatmap measures register hotness: for every instruction of a block
// or path, how many instructions ran since each register was last written.
//
// Ages are tracked per unit (a block, or the concatenation of a path's
// blocks). A register starts Unknown. The first time it is read without a
// prior write in the unit it is treated as written just before the unit, so
// its age is its distance from the unit entry. At each instruction the row of
// ages is recorded before the instruction executes; then every known age grows
// by one and the registers the instruction writes drop to zero. Labels and
// directives get no row and age nothing.
//
// Loops are not iterated to a fixed point: a truncated path reports the ages
// accumulated up to its cut.
package heatmap

import (
	"github.com/ChainSafe/asmflow/asm"
	"github.com/ChainSafe/asmflow/cfg"
	"github.com/ChainSafe/asmflow/paths"
)

// Unknown is the age of a register not written, nor read, so far in the unit.
const Unknown = -1

// Ages holds one age per integer register.
type Ages [asm.NumRegisters]int

// Cell addresses one entry of a heatmap.
type Cell struct {
	Position int
	Register asm.Register
}

// Row is the register file's ages right before an instruction executes.
type Row struct {
	Position int        `json:"position"` // position within the unit
	Index    int        `json:"index"`    // fragment index of the statement
	Block    cfg.Handle `json:"block"`
	Ages     Ages       `json:"ages"`
}

// Heatmap is the row sequence of one unit.
type Heatmap struct {
	rows  []Row
	final Ages
}

type walker struct {
	ages Ages
	rows []Row
}

func newWalker() *walker {
	w := &walker{}
	for r := range w.ages {
		w.ages[r] = Unknown
	}
	return w
}

func (w *walker) step(s *asm.Statement, index int, block cfg.Handle) {
	if !s.IsInstruction() {
		return
	}
	pos := len(w.rows)
	for _, r := range s.Uses().Slice() {
		if r != asm.Zero && w.ages[r] == Unknown {
			w.ages[r] = pos
		}
	}
	w.rows = append(w.rows, Row{Position: pos, Index: index, Block: block, Ages: w.ages})
	for r := range w.ages {
		if w.ages[r] != Unknown {
			w.ages[r]++
		}
	}
	for _, r := range s.Defs().Slice() {
		w.ages[r] = 0
	}
}

func (w *walker) block(b cfg.Block) {
	for i, s := range b.Statements() {
		w.step(s, b.Start+i, b.Handle)
	}
}

func (w *walker) heatmap() *Heatmap {
	return &Heatmap{rows: w.rows, final: w.ages}
}

// Block computes the heatmap of a single block.
func Block(b cfg.Block) *Heatmap {
	w := newWalker()
	w.block(b)
	return w.heatmap()
}

// Path computes the heatmap of a path, carrying ages across block
// boundaries.
func Path(g *cfg.Graph, p paths.Path) *Heatmap {
	w := newWalker()
	for _, h := range p.Blocks {
		w.block(g.Block(h))
	}
	return w.heatmap()
}

// Len returns the number of rows.
func (h *Heatmap) Len() int {
	return len(h.rows)
}

// Rows returns a copy of every row.
func (h *Heatmap) Rows() []Row {
	return append([]Row(nil), h.rows...)
}

// Row returns the row at pos.
func (h *Heatmap) Row(pos int) (Row, bool) {
	if pos < 0 || pos >= len(h.rows) {
		return Row{}, false
	}
	return h.rows[pos], true
}

// Age returns the age of r before the statement at pos, or Unknown.
func (h *Heatmap) Age(pos int, r asm.Register) int {
	row, ok := h.Row(pos)
	if !ok || !r.Valid() {
		return Unknown
	}
	return row.Ages[r]
}

// Index returns the fragment index of the statement at pos, or -1.
func (h *Heatmap) Index(pos int) int {
	row, ok := h.Row(pos)
	if !ok {
		return -1
	}
	return row.Index
}

// Final returns the ages after the last statement of the unit.
func (h *Heatmap) Final() Ages {
	return h.final
}

// Cells exports every known age keyed by position and register.
func (h *Heatmap) Cells() map[Cell]int {
	cells := make(map[Cell]int)
	for _, row := range h.rows {
		for r, age := range row.Ages {
			if age != Unknown {
				cells[Cell{Position: row.Position, Register: asm.Register(r)}] = age
			}
		}
	}
	return cells
}

// Heat converts an age into a heat level: maxHeat for a register written by the
// previous instruction, cooling by one per instruction down to zero. Unknown
// registers are cold.
func Heat(age, maxHeat int) int {
	if age == Unknown || age >= maxHeat {
		return 0
	}
	return maxHeat - age
}
