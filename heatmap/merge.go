package heatmap

import (
	"slices"

	"github.com/ChainSafe/asmflow/asm"
)

// Program is a heatmap over fragment statements, merged from the heatmaps of
// several paths. Where paths disagree the mean age is kept.
type Program struct {
	sums   map[int]*[asm.NumRegisters]int
	counts map[int]*[asm.NumRegisters]int
}

// Merge folds path heatmaps into one program heatmap keyed by fragment
// index. Unknown ages do not take part in the mean.
func Merge(maps ...*Heatmap) *Program {
	p := &Program{
		sums:   make(map[int]*[asm.NumRegisters]int),
		counts: make(map[int]*[asm.NumRegisters]int),
	}
	for _, m := range maps {
		for _, row := range m.rows {
			sum, ok := p.sums[row.Index]
			if !ok {
				sum = new([asm.NumRegisters]int)
				p.sums[row.Index] = sum
				p.counts[row.Index] = new([asm.NumRegisters]int)
			}
			count := p.counts[row.Index]
			for r, age := range row.Ages {
				if age == Unknown {
					continue
				}
				sum[r] += age
				count[r]++
			}
		}
	}
	return p
}

// Indices returns the covered fragment indices in program order.
func (p *Program) Indices() []int {
	out := make([]int, 0, len(p.sums))
	for i := range p.sums {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// Age returns the mean age of r before the statement at fragment index i,
// truncated towards zero, or Unknown when no path knows it.
func (p *Program) Age(i int, r asm.Register) int {
	sum, ok := p.sums[i]
	if !ok || !r.Valid() || p.counts[i][r] == 0 {
		return Unknown
	}
	return sum[r] / p.counts[i][r]
}

// Ages returns the mean ages before the statement at fragment index i.
func (p *Program) Ages(i int) Ages {
	var ages Ages
	for r := range ages {
		ages[r] = p.Age(i, asm.Register(r))
	}
	return ages
}

// Cells exports every known mean age; Cell.Position holds the fragment index.
func (p *Program) Cells() map[Cell]int {
	cells := make(map[Cell]int)
	for _, i := range p.Indices() {
		for r, age := range p.Ages(i) {
			if age != Unknown {
				cells[Cell{Position: i, Register: asm.Register(r)}] = age
			}
		}
	}
	return cells
}
