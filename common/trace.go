// Package common holds helpers shared by the analyzer and the commands.
package common

import (
	"fmt"

	"github.com/ChainSafe/asmflow/cfg"
)

// Trace is one link of a chain of blocks leading from an entry block to a
// traced block. Pred points towards the entry.
type Trace struct {
	Block     cfg.Handle   `json:"block"`
	Label     string       `json:"label,omitempty"`
	Statement int          `json:"statement"`     // fragment index of the block entry
	Via       cfg.EdgeKind `json:"via,omitempty"` // edge leaving this block towards the traced one
	Pred      *Trace       `json:"pred,omitempty"`
}

// AddPred appends a link at the entry end of the chain.
func (t *Trace) AddPred(pred *Trace) {
	if t.Pred == nil {
		t.Pred = pred
		return
	}
	t.Pred.AddPred(pred)
}

// Handles lists the chain in execution order, entry block first.
func (t *Trace) Handles() []cfg.Handle {
	var out []cfg.Handle
	for l := t; l != nil; l = l.Pred {
		out = append([]cfg.Handle{l.Block}, out...)
	}
	return out
}

// EntryFor resolves the entry block of g: the block starting with label, or
// the first block when label is empty.
func EntryFor(g *cfg.Graph, label string) (cfg.Handle, error) {
	if label == "" {
		h, ok := g.Entry()
		if !ok {
			return 0, fmt.Errorf("fragment has no blocks")
		}
		return h, nil
	}
	h, ok := g.BlockFor(label)
	if !ok {
		return 0, fmt.Errorf("entry label %q does not start exactly one block", label)
	}
	return h, nil
}

// EntryAt accepts the entry block h only.
func EntryAt(h cfg.Handle) func(cfg.Block) bool {
	return func(b cfg.Block) bool {
		return b.Handle == h
	}
}

// TraceToEntry walks the predecessors of the block starting with label until
// it meets a block accepted by isEntry.
func TraceToEntry(g *cfg.Graph, label string, isEntry func(cfg.Block) bool) (*Trace, error) {
	target, ok := g.BlockFor(label)
	if !ok {
		return nil, fmt.Errorf("could not find block %s", label)
	}
	trace := TraceBlock(g, target, isEntry)
	if trace == nil {
		return nil, fmt.Errorf("no trace found to an entry block for %s", label)
	}
	return trace, nil
}

// TraceBlock is TraceToEntry for a block handle. It returns nil when no entry
// block reaches h.
func TraceBlock(g *cfg.Graph, h cfg.Handle, isEntry func(cfg.Block) bool) *Trace {
	seen := make(map[cfg.Handle]bool)
	var visit func(h cfg.Handle, via cfg.EdgeKind) *Trace

	visit = func(h cfg.Handle, via cfg.EdgeKind) *Trace {
		if seen[h] {
			return nil
		}
		seen[h] = true

		b := g.Block(h)
		link := &Trace{
			Block:     h,
			Label:     b.Label(),
			Statement: b.EntryIndex(),
			Via:       via,
		}
		if isEntry(b) {
			return link
		}
		for _, e := range g.Predecessors(h) {
			if pred := visit(e.From, e.Kind); pred != nil {
				link.AddPred(pred)
				return link
			}
		}
		return nil
	}
	return visit(h, 0)
}
