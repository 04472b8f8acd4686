// Package paths enumerates bounded execution paths through a control-flow
// graph.
//
// Enumeration is a depth-first traversal driven by an explicit stack. It
// branches at every block with more than one successor and follows single
// successors. Each path counts its visits per block; following an edge into a
// block that already reached MaxVisits on the current path cuts the path,
// which is reported as Truncated. Paths ending at a block with no successor
// are Complete. With the default bound every loop is unrolled exactly one
// extra iteration.
package paths

import (
	"fmt"
	"iter"

	"github.com/ChainSafe/asmflow/cfg"
	"github.com/ChainSafe/asmflow/common/lifo"
)

// DefaultMaxVisits allows one visit beyond the first.
const DefaultMaxVisits = 2

// Status tells how a path ended.
type Status int

const (
	Complete  Status = iota + 1 // reached a block without successors
	Truncated                   // cut by the visit bound
)

func (s Status) String() string {
	switch s {
	case Complete:
		return "COMPLETE"
	case Truncated:
		return "TRUNCATED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Path is a sequence of block handles into the graph it was produced from.
type Path struct {
	Blocks []cfg.Handle `json:"blocks"`
	Status Status       `json:"status"`
	// Cut is the edge that would have exceeded the visit bound.
	Cut *cfg.Edge `json:"cut,omitempty"`
}

// Len returns the number of blocks on the path.
func (p Path) Len() int {
	return len(p.Blocks)
}

// Visits counts the occurrences of h on the path.
func (p Path) Visits(h cfg.Handle) int {
	n := 0
	for _, b := range p.Blocks {
		if b == h {
			n++
		}
	}
	return n
}

// Options bound the enumeration.
type Options struct {
	// MaxVisits is how many times a block may appear on a single path.
	// Zero selects DefaultMaxVisits.
	MaxVisits int
}

type frame struct {
	block   cfg.Handle
	next    int // index of the next successor to explore
	entered bool
}

// Simulator produces the paths starting at one entry block, one at a time.
// A Simulator is not safe for concurrent use; independent simulators over
// the same graph are.
type Simulator struct {
	g         *cfg.Graph
	maxVisits int
	stack     lifo.Stack[frame]
	visits    []int
}

// New prepares an enumeration of the paths starting at entry.
func New(g *cfg.Graph, entry cfg.Handle, opts Options) (*Simulator, error) {
	if entry < 0 || int(entry) >= g.Len() {
		return nil, fmt.Errorf("entry block B%d out of range [0, %d)", entry, g.Len())
	}
	if opts.MaxVisits < 0 {
		return nil, fmt.Errorf("invalid visit bound %d", opts.MaxVisits)
	}
	if opts.MaxVisits == 0 {
		opts.MaxVisits = DefaultMaxVisits
	}
	s := &Simulator{
		g:         g,
		maxVisits: opts.MaxVisits,
		visits:    make([]int, g.Len()),
	}
	s.push(entry)
	return s, nil
}

// Next returns the next path. ok is false once every path has been produced.
func (s *Simulator) Next() (p Path, ok bool) {
	for !s.stack.IsEmpty() {
		top := s.stack.Top()
		succ := s.g.Successors(top.block)
		if !top.entered {
			top.entered = true
			if len(succ) == 0 {
				p = s.snapshot(Complete, nil)
				s.pop()
				return p, true
			}
		}
		if top.next >= len(succ) {
			s.pop()
			continue
		}
		e := succ[top.next]
		top.next++
		if s.visits[e.To] >= s.maxVisits {
			return s.snapshot(Truncated, &e), true
		}
		s.push(e.To)
	}
	return Path{}, false
}

// All yields the remaining paths. Stopping the iteration early leaves the
// simulator where it stopped.
func (s *Simulator) All() iter.Seq[Path] {
	return func(yield func(Path) bool) {
		for {
			p, ok := s.Next()
			if !ok || !yield(p) {
				return
			}
		}
	}
}

// Collect gathers up to limit paths; limit <= 0 gathers all of them.
// exhausted reports whether the enumeration ran to its end.
func (s *Simulator) Collect(limit int) (out []Path, exhausted bool) {
	for limit <= 0 || len(out) < limit {
		p, ok := s.Next()
		if !ok {
			return out, true
		}
		out = append(out, p)
	}
	return out, s.stack.IsEmpty()
}

func (s *Simulator) push(h cfg.Handle) {
	s.visits[h]++
	s.stack.Push(frame{block: h})
}

func (s *Simulator) pop() {
	if f, ok := s.stack.Pop(); ok {
		s.visits[f.block]--
	}
}

func (s *Simulator) snapshot(status Status, cut *cfg.Edge) Path {
	frames := s.stack.Items()
	blocks := make([]cfg.Handle, len(frames))
	for i, f := range frames {
		blocks[i] = f.block
	}
	p := Path{Blocks: blocks, Status: status}
	if cut != nil {
		c := *cut
		p.Cut = &c
	}
	return p
}

// Enumerate collects every path from entry with the given options.
func Enumerate(g *cfg.Graph, entry cfg.Handle, opts Options) ([]Path, error) {
	sim, err := New(g, entry, opts)
	if err != nil {
		return nil, err
	}
	out, _ := sim.Collect(0)
	return out, nil
}
