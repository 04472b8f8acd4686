package cfg

import (
	"fmt"
	"slices"

	"github.com/ChainSafe/asmflow/asm"
	"github.com/ChainSafe/asmflow/fragment"
)

// EdgeKind tags the control transfer an edge stands for.
type EdgeKind int

const (
	EdgeFallthrough EdgeKind = iota + 1
	EdgeTaken
	EdgeUnconditional
	EdgeCall
	EdgeReturn
)

var edgeKindNames = map[EdgeKind]string{
	EdgeFallthrough:   "FALLTHROUGH",
	EdgeTaken:         "TAKEN_BRANCH",
	EdgeUnconditional: "UNCONDITIONAL",
	EdgeCall:          "CALL_EDGE",
	EdgeReturn:        "RETURN_EDGE",
}

func (k EdgeKind) String() string {
	if name, ok := edgeKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EdgeKind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k EdgeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Edge is a directed, tagged control-flow edge between two blocks.
type Edge struct {
	From Handle   `json:"from"`
	To   Handle   `json:"to"`
	Kind EdgeKind `json:"kind"`
}

func (e Edge) String() string {
	return fmt.Sprintf("B%d -%s-> B%d", e.From, e.Kind, e.To)
}

// Options tune how exit statements are turned into edges.
type Options struct {
	// ReturnRule classifies return-role exits. Exits it rejects are kept as
	// sinks and reported by Graph.Indirect. Defaults to ConventionReturns.
	ReturnRule ReturnRule
	// CallFallthrough adds a fallthrough edge from a call block to the next
	// block, linking the call to its return site.
	CallFallthrough bool
	// ExternalCalls tolerates call targets defined outside of the fragment.
	// Such blocks get no call edge, fall through to the next block, and are
	// reported by Graph.External.
	ExternalCalls bool
}

// Graph is an arena of basic blocks with adjacency lists of edges. It is
// immutable; rebuild it after mutating the fragment.
type Graph struct {
	frag     *fragment.Fragment
	seg      *Segmentation
	succ     [][]Edge
	pred     [][]Edge
	indirect []Handle
	external []Handle
}

// Build segments f and links its blocks. No graph is returned if any
// control-transfer target fails to resolve.
func Build(f *fragment.Fragment, opts Options) (*Graph, error) {
	seg, err := Segment(f)
	if err != nil {
		return nil, err
	}
	return Link(f, seg, opts)
}

// Link builds the graph over an existing segmentation of f.
func Link(f *fragment.Fragment, seg *Segmentation, opts Options) (*Graph, error) {
	if opts.ReturnRule == nil {
		opts.ReturnRule = ConventionReturns
	}
	n := len(seg.Blocks)
	g := &Graph{
		frag: f,
		seg:  seg,
		succ: make([][]Edge, n),
		pred: make([][]Edge, n),
	}

	for _, b := range seg.Blocks {
		exit := b.Exit()
		next, hasNext := b.Handle+1, int(b.Handle)+1 < n

		switch exit.Role() {
		case asm.RoleJump, asm.RoleBranch:
			to, err := g.resolve(b, exit)
			if err != nil {
				return nil, err
			}
			if exit.Role() == asm.RoleJump {
				g.link(b.Handle, to, EdgeUnconditional)
				break
			}
			g.link(b.Handle, to, EdgeTaken)
			if hasNext {
				g.link(b.Handle, next, EdgeFallthrough)
			}
		case asm.RoleCall:
			to, err := g.resolve(b, exit)
			switch {
			case err == nil:
				g.link(b.Handle, to, EdgeCall)
				if opts.CallFallthrough && hasNext {
					g.link(b.Handle, next, EdgeFallthrough)
				}
			case opts.ExternalCalls:
				g.external = append(g.external, b.Handle)
				if hasNext {
					g.link(b.Handle, next, EdgeFallthrough)
				}
			default:
				return nil, err
			}
		case asm.RoleReturn:
			if !opts.ReturnRule(exit) {
				g.indirect = append(g.indirect, b.Handle)
			}
		default:
			if hasNext {
				g.link(b.Handle, next, EdgeFallthrough)
			}
		}
	}
	return g, nil
}

func (g *Graph) resolve(b Block, exit *asm.Statement) (Handle, error) {
	if h, ok := g.seg.Resolve(exit.Target()); ok {
		return h, nil
	}
	return 0, &LabelError{
		Err:        ErrUnresolvedLabel,
		Label:      exit.Target(),
		Block:      b.Handle,
		Statement:  b.End - 1,
		Candidates: g.seg.Candidates(exit.Target()),
	}
}

func (g *Graph) link(from, to Handle, kind EdgeKind) {
	e := Edge{From: from, To: to, Kind: kind}
	g.succ[from] = append(g.succ[from], e)
	g.pred[to] = append(g.pred[to], e)
}

// Fragment returns the fragment the graph was built from.
func (g *Graph) Fragment() *fragment.Fragment {
	return g.frag
}

// Len returns the number of blocks.
func (g *Graph) Len() int {
	return len(g.seg.Blocks)
}

// Block returns the block with handle h.
func (g *Graph) Block(h Handle) Block {
	return g.seg.Blocks[h]
}

// Blocks returns all blocks in program order.
func (g *Graph) Blocks() []Block {
	return slices.Clone(g.seg.Blocks)
}

// Entry returns the first block of the fragment. ok is false for an empty
// fragment.
func (g *Graph) Entry() (h Handle, ok bool) {
	return 0, g.Len() > 0
}

// BlockFor resolves a label to the block it starts.
func (g *Graph) BlockFor(label string) (Handle, bool) {
	return g.seg.Resolve(label)
}

// Successors returns the outgoing edges of h, taken branch first.
func (g *Graph) Successors(h Handle) []Edge {
	return g.succ[h]
}

// Predecessors returns the incoming edges of h.
func (g *Graph) Predecessors(h Handle) []Edge {
	return g.pred[h]
}

// Edges lists every edge, ordered by source block.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, out := range g.succ {
		edges = append(edges, out...)
	}
	return edges
}

// IsBackEdge reports whether e targets a block that does not come after its
// source in program order.
func (g *Graph) IsBackEdge(e Edge) bool {
	return e.To <= e.From
}

// Sinks returns the blocks with no outgoing edge.
func (g *Graph) Sinks() []Handle {
	var sinks []Handle
	for h, out := range g.succ {
		if len(out) == 0 {
			sinks = append(sinks, Handle(h))
		}
	}
	return sinks
}

// Indirect returns the blocks ending in a register-indirect jump that the
// return rule did not accept as a return. Their edges are unknown.
func (g *Graph) Indirect() []Handle {
	return slices.Clone(g.indirect)
}

// External returns the blocks calling a label outside of the fragment.
func (g *Graph) External() []Handle {
	return slices.Clone(g.external)
}
