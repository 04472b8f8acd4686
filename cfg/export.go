package cfg

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// Line is a gonum line carrying the kind of the control-flow edge. Parallel
// lines occur when a branch targets the block it would fall through to.
type Line struct {
	F, T multi.Node
	UID  int64
	Kind EdgeKind
}

func (l Line) From() graph.Node { return l.F }
func (l Line) To() graph.Node   { return l.T }
func (l Line) ID() int64        { return l.UID }

func (l Line) ReversedLine() graph.Line {
	l.F, l.T = l.T, l.F
	return l
}

// Directed exports the graph as a gonum directed multigraph. Node IDs are
// block handles and every line is a Line.
func (g *Graph) Directed() *multi.DirectedGraph {
	dg := multi.NewDirectedGraph()
	for h := range g.seg.Blocks {
		dg.AddNode(multi.Node(h))
	}
	for i, e := range g.Edges() {
		dg.SetLine(Line{
			F:    multi.Node(e.From),
			T:    multi.Node(e.To),
			UID:  int64(i),
			Kind: e.Kind,
		})
	}
	return dg
}

// Reachable returns the blocks reachable from h, h included, in handle order.
func (g *Graph) Reachable(h Handle) []Handle {
	seen := map[Handle]bool{h: true}
	walker := traverse.DepthFirst{
		Visit: func(n graph.Node) {
			seen[Handle(n.ID())] = true
		},
	}
	walker.Walk(g.Directed(), multi.Node(h), func(graph.Node) bool { return false })

	out := make([]Handle, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// Unreachable returns the blocks that cannot be reached from h.
func (g *Graph) Unreachable(h Handle) []Handle {
	reach := g.Reachable(h)
	var out []Handle
	for b := range g.seg.Blocks {
		if _, found := slices.BinarySearch(reach, Handle(b)); !found {
			out = append(out, Handle(b))
		}
	}
	return out
}

// Loops returns the strongly connected components containing a cycle, each in
// handle order, ordered by their first block.
func (g *Graph) Loops() [][]Handle {
	dg := g.Directed()
	var loops [][]Handle
	for _, scc := range topo.TarjanSCC(dg) {
		if len(scc) == 1 && !dg.HasEdgeFromTo(scc[0].ID(), scc[0].ID()) {
			continue
		}
		hs := make([]Handle, len(scc))
		for i, n := range scc {
			hs[i] = Handle(n.ID())
		}
		slices.Sort(hs)
		loops = append(loops, hs)
	}
	slices.SortFunc(loops, func(a, b []Handle) int {
		return cmp.Compare(a[0], b[0])
	})
	return loops
}
