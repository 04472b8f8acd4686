package analyzer

import (
	"fmt"

	"github.com/ChainSafe/asmflow/cfg"
	"github.com/ChainSafe/asmflow/paths"
)

// DefaultChecks returns every built-in check.
func DefaultChecks() []Check {
	return []Check{
		IndirectJumps{},
		UnreachableBlocks{},
		TruncatedPaths{},
		ExternalCalls{},
		PathLimit{},
		ImmediateRange{},
	}
}

// source describes the statement at index i of block h.
func source(g *cfg.Graph, h cfg.Handle, i int) *IssueSource {
	b := g.Block(h)
	return &IssueSource{
		Block:     h,
		Label:     b.Label(),
		Statement: i,
		Text:      g.Fragment().At(i).String(),
	}
}

// IndirectJumps reports register-indirect jumps the return rule did not
// accept: their targets are unknown and no edge leaves them.
type IndirectJumps struct{}

func (IndirectJumps) Name() string { return "indirect-jumps" }

func (IndirectJumps) Inspect(r *Report) []*Issue {
	g := r.Graph()
	var issues []*Issue
	for _, h := range g.Indirect() {
		b := g.Block(h)
		issues = append(issues, &Issue{
			Severity: IssueSeverityCritical,
			Source:   source(g, h, b.End-1),
			Message:  "Indirect jump with unknown targets",
			Impact:   "paths and heatmaps stop at this statement",
		})
	}
	return issues
}

// UnreachableBlocks reports blocks no path from the entry can visit.
type UnreachableBlocks struct{}

func (UnreachableBlocks) Name() string { return "unreachable-blocks" }

func (UnreachableBlocks) Inspect(r *Report) []*Issue {
	g := r.Graph()
	issues := make([]*Issue, 0, len(r.Unreachable))
	for _, h := range r.Unreachable {
		issues = append(issues, &Issue{
			Severity: IssueSeverityWarning,
			Source:   source(g, h, g.Block(h).Start),
			Message:  "Unreachable block",
			Impact:   "no heatmap is computed for its statements",
		})
	}
	return issues
}

// TruncatedPaths reports each edge at which the loop bound cut a path.
type TruncatedPaths struct{}

func (TruncatedPaths) Name() string { return "truncated-paths" }

func (TruncatedPaths) Inspect(r *Report) []*Issue {
	g := r.Graph()
	cuts := make(map[cfg.Edge]int)
	var order []cfg.Edge
	for _, p := range r.Paths {
		if p.Status != paths.Truncated || p.Cut == nil {
			continue
		}
		if cuts[*p.Cut] == 0 {
			order = append(order, *p.Cut)
		}
		cuts[*p.Cut]++
	}
	issues := make([]*Issue, 0, len(order))
	for _, e := range order {
		issues = append(issues, &Issue{
			Severity: IssueSeverityWarning,
			Source:   source(g, e.From, g.Block(e.From).End-1),
			Message:  fmt.Sprintf("Loop bound reached on %s", e.Kind),
			Impact:   fmt.Sprintf("%d path(s) truncated before B%d, ages past the cut are not known", cuts[e], e.To),
		})
	}
	return issues
}

// ExternalCalls reports calls to labels outside of the fragment.
type ExternalCalls struct{}

func (ExternalCalls) Name() string { return "external-calls" }

func (ExternalCalls) Inspect(r *Report) []*Issue {
	g := r.Graph()
	var issues []*Issue
	for _, h := range g.External() {
		exit := g.Block(h).Exit()
		issues = append(issues, &Issue{
			Severity: IssueSeverityWarning,
			Source:   source(g, h, g.Block(h).End-1),
			Message:  fmt.Sprintf("Call to external label %s", exit.Target()),
			Impact:   "the callee is assumed to return without touching registers",
		})
	}
	return issues
}

// PathLimit reports an enumeration stopped by max_paths.
type PathLimit struct{}

func (PathLimit) Name() string { return "path-limit" }

func (PathLimit) Inspect(r *Report) []*Issue {
	if r.Exhausted {
		return nil
	}
	g := r.Graph()
	return []*Issue{{
		Severity: IssueSeverityWarning,
		Source:   source(g, r.Entry, g.Block(r.Entry).Start),
		Message:  fmt.Sprintf("Path enumeration stopped after %d paths", len(r.Paths)),
		Impact:   "the program heatmap only merges the enumerated paths",
	}}
}

// ImmediateRange reports immediates and offsets wider than the field of
// their instruction format.
type ImmediateRange struct{}

func (ImmediateRange) Name() string { return "immediate-range" }

func (ImmediateRange) Inspect(r *Report) []*Issue {
	g := r.Graph()
	var issues []*Issue
	for _, b := range g.Blocks() {
		for i, s := range b.Statements() {
			for _, op := range s.Operands() {
				if op.Fits() {
					continue
				}
				issues = append(issues, &Issue{
					Severity: IssueSeverityWarning,
					Source:   source(g, b.Handle, b.Start+i),
					Message:  "Immediate does not fit its encoding field",
					Impact:   fmt.Sprintf("%s needs more than the %d bits %s encodes", op, op.Width, s.Opcode()),
				})
			}
		}
	}
	return issues
}
