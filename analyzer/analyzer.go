// Package analyzer runs the control-flow and register heat analysis of a
// fragment and reports what limits its precision.
package analyzer

import (
	"github.com/ChainSafe/asmflow/cfg"
	"github.com/ChainSafe/asmflow/common"
	"github.com/ChainSafe/asmflow/heatmap"
	"github.com/ChainSafe/asmflow/paths"
	"github.com/ChainSafe/asmflow/profile"
)

// IssueSeverity represents the severity level of an issue.
type IssueSeverity string

const (
	IssueSeverityCritical IssueSeverity = "CRITICAL"
	IssueSeverityWarning  IssueSeverity = "WARNING"
)

// Issue represents a single issue found by the analyzer.
type Issue struct {
	Source   *IssueSource  `json:"source"`
	Message  string        `json:"message"` // A description of the issue.
	Impact   string        `json:"impact,omitempty"`
	Severity IssueSeverity `json:"severity"`
}

// IssueSource represents the block where the issue originates.
type IssueSource struct {
	Block     cfg.Handle    `json:"block"`
	Label     string        `json:"label,omitempty"`
	Statement int           `json:"statement"` // fragment index of the statement
	Text      string        `json:"text"`
	Trace     *common.Trace `json:"trace,omitempty"` // chain of blocks leading here from an entry
}

// Check inspects a finished report and returns the issues it finds.
type Check interface {
	Name() string
	Inspect(r *Report) []*Issue
}

// PathResult is an enumerated path with its heatmap.
type PathResult struct {
	paths.Path
	Rows []heatmap.Row `json:"heatmap,omitempty"`

	heat *heatmap.Heatmap
}

// Heatmap returns the heatmap of the path.
func (p *PathResult) Heatmap() *heatmap.Heatmap {
	return p.heat
}

// RegisterHeat is the mean age of one register before a statement.
type RegisterHeat struct {
	Register string `json:"register"`
	Age      int    `json:"age"`
	Heat     int    `json:"heat"`
}

// StatementHeat lists the known registers before a statement, hottest first.
type StatementHeat struct {
	Index     int            `json:"index"`
	Statement string         `json:"statement"`
	Registers []RegisterHeat `json:"registers"`
}

// Report is the outcome of one analysis run.
type Report struct {
	Name        string           `json:"name,omitempty"`
	Profile     *profile.Profile `json:"profile"`
	Statements  int              `json:"statements"`
	Entry       cfg.Handle       `json:"entry"`
	Blocks      []cfg.Block      `json:"blocks"`
	Edges       []cfg.Edge       `json:"edges"`
	Paths       []*PathResult    `json:"paths"`
	Exhausted   bool             `json:"exhausted"` // every path was enumerated
	Program     []StatementHeat  `json:"program"`
	Unreachable []cfg.Handle     `json:"unreachable,omitempty"`
	Loops       [][]cfg.Handle   `json:"loops,omitempty"`
	Issues      []*Issue         `json:"issues"`

	graph   *cfg.Graph
	program *heatmap.Program
}

// Graph returns the control-flow graph the report was computed on.
func (r *Report) Graph() *cfg.Graph {
	return r.graph
}

// ProgramHeatmap returns the heatmap merged over every path.
func (r *Report) ProgramHeatmap() *heatmap.Program {
	return r.program
}

// Count returns the number of issues with the given severity.
func (r *Report) Count(severity IssueSeverity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

// Truncated returns the number of paths cut by the loop bound.
func (r *Report) Truncated() int {
	n := 0
	for _, p := range r.Paths {
		if p.Status == paths.Truncated {
			n++
		}
	}
	return n
}
