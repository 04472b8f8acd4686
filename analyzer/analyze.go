package analyzer

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ChainSafe/asmflow/asm"
	"github.com/ChainSafe/asmflow/cfg"
	"github.com/ChainSafe/asmflow/common"
	"github.com/ChainSafe/asmflow/fragment"
	"github.com/ChainSafe/asmflow/heatmap"
	"github.com/ChainSafe/asmflow/paths"
	"github.com/ChainSafe/asmflow/profile"
)

// Analyzer runs the analysis pipeline under one profile.
type Analyzer struct {
	profile   *profile.Profile
	logger    *slog.Logger
	withTrace bool
	checks    []Check
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithTrace attaches to each issue the chain of blocks leading to it.
func WithTrace(enabled bool) Option {
	return func(a *Analyzer) {
		a.withTrace = enabled
	}
}

// WithChecks replaces the default checks.
func WithChecks(checks ...Check) Option {
	return func(a *Analyzer) {
		a.checks = checks
	}
}

// New creates an Analyzer. A nil profile selects profile.Default.
func New(prof *profile.Profile, opts ...Option) *Analyzer {
	if prof == nil {
		prof = profile.Default()
	}
	a := &Analyzer{
		profile: prof,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		checks:  DefaultChecks(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze builds the control-flow graph of f, enumerates its paths from the
// profile entry and computes their heatmaps.
func (a *Analyzer) Analyze(ctx context.Context, name string, f *fragment.Fragment) (*Report, error) {
	start := time.Now()
	logger := a.logger.With(slog.String("fragment", name))

	opts, err := a.profile.GraphOptions()
	if err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	g, err := cfg.Build(f, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build control-flow graph: %w", err)
	}
	logger.Debug("control-flow graph built",
		slog.Int("statements", f.Len()),
		slog.Int("blocks", g.Len()),
		slog.Int("edges", len(g.Edges())))

	report := &Report{
		Name:       name,
		Profile:    a.profile,
		Statements: f.Len(),
		Blocks:     g.Blocks(),
		Edges:      g.Edges(),
		Loops:      g.Loops(),
		Exhausted:  true,
		graph:      g,
		program:    heatmap.Merge(),
	}
	if g.Len() == 0 {
		logger.Warn("empty fragment")
		return report, nil
	}

	entry, err := common.EntryFor(g, a.profile.Entry)
	if err != nil {
		return nil, err
	}
	report.Entry = entry
	report.Unreachable = g.Unreachable(entry)

	sim, err := paths.New(g, entry, paths.Options{MaxVisits: a.profile.MaxVisits()})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate paths: %w", err)
	}
	found, exhausted := sim.Collect(a.profile.MaxPaths)
	report.Exhausted = exhausted
	logger.Debug("paths enumerated", slog.Int("paths", len(found)), slog.Bool("exhausted", exhausted))

	report.Paths, err = computeHeatmaps(ctx, g, found)
	if err != nil {
		return nil, err
	}
	maps := make([]*heatmap.Heatmap, len(report.Paths))
	for i, p := range report.Paths {
		maps[i] = p.heat
	}
	report.program = heatmap.Merge(maps...)
	report.Program = programHeat(f, report.program, a.profile.MaxHeat)

	for _, check := range a.checks {
		issues := check.Inspect(report)
		logger.Debug("check done", slog.String("check", check.Name()), slog.Int("issues", len(issues)))
		report.Issues = append(report.Issues, issues...)
	}
	if a.withTrace {
		isEntry := common.EntryAt(entry)
		for _, issue := range report.Issues {
			if issue.Source != nil {
				issue.Source.Trace = common.TraceBlock(g, issue.Source.Block, isEntry)
			}
		}
	}
	sortIssues(report.Issues)

	logger.Info("analysis complete",
		slog.Int("blocks", g.Len()),
		slog.Int("paths", len(report.Paths)),
		slog.Int("issues", len(report.Issues)),
		slog.Duration("elapsed", time.Since(start)))
	return report, nil
}

// computeHeatmaps computes path heatmaps in parallel. The graph is only read.
func computeHeatmaps(ctx context.Context, g *cfg.Graph, found []paths.Path) ([]*PathResult, error) {
	results := make([]*PathResult, len(found))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range found {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			heat := heatmap.Path(g, p)
			results[i] = &PathResult{Path: p, Rows: heat.Rows(), heat: heat}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("heatmap computation interrupted: %w", err)
	}
	return results, nil
}

func programHeat(f *fragment.Fragment, prog *heatmap.Program, maxHeat int) []StatementHeat {
	indices := prog.Indices()
	out := make([]StatementHeat, 0, len(indices))
	for _, i := range indices {
		sh := StatementHeat{Index: i, Statement: f.At(i).String()}
		for r, age := range prog.Ages(i) {
			if age == heatmap.Unknown {
				continue
			}
			sh.Registers = append(sh.Registers, RegisterHeat{
				Register: asm.Register(r).String(),
				Age:      age,
				Heat:     heatmap.Heat(age, maxHeat),
			})
		}
		slices.SortStableFunc(sh.Registers, func(x, y RegisterHeat) int {
			return cmp.Compare(x.Age, y.Age)
		})
		out = append(out, sh)
	}
	return out
}

func sortIssues(issues []*Issue) {
	rank := map[IssueSeverity]int{IssueSeverityCritical: 0, IssueSeverityWarning: 1}
	slices.SortStableFunc(issues, func(x, y *Issue) int {
		if c := cmp.Compare(rank[x.Severity], rank[y.Severity]); c != 0 {
			return c
		}
		return cmp.Compare(statementOf(x), statementOf(y))
	})
}

func statementOf(issue *Issue) int {
	if issue.Source == nil {
		return -1
	}
	return issue.Source.Statement
}
