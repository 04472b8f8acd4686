package analyzer

import (
	"context"
	"strings"
	"testing"

	"github.com/ChainSafe/asmflow/cfg"
	"github.com/ChainSafe/asmflow/fragment"
	"github.com/ChainSafe/asmflow/paths"
	"github.com/ChainSafe/asmflow/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const program = `
- {role: plain, opcode: li, operands: [a0, 10], label: main}
- {role: plain, opcode: addi, operands: [a0, a0, -1], label: loop}
- {role: branch, opcode: bnez, operands: [a0], target: loop}
- {role: call, opcode: call, target: puts}
- {role: return, opcode: jr, operands: [t0]}
- {role: plain, opcode: nop, label: dead}
- {role: return, opcode: ret}
`

func load(t *testing.T, src string) *fragment.Fragment {
	t.Helper()
	f, err := fragment.Decode(strings.NewReader(src))
	require.NoError(t, err)
	return f
}

func testProfile() *profile.Profile {
	prof := profile.Default()
	prof.ReturnRule = "riscv"
	prof.ExternalCalls = true
	return prof
}

func TestAnalyze(t *testing.T) {
	report, err := New(testProfile()).Analyze(context.Background(), "program", load(t, program))
	require.NoError(t, err)

	assert.Equal(t, 7, report.Statements)
	assert.Len(t, report.Blocks, 5)
	assert.Equal(t, cfg.Handle(0), report.Entry)
	assert.Equal(t, []cfg.Handle{4}, report.Unreachable)
	assert.True(t, report.Exhausted)
	assert.Equal(t, [][]cfg.Handle{{1}}, report.Loops)

	require.Len(t, report.Paths, 3)
	assert.Equal(t, []cfg.Handle{0, 1, 1}, report.Paths[0].Blocks)
	assert.Equal(t, paths.Truncated, report.Paths[0].Status)
	assert.Equal(t, []cfg.Handle{0, 1, 1, 2, 3}, report.Paths[1].Blocks)
	assert.Equal(t, []cfg.Handle{0, 1, 2, 3}, report.Paths[2].Blocks)
	assert.Equal(t, 1, report.Truncated())
	for _, p := range report.Paths {
		require.NotNil(t, p.Heatmap())
		assert.Len(t, p.Rows, p.Heatmap().Len())
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, report.ProgramHeatmap().Indices())
	require.Len(t, report.Program, 5)
	assert.Equal(t, "main: li a0, 10", report.Program[0].Statement)
	assert.Empty(t, report.Program[0].Registers)
	// bnez reads a0, written by the addi right before it on every path
	require.NotEmpty(t, report.Program[2].Registers)
	assert.Equal(t, RegisterHeat{Register: "a0", Age: 0, Heat: profile.DefaultMaxHeat}, report.Program[2].Registers[0])

	require.Len(t, report.Issues, 4)
	assert.Equal(t, 1, report.Count(IssueSeverityCritical))
	assert.Equal(t, 3, report.Count(IssueSeverityWarning))

	indirect := report.Issues[0]
	assert.Equal(t, IssueSeverityCritical, indirect.Severity)
	assert.Equal(t, 4, indirect.Source.Statement)
	assert.Equal(t, "jr t0", indirect.Source.Text)
	assert.Nil(t, indirect.Source.Trace)

	var statements []int
	for _, issue := range report.Issues[1:] {
		statements = append(statements, issue.Source.Statement)
	}
	assert.Equal(t, []int{2, 3, 5}, statements)
	assert.Equal(t, "Loop bound reached on TAKEN_BRANCH", report.Issues[1].Message)
	assert.Equal(t, "Call to external label puts", report.Issues[2].Message)
	assert.Equal(t, "Unreachable block", report.Issues[3].Message)
	assert.Equal(t, "dead", report.Issues[3].Source.Label)
}

func TestAnalyzeWithTrace(t *testing.T) {
	report, err := New(testProfile(), WithTrace(true)).Analyze(context.Background(), "program", load(t, program))
	require.NoError(t, err)

	indirect := report.Issues[0]
	require.NotNil(t, indirect.Source.Trace)
	assert.Equal(t, []cfg.Handle{0, 1, 2, 3}, indirect.Source.Trace.Handles())

	unreachable := report.Issues[3]
	assert.Nil(t, unreachable.Source.Trace)
}

func TestAnalyzePathLimit(t *testing.T) {
	prof := testProfile()
	prof.MaxPaths = 1
	report, err := New(prof).Analyze(context.Background(), "program", load(t, program))
	require.NoError(t, err)

	assert.Len(t, report.Paths, 1)
	assert.False(t, report.Exhausted)
	var found bool
	for _, issue := range report.Issues {
		if issue.Message == "Path enumeration stopped after 1 paths" {
			found = true
			assert.Equal(t, 0, issue.Source.Statement)
		}
	}
	assert.True(t, found)
}

func TestAnalyzeEntryLabel(t *testing.T) {
	prof := testProfile()
	prof.Entry = "dead"
	report, err := New(prof).Analyze(context.Background(), "program", load(t, program))
	require.NoError(t, err)
	assert.Equal(t, cfg.Handle(4), report.Entry)
	require.Len(t, report.Paths, 1)
	assert.Equal(t, []cfg.Handle{4}, report.Paths[0].Blocks)
	assert.Equal(t, []cfg.Handle{0, 1, 2, 3}, report.Unreachable)

	prof.Entry = "nowhere"
	_, err = New(prof).Analyze(context.Background(), "program", load(t, program))
	assert.ErrorContains(t, err, "nowhere")
}

func TestAnalyzeErrors(t *testing.T) {
	_, err := New(profile.Default()).Analyze(context.Background(), "program", load(t, program))
	assert.ErrorIs(t, err, cfg.ErrUnresolvedLabel)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(testProfile()).Analyze(ctx, "program", load(t, program))
	assert.ErrorIs(t, err, context.Canceled)

	prof := testProfile()
	prof.ReturnRule = "sparc"
	_, err = New(prof).Analyze(context.Background(), "program", load(t, program))
	assert.ErrorContains(t, err, "invalid profile")
}

func TestAnalyzeEmptyFragment(t *testing.T) {
	report, err := New(nil).Analyze(context.Background(), "empty", load(t, ""))
	require.NoError(t, err)
	assert.Empty(t, report.Blocks)
	assert.Empty(t, report.Paths)
	assert.Empty(t, report.Issues)
	assert.True(t, report.Exhausted)
	assert.Empty(t, report.ProgramHeatmap().Indices())
}

func TestWithChecks(t *testing.T) {
	report, err := New(testProfile(), WithChecks(UnreachableBlocks{})).Analyze(context.Background(), "program", load(t, program))
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "Unreachable block", report.Issues[0].Message)
}

func TestImmediateRange(t *testing.T) {
	report, err := New(testProfile()).Analyze(context.Background(), "wide", load(t, `
- {role: plain, opcode: addi, operands: [sp, sp, -4096], label: main}
- {role: plain, opcode: sd, operands: [ra, 8(sp)]}
- {role: plain, opcode: lui, operands: [a0, 0x12345]}
- {role: return, opcode: ret}
`))
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, IssueSeverityWarning, issue.Severity)
	assert.Equal(t, "Immediate does not fit its encoding field", issue.Message)
	assert.Equal(t, 0, issue.Source.Statement)
	assert.Equal(t, "-4096 needs more than the 12 bits addi encodes", issue.Impact)
}
