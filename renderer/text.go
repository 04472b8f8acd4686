// Package renderer provides a way to render analysis reports in different formats.
package renderer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ChainSafe/asmflow/analyzer"
	"github.com/ChainSafe/asmflow/common"
)

// hotRegisters is how many registers the heat section lists per statement.
const hotRegisters = 4

// TextRenderer formats the analysis report in a structured text format.
type TextRenderer struct {
	now func() time.Time
}

// NewTextRenderer creates a new instance of TextRenderer.
func NewTextRenderer() Renderer {
	return &TextRenderer{now: time.Now}
}

// Render formats and writes the analysis report to the command line.
func (r *TextRenderer) Render(rep *analyzer.Report, output io.Writer) error {
	timestamp := r.now().UTC().Format("2006-01-02 15:04:05 UTC")

	// Group issues by message
	groupedIssues := make(map[string][]*analyzer.Issue)
	for _, issue := range rep.Issues {
		groupedIssues[issue.Message] = append(groupedIssues[issue.Message], issue)
	}

	numOfCriticalIssues := 0
	var sortedMessages = make([]string, 0, len(groupedIssues))
	for msg, val := range groupedIssues {
		if val[0].Severity == analyzer.IssueSeverityCritical {
			numOfCriticalIssues++
		}
		sortedMessages = append(sortedMessages, msg)
	}
	// critical issues first, then by message for consistent output
	sort.Slice(sortedMessages, func(i, j int) bool {
		ci := groupedIssues[sortedMessages[i]][0].Severity == analyzer.IssueSeverityCritical
		cj := groupedIssues[sortedMessages[j]][0].Severity == analyzer.IssueSeverityCritical
		if ci != cj {
			return ci
		}
		return sortedMessages[i] < sortedMessages[j]
	})

	var report strings.Builder

	// Header Section
	report.WriteString("==============================\n")
	report.WriteString("🔍 Control Flow and Register Heat Report\n")
	report.WriteString("==============================\n\n")
	if rep.Profile != nil {
		report.WriteString(fmt.Sprintf("🗂 Profile: %s\n", rep.Profile.Name))
		report.WriteString(fmt.Sprintf("🛠 Arch: %s\n", rep.Profile.Arch))
	}
	if rep.Name != "" {
		report.WriteString(fmt.Sprintf("📄 Fragment: %s\n", rep.Name))
	}
	report.WriteString(fmt.Sprintf("📅 Timestamp: %s\n\n", timestamp))
	report.WriteString(fmt.Sprintf("🔢 Statements: %d\n", rep.Statements))
	report.WriteString(fmt.Sprintf("🧱 Blocks: %d (%d unreachable)\n", len(rep.Blocks), len(rep.Unreachable)))
	report.WriteString(fmt.Sprintf("🔀 Edges: %d\n", len(rep.Edges)))
	report.WriteString(fmt.Sprintf("🔁 Loops: %d\n", len(rep.Loops)))
	pathLine := fmt.Sprintf("🛤 Paths: %d (%d truncated)", len(rep.Paths), rep.Truncated())
	if !rep.Exhausted {
		pathLine += ", enumeration capped"
	}
	report.WriteString(pathLine + "\n\n")

	report.WriteString("------------------------------\n")
	report.WriteString("🚨 Summary of Issues\n")
	report.WriteString("------------------------------\n")
	report.WriteString(fmt.Sprintf(" ❗ Critical Issues: %d\n", numOfCriticalIssues))
	report.WriteString(fmt.Sprintf("⚠️ Warnings: %d\n", len(groupedIssues)-numOfCriticalIssues))
	report.WriteString(fmt.Sprintf("ℹ️ Total Issues: %d\n\n", len(groupedIssues)))

	// Issues Section
	if len(sortedMessages) > 0 {
		report.WriteString("------------------------------\n")
		report.WriteString("📌 Detailed Issues\n")
		report.WriteString("------------------------------\n\n")
	}
	for n, msg := range sortedMessages {
		groupedIssue := groupedIssues[msg]
		report.WriteString(fmt.Sprintf("%d. [%s] %s\n", n+1, groupedIssue[0].Severity, msg))
		if len(groupedIssue[0].Impact) > 0 {
			report.WriteString(fmt.Sprintf("   - Impact: %s\n", groupedIssue[0].Impact))
		}
		report.WriteString("   - Sources:\n")
		for _, issue := range groupedIssue {
			report.WriteString(buildSource(output, issue.Source))
		}
		report.WriteString("\n")
	}

	// Heat Section
	if len(rep.Program) > 0 {
		report.WriteString("------------------------------\n")
		report.WriteString("🔥 Register Heat\n")
		report.WriteString("------------------------------\n")
		for _, sh := range rep.Program {
			regs := make([]string, 0, hotRegisters)
			for i, rh := range sh.Registers {
				if i == hotRegisters {
					break
				}
				regs = append(regs, fmt.Sprintf("%s:%d", rh.Register, rh.Heat))
			}
			report.WriteString(fmt.Sprintf("%5d  %-32s %s\n", sh.Index, sh.Statement, strings.Join(regs, " ")))
		}
		report.WriteString("\n")
	}

	report.WriteString("🔚 End of Report\n")

	// Print the complete report at once
	_, err := output.Write([]byte(report.String()))
	return err
}

func buildSource(output io.Writer, source *analyzer.IssueSource) string {
	if source == nil {
		return "       -> (unknown)\n"
	}
	location := fmt.Sprintf("#%d B%d", source.Statement, source.Block)
	if source.Label != "" {
		location += " <" + source.Label + ">"
	}
	if output == os.Stdout {
		location = "\033[94m" + location + "\033[0m"
	}
	str := fmt.Sprintf("       -> %s : %s\n", location, source.Text)
	if source.Trace != nil {
		str += fmt.Sprintf("          via %s\n", buildTrace(source.Trace))
	}
	return str
}

// buildTrace prints a trace from the entry block towards the traced block.
func buildTrace(trace *common.Trace) string {
	var links []string
	for l := trace; l != nil; l = l.Pred {
		name := fmt.Sprintf("B%d", l.Block)
		if l.Label != "" {
			name += "<" + l.Label + ">"
		}
		if l.Via != 0 {
			name += " -" + l.Via.String() + "->"
		}
		links = append([]string{name}, links...)
	}
	return strings.Join(links, " ")
}

// Format returns the format type.
func (r *TextRenderer) Format() string {
	return "text"
}
