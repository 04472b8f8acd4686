package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ChainSafe/asmflow/analyzer"
	"github.com/ChainSafe/asmflow/asm"
	"github.com/ChainSafe/asmflow/heatmap"
	"github.com/urfave/cli/v2"
)

var HeatmapFlag = &cli.BoolFlag{
	Name:     "heatmap",
	Usage:    "print the register ages before every statement of each path",
	Required: false,
	Value:    false,
}

func CreatePathsCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "paths",
		Usage:       "Enumerates the bounded execution paths of a record file",
		Description: "Enumerates the bounded execution paths of a record file from the profile entry",
		ArgsUsage:   "<records.yaml>",
		Action:      action,
		Flags: []cli.Flag{
			ProfileFlag,
			HeatmapFlag,
		},
	}
}

var PathsCommand = CreatePathsCommand(ListPaths)

func ListPaths(ctx *cli.Context) error {
	prof, err := loadProfile(ctx)
	if err != nil {
		return err
	}
	path, frag, err := loadFragment(ctx)
	if err != nil {
		return err
	}
	a := analyzer.New(prof, analyzer.WithLogger(NewLogger(ctx)), analyzer.WithChecks())
	report, err := a.Analyze(ctx.Context, filepath.Base(path), frag)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	return printPaths(ctx.App.Writer, report, ctx.Bool(HeatmapFlag.Name))
}

func printPaths(w io.Writer, report *analyzer.Report, withHeat bool) error {
	var out strings.Builder
	for n, p := range report.Paths {
		blocks := make([]string, len(p.Blocks))
		for i, h := range p.Blocks {
			blocks[i] = fmt.Sprintf("B%d", h)
		}
		out.WriteString(fmt.Sprintf("%d. %s %s", n+1, p.Status, strings.Join(blocks, " -> ")))
		if p.Cut != nil {
			out.WriteString(fmt.Sprintf(" (cut at %s)", p.Cut))
		}
		out.WriteString("\n")
		if !withHeat {
			continue
		}
		frag := report.Graph().Fragment()
		for _, row := range p.Rows {
			var ages []string
			for r, age := range row.Ages {
				if age != heatmap.Unknown {
					ages = append(ages, fmt.Sprintf("%s=%d", asm.Register(r), age))
				}
			}
			out.WriteString(fmt.Sprintf("   %3d  %-32s %s\n", row.Index, frag.At(row.Index), strings.Join(ages, " ")))
		}
	}
	if !report.Exhausted {
		out.WriteString(fmt.Sprintf("enumeration stopped after %d paths\n", len(report.Paths)))
	}
	_, err := io.WriteString(w, out.String())
	return err
}
