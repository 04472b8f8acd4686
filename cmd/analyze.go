// Package cmd defines all the commands for the cli
package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/ChainSafe/asmflow/analyzer"
	"github.com/ChainSafe/asmflow/renderer"
	"github.com/urfave/cli/v2"
)

var TraceFlag = &cli.BoolFlag{
	Name:     "with-trace",
	Usage:    "attach to each issue the chain of blocks leading to it",
	Required: false,
	Value:    false,
}

func CreateAnalyzeCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "analyze",
		Usage:       "Builds the control-flow graph of a record file and reports register heat and issues",
		Description: "Builds the control-flow graph of a record file and reports register heat and issues",
		ArgsUsage:   "<records.yaml>",
		Action:      action,
		Flags: []cli.Flag{
			ProfileFlag,
			FormatFlag,
			OutputFlag,
			TraceFlag,
		},
	}
}

var AnalyzeCommand = CreateAnalyzeCommand(AnalyzeFragment)

func AnalyzeFragment(ctx *cli.Context) error {
	prof, err := loadProfile(ctx)
	if err != nil {
		return err
	}
	path, frag, err := loadFragment(ctx)
	if err != nil {
		return err
	}

	a := analyzer.New(prof,
		analyzer.WithLogger(NewLogger(ctx)),
		analyzer.WithTrace(ctx.Bool(TraceFlag.Name)),
	)
	report, err := a.Analyze(ctx.Context, filepath.Base(path), frag)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if err := writeReport(report, ctx.String(FormatFlag.Name), ctx.Path(OutputFlag.Name)); err != nil {
		return fmt.Errorf("unable to write report: %w", err)
	}
	return nil
}

// writeReport outputs the results in the specified format.
func writeReport(report *analyzer.Report, format, outputPath string) error {
	var rendererInstance renderer.Renderer
	switch format {
	case "", "text":
		rendererInstance = renderer.NewTextRenderer()
	case "json":
		rendererInstance = renderer.NewJSONRenderer(outputPath != "")
	default:
		return fmt.Errorf("invalid format: %s", format)
	}

	output, closeOutput, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOutput()
	return rendererInstance.Render(report, output)
}
