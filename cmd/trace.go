package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/ChainSafe/asmflow/cfg"
	"github.com/ChainSafe/asmflow/common"
	"github.com/urfave/cli/v2"
)

var LabelFlag = &cli.StringFlag{
	Name:     "label",
	Usage:    "Label of the block to trace back to an entry block",
	Required: true,
}

func CreateTraceCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "trace",
		Usage:       "Prints a chain of blocks leading from an entry block to a label",
		Description: "Prints a chain of blocks leading from the profile entry (or the first block) to a label",
		ArgsUsage:   "<records.yaml>",
		Action:      action,
		Flags: []cli.Flag{
			ProfileFlag,
			LabelFlag,
		},
	}
}

var TraceCommand = CreateTraceCommand(TraceLabel)

func TraceLabel(ctx *cli.Context) error {
	prof, err := loadProfile(ctx)
	if err != nil {
		return err
	}
	_, frag, err := loadFragment(ctx)
	if err != nil {
		return err
	}
	opts, err := prof.GraphOptions()
	if err != nil {
		return err
	}
	g, err := cfg.Build(frag, opts)
	if err != nil {
		return err
	}

	entry, err := common.EntryFor(g, prof.Entry)
	if err != nil {
		return err
	}
	trace, err := common.TraceToEntry(g, ctx.String(LabelFlag.Name), common.EntryAt(entry))
	if err != nil {
		return err
	}
	return printTrace(ctx.App.Writer, g, trace)
}

func printTrace(w io.Writer, g *cfg.Graph, trace *common.Trace) error {
	var lines []string
	for l := trace; l != nil; l = l.Pred {
		b := g.Block(l.Block)
		line := fmt.Sprintf("-> B%d [%d,%d) : %s", l.Block, b.Start, b.End, b.Fragment().At(l.Statement))
		if l.Via != 0 {
			line += fmt.Sprintf(" (%s)", l.Via)
		}
		lines = append([]string{line}, lines...)
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
