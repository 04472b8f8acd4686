package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ChainSafe/asmflow/fragment"
	"github.com/ChainSafe/asmflow/profile"
	"github.com/urfave/cli/v2"
)

var (
	ProfileFlag = &cli.PathFlag{
		Name:     "profile",
		Usage:    "Path to the analysis profile (YAML). Default: built-in profile",
		Required: false,
	}
	FormatFlag = &cli.StringFlag{
		Name:     "format",
		Usage:    "format of the output. Options: json, text",
		Required: false,
		Value:    "text",
	}
	OutputFlag = &cli.PathFlag{
		Name:     "output",
		Usage:    "output file path for the report. Default: stdout",
		Required: false,
	}
	VerboseFlag = &cli.BoolFlag{
		Name:     "verbose",
		Usage:    "enable debug logging on stderr",
		Required: false,
		Value:    false,
	}
)

// NewLogger returns the stderr logger of the commands.
func NewLogger(ctx *cli.Context) *slog.Logger {
	level := slog.LevelWarn
	if ctx.Bool(VerboseFlag.Name) {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadProfile(ctx *cli.Context) (*profile.Profile, error) {
	path := ctx.Path(ProfileFlag.Name)
	if path == "" {
		return profile.Default(), nil
	}
	prof, err := profile.LoadProfile(path)
	if err != nil {
		return nil, fmt.Errorf("error loading profile: %w", err)
	}
	return prof, nil
}

func loadFragment(ctx *cli.Context) (string, *fragment.Fragment, error) {
	path := ctx.Args().First()
	if path == "" {
		return "", nil, fmt.Errorf("missing record file argument")
	}
	frag, err := fragment.Load(path)
	if err != nil {
		return "", nil, fmt.Errorf("error loading records: %w", err)
	}
	return path, frag, nil
}

// openOutput returns stdout for an empty path.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open output file: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}
