package main

import (
	"context"
	"log"
	"os"

	"github.com/ChainSafe/asmflow/cmd"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = os.Args[0]
	app.Usage = "Assembly control-flow and register heat analyzer"
	app.Description = "Builds control-flow graphs from assembler statement records, enumerates bounded paths and reports register heatmaps"
	app.Flags = []cli.Flag{
		cmd.VerboseFlag,
	}
	app.Commands = []*cli.Command{
		cmd.AnalyzeCommand,
		cmd.PathsCommand,
		cmd.TraceCommand,
	}
	err := app.RunContext(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
