package main

import (
	"context"
	"os"

	"github.com/redmarble/samplecli/internal/cli"
	"github.com/redmarble/samplecli/internal/commands"
)

func main() {
	ctx := cli.NewSignalContext(context.Background())
	code := commands.Invoke(ctx, os.Args[1:])
	ctx.Stop()
	if code != 0 {
		code = ctx.ExitCode(code)
	}
	os.Exit(code)
}
