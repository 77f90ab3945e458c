// Package commands declares the samplecli command tree.
package commands

import (
	"context"

	"github.com/redmarble/samplecli/internal/command"
)

// Name is the executable name shown in help and used as the application name.
const Name = "samplecli"

// Description is the root command description printed in the help banner.
const Description = "Example for a basic command line tool"

// NewRoot builds the full command tree. Each call returns an independent tree.
func NewRoot() *command.Root {
	return command.NewRoot(Name, Description,
		NewGreet(),
		NewOpenAI(),
		NewJSON(),
		NewAWS(),
		NewVersion(),
	)
}

// Invoke parses args against a fresh tree, runs the matched command and returns its exit code.
func Invoke(ctx context.Context, args []string, opts ...command.InvokeOption) int {
	return NewRoot().Execute(ctx, args, opts...)
}
