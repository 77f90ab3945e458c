package commands

import (
	"context"
	"fmt"
	"runtime"

	"github.com/redmarble/samplecli"
	"github.com/redmarble/samplecli/internal/command"
)

type buildInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// NewVersion returns the version command.
func NewVersion() *command.Command {
	return command.New(command.Spec[struct{}]{
		Name:  "version",
		Short: "Print the version number of samplecli",
		Action: func(ctx context.Context, inv *command.Invocation[struct{}]) (int, error) {
			if !inv.Flags.PrettyPrint {
				fmt.Fprintf(inv.Out, "%s version %s\n", Name, samplecli.Version)
				return command.ExitSuccess, nil
			}
			return command.ExitSuccess, inv.WriteJSON(buildInfo{
				Name:      Name,
				Version:   samplecli.Version,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			})
		},
	})
}
