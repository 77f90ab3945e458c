package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/redmarble/samplecli/internal/command"
	"github.com/redmarble/samplecli/internal/jsonx"
	"github.com/redmarble/samplecli/internal/options"
	"github.com/spf13/pflag"
)

// Output formats accepted by the json command.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const formatFlag = "format"

// formatValue accepts json or yaml, in any case.
type formatValue string

func (f *formatValue) String() string { return string(*f) }

func (f *formatValue) Type() string { return "format" }

func (f *formatValue) Set(s string) error {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case FormatJSON, FormatYAML:
		*f = formatValue(v)
		return nil
	default:
		return fmt.Errorf("Format must be '%s' or '%s'.", FormatJSON, FormatYAML)
	}
}

// NewJSON returns the json command, which echoes a validated JSON body.
func NewJSON() *command.Command {
	return command.New(command.Spec[struct{}]{
		Name:      "json",
		Short:     "Reads JSON input and echoes it back.",
		Example:   `  samplecli json '{"name":"John"}' --pretty --format yaml`,
		Arguments: []options.Argument{options.Body},
		Flags: func(fs *pflag.FlagSet) {
			v := formatValue(FormatJSON)
			fs.Var(&v, formatFlag, "Output format: json or yaml.")
		},
		Action: runJSON,
	})
}

func runJSON(ctx context.Context, inv *command.Invocation[struct{}]) (int, error) {
	if inv.Flags.Debug {
		inv.Logger.Info("Debug mode is enabled.")
	}

	doc, err := command.Arg[jsonx.Document](inv.Parse, options.Body.Name)
	if err != nil {
		return command.ExitFailure, err
	}

	format := FormatJSON
	if v, ok := inv.Parse.Flag(formatFlag); ok {
		format = v.String()
	}

	var text string
	switch {
	case format == FormatYAML:
		text, err = doc.YAML()
		text = strings.TrimRight(text, "\n")
	case inv.Flags.PrettyPrint:
		text, err = doc.Format(inv.JSONOptions())
	default:
		text = doc.String()
	}
	if err != nil {
		return command.ExitFailure, err
	}

	fmt.Fprintln(inv.Out, "Received JSON input:")
	fmt.Fprintln(inv.Out, text)
	return command.ExitSuccess, nil
}
