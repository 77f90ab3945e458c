package command

import (
	"context"

	"github.com/redmarble/samplecli/internal/options"
	"github.com/redmarble/samplecli/internal/presentation/tui"
	"github.com/redmarble/samplecli/pkg/domain"
	"github.com/spf13/cobra"
)

// Root is the top of the command tree. It owns the recursive global flags
// and has no action of its own.
type Root struct {
	cmd      *cobra.Command
	children []*Command
}

// NewRoot creates a root named name and attaches children.
func NewRoot(name, description string, children ...*Command) *Root {
	r := &Root{
		cmd: &cobra.Command{
			Use:           name,
			Short:         description,
			SilenceErrors: true,
			SilenceUsage:  true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return domain.NewParseError("Required command was not provided.")
			},
		},
	}
	r.cmd.CompletionOptions.DisableDefaultCmd = true
	options.Register(r.cmd.PersistentFlags())
	r.cmd.SetFlagErrorFunc(flagError)

	defaultHelp := r.cmd.HelpFunc()
	r.cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		tui.PrintBanner(cmd.OutOrStdout(), description)
		defaultHelp(cmd, args)
	})

	r.Add(children...)
	return r
}

// Add attaches subcommands.
func (r *Root) Add(children ...*Command) {
	for _, child := range children {
		r.children = append(r.children, child)
		r.cmd.AddCommand(child.cobra)
	}
}

// Commands returns the attached subcommands in declaration order.
func (r *Root) Commands() []*Command {
	return append([]*Command(nil), r.children...)
}

// Cobra exposes the underlying cobra command.
func (r *Root) Cobra() *cobra.Command {
	return r.cmd
}

// Execute parses args, runs the deepest matching subcommand and returns its exit code.
// Parse failures are written to the error sink and return ExitUsage without running anything.
func (r *Root) Execute(ctx context.Context, args []string, opts ...InvokeOption) int {
	return dispatch(ctx, r.cmd, args, opts...)
}

// Invoke runs args and captures both sinks.
func (r *Root) Invoke(ctx context.Context, args []string, opts ...InvokeOption) Result {
	return capture(func(opts ...InvokeOption) int { return r.Execute(ctx, args, opts...) }, opts)
}
