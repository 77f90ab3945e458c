package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/redmarble/samplecli/internal/config"
	"github.com/redmarble/samplecli/internal/invocation"
	"github.com/redmarble/samplecli/internal/options"
	"github.com/redmarble/samplecli/pkg/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type invokeSettings struct {
	out            io.Writer
	err            io.Writer
	invocationOpts []invocation.Option
}

// InvokeOption configures a single dispatch.
type InvokeOption func(*invokeSettings)

// WithOutput redirects the output sink. Defaults to Stdout.
func WithOutput(w io.Writer) InvokeOption {
	return func(s *invokeSettings) {
		if w != nil {
			s.out = w
		}
	}
}

// WithError redirects the error sink. Defaults to Stderr.
func WithError(w io.Writer) InvokeOption {
	return func(s *invokeSettings) {
		if w != nil {
			s.err = w
		}
	}
}

// WithContentRoot reads configuration files from dir instead of the working directory.
func WithContentRoot(dir string) InvokeOption {
	return func(s *invokeSettings) {
		s.invocationOpts = append(s.invocationOpts, invocation.WithContentRoot(dir))
	}
}

// WithConfigOptions forwards options to the configuration loader.
func WithConfigOptions(opts ...config.Option) InvokeOption {
	return func(s *invokeSettings) {
		s.invocationOpts = append(s.invocationOpts, invocation.WithConfigOptions(opts...))
	}
}

// runState travels through the cobra context to the matched command.
type runState struct {
	invocationOpts []invocation.Option
	exitCode       int
}

type stateKey struct{}

func stateFrom(ctx context.Context) *runState {
	if s, ok := ctx.Value(stateKey{}).(*runState); ok {
		return s
	}
	return &runState{}
}

// dispatch parses args against top, runs the matched command and reports errors.
func dispatch(ctx context.Context, top *cobra.Command, args []string, opts ...InvokeOption) int {
	s := &invokeSettings{out: os.Stdout, err: os.Stderr}
	for _, opt := range opts {
		opt(s)
	}

	state := &runState{invocationOpts: s.invocationOpts, exitCode: ExitSuccess}
	ctx = context.WithValue(ctx, stateKey{}, state)

	prepare(top, ctx)
	top.SetArgs(options.NormalizeArgs(args, valueFlags(top)...))
	top.SetOut(s.out)
	top.SetErr(s.err)

	matched, err := top.ExecuteContextC(ctx)
	if err != nil {
		code := report(s.err, matched, err)
		if code == ExitFailure && state.exitCode > ExitFailure {
			return state.exitCode
		}
		return code
	}
	return state.exitCode
}

// prepare resets flags and contexts left over from an earlier dispatch of the same tree.
func prepare(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	reset := func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		prepare(child, ctx)
	}
}

// valueFlags lists the flags of the tree rooted at cmd that take a separate value token.
func valueFlags(cmd *cobra.Command) []string {
	var names []string
	collect := func(f *pflag.Flag) {
		if f.NoOptDefVal != "" {
			return
		}
		names = append(names, "--"+f.Name)
		if f.Shorthand != "" {
			names = append(names, "-"+f.Shorthand)
		}
	}
	cmd.Flags().VisitAll(collect)
	cmd.PersistentFlags().VisitAll(collect)
	for _, child := range cmd.Commands() {
		names = append(names, valueFlags(child)...)
	}
	return names
}

// report writes err to w and maps it to an exit code.
func report(w io.Writer, cmd *cobra.Command, err error) int {
	var (
		ce *domain.ConfigurationError
		ae *domain.ActionError
	)
	if errors.As(err, &ce) || errors.As(err, &ae) {
		fmt.Fprintf(w, "Error: %v\n", err)
		if debugEnabled(cmd) {
			for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
				fmt.Fprintf(w, "  caused by %T: %v\n", cause, cause)
			}
		}
		return ExitFailure
	}

	fmt.Fprintln(w, err.Error())
	if cmd != nil {
		fmt.Fprintf(w, "Run '%s --help' for usage.\n", cmd.CommandPath())
	}
	return ExitUsage
}

func debugEnabled(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	debug, err := cmd.Flags().GetBool(options.Debug)
	return err == nil && debug
}

// flagError turns pflag failures into parse errors.
func flagError(_ *cobra.Command, err error) error {
	return &domain.ParseError{Err: err}
}
