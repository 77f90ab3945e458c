package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/redmarble/samplecli/internal/config"
	"github.com/redmarble/samplecli/internal/invocation"
	"github.com/redmarble/samplecli/internal/jsonx"
	"github.com/redmarble/samplecli/internal/options"
	"github.com/redmarble/samplecli/pkg/domain"
	"github.com/redmarble/samplecli/pkg/registry"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Exit codes returned by Execute.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ActionFunc is the body of a command. The returned code becomes the process exit code.
type ActionFunc[D any] func(ctx context.Context, inv *Invocation[D]) (int, error)

// Spec declares a command: its arguments, configuration steps,
// dependency resolution and action.
type Spec[D any] struct {
	Name    string
	Short   string
	Long    string
	Example string

	Arguments []options.Argument
	// Flags declares command-specific flags.
	Flags func(fs *pflag.FlagSet)
	// Configure runs in stage order before dependencies are resolved.
	Configure []Step
	// Resolve builds the action's dependencies once the registry is frozen.
	Resolve func(p *registry.Provider) (D, error)
	Action  ActionFunc[D]
}

// Invocation is everything an action receives for one run.
type Invocation[D any] struct {
	ID       string
	Parse    *ParseResult
	Flags    options.Flags
	Deps     D
	Services *registry.Provider
	Config   *config.Config
	Env      config.Environment
	Logger   *slog.Logger
	Out      io.Writer
	Err      io.Writer
}

// JSONOptions returns serialization options matching the --pretty flag.
func (inv *Invocation[D]) JSONOptions() jsonx.Options {
	return jsonx.Options{Indent: inv.Flags.PrettyPrint}
}

// WriteJSON writes v to the output sink, indented when --pretty is set.
func (inv *Invocation[D]) WriteJSON(v any) error {
	return jsonx.Write(inv.Out, v, inv.JSONOptions())
}

// Command is a node of the command tree bound to exactly one action.
type Command struct {
	cobra   *cobra.Command
	parsed  *ParseResult
	execute func(ctx context.Context, ic *invocation.Context, pr *ParseResult) (int, error)
}

// New builds a Command from spec. The global flags are registered on the
// command itself so it can also be invoked on its own.
func New[D any](spec Spec[D]) *Command {
	c := &Command{}
	c.cobra = &cobra.Command{
		Use:           use(spec.Name, spec.Arguments),
		Short:         spec.Short,
		Long:          spec.Long,
		Example:       spec.Example,
		Args:          c.parseArgs(spec.Arguments),
		RunE:          c.run,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	options.Register(c.cobra.PersistentFlags())
	if spec.Flags != nil {
		spec.Flags(c.cobra.Flags())
	}
	c.cobra.SetFlagErrorFunc(flagError)
	c.execute = lifecycle(spec)
	return c
}

func use(name string, args []options.Argument) string {
	parts := []string{name}
	for _, a := range args {
		parts = append(parts, "<"+a.Name+">")
	}
	return strings.Join(parts, " ")
}

// Name returns the command name.
func (c *Command) Name() string {
	return c.cobra.Name()
}

// Cobra exposes the underlying cobra command.
func (c *Command) Cobra() *cobra.Command {
	return c.cobra
}

func (c *Command) parseArgs(args []options.Argument) cobra.PositionalArgs {
	return func(cmd *cobra.Command, tokens []string) error {
		values, err := parseArguments(cmd.Name(), args, tokens)
		if err != nil {
			return err
		}
		c.parsed = &ParseResult{
			CommandPath: cmd.CommandPath(),
			Tokens:      append([]string(nil), tokens...),
			values:      values,
		}
		return nil
	}
}

// run builds the invocation context, drives the lifecycle and always closes the context.
func (c *Command) run(cmd *cobra.Command, _ []string) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	state := stateFrom(ctx)

	flags, err := options.Read(cmd.Flags())
	if err != nil {
		return &domain.ParseError{Err: err}
	}
	pr := c.parsed
	if pr == nil {
		pr = &ParseResult{CommandPath: cmd.CommandPath(), values: map[string]any{}}
	}
	pr.Flags = flags
	pr.flags = cmd.Flags()

	opts := []invocation.Option{
		invocation.WithApplicationName(cmd.Root().Name()),
		invocation.WithOutput(cmd.OutOrStdout()),
		invocation.WithError(cmd.ErrOrStderr()),
		invocation.WithDebug(flags.Debug),
	}
	ic, err := invocation.New(flags.Environment, append(opts, state.invocationOpts...)...)
	if errors.Is(err, config.ErrInvalidEnvironment) {
		return &domain.ParseError{Err: err}
	}
	if err != nil {
		return domain.NewConfigurationError(err, "build invocation context")
	}
	defer func() {
		cerr := ic.Close(context.WithoutCancel(ctx))
		if cerr != nil && err == nil {
			err = &domain.ActionError{Command: cmd.Name(), Err: fmt.Errorf("dispose services: %w", cerr)}
		}
	}()

	code, err := c.execute(ctx, ic, pr)
	state.exitCode = code
	return err
}

// lifecycle returns the Configuring → Flags-Resolved → Executing sequence for spec.
func lifecycle[D any](spec Spec[D]) func(context.Context, *invocation.Context, *ParseResult) (int, error) {
	return func(ctx context.Context, ic *invocation.Context, pr *ParseResult) (int, error) {
		for _, step := range ordered(spec.Configure) {
			if err := step.run(ic.Services, ic.Config, ic.Env); err != nil {
				if domain.IsConfigurationError(err) {
					return ExitFailure, err
				}
				return ExitFailure, domain.NewConfigurationError(err, "configure %s (%s)", step.Name, step.Stage)
			}
		}

		provider := ic.Provider()
		logger := ic.Logger(spec.Name)
		logger.Debug("Configuration loaded", "sources", ic.Config.Sources(), "settings", ic.Config.Redacted())

		var deps D
		if spec.Resolve != nil {
			d, err := spec.Resolve(provider)
			if err != nil {
				return ExitFailure, domain.NewConfigurationError(err, "resolve %s dependencies", spec.Name)
			}
			deps = d
		}

		inv := &Invocation[D]{
			ID:       ic.ID,
			Parse:    pr,
			Flags:    pr.Flags,
			Deps:     deps,
			Services: provider,
			Config:   ic.Config,
			Env:      ic.Env,
			Logger:   logger,
			Out:      ic.Out,
			Err:      ic.Err,
		}

		logger.Debug("Invoking command", "command", pr.CommandPath, "environment", ic.Env.Name, "dry_run", pr.Flags.DryRun)
		if spec.Action == nil {
			return ExitFailure, &domain.ActionError{Command: spec.Name, Err: fmt.Errorf("no action bound")}
		}
		code, err := spec.Action(ctx, inv)
		if err != nil {
			if domain.IsConfigurationError(err) {
				return ExitFailure, err
			}
			if code == ExitSuccess {
				code = ExitFailure
			}
			return code, &domain.ActionError{Command: spec.Name, Err: err}
		}
		logger.Debug("Command completed", "command", pr.CommandPath, "exit_code", code)
		return code, nil
	}
}

// Execute parses args against this command and runs it, returning the exit code.
// A command attached to a Root is dispatched through the root.
func (c *Command) Execute(ctx context.Context, args []string, opts ...InvokeOption) int {
	if c.cobra.HasParent() {
		return dispatch(ctx, c.cobra.Root(), append([]string{c.cobra.Name()}, args...), opts...)
	}
	return dispatch(ctx, c.cobra, args, opts...)
}

// Result is the outcome of an invocation with captured output.
type Result struct {
	// Code is the exit code.
	Code int
	// Output is the text written to the output sink.
	Output string
	// Error is the text written to the error sink.
	Error string
}

// Invoke runs the command and captures both sinks. Mainly for tests.
func (c *Command) Invoke(ctx context.Context, args []string, opts ...InvokeOption) Result {
	return capture(func(opts ...InvokeOption) int { return c.Execute(ctx, args, opts...) }, opts)
}

func capture(run func(...InvokeOption) int, opts []InvokeOption) Result {
	var out, errOut bytes.Buffer
	code := run(append(opts, WithOutput(&out), WithError(&errOut))...)
	return Result{Code: code, Output: out.String(), Error: errOut.String()}
}
