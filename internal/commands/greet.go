package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redmarble/samplecli/internal/command"
	"github.com/redmarble/samplecli/internal/config"
	"github.com/redmarble/samplecli/internal/logging"
	"github.com/redmarble/samplecli/internal/options"
	"github.com/redmarble/samplecli/pkg/registry"
)

const (
	greetDelayKey     = "Greet:Delay"
	defaultGreetDelay = time.Second
	httpClientTimeout = 30 * time.Second
)

type greetDeps struct {
	Provider *registry.Provider
	HTTP     *http.Client
	Env      config.Environment
}

// NewGreet returns the greet command.
func NewGreet() *command.Command {
	return command.New(command.Spec[greetDeps]{
		Name:    "greet",
		Short:   "Greet a person",
		Example: "  samplecli greet John Doe -e Production",
		Arguments: []options.Argument{
			options.String("first", "First name"),
			options.String("last", "Last name"),
		},
		Configure: []command.Step{
			command.ConfigureServices("http-client", provideHTTPClient),
		},
		Resolve: resolveGreetDeps,
		Action:  runGreet,
	})
}

func provideHTTPClient(r *registry.Registry) error {
	return registry.ProvideFactory(r, func(*registry.Provider) (*http.Client, error) {
		return &http.Client{Timeout: httpClientTimeout}, nil
	})
}

func resolveGreetDeps(p *registry.Provider) (greetDeps, error) {
	env, err := registry.Get[config.Environment](p)
	if err != nil {
		return greetDeps{}, err
	}
	hc, _ := registry.Lookup[*http.Client](p)
	return greetDeps{Provider: p, HTTP: hc, Env: env}, nil
}

func runGreet(ctx context.Context, inv *command.Invocation[greetDeps]) (int, error) {
	first, err := command.Arg[string](inv.Parse, "first")
	if err != nil {
		return command.ExitFailure, err
	}
	last, err := command.Arg[string](inv.Parse, "last")
	if err != nil {
		return command.ExitFailure, err
	}

	logger := logging.NewScope(inv.Logger).
		Set("first_name", first).
		Set("last_name", last).
		Logger()
	if inv.Flags.Debug {
		logger.Info("Debug mode is enabled.")
	}

	delay := defaultGreetDelay
	if inv.Config.IsSet(greetDelayKey) {
		delay = inv.Config.Duration(greetDelayKey)
	}
	fmt.Fprintf(inv.Out, "Waiting for %s...\n", describeDelay(delay))
	if err := sleep(ctx, delay); err != nil {
		return command.ExitFailure, err
	}

	status(inv, inv.Deps.Provider != nil, "Service provider")
	status(inv, inv.Deps.HTTP != nil, "HTTP client")

	fmt.Fprintf(inv.Out, "AWS Profile from configuration: %s\n", inv.Config.String("AWS:Profile"))
	fmt.Fprintf(inv.Out, "Hello, %s %s! %s\n", first, last, inv.Deps.Env.Name)
	logger.Debug("Greeted", "environment", inv.Deps.Env.Name)
	return command.ExitSuccess, nil
}

func status[D any](inv *command.Invocation[D], ok bool, what string) {
	if ok {
		fmt.Fprintf(inv.Out, "%s resolved successfully.\n", what)
		return
	}
	fmt.Fprintf(inv.Out, "Failed to resolve %s.\n", what)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func describeDelay(d time.Duration) string {
	if d > 0 && d%time.Second == 0 {
		n := int(d / time.Second)
		if n == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", n)
	}
	return d.String()
}
