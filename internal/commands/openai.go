package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redmarble/samplecli/internal/adapters/openai"
	"github.com/redmarble/samplecli/internal/command"
	"github.com/redmarble/samplecli/internal/config"
	"github.com/redmarble/samplecli/internal/options"
	"github.com/redmarble/samplecli/internal/presentation/tui"
	"github.com/redmarble/samplecli/pkg/domain"
	"github.com/redmarble/samplecli/pkg/registry"
)

const openAISection = "OpenAI"

const cookingAssistantPrompt = "You are a cooking master assistant. " +
	"You suggest meals that everyone can enjoy based on a couple of ingredients that the person has in their household. " +
	"You can suggest a list of additional ingredients to buy. " +
	"You always suggest easy to make meals that take between 60-90 minutes to prepare and cook. " +
	"You always provide step-by-step cooking instructions. "

type openAIDeps struct {
	Options openai.Options
	// Client is resolved on demand so a dry run works without credentials.
	Client func() (*openai.Client, error)
}

// NewOpenAI returns the openai command, which asks the chat model for a recipe.
func NewOpenAI() *command.Command {
	return command.New(command.Spec[openAIDeps]{
		Name:      "openai",
		Short:     "Commands for interacting with OpenAI services",
		Example:   `  samplecli openai "eggs, flour, milk" --pretty`,
		Arguments: []options.Argument{options.Text("prompt", "The prompt to send to the OpenAI model")},
		Configure: []command.Step{
			command.ConfigureWithConfig("openai-client", provideOpenAI),
		},
		Resolve: func(p *registry.Provider) (openAIDeps, error) {
			opts, err := registry.Get[openai.Options](p)
			if err != nil {
				return openAIDeps{}, err
			}
			return openAIDeps{
				Options: opts,
				Client:  func() (*openai.Client, error) { return registry.Get[*openai.Client](p) },
			}, nil
		},
		Action: runOpenAI,
	})
}

func provideOpenAI(r *registry.Registry, cfg *config.Config) error {
	var opts openai.Options
	if err := cfg.Bind(openAISection, &opts); err != nil {
		return err
	}
	if err := registry.Provide(r, opts); err != nil {
		return err
	}
	return registry.ProvideFactory(r, func(p *registry.Provider) (*openai.Client, error) {
		hc, _ := registry.Lookup[*http.Client](p)
		return openai.New(opts, openai.WithHTTPClient(hc))
	})
}

func runOpenAI(ctx context.Context, inv *command.Invocation[openAIDeps]) (int, error) {
	prompt, err := command.Arg[string](inv.Parse, "prompt")
	if err != nil {
		return command.ExitFailure, err
	}
	messages := []openai.Message{
		openai.System(cookingAssistantPrompt),
		openai.User(prompt),
	}

	if inv.Flags.DryRun {
		inv.Logger.Debug("Dry run, request not sent", "model", inv.Deps.Options.Model)
		return command.ExitSuccess, inv.WriteJSON(openai.NewRequest(inv.Deps.Options.Model, messages...))
	}

	client, err := inv.Deps.Client()
	if err != nil {
		return command.ExitFailure, domain.NewConfigurationError(err, "create OpenAI client")
	}

	completion, err := client.CompleteChat(ctx, messages...)
	if err != nil {
		return command.ExitFailure, err
	}
	inv.Logger.Debug("Completion received",
		"model", completion.Model,
		"total_tokens", completion.Usage.TotalTokens,
	)

	var render func(string) (string, error)
	if inv.Flags.PrettyPrint && tui.IsTerminal(inv.Out) {
		if render, err = tui.NewRenderer(tui.Width(inv.Out, 80)); err != nil {
			inv.Logger.Warn("Markdown rendering unavailable", "error", err)
			render = nil
		}
	}

	for _, part := range completion.Parts() {
		if render != nil {
			if out, err := render(part); err == nil {
				fmt.Fprint(inv.Out, out)
				continue
			}
		}
		fmt.Fprintln(inv.Out, part)
	}
	return command.ExitSuccess, nil
}
