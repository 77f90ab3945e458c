package commands

import (
	"context"
	"errors"

	"github.com/redmarble/samplecli/internal/adapters/aws"
	"github.com/redmarble/samplecli/internal/command"
	"github.com/redmarble/samplecli/internal/config"
	"github.com/redmarble/samplecli/pkg/domain"
	"github.com/redmarble/samplecli/pkg/registry"
)

const awsSection = "AWS"

// awsSettings is what the aws command prints.
type awsSettings struct {
	Options aws.Options `json:"Options"`
	Profile aws.Profile `json:"Profile"`
}

// NewAWS returns the aws command, which resolves the configured AWS profile.
func NewAWS() *command.Command {
	return command.New(command.Spec[awsSettings]{
		Name:    "aws",
		Short:   "Show the AWS profile resolved from configuration",
		Example: "  samplecli aws -e Production --pretty",
		Configure: []command.Step{
			command.ConfigureEnvironment("aws-profile", provideAWSProfile),
		},
		Resolve: registry.Get[awsSettings],
		Action: func(ctx context.Context, inv *command.Invocation[awsSettings]) (int, error) {
			inv.Logger.Debug("AWS profile resolved",
				"profile", inv.Deps.Profile.Name,
				"sso", inv.Deps.Profile.IsSSO(),
			)
			return command.ExitSuccess, inv.WriteJSON(inv.Deps)
		},
	})
}

// provideAWSProfile loads the configured profile from the shared config file.
// A missing profile fails the invocation before any action runs.
func provideAWSProfile(r *registry.Registry, cfg *config.Config, env config.Environment) error {
	var opts aws.Options
	if err := cfg.Bind(awsSection, &opts); err != nil {
		return err
	}
	opts.Profile = opts.ProfileName()

	profile, err := aws.LoadProfile(opts.ConfigFilePath(), opts.Profile)
	if errors.Is(err, aws.ErrProfileNotFound) {
		return domain.NewConfigurationError(err, "Unable to find AWS profile %s", opts.Profile)
	}
	if err != nil {
		return err
	}
	profile.ClientName = env.ApplicationName
	if opts.Region == "" {
		opts.Region = profile.Region
	}
	return registry.Provide(r, awsSettings{Options: opts, Profile: profile})
}
