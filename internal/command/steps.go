package command

import (
	"sort"

	"github.com/redmarble/samplecli/internal/config"
	"github.com/redmarble/samplecli/pkg/registry"
)

// Stage orders configuration steps from general to specific.
type Stage int

const (
	// StageEnvironment steps see the registry, configuration and environment.
	StageEnvironment Stage = iota
	// StageConfiguration steps see the registry and configuration.
	StageConfiguration
	// StageServices steps see the registry only.
	StageServices
)

func (s Stage) String() string {
	switch s {
	case StageEnvironment:
		return "environment"
	case StageConfiguration:
		return "configuration"
	case StageServices:
		return "services"
	}
	return "unknown"
}

// Step registers services before the action runs.
type Step struct {
	Stage Stage
	Name  string
	run   func(*registry.Registry, *config.Config, config.Environment) error
}

// ConfigureEnvironment creates a step that depends on the environment descriptor.
func ConfigureEnvironment(name string, fn func(*registry.Registry, *config.Config, config.Environment) error) Step {
	return Step{Stage: StageEnvironment, Name: name, run: fn}
}

// ConfigureWithConfig creates a step that depends on configuration only.
func ConfigureWithConfig(name string, fn func(*registry.Registry, *config.Config) error) Step {
	return Step{Stage: StageConfiguration, Name: name, run: func(r *registry.Registry, c *config.Config, _ config.Environment) error {
		return fn(r, c)
	}}
}

// ConfigureServices creates a step that only touches the registry.
func ConfigureServices(name string, fn func(*registry.Registry) error) Step {
	return Step{Stage: StageServices, Name: name, run: func(r *registry.Registry, _ *config.Config, _ config.Environment) error {
		return fn(r)
	}}
}

// ordered returns steps sorted by stage, keeping declaration order within a stage.
func ordered(steps []Step) []Step {
	out := append([]Step(nil), steps...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stage < out[j].Stage })
	return out
}
