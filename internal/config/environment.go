package config

import "strings"

// Well-known environment names.
const (
	Development = "Development"
	Staging     = "Staging"
	Production  = "Production"
)

// Environment describes where the application is running.
type Environment struct {
	Name            string
	ApplicationName string
	ContentRoot     string
}

// Is reports whether the environment name matches name, ignoring case.
func (e Environment) Is(name string) bool {
	return strings.EqualFold(e.Name, name)
}

func (e Environment) IsDevelopment() bool { return e.Is(Development) }

func (e Environment) IsProduction() bool { return e.Is(Production) }
