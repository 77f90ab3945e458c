package command

import (
	"fmt"

	"github.com/redmarble/samplecli/internal/options"
	"github.com/redmarble/samplecli/pkg/domain"
	"github.com/spf13/pflag"
)

// ParseResult holds the converted positional arguments and flags of one invocation.
type ParseResult struct {
	CommandPath string
	Flags       options.Flags
	Tokens      []string
	values      map[string]any
	flags       *pflag.FlagSet
}

// Flag returns the value of a command-specific flag.
func (p *ParseResult) Flag(name string) (pflag.Value, bool) {
	if p.flags == nil {
		return nil, false
	}
	f := p.flags.Lookup(name)
	if f == nil {
		return nil, false
	}
	return f.Value, true
}

// Value returns the converted value of the named argument.
func (p *ParseResult) Value(name string) (any, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Arg returns the named argument converted to T.
func Arg[T any](p *ParseResult, name string) (T, error) {
	var zero T
	v, ok := p.Value(name)
	if !ok {
		return zero, fmt.Errorf("argument %q was not parsed", name)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("argument %q is %T, not %T", name, v, zero)
	}
	return t, nil
}

// ArgOr returns the named argument, or fallback when it is missing or of another type.
func ArgOr[T any](p *ParseResult, name string, fallback T) T {
	if v, err := Arg[T](p, name); err == nil {
		return v
	}
	return fallback
}

// parseArguments converts tokens against the declared arguments.
func parseArguments(commandName string, args []options.Argument, tokens []string) (map[string]any, error) {
	if len(tokens) < len(args) {
		return nil, domain.NewParseError("Required argument missing for command: '%s'.", commandName)
	}
	if len(tokens) > len(args) {
		return nil, domain.NewParseError("Unrecognized command or argument '%s'.", tokens[len(args)])
	}

	values := make(map[string]any, len(args))
	for i, arg := range args {
		v, err := arg.Convert(tokens[i])
		if err != nil {
			return nil, err
		}
		values[arg.Name] = v
	}
	return values, nil
}
