package options

import (
	"errors"
	"strconv"
	"strings"

	"github.com/redmarble/samplecli/internal/config"
	"github.com/spf13/pflag"
)

// Global flag names.
const (
	Environment = "environment"
	PrettyPrint = "pretty"
	Debug       = "debug"
	DryRun      = "dry-run"
)

// Flags is the snapshot of global flag values for one invocation.
type Flags struct {
	Environment string
	PrettyPrint bool
	Debug       bool
	DryRun      bool
}

type boolSpec struct {
	name      string
	shorthand string
	alias     string
	usage     string
	message   string
}

var boolFlags = []boolSpec{
	{PrettyPrint, "p", "", "Pretty print the output.", "PrettyPrint must be 'true' or 'false'."},
	{Debug, "", "dbg", "Print verbose error debugging output", "Debug must be 'true' or 'false'."},
	{DryRun, "", "dry", "Display results without performing action", "DryRun must be 'true' or 'false'."},
}

// boolValue accepts only "true" or "false", in any case.
type boolValue struct {
	value   *bool
	message string
}

func (b *boolValue) String() string { return strconv.FormatBool(*b.value) }

func (b *boolValue) Type() string { return "bool" }

func (b *boolValue) Set(s string) error {
	switch {
	case strings.EqualFold(s, "true"):
		*b.value = true
	case strings.EqualFold(s, "false"):
		*b.value = false
	default:
		return errors.New(b.message)
	}
	return nil
}

// Register declares the global flags on fs.
// Commands register them on their persistent flag set so they apply to descendants.
func Register(fs *pflag.FlagSet) {
	if fs.Lookup(Environment) == nil {
		fs.StringP(Environment, "e", config.Development, "Environment to run the application in.")
	}
	for _, spec := range boolFlags {
		if fs.Lookup(spec.name) != nil {
			continue
		}
		v := new(bool)
		f := fs.VarPF(&boolValue{value: v, message: spec.message}, spec.name, spec.shorthand, spec.usage)
		f.NoOptDefVal = "true"
		f.DefValue = "false"
	}
}

// Read captures the global flag values from fs.
func Read(fs *pflag.FlagSet) (Flags, error) {
	var (
		f   Flags
		err error
	)
	if f.Environment, err = fs.GetString(Environment); err != nil {
		return Flags{}, err
	}
	if f.PrettyPrint, err = fs.GetBool(PrettyPrint); err != nil {
		return Flags{}, err
	}
	if f.Debug, err = fs.GetBool(Debug); err != nil {
		return Flags{}, err
	}
	if f.DryRun, err = fs.GetBool(DryRun); err != nil {
		return Flags{}, err
	}
	return f, nil
}

// NormalizeArgs rewrites the argument list into the form pflag understands:
//   - multi-letter short aliases (-dbg, -dry) become their long names;
//   - a boolean flag followed by a separate value token (--pretty nonsense)
//     is joined into --pretty=nonsense so the value is validated;
//   - negative numbers (json -5) are moved behind a "--" terminator so they
//     reach the command as arguments instead of unknown shorthand flags.
//
// valueFlags names the flags, besides --environment, that take a separate
// value token ("--format", "-o"). Arguments after "--" are left untouched.
func NormalizeArgs(args []string, valueFlags ...string) []string {
	out := make([]string, 0, len(args))
	operands := false
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		if isNumber(arg) {
			operands = true
		}

		flag, value, hasValue := strings.Cut(arg, "=")
		name, isBool := boolFlagName(flag)
		switch {
		case !isBool:
			out = append(out, arg)
		case hasValue:
			out = append(out, "--"+name+"="+value)
		case i+1 < len(args) && !strings.HasPrefix(args[i+1], "-"):
			out = append(out, "--"+name+"="+args[i+1])
			i++
		default:
			out = append(out, "--"+name)
		}
	}
	if !operands {
		return out
	}
	return terminate(out, valueFlags)
}

// terminate splits args at the first negative number. Flags stay in front,
// that number and every later argument go after "--" in their original order.
func terminate(args, valueFlags []string) []string {
	takesValue := map[string]bool{"--" + Environment: true, "-e": true}
	for _, f := range valueFlags {
		takesValue[f] = true
	}

	lead := make([]string, 0, len(args)+1)
	var rest []string
	moving := false
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			rest = append(rest, args[i+1:]...)
			i = len(args)
		case isNumber(arg):
			moving = true
			rest = append(rest, arg)
		case len(arg) > 1 && arg[0] == '-':
			lead = append(lead, arg)
			if takesValue[arg] && i+1 < len(args) {
				lead = append(lead, args[i+1])
				i++
			}
		case moving:
			rest = append(rest, arg)
		default:
			lead = append(lead, arg)
		}
	}
	if !moving {
		return args
	}
	return append(append(lead, "--"), rest...)
}

// isNumber reports whether arg looks like a negative number (-5, -1.5e3, -.5).
// No flag name starts with a digit.
func isNumber(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	if arg[1] == '.' {
		return len(arg) > 2 && isDigit(arg[2])
	}
	return isDigit(arg[1])
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// boolFlagName resolves a flag token (without value) to a boolean flag name.
func boolFlagName(flag string) (string, bool) {
	for _, spec := range boolFlags {
		switch {
		case flag == "--"+spec.name:
			return spec.name, true
		case spec.shorthand != "" && flag == "-"+spec.shorthand:
			return spec.name, true
		case spec.alias != "" && flag == "-"+spec.alias:
			return spec.name, true
		}
	}
	return "", false
}
