package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	// BaseFile is the settings file read for every environment.
	BaseFile = "appsettings.json"
	// SecretsFile holds local secrets as Section__Key=value lines.
	SecretsFile = ".env"
	// EnvPrefix prefixes environment variable overrides (SAMPLECLI_SECTION__KEY).
	EnvPrefix = "SAMPLECLI"
)

// Config is the layered key/value configuration of one invocation.
type Config struct {
	v       *viper.Viper
	sources []string
}

type loadOptions struct {
	defaults  map[string]any
	envPrefix string
	secrets   bool
}

// Option configures Load.
type Option func(*loadOptions)

// WithDefaults registers fallback values. Keys use ':' or '.' separators.
// A default also makes the key visible to environment variable overrides in Bind.
func WithDefaults(defaults map[string]any) Option {
	return func(o *loadOptions) {
		for k, v := range defaults {
			o.defaults[k] = v
		}
	}
}

// WithEnvPrefix changes the environment variable prefix. Empty disables overrides.
func WithEnvPrefix(prefix string) Option {
	return func(o *loadOptions) {
		o.envPrefix = prefix
	}
}

// WithoutSecrets skips the .env secrets file.
func WithoutSecrets() Option {
	return func(o *loadOptions) {
		o.secrets = false
	}
}

// ErrInvalidEnvironment is returned for environment names that are not a plain file name part.
var ErrInvalidEnvironment = errors.New("invalid environment name")

// EnvironmentFile returns the override file name for environment.
func EnvironmentFile(environment string) string {
	return fmt.Sprintf("appsettings.%s.json", environment)
}

// ValidateEnvironment rejects names that would move the override file out of the content root.
func ValidateEnvironment(environment string) error {
	if strings.ContainsAny(environment, `/\`) || strings.Contains(environment, "..") {
		return fmt.Errorf("%w %q", ErrInvalidEnvironment, environment)
	}
	return nil
}

// Load reads configuration from root in order: appsettings.json,
// appsettings.<environment>.json (when environment is not blank), the .env
// secrets file and finally environment variables. Later sources win.
// Missing files are skipped; malformed files are an error.
func Load(root, environment string, opts ...Option) (*Config, error) {
	if err := ValidateEnvironment(environment); err != nil {
		return nil, err
	}
	o := &loadOptions{
		defaults:  map[string]any{},
		envPrefix: EnvPrefix,
		secrets:   true,
	}
	for _, opt := range opts {
		opt(o)
	}

	v := viper.New()
	v.SetConfigType("json")
	for k, val := range o.defaults {
		v.SetDefault(normalizeKey(k), val)
	}

	c := &Config{v: v}

	files := []string{BaseFile}
	if strings.TrimSpace(environment) != "" {
		files = append(files, EnvironmentFile(environment))
	}
	for _, name := range files {
		path := filepath.Join(root, name)
		if err := c.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if o.secrets {
		if err := c.mergeSecrets(filepath.Join(root, SecretsFile)); err != nil {
			return nil, err
		}
	}

	if o.envPrefix != "" {
		v.SetEnvPrefix(o.envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
		v.AutomaticEnv()
	}

	return c, nil
}

func (c *Config) mergeFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := c.v.MergeConfig(f); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	c.sources = append(c.sources, path)
	return nil
}

func (c *Config) mergeSecrets(path string) error {
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read secrets %s: %w", path, err)
	}

	nested := map[string]any{}
	for k, val := range values {
		setPath(nested, strings.Split(strings.ToLower(strings.ReplaceAll(k, "__", ".")), "."), val)
	}
	if err := c.v.MergeConfigMap(nested); err != nil {
		return fmt.Errorf("merge secrets %s: %w", path, err)
	}
	c.sources = append(c.sources, path)
	return nil
}

func setPath(m map[string]any, path []string, value string) {
	for _, part := range path[:len(path)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[part] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}

// normalizeKey accepts "Section:Key" paths and lowercases them for viper.
func normalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, ":", "."))
}

// Sources lists the files that contributed, in merge order.
func (c *Config) Sources() []string {
	return append([]string(nil), c.sources...)
}

// IsSet reports whether key has a value from any source.
func (c *Config) IsSet(key string) bool {
	return c.v.IsSet(normalizeKey(key))
}

// Get returns the raw value stored at key.
func (c *Config) Get(key string) any {
	return c.v.Get(normalizeKey(key))
}

// String returns the value at key as a string.
func (c *Config) String(key string) string {
	return c.v.GetString(normalizeKey(key))
}

// StringOr returns the value at key, or fallback when it is unset or blank.
func (c *Config) StringOr(key, fallback string) string {
	if s := c.String(key); strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

// Bool returns the value at key as a bool.
func (c *Config) Bool(key string) bool {
	return c.v.GetBool(normalizeKey(key))
}

// Duration returns the value at key as a duration ("1s", "250ms").
func (c *Config) Duration(key string) time.Duration {
	return c.v.GetDuration(normalizeKey(key))
}

// Bind decodes the section at key into out.
func (c *Config) Bind(key string, out any) error {
	section := lookupSection(c.v.AllSettings(), strings.Split(normalizeKey(key), "."))

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(section); err != nil {
		return fmt.Errorf("bind %s: %w", key, err)
	}
	return nil
}

func lookupSection(settings map[string]any, path []string) map[string]any {
	current := settings
	for _, part := range path {
		if part == "" {
			continue
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			return map[string]any{}
		}
		current = next
	}
	return current
}
