package invocation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redmarble/samplecli/internal/config"
	"github.com/redmarble/samplecli/internal/logging"
	"github.com/redmarble/samplecli/pkg/registry"
)

// Context is the per-invocation bundle of configuration, services,
// environment descriptor and output sinks. It is created after parsing,
// owned by a single dispatch and closed when the action completes.
type Context struct {
	ID       string
	Config   *config.Config
	Services *registry.Registry
	Env      config.Environment
	Out      io.Writer
	Err      io.Writer

	loggers *logging.Factory

	closeOnce sync.Once
	closeErr  error
}

type settings struct {
	appName     string
	contentRoot string
	out         io.Writer
	err         io.Writer
	debug       bool
	configOpts  []config.Option
}

// Option configures New.
type Option func(*settings)

// WithApplicationName sets the application name reported by the environment descriptor.
func WithApplicationName(name string) Option {
	return func(s *settings) {
		s.appName = name
	}
}

// WithContentRoot sets the directory configuration files are read from.
// Defaults to the working directory.
func WithContentRoot(dir string) Option {
	return func(s *settings) {
		s.contentRoot = dir
	}
}

// WithOutput sets the output sink. Nil keeps Stdout.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.out = w
		}
	}
}

// WithError sets the error sink. Nil keeps Stderr.
func WithError(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.err = w
		}
	}
}

// WithDebug lowers every logger to Debug.
func WithDebug(debug bool) Option {
	return func(s *settings) {
		s.debug = debug
	}
}

// WithConfigOptions forwards options to config.Load.
func WithConfigOptions(opts ...config.Option) Option {
	return func(s *settings) {
		s.configOpts = append(s.configOpts, opts...)
	}
}

// New builds the invocation context for environment.
// The registry comes pre-seeded with *config.Config, config.Environment and
// *logging.Factory; everything else is added by command configuration steps.
func New(environment string, opts ...Option) (*Context, error) {
	s := &settings{
		appName: filepath.Base(os.Args[0]),
		out:     os.Stdout,
		err:     os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.contentRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve content root: %w", err)
		}
		s.contentRoot = wd
	}

	cfg, err := config.Load(s.contentRoot, environment, s.configOpts...)
	if err != nil {
		return nil, err
	}

	ic := &Context{
		ID:       uuid.NewString(),
		Config:   cfg,
		Services: registry.NewRegistry(),
		Env: config.Environment{
			Name:            environment,
			ApplicationName: s.appName,
			ContentRoot:     s.contentRoot,
		},
		Out: s.out,
		Err: s.err,
	}
	ic.loggers = logging.NewFactory(s.err, logLevels(cfg), s.debug, "invocation_id", ic.ID)

	if err := registry.Provide(ic.Services, cfg); err != nil {
		return nil, err
	}
	if err := registry.Provide(ic.Services, ic.Env); err != nil {
		return nil, err
	}
	if err := registry.Provide(ic.Services, ic.loggers); err != nil {
		return nil, err
	}
	return ic, nil
}

// logLevels reads Logging:LogLevel:Default and per-category overrides.
func logLevels(cfg *config.Config) logging.Levels {
	lvls := logging.Levels{Default: slog.LevelInfo, Categories: map[string]slog.Level{}}
	var raw map[string]string
	if err := cfg.Bind("Logging:LogLevel", &raw); err != nil {
		return lvls
	}
	for name, value := range raw {
		lvl, ok := logging.ParseLevel(value)
		if !ok {
			continue
		}
		if strings.EqualFold(name, "default") {
			lvls.Default = lvl
			continue
		}
		lvls.Categories[name] = lvl
	}
	return lvls
}

// Provider returns the capability resolver, freezing the registry on first use.
func (c *Context) Provider() *registry.Provider {
	return c.Services.Provider()
}

// Logger returns a logger for category writing to the error sink.
func (c *Context) Logger(category string) *slog.Logger {
	return c.loggers.Logger(category)
}

// Close disposes every disposable service. It is safe to call more than once.
func (c *Context) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.closeErr = c.Services.Close(ctx)
	})
	return c.closeErr
}
