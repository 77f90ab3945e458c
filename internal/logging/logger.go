package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelNone disables a category entirely.
const LevelNone = slog.Level(100)

// New creates a configured application logger.
// It writes to w (Stderr when nil) to keep Stdout free for command output.
// It standardizes common keys (e.g., "error" -> "err").
func New(w io.Writer, level slog.Leveler) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps configuration level names to slog levels.
// Unknown names report false.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace", "debug":
		return slog.LevelDebug, true
	case "information", "info":
		return slog.LevelInfo, true
	case "warning", "warn":
		return slog.LevelWarn, true
	case "error", "critical":
		return slog.LevelError, true
	case "none":
		return LevelNone, true
	}
	return slog.LevelInfo, false
}

// Levels holds the minimum level per category.
type Levels struct {
	Default    slog.Level
	Categories map[string]slog.Level
}

// For returns the level for category, falling back to Default.
func (l Levels) For(category string) slog.Level {
	for name, lvl := range l.Categories {
		if strings.EqualFold(name, category) {
			return lvl
		}
	}
	return l.Default
}

// Factory creates category loggers sharing one sink.
type Factory struct {
	w     io.Writer
	lvls  Levels
	debug bool
	attrs []any
}

// NewFactory creates a Factory. When debug is set every category logs at Debug.
func NewFactory(w io.Writer, lvls Levels, debug bool, attrs ...any) *Factory {
	return &Factory{w: w, lvls: lvls, debug: debug, attrs: attrs}
}

// Logger returns a logger tagged with category.
func (f *Factory) Logger(category string) *slog.Logger {
	level := f.lvls.For(category)
	if f.debug && level > slog.LevelDebug {
		level = slog.LevelDebug
	}
	if level >= LevelNone {
		return NewNop()
	}
	return New(f.w, level).With(f.attrs...).With("category", category)
}
