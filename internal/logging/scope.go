package logging

import (
	"log/slog"
	"sort"
	"strings"
)

// Scope collects named properties that are attached to every record
// written through its Logger. Names are case-insensitive.
type Scope struct {
	base  *slog.Logger
	props map[string]any
	names map[string]string
}

// NewScope starts an empty scope over logger.
func NewScope(logger *slog.Logger) *Scope {
	return &Scope{
		base:  logger,
		props: map[string]any{},
		names: map[string]string{},
	}
}

// Set records a property. Blank names and nil values are ignored.
func (s *Scope) Set(name string, value any) *Scope {
	if strings.TrimSpace(name) == "" || value == nil {
		return s
	}
	key := strings.ToLower(name)
	if _, ok := s.names[key]; !ok {
		s.names[key] = name
	}
	s.props[key] = value
	return s
}

// Logger returns the base logger enriched with the current properties.
func (s *Scope) Logger() *slog.Logger {
	keys := make([]string, 0, len(s.props))
	for k := range s.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(keys))
	for _, k := range keys {
		args = append(args, slog.Any(s.names[k], s.props[k]))
	}
	return s.base.With(args...)
}
