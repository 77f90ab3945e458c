package domain

import (
	"errors"
	"fmt"
)

// ErrNotRegistered is returned when a capability has no registry entry.
var ErrNotRegistered = errors.New("service not registered")

// ErrRegistryFrozen is returned when a registration happens after the first resolution.
var ErrRegistryFrozen = errors.New("service registry is frozen")

// ParseError reports malformed command-line input.
// It is raised before any action runs.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError creates a ParseError with a formatted message.
func NewParseError(format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

// ConfigurationError reports a dependency that could not be set up
// while a command was configuring its services.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NewConfigurationError wraps err with a configuration message.
func NewConfigurationError(err error, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...), Err: err}
}

// ActionError reports a failure raised by a command action.
type ActionError struct {
	Command string
	Err     error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// IsParseError reports whether err carries a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsConfigurationError reports whether err carries a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
