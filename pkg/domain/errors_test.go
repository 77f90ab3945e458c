package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError_Message(t *testing.T) {
	err := NewParseError("Body argument is required.")
	assert.Equal(t, "Body argument is required.", err.Error())

	wrapped := &ParseError{Err: errors.New("unexpected end of JSON input")}
	assert.Equal(t, "unexpected end of JSON input", wrapped.Error())
}

func TestConfigurationError_Unwrap(t *testing.T) {
	cause := errors.New("no such file")
	err := NewConfigurationError(cause, "Unable to find AWS profile %s", "dev")

	assert.Equal(t, "Unable to find AWS profile dev: no such file", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsConfigurationError(fmt.Errorf("greet: %w", err)))
	assert.False(t, IsParseError(err))
}

func TestActionError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &ActionError{Command: "openai", Err: cause}

	assert.Equal(t, "openai: boom", err.Error())
	assert.ErrorIs(t, err, cause)
}
