package options

import (
	"strings"

	"github.com/redmarble/samplecli/internal/jsonx"
	"github.com/redmarble/samplecli/pkg/domain"
)

// Argument is a positional argument that consumes exactly one token.
// Parse converts the token; a nil Parse keeps the raw string.
type Argument struct {
	Name        string
	Description string
	Parse       func(token string) (any, error)
}

// Convert runs the argument's parser over token.
// Failures are reported as domain.ParseError.
func (a Argument) Convert(token string) (any, error) {
	if a.Parse == nil {
		return token, nil
	}
	v, err := a.Parse(token)
	if err != nil {
		if domain.IsParseError(err) {
			return nil, err
		}
		return nil, &domain.ParseError{Err: err}
	}
	return v, nil
}

// String declares a plain string argument.
func String(name, description string) Argument {
	return Argument{Name: name, Description: description}
}

// Body is the JSON body argument. Its value is a jsonx.Document.
var Body = Argument{
	Name:        "body",
	Description: "Json content.",
	Parse:       ParseBody,
}

// ParseBody validates token as a JSON document.
func ParseBody(token string) (any, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.NewParseError("Body argument is required.")
	}
	doc, err := jsonx.Parse(token)
	if err != nil {
		return nil, &domain.ParseError{Err: err}
	}
	return doc, nil
}
