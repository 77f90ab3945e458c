package options

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/redmarble/samplecli/pkg/domain"
)

// DefaultMaxTextSize bounds free-text arguments, in bytes.
const DefaultMaxTextSize = 4096

// EnvMaxTextSize overrides DefaultMaxTextSize.
const EnvMaxTextSize = "SAMPLECLI_MAX_INPUT_SIZE"

var (
	ErrTextTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8  = errors.New("input contains invalid UTF-8 sequences")
)

// Text declares a free-text argument. The token is size-checked,
// UTF-8 validated and stripped of terminal control characters.
func Text(name, description string) Argument {
	return Argument{
		Name:        name,
		Description: description,
		Parse: func(token string) (any, error) {
			clean, err := SanitizeText(token)
			if err != nil {
				return nil, domain.NewParseError("%s argument is invalid: %v.", name, err)
			}
			if strings.TrimSpace(clean) == "" {
				return nil, domain.NewParseError("%s argument is required.", name)
			}
			return clean, nil
		},
	}
}

// SanitizeText rejects oversized or invalid input and removes control
// characters other than newline, tab and carriage return.
func SanitizeText(input string) (string, error) {
	if limit := maxTextSize(); len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTextTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	if strings.IndexFunc(input, unsafeControl) < 0 {
		return input, nil
	}
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

func maxTextSize() int {
	if val := os.Getenv(EnvMaxTextSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxTextSize
}
