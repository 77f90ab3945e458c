package jsonx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Options controls serialization for a single call.
// The zero value writes compact JSON.
type Options struct {
	Indent     bool
	IndentText string
	EscapeHTML bool
}

// Pretty returns Options that indent with two spaces.
func Pretty() Options {
	return Options{Indent: true}
}

func (o Options) indent() string {
	if o.IndentText != "" {
		return o.IndentText
	}
	return "  "
}

// Marshal encodes v as JSON without a trailing newline.
func Marshal(v any, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(opts.EscapeHTML)
	if opts.Indent {
		enc.SetIndent("", opts.indent())
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Write encodes v as JSON to w, followed by a newline.
func Write(w io.Writer, v any, opts Options) error {
	data, err := Marshal(v, opts)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// FromJSON decodes text into a new T.
func FromJSON[T any](text string) (T, error) {
	var out T
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

// Document is a parsed, immutable JSON value.
type Document struct {
	raw []byte
}

// Parse validates text as a single JSON document.
// Syntax errors carry the decoder's message.
func Parse(text string) (Document, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var msg json.RawMessage
	if err := dec.Decode(&msg); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, errors.New("unexpected end of JSON input")
		}
		return Document{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Document{}, fmt.Errorf("invalid character after top-level value at offset %d", dec.InputOffset())
	}

	raw := make([]byte, len(msg))
	copy(raw, msg)
	return Document{raw: raw}, nil
}

// IsZero reports whether the document was never parsed.
func (d Document) IsZero() bool {
	return d.raw == nil
}

// String returns the JSON text as received.
func (d Document) String() string {
	return string(d.raw)
}

// Bytes returns a copy of the JSON text.
func (d Document) Bytes() []byte {
	return bytes.Clone(d.raw)
}

// Decode unmarshals the document into target.
func (d Document) Decode(target any) error {
	if d.IsZero() {
		return errors.New("document is empty")
	}
	dec := json.NewDecoder(bytes.NewReader(d.raw))
	dec.UseNumber()
	return dec.Decode(target)
}

// Value returns the decoded document. Numbers are json.Number.
func (d Document) Value() (any, error) {
	var v any
	err := d.Decode(&v)
	return v, err
}

// Format renders the document as JSON using opts.
func (d Document) Format(opts Options) (string, error) {
	if !opts.Indent {
		return d.String(), nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, d.raw, "", opts.indent()); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// YAML renders the document as YAML.
func (d Document) YAML() (string, error) {
	v, err := d.Value()
	if err != nil {
		return "", err
	}
	out, err := yaml.Marshal(plain(v))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ConvertTo decodes a document into a new T.
func ConvertTo[T any](d Document) (T, error) {
	var out T
	err := d.Decode(&out)
	return out, err
}

// plain replaces json.Number with int64 or float64 so YAML emits bare scalars.
func plain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = plain(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = plain(item)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}
