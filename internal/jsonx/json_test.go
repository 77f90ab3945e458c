package jsonx

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "object", input: `{"a":1}`},
		{name: "array", input: `[1, 2, 3]`},
		{name: "scalar", input: `"hello"`},
		{name: "surrounding whitespace", input: "  {\"a\":true}\n"},
		{name: "bare word", input: "not-json", wantErr: "invalid character"},
		{name: "truncated", input: `{"a":`, wantErr: "unexpected"},
		{name: "trailing value", input: `{"a":1} {"b":2}`, wantErr: "after top-level value"},
		{name: "empty", input: "", wantErr: "unexpected end of JSON input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.True(t, doc.IsZero())
				return
			}
			require.NoError(t, err)
			assert.False(t, doc.IsZero())
		})
	}
}

func TestDocument_RoundTrip(t *testing.T) {
	doc, err := Parse(`{"name":"Ada","tags":["x","y"],"n":12345678901234567}`)
	require.NoError(t, err)

	assert.Equal(t, `{"name":"Ada","tags":["x","y"],"n":12345678901234567}`, doc.String())

	v, err := doc.Value()
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, "Ada", m["name"])
	assert.Equal(t, json.Number("12345678901234567"), m["n"])

	type person struct {
		Name string   `json:"name"`
		Tags []string `json:"tags"`
	}
	p, err := ConvertTo[person](doc)
	require.NoError(t, err)
	assert.Equal(t, person{Name: "Ada", Tags: []string{"x", "y"}}, p)
}

func TestDocument_BytesIsACopy(t *testing.T) {
	doc, err := Parse(`[1]`)
	require.NoError(t, err)

	b := doc.Bytes()
	b[0] = '{'
	assert.Equal(t, `[1]`, doc.String())
}

func TestDocument_Format(t *testing.T) {
	doc, err := Parse(`{"a":1,"b":[true]}`)
	require.NoError(t, err)

	compact, err := doc.Format(Options{})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":[true]}`, compact)

	pretty, err := doc.Format(Pretty())
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": [\n    true\n  ]\n}", pretty)
}

func TestDocument_YAML(t *testing.T) {
	doc, err := Parse(`{"a":1,"b":1.5,"c":["x"]}`)
	require.NoError(t, err)

	out, err := doc.YAML()
	require.NoError(t, err)
	assert.Equal(t, "a: 1\nb: 1.5\nc:\n    - x\n", out)
}

func TestMarshal_OptionsArePerCall(t *testing.T) {
	v := map[string]int{"a": 1}

	pretty, err := Marshal(v, Pretty())
	require.NoError(t, err)
	compact, err := Marshal(v, Options{})
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"a\": 1\n}", string(pretty))
	assert.Equal(t, `{"a":1}`, string(compact))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []string{"<b>"}, Options{}))
	assert.Equal(t, "[\"<b>\"]\n", buf.String())
}

func TestFromJSON(t *testing.T) {
	type body struct {
		Count json.Number `json:"count"`
	}
	b, err := FromJSON[body](`{"count": 3}`)
	require.NoError(t, err)
	assert.Equal(t, json.Number("3"), b.Count)

	_, err = FromJSON[body](`{`)
	assert.Error(t, err)
}
