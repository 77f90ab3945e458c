package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedacted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, BaseFile, `{"OpenAI":{"Model":"gpt-4o-mini","ApiKey":"sk-live"},"Db":{"Password":"hunter2","Host":"localhost"}}`)

	cfg, err := Load(dir, Development, WithoutSecrets())
	require.NoError(t, err)

	red := cfg.Redacted()
	openai := red["openai"].(map[string]any)
	db := red["db"].(map[string]any)

	assert.Equal(t, Mask, openai["apikey"])
	assert.Equal(t, "gpt-4o-mini", openai["model"])
	assert.Equal(t, Mask, db["password"])
	assert.Equal(t, "localhost", db["host"])
	assert.Equal(t, "sk-live", cfg.String("OpenAI:ApiKey"), "the configuration itself is untouched")
}
