package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/redmarble/samplecli"
	"github.com/redmarble/samplecli/internal/command"
	"github.com/redmarble/samplecli/internal/config"
	"github.com/redmarble/samplecli/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseSettings = `{
  "Greet": { "Delay": "0s" },
  "AWS": { "Profile": "sample" },
  "Logging": { "LogLevel": { "Default": "Warning" } }
}`

func run(t *testing.T, dir string, args ...string) command.Result {
	t.Helper()
	return NewRoot().Invoke(context.Background(), args, command.WithContentRoot(dir))
}

func TestGreet(t *testing.T) {
	dir := testutils.ContentRoot(t, map[string]string{config.BaseFile: baseSettings})

	t.Run("production", func(t *testing.T) {
		res := run(t, dir, "-e", "Production", "greet", "John", "Doe")

		require.Equal(t, command.ExitSuccess, res.Code, res.Error)
		assert.Equal(t, strings.Join([]string{
			"Waiting for 0s...",
			"Service provider resolved successfully.",
			"HTTP client resolved successfully.",
			"AWS Profile from configuration: sample",
			"Hello, John Doe! Production",
			"",
		}, "\n"), res.Output)
	})

	t.Run("defaults to development", func(t *testing.T) {
		res := run(t, dir, "greet", "John", "Doe")

		require.Equal(t, command.ExitSuccess, res.Code, res.Error)
		assert.True(t, strings.HasSuffix(strings.TrimSpace(res.Output), "Development"), res.Output)
	})

	t.Run("environment outside content root", func(t *testing.T) {
		res := run(t, dir, "-e", "../../x", "greet", "John", "Doe")

		assert.Equal(t, command.ExitUsage, res.Code)
		assert.Contains(t, res.Error, `invalid environment name "../../x"`)
		assert.Empty(t, res.Output)
	})

	t.Run("environment file overrides", func(t *testing.T) {
		dir := testutils.ContentRoot(t, map[string]string{
			config.BaseFile:                      baseSettings,
			config.EnvironmentFile("Staging"):    `{"AWS":{"Profile":"staging"}}`,
			config.EnvironmentFile("Production"): `{"AWS":{"Profile":"prod"}}`,
		})
		res := run(t, dir, "greet", "Jane", "Roe", "--environment", "Staging")

		require.Equal(t, command.ExitSuccess, res.Code, res.Error)
		assert.Contains(t, res.Output, "AWS Profile from configuration: staging")
		assert.Contains(t, res.Output, "Hello, Jane Roe! Staging")
	})

	t.Run("debug logs to the error sink", func(t *testing.T) {
		res := run(t, dir, "greet", "John", "Doe", "--debug")

		require.Equal(t, command.ExitSuccess, res.Code, res.Error)
		assert.Contains(t, res.Error, "Debug mode is enabled.")
		assert.Contains(t, res.Error, "invocation_id=")
		assert.Contains(t, res.Error, "first_name=John")
		assert.NotContains(t, res.Output, "Debug mode")
	})

	t.Run("debug never logs secrets", func(t *testing.T) {
		dir := testutils.ContentRoot(t, map[string]string{
			config.BaseFile: `{"Greet":{"Delay":"0s"},"OpenAI":{"ApiKey":"sk-very-secret"}}`,
		})
		res := run(t, dir, "greet", "John", "Doe", "-dbg")

		require.Equal(t, command.ExitSuccess, res.Code, res.Error)
		assert.Contains(t, res.Error, "Configuration loaded")
		assert.NotContains(t, res.Error, "sk-very-secret")
	})

	t.Run("missing argument", func(t *testing.T) {
		res := run(t, dir, "greet", "John")

		assert.Equal(t, command.ExitUsage, res.Code)
		assert.Contains(t, res.Error, "Required argument missing for command: 'greet'.")
		assert.Empty(t, res.Output)
	})
}

func TestGreet_Standalone(t *testing.T) {
	dir := testutils.ContentRoot(t, map[string]string{config.BaseFile: baseSettings})

	res := NewGreet().Invoke(context.Background(), []string{"Ada", "Lovelace", "-e", "Production"}, command.WithContentRoot(dir))

	require.Equal(t, command.ExitSuccess, res.Code, res.Error)
	assert.Contains(t, res.Output, "Hello, Ada Lovelace! Production")
}

func TestGreet_Cancelled(t *testing.T) {
	dir := testutils.ContentRoot(t, map[string]string{config.BaseFile: `{"Greet":{"Delay":"1m"}}`})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewRoot().Invoke(ctx, []string{"greet", "John", "Doe"}, command.WithContentRoot(dir))

	assert.Equal(t, command.ExitFailure, res.Code)
	assert.Contains(t, res.Output, "Waiting for 60 seconds...")
	assert.Contains(t, res.Error, "context canceled")
	assert.NotContains(t, res.Output, "Hello")
}

func TestDescribeDelay(t *testing.T) {
	assert.Equal(t, "1 second", describeDelay(defaultGreetDelay))
	assert.Equal(t, "3 seconds", describeDelay(3*defaultGreetDelay))
	assert.Equal(t, "250ms", describeDelay(defaultGreetDelay/4))
	assert.Equal(t, "0s", describeDelay(0))
}

func TestJSON(t *testing.T) {
	dir := testutils.ContentRoot(t, nil)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
		wantErr  string
	}{
		{name: "echo", args: []string{"json", `{"a":1}`}, wantOut: "Received JSON input:\n{\"a\":1}\n"},
		{name: "pretty", args: []string{"json", `{"a":1}`, "--pretty"}, wantOut: "Received JSON input:\n{\n  \"a\": 1\n}\n"},
		{name: "yaml", args: []string{"json", `{"a":1,"b":"x"}`, "--format", "YAML"}, wantOut: "Received JSON input:\na: 1\nb: x\n"},
		{name: "not json", args: []string{"json", "not-json"}, wantCode: command.ExitUsage, wantErr: "invalid character"},
		{name: "trailing data", args: []string{"json", `{"a":1} {}`}, wantCode: command.ExitUsage, wantErr: "after top-level value"},
		{name: "empty body", args: []string{"json", ""}, wantCode: command.ExitUsage, wantErr: "Body argument is required."},
		{name: "bad format", args: []string{"json", `{}`, "--format", "xml"}, wantCode: command.ExitUsage, wantErr: "Format must be 'json' or 'yaml'."},
		{name: "bad pretty", args: []string{"--pretty", "nonsense", "json", `{}`}, wantCode: command.ExitUsage, wantErr: "PrettyPrint must be 'true' or 'false'."},
		{name: "negative number", args: []string{"json", "-5"}, wantOut: "Received JSON input:\n-5\n"},
		{name: "negative exponent pretty", args: []string{"json", "-1.5e3", "--pretty"}, wantOut: "Received JSON input:\n-1.5e3\n"},
		{name: "negative number as yaml", args: []string{"json", "--format", "yaml", "-2"}, wantOut: "Received JSON input:\n-2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, dir, tt.args...)

			assert.Equal(t, tt.wantCode, res.Code, res.Error)
			if tt.wantOut != "" {
				assert.Equal(t, tt.wantOut, res.Output)
			}
			if tt.wantErr != "" {
				assert.Contains(t, res.Error, tt.wantErr)
				assert.Empty(t, res.Output)
			}
		})
	}
}

func TestJSON_FormatResetsBetweenRuns(t *testing.T) {
	dir := testutils.ContentRoot(t, nil)
	root := NewRoot()

	first := root.Invoke(context.Background(), []string{"json", `{"a":1}`, "--format", "yaml"}, command.WithContentRoot(dir))
	second := root.Invoke(context.Background(), []string{"json", `{"a":1}`}, command.WithContentRoot(dir))

	assert.Contains(t, first.Output, "a: 1")
	assert.Contains(t, second.Output, `{"a":1}`)
}

func TestOpenAI(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-test", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, cookingAssistantPrompt, body.Messages[0].Content)
		assert.Equal(t, "eggs and flour", body.Messages[1].Content)

		_, _ = w.Write([]byte(`{"id":"1","model":"gpt-test","choices":[{"message":{"role":"assistant","content":"Bake a cake."}}]}`))
	}))
	defer srv.Close()

	settings := `{"OpenAI":{"Model":"gpt-test","ApiKey":"secret","BaseUrl":"` + srv.URL + `"}}`
	dir := testutils.ContentRoot(t, map[string]string{config.BaseFile: settings})

	t.Run("completion", func(t *testing.T) {
		res := run(t, dir, "openai", "eggs and flour")

		require.Equal(t, command.ExitSuccess, res.Code, res.Error)
		assert.Equal(t, "Bake a cake.\n", res.Output)
		assert.Equal(t, 1, requests)
	})

	t.Run("dry run prints the request", func(t *testing.T) {
		res := run(t, dir, "openai", "eggs and flour", "--dry-run")

		require.Equal(t, command.ExitSuccess, res.Code, res.Error)
		assert.Contains(t, res.Output, `"model":"gpt-test"`)
		assert.Contains(t, res.Output, "You are a cooking master assistant.")
		assert.NotContains(t, res.Output, "secret")
		assert.Equal(t, 1, requests, "dry run must not call the API")
	})
}

func TestOpenAI_Failures(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		dir := testutils.ContentRoot(t, map[string]string{config.BaseFile: `{"OpenAI":{"Model":"gpt-test"}}`})
		res := run(t, dir, "openai", "eggs")

		assert.Equal(t, command.ExitFailure, res.Code)
		assert.Contains(t, res.Error, "OpenAI:ApiKey is not configured")
	})

	t.Run("dry run without credentials", func(t *testing.T) {
		dir := testutils.ContentRoot(t, map[string]string{config.BaseFile: `{"OpenAI":{"Model":"gpt-test"}}`})
		res := run(t, dir, "openai", "eggs", "-dry")

		require.Equal(t, command.ExitSuccess, res.Code, res.Error)
		assert.Contains(t, res.Output, `"role":"user"`)
	})

	t.Run("api error propagates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
		}))
		defer srv.Close()

		settings := `{"OpenAI":{"Model":"m","ApiKey":"k","BaseUrl":"` + srv.URL + `"}}`
		dir := testutils.ContentRoot(t, map[string]string{config.BaseFile: settings})
		res := run(t, dir, "openai", "eggs")

		assert.Equal(t, command.ExitFailure, res.Code)
		assert.Contains(t, res.Error, "Error: openai: openai: HTTP 429: Rate limit reached")
	})
}

const awsConfig = `[default]
region = eu-west-1

[profile dev]
sso_session = corp
sso_account_id = 123456789012
sso_role_name = Developer
region = us-east-1

[sso-session corp]
sso_start_url = https://corp.awsapps.com/start
sso_region = eu-central-1
`

func TestAWS(t *testing.T) {
	awsDir := t.TempDir()
	awsPath := filepath.Join(awsDir, "config")
	require.NoError(t, os.WriteFile(awsPath, []byte(awsConfig), 0600))
	t.Setenv("AWS_CONFIG_FILE", awsPath)
	t.Setenv("AWS_PROFILE", "")

	t.Run("resolves profile", func(t *testing.T) {
		dir := testutils.ContentRoot(t, map[string]string{config.BaseFile: `{"AWS":{"Profile":"dev"}}`})
		res := run(t, dir, "aws")

		require.Equal(t, command.ExitSuccess, res.Code, res.Error)
		var out awsSettings
		require.NoError(t, json.Unmarshal([]byte(res.Output), &out))
		assert.Equal(t, "dev", out.Options.Profile)
		assert.Equal(t, "us-east-1", out.Options.Region)
		assert.Equal(t, Name, out.Profile.ClientName)
		require.NotNil(t, out.Profile.SSO)
		assert.Equal(t, "https://corp.awsapps.com/start", out.Profile.SSO.StartURL)
	})

	t.Run("default profile", func(t *testing.T) {
		res := run(t, testutils.ContentRoot(t, nil), "aws", "--pretty")

		require.Equal(t, command.ExitSuccess, res.Code, res.Error)
		assert.Contains(t, res.Output, "\n  \"Options\": {")
		assert.Contains(t, res.Output, `"Region": "eu-west-1"`)
	})

	t.Run("missing profile", func(t *testing.T) {
		dir := testutils.ContentRoot(t, map[string]string{config.BaseFile: `{"AWS":{"Profile":"prod"}}`})
		res := run(t, dir, "aws")

		assert.Equal(t, command.ExitFailure, res.Code)
		assert.Contains(t, res.Error, "Error: Unable to find AWS profile prod")
		assert.Empty(t, res.Output)
	})
}

func TestVersion(t *testing.T) {
	res := run(t, testutils.ContentRoot(t, nil), "version")
	require.Equal(t, command.ExitSuccess, res.Code, res.Error)
	assert.Equal(t, "samplecli version "+samplecli.Version+"\n", res.Output)

	res = run(t, testutils.ContentRoot(t, nil), "version", "-p")
	require.Equal(t, command.ExitSuccess, res.Code, res.Error)
	assert.Contains(t, res.Output, `"version": "`+samplecli.Version+`"`)
}

func TestRootHelp(t *testing.T) {
	res := run(t, testutils.ContentRoot(t, nil), "--help")

	require.Equal(t, command.ExitSuccess, res.Code, res.Error)
	assert.Contains(t, res.Output, Description)
	for _, name := range []string{"greet", "json", "openai", "aws", "version", "--environment", "--pretty", "--debug", "--dry-run"} {
		assert.Contains(t, res.Output, name)
	}
}

func TestRootWithoutCommand(t *testing.T) {
	res := run(t, testutils.ContentRoot(t, nil))

	assert.Equal(t, command.ExitUsage, res.Code)
	assert.Contains(t, res.Error, "Required command was not provided.")
}

func TestInvoke_WritesToSinks(t *testing.T) {
	var out, errOut bytes.Buffer
	dir := testutils.ContentRoot(t, nil)

	code := Invoke(context.Background(), []string{"json", `{"ok":true}`},
		command.WithContentRoot(dir), command.WithOutput(&out), command.WithError(&errOut))

	assert.Equal(t, command.ExitSuccess, code)
	assert.Equal(t, "Received JSON input:\n{\"ok\":true}\n", out.String())
	assert.Empty(t, errOut.String())
}
