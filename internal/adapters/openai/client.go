// Package openai is a minimal chat completion client for the OpenAI HTTP API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redmarble/samplecli/internal/jsonx"
)

const (
	// DefaultBaseURL is the public OpenAI endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 2 * time.Minute
)

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Options is bound from the OpenAI configuration section.
type Options struct {
	Model   string        `mapstructure:"Model"`
	APIKey  string        `mapstructure:"ApiKey"`
	BaseURL string        `mapstructure:"BaseUrl"`
	Timeout time.Duration `mapstructure:"Timeout"`
}

// Validate reports missing required settings.
func (o Options) Validate() error {
	var errs []error
	if strings.TrimSpace(o.Model) == "" {
		errs = append(errs, errors.New("OpenAI:Model is not configured"))
	}
	if strings.TrimSpace(o.APIKey) == "" {
		errs = append(errs, errors.New("OpenAI:ApiKey is not configured"))
	}
	return errors.Join(errs...)
}

func (o Options) baseURL() string {
	if o.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(o.BaseURL, "/")
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// System returns a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User returns a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Request is the body sent to the chat completions endpoint.
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// Choice is one generated alternative.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the decoded chat completion response.
type Completion struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Parts returns the content of every choice in order.
func (c *Completion) Parts() []string {
	parts := make([]string, 0, len(c.Choices))
	for _, ch := range c.Choices {
		parts = append(parts, ch.Message.Content)
	}
	return parts
}

// APIError is returned when the endpoint answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("openai: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("openai: HTTP %d: %s", e.StatusCode, e.Message)
}

// Client sends chat completion requests.
type Client struct {
	opts Options
	http *http.Client
	own  bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sends requests through hc. The caller keeps ownership of it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
			c.own = false
		}
	}
}

// New creates a Client. Model and API key are required.
func New(opts Options, options ...Option) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	c := &Client{
		opts: opts,
		http: &http.Client{Timeout: opts.Timeout},
		own:  true,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.opts.Model }

// NewRequest builds the request body for messages without sending it.
func (c *Client) NewRequest(messages ...Message) Request {
	return NewRequest(c.opts.Model, messages...)
}

// NewRequest builds a chat request for model.
func NewRequest(model string, messages ...Message) Request {
	return Request{Model: model, Messages: append([]Message(nil), messages...)}
}

// CompleteChat sends messages and returns the completion.
func (c *Client) CompleteChat(ctx context.Context, messages ...Message) (*Completion, error) {
	if len(messages) == 0 {
		return nil, errors.New("openai: at least one message is required")
	}
	body, err := jsonx.Marshal(c.NewRequest(messages...), jsonx.Options{})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.baseURL()+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, raw)
	}

	var out Completion
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("could not parse openai response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}
	return &out, nil
}

func decodeError(status int, raw []byte) error {
	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    any    `json:"code"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: status}
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Message = body.Error.Message
		apiErr.Type = body.Error.Type
		if body.Error.Code != nil {
			apiErr.Code = fmt.Sprint(body.Error.Code)
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

// Close releases idle connections held by a client-owned transport.
func (c *Client) Close() error {
	if c.own {
		c.http.CloseIdleConnections()
	}
	return nil
}
