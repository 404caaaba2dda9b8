// Package anthropic adapts the Anthropic Messages API to the same
// Complete/HealthCheck surface as the OpenAI-compatible llm client.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultModel       = "claude-3-5-haiku-latest"
	defaultMaxTokens   = 1000
	defaultHTTPTimeout = 60 * time.Second
	healthMaxTokens    = 16
)

// Config captures the runtime settings required to talk to Anthropic.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	RetryAttempts  int
}

// Client wraps the Anthropic SDK client.
type Client struct {
	cfg Config
	api anthropicsdk.Client
}

// NewClient constructs a client. Extra request options are appended after the
// ones derived from cfg, so tests can point the client at a fake server.
func NewClient(cfg Config, opts ...option.RequestOption) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	retries := cfg.RetryAttempts - 1
	if retries < 0 {
		retries = 0
	}

	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(retries),
	}
	if cfg.BaseURL != "" {
		base = append(base, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		cfg: cfg,
		api: anthropicsdk.NewClient(append(base, opts...)...),
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends one user turn with a system instruction and returns the
// first text block of the reply.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", errors.New("anthropic complete: user prompt required")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("anthropic complete: api key required")
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(c.cfg.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(userPrompt)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropicsdk.TextBlockParam{{Text: systemPrompt}}
	}

	message, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic complete: %w", err)
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			if text := strings.TrimSpace(block.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", fmt.Errorf("anthropic complete: no text content (stop_reason=%q)", message.StopReason)
}

// HealthCheck issues a tiny request to verify the key and model.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("anthropic health: api key required")
	}
	if _, err := c.Complete(ctx, "", "Reply with the single word: ok", healthMaxTokens); err != nil {
		return fmt.Errorf("anthropic health: %w", err)
	}
	return nil
}

// StatusCode extracts the HTTP status from an API error returned by this
// client.
func StatusCode(err error) (int, bool) {
	var apiErr *anthropicsdk.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}
	return 0, false
}
