package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"musicfreq/internal/services"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1/chat/completions"
	defaultModel       = "gpt-4o-mini"
	defaultHTTPTimeout = 60 * time.Second
	summaryTemperature = 0.3
	pingMaxTokens      = 5
)

// Config captures the runtime settings required to talk to the LLM.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	cfg   Config
	http  *http.Client
	retry retryPolicy
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithRetryMaxAttempts caps the number of requests per call (default 3).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retry.attempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retry.base = baseDelay
		c.retry.max = maxDelay
	}
}

// WithSleeper replaces the retry wait, for tests.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.retry.sleeper = sleeper
	}
}

// NewClient constructs a client. Empty BaseURL and Model fall back to the
// OpenAI endpoint and gpt-4o-mini.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Referer = strings.TrimSpace(cfg.Referer)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: timeout},
		retry: defaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends a system instruction and a user prompt and returns the
// trimmed reply. maxTokens <= 0 leaves the limit to the provider. Rate
// limits, 5xx responses, network timeouts and empty replies are retried.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	switch {
	case systemPrompt == "":
		return "", services.Wrap(services.ErrValidation, "llm", "complete", "system prompt required", nil)
	case userPrompt == "":
		return "", services.Wrap(services.ErrValidation, "llm", "complete", "user prompt required", nil)
	}
	if err := c.requireKey("complete"); err != nil {
		return "", err
	}

	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: summaryTemperature,
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}

	var text string
	err := c.retry.do(ctx, "llm complete", func() error {
		reply, raw, err := c.post(ctx, req)
		if err != nil {
			return err
		}
		text, err = reply.text(raw)
		return err
	})
	return text, err
}

// HealthCheck sends a tiny greeting and succeeds on any well-formed reply.
// It never retries so /nettest answers quickly.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.requireKey("health"); err != nil {
		return err
	}
	_, _, err := c.post(ctx, chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful assistant."},
			{Role: "user", Content: "Hello"},
		},
		MaxTokens: pingMaxTokens,
	})
	return err
}

func (c *Client) requireKey(op string) error {
	if c.cfg.APIKey == "" {
		return services.Wrap(services.ErrConfiguration, "llm", op, "api key required", nil)
	}
	return nil
}

var errNoChoices = errors.New("no choices in response")
