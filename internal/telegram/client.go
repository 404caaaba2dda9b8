package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"musicfreq/internal/services"
)

const (
	DefaultBaseURL        = "https://api.telegram.org"
	defaultRequestTimeout = 45 * time.Second
	maxResponseBytes      = 4 << 20
)

// Config configures the Bot API client.
type Config struct {
	Token          string
	BaseURL        string
	ProxyURL       string
	RequestTimeout time.Duration
}

// Client calls the Telegram Bot API over HTTPS.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient injects a preconfigured http.Client. The proxy setting is
// ignored when this option is used.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// NewClient validates cfg and builds a client. Proxy URLs may use http,
// https or socks5.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, services.Wrap(services.ErrConfiguration, "telegram", "new client", "bot token is required", nil)
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	c := &Client{baseURL: baseURL, token: token}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if proxy := strings.TrimSpace(cfg.ProxyURL); proxy != "" {
			proxyURL, err := url.Parse(proxy)
			if err != nil {
				return nil, services.Wrap(services.ErrConfiguration, "telegram", "new client", "invalid proxy url", err)
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		}
		c.http = &http.Client{Timeout: timeout, Transport: transport}
	}
	return c, nil
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Parameters  *struct {
		RetryAfter      int   `json:"retry_after"`
		MigrateToChatID int64 `json:"migrate_to_chat_id"`
	} `json:"parameters"`
}

// call POSTs payload as JSON and decodes the result into out (when non-nil).
func (c *Client) call(ctx context.Context, method string, payload any, out any) error {
	body := []byte("{}")
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("telegram %s: encode request: %w", method, err)
		}
		body = encoded
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram %s: build request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "telegram", method, "request failed", redactToken(err, c.token))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return services.Wrap(services.ErrTransient, "telegram", method, "read response", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{Method: method, Code: resp.StatusCode, Description: strings.TrimSpace(string(raw))}
		}
		return services.Wrap(services.ErrExternalService, "telegram", method, "decode response", err)
	}
	if !envelope.OK {
		apiErr := &APIError{Method: method, Code: envelope.ErrorCode, Description: envelope.Description}
		if apiErr.Code == 0 {
			apiErr.Code = resp.StatusCode
		}
		if envelope.Parameters != nil && envelope.Parameters.RetryAfter > 0 {
			apiErr.RetryAfter = time.Duration(envelope.Parameters.RetryAfter) * time.Second
		}
		return apiErr
	}
	if out == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return services.Wrap(services.ErrExternalService, "telegram", method, "decode result", err)
	}
	return nil
}

// GetMe returns the bot's own user record. It doubles as a connectivity check.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var user User
	if err := c.call(ctx, "getMe", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUpdates long-polls for updates after offset and returns the next offset
// to acknowledge them.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, int64, error) {
	secs := int(timeout.Seconds())
	if secs < 0 {
		secs = 0
	}
	payload := map[string]any{
		"timeout":         secs,
		"allowed_updates": []string{"message", "callback_query"},
	}
	if offset > 0 {
		payload["offset"] = offset
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, offset, err
	}
	next := offset
	for _, u := range updates {
		if u.UpdateID >= next {
			next = u.UpdateID + 1
		}
	}
	return updates, next, nil
}

// DeleteWebhook switches the bot to polling, optionally discarding updates
// queued while it was offline.
func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	return c.call(ctx, "deleteWebhook", map[string]any{"drop_pending_updates": dropPending}, nil)
}

// SendMessageRequest is the sendMessage payload.
type SendMessageRequest struct {
	ChatID                int64                 `json:"chat_id"`
	Text                  string                `json:"text"`
	ParseMode             string                `json:"parse_mode,omitempty"`
	ReplyMarkup           *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
	ReplyToMessageID      int64                 `json:"reply_to_message_id,omitempty"`
	DisableWebPagePreview bool                  `json:"disable_web_page_preview,omitempty"`
}

func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	var msg Message
	if err := c.call(ctx, "sendMessage", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EditMessageTextRequest is the editMessageText payload.
type EditMessageTextRequest struct {
	ChatID      int64                 `json:"chat_id"`
	MessageID   int64                 `json:"message_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

func (c *Client) EditMessageText(ctx context.Context, req EditMessageTextRequest) error {
	return c.call(ctx, "editMessageText", req, nil)
}

// AnswerCallbackQuery stops the client's loading indicator, optionally
// showing text as a toast.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	payload := map[string]any{"callback_query_id": callbackID}
	if text != "" {
		payload["text"] = text
	}
	return c.call(ctx, "answerCallbackQuery", payload, nil)
}

// GetChat resolves "@username" or a numeric chat id.
func (c *Client) GetChat(ctx context.Context, ref string) (*Chat, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, services.Wrap(services.ErrValidation, "telegram", "getChat", "chat reference is empty", nil)
	}
	var chatID any = ref
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		chatID = id
	}
	var chat Chat
	if err := c.call(ctx, "getChat", map[string]any{"chat_id": chatID}, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// redactToken keeps the bot token out of error strings, which net/http
// includes via the request URL.
func redactToken(err error, token string) error {
	if err == nil || token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), token, "<redacted>"), cause: err}
}

type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.cause }
