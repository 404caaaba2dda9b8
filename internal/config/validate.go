package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. A missing bot token is not a
// validation error; see RequireTelegram.
func (c *Config) Validate() error {
	if err := c.validateTelegram(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTelegram() error {
	if err := ensurePositiveMap(map[string]int{
		"telegram.poll_timeout_seconds":    c.Telegram.PollTimeoutSeconds,
		"telegram.request_timeout_seconds": c.Telegram.RequestTimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Telegram.RequestTimeoutSeconds <= c.Telegram.PollTimeoutSeconds {
		return errors.New("telegram.request_timeout_seconds must be greater than telegram.poll_timeout_seconds")
	}
	if _, err := url.ParseRequestURI(c.Telegram.BaseURL); err != nil {
		return fmt.Errorf("telegram.base_url: %w", err)
	}
	if c.Telegram.ProxyURL != "" {
		parsed, err := url.Parse(c.Telegram.ProxyURL)
		if err != nil {
			return fmt.Errorf("telegram.proxy_url: %w", err)
		}
		switch strings.ToLower(parsed.Scheme) {
		case "http", "https", "socks5":
		default:
			return fmt.Errorf("telegram.proxy_url: unsupported scheme %q (use http, https, or socks5)", parsed.Scheme)
		}
		if parsed.Host == "" {
			return errors.New("telegram.proxy_url: missing host")
		}
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("llm.provider: unsupported value %q (use %s or %s)", c.LLM.Provider, ProviderOpenAI, ProviderAnthropic)
	}
	return ensurePositiveMap(map[string]int{
		"llm.timeout_seconds": c.LLM.TimeoutSeconds,
		"llm.max_tokens":      c.LLM.MaxTokens,
		"llm.retry_attempts":  c.LLM.RetryAttempts,
	})
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.AssistTimeoutSeconds < minimumAssistTimeoutSeconds {
		return fmt.Errorf("analysis.assist_timeout_seconds must be at least %d", minimumAssistTimeoutSeconds)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	if c.Notifications.NtfyTopic != "" {
		if _, err := url.ParseRequestURI(c.Notifications.NtfyTopic); err != nil {
			return fmt.Errorf("notifications.ntfy_topic must be a full URL: %w", err)
		}
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
