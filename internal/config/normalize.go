package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTelegram()
	c.normalizeLLM()
	c.normalizeAnalysis()
	c.normalizeLogging()
	c.normalizeNotifications()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.RuntimeDir) == "" {
		c.Paths.RuntimeDir = defaultRuntimeDir
	}
	if c.Paths.RuntimeDir, err = expandPath(strings.TrimSpace(c.Paths.RuntimeDir)); err != nil {
		return fmt.Errorf("paths.runtime_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTelegram() {
	c.Telegram.BotToken = strings.TrimSpace(c.Telegram.BotToken)
	if c.Telegram.BotToken == "" || c.Telegram.BotToken == sampleBotToken {
		c.Telegram.BotToken = firstEnv("BOT_TOKEN", "TELEGRAM_BOT_TOKEN")
	}
	c.Telegram.ProxyURL = strings.TrimSpace(c.Telegram.ProxyURL)
	if c.Telegram.ProxyURL == "" {
		c.Telegram.ProxyURL = firstEnv("PROXY_URL")
	}
	c.Telegram.BaseURL = strings.TrimRight(strings.TrimSpace(c.Telegram.BaseURL), "/")
	if c.Telegram.BaseURL == "" {
		c.Telegram.BaseURL = defaultTelegramBaseURL
	}
	if c.Telegram.PollTimeoutSeconds <= 0 {
		c.Telegram.PollTimeoutSeconds = defaultPollTimeoutSeconds
	}
	if c.Telegram.RequestTimeoutSeconds <= 0 {
		c.Telegram.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case ProviderOpenAI:
			c.LLM.APIKey = firstEnv("OPENAI_API_KEY", "LLM_API_KEY")
		case ProviderAnthropic:
			c.LLM.APIKey = firstEnv("ANTHROPIC_API_KEY", "LLM_API_KEY")
		default:
			c.LLM.APIKey = firstEnv("LLM_API_KEY")
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = defaultOpenAIBaseURL
		}
		if c.LLM.Model == "" {
			c.LLM.Model = defaultOpenAIModel
		}
	case ProviderAnthropic:
		// An empty base URL keeps the SDK default endpoint.
		if c.LLM.Model == "" {
			c.LLM.Model = defaultAnthropicModel
		}
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = defaultLLMMaxTokens
	}
	if c.LLM.RetryAttempts <= 0 {
		c.LLM.RetryAttempts = defaultLLMRetryAttempts
	}
}

func (c *Config) normalizeAnalysis() {
	if c.Analysis.AssistTimeoutSeconds == 0 {
		c.Analysis.AssistTimeoutSeconds = defaultAssistTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func redactProxy(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.User == nil {
		return raw
	}
	parsed.User = url.User(parsed.User.Username())
	return parsed.String()
}
