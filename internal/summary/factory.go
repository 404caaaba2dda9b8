package summary

import (
	"fmt"

	"musicfreq/internal/config"
	"musicfreq/internal/services/anthropic"
	"musicfreq/internal/services/llm"
)

// New builds the Summarizer for the configured provider. Missing credentials
// yield Unconfigured rather than an error so the bot can still answer with
// the local report.
func New(cfg config.LLMConfig) Summarizer {
	if cfg.APIKey == "" {
		return Unconfigured{Reason: fmt.Sprintf("no api key configured for provider %q", cfg.Provider)}
	}
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return NewProvider(config.ProviderAnthropic, anthropic.NewClient(anthropic.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			TimeoutSeconds: cfg.TimeoutSeconds,
			RetryAttempts:  cfg.RetryAttempts,
		}))
	case config.ProviderOpenAI, "":
		return NewProvider(config.ProviderOpenAI, llm.NewClient(llm.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			Referer:        cfg.Referer,
			Title:          cfg.Title,
			TimeoutSeconds: cfg.TimeoutSeconds,
		}, llm.WithRetryMaxAttempts(cfg.RetryAttempts)))
	default:
		return Unconfigured{Reason: fmt.Sprintf("unsupported provider %q", cfg.Provider)}
	}
}
