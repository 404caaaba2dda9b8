package config

const (
	defaultRuntimeDir             = "~/.local/state/musicfreq"
	defaultLogDir                 = "~/.local/share/musicfreq/logs"
	defaultTelegramBaseURL        = "https://api.telegram.org"
	defaultPollTimeoutSeconds     = 30
	defaultRequestTimeoutSeconds  = 45
	defaultLLMProvider            = ProviderOpenAI
	defaultOpenAIBaseURL          = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel            = "gpt-4o-mini"
	defaultAnthropicModel         = "claude-3-5-haiku-latest"
	defaultLLMReferer             = "https://github.com/musicfreq/musicfreq"
	defaultLLMTitle               = "Music Frequency Bot"
	defaultLLMTimeoutSeconds      = 60
	defaultLLMMaxTokens           = 1000
	defaultLLMRetryAttempts       = 3
	defaultAssistTimeoutSeconds   = 20
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultNotifyRequestTimeout   = 10
	defaultConfigPathValue        = "~/.config/musicfreq/config.toml"
	projectConfigFileName         = "musicfreq.toml"
	dotEnvFileName                = ".env"
	lockFileName                  = "musicfreq.lock"
	logFileName                   = "musicfreq.log"
	minimumAssistTimeoutSeconds   = 1
	defaultNotifyLifecycleEnabled = true
	defaultNotifyErrorsEnabled    = true
	sampleBotToken                = "your_telegram_bot_token_here"
)

// Supported summarizer providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Telegram: Telegram{
			BaseURL:               defaultTelegramBaseURL,
			PollTimeoutSeconds:    defaultPollTimeoutSeconds,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		LLM: LLM{
			Provider:       defaultLLMProvider,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			MaxTokens:      defaultLLMMaxTokens,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		Analysis: Analysis{
			AssistEnabled:        true,
			AssistTimeoutSeconds: defaultAssistTimeoutSeconds,
		},
		Paths: Paths{
			RuntimeDir: defaultRuntimeDir,
			LogDir:     defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Lifecycle:      defaultNotifyLifecycleEnabled,
			Errors:         defaultNotifyErrorsEnabled,
		},
	}
}
