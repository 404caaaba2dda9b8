package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Telegram contains Bot API connection settings.
type Telegram struct {
	BotToken              string `toml:"bot_token"`
	BaseURL               string `toml:"base_url"`
	ProxyURL              string `toml:"proxy_url"`
	PollTimeoutSeconds    int    `toml:"poll_timeout_seconds"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// LLM contains the summarizer connection settings.
type LLM struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxTokens      int    `toml:"max_tokens"`
	RetryAttempts  int    `toml:"retry_attempts"`
}

// Analysis controls how frequency reports are produced.
type Analysis struct {
	AssistEnabled        bool `toml:"assist_enabled"`
	AssistTimeoutSeconds int  `toml:"assist_timeout_seconds"`
}

// Paths contains runtime and log directories.
type Paths struct {
	RuntimeDir string `toml:"runtime_dir"`
	LogDir     string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Lifecycle      bool   `toml:"lifecycle"`
	Errors         bool   `toml:"errors"`
}

// Config encapsulates all configuration values for musicfreq.
//
// Configuration sections by subsystem:
//   - Telegram: bot token, API endpoint, proxy, and polling timeouts
//   - LLM: summarizer provider and credentials
//   - Analysis: assisted summary toggle and deadline
//   - Paths: runtime directory (lock file) and log directory
//   - Logging: log format and level
//   - Notifications: ntfy push notification settings
type Config struct {
	Telegram      Telegram      `toml:"telegram"`
	LLM           LLM           `toml:"llm"`
	Analysis      Analysis      `toml:"analysis"`
	Paths         Paths         `toml:"paths"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPathValue)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A `.env` file next to the config file or in the
// working directory is loaded first; it never overrides variables already set.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if err := loadDotEnv(filepath.Dir(resolvedPath)); err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigFileName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// loadDotEnv reads .env files from the config directory and the working
// directory. Missing files are ignored.
func loadDotEnv(configDir string) error {
	candidates := []string{filepath.Join(configDir, dotEnvFileName)}
	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, dotEnvFileName)
		if local != candidates[0] {
			candidates = append(candidates, local)
		}
	}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if err := godotenv.Load(candidate); err != nil {
			return fmt.Errorf("load %s: %w", candidate, err)
		}
	}
	return nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.RuntimeDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RequireTelegram reports whether the bot token needed by `run` and
// `nettest` is present.
func (c *Config) RequireTelegram() error {
	if strings.TrimSpace(c.Telegram.BotToken) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPathValue
	}
	return fmt.Errorf("telegram.bot_token is required. Set BOT_TOKEN env var, add it to .env, or edit %s (create with 'musicfreq config init')", defaultPath)
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.RuntimeDir, lockFileName)
}

// LogPath returns the log file location, or "" when file logging is disabled.
func (c *Config) LogPath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, logFileName)
}

// AssistTimeout bounds a single assisted-summary call.
func (c *Config) AssistTimeout() time.Duration {
	return time.Duration(c.Analysis.AssistTimeoutSeconds) * time.Second
}

// PollTimeout is the long-poll duration requested from the Bot API.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.Telegram.PollTimeoutSeconds) * time.Second
}

// RequestTimeout bounds each HTTP request to the Bot API.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Telegram.RequestTimeoutSeconds) * time.Second
}

// HasProxy reports whether Bot API traffic goes through a proxy.
func (c *Config) HasProxy() bool {
	return strings.TrimSpace(c.Telegram.ProxyURL) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the resolved summarizer settings.
type LLMConfig struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	MaxTokens      int
	RetryAttempts  int
}

// GetLLM returns the summarizer connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:       strings.TrimSpace(c.LLM.Provider),
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
		MaxTokens:      c.LLM.MaxTokens,
		RetryAttempts:  c.LLM.RetryAttempts,
	}
}

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	c.Telegram.BotToken = redact(c.Telegram.BotToken)
	c.LLM.APIKey = redact(c.LLM.APIKey)
	c.Telegram.ProxyURL = redactProxy(c.Telegram.ProxyURL)
	return c
}

func redact(secret string) string {
	secret = strings.TrimSpace(secret)
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return "********"
	default:
		return secret[:4] + "…" + secret[len(secret)-2:]
	}
}
