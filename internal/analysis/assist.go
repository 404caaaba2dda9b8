package analysis

import (
	"context"
	"log/slog"
	"time"

	"musicfreq/internal/classify"
	"musicfreq/internal/logging"
	"musicfreq/internal/summary"
)

const (
	// SystemPrompt instructs the summarizer.
	SystemPrompt = "You are a music analysis assistant. Sort the provided list by frequency and provide insights about the most popular music."

	userPromptPrefix = "Sort this list of music by frequency and provide a concise analysis:\n\n"

	DefaultMaxTokens     = 1000
	DefaultAssistTimeout = 20 * time.Second
)

// Analyzer produces the chat-facing report, asking the summarizer first and
// falling back to the local render.
type Analyzer struct {
	summarizer summary.Summarizer
	timeout    time.Duration
	maxTokens  int
	enabled    bool
	logger     *slog.Logger
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithTimeout bounds each summarizer call.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Analyzer) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

// WithMaxTokens overrides the completion limit.
func WithMaxTokens(maxTokens int) Option {
	return func(a *Analyzer) {
		if maxTokens > 0 {
			a.maxTokens = maxTokens
		}
	}
}

// WithAssist toggles the summarizer. Disabled analyzers always render locally.
func WithAssist(enabled bool) Option {
	return func(a *Analyzer) {
		a.enabled = enabled
	}
}

// NewAnalyzer builds an Analyzer. A nil summarizer behaves as unconfigured.
func NewAnalyzer(s summary.Summarizer, logger *slog.Logger, opts ...Option) *Analyzer {
	if s == nil {
		s = summary.Unconfigured{}
	}
	a := &Analyzer{
		summarizer: s,
		timeout:    DefaultAssistTimeout,
		maxTokens:  DefaultMaxTokens,
		enabled:    true,
		logger:     logging.NewComponentLogger(logger, "analysis"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Request builds the summarizer request for a log.
func (a *Analyzer) Request(log []classify.TrackName) summary.Request {
	return summary.Request{
		System:    SystemPrompt,
		Prompt:    userPromptPrefix + FrequencyList(Rank(BuildFrequencyTable(log))),
		MaxTokens: a.maxTokens,
	}
}

// AnalyzeWithAssist returns the summarizer's text when it succeeds within the
// timeout, and the local render otherwise. It never returns an error; failures
// are logged.
func (a *Analyzer) AnalyzeWithAssist(ctx context.Context, log []classify.TrackName) string {
	if text, ok := a.Summarize(ctx, log); ok {
		return text
	}
	return Analyze(log).Render()
}

// Summarize asks the summarizer for a report. It returns false, after logging
// why, when assist is disabled, the log is empty or the call fails.
func (a *Analyzer) Summarize(ctx context.Context, log []classify.TrackName) (string, bool) {
	logger := logging.WithContext(ctx, a.logger)
	if !a.enabled || len(log) == 0 {
		logger.Debug("rendering local report",
			logging.Bool("assist_enabled", a.enabled),
			logging.Int("entries", len(log)),
		)
		return "", false
	}

	started := time.Now()
	outcome := a.summarize(ctx, a.Request(log))
	elapsed := time.Since(started)

	switch outcome.Failure {
	case summary.FailureNone:
		if outcome.OK() {
			logger.Info("assisted analysis complete",
				logging.String("provider", a.summarizer.Describe()),
				logging.Int("entries", len(log)),
				logging.Duration("elapsed", elapsed),
			)
			return outcome.Text, true
		}
		logging.WarnWithContext(logger, "summarizer returned no text; using local report", "assist_fallback",
			logging.String("reason", summary.FailureMalformed.String()),
			logging.String(logging.FieldImpact, "local frequency report sent"),
		)
	case summary.FailureUnconfigured:
		logger.Debug("summarizer not configured; using local report", logging.Error(outcome.Err))
	default:
		logging.WarnWithContext(logger, "summarizer failed; using local report", "assist_fallback",
			logging.String("reason", outcome.Failure.String()),
			logging.String("provider", a.summarizer.Describe()),
			logging.Duration("elapsed", elapsed),
			logging.Error(outcome.Err),
			logging.String(logging.FieldImpact, "local frequency report sent"),
			logging.String(logging.FieldErrorHint, "run `musicfreq nettest` to check LLM reachability"),
		)
	}
	return "", false
}

// summarize runs the call on its own goroutine so a summarizer that ignores
// its context is still abandoned at the deadline.
func (a *Analyzer) summarize(ctx context.Context, req summary.Request) summary.Outcome {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan summary.Outcome, 1)
	go func() {
		done <- a.summarizer.Summarize(ctx, req)
	}()

	select {
	case outcome := <-done:
		return outcome
	case <-ctx.Done():
		return summary.Outcome{Failure: summary.FailureTimeout, Err: ctx.Err()}
	}
}
