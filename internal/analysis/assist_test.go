package analysis

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"musicfreq/internal/logging"
	"musicfreq/internal/summary"
)

type fakeSummarizer struct {
	calls   atomic.Int32
	delay   time.Duration
	outcome summary.Outcome
	lastReq summary.Request
}

func (f *fakeSummarizer) Summarize(ctx context.Context, req summary.Request) summary.Outcome {
	f.calls.Add(1)
	f.lastReq = req
	if f.delay > 0 {
		// Ignores ctx on purpose to exercise the abandon path.
		time.Sleep(f.delay)
	}
	return f.outcome
}

func (f *fakeSummarizer) HealthCheck(context.Context) error { return nil }

func (f *fakeSummarizer) Describe() string { return "fake/model" }

func TestAnalyzeWithAssistReturnsSummaryText(t *testing.T) {
	fake := &fakeSummarizer{outcome: summary.Outcome{Text: "Most played: A"}}
	a := NewAnalyzer(fake, logging.NewNop())

	got := a.AnalyzeWithAssist(context.Background(), names("A", "B", "A"))
	if got != "Most played: A" {
		t.Fatalf("expected summarizer text verbatim, got %q", got)
	}
	if fake.lastReq.System != SystemPrompt {
		t.Fatalf("unexpected system prompt %q", fake.lastReq.System)
	}
	if !strings.HasSuffix(fake.lastReq.Prompt, "\n\nA - 2\nB - 1") {
		t.Fatalf("unexpected user prompt %q", fake.lastReq.Prompt)
	}
	if fake.lastReq.MaxTokens != DefaultMaxTokens {
		t.Fatalf("expected max tokens %d, got %d", DefaultMaxTokens, fake.lastReq.MaxTokens)
	}
}

func TestAnalyzeWithAssistFallsBackOnError(t *testing.T) {
	log := names("A", "B", "A")
	fake := &fakeSummarizer{outcome: summary.Outcome{Failure: summary.FailureAuth, Err: errors.New("401")}}
	a := NewAnalyzer(fake, logging.NewNop())

	if got := a.AnalyzeWithAssist(context.Background(), log); got != Analyze(log).Render() {
		t.Fatalf("expected local render on failure, got %q", got)
	}
}

func TestAnalyzeWithAssistFallsBackOnBlankText(t *testing.T) {
	log := names("A")
	fake := &fakeSummarizer{outcome: summary.Outcome{Text: "   "}}
	a := NewAnalyzer(fake, logging.NewNop())

	if got := a.AnalyzeWithAssist(context.Background(), log); got != Analyze(log).Render() {
		t.Fatalf("expected local render for blank summary, got %q", got)
	}
}

func TestAnalyzeWithAssistAbandonsSlowSummarizer(t *testing.T) {
	log := names("A", "B")
	fake := &fakeSummarizer{delay: 500 * time.Millisecond, outcome: summary.Outcome{Text: "late"}}
	a := NewAnalyzer(fake, logging.NewNop(), WithTimeout(20*time.Millisecond))

	started := time.Now()
	got := a.AnalyzeWithAssist(context.Background(), log)
	if elapsed := time.Since(started); elapsed > 400*time.Millisecond {
		t.Fatalf("expected call to be abandoned at the deadline, took %s", elapsed)
	}
	if got != Analyze(log).Render() {
		t.Fatalf("expected local render on timeout, got %q", got)
	}
}

func TestAnalyzeWithAssistSkipsEmptyLog(t *testing.T) {
	fake := &fakeSummarizer{outcome: summary.Outcome{Text: "should not be used"}}
	a := NewAnalyzer(fake, logging.NewNop())

	got := a.AnalyzeWithAssist(context.Background(), nil)
	if fake.calls.Load() != 0 {
		t.Fatal("expected no summarizer call for an empty log")
	}
	if got != Analyze(nil).Render() {
		t.Fatalf("unexpected render %q", got)
	}
}

func TestAnalyzeWithAssistDisabled(t *testing.T) {
	log := names("A")
	fake := &fakeSummarizer{outcome: summary.Outcome{Text: "ignored"}}
	a := NewAnalyzer(fake, logging.NewNop(), WithAssist(false))

	if got := a.AnalyzeWithAssist(context.Background(), log); got != Analyze(log).Render() {
		t.Fatalf("expected local render when assist disabled, got %q", got)
	}
	if fake.calls.Load() != 0 {
		t.Fatal("expected no summarizer call when disabled")
	}
}

func TestAnalyzeWithAssistUnconfigured(t *testing.T) {
	log := names("A", "A")
	a := NewAnalyzer(nil, logging.NewNop(), WithMaxTokens(50))
	if got := a.AnalyzeWithAssist(context.Background(), log); got != Analyze(log).Render() {
		t.Fatalf("expected local render without a summarizer, got %q", got)
	}
	if a.Request(log).MaxTokens != 50 {
		t.Fatal("expected max tokens option to apply")
	}
}

func TestSummarizeReportsFallback(t *testing.T) {
	fake := &fakeSummarizer{outcome: summary.Outcome{Failure: summary.FailureQuota, Err: errors.New("429")}}
	a := NewAnalyzer(fake, logging.NewNop())
	if text, ok := a.Summarize(context.Background(), names("A")); ok || text != "" {
		t.Fatalf("expected no summary on failure, got %q %v", text, ok)
	}

	fake.outcome = summary.Outcome{Text: "insight"}
	if text, ok := a.Summarize(context.Background(), names("A")); !ok || text != "insight" {
		t.Fatalf("expected summary text, got %q %v", text, ok)
	}
}
