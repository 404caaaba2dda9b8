package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"musicfreq/internal/services"
)

func writeCompletion(t *testing.T, w http.ResponseWriter, choice map[string]any) {
	t.Helper()
	payload := map[string]any{"choices": []any{choice}}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestClientCompleteSendsPromptsAndLimit(t *testing.T) {
	var got chatRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeCompletion(t, w, map[string]any{
			"message": map[string]any{"content": "  1. a.mp3 - 3 plays\n"},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	text, err := client.Complete(context.Background(), "system text", "user text", 1000)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if text != "1. a.mp3 - 3 plays" {
		t.Fatalf("unexpected completion %q", text)
	}
	if auth != "Bearer test" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if got.Model != "gpt-4o-mini" {
		t.Fatalf("expected default model, got %q", got.Model)
	}
	if got.MaxTokens != 1000 {
		t.Fatalf("expected max_tokens 1000, got %d", got.MaxTokens)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "user text" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
	if got.Temperature != summaryTemperature {
		t.Fatalf("unexpected temperature %v", got.Temperature)
	}
}

func TestClientCompleteRequiresInputs(t *testing.T) {
	client := NewClient(Config{APIKey: "test", BaseURL: "http://127.0.0.1:1"})
	if _, err := client.Complete(context.Background(), "", "user", 10); err == nil {
		t.Fatal("expected error for missing system prompt")
	}
	if _, err := client.Complete(context.Background(), "system", " ", 10); err == nil {
		t.Fatal("expected error for missing user prompt")
	}
	unkeyed := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := unkeyed.Complete(context.Background(), "system", "user", 10); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing api key, got %v", err)
	}
	if err := unkeyed.HealthCheck(context.Background()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error from health check, got %v", err)
	}
}

func TestClientHealthCheckSendsGreeting(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeCompletion(t, w, map[string]any{
			"finish_reason": "length",
			"message":       map[string]any{"content": ""},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
	if got.MaxTokens != pingMaxTokens || got.Model != "demo-model" {
		t.Fatalf("unexpected ping request %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[1].Content != "Hello" {
		t.Fatalf("unexpected ping messages %+v", got.Messages)
	}
}

func TestClientHealthCheckFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"})
	err := client.HealthCheck(context.Background())
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 status error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("health check must not retry, got %d calls", calls.Load())
	}
}

func TestClientEmptyContentHasSnippet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(t, w, map[string]any{
			"finish_reason": "length",
			"message":       map[string]any{"content": ""},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL}, WithRetryMaxAttempts(1))
	_, err := client.Complete(context.Background(), "system", "user", 10)
	var emptyErr *EmptyContentError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected EmptyContentError, got %v", err)
	}
	if emptyErr.FinishReason != "length" {
		t.Fatalf("unexpected finish reason %q", emptyErr.FinishReason)
	}
	if !strings.Contains(emptyErr.Snippet, "choices") {
		t.Fatalf("expected response snippet, got %q", emptyErr.Snippet)
	}
}

func TestClientDeltaAndLegacyText(t *testing.T) {
	for name, choice := range map[string]map[string]any{
		"delta":  {"delta": map[string]any{"content": "from delta"}},
		"legacy": {"text": "from text"},
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeCompletion(t, w, choice)
			}))
			defer server.Close()

			client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
			text, err := client.Complete(context.Background(), "system", "user", 0)
			if err != nil {
				t.Fatalf("Complete returned error: %v", err)
			}
			if !strings.HasPrefix(text, "from ") {
				t.Fatalf("unexpected text %q", text)
			}
		})
	}
}

func TestClientRetriesOnHTTP429(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limited"})
			return
		}
		writeCompletion(t, w, map[string]any{"message": map[string]any{"content": "summary"}})
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(0, 10*time.Second),
		WithRetryMaxAttempts(5),
	)
	text, err := client.Complete(context.Background(), "system", "user", 100)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if text != "summary" {
		t.Fatalf("unexpected text %q", text)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s, got %v", slept)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL}, WithSleeper(func(time.Duration) {}))
	if _, err := client.Complete(context.Background(), "system", "user", 10); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestClientRetriesOnEmptyContentThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := ""
		if calls.Add(1) >= 3 {
			content = "ranked list"
		}
		writeCompletion(t, w, map[string]any{
			"finish_reason": "stop",
			"message":       map[string]any{"content": content},
		})
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithRetryBackoff(0, 0),
		WithSleeper(func(time.Duration) {}),
		WithRetryMaxAttempts(5),
	)
	text, err := client.Complete(context.Background(), "system", "user", 100)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if text != "ranked list" || calls.Load() != 3 {
		t.Fatalf("unexpected result %q after %d calls", text, calls.Load())
	}
}

func TestClientStopsOnContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Complete(ctx, "system", "user", 10)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("expected the call to be abandoned promptly")
	}
}

func TestRetryPolicyBackoff(t *testing.T) {
	policy := retryPolicy{base: time.Second, max: 5 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, expected := range want {
		if got := policy.backoff(i + 1); got != expected {
			t.Fatalf("attempt %d: backoff %s, want %s", i+1, got, expected)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter("7"); got != 7*time.Second {
		t.Fatalf("seconds form: got %s", got)
	}
	if got := parseRetryAfter("soon"); got != 0 {
		t.Fatalf("garbage should be ignored, got %s", got)
	}
	future := time.Now().Add(30 * time.Second).UTC().Format(http.TimeFormat)
	if got := parseRetryAfter(future); got <= 0 || got > 30*time.Second {
		t.Fatalf("date form: got %s", got)
	}
}
