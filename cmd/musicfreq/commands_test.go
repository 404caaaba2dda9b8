package main

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestAnalyzeTextFromStdin(t *testing.T) {
	env := setupCLITestEnv(t, "")

	out, _, err := runCLI(t, []string{"analyze", "--format", "text"}, env.configPath, "Song A\nSong B\r\n\n  \nSong A\n")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, out, "Most Popular Tracks:\n1. Song A - 2 plays\n2. Song B - 1 plays\n")
	requireContains(t, out, "Total: 2 unique tracks found")
	requireNotContains(t, out, "<b>")
}

func TestAnalyzeTableFromFile(t *testing.T) {
	env := setupCLITestEnv(t, "")
	var lines []string
	for i := 0; i < 25; i++ {
		lines = append(lines, fmt.Sprintf("Track %02d", i))
	}
	lines = append(lines, "Track 07")
	logPath := filepath.Join(env.baseDir, "tracks.txt")
	if err := os.WriteFile(logPath, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCLI(t, []string{"analyze", "--format", "table", logPath}, env.configPath, "")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, strings.ToUpper(out), "PLAYS")
	requireContains(t, out, "Track 07")
	requireContains(t, out, "...and 5 more tracks")
	requireContains(t, out, "Total: 25 unique tracks found")
}

func TestAnalyzeAutoFormatFallsBackToTextOffTerminal(t *testing.T) {
	env := setupCLITestEnv(t, "")

	out, _, err := runCLI(t, []string{"analyze"}, env.configPath, "x\n")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, out, "1. x - 1 plays")
}

func TestAnalyzeEmptyInput(t *testing.T) {
	env := setupCLITestEnv(t, "")

	out, _, err := runCLI(t, []string{"analyze", "-"}, env.configPath, "\n\n")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, out, "No tracks to analyze")
}

func TestAnalyzeRejectsUnknownFormat(t *testing.T) {
	env := setupCLITestEnv(t, "")

	_, _, err := runCLI(t, []string{"analyze", "--format", "xml"}, env.configPath, "x\n")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	env := setupCLITestEnv(t, "")

	_, _, err := runCLI(t, []string{"analyze", filepath.Join(env.baseDir, "missing.txt")}, env.configPath, "")
	if err == nil || !strings.Contains(err.Error(), "open track log") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestAnalyzeAssistWithoutKeyUsesLocalReport(t *testing.T) {
	env := setupCLITestEnv(t, "[logging]\nlevel = \"error\"\n")

	out, errOut, err := runCLI(t, []string{"analyze", "--assist", "--format", "text"}, env.configPath, "a\nb\na\n")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, errOut, "Assisted summary unavailable")
	requireContains(t, out, "1. a - 2 plays")
}

func TestNetTestWithoutTokenFails(t *testing.T) {
	env := setupCLITestEnv(t, "")

	out, _, err := runCLI(t, []string{"nettest"}, env.configPath, "")
	if err == nil || !strings.Contains(err.Error(), "network test failed") {
		t.Fatalf("expected network test failure, got %v", err)
	}
	requireContains(t, out, "== Network Test ==")
	requireContains(t, out, "Telegram API:")
	requireContains(t, out, "[ERROR]")
	requireContains(t, out, "[WARN] not configured")
	requireContains(t, out, "Troubleshooting Telegram connection:")
	requireContains(t, out, "Check DNS settings")
	requireNotContains(t, out, "Troubleshooting LLM connection")
}

func TestNetTestReachesBotAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/getMe") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Freq","username":"freq_bot"}}`)
	}))
	defer server.Close()

	env := setupCLITestEnv(t, fmt.Sprintf("[telegram]\nbot_token = \"123:abc\"\nbase_url = %q\n", server.URL))

	out, _, err := runCLI(t, []string{"nettest"}, env.configPath, "")
	if err != nil {
		t.Fatalf("nettest: %v\n%s", err, out)
	}
	requireContains(t, out, "[OK] connected in")
	requireNotContains(t, out, "Troubleshooting")
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t, "")

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath, "")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "ntfy topic not configured")
}

func TestTestNotifyPostsToTopic(t *testing.T) {
	var (
		mu    sync.Mutex
		title string
		body  string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		title = r.Header.Get("Title")
		body = string(data)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	env := setupCLITestEnv(t, fmt.Sprintf("[notifications]\nntfy_topic = %q\n", server.URL+"/musicfreq"))

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath, "")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "test notification sent")
	mu.Lock()
	defer mu.Unlock()
	if title != "musicfreq - Test" {
		t.Fatalf("unexpected title %q", title)
	}
	requireContains(t, body, "Notification system test")
}

func TestRunRequiresBotToken(t *testing.T) {
	env := setupCLITestEnv(t, "")

	_, _, err := runCLI(t, []string{"run"}, env.configPath, "")
	if err == nil || !strings.Contains(err.Error(), "telegram.bot_token is required") {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestLogsPrintsTrailingLines(t *testing.T) {
	env := setupCLITestEnv(t, "")
	logDir := filepath.Join(env.baseDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}
	if err := os.WriteFile(filepath.Join(logDir, "musicfreq.log"), []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "-n", "2"}, env.configPath, "")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if out != "two\nthree\n" {
		t.Fatalf("unexpected output %q", out)
	}
}
