package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"musicfreq/internal/services"
)

type recordedCall struct {
	path    string
	payload map[string]any
}

type callLog struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (l *callLog) add(c recordedCall) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, c)
}

func (l *callLog) at(i int) recordedCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[i]
}

func newTestServer(t *testing.T, handler func(method string, payload map[string]any) (int, string)) (*Client, *callLog) {
	t.Helper()
	calls := &callLog{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		payload := map[string]any{}
		_ = json.Unmarshal(body, &payload)
		calls.add(recordedCall{path: r.URL.Path, payload: payload})
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		status, resp := handler(method, payload)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{Token: "123:abc", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, calls
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient(Config{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewClientRejectsBadProxy(t *testing.T) {
	if _, err := NewClient(Config{Token: "t", ProxyURL: "http://[::1"}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for proxy, got %v", err)
	}
}

func TestGetMe(t *testing.T) {
	client, calls := newTestServer(t, func(string, map[string]any) (int, string) {
		return http.StatusOK, `{"ok":true,"result":{"id":42,"is_bot":true,"username":"freq_bot"}}`
	})
	user, err := client.GetMe(context.Background())
	if err != nil {
		t.Fatalf("GetMe: %v", err)
	}
	if user.ID != 42 || user.Username != "freq_bot" {
		t.Fatalf("unexpected user %+v", user)
	}
	if calls.at(0).path != "/bot123:abc/getMe" {
		t.Fatalf("unexpected path %q", calls.at(0).path)
	}
}

func TestGetUpdatesAdvancesOffset(t *testing.T) {
	client, calls := newTestServer(t, func(string, map[string]any) (int, string) {
		return http.StatusOK, `{"ok":true,"result":[
			{"update_id":10,"message":{"message_id":1,"chat":{"id":-5,"type":"group"},"document":{"file_id":"f","file_name":"a.mp3"}}},
			{"update_id":11,"callback_query":{"id":"cb","from":{"id":1},"data":"analyze_music:-5"}}
		]}`
	})
	updates, next, err := client.GetUpdates(context.Background(), 7, 30*time.Second)
	if err != nil {
		t.Fatalf("GetUpdates: %v", err)
	}
	if len(updates) != 2 || next != 12 {
		t.Fatalf("expected 2 updates and offset 12, got %d and %d", len(updates), next)
	}
	if updates[0].Message.Document.FileName != "a.mp3" || updates[1].CallbackQuery.Data != "analyze_music:-5" {
		t.Fatalf("unexpected decode %+v", updates)
	}
	payload := calls.at(0).payload
	if payload["offset"] != float64(7) || payload["timeout"] != float64(30) {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestGetUpdatesEmptyKeepsOffset(t *testing.T) {
	client, _ := newTestServer(t, func(string, map[string]any) (int, string) {
		return http.StatusOK, `{"ok":true,"result":[]}`
	})
	_, next, err := client.GetUpdates(context.Background(), 99, time.Second)
	if err != nil || next != 99 {
		t.Fatalf("expected offset to stay 99, got %d (%v)", next, err)
	}
}

func TestSendMessagePayload(t *testing.T) {
	client, calls := newTestServer(t, func(string, map[string]any) (int, string) {
		return http.StatusOK, `{"ok":true,"result":{"message_id":77,"chat":{"id":5}}}`
	})
	msg, err := client.SendMessage(context.Background(), SendMessageRequest{
		ChatID:      5,
		Text:        "<b>hi</b>",
		ParseMode:   "HTML",
		ReplyMarkup: SingleButton("📊 Analyze 3 Music Files", "analyze_music:5"),
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.MessageID != 77 {
		t.Fatalf("unexpected message id %d", msg.MessageID)
	}
	payload := calls.at(0).payload
	if payload["parse_mode"] != "HTML" || payload["chat_id"] != float64(5) {
		t.Fatalf("unexpected payload %v", payload)
	}
	markup, _ := json.Marshal(payload["reply_markup"])
	if !strings.Contains(string(markup), `"callback_data":"analyze_music:5"`) {
		t.Fatalf("expected callback data in markup, got %s", markup)
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	client, _ := newTestServer(t, func(method string, _ map[string]any) (int, string) {
		if method == "sendMessage" {
			return http.StatusBadRequest, `{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities: Unsupported start tag"}`
		}
		return http.StatusTooManyRequests, `{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 3","parameters":{"retry_after":3}}`
	})

	_, err := client.SendMessage(context.Background(), SendMessageRequest{ChatID: 1, Text: "<x>", ParseMode: "HTML"})
	if !IsParseError(err) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected external service marker, got %v", err)
	}

	err = client.AnswerCallbackQuery(context.Background(), "cb", "")
	delay, ok := RetryAfter(err)
	if !ok || delay != 3*time.Second {
		t.Fatalf("expected 3s retry-after, got %v %v", delay, ok)
	}
	if !errors.Is(err, services.ErrTransient) || IsParseError(err) {
		t.Fatalf("unexpected classification for %v", err)
	}
}

func TestGetChatReferences(t *testing.T) {
	client, calls := newTestServer(t, func(_ string, payload map[string]any) (int, string) {
		if payload["chat_id"] == "@missing" {
			return http.StatusBadRequest, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`
		}
		return http.StatusOK, `{"ok":true,"result":{"id":-1001,"type":"supergroup","title":"Crate Diggers"}}`
	})

	chat, err := client.GetChat(context.Background(), "-1001")
	if err != nil || chat.ID != -1001 || chat.DisplayName() != "Crate Diggers" {
		t.Fatalf("unexpected chat %+v (%v)", chat, err)
	}
	if calls.at(0).payload["chat_id"] != float64(-1001) {
		t.Fatalf("expected numeric chat id, got %v", calls.at(0).payload["chat_id"])
	}

	if _, err := client.GetChat(context.Background(), "@missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := client.GetChat(context.Background(), "  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	client, _ := newTestServer(t, func(string, map[string]any) (int, string) {
		return http.StatusBadGateway, "upstream down"
	})
	err := client.DeleteWebhook(context.Background(), true)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusBadGateway {
		t.Fatalf("expected APIError 502, got %v", err)
	}
	if !services.Retryable(err) {
		t.Fatal("expected 502 to be retryable")
	}
}

func TestTransportErrorRedactsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client, err := NewClient(Config{Token: "secret-token", BaseURL: baseURL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.GetMe(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Fatalf("token leaked into error: %v", err)
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}
