package daemon_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"musicfreq/internal/config"
	"musicfreq/internal/daemon"
	"musicfreq/internal/logging"
	"musicfreq/internal/notifications"
	"musicfreq/internal/telegram"
)

type blockingPoller struct {
	started chan struct{}
	once    sync.Once
	err     error
}

func newBlockingPoller() *blockingPoller {
	return &blockingPoller{started: make(chan struct{})}
}

func (p *blockingPoller) Run(ctx context.Context) error {
	p.once.Do(func() { close(p.started) })
	if p.err != nil {
		return p.err
	}
	<-ctx.Done()
	return nil
}

type fakeBot struct {
	identifyErr error
	waited      atomic.Int32
}

func (b *fakeBot) Identify(context.Context) (*telegram.User, error) {
	if b.identifyErr != nil {
		return nil, b.identifyErr
	}
	return &telegram.User{ID: 1, Username: "freqbot"}, nil
}

func (b *fakeBot) Wait() { b.waited.Add(1) }

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (n *recordingNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) snapshot() []notifications.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifications.Event(nil), n.events...)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Telegram.BotToken = "123:abc"
	cfg.Paths.RuntimeDir = filepath.Join(base, "run")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	return &cfg
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testConfig(t)
	poller := newBlockingPoller()
	bot := &fakeBot{}
	notifier := &recordingNotifier{}

	d, err := daemon.New(cfg, poller, bot, notifier, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	<-poller.started

	status := d.Status()
	if !status.Running || status.Username != "freqbot" {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.LockFilePath != cfg.LockPath() {
		t.Fatalf("expected lock path %q, got %q", cfg.LockPath(), status.LockFilePath)
	}

	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected daemon to be stopped")
	}
	select {
	case <-d.Done():
	default:
		t.Fatal("expected poller to have exited")
	}
	if bot.waited.Load() != 1 {
		t.Fatal("expected stop to wait for in-flight analyses")
	}
	events := notifier.snapshot()
	if len(events) != 2 || events[0] != notifications.EventBotStarted || events[1] != notifications.EventBotStopped {
		t.Fatalf("unexpected notifications %v", events)
	}

	d.Stop()
}

func TestSecondInstanceIsRejected(t *testing.T) {
	cfg := testConfig(t)
	first, err := daemon.New(cfg, newBlockingPoller(), &fakeBot{}, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer first.Stop()

	second, err := daemon.New(cfg, newBlockingPoller(), &fakeBot{}, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := second.Start(context.Background()); !errors.Is(err, daemon.ErrAlreadyRunning) {
		t.Fatalf("expected already running error, got %v", err)
	}
}

func TestStartReleasesLockWhenTelegramUnreachable(t *testing.T) {
	cfg := testConfig(t)
	offline := &fakeBot{identifyErr: errors.New("dial tcp: i/o timeout")}
	d, err := daemon.New(cfg, newBlockingPoller(), offline, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("expected start to fail without telegram")
	}
	if d.Status().Running {
		t.Fatal("expected daemon not to run")
	}

	retry, _ := daemon.New(cfg, newBlockingPoller(), &fakeBot{}, nil, logging.NewNop())
	if err := retry.Start(context.Background()); err != nil {
		t.Fatalf("expected lock to be free after failed start, got %v", err)
	}
	retry.Stop()
}

func TestPollerFailureIsReported(t *testing.T) {
	cfg := testConfig(t)
	poller := newBlockingPoller()
	poller.err = errors.New("get updates: telegram getUpdates: 401 Unauthorized")
	notifier := &recordingNotifier{}

	d, err := daemon.New(cfg, poller, &fakeBot{}, notifier, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	select {
	case <-d.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected poller to exit")
	}
	if d.Err() == nil {
		t.Fatal("expected poller error to be recorded")
	}
	d.Stop()

	events := notifier.snapshot()
	if len(events) != 3 || events[1] != notifications.EventError {
		t.Fatalf("expected started, error, stopped notifications, got %v", events)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := daemon.New(nil, newBlockingPoller(), &fakeBot{}, nil, nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestSendTestNotificationWithoutTopic(t *testing.T) {
	cfg := testConfig(t)
	sent, message, err := daemon.SendTestNotification(context.Background(), cfg, nil)
	if sent || err != nil || message != "ntfy topic not configured" {
		t.Fatalf("unexpected result %v %q %v", sent, message, err)
	}
}
