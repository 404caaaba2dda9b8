package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"musicfreq/internal/config"
	"musicfreq/internal/logging"
	"musicfreq/internal/notifications"
	"musicfreq/internal/telegram"
)

// ErrAlreadyRunning reports that another process holds the instance lock.
var ErrAlreadyRunning = errors.New("another musicfreq instance is already running")

// Poller runs the update loop until its context ends.
type Poller interface {
	Run(ctx context.Context) error
}

// Bot is the handler side of the process.
type Bot interface {
	Identify(ctx context.Context) (*telegram.User, error)
	Wait()
}

// Daemon coordinates polling and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	poller   Poller
	bot      Bot
	notifier notifications.Service
	logger   *slog.Logger

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	runErr  error
	started time.Time
	botUser string
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Username     string
	StartedAt    time.Time
	LockFilePath string
	LogFilePath  string
}

// New constructs a daemon. A nil notifier disables notifications.
func New(cfg *config.Config, poller Poller, bot Bot, notifier notifications.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || poller == nil || bot == nil {
		return nil, errors.New("daemon requires config, poller, and bot")
	}
	if notifier == nil {
		notifier = notifications.NewService(nil)
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		poller:   poller,
		bot:      bot,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock, confirms the bot token and launches the
// poller in the background.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, d.lockPath)
	}

	me, err := d.bot.Identify(ctx)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("connect to telegram: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	d.mu.Lock()
	d.cancel = cancel
	d.done = done
	d.runErr = nil
	d.started = time.Now()
	d.botUser = me.Username
	d.mu.Unlock()
	d.running.Store(true)

	d.logger.Info("musicfreq daemon started",
		logging.String("lock", d.lockPath),
		logging.String("username", me.Username),
	)
	d.publish(ctx, notifications.EventBotStarted, notifications.Payload{"username": me.Username})

	go d.poll(runCtx, done)
	return nil
}

func (d *Daemon) poll(ctx context.Context, done chan struct{}) {
	defer close(done)
	err := d.poller.Run(ctx)
	if err == nil {
		return
	}
	d.mu.Lock()
	d.runErr = err
	d.mu.Unlock()
	logging.ErrorWithContext(d.logger, "polling stopped", "poller_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check telegram.bot_token and that no webhook is set"),
	)
	d.publish(context.WithoutCancel(ctx), notifications.EventError, notifications.Payload{"context": "polling", "error": err})
}

// Done is closed when the poller exits, either after Stop or on a fatal
// Bot API error. It is nil before Start.
func (d *Daemon) Done() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.done
}

// Err returns the poller's fatal error, if any.
func (d *Daemon) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runErr
}

// Stop cancels polling, waits for in-flight analyses and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.mu.Lock()
	cancel, done, started := d.cancel, d.done, d.started
	d.cancel = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	d.bot.Wait()

	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "lock_release",
			logging.Error(err),
			logging.String(logging.FieldImpact, "next start may need the lock file removed"),
		)
	}
	d.running.Store(false)

	uptime := time.Since(started)
	d.logger.Info("musicfreq daemon stopped", logging.Duration("uptime", uptime))

	ctx, cancelNotify := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelNotify()
	d.publish(ctx, notifications.EventBotStopped, notifications.Payload{"uptime": uptime})
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	status := Status{
		Running:      d.running.Load(),
		LockFilePath: d.lockPath,
		LogFilePath:  d.cfg.LogPath(),
	}
	if status.Running {
		status.Username = d.botUser
		status.StartedAt = d.started
	}
	return status
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	return SendTestNotification(ctx, d.cfg, d.notifier)
}

// SendTestNotification publishes the test event through notifier, reporting
// whether anything was sent.
func SendTestNotification(ctx context.Context, cfg *config.Config, notifier notifications.Service) (bool, string, error) {
	if cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	if err := notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

func (d *Daemon) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := d.notifier.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(d.logger, "notification failed", "notification_send",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "operator not notified"),
			logging.String(logging.FieldErrorHint, "run `musicfreq test-notify` to check ntfy settings"),
		)
	}
}
