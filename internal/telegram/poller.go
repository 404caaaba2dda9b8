package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"musicfreq/internal/logging"
	"musicfreq/internal/services"
)

const (
	defaultPollTimeout = 30 * time.Second
	minPollBackoff     = time.Second
	maxPollBackoff     = 30 * time.Second
)

// Handler processes one update. Updates arrive one at a time in server order.
type Handler interface {
	HandleUpdate(ctx context.Context, update Update)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, update Update)

func (f HandlerFunc) HandleUpdate(ctx context.Context, update Update) { f(ctx, update) }

// UpdateSource is the slice of the Bot API the poller needs.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, int64, error)
	DeleteWebhook(ctx context.Context, dropPending bool) error
}

// Poller drives the long-poll loop.
type Poller struct {
	source      UpdateSource
	handler     Handler
	logger      *slog.Logger
	timeout     time.Duration
	minBackoff  time.Duration
	maxBackoff  time.Duration
	dropPending bool
	sleeper     func(time.Duration)
}

// PollerOption customizes a Poller.
type PollerOption func(*Poller)

// WithPollTimeout sets the server-side long-poll timeout.
func WithPollTimeout(timeout time.Duration) PollerOption {
	return func(p *Poller) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithPollBackoff overrides the transport error backoff bounds.
func WithPollBackoff(minDelay, maxDelay time.Duration) PollerOption {
	return func(p *Poller) {
		if minDelay > 0 {
			p.minBackoff = minDelay
		}
		if maxDelay >= p.minBackoff {
			p.maxBackoff = maxDelay
		}
	}
}

// WithDropPending controls whether updates queued while offline are discarded
// on start. Defaults to true.
func WithDropPending(drop bool) PollerOption {
	return func(p *Poller) {
		p.dropPending = drop
	}
}

// WithPollSleeper overrides how backoff sleeps are performed (useful for tests).
func WithPollSleeper(sleeper func(time.Duration)) PollerOption {
	return func(p *Poller) {
		p.sleeper = sleeper
	}
}

// NewPoller constructs a poller that feeds handler.
func NewPoller(source UpdateSource, handler Handler, logger *slog.Logger, opts ...PollerOption) *Poller {
	p := &Poller{
		source:      source,
		handler:     handler,
		logger:      logging.NewComponentLogger(logger, "poller"),
		timeout:     defaultPollTimeout,
		minBackoff:  minPollBackoff,
		maxBackoff:  maxPollBackoff,
		dropPending: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until ctx is cancelled (returning nil) or the Bot API reports a
// permanent failure such as a revoked token.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.source.DeleteWebhook(ctx, p.dropPending); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		if !services.Retryable(err) {
			return fmt.Errorf("delete webhook: %w", err)
		}
		logging.WarnWithContext(p.logger, "delete webhook failed; continuing with polling", "telegram_webhook",
			logging.Error(err),
			logging.String(logging.FieldImpact, "updates queued while offline may be replayed"),
		)
	} else {
		p.logger.Info("webhook cleared", logging.Bool("dropped_pending", p.dropPending))
	}

	var offset int64
	backoff := p.minBackoff
	for {
		if ctx.Err() != nil {
			p.logger.Info("poller stopped")
			return nil
		}

		updates, next, err := p.source.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("poller stopped")
				return nil
			}
			if !services.Retryable(err) {
				return fmt.Errorf("get updates: %w", err)
			}
			delay := backoff
			if retryAfter, ok := RetryAfter(err); ok {
				delay = retryAfter
			} else {
				backoff = min(backoff*2, p.maxBackoff)
			}
			hint := "check network access to the Bot API or the configured proxy"
			if IsConflict(err) {
				hint = "another process or a webhook is consuming this bot's updates"
			}
			logging.WarnWithContext(p.logger, "get updates failed; backing off", "telegram_poll",
				logging.Error(err),
				logging.Duration("delay", delay),
				logging.String(logging.FieldErrorHint, hint),
				logging.String(logging.FieldImpact, "updates delayed until the Bot API is reachable"),
			)
			if err := p.sleep(ctx, delay); err != nil {
				p.logger.Info("poller stopped")
				return nil
			}
			continue
		}

		backoff = p.minBackoff
		offset = next
		for _, update := range updates {
			p.dispatch(ctx, update)
		}
	}
}

// dispatch isolates handler panics so one bad update cannot stop polling.
func (p *Poller) dispatch(ctx context.Context, update Update) {
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(p.logger, "update handler panicked", "update_panic",
				logging.Int64(logging.FieldUpdateID, update.UpdateID),
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
			)
		}
	}()
	p.handler.HandleUpdate(ctx, update)
}

func (p *Poller) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if p.sleeper != nil {
		p.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsConflict reports whether another consumer (webhook or second poller) is
// holding the update stream.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == 409
}
