// Package bot routes Telegram updates to the collector and analyzer and
// writes the chat-facing replies.
package bot

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"musicfreq/internal/analysis"
	"musicfreq/internal/classify"
	"musicfreq/internal/collector"
	"musicfreq/internal/logging"
	"musicfreq/internal/services"
	"musicfreq/internal/telegram"
)

// Messenger is the slice of the Bot API the handlers use.
type Messenger interface {
	GetMe(ctx context.Context) (*telegram.User, error)
	SendMessage(ctx context.Context, req telegram.SendMessageRequest) (*telegram.Message, error)
	EditMessageText(ctx context.Context, req telegram.EditMessageTextRequest) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string) error
	GetChat(ctx context.Context, ref string) (*telegram.Chat, error)
}

// HealthChecker probes the summarizer for /nettest.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	Describe() string
}

const defaultProbeTimeout = 10 * time.Second

// Bot handles updates one at a time. Analyses run in the background and are
// tracked so shutdown can wait for them.
type Bot struct {
	api          Messenger
	collector    *collector.Collector
	analyzer     *analysis.Analyzer
	llm          HealthChecker
	logger       *slog.Logger
	proxyLabel   string
	probeTimeout time.Duration

	mu       sync.RWMutex
	username string

	inflight sync.WaitGroup
}

// Option customizes a Bot.
type Option func(*Bot)

// WithProxyLabel sets the (redacted) proxy URL shown by /nettest.
func WithProxyLabel(label string) Option {
	return func(b *Bot) {
		b.proxyLabel = strings.TrimSpace(label)
	}
}

// WithProbeTimeout bounds each /nettest probe.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(b *Bot) {
		if timeout > 0 {
			b.probeTimeout = timeout
		}
	}
}

// WithUsername presets the bot's username so commands addressed to other bots
// are ignored without calling Identify.
func WithUsername(username string) Option {
	return func(b *Bot) {
		b.username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	}
}

// New wires a Bot. A nil llm reports the summarizer as not configured.
func New(api Messenger, store *collector.Collector, analyzer *analysis.Analyzer, llm HealthChecker, logger *slog.Logger, opts ...Option) *Bot {
	b := &Bot{
		api:          api,
		collector:    store,
		analyzer:     analyzer,
		llm:          llm,
		logger:       logging.NewComponentLogger(logger, "bot"),
		probeTimeout: defaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Identify calls getMe, remembers the bot's username and returns the user.
// It is the startup connectivity check.
func (b *Bot) Identify(ctx context.Context) (*telegram.User, error) {
	me, err := b.api.GetMe(ctx)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.username = me.Username
	b.mu.Unlock()
	b.logger.Info("bot identity confirmed",
		logging.String("username", me.Username),
		logging.Int64("bot_id", me.ID),
	)
	return me, nil
}

func (b *Bot) botUsername() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.username
}

// HandleUpdate routes one update. Errors are logged; nothing propagates to
// the poller.
func (b *Bot) HandleUpdate(ctx context.Context, update telegram.Update) {
	ctx = services.WithUpdateID(ctx, update.UpdateID)
	ctx = services.WithRequestID(ctx, uuid.NewString())

	switch {
	case update.CallbackQuery != nil:
		if msg := update.CallbackQuery.Message; msg != nil {
			ctx = services.WithChatID(ctx, msg.Chat.ID)
		}
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		ctx = services.WithChatID(ctx, update.Message.Chat.ID)
		b.handleMessage(ctx, update.Message)
	default:
		logging.WithContext(ctx, b.logger).Debug("ignoring unsupported update")
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	if cmd, ok := telegram.ParseCommand(msg.Text); ok {
		if !cmd.AddressedTo(b.botUsername()) {
			return
		}
		b.handleCommand(services.WithCommand(ctx, cmd.Name), msg, cmd)
		return
	}

	attachment := msg.Attachment()
	if attachment == nil {
		return
	}
	if _, ok := b.collector.Record(msg.Chat.ID, attachment); !ok {
		attrs := []logging.Attr{logging.String("kind", classify.KindOf(attachment).String())}
		if msg.Document != nil {
			attrs = append(attrs, logging.String("file_name", msg.Document.FileName))
		}
		logging.WithContext(ctx, b.logger).Debug("ignored non-music attachment", logging.Args(attrs...)...)
	}
}

// Wait blocks until background analyses finish.
func (b *Bot) Wait() {
	b.inflight.Wait()
}
