package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"musicfreq/internal/logging"
	"musicfreq/internal/services"
	"musicfreq/internal/telegram"
)

// ProbeStatus is the outcome of one connectivity probe.
type ProbeStatus int

const (
	ProbeOK ProbeStatus = iota
	ProbeFailed
	ProbeSkipped
)

// Probe records one connectivity check.
type Probe struct {
	Name    string
	Status  ProbeStatus
	Latency time.Duration
	Err     error
}

// Label renders the status marker used in chat replies.
func (p Probe) Label() string {
	switch p.Status {
	case ProbeOK:
		return "✅ Connected"
	case ProbeSkipped:
		return "⚪ Not configured"
	default:
		return "❌ Connection Failed"
	}
}

// NetReport is the result of a network self-test.
type NetReport struct {
	Telegram Probe
	LLM      Probe
	Proxy    string
}

// OK reports whether every configured probe succeeded.
func (r NetReport) OK() bool {
	return r.Telegram.Status != ProbeFailed && r.LLM.Status != ProbeFailed
}

// Pinger is anything that can prove Bot API reachability.
type Pinger interface {
	GetMe(ctx context.Context) (*telegram.User, error)
}

// RunNetTest probes the Bot API and the summarizer, each bounded by timeout.
// A nil llm, or one that reports a configuration error, is marked skipped.
func RunNetTest(ctx context.Context, pinger Pinger, llm HealthChecker, timeout time.Duration, proxy string) NetReport {
	report := NetReport{
		Telegram: Probe{Name: "Telegram API"},
		LLM:      Probe{Name: "LLM API", Status: ProbeSkipped},
		Proxy:    proxy,
	}

	report.Telegram = runProbe(ctx, report.Telegram.Name, timeout, false, func(ctx context.Context) error {
		if pinger == nil {
			return services.Wrap(services.ErrConfiguration, "nettest", "telegram", "bot token not configured", nil)
		}
		_, err := pinger.GetMe(ctx)
		return err
	})

	if llm != nil {
		name := fmt.Sprintf("LLM API (%s)", llm.Describe())
		report.LLM = runProbe(ctx, name, timeout, true, llm.HealthCheck)
	}
	return report
}

// runProbe runs check under timeout. Optional probes that fail with a
// configuration error are reported as skipped.
func runProbe(ctx context.Context, name string, timeout time.Duration, optional bool, check func(context.Context) error) Probe {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	err := check(probeCtx)
	probe := Probe{Name: name, Latency: time.Since(started), Err: err}
	switch {
	case err == nil:
		probe.Status = ProbeOK
	case optional && errors.Is(err, services.ErrConfiguration):
		probe.Status = ProbeSkipped
	default:
		probe.Status = ProbeFailed
	}
	return probe
}

// HTML renders the report for a chat reply.
func (r NetReport) HTML() string {
	var b strings.Builder
	b.WriteString("📡 <b>Network Test Results:</b>\n\n")
	fmt.Fprintf(&b, "%s: %s\n", r.Telegram.Name, r.Telegram.Label())
	fmt.Fprintf(&b, "%s: %s\n\n", escapeHTML(r.LLM.Name), r.LLM.Label())

	if r.Proxy != "" {
		fmt.Fprintf(&b, "<b>Proxy configured:</b> %s\n\n", escapeHTML(r.Proxy))
	}
	if r.Telegram.Status == ProbeFailed {
		b.WriteString("<b>Troubleshooting Telegram connection:</b>\n")
		for _, hint := range TelegramHints {
			fmt.Fprintf(&b, "• %s\n", hint)
		}
		b.WriteString("\n")
	}
	if r.LLM.Status == ProbeFailed {
		b.WriteString("<b>Troubleshooting LLM connection:</b>\n")
		for _, hint := range LLMHints {
			fmt.Fprintf(&b, "• %s\n", hint)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

var (
	TelegramHints = []string{
		"Check your internet connection",
		"Configure telegram.proxy_url if access to Telegram is restricted",
		"Check if a firewall is blocking access",
		"Check DNS settings",
	}
	LLMHints = []string{
		"Verify your API key is correct",
		"Check if your account has sufficient credits",
		"Check if your IP is allowed to access the provider",
	}
)

func (b *Bot) handleNetTest(ctx context.Context, chatID int64) {
	pending, err := b.api.SendMessage(ctx, telegram.SendMessageRequest{ChatID: chatID, Text: nettestPendingText})
	report := RunNetTest(ctx, b.api, b.llm, b.probeTimeout, b.proxyLabel)

	attrs := []logging.Attr{
		logging.String("telegram", report.Telegram.Label()),
		logging.String("llm", report.LLM.Label()),
	}
	if report.Telegram.Err != nil {
		attrs = append(attrs, logging.String("telegram_error", report.Telegram.Err.Error()))
	}
	if report.LLM.Err != nil {
		attrs = append(attrs, logging.String("llm_error", report.LLM.Err.Error()))
	}
	logging.WithContext(ctx, b.logger).Info("network test finished", logging.Args(attrs...)...)

	if err != nil || pending == nil {
		b.reply(ctx, chatID, report.HTML(), nil)
		return
	}
	b.edit(ctx, chatID, pending.MessageID, report.HTML())
}
