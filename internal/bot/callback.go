package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"musicfreq/internal/classify"
	"musicfreq/internal/logging"
	"musicfreq/internal/telegram"
)

// parseAnalyzeTarget extracts the chat id from "analyze_music:<id>".
func parseAnalyzeTarget(data string) (int64, bool) {
	rest, ok := strings.CutPrefix(data, analyzeCallbackPrefix)
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutPrefix(rest, ":")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (b *Bot) handleCallback(ctx context.Context, query *telegram.CallbackQuery) {
	logger := logging.WithContext(ctx, b.logger)
	if !strings.HasPrefix(query.Data, analyzeCallbackPrefix) {
		logger.Debug("ignoring unknown callback", logging.String("data", query.Data))
		b.answer(ctx, query.ID)
		return
	}
	if query.Message == nil {
		logger.Debug("callback without message; cannot reply")
		b.answer(ctx, query.ID)
		return
	}
	replyChat := query.Message.Chat.ID
	messageID := query.Message.MessageID

	target, ok := parseAnalyzeTarget(query.Data)
	var snapshot []classify.TrackName
	if ok {
		snapshot = b.collector.Snapshot(target)
	}
	if len(snapshot) == 0 {
		logger.Info("analyze requested with no data",
			logging.String("data", query.Data),
			logging.Bool("valid_payload", ok),
		)
		b.edit(ctx, replyChat, messageID, nothingToAnalyze)
		b.answer(ctx, query.ID)
		return
	}

	b.edit(ctx, replyChat, messageID, analyzingText)
	b.answer(ctx, query.ID)

	logger.Info("analysis started",
		logging.Int64("target_chat_id", target),
		logging.Int("entries", len(snapshot)),
	)

	// The analysis outlives the update; keep ctx values but not its cancellation.
	bg := context.WithoutCancel(ctx)
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		started := time.Now()
		text := b.analyzer.AnalyzeWithAssist(bg, snapshot)
		if err := b.send(bg, replyChat, text, nil); err != nil {
			logging.ErrorWithContext(logger, "analysis reply failed", "analysis_send",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check Bot API reachability; the user can press the button again"),
			)
			return
		}
		logger.Info("analysis delivered", logging.Duration("elapsed", time.Since(started)))
	}()
}

func (b *Bot) answer(ctx context.Context, callbackID string) {
	if err := b.api.AnswerCallbackQuery(ctx, callbackID, ""); err != nil {
		logging.WithContext(ctx, b.logger).Debug("answer callback failed", logging.Error(err))
	}
}
