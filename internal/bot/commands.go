package bot

import (
	"context"
	"errors"

	"musicfreq/internal/logging"
	"musicfreq/internal/services"
	"musicfreq/internal/telegram"
)

func (b *Bot) handleCommand(ctx context.Context, msg *telegram.Message, cmd telegram.Command) {
	logger := logging.WithContext(ctx, b.logger)
	logger.Info("command received", logging.String("args", cmd.Args))

	chatID := msg.Chat.ID
	switch cmd.Name {
	case "start":
		b.reply(ctx, chatID, welcomeText, nil)
	case "help":
		b.reply(ctx, chatID, helpText, nil)
	case "collect":
		b.handleCollect(ctx, chatID, cmd.Args)
	case "status":
		b.handleStatus(ctx, chatID)
	case "clear":
		b.collector.Clear(chatID)
		b.reply(ctx, chatID, clearedText, nil)
	case "nettest":
		b.handleNetTest(ctx, chatID)
	default:
		if msg.Chat.Type == "private" {
			b.reply(ctx, chatID, unknownCommandText, nil)
		}
	}
}

// handleCollect resolves the target chat and offers an analyze button when
// music has already been collected there.
func (b *Bot) handleCollect(ctx context.Context, chatID int64, target string) {
	if target == "" {
		b.reply(ctx, chatID, collectUsageText, nil)
		return
	}

	chat, err := b.api.GetChat(ctx, target)
	if err != nil {
		logger := logging.WithContext(ctx, b.logger)
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrValidation) {
			logger.Info("collect target not found", logging.String("target", target), logging.Error(err))
		} else {
			logging.WarnWithContext(logger, "collect target lookup failed", "telegram_get_chat",
				logging.String("target", target),
				logging.Error(err),
				logging.String(logging.FieldImpact, "user told the chat could not be found"),
			)
		}
		b.reply(ctx, chatID, chatNotFoundText, nil)
		return
	}

	count := b.collector.Status(chat.ID).Total
	if count == 0 {
		b.reply(ctx, chatID, nothingInChatText, nil)
		return
	}
	b.reply(ctx, chatID, collectFoundText(count, escapeHTML(target)),
		telegram.SingleButton(analyzeButtonText(count), analyzeCallbackData(chat.ID)))
}

func (b *Bot) handleStatus(ctx context.Context, chatID int64) {
	status := b.collector.Status(chatID)
	if status.Empty() {
		b.reply(ctx, chatID, statusEmptyText, nil)
		return
	}
	b.reply(ctx, chatID, statusText(status.Total, status.Unique),
		telegram.SingleButton(analyzeButtonText(status.Total), analyzeCallbackData(chatID)))
}
