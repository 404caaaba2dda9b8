package bot

import (
	"context"

	"musicfreq/internal/logging"
	"musicfreq/internal/telegram"
)

// send delivers text as HTML, retrying once as plain text when Telegram
// rejects the markup. Long text is split; the keyboard rides on the last chunk.
func (b *Bot) send(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) error {
	chunks := telegram.SplitMessage(text, telegram.MaxMessageLength)
	for i, chunk := range chunks {
		req := telegram.SendMessageRequest{ChatID: chatID, Text: chunk, ParseMode: parseModeHTML}
		if i == len(chunks)-1 {
			req.ReplyMarkup = markup
		}
		_, err := b.api.SendMessage(ctx, req)
		if telegram.IsParseError(err) {
			logging.WithContext(ctx, b.logger).Debug("html rejected; resending as plain text", logging.Error(err))
			req.ParseMode = ""
			_, err = b.api.SendMessage(ctx, req)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// reply is send with failures logged rather than returned.
func (b *Bot) reply(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) {
	if err := b.send(ctx, chatID, text, markup); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, b.logger), "reply failed", "telegram_send",
			logging.Error(err),
			logging.String(logging.FieldImpact, "user did not receive a reply"),
		)
	}
}

// edit replaces a message's text, with the same plain-text retry as send.
func (b *Bot) edit(ctx context.Context, chatID, messageID int64, text string) {
	req := telegram.EditMessageTextRequest{ChatID: chatID, MessageID: messageID, Text: text, ParseMode: parseModeHTML}
	err := b.api.EditMessageText(ctx, req)
	if telegram.IsParseError(err) {
		req.ParseMode = ""
		err = b.api.EditMessageText(ctx, req)
	}
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, b.logger), "edit failed", "telegram_edit",
			logging.Error(err),
			logging.Int64("message_id", messageID),
			logging.String(logging.FieldImpact, "status message left unchanged"),
		)
	}
}
