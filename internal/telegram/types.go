package telegram

import "musicfreq/internal/classify"

// Update is one entry returned by getUpdates. Only the kinds the bot handles
// are decoded.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type Message struct {
	MessageID int64           `json:"message_id"`
	From      *User           `json:"from,omitempty"`
	Chat      Chat            `json:"chat"`
	Date      int64           `json:"date,omitempty"`
	Text      string          `json:"text,omitempty"`
	Caption   string          `json:"caption,omitempty"`
	Entities  []MessageEntity `json:"entities,omitempty"`
	Audio     *Audio          `json:"audio,omitempty"`
	Document  *Document       `json:"document,omitempty"`
	Photo     []PhotoSize     `json:"photo,omitempty"`
	Sticker   *struct{}       `json:"sticker,omitempty"`
	Voice     *struct{}       `json:"voice,omitempty"`
	Video     *struct{}       `json:"video,omitempty"`
}

type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type,omitempty"` // private|group|supergroup|channel
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

// DisplayName prefers the title, then @username, then the numeric id.
func (c Chat) DisplayName() string {
	switch {
	case c.Title != "":
		return c.Title
	case c.Username != "":
		return "@" + c.Username
	default:
		return formatChatID(c.ID)
	}
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type MessageEntity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

type Audio struct {
	FileID    string `json:"file_id"`
	FileName  string `json:"file_name,omitempty"`
	Performer string `json:"performer,omitempty"`
	Title     string `json:"title,omitempty"`
	Duration  int    `json:"duration,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
}

type Document struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}

type PhotoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
}

// SingleButton builds a keyboard with one callback button.
func SingleButton(text, data string) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{{{Text: text, CallbackData: data}}}}
}

// Attachment maps the message's file to the classifier's attachment model.
// Audio wins over document. Other file kinds map to classify.Other, and
// messages without a file return nil.
func (m *Message) Attachment() classify.Attachment {
	if m == nil {
		return nil
	}
	switch {
	case m.Audio != nil:
		return classify.Audio{FileName: m.Audio.FileName, Performer: m.Audio.Performer, Title: m.Audio.Title}
	case m.Document != nil:
		return classify.Document{FileName: m.Document.FileName}
	case len(m.Photo) > 0:
		return classify.Other{Kind: "photo"}
	case m.Sticker != nil:
		return classify.Other{Kind: "sticker"}
	case m.Voice != nil:
		return classify.Other{Kind: "voice"}
	case m.Video != nil:
		return classify.Other{Kind: "video"}
	default:
		return nil
	}
}
