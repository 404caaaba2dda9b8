package telegram

import "strings"

// Command is a parsed "/name[@bot] args" message.
type Command struct {
	Name    string
	Mention string
	Args    string
}

// ParseCommand extracts a slash command from message text. Names are
// lowercased; the @mention keeps its case for comparison with the bot's
// username.
func ParseCommand(text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}
	head, rest := text, ""
	if i := strings.IndexAny(text, " \n\t"); i >= 0 {
		head, rest = text[:i], strings.TrimSpace(text[i:])
	}
	name := strings.TrimPrefix(head, "/")
	mention := ""
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name, mention = name[:at], name[at+1:]
	}
	if name == "" {
		return Command{}, false
	}
	return Command{Name: strings.ToLower(name), Mention: mention, Args: rest}, true
}

// AddressedTo reports whether the command targets the bot with the given
// username. Unmentioned commands address every bot in the chat.
func (c Command) AddressedTo(username string) bool {
	if c.Mention == "" || username == "" {
		return true
	}
	return strings.EqualFold(c.Mention, username)
}
