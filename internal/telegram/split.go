package telegram

import (
	"strings"
	"unicode/utf16"
)

// MaxMessageLength is the Bot API limit for message text, in UTF-16 units.
const MaxMessageLength = 4096

// SplitMessage cuts text into chunks of at most limit UTF-16 units, breaking
// on line boundaries when possible. Lines longer than limit are cut mid-line.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	if utf16Len(text) <= limit {
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if chunk := strings.TrimRight(current.String(), "\n"); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
		size = 0
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf16Len(line)
		if size > 0 && size+n > limit {
			flush()
		}
		for n > limit {
			head, tail := cutUTF16(line, limit)
			current.WriteString(head)
			flush()
			line, n = tail, utf16Len(tail)
		}
		current.WriteString(line)
		size += n
	}
	flush()
	return chunks
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// cutUTF16 splits s after at most limit UTF-16 units without breaking a rune.
func cutUTF16(s string, limit int) (string, string) {
	units := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if w < 0 {
			w = 1
		}
		if units+w > limit && i > 0 {
			return s[:i], s[i:]
		}
		units += w
	}
	return s, ""
}
