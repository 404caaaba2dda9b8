// Package classify decides whether a chat attachment is music and derives the
// track name used for frequency counting.
//
// Track names are taken verbatim. "Song.mp3" and "song.mp3" are different
// tracks, and nothing here trims or case-folds them.
package classify

import (
	"path/filepath"
	"sort"
	"strings"
)

// TrackName identifies a music item by its derived name.
type TrackName string

var musicExtensions = map[string]struct{}{
	".mp3":  {},
	".m4a":  {},
	".flac": {},
	".wav":  {},
	".ogg":  {},
	".opus": {},
	".aac":  {},
	".wma":  {},
	".alac": {},
	".aiff": {},
	".ape":  {},
}

// Classify returns the track name for a music attachment. The boolean is false
// when the attachment is not music.
func Classify(a Attachment) (TrackName, bool) {
	switch att := a.(type) {
	case Audio:
		return audioTrackName(att), true
	case *Audio:
		if att == nil {
			return "", false
		}
		return audioTrackName(*att), true
	case Document:
		return documentTrackName(att.FileName)
	case *Document:
		if att == nil {
			return "", false
		}
		return documentTrackName(att.FileName)
	case Other, *Other:
		return "", false
	default:
		return "", false
	}
}

func audioTrackName(a Audio) TrackName {
	if a.FileName != "" {
		return TrackName(a.FileName)
	}
	// Missing performer or title still yields a name with empty segments.
	return TrackName(a.Performer + " - " + a.Title)
}

func documentTrackName(name string) (TrackName, bool) {
	if !IsMusicFile(name) {
		return "", false
	}
	return TrackName(name), true
}

// IsMusicFile checks the filename extension against the music allow-list,
// ignoring case.
func IsMusicFile(name string) bool {
	ext := extension(name)
	if ext == "" {
		return false
	}
	_, ok := musicExtensions[ext]
	return ok
}

// MusicExtensions returns the recognized extensions, sorted, with leading dots.
func MusicExtensions() []string {
	out := make([]string, 0, len(musicExtensions))
	for ext := range musicExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// extension returns the lowercased extension of the final path element.
// Leading dots belong to the name, so ".mp3" has no extension.
func extension(name string) string {
	base := filepath.Base(strings.ToLower(name))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	stem := strings.TrimLeft(base, ".")
	return filepath.Ext(stem)
}
