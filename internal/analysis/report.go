package analysis

import (
	"fmt"
	"strings"

	"musicfreq/internal/classify"
)

// TopN is the number of ranked tracks listed in a report.
const TopN = 20

// Report is the local analysis of one chat log.
type Report struct {
	Top      []Entry
	Unique   int
	Total    int
	Overflow int
}

// Analyze ranks log and keeps the first TopN entries. It is pure and safe to
// call repeatedly on the same snapshot.
func Analyze(log []classify.TrackName) Report {
	ranked := Rank(BuildFrequencyTable(log))
	report := Report{Unique: len(ranked), Total: len(log)}
	if len(ranked) > TopN {
		report.Overflow = len(ranked) - TopN
		ranked = ranked[:TopN]
	}
	report.Top = ranked
	return report
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Render formats the report as Telegram HTML. Track names are escaped for the
// markup only.
func (r Report) Render() string {
	var b strings.Builder
	b.WriteString("<b>🎵 Music Frequency Analysis</b>\n\n")
	b.WriteString("<b>Most Popular Tracks:</b>\n")
	for i, entry := range r.Top {
		fmt.Fprintf(&b, "%d. %s - <b>%d plays</b>\n", i+1, htmlEscaper.Replace(string(entry.Track)), entry.Count)
	}
	if r.Overflow > 0 {
		fmt.Fprintf(&b, "\n<i>...and %d more tracks</i>\n", r.Overflow)
	}
	fmt.Fprintf(&b, "\n<b>Total:</b> %d unique tracks found", r.Unique)
	return b.String()
}

// FrequencyList renders ranked entries as "{track} - {count}" lines, the input
// handed to the summarizer.
func FrequencyList(ranked []Entry) string {
	lines := make([]string, 0, len(ranked))
	for _, entry := range ranked {
		lines = append(lines, fmt.Sprintf("%s - %d", entry.Track, entry.Count))
	}
	return strings.Join(lines, "\n")
}

// Text formats the report without markup, for terminals and logs.
func (r Report) Text() string {
	var b strings.Builder
	b.WriteString("🎵 Music Frequency Analysis\n\n")
	b.WriteString("Most Popular Tracks:\n")
	for i, entry := range r.Top {
		fmt.Fprintf(&b, "%d. %s - %d plays\n", i+1, entry.Track, entry.Count)
	}
	if r.Overflow > 0 {
		fmt.Fprintf(&b, "\n...and %d more tracks\n", r.Overflow)
	}
	fmt.Fprintf(&b, "\nTotal: %d unique tracks found", r.Unique)
	return b.String()
}
