// Package analysis turns a chat's collected track names into a ranked
// frequency report, optionally phrased by an external summarizer.
package analysis

import (
	"sort"

	"musicfreq/internal/classify"
)

// Entry is one ranked track.
type Entry struct {
	Track classify.TrackName
	Count int
}

// FrequencyTable counts occurrences of each track, remembering the order in
// which tracks first appeared.
type FrequencyTable struct {
	order  []classify.TrackName
	counts map[classify.TrackName]int
}

// BuildFrequencyTable counts every name in log.
func BuildFrequencyTable(log []classify.TrackName) FrequencyTable {
	table := FrequencyTable{counts: make(map[classify.TrackName]int, len(log))}
	for _, name := range log {
		if _, seen := table.counts[name]; !seen {
			table.order = append(table.order, name)
		}
		table.counts[name]++
	}
	return table
}

// Len returns the number of distinct tracks.
func (t FrequencyTable) Len() int {
	return len(t.order)
}

// Count returns how often name occurred.
func (t FrequencyTable) Count(name classify.TrackName) int {
	return t.counts[name]
}

// Entries returns the table in first-appearance order.
func (t FrequencyTable) Entries() []Entry {
	entries := make([]Entry, 0, len(t.order))
	for _, name := range t.order {
		entries = append(entries, Entry{Track: name, Count: t.counts[name]})
	}
	return entries
}

// Rank orders entries by descending count. Ties keep first-appearance order.
func Rank(table FrequencyTable) []Entry {
	entries := table.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}
