// Package collector keeps the per-chat music logs the bot gathers while it
// watches group conversations.
//
// A Collector is an owned value: construct one per bot (or per test) and pass
// it to the handlers. Logs live only as long as the process.
package collector

import (
	"log/slog"
	"sync"

	"musicfreq/internal/classify"
	"musicfreq/internal/logging"
)

// Status summarizes one chat's log.
type Status struct {
	Total  int
	Unique int
}

// Empty reports whether nothing has been collected.
func (s Status) Empty() bool {
	return s.Total == 0
}

// Collector maps chat identifiers to the ordered track names seen in them.
type Collector struct {
	mu     sync.RWMutex
	logs   map[int64][]classify.TrackName
	logger *slog.Logger
}

// New creates an empty collector.
func New(logger *slog.Logger) *Collector {
	return &Collector{
		logs:   make(map[int64][]classify.TrackName),
		logger: logging.NewComponentLogger(logger, "collector"),
	}
}

// Record classifies the attachment and, when it is music, appends the track
// name to the chat's log. It never performs I/O beyond logging.
func (c *Collector) Record(chatID int64, attachment classify.Attachment) (classify.TrackName, bool) {
	name, ok := classify.Classify(attachment)
	if !ok {
		return "", false
	}

	c.mu.Lock()
	c.logs[chatID] = append(c.logs[chatID], name)
	total := len(c.logs[chatID])
	c.mu.Unlock()

	c.logger.Info("collected track",
		logging.Int64(logging.FieldChatID, chatID),
		logging.String("kind", classify.KindOf(attachment).String()),
		logging.String("track", string(name)),
		logging.Int("total", total),
	)
	return name, true
}

// Clear drops the chat's log. It reports whether a log existed.
func (c *Collector) Clear(chatID int64) bool {
	c.mu.Lock()
	_, existed := c.logs[chatID]
	delete(c.logs, chatID)
	c.mu.Unlock()

	if existed {
		c.logger.Info("cleared chat log", logging.Int64(logging.FieldChatID, chatID))
	}
	return existed
}

// Status returns total and distinct track counts for a chat. Unknown chats
// report zeros.
func (c *Collector) Status(chatID int64) Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	log := c.logs[chatID]
	seen := make(map[classify.TrackName]struct{}, len(log))
	for _, name := range log {
		seen[name] = struct{}{}
	}
	return Status{Total: len(log), Unique: len(seen)}
}

// Snapshot returns a copy of the chat's log in arrival order. Later records do
// not affect a snapshot already returned.
func (c *Collector) Snapshot(chatID int64) []classify.TrackName {
	c.mu.RLock()
	defer c.mu.RUnlock()

	log := c.logs[chatID]
	out := make([]classify.TrackName, len(log))
	copy(out, log)
	return out
}

// Chats returns the number of chats with a non-empty log.
func (c *Collector) Chats() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.logs)
}
