// Package notifications pushes operator events to ntfy.
//
// NewService returns an ntfy-backed Service when notifications.ntfy_topic is
// set and a no-op otherwise, so callers never branch on configuration. Events
// are grouped into lifecycle (bot started/stopped) and error classes that can
// be toggled independently; the test event is always delivered.
package notifications
