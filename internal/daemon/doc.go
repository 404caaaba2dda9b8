// Package daemon coordinates the long-running bot process.
//
// It wires the Telegram poller, the bot handlers and operator notifications
// into a single lifecycle with flock-based locking to prevent two processes
// from consuming the same bot's updates. Start confirms the bot token with
// getMe before polling; Stop cancels polling, waits for in-flight analyses and
// releases the lock.
package daemon
