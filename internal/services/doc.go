// Package services defines shared utilities consumed by the bot handlers and
// the external integrations (Telegram, LLM providers, ntfy).
//
// Key responsibilities:
//   - Context helpers that stamp chat IDs, update IDs, command names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (retry, report, or give up) without string matching.
//
// Use these helpers when wiring new integrations so operational behaviour
// (error handling, observability, retries) stays uniform across the bot.
package services
