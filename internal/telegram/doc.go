// Package telegram is a small Bot API client: long polling, text replies with
// inline keyboards, callback answers and chat lookup.
//
// # Entry Points
//
// NewClient: construct a client from Config (token, base URL, proxy).
// Poller.Run: drop pending updates, then long-poll and dispatch each update
// to a Handler in order.
// SplitMessage: cut long replies into chunks Telegram accepts.
//
// # Errors
//
// Bot API rejections surface as *APIError. Use IsParseError to detect HTML
// entity failures and RetryAfter to honour flood control. APIError unwraps to
// the services sentinels so callers can branch with errors.Is.
package telegram
