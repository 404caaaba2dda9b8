package services

import "context"

type contextKey string

const (
	chatIDKey    contextKey = "chat_id"
	updateIDKey  contextKey = "update_id"
	commandKey   contextKey = "command"
	requestIDKey contextKey = "request_id"
)

// WithChatID annotates context with the Telegram chat identifier.
func WithChatID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, chatIDKey, id)
}

// ChatIDFromContext extracts the chat identifier if present.
func ChatIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(chatIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithUpdateID annotates context with the Telegram update identifier.
func WithUpdateID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, updateIDKey, id)
}

// UpdateIDFromContext returns the update identifier if present.
func UpdateIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(updateIDKey).(int64)
	return id, ok
}

// WithCommand annotates context with the slash command being handled.
func WithCommand(ctx context.Context, command string) context.Context {
	if command == "" {
		return ctx
	}
	return context.WithValue(ctx, commandKey, command)
}

// CommandFromContext returns the command name if present.
func CommandFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(commandKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
