package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"musicfreq/internal/services"
)

// APIError is a Bot API rejection (ok=false).
type APIError struct {
	Method      string
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	return msg
}

// Unwrap maps the rejection onto the services sentinels.
func (e *APIError) Unwrap() error {
	desc := strings.ToLower(e.Description)
	switch {
	case e.Code == 429 || e.Code >= 500:
		return services.ErrTransient
	case e.Code == 400 && strings.Contains(desc, "not found"):
		return services.ErrNotFound
	case e.Code == 401 || e.Code == 404:
		return services.ErrConfiguration
	default:
		return services.ErrExternalService
	}
}

// IsParseError reports whether Telegram rejected the message markup.
func IsParseError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == 400 && strings.Contains(strings.ToLower(apiErr.Description), "can't parse entities")
}

// RetryAfter returns the flood-control delay carried by err, if any.
func RetryAfter(err error) (time.Duration, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter, true
	}
	return 0, false
}

func formatChatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
