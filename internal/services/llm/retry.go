package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

type retryPolicy struct {
	attempts int
	base     time.Duration
	max      time.Duration
	sleeper  func(time.Duration)
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		attempts: defaultRetryAttempts,
		base:     defaultRetryBaseDelay,
		max:      defaultRetryMaxDelay,
	}
}

// do runs call until it succeeds, fails permanently, or attempts run out.
func (p retryPolicy) do(ctx context.Context, op string, call func() error) error {
	attempts := p.attempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = call(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		delay, ok := p.delay(ctx, err, attempt)
		if !ok {
			return err
		}
		if waitErr := p.wait(ctx, delay); waitErr != nil {
			return waitErr
		}
	}
	if attempts == 1 {
		return err
	}
	return fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, err)
}

// delay decides whether err is worth another attempt and how long to wait.
func (p retryPolicy) delay(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *HTTPStatusError
	var emptyErr *EmptyContentError
	var netErr net.Error
	switch {
	case errors.As(err, &statusErr):
		code := statusErr.StatusCode
		if code != http.StatusRequestTimeout && code != http.StatusTooManyRequests && code < http.StatusInternalServerError {
			return 0, false
		}
		if statusErr.RetryAfter > 0 {
			return p.clamp(statusErr.RetryAfter), true
		}
		return p.backoff(attempt), true
	case errors.As(err, &emptyErr):
		return p.backoff(attempt), true
	case errors.As(err, &netErr) && netErr.Timeout():
		return p.backoff(attempt), true
	default:
		return 0, false
	}
}

// backoff doubles from base per attempt: base, 2*base, 4*base, ...
func (p retryPolicy) backoff(attempt int) time.Duration {
	if p.base <= 0 {
		return 0
	}
	delay := p.base
	for i := 1; i < attempt && delay < p.ceiling(); i++ {
		delay *= 2
	}
	return p.clamp(delay)
}

func (p retryPolicy) ceiling() time.Duration {
	if p.max > 0 {
		return p.max
	}
	return defaultRetryMaxDelay
}

func (p retryPolicy) clamp(delay time.Duration) time.Duration {
	switch {
	case delay < 0:
		return 0
	case delay > p.ceiling():
		return p.ceiling()
	default:
		return delay
	}
}

func (p retryPolicy) wait(ctx context.Context, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if delay <= 0 {
		return nil
	}
	if p.sleeper != nil {
		p.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay
		}
	}
	return 0
}
