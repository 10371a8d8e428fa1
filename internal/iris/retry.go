package iris

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const maxAttempts = 3

// HTTPError is a non-200 response from the timetable API.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// FetchError wraps the final error of a request after all retry attempts
// were used up, or after a client error that is pointless to retry.
type FetchError struct {
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// isClientError reports whether err is a definitive 4xx response. Those
// will fail the same way on every attempt, so they are never retried.
func isClientError(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.StatusCode >= 400 && httpErr.StatusCode < http.StatusInternalServerError
}

func newBackOff() *backoff.ExponentialBackOff {
	return &backoff.ExponentialBackOff{
		InitialInterval:     2 * time.Second,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         60 * time.Second,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
}

// fetchWithRetry runs op up to maxAttempts times, backing off between
// attempts. Transport errors, timeouts and 5xx responses are retried;
// 4xx responses are not. The terminal error is wrapped in a FetchError
// carrying the attempt count.
func fetchWithRetry[T any](ctx context.Context, logger *slog.Logger, timer backoff.Timer, what string, op func() (T, error)) (T, error) {
	attempts := 0
	wrapped := func() (T, error) {
		attempts++
		v, err := op()
		if err != nil && isClientError(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("request failed, retrying",
			"what", what, "attempt", attempts, "wait", wait, "error", err)
	}
	b := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), maxAttempts-1), ctx)
	v, err := backoff.RetryNotifyWithTimerAndData(wrapped, b, notify, timer)
	if err != nil {
		return v, &FetchError{Attempts: attempts, Err: err}
	}
	return v, nil
}
