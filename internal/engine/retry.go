package engine

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig controls retry behavior.
type RetryConfig struct {
	MaxAttempts int           // total attempts including the first
	Delay       time.Duration // fixed wait between attempts
	// OnRetry, if set, is called before each wait.
	OnRetry func(attempt int, wait time.Duration, err error)
}

// RetryConfigFromCfg builds a RetryConfig from the engine configuration.
func RetryConfigFromCfg() RetryConfig {
	return RetryConfig{MaxAttempts: Cfg.MaxRetries, Delay: Cfg.RetryDelay}
}

// RetryDo calls fn until it succeeds, returns a non-retryable error, or
// MaxAttempts is reached. retryable decides which errors earn another attempt.
// The wait between attempts is fixed and returns early on context cancellation.
func RetryDo[T any](ctx context.Context, rc RetryConfig, retryable func(error) bool, fn func() (T, error)) (T, error) {
	attempts := rc.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	attempt := 0

	operation := func() (T, error) {
		attempt++
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !retryable(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}

	notify := func(err error, wait time.Duration) {
		slog.Debug("retrying", slog.Int("attempt", attempt), slog.Duration("wait", wait), slog.Any("error", err))
		IncrRetries()
		if rc.OnRetry != nil {
			rc.OnRetry(attempt, wait, err)
		}
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(rc.Delay)),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)
	// backoff returns the wrapper as-is when the last allowed try is permanent.
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	return result, err
}

// StatusError is an upstream HTTP response with a non-success status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return "HTTP " + strconv.Itoa(e.StatusCode) + ": " + http.StatusText(e.StatusCode)
}

// IsRateLimited reports whether err looks like an upstream rate limit:
// the message mentions 429 or "too many" in any case.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many")
}
