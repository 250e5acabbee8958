package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"status 429", &StatusError{StatusCode: 429}, true},
		{"status 503", &StatusError{StatusCode: 503}, false},
		{"wrapped status 429", fmt.Errorf("watch page: %w", &StatusError{StatusCode: 429}), true},
		{"429 prefix", errors.New("429 Too Many Requests"), true},
		{"429 anywhere", errors.New("Error 429: Rate limited"), true},
		{"too many lowercase", errors.New("too many requests"), true},
		{"too many capitalized", errors.New("Too Many Requests"), true},
		{"TOO MANY upper", errors.New("TOO MANY REQUESTS"), true},
		{"network error", errors.New("Network error"), false},
		{"unavailable", errors.New("the video is no longer available"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimited(tt.err); got != tt.want {
				t.Errorf("IsRateLimited(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{StatusCode: 429, URL: "https://www.youtube.com/watch?v=x"}
	if got, want := err.Error(), "HTTP 429: Too Many Requests"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

var errLimited = errors.New("429 Too Many Requests")

func TestRetryDoSuccess(t *testing.T) {
	waits := 0
	rc := RetryConfig{MaxAttempts: 5, Delay: time.Millisecond, OnRetry: func(int, time.Duration, error) { waits++ }}
	calls := 0
	got, err := RetryDo(context.Background(), rc, IsRateLimited, func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q, want %q", got, "ok")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if waits != 0 {
		t.Errorf("expected no waits, got %d", waits)
	}
}

func TestRetryDoRetryThenSuccess(t *testing.T) {
	waits := 0
	rc := RetryConfig{MaxAttempts: 5, Delay: time.Millisecond, OnRetry: func(int, time.Duration, error) { waits++ }}
	calls := 0
	got, err := RetryDo(context.Background(), rc, IsRateLimited, func() (string, error) {
		calls++
		if calls < 4 {
			return "", errLimited
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q, want %q", got, "ok")
	}
	if calls != 4 {
		t.Errorf("expected 4 calls, got %d", calls)
	}
	if waits != 3 {
		t.Errorf("expected 3 waits, got %d", waits)
	}
}

func TestRetryDoExhausted(t *testing.T) {
	waits := 0
	rc := RetryConfig{MaxAttempts: 3, Delay: time.Millisecond, OnRetry: func(int, time.Duration, error) { waits++ }}
	calls := 0
	_, err := RetryDo(context.Background(), rc, IsRateLimited, func() (string, error) {
		calls++
		return "", errLimited
	})
	if !errors.Is(err, errLimited) {
		t.Fatalf("expected last rate-limit error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected exactly 3 calls, got %d", calls)
	}
	if waits != 2 {
		t.Errorf("expected 2 waits, got %d", waits)
	}
}

func TestRetryDoNonRetryable(t *testing.T) {
	rc := RetryConfig{MaxAttempts: 5, Delay: time.Millisecond}
	permanent := errors.New("Network error")
	calls := 0
	_, err := RetryDo(context.Background(), rc, IsRateLimited, func() (string, error) {
		calls++
		return "", permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error unwrapped, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call (no retry for non-retryable), got %d", calls)
	}
}

func TestRetryDoNonRetryableAfterRetry(t *testing.T) {
	waits := 0
	rc := RetryConfig{MaxAttempts: 5, Delay: time.Millisecond, OnRetry: func(int, time.Duration, error) { waits++ }}
	unavailable := errors.New("video unavailable")
	calls := 0
	_, err := RetryDo(context.Background(), rc, IsRateLimited, func() (string, error) {
		calls++
		if calls == 1 {
			return "", errLimited
		}
		return "", unavailable
	})
	if err != unavailable {
		t.Fatalf("expected the unwrapped unavailable error, got %T: %v", err, err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if waits != 1 {
		t.Errorf("expected 1 wait, got %d", waits)
	}
}

func TestRetryDoSingleAttemptReturnsOriginalError(t *testing.T) {
	permanent := errors.New("video unavailable")
	_, err := RetryDo(context.Background(), RetryConfig{MaxAttempts: 1}, IsRateLimited, func() (string, error) {
		return "", permanent
	})
	if err != permanent {
		t.Errorf("got %T: %v, want the original error", err, err)
	}
}

func TestRetryDoUsesConfiguredDelay(t *testing.T) {
	var gotWait time.Duration
	rc := RetryConfig{MaxAttempts: 2, Delay: 25 * time.Millisecond, OnRetry: func(_ int, wait time.Duration, _ error) { gotWait = wait }}
	calls := 0
	start := time.Now()
	_, _ = RetryDo(context.Background(), rc, IsRateLimited, func() (string, error) {
		calls++
		if calls == 1 {
			return "", errLimited
		}
		return "ok", nil
	})
	if gotWait != 25*time.Millisecond {
		t.Errorf("wait = %v, want 25ms", gotWait)
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("returned after %v, expected to wait at least 25ms", elapsed)
	}
}

func TestRetryDoZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_, _ = RetryDo(context.Background(), RetryConfig{}, IsRateLimited, func() (string, error) {
		calls++
		return "", errLimited
	})
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetryDoContextCanceledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rc := RetryConfig{MaxAttempts: 5, Delay: time.Hour, OnRetry: func(int, time.Duration, error) { cancel() }}
	calls := 0
	_, err := RetryDo(ctx, rc, IsRateLimited, func() (string, error) {
		calls++
		return "", errLimited
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestSecondsToDuration(t *testing.T) {
	tests := []struct {
		in   float64
		want time.Duration
	}{
		{2.5, 2500 * time.Millisecond},
		{1, time.Second},
		{0, 0},
		{-1, 0},
	}
	for _, tt := range tests {
		if got := SecondsToDuration(tt.in); got != tt.want {
			t.Errorf("SecondsToDuration(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitClampsRetryConfig(t *testing.T) {
	Init(Config{MaxRetries: 0, RetryDelay: -time.Second})
	t.Cleanup(func() { Init(Config{MaxRetries: DefaultMaxRetries, RetryDelay: DefaultRetryDelay}) })

	rc := RetryConfigFromCfg()
	if rc.MaxAttempts != 1 {
		t.Errorf("MaxAttempts = %d, want 1", rc.MaxAttempts)
	}
	if rc.Delay != 0 {
		t.Errorf("Delay = %v, want 0", rc.Delay)
	}
	if Cfg.FetchTimeout != DefaultFetchTimeout {
		t.Errorf("FetchTimeout = %v, want default", Cfg.FetchTimeout)
	}
}
