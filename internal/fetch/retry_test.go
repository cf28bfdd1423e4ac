package fetch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// instantSleep records requested delays without waiting.
func instantSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	var delays []time.Duration
	policy := RetryPolicy{Retries: 5, Delay: time.Second, Sleep: instantSleep(&delays)}

	attempts := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts <= 2 {
			return &StatusError{Code: 503, Status: "503 Service Unavailable"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if len(delays) != 2 {
		t.Errorf("expected 2 sleeps, got %d", len(delays))
	}
	for _, d := range delays {
		if d != time.Second {
			t.Errorf("expected fixed 1s delay, got %v", d)
		}
	}
}

func TestRetryExhaustionKeepsLastError(t *testing.T) {
	var delays []time.Duration
	policy := RetryPolicy{Retries: 2, Delay: time.Second, Sleep: instantSleep(&delays)}

	attempts := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return &StatusError{Code: 500, Status: "500 Internal Server Error"}
	})
	if err == nil {
		t.Fatal("expected error after exhaustion")
	}

	if attempts != 3 {
		t.Errorf("expected retries+1 = 3 attempts, got %d", attempts)
	}
	if !strings.Contains(err.Error(), "500 Internal Server Error") {
		t.Errorf("exhaustion must surface the last failure, got %q", err)
	}

	var se *StatusError
	if !errors.As(err, &se) {
		t.Error("underlying error must stay unwrappable")
	}
}

func TestRetryStopsOnTerminalError(t *testing.T) {
	policy := RetryPolicy{Retries: 5, Delay: time.Second, Sleep: func(context.Context, time.Duration) error {
		t.Fatal("terminal error must not trigger a retry sleep")
		return nil
	}}

	attempts := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return &StatusError{Code: 404, Status: "404 Not Found"}
	})

	if attempts != 1 {
		t.Errorf("expected a single attempt, got %d", attempts)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("expected 404 in error, got %q", err)
	}
}

func TestRetryZeroRetries(t *testing.T) {
	policy := RetryPolicy{Retries: 0}

	attempts := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return &StatusError{Code: 503, Status: "503 Service Unavailable"}
	})

	if attempts != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", attempts)
	}
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRetryCancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	policy := RetryPolicy{Retries: 3, Delay: time.Second, Sleep: func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}}

	attempts := 0
	err := policy.Do(ctx, func(ctx context.Context) error {
		attempts++
		return &StatusError{Code: 503, Status: "503 Service Unavailable"}
	})

	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
