package retry

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"google.golang.org/genai"
)

func recordingSleep(slept *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return ctx.Err()
	}
}

func TestDoRetriesRateLimitThenSucceeds(t *testing.T) {
	var calls int
	var slept []time.Duration
	op := func(ctx context.Context) (string, error) {
		calls++
		if calls <= 2 {
			return "", &StatusError{Code: 429, Body: "rate limited"}
		}
		return "ok", nil
	}

	got, err := Do(context.Background(), op, Policy{
		MaxRetries: 3,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   time.Second,
		Sleep:      recordingSleep(&slept),
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Do() = %q, want %q", got, "ok")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(slept) != 2 {
		t.Fatalf("slept %v, want 2 waits", slept)
	}
	if !(slept[0] < slept[1]) {
		t.Errorf("delays not strictly increasing: %v", slept)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("unsupported format")
	var calls int
	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, permanent
	}, Policy{MaxRetries: 5, Sleep: recordingSleep(new([]time.Duration))})

	if !errors.Is(err, permanent) {
		t.Fatalf("Do() error = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoReturnsLastErrorWhenExhausted(t *testing.T) {
	var calls int
	var last error
	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		last = &StatusError{Code: 503, Body: fmt.Sprintf("attempt %d", calls)}
		return 0, last
	}, Policy{MaxRetries: 2, BaseDelay: time.Millisecond, Sleep: recordingSleep(new([]time.Duration))})

	if err != last {
		t.Fatalf("Do() error = %v, want last error %v unchanged", err, last)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoCallsOnRetryBeforeEachRetry(t *testing.T) {
	var attempts []int
	var calls int
	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, syscall.ECONNRESET
		}
		return calls, nil
	}, Policy{
		MaxRetries: 4,
		Sleep:      recordingSleep(new([]time.Duration)),
		OnRetry:    func(attempt int, err error) { attempts = append(attempts, attempt) },
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", attempts)
	}
}

func TestDoHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	_, err := Do(ctx, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, &StatusError{Code: 500}
	}, Policy{MaxRetries: 5})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		base    time.Duration
		max     time.Duration
		want    time.Duration
	}{
		{0, time.Second, 10 * time.Second, time.Second},
		{1, time.Second, 10 * time.Second, 2 * time.Second},
		{3, time.Second, 10 * time.Second, 8 * time.Second},
		{4, time.Second, 10 * time.Second, 10 * time.Second},
		{60, time.Second, 30 * time.Second, 30 * time.Second},
		{2, 0, time.Second, 0},
		{2, time.Millisecond, 0, 4 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := Backoff(tt.attempt, tt.base, tt.max); got != tt.want {
				t.Errorf("Backoff(%d, %v, %v) = %v, want %v", tt.attempt, tt.base, tt.max, got, tt.want)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", &StatusError{Code: 429}, true},
		{"408", &StatusError{Code: 408}, true},
		{"502 wrapped", fmt.Errorf("upload: %w", &StatusError{Code: 502}), true},
		{"400", &StatusError{Code: 400}, false},
		{"401", &StatusError{Code: 401}, false},
		{"connection reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"socket hang up message", errors.New("socket hang up"), true},
		{"quota message", errors.New("RESOURCE_EXHAUSTED: quota"), true},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("invalid audio header"), false},
		{"genai 503", fmt.Errorf("generate: %w", genai.APIError{Code: 503, Status: "UNAVAILABLE"}), true},
		{"genai 400", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   int
		wantOK bool
	}{
		{"status error", fmt.Errorf("x: %w", &StatusError{Code: 429}), 429, true},
		{"genai error", genai.APIError{Code: 500}, 500, true},
		{"plain", errors.New("nope"), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := StatusCode(tt.err)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("StatusCode() = %v, %v, want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
