package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: true},
		{name: "429", err: &StatusError{StatusCode: 429}, want: true},
		{name: "503 wrapped", err: fmt.Errorf("gemini: %w", &StatusError{StatusCode: 503}), want: true},
		{name: "400", err: &StatusError{StatusCode: 400}, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryableError(tc.err); got != tc.want {
				t.Fatalf("IsRetryableError(%v)=%v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestRetryAfterDurationCapsHeader(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "120")
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != 10*time.Second {
		t.Fatalf("got %s, want 10s", got)
	}
	if got := RetryAfterDuration(nil, 2*time.Second, 10*time.Second); got != 2*time.Second {
		t.Fatalf("got %s, want 2s", got)
	}
}

func TestJitterSleepStaysWithinBand(t *testing.T) {
	for i := 0; i < 50; i++ {
		d := JitterSleep(time.Second)
		if d < 800*time.Millisecond || d > 1200*time.Millisecond {
			t.Fatalf("jitter out of band: %s", d)
		}
	}
}

func TestSleepReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}
