package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
)

// fakeClock advances instantly on Sleep so tests never block
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

// fakeExtractor returns canned payloads or errors per URL and records the
// clock time of each call.
type fakeExtractor struct {
	clock     *fakeClock
	payloads  map[string]json.RawMessage
	errors    map[string]error
	callTimes []time.Time
}

func (e *fakeExtractor) Extract(ctx context.Context, url string, schema map[string]interface{}) (json.RawMessage, error) {
	e.callTimes = append(e.callTimes, e.clock.Now())
	if err, ok := e.errors[url]; ok {
		return nil, err
	}
	if raw, ok := e.payloads[url]; ok {
		return raw, nil
	}
	return json.RawMessage(`{}`), nil
}

func newTestFetcher(clock *fakeClock, ext *fakeExtractor, opts FetcherOptions) *Fetcher {
	return NewFetcher(ext, opts, clock, arbor.NewLogger())
}

func TestFetcher_MinDelayBetweenCalls(t *testing.T) {
	clock := newFakeClock()
	ext := &fakeExtractor{clock: clock}
	f := newTestFetcher(clock, ext, FetcherOptions{MinDelay: 6 * time.Second})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := f.Extract(ctx, fmt.Sprintf("https://example.itch.io/game-%d", i), nil); err != nil {
			t.Fatalf("Extract() call %d error = %v", i, err)
		}
	}

	if len(ext.callTimes) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(ext.callTimes))
	}

	// First call goes through immediately; each later call starts exactly
	// the minimum delay after the previous call ended.
	for i := 1; i < len(ext.callTimes); i++ {
		gap := ext.callTimes[i].Sub(ext.callTimes[i-1])
		if gap < 6*time.Second {
			t.Errorf("call %d started %v after call %d, want >= 6s", i, gap, i-1)
		}
	}
}

func TestFetcher_NoDelayWhenAlreadyElapsed(t *testing.T) {
	clock := newFakeClock()
	ext := &fakeExtractor{clock: clock}
	f := newTestFetcher(clock, ext, FetcherOptions{MinDelay: 6 * time.Second})

	ctx := context.Background()
	if _, err := f.Extract(ctx, "https://example.itch.io/a", nil); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	// Caller arrives after the delay has naturally elapsed
	clock.now = clock.now.Add(10 * time.Second)
	sleepsBefore := len(clock.sleeps)

	if _, err := f.Extract(ctx, "https://example.itch.io/b", nil); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(clock.sleeps) != sleepsBefore {
		t.Errorf("expected no sleep for late caller, got %v", clock.sleeps[sleepsBefore:])
	}
}

func TestFetcher_RateLimitCooldownThenFail(t *testing.T) {
	clock := newFakeClock()
	ext := &fakeExtractor{
		clock:  clock,
		errors: map[string]error{"https://example.itch.io/limited": &RateLimitError{RetryAfter: time.Minute}},
	}
	f := newTestFetcher(clock, ext, FetcherOptions{MinDelay: 6 * time.Second, Cooldown: 60 * time.Second})

	_, err := f.Extract(context.Background(), "https://example.itch.io/limited", nil)

	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("Extract() error = %v, want *RateLimitError", err)
	}

	// The full cooldown was slept before the call failed
	found := false
	for _, d := range clock.sleeps {
		if d == 60*time.Second {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a 60s cooldown sleep, got %v", clock.sleeps)
	}
}

func TestFetcher_AuthErrorFailsFast(t *testing.T) {
	clock := newFakeClock()
	ext := &fakeExtractor{
		clock:  clock,
		errors: map[string]error{"https://example.itch.io/denied": &AuthError{StatusCode: 401, Message: "bad key"}},
	}
	f := newTestFetcher(clock, ext, FetcherOptions{MinDelay: 6 * time.Second, Cooldown: 60 * time.Second})

	_, err := f.Extract(context.Background(), "https://example.itch.io/denied", nil)

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Extract() error = %v, want *AuthError", err)
	}

	for _, d := range clock.sleeps {
		if d == 60*time.Second {
			t.Errorf("auth failure must not trigger the rate-limit cooldown")
		}
	}
}

func TestFetcher_ExtractBatchPartialSuccess(t *testing.T) {
	clock := newFakeClock()
	urls := []string{
		"https://example.itch.io/one",
		"https://example.itch.io/two",
		"https://example.itch.io/three",
		"https://example.itch.io/four",
	}
	ext := &fakeExtractor{
		clock: clock,
		payloads: map[string]json.RawMessage{
			urls[0]: json.RawMessage(`{"title":"one"}`),
			urls[2]: json.RawMessage(`{"title":"three"}`),
			urls[3]: json.RawMessage(`{"title":"four"}`),
		},
		errors: map[string]error{
			urls[1]: &APIError{StatusCode: 500, Message: "boom", URL: urls[1]},
		},
	}
	f := newTestFetcher(clock, ext, FetcherOptions{
		MinDelay:   6 * time.Second,
		BatchSize:  2,
		BatchPause: 10 * time.Second,
	})

	results := f.ExtractBatch(context.Background(), urls, nil)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if _, ok := results[urls[1]]; ok {
		t.Errorf("failed URL must be excluded from results")
	}

	// Two groups of two -> exactly one inter-group pause
	pauses := 0
	for _, d := range clock.sleeps {
		if d == 10*time.Second {
			pauses++
		}
	}
	if pauses != 1 {
		t.Errorf("expected 1 inter-group pause, got %d (sleeps: %v)", pauses, clock.sleeps)
	}
}
