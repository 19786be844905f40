package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/interfaces"
)

// Fetcher wraps a content extractor with a global minimum inter-request
// delay. The delay is measured from the end of the previous call; callers
// that arrive early block until it elapses. One Fetcher instance is shared
// by all concurrent runs, so the timing cursor is protected by a mutex held
// for the duration of each call.
type Fetcher struct {
	client     interfaces.ContentExtractor
	clock      Clock
	logger     arbor.ILogger
	minDelay   time.Duration
	cooldown   time.Duration
	batchSize  int
	batchPause time.Duration

	mu       sync.Mutex
	lastDone time.Time
}

// FetcherOptions configures a Fetcher
type FetcherOptions struct {
	MinDelay   time.Duration // Minimum delay between calls, measured call-end to call-start
	Cooldown   time.Duration // Sleep applied after a provider rate-limit error
	BatchSize  int           // URLs per group in ExtractBatch
	BatchPause time.Duration // Extra pause between groups in ExtractBatch
}

// NewFetcher creates a rate-limited fetcher in front of client
func NewFetcher(client interfaces.ContentExtractor, opts FetcherOptions, clock Clock, logger arbor.ILogger) *Fetcher {
	if clock == nil {
		clock = NewRealClock()
	}
	if opts.MinDelay <= 0 {
		opts.MinDelay = 6 * time.Second
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 60 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 5
	}
	if opts.BatchPause <= 0 {
		opts.BatchPause = 10 * time.Second
	}

	return &Fetcher{
		client:     client,
		clock:      clock,
		logger:     logger,
		minDelay:   opts.MinDelay,
		cooldown:   opts.Cooldown,
		batchSize:  opts.BatchSize,
		batchPause: opts.BatchPause,
	}
}

// Extract fetches one URL through the shared pacing state.
//
// On a provider rate-limit error the fetcher sleeps the full cooldown and
// then fails this call with the retryable *RateLimitError - no silent
// retrying. Auth errors fail fast and are non-retryable.
func (f *Fetcher) Extract(ctx context.Context, url string, schema map[string]interface{}) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.waitTurn(ctx); err != nil {
		return nil, err
	}

	result, err := f.client.Extract(ctx, url, schema)
	f.lastDone = f.clock.Now()

	if err != nil {
		var rateErr *RateLimitError
		if errors.As(err, &rateErr) {
			f.logger.Warn().
				Str("url", url).
				Dur("cooldown", f.cooldown).
				Msg("Extraction provider rate limited, cooling down")

			if sleepErr := f.clock.Sleep(ctx, f.cooldown); sleepErr != nil {
				return nil, sleepErr
			}
			f.lastDone = f.clock.Now()
			return nil, err
		}

		var authErr *AuthError
		if errors.As(err, &authErr) {
			// Misconfiguration, nothing a retry can fix
			return nil, err
		}

		return nil, err
	}

	return result, nil
}

// waitTurn blocks until the minimum delay since the previous call has
// elapsed. Callers must hold f.mu.
func (f *Fetcher) waitTurn(ctx context.Context) error {
	if f.lastDone.IsZero() {
		return nil
	}

	nextAllowed := f.lastDone.Add(f.minDelay)
	wait := nextAllowed.Sub(f.clock.Now())
	if wait <= 0 {
		return nil
	}
	return f.clock.Sleep(ctx, wait)
}

// ExtractBatch fetches urls in groups. The full inter-call delay applies
// within a group and an additional pause is inserted between groups.
// Individual URL failures are logged and excluded from the result set;
// partial success is normal, not exceptional.
func (f *Fetcher) ExtractBatch(ctx context.Context, urls []string, schema map[string]interface{}) map[string]json.RawMessage {
	results := make(map[string]json.RawMessage)

	for start := 0; start < len(urls); start += f.batchSize {
		end := start + f.batchSize
		if end > len(urls) {
			end = len(urls)
		}

		for _, url := range urls[start:end] {
			raw, err := f.Extract(ctx, url, schema)
			if err != nil {
				f.logger.Warn().
					Str("url", url).
					Err(err).
					Msg("Batch extraction failed for URL, skipping")
				continue
			}
			if len(raw) == 0 {
				continue
			}
			results[url] = raw
		}

		if end < len(urls) {
			if err := f.clock.Sleep(ctx, f.batchPause); err != nil {
				// Context gone; return what we have
				return results
			}
		}
	}

	return results
}
