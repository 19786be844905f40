// Package extractor provides a client for the structured content-extraction
// API and the shared rate-limited fetcher the funnel uses in front of it.
package extractor

import (
	"fmt"
	"time"
)

// APIError represents a non-OK response from the extraction API.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("extraction API error: %s (status: %d, url: %s)", e.Message, e.StatusCode, e.URL)
}

// RateLimitError represents a provider rate-limit signal. The call that hit
// it has already waited out the cooldown and may be retried by the caller.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("extraction rate limit exceeded, retry after %v", e.RetryAfter)
}

// AuthError represents an authentication or configuration failure.
// Non-retryable: the run should surface it immediately.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("extraction auth error: %s (status: %d)", e.Message, e.StatusCode)
}
