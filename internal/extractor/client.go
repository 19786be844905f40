package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the extraction API.
	DefaultBaseURL = "https://api.firecrawl.dev"

	// DefaultTimeout is the default HTTP timeout. Structured extraction of a
	// rendered page can take tens of seconds.
	DefaultTimeout = 90 * time.Second

	// DefaultRateLimit is the default client-side guard (requests per second).
	DefaultRateLimit = 1
)

// Client is a structured content-extraction API client (Firecrawl-style
// scrape endpoint with a JSON extraction schema).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom client-side rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new extraction API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// scrapeRequest is the wire format of the scrape endpoint
type scrapeRequest struct {
	URL         string         `json:"url"`
	Formats     []string       `json:"formats"`
	JSONOptions *scrapeOptions `json:"jsonOptions,omitempty"`
}

type scrapeOptions struct {
	Schema map[string]interface{} `json:"schema"`
}

// scrapeResponse is the wire format of the scrape endpoint response
type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		JSON json.RawMessage `json:"json"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// Extract requests a structured extraction of url matching schema.
// Returns the raw JSON payload; an empty or non-conforming payload is the
// caller's signal that the URL yielded no data.
func (c *Client) Extract(ctx context.Context, url string, schema map[string]interface{}) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, &AuthError{StatusCode: 0, Message: "extraction API key not configured"}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &RateLimitError{RetryAfter: time.Second}
	}

	body, err := json.Marshal(scrapeRequest{
		URL:         url,
		Formats:     []string{"json"},
		JSONOptions: &scrapeOptions{Schema: schema},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	if c.logger != nil {
		c.logger.Debug().
			Str("url", url).
			Msg("Extraction API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: string(respBody)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{RetryAfter: time.Minute}
	case resp.StatusCode != http.StatusOK:
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody), URL: url}
	}

	var result scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: result.Error, URL: url}
	}

	return result.Data.JSON, nil
}
