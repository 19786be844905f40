package interfaces

import (
	"context"
	"encoding/json"
)

// ContentExtractor turns a URL into structured JSON matching the given
// extraction schema. A non-conforming or empty result is "no data for this
// URL", never a fatal error for the funnel.
type ContentExtractor interface {
	Extract(ctx context.Context, url string, schema map[string]interface{}) (json.RawMessage, error)
}

// Fetcher is the shared rate-limited front to the extraction provider.
// All extraction traffic for all concurrent runs passes through one Fetcher
// instance so the global inter-request delay holds.
type Fetcher interface {
	ContentExtractor

	// ExtractBatch fetches a set of URLs in groups, with the full
	// inter-call delay within a group and an extra pause between groups.
	// Per-URL failures are swallowed; the result only contains URLs that
	// succeeded.
	ExtractBatch(ctx context.Context, urls []string, schema map[string]interface{}) map[string]json.RawMessage
}
