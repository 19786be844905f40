package scout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

// maxCommentsPerItem bounds the community feedback fetched per game page
const maxCommentsPerItem = 15

// DetailScanner enriches the listings advanced by the investigation gate.
// Enrichment is strictly sequential: community data extraction is expensive
// and rate-sensitive, and the shared fetcher's delay applies between calls.
type DetailScanner struct {
	fetcher interfaces.Fetcher
	logger  arbor.ILogger
}

// NewDetailScanner creates a detail scanner
func NewDetailScanner(fetcher interfaces.Fetcher, logger arbor.ILogger) *DetailScanner {
	return &DetailScanner{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Enrich fetches full detail for each listing in order. Per-URL failures
// are logged and skipped - never retried within a run, never fatal. The
// returned slice holds whatever subset succeeded.
func (d *DetailScanner) Enrich(ctx context.Context, listings []models.Listing) []models.EnrichedItem {
	items := make([]models.EnrichedItem, 0, len(listings))

	for _, listing := range listings {
		if listing.URL == "" {
			d.logger.Warn().
				Str("title", listing.Title).
				Msg("Listing has no URL, cannot enrich")
			continue
		}

		raw, err := d.fetcher.Extract(ctx, listing.URL, detailSchema(maxCommentsPerItem))
		if err != nil {
			d.logger.Warn().
				Str("url", listing.URL).
				Err(err).
				Msg("Detail extraction failed, skipping item")
			continue
		}

		item, ok := d.parseDetail(listing, raw)
		if !ok {
			d.logger.Warn().
				Str("url", listing.URL).
				Msg("Detail payload empty or non-conforming, skipping item")
			continue
		}

		items = append(items, item)

		d.logger.Debug().
			Str("url", listing.URL).
			Int("comments", len(item.Comments)).
			Msg("Item enriched")
	}

	return items
}

// parseDetail merges a detail payload onto its listing. Comment text that
// arrives as HTML is flattened to plain text before anything downstream
// (sentiment, persistence) sees it.
func (d *DetailScanner) parseDetail(listing models.Listing, raw json.RawMessage) (models.EnrichedItem, bool) {
	if len(raw) == 0 {
		return models.EnrichedItem{}, false
	}

	var payload detailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.EnrichedItem{}, false
	}
	if payload.Description == "" && len(payload.Comments) == 0 && len(payload.Tags) == 0 {
		return models.EnrichedItem{}, false
	}

	item := models.EnrichedItem{
		Listing:     listing,
		Description: payload.Description,
		Tags:        payload.Tags,
		Platforms:   payload.Platforms,
		Rating:      payload.Rating,
		Screenshots: payload.Screenshots,
	}

	count := len(payload.Comments)
	if count > maxCommentsPerItem {
		count = maxCommentsPerItem
	}
	item.Comments = make([]models.Comment, 0, count)
	for _, c := range payload.Comments[:count] {
		comment := models.Comment{
			Author:           c.Author,
			Text:             FlattenHTMLText(c.Text),
			IsDeveloperReply: c.IsDeveloperReply,
		}
		if ts, ok := parseCommentDate(c.Date); ok {
			comment.PostedAt = &ts
		}
		item.Comments = append(item.Comments, comment)
	}

	return item, true
}

// commentDateFormats are tried in order; platform comment timestamps are
// not uniform.
var commentDateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Jan 02, 2006",
}

func parseCommentDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range commentDateFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
