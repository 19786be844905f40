package models

import "time"

// Listing is a lightweight candidate record produced by the source scanner.
// The URL is the stable identity key across all stages of one run; listings
// are ephemeral and never persisted directly.
type Listing struct {
	Title     string `json:"title"`
	Developer string `json:"developer"`
	URL       string `json:"url"`
	Price     string `json:"price,omitempty"`
	Genre     string `json:"genre,omitempty"`
	Summary   string `json:"summary,omitempty"`
	// SourcePage is the listing page the candidate was extracted from
	SourcePage string `json:"source_page,omitempty"`
	// KeywordHits records which mission keywords matched title/summary.
	// Informative only - never used to exclude a candidate at scan time.
	KeywordHits []string `json:"keyword_hits,omitempty"`
}

// Key returns the join key used to tie decisions and enrichment back to the
// listing: the canonical URL, or the title when the URL is absent.
func (l *Listing) Key() string {
	if l.URL != "" {
		return l.URL
	}
	return l.Title
}

// Comment is one piece of community feedback on an enriched item
type Comment struct {
	Author           string     `json:"author"`
	Text             string     `json:"text"`
	PostedAt         *time.Time `json:"posted_at,omitempty"`
	IsDeveloperReply bool       `json:"is_developer_reply"`
}

// EnrichedItem is a listing plus the full detail fetched by the detail
// scanner. Ephemeral; only approved items are persisted as discoveries.
type EnrichedItem struct {
	Listing
	Description string    `json:"description"`
	Tags        []string  `json:"tags,omitempty"`
	Platforms   []string  `json:"platforms,omitempty"`
	Rating      float64   `json:"rating,omitempty"` // Displayed rating on a 0-5 scale, 0 when absent
	Screenshots []string  `json:"screenshots,omitempty"`
	Comments    []Comment `json:"comments,omitempty"`
}

// HasDeveloperReply reports whether any comment is a reply from the developer
func (e *EnrichedItem) HasDeveloperReply() bool {
	for _, c := range e.Comments {
		if c.IsDeveloperReply {
			return true
		}
	}
	return false
}

// LatestCommentAt returns the most recent comment timestamp, or nil when no
// comment carries one.
func (e *EnrichedItem) LatestCommentAt() *time.Time {
	var latest *time.Time
	for i := range e.Comments {
		ts := e.Comments[i].PostedAt
		if ts == nil {
			continue
		}
		if latest == nil || ts.After(*latest) {
			latest = ts
		}
	}
	return latest
}
