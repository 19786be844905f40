package interfaces

import (
	"context"

	"github.com/ternarybob/venari/internal/models"
)

// CategoryScore is one category label suggested for a mission, with the
// classifier's confidence in [0,1].
type CategoryScore struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ItemVerdict is one normalized scoring result for one item. Whatever shape
// the scoring backend returns, callers always see this structure.
type ItemVerdict struct {
	Key       string           `json:"key"` // Listing URL, or title when URL absent
	Advance   bool             `json:"advance"`
	Score     float64          `json:"score"` // In [0,1]
	Rationale string           `json:"rationale"`
	Sentiment models.Sentiment `json:"sentiment,omitempty"` // Storage stage only, may be empty
}

// ScoringService scores batches of items against a mission brief.
// Implementations must issue exactly one backend call per batch. The funnel
// tolerates errors, empty responses and partial responses from every method;
// each gate carries its own deterministic fallback.
type ScoringService interface {
	// ClassifyCategories suggests platform category labels for a mission.
	// Used by the source scanner to pick listing pages.
	ClassifyCategories(ctx context.Context, mission *models.Mission) ([]CategoryScore, error)

	// ScoreListings produces one verdict per candidate listing (investigation stage)
	ScoreListings(ctx context.Context, mission *models.Mission, listings []models.Listing) ([]ItemVerdict, error)

	// ScoreEnriched produces one verdict per enriched item (storage stage),
	// optionally including a sentiment label.
	ScoreEnriched(ctx context.Context, mission *models.Mission, items []models.EnrichedItem) ([]ItemVerdict, error)
}
