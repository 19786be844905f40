package scout

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

// Engagement score caps. Signals saturate rather than grow without bound:
// fifteen comments is as engaged as the score can register.
const (
	engagementMaxComments    = 15
	engagementMaxScreenshots = 10
	engagementMaxTags        = 10
)

// WriteFailure records one item that could not be persisted
type WriteFailure struct {
	ItemKey string
	Err     error
}

// WriteResult reports the outcome of a persistence batch. Partial failure
// is normal: stored items stay stored, failures are counted on the run.
type WriteResult struct {
	Stored []string // Discovery IDs
	Failed []WriteFailure
}

// Writer persists approved items as discoveries
type Writer struct {
	discoveries interfaces.DiscoveryStorage
	logger      arbor.ILogger
}

// NewWriter creates a persistence writer
func NewWriter(discoveries interfaces.DiscoveryStorage, logger arbor.ILogger) *Writer {
	return &Writer{
		discoveries: discoveries,
		logger:      logger,
	}
}

// Persist writes one discovery per approved item. Each item is written
// independently; a failure never aborts the batch.
func (w *Writer) Persist(ctx context.Context, run *models.Run, mission *models.Mission, items []models.EnrichedItem, decisions []models.GateDecision) WriteResult {
	byKey := make(map[string]models.GateDecision, len(decisions))
	for _, d := range decisions {
		byKey[d.ItemKey] = d
	}

	var result WriteResult
	for _, item := range items {
		decision, ok := byKey[item.Key()]
		if !ok || !decision.Advanced() {
			continue
		}

		discovery := w.buildDiscovery(run, mission, item, decision)
		if err := w.discoveries.SaveDiscovery(ctx, discovery); err != nil {
			w.logger.Error().
				Str("run_id", run.ID).
				Str("url", item.URL).
				Err(err).
				Msg("Failed to persist discovery")
			result.Failed = append(result.Failed, WriteFailure{ItemKey: item.Key(), Err: err})
			continue
		}

		result.Stored = append(result.Stored, discovery.ID)
		w.logger.Debug().
			Str("run_id", run.ID).
			Str("discovery_id", discovery.ID).
			Str("external_id", discovery.ExternalID).
			Msg("Discovery persisted")
	}

	w.logger.Info().
		Str("run_id", run.ID).
		Int("stored", len(result.Stored)).
		Int("failed", len(result.Failed)).
		Msg("Persistence batch complete")

	return result
}

func (w *Writer) buildDiscovery(run *models.Run, mission *models.Mission, item models.EnrichedItem, decision models.GateDecision) *models.Discovery {
	return &models.Discovery{
		ID:              common.NewDiscoveryID(),
		RunID:           run.ID,
		MissionID:       mission.ID,
		Platform:        mission.Platform,
		ExternalID:      common.ExternalID(mission.Platform, item.URL, run.StartedAt),
		URL:             item.URL,
		Title:           item.Title,
		Developer:       item.Developer,
		Content:         NormalizeDescription(item.Description, item.URL),
		EngagementScore: engagementScore(item),
		RelevanceScore:  decision.Score,
		SentimentScore:  decision.Sentiment,
		Metadata: models.DiscoveryMetadata{
			Tags:          item.Tags,
			Platforms:     item.Platforms,
			Rating:        item.Rating,
			Price:         item.Price,
			Genre:         item.Genre,
			Screenshots:   item.Screenshots,
			Comments:      item.Comments,
			GateRationale: decision.Rationale,
		},
		CreatedAt: time.Now().UTC(),
	}
}

// engagementScore weighs community activity (comments) at half, with
// presentation effort (screenshots) and discoverability (tags) a quarter
// each. Each signal saturates at its cap.
func engagementScore(item models.EnrichedItem) float64 {
	comments := len(item.Comments)
	if comments > engagementMaxComments {
		comments = engagementMaxComments
	}
	screens := len(item.Screenshots)
	if screens > engagementMaxScreenshots {
		screens = engagementMaxScreenshots
	}
	tags := len(item.Tags)
	if tags > engagementMaxTags {
		tags = engagementMaxTags
	}

	return float64(comments)/engagementMaxComments*0.5 +
		float64(screens)/engagementMaxScreenshots*0.25 +
		float64(tags)/engagementMaxTags*0.25
}
