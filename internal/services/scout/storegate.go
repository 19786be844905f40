package scout

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

const (
	// belowThresholdNote annotates verdicts overridden by the local
	// quality threshold check.
	belowThresholdNote = "below mission quality threshold"

	// compositeRecencyWindow is how recent a comment must be to count
	// as active community engagement in the composite fallback.
	compositeRecencyWindow = 30 * 24 * time.Hour

	compositeMinRating = 4.0
)

// StorageGate is the final quality check before persistence. It scores all
// enriched items in one batch and enforces the mission's quality threshold
// locally, regardless of what the scoring service said.
type StorageGate struct {
	scoring interfaces.ScoringService
	logger  arbor.ILogger
}

// NewStorageGate creates a storage gate
func NewStorageGate(scoring interfaces.ScoringService, logger arbor.ILogger) *StorageGate {
	return &StorageGate{
		scoring: scoring,
		logger:  logger,
	}
}

// SelectForStorage scores enriched items in a single batch and returns one
// decision per item. Scoring failure falls back to a deterministic composite
// of the item's own signals. Every decision, whatever its origin, is then
// checked against the mission threshold.
func (g *StorageGate) SelectForStorage(ctx context.Context, runID string, mission *models.Mission, items []models.EnrichedItem) []models.GateDecision {
	if len(items) == 0 {
		return nil
	}

	var decisions []models.GateDecision

	verdicts, err := g.scoring.ScoreEnriched(ctx, mission, items)
	if err != nil {
		g.logger.Warn().
			Str("run_id", runID).
			Err(err).
			Msg("Storage scoring failed, using composite fallback")
		decisions = g.fallbackDecisions(runID, items, time.Now().UTC())
	} else {
		decisions = g.mergeVerdicts(runID, items, verdicts)
	}

	stored := 0
	for i := range decisions {
		if decisions[i].Verdict != models.VerdictAdvance {
			continue
		}
		if decisions[i].Score < mission.QualityThreshold {
			decisions[i].Verdict = models.VerdictReject
			decisions[i].Rationale = annotate(decisions[i].Rationale,
				fmt.Sprintf("%s (%.2f < %.2f)", belowThresholdNote, decisions[i].Score, mission.QualityThreshold))
			continue
		}
		stored++
	}

	g.logger.Info().
		Str("run_id", runID).
		Int("items", len(items)).
		Int("approved", stored).
		Float64("threshold", mission.QualityThreshold).
		Msg("Storage gate decided")

	return decisions
}

// mergeVerdicts joins service verdicts back to items by key. Items missing
// from a partial response get the composite fallback instead of a blanket
// reject: at this stage the item already passed investigation, so its own
// signals are worth more than nothing.
func (g *StorageGate) mergeVerdicts(runID string, items []models.EnrichedItem, verdicts []interfaces.ItemVerdict) []models.GateDecision {
	byKey := make(map[string]interfaces.ItemVerdict, len(verdicts))
	for _, v := range verdicts {
		byKey[v.Key] = v
	}

	now := time.Now().UTC()
	decisions := make([]models.GateDecision, 0, len(items))
	for _, item := range items {
		if v, ok := byKey[item.Key()]; ok {
			decision := models.GateDecision{
				RunID:     runID,
				Stage:     models.StageStorage,
				ItemKey:   item.Key(),
				Verdict:   models.VerdictReject,
				Score:     v.Score,
				Rationale: v.Rationale,
				Sentiment: v.Sentiment,
				DecidedAt: now,
			}
			if v.Advance {
				decision.Verdict = models.VerdictAdvance
			}
			if decision.Sentiment == "" {
				decision.Sentiment = ClassifyComments(item.Comments)
			}
			decisions = append(decisions, decision)
			continue
		}
		decisions = append(decisions, g.compositeDecision(runID, item, now))
	}
	return decisions
}

// fallbackDecisions scores every item with the composite heuristic. The
// clock is passed in so the recency component stays deterministic.
func (g *StorageGate) fallbackDecisions(runID string, items []models.EnrichedItem, now time.Time) []models.GateDecision {
	decisions := make([]models.GateDecision, 0, len(items))
	for _, item := range items {
		decisions = append(decisions, g.compositeDecision(runID, item, now))
	}
	return decisions
}

func (g *StorageGate) compositeDecision(runID string, item models.EnrichedItem, now time.Time) models.GateDecision {
	score := compositeScore(item, now)
	return models.GateDecision{
		RunID:     runID,
		Stage:     models.StageStorage,
		ItemKey:   item.Key(),
		Verdict:   models.VerdictAdvance,
		Score:     score,
		Rationale: fmt.Sprintf("composite fallback score %.2f from item signals", score),
		Sentiment: ClassifyComments(item.Comments),
		DecidedAt: now,
	}
}

// compositeScore derives a quality estimate from the item's own signals:
// 0.5 base, +0.2 any comments, +0.2 developer engagement, +0.1 rating at
// or above 4.0, +0.1 a comment within the recency window.
func compositeScore(item models.EnrichedItem, now time.Time) float64 {
	score := 0.5
	if len(item.Comments) > 0 {
		score += 0.2
	}
	if item.HasDeveloperReply() {
		score += 0.2
	}
	if item.Rating >= compositeMinRating {
		score += 0.1
	}
	if latest := item.LatestCommentAt(); latest != nil && now.Sub(*latest) <= compositeRecencyWindow {
		score += 0.1
	}
	return score
}
