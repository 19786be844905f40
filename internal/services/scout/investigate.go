package scout

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

const (
	// investigationRatio is the share of a listing batch eligible for
	// expensive enrichment.
	investigationRatio = 0.4

	// maxInvestigations is the hard cap on enrichment per run
	maxInvestigations = 10

	// exceededLimitNote annotates decisions forced to reject by the cap
	exceededLimitNote = "exceeded investigation limit"

	// fallbackAdvanceScore / fallbackRejectScore are the deterministic
	// heuristic scores used when the scoring service is unavailable.
	fallbackAdvanceScore = 0.6
	fallbackRejectScore  = 0.5

	// minSummaryLen is the heuristic floor for a listing summary to be
	// considered informative enough to investigate without a score.
	minSummaryLen = 20
)

// InvestigationGate selects the bounded subset of listings worth an
// expensive detail fetch. One scoring call per batch; a deterministic
// heuristic stands in when the service fails.
type InvestigationGate struct {
	scoring interfaces.ScoringService
	logger  arbor.ILogger
}

// NewInvestigationGate creates an investigation gate
func NewInvestigationGate(scoring interfaces.ScoringService, logger arbor.ILogger) *InvestigationGate {
	return &InvestigationGate{
		scoring: scoring,
		logger:  logger,
	}
}

// EnrichmentCap returns min(ceil(0.4*n), 10)
func EnrichmentCap(n int) int {
	if n <= 0 {
		return 0
	}
	k := int(math.Ceil(investigationRatio * float64(n)))
	if k > maxInvestigations {
		k = maxInvestigations
	}
	return k
}

// SelectForEnrichment produces exactly one decision per input listing,
// sorted by score descending, with at most EnrichmentCap(len(listings))
// advance verdicts. No listing is ever dropped silently.
func (g *InvestigationGate) SelectForEnrichment(ctx context.Context, runID string, mission *models.Mission, listings []models.Listing) []models.GateDecision {
	if len(listings) == 0 {
		return nil
	}

	k := EnrichmentCap(len(listings))

	verdicts, err := g.scoring.ScoreListings(ctx, mission, listings)
	var decisions []models.GateDecision
	if err != nil || len(verdicts) == 0 {
		if err != nil {
			g.logger.Warn().
				Str("run_id", runID).
				Err(err).
				Msg("Scoring service failed at investigation gate, using heuristic fallback")
		}
		decisions = g.fallbackDecisions(runID, listings)
	} else {
		decisions = g.mergeVerdicts(runID, listings, verdicts)
	}

	// Rank by score; ties keep input order
	sort.SliceStable(decisions, func(i, j int) bool {
		return decisions[i].Score > decisions[j].Score
	})

	// The cap is absolute: anything beyond rank k is rejected no matter
	// what the service said.
	advanced := 0
	for i := range decisions {
		if decisions[i].Verdict != models.VerdictAdvance {
			continue
		}
		if i >= k || advanced >= k {
			decisions[i].Verdict = models.VerdictReject
			decisions[i].Rationale = annotate(decisions[i].Rationale, exceededLimitNote)
			continue
		}
		advanced++
	}

	g.logger.Info().
		Str("run_id", runID).
		Int("listings", len(listings)).
		Int("cap", k).
		Int("advanced", advanced).
		Msg("Investigation gate decided")

	return decisions
}

// mergeVerdicts joins service verdicts back to listings by key. Listings
// missing from a partial response are rejected with an explanatory
// rationale rather than dropped.
func (g *InvestigationGate) mergeVerdicts(runID string, listings []models.Listing, verdicts []interfaces.ItemVerdict) []models.GateDecision {
	byKey := make(map[string]interfaces.ItemVerdict, len(verdicts))
	for _, v := range verdicts {
		byKey[v.Key] = v
	}

	now := time.Now().UTC()
	decisions := make([]models.GateDecision, 0, len(listings))
	for _, l := range listings {
		decision := models.GateDecision{
			RunID:     runID,
			Stage:     models.StageInvestigation,
			ItemKey:   l.Key(),
			DecidedAt: now,
		}

		if v, ok := byKey[l.Key()]; ok {
			decision.Verdict = models.VerdictReject
			if v.Advance {
				decision.Verdict = models.VerdictAdvance
			}
			decision.Score = v.Score
			decision.Rationale = v.Rationale
		} else {
			decision.Verdict = models.VerdictReject
			decision.Score = 0
			decision.Rationale = "no verdict returned by scoring service"
		}

		decisions = append(decisions, decision)
	}
	return decisions
}

// fallbackDecisions is the deterministic heuristic used when the scoring
// service is down: advance listings with an informative summary.
func (g *InvestigationGate) fallbackDecisions(runID string, listings []models.Listing) []models.GateDecision {
	now := time.Now().UTC()
	decisions := make([]models.GateDecision, 0, len(listings))
	for _, l := range listings {
		decision := models.GateDecision{
			RunID:     runID,
			Stage:     models.StageInvestigation,
			ItemKey:   l.Key(),
			DecidedAt: now,
		}

		if len(l.Summary) > minSummaryLen {
			decision.Verdict = models.VerdictAdvance
			decision.Score = fallbackAdvanceScore
			decision.Rationale = "heuristic fallback: summary present and informative"
		} else {
			decision.Verdict = models.VerdictReject
			decision.Score = fallbackRejectScore
			decision.Rationale = "heuristic fallback: summary missing or too short"
		}

		decisions = append(decisions, decision)
	}
	return decisions
}

func annotate(rationale, note string) string {
	if rationale == "" {
		return note
	}
	return fmt.Sprintf("%s; %s", rationale, note)
}
