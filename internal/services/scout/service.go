package scout

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

// Service orchestrates the full funnel for one mission: scan, investigate,
// enrich, gate, persist. Runs execute sequentially; concurrency lives inside
// collaborators, never across stages.
type Service struct {
	storage interfaces.StorageManager
	scanner *SourceScanner
	gate    *InvestigationGate
	detail  *DetailScanner
	store   *StorageGate
	writer  *Writer
	logger  arbor.ILogger
}

// NewService wires the funnel stages onto shared collaborators
func NewService(storage interfaces.StorageManager, fetcher interfaces.Fetcher, scoring interfaces.ScoringService, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		scanner: NewSourceScanner(fetcher, scoring, logger),
		gate:    NewInvestigationGate(scoring, logger),
		detail:  NewDetailScanner(fetcher, logger),
		store:   NewStorageGate(scoring, logger),
		writer:  NewWriter(storage.Discoveries(), logger),
		logger:  logger,
	}
}

// Run executes one funnel pass for the given mission. It always returns a
// summary; the error reports run-level failure (the run record is still
// finalized and persisted in that case).
func (s *Service) Run(ctx context.Context, missionID string) (*models.RunSummary, error) {
	run := models.NewRun(common.NewRunID(), missionID)
	if err := s.storage.Runs().SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run record: %w", err)
	}

	mission, err := s.storage.Missions().GetMission(ctx, missionID)
	if err != nil {
		return s.fail(ctx, run, fmt.Errorf("mission %s not found: %w", missionID, err))
	}

	s.logger.Info().
		Str("run_id", run.ID).
		Str("mission_id", mission.ID).
		Str("platform", mission.Platform).
		Msg("Scout run started")

	// Stage 1: source scan
	listings, err := s.scanner.Scan(ctx, mission)
	if err != nil {
		return s.fail(ctx, run, fmt.Errorf("source scan failed: %w", err))
	}
	run.Found = len(listings)
	s.updateRun(ctx, run)

	if len(listings) == 0 {
		s.logger.Info().
			Str("run_id", run.ID).
			Msg("No candidates found, completing run")
		run.Finalize(models.RunStatusCompleted, "")
		s.updateRun(ctx, run)
		return s.summary(run, 0, 0), nil
	}

	// Stage 2: investigation gate
	run.AdvanceStatus(models.RunStatusAnalyzing)
	s.updateRun(ctx, run)

	investigation := s.gate.SelectForEnrichment(ctx, run.ID, mission, listings)
	if err := s.storage.Runs().SaveDecisions(ctx, investigation); err != nil {
		return s.fail(ctx, run, fmt.Errorf("failed to record investigation decisions: %w", err))
	}

	advanced := advancedListings(listings, investigation)
	if len(advanced) == 0 {
		run.Finalize(models.RunStatusCompleted, "")
		s.updateRun(ctx, run)
		return s.summary(run, 0, 0), nil
	}

	// Stage 3: detail enrichment
	items := s.detail.Enrich(ctx, advanced)
	run.Processed = len(items)
	run.AddErrors(len(advanced) - len(items))
	s.updateRun(ctx, run)

	if len(items) == 0 {
		run.Finalize(models.RunStatusCompleted, "")
		s.updateRun(ctx, run)
		return s.summary(run, len(advanced), 0), nil
	}

	// Stage 4: storage gate
	storage := s.store.SelectForStorage(ctx, run.ID, mission, items)
	if err := s.storage.Runs().SaveDecisions(ctx, storage); err != nil {
		return s.fail(ctx, run, fmt.Errorf("failed to record storage decisions: %w", err))
	}

	// Stage 5: persistence
	run.AdvanceStatus(models.RunStatusStoring)
	s.updateRun(ctx, run)

	result := s.writer.Persist(ctx, run, mission, items, storage)
	run.Stored = len(result.Stored)
	run.AddErrors(len(result.Failed))

	run.Finalize(models.RunStatusCompleted, "")
	s.updateRun(ctx, run)

	s.logger.Info().
		Str("run_id", run.ID).
		Int("found", run.Found).
		Int("enriched", run.Processed).
		Int("stored", run.Stored).
		Int("errors", run.Errors).
		Msg("Scout run completed")

	return s.summary(run, len(advanced), len(items)), nil
}

// fail finalizes the run as failed, persists it and returns the summary
// alongside the error.
func (s *Service) fail(ctx context.Context, run *models.Run, err error) (*models.RunSummary, error) {
	s.logger.Error().
		Str("run_id", run.ID).
		Err(err).
		Msg("Scout run failed")

	run.Finalize(models.RunStatusFailed, err.Error())
	s.updateRun(ctx, run)
	return s.summary(run, 0, run.Processed), err
}

// updateRun persists run state; persistence trouble here must not mask the
// actual run outcome, so it is logged and swallowed.
func (s *Service) updateRun(ctx context.Context, run *models.Run) {
	if err := s.storage.Runs().UpdateRun(ctx, run); err != nil {
		s.logger.Warn().
			Str("run_id", run.ID).
			Err(err).
			Msg("Failed to persist run state")
	}
}

func (s *Service) summary(run *models.Run, investigated, enriched int) *models.RunSummary {
	completed := run.CompletedAt
	if completed.IsZero() {
		completed = time.Now().UTC()
	}
	return &models.RunSummary{
		RunID:        run.ID,
		MissionID:    run.MissionID,
		Status:       run.Status,
		Found:        run.Found,
		Investigated: investigated,
		Enriched:     enriched,
		Stored:       run.Stored,
		Errors:       run.Errors,
		Duration:     completed.Sub(run.StartedAt),
	}
}

// advancedListings returns the listings the investigation gate advanced,
// preserving the gate's ranking order.
func advancedListings(listings []models.Listing, decisions []models.GateDecision) []models.Listing {
	byKey := make(map[string]models.Listing, len(listings))
	for _, l := range listings {
		byKey[l.Key()] = l
	}

	var advanced []models.Listing
	for _, d := range decisions {
		if !d.Advanced() {
			continue
		}
		if l, ok := byKey[d.ItemKey]; ok {
			advanced = append(advanced, l)
		}
	}
	return advanced
}
