package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
	"github.com/ternarybob/venari/internal/services/scout"
)

// Cron expressions for the named cadence labels. Anything else in the
// mission's cadence field is treated as a raw cron expression.
var cadenceSchedules = map[string]string{
	models.CadenceHourly: "0 * * * *",
	models.CadenceDaily:  "0 6 * * *",
	models.CadenceWeekly: "0 6 * * 1",
}

// missionEntry tracks one scheduled mission
type missionEntry struct {
	missionID string
	schedule  string
	cronID    cron.EntryID
	lastRun   *time.Time
	lastError string
	running   bool
}

// Service schedules mission runs on their cadence. One mission never runs
// concurrently with itself; distinct missions may overlap since the shared
// fetcher serializes extraction traffic anyway.
type Service struct {
	scout   *scout.Service
	storage interfaces.StorageManager
	cron    *cron.Cron
	logger  arbor.ILogger

	mu       sync.Mutex
	missions map[string]*missionEntry
	started  bool
}

// NewService creates a mission scheduler
func NewService(scoutService *scout.Service, storage interfaces.StorageManager, logger arbor.ILogger) *Service {
	return &Service{
		scout:    scoutService,
		storage:  storage,
		cron:     cron.New(),
		logger:   logger,
		missions: make(map[string]*missionEntry),
	}
}

// Start registers all enabled missions with a runnable cadence and begins
// the cron loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.started = true
	s.mu.Unlock()

	missions, err := s.storage.Missions().ListEnabledMissions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load missions for scheduling: %w", err)
	}

	registered := 0
	for _, mission := range missions {
		if err := s.register(mission); err != nil {
			s.logger.Warn().
				Str("mission_id", mission.ID).
				Err(err).
				Msg("Failed to schedule mission")
			continue
		}
		registered++
	}

	s.cron.Start()
	s.logger.Info().
		Int("missions", registered).
		Msg("Scheduler started")

	return nil
}

// Stop halts the cron loop and waits for in-flight runs to finish
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// register adds one mission to the cron table
func (s *Service) register(mission *models.Mission) error {
	schedule, ok := scheduleFor(mission.Cadence)
	if !ok {
		s.logger.Debug().
			Str("mission_id", mission.ID).
			Str("cadence", mission.Cadence).
			Msg("Mission has no runnable cadence, skipping")
		return nil
	}

	entry := &missionEntry{
		missionID: mission.ID,
		schedule:  schedule,
	}

	cronID, err := s.cron.AddFunc(schedule, func() {
		s.runMission(entry)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	entry.cronID = cronID

	s.mu.Lock()
	s.missions[mission.ID] = entry
	s.mu.Unlock()

	s.logger.Info().
		Str("mission_id", mission.ID).
		Str("schedule", schedule).
		Msg("Mission scheduled")

	return nil
}

// runMission executes one scheduled run, skipping if the previous run of
// the same mission is still going.
func (s *Service) runMission(entry *missionEntry) {
	s.mu.Lock()
	if entry.running {
		s.mu.Unlock()
		s.logger.Warn().
			Str("mission_id", entry.missionID).
			Msg("Previous run still in progress, skipping scheduled run")
		return
	}
	entry.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		entry.running = false
		now := time.Now().UTC()
		entry.lastRun = &now
		s.mu.Unlock()
	}()

	summary, err := s.scout.Run(context.Background(), entry.missionID)
	if err != nil {
		s.mu.Lock()
		entry.lastError = err.Error()
		s.mu.Unlock()
		s.logger.Error().
			Str("mission_id", entry.missionID).
			Err(err).
			Msg("Scheduled run failed")
		return
	}

	s.mu.Lock()
	entry.lastError = ""
	s.mu.Unlock()

	s.logger.Info().
		Str("mission_id", entry.missionID).
		Str("run_id", summary.RunID).
		Int("stored", summary.Stored).
		Msg("Scheduled run completed")
}

// scheduleFor maps a cadence label to a cron expression. Manual and empty
// cadences are not schedulable; unrecognized values pass through as raw
// cron expressions.
func scheduleFor(cadence string) (string, bool) {
	if cadence == "" || cadence == models.CadenceManual {
		return "", false
	}
	if schedule, ok := cadenceSchedules[cadence]; ok {
		return schedule, true
	}
	return cadence, true
}
