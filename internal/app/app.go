package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/extractor"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/services/llm"
	"github.com/ternarybob/venari/internal/services/scheduler"
	"github.com/ternarybob/venari/internal/services/scoring"
	"github.com/ternarybob/venari/internal/services/scout"
	"github.com/ternarybob/venari/internal/storage/sqlite"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	// Extraction pipeline: provider client behind the shared rate-limited fetcher
	ExtractorClient *extractor.Client
	Fetcher         interfaces.Fetcher

	// Scoring stack
	LLMFactory     *llm.ProviderFactory
	ScoringService interfaces.ScoringService

	ScoutService     *scout.Service
	SchedulerService *scheduler.Service
}

// New creates and wires all application components
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	storageManager, err := sqlite.NewManager(logger, &config.Storage.SQLite)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := storageManager.LoadMissionsFromFiles(context.Background(), config.Missions.DefinitionsDir); err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to load mission definitions: %w", err)
	}

	client := extractor.NewClient(config.Extractor.APIKey,
		extractor.WithBaseURL(config.Extractor.BaseURL),
		extractor.WithHTTPClient(&http.Client{Timeout: config.Extractor.RequestTimeout}),
		extractor.WithLogger(logger),
	)

	fetcher := extractor.NewFetcher(client, extractor.FetcherOptions{
		MinDelay:   config.Extractor.RequestDelay,
		Cooldown:   config.Extractor.RateLimitCooldown,
		BatchSize:  config.Extractor.BatchSize,
		BatchPause: config.Extractor.BatchPause,
	}, nil, logger)

	llmFactory := llm.NewProviderFactory(&config.Gemini, &config.Claude, &config.LLM, logger)
	scoringService := scoring.NewService(llmFactory, logger)

	scoutService := scout.NewService(storageManager, fetcher, scoringService, logger)
	schedulerService := scheduler.NewService(scoutService, storageManager, logger)

	logger.Info().
		Str("environment", config.Environment).
		Str("db_path", config.Storage.SQLite.Path).
		Msg("Application initialized")

	return &App{
		Config:           config,
		Logger:           logger,
		StorageManager:   storageManager,
		ExtractorClient:  client,
		Fetcher:          fetcher,
		LLMFactory:       llmFactory,
		ScoringService:   scoringService,
		ScoutService:     scoutService,
		SchedulerService: schedulerService,
	}, nil
}

// Close releases all application resources
func (a *App) Close() error {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}

	if a.LLMFactory != nil {
		if err := a.LLMFactory.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM clients")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	a.Logger.Info().Msg("Application shut down")
	return nil
}
