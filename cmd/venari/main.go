package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/app"
	"github.com/ternarybob/venari/internal/common"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	missionID    = flag.String("mission", "", "Run a single mission by ID and exit")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Venari version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Initialize logger
	// 3. Print banner
	// 4. Wire the application

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("venari.toml"); err == nil {
			configFiles = append(configFiles, "venari.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Str("environment", config.Environment).
		Str("sqlite_path", config.Storage.SQLite.Path).
		Str("log_level", config.Logging.Level).
		Msg("Application configuration loaded")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	// Single-mission mode: run the funnel once and exit
	if *missionID != "" {
		runOnce(application, *missionID)
		return
	}

	if !config.Scheduler.Enabled {
		logger.Warn().Msg("Scheduler disabled and no -mission given, nothing to do")
		return
	}

	if err := application.SchedulerService.Start(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start scheduler")
		os.Exit(1)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
}

func runOnce(application *app.App, missionID string) {
	logger := application.Logger

	summary, err := application.ScoutService.Run(context.Background(), missionID)
	if err != nil {
		logger.Error().
			Str("mission_id", missionID).
			Err(err).
			Msg("Mission run failed")
		if summary != nil {
			logger.Info().Str("run_id", summary.RunID).Str("status", string(summary.Status)).Msg("Run record finalized")
		}
		os.Exit(1)
	}

	logger.Info().
		Str("run_id", summary.RunID).
		Str("status", string(summary.Status)).
		Int("found", summary.Found).
		Int("investigated", summary.Investigated).
		Int("enriched", summary.Enriched).
		Int("stored", summary.Stored).
		Int("errors", summary.Errors).
		Str("duration", summary.Duration.String()).
		Msg("Mission run completed")
}
