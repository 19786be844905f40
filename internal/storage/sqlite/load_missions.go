// -----------------------------------------------------------------------
// Load Mission Definitions from Files - TOML mission definitions
// -----------------------------------------------------------------------

package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/venari/internal/models"
)

// LoadMissionsFromFiles loads mission definitions from TOML files in the
// specified directory and upserts them. Called during startup so the
// definitions directory is the source of truth for mission configuration.
func (m *Manager) LoadMissionsFromFiles(ctx context.Context, dirPath string) error {
	m.logger.Info().Str("path", dirPath).Msg("Loading mission definitions from files")

	// Directory is optional - missions can also be created directly
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		m.logger.Debug().Str("path", dirPath).Msg("Mission definitions directory not found, skipping file loading")
		return nil
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read mission definitions directory: %w", err)
	}

	loadedCount := 0
	skippedCount := 0

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}

		filePath := filepath.Join(dirPath, entry.Name())
		mission, err := loadMissionFromTOML(filePath)
		if err != nil {
			m.logger.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to load mission definition file")
			skippedCount++
			continue
		}

		if err := mission.Validate(); err != nil {
			m.logger.Warn().Err(err).Str("file", entry.Name()).Msg("Mission definition validation failed")
			skippedCount++
			continue
		}

		if err := m.missions.SaveMission(ctx, mission); err != nil {
			m.logger.Warn().Err(err).Str("mission_id", mission.ID).Msg("Failed to save mission definition")
			skippedCount++
			continue
		}

		m.logger.Debug().
			Str("mission_id", mission.ID).
			Str("file", entry.Name()).
			Msg("Mission definition loaded")
		loadedCount++
	}

	m.logger.Info().
		Int("loaded", loadedCount).
		Int("skipped", skippedCount).
		Msg("Mission definitions loaded")

	return nil
}

func loadMissionFromTOML(path string) (*models.Mission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var mission models.Mission
	if err := toml.Unmarshal(data, &mission); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return &mission, nil
}
