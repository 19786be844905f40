package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

// MissionStorage implements SQLite storage for mission definitions
type MissionStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewMissionStorage creates a new mission storage instance
func NewMissionStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.MissionStorage {
	return &MissionStorage{
		db:     db,
		logger: logger,
	}
}

// SaveMission creates or updates a mission
func (s *MissionStorage) SaveMission(ctx context.Context, mission *models.Mission) error {
	keywordsJSON, err := json.Marshal(mission.Keywords)
	if err != nil {
		return fmt.Errorf("failed to serialize keywords: %w", err)
	}

	now := time.Now().UTC()
	if mission.CreatedAt.IsZero() {
		mission.CreatedAt = now
	}
	mission.UpdatedAt = now

	enabled := 0
	if mission.Enabled {
		enabled = 1
	}

	query := `
		INSERT INTO missions (
			id, name, instructions, keywords, platform, max_results,
			quality_threshold, cadence, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			instructions = excluded.instructions,
			keywords = excluded.keywords,
			platform = excluded.platform,
			max_results = excluded.max_results,
			quality_threshold = excluded.quality_threshold,
			cadence = excluded.cadence,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at`

	_, err = s.db.DB().ExecContext(ctx, query,
		mission.ID, mission.Name, mission.Instructions, string(keywordsJSON),
		mission.Platform, mission.MaxResults, mission.QualityThreshold,
		mission.Cadence, enabled, mission.CreatedAt.Unix(), mission.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save mission %s: %w", mission.ID, err)
	}

	return nil
}

// GetMission retrieves a mission by ID
func (s *MissionStorage) GetMission(ctx context.Context, id string) (*models.Mission, error) {
	row := s.db.DB().QueryRowContext(ctx, `
		SELECT id, name, instructions, keywords, platform, max_results,
		       quality_threshold, cadence, enabled, created_at, updated_at
		FROM missions WHERE id = ?`, id)

	mission, err := scanMission(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("mission not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mission %s: %w", id, err)
	}
	return mission, nil
}

// ListMissions returns all missions
func (s *MissionStorage) ListMissions(ctx context.Context) ([]*models.Mission, error) {
	return s.listMissions(ctx, `
		SELECT id, name, instructions, keywords, platform, max_results,
		       quality_threshold, cadence, enabled, created_at, updated_at
		FROM missions ORDER BY created_at`)
}

// ListEnabledMissions returns missions eligible for scheduled runs
func (s *MissionStorage) ListEnabledMissions(ctx context.Context) ([]*models.Mission, error) {
	return s.listMissions(ctx, `
		SELECT id, name, instructions, keywords, platform, max_results,
		       quality_threshold, cadence, enabled, created_at, updated_at
		FROM missions WHERE enabled = 1 ORDER BY created_at`)
}

// DeleteMission removes a mission definition
func (s *MissionStorage) DeleteMission(ctx context.Context, id string) error {
	result, err := s.db.DB().ExecContext(ctx, "DELETE FROM missions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete mission %s: %w", id, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("mission not found: %s", id)
	}
	return nil
}

func (s *MissionStorage) listMissions(ctx context.Context, query string) ([]*models.Mission, error) {
	rows, err := s.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}
	defer rows.Close()

	var missions []*models.Mission
	for rows.Next() {
		mission, err := scanMission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mission: %w", err)
		}
		missions = append(missions, mission)
	}
	return missions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMission(row rowScanner) (*models.Mission, error) {
	var mission models.Mission
	var keywordsJSON sql.NullString
	var cadence sql.NullString
	var enabled int
	var createdAt, updatedAt int64

	err := row.Scan(&mission.ID, &mission.Name, &mission.Instructions, &keywordsJSON,
		&mission.Platform, &mission.MaxResults, &mission.QualityThreshold,
		&cadence, &enabled, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if keywordsJSON.Valid && keywordsJSON.String != "" {
		if err := json.Unmarshal([]byte(keywordsJSON.String), &mission.Keywords); err != nil {
			return nil, fmt.Errorf("failed to parse keywords for mission %s: %w", mission.ID, err)
		}
	}
	mission.Cadence = cadence.String
	mission.Enabled = enabled != 0
	mission.CreatedAt = time.Unix(createdAt, 0).UTC()
	mission.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &mission, nil
}
