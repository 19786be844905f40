package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

// DiscoveryStorage implements SQLite storage for persisted discoveries
type DiscoveryStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewDiscoveryStorage creates a new discovery storage instance
func NewDiscoveryStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.DiscoveryStorage {
	return &DiscoveryStorage{
		db:     db,
		logger: logger,
	}
}

// SaveDiscovery inserts a discovery. The external_id unique constraint
// makes re-running a mission against the same run timestamp idempotent.
func (s *DiscoveryStorage) SaveDiscovery(ctx context.Context, discovery *models.Discovery) error {
	metadataJSON, err := discovery.Metadata.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize discovery metadata: %w", err)
	}

	if discovery.CreatedAt.IsZero() {
		discovery.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.DB().ExecContext(ctx, `
		INSERT INTO discoveries (
			id, run_id, mission_id, platform, external_id, url, title, developer,
			content, engagement_score, relevance_score, sentiment, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			content = excluded.content,
			engagement_score = excluded.engagement_score,
			relevance_score = excluded.relevance_score,
			sentiment = excluded.sentiment,
			metadata = excluded.metadata`,
		discovery.ID, discovery.RunID, discovery.MissionID, discovery.Platform,
		discovery.ExternalID, discovery.URL, discovery.Title, discovery.Developer,
		discovery.Content, discovery.EngagementScore, discovery.RelevanceScore,
		string(discovery.SentimentScore), metadataJSON, discovery.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save discovery %s: %w", discovery.ID, err)
	}

	return nil
}

// GetDiscovery retrieves a discovery by ID
func (s *DiscoveryStorage) GetDiscovery(ctx context.Context, id string) (*models.Discovery, error) {
	row := s.db.DB().QueryRowContext(ctx, selectDiscovery+" WHERE id = ?", id)
	discovery, err := scanDiscovery(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("discovery not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get discovery %s: %w", id, err)
	}
	return discovery, nil
}

// GetDiscoveryByURL retrieves the most recent discovery of a URL within a mission
func (s *DiscoveryStorage) GetDiscoveryByURL(ctx context.Context, missionID, url string) (*models.Discovery, error) {
	row := s.db.DB().QueryRowContext(ctx,
		selectDiscovery+" WHERE mission_id = ? AND url = ? ORDER BY created_at DESC LIMIT 1",
		missionID, url)
	discovery, err := scanDiscovery(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("discovery not found for url %s", url)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get discovery by url %s: %w", url, err)
	}
	return discovery, nil
}

// ListDiscoveriesByMission returns the most recent discoveries for a mission
func (s *DiscoveryStorage) ListDiscoveriesByMission(ctx context.Context, missionID string, limit int) ([]*models.Discovery, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.DB().QueryContext(ctx,
		selectDiscovery+" WHERE mission_id = ? ORDER BY created_at DESC LIMIT ?",
		missionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list discoveries for mission %s: %w", missionID, err)
	}
	defer rows.Close()

	var discoveries []*models.Discovery
	for rows.Next() {
		discovery, err := scanDiscovery(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan discovery: %w", err)
		}
		discoveries = append(discoveries, discovery)
	}
	return discoveries, rows.Err()
}

// CountDiscoveriesByRun returns how many discoveries a run persisted
func (s *DiscoveryStorage) CountDiscoveriesByRun(ctx context.Context, runID string) (int, error) {
	var count int
	err := s.db.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM discoveries WHERE run_id = ?", runID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count discoveries for run %s: %w", runID, err)
	}
	return count, nil
}

const selectDiscovery = `
	SELECT id, run_id, mission_id, platform, external_id, url, title, developer,
	       content, engagement_score, relevance_score, sentiment, metadata, created_at
	FROM discoveries`

func scanDiscovery(row rowScanner) (*models.Discovery, error) {
	var d models.Discovery
	var developer, content, sentiment, metadataJSON sql.NullString
	var createdAt int64

	err := row.Scan(&d.ID, &d.RunID, &d.MissionID, &d.Platform, &d.ExternalID,
		&d.URL, &d.Title, &developer, &content, &d.EngagementScore,
		&d.RelevanceScore, &sentiment, &metadataJSON, &createdAt)
	if err != nil {
		return nil, err
	}

	d.Developer = developer.String
	d.Content = content.String
	d.SentimentScore = models.Sentiment(sentiment.String)
	d.CreatedAt = time.Unix(createdAt, 0).UTC()

	if metadataJSON.Valid && metadataJSON.String != "" {
		meta, err := models.FromJSONDiscoveryMetadata(metadataJSON.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse metadata for discovery %s: %w", d.ID, err)
		}
		d.Metadata = *meta
	}

	return &d, nil
}
