package interfaces

import (
	"context"

	"github.com/ternarybob/venari/internal/models"
)

// MissionStorage - interface for mission persistence
type MissionStorage interface {
	SaveMission(ctx context.Context, mission *models.Mission) error
	GetMission(ctx context.Context, id string) (*models.Mission, error)
	ListMissions(ctx context.Context) ([]*models.Mission, error)
	ListEnabledMissions(ctx context.Context) ([]*models.Mission, error)
	DeleteMission(ctx context.Context, id string) error
}

// RunStorage - interface for run state and the gate decision audit trail
type RunStorage interface {
	SaveRun(ctx context.Context, run *models.Run) error
	UpdateRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, id string) (*models.Run, error)
	ListRunsByMission(ctx context.Context, missionID string, limit int) ([]*models.Run, error)

	// Decisions are append-only
	SaveDecisions(ctx context.Context, decisions []models.GateDecision) error
	GetDecisionsByRun(ctx context.Context, runID string) ([]models.GateDecision, error)
}

// DiscoveryStorage - interface for persisted discoveries
type DiscoveryStorage interface {
	SaveDiscovery(ctx context.Context, discovery *models.Discovery) error
	GetDiscovery(ctx context.Context, id string) (*models.Discovery, error)
	GetDiscoveryByURL(ctx context.Context, missionID, url string) (*models.Discovery, error)
	ListDiscoveriesByMission(ctx context.Context, missionID string, limit int) ([]*models.Discovery, error)
	CountDiscoveriesByRun(ctx context.Context, runID string) (int, error)
}

// StorageManager provides access to all storage interfaces
type StorageManager interface {
	Missions() MissionStorage
	Runs() RunStorage
	Discoveries() DiscoveryStorage

	// LoadMissionsFromFiles upserts mission definitions from TOML files
	// in the given directory. A missing directory is not an error.
	LoadMissionsFromFiles(ctx context.Context, dirPath string) error

	Close() error
}
