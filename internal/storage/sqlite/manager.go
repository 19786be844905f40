package sqlite

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/interfaces"
)

// Manager implements the StorageManager interface over one SQLite database
type Manager struct {
	db          *SQLiteDB
	missions    interfaces.MissionStorage
	runs        interfaces.RunStorage
	discoveries interfaces.DiscoveryStorage
	logger      arbor.ILogger
}

// NewManager creates a new SQLite storage manager
func NewManager(logger arbor.ILogger, config *common.SQLiteConfig) (interfaces.StorageManager, error) {
	db, err := NewSQLiteDB(logger, config)
	if err != nil {
		return nil, err
	}

	return &Manager{
		db:          db,
		missions:    NewMissionStorage(db, logger),
		runs:        NewRunStorage(db, logger),
		discoveries: NewDiscoveryStorage(db, logger),
		logger:      logger,
	}, nil
}

// Missions returns the mission storage interface
func (m *Manager) Missions() interfaces.MissionStorage {
	return m.missions
}

// Runs returns the run storage interface
func (m *Manager) Runs() interfaces.RunStorage {
	return m.runs
}

// Discoveries returns the discovery storage interface
func (m *Manager) Discoveries() interfaces.DiscoveryStorage {
	return m.discoveries
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
