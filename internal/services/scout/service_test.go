package scout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

type mockMissionStorage struct {
	missions map[string]*models.Mission
}

func (m *mockMissionStorage) SaveMission(ctx context.Context, mission *models.Mission) error {
	m.missions[mission.ID] = mission
	return nil
}

func (m *mockMissionStorage) GetMission(ctx context.Context, id string) (*models.Mission, error) {
	if mission, ok := m.missions[id]; ok {
		return mission, nil
	}
	return nil, errors.New("mission not found")
}

func (m *mockMissionStorage) ListMissions(ctx context.Context) ([]*models.Mission, error) {
	var out []*models.Mission
	for _, mission := range m.missions {
		out = append(out, mission)
	}
	return out, nil
}

func (m *mockMissionStorage) ListEnabledMissions(ctx context.Context) ([]*models.Mission, error) {
	var out []*models.Mission
	for _, mission := range m.missions {
		if mission.Enabled {
			out = append(out, mission)
		}
	}
	return out, nil
}

func (m *mockMissionStorage) DeleteMission(ctx context.Context, id string) error {
	delete(m.missions, id)
	return nil
}

type mockRunStorage struct {
	runs      map[string]*models.Run
	decisions []models.GateDecision
	saveCalls int
}

func (m *mockRunStorage) SaveRun(ctx context.Context, run *models.Run) error {
	m.runs[run.ID] = run
	return nil
}

func (m *mockRunStorage) UpdateRun(ctx context.Context, run *models.Run) error {
	m.runs[run.ID] = run
	return nil
}

func (m *mockRunStorage) GetRun(ctx context.Context, id string) (*models.Run, error) {
	if run, ok := m.runs[id]; ok {
		return run, nil
	}
	return nil, errors.New("run not found")
}

func (m *mockRunStorage) ListRunsByMission(ctx context.Context, missionID string, limit int) ([]*models.Run, error) {
	var out []*models.Run
	for _, run := range m.runs {
		if run.MissionID == missionID {
			out = append(out, run)
		}
	}
	return out, nil
}

func (m *mockRunStorage) SaveDecisions(ctx context.Context, decisions []models.GateDecision) error {
	m.saveCalls++
	m.decisions = append(m.decisions, decisions...)
	return nil
}

func (m *mockRunStorage) GetDecisionsByRun(ctx context.Context, runID string) ([]models.GateDecision, error) {
	var out []models.GateDecision
	for _, d := range m.decisions {
		if d.RunID == runID {
			out = append(out, d)
		}
	}
	return out, nil
}

type mockStorageManager struct {
	missions    *mockMissionStorage
	runs        *mockRunStorage
	discoveries *mockDiscoveryStorage
}

func newMockStorageManager() *mockStorageManager {
	return &mockStorageManager{
		missions:    &mockMissionStorage{missions: make(map[string]*models.Mission)},
		runs:        &mockRunStorage{runs: make(map[string]*models.Run)},
		discoveries: newMockDiscoveryStorage(),
	}
}

func (m *mockStorageManager) Missions() interfaces.MissionStorage      { return m.missions }
func (m *mockStorageManager) Runs() interfaces.RunStorage              { return m.runs }
func (m *mockStorageManager) Discoveries() interfaces.DiscoveryStorage { return m.discoveries }
func (m *mockStorageManager) Close() error                             { return nil }

func (m *mockStorageManager) LoadMissionsFromFiles(ctx context.Context, dirPath string) error {
	return nil
}

func TestRun_FullFunnel(t *testing.T) {
	storage := newMockStorageManager()
	mission := testMission()
	mission.MaxResults = 5
	storage.missions.missions[mission.ID] = mission

	fetcher := newMockFetcher()
	fetcher.payloads["https://itch.io/games/new-and-popular"] = listingJSON(t,
		listingItem{Title: "Game A", URL: "https://itch.io/game-a", Summary: "a cozy pixel farm sim"},
		listingItem{Title: "Game B", URL: "https://itch.io/game-b", Summary: "puzzle platformer with heart"},
		listingItem{Title: "Game C", URL: "https://itch.io/game-c", Summary: "arcade shooter"},
	)
	fetcher.payloads["https://itch.io/games/newest"] = listingJSON(t)
	fetcher.payloads["https://itch.io/games/top-rated"] = listingJSON(t)
	fetcher.payloads["https://itch.io/game-a"] = detailJSON(t, detailPayload{
		Description: "Tend your farm one season at a time",
		Tags:        []string{"cozy"},
		Comments:    []commentDetail{{Author: "fan", Text: "amazing game"}},
	})
	fetcher.payloads["https://itch.io/game-b"] = detailJSON(t, detailPayload{
		Description: "One hundred handcrafted puzzles",
	})

	scoring := &mockScoring{
		listings: []interfaces.ItemVerdict{
			{Key: "https://itch.io/game-a", Advance: true, Score: 0.9, Rationale: "strong fit"},
			{Key: "https://itch.io/game-b", Advance: true, Score: 0.8, Rationale: "decent fit"},
			{Key: "https://itch.io/game-c", Advance: false, Score: 0.2, Rationale: "off brief"},
		},
		enriched: []interfaces.ItemVerdict{
			{Key: "https://itch.io/game-a", Advance: true, Score: 0.9, Rationale: "store it", Sentiment: models.SentimentPositive},
			{Key: "https://itch.io/game-b", Advance: true, Score: 0.5, Rationale: "too quiet"},
		},
	}

	svc := NewService(storage, fetcher, scoring, testLogger())
	summary, err := svc.Run(context.Background(), mission.ID)
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusCompleted, summary.Status)
	assert.Equal(t, 3, summary.Found)
	assert.Equal(t, 2, summary.Investigated)
	assert.Equal(t, 2, summary.Enriched)
	assert.Equal(t, 1, summary.Stored, "game-b rejected by the local threshold")

	assert.Equal(t, 1, scoring.listingCalls, "one investigation scoring call")
	assert.Equal(t, 1, scoring.enrichedCalls, "one storage scoring call")
	assert.Equal(t, 2, storage.runs.saveCalls, "decisions recorded per gate")

	require.Len(t, storage.discoveries.saved, 1)
	assert.Equal(t, "https://itch.io/game-a", storage.discoveries.saved[0].URL)

	run, err := storage.runs.GetRun(context.Background(), summary.RunID)
	require.NoError(t, err)
	assert.True(t, run.IsFinalized())
	assert.Equal(t, models.RunStatusCompleted, run.Status)
}

func TestRun_MissionNotFound(t *testing.T) {
	storage := newMockStorageManager()
	svc := NewService(storage, newMockFetcher(), &mockScoring{}, testLogger())

	summary, err := svc.Run(context.Background(), "missing")
	require.Error(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, models.RunStatusFailed, summary.Status)

	run, err := storage.runs.GetRun(context.Background(), summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.NotEmpty(t, run.Error)
}

func TestRun_EmptyScanCompletesWithoutGateCalls(t *testing.T) {
	storage := newMockStorageManager()
	mission := testMission()
	storage.missions.missions[mission.ID] = mission

	fetcher := newMockFetcher()
	fetcher.payloads["https://itch.io/games/new-and-popular"] = listingJSON(t)
	fetcher.payloads["https://itch.io/games/newest"] = listingJSON(t)
	fetcher.payloads["https://itch.io/games/top-rated"] = listingJSON(t)

	scoring := &mockScoring{}
	svc := NewService(storage, fetcher, scoring, testLogger())

	summary, err := svc.Run(context.Background(), mission.ID)
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusCompleted, summary.Status)
	assert.Equal(t, 0, summary.Found)
	assert.Equal(t, 0, scoring.listingCalls)
	assert.Equal(t, 0, scoring.enrichedCalls)
	assert.Empty(t, storage.runs.decisions)
}
