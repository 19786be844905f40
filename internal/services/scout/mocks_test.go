package scout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

func testLogger() arbor.ILogger {
	return arbor.NewLogger()
}

func testMission() *models.Mission {
	return &models.Mission{
		ID:               "mission-1",
		Name:             "Cozy indie scout",
		Instructions:     "Find cozy indie games with active communities",
		Keywords:         []string{"cozy", "pixel"},
		Platform:         "itch",
		MaxResults:       30,
		QualityThreshold: 0.7,
		Enabled:          true,
	}
}

// mockScoring scripts the scoring service per method. Call counts let
// tests assert the one-call-per-batch contract.
type mockScoring struct {
	categories []interfaces.CategoryScore
	listings   []interfaces.ItemVerdict
	enriched   []interfaces.ItemVerdict

	categoriesErr error
	listingsErr   error
	enrichedErr   error

	listingCalls  int
	enrichedCalls int
}

func (m *mockScoring) ClassifyCategories(ctx context.Context, mission *models.Mission) ([]interfaces.CategoryScore, error) {
	return m.categories, m.categoriesErr
}

func (m *mockScoring) ScoreListings(ctx context.Context, mission *models.Mission, listings []models.Listing) ([]interfaces.ItemVerdict, error) {
	m.listingCalls++
	return m.listings, m.listingsErr
}

func (m *mockScoring) ScoreEnriched(ctx context.Context, mission *models.Mission, items []models.EnrichedItem) ([]interfaces.ItemVerdict, error) {
	m.enrichedCalls++
	return m.enriched, m.enrichedErr
}

// mockFetcher serves canned extraction payloads keyed by URL
type mockFetcher struct {
	payloads map[string]json.RawMessage
	failures map[string]error
	calls    []string
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		payloads: make(map[string]json.RawMessage),
		failures: make(map[string]error),
	}
}

func (m *mockFetcher) Extract(ctx context.Context, url string, schema map[string]interface{}) (json.RawMessage, error) {
	m.calls = append(m.calls, url)
	if err, ok := m.failures[url]; ok {
		return nil, err
	}
	if payload, ok := m.payloads[url]; ok {
		return payload, nil
	}
	return nil, errors.New("no payload configured for " + url)
}

func (m *mockFetcher) ExtractBatch(ctx context.Context, urls []string, schema map[string]interface{}) map[string]json.RawMessage {
	results := make(map[string]json.RawMessage)
	for _, u := range urls {
		if raw, err := m.Extract(ctx, u, schema); err == nil {
			results[u] = raw
		}
	}
	return results
}

func makeListings(n int) []models.Listing {
	listings := make([]models.Listing, 0, n)
	for i := 0; i < n; i++ {
		listings = append(listings, models.Listing{
			Title:   fmt.Sprintf("Game %02d", i),
			URL:     fmt.Sprintf("https://itch.io/game-%02d", i),
			Summary: "A handcrafted pixel adventure about tending a tiny island farm",
		})
	}
	return listings
}

func commentAt(text string, postedAt time.Time, developer bool) models.Comment {
	return models.Comment{
		Author:           "player",
		Text:             text,
		PostedAt:         &postedAt,
		IsDeveloperReply: developer,
	}
}
