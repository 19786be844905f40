package scout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/venari/internal/extractor"
	"github.com/ternarybob/venari/internal/interfaces"
)

func listingJSON(t *testing.T, items ...listingItem) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(listingPayload{Items: items})
	require.NoError(t, err)
	return raw
}

func TestScan_DefaultPagesWhenClassifierFails(t *testing.T) {
	scoring := &mockScoring{categoriesErr: errors.New("provider unavailable")}
	fetcher := newMockFetcher()
	fetcher.payloads["https://itch.io/games/new-and-popular"] = listingJSON(t,
		listingItem{Title: "Game A", URL: "https://itch.io/game-a"},
	)
	fetcher.payloads["https://itch.io/games/newest"] = listingJSON(t)
	fetcher.payloads["https://itch.io/games/top-rated"] = listingJSON(t)

	scanner := NewSourceScanner(fetcher, scoring, testLogger())
	listings, err := scanner.Scan(context.Background(), testMission())
	require.NoError(t, err)

	assert.Len(t, listings, 1)
	assert.Equal(t, []string{
		"https://itch.io/games/new-and-popular",
		"https://itch.io/games/newest",
		"https://itch.io/games/top-rated",
	}, fetcher.calls)
}

func TestScan_CategoryPagesWhenConfident(t *testing.T) {
	scoring := &mockScoring{
		categories: []interfaces.CategoryScore{
			{Label: "simulation", Confidence: 0.9},
			{Label: "puzzle", Confidence: 0.3}, // below the floor, dropped
		},
	}
	fetcher := newMockFetcher()
	fetcher.payloads["https://itch.io/games/genre-simulation"] = listingJSON(t)
	fetcher.payloads["https://itch.io/games"] = listingJSON(t)

	scanner := NewSourceScanner(fetcher, scoring, testLogger())
	_, err := scanner.Scan(context.Background(), testMission())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://itch.io/games/genre-simulation",
		"https://itch.io/games",
	}, fetcher.calls)
}

func TestScan_BoundedByMaxResults(t *testing.T) {
	mission := testMission()
	mission.MaxResults = 3

	items := make([]listingItem, 10)
	for i := range items {
		items[i] = listingItem{Title: "G", URL: "https://itch.io/g" + string(rune('a'+i))}
	}
	scoring := &mockScoring{}
	fetcher := newMockFetcher()
	fetcher.payloads["https://itch.io/games/new-and-popular"] = listingJSON(t, items...)

	scanner := NewSourceScanner(fetcher, scoring, testLogger())
	listings, err := scanner.Scan(context.Background(), mission)
	require.NoError(t, err)

	assert.Len(t, listings, 3)
	assert.Len(t, fetcher.calls, 1, "later pages skipped once the bound is hit")
}

func TestScan_DeduplicatesAcrossPages(t *testing.T) {
	mission := testMission()
	item := listingItem{Title: "Same Game", URL: "https://itch.io/same-game"}

	scoring := &mockScoring{}
	fetcher := newMockFetcher()
	fetcher.payloads["https://itch.io/games/new-and-popular"] = listingJSON(t, item)
	fetcher.payloads["https://itch.io/games/newest"] = listingJSON(t, item)
	fetcher.payloads["https://itch.io/games/top-rated"] = listingJSON(t)

	scanner := NewSourceScanner(fetcher, scoring, testLogger())
	listings, err := scanner.Scan(context.Background(), mission)
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestScan_RelativeURLsResolved(t *testing.T) {
	scoring := &mockScoring{}
	fetcher := newMockFetcher()
	fetcher.payloads["https://itch.io/games/new-and-popular"] = listingJSON(t,
		listingItem{Title: "Game A", URL: "/game-a", Summary: "a cozy pixel farm"},
	)
	fetcher.payloads["https://itch.io/games/newest"] = listingJSON(t)
	fetcher.payloads["https://itch.io/games/top-rated"] = listingJSON(t)

	scanner := NewSourceScanner(fetcher, scoring, testLogger())
	listings, err := scanner.Scan(context.Background(), testMission())
	require.NoError(t, err)
	require.Len(t, listings, 1)

	assert.Equal(t, "https://itch.io/game-a", listings[0].URL)
	assert.Equal(t, "https://itch.io/games/new-and-popular", listings[0].SourcePage)
}

func TestScan_KeywordsAnnotateButNeverExclude(t *testing.T) {
	scoring := &mockScoring{}
	fetcher := newMockFetcher()
	fetcher.payloads["https://itch.io/games/new-and-popular"] = listingJSON(t,
		listingItem{Title: "Cozy Farm", URL: "https://itch.io/cozy-farm", Summary: "pixel perfect"},
		listingItem{Title: "Space Shooter", URL: "https://itch.io/space-shooter", Summary: "fast arcade action"},
	)
	fetcher.payloads["https://itch.io/games/newest"] = listingJSON(t)
	fetcher.payloads["https://itch.io/games/top-rated"] = listingJSON(t)

	scanner := NewSourceScanner(fetcher, scoring, testLogger())
	listings, err := scanner.Scan(context.Background(), testMission())
	require.NoError(t, err)
	require.Len(t, listings, 2, "non-matching listing kept")

	assert.ElementsMatch(t, []string{"cozy", "pixel"}, listings[0].KeywordHits)
	assert.Empty(t, listings[1].KeywordHits)
}

func TestScan_PageFailureSkipped(t *testing.T) {
	scoring := &mockScoring{}
	fetcher := newMockFetcher()
	fetcher.failures["https://itch.io/games/new-and-popular"] = errors.New("timeout")
	fetcher.payloads["https://itch.io/games/newest"] = listingJSON(t,
		listingItem{Title: "Game B", URL: "https://itch.io/game-b"},
	)
	fetcher.payloads["https://itch.io/games/top-rated"] = listingJSON(t)

	scanner := NewSourceScanner(fetcher, scoring, testLogger())
	listings, err := scanner.Scan(context.Background(), testMission())
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestScan_AuthErrorAborts(t *testing.T) {
	scoring := &mockScoring{}
	fetcher := newMockFetcher()
	fetcher.failures["https://itch.io/games/new-and-popular"] = &extractor.AuthError{
		StatusCode: 401,
		Message:    "invalid api key",
	}

	scanner := NewSourceScanner(fetcher, scoring, testLogger())
	_, err := scanner.Scan(context.Background(), testMission())
	require.Error(t, err)

	var authErr *extractor.AuthError
	assert.ErrorAs(t, err, &authErr)
	assert.Len(t, fetcher.calls, 1, "no further pages attempted")
}

func TestScan_UnknownPlatform(t *testing.T) {
	mission := testMission()
	mission.Platform = "gopherhub"

	scanner := NewSourceScanner(newMockFetcher(), &mockScoring{}, testLogger())
	_, err := scanner.Scan(context.Background(), mission)
	assert.Error(t, err)
}
