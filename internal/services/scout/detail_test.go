package scout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/venari/internal/models"
)

func detailJSON(t *testing.T, payload detailPayload) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return raw
}

func TestEnrich_SkipsFailedItems(t *testing.T) {
	listings := makeListings(4)
	fetcher := newMockFetcher()
	for i, l := range listings {
		if i == 1 {
			fetcher.failures[l.URL] = errors.New("extraction timeout")
			continue
		}
		fetcher.payloads[l.URL] = detailJSON(t, detailPayload{
			Description: "A longer description of the game",
			Tags:        []string{"pixel-art"},
		})
	}

	scanner := NewDetailScanner(fetcher, testLogger())
	items := scanner.Enrich(context.Background(), listings)

	require.Len(t, items, 3, "failed item skipped, not fatal")
	assert.Len(t, fetcher.calls, 4, "every listing attempted exactly once, no retries")
	for _, item := range items {
		assert.NotEqual(t, listings[1].URL, item.URL)
	}
}

func TestEnrich_MergesDetailOntoListing(t *testing.T) {
	listing := models.Listing{
		Title:     "Tiny Harbor",
		Developer: "solo dev",
		URL:       "https://itch.io/tiny-harbor",
		Price:     "$4.99",
	}

	fetcher := newMockFetcher()
	fetcher.payloads[listing.URL] = detailJSON(t, detailPayload{
		Description: "Build a harbor town one pier at a time",
		Tags:        []string{"cozy", "builder"},
		Platforms:   []string{"windows", "linux"},
		Rating:      4.6,
		Screenshots: []string{"https://itch.io/shot1.png"},
		Comments: []commentDetail{
			{Author: "fan", Text: "love the vibe", Date: "2026-07-01", IsDeveloperReply: false},
			{Author: "dev", Text: "<p>thanks! more <b>piers</b> soon</p>", Date: "2026-07-02T10:30:00Z", IsDeveloperReply: true},
		},
	})

	scanner := NewDetailScanner(fetcher, testLogger())
	items := scanner.Enrich(context.Background(), []models.Listing{listing})
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "Tiny Harbor", item.Title)
	assert.Equal(t, "$4.99", item.Price, "listing fields survive the merge")
	assert.Equal(t, 4.6, item.Rating)
	require.Len(t, item.Comments, 2)

	assert.Equal(t, "thanks! more piers soon", item.Comments[1].Text, "HTML comments flattened")
	assert.True(t, item.Comments[1].IsDeveloperReply)
	require.NotNil(t, item.Comments[0].PostedAt)
	assert.Equal(t, 2026, item.Comments[0].PostedAt.Year())
	require.NotNil(t, item.Comments[1].PostedAt)
}

func TestEnrich_CapsComments(t *testing.T) {
	listing := makeListings(1)[0]

	comments := make([]commentDetail, 25)
	for i := range comments {
		comments[i] = commentDetail{Author: "player", Text: "fun"}
	}
	fetcher := newMockFetcher()
	fetcher.payloads[listing.URL] = detailJSON(t, detailPayload{
		Description: "desc",
		Comments:    comments,
	})

	scanner := NewDetailScanner(fetcher, testLogger())
	items := scanner.Enrich(context.Background(), []models.Listing{listing})
	require.Len(t, items, 1)
	assert.Len(t, items[0].Comments, maxCommentsPerItem)
}

func TestEnrich_EmptyPayloadSkipped(t *testing.T) {
	listing := makeListings(1)[0]
	fetcher := newMockFetcher()
	fetcher.payloads[listing.URL] = json.RawMessage(`{}`)

	scanner := NewDetailScanner(fetcher, testLogger())
	items := scanner.Enrich(context.Background(), []models.Listing{listing})
	assert.Empty(t, items)
}

func TestEnrich_UnparseableDateLeftNil(t *testing.T) {
	listing := makeListings(1)[0]
	fetcher := newMockFetcher()
	fetcher.payloads[listing.URL] = detailJSON(t, detailPayload{
		Description: "desc",
		Comments:    []commentDetail{{Text: "fun", Date: "sometime last week"}},
	})

	scanner := NewDetailScanner(fetcher, testLogger())
	items := scanner.Enrich(context.Background(), []models.Listing{listing})
	require.Len(t, items, 1)
	require.Len(t, items[0].Comments, 1)
	assert.Nil(t, items[0].Comments[0].PostedAt)
}
