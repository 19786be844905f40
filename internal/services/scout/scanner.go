package scout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/extractor"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

const (
	// maxItemsPerPage bounds the structured extraction per listing page
	maxItemsPerPage = 20

	// minCategoryConfidence is the floor for using a classifier label
	minCategoryConfidence = 0.5

	// maxCategories caps how many category pages a scan visits
	maxCategories = 3
)

// SourceScanner enumerates candidate listings from platform pages.
// Keyword matching is informative only: it annotates listings, never
// excludes them - exclusion is the investigation gate's job.
type SourceScanner struct {
	fetcher interfaces.Fetcher
	scoring interfaces.ScoringService
	logger  arbor.ILogger
}

// NewSourceScanner creates a source scanner
func NewSourceScanner(fetcher interfaces.Fetcher, scoring interfaces.ScoringService, logger arbor.ILogger) *SourceScanner {
	return &SourceScanner{
		fetcher: fetcher,
		scoring: scoring,
		logger:  logger,
	}
}

// Scan enumerates candidate listings for the mission, bounded by
// mission.MaxResults. Page-level extraction failures are absorbed; an auth
// failure aborts the scan since no later call can succeed either.
func (s *SourceScanner) Scan(ctx context.Context, mission *models.Mission) ([]models.Listing, error) {
	pages, err := s.selectPages(ctx, mission)
	if err != nil {
		return nil, err
	}

	listings := make([]models.Listing, 0, mission.MaxResults)
	seen := make(map[string]bool)

	for _, page := range pages {
		if len(listings) >= mission.MaxResults {
			break
		}

		raw, err := s.fetcher.Extract(ctx, page, listingSchema(maxItemsPerPage))
		if err != nil {
			var authErr *extractor.AuthError
			if errors.As(err, &authErr) {
				return nil, fmt.Errorf("source scan aborted: %w", err)
			}
			s.logger.Warn().
				Str("page", page).
				Err(err).
				Msg("Listing page extraction failed, skipping page")
			continue
		}

		pageListings := s.parseListings(page, raw, mission)
		for _, l := range pageListings {
			if len(listings) >= mission.MaxResults {
				break
			}
			if l.URL != "" && seen[l.URL] {
				continue
			}
			if l.URL != "" {
				seen[l.URL] = true
			}
			listings = append(listings, l)
		}

		s.logger.Debug().
			Str("page", page).
			Int("extracted", len(pageListings)).
			Int("collected", len(listings)).
			Msg("Listing page scanned")
	}

	s.logger.Info().
		Str("mission_id", mission.ID).
		Int("pages", len(pages)).
		Int("listings", len(listings)).
		Msg("Source scan completed")

	return listings, nil
}

// selectPages decides which listing pages to visit. The category classifier
// is optional: any failure or an empty result falls back to the platform's
// default page set.
func (s *SourceScanner) selectPages(ctx context.Context, mission *models.Mission) ([]string, error) {
	categories := s.classifyCategories(ctx, mission)
	return pagesForPlatform(mission.Platform, categories)
}

func (s *SourceScanner) classifyCategories(ctx context.Context, mission *models.Mission) []string {
	if s.scoring == nil {
		return nil
	}

	scores, err := s.scoring.ClassifyCategories(ctx, mission)
	if err != nil {
		s.logger.Warn().
			Str("mission_id", mission.ID).
			Err(err).
			Msg("Category classification failed, using default pages")
		return nil
	}

	confident := make([]interfaces.CategoryScore, 0, len(scores))
	for _, c := range scores {
		if c.Confidence >= minCategoryConfidence && c.Label != "" {
			confident = append(confident, c)
		}
	}
	sort.SliceStable(confident, func(i, j int) bool {
		return confident[i].Confidence > confident[j].Confidence
	})
	if len(confident) > maxCategories {
		confident = confident[:maxCategories]
	}

	labels := make([]string, 0, len(confident))
	for _, c := range confident {
		labels = append(labels, c.Label)
	}
	return labels
}

// parseListings decodes a listing page payload. A non-conforming payload
// yields no listings for the page, not an error.
func (s *SourceScanner) parseListings(page string, raw json.RawMessage, mission *models.Mission) []models.Listing {
	if len(raw) == 0 {
		return nil
	}

	var payload listingPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.logger.Warn().
			Str("page", page).
			Err(err).
			Msg("Listing payload did not match schema, treating as empty")
		return nil
	}

	listings := make([]models.Listing, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.Title == "" && item.URL == "" {
			continue
		}

		listing := models.Listing{
			Title:      strings.TrimSpace(item.Title),
			Developer:  strings.TrimSpace(item.Developer),
			URL:        common.ResolveURL(page, strings.TrimSpace(item.URL)),
			Price:      strings.TrimSpace(item.Price),
			Genre:      strings.TrimSpace(item.Genre),
			Summary:    strings.TrimSpace(item.Summary),
			SourcePage: page,
		}
		listing.KeywordHits = matchKeywords(&listing, mission.Keywords)
		listings = append(listings, listing)
	}
	return listings
}

// matchKeywords records which mission keywords appear in the listing's
// title or summary. Informative only.
func matchKeywords(l *models.Listing, keywords []string) []string {
	if len(keywords) == 0 {
		return nil
	}

	haystack := strings.ToLower(l.Title + " " + l.Summary + " " + l.Genre)
	var hits []string
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(kw)) {
			hits = append(hits, kw)
		}
	}
	return hits
}
