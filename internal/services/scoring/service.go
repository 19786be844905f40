// Package scoring implements the scoring service over the LLM provider
// factory. Each method issues exactly one provider call per batch; callers
// carry their own deterministic fallbacks for when the call fails.
package scoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
	"github.com/ternarybob/venari/internal/services/llm"
)

// maxCommentsInPrompt bounds how much community feedback is inlined per item
const maxCommentsInPrompt = 8

// Service implements interfaces.ScoringService
type Service struct {
	provider llm.Provider
	logger   arbor.ILogger
}

// NewService creates a new scoring service
func NewService(provider llm.Provider, logger arbor.ILogger) interfaces.ScoringService {
	return &Service{
		provider: provider,
		logger:   logger,
	}
}

// ClassifyCategories suggests platform category labels for a mission
func (s *Service) ClassifyCategories(ctx context.Context, mission *models.Mission) ([]interfaces.CategoryScore, error) {
	prompt := fmt.Sprintf(`You are a game discovery specialist.

Task: Given a scout mission brief, suggest the platform browse categories most likely to surface matching games.

Mission instructions:
%s

Keywords: %s

Rules:
- Suggest at most 3 categories, platform-style slugs (e.g. "puzzle", "rpg", "horror", "platformer", "simulation", "visual-novel")
- Rate your confidence in [0,1] for each
- Only suggest a category when the brief clearly implies it

Output Format (JSON only, no markdown fences):
{"categories": [{"label": "puzzle", "confidence": 0.8}]}`,
		mission.Instructions, strings.Join(mission.Keywords, ", "))

	response, err := s.provider.GenerateContent(ctx, &llm.ContentRequest{
		Prompt:       prompt,
		OutputSchema: categorySchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("category classification failed: %w", err)
	}

	categories, err := ParseCategories(response.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse category response: %w", err)
	}

	s.logger.Debug().
		Str("mission_id", mission.ID).
		Int("categories", len(categories)).
		Msg("Mission categories classified")

	return categories, nil
}

// ScoreListings produces one verdict per candidate listing (investigation stage)
func (s *Service) ScoreListings(ctx context.Context, mission *models.Mission, listings []models.Listing) ([]interfaces.ItemVerdict, error) {
	if len(listings) == 0 {
		return nil, nil
	}

	var items strings.Builder
	for i, l := range listings {
		fmt.Fprintf(&items, "%d. key: %s\n   title: %s\n   developer: %s\n", i+1, l.Key(), l.Title, l.Developer)
		if l.Price != "" {
			fmt.Fprintf(&items, "   price: %s\n", l.Price)
		}
		if l.Genre != "" {
			fmt.Fprintf(&items, "   genre: %s\n", l.Genre)
		}
		if l.Summary != "" {
			fmt.Fprintf(&items, "   summary: %s\n", truncate(l.Summary, 300))
		}
	}

	prompt := fmt.Sprintf(`You are screening indie game candidates for deeper investigation.

Mission instructions:
%s

Keywords: %s

Candidates:
%s

Rules:
- Return one verdict per candidate, in any order, using the candidate's key verbatim
- advance=true when the candidate looks worth an expensive detail fetch
- score in [0,1] reflects fit with the mission brief
- Keep each rationale to one sentence

Output Format (JSON only, no markdown fences):
{"results": [{"key": "<candidate key>", "advance": true, "score": 0.8, "rationale": "..."}]}`,
		mission.Instructions, strings.Join(mission.Keywords, ", "), items.String())

	response, err := s.provider.GenerateContent(ctx, &llm.ContentRequest{
		Prompt:       prompt,
		OutputSchema: verdictSchema(false),
	})
	if err != nil {
		return nil, fmt.Errorf("listing scoring failed: %w", err)
	}

	return ParseVerdicts(response.Text)
}

// ScoreEnriched produces one verdict per enriched item (storage stage)
func (s *Service) ScoreEnriched(ctx context.Context, mission *models.Mission, enriched []models.EnrichedItem) ([]interfaces.ItemVerdict, error) {
	if len(enriched) == 0 {
		return nil, nil
	}

	var items strings.Builder
	for i, e := range enriched {
		fmt.Fprintf(&items, "%d. key: %s\n   title: %s\n   developer: %s\n   rating: %.1f\n   tags: %s\n   description: %s\n",
			i+1, e.Key(), e.Title, e.Developer, e.Rating, strings.Join(e.Tags, ", "), truncate(e.Description, 800))

		if len(e.Comments) > 0 {
			items.WriteString("   community feedback:\n")
			for j, c := range e.Comments {
				if j >= maxCommentsInPrompt {
					break
				}
				reply := ""
				if c.IsDeveloperReply {
					reply = " [developer reply]"
				}
				fmt.Fprintf(&items, "   - %s%s: %s\n", c.Author, reply, truncate(c.Text, 200))
			}
		}
	}

	prompt := fmt.Sprintf(`You are deciding which investigated indie games to store as discoveries.

Mission instructions:
%s

Keywords: %s
Quality threshold: %.2f (items scoring below it will be rejected)

Items:
%s

Rules:
- Return one verdict per item, using the item's key verbatim
- store=true when the item deserves to be persisted for this mission
- score in [0,1] reflects overall quality and mission fit
- sentiment summarizes the community feedback: positive, negative, neutral or mixed
- Keep each rationale to one or two sentences

Output Format (JSON only, no markdown fences):
{"results": [{"key": "<item key>", "store": true, "score": 0.85, "rationale": "...", "sentiment": "positive"}]}`,
		mission.Instructions, strings.Join(mission.Keywords, ", "), mission.QualityThreshold, items.String())

	response, err := s.provider.GenerateContent(ctx, &llm.ContentRequest{
		Prompt:       prompt,
		OutputSchema: verdictSchema(true),
	})
	if err != nil {
		return nil, fmt.Errorf("enriched scoring failed: %w", err)
	}

	return ParseVerdicts(response.Text)
}

// verdictSchema builds the structured-output schema for verdict batches
func verdictSchema(withSentiment bool) map[string]interface{} {
	properties := map[string]interface{}{
		"key":       map[string]interface{}{"type": "string"},
		"advance":   map[string]interface{}{"type": "boolean"},
		"store":     map[string]interface{}{"type": "boolean"},
		"score":     map[string]interface{}{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"rationale": map[string]interface{}{"type": "string"},
	}
	required := []string{"key", "score", "rationale"}

	if withSentiment {
		properties["sentiment"] = map[string]interface{}{
			"type": "string",
			"enum": []string{"positive", "negative", "neutral", "mixed"},
		}
	}

	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"results": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type":       "object",
					"properties": properties,
					"required":   required,
				},
			},
		},
		"required": []string{"results"},
	}
}

func categorySchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"categories": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"label":      map[string]interface{}{"type": "string"},
						"confidence": map[string]interface{}{"type": "number", "minimum": 0.0, "maximum": 1.0},
					},
					"required": []string{"label", "confidence"},
				},
			},
		},
		"required": []string{"categories"},
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
