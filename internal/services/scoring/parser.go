package scoring

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

// rawVerdict is the tolerated wire shape for one scoring result. Providers
// have been observed to vary field names, so a few aliases are accepted.
type rawVerdict struct {
	Key       string  `json:"key"`
	URL       string  `json:"url"`
	Advance   *bool   `json:"advance"`
	Store     *bool   `json:"store"`
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
	Reason    string  `json:"reason"`
	Sentiment string  `json:"sentiment"`
}

// verdictEnvelope matches the wrapped response shape {"results": [...]}
type verdictEnvelope struct {
	Results  []rawVerdict `json:"results"`
	Verdicts []rawVerdict `json:"verdicts"`
	Items    []rawVerdict `json:"items"`
}

// ParseVerdicts normalizes a scoring response into one shape regardless of
// whether the provider returned a bare array or a wrapped object. A partial
// response (fewer verdicts than items) is returned as-is; the gates treat it
// as a partial result, not an error.
func ParseVerdicts(text string) ([]interfaces.ItemVerdict, error) {
	cleaned := cleanMarkdownFences(text)
	if cleaned == "" {
		return nil, fmt.Errorf("empty scoring response")
	}

	var raws []rawVerdict
	if strings.HasPrefix(cleaned, "[") {
		if err := json.Unmarshal([]byte(cleaned), &raws); err != nil {
			return nil, fmt.Errorf("failed to parse scoring array: %w", err)
		}
	} else {
		var envelope verdictEnvelope
		if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
			return nil, fmt.Errorf("failed to parse scoring object: %w", err)
		}
		switch {
		case len(envelope.Results) > 0:
			raws = envelope.Results
		case len(envelope.Verdicts) > 0:
			raws = envelope.Verdicts
		case len(envelope.Items) > 0:
			raws = envelope.Items
		}
	}

	if len(raws) == 0 {
		return nil, fmt.Errorf("scoring response contained no verdicts")
	}

	verdicts := make([]interfaces.ItemVerdict, 0, len(raws))
	for _, raw := range raws {
		verdicts = append(verdicts, normalizeVerdict(raw))
	}
	return verdicts, nil
}

func normalizeVerdict(raw rawVerdict) interfaces.ItemVerdict {
	key := raw.Key
	if key == "" {
		key = raw.URL
	}

	advance := false
	if raw.Advance != nil {
		advance = *raw.Advance
	} else if raw.Store != nil {
		advance = *raw.Store
	}

	rationale := raw.Rationale
	if rationale == "" {
		rationale = raw.Reason
	}

	return interfaces.ItemVerdict{
		Key:       key,
		Advance:   advance,
		Score:     clampScore(raw.Score),
		Rationale: rationale,
		Sentiment: normalizeSentiment(raw.Sentiment),
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func normalizeSentiment(s string) models.Sentiment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return models.SentimentPositive
	case "negative":
		return models.SentimentNegative
	case "neutral":
		return models.SentimentNeutral
	case "mixed":
		return models.SentimentMixed
	default:
		return ""
	}
}

// rawCategory is the tolerated wire shape for one category label
type rawCategory struct {
	Label      string  `json:"label"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

type categoryEnvelope struct {
	Categories []rawCategory `json:"categories"`
	Results    []rawCategory `json:"results"`
}

// ParseCategories normalizes a category classification response
func ParseCategories(text string) ([]interfaces.CategoryScore, error) {
	cleaned := cleanMarkdownFences(text)
	if cleaned == "" {
		return nil, fmt.Errorf("empty classification response")
	}

	var raws []rawCategory
	if strings.HasPrefix(cleaned, "[") {
		if err := json.Unmarshal([]byte(cleaned), &raws); err != nil {
			return nil, fmt.Errorf("failed to parse category array: %w", err)
		}
	} else {
		var envelope categoryEnvelope
		if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
			return nil, fmt.Errorf("failed to parse category object: %w", err)
		}
		if len(envelope.Categories) > 0 {
			raws = envelope.Categories
		} else {
			raws = envelope.Results
		}
	}

	categories := make([]interfaces.CategoryScore, 0, len(raws))
	for _, raw := range raws {
		label := raw.Label
		if label == "" {
			label = raw.Category
		}
		if label == "" {
			continue
		}
		categories = append(categories, interfaces.CategoryScore{
			Label:      strings.ToLower(strings.TrimSpace(label)),
			Confidence: clampScore(raw.Confidence),
		})
	}
	return categories, nil
}

// fencePattern strips ```json ... ``` wrappers some models insist on
var fencePattern = regexp.MustCompile(`(?s)^\s*` + "```" + `(?:json|JSON)?\s*\n?(.*?)\n?\s*` + "```" + `\s*$`)

// cleanMarkdownFences removes markdown code fences from a response
func cleanMarkdownFences(s string) string {
	s = strings.TrimSpace(s)

	if matches := fencePattern.FindStringSubmatch(s); len(matches) > 1 {
		s = matches[1]
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}
