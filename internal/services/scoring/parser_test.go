package scoring

import (
	"testing"

	"github.com/ternarybob/venari/internal/models"
)

func TestParseVerdicts_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLen   int
		wantKey   string
		wantScore float64
	}{
		{
			name:      "wrapped results object",
			input:     `{"results": [{"key": "https://a.itch.io/x", "advance": true, "score": 0.9, "rationale": "fits"}]}`,
			wantLen:   1,
			wantKey:   "https://a.itch.io/x",
			wantScore: 0.9,
		},
		{
			name:      "bare array",
			input:     `[{"key": "https://a.itch.io/x", "advance": false, "score": 0.3, "rationale": "off brief"}]`,
			wantLen:   1,
			wantKey:   "https://a.itch.io/x",
			wantScore: 0.3,
		},
		{
			name:      "markdown fenced",
			input:     "```json\n{\"results\": [{\"key\": \"k1\", \"advance\": true, \"score\": 0.5, \"rationale\": \"ok\"}]}\n```",
			wantLen:   1,
			wantKey:   "k1",
			wantScore: 0.5,
		},
		{
			name:      "store flag aliased to advance",
			input:     `{"results": [{"key": "k1", "store": true, "score": 0.7, "reason": "good"}]}`,
			wantLen:   1,
			wantKey:   "k1",
			wantScore: 0.7,
		},
		{
			name:      "url aliased to key, score clamped",
			input:     `[{"url": "https://a.itch.io/y", "advance": true, "score": 1.4, "rationale": "x"}]`,
			wantLen:   1,
			wantKey:   "https://a.itch.io/y",
			wantScore: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdicts, err := ParseVerdicts(tt.input)
			if err != nil {
				t.Fatalf("ParseVerdicts() error = %v", err)
			}
			if len(verdicts) != tt.wantLen {
				t.Fatalf("ParseVerdicts() len = %d, want %d", len(verdicts), tt.wantLen)
			}
			if verdicts[0].Key != tt.wantKey {
				t.Errorf("key = %q, want %q", verdicts[0].Key, tt.wantKey)
			}
			if verdicts[0].Score != tt.wantScore {
				t.Errorf("score = %v, want %v", verdicts[0].Score, tt.wantScore)
			}
		})
	}
}

func TestParseVerdicts_Errors(t *testing.T) {
	for _, input := range []string{"", "not json", `{"results": []}`, `{}`} {
		if _, err := ParseVerdicts(input); err == nil {
			t.Errorf("ParseVerdicts(%q) expected error", input)
		}
	}
}

func TestParseVerdicts_PartialResponseKept(t *testing.T) {
	// Two verdicts for a three-item batch: the parser returns what it got;
	// gates handle the shortfall.
	input := `{"results": [
		{"key": "k1", "advance": true, "score": 0.8, "rationale": "a"},
		{"key": "k2", "advance": false, "score": 0.2, "rationale": "b"}
	]}`

	verdicts, err := ParseVerdicts(input)
	if err != nil {
		t.Fatalf("ParseVerdicts() error = %v", err)
	}
	if len(verdicts) != 2 {
		t.Fatalf("len = %d, want 2", len(verdicts))
	}
}

func TestParseVerdicts_SentimentNormalized(t *testing.T) {
	input := `{"results": [
		{"key": "k1", "store": true, "score": 0.8, "rationale": "a", "sentiment": "Positive"},
		{"key": "k2", "store": true, "score": 0.8, "rationale": "b", "sentiment": "unknown-label"}
	]}`

	verdicts, err := ParseVerdicts(input)
	if err != nil {
		t.Fatalf("ParseVerdicts() error = %v", err)
	}
	if verdicts[0].Sentiment != models.SentimentPositive {
		t.Errorf("sentiment = %q, want positive", verdicts[0].Sentiment)
	}
	if verdicts[1].Sentiment != "" {
		t.Errorf("unrecognized sentiment should normalize to empty, got %q", verdicts[1].Sentiment)
	}
}

func TestParseCategories(t *testing.T) {
	input := "```json\n{\"categories\": [{\"label\": \"Puzzle\", \"confidence\": 0.8}, {\"label\": \"rpg\", \"confidence\": 0.4}]}\n```"

	categories, err := ParseCategories(input)
	if err != nil {
		t.Fatalf("ParseCategories() error = %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("len = %d, want 2", len(categories))
	}
	if categories[0].Label != "puzzle" {
		t.Errorf("label = %q, want lowercased %q", categories[0].Label, "puzzle")
	}
	if categories[0].Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", categories[0].Confidence)
	}
}
