package scout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/venari/internal/models"
)

func TestClassifyComments(t *testing.T) {
	tests := []struct {
		name     string
		texts    []string
		expected models.Sentiment
	}{
		{
			name:     "no comments",
			texts:    nil,
			expected: models.SentimentNeutral,
		},
		{
			name:     "no lexicon hits",
			texts:    []string{"released on tuesday", "runs on linux"},
			expected: models.SentimentNeutral,
		},
		{
			name:     "clearly positive",
			texts:    []string{"amazing game, I love it", "great art style"},
			expected: models.SentimentPositive,
		},
		{
			name:     "clearly negative",
			texts:    []string{"buggy and broken", "crashes on startup, terrible"},
			expected: models.SentimentNegative,
		},
		{
			name:     "balanced is mixed",
			texts:    []string{"great art but buggy", "love the music, hate the controls"},
			expected: models.SentimentMixed,
		},
		{
			name:     "positive dominates despite one complaint",
			texts:    []string{"amazing, fantastic, beautiful, love it", "bit laggy"},
			expected: models.SentimentPositive,
		},
		{
			name:     "punctuation stripped before lookup",
			texts:    []string{"Awesome! Loved it."},
			expected: models.SentimentPositive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comments := make([]models.Comment, 0, len(tt.texts))
			for _, text := range tt.texts {
				comments = append(comments, models.Comment{Text: text})
			}
			assert.Equal(t, tt.expected, ClassifyComments(comments))
		})
	}
}

func TestClassifyComments_LengthNormalized(t *testing.T) {
	// One long rambling positive comment should not drown out several
	// short negative ones.
	comments := []models.Comment{
		{Text: "good " + loremWords(200)},
		{Text: "broken"},
		{Text: "buggy"},
		{Text: "crashes"},
	}
	assert.Equal(t, models.SentimentNegative, ClassifyComments(comments))
}

func loremWords(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += "word "
	}
	return out
}
