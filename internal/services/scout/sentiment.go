package scout

import (
	"strings"

	"github.com/ternarybob/venari/internal/models"
)

// Lexicons for the fallback sentiment classifier. Deliberately small:
// this path only runs when the scoring service omits a sentiment, and
// it needs to be deterministic, not clever.
var positiveWords = map[string]struct{}{
	"love": {}, "loved": {}, "great": {}, "amazing": {}, "awesome": {},
	"fun": {}, "beautiful": {}, "fantastic": {}, "excellent": {},
	"wonderful": {}, "best": {}, "good": {}, "enjoyed": {}, "enjoying": {},
	"charming": {}, "polished": {}, "addictive": {}, "cool": {},
	"brilliant": {}, "gem": {}, "recommend": {}, "recommended": {},
}

var negativeWords = map[string]struct{}{
	"hate": {}, "hated": {}, "bad": {}, "terrible": {}, "awful": {},
	"boring": {}, "broken": {}, "buggy": {}, "bug": {}, "bugs": {},
	"crash": {}, "crashes": {}, "crashed": {}, "laggy": {}, "lag": {},
	"worst": {}, "disappointing": {}, "disappointed": {}, "unplayable": {},
	"refund": {}, "frustrating": {}, "annoying": {},
}

// sentimentRatio is how dominant one polarity must be over the other
// before the classification commits to it.
const sentimentRatio = 1.5

// ClassifyComments derives an aggregate sentiment from raw comment text.
// Hit counts are normalized by total word count so a long rambling
// comment does not outweigh several short ones.
func ClassifyComments(comments []models.Comment) models.Sentiment {
	if len(comments) == 0 {
		return models.SentimentNeutral
	}

	var posHits, negHits, totalWords float64
	for _, c := range comments {
		words := strings.Fields(strings.ToLower(c.Text))
		totalWords += float64(len(words))
		for _, w := range words {
			w = strings.Trim(w, ".,!?;:'\"()[]")
			if _, ok := positiveWords[w]; ok {
				posHits++
			}
			if _, ok := negativeWords[w]; ok {
				negHits++
			}
		}
	}

	if totalWords == 0 || (posHits == 0 && negHits == 0) {
		return models.SentimentNeutral
	}

	pos := posHits / totalWords
	neg := negHits / totalWords

	switch {
	case neg == 0 && pos > 0:
		return models.SentimentPositive
	case pos == 0 && neg > 0:
		return models.SentimentNegative
	case pos > neg*sentimentRatio:
		return models.SentimentPositive
	case neg > pos*sentimentRatio:
		return models.SentimentNegative
	default:
		return models.SentimentMixed
	}
}
