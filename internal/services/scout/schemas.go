package scout

import "strconv"

// Extraction schemas sent to the content extraction provider. The provider
// returns JSON matching these shapes; anything non-conforming is treated as
// "no data for this URL".

// listingPayload is the expected shape of a listing page extraction
type listingPayload struct {
	Items []listingItem `json:"items"`
}

type listingItem struct {
	Title     string `json:"title"`
	Developer string `json:"developer"`
	URL       string `json:"url"`
	Price     string `json:"price"`
	Genre     string `json:"genre"`
	Summary   string `json:"summary"`
}

// detailPayload is the expected shape of a game page extraction
type detailPayload struct {
	Description string          `json:"description"`
	Tags        []string        `json:"tags"`
	Platforms   []string        `json:"platforms"`
	Rating      float64         `json:"rating"`
	Screenshots []string        `json:"screenshots"`
	Comments    []commentDetail `json:"comments"`
}

type commentDetail struct {
	Author           string `json:"author"`
	Text             string `json:"text"`
	Date             string `json:"date"`
	IsDeveloperReply bool   `json:"is_developer_reply"`
}

// listingSchema describes a listing page extraction of up to maxItems entries
func listingSchema(maxItems int) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"items": map[string]interface{}{
				"type":        "array",
				"description": listingDescription(maxItems),
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"title":     map[string]interface{}{"type": "string"},
						"developer": map[string]interface{}{"type": "string"},
						"url":       map[string]interface{}{"type": "string", "description": "Link to the game page"},
						"price":     map[string]interface{}{"type": "string"},
						"genre":     map[string]interface{}{"type": "string"},
						"summary":   map[string]interface{}{"type": "string", "description": "Short description shown on the card"},
					},
					"required": []string{"title", "url"},
				},
			},
		},
		"required": []string{"items"},
	}
}

func listingDescription(maxItems int) string {
	return "Games listed on this page, first " + strconv.Itoa(maxItems) + " at most"
}

// detailSchema describes a single game page extraction including community
// comments.
func detailSchema(maxComments int) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"description": map[string]interface{}{"type": "string", "description": "Full game description"},
			"tags":        map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"platforms":   map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"rating":      map[string]interface{}{"type": "number", "description": "Displayed rating on a 0-5 scale"},
			"screenshots": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"comments": map[string]interface{}{
				"type":        "array",
				"description": "Most recent community comments, " + strconv.Itoa(maxComments) + " at most",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"author":             map[string]interface{}{"type": "string"},
						"text":               map[string]interface{}{"type": "string"},
						"date":               map[string]interface{}{"type": "string"},
						"is_developer_reply": map[string]interface{}{"type": "boolean"},
					},
					"required": []string{"author", "text"},
				},
			},
		},
		"required": []string{"description"},
	}
}
