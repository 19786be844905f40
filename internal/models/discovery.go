package models

import (
	"encoding/json"
	"time"
)

// Discovery is the durable record written for an approved item
type Discovery struct {
	ID             string    `json:"id"`
	RunID          string    `json:"run_id"`
	MissionID      string    `json:"mission_id"`
	Platform       string    `json:"platform"`
	ExternalID     string    `json:"external_id"` // <platform>_<urlSegment>_<runTs>
	URL            string    `json:"url"`
	Title          string    `json:"title"`
	Developer      string    `json:"developer"`
	Content        string    `json:"content"` // Normalized (markdown) description
	EngagementScore float64  `json:"engagement_score"` // Local signal-derived score
	RelevanceScore float64   `json:"relevance_score"`  // Storage gate score
	SentimentScore Sentiment `json:"sentiment,omitempty"`
	// Metadata holds platform-specific structure: tags, screenshots,
	// comments and the storage gate rationale.
	Metadata  DiscoveryMetadata `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

// DiscoveryMetadata is the structured platform metadata persisted alongside
// a discovery. Stored as a JSON blob.
type DiscoveryMetadata struct {
	Tags          []string  `json:"tags,omitempty"`
	Platforms     []string  `json:"platforms,omitempty"`
	Rating        float64   `json:"rating,omitempty"`
	Price         string    `json:"price,omitempty"`
	Genre         string    `json:"genre,omitempty"`
	Screenshots   []string  `json:"screenshots,omitempty"`
	Comments      []Comment `json:"comments,omitempty"`
	GateRationale string    `json:"gate_rationale,omitempty"`
}

// ToJSON serializes DiscoveryMetadata to a JSON string for database storage
func (m *DiscoveryMetadata) ToJSON() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FromJSONDiscoveryMetadata deserializes DiscoveryMetadata from a JSON string
func FromJSONDiscoveryMetadata(data string) (*DiscoveryMetadata, error) {
	var meta DiscoveryMetadata
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
