package models

import "time"

// GateStage identifies which funnel gate produced a decision
type GateStage string

const (
	StageInvestigation GateStage = "investigation"
	StageStorage       GateStage = "storage"
)

// Verdict is the binary outcome of a gate decision for one item
type Verdict string

const (
	VerdictAdvance Verdict = "advance"
	VerdictReject  Verdict = "reject"
)

// Sentiment labels community feedback on an item
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentMixed    Sentiment = "mixed"
)

// GateDecision is one verdict produced by a gate for one item.
// Decisions are append-only audit records attached to a run.
type GateDecision struct {
	RunID     string    `json:"run_id"`
	Stage     GateStage `json:"stage"`
	ItemKey   string    `json:"item_key"` // Listing URL, or title when URL absent
	Verdict   Verdict   `json:"verdict"`
	Score     float64   `json:"score"` // In [0,1]
	Rationale string    `json:"rationale"`
	Sentiment Sentiment `json:"sentiment,omitempty"` // Storage stage only
	DecidedAt time.Time `json:"decided_at"`
}

// Advanced reports whether the decision lets the item through the gate
func (d GateDecision) Advanced() bool {
	return d.Verdict == VerdictAdvance
}
