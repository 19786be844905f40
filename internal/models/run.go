package models

import (
	"sync"
	"time"
)

// RunStatus represents the state of a scout run
type RunStatus string

const (
	RunStatusSearching RunStatus = "searching"
	RunStatusAnalyzing RunStatus = "analyzing"
	RunStatusStoring   RunStatus = "storing"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// statusRank orders run statuses; a run never moves backwards.
var statusRank = map[RunStatus]int{
	RunStatusSearching: 0,
	RunStatusAnalyzing: 1,
	RunStatusStoring:   2,
	RunStatusCompleted: 3,
	RunStatusFailed:    3,
}

// Run is one execution instance of the funnel for a mission.
// Status advances monotonically (searching -> analyzing -> storing ->
// completed|failed) and the run is finalized exactly once regardless of
// which stage fails.
type Run struct {
	ID        string    `json:"id"`
	MissionID string    `json:"mission_id"`
	Status    RunStatus `json:"status"`
	// Counters, updated as stages complete
	Found     int `json:"found"`     // Listings collected by the source scanner
	Processed int `json:"processed"` // Items enriched by the detail scanner
	Stored    int `json:"stored"`    // Discoveries persisted
	Errors    int `json:"errors"`    // Per-item errors absorbed along the way
	// Error contains a concise description of why the run failed.
	// Only populated when status is 'failed'.
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`

	mu        sync.Mutex
	finalized bool
}

// NewRun creates a run in the searching state
func NewRun(id, missionID string) *Run {
	return &Run{
		ID:        id,
		MissionID: missionID,
		Status:    RunStatusSearching,
		StartedAt: time.Now().UTC(),
	}
}

// AdvanceStatus moves the run to the given status. Regressions are ignored
// so a late stage can never rewind a finalized run.
func (r *Run) AdvanceStatus(status RunStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return false
	}
	if statusRank[status] < statusRank[r.Status] {
		return false
	}
	r.Status = status
	return true
}

// Finalize marks the run terminal exactly once. Subsequent calls are no-ops
// and return false.
func (r *Run) Finalize(status RunStatus, errMsg string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return false
	}
	if status != RunStatusCompleted && status != RunStatusFailed {
		status = RunStatusFailed
	}
	r.Status = status
	r.Error = errMsg
	r.CompletedAt = time.Now().UTC()
	r.finalized = true
	return true
}

// IsFinalized reports whether the run has reached a terminal status
func (r *Run) IsFinalized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finalized
}

// AddErrors increments the absorbed-error counter
func (r *Run) AddErrors(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors += n
}

// RunSummary is returned to the caller once a run terminates
type RunSummary struct {
	RunID        string        `json:"run_id"`
	MissionID    string        `json:"mission_id"`
	Status       RunStatus     `json:"status"`
	Found        int           `json:"found"`
	Investigated int           `json:"investigated"`
	Enriched     int           `json:"enriched"`
	Stored       int           `json:"stored"`
	Errors       int           `json:"errors"`
	Duration     time.Duration `json:"duration"`
}
