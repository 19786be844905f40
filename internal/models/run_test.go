package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_StatusNeverRegresses(t *testing.T) {
	run := NewRun("run-1", "mission-1")
	assert.Equal(t, RunStatusSearching, run.Status)

	assert.True(t, run.AdvanceStatus(RunStatusAnalyzing))
	assert.True(t, run.AdvanceStatus(RunStatusStoring))

	assert.False(t, run.AdvanceStatus(RunStatusSearching))
	assert.Equal(t, RunStatusStoring, run.Status)

	assert.False(t, run.AdvanceStatus(RunStatusAnalyzing))
	assert.Equal(t, RunStatusStoring, run.Status)
}

func TestRun_FinalizeExactlyOnce(t *testing.T) {
	run := NewRun("run-1", "mission-1")

	assert.True(t, run.Finalize(RunStatusCompleted, ""))
	assert.True(t, run.IsFinalized())
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.False(t, run.CompletedAt.IsZero())

	// A later failure cannot overwrite the terminal state
	assert.False(t, run.Finalize(RunStatusFailed, "late error"))
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.Empty(t, run.Error)
}

func TestRun_FinalizedIgnoresAdvance(t *testing.T) {
	run := NewRun("run-1", "mission-1")
	run.Finalize(RunStatusFailed, "source scan failed")

	assert.False(t, run.AdvanceStatus(RunStatusStoring))
	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Equal(t, "source scan failed", run.Error)
}

func TestRun_FinalizeRejectsNonTerminalStatus(t *testing.T) {
	run := NewRun("run-1", "mission-1")
	assert.True(t, run.Finalize(RunStatusAnalyzing, "bad status"))
	assert.Equal(t, RunStatusFailed, run.Status, "non-terminal statuses coerced to failed")
}

func TestRun_AddErrors(t *testing.T) {
	run := NewRun("run-1", "mission-1")
	run.AddErrors(2)
	run.AddErrors(3)
	assert.Equal(t, 5, run.Errors)
}
