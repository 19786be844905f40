package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

// RunStorage implements SQLite storage for scout runs and gate decisions
type RunStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewRunStorage creates a new run storage instance
func NewRunStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.RunStorage {
	return &RunStorage{
		db:     db,
		logger: logger,
	}
}

// SaveRun inserts a new run record
func (s *RunStorage) SaveRun(ctx context.Context, run *models.Run) error {
	_, err := s.db.DB().ExecContext(ctx, `
		INSERT INTO runs (id, mission_id, status, found, processed, stored, errors, error, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.MissionID, string(run.Status),
		run.Found, run.Processed, run.Stored, run.Errors,
		nullString(run.Error), run.StartedAt.Unix(), nullUnix(run.CompletedAt))
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// UpdateRun persists the current run state
func (s *RunStorage) UpdateRun(ctx context.Context, run *models.Run) error {
	result, err := s.db.DB().ExecContext(ctx, `
		UPDATE runs SET status = ?, found = ?, processed = ?, stored = ?,
			errors = ?, error = ?, completed_at = ?
		WHERE id = ?`,
		string(run.Status), run.Found, run.Processed, run.Stored,
		run.Errors, nullString(run.Error), nullUnix(run.CompletedAt), run.ID)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", run.ID, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("run not found: %s", run.ID)
	}
	return nil
}

// GetRun retrieves a run by ID
func (s *RunStorage) GetRun(ctx context.Context, id string) (*models.Run, error) {
	row := s.db.DB().QueryRowContext(ctx, `
		SELECT id, mission_id, status, found, processed, stored, errors, error, started_at, completed_at
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return run, nil
}

// ListRunsByMission returns the most recent runs for a mission
func (s *RunStorage) ListRunsByMission(ctx context.Context, missionID string, limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT id, mission_id, status, found, processed, stored, errors, error, started_at, completed_at
		FROM runs WHERE mission_id = ? ORDER BY started_at DESC LIMIT ?`, missionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for mission %s: %w", missionID, err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SaveDecisions appends gate decisions in a single transaction
func (s *RunStorage) SaveDecisions(ctx context.Context, decisions []models.GateDecision) error {
	if len(decisions) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO gate_decisions (run_id, stage, item_key, verdict, score, rationale, sentiment, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare decision insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range decisions {
		_, err := stmt.ExecContext(ctx,
			d.RunID, string(d.Stage), d.ItemKey, string(d.Verdict),
			d.Score, d.Rationale, string(d.Sentiment), d.DecidedAt.Unix())
		if err != nil {
			return fmt.Errorf("failed to save decision for %s: %w", d.ItemKey, err)
		}
	}

	return tx.Commit()
}

// GetDecisionsByRun returns all gate decisions recorded for a run
func (s *RunStorage) GetDecisionsByRun(ctx context.Context, runID string) ([]models.GateDecision, error) {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT run_id, stage, item_key, verdict, score, rationale, sentiment, decided_at
		FROM gate_decisions WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions for run %s: %w", runID, err)
	}
	defer rows.Close()

	var decisions []models.GateDecision
	for rows.Next() {
		var d models.GateDecision
		var stage, verdict string
		var rationale, sentiment sql.NullString
		var decidedAt int64

		err := rows.Scan(&d.RunID, &stage, &d.ItemKey, &verdict, &d.Score, &rationale, &sentiment, &decidedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}

		d.Stage = models.GateStage(stage)
		d.Verdict = models.Verdict(verdict)
		d.Rationale = rationale.String
		d.Sentiment = models.Sentiment(sentiment.String)
		d.DecidedAt = time.Unix(decidedAt, 0).UTC()
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

func scanRun(row rowScanner) (*models.Run, error) {
	var run models.Run
	var status string
	var errMsg sql.NullString
	var startedAt int64
	var completedAt sql.NullInt64

	err := row.Scan(&run.ID, &run.MissionID, &status, &run.Found, &run.Processed,
		&run.Stored, &run.Errors, &errMsg, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	run.Status = models.RunStatus(status)
	run.Error = errMsg.String
	run.StartedAt = time.Unix(startedAt, 0).UTC()
	if completedAt.Valid {
		run.CompletedAt = time.Unix(completedAt.Int64, 0).UTC()
	}
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
