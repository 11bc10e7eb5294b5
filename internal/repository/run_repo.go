package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gdnc/invoice-automation/internal/models"
)

// RunRepository records batch generation runs
type RunRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sql.DB, logger *zap.Logger) *RunRepository {
	return &RunRepository{
		db:     db,
		logger: logger,
	}
}

// Start records the beginning of a run
func (r *RunRepository) Start(run *models.GenerationRun) error {
	query := `INSERT INTO generation_runs (run_id, kind, started_at) VALUES (?, ?, ?)`

	if _, err := r.db.Exec(query, run.RunID, run.Kind, run.StartedAt); err != nil {
		r.logger.Error("Failed to record run start", zap.String("run_id", run.RunID), zap.Error(err))
		return fmt.Errorf("failed to record run start: %w", err)
	}
	return nil
}

// Finish stores the outcome counters of a run
func (r *RunRepository) Finish(runID string, generated, failed int, finishedAt time.Time) error {
	query := `
		UPDATE generation_runs
		SET generated = ?, failed = ?, finished_at = ?
		WHERE run_id = ?
	`

	if _, err := r.db.Exec(query, generated, failed, finishedAt, runID); err != nil {
		r.logger.Error("Failed to record run end", zap.String("run_id", runID), zap.Error(err))
		return fmt.Errorf("failed to record run end: %w", err)
	}
	return nil
}

// Get returns a run, or nil when unknown
func (r *RunRepository) Get(runID string) (*models.GenerationRun, error) {
	query := `
		SELECT run_id, kind, started_at, finished_at, generated, failed
		FROM generation_runs
		WHERE run_id = ?
	`

	var run models.GenerationRun
	var finishedAt sql.NullTime
	err := r.db.QueryRow(query, runID).Scan(
		&run.RunID,
		&run.Kind,
		&run.StartedAt,
		&finishedAt,
		&run.Generated,
		&run.Failed,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	return &run, nil
}
