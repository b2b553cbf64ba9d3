// internal/report/store.go
package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"dialog-analyzer/internal/common/database"
	apperrors "dialog-analyzer/internal/common/errors"
	"dialog-analyzer/internal/common/logger"
	"dialog-analyzer/internal/models"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	run_id          TEXT PRIMARY KEY,
	generated_at    TIMESTAMPTZ NOT NULL,
	reference_time  TIMESTAMPTZ NOT NULL,
	total_intents   INTEGER NOT NULL,
	error_count     INTEGER NOT NULL,
	warning_count   INTEGER NOT NULL,
	risk_score      INTEGER NOT NULL,
	is_valid        BOOLEAN NOT NULL,
	payload         JSONB NOT NULL
)`

const insertRun = `
INSERT INTO analysis_runs
	(run_id, generated_at, reference_time, total_intents, error_count, warning_count, risk_score, is_valid, payload)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// RunStore persists run results in PostgreSQL for later comparison
// across snapshots.
type RunStore struct {
	db     *database.PostgresClient
	logger logger.Logger
}

func NewRunStore(db *database.PostgresClient, log logger.Logger) *RunStore {
	return &RunStore{db: db, logger: log}
}

// EnsureSchema creates the runs table when it does not exist yet.
func (s *RunStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createRunsTable); err != nil {
		return apperrors.NewStoreWriteFailedError(err)
	}
	return nil
}

// Save writes one result row. The full result rides along as JSONB so
// historical runs stay queryable without schema churn.
func (s *RunStore) Save(ctx context.Context, result *models.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return apperrors.NewStoreWriteFailedError(err)
	}

	riskScore := 100
	if result.Risk != nil {
		riskScore = result.Risk.RiskScore
	}
	_, err = s.db.Exec(ctx, insertRun,
		result.RunID,
		result.GeneratedAt,
		result.ReferenceTime,
		result.Statistics.TotalIntents,
		result.Validation.ErrorCount,
		result.Validation.WarningCount,
		riskScore,
		result.Validation.IsValid,
		payload,
	)
	if err != nil {
		return apperrors.NewStoreWriteFailedError(err)
	}
	s.logger.Info("run persisted", map[string]interface{}{
		"run_id":     result.RunID,
		"risk_score": riskScore,
	})
	return nil
}

// LastRunID returns the identifier of the most recent stored run, or
// an empty string when the table is empty.
func (s *RunStore) LastRunID(ctx context.Context) (string, error) {
	var runID string
	err := s.db.QueryRow(ctx,
		`SELECT run_id FROM analysis_runs ORDER BY generated_at DESC LIMIT 1`).Scan(&runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", apperrors.NewStoreWriteFailedError(err)
	}
	return runID, nil
}
