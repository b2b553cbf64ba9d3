// internal/report/store_test.go
package report

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dialog-analyzer/internal/common/database"
	apperrors "dialog-analyzer/internal/common/errors"
	"dialog-analyzer/internal/common/logger"
)

func createTestStore(t *testing.T) (*RunStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRunStore(&database.PostgresClient{DB: db}, logger.NewTestLogger(t)), mock
}

func TestRunStoreEnsureSchema(t *testing.T) {
	store, mock := createTestStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS analysis_runs").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunStoreSave(t *testing.T) {
	store, mock := createTestStore(t)
	result := createTestResult()

	mock.ExpectExec("INSERT INTO analysis_runs").
		WithArgs(result.RunID, result.GeneratedAt, result.ReferenceTime,
			2, 1, 0, 75, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), result))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunStoreSaveWrapsError(t *testing.T) {
	store, mock := createTestStore(t)
	mock.ExpectExec("INSERT INTO analysis_runs").
		WillReturnError(errors.New("connection reset"))

	err := store.Save(context.Background(), createTestResult())

	require.Error(t, err)
	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeStoreWriteFailed, stdErr.Code)
}

func TestRunStoreLastRunID(t *testing.T) {
	store, mock := createTestStore(t)
	mock.ExpectQuery("SELECT run_id FROM analysis_runs").
		WillReturnRows(sqlmock.NewRows([]string{"run_id"}).AddRow("run-123"))

	runID, err := store.LastRunID(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "run-123", runID)
}

func TestRunStoreLastRunIDEmptyTable(t *testing.T) {
	store, mock := createTestStore(t)
	mock.ExpectQuery("SELECT run_id FROM analysis_runs").
		WillReturnRows(sqlmock.NewRows([]string{"run_id"}))

	runID, err := store.LastRunID(context.Background())

	require.NoError(t, err)
	assert.Empty(t, runID)
}
