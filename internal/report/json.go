// internal/report/json.go
// Package report owns the output side of a run: file writers and the
// optional store, cache and search sinks.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"

	apperrors "dialog-analyzer/internal/common/errors"
	"dialog-analyzer/internal/common/logger"
	"dialog-analyzer/internal/models"
)

const runTimestampLayout = "20060102_150405"

// JSONWriter serializes a full run result to one pretty-printed file.
type JSONWriter struct {
	dir    string
	logger logger.Logger
}

func NewJSONWriter(dir string, log logger.Logger) *JSONWriter {
	return &JSONWriter{dir: dir, logger: log}
}

// Write stores the result and returns the written path.
func (w *JSONWriter) Write(result *models.Result) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", apperrors.NewReportWriteFailedError(w.dir, err)
	}
	path := filepath.Join(w.dir, "analysis_"+result.GeneratedAt.Format(runTimestampLayout)+".json")

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", apperrors.NewReportWriteFailedError(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperrors.NewReportWriteFailedError(path, err)
	}
	w.logger.Info("json report written", map[string]interface{}{
		"path":  path,
		"bytes": len(data),
	})
	return path, nil
}
