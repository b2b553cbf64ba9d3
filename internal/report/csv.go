// internal/report/csv.go
package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "dialog-analyzer/internal/common/errors"
	"dialog-analyzer/internal/common/logger"
	"dialog-analyzer/internal/models"
)

// CSVWriter exports the flat views of a run: classifications, graph
// edges and validation issues, one file each.
type CSVWriter struct {
	dir    string
	logger logger.Logger
}

func NewCSVWriter(dir string, log logger.Logger) *CSVWriter {
	return &CSVWriter{dir: dir, logger: log}
}

// Write stores all three tables and returns the written paths.
func (w *CSVWriter) Write(result *models.Result) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, apperrors.NewReportWriteFailedError(w.dir, err)
	}
	suffix := result.GeneratedAt.Format(runTimestampLayout)

	var paths []string
	tables := []struct {
		name string
		rows [][]string
	}{
		{"classifications_" + suffix + ".csv", classificationRows(result)},
		{"edges_" + suffix + ".csv", edgeRows(result)},
		{"issues_" + suffix + ".csv", issueRows(result)},
	}
	for _, table := range tables {
		path := filepath.Join(w.dir, table.name)
		if err := writeCSV(path, table.rows); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	w.logger.Info("csv reports written", map[string]interface{}{
		"dir":   w.dir,
		"files": len(paths),
	})
	return paths, nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewReportWriteFailedError(path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		return apperrors.NewReportWriteFailedError(path, err)
	}
	return nil
}

func classificationRows(result *models.Result) [][]string {
	rows := [][]string{{"intent_id", "category", "subtype", "expired"}}
	for _, c := range result.Classifications {
		rows = append(rows, []string{
			c.IntentID, string(c.Category), string(c.Subtype), strconv.FormatBool(c.Expired),
		})
	}
	return rows
}

func edgeRows(result *models.Result) [][]string {
	rows := [][]string{{"source", "target", "kind", "condition"}}
	if result.Graph == nil {
		return rows
	}
	for _, e := range result.Graph.Edges {
		rows = append(rows, []string{e.Source, e.Target, string(e.Kind), e.Condition})
	}
	return rows
}

func issueRows(result *models.Result) [][]string {
	rows := [][]string{{"rule", "severity", "intent_ids", "message"}}
	if result.Validation == nil {
		return rows
	}
	for _, issue := range result.Validation.Issues {
		rows = append(rows, []string{
			issue.Rule, string(issue.Severity), strings.Join(issue.IntentIDs, ";"), issue.Message,
		})
	}
	return rows
}
