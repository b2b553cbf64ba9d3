// internal/report/report_test.go
package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dialog-analyzer/internal/common/logger"
	"dialog-analyzer/internal/models"
)

func createTestResult() *models.Result {
	validation := &models.ValidationReport{IsValid: true}
	validation.Add(models.ValidationIssue{
		Rule:      "broken_redirect",
		Severity:  models.IssueError,
		IntentIDs: []string{"a", "b"},
		Message:   "redirect target \"ghost\" does not exist",
	})
	return &models.Result{
		RunID:         "run-123",
		GeneratedAt:   time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC),
		ReferenceTime: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		Classifications: []models.Classification{
			{IntentID: "a", Category: models.CategoryMainIntent, Subtype: models.SubtypeInsuranceProducts},
			{IntentID: "b", Category: models.CategoryDialogState, Expired: true},
		},
		Graph: &models.Graph{
			Nodes: map[string]models.NodeInfo{"a": {}, "b": {}},
			Edges: []models.Edge{{Source: "a", Target: "b", Kind: models.EdgeDirectRedirect}},
		},
		Cycles:     &models.CycleReport{},
		Validation: validation,
		Risk:       &models.RiskReport{RiskScore: 75},
		Statistics: &models.Statistics{TotalIntents: 2, TotalTransitions: 1},
	}
}

func TestJSONWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONWriter(dir, logger.NewTestLogger(t))

	path, err := w.Write(createTestResult())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "analysis_20250615_103000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded models.Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-123", decoded.RunID)
	assert.Len(t, decoded.Classifications, 2)
	assert.Equal(t, 75, decoded.Risk.RiskScore)
}

func TestCSVWriterTables(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, logger.NewTestLogger(t))

	paths, err := w.Write(createTestResult())
	require.NoError(t, err)
	require.Len(t, paths, 3)

	readRows := func(path string) [][]string {
		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		rows, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)
		return rows
	}

	classifications := readRows(paths[0])
	require.Len(t, classifications, 3)
	assert.Equal(t, []string{"intent_id", "category", "subtype", "expired"}, classifications[0])
	assert.Equal(t, []string{"a", "main_intent", "insurance_products", "false"}, classifications[1])

	edges := readRows(paths[1])
	require.Len(t, edges, 2)
	assert.Equal(t, []string{"a", "b", "direct_redirect", ""}, edges[1])

	issues := readRows(paths[2])
	require.Len(t, issues, 2)
	assert.Equal(t, "broken_redirect", issues[1][0])
	assert.Equal(t, "a;b", issues[1][2])
}

func TestFingerprintStableUnderReordering(t *testing.T) {
	a := models.Intent{IntentID: "a", Version: 1}
	b := models.Intent{IntentID: "b", Version: 2}

	fp1 := Fingerprint([]models.Intent{a, b})
	fp2 := Fingerprint([]models.Intent{b, a})
	assert.Equal(t, fp1, fp2)

	b.Version = 3
	fp3 := Fingerprint([]models.Intent{a, b})
	assert.NotEqual(t, fp1, fp3, "version bump changes the fingerprint")
}
