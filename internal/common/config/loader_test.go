// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	path := writeTestConfig(t, `
input:
  path: data.jsonl
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "dialog-analyzer", cfg.App.Name)
	assert.Equal(t, "data.jsonl", cfg.Input.Path)
	assert.Equal(t, "dialog_flow_analysis", cfg.Output.Dir)
	assert.Equal(t, 50, cfg.Analysis.MaxCycleDepth)

	assert.True(t, cfg.Analysis.Checks.IntentIDs)
	assert.True(t, cfg.Analysis.Checks.Redirects)
	assert.True(t, cfg.Analysis.Scorers.Complexity)
	assert.True(t, cfg.Analysis.ClassifySubtypes)

	ct := cfg.Analysis.Thresholds.Complexity
	assert.Equal(t, 30, ct.SimpleMaxLength)
	assert.Equal(t, 100, ct.ModerateMaxLength)
	assert.Equal(t, 200, ct.ComplexMaxLength)
	assert.Equal(t, 10, ct.TopPatterns)

	assert.Equal(t, 25, cfg.Analysis.Thresholds.Diversity["1"])
	assert.Equal(t, 60, cfg.Analysis.Thresholds.Freshness["fresh"])
	assert.Equal(t, 25, cfg.Analysis.Thresholds.RiskWeights["critical"])

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 24, cfg.Sinks.Redis.TTLHours)
}

func TestLoadFromFileOverrides(t *testing.T) {
	path := writeTestConfig(t, `
input:
  path: export.json
  max_records: 500
analysis:
  max_cycle_depth: 10
  thresholds:
    complexity:
      simple_max_length: 20
      moderate_max_length: 80
      complex_max_length: 150
    diversity:
      "1": 10
      "2": 40
      "3": 100
logging:
  level: debug
  format: console
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Input.MaxRecords)
	assert.Equal(t, 10, cfg.Analysis.MaxCycleDepth)
	assert.Equal(t, 20, cfg.Analysis.Thresholds.Complexity.SimpleMaxLength)
	assert.Equal(t, 150, cfg.Analysis.Thresholds.Complexity.ComplexMaxLength)
	assert.Equal(t, map[string]int{"1": 10, "2": 40, "3": 100}, cfg.Analysis.Thresholds.Diversity)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFileValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "non increasing complexity lengths",
			yaml: `
analysis:
  thresholds:
    complexity:
      simple_max_length: 100
      moderate_max_length: 50
`,
			wantErr: "strictly increasing",
		},
		{
			name: "non positive diversity key",
			yaml: `
analysis:
  thresholds:
    diversity:
      "0": 25
`,
			wantErr: "table: diversity, key: 0",
		},
		{
			name: "non numeric diversity key",
			yaml: `
analysis:
  thresholds:
    diversity:
      some: 25
`,
			wantErr: "table: diversity, key: some",
		},
		{
			name: "unknown freshness band",
			yaml: `
analysis:
  thresholds:
    freshness:
      ancient: 10
`,
			wantErr: "table: freshness, key: ancient",
		},
		{
			name: "unknown risk severity",
			yaml: `
analysis:
  thresholds:
    risk_weights:
      catastrophic: 99
`,
			wantErr: "table: risk_weights, key: catastrophic",
		},
		{
			name: "postgres sink without host",
			yaml: `
sinks:
  postgres:
    enabled: true
    database: analysis
    user: analyzer
`,
			wantErr: "sinks.postgres.host is required",
		},
		{
			name: "redis sink without address",
			yaml: `
sinks:
  redis:
    enabled: true
`,
			wantErr: "sinks.redis.address is required",
		},
		{
			name: "elasticsearch sink without addresses",
			yaml: `
sinks:
  elasticsearch:
    enabled: true
`,
			wantErr: "sinks.elasticsearch.addresses or url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestConfig(t, tt.yaml)
			_, err := LoadFromFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFileExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_ANALYZER_PG_PASSWORD", "s3cret")

	path := writeTestConfig(t, `
sinks:
  postgres:
    enabled: true
    host: localhost
    database: analysis
    user: analyzer
    password: ${TEST_ANALYZER_PG_PASSWORD}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Sinks.Postgres.Password)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestDiversityTable(t *testing.T) {
	table := DiversityTable(map[string]int{"1": 25, "3": 75, "bad": 99})
	assert.Equal(t, map[int]int{1: 25, 3: 75}, table)
}
