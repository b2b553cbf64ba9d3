// internal/analysis/engine/engine_test.go
package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dialog-analyzer/internal/common/config"
	apperrors "dialog-analyzer/internal/common/errors"
	"dialog-analyzer/internal/common/logger"
	"dialog-analyzer/internal/models"
)

func createTestAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		ReferenceTime:    "2025-06-15T12:00:00Z",
		ClassifySubtypes: true,
		MaxCycleDepth:    50,
		Checks: config.ChecksConfig{
			IntentIDs:    true,
			Titles:       true,
			NaNFields:    true,
			EmptyContent: true,
			Redirects:    true,
			Settings:     true,
		},
		Scorers: config.ScorersConfig{Complexity: true, Diversity: true, Freshness: true},
		Thresholds: config.ThresholdsConfig{
			Complexity: config.ComplexityThresholds{
				SimpleMaxLength:      30,
				ModerateMaxLength:    100,
				ComplexMaxLength:     200,
				SimpleMaxAlts:        2,
				ModerateMaxAlts:      5,
				ComplexMaxAlts:       10,
				TopPatterns:          10,
				MaxCharacterClasses:  5,
				MaxGroupNestingDepth: 2,
			},
			Diversity:   map[string]int{"1": 25, "2": 50, "3": 75, "4": 100},
			Freshness:   map[string]int{"very_fresh": 80, "fresh": 60, "moderate": 40, "stale": 20, "very_stale": 0},
			RiskWeights: map[string]int{"critical": 25, "high": 10, "medium": 5, "low": 2, "info": 0},
		},
	}
}

func createChainIntent(id, redirectTo string) models.Intent {
	return models.Intent{
		IntentID:   id,
		Title:      "Intent " + id,
		RecordType: "cc_regexp_main",
		Inputs:     []models.Input{{Questions: []models.Question{{Sentence: "pattern " + id}}}},
		Answers:    []models.Answer{{Answer: "answer " + id}},
		RedirectTo: redirectTo,
	}
}

func TestNewRequiresReferenceTimeForFreshness(t *testing.T) {
	cfg := createTestAnalysisConfig()
	cfg.ReferenceTime = ""

	_, err := New(cfg, nil, logger.NewTestLogger(t))

	require.Error(t, err)
	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeReferenceTimeMissing, stdErr.Code)
}

func TestNewRejectsMalformedReferenceTime(t *testing.T) {
	cfg := createTestAnalysisConfig()
	cfg.ReferenceTime = "15.06.2025"

	_, err := New(cfg, nil, logger.NewTestLogger(t))

	require.Error(t, err)
}

func TestNewDefaultsReferenceTimeWhenNotRequired(t *testing.T) {
	cfg := createTestAnalysisConfig()
	cfg.ReferenceTime = ""
	cfg.FilterExpired = false
	cfg.Scorers.Freshness = false

	e, err := New(cfg, nil, logger.NewTestLogger(t))

	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), e.ReferenceTime(), time.Minute)
}

func TestAnalyzeThreeIntentCycle(t *testing.T) {
	e, err := New(createTestAnalysisConfig(), nil, logger.NewTestLogger(t))
	require.NoError(t, err)

	intents := []models.Intent{
		createChainIntent("a", "b"),
		createChainIntent("b", "c"),
		createChainIntent("c", "a"),
	}
	result, err := e.Analyze(context.Background(), Input{Intents: intents})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC), result.ReferenceTime)
	assert.Len(t, result.Classifications, 3)
	assert.Len(t, result.Graph.Edges, 3)

	require.Len(t, result.Cycles.Cycles, 1)
	assert.Equal(t, []string{"a", "b", "c"}, result.Cycles.Cycles[0].Nodes,
		"cycle reported rooted at its minimal member")
	assert.False(t, result.Cycles.Truncated)

	// every node both enters and leaves the ring
	assert.True(t, result.Validation.IsValid)
	assert.Empty(t, result.Graph.DeadEnds)

	require.NotNil(t, result.Diversity)
	assert.Equal(t, 25, result.Diversity.Score, "single entry-point kind")

	require.NotNil(t, result.Risk)
	assert.Equal(t, 3, result.Risk.KindDistribution[models.RiskCircularRedirect])

	require.NotNil(t, result.Statistics)
	assert.Equal(t, 3, result.Statistics.TotalIntents)
	assert.Equal(t, 3, result.Statistics.TotalTransitions)
}

func TestAnalyzeSurfacesDefectsWithoutFailing(t *testing.T) {
	e, err := New(createTestAnalysisConfig(), nil, logger.NewTestLogger(t))
	require.NoError(t, err)

	broken := createChainIntent("a", "missing-target")
	empty := models.Intent{IntentID: "b", Title: "Empty", RecordType: "main_bot"}

	result, err := e.Analyze(context.Background(), Input{Intents: []models.Intent{broken, empty}, ExpiredFiltered: 4})
	require.NoError(t, err)

	assert.False(t, result.Validation.IsValid)
	assert.GreaterOrEqual(t, result.Validation.ErrorCount, 2, "broken redirect and empty answers")
	assert.Contains(t, result.Risk.CriticalIntents, "a")
	assert.Contains(t, result.Risk.CriticalIntents, "b")
	assert.Less(t, result.Risk.RiskScore, 100)
	assert.Equal(t, 4, result.Statistics.ExpiredFiltered)
}

func TestAnalyzeTruncatedCycleSearchAddsWarning(t *testing.T) {
	cfg := createTestAnalysisConfig()
	cfg.MaxCycleDepth = 2
	e, err := New(cfg, nil, logger.NewTestLogger(t))
	require.NoError(t, err)

	intents := []models.Intent{
		createChainIntent("a", "b"),
		createChainIntent("b", "c"),
		createChainIntent("c", "d"),
		createChainIntent("d", "a"),
	}
	result, err := e.Analyze(context.Background(), Input{Intents: intents})
	require.NoError(t, err)

	assert.True(t, result.Cycles.Truncated)
	found := false
	for _, issue := range result.Validation.Issues {
		if issue.Rule == RuleCycleSearchTruncated {
			found = true
			assert.Equal(t, models.IssueWarning, issue.Severity)
		}
	}
	assert.True(t, found, "truncation warning recorded")
}

func TestAnalyzeDisabledScorersStayNil(t *testing.T) {
	cfg := createTestAnalysisConfig()
	cfg.Scorers = config.ScorersConfig{}
	e, err := New(cfg, nil, logger.NewTestLogger(t))
	require.NoError(t, err)

	result, err := e.Analyze(context.Background(), Input{Intents: []models.Intent{createChainIntent("a", "")}})
	require.NoError(t, err)

	assert.Nil(t, result.Complexity)
	assert.Nil(t, result.Diversity)
	assert.Nil(t, result.Freshness)
	require.NotNil(t, result.Risk)
}
