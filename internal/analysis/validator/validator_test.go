// internal/analysis/validator/validator_test.go
package validator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dialog-analyzer/internal/common/config"
	"dialog-analyzer/internal/common/logger"
	"dialog-analyzer/internal/models"
)

func allChecks() config.ChecksConfig {
	return config.ChecksConfig{
		IntentIDs:    true,
		Titles:       true,
		NaNFields:    true,
		EmptyContent: true,
		Redirects:    true,
		Settings:     true,
	}
}

func createTestIntent(id, title string) models.Intent {
	return models.Intent{
		IntentID:   id,
		Title:      title,
		RecordType: "main_bot",
		Answers:    []models.Answer{{Answer: "answer text"}},
	}
}

func createTestGraph(intents []models.Intent, edges ...models.Edge) *models.Graph {
	g := &models.Graph{Nodes: map[string]models.NodeInfo{}, Edges: edges}
	for _, in := range intents {
		g.Nodes[in.IntentID] = models.NodeInfo{Title: in.Title}
	}
	return g
}

func issuesByRule(r *models.ValidationReport, rule string) []models.ValidationIssue {
	var out []models.ValidationIssue
	for _, is := range r.Issues {
		if is.Rule == rule {
			out = append(out, is)
		}
	}
	return out
}

func TestValidateCleanRecordSet(t *testing.T) {
	intents := []models.Intent{
		createTestIntent("greeting", "Greeting"),
		createTestIntent("farewell", "Farewell"),
	}
	v := New(allChecks(), logger.NewTestLogger(t))

	report := v.Validate(intents, createTestGraph(intents))

	assert.True(t, report.IsValid)
	assert.Zero(t, report.ErrorCount)
	assert.Zero(t, report.WarningCount)
	assert.Len(t, report.ChecksRun, 6)
}

func TestValidateDuplicateIntentIDs(t *testing.T) {
	intents := []models.Intent{
		createTestIntent("greeting", "Greeting"),
		createTestIntent("greeting", "Second greeting"),
	}
	v := New(allChecks(), logger.NewTestLogger(t))

	report := v.Validate(intents, createTestGraph(intents))

	issues := issuesByRule(report, RuleDuplicateIntentID)
	require.Len(t, issues, 1)
	assert.Equal(t, models.IssueError, issues[0].Severity)
	assert.Equal(t, []string{"greeting"}, issues[0].IntentIDs)
	assert.False(t, report.IsValid)
}

func TestValidateDuplicateTitlesAreWarnings(t *testing.T) {
	intents := []models.Intent{
		createTestIntent("a", "Same title"),
		createTestIntent("b", "Same title"),
	}
	v := New(allChecks(), logger.NewTestLogger(t))

	report := v.Validate(intents, createTestGraph(intents))

	issues := issuesByRule(report, RuleDuplicateTitle)
	require.Len(t, issues, 1)
	assert.Equal(t, models.IssueWarning, issues[0].Severity)
	assert.Equal(t, []string{"a", "b"}, issues[0].IntentIDs)
	assert.True(t, report.IsValid, "warnings must not flip validity")
}

func TestValidateNaNFields(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*models.Intent)
		wantIssues int
	}{
		{
			name:       "explicit float NaN in slot_ids",
			mutate:     func(in *models.Intent) { in.SlotIDs = math.NaN() },
			wantIssues: 1,
		},
		{
			name:       "literal NaN string in routing_params",
			mutate:     func(in *models.Intent) { in.RoutingParams = "NaN" },
			wantIssues: 1,
		},
		{
			name:       "absent optional fields are fine",
			mutate:     func(in *models.Intent) {},
			wantIssues: 0,
		},
		{
			name:       "missing record_type",
			mutate:     func(in *models.Intent) { in.RecordType = "" },
			wantIssues: 1,
		},
		{
			name:       "record_type literal None",
			mutate:     func(in *models.Intent) { in.RecordType = "None" },
			wantIssues: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := createTestIntent("x", "X")
			tt.mutate(&in)
			v := New(config.ChecksConfig{NaNFields: true}, logger.NewTestLogger(t))

			report := v.Validate([]models.Intent{in}, nil)

			assert.Len(t, issuesByRule(report, RuleNaNField), tt.wantIssues)
		})
	}
}

func TestValidateEmptyContent(t *testing.T) {
	empty := models.Intent{IntentID: "empty", Title: "Empty", RecordType: "main_bot"}
	noTriggers := createTestIntent("silent", "Silent")
	noTriggers.Inputs = []models.Input{{Questions: []models.Question{{Sentence: "   "}}}}
	redirectOnly := models.Intent{IntentID: "hop", Title: "Hop", RecordType: "main_bot", RedirectTo: "greeting"}

	v := New(config.ChecksConfig{EmptyContent: true}, logger.NewTestLogger(t))
	report := v.Validate([]models.Intent{empty, noTriggers, redirectOnly}, nil)

	answers := issuesByRule(report, RuleEmptyAnswers)
	require.Len(t, answers, 1)
	assert.Equal(t, []string{"empty"}, answers[0].IntentIDs)

	inputs := issuesByRule(report, RuleEmptyInputs)
	require.Len(t, inputs, 1)
	assert.Equal(t, []string{"silent"}, inputs[0].IntentIDs)
	assert.Equal(t, models.IssueWarning, inputs[0].Severity)
}

func TestValidateBrokenRedirects(t *testing.T) {
	intents := []models.Intent{
		createTestIntent("a", "A"),
		createTestIntent("b", "B"),
	}
	g := createTestGraph(intents,
		models.Edge{Source: "a", Target: "ghost", Kind: models.EdgeDirectRedirect},
		models.Edge{Source: "b", Target: "ghost", Kind: models.EdgeFallback},
		models.Edge{Source: "a", Target: "b", Kind: models.EdgeDirectRedirect},
		models.Edge{Source: "b", Target: "b", Kind: models.EdgeButtonRedirect},
	)
	v := New(config.ChecksConfig{Redirects: true}, logger.NewTestLogger(t))

	report := v.Validate(intents, g)

	broken := issuesByRule(report, RuleBrokenRedirect)
	require.Len(t, broken, 1)
	assert.Equal(t, models.IssueError, broken[0].Severity)
	assert.Equal(t, []string{"a", "b"}, broken[0].IntentIDs)

	self := issuesByRule(report, RuleSelfRedirect)
	require.Len(t, self, 1)
	assert.Equal(t, []string{"b"}, self[0].IntentIDs)
}

func TestValidateRedirectsSkippedWithoutGraph(t *testing.T) {
	v := New(config.ChecksConfig{Redirects: true}, logger.NewTestLogger(t))

	report := v.Validate([]models.Intent{createTestIntent("a", "A")}, nil)

	assert.Empty(t, report.ChecksRun)
	assert.True(t, report.IsValid)
}

func TestValidateSettings(t *testing.T) {
	good := createTestIntent("good", "Good")
	good.IntentSettings = map[string]interface{}{"use_llm": true}

	notObject := createTestIntent("scalar", "Scalar")
	notObject.IntentSettings = "use_llm"

	wrongType := createTestIntent("typed", "Typed")
	wrongType.IntentSettings = map[string]interface{}{"use_llm": "yes"}

	v := New(config.ChecksConfig{Settings: true}, logger.NewTestLogger(t))
	report := v.Validate([]models.Intent{good, notObject, wrongType}, nil)

	issues := issuesByRule(report, RuleInvalidSettings)
	require.Len(t, issues, 2)
	for _, is := range issues {
		assert.Equal(t, models.IssueWarning, is.Severity)
	}
}

func TestExplicitNaNPredicates(t *testing.T) {
	assert.True(t, IsExplicitNaN(math.NaN()))
	assert.True(t, IsExplicitNaN("NaN"))
	assert.True(t, IsExplicitNaN(" nan "))
	assert.False(t, IsExplicitNaN(nil))
	assert.False(t, IsExplicitNaN(1.5))
	assert.False(t, IsExplicitNaN("banana"))

	assert.True(t, IsAbsent(nil))
	assert.True(t, IsAbsent([]interface{}{}))
	assert.True(t, IsAbsent(map[string]interface{}{}))
	assert.False(t, IsAbsent(math.NaN()))
	assert.False(t, IsAbsent(""))
}
