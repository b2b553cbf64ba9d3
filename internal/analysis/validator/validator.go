// internal/analysis/validator/validator.go
package validator

import (
	"fmt"
	"sort"
	"strings"

	"dialog-analyzer/internal/common/config"
	"dialog-analyzer/internal/common/logger"
	"dialog-analyzer/internal/common/metrics"
	"dialog-analyzer/internal/models"
)

// Rule names reported on issues. Stable identifiers, keyed on by the
// risk pass and the issue indexer.
const (
	RuleDuplicateIntentID = "duplicate_intent_id"
	RuleDuplicateTitle    = "duplicate_title"
	RuleNaNField          = "nan_field"
	RuleEmptyAnswers      = "empty_answers"
	RuleEmptyInputs       = "empty_inputs"
	RuleBrokenRedirect    = "broken_redirect"
	RuleSelfRedirect      = "self_redirect"
	RuleInvalidSettings   = "invalid_settings"
)

// Validator runs the structural checks enabled in configuration over a
// record set and its transition graph.
type Validator struct {
	checks config.ChecksConfig
	logger logger.Logger
}

// New creates a Validator with the given check toggles.
func New(checks config.ChecksConfig, log logger.Logger) *Validator {
	return &Validator{checks: checks, logger: log}
}

// Validate runs every enabled check and returns the aggregated report.
// graph may be nil, in which case the redirect checks are skipped even
// when enabled.
func (v *Validator) Validate(intents []models.Intent, graph *models.Graph) *models.ValidationReport {
	report := &models.ValidationReport{Issues: []models.ValidationIssue{}, IsValid: true}

	run := func(name string, enabled bool, check func(*models.ValidationReport)) {
		if !enabled {
			return
		}
		report.ChecksRun = append(report.ChecksRun, name)
		check(report)
	}

	run("intent_ids", v.checks.IntentIDs, func(r *models.ValidationReport) {
		v.checkDuplicateIDs(intents, r)
	})
	run("titles", v.checks.Titles, func(r *models.ValidationReport) {
		v.checkDuplicateTitles(intents, r)
	})
	run("nan_fields", v.checks.NaNFields, func(r *models.ValidationReport) {
		v.checkNaNFields(intents, r)
	})
	run("empty_content", v.checks.EmptyContent, func(r *models.ValidationReport) {
		v.checkEmptyContent(intents, r)
	})
	run("redirects", v.checks.Redirects && graph != nil, func(r *models.ValidationReport) {
		v.checkRedirects(graph, r)
	})
	run("settings", v.checks.Settings, func(r *models.ValidationReport) {
		v.checkSettings(intents, r)
	})

	for _, issue := range report.Issues {
		metrics.ValidationIssuesFound.WithLabelValues(issue.Rule, string(issue.Severity)).Inc()
	}
	v.logger.Info("validation completed", map[string]interface{}{
		"checks_run": report.ChecksRun,
		"errors":     report.ErrorCount,
		"warnings":   report.WarningCount,
	})
	return report
}

// checkDuplicateIDs flags intent IDs shared by more than one record.
// Duplicate IDs make every downstream keyed structure ambiguous, so this
// is always an error.
func (v *Validator) checkDuplicateIDs(intents []models.Intent, r *models.ValidationReport) {
	byID := map[string]int{}
	for _, in := range intents {
		byID[in.IntentID]++
	}
	for _, id := range sortedKeys(byID) {
		if n := byID[id]; n > 1 {
			r.Add(models.ValidationIssue{
				Rule:      RuleDuplicateIntentID,
				Severity:  models.IssueError,
				IntentIDs: []string{id},
				Message:   fmt.Sprintf("intent_id %q used by %d records", id, n),
			})
		}
	}
}

// checkDuplicateTitles flags titles shared by more than one record.
// Titles are display strings, so duplicates are only a warning.
func (v *Validator) checkDuplicateTitles(intents []models.Intent, r *models.ValidationReport) {
	byTitle := map[string][]string{}
	for _, in := range intents {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			continue
		}
		byTitle[title] = append(byTitle[title], in.IntentID)
	}
	titles := make([]string, 0, len(byTitle))
	for t := range byTitle {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	for _, t := range titles {
		ids := byTitle[t]
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		r.Add(models.ValidationIssue{
			Rule:      RuleDuplicateTitle,
			Severity:  models.IssueWarning,
			IntentIDs: ids,
			Message:   fmt.Sprintf("title %q shared by %d records", t, len(ids)),
		})
	}
}

// checkNaNFields flags required fields that are missing or carry an
// invalid-data marker, and optional structured fields that are present
// but explicitly NaN. Absent optional fields are fine; an explicit NaN
// means the export pipeline wrote garbage where a value was expected.
func (v *Validator) checkNaNFields(intents []models.Intent, r *models.ValidationReport) {
	for _, in := range intents {
		if isMissingOrNaN(in.IntentID) {
			r.Add(models.ValidationIssue{
				Rule:     RuleNaNField,
				Severity: models.IssueError,
				Message:  fmt.Sprintf("record %q has missing or NaN intent_id", in.Title),
			})
		}
		if isMissingOrNaN(in.RecordType) {
			r.Add(models.ValidationIssue{
				Rule:      RuleNaNField,
				Severity:  models.IssueError,
				IntentIDs: []string{in.IntentID},
				Message:   "record_type is missing or NaN",
			})
		}
		for field, val := range map[string]interface{}{
			"slot_ids":        in.SlotIDs,
			"routing_params":  in.RoutingParams,
			"intent_settings": in.IntentSettings,
			"expire_at":       in.ExpireAt,
		} {
			if !IsExplicitNaN(val) {
				continue
			}
			r.Add(models.ValidationIssue{
				Rule:      RuleNaNField,
				Severity:  models.IssueError,
				IntentIDs: []string{in.IntentID},
				Message:   fmt.Sprintf("field %s is explicitly NaN", field),
			})
		}
	}
}

// checkEmptyContent flags records that carry no answers (error, the bot
// has nothing to say) and records with inputs declared but no usable
// trigger sentences (warning, the record is unreachable by matching).
func (v *Validator) checkEmptyContent(intents []models.Intent, r *models.ValidationReport) {
	for _, in := range intents {
		if !hasAnswerContent(&in) {
			r.Add(models.ValidationIssue{
				Rule:      RuleEmptyAnswers,
				Severity:  models.IssueError,
				IntentIDs: []string{in.IntentID},
				Message:   "record has no answer content",
			})
		}
		if len(in.Inputs) > 0 && len(in.TriggerPatterns()) == 0 {
			r.Add(models.ValidationIssue{
				Rule:      RuleEmptyInputs,
				Severity:  models.IssueWarning,
				IntentIDs: []string{in.IntentID},
				Message:   "inputs declared but no trigger sentences present",
			})
		}
	}
}

// checkRedirects walks the transition graph and flags edges leading to
// unknown nodes plus direct self-redirects. Self-transitions through
// longer paths are the cycle detector's concern, not a validation issue.
func (v *Validator) checkRedirects(g *models.Graph, r *models.ValidationReport) {
	type dangling struct {
		sources []string
		kinds   map[models.EdgeKind]bool
	}
	byTarget := map[string]*dangling{}
	for _, e := range g.Edges {
		if e.Source == e.Target {
			r.Add(models.ValidationIssue{
				Rule:      RuleSelfRedirect,
				Severity:  models.IssueWarning,
				IntentIDs: []string{e.Source},
				Message:   fmt.Sprintf("%s edge redirects the record to itself", e.Kind),
			})
			continue
		}
		if g.HasNode(e.Target) {
			continue
		}
		d := byTarget[e.Target]
		if d == nil {
			d = &dangling{kinds: map[models.EdgeKind]bool{}}
			byTarget[e.Target] = d
		}
		d.sources = append(d.sources, e.Source)
		d.kinds[e.Kind] = true
	}
	targets := make([]string, 0, len(byTarget))
	for t := range byTarget {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	for _, t := range targets {
		d := byTarget[t]
		sort.Strings(d.sources)
		d.sources = dedupSorted(d.sources)
		r.Add(models.ValidationIssue{
			Rule:      RuleBrokenRedirect,
			Severity:  models.IssueError,
			IntentIDs: d.sources,
			Message:   fmt.Sprintf("redirect target %q does not exist (%d referencing records)", t, len(d.sources)),
		})
	}
}

// checkSettings verifies intent_settings is a usable object when present
// and that boolean feature flags actually hold booleans.
func (v *Validator) checkSettings(intents []models.Intent, r *models.ValidationReport) {
	boolFlags := []string{"use_llm", "is_operator", "enabled"}
	for _, in := range intents {
		if IsAbsent(in.IntentSettings) {
			continue
		}
		settings := in.SettingsMap()
		if settings == nil {
			r.Add(models.ValidationIssue{
				Rule:      RuleInvalidSettings,
				Severity:  models.IssueWarning,
				IntentIDs: []string{in.IntentID},
				Message:   "intent_settings is present but not an object",
			})
			continue
		}
		for _, flag := range boolFlags {
			val, ok := settings[flag]
			if !ok {
				continue
			}
			if _, isBool := val.(bool); isBool {
				continue
			}
			r.Add(models.ValidationIssue{
				Rule:      RuleInvalidSettings,
				Severity:  models.IssueWarning,
				IntentIDs: []string{in.IntentID},
				Message:   fmt.Sprintf("setting %q expected boolean, got %T", flag, val),
			})
		}
	}
}

// hasAnswerContent reports whether any answer carries text, an article
// reference, an attachment or a redirect. A pure-redirect answer counts
// as content.
func hasAnswerContent(in *models.Intent) bool {
	for _, a := range in.Answers {
		if strings.TrimSpace(a.Answer) != "" || len(a.ArticleIDs) > 0 ||
			a.Attachment != "" || a.RedirectTo != "" || len(a.Buttons) > 0 {
			return true
		}
	}
	return in.RedirectTo != "" || in.FallbackIntent != ""
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dedupSorted(s []string) []string {
	out := s[:0]
	for i, v := range s {
		if i == 0 || s[i-1] != v {
			out = append(out, v)
		}
	}
	return out
}
