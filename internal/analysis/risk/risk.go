// internal/analysis/risk/risk.go
// Package risk folds validation and graph findings into per-intent risk
// profiles and a single 0-100 run score.
package risk

import (
	"fmt"
	"sort"
	"strings"

	"dialog-analyzer/internal/analysis/quality"
	"dialog-analyzer/internal/analysis/validator"
	"dialog-analyzer/internal/common/logger"
	"dialog-analyzer/internal/models"
)

// kindSeverity maps each risk kind to its fixed severity. The highest
// severity across an intent's risks becomes the intent's severity.
var kindSeverity = map[models.RiskKind]models.Severity{
	models.RiskDuplicateID:      models.SeverityCritical,
	models.RiskBrokenRedirect:   models.SeverityCritical,
	models.RiskEmptyAnswers:     models.SeverityCritical,
	models.RiskCircularRedirect: models.SeverityHigh,
	models.RiskNaNValue:         models.SeverityHigh,
	models.RiskMissingType:      models.SeverityHigh,
	models.RiskEmptyInputs:      models.SeverityMedium,
	models.RiskDeadEnd:          models.SeverityMedium,
	models.RiskDuplicateTitle:   models.SeverityLow,
	models.RiskComplexPattern:   models.SeverityLow,
	models.RiskIsolatedSubgraph: models.SeverityInfo,
}

// KindSeverity returns the fixed severity of a risk kind.
func KindSeverity(kind models.RiskKind) models.Severity {
	if sev, ok := kindSeverity[kind]; ok {
		return sev
	}
	return models.SeverityInfo
}

// Inputs collects everything the aggregation reads. Validation is
// required; the rest are optional and skipped when nil.
type Inputs struct {
	Intents    []models.Intent
	Validation *models.ValidationReport
	Graph      *models.Graph
	Cycles     *models.CycleReport
	Structure  *models.StructureReport
	Complexity *models.ComplexityReport
}

// Aggregator computes the risk report. Weights map severity names to
// the per-intent deduction applied to the run score.
type Aggregator struct {
	weights map[string]int
	logger  logger.Logger
}

func New(weights map[string]int, log logger.Logger) *Aggregator {
	return &Aggregator{weights: weights, logger: log}
}

// Aggregate builds the per-intent risk map and the run summary.
func (a *Aggregator) Aggregate(in Inputs) *models.RiskReport {
	profiles := map[string]*models.IntentRisk{}
	for idx := range in.Intents {
		id := in.Intents[idx].IntentID
		profiles[id] = &models.IntentRisk{IntentID: id, Severity: models.SeverityInfo}
	}

	add := func(intentID string, kind models.RiskKind, description string) {
		p, ok := profiles[intentID]
		if !ok {
			return
		}
		p.Risks = append(p.Risks, models.RiskItem{Kind: kind, Description: description})
		if sev := KindSeverity(kind); models.MoreSevere(sev, p.Severity) {
			p.Severity = sev
		}
	}

	if in.Validation != nil {
		a.foldValidation(in.Validation, add)
	}
	if in.Cycles != nil {
		for _, cycle := range in.Cycles.Cycles {
			desc := fmt.Sprintf("part of circular redirect: %s", strings.Join(cycle.Nodes, " -> "))
			for _, id := range cycle.Nodes {
				add(id, models.RiskCircularRedirect, desc)
			}
		}
		for _, loop := range in.Cycles.SelfLoops {
			if loop.Len() > 0 {
				add(loop.Nodes[0], models.RiskCircularRedirect, "redirects to itself")
			}
		}
	}
	if in.Graph != nil {
		for _, id := range in.Graph.DeadEnds {
			add(id, models.RiskDeadEnd, "no outgoing transitions, dialog ends here")
		}
	}
	if in.Structure != nil {
		for _, component := range in.Structure.IsolatedSubgraphs {
			desc := fmt.Sprintf("part of isolated subgraph (%d nodes)", len(component))
			for _, id := range component {
				add(id, models.RiskIsolatedSubgraph, desc)
			}
		}
	}
	if in.Complexity != nil {
		for _, p := range in.Complexity.TopPatterns {
			if quality.PatternRiskSeverity(p.Bucket) == models.SeverityInfo {
				continue
			}
			add(p.IntentID, models.RiskComplexPattern,
				fmt.Sprintf("trigger pattern scored %d (%s)", p.Score, p.Bucket))
		}
	}

	return a.summarize(profiles)
}

// foldValidation translates validation issues into risk items on their
// referenced intents.
func (a *Aggregator) foldValidation(v *models.ValidationReport, add func(string, models.RiskKind, string)) {
	for _, issue := range v.Issues {
		kind, ok := issueRiskKind(issue)
		if !ok {
			continue
		}
		for _, id := range issue.IntentIDs {
			add(id, kind, issue.Message)
		}
	}
}

// issueRiskKind maps a validation rule to a risk kind. Self-redirects
// already surface as cycles, so they carry no extra risk here.
func issueRiskKind(issue models.ValidationIssue) (models.RiskKind, bool) {
	switch issue.Rule {
	case validator.RuleDuplicateIntentID:
		return models.RiskDuplicateID, true
	case validator.RuleDuplicateTitle:
		return models.RiskDuplicateTitle, true
	case validator.RuleNaNField:
		if strings.Contains(issue.Message, "record_type") {
			return models.RiskMissingType, true
		}
		return models.RiskNaNValue, true
	case validator.RuleEmptyAnswers:
		return models.RiskEmptyAnswers, true
	case validator.RuleEmptyInputs:
		return models.RiskEmptyInputs, true
	case validator.RuleBrokenRedirect:
		return models.RiskBrokenRedirect, true
	default:
		return "", false
	}
}

func (a *Aggregator) summarize(profiles map[string]*models.IntentRisk) *models.RiskReport {
	report := &models.RiskReport{
		SeverityDistribution: map[models.Severity]int{},
		KindDistribution:     map[models.RiskKind]int{},
		Intents:              map[string]models.IntentRisk{},
	}

	for id, p := range profiles {
		report.SeverityDistribution[p.Severity]++
		for _, r := range p.Risks {
			report.KindDistribution[r.Kind]++
		}
		switch p.Severity {
		case models.SeverityCritical:
			report.CriticalIntents = append(report.CriticalIntents, id)
		case models.SeverityHigh:
			report.HighRiskIntents = append(report.HighRiskIntents, id)
		}
		report.Intents[id] = *p
	}
	sort.Strings(report.CriticalIntents)
	sort.Strings(report.HighRiskIntents)

	report.RiskScore = a.score(report.SeverityDistribution, len(profiles))
	a.logger.Info("risk aggregation completed", map[string]interface{}{
		"total_intents": len(profiles),
		"risk_score":    report.RiskScore,
		"critical":      len(report.CriticalIntents),
		"high":          len(report.HighRiskIntents),
	})
	return report
}

// score deducts each intent's severity weight, normalized per hundred
// intents. An empty set scores a clean 100.
func (a *Aggregator) score(distribution map[models.Severity]int, total int) int {
	if total == 0 {
		return 100
	}
	deduction := 0
	for sev, count := range distribution {
		deduction += count * a.weights[string(sev)]
	}
	score := 100 - deduction*100/total
	if score < 0 {
		return 0
	}
	return score
}
