// internal/analysis/quality/complexity.go
// Package quality holds the three independent data-quality scorers.
// Each scorer is stateless, reads the shared analysis inputs and emits
// a 0-100 score with its supporting distribution.
package quality

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"dialog-analyzer/internal/common/config"
	"dialog-analyzer/internal/models"
)

var (
	flagSuffixRe = regexp.MustCompile(`/[gimsuyx]*$`)
	lookaheadRe  = regexp.MustCompile(`\(\?[=!]`)
	lookbehindRe = regexp.MustCompile(`\(\?<[=!]`)
)

// ComplexityScorer buckets every trigger pattern by length and
// alternative count and surfaces the worst offenders.
type ComplexityScorer struct {
	thresholds config.ComplexityThresholds
}

// NewComplexityScorer creates a scorer with the given threshold table.
func NewComplexityScorer(t config.ComplexityThresholds) *ComplexityScorer {
	return &ComplexityScorer{thresholds: t}
}

// AnalyzePattern scores a single trigger pattern. Empty patterns come
// back simple with score zero.
func (s *ComplexityScorer) AnalyzePattern(intentID, pattern string) models.PatternAnalysis {
	if pattern == "" {
		return models.PatternAnalysis{IntentID: intentID, Bucket: models.ComplexitySimple}
	}

	// Trailing regex flags and slash delimiters are not part of the
	// pattern body.
	clean := strings.Trim(flagSuffixRe.ReplaceAllString(pattern, ""), "/")
	length := len([]rune(clean))
	alternatives := strings.Count(clean, "|") + 1

	var issues []string
	if n := len(lookaheadRe.FindAllString(clean, -1)); n > 0 {
		issues = append(issues, fmt.Sprintf("contains %d lookahead(s)", n))
	}
	if n := len(lookbehindRe.FindAllString(clean, -1)); n > 0 {
		issues = append(issues, fmt.Sprintf("contains %d lookbehind(s)", n))
	}
	if n := strings.Count(clean, "(("); n > s.thresholds.MaxGroupNestingDepth {
		issues = append(issues, fmt.Sprintf("deep nesting (%d levels)", n))
	}
	if n := strings.Count(clean, "["); n > s.thresholds.MaxCharacterClasses {
		issues = append(issues, fmt.Sprintf("many character classes (%d)", n))
	}
	if alternatives > s.thresholds.ComplexMaxAlts {
		issues = append(issues, fmt.Sprintf("too many alternatives (%d)", alternatives))
	}

	return models.PatternAnalysis{
		IntentID:     intentID,
		Pattern:      truncatePattern(pattern),
		Length:       length,
		Alternatives: alternatives,
		Bucket:       s.bucket(length, alternatives),
		Issues:       issues,
		Score:        length + alternatives*10 + len(issues)*20,
	}
}

// bucket is monotonic in both dimensions: growing either length or
// alternative count never lowers the bucket.
func (s *ComplexityScorer) bucket(length, alternatives int) models.ComplexityBucket {
	t := s.thresholds
	switch {
	case length > t.ComplexMaxLength || alternatives > t.ComplexMaxAlts:
		return models.ComplexityVeryComplex
	case length > t.ModerateMaxLength || alternatives > t.ModerateMaxAlts:
		return models.ComplexityComplex
	case length > t.SimpleMaxLength || alternatives > t.SimpleMaxAlts:
		return models.ComplexityModerate
	default:
		return models.ComplexitySimple
	}
}

// Score analyzes every trigger pattern in the record set.
func (s *ComplexityScorer) Score(intents []models.Intent) *models.ComplexityReport {
	report := &models.ComplexityReport{
		QualityScore: models.QualityScore{Metric: "pattern_complexity"},
		Distribution: map[models.ComplexityBucket]int{},
	}

	var complexPatterns []models.PatternAnalysis
	for idx := range intents {
		in := &intents[idx]
		for _, pattern := range in.TriggerPatterns() {
			report.TotalPatterns++
			analysis := s.AnalyzePattern(in.IntentID, pattern)
			report.Distribution[analysis.Bucket]++
			if analysis.Bucket == models.ComplexityComplex || analysis.Bucket == models.ComplexityVeryComplex {
				complexPatterns = append(complexPatterns, analysis)
			}
		}
	}

	sort.SliceStable(complexPatterns, func(i, j int) bool {
		return complexPatterns[i].Score > complexPatterns[j].Score
	})
	report.ComplexCount = len(complexPatterns)
	if report.TotalPatterns > 0 {
		report.ComplexPercentage = round1(float64(report.ComplexCount) / float64(report.TotalPatterns) * 100)
	}
	if top := s.thresholds.TopPatterns; len(complexPatterns) > top {
		complexPatterns = complexPatterns[:top]
	}
	report.TopPatterns = complexPatterns

	report.Score = 100 - int(report.ComplexPercentage)
	if report.Score < 0 {
		report.Score = 0
	}
	report.Category = scoreCategory(report.Score)
	return report
}

// PatternRiskSeverity maps a complexity bucket to a risk severity.
func PatternRiskSeverity(b models.ComplexityBucket) models.Severity {
	switch b {
	case models.ComplexityVeryComplex:
		return models.SeverityHigh
	case models.ComplexityComplex:
		return models.SeverityMedium
	case models.ComplexityModerate:
		return models.SeverityLow
	default:
		return models.SeverityInfo
	}
}

func truncatePattern(p string) string {
	runes := []rune(p)
	if len(runes) <= 100 {
		return p
	}
	return string(runes[:100]) + "..."
}

// scoreCategory labels a 0-100 quality score. Shared by the complexity
// and diversity scorers; freshness keeps its own band names.
func scoreCategory(score int) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 60:
		return "good"
	case score >= 40:
		return "fair"
	case score >= 20:
		return "poor"
	default:
		return "critical"
	}
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}
