// internal/analysis/quality/diversity.go
package quality

import (
	"strings"

	"dialog-analyzer/internal/models"
)

// entryKindMarkers maps each entry-point kind to the substrings that
// identify it. Checked in declaration order against the combined
// record_type, symbol_code and intent_id text; first hit wins.
var entryKindMarkers = []struct {
	kind    models.EntryPointKind
	markers []string
}{
	{models.EntryPointMain, []string{"cc_regexp_main", "main_intent", "entry_main"}},
	{models.EntryPointMatch, []string{"cc_match", "match_intent"}},
	{models.EntryPointMessenger, []string{"viber", "telegram", "whatsapp", "messenger"}},
	{models.EntryPointSystem, []string{"system_", "internal_"}},
	{models.EntryPointFallback, []string{"fallback", "error_", "catch_all"}},
}

// ClassifyEntryPoint determines the activation mechanism of an intent.
func ClassifyEntryPoint(in *models.Intent) models.EntryPointKind {
	combined := strings.ToLower(in.RecordType + " " + in.SymbolCode + " " + in.IntentID)
	for _, entry := range entryKindMarkers {
		for _, marker := range entry.markers {
			if strings.Contains(combined, marker) {
				return entry.kind
			}
		}
	}
	return models.EntryPointCustom
}

// DiversityScorer maps the count of distinct entry-point kinds to a
// fixed score table.
type DiversityScorer struct {
	table map[int]int // distinct-kind count -> score
}

// NewDiversityScorer creates a scorer with the given score table. The
// highest tabled count also covers every count above it.
func NewDiversityScorer(table map[int]int) *DiversityScorer {
	return &DiversityScorer{table: table}
}

// Score classifies the graph's entry points and scores their diversity.
// Intents not listed among the graph's entry points are ignored.
func (s *DiversityScorer) Score(intents []models.Intent, g *models.Graph) *models.DiversityReport {
	report := &models.DiversityReport{
		QualityScore: models.QualityScore{Metric: "entry_point_diversity"},
		Distribution: map[models.EntryPointKind]int{},
	}

	entrySet := map[string]bool{}
	for _, id := range g.EntryPoints {
		entrySet[id] = true
	}

	for idx := range intents {
		in := &intents[idx]
		if !entrySet[in.IntentID] {
			continue
		}
		kind := ClassifyEntryPoint(in)
		report.Distribution[kind]++
		report.EntryPoints = append(report.EntryPoints, models.EntryPoint{
			IntentID:   in.IntentID,
			Kind:       kind,
			RecordType: in.RecordType,
			Title:      truncateTitle(in.Title),
		})
	}

	report.TotalEntryPoints = len(report.EntryPoints)
	report.DistinctKinds = len(report.Distribution)
	report.HasMultipleChannels = report.DistinctKinds > 1
	report.Score = s.lookupScore(report.DistinctKinds)
	report.Category = scoreCategory(report.Score)
	return report
}

// lookupScore resolves a distinct-kind count against the table, falling
// back to the largest tabled count for anything beyond it.
func (s *DiversityScorer) lookupScore(distinct int) int {
	if distinct == 0 {
		return 0
	}
	if score, ok := s.table[distinct]; ok {
		return score
	}
	maxCount, maxScore := 0, 0
	for count, score := range s.table {
		if count > maxCount {
			maxCount, maxScore = count, score
		}
	}
	if distinct > maxCount {
		return maxScore
	}
	return 0
}

func truncateTitle(t string) string {
	runes := []rune(t)
	if len(runes) <= 50 {
		return t
	}
	return string(runes[:50])
}
