// internal/analysis/quality/freshness.go
package quality

import (
	"time"

	"dialog-analyzer/internal/models"
)

// FreshnessScorer measures update activity relative to a reference time.
// Bands map the last-month update share to a category; the table maps
// band name to the minimum score entering that band.
type FreshnessScorer struct {
	reference time.Time
	bands     map[string]int
}

// NewFreshnessScorer creates a scorer. The reference time is the "now"
// of every recency computation so re-running over the same snapshot is
// reproducible.
func NewFreshnessScorer(reference time.Time, bands map[string]int) *FreshnessScorer {
	return &FreshnessScorer{reference: reference, bands: bands}
}

// Score derives each intent's last-update time from its version ticks
// and aggregates the recency distribution. Intents without usable
// version data are counted in SkippedInvalid.
func (s *FreshnessScorer) Score(intents []models.Intent) *models.FreshnessReport {
	report := &models.FreshnessReport{
		QualityScore: models.QualityScore{Metric: "data_freshness"},
	}

	var dates []time.Time
	byDay := map[string]int{}
	for idx := range intents {
		in := &intents[idx]
		if in.Version <= 0 {
			continue
		}
		dt, ok := in.UpdatedAt()
		if !ok {
			report.SkippedInvalid++
			continue
		}
		dates = append(dates, dt)
		byDay[dt.Format("2006-01-02")]++
	}

	if len(dates) == 0 {
		report.Category = "no_data"
		return report
	}
	report.HasVersionData = true
	report.TotalWithVersion = len(dates)

	oldest, newest := dates[0], dates[0]
	for _, dt := range dates[1:] {
		if dt.Before(oldest) {
			oldest = dt
		}
		if dt.After(newest) {
			newest = dt
		}
	}
	report.OldestUpdate = oldest
	report.NewestUpdate = newest
	report.DateRangeDays = int(newest.Sub(oldest).Hours() / 24)

	for _, dt := range dates {
		age := s.reference.Sub(dt)
		if age <= 24*time.Hour {
			report.UpdatedLastDay++
		}
		if age <= 7*24*time.Hour {
			report.UpdatedLastWeek++
		}
		if age <= 30*24*time.Hour {
			report.UpdatedLastMonth++
		}
	}

	ratio := float64(report.UpdatedLastMonth) / float64(report.TotalWithVersion)
	report.LastMonthPercentage = round1(ratio * 100)
	report.Score = int(ratio * 100)
	if report.Score > 100 {
		report.Score = 100
	}
	report.Category = s.band(report.Score)

	report.UpdatesByDay = byDay
	for day, count := range byDay {
		if count > report.PeakDayCount || (count == report.PeakDayCount && day < report.PeakDay) {
			report.PeakDay = day
			report.PeakDayCount = count
		}
	}
	return report
}

// band resolves the highest band whose minimum the score reaches.
// Bands are ordered by their configured minimums, so an overridden
// table changes the cutoffs without touching this code.
func (s *FreshnessScorer) band(score int) string {
	best, bestMin := "very_stale", -1
	for name, min := range s.bands {
		if score >= min && min > bestMin {
			best, bestMin = name, min
		}
	}
	return best
}
