// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysisRunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_runs_completed_total",
			Help: "Total number of analysis runs completed",
		},
		[]string{"status"},
	)

	AnalysisPassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "analyzer_pass_duration_seconds",
			Help: "Duration of each analysis pass in seconds",
		},
		[]string{"pass"},
	)

	IntentsAnalyzed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analyzer_intents_total",
			Help: "Total number of intent records analyzed",
		},
	)

	ValidationIssuesFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_validation_issues_total",
			Help: "Total number of validation issues found by severity",
		},
		[]string{"rule", "severity"},
	)

	CyclesDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analyzer_cycles_detected_total",
			Help: "Total number of canonical cycles detected",
		},
	)
)
