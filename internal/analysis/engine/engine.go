// internal/analysis/engine/engine.go
// Package engine sequences the analysis passes over a loaded record set
// and assembles the combined run result.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dialog-analyzer/internal/analysis/classifier"
	"dialog-analyzer/internal/analysis/entity"
	"dialog-analyzer/internal/analysis/graph"
	"dialog-analyzer/internal/analysis/quality"
	"dialog-analyzer/internal/analysis/risk"
	"dialog-analyzer/internal/analysis/validator"
	"dialog-analyzer/internal/common/config"
	apperrors "dialog-analyzer/internal/common/errors"
	"dialog-analyzer/internal/common/logger"
	"dialog-analyzer/internal/common/metrics"
	"dialog-analyzer/internal/common/observability"
	"dialog-analyzer/internal/models"
)

// RuleCycleSearchTruncated is the warning recorded when the cycle
// search hit its depth bound and the cycle list may be partial.
const RuleCycleSearchTruncated = "cycle_search_truncated"

// Input is one analysis request.
type Input struct {
	Intents []models.Intent
	// ExpiredFiltered is the count of records the loader dropped as
	// expired, carried through into the run statistics.
	ExpiredFiltered int
}

// Engine runs the full pass sequence. Construct with New; the zero
// value is not usable.
type Engine struct {
	cfg        config.AnalysisConfig
	reference  time.Time
	classifier *classifier.Classifier
	extractor  *entity.Extractor
	builder    *graph.Builder
	detector   *graph.Detector
	validator  *validator.Validator
	obs        *observability.Observability
	logger     logger.Logger
}

// New wires the passes from configuration. It fails fast when expiry
// filtering or the freshness scorer is enabled without a parseable
// reference time; every recency computation depends on it.
func New(cfg config.AnalysisConfig, obs *observability.Observability, log logger.Logger) (*Engine, error) {
	reference, err := resolveReference(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       cfg,
		reference: reference,
		classifier: classifier.New(classifier.Config{
			ReferenceTime:    reference,
			ClassifySubtypes: cfg.ClassifySubtypes,
		}, log),
		extractor: entity.New(log),
		builder:   graph.NewBuilder(log),
		detector:  graph.NewDetector(cfg.MaxCycleDepth, log),
		validator: validator.New(cfg.Checks, log),
		obs:       obs,
		logger:    log,
	}, nil
}

func resolveReference(cfg config.AnalysisConfig) (time.Time, error) {
	required := cfg.FilterExpired || cfg.Scorers.Freshness
	if cfg.ReferenceTime == "" {
		if required {
			return time.Time{}, apperrors.NewReferenceTimeMissingError(
				"expiry filtering or freshness scoring is enabled but analysis.reference_time is not set")
		}
		return time.Now().UTC(), nil
	}
	reference, err := time.Parse(time.RFC3339, cfg.ReferenceTime)
	if err != nil {
		return time.Time{}, apperrors.NewReferenceTimeMissingError(
			"analysis.reference_time is not valid RFC3339: " + err.Error())
	}
	return reference, nil
}

// ReferenceTime is the resolved "now" of this engine.
func (e *Engine) ReferenceTime() time.Time {
	return e.reference
}

// Analyze runs every pass over the input and assembles the result.
// Structural defects in the records never fail the run; they surface
// through the validation report and the risk score.
func (e *Engine) Analyze(ctx context.Context, in Input) (*models.Result, error) {
	started := time.Now()
	result := &models.Result{
		RunID:         uuid.NewString(),
		GeneratedAt:   started.UTC(),
		ReferenceTime: e.reference,
	}
	e.logger.Info("analysis run started", map[string]interface{}{
		"run_id":  result.RunID,
		"intents": len(in.Intents),
	})

	e.pass(ctx, "classify", func() {
		result.Classifications = e.classifier.ClassifyAll(in.Intents)
	})
	e.pass(ctx, "entities", func() {
		result.Entities = e.extractor.ExtractAll(in.Intents)
	})
	e.pass(ctx, "graph", func() {
		result.Graph = e.builder.Build(in.Intents)
	})
	e.pass(ctx, "cycles", func() {
		result.Cycles = e.detector.Find(result.Graph)
	})
	e.pass(ctx, "structure", func() {
		result.Structure = graph.AnalyzeStructure(result.Graph)
	})
	e.pass(ctx, "validate", func() {
		result.Validation = e.validator.Validate(in.Intents, result.Graph)
		if result.Cycles.Truncated {
			result.Validation.Add(models.ValidationIssue{
				Rule:     RuleCycleSearchTruncated,
				Severity: models.IssueWarning,
				Message:  "cycle search hit the depth bound, cycle list may be partial",
			})
		}
	})

	if e.cfg.Scorers.Complexity {
		e.pass(ctx, "complexity", func() {
			result.Complexity = quality.NewComplexityScorer(e.cfg.Thresholds.Complexity).Score(in.Intents)
		})
	}
	if e.cfg.Scorers.Diversity {
		e.pass(ctx, "diversity", func() {
			table := config.DiversityTable(e.cfg.Thresholds.Diversity)
			result.Diversity = quality.NewDiversityScorer(table).Score(in.Intents, result.Graph)
		})
	}
	if e.cfg.Scorers.Freshness {
		e.pass(ctx, "freshness", func() {
			result.Freshness = quality.NewFreshnessScorer(e.reference, e.cfg.Thresholds.Freshness).Score(in.Intents)
		})
	}

	e.pass(ctx, "risk", func() {
		result.Risk = risk.New(e.cfg.Thresholds.RiskWeights, e.logger).Aggregate(risk.Inputs{
			Intents:    in.Intents,
			Validation: result.Validation,
			Graph:      result.Graph,
			Cycles:     result.Cycles,
			Structure:  result.Structure,
			Complexity: result.Complexity,
		})
	})
	e.pass(ctx, "statistics", func() {
		result.Statistics = buildStatistics(in, result)
	})

	metrics.IntentsAnalyzed.Add(float64(len(in.Intents)))
	metrics.CyclesDetected.Add(float64(len(result.Cycles.Cycles)))
	metrics.AnalysisRunsCompleted.WithLabelValues("success").Inc()
	e.logger.Info("analysis run completed", map[string]interface{}{
		"run_id":   result.RunID,
		"duration": time.Since(started).String(),
		"issues":   len(result.Validation.Issues),
		"cycles":   len(result.Cycles.Cycles),
	})
	return result, nil
}

// pass times one pass and records it in both metric pipelines.
func (e *Engine) pass(ctx context.Context, name string, fn func()) {
	started := time.Now()
	fn()
	elapsed := time.Since(started)
	metrics.AnalysisPassDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if e.obs != nil {
		e.obs.RecordPass(ctx, name)
		e.obs.RecordPassDuration(ctx, elapsed, name)
	}
	e.logger.Debug("pass completed", map[string]interface{}{
		"pass":     name,
		"duration": elapsed.String(),
	})
}

func buildStatistics(in Input, result *models.Result) *models.Statistics {
	stats := &models.Statistics{
		TotalIntents:        len(in.Intents),
		TotalTransitions:    len(result.Graph.Edges),
		ExpiredFiltered:     in.ExpiredFiltered,
		TypeDistribution:    map[models.Category]int{},
		SubtypeDistribution: map[models.Subtype]int{},
		EntityDistribution:  map[models.EntityKind]int{},
	}
	for idx := range in.Intents {
		if len(in.Intents[idx].Slots) > 0 || len(in.Intents[idx].SlotFillers) > 0 {
			stats.IntentsWithSlots++
		}
	}
	for _, c := range result.Classifications {
		stats.TypeDistribution[c.Category]++
		if c.Subtype != "" {
			stats.SubtypeDistribution[c.Subtype]++
		}
	}
	for _, ent := range result.Entities {
		stats.EntityDistribution[ent.Kind]++
	}
	return stats
}
