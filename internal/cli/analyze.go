// internal/cli/analyze.go
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dialog-analyzer/internal/analysis/engine"
	"dialog-analyzer/internal/common/database"
	apperrors "dialog-analyzer/internal/common/errors"
	"dialog-analyzer/internal/common/metrics"
	"dialog-analyzer/internal/common/observability"
	"dialog-analyzer/internal/loader"
	"dialog-analyzer/internal/models"
	"dialog-analyzer/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full analysis over an intent snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath, _ := cmd.Flags().GetString("input")
		outputDir, _ := cmd.Flags().GetString("output")
		refTime, _ := cmd.Flags().GetString("reference-time")
		formats, _ := cmd.Flags().GetString("format")
		noCache, _ := cmd.Flags().GetBool("no-cache")
		if inputPath == "" {
			inputPath = cfg.Input.Path
		}
		if outputDir == "" {
			outputDir = cfg.Output.Dir
		}
		exportJSON, exportCSV := cfg.Output.ExportJSON, cfg.Output.ExportCSV
		if formats != "" {
			exportJSON, exportCSV = false, false
			for _, f := range strings.Split(formats, ",") {
				switch strings.TrimSpace(f) {
				case "json":
					exportJSON = true
				case "csv":
					exportCSV = true
				default:
					return fmt.Errorf("unknown report format %q", f)
				}
			}
		}

		ctx := context.Background()
		obs := observability.New(cfg.App.Name)
		defer obs.Shutdown()

		analysisCfg := cfg.Analysis
		if refTime != "" {
			analysisCfg.ReferenceTime = refTime
		}
		eng, err := engine.New(analysisCfg, obs, log)
		if err != nil {
			return err
		}

		ld, err := loader.New(loader.Config{
			MaxRecords:    cfg.Input.MaxRecords,
			FilterExpired: cfg.Analysis.FilterExpired,
		}, log)
		if err != nil {
			return err
		}
		intents, stats, err := ld.Load(inputPath, eng.ReferenceTime())
		if err != nil {
			return err
		}
		if len(intents) == 0 {
			return apperrors.NewNoRecordsLoadedError(inputPath)
		}

		var cache *report.ResultCache
		fingerprint := report.Fingerprint(intents)
		if cfg.Sinks.Redis.Enabled {
			rc, err := database.NewRedis(cfg.Sinks.Redis)
			if err != nil {
				return err
			}
			defer rc.Close()
			cache = report.NewResultCache(rc, time.Duration(cfg.Sinks.Redis.TTLHours)*time.Hour, log)
		}

		var result *models.Result
		if cache != nil && !noCache {
			cached, hit, err := cache.Get(ctx, fingerprint)
			if err != nil {
				log.Warn("result cache unavailable", map[string]interface{}{"error": err.Error()})
			} else if hit {
				log.Info("reusing cached result", map[string]interface{}{"run_id": cached.RunID})
				result = cached
			}
		}
		if result == nil {
			result, err = eng.Analyze(ctx, engine.Input{
				Intents:         intents,
				ExpiredFiltered: stats.ExpiredFiltered,
			})
			if err != nil {
				metrics.AnalysisRunsCompleted.WithLabelValues("error").Inc()
				return err
			}
			if cache != nil {
				if err := cache.Put(ctx, fingerprint, result); err != nil {
					log.Warn("caching result failed", map[string]interface{}{"error": err.Error()})
				}
			}
		}

		if err := writeReports(result, outputDir, exportJSON, exportCSV); err != nil {
			return err
		}
		if err := persistResult(ctx, result); err != nil {
			return err
		}

		printSummary(result, stats)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringP("input", "i", "", "input snapshot path (overrides config)")
	analyzeCmd.Flags().StringP("output", "o", "", "report output directory (overrides config)")
	analyzeCmd.Flags().String("reference-time", "", "RFC3339 reference time for expiry and freshness (overrides config)")
	analyzeCmd.Flags().String("format", "", "report formats to write, comma separated: json,csv (overrides config)")
	analyzeCmd.Flags().Bool("no-cache", false, "ignore the result cache even when enabled")
}

func writeReports(result *models.Result, outputDir string, exportJSON, exportCSV bool) error {
	if exportJSON {
		path, err := report.NewJSONWriter(outputDir, log).Write(result)
		if err != nil {
			return err
		}
		fmt.Printf("JSON report: %s\n", path)
	}
	if exportCSV {
		paths, err := report.NewCSVWriter(outputDir, log).Write(result)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Printf("CSV report:  %s\n", p)
		}
	}
	return nil
}

func persistResult(ctx context.Context, result *models.Result) error {
	if cfg.Sinks.Postgres.Enabled {
		pg, err := database.NewPostgres(cfg.Sinks.Postgres)
		if err != nil {
			return apperrors.NewStoreConnectionFailedError(err)
		}
		defer pg.Close()

		store := report.NewRunStore(pg, log)
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := store.Save(ctx, result); err != nil {
			return err
		}
	}
	if cfg.Sinks.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(cfg.Sinks.Elasticsearch)
		if err != nil {
			return apperrors.NewStoreConnectionFailedError(err)
		}
		indexer := report.NewIssueIndexer(es, cfg.Sinks.Elasticsearch.Index, log)
		if err := indexer.IndexIssues(ctx, result); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(result *models.Result, stats *loader.Stats) {
	fmt.Printf("\nRun %s\n", result.RunID)
	fmt.Printf("  Intents analyzed:   %d (loaded %d, expired filtered %d)\n",
		result.Statistics.TotalIntents, stats.Loaded, stats.ExpiredFiltered)
	fmt.Printf("  Transitions:        %d\n", result.Statistics.TotalTransitions)
	fmt.Printf("  Cycles:             %d (self-loops %d)\n",
		len(result.Cycles.Cycles), len(result.Cycles.SelfLoops))
	fmt.Printf("  Validation:         %d errors, %d warnings\n",
		result.Validation.ErrorCount, result.Validation.WarningCount)
	if result.Risk != nil {
		fmt.Printf("  Risk score:         %d/100\n", result.Risk.RiskScore)
	}
	for _, score := range []*models.QualityScore{
		qualityScore(result.Complexity != nil, func() models.QualityScore { return result.Complexity.QualityScore }),
		qualityScore(result.Diversity != nil, func() models.QualityScore { return result.Diversity.QualityScore }),
		qualityScore(result.Freshness != nil, func() models.QualityScore { return result.Freshness.QualityScore }),
	} {
		if score != nil {
			fmt.Printf("  %-19s %d/100 (%s)\n", score.Metric+":", score.Score, score.Category)
		}
	}
}

func qualityScore(present bool, get func() models.QualityScore) *models.QualityScore {
	if !present {
		return nil
	}
	score := get()
	return &score
}
