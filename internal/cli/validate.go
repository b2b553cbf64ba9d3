// internal/cli/validate.go
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dialog-analyzer/internal/analysis/engine"
	"dialog-analyzer/internal/analysis/graph"
	"dialog-analyzer/internal/analysis/validator"
	apperrors "dialog-analyzer/internal/common/errors"
	"dialog-analyzer/internal/loader"
)

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Run only the structural validation checks",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath := cfg.Input.Path
		if len(args) == 1 {
			inputPath = args[0]
		}

		eng, err := engine.New(cfg.Analysis, nil, log)
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
		intents, _, err := ld.Load(inputPath, eng.ReferenceTime())
		if err != nil {
			return err
		}
		if len(intents) == 0 {
			return apperrors.NewNoRecordsLoadedError(inputPath)
		}

		g := graph.NewBuilder(log).Build(intents)
		result := validator.New(cfg.Analysis.Checks, log).Validate(intents, g)

		for _, issue := range result.Issues {
			ids := ""
			if len(issue.IntentIDs) > 0 {
				ids = " [" + strings.Join(issue.IntentIDs, ", ") + "]"
			}
			fmt.Printf("%-7s %s%s: %s\n", strings.ToUpper(string(issue.Severity)), issue.Rule, ids, issue.Message)
		}
		fmt.Printf("\n%d records checked: %d errors, %d warnings\n",
			len(intents), result.ErrorCount, result.WarningCount)

		if !result.IsValid {
			os.Exit(1)
		}
		return nil
	},
}
