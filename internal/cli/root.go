// internal/cli/root.go
// Package cli wires the analyzer commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dialog-analyzer/internal/common/config"
	"dialog-analyzer/internal/common/logger"
)

var (
	cfg        *config.Config
	log        logger.Logger
	configPath string

	rootCmd = &cobra.Command{
		Use:   "dialog-analyzer",
		Short: "Multi-pass analysis of chatbot intent record sets",
		Long: `dialog-analyzer ingests a chatbot intent snapshot (JSON or JSONL) and
produces a structured analysis: category classification, an entity
index, the transition graph with cycle detection, a validation report
and data-quality scores.`,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(validateCmd)
}

func initConfig() {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log = logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
}
