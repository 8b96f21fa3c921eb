package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/Scorecard/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "scorecard",
	Short: "Evaluation scorecards for financial prediction models",
	Long: "Computes directional accuracy, edge, noise and calibration metrics " +
		"for aligned prediction/outcome series, whole-set, per group, and " +
		"across named runs.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		setupLogger(cfg.LogLevel)
		return nil
	},
}

func setupLogger(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

func main() {
	rootCmd.AddCommand(scoreCmd, compareCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
