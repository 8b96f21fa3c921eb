package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Alias1177/Scorecard/internal/compare"
	"github.com/Alias1177/Scorecard/internal/database"
	"github.com/Alias1177/Scorecard/internal/loader"
	"github.com/Alias1177/Scorecard/internal/report"
	"github.com/Alias1177/Scorecard/internal/scorecard"
)

var (
	compareManifest string
	compareCSVOut   string
	compareSave     bool
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Score several named runs and print a comparison table",
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareManifest, "manifest", "", "YAML manifest naming the runs to compare")
	compareCmd.Flags().StringVar(&compareCSVOut, "csv", "", "also write the comparison to this CSV file")
	compareCmd.Flags().BoolVar(&compareSave, "save", false, "persist the results to postgres")
	_ = compareCmd.MarkFlagRequired("manifest")
}

func runCompare(cmd *cobra.Command, args []string) error {
	manifest, err := loader.LoadManifest(compareManifest)
	if err != nil {
		return err
	}

	runs := make(map[string]compare.Run, len(manifest.Runs))
	for _, mr := range manifest.Runs {
		pred, err := loader.LoadSeriesCSV(mr.Predictions)
		if err != nil {
			return fmt.Errorf("run %q: %w", mr.Name, err)
		}
		actual, err := loader.LoadSeriesCSV(mr.Outcomes)
		if err != nil {
			return fmt.Errorf("run %q: %w", mr.Name, err)
		}
		runs[mr.Name] = compare.Run{Pred: pred, Actual: actual}
	}

	calc := scorecard.NewCalculator()
	table, err := compare.Compare(cmd.Context(), calc, runs, cfg.Workers())
	if err != nil {
		return err
	}

	fmt.Print(report.FormatComparison(table))

	if compareCSVOut != "" {
		if err := writeCSVFile(compareCSVOut, func(f *os.File) error {
			return report.WriteComparisonCSV(f, table)
		}); err != nil {
			return err
		}
	}

	if compareSave || cfg.SaveResults {
		return withDB(cmd, func(db *database.DB) error {
			return db.SaveComparison(cmd.Context(), table)
		})
	}
	return nil
}
