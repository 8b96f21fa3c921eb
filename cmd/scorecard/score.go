package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/Scorecard/internal/database"
	"github.com/Alias1177/Scorecard/internal/grouping"
	"github.com/Alias1177/Scorecard/internal/loader"
	"github.com/Alias1177/Scorecard/internal/record"
	"github.com/Alias1177/Scorecard/internal/report"
	"github.com/Alias1177/Scorecard/internal/scorecard"
)

var (
	scorePredFile   string
	scoreActualFile string
	scoreRunName    string
	scoreGroupBy    string
	scoreCSVOut     string
	scoreSave       bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one prediction run against its outcomes",
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scorePredFile, "pred", "", "prediction series CSV (time[,entity],value)")
	scoreCmd.Flags().StringVar(&scoreActualFile, "actual", "", "outcome series CSV (time[,entity],value)")
	scoreCmd.Flags().StringVar(&scoreRunName, "name", "default", "run name for reports and persistence")
	scoreCmd.Flags().StringVar(&scoreGroupBy, "group-by", "", "group scorecards by year, month or entity")
	scoreCmd.Flags().StringVar(&scoreCSVOut, "csv", "", "also write the result to this CSV file")
	scoreCmd.Flags().BoolVar(&scoreSave, "save", false, "persist the result to postgres")
	_ = scoreCmd.MarkFlagRequired("pred")
	_ = scoreCmd.MarkFlagRequired("actual")
}

func runScore(cmd *cobra.Command, args []string) error {
	pred, err := loader.LoadSeriesCSV(scorePredFile)
	if err != nil {
		return err
	}
	actual, err := loader.LoadSeriesCSV(scoreActualFile)
	if err != nil {
		return err
	}

	records, diag, err := record.Build(pred, actual)
	if err != nil {
		return err
	}
	log.Info().
		Int("records", len(records)).
		Int("dropped_pred_only", diag.DroppedPredOnly).
		Int("dropped_true_only", diag.DroppedTrueOnly).
		Int("dropped_missing", diag.DroppedMissing).
		Msg("record set built")

	calc := scorecard.NewCalculator()
	groupBy := scoreGroupBy
	if groupBy == "" {
		groupBy = cfg.GroupBy
	}

	if groupBy == "" {
		sc := calc.Calculate(records)
		fmt.Print(report.FormatScorecard(scoreRunName, sc))
		if scoreCSVOut != "" {
			if err := writeCSVFile(scoreCSVOut, func(f *os.File) error {
				return report.WriteScorecardCSV(f, sc)
			}); err != nil {
				return err
			}
		}
		if shouldSave() {
			return withDB(cmd, func(db *database.DB) error {
				return db.SaveScorecard(cmd.Context(), scoreRunName, "", sc)
			})
		}
		return nil
	}

	keyFn, err := groupKeyFunc(groupBy)
	if err != nil {
		return err
	}
	grouped, err := grouping.AggregateParallel(cmd.Context(), calc, records, keyFn, cfg.Workers())
	if err != nil {
		return err
	}
	fmt.Print(report.FormatGrouped(fmt.Sprintf("%s BY %s", scoreRunName, groupBy), grouped))
	if scoreCSVOut != "" {
		if err := writeCSVFile(scoreCSVOut, func(f *os.File) error {
			return report.WriteGroupedCSV(f, grouped)
		}); err != nil {
			return err
		}
	}
	if shouldSave() {
		return withDB(cmd, func(db *database.DB) error {
			return db.SaveGrouped(cmd.Context(), scoreRunName, grouped)
		})
	}
	return nil
}

func groupKeyFunc(groupBy string) (grouping.KeyFunc[string], error) {
	switch groupBy {
	case "year":
		return grouping.ByYear, nil
	case "month":
		return grouping.ByMonth, nil
	case "entity":
		return grouping.ByEntity, nil
	default:
		return nil, fmt.Errorf("unknown group key %q: want year, month or entity", groupBy)
	}
}

func shouldSave() bool {
	return scoreSave || cfg.SaveResults
}

func writeCSVFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("CSV written")
	return nil
}

func withDB(cmd *cobra.Command, save func(*database.DB) error) error {
	db, err := database.New(database.ConnectionParams{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	if err := save(db); err != nil {
		return err
	}
	log.Info().Msg("results saved to database")
	return nil
}
