package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/nba-points/internal/config"
	"github.com/pable/nba-points/internal/predictor"
	"github.com/pable/nba-points/internal/report"
)

var (
	trainPhase       string
	trainMinMinutes  float64
	trainOutlierFrac float64
	trainFrac        float64
	trainSeed        int64
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the points model on a stored feature table",
	Long: `Drops games under the minutes threshold and scoring outliers, splits the
rest 80/20 with a fixed seed, fits a linear model on standardised features and
stores it alongside the held-out error.

Example:
  nbapts train --phase "Regular Season"`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	def := predictor.DefaultOptions()
	trainCmd.Flags().StringVar(&trainPhase, "phase", "all", `competition phase: "Regular Season", "Playoffs" or "all"`)
	trainCmd.Flags().Float64Var(&trainMinMinutes, "min-minutes", -1, "drop games with this many minutes or fewer (default NBAPTS_MIN_MINUTES)")
	trainCmd.Flags().Float64Var(&trainOutlierFrac, "outlier-frac", def.OutlierFrac, "scoring outlier tolerance (0 disables)")
	trainCmd.Flags().Float64Var(&trainFrac, "train-frac", def.TrainFrac, "share of rows used for fitting")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", def.Seed, "shuffle seed for the train/test split")
}

func runTrain(_ *cobra.Command, _ []string) error {
	phases, err := config.Phases(trainPhase)
	if err != nil {
		return err
	}
	if trainFrac <= 0 || trainFrac >= 1 {
		return fmt.Errorf("--train-frac must be between 0 and 1, got %v", trainFrac)
	}
	opts := predictor.Options{
		MinMinutes:  cfg.MinMinutes,
		OutlierFrac: trainOutlierFrac,
		TrainFrac:   trainFrac,
		Seed:        trainSeed,
	}
	if trainMinMinutes >= 0 {
		opts.MinMinutes = trainMinMinutes
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	for _, phase := range phases {
		table, err := db.GetFeatureTable(phase)
		if err != nil {
			return fmt.Errorf("load %s table: %w", phase, err)
		}
		if table == nil {
			log.Warnw("no feature table, run build first", "phase", string(phase))
			continue
		}

		m, metrics, err := predictor.Train(table, opts, log)
		if err != nil {
			return fmt.Errorf("train %s: %w", phase, err)
		}
		body, err := m.Marshal()
		if err != nil {
			return fmt.Errorf("encode model: %w", err)
		}
		if err := db.SaveModel(m.Summary(), body); err != nil {
			return fmt.Errorf("save %s model: %w", phase, err)
		}

		report.PrintMetrics(os.Stdout, phase, metrics)
		report.PrintCoefficients(os.Stdout, m, 10)
		fmt.Println()
	}
	return nil
}
