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
	reportPhase string
	reportTop   int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Held-out error and coefficients of the stored models",
	Long: `Rebuilds each model's test split from the stored feature table and prints
MAE, RMSE and the residual spread, followed by the largest coefficients.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportPhase, "phase", "all", `competition phase: "Regular Season", "Playoffs" or "all"`)
	reportCmd.Flags().IntVar(&reportTop, "top", 15, "number of coefficients to show (0 = all)")
}

func runReport(_ *cobra.Command, _ []string) error {
	phases, err := config.Phases(reportPhase)
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	for _, phase := range phases {
		body, err := db.GetModel(phase)
		if err != nil {
			return fmt.Errorf("load %s model: %w", phase, err)
		}
		if body == nil {
			fmt.Fprintf(os.Stderr, "No %s model stored. Run 'nbapts train' first.\n", phase)
			continue
		}
		m, err := predictor.Unmarshal(body)
		if err != nil {
			return err
		}
		table, err := db.GetFeatureTable(phase)
		if err != nil {
			return fmt.Errorf("load %s table: %w", phase, err)
		}
		if table == nil {
			return fmt.Errorf("%s model exists but its feature table is gone; rebuild and retrain", phase)
		}
		test, err := m.Holdout(table)
		if err != nil {
			return err
		}

		report.PrintMetrics(os.Stdout, phase, m.Evaluate(test))
		report.PrintCoefficients(os.Stdout, m, reportTop)
		fmt.Println()
	}
	return nil
}
