package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/nba-points/internal/report"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored feature tables and models",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	tables, err := db.ListFeatureTables()
	if err != nil {
		return fmt.Errorf("list feature tables: %w", err)
	}
	models, err := db.ListModels()
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	if len(tables) == 0 && len(models) == 0 {
		fmt.Fprintln(os.Stdout, "Nothing built yet. Run 'nbapts fetch' then 'nbapts build'.")
		return nil
	}

	if len(tables) > 0 {
		fmt.Fprintln(os.Stdout, "Feature tables")
		report.PrintTableSummaries(os.Stdout, tables)
	}
	if len(models) > 0 {
		fmt.Fprintln(os.Stdout, "\nModels")
		report.PrintModelSummaries(os.Stdout, models)
	}
	return nil
}
