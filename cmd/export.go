package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/nba-points/internal/features"
	"github.com/pable/nba-points/internal/model"
)

var (
	exportPhase string
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a stored feature table as CSV",
	Long: `Writes the feature table built for a phase as CSV: identity columns, the
PTS and MIN labels, then the feature columns in model order.

Example:
  nbapts export --phase playoffs --out playoffs.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportPhase, "phase", string(model.RegularSeason), "competition phase")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (stdout if omitted)")
}

func runExport(_ *cobra.Command, _ []string) error {
	phase, err := model.ParsePhase(exportPhase)
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	table, err := db.GetFeatureTable(phase)
	if err != nil {
		return fmt.Errorf("load %s table: %w", phase, err)
	}
	if table == nil {
		return fmt.Errorf("no %s feature table stored; run 'nbapts build' first", phase)
	}

	if exportOut == "" {
		return features.WriteCSV(os.Stdout, table)
	}
	if err := writeTableCSV(exportOut, table); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %d row(s) to %s\n", len(table.Rows), exportOut)
	return nil
}

func writeTableCSV(path string, table *model.FeatureTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := features.WriteCSV(f, table); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// phasePath inserts the phase slug before the extension: out.csv → out_playoffs.csv.
func phasePath(path string, phase model.Phase) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + phase.Slug() + ext
}
