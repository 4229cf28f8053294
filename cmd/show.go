package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/nba-points/internal/model"
	"github.com/pable/nba-points/internal/report"
)

var showPhase string

var showCmd = &cobra.Command{
	Use:   "show <player name>",
	Short: "Show a player's stored feature rows in game order",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showPhase, "phase", string(model.RegularSeason), "competition phase")
}

func runShow(cmd *cobra.Command, args []string) error {
	player := strings.Join(args, " ")
	phase, err := model.ParsePhase(showPhase)
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	t, err := db.GetPlayerFeatureRows(phase, player)
	if err != nil {
		return fmt.Errorf("query feature rows: %w", err)
	}
	if t == nil {
		fmt.Fprintf(os.Stderr, "No %s feature table stored. Run 'nbapts build' first.\n", phase)
		return nil
	}
	if len(t.Rows) == 0 {
		fmt.Fprintf(os.Stderr, "No %s rows for %q\n", phase, player)
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n%s  |  %s  |  %d game(s)\n\n", player, phase, len(t.Rows))
	report.PrintPlayerTrend(os.Stdout, t)
	return nil
}
