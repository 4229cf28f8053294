package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/nba-points/internal/config"
	"github.com/pable/nba-points/internal/features"
	"github.com/pable/nba-points/internal/model"
	"github.com/pable/nba-points/internal/storage"
)

var (
	buildPhase   string
	buildSeasons []string
	buildOut     string
	buildLastN   int
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the rolling feature table from stored game logs",
	Long: `Joins the stored player, team and shooting logs into one feature row per
player-game. Every rolling feature of a row is computed only from games dated
strictly before it, so the table can be used for training without lookahead.

Example:
  nbapts build --phase "Regular Season" --out regularseason.csv`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildPhase, "phase", "all", `competition phase: "Regular Season", "Playoffs" or "all"`)
	buildCmd.Flags().StringSliceVar(&buildSeasons, "season", nil, "seasons to include (default: every stored season)")
	buildCmd.Flags().StringVar(&buildOut, "out", "", "also write the table as CSV; with --phase all, the phase slug is appended")
	buildCmd.Flags().IntVar(&buildLastN, "last-n", features.DefaultLastNGames, "short rolling window in games")
}

func runBuild(_ *cobra.Command, _ []string) error {
	phases, err := config.Phases(buildPhase)
	if err != nil {
		return err
	}
	for _, s := range buildSeasons {
		if _, err := config.ParseSeason(s); err != nil {
			return err
		}
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	fcfg := features.Config{LastNGames: buildLastN, Logger: log}
	for _, phase := range phases {
		seasons := buildSeasons
		if len(seasons) == 0 {
			if seasons, err = db.StoredSeasons(phase); err != nil {
				return fmt.Errorf("stored seasons: %w", err)
			}
		}
		if len(seasons) == 0 {
			log.Warnw("no stored games, run fetch first", "phase", string(phase))
			continue
		}

		in, err := loadInputs(db, phase, seasons)
		if err != nil {
			return err
		}
		table, err := features.BuildTable(phase, in, fcfg)
		if err != nil {
			return fmt.Errorf("build %s table: %w", phase, err)
		}
		if err := db.SaveFeatureTable(table, time.Now()); err != nil {
			return fmt.Errorf("save %s table: %w", phase, err)
		}
		fmt.Fprintf(os.Stdout, "%s: %d rows × %d features from %d season(s)\n",
			phase, len(table.Rows), len(table.Columns), len(table.Seasons))

		if buildOut != "" {
			path := buildOut
			if len(phases) > 1 {
				path = phasePath(buildOut, phase)
			}
			if err := writeTableCSV(path, table); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
		}
	}
	return nil
}

// loadInputs reads the four raw logs of a phase for the given seasons.
func loadInputs(db *storage.DB, phase model.Phase, seasons []string) (features.Inputs, error) {
	var in features.Inputs
	var err error
	if in.Players, err = db.GetPlayerGames(phase, seasons); err != nil {
		return in, fmt.Errorf("load player games: %w", err)
	}
	if in.Teams, err = db.GetTeamGames(phase, seasons); err != nil {
		return in, fmt.Errorf("load team games: %w", err)
	}
	if in.PlayerShooting, err = db.GetPlayerShooting(phase, seasons); err != nil {
		return in, fmt.Errorf("load player shooting: %w", err)
	}
	if in.OppShooting, err = db.GetTeamOppShooting(phase, seasons); err != nil {
		return in, fmt.Errorf("load opponent shooting: %w", err)
	}
	log.Infow("logs loaded", "phase", string(phase), "seasons", seasons,
		"player_games", len(in.Players), "team_games", len(in.Teams))
	return in, nil
}
