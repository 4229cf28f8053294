package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pable/nba-points/internal/config"
	"github.com/pable/nba-points/internal/report"
	"github.com/pable/nba-points/internal/stats"
	"github.com/pable/nba-points/internal/storage"
)

// fetch command flags.
var (
	// fetchSeasons is the number of completed seasons before the current one to harvest.
	fetchSeasons int
	// fetchSeasonList overrides fetchSeasons with explicit season labels.
	fetchSeasonList []string
	// fetchPhase is "Regular Season", "Playoffs" or "all".
	fetchPhase string
	// fetchCurrent also harvests the current season.
	fetchCurrent bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download player and team game logs from the stats provider",
	Long: `Pulls the player game log, team advanced game log, player shot locations
and team opponent shot locations for each season and stores them in the
database. Re-fetching a season replaces its rows.

Examples:
  # The three seasons before the current one, both phases
  nbapts fetch --seasons 3

  # Specific playoff seasons
  nbapts fetch --season 2019-20,2020-21 --phase playoffs`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().IntVar(&fetchSeasons, "seasons", 3, "number of past seasons to fetch")
	fetchCmd.Flags().StringSliceVar(&fetchSeasonList, "season", nil, "explicit seasons to fetch (e.g. 2020-21)")
	fetchCmd.Flags().StringVar(&fetchPhase, "phase", "all", `competition phase: "Regular Season", "Playoffs" or "all"`)
	fetchCmd.Flags().BoolVar(&fetchCurrent, "current", false, "also fetch the current season")
}

func runFetch(cmd *cobra.Command, args []string) error {
	phases, err := config.Phases(fetchPhase)
	if err != nil {
		return err
	}
	seasons, err := resolveFetchSeasons()
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client := newStatsClient()
	for _, phase := range phases {
		for _, season := range seasons {
			log.Infow("fetching season", "season", season, "phase", string(phase))
			logs, err := client.FetchSeason(ctx, season, phase)
			if err != nil {
				return err
			}
			if err := storeSeason(db, logs); err != nil {
				return fmt.Errorf("store %s %s: %w", season, phase, err)
			}
			log.Infow("season stored", "season", season, "phase", string(phase),
				"player_games", len(logs.Players), "team_games", len(logs.Teams),
				"player_shooting", len(logs.PlayerShooting), "opp_shooting", len(logs.OppShooting))
		}
		counts, err := db.CountGames(phase)
		if err != nil {
			return fmt.Errorf("count games: %w", err)
		}
		report.PrintSeasonCounts(os.Stdout, phase, counts)
	}
	return nil
}

func resolveFetchSeasons() ([]string, error) {
	if len(fetchSeasonList) > 0 {
		for _, s := range fetchSeasonList {
			if _, err := config.ParseSeason(s); err != nil {
				return nil, err
			}
		}
		return fetchSeasonList, nil
	}
	seasons, err := config.PreviousSeasons(cfg.CurrentSeason, fetchSeasons)
	if err != nil {
		return nil, err
	}
	if fetchCurrent {
		seasons = append([]string{cfg.CurrentSeason}, seasons...)
	}
	if len(seasons) == 0 {
		return nil, fmt.Errorf("no seasons selected")
	}
	return seasons, nil
}

func storeSeason(db *storage.DB, logs *stats.SeasonLogs) error {
	if err := db.InsertPlayerGames(logs.Phase, logs.Players); err != nil {
		return err
	}
	if err := db.InsertTeamGames(logs.Phase, logs.Teams); err != nil {
		return err
	}
	if err := db.InsertPlayerShooting(logs.Phase, logs.PlayerShooting); err != nil {
		return err
	}
	return db.InsertTeamOppShooting(logs.Phase, logs.OppShooting)
}
