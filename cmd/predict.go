package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/nba-points/internal/config"
	"github.com/pable/nba-points/internal/features"
	"github.com/pable/nba-points/internal/model"
	"github.com/pable/nba-points/internal/predictor"
	"github.com/pable/nba-points/internal/report"
	"github.com/pable/nba-points/internal/stats"
	"github.com/pable/nba-points/internal/storage"
)

var (
	predictPlayer   string
	predictTeam     string
	predictOpponent string
	predictPhase    string
	predictHome     int
	predictB2B      int
	predictSeason   string
	predictVerbose  bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict a player's points for an upcoming matchup",
	Long: `Builds the player's feature row from the current season's live data and
applies the stored model for the phase.

Example:
  nbapts predict --player "LeBron James" --team "Los Angeles Lakers" \
    --opponent "Boston Celtics" --phase "Regular Season" --home 1 --b2b 0`,
	Args: cobra.NoArgs,
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predictPlayer, "player", "", "player full name (required)")
	predictCmd.Flags().StringVar(&predictTeam, "team", "", "player's team full name (required)")
	predictCmd.Flags().StringVar(&predictOpponent, "opponent", "", "opponent team full name (required)")
	predictCmd.Flags().StringVar(&predictPhase, "phase", string(model.RegularSeason), "competition phase")
	predictCmd.Flags().IntVar(&predictHome, "home", 0, "1 if the player's team is at home, 0 if away (required)")
	predictCmd.Flags().IntVar(&predictB2B, "b2b", 0, "1 if the game is the second night of a back-to-back (regular season only)")
	predictCmd.Flags().StringVar(&predictSeason, "season", "", "season to read live data from (default NBAPTS_CURRENT_SEASON)")
	predictCmd.Flags().BoolVarP(&predictVerbose, "verbose", "v", false, "print the feature row")
	_ = predictCmd.MarkFlagRequired("player")
	_ = predictCmd.MarkFlagRequired("team")
	_ = predictCmd.MarkFlagRequired("opponent")
	_ = predictCmd.MarkFlagRequired("home")
}

func runPredict(cmd *cobra.Command, _ []string) error {
	phase, err := model.ParsePhase(predictPhase)
	if err != nil {
		return err
	}
	home, err := binaryFlag("home", predictHome)
	if err != nil {
		return err
	}
	q := features.Query{
		Player:   predictPlayer,
		Team:     predictTeam,
		Opponent: predictOpponent,
		Phase:    phase,
		Home:     home,
	}
	if cmd.Flags().Changed("b2b") {
		b2b, err := binaryFlag("b2b", predictB2B)
		if err != nil {
			return err
		}
		q.BackToBack = &b2b
	}

	season := predictSeason
	if season == "" {
		season = cfg.CurrentSeason
	}
	if _, err := config.ParseSeason(season); err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	points, vec, err := predictPoints(cmd.Context(), db, season, q)
	if err != nil {
		return err
	}
	if predictVerbose {
		report.PrintFeatureVector(os.Stdout, vec)
	}
	fmt.Printf("%s vs %s (%s, %s): ", q.Player, q.Opponent, homeLabel(q.Home), q.Phase)
	cResult.Printf("%.1f points\n", points)
	return nil
}

// predictPoints loads the phase's model, builds the live feature row for q
// and applies the model to it.
func predictPoints(ctx context.Context, db *storage.DB, season string, q features.Query) (float64, model.FeatureVector, error) {
	if err := q.Validate(); err != nil {
		return 0, model.FeatureVector{}, err
	}
	body, err := db.GetModel(q.Phase)
	if err != nil {
		return 0, model.FeatureVector{}, fmt.Errorf("load %s model: %w", q.Phase, err)
	}
	if body == nil {
		return 0, model.FeatureVector{}, fmt.Errorf("no %s model stored; run 'nbapts train' first", q.Phase)
	}
	m, err := predictor.Unmarshal(body)
	if err != nil {
		return 0, model.FeatureVector{}, err
	}

	// The live row must use the windows the model's training table was built with.
	builder := features.NewBuilder(stats.NewLive(newStatsClient()), season, m.FeatureConfig(log))
	vec, err := builder.Build(ctx, q)
	if err != nil {
		if errors.Is(err, features.ErrUnknownEntity) {
			cWarn.Fprintf(os.Stderr, "Check the spelling of player and team names; they must match the provider's full names.\n")
		}
		return 0, model.FeatureVector{}, err
	}
	points, err := m.Predict(vec)
	if err != nil {
		return 0, vec, err
	}
	log.Debugw("prediction", "player", q.Player, "season", season, "points", points)
	return points, vec, nil
}

func binaryFlag(name string, v int) (bool, error) {
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("--%s must be 0 or 1, got %d", name, v)
}

func homeLabel(home bool) string {
	if home {
		return "home"
	}
	return "away"
}
