package features

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/pable/nba-points/internal/model"
)

// Source is the live view of the current season that the single-row builder
// reads. Implementations filter by the given player or team name.
type Source interface {
	PlayerGameLog(ctx context.Context, season string, phase model.Phase, player string) ([]model.PlayerGame, error)
	// TeamStats returns season-to-date stats when lastN is 0, else stats over the last lastN games.
	TeamStats(ctx context.Context, season string, phase model.Phase, team string, lastN int) (*model.TeamStats, error)
	PlayerShooting(ctx context.Context, season string, phase model.Phase, player string) ([]model.PlayerShooting, error)
	TeamOppShooting(ctx context.Context, season string, phase model.Phase, team string) ([]model.TeamOppShooting, error)
}

// Query describes one upcoming matchup.
type Query struct {
	Player   string
	Team     string
	Opponent string
	Phase    model.Phase
	Home     bool
	// BackToBack is only meaningful in the regular season; nil reads as 0 there.
	BackToBack *bool
}

// Validate checks the query before any provider call is made.
func (q Query) Validate() error {
	switch {
	case strings.TrimSpace(q.Player) == "":
		return fmt.Errorf("player is required")
	case strings.TrimSpace(q.Team) == "":
		return fmt.Errorf("team is required")
	case strings.TrimSpace(q.Opponent) == "":
		return fmt.Errorf("opponent is required")
	case strings.EqualFold(q.Team, q.Opponent):
		return fmt.Errorf("team and opponent are both %q", q.Team)
	}
	if q.Phase != model.RegularSeason && q.Phase != model.Playoffs {
		return fmt.Errorf("unknown competition phase %q", q.Phase)
	}
	if q.BackToBack != nil && !q.Phase.HasBackToBack() {
		return fmt.Errorf("back-to-back flag is not defined for %s", q.Phase)
	}
	return nil
}

// Builder produces single inference rows from a live Source.
type Builder struct {
	src    Source
	season string
	cfg    Config
}

// NewBuilder returns a Builder reading the given season from src.
func NewBuilder(src Source, season string, cfg Config) *Builder {
	return &Builder{src: src, season: season, cfg: cfg.withDefaults()}
}

// Config returns the builder's effective configuration, defaults applied.
func (b *Builder) Config() Config {
	return b.cfg
}

// Build assembles one feature row for q with the batch table's columns.
// It fails with ErrUnknownEntity when the player or a team has no data,
// ErrIncompleteMatchup when a shooting profile is missing, and ErrNonNumeric
// when any value is not a number.
func (b *Builder) Build(ctx context.Context, q Query) (model.FeatureVector, error) {
	if err := q.Validate(); err != nil {
		return model.FeatureVector{}, err
	}

	games, err := b.src.PlayerGameLog(ctx, b.season, q.Phase, q.Player)
	if err != nil {
		return model.FeatureVector{}, fmt.Errorf("player game log: %w", err)
	}
	if len(games) == 0 {
		return model.FeatureVector{}, fmt.Errorf("%w: no %s games for player %q in %s",
			ErrUnknownEntity, q.Phase, q.Player, b.season)
	}
	sort.SliceStable(games, func(i, j int) bool { return games[i].Date.After(games[j].Date) })

	team, lastTeam, err := b.teamViews(ctx, q.Phase, q.Team)
	if err != nil {
		return model.FeatureVector{}, err
	}
	opp, lastOpp, err := b.teamViews(ctx, q.Phase, q.Opponent)
	if err != nil {
		return model.FeatureVector{}, err
	}

	fga, err := b.playerShots(ctx, q, team.TeamID)
	if err != nil {
		return model.FeatureVector{}, err
	}
	oppFG, err := b.opponentShots(ctx, q)
	if err != nil {
		return model.FeatureVector{}, err
	}

	points := make([]float64, len(games))
	minutes := make([]float64, len(games))
	for i, g := range games {
		points[i] = g.Points
		minutes[i] = g.Minutes
	}

	vals := map[string]float64{
		ColHome:             boolFloat(q.Home),
		ColPtsPG:            stat.Mean(points, nil),
		ColLastPtsPG:        stat.Mean(head(points, b.cfg.LastNGames), nil),
		ColMinPG:            stat.Mean(minutes, nil),
		ColLastMinPG:        stat.Mean(head(minutes, b.cfg.MinutesWindow), nil),
		ColWinPct:           team.WinPct,
		ColLastWinPct:       lastTeam.WinPct,
		ColOffRatingPG:      team.OffRating,
		ColLastOffRatingPG:  lastTeam.OffRating,
		ColPacePG:           team.Pace,
		ColLastPacePG:       lastTeam.Pace,
		ColOppWinPct:        opp.WinPct,
		ColOppLastWinPct:    lastOpp.WinPct,
		ColOppDefRatingPG:   opp.DefRating,
		ColOppLastDefRating: lastOpp.DefRating,
		ColOppPacePG:        opp.Pace,
		ColOppLastPacePG:    lastOpp.Pace,
	}
	if q.Phase.HasBackToBack() {
		vals[ColB2B] = 0
		if q.BackToBack != nil && *q.BackToBack {
			vals[ColB2B] = 1
		}
	}
	for i := 0; i < model.UsableShotBuckets; i++ {
		vals[PlayerShotColumn(i)] = fga[i]
		vals[OppShotColumn(i)] = oppFG[i]
	}

	cols := Columns(q.Phase)
	vec := model.FeatureVector{
		Columns:       cols,
		Values:        make([]float64, len(cols)),
		LastNGames:    b.cfg.LastNGames,
		MinutesWindow: b.cfg.MinutesWindow,
	}
	for i, c := range cols {
		v := vals[c]
		if !model.Finite(v) {
			return model.FeatureVector{}, fmt.Errorf("%w: %s", ErrNonNumeric, c)
		}
		vec.Values[i] = v
	}
	return vec, nil
}

// teamViews fetches the season-to-date and last-N views for one team.
func (b *Builder) teamViews(ctx context.Context, phase model.Phase, name string) (*model.TeamStats, *model.TeamStats, error) {
	season, err := b.src.TeamStats(ctx, b.season, phase, name, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("team stats %q: %w", name, err)
	}
	if season == nil {
		return nil, nil, fmt.Errorf("%w: team %q has no %s stats in %s", ErrUnknownEntity, name, phase, b.season)
	}
	last, err := b.src.TeamStats(ctx, b.season, phase, name, b.cfg.LastNGames)
	if err != nil {
		return nil, nil, fmt.Errorf("team stats %q last %d: %w", name, b.cfg.LastNGames, err)
	}
	if last == nil {
		return nil, nil, fmt.Errorf("%w: team %q has no last-%d stats in %s", ErrUnknownEntity, name, b.cfg.LastNGames, b.season)
	}
	return season, last, nil
}

// playerShots picks the player's shooting profile, preferring the row for the
// queried team when the player appears for more than one team.
func (b *Builder) playerShots(ctx context.Context, q Query, teamID int64) ([model.NumShotBuckets]float64, error) {
	rows, err := b.src.PlayerShooting(ctx, b.season, q.Phase, q.Player)
	if err != nil {
		return [model.NumShotBuckets]float64{}, fmt.Errorf("player shooting: %w", err)
	}
	if len(rows) == 0 {
		return [model.NumShotBuckets]float64{}, fmt.Errorf("%w: no shooting profile for player %q", ErrIncompleteMatchup, q.Player)
	}
	for _, r := range rows {
		if r.TeamID == teamID {
			return r.FGA, nil
		}
	}
	return rows[0].FGA, nil
}

func (b *Builder) opponentShots(ctx context.Context, q Query) ([model.NumShotBuckets]float64, error) {
	rows, err := b.src.TeamOppShooting(ctx, b.season, q.Phase, q.Opponent)
	if err != nil {
		return [model.NumShotBuckets]float64{}, fmt.Errorf("opponent shooting: %w", err)
	}
	if len(rows) == 0 {
		return [model.NumShotBuckets]float64{}, fmt.Errorf("%w: no opponent shooting profile for %q", ErrIncompleteMatchup, q.Opponent)
	}
	return rows[0].OppFGPct, nil
}

func head(xs []float64, n int) []float64 {
	if n > 0 && len(xs) > n {
		return xs[:n]
	}
	return xs
}
