// Package features turns game logs into the point-in-time feature table used
// to train the points model, and builds the matching single row at inference.
package features

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/pable/nba-points/internal/aggregator"
	"github.com/pable/nba-points/internal/model"
)

// Config controls window sizes and logging for feature generation.
type Config struct {
	// LastNGames is the short window for points, win percentage, ratings and pace.
	LastNGames int
	// MinutesWindow is the short window for minutes.
	MinutesWindow int
	Logger        *zap.SugaredLogger
}

func (c Config) withDefaults() Config {
	if c.LastNGames <= 0 {
		c.LastNGames = DefaultLastNGames
	}
	if c.MinutesWindow <= 0 {
		c.MinutesWindow = DefaultMinutesWindow
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop().Sugar()
	}
	return c
}

// Inputs are the four raw logs for one (season range, phase).
type Inputs struct {
	Players        []model.PlayerGame
	PlayerShooting []model.PlayerShooting
	Teams          []model.TeamGame
	OppShooting    []model.TeamOppShooting
}

// playerFeatures is a player-game row augmented with its rolling features.
type playerFeatures struct {
	game      model.PlayerGame
	b2b       int
	ptsPG     float64
	lastPtsPG float64
	minPG     float64
	lastMinPG float64
}

// teamFeatures is a team-game row augmented with self and opponent rolling
// features. The game's own ratings and pace are not carried.
type teamFeatures struct {
	teamID         int64
	winPct         float64
	lastWinPct     float64
	offRatingPG    float64
	lastOffRating  float64
	pacePG         float64
	lastPacePG     float64
	oppWinPct      float64
	oppLastWinPct  float64
	oppDefRatingPG float64
	oppLastDefRate float64
	oppPacePG      float64
	oppLastPacePG  float64
}

// gameKey joins a player-game to its team-game.
type gameKey struct {
	season   string
	team     string
	gameID   string
	opponent string
	outcome  model.Outcome
}

type playerShotKey struct {
	player string
	teamID int64
	season string
}

type teamShotKey struct {
	team   string
	season string
}

func playerName(g model.PlayerGame) string { return g.PlayerName }
func playerDate(g model.PlayerGame) time.Time { return g.Date }
func playerPoints(g model.PlayerGame) float64 { return g.Points }
func playerMinutes(g model.PlayerGame) float64 { return g.Minutes }
func teamName(g model.TeamGame) string { return g.TeamName }
func teamOpponent(g model.TeamGame) string { return g.Opponent }
func teamDate(g model.TeamGame) time.Time { return g.Date }
func teamWon(g model.TeamGame) bool { return g.Outcome == model.Win }
func teamOffRating(g model.TeamGame) float64 { return g.OffRating }
func teamDefRating(g model.TeamGame) float64 { return g.DefRating }
func teamPace(g model.TeamGame) float64 { return g.Pace }

// BuildTable assembles the feature table for one competition phase.
//
// Rows whose required metrics are not numeric are dropped before any
// aggregation. Every player-game must join to a team-game; a player-game whose
// team-game is missing aborts with ErrJoinMismatch, as does an empty result.
// Shooting profiles are left-joined and missing buckets read as zero.
func BuildTable(phase model.Phase, in Inputs, cfg Config) (*model.FeatureTable, error) {
	cfg = cfg.withDefaults()
	log := cfg.Logger

	players := make([]model.PlayerGame, 0, len(in.Players))
	for _, g := range in.Players {
		if model.Finite(g.Points, g.Minutes) {
			players = append(players, g)
		}
	}
	teams := make([]model.TeamGame, 0, len(in.Teams))
	droppedTeamGames := make(map[gameKey]struct{})
	for _, g := range in.Teams {
		if model.Finite(g.OffRating, g.DefRating, g.Pace) {
			teams = append(teams, g)
			continue
		}
		droppedTeamGames[teamGameKey(g)] = struct{}{}
	}
	if n := len(in.Players) - len(players); n > 0 {
		log.Warnw("dropped non-numeric player rows", "rows", n)
	}
	if n := len(droppedTeamGames); n > 0 {
		log.Warnw("dropped non-numeric team rows", "rows", n)
	}

	pf := playerRolling(phase, players, cfg)
	tf := teamRolling(teams, cfg)
	log.Infow("rolling features computed", "phase", string(phase),
		"player_rows", len(pf), "team_rows", len(tf))

	playerShots := make(map[playerShotKey][model.NumShotBuckets]float64, len(in.PlayerShooting))
	for _, s := range in.PlayerShooting {
		k := playerShotKey{s.PlayerName, s.TeamID, s.Season}
		if _, ok := playerShots[k]; !ok {
			playerShots[k] = s.FGA
		}
	}
	oppShots := make(map[teamShotKey][model.NumShotBuckets]float64, len(in.OppShooting))
	for _, s := range in.OppShooting {
		k := teamShotKey{s.TeamName, s.Season}
		if _, ok := oppShots[k]; !ok {
			oppShots[k] = s.OppFGPct
		}
	}

	table := &model.FeatureTable{
		Phase:         phase,
		Seasons:       seasonsOf(players),
		Columns:       Columns(phase),
		LastNGames:    cfg.LastNGames,
		MinutesWindow: cfg.MinutesWindow,
	}
	var (
		unmatched     int
		firstMismatch *gameKey
		skipped       int
		noPlayerShots int
		noOppShots    int
	)
	for _, p := range pf {
		k := playerGameKey(p.game)
		t, ok := tf[k]
		if !ok {
			if _, dropped := droppedTeamGames[k]; dropped {
				skipped++
				continue
			}
			if firstMismatch == nil {
				firstMismatch = &k
			}
			unmatched++
			continue
		}

		fga, ok := playerShots[playerShotKey{p.game.PlayerName, t.teamID, p.game.Season}]
		if !ok {
			noPlayerShots++
		}
		opp, ok := oppShots[teamShotKey{p.game.Opponent, p.game.Season}]
		if !ok {
			noOppShots++
		}

		values := make([]float64, 0, len(table.Columns))
		if phase.HasBackToBack() {
			values = append(values, float64(p.b2b))
		}
		values = append(values,
			boolFloat(p.game.Home),
			p.ptsPG, p.lastPtsPG,
			p.minPG, p.lastMinPG,
			t.winPct, t.lastWinPct,
			t.offRatingPG, t.lastOffRating,
			t.pacePG, t.lastPacePG,
			t.oppWinPct, t.oppLastWinPct,
			t.oppDefRatingPG, t.oppLastDefRate,
			t.oppPacePG, t.oppLastPacePG,
		)
		for i := 0; i < model.UsableShotBuckets; i++ {
			values = append(values, zeroIfMissing(fga[i]))
		}
		for i := 0; i < model.UsableShotBuckets; i++ {
			values = append(values, zeroIfMissing(opp[i]))
		}

		table.Rows = append(table.Rows, model.FeatureRow{
			Identity: model.Identity{
				Season:  p.game.Season,
				Player:  p.game.PlayerName,
				Team:    p.game.TeamName,
				GameID:  p.game.GameID,
				Matchup: p.game.Opponent,
				Outcome: p.game.Outcome,
			},
			Points:  p.game.Points,
			Minutes: p.game.Minutes,
			Values:  values,
		})
	}

	if unmatched > 0 {
		return nil, fmt.Errorf("%w: %d of %d player rows have no team row (first: season=%s team=%q game=%s opponent=%q)",
			ErrJoinMismatch, unmatched, len(pf), firstMismatch.season, firstMismatch.team,
			firstMismatch.gameID, firstMismatch.opponent)
	}
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("%w: player and team logs produced no rows (players=%d teams=%d)",
			ErrJoinMismatch, len(in.Players), len(in.Teams))
	}
	if skipped > 0 {
		log.Warnw("skipped player rows whose team row was dropped", "rows", skipped)
	}
	if noPlayerShots > 0 || noOppShots > 0 {
		log.Infow("shooting profiles filled with zero",
			"player_rows", noPlayerShots, "opponent_rows", noOppShots)
	}
	log.Infow("feature table assembled", "phase", string(phase),
		"rows", len(table.Rows), "columns", len(table.Columns))
	return table, nil
}

func playerRolling(phase model.Phase, games []model.PlayerGame, cfg Config) []playerFeatures {
	ix := aggregator.NewIndex(games, playerName, playerDate)
	var b2b []int
	if phase.HasBackToBack() {
		b2b = ix.BackToBack(playerName)
	}
	ptsPG := ix.Mean(playerName, playerPoints, aggregator.Unbounded)
	lastPts := ix.Mean(playerName, playerPoints, aggregator.LastN(cfg.LastNGames))
	minPG := ix.Mean(playerName, playerMinutes, aggregator.Unbounded)
	lastMin := ix.Mean(playerName, playerMinutes, aggregator.LastN(cfg.MinutesWindow))

	out := make([]playerFeatures, len(games))
	for i, g := range games {
		out[i] = playerFeatures{
			game:      g,
			ptsPG:     ptsPG[i],
			lastPtsPG: lastPts[i],
			minPG:     minPG[i],
			lastMinPG: lastMin[i],
		}
		if b2b != nil {
			out[i].b2b = b2b[i]
		}
	}
	return out
}

// teamRolling computes self features keyed by the team and opponent features
// looked up in the listed opponent's own history.
func teamRolling(games []model.TeamGame, cfg Config) map[gameKey]teamFeatures {
	ix := aggregator.NewIndex(games, teamName, teamDate)
	lastN := aggregator.LastN(cfg.LastNGames)
	all := aggregator.Unbounded

	winPct := ix.WinPct(teamName, teamWon, all)
	lastWinPct := ix.WinPct(teamName, teamWon, lastN)
	offPG := ix.Mean(teamName, teamOffRating, all)
	lastOff := ix.Mean(teamName, teamOffRating, lastN)
	pacePG := ix.Mean(teamName, teamPace, all)
	lastPace := ix.Mean(teamName, teamPace, lastN)

	oppWinPct := ix.WinPct(teamOpponent, teamWon, all)
	oppLastWinPct := ix.WinPct(teamOpponent, teamWon, lastN)
	oppDefPG := ix.Mean(teamOpponent, teamDefRating, all)
	oppLastDef := ix.Mean(teamOpponent, teamDefRating, lastN)
	oppPacePG := ix.Mean(teamOpponent, teamPace, all)
	oppLastPace := ix.Mean(teamOpponent, teamPace, lastN)

	out := make(map[gameKey]teamFeatures, len(games))
	for i, g := range games {
		out[teamGameKey(g)] = teamFeatures{
			teamID:         g.TeamID,
			winPct:         winPct[i],
			lastWinPct:     lastWinPct[i],
			offRatingPG:    offPG[i],
			lastOffRating:  lastOff[i],
			pacePG:         pacePG[i],
			lastPacePG:     lastPace[i],
			oppWinPct:      oppWinPct[i],
			oppLastWinPct:  oppLastWinPct[i],
			oppDefRatingPG: oppDefPG[i],
			oppLastDefRate: oppLastDef[i],
			oppPacePG:      oppPacePG[i],
			oppLastPacePG:  oppLastPace[i],
		}
	}
	return out
}

func playerGameKey(g model.PlayerGame) gameKey {
	return gameKey{g.Season, g.TeamName, g.GameID, g.Opponent, g.Outcome}
}

func teamGameKey(g model.TeamGame) gameKey {
	return gameKey{g.Season, g.TeamName, g.GameID, g.Opponent, g.Outcome}
}

func seasonsOf(games []model.PlayerGame) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, g := range games {
		if _, ok := seen[g.Season]; !ok {
			seen[g.Season] = struct{}{}
			out = append(out, g.Season)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

func zeroIfMissing(v float64) float64 {
	if !model.Finite(v) {
		return 0
	}
	return v
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
