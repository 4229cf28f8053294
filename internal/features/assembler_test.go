package features

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/nba-points/internal/model"
)

const (
	lakers  = "Los Angeles Lakers"
	celtics = "Boston Celtics"
	season  = "2020-21"
)

var day0 = time.Date(2020, 12, 20, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return day0.AddDate(0, 0, n) }

// teamPair returns both sides of one game.
func teamPair(gameID string, d int, lakersWon bool, lal, bos [3]float64) []model.TeamGame {
	lalOut, bosOut := model.Loss, model.Win
	if lakersWon {
		lalOut, bosOut = model.Win, model.Loss
	}
	return []model.TeamGame{
		{Season: season, TeamID: 1, TeamName: lakers, GameID: gameID, Date: day(d), Opponent: celtics,
			OffRating: lal[0], DefRating: lal[1], Pace: lal[2], Outcome: lalOut},
		{Season: season, TeamID: 2, TeamName: celtics, GameID: gameID, Date: day(d), Opponent: lakers,
			OffRating: bos[0], DefRating: bos[1], Pace: bos[2], Outcome: bosOut},
	}
}

func playerGame(name, team, opp, gameID string, d int, home bool, out model.Outcome, pts, min float64) model.PlayerGame {
	return model.PlayerGame{
		Season: season, PlayerName: name, TeamName: team, GameID: gameID, Date: day(d),
		Opponent: opp, Home: home, Outcome: out, Points: pts, Minutes: min,
	}
}

// fixtureInputs is a three-game series: Lakers win on days 1 and 3, lose on day 4.
func fixtureInputs() Inputs {
	var teams []model.TeamGame
	teams = append(teams, teamPair("g1", 1, true, [3]float64{110, 100, 98}, [3]float64{100, 110, 97})...)
	teams = append(teams, teamPair("g2", 3, true, [3]float64{120, 105, 100}, [3]float64{105, 120, 99})...)
	teams = append(teams, teamPair("g3", 4, false, [3]float64{90, 115, 96}, [3]float64{115, 90, 101})...)

	players := []model.PlayerGame{
		playerGame("LeBron James", lakers, celtics, "g1", 1, true, model.Win, 10, 30),
		playerGame("Jayson Tatum", celtics, lakers, "g1", 1, false, model.Loss, 25, 36),
		playerGame("LeBron James", lakers, celtics, "g2", 3, false, model.Win, 20, 35),
		playerGame("Jayson Tatum", celtics, lakers, "g2", 3, true, model.Loss, 30, 38),
		playerGame("LeBron James", lakers, celtics, "g3", 4, true, model.Loss, 5, 25),
		playerGame("Jayson Tatum", celtics, lakers, "g3", 4, false, model.Win, 28, 34),
	}
	return Inputs{
		Players: players,
		Teams:   teams,
		PlayerShooting: []model.PlayerShooting{
			{Season: season, PlayerName: "LeBron James", TeamID: 1,
				FGA: [model.NumShotBuckets]float64{6.1, 1.2, 0.8, 1.0, 1.5, 4.2, 0.3, 0.1, 0.05}},
		},
		OppShooting: []model.TeamOppShooting{
			{Season: season, TeamName: celtics, TeamID: 2,
				OppFGPct: [model.NumShotBuckets]float64{0.62, 0.41, 0.40, 0.39, 0.37, 0.35, 0.2, 0.1, math.NaN()}},
		},
	}
}

func findRow(t *testing.T, table *model.FeatureTable, player, gameID string) model.FeatureRow {
	t.Helper()
	for _, r := range table.Rows {
		if r.Player == player && r.GameID == gameID {
			return r
		}
	}
	t.Fatalf("no row for %s in %s", player, gameID)
	return model.FeatureRow{}
}

func col(t *testing.T, table *model.FeatureTable, row model.FeatureRow, name string) float64 {
	t.Helper()
	i := table.ColumnIndex(name)
	require.GreaterOrEqual(t, i, 0, "column %q missing", name)
	return row.Values[i]
}

func TestBuildTableRollingFeatures(t *testing.T) {
	table, err := BuildTable(model.RegularSeason, fixtureInputs(), Config{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 6)
	assert.Equal(t, []string{season}, table.Seasons)

	r := findRow(t, table, "LeBron James", "g3")
	assert.Equal(t, 1.0, col(t, table, r, ColB2B))
	assert.Equal(t, 1.0, col(t, table, r, ColHome))
	assert.InDelta(t, 15, col(t, table, r, ColPtsPG), 1e-9)
	assert.InDelta(t, 15, col(t, table, r, ColLastPtsPG), 1e-9)
	assert.InDelta(t, 32.5, col(t, table, r, ColMinPG), 1e-9)
	assert.InDelta(t, 32.5, col(t, table, r, ColLastMinPG), 1e-9)
	assert.Equal(t, 1.0, col(t, table, r, ColWinPct))
	assert.Equal(t, 1.0, col(t, table, r, ColLastWinPct))
	assert.InDelta(t, 115, col(t, table, r, ColOffRatingPG), 1e-9)
	assert.InDelta(t, 99, col(t, table, r, ColPacePG), 1e-9)
	assert.Equal(t, 0.0, col(t, table, r, ColOppWinPct))
	assert.InDelta(t, 115, col(t, table, r, ColOppDefRatingPG), 1e-9)
	assert.InDelta(t, 98, col(t, table, r, ColOppPacePG), 1e-9)

	// Labels are the game's own line, never part of the features.
	assert.Equal(t, 5.0, r.Points)
	assert.Equal(t, 25.0, r.Minutes)
	assert.Equal(t, celtics, r.Matchup)
	assert.Equal(t, model.Loss, r.Outcome)
}

func TestBuildTableColdStart(t *testing.T) {
	table, err := BuildTable(model.RegularSeason, fixtureInputs(), Config{})
	require.NoError(t, err)

	r := findRow(t, table, "LeBron James", "g1")
	assert.Equal(t, 0.0, col(t, table, r, ColB2B))
	assert.Equal(t, 10.0, col(t, table, r, ColPtsPG))
	assert.Equal(t, 30.0, col(t, table, r, ColMinPG))
	assert.Equal(t, 0.5, col(t, table, r, ColWinPct))
	assert.Equal(t, 0.5, col(t, table, r, ColOppWinPct))
	assert.Equal(t, 110.0, col(t, table, r, ColOffRatingPG))
	// The opponent has no history yet, so the row's own value stands in.
	assert.Equal(t, 100.0, col(t, table, r, ColOppDefRatingPG))
}

func TestBuildTableShootingLeftJoin(t *testing.T) {
	table, err := BuildTable(model.RegularSeason, fixtureInputs(), Config{})
	require.NoError(t, err)

	lebron := findRow(t, table, "LeBron James", "g2")
	assert.Equal(t, 6.1, col(t, table, lebron, PlayerShotColumn(0)))
	assert.Equal(t, 0.3, col(t, table, lebron, PlayerShotColumn(6)))
	assert.Equal(t, 0.62, col(t, table, lebron, OppShotColumn(0)))

	// Tatum has no shooting profile and the Lakers no opponent profile: zeros, row kept.
	tatum := findRow(t, table, "Jayson Tatum", "g2")
	for i := 0; i < model.UsableShotBuckets; i++ {
		assert.Equal(t, 0.0, col(t, table, tatum, PlayerShotColumn(i)))
		assert.Equal(t, 0.0, col(t, table, tatum, OppShotColumn(i)))
	}
}

func TestBuildTableColumnsByPhase(t *testing.T) {
	regular, err := BuildTable(model.RegularSeason, fixtureInputs(), Config{})
	require.NoError(t, err)
	playoffs, err := BuildTable(model.Playoffs, fixtureInputs(), Config{})
	require.NoError(t, err)

	assert.Contains(t, regular.Columns, ColB2B)
	assert.NotContains(t, playoffs.Columns, ColB2B)
	assert.Len(t, playoffs.Columns, len(regular.Columns)-1)
	for _, table := range []*model.FeatureTable{regular, playoffs} {
		assert.NotContains(t, table.Columns, "35-39 ft. FGA")
		assert.NotContains(t, table.Columns, "40+ ft. FGA")
		assert.NotContains(t, table.Columns, "35-39 ft. OPP_FG_PCT")
		assert.NotContains(t, table.Columns, "40+ ft. OPP_FG_PCT")
		for _, r := range table.Rows {
			assert.Len(t, r.Values, len(table.Columns))
		}
	}
}

func TestBuildTableJoinMismatch(t *testing.T) {
	in := fixtureInputs()
	in.Teams[2].TeamName = "Los Angeles Lakerz"

	table, err := BuildTable(model.RegularSeason, in, Config{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrJoinMismatch))
	assert.Nil(t, table)
}

func TestBuildTableEmptyJoinIsFatal(t *testing.T) {
	in := fixtureInputs()
	in.Players = nil

	_, err := BuildTable(model.RegularSeason, in, Config{})
	assert.ErrorIs(t, err, ErrJoinMismatch)
}

func TestBuildTableDropsNonNumericRows(t *testing.T) {
	in := fixtureInputs()
	in.Players[1].Points = math.NaN() // Tatum g1
	in.Teams[4].Pace = math.NaN()     // Lakers g3

	table, err := BuildTable(model.RegularSeason, in, Config{})
	require.NoError(t, err)

	for _, r := range table.Rows {
		assert.False(t, r.Player == "Jayson Tatum" && r.GameID == "g1", "non-numeric player row kept")
		assert.False(t, r.Team == lakers && r.GameID == "g3", "player row of a dropped team row kept")
	}
	assert.Len(t, table.Rows, 4)

	// Tatum's first surviving game is now his cold start.
	tatum := findRow(t, table, "Jayson Tatum", "g2")
	assert.Equal(t, 30.0, col(t, table, tatum, ColPtsPG))
}

func TestBuildTableFutureGamesDoNotLeak(t *testing.T) {
	base, err := BuildTable(model.RegularSeason, fixtureInputs(), Config{})
	require.NoError(t, err)

	in := fixtureInputs()
	in.Teams = append(in.Teams, teamPair("g4", 5, true, [3]float64{150, 80, 110}, [3]float64{80, 150, 90})...)
	in.Players = append(in.Players,
		playerGame("LeBron James", lakers, celtics, "g4", 5, false, model.Win, 60, 48),
		playerGame("Jayson Tatum", celtics, lakers, "g4", 5, true, model.Loss, 2, 10),
	)
	extended, err := BuildTable(model.RegularSeason, in, Config{})
	require.NoError(t, err)
	require.Len(t, extended.Rows, len(base.Rows)+2)

	for _, r := range base.Rows {
		got := findRow(t, extended, r.Player, r.GameID)
		assert.Equal(t, r.Values, got.Values, "%s %s changed after adding a later game", r.Player, r.GameID)
	}
}

func TestBuildTableWindowSizes(t *testing.T) {
	in := fixtureInputs()
	table, err := BuildTable(model.RegularSeason, in, Config{LastNGames: 1, MinutesWindow: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, table.LastNGames)
	assert.Equal(t, 1, table.MinutesWindow)

	base, err := BuildTable(model.RegularSeason, in, Config{})
	require.NoError(t, err)
	assert.Equal(t, table.Columns, base.Columns, "window size does not change the schema")
	assert.Equal(t, DefaultLastNGames, base.LastNGames)
	assert.Equal(t, DefaultMinutesWindow, base.MinutesWindow)

	r := findRow(t, table, "LeBron James", "g3")
	assert.Equal(t, 20.0, col(t, table, r, ColLastPtsPG))
	assert.Equal(t, 35.0, col(t, table, r, ColLastMinPG))
	assert.Equal(t, 120.0, col(t, table, r, ColLastOffRatingPG))
	assert.Equal(t, 120.0, col(t, table, r, ColOppLastDefRating))
	assert.Equal(t, 0.0, col(t, table, r, ColOppLastWinPct))
}
