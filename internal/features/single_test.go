package features

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/nba-points/internal/model"
)

// fakeSource serves canned current-season views.
type fakeSource struct {
	games       map[string][]model.PlayerGame
	season      map[string]*model.TeamStats
	lastN       map[string]*model.TeamStats
	shots       map[string][]model.PlayerShooting
	oppShots    map[string][]model.TeamOppShooting
	lastNAsked  int
	seasonAsked string
}

func (f *fakeSource) PlayerGameLog(_ context.Context, season string, _ model.Phase, player string) ([]model.PlayerGame, error) {
	f.seasonAsked = season
	return append([]model.PlayerGame(nil), f.games[player]...), nil
}

func (f *fakeSource) TeamStats(_ context.Context, _ string, _ model.Phase, team string, lastN int) (*model.TeamStats, error) {
	if lastN == 0 {
		return f.season[team], nil
	}
	f.lastNAsked = lastN
	return f.lastN[team], nil
}

func (f *fakeSource) PlayerShooting(_ context.Context, _ string, _ model.Phase, player string) ([]model.PlayerShooting, error) {
	return f.shots[player], nil
}

func (f *fakeSource) TeamOppShooting(_ context.Context, _ string, _ model.Phase, team string) ([]model.TeamOppShooting, error) {
	return f.oppShots[team], nil
}

func newFakeSource() *fakeSource {
	pts := []float64{30, 20, 10, 40, 0, 50, 25}
	mins := []float64{36, 30, 24, 40, 10, 38, 33}
	var games []model.PlayerGame
	// Stored oldest first so the builder has to order them.
	for i := len(pts) - 1; i >= 0; i-- {
		games = append(games, model.PlayerGame{
			PlayerName: "LeBron James", TeamName: lakers, Date: day(10 - i),
			Points: pts[i], Minutes: mins[i],
		})
	}
	return &fakeSource{
		games: map[string][]model.PlayerGame{"LeBron James": games},
		season: map[string]*model.TeamStats{
			lakers:  {TeamName: lakers, TeamID: 1, WinPct: 0.6, OffRating: 112, DefRating: 108, Pace: 99},
			celtics: {TeamName: celtics, TeamID: 2, WinPct: 0.55, OffRating: 110, DefRating: 106, Pace: 97},
		},
		lastN: map[string]*model.TeamStats{
			lakers:  {TeamName: lakers, TeamID: 1, WinPct: 0.8, OffRating: 115, DefRating: 107, Pace: 100},
			celtics: {TeamName: celtics, TeamID: 2, WinPct: 0.4, OffRating: 104, DefRating: 111, Pace: 96},
		},
		shots: map[string][]model.PlayerShooting{
			"LeBron James": {
				{PlayerName: "LeBron James", TeamID: 9, FGA: [model.NumShotBuckets]float64{1, 1, 1, 1, 1, 1, 1, 1, 1}},
				{PlayerName: "LeBron James", TeamID: 1, FGA: [model.NumShotBuckets]float64{6.1, 1.2, 0.8, 1.0, 1.5, 4.2, 0.3, 0.1, 0}},
			},
		},
		oppShots: map[string][]model.TeamOppShooting{
			celtics: {{TeamName: celtics, TeamID: 2, OppFGPct: [model.NumShotBuckets]float64{0.62, 0.41, 0.40, 0.39, 0.37, 0.35, 0.2, 0, 0}}},
		},
	}
}

func lebronQuery(phase model.Phase) Query {
	return Query{Player: "LeBron James", Team: lakers, Opponent: celtics, Phase: phase, Home: true}
}

func TestBuildSingleRow(t *testing.T) {
	src := newFakeSource()
	b := NewBuilder(src, "2021-22", Config{})
	yes := true
	q := lebronQuery(model.RegularSeason)
	q.BackToBack = &yes

	vec, err := b.Build(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, Columns(model.RegularSeason), vec.Columns)
	assert.Equal(t, "2021-22", src.seasonAsked)
	assert.Equal(t, DefaultLastNGames, src.lastNAsked)

	get := func(name string) float64 {
		v, ok := vec.Get(name)
		require.True(t, ok, "column %q missing", name)
		return v
	}
	assert.Equal(t, 1.0, get(ColB2B))
	assert.Equal(t, 1.0, get(ColHome))
	assert.InDelta(t, 25, get(ColPtsPG), 1e-9)     // mean of all seven
	assert.InDelta(t, 20, get(ColLastPtsPG), 1e-9) // 30, 20, 10, 40, 0
	assert.InDelta(t, 30, get(ColLastMinPG), 1e-9) // 36, 30, 24
	assert.Equal(t, 0.6, get(ColWinPct))
	assert.Equal(t, 0.8, get(ColLastWinPct))
	assert.Equal(t, 115.0, get(ColLastOffRatingPG))
	assert.Equal(t, 0.55, get(ColOppWinPct))
	assert.Equal(t, 111.0, get(ColOppLastDefRating))
	assert.Equal(t, 96.0, get(ColOppLastPacePG))
	// The profile for the queried team wins over the other stint.
	assert.Equal(t, 6.1, get(PlayerShotColumn(0)))
	assert.Equal(t, 0.62, get(OppShotColumn(0)))
}

func TestBuildSingleRowMatchesBatchSchema(t *testing.T) {
	table, err := BuildTable(model.Playoffs, fixtureInputs(), Config{})
	require.NoError(t, err)

	vec, err := NewBuilder(newFakeSource(), "2021-22", Config{}).Build(context.Background(), lebronQuery(model.Playoffs))
	require.NoError(t, err)
	assert.Equal(t, table.Columns, vec.Columns)
	assert.NotContains(t, vec.Columns, ColB2B)
}

func TestBuildSingleRowDefaultsBackToBack(t *testing.T) {
	vec, err := NewBuilder(newFakeSource(), "2021-22", Config{}).Build(context.Background(), lebronQuery(model.RegularSeason))
	require.NoError(t, err)
	v, ok := vec.Get(ColB2B)
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestBuildSingleRowErrors(t *testing.T) {
	yes := true
	tests := []struct {
		name    string
		mutate  func(*fakeSource, *Query)
		wantErr error
	}{
		{
			name:    "unknown player",
			mutate:  func(_ *fakeSource, q *Query) { q.Player = "Nobody" },
			wantErr: ErrUnknownEntity,
		},
		{
			name:    "unknown opponent",
			mutate:  func(_ *fakeSource, q *Query) { q.Opponent = "Seattle SuperSonics" },
			wantErr: ErrUnknownEntity,
		},
		{
			name:    "missing player shooting",
			mutate:  func(f *fakeSource, _ *Query) { delete(f.shots, "LeBron James") },
			wantErr: ErrIncompleteMatchup,
		},
		{
			name:    "missing opponent shooting",
			mutate:  func(f *fakeSource, _ *Query) { delete(f.oppShots, celtics) },
			wantErr: ErrIncompleteMatchup,
		},
		{
			name:    "non-numeric team stat",
			mutate:  func(f *fakeSource, _ *Query) { f.lastN[lakers].Pace = math.NaN() },
			wantErr: ErrNonNumeric,
		},
		{
			name: "back-to-back in playoffs",
			mutate: func(_ *fakeSource, q *Query) {
				q.Phase = model.Playoffs
				q.BackToBack = &yes
			},
		},
		{
			name:   "team equals opponent",
			mutate: func(_ *fakeSource, q *Query) { q.Opponent = lakers },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			q := lebronQuery(model.RegularSeason)
			tt.mutate(src, &q)

			vec, err := NewBuilder(src, "2021-22", Config{}).Build(context.Background(), q)
			require.Error(t, err)
			assert.Empty(t, vec.Values)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestIncompleteMatchupIsUnknownEntity(t *testing.T) {
	assert.ErrorIs(t, ErrIncompleteMatchup, ErrUnknownEntity)
}

func TestBuildSingleRowUsesConfiguredWindows(t *testing.T) {
	src := newFakeSource()
	b := NewBuilder(src, "2021-22", Config{LastNGames: 1, MinutesWindow: 2})
	assert.Equal(t, 1, b.Config().LastNGames)

	vec, err := b.Build(context.Background(), lebronQuery(model.Playoffs))
	require.NoError(t, err)
	assert.Equal(t, 1, src.lastNAsked)
	assert.Equal(t, 1, vec.LastNGames)
	assert.Equal(t, 2, vec.MinutesWindow)

	last, _ := vec.Get(ColLastPtsPG)
	assert.InDelta(t, 30, last, 1e-9)
	lastMin, _ := vec.Get(ColLastMinPG)
	assert.InDelta(t, 33, lastMin, 1e-9) // 36, 30
}
