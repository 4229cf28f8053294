package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/nba-points/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"NBAPTS_STATS_URL", "NBAPTS_RATE_LIMIT", "NBAPTS_RATE_BURST",
		"NBAPTS_HTTP_TIMEOUT", "NBAPTS_CURRENT_SEASON", "NBAPTS_LOG_LEVEL", "NBAPTS_MIN_MINUTES"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://stats.nba.com/stats", cfg.StatsURL)
	assert.Equal(t, 1.0, cfg.RateLimit)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 23.0, cfg.MinMinutes)
	assert.Equal(t, SeasonFor(time.Now()), cfg.CurrentSeason)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("NBAPTS_RATE_LIMIT", "2.5")
	t.Setenv("NBAPTS_HTTP_TIMEOUT", "5s")
	t.Setenv("NBAPTS_CURRENT_SEASON", "2021-22")
	t.Setenv("NBAPTS_MIN_MINUTES", "20")
	t.Setenv("NBAPTS_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "2021-22", cfg.CurrentSeason)
	assert.Equal(t, 20.0, cfg.MinMinutes)

	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("NBAPTS_CURRENT_SEASON", "2021-23")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("NBAPTS_CURRENT_SEASON", "2021-22")
	t.Setenv("NBAPTS_LOG_LEVEL", "chatty")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	tests := []struct{ key, value string }{
		{"NBAPTS_RATE_LIMIT", "abc"},
		{"NBAPTS_RATE_BURST", "1.5"},
		{"NBAPTS_HTTP_TIMEOUT", "30"},
		{"NBAPTS_MIN_MINUTES", "not-a-number"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv("NBAPTS_CURRENT_SEASON", "2021-22")
			t.Setenv("NBAPTS_LOG_LEVEL", "info")
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestParseSeason(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "2020-21", want: 2020},
		{in: "1999-00", want: 1999},
		{in: "2020-22", wantErr: true},
		{in: "2020", wantErr: true},
		{in: "1990-91", wantErr: true},
		{in: "20x0-21", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSeason(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeasonFor(t *testing.T) {
	assert.Equal(t, "2021-22", SeasonFor(time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2022-23", SeasonFor(time.Date(2022, time.October, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1999-00", SeasonLabel(1999))
}

func TestPreviousSeasons(t *testing.T) {
	got, err := PreviousSeasons("2021-22", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"2020-21", "2019-20", "2018-19"}, got)

	got, err = PreviousSeasons("1997-98", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"1996-97"}, got)
}

func TestPhases(t *testing.T) {
	all, err := Phases("all")
	require.NoError(t, err)
	assert.Equal(t, []model.Phase{model.RegularSeason, model.Playoffs}, all)

	one, err := Phases("playoffs")
	require.NoError(t, err)
	assert.Equal(t, []model.Phase{model.Playoffs}, one)

	_, err = Phases("preseason")
	assert.Error(t, err)
}
