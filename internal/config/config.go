// Package config loads CLI settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pable/nba-points/internal/model"
)

// FirstSeason is the earliest season the provider has shot-location data for.
const FirstSeason = 1996

type Config struct {
	// Stats provider
	StatsURL    string
	RateLimit   float64 // requests per second
	RateBurst   int
	HTTPTimeout time.Duration

	// Season whose live data single-row predictions read
	CurrentSeason string

	// Training
	MinMinutes float64

	LogLevel string
}

// Load loads configuration from environment variables.
// It returns an error if a value is present but invalid.
func Load() (*Config, error) {
	cfg := &Config{
		StatsURL:      getEnv("NBAPTS_STATS_URL", "https://stats.nba.com/stats"),
		CurrentSeason: getEnv("NBAPTS_CURRENT_SEASON", SeasonFor(time.Now())),
		LogLevel:      getEnv("NBAPTS_LOG_LEVEL", "info"),
	}
	var err error
	if cfg.RateLimit, err = getEnvFloat("NBAPTS_RATE_LIMIT", 1); err != nil {
		return nil, err
	}
	if cfg.RateBurst, err = getEnvInt("NBAPTS_RATE_BURST", 1); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getEnvDuration("NBAPTS_HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.MinMinutes, err = getEnvFloat("NBAPTS_MIN_MINUTES", 23); err != nil {
		return nil, err
	}
	if _, err := ParseSeason(cfg.CurrentSeason); err != nil {
		return nil, fmt.Errorf("NBAPTS_CURRENT_SEASON: %w", err)
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("NBAPTS_LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the CLI's sugared logger. Output goes to stderr so that
// tables and CSV on stdout stay clean.
func (c *Config) NewLogger() (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableStacktrace = true
	zc.OutputPaths = []string{"stderr"}
	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// ParseSeason validates a season label such as "2020-21" and returns its start year.
func ParseSeason(s string) (int, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid season %q (want e.g. 2020-21)", s)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid season %q: %w", s, err)
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid season %q: %w", s, err)
	}
	if (start+1)%100 != end {
		return 0, fmt.Errorf("invalid season %q: years are not consecutive", s)
	}
	if start < FirstSeason {
		return 0, fmt.Errorf("season %q predates %d", s, FirstSeason)
	}
	return start, nil
}

// SeasonLabel formats the season starting in year, e.g. 2020 → "2020-21".
func SeasonLabel(year int) string {
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}

// SeasonFor returns the season in progress on t. Seasons roll over in October.
func SeasonFor(t time.Time) string {
	year := t.Year()
	if t.Month() < time.October {
		year--
	}
	return SeasonLabel(year)
}

// PreviousSeasons returns the n seasons before current, newest first.
func PreviousSeasons(current string, n int) ([]string, error) {
	start, err := ParseSeason(current)
	if err != nil {
		return nil, err
	}
	var out []string
	for y := start - 1; y >= start-n && y >= FirstSeason; y-- {
		out = append(out, SeasonLabel(y))
	}
	return out, nil
}

// Phases returns the competition phases selected by a CLI value: one phase,
// or both for "all".
func Phases(s string) ([]model.Phase, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return []model.Phase{model.RegularSeason, model.Playoffs}, nil
	}
	p, err := model.ParsePhase(s)
	if err != nil {
		return nil, err
	}
	return []model.Phase{p}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, value)
	}
	return i, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, value)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a duration", key, value)
	}
	return d, nil
}
