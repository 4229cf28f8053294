package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Phase is the competition phase a log or feature table belongs to.
type Phase string

const (
	RegularSeason Phase = "Regular Season"
	Playoffs      Phase = "Playoffs"
)

// ParsePhase accepts the provider spelling ("Regular Season", "Playoffs") as
// well as the compact forms used in file names ("regularseason", "playoffs").
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
	case "regularseason", "regular", "rs":
		return RegularSeason, nil
	case "playoffs", "playoff", "po":
		return Playoffs, nil
	}
	return "", fmt.Errorf("unknown competition phase %q (want %q or %q)", s, RegularSeason, Playoffs)
}

// Slug returns the phase without spaces, lower-cased ("regularseason").
func (p Phase) Slug() string {
	return strings.ToLower(strings.ReplaceAll(string(p), " ", ""))
}

// HasBackToBack reports whether the back-to-back indicator is defined for the phase.
// Playoff schedules are too sparse for it to carry signal.
func (p Phase) HasBackToBack() bool {
	return p == RegularSeason
}

// Outcome is the result of a game from the entity's point of view.
type Outcome int

const (
	Loss Outcome = 0
	Win  Outcome = 1
)

func (o Outcome) String() string {
	if o == Win {
		return "W"
	}
	return "L"
}

// ParseOutcome parses the provider's WL cell.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "W":
		return Win, nil
	case "L":
		return Loss, nil
	}
	return Loss, fmt.Errorf("unknown outcome %q", s)
}

// DateLayout is the calendar-date layout used in storage and CSV output.
const DateLayout = "2006-01-02"

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ---- Shot-distance buckets ----

// ShotBuckets are the provider's 5ft shot-distance ranges, nearest first.
var ShotBuckets = [NumShotBuckets]string{
	"Less Than 5ft.",
	"5-9 ft.",
	"10-14 ft.",
	"15-19 ft.",
	"20-24 ft.",
	"25-29 ft.",
	"30-34 ft.",
	"35-39 ft.",
	"40+ ft.",
}

const NumShotBuckets = 9

// UsableShotBuckets is the number of leading buckets kept in feature tables.
// 35+ ft attempts are too sparse to be informative.
const UsableShotBuckets = 7

// ShotBucketIndex maps a provider bucket label to its position in ShotBuckets.
func ShotBucketIndex(label string) (int, bool) {
	norm := normalizeBucket(label)
	for i, b := range ShotBuckets {
		if normalizeBucket(b) == norm {
			return i, true
		}
	}
	return 0, false
}

func normalizeBucket(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

// ---- Raw observation rows ----

// PlayerGame is one player's box-score line for one game.
// Metric fields are NaN when the provider cell could not be coerced to a number.
type PlayerGame struct {
	Season     string
	PlayerID   int64
	PlayerName string
	TeamName   string
	GameID     string
	Date       time.Time
	Opponent   string // full team name resolved from the matchup string
	Home       bool
	Minutes    float64
	Outcome    Outcome
	Points     float64
}

// TeamGame is one team's advanced box-score line for one game.
type TeamGame struct {
	Season    string
	TeamID    int64
	TeamName  string
	GameID    string
	Date      time.Time
	Opponent  string
	OffRating float64
	DefRating float64
	Pace      float64
	Outcome   Outcome
}

// PlayerShooting is a player's season field-goal attempts per game by distance.
type PlayerShooting struct {
	Season     string
	PlayerName string
	TeamID     int64
	FGA        [NumShotBuckets]float64
}

// TeamOppShooting is the field-goal percentage a team allowed by distance over a season.
type TeamOppShooting struct {
	Season   string
	TeamName string
	TeamID   int64
	OppFGPct [NumShotBuckets]float64
}

// TeamStats is a team's season-to-date or last-N-games advanced summary.
type TeamStats struct {
	TeamName  string
	TeamID    int64
	WinPct    float64
	OffRating float64
	DefRating float64
	Pace      float64
}

// Finite reports whether every value is a real number.
func Finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ---- Feature table ----

// Identity carries the non-feature columns of a feature row.
type Identity struct {
	Season  string
	Player  string
	Team    string
	GameID  string
	Matchup string // opponent team name
	Outcome Outcome
}

// FeatureRow is one fully denormalized player-game record.
// Values is aligned with the owning table's Columns.
type FeatureRow struct {
	Identity
	Points  float64
	Minutes float64
	Values  []float64
}

// FeatureTable is the batch output for one competition phase.
// LastNGames and MinutesWindow are the short rolling windows the LAST_N_*
// columns were computed over.
type FeatureTable struct {
	Phase         Phase
	Seasons       []string
	Columns       []string
	LastNGames    int
	MinutesWindow int
	Rows          []FeatureRow
}

// ColumnIndex returns the position of name in Columns, or -1.
func (t *FeatureTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// FeatureVector is a single inference-time row with the batch table's feature schema.
type FeatureVector struct {
	Columns       []string
	Values        []float64
	LastNGames    int
	MinutesWindow int
}

// Get returns the value for a named column.
func (v FeatureVector) Get(name string) (float64, bool) {
	for i, c := range v.Columns {
		if c == name {
			return v.Values[i], true
		}
	}
	return 0, false
}

// TableSummary is a lightweight record for list/show commands.
type TableSummary struct {
	Phase         Phase
	Seasons       []string
	Columns       int
	LastNGames    int
	MinutesWindow int
	Rows          int
	BuiltAt       time.Time
}

// ModelSummary describes a stored regression model.
type ModelSummary struct {
	Phase     Phase
	Features  int
	TrainRows int
	TestMAE   float64
	TrainedAt time.Time
}
