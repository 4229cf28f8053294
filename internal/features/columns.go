package features

import "github.com/pable/nba-points/internal/model"

// Feature column names shared by the batch table and the single-row builder.
const (
	ColB2B              = "B2B"
	ColHome             = "H/A"
	ColPtsPG            = "PTS_PG"
	ColLastPtsPG        = "LAST_N_PTS_PG"
	ColMinPG            = "MIN_PG"
	ColLastMinPG        = "LAST_N_MIN_PG"
	ColWinPct           = "W_PCT"
	ColLastWinPct       = "LAST_N_W_PCT"
	ColOffRatingPG      = "OFF_RATING_PG"
	ColLastOffRatingPG  = "LAST_N_OFF_RATING_PG"
	ColPacePG           = "PACE_PG"
	ColLastPacePG       = "LAST_N_PACE_PG"
	ColOppWinPct        = "OPP_W_PCT"
	ColOppLastWinPct    = "OPP_LAST_N_W_PCT"
	ColOppDefRatingPG   = "OPP_DEF_RATING_PG"
	ColOppLastDefRating = "OPP_LAST_N_DEF_RATING_PG"
	ColOppPacePG        = "OPP_PACE_PG"
	ColOppLastPacePG    = "OPP_LAST_N_PACE_PG"
)

// Identity and label column names of the persisted table.
const (
	ColSeason  = "SEASON_YEAR"
	ColPlayer  = "PLAYER_NAME"
	ColTeam    = "TEAM_NAME"
	ColGameID  = "GAME_ID"
	ColMatchup = "MATCHUP"
	ColWL      = "WL"
	ColPts     = "PTS"
	ColMin     = "MIN"
)

// Default window sizes.
const (
	DefaultLastNGames    = 5
	DefaultMinutesWindow = 3
)

// rollingColumns are the matchup features after B2B, in table order.
var rollingColumns = []string{
	ColHome,
	ColPtsPG, ColLastPtsPG,
	ColMinPG, ColLastMinPG,
	ColWinPct, ColLastWinPct,
	ColOffRatingPG, ColLastOffRatingPG,
	ColPacePG, ColLastPacePG,
	ColOppWinPct, ColOppLastWinPct,
	ColOppDefRatingPG, ColOppLastDefRating,
	ColOppPacePG, ColOppLastPacePG,
}

// PlayerShotColumn names the player's FGA column for shot bucket i.
func PlayerShotColumn(i int) string {
	return model.ShotBuckets[i] + " FGA"
}

// OppShotColumn names the opponent's allowed FG% column for shot bucket i.
func OppShotColumn(i int) string {
	return model.ShotBuckets[i] + " OPP_FG_PCT"
}

// Columns returns the ordered feature columns for a competition phase.
// B2B is present only for the regular season; 35+ ft shot buckets are never present.
func Columns(phase model.Phase) []string {
	cols := make([]string, 0, 1+len(rollingColumns)+2*model.UsableShotBuckets)
	if phase.HasBackToBack() {
		cols = append(cols, ColB2B)
	}
	cols = append(cols, rollingColumns...)
	for i := 0; i < model.UsableShotBuckets; i++ {
		cols = append(cols, PlayerShotColumn(i))
	}
	for i := 0; i < model.UsableShotBuckets; i++ {
		cols = append(cols, OppShotColumn(i))
	}
	return cols
}

// IdentityColumns are the leading non-feature columns of the persisted table.
var IdentityColumns = []string{ColSeason, ColPlayer, ColTeam, ColGameID, ColMatchup, ColWL}

// LabelColumns follow the identity columns in the persisted table.
var LabelColumns = []string{ColPts, ColMin}
