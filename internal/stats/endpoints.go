package stats

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pable/nba-points/internal/model"
)

// baseParams are the filters every league endpoint expects, left at "all".
func baseParams(season string, phase model.Phase, measure, perMode string, lastN int) url.Values {
	v := url.Values{}
	v.Set("LastNGames", strconv.Itoa(lastN))
	v.Set("LeagueID", "00")
	v.Set("MeasureType", measure)
	v.Set("Month", "0")
	v.Set("OpponentTeamID", "0")
	v.Set("PORound", "0")
	v.Set("PaceAdjust", "N")
	v.Set("PerMode", perMode)
	v.Set("Period", "0")
	v.Set("PlusMinus", "N")
	v.Set("Rank", "N")
	v.Set("Season", season)
	v.Set("SeasonType", string(phase))
	for _, k := range []string{"Location", "SeasonSegment", "DateFrom", "DateTo", "VsConference",
		"VsDivision", "GameSegment", "PlayerExperience", "PlayerPosition", "StarterBench", "Outcome"} {
		v.Set(k, "")
	}
	return v
}

// PlayerGameLogs returns every player box-score line of a season phase.
// lastN > 0 restricts each player to their most recent lastN games.
func (c *Client) PlayerGameLogs(ctx context.Context, season string, phase model.Phase, lastN int) ([]model.PlayerGame, error) {
	var resp response
	if err := c.get(ctx, "playergamelogs", baseParams(season, phase, "Base", "Totals", lastN), &resp); err != nil {
		return nil, err
	}
	t, err := resp.firstTable()
	if err != nil {
		return nil, fmt.Errorf("playergamelogs: %w", err)
	}
	if err := t.require("SEASON_YEAR", "PLAYER_ID", "PLAYER_NAME", "TEAM_NAME", "GAME_ID",
		"GAME_DATE", "MATCHUP", "MIN", "WL", "PTS"); err != nil {
		return nil, fmt.Errorf("playergamelogs: %w", err)
	}

	out := make([]model.PlayerGame, 0, len(t.rows))
	for _, row := range t.rows {
		g := model.PlayerGame{
			Season:     t.str(row, "SEASON_YEAR"),
			PlayerID:   t.int(row, "PLAYER_ID"),
			PlayerName: t.str(row, "PLAYER_NAME"),
			TeamName:   t.str(row, "TEAM_NAME"),
			GameID:     t.str(row, "GAME_ID"),
			Minutes:    t.float(row, "MIN"),
			Points:     t.float(row, "PTS"),
		}
		if g.Date, err = parseGameDate(t.str(row, "GAME_DATE")); err != nil {
			return nil, fmt.Errorf("playergamelogs %s/%s: %w", g.GameID, g.PlayerName, err)
		}
		if g.Opponent, g.Home, err = parseMatchup(t.str(row, "MATCHUP"), g.Season); err != nil {
			return nil, fmt.Errorf("playergamelogs %s/%s: %w", g.GameID, g.PlayerName, err)
		}
		if g.Outcome, err = model.ParseOutcome(t.str(row, "WL")); err != nil {
			return nil, fmt.Errorf("playergamelogs %s/%s: %w", g.GameID, g.PlayerName, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// TeamGameLogs returns every team's advanced line per game of a season phase.
func (c *Client) TeamGameLogs(ctx context.Context, season string, phase model.Phase) ([]model.TeamGame, error) {
	var resp response
	if err := c.get(ctx, "teamgamelogs", baseParams(season, phase, "Advanced", "Totals", 0), &resp); err != nil {
		return nil, err
	}
	t, err := resp.firstTable()
	if err != nil {
		return nil, fmt.Errorf("teamgamelogs: %w", err)
	}
	if err := t.require("SEASON_YEAR", "TEAM_ID", "TEAM_NAME", "GAME_ID", "GAME_DATE", "MATCHUP",
		"OFF_RATING", "DEF_RATING", "PACE", "WL"); err != nil {
		return nil, fmt.Errorf("teamgamelogs: %w", err)
	}

	out := make([]model.TeamGame, 0, len(t.rows))
	for _, row := range t.rows {
		g := model.TeamGame{
			Season:    t.str(row, "SEASON_YEAR"),
			TeamID:    t.int(row, "TEAM_ID"),
			TeamName:  t.str(row, "TEAM_NAME"),
			GameID:    t.str(row, "GAME_ID"),
			OffRating: t.float(row, "OFF_RATING"),
			DefRating: t.float(row, "DEF_RATING"),
			Pace:      t.float(row, "PACE"),
		}
		if g.Date, err = parseGameDate(t.str(row, "GAME_DATE")); err != nil {
			return nil, fmt.Errorf("teamgamelogs %s/%s: %w", g.GameID, g.TeamName, err)
		}
		if g.Opponent, _, err = parseMatchup(t.str(row, "MATCHUP"), g.Season); err != nil {
			return nil, fmt.Errorf("teamgamelogs %s/%s: %w", g.GameID, g.TeamName, err)
		}
		if g.Outcome, err = model.ParseOutcome(t.str(row, "WL")); err != nil {
			return nil, fmt.Errorf("teamgamelogs %s/%s: %w", g.GameID, g.TeamName, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// PlayerShotLocations returns per-game field-goal attempts by 5ft distance
// bucket for every player of a season phase.
func (c *Client) PlayerShotLocations(ctx context.Context, season string, phase model.Phase) ([]model.PlayerShooting, error) {
	params := baseParams(season, phase, "Base", "PerGame", 0)
	params.Set("DistanceRange", "5ft Range")
	params.Set("TeamID", "0")

	var resp response
	if err := c.get(ctx, "leaguedashplayershotlocations", params, &resp); err != nil {
		return nil, err
	}
	st, err := resp.shotLocations("FGA")
	if err != nil {
		return nil, fmt.Errorf("leaguedashplayershotlocations: %w", err)
	}
	if err := st.require("PLAYER_NAME", "TEAM_ID"); err != nil {
		return nil, fmt.Errorf("leaguedashplayershotlocations: %w", err)
	}

	out := make([]model.PlayerShooting, 0, len(st.rows))
	for _, row := range st.rows {
		out = append(out, model.PlayerShooting{
			Season:     season,
			PlayerName: st.str(row, "PLAYER_NAME"),
			TeamID:     st.int(row, "TEAM_ID"),
			FGA:        st.buckets(row),
		})
	}
	return out, nil
}

// TeamOppShotLocations returns the field-goal percentage each team allowed by
// 5ft distance bucket over a season phase.
func (c *Client) TeamOppShotLocations(ctx context.Context, season string, phase model.Phase) ([]model.TeamOppShooting, error) {
	params := baseParams(season, phase, "Opponent", "PerGame", 0)
	params.Set("DistanceRange", "5ft Range")
	params.Set("TeamID", "0")

	var resp response
	if err := c.get(ctx, "leaguedashteamshotlocations", params, &resp); err != nil {
		return nil, err
	}
	st, err := resp.shotLocations("OPP_FG_PCT")
	if err != nil {
		return nil, fmt.Errorf("leaguedashteamshotlocations: %w", err)
	}
	if err := st.require("TEAM_NAME", "TEAM_ID"); err != nil {
		return nil, fmt.Errorf("leaguedashteamshotlocations: %w", err)
	}

	out := make([]model.TeamOppShooting, 0, len(st.rows))
	for _, row := range st.rows {
		out = append(out, model.TeamOppShooting{
			Season:   season,
			TeamName: st.str(row, "TEAM_NAME"),
			TeamID:   st.int(row, "TEAM_ID"),
			OppFGPct: st.buckets(row),
		})
	}
	return out, nil
}

// LeagueTeamStats returns every team's advanced summary for a season phase,
// season-to-date when lastN is 0 and over the last lastN games otherwise.
func (c *Client) LeagueTeamStats(ctx context.Context, season string, phase model.Phase, lastN int) ([]model.TeamStats, error) {
	params := baseParams(season, phase, "Advanced", "PerGame", lastN)
	params.Set("TeamID", "0")
	params.Set("TwoWay", "0")

	var resp response
	if err := c.get(ctx, "leaguedashteamstats", params, &resp); err != nil {
		return nil, err
	}
	t, err := resp.firstTable()
	if err != nil {
		return nil, fmt.Errorf("leaguedashteamstats: %w", err)
	}
	if err := t.require("TEAM_NAME", "TEAM_ID", "W_PCT", "OFF_RATING", "DEF_RATING", "PACE"); err != nil {
		return nil, fmt.Errorf("leaguedashteamstats: %w", err)
	}

	out := make([]model.TeamStats, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, model.TeamStats{
			TeamName:  t.str(row, "TEAM_NAME"),
			TeamID:    t.int(row, "TEAM_ID"),
			WinPct:    t.float(row, "W_PCT"),
			OffRating: t.float(row, "OFF_RATING"),
			DefRating: t.float(row, "DEF_RATING"),
			Pace:      t.float(row, "PACE"),
		})
	}
	return out, nil
}
