package stats

import (
	"context"

	"github.com/pable/nba-points/internal/model"
)

// Live answers single-player queries against the provider by fetching the
// league-wide views and filtering them by name.
type Live struct {
	*Client
}

// NewLive wraps c as a per-entity source.
func NewLive(c *Client) *Live { return &Live{Client: c} }

// PlayerGameLog returns the player's games of the season phase.
func (l *Live) PlayerGameLog(ctx context.Context, season string, phase model.Phase, player string) ([]model.PlayerGame, error) {
	all, err := l.PlayerGameLogs(ctx, season, phase, 0)
	if err != nil {
		return nil, err
	}
	var out []model.PlayerGame
	for _, g := range all {
		if g.PlayerName == player {
			out = append(out, g)
		}
	}
	return out, nil
}

// TeamStats returns the team's summary, or nil when the provider has none.
func (l *Live) TeamStats(ctx context.Context, season string, phase model.Phase, team string, lastN int) (*model.TeamStats, error) {
	all, err := l.LeagueTeamStats(ctx, season, phase, lastN)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].TeamName == team {
			return &all[i], nil
		}
	}
	return nil, nil
}

// PlayerShooting returns the player's shooting profiles, one per team stint.
func (l *Live) PlayerShooting(ctx context.Context, season string, phase model.Phase, player string) ([]model.PlayerShooting, error) {
	all, err := l.PlayerShotLocations(ctx, season, phase)
	if err != nil {
		return nil, err
	}
	var out []model.PlayerShooting
	for _, s := range all {
		if s.PlayerName == player {
			out = append(out, s)
		}
	}
	return out, nil
}

// TeamOppShooting returns the opponent-shooting profile of the team.
func (l *Live) TeamOppShooting(ctx context.Context, season string, phase model.Phase, team string) ([]model.TeamOppShooting, error) {
	all, err := l.TeamOppShotLocations(ctx, season, phase)
	if err != nil {
		return nil, err
	}
	var out []model.TeamOppShooting
	for _, s := range all {
		if s.TeamName == team {
			out = append(out, s)
		}
	}
	return out, nil
}
