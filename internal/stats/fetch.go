package stats

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pable/nba-points/internal/model"
)

// SeasonLogs holds the four raw logs of one season phase.
type SeasonLogs struct {
	Season         string
	Phase          model.Phase
	Players        []model.PlayerGame
	Teams          []model.TeamGame
	PlayerShooting []model.PlayerShooting
	OppShooting    []model.TeamOppShooting
}

// FetchSeason downloads the four logs of a season phase concurrently. The
// client's rate limiter still spaces out the underlying requests.
func (c *Client) FetchSeason(ctx context.Context, season string, phase model.Phase) (*SeasonLogs, error) {
	logs := &SeasonLogs{Season: season, Phase: phase}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		logs.Players, err = c.PlayerGameLogs(ctx, season, phase, 0)
		return err
	})
	g.Go(func() (err error) {
		logs.Teams, err = c.TeamGameLogs(ctx, season, phase)
		return err
	})
	g.Go(func() (err error) {
		logs.PlayerShooting, err = c.PlayerShotLocations(ctx, season, phase)
		return err
	})
	g.Go(func() (err error) {
		logs.OppShooting, err = c.TeamOppShotLocations(ctx, season, phase)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", season, phase, err)
	}
	return logs, nil
}
