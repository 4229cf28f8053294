package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pable/nba-points/internal/model"
)

// InsertPlayerGames bulk-inserts player box-score lines in a transaction.
// Uses INSERT OR REPLACE so re-fetching a season is idempotent.
func (db *DB) InsertPlayerGames(phase model.Phase, games []model.PlayerGame) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO player_games(
			season, phase, game_id, player_id, player_name, team_name,
			game_date, opponent, home, minutes, outcome, points
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, g := range games {
		_, err = stmt.Exec(
			g.Season, string(phase), g.GameID, g.PlayerID, g.PlayerName, g.TeamName,
			g.Date.Format(model.DateLayout), g.Opponent, boolInt(g.Home),
			nullable(g.Minutes), g.Outcome.String(), nullable(g.Points),
		)
		if err != nil {
			return fmt.Errorf("insert player_games for %s/%s: %w", g.GameID, g.PlayerName, err)
		}
	}
	return tx.Commit()
}

// InsertTeamGames bulk-inserts team advanced lines in a transaction.
func (db *DB) InsertTeamGames(phase model.Phase, games []model.TeamGame) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO team_games(
			season, phase, game_id, team_id, team_name, game_date, opponent,
			off_rating, def_rating, pace, outcome
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, g := range games {
		_, err = stmt.Exec(
			g.Season, string(phase), g.GameID, g.TeamID, g.TeamName,
			g.Date.Format(model.DateLayout), g.Opponent,
			nullable(g.OffRating), nullable(g.DefRating), nullable(g.Pace), g.Outcome.String(),
		)
		if err != nil {
			return fmt.Errorf("insert team_games for %s/%s: %w", g.GameID, g.TeamName, err)
		}
	}
	return tx.Commit()
}

// InsertPlayerShooting bulk-inserts player shot-distance profiles.
func (db *DB) InsertPlayerShooting(phase model.Phase, rows []model.PlayerShooting) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO player_shooting(
			season, phase, player_name, team_id, b0, b1, b2, b3, b4, b5, b6, b7, b8
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		args := append([]interface{}{r.Season, string(phase), r.PlayerName, r.TeamID}, bucketArgs(r.FGA)...)
		if _, err = stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert player_shooting for %s: %w", r.PlayerName, err)
		}
	}
	return tx.Commit()
}

// InsertTeamOppShooting bulk-inserts the opponent shooting allowed per team.
func (db *DB) InsertTeamOppShooting(phase model.Phase, rows []model.TeamOppShooting) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO team_opp_shooting(
			season, phase, team_name, team_id, b0, b1, b2, b3, b4, b5, b6, b7, b8
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		args := append([]interface{}{r.Season, string(phase), r.TeamName, r.TeamID}, bucketArgs(r.OppFGPct)...)
		if _, err = stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert team_opp_shooting for %s: %w", r.TeamName, err)
		}
	}
	return tx.Commit()
}

// StoredSeasons returns the seasons with player games for a phase, newest first.
func (db *DB) StoredSeasons(phase model.Phase) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT DISTINCT season FROM player_games WHERE phase = ? ORDER BY season DESC`, string(phase))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetPlayerGames returns the stored player lines of a phase for the given seasons.
func (db *DB) GetPlayerGames(phase model.Phase, seasons []string) ([]model.PlayerGame, error) {
	if len(seasons) == 0 {
		return nil, nil
	}
	rows, err := db.conn.Query(fmt.Sprintf(`
		SELECT season, game_id, player_id, player_name, team_name, game_date,
		       opponent, home, minutes, outcome, points
		FROM player_games WHERE phase = ? AND season IN (%s)
		ORDER BY game_date, game_id, player_name`, placeholders(len(seasons))),
		seasonArgs(phase, seasons)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerGame
	for rows.Next() {
		var g model.PlayerGame
		var date, outcome string
		var home int
		var minutes, points sql.NullFloat64
		if err := rows.Scan(&g.Season, &g.GameID, &g.PlayerID, &g.PlayerName, &g.TeamName,
			&date, &g.Opponent, &home, &minutes, &outcome, &points); err != nil {
			return nil, err
		}
		if g.Date, err = time.Parse(model.DateLayout, date); err != nil {
			return nil, fmt.Errorf("player_games %s/%s: %w", g.GameID, g.PlayerName, err)
		}
		if g.Outcome, err = model.ParseOutcome(outcome); err != nil {
			return nil, fmt.Errorf("player_games %s/%s: %w", g.GameID, g.PlayerName, err)
		}
		g.Home = home != 0
		g.Minutes = orNaN(minutes)
		g.Points = orNaN(points)
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetTeamGames returns the stored team lines of a phase for the given seasons.
func (db *DB) GetTeamGames(phase model.Phase, seasons []string) ([]model.TeamGame, error) {
	if len(seasons) == 0 {
		return nil, nil
	}
	rows, err := db.conn.Query(fmt.Sprintf(`
		SELECT season, game_id, team_id, team_name, game_date, opponent,
		       off_rating, def_rating, pace, outcome
		FROM team_games WHERE phase = ? AND season IN (%s)
		ORDER BY game_date, game_id, team_name`, placeholders(len(seasons))),
		seasonArgs(phase, seasons)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TeamGame
	for rows.Next() {
		var g model.TeamGame
		var date, outcome string
		var off, def, pace sql.NullFloat64
		if err := rows.Scan(&g.Season, &g.GameID, &g.TeamID, &g.TeamName, &date, &g.Opponent,
			&off, &def, &pace, &outcome); err != nil {
			return nil, err
		}
		if g.Date, err = time.Parse(model.DateLayout, date); err != nil {
			return nil, fmt.Errorf("team_games %s/%s: %w", g.GameID, g.TeamName, err)
		}
		if g.Outcome, err = model.ParseOutcome(outcome); err != nil {
			return nil, fmt.Errorf("team_games %s/%s: %w", g.GameID, g.TeamName, err)
		}
		g.OffRating, g.DefRating, g.Pace = orNaN(off), orNaN(def), orNaN(pace)
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetPlayerShooting returns the stored player shooting profiles for the given seasons.
func (db *DB) GetPlayerShooting(phase model.Phase, seasons []string) ([]model.PlayerShooting, error) {
	if len(seasons) == 0 {
		return nil, nil
	}
	rows, err := db.conn.Query(fmt.Sprintf(`
		SELECT season, player_name, team_id, b0, b1, b2, b3, b4, b5, b6, b7, b8
		FROM player_shooting WHERE phase = ? AND season IN (%s)
		ORDER BY season DESC, player_name, team_id`, placeholders(len(seasons))),
		seasonArgs(phase, seasons)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerShooting
	for rows.Next() {
		var r model.PlayerShooting
		var b [model.NumShotBuckets]sql.NullFloat64
		if err := rows.Scan(append([]interface{}{&r.Season, &r.PlayerName, &r.TeamID}, bucketDest(&b)...)...); err != nil {
			return nil, err
		}
		r.FGA = bucketValues(b)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetTeamOppShooting returns the stored opponent shooting profiles for the given seasons.
func (db *DB) GetTeamOppShooting(phase model.Phase, seasons []string) ([]model.TeamOppShooting, error) {
	if len(seasons) == 0 {
		return nil, nil
	}
	rows, err := db.conn.Query(fmt.Sprintf(`
		SELECT season, team_name, team_id, b0, b1, b2, b3, b4, b5, b6, b7, b8
		FROM team_opp_shooting WHERE phase = ? AND season IN (%s)
		ORDER BY season DESC, team_name`, placeholders(len(seasons))),
		seasonArgs(phase, seasons)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TeamOppShooting
	for rows.Next() {
		var r model.TeamOppShooting
		var b [model.NumShotBuckets]sql.NullFloat64
		if err := rows.Scan(append([]interface{}{&r.Season, &r.TeamName, &r.TeamID}, bucketDest(&b)...)...); err != nil {
			return nil, err
		}
		r.OppFGPct = bucketValues(b)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountGames returns the number of stored player and team lines per season for a phase.
func (db *DB) CountGames(phase model.Phase) (map[string][2]int, error) {
	rows, err := db.conn.Query(`
		SELECT season,
		       (SELECT COUNT(1) FROM player_games p WHERE p.phase = t.phase AND p.season = t.season),
		       COUNT(1)
		FROM team_games t WHERE phase = ?
		GROUP BY season`, string(phase))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][2]int)
	for rows.Next() {
		var season string
		var players, teams int
		if err := rows.Scan(&season, &players, &teams); err != nil {
			return nil, err
		}
		out[season] = [2]int{players, teams}
	}
	return out, rows.Err()
}

func seasonArgs(phase model.Phase, seasons []string) []interface{} {
	args := make([]interface{}, 0, len(seasons)+1)
	args = append(args, string(phase))
	for _, s := range seasons {
		args = append(args, s)
	}
	return args
}

func bucketArgs(vals [model.NumShotBuckets]float64) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		out[i] = nullable(v)
	}
	return out
}

func bucketDest(b *[model.NumShotBuckets]sql.NullFloat64) []interface{} {
	out := make([]interface{}, len(b))
	for i := range b {
		out[i] = &b[i]
	}
	return out
}

func bucketValues(b [model.NumShotBuckets]sql.NullFloat64) [model.NumShotBuckets]float64 {
	var out [model.NumShotBuckets]float64
	for i, v := range b {
		out[i] = orNaN(v)
	}
	return out
}
