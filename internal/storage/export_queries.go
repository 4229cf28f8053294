package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pable/nba-points/internal/model"
)

// SaveFeatureTable replaces the stored feature table of t.Phase with t.
func (db *DB) SaveFeatureTable(t *model.FeatureTable, builtAt time.Time) error {
	seasons, err := json.Marshal(t.Seasons)
	if err != nil {
		return err
	}
	columns, err := json.Marshal(t.Columns)
	if err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM feature_rows WHERE phase = ?`, string(t.Phase)); err != nil {
		return fmt.Errorf("clear feature_rows: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM feature_tables WHERE phase = ?`, string(t.Phase)); err != nil {
		return fmt.Errorf("clear feature_tables: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO feature_tables(phase, seasons, columns, built_at, last_n_games, minutes_window)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(t.Phase), string(seasons), string(columns), builtAt.UTC().Format(time.RFC3339),
		t.LastNGames, t.MinutesWindow); err != nil {
		return fmt.Errorf("insert feature_tables: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO feature_rows(
			phase, season, game_id, player_name, team_name, matchup, outcome,
			points, minutes, features
		) VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range t.Rows {
		vals, err := json.Marshal(r.Values)
		if err != nil {
			return fmt.Errorf("encode features for %s/%s: %w", r.GameID, r.Player, err)
		}
		if _, err := stmt.Exec(string(t.Phase), r.Season, r.GameID, r.Player, r.Team, r.Matchup,
			r.Outcome.String(), r.Points, r.Minutes, string(vals)); err != nil {
			return fmt.Errorf("insert feature_rows for %s/%s: %w", r.GameID, r.Player, err)
		}
	}
	return tx.Commit()
}

// GetFeatureTable loads the stored feature table of a phase, or nil if none was built.
func (db *DB) GetFeatureTable(phase model.Phase) (*model.FeatureTable, error) {
	t, err := db.featureTableHeader(phase)
	if err != nil || t == nil {
		return t, err
	}
	t.Rows, err = db.featureRows(`WHERE phase = ?`, string(phase))
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetPlayerFeatureRows returns a player's stored rows of a phase in game order,
// along with the table's columns. It returns nil when no table exists.
func (db *DB) GetPlayerFeatureRows(phase model.Phase, player string) (*model.FeatureTable, error) {
	t, err := db.featureTableHeader(phase)
	if err != nil || t == nil {
		return t, err
	}
	t.Rows, err = db.featureRows(`WHERE phase = ? AND player_name = ?`, string(phase), player)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (db *DB) featureTableHeader(phase model.Phase) (*model.FeatureTable, error) {
	var seasons, columns string
	t := &model.FeatureTable{Phase: phase}
	err := db.conn.QueryRow(`
		SELECT seasons, columns, last_n_games, minutes_window FROM feature_tables WHERE phase = ?`,
		string(phase)).Scan(&seasons, &columns, &t.LastNGames, &t.MinutesWindow)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(seasons), &t.Seasons); err != nil {
		return nil, fmt.Errorf("decode seasons: %w", err)
	}
	if err := json.Unmarshal([]byte(columns), &t.Columns); err != nil {
		return nil, fmt.Errorf("decode columns: %w", err)
	}
	return t, nil
}

func (db *DB) featureRows(where string, args ...interface{}) ([]model.FeatureRow, error) {
	rows, err := db.conn.Query(`
		SELECT season, game_id, player_name, team_name, matchup, outcome, points, minutes, features
		FROM feature_rows `+where+`
		ORDER BY season, game_id, player_name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.FeatureRow
	for rows.Next() {
		var r model.FeatureRow
		var outcome, vals string
		if err := rows.Scan(&r.Season, &r.GameID, &r.Player, &r.Team, &r.Matchup, &outcome,
			&r.Points, &r.Minutes, &vals); err != nil {
			return nil, err
		}
		if r.Outcome, err = model.ParseOutcome(outcome); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(vals), &r.Values); err != nil {
			return nil, fmt.Errorf("decode features for %s/%s: %w", r.GameID, r.Player, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListFeatureTables summarises every stored feature table.
func (db *DB) ListFeatureTables() ([]model.TableSummary, error) {
	rows, err := db.conn.Query(`
		SELECT t.phase, t.seasons, t.columns, t.built_at, t.last_n_games, t.minutes_window,
		       (SELECT COUNT(1) FROM feature_rows r WHERE r.phase = t.phase)
		FROM feature_tables t ORDER BY t.phase DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TableSummary
	for rows.Next() {
		var s model.TableSummary
		var phase, seasons, columns, builtAt string
		if err := rows.Scan(&phase, &seasons, &columns, &builtAt,
			&s.LastNGames, &s.MinutesWindow, &s.Rows); err != nil {
			return nil, err
		}
		s.Phase = model.Phase(phase)
		if err := json.Unmarshal([]byte(seasons), &s.Seasons); err != nil {
			return nil, fmt.Errorf("decode seasons: %w", err)
		}
		var cols []string
		if err := json.Unmarshal([]byte(columns), &cols); err != nil {
			return nil, fmt.Errorf("decode columns: %w", err)
		}
		s.Columns = len(cols)
		s.BuiltAt, _ = time.Parse(time.RFC3339, builtAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

// SaveModel stores a fitted model body for a phase, replacing any previous one.
func (db *DB) SaveModel(s model.ModelSummary, body []byte) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO models(phase, features, train_rows, test_mae, trained_at, body)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(s.Phase), s.Features, s.TrainRows, s.TestMAE,
		s.TrainedAt.UTC().Format(time.RFC3339), string(body))
	return err
}

// GetModel returns the stored model body for a phase, or nil if none was trained.
func (db *DB) GetModel(phase model.Phase) ([]byte, error) {
	var body string
	err := db.conn.QueryRow(`SELECT body FROM models WHERE phase = ?`, string(phase)).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

// ListModels summarises every stored model.
func (db *DB) ListModels() ([]model.ModelSummary, error) {
	rows, err := db.conn.Query(`
		SELECT phase, features, train_rows, test_mae, trained_at FROM models ORDER BY phase DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ModelSummary
	for rows.Next() {
		var s model.ModelSummary
		var phase, trainedAt string
		if err := rows.Scan(&phase, &s.Features, &s.TrainRows, &s.TestMAE, &trainedAt); err != nil {
			return nil, err
		}
		s.Phase = model.Phase(phase)
		s.TrainedAt, _ = time.Parse(time.RFC3339, trainedAt)
		out = append(out, s)
	}
	return out, rows.Err()
}
